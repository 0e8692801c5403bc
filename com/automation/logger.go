// Copyright (c) The olegoes Authors
// SPDX-License-Identifier: BSD-3-Clause

package automation

import "go.uber.org/zap"

var logger = zap.NewNop()

// Logger returns the package diagnostic logger. It is a nop logger unless
// SetLogger was called. The only spontaneous output this package produces is
// one line per uncaught panic inside an event handler.
func Logger() *zap.Logger {
	return logger
}

// SetLogger replaces the package diagnostic logger. Passing nil restores the
// nop logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}
