// Copyright (c) The olegoes Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package com

import (
	"github.com/dblohm7/wingoes"
)

// StartRuntime initializes COM on the calling thread as a single-threaded
// apartment. Callers that intend to keep objects alive across calls should
// lock the goroutine to its OS thread first; apartment membership is a
// per-thread property. StartRuntime is a no-op when the thread is already
// inside an apartment, even one of a different threading model.
func StartRuntime() error {
	hr := coInitializeEx(0, uint32(coCOINIT_APARTMENTTHREADED))
	switch hr {
	case hrS_OK, hrS_FALSE, hrRPC_E_CHANGED_MODE:
		return nil
	}
	if e := wingoes.ErrorFromHRESULT(hr); e.Failed() {
		return e
	}
	return nil
}

// ShutdownRuntime balances a successful StartRuntime on the same thread.
func ShutdownRuntime() {
	coUninitialize()
}
