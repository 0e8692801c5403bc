// Copyright (c) The olegoes Authors
// SPDX-License-Identifier: BSD-3-Clause

package automation

import (
	"fmt"

	"github.com/dblohm7/wingoes"
)

// ConversionError reports a native value that could not be represented as a
// variant, or a variant that could not be coerced to the requested native
// type. It never indicates corrupted state; the operands are untouched.
type ConversionError struct {
	From  string
	To    string
	Cause error
}

func (e *ConversionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cannot convert %s to %s: %v", e.From, e.To, e.Cause)
	}
	return fmt.Sprintf("cannot convert %s to %s", e.From, e.To)
}

func (e *ConversionError) Unwrap() error { return e.Cause }

// DispatchError reports a late-bound call that could not be formed (name
// resolution failed, object not iterable) or that failed without structured
// detail from the object.
type DispatchError struct {
	Reason string
	Member string
	Cause  error
}

func (e *DispatchError) Error() string {
	if e.Member != "" {
		return fmt.Sprintf("%s: %q", e.Reason, e.Member)
	}
	return e.Reason
}

func (e *DispatchError) Unwrap() error { return e.Cause }

// RemoteException reports a structured failure raised by the foreign object
// itself, as opposed to a call that could not be formed locally.
type RemoteException struct {
	Source      string
	Description string
	HResult     wingoes.HRESULT
}

func (e *RemoteException) Error() string {
	if e.Description == "" {
		return e.Source
	}
	return e.Source + ": " + e.Description
}

const (
	hrS_OK    = wingoes.HRESULT(0)
	hrS_FALSE = wingoes.HRESULT(1)

	hrE_OUTOFMEMORY = wingoes.HRESULT(-((0x8007000E ^ 0xFFFFFFFF) + 1))
	hrE_NOTIMPL     = wingoes.HRESULT(-((0x80004001 ^ 0xFFFFFFFF) + 1))
	hrE_NOINTERFACE = wingoes.HRESULT(-((0x80004002 ^ 0xFFFFFFFF) + 1))
	hrE_POINTER     = wingoes.HRESULT(-((0x80004003 ^ 0xFFFFFFFF) + 1))
	hrE_FAIL        = wingoes.HRESULT(-((0x80004005 ^ 0xFFFFFFFF) + 1))

	hrDISP_E_MEMBERNOTFOUND = wingoes.HRESULT(-((0x80020003 ^ 0xFFFFFFFF) + 1))
	hrDISP_E_TYPEMISMATCH   = wingoes.HRESULT(-((0x80020005 ^ 0xFFFFFFFF) + 1))
	hrDISP_E_UNKNOWNNAME    = wingoes.HRESULT(-((0x80020006 ^ 0xFFFFFFFF) + 1))
	hrDISP_E_BADVARTYPE     = wingoes.HRESULT(-((0x80020008 ^ 0xFFFFFFFF) + 1))
	hrDISP_E_EXCEPTION      = wingoes.HRESULT(-((0x80020009 ^ 0xFFFFFFFF) + 1))
	hrDISP_E_BADINDEX       = wingoes.HRESULT(-((0x8002000B ^ 0xFFFFFFFF) + 1))
)

// hrToUintptr widens an HRESULT to the uintptr return value expected by
// syscall callbacks. The function indirection keeps the conversion out of
// constant context, where negative HRESULTs cannot convert to uint32.
func hrToUintptr(hr wingoes.HRESULT) uintptr {
	return uintptr(uint32(hr))
}
