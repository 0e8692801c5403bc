// Copyright (c) The olegoes Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package automation

import (
	"syscall"
	"unsafe"

	"github.com/dblohm7/wingoes"

	"github.com/olegoes/olegoes/com"
)

var IID_IEnumVARIANT = &com.IID{0x00020404, 0x0000, 0x0000, [8]byte{0xC0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46}}

// IEnumVARIANTABI is the ABI layout of an IEnumVARIANT interface pointer.
type IEnumVARIANTABI struct {
	com.IUnknownABI
}

func (abi *IEnumVARIANTABI) Next(n uint32, out *Variant, got *uint32) wingoes.HRESULT {
	method := unsafe.Slice(abi.Vtbl, 7)[3]

	rc, _, _ := syscall.SyscallN(
		method,
		uintptr(unsafe.Pointer(abi)),
		uintptr(n),
		uintptr(unsafe.Pointer(out)),
		uintptr(unsafe.Pointer(got)),
	)
	return wingoes.HRESULT(rc)
}

func (abi *IEnumVARIANTABI) Reset() wingoes.HRESULT {
	method := unsafe.Slice(abi.Vtbl, 7)[5]

	rc, _, _ := syscall.SyscallN(method, uintptr(unsafe.Pointer(abi)))
	return wingoes.HRESULT(rc)
}

// NewEnum obtains the object's element enumerator via the reserved _NewEnum
// member. Objects that do not expose one are reported as not iterable.
func (o *Object) NewEnum() (*EnumVariant, error) {
	if o == nil || o.disp == nil {
		return nil, &DispatchError{Reason: "call on released object"}
	}

	v, err := o.invokeByID(dispIDNewEnum, CallOrGet, "_NewEnum")
	if err != nil {
		return nil, &DispatchError{Reason: "object is not iterable", Cause: err}
	}
	defer v.Clear()

	var u *com.IUnknownABI
	switch v.VT {
	case VT_UNKNOWN:
		u = v.unknown()
	case VT_DISPATCH:
		u = (*com.IUnknownABI)(unsafe.Pointer(v.dispatch()))
	}
	if u == nil {
		return nil, &DispatchError{Reason: "object is not iterable"}
	}

	e, err := u.QueryInterface(IID_IEnumVARIANT)
	if err != nil {
		return nil, &DispatchError{Reason: "object is not iterable", Cause: err}
	}

	return &EnumVariant{abi: (*IEnumVARIANTABI)(unsafe.Pointer(e))}, nil
}

// EnumVariant walks an IEnumVARIANT one element at a time. It is not safe
// for concurrent use.
type EnumVariant struct {
	abi *IEnumVARIANTABI
	err error
}

// Next returns the next element as an owned variant, or nil when the
// sequence is exhausted or the source failed. Err distinguishes the two.
func (e *EnumVariant) Next() *Variant {
	if e.abi == nil || e.err != nil {
		return nil
	}

	v := new(Variant)
	var got uint32
	hr := e.abi.Next(1, v, &got)
	if hr.Failed() {
		e.err = wingoes.ErrorFromHRESULT(hr)
		return nil
	}
	if got == 0 {
		return nil
	}
	return v
}

// Err reports the source failure that terminated iteration, if any.
func (e *EnumVariant) Err() error {
	return e.err
}

// ForEach drains the enumerator, invoking fn on every element. The element
// is cleared after fn returns, so fn must copy anything it keeps. Iteration
// stops at the first error, whether from fn or from the source, and the
// enumerator is closed however iteration ends.
func (e *EnumVariant) ForEach(fn func(v *Variant) error) error {
	defer e.Close()
	for {
		v := e.Next()
		if v == nil {
			return e.err
		}
		err := fn(v)
		v.Clear()
		if err != nil {
			return err
		}
	}
}

// Close releases the enumerator. Closing again is a no-op.
func (e *EnumVariant) Close() error {
	if e == nil || e.abi == nil {
		return nil
	}
	e.abi.Release()
	e.abi = nil
	return nil
}
