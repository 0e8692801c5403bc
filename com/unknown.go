// Copyright (c) The olegoes Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package com

import (
	"syscall"
	"unsafe"

	"github.com/dblohm7/wingoes"
)

var (
	IID_IUnknown = &IID{0x00000000, 0x0000, 0x0000, [8]byte{0xC0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46}}

	// IID_NULL is the all-zero interface ID passed where an IID argument is
	// required but unused.
	IID_NULL = &IID{}
)

// IUnknownABI is the ABI layout shared by every COM interface pointer: a
// single pointer to a table of function pointers. Interface-specific ABI
// types embed it so that slots 0 through 2 are always QueryInterface,
// AddRef, and Release.
type IUnknownABI struct {
	Vtbl *uintptr
}

// QueryInterface asks the object for the interface identified by iid. On
// success the returned pointer carries its own reference; release it with
// Release when done.
func (abi *IUnknownABI) QueryInterface(iid *IID) (*IUnknownABI, error) {
	method := unsafe.Slice(abi.Vtbl, 3)[0]

	var punk *IUnknownABI
	rc, _, _ := syscall.SyscallN(
		method,
		uintptr(unsafe.Pointer(abi)),
		uintptr(unsafe.Pointer(iid)),
		uintptr(unsafe.Pointer(&punk)),
	)
	if e := wingoes.ErrorFromHRESULT(wingoes.HRESULT(rc)); e.Failed() {
		return nil, e
	}

	return punk, nil
}

// AddRef increments the object's reference count and returns the new count.
// The count is advisory only; COM objects are free to return a constant.
func (abi *IUnknownABI) AddRef() uint32 {
	method := unsafe.Slice(abi.Vtbl, 3)[1]

	rc, _, _ := syscall.SyscallN(method, uintptr(unsafe.Pointer(abi)))
	return uint32(rc)
}

// Release decrements the object's reference count and returns the new count.
func (abi *IUnknownABI) Release() uint32 {
	method := unsafe.Slice(abi.Vtbl, 3)[2]

	rc, _, _ := syscall.SyscallN(method, uintptr(unsafe.Pointer(abi)))
	return uint32(rc)
}
