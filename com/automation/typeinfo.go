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

// ITypeInfoABI is the ABI layout of an ITypeInfo interface pointer. Only the
// slots this package needs are bound: member name lookup in both directions
// and the hop to the containing type library.
type ITypeInfoABI struct {
	com.IUnknownABI
}

// GetMemberName returns the name of the member identified by id.
func (abi *ITypeInfoABI) GetMemberName(id int32) (string, error) {
	method := unsafe.Slice(abi.Vtbl, 22)[7]

	var bs BSTR
	var got uint32
	rc, _, _ := syscall.SyscallN(
		method,
		uintptr(unsafe.Pointer(abi)),
		uintptr(id),
		uintptr(unsafe.Pointer(&bs)),
		1,
		uintptr(unsafe.Pointer(&got)),
	)
	if e := wingoes.ErrorFromHRESULT(wingoes.HRESULT(rc)); e.Failed() {
		return "", e
	}
	if got == 0 {
		return "", wingoes.ErrorFromHRESULT(hrDISP_E_MEMBERNOTFOUND)
	}
	defer bs.Close()

	return bs.String(), nil
}

// GetIDOfName resolves a member name to its dispatch ID using the type
// description instead of a live object.
func (abi *ITypeInfoABI) GetIDOfName(name string) (int32, error) {
	u16, err := syscall.UTF16PtrFromString(name)
	if err != nil {
		return 0, err
	}

	method := unsafe.Slice(abi.Vtbl, 22)[10]

	var id int32
	rc, _, _ := syscall.SyscallN(
		method,
		uintptr(unsafe.Pointer(abi)),
		uintptr(unsafe.Pointer(&u16)),
		1,
		uintptr(unsafe.Pointer(&id)),
	)
	if e := wingoes.ErrorFromHRESULT(wingoes.HRESULT(rc)); e.Failed() {
		return 0, e
	}

	return id, nil
}

// GetContainingTypeLib returns the library this type description lives in
// and the type's index within it.
func (abi *ITypeInfoABI) GetContainingTypeLib() (*ITypeLibABI, uint32, error) {
	method := unsafe.Slice(abi.Vtbl, 22)[18]

	var tl *ITypeLibABI
	var index uint32
	rc, _, _ := syscall.SyscallN(
		method,
		uintptr(unsafe.Pointer(abi)),
		uintptr(unsafe.Pointer(&tl)),
		uintptr(unsafe.Pointer(&index)),
	)
	if e := wingoes.ErrorFromHRESULT(wingoes.HRESULT(rc)); e.Failed() {
		return nil, 0, e
	}

	return tl, index, nil
}

// ITypeLibABI is the ABI layout of an ITypeLib interface pointer.
type ITypeLibABI struct {
	com.IUnknownABI
}

// GetTypeInfoOfGuid looks up the type description for the interface
// identified by iid.
func (abi *ITypeLibABI) GetTypeInfoOfGuid(iid *com.IID) (*ITypeInfoABI, error) {
	method := unsafe.Slice(abi.Vtbl, 13)[6]

	var ti *ITypeInfoABI
	rc, _, _ := syscall.SyscallN(
		method,
		uintptr(unsafe.Pointer(abi)),
		uintptr(unsafe.Pointer(iid)),
		uintptr(unsafe.Pointer(&ti)),
	)
	if e := wingoes.ErrorFromHRESULT(wingoes.HRESULT(rc)); e.Failed() {
		return nil, e
	}

	return ti, nil
}

// eventTypeInfo walks from o's coclass type description to the type
// description of the event interface iid, via the containing type library.
// Any failure along the way degrades to nil; event dispatch then falls back
// to numeric member names.
func (o *Object) eventTypeInfo(iid *com.IID) *ITypeInfoABI {
	ti, err := o.disp.GetTypeInfo(0, defaultLCID)
	if err != nil {
		return nil
	}
	defer ti.Release()

	tl, _, err := ti.GetContainingTypeLib()
	if err != nil {
		return nil
	}
	defer tl.Release()

	eti, err := tl.GetTypeInfoOfGuid(iid)
	if err != nil {
		return nil
	}
	return eti
}
