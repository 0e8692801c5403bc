// Copyright (c) The olegoes Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package automation

import (
	"strings"
	"syscall"
	"unsafe"

	"github.com/dblohm7/wingoes"
	"golang.org/x/sys/windows"

	"github.com/olegoes/olegoes/com"
)

var IID_IDispatch = &com.IID{0x00020400, 0x0000, 0x0000, [8]byte{0xC0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46}}

// DispatchKind selects how a late-bound member is invoked. The values are
// the wire flags of IDispatch::Invoke and may be combined.
type DispatchKind uint16

const (
	CallMethod     DispatchKind = 0x1
	GetProperty    DispatchKind = 0x2
	PutProperty    DispatchKind = 0x4
	PutRefProperty DispatchKind = 0x8

	// CallOrGet lets the object decide between a method call and a property
	// read, which is how collection items and default members are fetched.
	CallOrGet = CallMethod | GetProperty
)

const (
	dispIDPropertyPut = int32(-3)
	dispIDNewEnum     = int32(-4)

	maxDispatchArgs = 128

	// LOCALE_USER_DEFAULT
	defaultLCID = uint32(0x0400)
)

// DispParams is the wire layout of DISPPARAMS. Args points at a contiguous
// run of variants in reverse positional order.
type DispParams struct {
	Args          *Variant
	NamedArgIDs   *int32
	ArgCount      uint32
	NamedArgCount uint32
}

// ExceptionInfo is the wire layout of EXCEPINFO. The three BSTR fields are
// owned by whoever receives the structure and must be freed.
type ExceptionInfo struct {
	Code           uint16
	_              uint16
	Source         BSTR
	Description    BSTR
	HelpFile       BSTR
	HelpContext    uint32
	_              uintptr
	DeferredFillIn uintptr
	SCode          wingoes.HRESULT
}

// IDispatchABI is the ABI layout of an IDispatch interface pointer.
type IDispatchABI struct {
	com.IUnknownABI
}

func (abi *IDispatchABI) GetTypeInfoCount() (uint32, error) {
	method := unsafe.Slice(abi.Vtbl, 7)[3]

	var n uint32
	rc, _, _ := syscall.SyscallN(
		method,
		uintptr(unsafe.Pointer(abi)),
		uintptr(unsafe.Pointer(&n)),
	)
	if e := wingoes.ErrorFromHRESULT(wingoes.HRESULT(rc)); e.Failed() {
		return 0, e
	}

	return n, nil
}

func (abi *IDispatchABI) GetTypeInfo(index, lcid uint32) (*ITypeInfoABI, error) {
	method := unsafe.Slice(abi.Vtbl, 7)[4]

	var ti *ITypeInfoABI
	rc, _, _ := syscall.SyscallN(
		method,
		uintptr(unsafe.Pointer(abi)),
		uintptr(index),
		uintptr(lcid),
		uintptr(unsafe.Pointer(&ti)),
	)
	if e := wingoes.ErrorFromHRESULT(wingoes.HRESULT(rc)); e.Failed() {
		return nil, e
	}

	return ti, nil
}

// GetIDsOfNames resolves a single member name to its dispatch ID.
func (abi *IDispatchABI) GetIDsOfNames(name string, lcid uint32) (int32, error) {
	u16, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, err
	}

	method := unsafe.Slice(abi.Vtbl, 7)[5]

	var id int32
	rc, _, _ := syscall.SyscallN(
		method,
		uintptr(unsafe.Pointer(abi)),
		uintptr(unsafe.Pointer(com.IID_NULL)),
		uintptr(unsafe.Pointer(&u16)),
		1,
		uintptr(lcid),
		uintptr(unsafe.Pointer(&id)),
	)
	if e := wingoes.ErrorFromHRESULT(wingoes.HRESULT(rc)); e.Failed() {
		return 0, e
	}

	return id, nil
}

// Invoke is the raw slot call. Callers own everything they pass in; on
// DISP_E_EXCEPTION the object has filled excep and the caller must free its
// strings.
func (abi *IDispatchABI) Invoke(id int32, lcid uint32, kind DispatchKind, params *DispParams, result *Variant, excep *ExceptionInfo, argErr *uint32) wingoes.HRESULT {
	method := unsafe.Slice(abi.Vtbl, 7)[6]

	rc, _, _ := syscall.SyscallN(
		method,
		uintptr(unsafe.Pointer(abi)),
		uintptr(id),
		uintptr(unsafe.Pointer(com.IID_NULL)),
		uintptr(lcid),
		uintptr(kind),
		uintptr(unsafe.Pointer(params)),
		uintptr(unsafe.Pointer(result)),
		uintptr(unsafe.Pointer(excep)),
		uintptr(unsafe.Pointer(argErr)),
	)
	return wingoes.HRESULT(rc)
}

// Invoke performs one late-bound operation on o. name may be a dotted path:
// every component except the last is resolved as a property get and the walk
// continues on the returned object, releasing each intermediate as soon as
// the next hop is taken. kind applies to the final component only. Arguments
// are converted with NewVariant; the returned variant is owned by the
// caller.
func (o *Object) Invoke(kind DispatchKind, name string, args ...any) (*Variant, error) {
	if o == nil || o.disp == nil {
		return nil, &DispatchError{Reason: "call on released object", Member: name}
	}

	cur := o
	parts := strings.Split(name, ".")
	for i, part := range parts[:len(parts)-1] {
		v, err := cur.invokeMember(CallOrGet, part)
		if cur != o {
			cur.Close()
		}
		if err != nil {
			return nil, err
		}
		next, err := AsObject(v)
		v.Clear()
		if err != nil {
			return nil, &DispatchError{
				Reason: "member is not an object",
				Member: strings.Join(parts[:i+1], "."),
				Cause:  err,
			}
		}
		cur = next
	}

	v, err := cur.invokeMember(kind, parts[len(parts)-1], args...)
	if cur != o {
		cur.Close()
	}
	return v, err
}

// Call invokes name as a method.
func (o *Object) Call(name string, args ...any) (*Variant, error) {
	return o.Invoke(CallMethod, name, args...)
}

// Get reads the property name. Index arguments are permitted for indexed
// properties.
func (o *Object) Get(name string, args ...any) (*Variant, error) {
	return o.Invoke(GetProperty, name, args...)
}

// Put writes the property name. The final argument is the new value.
func (o *Object) Put(name string, args ...any) error {
	v, err := o.Invoke(PutProperty, name, args...)
	if v != nil {
		v.Clear()
	}
	return err
}

// PutRef writes the property name by reference, for properties that store
// the object itself rather than a copy of its value.
func (o *Object) PutRef(name string, args ...any) error {
	v, err := o.Invoke(PutRefProperty, name, args...)
	if v != nil {
		v.Clear()
	}
	return err
}

func (o *Object) invokeMember(kind DispatchKind, name string, args ...any) (*Variant, error) {
	id, err := o.disp.GetIDsOfNames(name, defaultLCID)
	if err != nil {
		return nil, &DispatchError{Reason: "unsupported method", Member: name, Cause: err}
	}
	return o.invokeByID(id, kind, name, args...)
}

// invokeByID builds the DISPPARAMS frame and performs the raw invoke.
// Positional arguments are stored in reverse: the last Go argument occupies
// slot 0. Property puts additionally tag their value with DISPID_PROPERTYPUT
// as a named argument, which the wire protocol requires.
func (o *Object) invokeByID(id int32, kind DispatchKind, name string, args ...any) (*Variant, error) {
	if len(args) > maxDispatchArgs {
		return nil, &DispatchError{Reason: "too many arguments", Member: name}
	}

	frame := make([]Variant, len(args))
	defer func() {
		for i := range frame {
			frame[i].Clear()
		}
	}()
	for i, a := range args {
		av, err := NewVariant(a)
		if err != nil {
			return nil, err
		}
		frame[len(args)-1-i] = *av
	}

	var params DispParams
	if len(frame) > 0 {
		params.Args = &frame[0]
		params.ArgCount = uint32(len(frame))
	}
	namedID := dispIDPropertyPut
	if kind&(PutProperty|PutRefProperty) != 0 && len(frame) > 0 {
		params.NamedArgIDs = &namedID
		params.NamedArgCount = 1
	}

	result := new(Variant)
	var excep ExceptionInfo
	var argErr uint32
	hr := o.disp.Invoke(id, defaultLCID, kind, &params, result, &excep, &argErr)
	if hr.Failed() {
		result.Clear()
		if hr == hrDISP_E_EXCEPTION {
			return nil, exceptionError(&excep, name)
		}
		return nil, &DispatchError{
			Reason: "invoke method failed",
			Member: name,
			Cause:  wingoes.ErrorFromHRESULT(hr),
		}
	}
	return result, nil
}

// exceptionError converts a filled EXCEPINFO into an error, first running
// the object's deferred fill-in callback when it supplied one. The string
// payloads are freed here.
func exceptionError(excep *ExceptionInfo, name string) error {
	if excep.DeferredFillIn != 0 {
		syscall.SyscallN(excep.DeferredFillIn, uintptr(unsafe.Pointer(excep)))
		excep.DeferredFillIn = 0
	}

	src := excep.Source.String()
	desc := excep.Description.String()
	hr := excep.SCode
	excep.Source.Close()
	excep.Description.Close()
	excep.HelpFile.Close()

	// Only a named source identifies a genuine server-side exception; an
	// anonymous EXCEPINFO is reported as an ordinary dispatch failure.
	if src == "" {
		return &DispatchError{
			Reason: "invoke method failed",
			Member: name,
			Cause:  wingoes.ErrorFromHRESULT(hrDISP_E_EXCEPTION),
		}
	}
	return &RemoteException{Source: src, Description: desc, HResult: hr}
}
