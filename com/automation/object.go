// Copyright (c) The olegoes Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package automation

import (
	"unsafe"

	"github.com/olegoes/olegoes/com"
)

// Object is an owned reference to a late-bound automation object. It is
// confined to the apartment thread that created it; nothing here is safe for
// concurrent use. Release the reference with Close.
type Object struct {
	disp    *IDispatchABI
	tracker *Tracker
}

// CreateObject activates a fresh instance of the class named by spec, which
// is either a ProgID or a class ID in registry format.
func CreateObject(spec string) (*Object, error) {
	clsid, err := com.ResolveClass(spec)
	if err != nil {
		return nil, err
	}

	punk, err := com.CreateInstance(clsid, nil)
	if err != nil {
		return nil, err
	}
	defer punk.Release()

	return WrapObject(punk)
}

// ActiveObject attaches to a running instance of the class named by spec
// via the running object table.
func ActiveObject(spec string) (*Object, error) {
	clsid, err := com.ResolveClass(spec)
	if err != nil {
		return nil, err
	}

	punk, err := com.GetActiveInstance(clsid)
	if err != nil {
		return nil, err
	}
	defer punk.Release()

	return WrapObject(punk)
}

// WrapObject wraps a raw interface pointer. punk is borrowed: the returned
// object holds a reference of its own and the caller keeps theirs.
func WrapObject(punk *com.IUnknownABI) (*Object, error) {
	if punk == nil {
		return nil, &DispatchError{Reason: "nil interface pointer"}
	}

	u, err := punk.QueryInterface(IID_IDispatch)
	if err != nil {
		return nil, &DispatchError{Reason: "object does not support late binding", Cause: err}
	}

	return &Object{disp: (*IDispatchABI)(unsafe.Pointer(u))}, nil
}

// takeDispatch adopts d without adding a reference.
func takeDispatch(d *IDispatchABI) *Object {
	return &Object{disp: d}
}

// Clone returns an independent reference to the same object. Closing the
// clone and closing the original are separate obligations.
func (o *Object) Clone() *Object {
	if o == nil || o.disp == nil {
		return nil
	}
	o.disp.AddRef()
	return &Object{disp: o.disp}
}

// Close releases the reference. Further late-bound calls on o fail with a
// DispatchError; closing again is a no-op.
func (o *Object) Close() error {
	if o == nil || o.disp == nil {
		return nil
	}
	if o.tracker != nil {
		o.tracker.forgetObject(o)
		o.tracker = nil
	}
	o.disp.Release()
	o.disp = nil
	return nil
}

// IsClosed reports whether the reference has been released.
func (o *Object) IsClosed() bool {
	return o == nil || o.disp == nil
}

// UnsafeUnwrap exposes the raw interface pointer without adding a reference.
// The pointer is valid only until o is closed.
func (o *Object) UnsafeUnwrap() *IDispatchABI {
	if o == nil {
		return nil
	}
	return o.disp
}
