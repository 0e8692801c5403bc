// Copyright (c) The olegoes Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package automation

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/dblohm7/wingoes"
)

// newFakeCollection wires a fakeDispatch whose _NewEnum member hands out fe,
// transferring the creator's reference to the result variant.
func newFakeCollection(fe *fakeEnum) *fakeDispatch {
	return newFakeDispatch(nil,
		func(id int32, kind DispatchKind, params *DispParams, result *Variant, excep *ExceptionInfo) wingoes.HRESULT {
			if id != dispIDNewEnum {
				return hrDISP_E_MEMBERNOTFOUND
			}
			result.VT = VT_UNKNOWN
			result.Val = int64(uintptr(unsafe.Pointer(fe)))
			return hrS_OK
		},
	)
}

func TestEnumDrainsCollection(t *testing.T) {
	fe := newFakeEnum([]string{"one", "two", "three"})
	fd := newFakeCollection(fe)
	obj := takeDispatch(fd.abi())
	defer obj.Close()

	enum, err := obj.NewEnum()
	if err != nil {
		t.Fatalf("NewEnum error: %v", err)
	}

	var got []string
	err = enum.ForEach(func(v *Variant) error {
		s, err := As[string](v)
		if err != nil {
			return err
		}
		got = append(got, s)
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach error: %v", err)
	}
	if len(got) != 3 || got[0] != "one" || got[2] != "three" {
		t.Errorf("elements = %v", got)
	}

	// ForEach closed the enumerator on completion; further Next calls keep
	// returning nil without error, and closing again is a no-op.
	if v := enum.Next(); v != nil {
		t.Errorf("Next after exhaustion = %v, want nil", v)
	}
	if enum.Err() != nil {
		t.Errorf("Err = %v, want nil", enum.Err())
	}
	if err := enum.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if fe.refs != 0 {
		t.Errorf("enumerator refs = %d, want 0 (released exactly once)", fe.refs)
	}
}

func TestEnumForEachStopsOnCallbackError(t *testing.T) {
	fe := newFakeEnum([]string{"a", "b", "c"})
	fd := newFakeCollection(fe)
	obj := takeDispatch(fd.abi())
	defer obj.Close()

	enum, err := obj.NewEnum()
	if err != nil {
		t.Fatalf("NewEnum error: %v", err)
	}
	defer enum.Close()

	sentinel := errors.New("stop")
	seen := 0
	err = enum.ForEach(func(v *Variant) error {
		seen++
		if seen == 2 {
			return sentinel
		}
		return nil
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("ForEach error = %v, want sentinel", err)
	}
	if seen != 2 {
		t.Errorf("callback ran %d times, want 2", seen)
	}
}

func TestNonIterableObject(t *testing.T) {
	fd := newFakeDispatch(nil,
		func(id int32, kind DispatchKind, params *DispParams, result *Variant, excep *ExceptionInfo) wingoes.HRESULT {
			return hrDISP_E_MEMBERNOTFOUND
		},
	)
	obj := takeDispatch(fd.abi())
	defer obj.Close()

	_, err := obj.NewEnum()
	var dispErr *DispatchError
	if !errors.As(err, &dispErr) {
		t.Fatalf("error = %v, want *DispatchError", err)
	}
}
