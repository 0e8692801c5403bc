// Copyright (c) The olegoes Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package automation

import (
	"unsafe"

	"github.com/dblohm7/wingoes"

	"github.com/olegoes/olegoes/com"
)

// Clear releases whatever payload v owns: BSTRs and arrays are freed,
// interface references are released. Clearing resets v to VT_EMPTY, so a
// second Clear is a no-op; this is the only place variant payloads are
// freed.
func (v *Variant) Clear() error {
	if v == nil {
		return nil
	}
	if hr := variantClear(v); hr.Failed() {
		return wingoes.ErrorFromHRESULT(hr)
	}
	return nil
}

// Copy produces a deep copy of v: string and array payloads are duplicated
// and interface payloads gain a reference of their own.
func (v *Variant) Copy() (*Variant, error) {
	dst := new(Variant)
	if hr := variantCopy(dst, v); hr.Failed() {
		return nil, wingoes.ErrorFromHRESULT(hr)
	}
	return dst, nil
}

// IsEmpty reports whether v carries no value (VT_EMPTY or VT_NULL).
func (v *Variant) IsEmpty() bool {
	if v == nil {
		return true
	}
	tag := v.VT & VT_TYPEMASK
	return v.VT&VT_ARRAY == 0 && (tag == VT_EMPTY || tag == VT_NULL)
}

// coerce asks the platform to convert v into a variant of type vt. The
// result is a new owned variant; v is left untouched.
func (v *Variant) coerce(vt VT) (*Variant, error) {
	dst := new(Variant)
	if hr := variantChangeType(dst, v, 0, vt); hr.Failed() {
		return nil, &ConversionError{
			From:  v.VT.String(),
			To:    vt.String(),
			Cause: wingoes.ErrorFromHRESULT(hr),
		}
	}
	return dst, nil
}

func (v *Variant) bstr() BSTR {
	return BSTR(uintptr(v.Val))
}

func (v *Variant) unknown() *com.IUnknownABI {
	return (*com.IUnknownABI)(unsafe.Pointer(uintptr(v.Val)))
}

func (v *Variant) dispatch() *IDispatchABI {
	return (*IDispatchABI)(unsafe.Pointer(uintptr(v.Val)))
}

func (v *Variant) safeArray() *SafeArray {
	if v.VT&VT_BYREF != 0 {
		pp := (**SafeArray)(unsafe.Pointer(uintptr(v.Val)))
		if pp == nil {
			return nil
		}
		return *pp
	}
	return (*SafeArray)(unsafe.Pointer(uintptr(v.Val)))
}

// intBits extracts the signed integer payload for the given base tag,
// sign- or zero-extending from the tag's natural width.
func (v *Variant) intBits(vt VT) int64 {
	switch vt & VT_TYPEMASK {
	case VT_I1:
		return int64(int8(v.Val))
	case VT_UI1:
		return int64(uint8(v.Val))
	case VT_I2, VT_BOOL:
		return int64(int16(v.Val))
	case VT_UI2:
		return int64(uint16(v.Val))
	case VT_I4, VT_INT, VT_ERROR, VT_HRESULT:
		return int64(int32(v.Val))
	case VT_UI4, VT_UINT:
		return int64(uint32(v.Val))
	default:
		return v.Val
	}
}
