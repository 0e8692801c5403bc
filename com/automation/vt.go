// Copyright (c) The olegoes Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package automation provides late-bound COM automation: dynamically typed
// variants, conversion between them and native Go values, IDispatch
// invocation by member name, collection enumeration, and event sinks.
//
// Everything in this package is confined to the single apartment thread
// that called com.StartRuntime. Resources are owned explicitly: objects are
// released with Close, variants with Clear, either directly or through a
// Tracker.
package automation

import "fmt"

// VT identifies the payload interpretation of a Variant. Exactly one
// interpretation is valid per tag; the flag bits VT_BYREF and VT_ARRAY
// modify the base tag in the low 12 bits.
type VT uint16

const (
	VT_EMPTY    = VT(0)
	VT_NULL     = VT(1)
	VT_I2       = VT(2)
	VT_I4       = VT(3)
	VT_R4       = VT(4)
	VT_R8       = VT(5)
	VT_CY       = VT(6)
	VT_DATE     = VT(7)
	VT_BSTR     = VT(8)
	VT_DISPATCH = VT(9)
	VT_ERROR    = VT(10)
	VT_BOOL     = VT(11)
	VT_VARIANT  = VT(12)
	VT_UNKNOWN  = VT(13)
	VT_DECIMAL  = VT(14)
	VT_I1       = VT(16)
	VT_UI1      = VT(17)
	VT_UI2      = VT(18)
	VT_UI4      = VT(19)
	VT_I8       = VT(20)
	VT_UI8      = VT(21)
	VT_INT      = VT(22)
	VT_UINT     = VT(23)
	VT_HRESULT  = VT(25)
	VT_PTR      = VT(26)
	VT_LPSTR    = VT(30)
	VT_LPWSTR   = VT(31)
	VT_FILETIME = VT(64)

	VT_ARRAY    = VT(0x2000)
	VT_BYREF    = VT(0x4000)
	VT_TYPEMASK = VT(0x0FFF)
)

var vtNames = map[VT]string{
	VT_EMPTY:    "VT_EMPTY",
	VT_NULL:     "VT_NULL",
	VT_I2:       "VT_I2",
	VT_I4:       "VT_I4",
	VT_R4:       "VT_R4",
	VT_R8:       "VT_R8",
	VT_CY:       "VT_CY",
	VT_DATE:     "VT_DATE",
	VT_BSTR:     "VT_BSTR",
	VT_DISPATCH: "VT_DISPATCH",
	VT_ERROR:    "VT_ERROR",
	VT_BOOL:     "VT_BOOL",
	VT_VARIANT:  "VT_VARIANT",
	VT_UNKNOWN:  "VT_UNKNOWN",
	VT_DECIMAL:  "VT_DECIMAL",
	VT_I1:       "VT_I1",
	VT_UI1:      "VT_UI1",
	VT_UI2:      "VT_UI2",
	VT_UI4:      "VT_UI4",
	VT_I8:       "VT_I8",
	VT_UI8:      "VT_UI8",
	VT_INT:      "VT_INT",
	VT_UINT:     "VT_UINT",
	VT_HRESULT:  "VT_HRESULT",
	VT_PTR:      "VT_PTR",
	VT_LPSTR:    "VT_LPSTR",
	VT_LPWSTR:   "VT_LPWSTR",
	VT_FILETIME: "VT_FILETIME",
}

func (vt VT) String() string {
	var prefix string
	if vt&VT_ARRAY != 0 {
		prefix += "VT_ARRAY|"
	}
	if vt&VT_BYREF != 0 {
		prefix += "VT_BYREF|"
	}
	if name, ok := vtNames[vt&VT_TYPEMASK]; ok {
		return prefix + name
	}
	return prefix + fmt.Sprintf("VT(0x%X)", uint16(vt&VT_TYPEMASK))
}
