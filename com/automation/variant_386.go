// Copyright (c) The olegoes Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows && 386

package automation

// Variant is the COM VARIANT: the tagged union used to exchange dynamically
// typed values across the IDispatch boundary. Its layout is fixed by the
// platform ABI (16 bytes on 32-bit Windows); it must never grow Go-side
// fields. The zero value is VT_EMPTY.
type Variant struct {
	VT VT
	_  [3]uint16
	// Val holds the raw payload word: the scalar bits, or a pointer for
	// BSTR, interface, array, and by-reference tags.
	Val int64
}
