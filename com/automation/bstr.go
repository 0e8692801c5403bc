// Copyright (c) The olegoes Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package automation

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// BSTR is a length-prefixed OLE string allocated by the COM allocator. A
// BSTR is an owned foreign resource; free it with Close. The zero BSTR is
// valid and represents the empty string.
type BSTR uintptr

// NewBSTR allocates a BSTR holding the UTF-16 form of s.
func NewBSTR(s string) BSTR {
	buf, err := windows.UTF16FromString(s)
	if err != nil {
		return 0
	}
	return sysAllocStringLen(&buf[0], uint32(len(buf)-1))
}

// Len returns the length of the string in UTF-16 code units.
func (bs BSTR) Len() uint32 {
	return sysStringLen(bs)
}

func (bs BSTR) String() string {
	return windows.UTF16ToString(bs.toUTF16())
}

// toUTF16 is unsafe for general use because it aliases memory that is not
// managed by the Go GC.
func (bs BSTR) toUTF16() []uint16 {
	if bs == 0 {
		return nil
	}
	return unsafe.Slice(bs.toUTF16Ptr(), bs.Len())
}

// toUTF16Ptr is unsafe for general use because it returns a pointer that is
// not managed by the Go GC.
func (bs BSTR) toUTF16Ptr() *uint16 {
	return (*uint16)(unsafe.Pointer(bs))
}

// Clone allocates an independent copy of bs.
func (bs BSTR) Clone() BSTR {
	if bs == 0 {
		return 0
	}
	return sysAllocStringLen(bs.toUTF16Ptr(), bs.Len())
}

func (bs BSTR) IsNil() bool {
	return bs == 0
}

// Close frees the string. Closing the zero BSTR is a no-op.
func (bs *BSTR) Close() error {
	sysFreeString(*bs)
	*bs = 0
	return nil
}
