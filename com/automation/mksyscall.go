// Copyright (c) The olegoes Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package automation

//go:generate go run golang.org/x/sys/windows/mkwinsyscall -output zsyscall_windows.go mksyscall.go

//sys sysAllocStringLen(s *uint16, n uint32) (ret BSTR) = oleaut32.SysAllocStringLen
//sys sysFreeString(bs BSTR) = oleaut32.SysFreeString
//sys sysStringLen(bs BSTR) (n uint32) = oleaut32.SysStringLen
//sys variantClear(v *Variant) (hr wingoes.HRESULT) = oleaut32.VariantClear
//sys variantCopy(dst *Variant, src *Variant) (hr wingoes.HRESULT) = oleaut32.VariantCopy
//sys variantChangeType(dst *Variant, src *Variant, flags uint16, vt VT) (hr wingoes.HRESULT) = oleaut32.VariantChangeType
//sys systemTimeToVariantTime(st *windows.Systemtime, out *float64) (ok bool) = oleaut32.SystemTimeToVariantTime
//sys safeArrayCreate(vt VT, dims uint32, bounds *SafeArrayBound) (sa *SafeArray) = oleaut32.SafeArrayCreate
//sys safeArrayDestroy(sa *SafeArray) (hr wingoes.HRESULT) = oleaut32.SafeArrayDestroy
//sys safeArrayGetDim(sa *SafeArray) (dims uint32) = oleaut32.SafeArrayGetDim
//sys safeArrayGetLBound(sa *SafeArray, dim uint32, out *int32) (hr wingoes.HRESULT) = oleaut32.SafeArrayGetLBound
//sys safeArrayGetUBound(sa *SafeArray, dim uint32, out *int32) (hr wingoes.HRESULT) = oleaut32.SafeArrayGetUBound
//sys safeArrayGetVartype(sa *SafeArray, vt *VT) (hr wingoes.HRESULT) = oleaut32.SafeArrayGetVartype
//sys safeArrayGetElement(sa *SafeArray, indices *int32, out unsafe.Pointer) (hr wingoes.HRESULT) = oleaut32.SafeArrayGetElement
//sys safeArrayPutElement(sa *SafeArray, indices *int32, in unsafe.Pointer) (hr wingoes.HRESULT) = oleaut32.SafeArrayPutElement
