// Copyright (c) The olegoes Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package com

import (
	"github.com/dblohm7/wingoes"
	"golang.org/x/sys/windows"
)

// ResolveClass resolves spec to a CLSID. spec is either a class ID in
// registry format, "{xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx}", or a registered
// ProgID such as "Excel.Application".
func ResolveClass(spec string) (*CLSID, error) {
	spec16, err := windows.UTF16PtrFromString(spec)
	if err != nil {
		return nil, err
	}

	clsid := new(CLSID)
	var hr wingoes.HRESULT
	if len(spec) > 0 && spec[0] == '{' {
		hr = clsidFromString(spec16, clsid)
	} else {
		hr = clsidFromProgID(spec16, clsid)
	}
	if e := wingoes.ErrorFromHRESULT(hr); e.Failed() {
		return nil, e
	}

	return clsid, nil
}

// CreateInstance activates a fresh instance of clsid and returns the
// requested interface. A nil iid requests IUnknown. The returned pointer is
// an owned reference.
func CreateInstance(clsid *CLSID, iid *IID) (*IUnknownABI, error) {
	if clsid == nil {
		return nil, wingoes.ErrorFromHRESULT(hrE_POINTER)
	}
	if iid == nil {
		iid = IID_IUnknown
	}

	var punk *IUnknownABI
	hr := coCreateInstance(clsid, nil, uint32(coCLSCTX_INPROC_SERVER|coCLSCTX_LOCAL_SERVER), iid, &punk)
	if e := wingoes.ErrorFromHRESULT(hr); e.Failed() {
		return nil, e
	}

	return punk, nil
}

// GetActiveInstance attaches to a running instance of clsid registered in
// the running object table and returns an owned reference to it.
func GetActiveInstance(clsid *CLSID) (*IUnknownABI, error) {
	if clsid == nil {
		return nil, wingoes.ErrorFromHRESULT(hrE_POINTER)
	}

	var punk *IUnknownABI
	hr := getActiveObject(clsid, 0, &punk)
	if e := wingoes.ErrorFromHRESULT(hr); e.Failed() {
		return nil, e
	}

	return punk, nil
}
