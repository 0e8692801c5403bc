// Copyright (c) The olegoes Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package com

//go:generate go run golang.org/x/sys/windows/mkwinsyscall -output zsyscall_windows.go mksyscall.go

//sys clsidFromProgID(progID *uint16, clsid *CLSID) (hr wingoes.HRESULT) = ole32.CLSIDFromProgID
//sys clsidFromString(str *uint16, clsid *CLSID) (hr wingoes.HRESULT) = ole32.CLSIDFromString
//sys coCreateInstance(clsid *CLSID, outer *IUnknownABI, clsCtx uint32, iid *IID, object **IUnknownABI) (hr wingoes.HRESULT) = ole32.CoCreateInstance
//sys coInitializeEx(reserved uintptr, flags uint32) (hr wingoes.HRESULT) = ole32.CoInitializeEx
//sys coUninitialize() = ole32.CoUninitialize
//sys getActiveObject(clsid *CLSID, reserved uintptr, object **IUnknownABI) (hr wingoes.HRESULT) = oleaut32.GetActiveObject
