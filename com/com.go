// Copyright (c) The olegoes Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package com provides the low-level COM ABI plumbing consumed by the
// automation package: interface and class identifiers, raw IUnknown vtable
// calls, and class activation.
package com

import (
	"github.com/dblohm7/wingoes"
	"golang.org/x/sys/windows"
)

// IID is a GUID that represents an interface ID.
type IID windows.GUID

// CLSID is a GUID that represents a class ID.
type CLSID windows.GUID

type coCLSCTX uint32

const (
	// We intentionally do not define combinations of these values, as in my
	// experience people don't realize what they're doing when they use those.
	coCLSCTX_INPROC_SERVER = coCLSCTX(0x1)
	coCLSCTX_LOCAL_SERVER  = coCLSCTX(0x4)
)

type coCOINIT uint32

const (
	coCOINIT_APARTMENTTHREADED = coCOINIT(0x2)
	coCOINIT_MULTITHREADED     = coCOINIT(0x0)
)

const (
	hrS_OK                 = wingoes.HRESULT(0)
	hrS_FALSE              = wingoes.HRESULT(1)
	hrE_POINTER            = wingoes.HRESULT(-((0x80004003 ^ 0xFFFFFFFF) + 1))
	hrRPC_E_CHANGED_MODE   = wingoes.HRESULT(-((0x80010106 ^ 0xFFFFFFFF) + 1))
	hrCO_E_NOTINITIALIZED  = wingoes.HRESULT(-((0x800401F0 ^ 0xFFFFFFFF) + 1))
	hrREGDB_E_CLASSNOTREG  = wingoes.HRESULT(-((0x80040154 ^ 0xFFFFFFFF) + 1))
	hrCO_E_CLASSSTRING     = wingoes.HRESULT(-((0x800401F3 ^ 0xFFFFFFFF) + 1))
	hrMK_E_UNAVAILABLE     = wingoes.HRESULT(-((0x800401E3 ^ 0xFFFFFFFF) + 1))
)
