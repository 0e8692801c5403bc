// Copyright (c) The olegoes Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package automation

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"unsafe"

	"github.com/dblohm7/wingoes"
	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/olegoes/olegoes/com"
)

var (
	IID_IConnectionPointContainer = &com.IID{0xB196B284, 0xBAB4, 0x101A, [8]byte{0xB6, 0x9C, 0x00, 0xAA, 0x00, 0x34, 0x1D, 0x07}}
	IID_IEnumConnectionPoints     = &com.IID{0xB196B285, 0xBAB4, 0x101A, [8]byte{0xB6, 0x9C, 0x00, 0xAA, 0x00, 0x34, 0x1D, 0x07}}
	IID_IConnectionPoint          = &com.IID{0xB196B286, 0xBAB4, 0x101A, [8]byte{0xB6, 0x9C, 0x00, 0xAA, 0x00, 0x34, 0x1D, 0x07}}
)

// IConnectionPointContainerABI is the ABI layout of an
// IConnectionPointContainer interface pointer.
type IConnectionPointContainerABI struct {
	com.IUnknownABI
}

func (abi *IConnectionPointContainerABI) EnumConnectionPoints() (*IEnumConnectionPointsABI, error) {
	method := unsafe.Slice(abi.Vtbl, 5)[3]

	var enum *IEnumConnectionPointsABI
	rc, _, _ := syscall.SyscallN(
		method,
		uintptr(unsafe.Pointer(abi)),
		uintptr(unsafe.Pointer(&enum)),
	)
	if e := wingoes.ErrorFromHRESULT(wingoes.HRESULT(rc)); e.Failed() {
		return nil, e
	}

	return enum, nil
}

func (abi *IConnectionPointContainerABI) FindConnectionPoint(iid *com.IID) (*IConnectionPointABI, error) {
	method := unsafe.Slice(abi.Vtbl, 5)[4]

	var cp *IConnectionPointABI
	rc, _, _ := syscall.SyscallN(
		method,
		uintptr(unsafe.Pointer(abi)),
		uintptr(unsafe.Pointer(iid)),
		uintptr(unsafe.Pointer(&cp)),
	)
	if e := wingoes.ErrorFromHRESULT(wingoes.HRESULT(rc)); e.Failed() {
		return nil, e
	}

	return cp, nil
}

// IConnectionPointABI is the ABI layout of an IConnectionPoint interface
// pointer.
type IConnectionPointABI struct {
	com.IUnknownABI
}

func (abi *IConnectionPointABI) GetConnectionInterface() (com.IID, error) {
	method := unsafe.Slice(abi.Vtbl, 8)[3]

	var iid com.IID
	rc, _, _ := syscall.SyscallN(
		method,
		uintptr(unsafe.Pointer(abi)),
		uintptr(unsafe.Pointer(&iid)),
	)
	if e := wingoes.ErrorFromHRESULT(wingoes.HRESULT(rc)); e.Failed() {
		return com.IID{}, e
	}

	return iid, nil
}

func (abi *IConnectionPointABI) Advise(sink unsafe.Pointer) (uint32, error) {
	method := unsafe.Slice(abi.Vtbl, 8)[5]

	var cookie uint32
	rc, _, _ := syscall.SyscallN(
		method,
		uintptr(unsafe.Pointer(abi)),
		uintptr(sink),
		uintptr(unsafe.Pointer(&cookie)),
	)
	if e := wingoes.ErrorFromHRESULT(wingoes.HRESULT(rc)); e.Failed() {
		return 0, e
	}

	return cookie, nil
}

func (abi *IConnectionPointABI) Unadvise(cookie uint32) wingoes.HRESULT {
	method := unsafe.Slice(abi.Vtbl, 8)[6]

	rc, _, _ := syscall.SyscallN(method, uintptr(unsafe.Pointer(abi)), uintptr(cookie))
	return wingoes.HRESULT(rc)
}

// IEnumConnectionPointsABI is the ABI layout of an IEnumConnectionPoints
// interface pointer.
type IEnumConnectionPointsABI struct {
	com.IUnknownABI
}

func (abi *IEnumConnectionPointsABI) Next() (*IConnectionPointABI, error) {
	method := unsafe.Slice(abi.Vtbl, 7)[3]

	var cp *IConnectionPointABI
	var got uint32
	rc, _, _ := syscall.SyscallN(
		method,
		uintptr(unsafe.Pointer(abi)),
		1,
		uintptr(unsafe.Pointer(&cp)),
		uintptr(unsafe.Pointer(&got)),
	)
	if e := wingoes.ErrorFromHRESULT(wingoes.HRESULT(rc)); e.Failed() {
		return nil, e
	}
	if got == 0 {
		return nil, nil
	}

	return cp, nil
}

// EventHandler receives one event. owner is the object the connection was
// made on, member names the event, and args are owned copies of the event's
// arguments in natural order; the sink clears them after the handler
// returns, so copy what you keep. A non-nil return becomes the event's
// result; ownership of it passes to the sink.
type EventHandler func(owner *Object, member string, args []*Variant) *Variant

// EventConnection is an active event subscription. Close disconnects it.
type EventConnection struct {
	cp     *IConnectionPointABI
	cookie uint32
}

// Close disconnects the subscription. A source that has already vanished is
// tolerated; closing again is a no-op.
func (c *EventConnection) Close() error {
	if c == nil || c.cp == nil {
		return nil
	}
	c.cp.Unadvise(c.cookie)
	c.cp.Release()
	c.cp = nil
	return nil
}

// ConnectEvents subscribes handler to o's event source. iid selects the
// event interface to connect to; pass nil to let discovery enumerate the
// object's connection points and pick one (see resolveConnectionPoint).
// Discovery failure is not an error: many objects simply expose no events,
// so every such path returns a nil connection silently. handler runs on the
// apartment thread, inside the source's own call, so it must not block.
func ConnectEvents(o *Object, iid *com.IID, handler EventHandler) (*EventConnection, error) {
	if o == nil || o.disp == nil {
		return nil, &DispatchError{Reason: "call on released object"}
	}
	if handler == nil {
		return nil, &DispatchError{Reason: "nil event handler"}
	}

	u, err := o.disp.QueryInterface(IID_IConnectionPointContainer)
	if err != nil {
		return nil, nil
	}
	container := (*IConnectionPointContainerABI)(unsafe.Pointer(u))
	defer container.Release()

	var cp *IConnectionPointABI
	var sinkIID com.IID
	var ti *ITypeInfoABI
	if iid != nil {
		cp, err = container.FindConnectionPoint(iid)
		if err != nil {
			return nil, nil
		}
		sinkIID = *iid
		ti = o.eventTypeInfo(iid)
	} else {
		cp, sinkIID, ti = o.resolveConnectionPoint(container)
		if cp == nil {
			return nil, nil
		}
	}

	sink := newEventSink(o, sinkIID, ti, handler)
	cookie, err := cp.Advise(unsafe.Pointer(sink))
	if err != nil {
		sink.discard()
		cp.Release()
		return nil, nil
	}

	return &EventConnection{cp: cp, cookie: cookie}, nil
}

// resolveConnectionPoint picks the connection point to subscribe to when no
// interface was named: the first one whose interface resolves in the
// object's containing type library. An object with no reachable type
// library at all degrades to its first advertised point, with member names
// falling back to numeric form.
func (o *Object) resolveConnectionPoint(container *IConnectionPointContainerABI) (*IConnectionPointABI, com.IID, *ITypeInfoABI) {
	enum, err := container.EnumConnectionPoints()
	if err != nil {
		return nil, com.IID{}, nil
	}
	defer enum.Release()

	var first *IConnectionPointABI
	var firstIID com.IID
	for {
		cp, err := enum.Next()
		if err != nil || cp == nil {
			break
		}
		iid, err := cp.GetConnectionInterface()
		if err != nil {
			cp.Release()
			continue
		}
		if ti := o.eventTypeInfo(&iid); ti != nil {
			if first != nil {
				first.Release()
			}
			return cp, iid, ti
		}
		if first == nil {
			first, firstIID = cp, iid
		} else {
			cp.Release()
		}
	}
	return first, firstIID, nil
}

// eventSink is a hand-built IDispatch implementation. The first field makes
// the struct's address a valid COM interface pointer: it points at a static
// vtable of callback thunks. Everything the sink owns is released when its
// reference count returns to zero.
type eventSink struct {
	vtbl     *[7]uintptr
	refs     int32
	iid      com.IID
	typeInfo *ITypeInfoABI
	owner    *Object
	handler  EventHandler
}

// liveSinks pins sinks against garbage collection while foreign code holds
// references to them.
var liveSinks = struct {
	sync.Mutex
	m map[*eventSink]struct{}
}{m: make(map[*eventSink]struct{})}

func newEventSink(o *Object, iid com.IID, ti *ITypeInfoABI, handler EventHandler) *eventSink {
	sink := &eventSink{
		vtbl:     sinkVtable(),
		iid:      iid,
		typeInfo: ti,
		owner:    o.Clone(),
		handler:  handler,
	}

	liveSinks.Lock()
	liveSinks.m[sink] = struct{}{}
	liveSinks.Unlock()

	return sink
}

// discard tears down a sink that was never advised.
func (sink *eventSink) discard() {
	sink.drop()
}

func (sink *eventSink) drop() {
	liveSinks.Lock()
	delete(liveSinks.m, sink)
	liveSinks.Unlock()

	if sink.typeInfo != nil {
		sink.typeInfo.Release()
		sink.typeInfo = nil
	}
	if sink.owner != nil {
		sink.owner.Close()
		sink.owner = nil
	}
}

func (sink *eventSink) memberName(id int32) string {
	if sink.typeInfo != nil {
		if name, err := sink.typeInfo.GetMemberName(id); err == nil {
			return name
		}
	}
	return "#" + strconv.FormatInt(int64(id), 10)
}

var (
	sinkVtblOnce sync.Once
	sinkVtbl     [7]uintptr
)

// sinkVtable builds the shared sink vtable on first use. The thunks take
// and return uintptr only, per the stdcall callback contract.
func sinkVtable() *[7]uintptr {
	sinkVtblOnce.Do(func() {
		sinkVtbl = [7]uintptr{
			syscall.NewCallback(sinkQueryInterface),
			syscall.NewCallback(sinkAddRef),
			syscall.NewCallback(sinkRelease),
			syscall.NewCallback(sinkGetTypeInfoCount),
			syscall.NewCallback(sinkGetTypeInfo),
			syscall.NewCallback(sinkGetIDsOfNames),
			syscall.NewCallback(sinkInvoke),
		}
	})
	return &sinkVtbl
}

func sinkQueryInterface(this uintptr, riid uintptr, ppv uintptr) uintptr {
	if ppv == 0 {
		return hrToUintptr(hrE_POINTER)
	}
	out := (*uintptr)(unsafe.Pointer(ppv))
	*out = 0

	if riid == 0 {
		return hrToUintptr(hrE_POINTER)
	}
	sink := (*eventSink)(unsafe.Pointer(this))
	iid := (*com.IID)(unsafe.Pointer(riid))
	if *iid != *com.IID_IUnknown && *iid != *IID_IDispatch && *iid != sink.iid {
		return hrToUintptr(hrE_NOINTERFACE)
	}

	atomic.AddInt32(&sink.refs, 1)
	*out = this
	return uintptr(uint32(hrS_OK))
}

func sinkAddRef(this uintptr) uintptr {
	sink := (*eventSink)(unsafe.Pointer(this))
	return uintptr(atomic.AddInt32(&sink.refs, 1))
}

func sinkRelease(this uintptr) uintptr {
	sink := (*eventSink)(unsafe.Pointer(this))
	refs := atomic.AddInt32(&sink.refs, -1)
	if refs == 0 {
		sink.drop()
	}
	return uintptr(refs)
}

func sinkGetTypeInfoCount(this uintptr, out uintptr) uintptr {
	if out == 0 {
		return hrToUintptr(hrE_POINTER)
	}
	sink := (*eventSink)(unsafe.Pointer(this))
	n := uint32(0)
	if sink.typeInfo != nil {
		n = 1
	}
	*(*uint32)(unsafe.Pointer(out)) = n
	return uintptr(uint32(hrS_OK))
}

func sinkGetTypeInfo(this uintptr, index uintptr, lcid uintptr, out uintptr) uintptr {
	if out == 0 {
		return hrToUintptr(hrE_POINTER)
	}
	*(*uintptr)(unsafe.Pointer(out)) = 0

	sink := (*eventSink)(unsafe.Pointer(this))
	if sink.typeInfo == nil || index != 0 {
		return hrToUintptr(hrE_NOTIMPL)
	}
	sink.typeInfo.AddRef()
	*(*uintptr)(unsafe.Pointer(out)) = uintptr(unsafe.Pointer(sink.typeInfo))
	return uintptr(uint32(hrS_OK))
}

// sinkGetIDsOfNames forwards single-name resolution to the cached type
// description when one is available.
func sinkGetIDsOfNames(this uintptr, riid uintptr, names uintptr, count uintptr, lcid uintptr, ids uintptr) uintptr {
	sink := (*eventSink)(unsafe.Pointer(this))
	if sink.typeInfo == nil || count != 1 || names == 0 || ids == 0 {
		return hrToUintptr(hrE_NOTIMPL)
	}

	namePtr := *(**uint16)(unsafe.Pointer(names))
	id, err := sink.typeInfo.GetIDOfName(windows.UTF16PtrToString(namePtr))
	if err != nil {
		*(*int32)(unsafe.Pointer(ids)) = -1
		return hrToUintptr(hrDISP_E_UNKNOWNNAME)
	}
	*(*int32)(unsafe.Pointer(ids)) = id
	return uintptr(uint32(hrS_OK))
}

// sinkInvoke is the event delivery path. A panic in the handler is absorbed
// here: it is logged once and the source sees S_OK, because an HRESULT
// failure crossing the ABI boundary would make some sources stop firing.
func sinkInvoke(this, id, riid, lcid, flags, params, result, excep, argErr uintptr) uintptr {
	sink := (*eventSink)(unsafe.Pointer(this))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("uncaught exception inside event handler",
				zap.String("type", fmt.Sprintf("%T", r)),
				zap.Any("value", r),
			)
		}
	}()

	var args []*Variant
	if params != 0 {
		dp := (*DispParams)(unsafe.Pointer(params))
		if dp.ArgCount > 0 && dp.Args != nil {
			// The frame arrives in wire order; un-reverse it into owned
			// copies so the handler sees natural order and the source can
			// reclaim its frame independently.
			frame := unsafe.Slice(dp.Args, dp.ArgCount)
			args = make([]*Variant, dp.ArgCount)
			for i := range args {
				c, err := frame[len(frame)-1-i].Copy()
				if err != nil {
					c = new(Variant)
				}
				args[i] = c
			}
			defer func() {
				for _, a := range args {
					a.Clear()
				}
			}()
		}
	}

	ret := sink.handler(sink.owner, sink.memberName(int32(id)), args)
	if ret != nil {
		if result != 0 {
			variantCopy((*Variant)(unsafe.Pointer(result)), ret)
		}
		ret.Clear()
	}

	return uintptr(uint32(hrS_OK))
}
