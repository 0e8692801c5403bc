// Copyright (c) The olegoes Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package automation

import (
	"sync"
	"sync/atomic"
	"syscall"
	"unsafe"

	"github.com/dblohm7/wingoes"
	"golang.org/x/sys/windows"

	"github.com/olegoes/olegoes/com"
)

// The fakes below are in-process COM objects built the same way the event
// sink is: structs whose first field points at a vtable of callback thunks.
// They let the dispatcher, enumerator, and event paths run against real
// vtable calls without an external automation server.

// testPins keeps fakes alive while foreign-style code holds raw pointers to
// them.
var testPins = struct {
	sync.Mutex
	m map[unsafe.Pointer]any
}{m: make(map[unsafe.Pointer]any)}

func pin(p unsafe.Pointer, v any) {
	testPins.Lock()
	testPins.m[p] = v
	testPins.Unlock()
}

// fakeDispatch implements IDispatch. Member name resolution is driven by
// the ids map; calls are delegated to the invoke hook. qi, when set, serves
// additional interfaces.
type fakeDispatch struct {
	vtbl   *[7]uintptr
	refs   int32
	ids    map[string]int32
	invoke func(id int32, kind DispatchKind, params *DispParams, result *Variant, excep *ExceptionInfo) wingoes.HRESULT
	qi     func(iid *com.IID) (uintptr, bool)
}

var (
	fakeDispatchVtblOnce sync.Once
	fakeDispatchVtbl     [7]uintptr
)

func newFakeDispatch(ids map[string]int32, invoke func(id int32, kind DispatchKind, params *DispParams, result *Variant, excep *ExceptionInfo) wingoes.HRESULT) *fakeDispatch {
	fakeDispatchVtblOnce.Do(func() {
		fakeDispatchVtbl = [7]uintptr{
			syscall.NewCallback(fakeDispatchQI),
			syscall.NewCallback(fakeDispatchAddRef),
			syscall.NewCallback(fakeDispatchRelease),
			syscall.NewCallback(fakeDispatchGetTypeInfoCount),
			syscall.NewCallback(fakeDispatchGetTypeInfo),
			syscall.NewCallback(fakeDispatchGetIDsOfNames),
			syscall.NewCallback(fakeDispatchInvoke),
		}
	})

	fd := &fakeDispatch{vtbl: &fakeDispatchVtbl, refs: 1, ids: ids, invoke: invoke}
	pin(unsafe.Pointer(fd), fd)
	return fd
}

func (fd *fakeDispatch) abi() *IDispatchABI {
	return (*IDispatchABI)(unsafe.Pointer(fd))
}

func (fd *fakeDispatch) unknown() *com.IUnknownABI {
	return (*com.IUnknownABI)(unsafe.Pointer(fd))
}

func fakeDispatchQI(this, riid, ppv uintptr) uintptr {
	fd := (*fakeDispatch)(unsafe.Pointer(this))
	iid := (*com.IID)(unsafe.Pointer(riid))
	out := (*uintptr)(unsafe.Pointer(ppv))

	if *iid == *com.IID_IUnknown || *iid == *IID_IDispatch {
		atomic.AddInt32(&fd.refs, 1)
		*out = this
		return uintptr(uint32(hrS_OK))
	}
	if fd.qi != nil {
		if p, ok := fd.qi(iid); ok {
			*out = p
			return uintptr(uint32(hrS_OK))
		}
	}
	*out = 0
	return hrToUintptr(hrE_NOINTERFACE)
}

func fakeDispatchAddRef(this uintptr) uintptr {
	fd := (*fakeDispatch)(unsafe.Pointer(this))
	return uintptr(atomic.AddInt32(&fd.refs, 1))
}

func fakeDispatchRelease(this uintptr) uintptr {
	fd := (*fakeDispatch)(unsafe.Pointer(this))
	return uintptr(atomic.AddInt32(&fd.refs, -1))
}

func fakeDispatchGetTypeInfoCount(this, out uintptr) uintptr {
	*(*uint32)(unsafe.Pointer(out)) = 0
	return uintptr(uint32(hrS_OK))
}

func fakeDispatchGetTypeInfo(this, index, lcid, out uintptr) uintptr {
	return hrToUintptr(hrE_NOTIMPL)
}

func fakeDispatchGetIDsOfNames(this, riid, names, count, lcid, ids uintptr) uintptr {
	fd := (*fakeDispatch)(unsafe.Pointer(this))
	if count != 1 {
		return hrToUintptr(hrE_NOTIMPL)
	}

	namePtr := *(**uint16)(unsafe.Pointer(names))
	name := windows.UTF16PtrToString(namePtr)
	id, ok := fd.ids[name]
	if !ok {
		*(*int32)(unsafe.Pointer(ids)) = -1
		return hrToUintptr(hrDISP_E_UNKNOWNNAME)
	}
	*(*int32)(unsafe.Pointer(ids)) = id
	return uintptr(uint32(hrS_OK))
}

func fakeDispatchInvoke(this, id, riid, lcid, flags, params, result, excep, argErr uintptr) uintptr {
	fd := (*fakeDispatch)(unsafe.Pointer(this))
	if fd.invoke == nil {
		return hrToUintptr(hrE_NOTIMPL)
	}
	hr := fd.invoke(
		int32(id),
		DispatchKind(flags),
		(*DispParams)(unsafe.Pointer(params)),
		(*Variant)(unsafe.Pointer(result)),
		(*ExceptionInfo)(unsafe.Pointer(excep)),
	)
	return uintptr(uint32(hr))
}

// fakeEnum implements IEnumVARIANT over a fixed list of strings.
type fakeEnum struct {
	vtbl  *[7]uintptr
	refs  int32
	items []string
	pos   int
}

var (
	fakeEnumVtblOnce sync.Once
	fakeEnumVtbl     [7]uintptr
)

func newFakeEnum(items []string) *fakeEnum {
	fakeEnumVtblOnce.Do(func() {
		fakeEnumVtbl = [7]uintptr{
			syscall.NewCallback(fakeEnumQI),
			syscall.NewCallback(fakeEnumAddRef),
			syscall.NewCallback(fakeEnumRelease),
			syscall.NewCallback(fakeEnumNext),
			syscall.NewCallback(fakeEnumSkip),
			syscall.NewCallback(fakeEnumReset),
			syscall.NewCallback(fakeEnumClone),
		}
	})

	fe := &fakeEnum{vtbl: &fakeEnumVtbl, refs: 1, items: items}
	pin(unsafe.Pointer(fe), fe)
	return fe
}

func fakeEnumQI(this, riid, ppv uintptr) uintptr {
	fe := (*fakeEnum)(unsafe.Pointer(this))
	iid := (*com.IID)(unsafe.Pointer(riid))
	out := (*uintptr)(unsafe.Pointer(ppv))

	if *iid == *com.IID_IUnknown || *iid == *IID_IEnumVARIANT {
		atomic.AddInt32(&fe.refs, 1)
		*out = this
		return uintptr(uint32(hrS_OK))
	}
	*out = 0
	return hrToUintptr(hrE_NOINTERFACE)
}

func fakeEnumAddRef(this uintptr) uintptr {
	fe := (*fakeEnum)(unsafe.Pointer(this))
	return uintptr(atomic.AddInt32(&fe.refs, 1))
}

func fakeEnumRelease(this uintptr) uintptr {
	fe := (*fakeEnum)(unsafe.Pointer(this))
	return uintptr(atomic.AddInt32(&fe.refs, -1))
}

func fakeEnumNext(this, celt, out, fetched uintptr) uintptr {
	fe := (*fakeEnum)(unsafe.Pointer(this))
	dst := unsafe.Slice((*Variant)(unsafe.Pointer(out)), celt)

	var got uint32
	for int(got) < len(dst) && fe.pos < len(fe.items) {
		dst[got] = Variant{VT: VT_BSTR, Val: int64(NewBSTR(fe.items[fe.pos]))}
		fe.pos++
		got++
	}
	if fetched != 0 {
		*(*uint32)(unsafe.Pointer(fetched)) = got
	}
	if int(got) < len(dst) {
		return uintptr(uint32(hrS_FALSE))
	}
	return uintptr(uint32(hrS_OK))
}

func fakeEnumSkip(this, celt uintptr) uintptr {
	fe := (*fakeEnum)(unsafe.Pointer(this))
	fe.pos += int(celt)
	return uintptr(uint32(hrS_OK))
}

func fakeEnumReset(this uintptr) uintptr {
	fe := (*fakeEnum)(unsafe.Pointer(this))
	fe.pos = 0
	return uintptr(uint32(hrS_OK))
}

func fakeEnumClone(this, out uintptr) uintptr {
	return hrToUintptr(hrE_NOTIMPL)
}

// fakeSource is an event source: a fakeDispatch that also serves
// IConnectionPointContainer with a single connection point. fire delivers an
// event to the advised sink through its real vtable.
type fakeSource struct {
	disp      *fakeDispatch
	container *fakeContainer
	cp        *fakeConnPoint
	iid       com.IID
	sink      uintptr
	unadvised int32
}

type fakeContainer struct {
	vtbl *[5]uintptr
	src  *fakeSource
}

type fakeConnPoint struct {
	vtbl *[8]uintptr
	src  *fakeSource
}

type fakeCPEnum struct {
	vtbl *[7]uintptr
	src  *fakeSource
	pos  int32
}

var (
	fakeSourceVtblOnce sync.Once
	fakeContainerVtbl  [5]uintptr
	fakeConnPointVtbl  [8]uintptr
	fakeCPEnumVtbl     [7]uintptr
)

const fakeAdviseCookie = 7

func newFakeSource(iid com.IID) *fakeSource {
	fakeSourceVtblOnce.Do(func() {
		fakeContainerVtbl = [5]uintptr{
			syscall.NewCallback(fakeContainerQI),
			syscall.NewCallback(fakeContainerAddRef),
			syscall.NewCallback(fakeContainerRelease),
			syscall.NewCallback(fakeContainerEnumCP),
			syscall.NewCallback(fakeContainerFindCP),
		}
		fakeConnPointVtbl = [8]uintptr{
			syscall.NewCallback(fakeCPQI),
			syscall.NewCallback(fakeCPAddRef),
			syscall.NewCallback(fakeCPRelease),
			syscall.NewCallback(fakeCPGetConnectionInterface),
			syscall.NewCallback(fakeCPGetContainer),
			syscall.NewCallback(fakeCPAdvise),
			syscall.NewCallback(fakeCPUnadvise),
			syscall.NewCallback(fakeCPEnumConnections),
		}
		fakeCPEnumVtbl = [7]uintptr{
			syscall.NewCallback(fakeCPEnumQI),
			syscall.NewCallback(fakeCPEnumAddRef),
			syscall.NewCallback(fakeCPEnumRelease),
			syscall.NewCallback(fakeCPEnumNext),
			syscall.NewCallback(fakeCPEnumSkip),
			syscall.NewCallback(fakeCPEnumReset),
			syscall.NewCallback(fakeCPEnumClone),
		}
	})

	src := &fakeSource{iid: iid}
	src.container = &fakeContainer{vtbl: &fakeContainerVtbl, src: src}
	src.cp = &fakeConnPoint{vtbl: &fakeConnPointVtbl, src: src}
	src.disp = newFakeDispatch(nil, nil)
	src.disp.qi = func(iid *com.IID) (uintptr, bool) {
		if *iid == *IID_IConnectionPointContainer {
			atomic.AddInt32(&src.disp.refs, 1)
			pin(unsafe.Pointer(src.container), src)
			return uintptr(unsafe.Pointer(src.container)), true
		}
		return 0, false
	}
	pin(unsafe.Pointer(src.cp), src)
	return src
}

// fire invokes the advised sink's Invoke slot with args marshaled in wire
// order. It returns the sink's result variant, owned by the caller.
func (src *fakeSource) fire(id int32, args ...any) (*Variant, wingoes.HRESULT) {
	sink := (*IDispatchABI)(unsafe.Pointer(src.sink))

	frame := make([]Variant, len(args))
	defer func() {
		for i := range frame {
			frame[i].Clear()
		}
	}()
	for i, a := range args {
		av, err := NewVariant(a)
		if err != nil {
			panic(err)
		}
		frame[len(args)-1-i] = *av
	}

	var params DispParams
	if len(frame) > 0 {
		params.Args = &frame[0]
		params.ArgCount = uint32(len(frame))
	}

	result := new(Variant)
	var excep ExceptionInfo
	var argErr uint32
	hr := sink.Invoke(id, defaultLCID, CallMethod, &params, result, &excep, &argErr)
	return result, hr
}

func fakeContainerQI(this, riid, ppv uintptr) uintptr {
	fc := (*fakeContainer)(unsafe.Pointer(this))
	iid := (*com.IID)(unsafe.Pointer(riid))
	out := (*uintptr)(unsafe.Pointer(ppv))

	switch *iid {
	case *IID_IConnectionPointContainer:
		atomic.AddInt32(&fc.src.disp.refs, 1)
		*out = this
		return uintptr(uint32(hrS_OK))
	case *com.IID_IUnknown, *IID_IDispatch:
		atomic.AddInt32(&fc.src.disp.refs, 1)
		*out = uintptr(unsafe.Pointer(fc.src.disp))
		return uintptr(uint32(hrS_OK))
	}
	*out = 0
	return hrToUintptr(hrE_NOINTERFACE)
}

func fakeContainerAddRef(this uintptr) uintptr {
	fc := (*fakeContainer)(unsafe.Pointer(this))
	return uintptr(atomic.AddInt32(&fc.src.disp.refs, 1))
}

func fakeContainerRelease(this uintptr) uintptr {
	fc := (*fakeContainer)(unsafe.Pointer(this))
	return uintptr(atomic.AddInt32(&fc.src.disp.refs, -1))
}

func fakeContainerEnumCP(this, out uintptr) uintptr {
	fc := (*fakeContainer)(unsafe.Pointer(this))
	enum := &fakeCPEnum{vtbl: &fakeCPEnumVtbl, src: fc.src}
	pin(unsafe.Pointer(enum), enum)
	atomic.AddInt32(&fc.src.disp.refs, 1)
	*(*uintptr)(unsafe.Pointer(out)) = uintptr(unsafe.Pointer(enum))
	return uintptr(uint32(hrS_OK))
}

func fakeContainerFindCP(this, riid, out uintptr) uintptr {
	fc := (*fakeContainer)(unsafe.Pointer(this))
	iid := (*com.IID)(unsafe.Pointer(riid))
	if *iid != fc.src.iid {
		*(*uintptr)(unsafe.Pointer(out)) = 0
		return hrToUintptr(hrE_NOINTERFACE)
	}
	atomic.AddInt32(&fc.src.disp.refs, 1)
	*(*uintptr)(unsafe.Pointer(out)) = uintptr(unsafe.Pointer(fc.src.cp))
	return uintptr(uint32(hrS_OK))
}

func fakeCPQI(this, riid, ppv uintptr) uintptr {
	cp := (*fakeConnPoint)(unsafe.Pointer(this))
	iid := (*com.IID)(unsafe.Pointer(riid))
	out := (*uintptr)(unsafe.Pointer(ppv))

	if *iid == *com.IID_IUnknown || *iid == *IID_IConnectionPoint {
		atomic.AddInt32(&cp.src.disp.refs, 1)
		*out = this
		return uintptr(uint32(hrS_OK))
	}
	*out = 0
	return hrToUintptr(hrE_NOINTERFACE)
}

func fakeCPAddRef(this uintptr) uintptr {
	cp := (*fakeConnPoint)(unsafe.Pointer(this))
	return uintptr(atomic.AddInt32(&cp.src.disp.refs, 1))
}

func fakeCPRelease(this uintptr) uintptr {
	cp := (*fakeConnPoint)(unsafe.Pointer(this))
	return uintptr(atomic.AddInt32(&cp.src.disp.refs, -1))
}

func fakeCPGetConnectionInterface(this, out uintptr) uintptr {
	cp := (*fakeConnPoint)(unsafe.Pointer(this))
	*(*com.IID)(unsafe.Pointer(out)) = cp.src.iid
	return uintptr(uint32(hrS_OK))
}

func fakeCPGetContainer(this, out uintptr) uintptr {
	return hrToUintptr(hrE_NOTIMPL)
}

func fakeCPAdvise(this, sink, cookie uintptr) uintptr {
	cp := (*fakeConnPoint)(unsafe.Pointer(this))
	if cp.src.sink != 0 {
		return hrToUintptr(hrE_FAIL)
	}
	(*com.IUnknownABI)(unsafe.Pointer(sink)).AddRef()
	cp.src.sink = sink
	*(*uint32)(unsafe.Pointer(cookie)) = fakeAdviseCookie
	return uintptr(uint32(hrS_OK))
}

func fakeCPUnadvise(this, cookie uintptr) uintptr {
	cp := (*fakeConnPoint)(unsafe.Pointer(this))
	if cookie != fakeAdviseCookie || cp.src.sink == 0 {
		return hrToUintptr(hrE_FAIL)
	}
	(*com.IUnknownABI)(unsafe.Pointer(cp.src.sink)).Release()
	cp.src.sink = 0
	atomic.AddInt32(&cp.src.unadvised, 1)
	return uintptr(uint32(hrS_OK))
}

func fakeCPEnumConnections(this, out uintptr) uintptr {
	return hrToUintptr(hrE_NOTIMPL)
}

func fakeCPEnumQI(this, riid, ppv uintptr) uintptr {
	*(*uintptr)(unsafe.Pointer(ppv)) = 0
	return hrToUintptr(hrE_NOINTERFACE)
}

func fakeCPEnumAddRef(this uintptr) uintptr {
	e := (*fakeCPEnum)(unsafe.Pointer(this))
	return uintptr(atomic.AddInt32(&e.src.disp.refs, 1))
}

func fakeCPEnumRelease(this uintptr) uintptr {
	e := (*fakeCPEnum)(unsafe.Pointer(this))
	return uintptr(atomic.AddInt32(&e.src.disp.refs, -1))
}

func fakeCPEnumNext(this, celt, out, fetched uintptr) uintptr {
	e := (*fakeCPEnum)(unsafe.Pointer(this))
	if e.pos > 0 || celt == 0 {
		if fetched != 0 {
			*(*uint32)(unsafe.Pointer(fetched)) = 0
		}
		return uintptr(uint32(hrS_FALSE))
	}
	e.pos = 1
	atomic.AddInt32(&e.src.disp.refs, 1)
	*(*uintptr)(unsafe.Pointer(out)) = uintptr(unsafe.Pointer(e.src.cp))
	if fetched != 0 {
		*(*uint32)(unsafe.Pointer(fetched)) = 1
	}
	if celt > 1 {
		return uintptr(uint32(hrS_FALSE))
	}
	return uintptr(uint32(hrS_OK))
}

func fakeCPEnumSkip(this, celt uintptr) uintptr {
	return hrToUintptr(hrE_NOTIMPL)
}

func fakeCPEnumReset(this uintptr) uintptr {
	e := (*fakeCPEnum)(unsafe.Pointer(this))
	e.pos = 0
	return uintptr(uint32(hrS_OK))
}

func fakeCPEnumClone(this, out uintptr) uintptr {
	return hrToUintptr(hrE_NOTIMPL)
}
