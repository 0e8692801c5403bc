// Copyright (c) The olegoes Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package automation

import (
	"fmt"
	"math"
	"time"
	"unsafe"

	"github.com/dblohm7/wingoes"
	"golang.org/x/exp/constraints"
	"golang.org/x/sys/windows"

	"github.com/olegoes/olegoes/com"
)

const intSize = 32 << (^uint(0) >> 63)

// NewVariant converts a native Go value into a freshly owned Variant. The
// conversion is total for every supported type; it fails only for nested
// sequences deeper than three dimensions and for timestamps the platform
// rejects. Pointer-to-scalar values become by-reference variants aliasing
// the pointee with no copy; the caller must keep the pointee alive for as
// long as the variant is in use.
func NewVariant(value any) (*Variant, error) {
	v := new(Variant)

	switch x := value.(type) {
	case nil:
		v.VT = VT_NULL
	case *Variant:
		return x.Copy()
	case Variant:
		return x.Copy()
	case bool:
		v.VT = VT_BOOL
		if x {
			v.Val = -1
		}
	case int:
		if intSize == 64 {
			v.VT = VT_I8
		} else {
			v.VT = VT_I4
		}
		v.Val = int64(x)
	case int8:
		v.VT = VT_I1
		v.Val = int64(x)
	case int16:
		v.VT = VT_I2
		v.Val = int64(x)
	case int32:
		v.VT = VT_I4
		v.Val = int64(x)
	case int64:
		v.VT = VT_I8
		v.Val = x
	case uint:
		if intSize == 64 {
			v.VT = VT_UI8
		} else {
			v.VT = VT_UI4
		}
		v.Val = int64(x)
	case uint8:
		v.VT = VT_UI1
		v.Val = int64(x)
	case uint16:
		v.VT = VT_UI2
		v.Val = int64(x)
	case uint32:
		v.VT = VT_UI4
		v.Val = int64(x)
	case uint64:
		v.VT = VT_UI8
		v.Val = int64(x)
	case uintptr:
		v.VT = VT_PTR
		v.Val = int64(x)
	case unsafe.Pointer:
		v.VT = VT_PTR
		v.Val = int64(uintptr(x))
	case float32:
		v.VT = VT_R4
		v.Val = int64(math.Float32bits(x))
	case float64:
		v.VT = VT_R8
		v.Val = int64(math.Float64bits(x))
	case string:
		v.VT = VT_BSTR
		v.Val = int64(NewBSTR(x))
	case BSTR:
		v.VT = VT_BSTR
		v.Val = int64(x.Clone())
	case time.Time:
		d, err := variantDateFromTime(x)
		if err != nil {
			return nil, err
		}
		v.VT = VT_DATE
		v.Val = int64(math.Float64bits(d))
	case *Object:
		v.VT = VT_DISPATCH
		if x != nil && x.disp != nil {
			x.disp.AddRef()
			v.Val = int64(uintptr(unsafe.Pointer(x.disp)))
		}
	case *IDispatchABI:
		v.VT = VT_DISPATCH
		if x != nil {
			x.AddRef()
			v.Val = int64(uintptr(unsafe.Pointer(x)))
		}
	case *com.IUnknownABI:
		v.VT = VT_UNKNOWN
		if x != nil {
			x.AddRef()
			v.Val = int64(uintptr(unsafe.Pointer(x)))
		}
	case *int8:
		v.VT = VT_BYREF | VT_I1
		v.Val = int64(uintptr(unsafe.Pointer(x)))
	case *int16:
		v.VT = VT_BYREF | VT_I2
		v.Val = int64(uintptr(unsafe.Pointer(x)))
	case *int32:
		v.VT = VT_BYREF | VT_I4
		v.Val = int64(uintptr(unsafe.Pointer(x)))
	case *int64:
		v.VT = VT_BYREF | VT_I8
		v.Val = int64(uintptr(unsafe.Pointer(x)))
	case *uint8:
		v.VT = VT_BYREF | VT_UI1
		v.Val = int64(uintptr(unsafe.Pointer(x)))
	case *uint16:
		v.VT = VT_BYREF | VT_UI2
		v.Val = int64(uintptr(unsafe.Pointer(x)))
	case *uint32:
		v.VT = VT_BYREF | VT_UI4
		v.Val = int64(uintptr(unsafe.Pointer(x)))
	case *uint64:
		v.VT = VT_BYREF | VT_UI8
		v.Val = int64(uintptr(unsafe.Pointer(x)))
	case *float32:
		v.VT = VT_BYREF | VT_R4
		v.Val = int64(uintptr(unsafe.Pointer(x)))
	case *float64:
		v.VT = VT_BYREF | VT_R8
		v.Val = int64(uintptr(unsafe.Pointer(x)))
	case []any:
		return arrayVariant(x)
	case [][]any:
		outer := make([]any, len(x))
		for i, row := range x {
			outer[i] = row
		}
		return arrayVariant(outer)
	case [][][]any:
		outer := make([]any, len(x))
		for i, plane := range x {
			rows := make([]any, len(plane))
			for j, row := range plane {
				rows[j] = row
			}
			outer[i] = rows
		}
		return arrayVariant(outer)
	default:
		return nil, &ConversionError{From: fmt.Sprintf("%T", value), To: "VARIANT"}
	}

	return v, nil
}

func arrayVariant(value []any) (*Variant, error) {
	sa, err := safeArrayFromNested(value)
	if err != nil {
		return nil, err
	}
	return &Variant{
		VT:  VT_ARRAY | VT_VARIANT,
		Val: int64(uintptr(unsafe.Pointer(sa))),
	}, nil
}

// As coerces v into the Go type T. When v's tag already matches T the
// payload is copied directly; otherwise the platform coercion is invoked. A
// VT_EMPTY or VT_NULL variant converts to T's zero value with no error.
func As[T any](v *Variant) (T, error) {
	var out T
	if v == nil || v.IsEmpty() {
		return out, nil
	}

	var err error
	switch p := any(&out).(type) {
	case *string:
		*p, err = variantString(v)
	case *bool:
		*p, err = variantBool(v)
	case *int:
		if intSize == 64 {
			var n int64
			n, err = variantInteger[int64](v, VT_I8)
			*p = int(n)
		} else {
			var n int32
			n, err = variantInteger[int32](v, VT_I4)
			*p = int(n)
		}
	case *int8:
		*p, err = variantInteger[int8](v, VT_I1)
	case *int16:
		*p, err = variantInteger[int16](v, VT_I2)
	case *int32:
		*p, err = variantInteger[int32](v, VT_I4)
	case *int64:
		*p, err = variantInteger[int64](v, VT_I8)
	case *uint:
		if intSize == 64 {
			var n uint64
			n, err = variantInteger[uint64](v, VT_UI8)
			*p = uint(n)
		} else {
			var n uint32
			n, err = variantInteger[uint32](v, VT_UI4)
			*p = uint(n)
		}
	case *uint8:
		*p, err = variantInteger[uint8](v, VT_UI1)
	case *uint16:
		*p, err = variantInteger[uint16](v, VT_UI2)
	case *uint32:
		*p, err = variantInteger[uint32](v, VT_UI4)
	case *uint64:
		*p, err = variantInteger[uint64](v, VT_UI8)
	case *uintptr:
		*p, err = variantPointer(v)
	case *float32:
		*p, err = variantFloat[float32](v, VT_R4)
	case *float64:
		*p, err = variantFloat[float64](v, VT_R8)
	case *time.Time:
		*p, err = variantDate(v)
	case **Object:
		*p, err = AsObject(v)
	case *[]any:
		*p, err = variantArray(v, 1)
	case *[][]any:
		var flat []any
		flat, err = variantArray(v, 2)
		if err == nil {
			rows := make([][]any, len(flat))
			for i, row := range flat {
				rows[i] = row.([]any)
			}
			*p = rows
		}
	case *[][][]any:
		var flat []any
		flat, err = variantArray(v, 3)
		if err == nil {
			cube := make([][][]any, len(flat))
			for i, plane := range flat {
				rows := plane.([]any)
				cube[i] = make([][]any, len(rows))
				for j, row := range rows {
					cube[i][j] = row.([]any)
				}
			}
			*p = cube
		}
	case *any:
		*p, err = v.Value()
	default:
		return out, &ConversionError{From: v.VT.String(), To: fmt.Sprintf("%T", out)}
	}

	return out, err
}

// AsObject extracts an owned object reference from v. The caller is
// responsible for closing the result.
func AsObject(v *Variant) (*Object, error) {
	switch v.VT {
	case VT_DISPATCH:
		d := v.dispatch()
		if d == nil {
			return nil, &ConversionError{From: "VT_DISPATCH", To: "*Object", Cause: wingoes.ErrorFromHRESULT(hrE_POINTER)}
		}
		d.AddRef()
		return &Object{disp: d}, nil
	case VT_UNKNOWN:
		u := v.unknown()
		if u == nil {
			return nil, &ConversionError{From: "VT_UNKNOWN", To: "*Object", Cause: wingoes.ErrorFromHRESULT(hrE_POINTER)}
		}
		return WrapObject(u)
	default:
		c, err := v.coerce(VT_DISPATCH)
		if err != nil {
			return nil, err
		}
		defer c.Clear()
		return AsObject(c)
	}
}

/// Value converts v to its natural Go representation: nil for empty, the
// matching scalar type for scalar tags, string for VT_BSTR, *Object for
// VT_DISPATCH, and nested []any for arrays. By-reference variants are
// dereferenced.
func (v *Variant) Value() (any, error) {
	vt := v.VT

	if vt&VT_ARRAY != 0 {
		sa := v.safeArray()
		if sa == nil {
			return nil, nil
		}
		return arrayToNested(sa, int(safeArrayGetDim(sa)))
	}

	if vt&VT_BYREF != 0 {
		return v.byrefValue()
	}

	switch vt {
	case VT_EMPTY, VT_NULL:
		return nil, nil
	case VT_BOOL:
		return v.Val&0xFFFF != 0, nil
	case VT_I1:
		return int8(v.Val), nil
	case VT_I2:
		return int16(v.Val), nil
	case VT_I4, VT_INT:
		return int32(v.Val), nil
	case VT_I8:
		return v.Val, nil
	case VT_UI1:
		return uint8(v.Val), nil
	case VT_UI2:
		return uint16(v.Val), nil
	case VT_UI4, VT_UINT:
		return uint32(v.Val), nil
	case VT_UI8:
		return uint64(v.Val), nil
	case VT_R4:
		return math.Float32frombits(uint32(v.Val)), nil
	case VT_R8:
		return math.Float64frombits(uint64(v.Val)), nil
	case VT_DATE:
		return timeFromVariantDate(math.Float64frombits(uint64(v.Val))), nil
	case VT_BSTR:
		return v.bstr().String(), nil
	case VT_DISPATCH:
		d := v.dispatch()
		if d == nil {
			return nil, nil
		}
		d.AddRef()
		return &Object{disp: d}, nil
	case VT_UNKNOWN:
		u := v.unknown()
		if u == nil {
			return nil, nil
		}
		u.AddRef()
		return u, nil
	case VT_ERROR, VT_HRESULT:
		return wingoes.HRESULT(int32(v.Val)), nil
	case VT_PTR:
		return uintptr(v.Val), nil
	default:
		return nil, &ConversionError{From: vt.String(), To: "any"}
	}
}

func (v *Variant) byrefValue() (any, error) {
	p := unsafe.Pointer(uintptr(v.Val))
	if p == nil {
		return nil, nil
	}

	switch v.VT & VT_TYPEMASK {
	case VT_BOOL:
		return *(*int16)(p) != 0, nil
	case VT_I1:
		return *(*int8)(p), nil
	case VT_I2:
		return *(*int16)(p), nil
	case VT_I4, VT_INT:
		return *(*int32)(p), nil
	case VT_I8:
		return *(*int64)(p), nil
	case VT_UI1:
		return *(*uint8)(p), nil
	case VT_UI2:
		return *(*uint16)(p), nil
	case VT_UI4, VT_UINT:
		return *(*uint32)(p), nil
	case VT_UI8:
		return *(*uint64)(p), nil
	case VT_R4:
		return *(*float32)(p), nil
	case VT_R8:
		return *(*float64)(p), nil
	case VT_DATE:
		return timeFromVariantDate(*(*float64)(p)), nil
	case VT_BSTR:
		return (*(*BSTR)(p)).String(), nil
	case VT_VARIANT:
		return (*Variant)(p).Value()
	default:
		return nil, &ConversionError{From: v.VT.String(), To: "any"}
	}
}

func variantInteger[T constraints.Integer](v *Variant, want VT) (T, error) {
	if v.VT == want {
		return T(v.intBits(want)), nil
	}
	c, err := v.coerce(want)
	if err != nil {
		var zero T
		return zero, err
	}
	defer c.Clear()
	return T(c.intBits(want)), nil
}

func variantFloat[T constraints.Float](v *Variant, want VT) (T, error) {
	vv := v
	if v.VT != want {
		c, err := v.coerce(want)
		if err != nil {
			var zero T
			return zero, err
		}
		defer c.Clear()
		vv = c
	}
	if want == VT_R4 {
		return T(math.Float32frombits(uint32(vv.Val))), nil
	}
	return T(math.Float64frombits(uint64(vv.Val))), nil
}

func variantString(v *Variant) (string, error) {
	if v.VT == VT_BSTR {
		return v.bstr().String(), nil
	}
	c, err := v.coerce(VT_BSTR)
	if err != nil {
		return "", err
	}
	defer c.Clear()
	return c.bstr().String(), nil
}

func variantBool(v *Variant) (bool, error) {
	vv := v
	if v.VT != VT_BOOL {
		c, err := v.coerce(VT_BOOL)
		if err != nil {
			return false, err
		}
		defer c.Clear()
		vv = c
	}
	return vv.Val&0xFFFF != 0, nil
}

func variantPointer(v *Variant) (uintptr, error) {
	if v.VT == VT_PTR || v.VT&VT_BYREF != 0 {
		return uintptr(v.Val), nil
	}
	return 0, &ConversionError{From: v.VT.String(), To: "uintptr"}
}

func variantDate(v *Variant) (time.Time, error) {
	vv := v
	if v.VT != VT_DATE {
		c, err := v.coerce(VT_DATE)
		if err != nil {
			return time.Time{}, err
		}
		defer c.Clear()
		vv = c
	}
	return timeFromVariantDate(math.Float64frombits(uint64(vv.Val))), nil
}

func variantArray(v *Variant, wantRank int) ([]any, error) {
	if v.VT&VT_ARRAY == 0 {
		return nil, &ConversionError{From: v.VT.String(), To: fmt.Sprintf("%d-dimensional sequence", wantRank)}
	}
	sa := v.safeArray()
	if sa == nil {
		return nil, nil
	}
	return arrayToNested(sa, wantRank)
}

// variantDateFromTime encodes t's wall-clock fields as an OLE DATE. The
// timezone is discarded; DATE carries no zone information.
func variantDateFromTime(t time.Time) (float64, error) {
	st := windows.Systemtime{
		Year:         uint16(t.Year()),
		Month:        uint16(t.Month()),
		Day:          uint16(t.Day()),
		Hour:         uint16(t.Hour()),
		Minute:       uint16(t.Minute()),
		Second:       uint16(t.Second()),
		Milliseconds: uint16(t.Nanosecond() / 1e6),
	}
	var d float64
	if !systemTimeToVariantTime(&st, &d) {
		return 0, &ConversionError{From: "time.Time", To: "VT_DATE"}
	}
	return d, nil
}

// timeFromVariantDate decodes an OLE DATE: whole days since 1899-12-30 in
// the integer part, time of day in the magnitude of the fraction. Decoded
// here rather than through VariantTimeToSystemTime because that import takes
// its DATE argument by value in a floating-point register, which
// syscall.SyscallN cannot populate.
func timeFromVariantDate(d float64) time.Time {
	day, frac := math.Modf(d)
	ms := math.Round(math.Abs(frac) * 86400 * 1000)
	base := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.Local)
	return base.AddDate(0, 0, int(day)).Add(time.Duration(ms) * time.Millisecond)
}
