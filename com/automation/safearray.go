// Copyright (c) The olegoes Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build windows

package automation

import (
	"fmt"
	"unsafe"

	"github.com/dblohm7/wingoes"
)

// maxArrayRank is the deepest nesting the conversion engine will marshal.
const maxArrayRank = 3

// SafeArrayBound describes one dimension of a SAFEARRAY.
type SafeArrayBound struct {
	Elements   uint32
	LowerBound int32
}

// SafeArray is the fixed header of a SAFEARRAY descriptor. The per-dimension
// bounds follow the header in memory; they must be read through the
// SafeArray* imports, never directly.
type SafeArray struct {
	Dimensions   uint16
	FeaturesFlag uint16
	ElementsSize uint32
	LocksAmount  uint32
	Data         uintptr
}

// safeArrayFromNested marshals a nested []any into a freshly allocated
// VT_VARIANT SAFEARRAY. Each dimension's extent is the longest sequence
// found at that depth; cells shorter rows never reach stay VT_EMPTY, which
// is how ragged input is padded.
func safeArrayFromNested(value []any) (*SafeArray, error) {
	rank, err := measureNested(value)
	if err != nil {
		return nil, err
	}
	if rank > maxArrayRank {
		return nil, &ConversionError{
			From: fmt.Sprintf("depth-%d nested sequence", rank),
			To:   "SAFEARRAY",
		}
	}

	extents := make([]int32, rank)
	nestedExtents(value, rank, 0, extents)

	bounds := make([]SafeArrayBound, rank)
	for i, n := range extents {
		bounds[i] = SafeArrayBound{Elements: uint32(n)}
	}

	sa := safeArrayCreate(VT_VARIANT, uint32(rank), &bounds[0])
	if sa == nil {
		return nil, &ConversionError{
			From:  "[]any",
			To:    "SAFEARRAY",
			Cause: wingoes.ErrorFromHRESULT(hrE_OUTOFMEMORY),
		}
	}

	if err := fillSafeArray(sa, value, rank, 0, make([]int32, rank)); err != nil {
		safeArrayDestroy(sa)
		return nil, err
	}
	return sa, nil
}

// measureNested reports the nesting depth of value and validates that every
// level nests uniformly: a sequence may hold scalars or sub-sequences, not
// both, and sibling sub-sequences must reach the same depth.
func measureNested(value []any) (int, error) {
	sawScalar := false
	childRank := 0
	for _, elem := range value {
		sub, ok := elem.([]any)
		if !ok {
			sawScalar = true
			continue
		}
		r, err := measureNested(sub)
		if err != nil {
			return 0, err
		}
		if childRank == 0 {
			childRank = r
		} else if r != childRank {
			return 0, &ConversionError{
				From:  "unevenly nested sequence",
				To:    "SAFEARRAY",
				Cause: fmt.Errorf("sibling depths %d and %d", childRank, r),
			}
		}
	}
	if sawScalar && childRank > 0 {
		return 0, &ConversionError{
			From:  "unevenly nested sequence",
			To:    "SAFEARRAY",
			Cause: fmt.Errorf("scalars mixed with depth-%d sequences", childRank),
		}
	}
	return childRank + 1, nil
}

func nestedExtents(value []any, rank, dim int, extents []int32) {
	if int32(len(value)) > extents[dim] {
		extents[dim] = int32(len(value))
	}
	if dim+1 == rank {
		return
	}
	for _, elem := range value {
		nestedExtents(elem.([]any), rank, dim+1, extents)
	}
}

// fillSafeArray writes value's cells into sa. Element indices run
// right-to-left: indices[0] addresses the innermost dimension.
func fillSafeArray(sa *SafeArray, value []any, rank, dim int, indices []int32) error {
	for i, elem := range value {
		indices[rank-1-dim] = int32(i)
		if dim+1 < rank {
			if err := fillSafeArray(sa, elem.([]any), rank, dim+1, indices); err != nil {
				return err
			}
			continue
		}
		ev, err := NewVariant(elem)
		if err != nil {
			return err
		}
		hr := safeArrayPutElement(sa, &indices[0], unsafe.Pointer(ev))
		ev.Clear()
		if hr.Failed() {
			return wingoes.ErrorFromHRESULT(hr)
		}
	}
	return nil
}

// arrayToNested reconstructs a SAFEARRAY as a nested []any. wantRank must
// match the descriptor's dimensionality; a mismatch is a ConversionError,
// not a truncation.
func arrayToNested(sa *SafeArray, wantRank int) ([]any, error) {
	if sa == nil {
		return nil, nil
	}

	dims := int(safeArrayGetDim(sa))
	if dims != wantRank {
		return nil, &ConversionError{
			From: fmt.Sprintf("%d-dimensional array", dims),
			To:   fmt.Sprintf("%d-dimensional sequence", wantRank),
		}
	}

	elemVT := VT_VARIANT
	if hr := safeArrayGetVartype(sa, &elemVT); hr.Failed() {
		elemVT = VT_VARIANT
	}

	lbounds := make([]int32, dims)
	counts := make([]int32, dims)
	for d := 0; d < dims; d++ {
		var lb, ub int32
		if hr := safeArrayGetLBound(sa, uint32(d+1), &lb); hr.Failed() {
			return nil, wingoes.ErrorFromHRESULT(hr)
		}
		if hr := safeArrayGetUBound(sa, uint32(d+1), &ub); hr.Failed() {
			return nil, wingoes.ErrorFromHRESULT(hr)
		}
		lbounds[d] = lb
		counts[d] = ub - lb + 1
	}

	return readArrayDim(sa, elemVT, 0, dims, lbounds, counts, make([]int32, dims))
}

func readArrayDim(sa *SafeArray, elemVT VT, dim, rank int, lbounds, counts, indices []int32) ([]any, error) {
	out := make([]any, 0, counts[dim])
	for i := int32(0); i < counts[dim]; i++ {
		indices[rank-1-dim] = lbounds[dim] + i
		if dim+1 < rank {
			sub, err := readArrayDim(sa, elemVT, dim+1, rank, lbounds, counts, indices)
			if err != nil {
				return nil, err
			}
			out = append(out, sub)
			continue
		}
		val, err := readArrayElement(sa, elemVT, indices)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return out, nil
}

// readArrayElement copies one cell out of sa and converts it to its natural
// Go value. Non-variant element types are rewrapped in a variant carrying
// the array's element tag so the scalar conversion paths apply uniformly.
func readArrayElement(sa *SafeArray, elemVT VT, indices []int32) (any, error) {
	var elem Variant
	if elemVT == VT_VARIANT {
		if hr := safeArrayGetElement(sa, &indices[0], unsafe.Pointer(&elem)); hr.Failed() {
			return nil, wingoes.ErrorFromHRESULT(hr)
		}
	} else {
		var cell int64
		if hr := safeArrayGetElement(sa, &indices[0], unsafe.Pointer(&cell)); hr.Failed() {
			return nil, wingoes.ErrorFromHRESULT(hr)
		}
		elem = Variant{VT: elemVT, Val: cell}
	}
	defer elem.Clear()
	return elem.Value()
}
