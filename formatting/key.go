// Copyright 2026 The HuggingFace Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package formatting

import (
	"fmt"
	"reflect"

	coretensor "cogentcore.org/lab/tensor"
	gtensor "gorgonia.org/tensor"
)

// Key identifies a row, a set of rows, or a column of a table.
// The set of implementations is closed: Index, Slice, Range, Indices
// and ColumnName. Anything else passed to QueryTable is rejected with
// ErrInvalidKey.
type Key interface {
	isKey()
}

// Index selects a single row. Negative values count from the end of
// the table, so Index(-1) is the last row. A resolved address outside
// the table's row range is an ErrOutOfRange.
type Index int

// Slice selects a contiguous or strided run of rows with sequence
// semantics: endpoints are clamped to the table bounds and never
// error, so an empty result is valid. Nil endpoints mean "from the
// start", "to the end" and "step 1" respectively. The zero value
// selects every row.
type Slice struct {
	Start *int
	Stop  *int
	Step  *int
}

// Range selects the rows visited by an arithmetic progression with
// array-library semantics: every address the progression produces
// must resolve inside the table's row range, otherwise the query
// fails with ErrOutOfRange. An empty progression is always valid.
type Range struct {
	Start int
	Stop  int
	Step  int
}

// Indices selects rows at an explicit, ordered list of addresses.
// Duplicates are allowed and order is preserved. Each element is
// independently negative-resolvable; any element outside the table's
// row range is an ErrOutOfRange. An empty list selects zero rows.
type Indices []int

// ColumnName selects a single column across all rows. An unknown name
// is an ErrColumnNotFound.
type ColumnName string

func (Index) isKey()      {}
func (Slice) isKey()      {}
func (Range) isKey()      {}
func (Indices) isKey()    {}
func (ColumnName) isKey() {}

// NewSlice returns a Slice from start (inclusive) to stop (exclusive)
// with step 1.
func NewSlice(start, stop int) Slice {
	return Slice{Start: &start, Stop: &stop}
}

// WithStep returns a copy of the slice with the given step.
func (s Slice) WithStep(step int) Slice {
	s.Step = &step
	return s
}

// NewRange returns a Range from start (inclusive) to stop (exclusive)
// with step 1.
func NewRange(start, stop int) Range {
	return Range{Start: start, Stop: stop, Step: 1}
}

// WithStep returns a copy of the range with the given step.
func (r Range) WithStep(step int) Range {
	r.Step = step
	return r
}

// classifyKey maps an arbitrary selector value to one of the five Key
// kinds. Classification inspects only the selector's type and declared
// size, never its elements, so lazy or unbounded inputs (channels,
// iterator funcs) fail fast without being consumed.
func classifyKey(key any) (Key, error) {
	switch k := key.(type) {
	case Index, Slice, Range, Indices, ColumnName:
		return k.(Key), nil
	case int:
		return Index(k), nil
	case int8:
		return Index(k), nil
	case int16:
		return Index(k), nil
	case int32:
		return Index(k), nil
	case int64:
		return Index(k), nil
	case uint:
		return Index(k), nil
	case uint8:
		return Index(k), nil
	case uint16:
		return Index(k), nil
	case uint32:
		return Index(k), nil
	case uint64:
		return Index(k), nil
	case string:
		return ColumnName(k), nil
	case []int:
		return Indices(k), nil
	case []int32:
		ix := make(Indices, len(k))
		for i, v := range k {
			ix[i] = int(v)
		}
		return ix, nil
	case []int64:
		ix := make(Indices, len(k))
		for i, v := range k {
			ix[i] = int(v)
		}
		return ix, nil
	case *gtensor.Dense:
		return indicesFromDense(k)
	case coretensor.Tensor:
		return indicesFromTensor(k)
	default:
		return nil, fmt.Errorf("%w: %T is not a supported key", ErrInvalidKey, key)
	}
}

// indicesFromDense converts a fixed-size integer array into Indices.
func indicesFromDense(d *gtensor.Dense) (Indices, error) {
	switch data := d.Data().(type) {
	case []int:
		return Indices(data), nil
	case []int32:
		ix := make(Indices, len(data))
		for i, v := range data {
			ix[i] = int(v)
		}
		return ix, nil
	case []int64:
		ix := make(Indices, len(data))
		for i, v := range data {
			ix[i] = int(v)
		}
		return ix, nil
	case int:
		return Indices{data}, nil
	default:
		return nil, fmt.Errorf("%w: array key must have an integer dtype, got %v", ErrInvalidKey, d.Dtype())
	}
}

// indicesFromTensor converts a sized integer tensor into Indices.
func indicesFromTensor(t coretensor.Tensor) (Indices, error) {
	switch t.DataType() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
	default:
		return nil, fmt.Errorf("%w: tensor key must have an integer kind, got %v", ErrInvalidKey, t.DataType())
	}
	ix := make(Indices, t.Len())
	for i := range ix {
		ix[i] = t.Int1D(i)
	}
	return ix, nil
}

// resolveSlice normalizes a slice against a table of n rows using
// sequence semantics: nil endpoints are defaulted, negative endpoints
// are resolved by adding n, and everything is clamped so the result is
// never an error. It returns either contiguous [start, stop) bounds
// (step 1) or the explicit index list of a strided walk.
func resolveSlice(s Slice, n int) (start, stop int, strided []int, err error) {
	step := 1
	if s.Step != nil {
		step = *s.Step
	}
	if step == 0 {
		return 0, 0, nil, fmt.Errorf("%w: slice step cannot be zero", ErrInvalidKey)
	}

	if step > 0 {
		start = clampEndpoint(s.Start, 0, n)
		stop = clampEndpoint(s.Stop, n, n)
		if stop < start {
			stop = start
		}
		if step == 1 {
			return start, stop, nil, nil
		}
		for i := start; i < stop; i += step {
			strided = append(strided, i)
		}
		return 0, 0, strided, nil
	}

	// Negative step walks backwards; valid addresses live in [stop+1, start].
	first := n - 1
	if s.Start != nil {
		first = *s.Start
		if first < 0 {
			first += n
		}
		if first >= n {
			first = n - 1
		}
	}
	last := -1
	if s.Stop != nil {
		last = *s.Stop
		if last < 0 {
			last += n
		}
		if last < -1 {
			last = -1
		}
	}
	for i := first; i > last && i >= 0; i += step {
		strided = append(strided, i)
	}
	return 0, 0, strided, nil
}

// clampEndpoint resolves an optional slice endpoint against n rows,
// substituting def when absent.
func clampEndpoint(p *int, def, n int) int {
	if p == nil {
		return def
	}
	v := *p
	if v < 0 {
		v += n
	}
	if v < 0 {
		return 0
	}
	if v > n {
		return n
	}
	return v
}

// enumerate returns the raw addresses the progression visits, before
// any negative resolution. The result may be empty.
func (r Range) enumerate() ([]int, error) {
	if r.Step == 0 {
		return nil, fmt.Errorf("%w: range step cannot be zero", ErrInvalidKey)
	}
	var out []int
	if r.Step > 0 {
		for v := r.Start; v < r.Stop; v += r.Step {
			out = append(out, v)
		}
	} else {
		for v := r.Start; v > r.Stop; v += r.Step {
			out = append(out, v)
		}
	}
	return out, nil
}

// resolveIndices resolves every address against n rows, adding n to
// negative entries, and fails eagerly on the first address that lands
// outside [0, n).
func resolveIndices(raw []int, n int) ([]int, error) {
	resolved := make([]int, len(raw))
	for i, v := range raw {
		r := v
		if r < 0 {
			r += n
		}
		if r < 0 || r >= n {
			return nil, fmt.Errorf("%w: index %d is out of bounds for a table with %d rows", ErrOutOfRange, v, n)
		}
		resolved[i] = r
	}
	return resolved, nil
}
