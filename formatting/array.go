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

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	gtensor "gorgonia.org/tensor"
)

// ArrayExtractor materializes numeric columns as dense
// *tensor.Dense arrays. Non-nested numeric columns become 1-D arrays,
// rectangular list columns become 2-D arrays, and irregular list
// columns fall back to a per-row representation ([]any holding one
// 1-D array per row). String and other non-numeric columns pass
// through in their native form.
type ArrayExtractor struct{}

func (ArrayExtractor) ExtractRow(t arrow.Table) (map[string]any, error) {
	if t.NumRows() == 0 {
		return nil, fmt.Errorf("%w: cannot extract a row from an empty table", ErrOutOfRange)
	}
	row := make(map[string]any, int(t.NumCols()))
	for i := 0; i < int(t.NumCols()); i++ {
		col := t.Column(i)
		chunk, pos := locateRow(col, 0)
		row[col.Name()] = arrayCell(chunk, pos)
	}
	return row, nil
}

func (ArrayExtractor) ExtractColumn(t arrow.Table) (any, error) {
	if t.NumCols() == 0 {
		return nil, fmt.Errorf("%w: table has no columns", ErrColumnNotFound)
	}
	return arrayColumn(t.Column(0)), nil
}

func (ArrayExtractor) ExtractBatch(t arrow.Table) (map[string]any, error) {
	batch := make(map[string]any, int(t.NumCols()))
	for i := 0; i < int(t.NumCols()); i++ {
		col := t.Column(i)
		batch[col.Name()] = arrayColumn(col)
	}
	return batch, nil
}

// ArrayFormatter composes an ArrayExtractor with a target dtype.
// Every dense array (including the per-row arrays of the irregular
// fallback) and every numeric scalar is coerced; values the backend
// cannot represent at the requested dtype surface as
// ErrBackendConstruction, while non-numeric values pass through.
type ArrayFormatter struct {
	extractor ArrayExtractor
	config    FormatConfig
}

// NewArrayFormatter returns a formatter producing dense numeric
// arrays with the configured target dtype.
func NewArrayFormatter(config FormatConfig) *ArrayFormatter {
	return &ArrayFormatter{config: config}
}

func (f *ArrayFormatter) FormatRow(t arrow.Table) (map[string]any, error) {
	row, err := f.extractor.ExtractRow(t)
	if err != nil {
		return nil, err
	}
	for name, v := range row {
		cv, err := f.coerce(v)
		if err != nil {
			return nil, err
		}
		row[name] = cv
	}
	return row, nil
}

func (f *ArrayFormatter) FormatColumn(t arrow.Table) (any, error) {
	col, err := f.extractor.ExtractColumn(t)
	if err != nil {
		return nil, err
	}
	return f.coerce(col)
}

func (f *ArrayFormatter) FormatBatch(t arrow.Table) (map[string]any, error) {
	batch, err := f.extractor.ExtractBatch(t)
	if err != nil {
		return nil, err
	}
	for name, v := range batch {
		cv, err := f.coerce(v)
		if err != nil {
			return nil, err
		}
		batch[name] = cv
	}
	return batch, nil
}

// coerce applies the configured dtype to a single extracted value.
func (f *ArrayFormatter) coerce(v any) (any, error) {
	dt := f.config.ArrayDtype
	if dt.Type == nil {
		return v, nil
	}
	switch v := v.(type) {
	case *gtensor.Dense:
		return convertDense(v, dt)
	case []any:
		// Irregular fallback: coerce each per-row array in place.
		for i, rv := range v {
			if d, ok := rv.(*gtensor.Dense); ok {
				cd, err := convertDense(d, dt)
				if err != nil {
					return nil, err
				}
				v[i] = cd
			}
		}
		return v, nil
	default:
		if fv, ok := scalarFloat(v); ok {
			return scalarAs(fv, dt)
		}
		return v, nil
	}
}

// arrayCell converts a single row cell: list cells of numeric
// children become 1-D arrays, everything else stays native.
func arrayCell(chunk arrow.Array, pos int) any {
	if chunk == nil || chunk.IsNull(pos) {
		return nil
	}
	if chunk.DataType().ID() == arrow.LIST {
		l := chunk.(*array.List)
		if backing, n, ok := listRowBacking(l, pos); ok {
			return gtensor.New(gtensor.WithShape(n), gtensor.WithBacking(backing))
		}
	}
	return cellValue(chunk, pos)
}

// arrayColumn materializes a full column for the array backend.
func arrayColumn(col *arrow.Column) any {
	if col.Data().NullN() == 0 {
		if backing, ok := numericBacking(col); ok {
			return gtensor.New(gtensor.WithShape(col.Data().Len()), gtensor.WithBacking(backing))
		}
		if col.DataType().ID() == arrow.LIST {
			return listArrayColumn(col)
		}
	}
	return columnNative(col)
}

// listArrayColumn handles list columns: rectangular numeric lists
// become one 2-D array, irregular ones become one 1-D array per row.
func listArrayColumn(col *arrow.Column) any {
	child := col.DataType().(*arrow.ListType).Elem()
	if !isNumericType(child.ID()) {
		return columnNative(col)
	}

	n := col.Data().Len()
	width := -1
	rectangular := true
	for _, chunk := range col.Data().Chunks() {
		l := chunk.(*array.List)
		for i := 0; i < l.Len(); i++ {
			start, end := l.ValueOffsets(i)
			rowLen := int(end - start)
			if width < 0 {
				width = rowLen
			} else if rowLen != width {
				rectangular = false
			}
		}
	}

	if rectangular && width >= 0 {
		flat := flatListBacking(col, child.ID(), n*width)
		return gtensor.New(gtensor.WithShape(n, width), gtensor.WithBacking(flat))
	}

	rows := make([]any, 0, n)
	for _, chunk := range col.Data().Chunks() {
		l := chunk.(*array.List)
		for i := 0; i < l.Len(); i++ {
			backing, rowLen, _ := listRowBacking(l, i)
			rows = append(rows, gtensor.New(gtensor.WithShape(rowLen), gtensor.WithBacking(backing)))
		}
	}
	return rows
}

// listRowBacking copies one numeric list cell into a backing slice of
// the child's own element type: extraction alone never changes a
// column's dtype, only a configured formatter does.
func listRowBacking(l *array.List, pos int) (any, int, bool) {
	start, end := l.ValueOffsets(pos)
	s, n := int(start), int(end-start)
	switch a := l.ListValues().(type) {
	case *array.Float64:
		return copyListRow(a.Value, s, n), n, true
	case *array.Float32:
		return copyListRow(a.Value, s, n), n, true
	case *array.Float16:
		out := make([]float32, n)
		for i := range out {
			out[i] = a.Value(s + i).Float32()
		}
		return out, n, true
	case *array.Int64:
		return copyListRow(a.Value, s, n), n, true
	case *array.Int32:
		return copyListRow(a.Value, s, n), n, true
	case *array.Int16:
		return copyListRow(a.Value, s, n), n, true
	case *array.Int8:
		return copyListRow(a.Value, s, n), n, true
	case *array.Uint64:
		return copyListRow(a.Value, s, n), n, true
	case *array.Uint32:
		return copyListRow(a.Value, s, n), n, true
	case *array.Uint16:
		return copyListRow(a.Value, s, n), n, true
	case *array.Uint8:
		return copyListRow(a.Value, s, n), n, true
	default:
		return nil, 0, false
	}
}

// copyListRow reads n child values starting at s through the chunk's
// typed accessor.
func copyListRow[T any](value func(int) T, s, n int) []T {
	out := make([]T, n)
	for i := range out {
		out[i] = value(s + i)
	}
	return out
}

// flatListBacking concatenates every row of a rectangular list column
// into one backing slice, keeping the child element type.
func flatListBacking(col *arrow.Column, child arrow.Type, total int) any {
	switch child {
	case arrow.FLOAT64:
		return appendListRows[float64](col, total)
	case arrow.FLOAT32, arrow.FLOAT16:
		return appendListRows[float32](col, total)
	case arrow.INT64:
		return appendListRows[int64](col, total)
	case arrow.INT32:
		return appendListRows[int32](col, total)
	case arrow.INT16:
		return appendListRows[int16](col, total)
	case arrow.INT8:
		return appendListRows[int8](col, total)
	case arrow.UINT64:
		return appendListRows[uint64](col, total)
	case arrow.UINT32:
		return appendListRows[uint32](col, total)
	case arrow.UINT16:
		return appendListRows[uint16](col, total)
	default:
		return appendListRows[uint8](col, total)
	}
}

func appendListRows[T any](col *arrow.Column, total int) []T {
	out := make([]T, 0, total)
	for _, chunk := range col.Data().Chunks() {
		l := chunk.(*array.List)
		for i := 0; i < l.Len(); i++ {
			b, _, _ := listRowBacking(l, i)
			out = append(out, b.([]T)...)
		}
	}
	return out
}

// listRowFloats flattens one numeric list cell to float64 for the
// float-valued backends.
func listRowFloats(l *array.List, pos int) ([]float64, int, bool) {
	values := l.ListValues()
	if !isNumericType(values.DataType().ID()) {
		return nil, 0, false
	}
	start, end := l.ValueOffsets(pos)
	n := int(end - start)
	out := make([]float64, n)
	for i := range out {
		fv, _ := scalarFloat(cellValue(values, int(start)+i))
		out[i] = fv
	}
	return out, n, true
}

// numericBacking converts a null-free primitive numeric column into
// the matching Go slice for use as dense-array backing.
func numericBacking(col *arrow.Column) (any, bool) {
	switch col.DataType().ID() {
	case arrow.INT64, arrow.INT32, arrow.FLOAT64, arrow.FLOAT32:
		return columnNative(col), true
	case arrow.INT8:
		out := make([]int8, 0, col.Data().Len())
		for _, chunk := range col.Data().Chunks() {
			a := chunk.(*array.Int8)
			for i := 0; i < a.Len(); i++ {
				out = append(out, a.Value(i))
			}
		}
		return out, true
	case arrow.INT16:
		out := make([]int16, 0, col.Data().Len())
		for _, chunk := range col.Data().Chunks() {
			a := chunk.(*array.Int16)
			for i := 0; i < a.Len(); i++ {
				out = append(out, a.Value(i))
			}
		}
		return out, true
	case arrow.UINT8:
		out := make([]uint8, 0, col.Data().Len())
		for _, chunk := range col.Data().Chunks() {
			a := chunk.(*array.Uint8)
			for i := 0; i < a.Len(); i++ {
				out = append(out, a.Value(i))
			}
		}
		return out, true
	case arrow.UINT16:
		out := make([]uint16, 0, col.Data().Len())
		for _, chunk := range col.Data().Chunks() {
			a := chunk.(*array.Uint16)
			for i := 0; i < a.Len(); i++ {
				out = append(out, a.Value(i))
			}
		}
		return out, true
	case arrow.UINT32:
		out := make([]uint32, 0, col.Data().Len())
		for _, chunk := range col.Data().Chunks() {
			a := chunk.(*array.Uint32)
			for i := 0; i < a.Len(); i++ {
				out = append(out, a.Value(i))
			}
		}
		return out, true
	case arrow.UINT64:
		out := make([]uint64, 0, col.Data().Len())
		for _, chunk := range col.Data().Chunks() {
			a := chunk.(*array.Uint64)
			for i := 0; i < a.Len(); i++ {
				out = append(out, a.Value(i))
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// isNumericType reports whether the arrow type maps to a dense-array
// element type.
func isNumericType(id arrow.Type) bool {
	switch id {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64,
		arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		return true
	}
	return false
}

// scalarFloat widens a native numeric scalar to float64.
func scalarFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// scalarAs narrows a float64 to the requested dtype's Go scalar.
func scalarAs(v float64, dt gtensor.Dtype) (any, error) {
	switch dt {
	case gtensor.Float64:
		return v, nil
	case gtensor.Float32:
		return float32(v), nil
	case gtensor.Int:
		return int(v), nil
	case gtensor.Int32:
		return int32(v), nil
	case gtensor.Int64:
		return int64(v), nil
	default:
		return nil, fmt.Errorf("%w: unsupported array dtype %v", ErrBackendConstruction, dt)
	}
}

// convertDense rebuilds a dense array at the target dtype, keeping
// its shape. Conversion goes through float64, which covers every
// supported element type.
func convertDense(d *gtensor.Dense, dt gtensor.Dtype) (*gtensor.Dense, error) {
	if d.Dtype() == dt {
		return d, nil
	}
	flat, err := denseFloats(d)
	if err != nil {
		return nil, err
	}
	shape := gtensor.WithShape(d.Shape()...)
	switch dt {
	case gtensor.Float64:
		return gtensor.New(shape, gtensor.WithBacking(flat)), nil
	case gtensor.Float32:
		out := make([]float32, len(flat))
		for i, v := range flat {
			out[i] = float32(v)
		}
		return gtensor.New(shape, gtensor.WithBacking(out)), nil
	case gtensor.Int:
		out := make([]int, len(flat))
		for i, v := range flat {
			out[i] = int(v)
		}
		return gtensor.New(shape, gtensor.WithBacking(out)), nil
	case gtensor.Int32:
		out := make([]int32, len(flat))
		for i, v := range flat {
			out[i] = int32(v)
		}
		return gtensor.New(shape, gtensor.WithBacking(out)), nil
	case gtensor.Int64:
		out := make([]int64, len(flat))
		for i, v := range flat {
			out[i] = int64(v)
		}
		return gtensor.New(shape, gtensor.WithBacking(out)), nil
	default:
		return nil, fmt.Errorf("%w: unsupported array dtype %v", ErrBackendConstruction, dt)
	}
}

// denseFloats flattens a dense array's values to float64.
func denseFloats(d *gtensor.Dense) ([]float64, error) {
	switch data := d.Data().(type) {
	case []float64:
		return data, nil
	case []float32:
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = float64(v)
		}
		return out, nil
	case []int:
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = float64(v)
		}
		return out, nil
	case []int8:
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = float64(v)
		}
		return out, nil
	case []int16:
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = float64(v)
		}
		return out, nil
	case []int32:
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = float64(v)
		}
		return out, nil
	case []int64:
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = float64(v)
		}
		return out, nil
	case []uint8:
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = float64(v)
		}
		return out, nil
	case []uint16:
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = float64(v)
		}
		return out, nil
	case []uint32:
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = float64(v)
		}
		return out, nil
	case []uint64:
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = float64(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: cannot convert %v values", ErrBackendConstruction, d.Dtype())
	}
}
