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
)

// NativeExtractor materializes table values as plain Go containers:
// rows are field maps, columns are typed slices where the column is
// homogeneous and null-free ([]int64, []float64, []string, ...), and
// one level of list nesting is preserved as nested slices.
type NativeExtractor struct{}

func (NativeExtractor) ExtractRow(t arrow.Table) (map[string]any, error) {
	if t.NumRows() == 0 {
		return nil, fmt.Errorf("%w: cannot extract a row from an empty table", ErrOutOfRange)
	}
	row := make(map[string]any, int(t.NumCols()))
	for i := 0; i < int(t.NumCols()); i++ {
		col := t.Column(i)
		chunk, pos := locateRow(col, 0)
		row[col.Name()] = cellValue(chunk, pos)
	}
	return row, nil
}

func (NativeExtractor) ExtractColumn(t arrow.Table) (any, error) {
	if t.NumCols() == 0 {
		return nil, fmt.Errorf("%w: table has no columns", ErrColumnNotFound)
	}
	return columnNative(t.Column(0)), nil
}

func (NativeExtractor) ExtractBatch(t arrow.Table) (map[string]any, error) {
	batch := make(map[string]any, int(t.NumCols()))
	for i := 0; i < int(t.NumCols()); i++ {
		col := t.Column(i)
		batch[col.Name()] = columnNative(col)
	}
	return batch, nil
}

// NativeFormatter is the identity formatter: native containers carry
// no construction options, so formatting is extraction.
type NativeFormatter struct {
	NativeExtractor
}

// NewNativeFormatter returns a formatter producing plain Go
// containers.
func NewNativeFormatter() *NativeFormatter {
	return &NativeFormatter{}
}

func (f *NativeFormatter) FormatRow(t arrow.Table) (map[string]any, error) {
	return f.ExtractRow(t)
}

func (f *NativeFormatter) FormatColumn(t arrow.Table) (any, error) {
	return f.ExtractColumn(t)
}

func (f *NativeFormatter) FormatBatch(t arrow.Table) (map[string]any, error) {
	return f.ExtractBatch(t)
}

// locateRow finds the chunk and chunk-local position holding the
// column's row at the given absolute position.
func locateRow(col *arrow.Column, row int) (arrow.Array, int) {
	for _, chunk := range col.Data().Chunks() {
		if row < chunk.Len() {
			return chunk, row
		}
		row -= chunk.Len()
	}
	return nil, -1
}

// cellValue converts a single cell to its closest native Go value.
// Lists become typed nested slices, structs become field maps.
func cellValue(col arrow.Array, pos int) any {
	if col == nil || col.IsNull(pos) {
		return nil
	}

	switch col.DataType().ID() {
	case arrow.STRING:
		return col.(*array.String).Value(pos)
	case arrow.LARGE_STRING:
		return col.(*array.LargeString).Value(pos)
	case arrow.BINARY:
		return col.(*array.Binary).Value(pos)
	case arrow.BOOL:
		return col.(*array.Boolean).Value(pos)
	case arrow.INT8:
		return col.(*array.Int8).Value(pos)
	case arrow.INT16:
		return col.(*array.Int16).Value(pos)
	case arrow.INT32:
		return col.(*array.Int32).Value(pos)
	case arrow.INT64:
		return col.(*array.Int64).Value(pos)
	case arrow.UINT8:
		return col.(*array.Uint8).Value(pos)
	case arrow.UINT16:
		return col.(*array.Uint16).Value(pos)
	case arrow.UINT32:
		return col.(*array.Uint32).Value(pos)
	case arrow.UINT64:
		return col.(*array.Uint64).Value(pos)
	case arrow.FLOAT16:
		return col.(*array.Float16).Value(pos).Float32()
	case arrow.FLOAT32:
		return col.(*array.Float32).Value(pos)
	case arrow.FLOAT64:
		return col.(*array.Float64).Value(pos)
	case arrow.DATE32:
		return col.(*array.Date32).Value(pos).ToTime()
	case arrow.DATE64:
		return col.(*array.Date64).Value(pos).ToTime()
	case arrow.TIMESTAMP:
		return col.(*array.Timestamp).Value(pos).ToTime(arrow.Nanosecond)
	case arrow.DECIMAL128:
		return col.(*array.Decimal128).Value(pos).BigInt().String()
	case arrow.STRUCT:
		s := col.(*array.Struct)
		st := s.DataType().(*arrow.StructType)
		out := make(map[string]any, s.NumField())
		for i := 0; i < s.NumField(); i++ {
			out[st.Field(i).Name] = cellValue(s.Field(i), pos)
		}
		return out
	case arrow.LIST:
		return listValue(col.(*array.List), pos)
	default:
		return fmt.Sprintf("%v", col)
	}
}

// listValue materializes one list cell, keeping the inner values in a
// typed slice where the child type allows it.
func listValue(l *array.List, pos int) any {
	start, end := l.ValueOffsets(pos)
	values := l.ListValues()
	n := int(end - start)

	switch values.DataType().ID() {
	case arrow.FLOAT64:
		v := values.(*array.Float64)
		out := make([]float64, n)
		for i := range out {
			out[i] = v.Value(int(start) + i)
		}
		return out
	case arrow.INT64:
		v := values.(*array.Int64)
		out := make([]int64, n)
		for i := range out {
			out[i] = v.Value(int(start) + i)
		}
		return out
	case arrow.STRING:
		v := values.(*array.String)
		out := make([]string, n)
		for i := range out {
			out[i] = v.Value(int(start) + i)
		}
		return out
	default:
		out := make([]any, n)
		for i := range out {
			out[i] = cellValue(values, int(start)+i)
		}
		return out
	}
}

// columnNative materializes a full column. Null-free primitive
// columns come back as typed slices; anything else falls back to
// []any with nil entries for nulls.
func columnNative(col *arrow.Column) any {
	chunks := col.Data().Chunks()
	n := col.Data().Len()

	if col.Data().NullN() == 0 {
		switch col.DataType().ID() {
		case arrow.INT64:
			out := make([]int64, 0, n)
			for _, chunk := range chunks {
				a := chunk.(*array.Int64)
				for i := 0; i < a.Len(); i++ {
					out = append(out, a.Value(i))
				}
			}
			return out
		case arrow.INT32:
			out := make([]int32, 0, n)
			for _, chunk := range chunks {
				a := chunk.(*array.Int32)
				for i := 0; i < a.Len(); i++ {
					out = append(out, a.Value(i))
				}
			}
			return out
		case arrow.FLOAT64:
			out := make([]float64, 0, n)
			for _, chunk := range chunks {
				a := chunk.(*array.Float64)
				for i := 0; i < a.Len(); i++ {
					out = append(out, a.Value(i))
				}
			}
			return out
		case arrow.FLOAT32:
			out := make([]float32, 0, n)
			for _, chunk := range chunks {
				a := chunk.(*array.Float32)
				for i := 0; i < a.Len(); i++ {
					out = append(out, a.Value(i))
				}
			}
			return out
		case arrow.STRING:
			out := make([]string, 0, n)
			for _, chunk := range chunks {
				a := chunk.(*array.String)
				for i := 0; i < a.Len(); i++ {
					out = append(out, a.Value(i))
				}
			}
			return out
		case arrow.BOOL:
			out := make([]bool, 0, n)
			for _, chunk := range chunks {
				a := chunk.(*array.Boolean)
				for i := 0; i < a.Len(); i++ {
					out = append(out, a.Value(i))
				}
			}
			return out
		case arrow.LIST:
			return listColumnNative(col)
		}
	}

	out := make([]any, 0, n)
	for _, chunk := range chunks {
		for i := 0; i < chunk.Len(); i++ {
			out = append(out, cellValue(chunk, i))
		}
	}
	return out
}

// listColumnNative materializes a null-free list column as a nested
// typed slice keyed on the child element type.
func listColumnNative(col *arrow.Column) any {
	chunks := col.Data().Chunks()
	n := col.Data().Len()
	child := col.DataType().(*arrow.ListType).Elem()

	switch child.ID() {
	case arrow.FLOAT64:
		out := make([][]float64, 0, n)
		for _, chunk := range chunks {
			l := chunk.(*array.List)
			for i := 0; i < l.Len(); i++ {
				out = append(out, listValue(l, i).([]float64))
			}
		}
		return out
	case arrow.INT64:
		out := make([][]int64, 0, n)
		for _, chunk := range chunks {
			l := chunk.(*array.List)
			for i := 0; i < l.Len(); i++ {
				out = append(out, listValue(l, i).([]int64))
			}
		}
		return out
	case arrow.STRING:
		out := make([][]string, 0, n)
		for _, chunk := range chunks {
			l := chunk.(*array.List)
			for i := 0; i < l.Len(); i++ {
				out = append(out, listValue(l, i).([]string))
			}
		}
		return out
	default:
		out := make([]any, 0, n)
		for _, chunk := range chunks {
			l := chunk.(*array.List)
			for i := 0; i < l.Len(); i++ {
				out = append(out, listValue(l, i))
			}
		}
		return out
	}
}
