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
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// sliceTable returns a zero-copy view of length rows starting at
// offset. Column storage is shared with the parent: each chunk is
// either reused whole or wrapped with array.NewSlice. The caller must
// pass bounds already clamped to the table.
func sliceTable(t arrow.Table, offset, length int64) arrow.Table {
	numCols := int(t.NumCols())
	columns := make([]arrow.Column, numCols)
	for i := 0; i < numCols; i++ {
		col := t.Column(i)
		var chunks []arrow.Array
		pos := int64(0)
		remaining := length
		for _, chunk := range col.Data().Chunks() {
			clen := int64(chunk.Len())
			if remaining <= 0 || pos+clen <= offset {
				pos += clen
				continue
			}
			start := int64(0)
			if offset > pos {
				start = offset - pos
			}
			end := clen
			if end-start > remaining {
				end = start + remaining
			}
			if start == 0 && end == clen {
				chunks = append(chunks, chunk)
			} else {
				chunks = append(chunks, array.NewSlice(chunk, start, end))
			}
			remaining -= end - start
			pos += clen
		}
		chunked := arrow.NewChunked(col.DataType(), chunks)
		columns[i] = *arrow.NewColumn(col.Field(), chunked)
	}
	return array.NewTable(t.Schema(), columns, length)
}

// gatherTable builds a new table holding the rows at the given
// resolved addresses, in order, duplicates included. Unlike the slice
// path this always allocates fresh column storage. Each address is
// resolved through the column's chunk list, so chunked tables (parquet
// row groups, slice results) gather correctly across chunk boundaries.
func gatherTable(t arrow.Table, indices []int) arrow.Table {
	pool := memory.NewGoAllocator()
	schema := t.Schema()

	numCols := int(t.NumCols())
	columns := make([]arrow.Column, numCols)
	for i := 0; i < numCols; i++ {
		field := schema.Field(i)
		col := t.Column(i)
		builder := array.NewBuilder(pool, field.Type)
		for _, rowIdx := range indices {
			chunk, pos := locateRow(col, rowIdx)
			if chunk == nil {
				builder.AppendNull()
				continue
			}
			appendRowValue(builder, chunk, pos)
		}
		arr := builder.NewArray()
		chunked := arrow.NewChunked(field.Type, []arrow.Array{arr})
		columns[i] = *arrow.NewColumn(field, chunked)
		arr.Release()
		builder.Release()
	}
	return array.NewTable(schema, columns, int64(len(indices)))
}

// projectColumn returns a single-column table for name, retaining all
// rows, or ErrColumnNotFound when the schema has no such field.
func projectColumn(t arrow.Table, name string) (arrow.Table, error) {
	schema := t.Schema()
	fieldIdx := -1
	for i, field := range schema.Fields() {
		if field.Name == name {
			fieldIdx = i
			break
		}
	}
	if fieldIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	newSchema := arrow.NewSchema([]arrow.Field{schema.Field(fieldIdx)}, nil)
	columns := []arrow.Column{*t.Column(fieldIdx)}
	return array.NewTable(newSchema, columns, t.NumRows()), nil
}

// appendRowValue copies the value at pos from col into builder,
// recursing through one level of list or struct nesting.
func appendRowValue(builder array.Builder, col arrow.Array, pos int) {
	if col.IsNull(pos) {
		builder.AppendNull()
		return
	}

	switch col.DataType().ID() {
	case arrow.STRING:
		builder.(*array.StringBuilder).Append(col.(*array.String).Value(pos))
	case arrow.LARGE_STRING:
		builder.(*array.LargeStringBuilder).Append(col.(*array.LargeString).Value(pos))
	case arrow.BINARY:
		builder.(*array.BinaryBuilder).Append(col.(*array.Binary).Value(pos))
	case arrow.BOOL:
		builder.(*array.BooleanBuilder).Append(col.(*array.Boolean).Value(pos))
	case arrow.INT8:
		builder.(*array.Int8Builder).Append(col.(*array.Int8).Value(pos))
	case arrow.INT16:
		builder.(*array.Int16Builder).Append(col.(*array.Int16).Value(pos))
	case arrow.INT32:
		builder.(*array.Int32Builder).Append(col.(*array.Int32).Value(pos))
	case arrow.INT64:
		builder.(*array.Int64Builder).Append(col.(*array.Int64).Value(pos))
	case arrow.UINT8:
		builder.(*array.Uint8Builder).Append(col.(*array.Uint8).Value(pos))
	case arrow.UINT16:
		builder.(*array.Uint16Builder).Append(col.(*array.Uint16).Value(pos))
	case arrow.UINT32:
		builder.(*array.Uint32Builder).Append(col.(*array.Uint32).Value(pos))
	case arrow.UINT64:
		builder.(*array.Uint64Builder).Append(col.(*array.Uint64).Value(pos))
	case arrow.FLOAT16:
		builder.(*array.Float16Builder).Append(col.(*array.Float16).Value(pos))
	case arrow.FLOAT32:
		builder.(*array.Float32Builder).Append(col.(*array.Float32).Value(pos))
	case arrow.FLOAT64:
		builder.(*array.Float64Builder).Append(col.(*array.Float64).Value(pos))
	case arrow.DATE32:
		builder.(*array.Date32Builder).Append(col.(*array.Date32).Value(pos))
	case arrow.DATE64:
		builder.(*array.Date64Builder).Append(col.(*array.Date64).Value(pos))
	case arrow.TIMESTAMP:
		builder.(*array.TimestampBuilder).Append(col.(*array.Timestamp).Value(pos))
	case arrow.DECIMAL128:
		builder.(*array.Decimal128Builder).Append(col.(*array.Decimal128).Value(pos))
	case arrow.STRUCT:
		b := builder.(*array.StructBuilder)
		s := col.(*array.Struct)
		b.Append(true)
		for i := 0; i < s.NumField(); i++ {
			appendRowValue(b.FieldBuilder(i), s.Field(i), pos)
		}
	case arrow.LIST:
		b := builder.(*array.ListBuilder)
		l := col.(*array.List)
		b.Append(true)
		start, end := l.ValueOffsets(pos)
		values := l.ListValues()
		for i := start; i < end; i++ {
			appendRowValue(b.ValueBuilder(), values, int(i))
		}
	default:
		builder.AppendNull()
	}
}
