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
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// Ragged is a variable-length tensor: a flat 1-D values tensor plus
// the per-row lengths that partition it. It is the representation for
// list columns whose rows are not all the same length.
type Ragged struct {
	Values  coretensor.Tensor
	Lengths []int
}

// NumRows returns the number of variable-length rows.
func (r Ragged) NumRows() int {
	return len(r.Lengths)
}

// Row returns row i as a fresh 1-D tensor.
func (r Ragged) Row(i int) coretensor.Tensor {
	offset := 0
	for _, l := range r.Lengths[:i] {
		offset += l
	}
	out := coretensor.NewOfType(r.Values.DataType(), r.Lengths[i])
	for j := 0; j < r.Lengths[i]; j++ {
		out.SetFloat1D(r.Values.Float1D(offset+j), j)
	}
	return out
}

// TensorExtractor materializes columns as rank-aware tensors: numeric
// columns become 1-D (or 2-D for rectangular lists) tensors, string
// columns become string tensors, and irregular numeric lists become
// Ragged values. Nested string columns pass through natively.
type TensorExtractor struct{}

func (TensorExtractor) ExtractRow(t arrow.Table) (map[string]any, error) {
	if t.NumRows() == 0 {
		return nil, fmt.Errorf("%w: cannot extract a row from an empty table", ErrOutOfRange)
	}
	row := make(map[string]any, int(t.NumCols()))
	for i := 0; i < int(t.NumCols()); i++ {
		col := t.Column(i)
		chunk, pos := locateRow(col, 0)
		row[col.Name()] = tensorCell(chunk, pos)
	}
	return row, nil
}

func (TensorExtractor) ExtractColumn(t arrow.Table) (any, error) {
	if t.NumCols() == 0 {
		return nil, fmt.Errorf("%w: table has no columns", ErrColumnNotFound)
	}
	return tensorColumn(t.Column(0)), nil
}

func (TensorExtractor) ExtractBatch(t arrow.Table) (map[string]any, error) {
	batch := make(map[string]any, int(t.NumCols()))
	for i := 0; i < int(t.NumCols()); i++ {
		col := t.Column(i)
		batch[col.Name()] = tensorColumn(col)
	}
	return batch, nil
}

// TensorFormatter composes a TensorExtractor with a target element
// kind. Numeric tensors (including the flat values of Ragged columns)
// are coerced; string tensors and native passthrough values are left
// untouched. An element kind the backend cannot construct surfaces as
// ErrBackendConstruction.
type TensorFormatter struct {
	extractor TensorExtractor
	config    FormatConfig
}

// NewTensorFormatter returns a formatter producing tensors with the
// configured element kind.
func NewTensorFormatter(config FormatConfig) *TensorFormatter {
	return &TensorFormatter{config: config}
}

func (f *TensorFormatter) FormatRow(t arrow.Table) (map[string]any, error) {
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

func (f *TensorFormatter) FormatColumn(t arrow.Table) (any, error) {
	col, err := f.extractor.ExtractColumn(t)
	if err != nil {
		return nil, err
	}
	return f.coerce(col)
}

func (f *TensorFormatter) FormatBatch(t arrow.Table) (map[string]any, error) {
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

func (f *TensorFormatter) coerce(v any) (any, error) {
	kind := f.config.TensorKind
	if kind == reflect.Invalid {
		return v, nil
	}
	switch v := v.(type) {
	case coretensor.Tensor:
		return convertTensor(v, kind)
	case Ragged:
		values, err := convertTensor(v.Values, kind)
		if err != nil {
			return nil, err
		}
		return Ragged{Values: values, Lengths: v.Lengths}, nil
	default:
		if fv, ok := scalarFloat(v); ok {
			return scalarOfKind(fv, kind)
		}
		return v, nil
	}
}

// convertTensor rebuilds a numeric tensor at the target kind, keeping
// its shape. String tensors pass through unchanged.
func convertTensor(t coretensor.Tensor, kind reflect.Kind) (coretensor.Tensor, error) {
	if t.IsString() {
		return t, nil
	}
	if t.DataType() == kind {
		return t, nil
	}
	if !supportedTensorKind(kind) {
		return nil, fmt.Errorf("%w: unsupported tensor kind %v", ErrBackendConstruction, kind)
	}
	sizes := make([]int, t.NumDims())
	for i := range sizes {
		sizes[i] = t.DimSize(i)
	}
	out := coretensor.NewOfType(kind, sizes...)
	for i := 0; i < t.Len(); i++ {
		out.SetFloat1D(t.Float1D(i), i)
	}
	return out, nil
}

// scalarOfKind narrows a numeric scalar to the target kind's Go type.
func scalarOfKind(v float64, kind reflect.Kind) (any, error) {
	switch kind {
	case reflect.Float64:
		return v, nil
	case reflect.Float32:
		return float32(v), nil
	case reflect.Int:
		return int(v), nil
	case reflect.Int32:
		return int32(v), nil
	case reflect.Uint8:
		return uint8(v), nil
	default:
		return nil, fmt.Errorf("%w: unsupported tensor kind %v", ErrBackendConstruction, kind)
	}
}

func supportedTensorKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Float64, reflect.Float32, reflect.Int, reflect.Int32, reflect.Uint8:
		return true
	}
	return false
}

// tensorCell converts one row cell: numeric list cells become 1-D
// tensors, scalar cells stay native.
func tensorCell(chunk arrow.Array, pos int) any {
	if chunk == nil || chunk.IsNull(pos) {
		return nil
	}
	if chunk.DataType().ID() == arrow.LIST {
		l := chunk.(*array.List)
		if backing, n, ok := listRowFloats(l, pos); ok {
			out := coretensor.NewFloat64(n)
			for i, v := range backing {
				out.SetFloat1D(v, i)
			}
			return out
		}
	}
	return cellValue(chunk, pos)
}

// tensorColumn materializes a full column for the tensor backend.
func tensorColumn(col *arrow.Column) any {
	n := col.Data().Len()
	id := col.DataType().ID()

	switch {
	case isNumericType(id) && col.Data().NullN() == 0:
		isFloat := id == arrow.FLOAT16 || id == arrow.FLOAT32 || id == arrow.FLOAT64
		var out coretensor.Tensor
		if isFloat {
			out = coretensor.NewFloat64(n)
		} else {
			out = coretensor.NewInt(n)
		}
		i := 0
		for _, chunk := range col.Data().Chunks() {
			for j := 0; j < chunk.Len(); j++ {
				fv, _ := scalarFloat(cellValue(chunk, j))
				out.SetFloat1D(fv, i)
				i++
			}
		}
		return out

	case (id == arrow.STRING || id == arrow.LARGE_STRING) && col.Data().NullN() == 0:
		out := coretensor.NewString(n)
		i := 0
		for _, chunk := range col.Data().Chunks() {
			for j := 0; j < chunk.Len(); j++ {
				s, _ := cellValue(chunk, j).(string)
				out.SetString1D(s, i)
				i++
			}
		}
		return out

	case id == arrow.BOOL && col.Data().NullN() == 0:
		out := coretensor.NewInt(n)
		i := 0
		for _, chunk := range col.Data().Chunks() {
			for j := 0; j < chunk.Len(); j++ {
				if v, _ := cellValue(chunk, j).(bool); v {
					out.SetFloat1D(1, i)
				} else {
					out.SetFloat1D(0, i)
				}
				i++
			}
		}
		return out

	case id == arrow.LIST && col.Data().NullN() == 0:
		return tensorListColumn(col)
	}

	return columnNative(col)
}

// tensorListColumn materializes a numeric list column as a dense 2-D
// tensor when rectangular, or a Ragged otherwise.
func tensorListColumn(col *arrow.Column) any {
	child := col.DataType().(*arrow.ListType).Elem()
	if !isNumericType(child.ID()) {
		return columnNative(col)
	}

	n := col.Data().Len()
	lengths := make([]int, 0, n)
	var flat []float64
	for _, chunk := range col.Data().Chunks() {
		l := chunk.(*array.List)
		for i := 0; i < l.Len(); i++ {
			backing, rowLen, _ := listRowFloats(l, i)
			flat = append(flat, backing...)
			lengths = append(lengths, rowLen)
		}
	}

	rectangular := true
	for _, l := range lengths {
		if l != lengths[0] {
			rectangular = false
			break
		}
	}

	if rectangular && n > 0 {
		out := coretensor.NewFloat64(n, lengths[0])
		for i, v := range flat {
			out.SetFloat1D(v, i)
		}
		return out
	}

	values := coretensor.NewFloat64(len(flat))
	for i, v := range flat {
		values.SetFloat1D(v, i)
	}
	return Ragged{Values: values, Lengths: lengths}
}
