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
	"gonum.org/v1/gonum/mat"
)

// BatchMatrix materializes a numeric column of t as a dense gonum
// matrix: a plain numeric column becomes an n-by-1 matrix and a
// rectangular list column an n-by-m matrix. Irregular list columns
// and non-numeric columns fail with ErrBackendConstruction; an
// unknown name fails with ErrColumnNotFound.
func BatchMatrix(t arrow.Table, name string) (*mat.Dense, error) {
	sub, err := projectColumn(t, name)
	if err != nil {
		return nil, err
	}
	col := sub.Column(0)
	n := col.Data().Len()
	if n == 0 {
		return nil, fmt.Errorf("%w: column %q is empty", ErrBackendConstruction, name)
	}
	id := col.DataType().ID()

	switch {
	case isNumericType(id):
		out := mat.NewDense(n, 1, nil)
		i := 0
		for _, chunk := range col.Data().Chunks() {
			for j := 0; j < chunk.Len(); j++ {
				fv, _ := scalarFloat(cellValue(chunk, j))
				out.Set(i, 0, fv)
				i++
			}
		}
		return out, nil

	case id == arrow.LIST:
		child := col.DataType().(*arrow.ListType).Elem()
		if !isNumericType(child.ID()) {
			return nil, fmt.Errorf("%w: column %q has non-numeric elements", ErrBackendConstruction, name)
		}
		width := -1
		var flat []float64
		for _, chunk := range col.Data().Chunks() {
			l := chunk.(*array.List)
			for i := 0; i < l.Len(); i++ {
				backing, rowLen, _ := listRowFloats(l, i)
				if width < 0 {
					width = rowLen
				} else if rowLen != width {
					return nil, fmt.Errorf("%w: column %q is not rectangular", ErrBackendConstruction, name)
				}
				flat = append(flat, backing...)
			}
		}
		if width <= 0 {
			return nil, fmt.Errorf("%w: column %q has empty rows", ErrBackendConstruction, name)
		}
		return mat.NewDense(n, width, flat), nil

	default:
		return nil, fmt.Errorf("%w: column %q is not numeric", ErrBackendConstruction, name)
	}
}
