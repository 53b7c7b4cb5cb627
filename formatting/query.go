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

// Package formatting resolves row and column selectors against
// immutable Arrow tables and materializes the result in one of
// several in-memory backends: native Go containers, dense numeric
// arrays, dataframe columns, or tensors.
//
// The pipeline is: selector -> QueryTable -> subtable -> Extractor ->
// Formatter. Tables are never mutated; every query returns a new
// table value, sharing column storage with the parent where a
// contiguous slice permits it.
package formatting

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// QueryTable resolves key against t and returns the selected
// subtable. Accepted key shapes are the five Key kinds plus their raw
// equivalents: any Go integer (Index), a string (ColumnName), an
// integer slice or sized integer array (Indices). The selector's kind
// is classified before any bounds arithmetic, so malformed or
// unbounded selectors fail with ErrInvalidKey without touching row
// data.
//
// Bounds behavior differs by kind: Slice clamps and never errors,
// while Index, Range and Indices fail with ErrOutOfRange for any
// resolved address outside the table.
func QueryTable(t arrow.Table, key any) (arrow.Table, error) {
	k, err := classifyKey(key)
	if err != nil {
		return nil, err
	}
	n := int(t.NumRows())

	switch k := k.(type) {
	case Index:
		i := int(k)
		if i < 0 {
			i += n
		}
		if i < 0 || i >= n {
			return nil, fmt.Errorf("%w: row %d is out of bounds for a table with %d rows", ErrOutOfRange, int(k), n)
		}
		return sliceTable(t, int64(i), 1), nil

	case Slice:
		start, stop, strided, err := resolveSlice(k, n)
		if err != nil {
			return nil, err
		}
		if strided != nil {
			return gatherTable(t, strided), nil
		}
		return sliceTable(t, int64(start), int64(stop-start)), nil

	case Range:
		raw, err := k.enumerate()
		if err != nil {
			return nil, err
		}
		resolved, err := resolveIndices(raw, n)
		if err != nil {
			return nil, err
		}
		return gatherTable(t, resolved), nil

	case Indices:
		resolved, err := resolveIndices(k, n)
		if err != nil {
			return nil, err
		}
		return gatherTable(t, resolved), nil

	case ColumnName:
		return projectColumn(t, string(k))
	}
	return nil, fmt.Errorf("%w: %T", ErrInvalidKey, key)
}
