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

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/go-gota/gota/series"
	gtensor "gorgonia.org/tensor"
)

// Extractor converts a table into one backend's native row, column
// and batch representations, without any dtype coercion beyond what
// the backend structurally requires. Implementations are stateless
// and safe for concurrent use over immutable tables.
//
// ExtractRow reads row 0; callers subset to a single row first (for
// example via an Index key). ExtractColumn reads column 0; callers
// project via a ColumnName key first. ExtractBatch materializes every
// column in schema order.
type Extractor[R, C, B any] interface {
	ExtractRow(t arrow.Table) (R, error)
	ExtractColumn(t arrow.Table) (C, error)
	ExtractBatch(t arrow.Table) (B, error)
}

// Formatter mirrors the Extractor contract but applies the configured
// dtype coercion uniformly to every column that supports it. Columns
// whose native type is incompatible with the requested dtype (for
// example string columns under a numeric request) pass through
// uncoerced; that is never an error.
type Formatter[R, C, B any] interface {
	FormatRow(t arrow.Table) (R, error)
	FormatColumn(t arrow.Table) (C, error)
	FormatBatch(t arrow.Table) (B, error)
}

// FormatConfig bundles the per-backend construction options a
// Formatter applies on top of extraction. Zero values mean "keep the
// column's native element type". Each backend reads only its own
// field, expressed in that backend's dtype vocabulary.
type FormatConfig struct {
	// ArrayDtype is the target element type for the array backend.
	ArrayDtype gtensor.Dtype

	// FrameType is the target column type for the dataframe backend.
	FrameType series.Type

	// TensorKind is the target element kind for the tensor backend.
	TensorKind reflect.Kind
}

// DefaultFormatConfig returns a config that keeps every column's
// native element type.
func DefaultFormatConfig() FormatConfig {
	return FormatConfig{}
}

// FormatTable queries t with key and formats the result at the
// granularity the key implies: a row for an Index, a column for a
// ColumnName, and a batch for every other kind. f must be one of the
// formatters constructed by this package.
func FormatTable(t arrow.Table, key any, f any) (any, error) {
	k, err := classifyKey(key)
	if err != nil {
		return nil, err
	}
	sub, err := QueryTable(t, k)
	if err != nil {
		return nil, err
	}

	switch f := f.(type) {
	case *NativeFormatter:
		return formatAs(k, f, sub)
	case *ArrayFormatter:
		return formatAs(k, f, sub)
	case *FrameFormatter:
		return formatFrameAs(k, f, sub)
	case *TensorFormatter:
		return formatAs(k, f, sub)
	default:
		return nil, fmt.Errorf("%w: %T is not a formatter", ErrUnknownFormatter, f)
	}
}

// formatAs picks the row, column or batch operation for formatters
// whose row and batch representations are field maps.
func formatAs(k Key, f Formatter[map[string]any, any, map[string]any], sub arrow.Table) (any, error) {
	switch k.(type) {
	case Index:
		return f.FormatRow(sub)
	case ColumnName:
		return f.FormatColumn(sub)
	default:
		return f.FormatBatch(sub)
	}
}

// formatFrameAs is the dataframe-backend variant of formatAs.
func formatFrameAs(k Key, f *FrameFormatter, sub arrow.Table) (any, error) {
	switch k.(type) {
	case Index:
		return f.FormatRow(sub)
	case ColumnName:
		return f.FormatColumn(sub)
	default:
		return f.FormatBatch(sub)
	}
}
