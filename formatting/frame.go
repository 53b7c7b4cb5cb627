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
	"encoding/json"
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// FrameExtractor materializes tables as dataframe columns. A row is a
// one-row dataframe rather than a map of scalars, so each column
// keeps its series type. The backend has no nested column type, so
// list and struct columns are JSON-encoded into string series.
type FrameExtractor struct{}

func (FrameExtractor) ExtractRow(t arrow.Table) (dataframe.DataFrame, error) {
	if t.NumRows() == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("%w: cannot extract a row from an empty table", ErrOutOfRange)
	}
	one := sliceTable(t, 0, 1)
	return frameFromTable(one)
}

func (FrameExtractor) ExtractColumn(t arrow.Table) (series.Series, error) {
	if t.NumCols() == 0 {
		return series.Series{}, fmt.Errorf("%w: table has no columns", ErrColumnNotFound)
	}
	return seriesFromColumn(t.Column(0))
}

func (FrameExtractor) ExtractBatch(t arrow.Table) (dataframe.DataFrame, error) {
	return frameFromTable(t)
}

// FrameFormatter composes a FrameExtractor with a target series type.
// Series the backend cannot convert pass through at their native
// type; conversion failures reported by the backend surface as
// ErrBackendConstruction.
type FrameFormatter struct {
	extractor FrameExtractor
	config    FormatConfig
}

// NewFrameFormatter returns a formatter producing dataframe columns
// with the configured target series type.
func NewFrameFormatter(config FormatConfig) *FrameFormatter {
	return &FrameFormatter{config: config}
}

func (f *FrameFormatter) FormatRow(t arrow.Table) (dataframe.DataFrame, error) {
	df, err := f.extractor.ExtractRow(t)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	return f.coerceFrame(df)
}

func (f *FrameFormatter) FormatColumn(t arrow.Table) (series.Series, error) {
	s, err := f.extractor.ExtractColumn(t)
	if err != nil {
		return series.Series{}, err
	}
	return f.coerceSeries(s)
}

func (f *FrameFormatter) FormatBatch(t arrow.Table) (dataframe.DataFrame, error) {
	df, err := f.extractor.ExtractBatch(t)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	return f.coerceFrame(df)
}

// coerceFrame rebuilds the frame with each coercible series at the
// configured type.
func (f *FrameFormatter) coerceFrame(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if f.config.FrameType == "" {
		return df, nil
	}
	names := df.Names()
	out := make([]series.Series, len(names))
	for i, name := range names {
		cs, err := f.coerceSeries(df.Col(name))
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		out[i] = cs
	}
	res := dataframe.New(out...)
	if res.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %v", ErrBackendConstruction, res.Err)
	}
	return res, nil
}

// coerceSeries converts one series to the configured type. String
// series under a numeric request stay untouched.
func (f *FrameFormatter) coerceSeries(s series.Series) (series.Series, error) {
	target := f.config.FrameType
	if target == "" || s.Type() == target {
		return s, nil
	}
	if s.Type() == series.String && (target == series.Int || target == series.Float) {
		return s, nil
	}
	var out series.Series
	switch target {
	case series.Float:
		out = series.New(s.Float(), series.Float, s.Name)
	case series.Int:
		vals, err := s.Int()
		if err != nil {
			return s, nil
		}
		out = series.New(vals, series.Int, s.Name)
	case series.String:
		out = series.New(s.Records(), series.String, s.Name)
	case series.Bool:
		vals, err := s.Bool()
		if err != nil {
			return s, nil
		}
		out = series.New(vals, series.Bool, s.Name)
	default:
		return series.Series{}, fmt.Errorf("%w: unsupported series type %q", ErrBackendConstruction, target)
	}
	if out.Err != nil {
		return series.Series{}, fmt.Errorf("%w: %v", ErrBackendConstruction, out.Err)
	}
	return out, nil
}

// frameFromTable builds a dataframe with one series per column, in
// schema order.
func frameFromTable(t arrow.Table) (dataframe.DataFrame, error) {
	out := make([]series.Series, int(t.NumCols()))
	for i := 0; i < int(t.NumCols()); i++ {
		s, err := seriesFromColumn(t.Column(i))
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		out[i] = s
	}
	df := dataframe.New(out...)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %v", ErrBackendConstruction, df.Err)
	}
	return df, nil
}

// seriesFromColumn converts one arrow column into a typed series.
func seriesFromColumn(col *arrow.Column) (series.Series, error) {
	name := col.Name()
	var s series.Series
	switch col.DataType().ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		vals := make([]int, 0, col.Data().Len())
		null := false
		for _, chunk := range col.Data().Chunks() {
			for i := 0; i < chunk.Len(); i++ {
				v := cellValue(chunk, i)
				if v == nil {
					null = true
					vals = append(vals, 0)
					continue
				}
				fv, _ := scalarFloat(v)
				vals = append(vals, int(fv))
			}
		}
		s = series.New(vals, series.Int, name)
		if null {
			s = withNulls(s, col)
		}
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		vals := make([]float64, 0, col.Data().Len())
		for _, chunk := range col.Data().Chunks() {
			for i := 0; i < chunk.Len(); i++ {
				if chunk.IsNull(i) {
					vals = append(vals, math.NaN())
					continue
				}
				fv, _ := scalarFloat(cellValue(chunk, i))
				vals = append(vals, fv)
			}
		}
		s = series.New(vals, series.Float, name)
	case arrow.BOOL:
		vals := make([]bool, 0, col.Data().Len())
		for _, chunk := range col.Data().Chunks() {
			for i := 0; i < chunk.Len(); i++ {
				v, _ := cellValue(chunk, i).(bool)
				vals = append(vals, v)
			}
		}
		s = series.New(vals, series.Bool, name)
	case arrow.STRING, arrow.LARGE_STRING:
		vals := make([]string, 0, col.Data().Len())
		for _, chunk := range col.Data().Chunks() {
			for i := 0; i < chunk.Len(); i++ {
				v, _ := cellValue(chunk, i).(string)
				vals = append(vals, v)
			}
		}
		s = series.New(vals, series.String, name)
	default:
		// Nested columns have no series type; encode each cell as JSON.
		vals := make([]string, 0, col.Data().Len())
		for _, chunk := range col.Data().Chunks() {
			for i := 0; i < chunk.Len(); i++ {
				b, err := json.Marshal(cellValue(chunk, i))
				if err != nil {
					return series.Series{}, fmt.Errorf("%w: %v", ErrBackendConstruction, err)
				}
				vals = append(vals, string(b))
			}
		}
		s = series.New(vals, series.String, name)
	}
	if s.Err != nil {
		return series.Series{}, fmt.Errorf("%w: %v", ErrBackendConstruction, s.Err)
	}
	return s, nil
}

// withNulls re-creates an int series with NaN markers where the
// source column is null, which forces the series to float as pandas
// does for nullable integer data.
func withNulls(s series.Series, col *arrow.Column) series.Series {
	vals := make([]float64, 0, col.Data().Len())
	for _, chunk := range col.Data().Chunks() {
		for i := 0; i < chunk.Len(); i++ {
			if chunk.IsNull(i) {
				vals = append(vals, math.NaN())
				continue
			}
			fv, _ := scalarFloat(cellValue(chunk, i))
			vals = append(vals, fv)
		}
	}
	return series.New(vals, series.Float, s.Name)
}
