package formatting

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"
)

var (
	colA = []int64{0, 1, 2}
	colB = []string{"foo", "bar", "foobar"}
	colC = [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
)

// newTestTable builds the canonical three-column table used across
// the package tests: a=[0,1,2], b=["foo","bar","foobar"], c is a 3x3
// identity as list<float64>.
func newTestTable(t *testing.T) arrow.Table {
	t.Helper()
	return buildTable(t, colA, colB, colC)
}

// newRaggedTable builds a two-column table whose list column has
// row lengths 1, 2 and 3.
func newRaggedTable(t *testing.T) arrow.Table {
	t.Helper()
	return buildTable(t, colA, colB, [][]float64{{1}, {2, 3}, {4, 5, 6}})
}

// newChunkedTable builds the canonical table from two record batches
// (rows 0-1, then row 2), so every column carries two chunks.
func newChunkedTable(t *testing.T) arrow.Table {
	t.Helper()
	return buildChunkedTable(t, 2, colA, colB, colC)
}

func buildTable(t *testing.T, a []int64, b []string, c [][]float64) arrow.Table {
	t.Helper()
	return buildChunkedTable(t, len(a), a, b, c)
}

// buildChunkedTable splits the column data into record batches of at
// most batchRows rows and assembles the table from them.
func buildChunkedTable(t *testing.T, batchRows int, a []int64, b []string, c [][]float64) arrow.Table {
	t.Helper()
	pool := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "a", Type: arrow.PrimitiveTypes.Int64},
		{Name: "b", Type: arrow.BinaryTypes.String},
		{Name: "c", Type: arrow.ListOf(arrow.PrimitiveTypes.Float64)},
	}, nil)

	if batchRows < 1 {
		batchRows = 1
	}
	var recs []arrow.Record
	for start := 0; start == 0 || start < len(a); start += batchRows {
		end := start + batchRows
		if end > len(a) {
			end = len(a)
		}
		rb := array.NewRecordBuilder(pool, schema)
		rb.Field(0).(*array.Int64Builder).AppendValues(a[start:end], nil)
		rb.Field(1).(*array.StringBuilder).AppendValues(b[start:end], nil)
		lb := rb.Field(2).(*array.ListBuilder)
		vb := lb.ValueBuilder().(*array.Float64Builder)
		for _, row := range c[start:end] {
			lb.Append(true)
			vb.AppendValues(row, nil)
		}
		recs = append(recs, rb.NewRecord())
		rb.Release()
	}

	tbl := array.NewTableFromRecords(schema, recs)
	for _, rec := range recs {
		rec.Release()
	}
	return tbl
}

// requireTableRows asserts the subtable's full native batch matches
// the expected per-column values, regardless of internal chunking.
func requireTableRows(t *testing.T, tbl arrow.Table, a []int64, b []string, c [][]float64) {
	t.Helper()
	require.EqualValues(t, len(a), tbl.NumRows())
	batch, err := NativeExtractor{}.ExtractBatch(tbl)
	require.NoError(t, err)
	require.Equal(t, a, batch["a"].([]int64))
	require.Equal(t, b, batch["b"].([]string))
	require.Equal(t, c, batch["c"].([][]float64))
}
