package formatting

import (
	"reflect"
	"testing"

	coretensor "cogentcore.org/lab/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gtensor "gorgonia.org/tensor"
)

func TestQueryTableIndex(t *testing.T) {
	tbl := newTestTable(t)

	sub, err := QueryTable(tbl, 0)
	require.NoError(t, err)
	requireTableRows(t, sub, colA[:1], colB[:1], colC[:1])

	sub, err = QueryTable(tbl, 1)
	require.NoError(t, err)
	requireTableRows(t, sub, []int64{1}, []string{"bar"}, [][]float64{{0, 1, 0}})

	sub, err = QueryTable(tbl, -1)
	require.NoError(t, err)
	requireTableRows(t, sub, []int64{2}, []string{"foobar"}, [][]float64{{0, 0, 1}})

	_, err = QueryTable(tbl, 3)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = QueryTable(tbl, -4)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestQueryTableSlice(t *testing.T) {
	tbl := newTestTable(t)

	sub, err := QueryTable(tbl, NewSlice(0, 1))
	require.NoError(t, err)
	requireTableRows(t, sub, colA[:1], colB[:1], colC[:1])

	sub, err = QueryTable(tbl, NewSlice(1, 2))
	require.NoError(t, err)
	requireTableRows(t, sub, colA[1:2], colB[1:2], colC[1:2])

	sub, err = QueryTable(tbl, NewSlice(-2, -1))
	require.NoError(t, err)
	requireTableRows(t, sub, colA[1:2], colB[1:2], colC[1:2])

	// Open endpoints.
	start := -1
	sub, err = QueryTable(tbl, Slice{Start: &start})
	require.NoError(t, err)
	requireTableRows(t, sub, colA[2:], colB[2:], colC[2:])

	stop := 4
	sub, err = QueryTable(tbl, Slice{Stop: &stop})
	require.NoError(t, err)
	requireTableRows(t, sub, colA, colB, colC)

	start = -4
	sub, err = QueryTable(tbl, Slice{Start: &start})
	require.NoError(t, err)
	requireTableRows(t, sub, colA, colB, colC)

	// Strided.
	sub, err = QueryTable(tbl, Slice{}.WithStep(2))
	require.NoError(t, err)
	requireTableRows(t, sub, []int64{0, 2}, []string{"foo", "foobar"}, [][]float64{{1, 0, 0}, {0, 0, 1}})

	// Empty results, never an error.
	for _, key := range []Slice{
		NewSlice(-1, 0),
		NewSlice(2, 1),
		NewSlice(3, 3),
		NewSlice(3, 4),
	} {
		sub, err = QueryTable(tbl, key)
		require.NoError(t, err)
		requireTableRows(t, sub, []int64{}, []string{}, [][]float64{})
	}
}

func TestQueryTableRange(t *testing.T) {
	tbl := newTestTable(t)

	sub, err := QueryTable(tbl, NewRange(0, 1))
	require.NoError(t, err)
	requireTableRows(t, sub, colA[:1], colB[:1], colC[:1])

	sub, err = QueryTable(tbl, NewRange(-2, -1))
	require.NoError(t, err)
	requireTableRows(t, sub, colA[1:2], colB[1:2], colC[1:2])

	// Progressions mixing negative and positive addresses resolve
	// element-wise, so duplicates can occur.
	sub, err = QueryTable(tbl, NewRange(-1, 0))
	require.NoError(t, err)
	requireTableRows(t, sub, []int64{2}, []string{"foobar"}, [][]float64{{0, 0, 1}})

	sub, err = QueryTable(tbl, NewRange(-1, 3))
	require.NoError(t, err)
	requireTableRows(t, sub,
		[]int64{2, 0, 1, 2},
		[]string{"foobar", "foo", "bar", "foobar"},
		[][]float64{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}})

	sub, err = QueryTable(tbl, NewRange(0, 3).WithStep(2))
	require.NoError(t, err)
	requireTableRows(t, sub, []int64{0, 2}, []string{"foo", "foobar"}, [][]float64{{1, 0, 0}, {0, 0, 1}})

	// Step skips past the invalid endpoint: only row 0 is produced.
	sub, err = QueryTable(tbl, NewRange(0, 4).WithStep(6))
	require.NoError(t, err)
	requireTableRows(t, sub, colA[:1], colB[:1], colC[:1])

	// Empty progressions never error, even with invalid raw bounds.
	for _, key := range []Range{NewRange(2, 1), NewRange(3, 3), NewRange(5, 4)} {
		sub, err = QueryTable(tbl, key)
		require.NoError(t, err)
		requireTableRows(t, sub, []int64{}, []string{}, [][]float64{})
	}

	// Non-empty progressions visiting an invalid address fail.
	for _, key := range []Range{NewRange(0, 4), NewRange(-4, -1), NewRange(3, 4)} {
		_, err = QueryTable(tbl, key)
		assert.ErrorIs(t, err, ErrOutOfRange)
	}
}

func TestQueryTableIndices(t *testing.T) {
	tbl := newTestTable(t)

	sub, err := QueryTable(tbl, []int{0})
	require.NoError(t, err)
	requireTableRows(t, sub, colA[:1], colB[:1], colC[:1])

	sub, err = QueryTable(tbl, []int{-1})
	require.NoError(t, err)
	requireTableRows(t, sub, colA[2:], colB[2:], colC[2:])

	sub, err = QueryTable(tbl, []int{0, -1, 1})
	require.NoError(t, err)
	requireTableRows(t, sub, []int64{0, 2, 1}, []string{"foo", "foobar", "bar"}, [][]float64{{1, 0, 0}, {0, 0, 1}, {0, 1, 0}})

	// Empty list: zero rows, full schema.
	sub, err = QueryTable(tbl, []int{})
	require.NoError(t, err)
	assert.True(t, sub.Schema().Equal(tbl.Schema()))
	requireTableRows(t, sub, []int64{}, []string{}, [][]float64{})

	_, err = QueryTable(tbl, []int{3})
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = QueryTable(tbl, []int{-4})
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestQueryTableArrayKeys(t *testing.T) {
	tbl := newTestTable(t)

	dense := gtensor.New(gtensor.WithShape(3), gtensor.WithBacking([]int{0, -1, 1}))
	sub, err := QueryTable(tbl, dense)
	require.NoError(t, err)
	requireTableRows(t, sub, []int64{0, 2, 1}, []string{"foo", "foobar", "bar"}, [][]float64{{1, 0, 0}, {0, 0, 1}, {0, 1, 0}})

	ix := coretensor.NewInt(3)
	ix.SetInt1D(0, 0)
	ix.SetInt1D(-1, 1)
	ix.SetInt1D(1, 2)
	sub, err = QueryTable(tbl, ix)
	require.NoError(t, err)
	requireTableRows(t, sub, []int64{0, 2, 1}, []string{"foo", "foobar", "bar"}, [][]float64{{1, 0, 0}, {0, 0, 1}, {0, 1, 0}})
}

func TestQueryTableColumnName(t *testing.T) {
	tbl := newTestTable(t)

	sub, err := QueryTable(tbl, "a")
	require.NoError(t, err)
	require.EqualValues(t, 1, sub.NumCols())
	require.EqualValues(t, 3, sub.NumRows())

	// Projection then extraction equals direct column extraction.
	projected, err := NativeExtractor{}.ExtractColumn(sub)
	require.NoError(t, err)
	assert.Equal(t, colA, projected.([]int64))

	_, err = QueryTable(tbl, "z")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestQueryTableInvalidKeys(t *testing.T) {
	tbl := newTestTable(t)

	for _, key := range []any{
		0.5,
		float32(1),
		true,
		[]any{0, "a"},
		[]string{"a", "b"},
		reflect.TypeOf(0),
		struct{}{},
		nil,
	} {
		_, err := QueryTable(tbl, key)
		assert.ErrorIs(t, err, ErrInvalidKey, "key %#v", key)
	}
}

func TestQueryTableLazyKeyNotConsumed(t *testing.T) {
	tbl := newTestTable(t)

	// An iterator-style key is rejected without being invoked.
	calls := 0
	next := func() (int, bool) {
		calls++
		return calls - 1, true
	}
	_, err := QueryTable(tbl, next)
	assert.ErrorIs(t, err, ErrInvalidKey)
	assert.Zero(t, calls)

	// A channel key is rejected without receiving from it.
	ch := make(chan int, 1)
	ch <- 7
	_, err = QueryTable(tbl, ch)
	assert.ErrorIs(t, err, ErrInvalidKey)
	assert.Len(t, ch, 1)
}

func TestQueryTableChunkedGather(t *testing.T) {
	// Two record batches: the gather paths must resolve addresses
	// across the chunk boundary, not just inside the first chunk.
	tbl := newChunkedTable(t)
	require.Len(t, tbl.Column(0).Data().Chunks(), 2)

	sub, err := QueryTable(tbl, []int{2, 0})
	require.NoError(t, err)
	requireTableRows(t, sub, []int64{2, 0}, []string{"foobar", "foo"}, [][]float64{{0, 0, 1}, {1, 0, 0}})

	sub, err = QueryTable(tbl, NewRange(0, 3))
	require.NoError(t, err)
	requireTableRows(t, sub, colA, colB, colC)

	sub, err = QueryTable(tbl, Slice{}.WithStep(2))
	require.NoError(t, err)
	requireTableRows(t, sub, []int64{0, 2}, []string{"foo", "foobar"}, [][]float64{{1, 0, 0}, {0, 0, 1}})

	// Slicing a chunked table and gathering from the result.
	sub, err = QueryTable(tbl, NewSlice(1, 3))
	require.NoError(t, err)
	sub, err = QueryTable(sub, []int{1, 0})
	require.NoError(t, err)
	requireTableRows(t, sub, []int64{2, 1}, []string{"foobar", "bar"}, [][]float64{{0, 0, 1}, {0, 1, 0}})
}

func TestQueryTableDoesNotMutateParent(t *testing.T) {
	tbl := newTestTable(t)

	_, err := QueryTable(tbl, []int{2, 0})
	require.NoError(t, err)
	_, err = QueryTable(tbl, NewSlice(0, 2))
	require.NoError(t, err)
	requireTableRows(t, tbl, colA, colB, colC)
}
