package formatting

import (
	"reflect"
	"testing"

	coretensor "cogentcore.org/lab/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTensorExtractor(t *testing.T) {
	tbl := newTestTable(t)
	ex := TensorExtractor{}

	row, err := ex.ExtractRow(tbl)
	require.NoError(t, err)
	assert.Equal(t, int64(0), row["a"])
	assert.Equal(t, "foo", row["b"])
	rowC := row["c"].(coretensor.Tensor)
	assert.Equal(t, 3, rowC.Len())
	assert.Equal(t, 1.0, rowC.Float1D(0))

	col, err := ex.ExtractColumn(tbl)
	require.NoError(t, err)
	colT := col.(coretensor.Tensor)
	assert.Equal(t, reflect.Int, colT.DataType())
	assert.Equal(t, 2, colT.Int1D(2))

	batch, err := ex.ExtractBatch(tbl)
	require.NoError(t, err)
	batchB := batch["b"].(coretensor.Tensor)
	assert.True(t, batchB.IsString())
	assert.Equal(t, "foobar", batchB.String1D(2))
	batchC := batch["c"].(coretensor.Tensor)
	assert.Equal(t, 2, batchC.NumDims())
	assert.Equal(t, 3, batchC.DimSize(0))
	assert.Equal(t, 3, batchC.DimSize(1))
	assert.Equal(t, 1.0, batchC.Float1D(4), "diagonal of the identity")
}

func TestTensorExtractorRagged(t *testing.T) {
	tbl := newRaggedTable(t)

	batch, err := TensorExtractor{}.ExtractBatch(tbl)
	require.NoError(t, err)

	ragged := batch["c"].(Ragged)
	assert.Equal(t, []int{1, 2, 3}, ragged.Lengths)
	assert.Equal(t, 3, ragged.NumRows())
	assert.Equal(t, 6, ragged.Values.Len())

	row := ragged.Row(1)
	assert.Equal(t, 2, row.Len())
	assert.Equal(t, 2.0, row.Float1D(0))
	assert.Equal(t, 3.0, row.Float1D(1))
}

func TestTensorFormatterKind(t *testing.T) {
	tbl := newTestTable(t)
	f := NewTensorFormatter(FormatConfig{TensorKind: reflect.Float32})

	batch, err := f.FormatBatch(tbl)
	require.NoError(t, err)
	assert.Equal(t, reflect.Float32, batch["a"].(coretensor.Tensor).DataType())
	assert.Equal(t, reflect.Float32, batch["c"].(coretensor.Tensor).DataType())
	assert.True(t, batch["b"].(coretensor.Tensor).IsString(), "string tensors pass through")

	row, err := f.FormatRow(tbl)
	require.NoError(t, err)
	assert.Equal(t, reflect.Float32, row["c"].(coretensor.Tensor).DataType())
	assert.Equal(t, float32(0), row["a"])
}

func TestTensorFormatterRaggedKind(t *testing.T) {
	tbl := newRaggedTable(t)
	f := NewTensorFormatter(FormatConfig{TensorKind: reflect.Int})

	batch, err := f.FormatBatch(tbl)
	require.NoError(t, err)
	ragged := batch["c"].(Ragged)
	assert.Equal(t, reflect.Int, ragged.Values.DataType())
	assert.Equal(t, []int{1, 2, 3}, ragged.Lengths)
}

func TestTensorFormatterUnsupportedKind(t *testing.T) {
	tbl := newTestTable(t)
	f := NewTensorFormatter(FormatConfig{TensorKind: reflect.Complex128})

	_, err := f.FormatColumn(tbl)
	assert.ErrorIs(t, err, ErrBackendConstruction)
}
