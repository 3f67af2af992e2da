package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestScalar(t *testing.T) {
	testCases := []struct {
		name      string
		in        any
		expected  float64
		expectErr bool
	}{
		{name: "float64", in: 2.5, expected: 2.5},
		{name: "int", in: 3, expected: 3},
		{name: "slice mean", in: []float64{1, 2, 3}, expected: 2},
		{name: "matrix mean", in: mat.NewDense(2, 2, []float64{1, 2, 3, 6}), expected: 3},
		{name: "column", in: Column(10), expected: 10},
		{name: "empty slice", in: []float64{}, expectErr: true},
		{name: "string", in: "x", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Scalar(tc.in)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tc.expected, got, 1e-12)
		})
	}
}

func TestAsDense(t *testing.T) {
	d, err := AsDense(4.0)
	require.NoError(t, err)
	assert.Equal(t, 4.0, d.At(0, 0))

	_, err = AsDense("x")
	require.Error(t, err)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1.5", Format(1.5))
	assert.Contains(t, Format(mat.NewDense(10, 1, nil)), "10x1 mean=0")
}
