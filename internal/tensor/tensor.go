// Package tensor holds helpers for the values that flow between modules.
// Built-in modules exchange *mat.Dense batches (one row per example); stub
// modules in tests use plain float64 values.
package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Scalar reduces a value to one number: scalars are returned as-is and
// matrices or slices are averaged.
func Scalar(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case []float64:
		if len(x) == 0 {
			return 0, fmt.Errorf("cannot reduce an empty slice")
		}
		var sum float64
		for _, f := range x {
			sum += f
		}
		return sum / float64(len(x)), nil
	case mat.Matrix:
		r, c := x.Dims()
		if r == 0 || c == 0 {
			return 0, fmt.Errorf("cannot reduce an empty matrix")
		}
		return mat.Sum(x) / float64(r*c), nil
	default:
		return 0, fmt.Errorf("cannot reduce %T to a scalar", v)
	}
}

// Format renders a value for logs.
func Format(v any) string {
	if m, ok := v.(mat.Matrix); ok {
		r, c := m.Dims()
		if r*c <= 8 {
			return fmt.Sprintf("%v", mat.Formatted(m, mat.Squeeze()))
		}
		s, _ := Scalar(m)
		return fmt.Sprintf("%dx%d mean=%g", r, c, s)
	}
	return fmt.Sprintf("%v", v)
}

// Column returns a batch of scalars as an n×1 matrix.
func Column(values ...float64) *mat.Dense {
	return mat.NewDense(len(values), 1, append([]float64(nil), values...))
}

// AsDense accepts a *mat.Dense or a scalar and returns a matrix.
func AsDense(v any) (*mat.Dense, error) {
	switch x := v.(type) {
	case *mat.Dense:
		return x, nil
	case mat.Matrix:
		return mat.DenseCopyOf(x), nil
	case float64:
		return mat.NewDense(1, 1, []float64{x}), nil
	default:
		return nil, fmt.Errorf("expected a matrix, got %T", v)
	}
}
