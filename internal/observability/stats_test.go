package observability

import (
	"math"
	"testing"
)

func TestLinearTrend(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single point", []float64{3}, 0},
		{"rising", []float64{1, 2, 3}, 1},
		{"falling", []float64{10, 8, 6, 4}, -2},
		{"flat", []float64{5, 5, 5}, 0},
		{"noisy", []float64{1, 3, 2, 4}, 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := linearTrend(tt.values); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("linearTrend(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestPopulationStdDev(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"constant", []float64{5, 5, 5}, 0},
		{"divides by n", []float64{2, 4, 4, 4, 5, 5, 7, 9}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := populationStdDev(tt.values); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("populationStdDev(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestMinMax(t *testing.T) {
	lo, hi := minMax([]float64{3, -1, 7, 2})
	if lo != -1 || hi != 7 {
		t.Errorf("minMax = (%v, %v), want (-1, 7)", lo, hi)
	}

	lo, hi = minMax([]float64{1, math.NaN(), 2})
	if !math.IsNaN(lo) || !math.IsNaN(hi) {
		t.Errorf("expected NaN to propagate, got (%v, %v)", lo, hi)
	}
}
