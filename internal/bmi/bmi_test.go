package bmi

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/bmilog/internal/model"
)

func TestNormalizeHeight(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"meters", 1.75, 1.75},
		{"exactly threshold", 3, 3},
		{"tiny", 0.01, 0.01},
		{"centimeters", 175, 1.75},
		{"just above threshold", 3.5, 0.035},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, NormalizeHeight(tc.in))
		})
	}
}

func TestComputeExact(t *testing.T) {
	for _, c := range []struct{ w, h float64 }{{70, 1.75}, {55.5, 1.62}, {120, 2.01}} {
		require.Equal(t, c.w/(c.h*c.h), Compute(c.w, c.h))
	}
}

func TestComputeScenario(t *testing.T) {
	v := Compute(70, NormalizeHeight(175))
	require.InDelta(t, 22.857, v, 0.001)
	cat, color := Classify(v)
	require.Equal(t, model.CategoryNormal, cat)
	require.Equal(t, model.ColorGreen, color)
}

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		in   float64
		want model.Category
	}{
		{0.1, model.CategoryUnderweight},
		{18.49, model.CategoryUnderweight},
		{18.5, model.CategoryNormal},
		{24.999, model.CategoryNormal},
		{25, model.CategoryOverweight},
		{29.99, model.CategoryOverweight},
		{30, model.CategoryObese},
		{95, model.CategoryObese},
	}
	for _, tc := range tests {
		got, _ := Classify(tc.in)
		if got != tc.want {
			t.Fatalf("Classify(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBandsPartition(t *testing.T) {
	bs := Bands()
	require.Len(t, bs, 4)
	require.Equal(t, 0.0, bs[0].Min)
	require.True(t, math.IsInf(bs[len(bs)-1].Max, 1))
	for i := 1; i < len(bs); i++ {
		require.Equal(t, bs[i-1].Max, bs[i].Min, "bands must be contiguous")
	}
	colors := map[model.Color]bool{}
	for _, b := range bs {
		colors[b.Color] = true
	}
	require.Len(t, colors, 4)
}

func TestClassifyDeterministic(t *testing.T) {
	for v := 0.5; v < 45; v += 0.25 {
		c1, k1 := Classify(v)
		c2, k2 := Classify(v)
		require.Equal(t, c1, c2)
		require.Equal(t, k1, k2)
	}
}
