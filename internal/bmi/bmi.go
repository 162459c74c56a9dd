// Package bmi computes and classifies Body Mass Index values.
package bmi

import (
	"math"

	"github.com/verte-zerg/bmilog/internal/model"
)

// centimeterThreshold separates heights entered in centimeters from meters.
const centimeterThreshold = 3.0

// DisplayMax is the upper bound used when drawing the open-ended top band.
const DisplayMax = 40.0

// Band is a half-open BMI range [Min, Max).
type Band struct {
	Min      float64
	Max      float64
	Category model.Category
	Color    model.Color
}

// Contains reports whether v falls into the band.
func (b Band) Contains(v float64) bool {
	return v >= b.Min && v < b.Max
}

// Bands must stay ascending, contiguous and disjoint.
var bands = []Band{
	{Min: 0, Max: 18.5, Category: model.CategoryUnderweight, Color: model.ColorBlue},
	{Min: 18.5, Max: 25, Category: model.CategoryNormal, Color: model.ColorGreen},
	{Min: 25, Max: 30, Category: model.CategoryOverweight, Color: model.ColorOrange},
	{Min: 30, Max: math.Inf(1), Category: model.CategoryObese, Color: model.ColorRed},
}

// Bands returns a copy of the classification table in ascending order.
func Bands() []Band {
	out := make([]Band, len(bands))
	copy(out, bands)
	return out
}

// NormalizeHeight converts a raw height to meters. Values above 3 are
// treated as centimeters.
func NormalizeHeight(h float64) float64 {
	if h > centimeterThreshold {
		return h / 100
	}
	return h
}

// Compute returns weight / height². Operands must be positive.
func Compute(weightKg, heightM float64) float64 {
	return weightKg / (heightM * heightM)
}

// Classify maps a BMI value to its category and color.
func Classify(v float64) (model.Category, model.Color) {
	for _, b := range bands {
		if b.Contains(v) {
			return b.Category, b.Color
		}
	}
	// Only reachable for values below zero or NaN.
	first := bands[0]
	return first.Category, first.Color
}
