// Package model defines shared data structures.
package model

import "time"

// DateLayout is the calendar-day format used for measurement dates.
const DateLayout = "2006-01-02"

// Measurement is one recorded BMI observation.
type Measurement struct {
	Date string  `json:"date" yaml:"date"`
	BMI  float64 `json:"bmi" yaml:"bmi"`
}

// NewMeasurement stamps a BMI value with the local calendar day of now.
func NewMeasurement(now time.Time, bmi float64) Measurement {
	return Measurement{
		Date: now.In(time.Local).Format(DateLayout),
		BMI:  bmi,
	}
}

// History maps a person name to measurements in submission order.
type History map[string][]Measurement

// Point is a single (date, bmi) pair of a trend series.
type Point struct {
	Date string
	BMI  float64
}

// Category is a BMI health band label.
type Category string

const (
	CategoryUnderweight Category = "Underweight"
	CategoryNormal      Category = "Normal weight"
	CategoryOverweight  Category = "Overweight"
	CategoryObese       Category = "Obese"
)

// Color is a fixed display hint for a category.
type Color string

const (
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorOrange Color = "orange"
	ColorRed    Color = "red"
)

// Hex returns the reference hex value for the color.
func (c Color) Hex() string {
	switch c {
	case ColorBlue:
		return "#1E90FF"
	case ColorGreen:
		return "#2E8B57"
	case ColorOrange:
		return "#FFA500"
	case ColorRed:
		return "#FF4500"
	default:
		return "#8C8C8C"
	}
}

// Theme is the persisted UI appearance.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Toggled returns the opposite theme.
func (t Theme) Toggled() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Settings is the single global settings record.
type Settings struct {
	Theme Theme `json:"theme"`
}

// DefaultSettings returns settings used when none are persisted.
func DefaultSettings() Settings {
	return Settings{Theme: ThemeLight}
}

// ReportConfig controls history rendering.
type ReportConfig struct {
	Name   string
	Window int
	Height int
}
