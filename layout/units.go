package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe lengths. Layout works in pixels; font sizes stay in points.

// Unit represents the original unit of a length value as written by the user.
type Unit int

const (
	UnitNone Unit = iota // bare numbers, treated as pixels
	UnitPX               // pixels
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
)

// Conversion constants.
const (
	MmPerInch  = 25.4
	PtPerInch  = 72.0
	DefaultDPI = 96.0
)

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// inches converts physical units to inches; ok is false for pixel-like units.
func (l Length) inches() (float64, bool) {
	switch l.Unit {
	case UnitMM:
		return l.Value / MmPerInch, true
	case UnitCM:
		return l.Value * 10 / MmPerInch, true
	case UnitIN:
		return l.Value, true
	case UnitPT:
		return l.Value / PtPerInch, true
	default:
		return 0, false
	}
}

// Pixels converts the length to pixels at dpi. Bare numbers are already pixels.
func (l Length) Pixels(dpi float64) float64 {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	if in, ok := l.inches(); ok {
		return in * dpi
	}
	return l.Value
}

// Points converts the length to points. Pixels are interpreted at dpi; bare numbers are points.
func (l Length) Points(dpi float64) float64 {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	if in, ok := l.inches(); ok {
		return in * PtPerInch
	}
	if l.Unit == UnitPX {
		return l.Value * PtPerInch / dpi
	}
	return l.Value
}

// PointsToPixels converts a font size to pixels at dpi.
func PointsToPixels(pt, dpi float64) float64 {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return pt * dpi / PtPerInch
}

// ParseRawLengthStr parses a length string preserving its unit.
func ParseRawLengthStr(value string) Length {
	v := strings.TrimSpace(value)
	if v == "" {
		return Length{Value: 0, Unit: UnitNone}
	}
	lower := strings.ToLower(v)
	unit := UnitNone
	num := lower
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(lower, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(lower, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{Value: 0, Unit: UnitNone}
	}
	return Length{Value: f, Unit: unit}
}
