// Package core provides fundamental types and utilities for the tower defence.
// It contains no external dependencies (especially no Bubble Tea) to keep the
// simulation and rendering engines pure and testable.
package core

import "math"

// Polar is a logical field position relative to the tower at the origin.
// Phi is kept in [0, 2π).
type Polar struct {
	R   float64 // Radius from the tower center
	Phi float64 // Angle in radians
}

// NewPolar creates a polar position with the angle normalized into [0, 2π).
func NewPolar(r, phi float64) Polar {
	return Polar{R: r, Phi: NormalizeAngle(phi)}
}

// NormalizeAngle maps any angle into [0, 2π).
func NormalizeAngle(phi float64) float64 {
	phi = math.Mod(phi, 2*math.Pi)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	// Mod of a tiny negative value can round up to exactly 2π.
	if phi >= 2*math.Pi {
		phi = 0
	}
	return phi
}

// AngleBetween returns the smallest angular separation of two angles, in [0, π].
func AngleBetween(a, b float64) float64 {
	lo, hi := math.Min(a, b), math.Max(a, b)
	return math.Min(hi-lo, lo+2*math.Pi-hi)
}

// PolarDistance returns the Euclidean distance between two polar positions
// using the law of cosines.
func PolarDistance(a, b Polar) float64 {
	d2 := a.R*a.R + b.R*b.R - 2*a.R*b.R*math.Cos(a.Phi-b.Phi)
	if d2 < 0 {
		// Rounding noise for coincident points.
		return 0
	}
	return math.Sqrt(d2)
}

// PolarDistanceLessThan reports whether PolarDistance(a, b) < eps.
// Pairs whose radii already differ by eps or more are rejected without trigonometry.
func PolarDistanceLessThan(a, b Polar, eps float64) bool {
	if math.Abs(a.R-b.R) >= eps {
		return false
	}
	return PolarDistance(a, b) < eps
}

// Point is a screen position in pixels.
type Point struct {
	X, Y float64
}

// ScreenScale returns the number of pixels per logical unit for a screen of
// the given size, so that the visible radius spans half the screen diagonal.
func ScreenScale(width, height int, visibilityRadius float64) float64 {
	w, h := float64(width), float64(height)
	return math.Sqrt(w*w+h*h) / (2 * visibilityRadius)
}

// PolarToScreen converts a logical position into screen pixels with the
// tower at the screen center.
func PolarToScreen(p Polar, scale float64, width, height int) Point {
	r := p.R * scale
	return Point{
		X: r*math.Cos(p.Phi) + float64(width)/2,
		Y: r*math.Sin(p.Phi) + float64(height)/2,
	}
}

// ScreenToPolar is the inverse of PolarToScreen.
func ScreenToPolar(pt Point, scale float64, width, height int) Polar {
	x := (pt.X - float64(width)/2) / scale
	y := (pt.Y - float64(height)/2) / scale
	return NewPolar(math.Hypot(x, y), math.Atan2(y, x))
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
