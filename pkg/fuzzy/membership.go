package fuzzy

import (
	"fmt"
	"math"
)

// Shape identifies the form of a piecewise-linear membership function
type Shape string

const (
	Triangular  Shape = "triangular"
	Trapezoidal Shape = "trapezoidal"
)

// IsValid reports whether the shape is supported
func (s Shape) IsValid() bool {
	switch s {
	case Triangular, Trapezoidal:
		return true
	default:
		return false
	}
}

// Breakpoints returns how many breakpoints the shape needs
func (s Shape) Breakpoints() int {
	switch s {
	case Triangular:
		return 3
	case Trapezoidal:
		return 4
	default:
		return 0
	}
}

// MembershipFunction maps a crisp value to a degree in [0,1].
//
// A triangular function (a,b,c) rises from 0 at a to 1 at b and falls back to 0 at c.
// A trapezoidal function (a,b,c,d) has a plateau of 1 between b and c. When a == b or
// c == d the corresponding edge is a step rather than a slope.
type MembershipFunction struct {
	Shape  Shape     `json:"shape"`
	Points []float64 `json:"points"`
}

// Tri builds a triangular membership function
func Tri(a, b, c float64) MembershipFunction {
	return MembershipFunction{Shape: Triangular, Points: []float64{a, b, c}}
}

// Trap builds a trapezoidal membership function
func Trap(a, b, c, d float64) MembershipFunction {
	return MembershipFunction{Shape: Trapezoidal, Points: []float64{a, b, c, d}}
}

// Validate checks shape, breakpoint count, finiteness and ordering
func (mf MembershipFunction) Validate() error {
	if !mf.Shape.IsValid() {
		return fmt.Errorf("unsupported membership shape %q", mf.Shape)
	}
	if len(mf.Points) != mf.Shape.Breakpoints() {
		return fmt.Errorf("%s membership needs %d breakpoints, got %d", mf.Shape, mf.Shape.Breakpoints(), len(mf.Points))
	}
	for i, p := range mf.Points {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("breakpoint %d is not finite", i)
		}
		if i > 0 && p < mf.Points[i-1] {
			return fmt.Errorf("breakpoints must be non-decreasing, got %v", mf.Points)
		}
	}
	return nil
}

// corners returns the function as a trapezoid (a,b,c,d)
func (mf MembershipFunction) corners() (a, b, c, d float64) {
	if mf.Shape == Triangular {
		return mf.Points[0], mf.Points[1], mf.Points[1], mf.Points[2]
	}
	return mf.Points[0], mf.Points[1], mf.Points[2], mf.Points[3]
}

// Degree evaluates the membership function at x. The function must be valid.
func (mf MembershipFunction) Degree(x float64) float64 {
	a, b, c, d := mf.corners()

	var mu float64
	switch {
	case x < a || x > d:
		mu = 0
	case x >= b && x <= c:
		mu = 1
	case x < b:
		// a <= x < b implies b > a
		mu = (x - a) / (b - a)
	default:
		// c < x <= d implies d > c
		mu = (d - x) / (d - c)
	}
	return clampUnit(mu)
}

// clone returns a copy that does not share the breakpoint slice
func (mf MembershipFunction) clone() MembershipFunction {
	return MembershipFunction{Shape: mf.Shape, Points: append([]float64(nil), mf.Points...)}
}

func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
