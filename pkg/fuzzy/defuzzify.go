package fuzzy

import (
	"fmt"
	"strings"
)

// Method selects a defuzzification algorithm
type Method string

const (
	Centroid Method = "centroid" // centre of area
	Bisector Method = "bisector" // point splitting the area in half
	MOM      Method = "mom"      // mean of maximum
	SOM      Method = "som"      // smallest of maximum
	LOM      Method = "lom"      // largest of maximum
)

// DefaultResolution is the number of samples used across the output universe
const DefaultResolution = 1001

// Methods lists every supported method in menu order
func Methods() []Method {
	return []Method{Centroid, Bisector, MOM, SOM, LOM}
}

// ParseMethod resolves a method name case-insensitively; empty means Centroid
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return Centroid, nil
	}
	if !m.IsValid() {
		return "", fmt.Errorf("unknown defuzzification method %q", s)
	}
	return m, nil
}

// IsValid reports whether the method is supported
func (m Method) IsValid() bool {
	switch m {
	case Centroid, Bisector, MOM, SOM, LOM:
		return true
	default:
		return false
	}
}

func (m Method) String() string { return string(m) }

// SurfacePoint is one sample of the aggregated output surface
type SurfacePoint struct {
	X      float64 `json:"x"`
	Degree float64 `json:"degree"`
}

// Defuzzifier collapses output activations into a crisp value over a discretised universe
type Defuzzifier struct {
	output  *LinguisticVariable
	samples []float64
}

// NewDefuzzifier samples the output universe at resolution evenly spaced points.
// A resolution below 2 selects DefaultResolution.
func NewDefuzzifier(output *LinguisticVariable, resolution int) (*Defuzzifier, error) {
	if output == nil {
		return nil, configErrorf("system", "", "output variable is required")
	}
	if resolution < 2 {
		resolution = DefaultResolution
	}
	return &Defuzzifier{
		output:  output,
		samples: linspace(output.min, output.max, resolution),
	}, nil
}

// Resolution returns the number of samples
func (d *Defuzzifier) Resolution() int { return len(d.samples) }

// Surface computes the Mamdani output surface: at every sample, the maximum over output
// sets of min(activation, membership).
func (d *Defuzzifier) Surface(activations Membership) []SurfacePoint {
	out := make([]SurfacePoint, len(d.samples))
	for i, x := range d.samples {
		var mu float64
		for _, s := range d.output.sets {
			level := clampUnit(activations[s.Name])
			if level == 0 {
				continue
			}
			deg := s.Membership.Degree(x)
			if level < deg {
				deg = level
			}
			if deg > mu {
				mu = deg
			}
		}
		out[i] = SurfacePoint{X: x, Degree: mu}
	}
	return out
}

// Defuzzify returns the crisp value for activations using method.
// An all-zero surface yields a *NoActivationError.
func (d *Defuzzifier) Defuzzify(activations Membership, method Method) (float64, error) {
	return d.DefuzzifySurface(d.Surface(activations), method)
}

// DefuzzifySurface applies method to an already aggregated surface
func (d *Defuzzifier) DefuzzifySurface(surface []SurfacePoint, method Method) (float64, error) {
	if !method.IsValid() {
		return 0, fmt.Errorf("unknown defuzzification method %q", method)
	}

	var area, peak float64
	for _, p := range surface {
		area += p.Degree
		if p.Degree > peak {
			peak = p.Degree
		}
	}
	if area <= 0 || peak <= 0 {
		return 0, &NoActivationError{Method: method}
	}

	switch method {
	case Bisector:
		return bisector(surface, area), nil
	case MOM, SOM, LOM:
		return ofMaximum(surface, peak, method), nil
	default:
		return centroid(surface, area), nil
	}
}

func centroid(surface []SurfacePoint, area float64) float64 {
	var moment float64
	for _, p := range surface {
		moment += p.X * p.Degree
	}
	return moment / area
}

// bisector returns the first sample at which the cumulative area reaches half the total
func bisector(surface []SurfacePoint, area float64) float64 {
	half := area / 2
	var acc float64
	for _, p := range surface {
		acc += p.Degree
		if acc >= half {
			return p.X
		}
	}
	return surface[len(surface)-1].X
}

func ofMaximum(surface []SurfacePoint, peak float64, method Method) float64 {
	const tol = 1e-12
	var first, last, sum float64
	count := 0
	for _, p := range surface {
		if peak-p.Degree > tol {
			continue
		}
		if count == 0 {
			first = p.X
		}
		last = p.X
		sum += p.X
		count++
	}

	switch method {
	case SOM:
		return first
	case LOM:
		return last
	default:
		return sum / float64(count)
	}
}
