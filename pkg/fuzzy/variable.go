package fuzzy

import (
	"math"
	"sort"
)

// FuzzySet is a named membership function over a variable's universe
type FuzzySet struct {
	Name       string             `json:"name"`
	Membership MembershipFunction `json:"membership"`
}

// Set is shorthand for building a FuzzySet
func Set(name string, mf MembershipFunction) FuzzySet {
	return FuzzySet{Name: name, Membership: mf}
}

// Membership maps fuzzy-set names to degrees in [0,1]
type Membership map[string]float64

// Total returns the sum of all degrees
func (m Membership) Total() float64 {
	var sum float64
	for _, v := range m {
		sum += v
	}
	return sum
}

// Clone returns an independent copy
func (m Membership) Clone() Membership {
	out := make(Membership, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// LinguisticVariable is a named universe of discourse partitioned by overlapping fuzzy sets.
// A variable is immutable once defined.
type LinguisticVariable struct {
	name  string
	min   float64
	max   float64
	sets  []FuzzySet
	index map[string]int
}

// DefineVariable validates and registers a linguistic variable.
// The sets must have valid, non-decreasing breakpoints and together cover [min, max]
// so that no value in the universe has zero membership everywhere.
func DefineVariable(name string, min, max float64, sets ...FuzzySet) (*LinguisticVariable, error) {
	if name == "" {
		return nil, configErrorf("variable", name, "name cannot be empty")
	}
	if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return nil, configErrorf("variable", name, "universe bounds must be finite")
	}
	if min >= max {
		return nil, configErrorf("variable", name, "universe min %g must be below max %g", min, max)
	}
	if len(sets) == 0 {
		return nil, configErrorf("variable", name, "at least one fuzzy set is required")
	}

	v := &LinguisticVariable{
		name:  name,
		min:   min,
		max:   max,
		sets:  make([]FuzzySet, 0, len(sets)),
		index: make(map[string]int, len(sets)),
	}

	for _, s := range sets {
		if s.Name == "" {
			return nil, configErrorf("set", name+".?", "set name cannot be empty")
		}
		if _, dup := v.index[s.Name]; dup {
			return nil, configErrorf("set", name+"."+s.Name, "duplicate set name")
		}
		if err := s.Membership.Validate(); err != nil {
			return nil, configErrorf("set", name+"."+s.Name, "%v", err)
		}
		v.index[s.Name] = len(v.sets)
		v.sets = append(v.sets, FuzzySet{Name: s.Name, Membership: s.Membership.clone()})
	}

	if x, gap := v.coverageGap(); gap {
		return nil, configErrorf("variable", name, "fuzzy sets leave %g uncovered", x)
	}

	return v, nil
}

// coverageGap looks for a point of the universe where every set has degree zero.
// Each membership function is linear between its own breakpoints, so the degree sum is
// linear between consecutive breakpoints of all sets. Checking every breakpoint plus the
// midpoint of every segment is therefore exhaustive.
func (v *LinguisticVariable) coverageGap() (float64, bool) {
	points := []float64{v.min, v.max}
	for _, s := range v.sets {
		for _, p := range s.Membership.Points {
			if p > v.min && p < v.max {
				points = append(points, p)
			}
		}
	}
	sort.Float64s(points)

	check := make([]float64, 0, 2*len(points))
	for i, p := range points {
		check = append(check, p)
		if i+1 < len(points) && points[i+1] > p {
			check = append(check, p+(points[i+1]-p)/2)
		}
	}

	for _, x := range check {
		if v.MembershipOf(x).Total() <= 0 {
			return x, true
		}
	}
	return 0, false
}

// Name returns the variable name
func (v *LinguisticVariable) Name() string { return v.name }

// Range returns the universe bounds
func (v *LinguisticVariable) Range() (float64, float64) { return v.min, v.max }

// Midpoint returns the centre of the universe
func (v *LinguisticVariable) Midpoint() float64 { return v.min + (v.max-v.min)/2 }

// Sets returns a copy of the fuzzy sets in definition order
func (v *LinguisticVariable) Sets() []FuzzySet {
	out := make([]FuzzySet, len(v.sets))
	for i, s := range v.sets {
		out[i] = FuzzySet{Name: s.Name, Membership: s.Membership.clone()}
	}
	return out
}

// SetNames returns the set names in definition order
func (v *LinguisticVariable) SetNames() []string {
	names := make([]string, len(v.sets))
	for i, s := range v.sets {
		names[i] = s.Name
	}
	return names
}

// HasSet reports whether the variable defines the named set
func (v *LinguisticVariable) HasSet(name string) bool {
	_, ok := v.index[name]
	return ok
}

// Clamp restricts x to the universe
func (v *LinguisticVariable) Clamp(x float64) float64 {
	return clampRange(x, v.min, v.max)
}

// MembershipOf evaluates every set of the variable at x without clamping
func (v *LinguisticVariable) MembershipOf(x float64) Membership {
	m := make(Membership, len(v.sets))
	for _, s := range v.sets {
		m[s.Name] = s.Membership.Degree(x)
	}
	return m
}

// DegreeOf evaluates one named set at x. Unknown sets have degree zero.
func (v *LinguisticVariable) DegreeOf(set string, x float64) float64 {
	i, ok := v.index[set]
	if !ok {
		return 0
	}
	return v.sets[i].Membership.Degree(x)
}

// Fuzzify clamps x into the universe and returns the membership of every set.
// The boolean reports whether clamping changed the value.
func (v *LinguisticVariable) Fuzzify(x float64) (Membership, bool) {
	used := v.Clamp(x)
	return v.MembershipOf(used), used != x
}

// CurvePoint is one sample of a set's membership curve
type CurvePoint struct {
	X      float64 `json:"x"`
	Degree float64 `json:"degree"`
}

// Curves samples every membership function at n evenly spaced points across the universe.
// It exists for plotting and reporting.
func (v *LinguisticVariable) Curves(n int) map[string][]CurvePoint {
	xs := linspace(v.min, v.max, n)
	out := make(map[string][]CurvePoint, len(v.sets))
	for _, s := range v.sets {
		pts := make([]CurvePoint, len(xs))
		for i, x := range xs {
			pts[i] = CurvePoint{X: x, Degree: s.Membership.Degree(x)}
		}
		out[s.Name] = pts
	}
	return out
}

// linspace returns n evenly spaced samples over [lo, hi] including both ends
func linspace(lo, hi float64, n int) []float64 {
	if n < 2 {
		n = 2
	}
	xs := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range xs {
		xs[i] = lo + step*float64(i)
	}
	xs[n-1] = hi
	return xs
}
