package fuzzy

import (
	"math"
	"sort"
)

// Band is one category of the classifier, starting at Lower (inclusive)
type Band struct {
	Label string  `json:"label"`
	Lower float64 `json:"lower"`
}

// Classifier partitions the output universe into ordered, closed-open bands.
// A score exactly on a boundary belongs to the higher band; the last band is closed
// at the universe maximum.
type Classifier struct {
	min   float64
	max   float64
	bands []Band
}

// NewClassifier validates the bands against the universe [min, max].
// Bands may be given in any order; they are sorted by lower bound.
func NewClassifier(min, max float64, bands ...Band) (*Classifier, error) {
	if math.IsNaN(min) || math.IsNaN(max) || min >= max {
		return nil, configErrorf("classifier", "", "invalid universe [%g, %g]", min, max)
	}
	if len(bands) == 0 {
		return nil, configErrorf("classifier", "", "at least one band is required")
	}

	sorted := append([]Band(nil), bands...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Lower < sorted[j].Lower })

	seen := make(map[string]bool, len(sorted))
	for i, b := range sorted {
		if b.Label == "" {
			return nil, configErrorf("classifier", "", "band label cannot be empty")
		}
		if seen[b.Label] {
			return nil, configErrorf("classifier", b.Label, "duplicate band label")
		}
		seen[b.Label] = true
		if math.IsNaN(b.Lower) || b.Lower < min || b.Lower >= max {
			return nil, configErrorf("classifier", b.Label, "lower bound %g outside [%g, %g)", b.Lower, min, max)
		}
		if i > 0 && b.Lower == sorted[i-1].Lower {
			return nil, configErrorf("classifier", b.Label, "shares lower bound %g with %q", b.Lower, sorted[i-1].Label)
		}
	}
	if sorted[0].Lower != min {
		return nil, configErrorf("classifier", sorted[0].Label, "first band must start at %g", min)
	}

	return &Classifier{min: min, max: max, bands: sorted}, nil
}

// Classify maps a crisp score to its band label
func (c *Classifier) Classify(score float64) string {
	score = clampRange(score, c.min, c.max)
	label := c.bands[0].Label
	for _, b := range c.bands {
		if score >= b.Lower {
			label = b.Label
		} else {
			break
		}
	}
	return label
}

// Interval returns the [lower, upper) interval of a label. The last band's upper bound
// is the universe maximum and is inclusive.
func (c *Classifier) Interval(label string) (lower, upper float64, ok bool) {
	for i, b := range c.bands {
		if b.Label != label {
			continue
		}
		upper = c.max
		if i+1 < len(c.bands) {
			upper = c.bands[i+1].Lower
		}
		return b.Lower, upper, true
	}
	return 0, 0, false
}

// Labels returns band labels in ascending order
func (c *Classifier) Labels() []string {
	out := make([]string, len(c.bands))
	for i, b := range c.bands {
		out[i] = b.Label
	}
	return out
}
