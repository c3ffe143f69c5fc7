package fuzzy

import (
	"errors"
	"fmt"
	"math"
)

// NoActivationPolicy decides what a System does when no rule fires
type NoActivationPolicy string

const (
	// PolicyFallback returns the output universe midpoint flagged as indeterminate
	PolicyFallback NoActivationPolicy = "fallback"
	// PolicyError returns a *NoActivationError
	PolicyError NoActivationPolicy = "error"
)

// IsValid reports whether the policy is supported
func (p NoActivationPolicy) IsValid() bool {
	return p == PolicyFallback || p == PolicyError
}

// SystemConfig is everything needed to assemble a System
type SystemConfig struct {
	Inputs     []*LinguisticVariable
	Output     *LinguisticVariable
	Rules      []Rule
	Bands      []Band
	Resolution int
	Policy     NoActivationPolicy
}

// System is an immutable Mamdani inference pipeline. It holds no mutable state, so a
// single System can serve concurrent callers.
type System struct {
	inputs      []*LinguisticVariable
	rules       *RuleBase
	defuzzifier *Defuzzifier
	classifier  *Classifier
	policy      NoActivationPolicy
}

// Outcome is the full trace of one inference
type Outcome struct {
	Inputs        map[string]float64    `json:"inputs"`
	Memberships   map[string]Membership `json:"memberships"`
	Clamped       []ClampNotice         `json:"clamped,omitempty"`
	Inference     *Inference            `json:"inference"`
	Surface       []SurfacePoint        `json:"surface"`
	Method        Method                `json:"method"`
	Score         float64               `json:"score"`
	Label         string                `json:"label"`
	Indeterminate bool                  `json:"indeterminate"`
}

// NewSystem assembles and validates a System
func NewSystem(cfg SystemConfig) (*System, error) {
	if len(cfg.Inputs) == 0 {
		return nil, configErrorf("system", "", "at least one input variable is required")
	}
	policy := cfg.Policy
	if policy == "" {
		policy = PolicyFallback
	}
	if !policy.IsValid() {
		return nil, configErrorf("system", "", "unknown no-activation policy %q", cfg.Policy)
	}

	rb, err := NewRuleBase(cfg.Inputs, cfg.Output, cfg.Rules)
	if err != nil {
		return nil, err
	}
	defuzz, err := NewDefuzzifier(cfg.Output, cfg.Resolution)
	if err != nil {
		return nil, err
	}
	lo, hi := cfg.Output.Range()
	classifier, err := NewClassifier(lo, hi, cfg.Bands...)
	if err != nil {
		return nil, err
	}

	return &System{
		inputs:      append([]*LinguisticVariable(nil), cfg.Inputs...),
		rules:       rb,
		defuzzifier: defuzz,
		classifier:  classifier,
		policy:      policy,
	}, nil
}

// Inputs returns the input variables in definition order
func (s *System) Inputs() []*LinguisticVariable {
	return append([]*LinguisticVariable(nil), s.inputs...)
}

// Input looks up an input variable by name
func (s *System) Input(name string) (*LinguisticVariable, bool) {
	for _, v := range s.inputs {
		if v.Name() == name {
			return v, true
		}
	}
	return nil, false
}

// Output returns the output variable
func (s *System) Output() *LinguisticVariable { return s.rules.Output() }

// RuleBase returns the validated rule base
func (s *System) RuleBase() *RuleBase { return s.rules }

// Classifier returns the score classifier
func (s *System) Classifier() *Classifier { return s.classifier }

// Defuzzifier returns the output defuzzifier
func (s *System) Defuzzifier() *Defuzzifier { return s.defuzzifier }

// Policy returns the no-activation policy
func (s *System) Policy() NoActivationPolicy { return s.policy }

// Fuzzify clamps and fuzzifies every input. Missing or NaN inputs are rejected.
func (s *System) Fuzzify(inputs map[string]float64) (map[string]Membership, []ClampNotice, error) {
	memberships := make(map[string]Membership, len(s.inputs))
	var notices []ClampNotice
	for _, v := range s.inputs {
		x, ok := inputs[v.Name()]
		if !ok {
			return nil, nil, &InputError{Variable: v.Name(), Reason: "value not provided"}
		}
		if math.IsNaN(x) {
			return nil, nil, &InputError{Variable: v.Name(), Reason: "value is not a number"}
		}
		m, clamped := v.Fuzzify(x)
		if clamped {
			notices = append(notices, ClampNotice{
				Variable: v.Name(),
				Given:    x,
				Used:     v.Clamp(x),
				Min:      v.min,
				Max:      v.max,
			})
		}
		memberships[v.Name()] = m
	}
	return memberships, notices, nil
}

// Infer runs fuzzification, rule evaluation, aggregation, defuzzification and
// classification. With PolicyFallback an unfired rule base yields the output midpoint and
// Indeterminate set; with PolicyError it yields a *NoActivationError.
func (s *System) Infer(inputs map[string]float64, method Method) (*Outcome, error) {
	if method == "" {
		method = Centroid
	}
	if !method.IsValid() {
		return nil, fmt.Errorf("unknown defuzzification method %q", method)
	}

	memberships, notices, err := s.Fuzzify(inputs)
	if err != nil {
		return nil, err
	}

	used := make(map[string]float64, len(s.inputs))
	for _, v := range s.inputs {
		used[v.Name()] = v.Clamp(inputs[v.Name()])
	}

	inference := s.rules.Evaluate(memberships)
	surface := s.defuzzifier.Surface(inference.Activations)

	out := &Outcome{
		Inputs:      used,
		Memberships: memberships,
		Clamped:     notices,
		Inference:   inference,
		Surface:     surface,
		Method:      method,
	}

	score, err := s.defuzzifier.DefuzzifySurface(surface, method)
	switch {
	case err == nil:
		out.Score = score
	case errors.Is(err, ErrNoActivation) && s.policy == PolicyFallback:
		out.Score = s.Output().Midpoint()
		out.Indeterminate = true
	default:
		return nil, err
	}

	out.Label = s.classifier.Classify(out.Score)
	return out, nil
}
