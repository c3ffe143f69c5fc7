package fuzzy

import (
	"math"
	"strconv"
)

// RuleBase is a fixed, validated sequence of rules over known input variables and one
// output variable. Evaluation order never changes the result because activations are
// aggregated by maximum; the order is kept for tracing.
type RuleBase struct {
	inputs map[string]*LinguisticVariable
	output *LinguisticVariable
	rules  []Rule
}

// Firing is the traced strength of one rule for one evaluation
type Firing struct {
	Index      int     `json:"index"`
	Rule       string  `json:"rule"`
	Consequent string  `json:"consequent"`
	Strength   float64 `json:"strength"`
}

// Inference is the result of evaluating a rule base
type Inference struct {
	// Activations holds one entry per output set; unfired sets are zero.
	Activations Membership `json:"activations"`
	Firings     []Firing   `json:"firings"`
}

// Fired reports whether any rule fired with positive strength
func (inf *Inference) Fired() bool {
	for _, f := range inf.Firings {
		if f.Strength > 0 {
			return true
		}
	}
	return false
}

// NewRuleBase validates every rule against the given variables.
func NewRuleBase(inputs []*LinguisticVariable, output *LinguisticVariable, rules []Rule) (*RuleBase, error) {
	if output == nil {
		return nil, configErrorf("system", "", "output variable is required")
	}
	if len(rules) == 0 {
		return nil, configErrorf("system", output.Name(), "rule base is empty")
	}

	rb := &RuleBase{
		inputs: make(map[string]*LinguisticVariable, len(inputs)),
		output: output,
		rules:  make([]Rule, 0, len(rules)),
	}
	for _, v := range inputs {
		if v == nil {
			return nil, configErrorf("system", "", "nil input variable")
		}
		if _, dup := rb.inputs[v.Name()]; dup {
			return nil, configErrorf("variable", v.Name(), "defined more than once")
		}
		if v.Name() == output.Name() {
			return nil, configErrorf("variable", v.Name(), "used as both input and output")
		}
		rb.inputs[v.Name()] = v
	}

	for i, r := range rules {
		if err := rb.validateRule(i, r); err != nil {
			return nil, err
		}
		rb.rules = append(rb.rules, r.clone())
	}
	return rb, nil
}

func (rb *RuleBase) validateRule(i int, r Rule) error {
	name := ruleLabel(i, r)
	if err := r.If.validate(0); err != nil {
		return configErrorf("rule", name, "%v", err)
	}
	for _, c := range r.If.AllConditions() {
		v, ok := rb.inputs[c.Variable]
		if !ok {
			return configErrorf("rule", name, "references undefined variable %q", c.Variable)
		}
		if !v.HasSet(c.Set) {
			return configErrorf("rule", name, "references undefined set %q of variable %q", c.Set, c.Variable)
		}
	}
	if !rb.output.HasSet(r.Then) {
		return configErrorf("rule", name, "concludes undefined output set %q", r.Then)
	}
	if w := r.EffectiveWeight(); math.IsNaN(w) || w < 0 || w > 1 {
		return configErrorf("rule", name, "weight %g outside [0, 1]", w)
	}
	return nil
}

func ruleLabel(i int, r Rule) string {
	if r.Name != "" {
		return r.Name
	}
	return "#" + strconv.Itoa(i+1)
}

// Rules returns a copy of the rules in definition order
func (rb *RuleBase) Rules() []Rule {
	out := make([]Rule, len(rb.rules))
	for i, r := range rb.rules {
		out[i] = r.clone()
	}
	return out
}

// Len returns the number of rules
func (rb *RuleBase) Len() int { return len(rb.rules) }

// Output returns the output variable
func (rb *RuleBase) Output() *LinguisticVariable { return rb.output }

// Evaluate computes each rule's firing strength and max-aggregates them per output set.
// An all-zero result is valid and means no rule matched.
func (rb *RuleBase) Evaluate(memberships map[string]Membership) *Inference {
	inf := &Inference{
		Activations: make(Membership, len(rb.output.sets)),
		Firings:     make([]Firing, len(rb.rules)),
	}
	for _, name := range rb.output.SetNames() {
		inf.Activations[name] = 0
	}

	for i, r := range rb.rules {
		strength := r.FiringStrength(memberships)
		inf.Firings[i] = Firing{
			Index:      i,
			Rule:       ruleLabel(i, r),
			Consequent: r.Then,
			Strength:   strength,
		}
		if strength > inf.Activations[r.Then] {
			inf.Activations[r.Then] = strength
		}
	}
	return inf
}
