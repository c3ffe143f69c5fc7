package fuzzy

import (
	"fmt"
	"strings"
)

// Operator combines antecedent degrees
type Operator string

const (
	And Operator = "and" // minimum
	Or  Operator = "or"  // maximum
)

// IsValid reports whether the operator is supported
func (o Operator) IsValid() bool {
	return o == And || o == Or
}

// Condition references one fuzzy set of one input variable: "variable IS set"
type Condition struct {
	Variable string `json:"variable"`
	Set      string `json:"set"`
}

// Is builds a Condition
func Is(variable, set string) Condition {
	return Condition{Variable: variable, Set: set}
}

func (c Condition) String() string {
	return c.Variable + " is " + c.Set
}

// Antecedent is the IF part of a rule: one operator applied over its conditions and
// nested groups.
type Antecedent struct {
	Operator   Operator     `json:"operator"`
	Conditions []Condition  `json:"conditions"`
	Groups     []Antecedent `json:"groups,omitempty"`
}

// AllOf builds an AND antecedent over conditions
func AllOf(conds ...Condition) Antecedent {
	return Antecedent{Operator: And, Conditions: conds}
}

// AnyOf builds an OR antecedent over conditions
func AnyOf(conds ...Condition) Antecedent {
	return Antecedent{Operator: Or, Conditions: conds}
}

// With returns a copy of the antecedent with extra nested groups
func (a Antecedent) With(groups ...Antecedent) Antecedent {
	out := a.clone()
	out.Groups = append(out.Groups, groups...)
	return out
}

// Strength evaluates the antecedent against fuzzified inputs.
// Missing degrees count as zero.
func (a Antecedent) Strength(in map[string]Membership) float64 {
	first := true
	var acc float64
	combine := func(v float64) {
		switch {
		case first:
			acc = v
			first = false
		case a.Operator == Or:
			if v > acc {
				acc = v
			}
		default:
			if v < acc {
				acc = v
			}
		}
	}

	for _, c := range a.Conditions {
		combine(in[c.Variable][c.Set])
	}
	for _, g := range a.Groups {
		combine(g.Strength(in))
	}
	return clampUnit(acc)
}

// AllConditions flattens every condition referenced by the antecedent, in order
func (a Antecedent) AllConditions() []Condition {
	out := append([]Condition(nil), a.Conditions...)
	for _, g := range a.Groups {
		out = append(out, g.AllConditions()...)
	}
	return out
}

func (a Antecedent) String() string {
	parts := make([]string, 0, len(a.Conditions)+len(a.Groups))
	for _, c := range a.Conditions {
		parts = append(parts, c.String())
	}
	for _, g := range a.Groups {
		parts = append(parts, "("+g.String()+")")
	}
	return strings.Join(parts, " "+strings.ToUpper(string(a.Operator))+" ")
}

func (a Antecedent) clone() Antecedent {
	out := Antecedent{
		Operator:   a.Operator,
		Conditions: append([]Condition(nil), a.Conditions...),
	}
	if len(a.Groups) > 0 {
		out.Groups = make([]Antecedent, len(a.Groups))
		for i, g := range a.Groups {
			out.Groups[i] = g.clone()
		}
	}
	return out
}

func (a Antecedent) validate(depth int) error {
	if !a.Operator.IsValid() {
		return fmt.Errorf("unsupported operator %q", a.Operator)
	}
	if len(a.Conditions)+len(a.Groups) == 0 {
		return fmt.Errorf("antecedent has no conditions")
	}
	if depth > 8 {
		return fmt.Errorf("antecedent nesting deeper than 8 levels")
	}
	for _, g := range a.Groups {
		if err := g.validate(depth + 1); err != nil {
			return err
		}
	}
	return nil
}

// Rule maps an antecedent to one output fuzzy set.
// A nil Weight means the default weight of 1; an explicit 0 mutes the rule.
type Rule struct {
	Name        string     `json:"name"`
	If          Antecedent `json:"if"`
	Then        string     `json:"then"`
	Weight      *float64   `json:"weight,omitempty"`
	Description string     `json:"description,omitempty"`
}

// NewRule builds a rule with the default weight
func NewRule(name string, antecedent Antecedent, consequent string) Rule {
	return Rule{Name: name, If: antecedent, Then: consequent}
}

// Weighted returns a copy of the rule with an explicit weight
func (r Rule) Weighted(w float64) Rule {
	r.Weight = &w
	return r
}

// EffectiveWeight returns the weight used for firing strength
func (r Rule) EffectiveWeight() float64 {
	if r.Weight == nil {
		return 1
	}
	return *r.Weight
}

// FiringStrength evaluates the antecedent and scales it by the rule weight
func (r Rule) FiringStrength(in map[string]Membership) float64 {
	return clampUnit(r.If.Strength(in) * r.EffectiveWeight())
}

func (r Rule) String() string {
	return fmt.Sprintf("IF %s THEN %s", r.If, r.Then)
}

func (r Rule) clone() Rule {
	r.If = r.If.clone()
	if r.Weight != nil {
		w := *r.Weight
		r.Weight = &w
	}
	return r
}
