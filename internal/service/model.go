package service

import (
	"fmt"
	"strings"

	"github.com/anxiety-fuzzy-diagnosis/internal/domain"
	"github.com/anxiety-fuzzy-diagnosis/pkg/fuzzy"
)

// BuildSystem assembles an inference system from a declarative model. Any problem with the
// model, including inputs other than the four readings, is reported as a CONFIGURATION_ERROR
// wrapping the underlying fuzzy error.
func BuildSystem(model domain.ModelConfig, engine domain.EngineConfig) (*fuzzy.System, error) {
	system, err := buildSystem(model, engine)
	if err != nil {
		return nil, domain.NewDiagnosisError(domain.ErrConfiguration, "invalid fuzzy model", err)
	}
	return system, nil
}

func buildSystem(model domain.ModelConfig, engine domain.EngineConfig) (*fuzzy.System, error) {
	if err := checkDomainFit(model); err != nil {
		return nil, err
	}

	inputs := make([]*fuzzy.LinguisticVariable, 0, len(model.Inputs))
	for _, vc := range model.Inputs {
		v, err := buildVariable(vc)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, v)
	}

	output, err := buildVariable(model.Output)
	if err != nil {
		return nil, err
	}

	rules := make([]fuzzy.Rule, 0, len(model.Rules))
	for _, rc := range model.Rules {
		rules = append(rules, fuzzy.Rule{
			Name:        rc.Name,
			Description: rc.Description,
			If:          buildAntecedent(rc.If),
			Then:        rc.Then,
			Weight:      rc.Weight,
		})
	}

	bands := make([]fuzzy.Band, 0, len(model.Bands))
	for _, bc := range model.Bands {
		bands = append(bands, fuzzy.Band{Label: bc.Label, Lower: bc.Lower})
	}

	if _, err := fuzzy.ParseMethod(engine.Method); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidMethod, err)
	}

	return fuzzy.NewSystem(fuzzy.SystemConfig{
		Inputs:     inputs,
		Output:     output,
		Rules:      rules,
		Bands:      bands,
		Resolution: engine.Resolution,
		Policy:     fuzzy.NoActivationPolicy(strings.ToLower(engine.NoActivationPolicy)),
	})
}

// checkDomainFit rejects models the service cannot drive: the inputs must be exactly the
// four readings and every band must be one of the anxiety levels.
func checkDomainFit(model domain.ModelConfig) error {
	expected := make(map[string]bool, len(domain.InputVariables()))
	for _, name := range domain.InputVariables() {
		expected[name] = true
	}
	seen := make(map[string]bool, len(model.Inputs))
	for _, vc := range model.Inputs {
		if !expected[vc.Name] {
			return &fuzzy.ConfigurationError{
				Subject: "variable",
				Name:    vc.Name,
				Reason:  fmt.Sprintf("is not a reading; inputs must be %s", strings.Join(domain.InputVariables(), ", ")),
			}
		}
		seen[vc.Name] = true
	}
	for _, name := range domain.InputVariables() {
		if !seen[name] {
			return &fuzzy.ConfigurationError{Subject: "variable", Name: name, Reason: "reading has no input variable"}
		}
	}

	for _, bc := range model.Bands {
		if !domain.AnxietyLevel(bc.Label).IsValid() {
			return &fuzzy.ConfigurationError{
				Subject: "classifier",
				Name:    bc.Label,
				Reason:  fmt.Sprintf("band is not an anxiety level (%s, %s, %s)", domain.LOW, domain.MODERATE, domain.HIGH),
			}
		}
	}
	return nil
}

func buildVariable(vc domain.VariableConfig) (*fuzzy.LinguisticVariable, error) {
	sets := make([]fuzzy.FuzzySet, 0, len(vc.Sets))
	for _, sc := range vc.Sets {
		mf := fuzzy.MembershipFunction{
			Shape:  fuzzy.Shape(strings.ToLower(sc.Shape)),
			Points: append([]float64(nil), sc.Points...),
		}
		sets = append(sets, fuzzy.Set(sc.Name, mf))
	}
	return fuzzy.DefineVariable(vc.Name, vc.Min, vc.Max, sets...)
}

func buildAntecedent(ac domain.AntecedentConfig) fuzzy.Antecedent {
	op := fuzzy.Operator(strings.ToLower(ac.Operator))
	if op == "" {
		op = fuzzy.And
	}
	out := fuzzy.Antecedent{Operator: op}
	for _, c := range ac.Conditions {
		out.Conditions = append(out.Conditions, fuzzy.Is(c.Variable, c.Set))
	}
	for _, g := range ac.Groups {
		out.Groups = append(out.Groups, buildAntecedent(g))
	}
	return out
}

// variableLabels maps variable names to their display labels, defaulting to the name
func variableLabels(model domain.ModelConfig) map[string]string {
	labels := make(map[string]string, len(model.Inputs)+1)
	for _, vc := range append(append([]domain.VariableConfig(nil), model.Inputs...), model.Output) {
		label := vc.Label
		if label == "" {
			label = vc.Name
		}
		labels[vc.Name] = label
	}
	return labels
}
