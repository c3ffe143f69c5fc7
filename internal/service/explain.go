package service

import (
	"github.com/anxiety-fuzzy-diagnosis/internal/domain"
	"github.com/anxiety-fuzzy-diagnosis/pkg/fuzzy"
)

// Explain diagnoses the readings and returns the sampled membership curves, the fuzzified
// inputs and the aggregated output surface for plotting. It never touches the cache.
func (s *DiagnosisService) Explain(input domain.CrispInput, method string) (*domain.Explanation, error) {
	m, err := s.resolveMethod(method)
	if err != nil {
		return nil, err
	}

	outcome, err := s.infer(input, m)
	if err != nil {
		return nil, err
	}

	explanation := &domain.Explanation{
		Result:  s.toResult(input, outcome),
		Inputs:  make([]domain.VariableView, 0, len(s.system.Inputs())),
		Surface: make([]domain.CurvePoint, 0, len(outcome.Surface)),
	}

	for _, v := range s.system.Inputs() {
		explanation.Inputs = append(explanation.Inputs,
			s.view(v, outcome.Inputs[v.Name()], outcome.Memberships[v.Name()]))
	}
	explanation.Output = s.view(s.system.Output(), outcome.Score, outcome.Inference.Activations)

	for _, p := range outcome.Surface {
		explanation.Surface = append(explanation.Surface, domain.CurvePoint{X: p.X, Degree: p.Degree})
	}
	return explanation, nil
}

func (s *DiagnosisService) view(v *fuzzy.LinguisticVariable, value float64, membership fuzzy.Membership) domain.VariableView {
	lo, hi := v.Range()
	curves := v.Curves(s.curveSamples)

	out := domain.VariableView{
		Name:       v.Name(),
		Label:      s.Label(v.Name()),
		Min:        lo,
		Max:        hi,
		Value:      value,
		Membership: membership.Clone(),
		Curves:     make([]domain.SetCurve, 0, len(curves)),
	}
	// SetNames keeps definition order so charts list sets consistently
	for _, name := range v.SetNames() {
		points := make([]domain.CurvePoint, 0, len(curves[name]))
		for _, p := range curves[name] {
			points = append(points, domain.CurvePoint{X: p.X, Degree: p.Degree})
		}
		out.Curves = append(out.Curves, domain.SetCurve{Set: name, Points: points})
	}
	return out
}
