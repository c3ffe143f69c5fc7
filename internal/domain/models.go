package domain

import (
	"time"
)

// CrispInput holds the four readings of one assessment
type CrispInput struct {
	HeartRate     float64 `json:"heart_rate" mapstructure:"heart_rate"`
	WorryLevel    float64 `json:"worry_level" mapstructure:"worry_level"`
	SleepQuality  float64 `json:"sleep_quality" mapstructure:"sleep_quality"`
	MuscleTension float64 `json:"muscle_tension" mapstructure:"muscle_tension"`
}

// Values returns the readings keyed by input variable name
func (c CrispInput) Values() map[string]float64 {
	return map[string]float64{
		VarHeartRate:     c.HeartRate,
		VarWorryLevel:    c.WorryLevel,
		VarSleepQuality:  c.SleepQuality,
		VarMuscleTension: c.MuscleTension,
	}
}

// RuleFiring is the traced strength of one rule
type RuleFiring struct {
	Rule       string  `json:"rule"`
	Consequent string  `json:"consequent"`
	Strength   float64 `json:"strength"`
}

// InputWarning reports a reading that was clamped into its universe
type InputWarning struct {
	Variable string  `json:"variable"`
	Given    float64 `json:"given"`
	Used     float64 `json:"used"`
	Message  string  `json:"message"`
}

// DiagnosisResult is the outcome of one diagnosis
type DiagnosisResult struct {
	Input         CrispInput         `json:"input"`
	Score         float64            `json:"score"`
	Level         AnxietyLevel       `json:"level"`
	Method        string             `json:"method"`
	Indeterminate bool               `json:"indeterminate"`
	Activations   map[string]float64 `json:"activations"`
	Firings       []RuleFiring       `json:"firings"`
	Warnings      []InputWarning     `json:"warnings,omitempty"`
}

// Summary returns a one-line human-readable diagnosis
func (r *DiagnosisResult) Summary() string {
	if r.Indeterminate {
		return r.Level.Description() + " (indeterminate: no rule matched the readings)"
	}
	return r.Level.Description()
}

// FiredRules returns the rules that fired with positive strength
func (r *DiagnosisResult) FiredRules() []RuleFiring {
	var out []RuleFiring
	for _, f := range r.Firings {
		if f.Strength > 0 {
			out = append(out, f)
		}
	}
	return out
}

// Clone returns a deep copy
func (r *DiagnosisResult) Clone() *DiagnosisResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Activations = make(map[string]float64, len(r.Activations))
	for k, v := range r.Activations {
		out.Activations[k] = v
	}
	out.Firings = append([]RuleFiring(nil), r.Firings...)
	out.Warnings = append([]InputWarning(nil), r.Warnings...)
	return &out
}

// CurvePoint is one sample of a membership curve or the output surface
type CurvePoint struct {
	X      float64 `json:"x"`
	Degree float64 `json:"degree"`
}

// SetCurve is the sampled membership curve of one fuzzy set
type SetCurve struct {
	Set    string       `json:"set"`
	Points []CurvePoint `json:"points"`
}

// VariableView describes one variable for explainability output
type VariableView struct {
	Name       string             `json:"name"`
	Label      string             `json:"label"`
	Min        float64            `json:"min"`
	Max        float64            `json:"max"`
	Value      float64            `json:"value"`
	Membership map[string]float64 `json:"membership"`
	Curves     []SetCurve         `json:"curves"`
}

// Explanation holds read-only artifacts for plotting and reporting
type Explanation struct {
	Result  *DiagnosisResult `json:"result"`
	Inputs  []VariableView   `json:"inputs"`
	Output  VariableView     `json:"output"`
	Surface []CurvePoint     `json:"surface"`
}

// TestCase is one labelled input for the batch runner
type TestCase struct {
	Name     string       `json:"name" mapstructure:"name"`
	Input    CrispInput   `json:"input" mapstructure:"input"`
	Expected AnxietyLevel `json:"expected" mapstructure:"expected"`
}

// CaseOutcome is the result of one case under one method
type CaseOutcome struct {
	Case          string       `json:"case"`
	Method        string       `json:"method"`
	Input         CrispInput   `json:"input"`
	Expected      AnxietyLevel `json:"expected"`
	Actual        AnxietyLevel `json:"actual"`
	Score         float64      `json:"score"`
	Indeterminate bool         `json:"indeterminate"`
	Passed        bool         `json:"passed"`
	Error         string       `json:"error,omitempty"`
}

// BatchReport summarises a batch run
type BatchReport struct {
	RunID     string        `json:"run_id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Methods   []string      `json:"methods"`
	Outcomes  []CaseOutcome `json:"outcomes"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	Errored   int           `json:"errored"`
}

// PassRate returns the share of passed outcomes
func (b *BatchReport) PassRate() float64 {
	total := len(b.Outcomes)
	if total == 0 {
		return 0
	}
	return float64(b.Passed) / float64(total)
}
