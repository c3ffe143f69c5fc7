package fuzzy

import (
	"errors"
	"fmt"
)

// Sentinel errors for the inference pipeline
var (
	ErrConfiguration = errors.New("invalid fuzzy configuration")
	ErrNoActivation  = errors.New("no rule fired for the given inputs")
	ErrInvalidInput  = errors.New("invalid crisp input")
)

// ConfigurationError reports a malformed variable, set, rule or classifier definition.
// It is only ever returned while a model is being assembled.
type ConfigurationError struct {
	Subject string `json:"subject"` // "variable", "set", "rule", "classifier", "system"
	Name    string `json:"name"`
	Reason  string `json:"reason"`
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Subject, e.Name, e.Reason)
}

// Is reports ErrConfiguration so callers can match any configuration failure.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func configErrorf(subject, name, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{
		Subject: subject,
		Name:    name,
		Reason:  fmt.Sprintf(format, args...),
	}
}

// NoActivationError is returned by the defuzzifier when the aggregated surface is all zero.
type NoActivationError struct {
	Method Method `json:"method"`
}

// Error implements the error interface
func (e *NoActivationError) Error() string {
	return fmt.Sprintf("%s defuzzification: %v", e.Method, ErrNoActivation)
}

// Unwrap exposes ErrNoActivation to errors.Is.
func (e *NoActivationError) Unwrap() error {
	return ErrNoActivation
}

// InputError reports a crisp input that is missing or not a number.
type InputError struct {
	Variable string `json:"variable"`
	Reason   string `json:"reason"`
}

// Error implements the error interface
func (e *InputError) Error() string {
	return fmt.Sprintf("%v %s: %s", ErrInvalidInput, e.Variable, e.Reason)
}

// Unwrap exposes ErrInvalidInput to errors.Is.
func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// ClampNotice records a crisp input that fell outside its universe and was clamped.
// It is informational; the pipeline continues with the clamped value.
type ClampNotice struct {
	Variable string  `json:"variable"`
	Given    float64 `json:"given"`
	Used     float64 `json:"used"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// String renders the notice for logs and CLI output.
func (n ClampNotice) String() string {
	return fmt.Sprintf("%s=%g outside [%g, %g], clamped to %g", n.Variable, n.Given, n.Min, n.Max, n.Used)
}
