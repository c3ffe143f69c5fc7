// Package domain contains the core entities of the anxiety diagnosis system: crisp
// readings, diagnosis results, the category scale and the configuration model.
//
// The four readings follow the clinical screening the model was designed around:
// resting heart rate in beats per minute and three self-reported 0-10 scales for worry,
// sleep quality (10 is best) and muscle tension.
package domain

import (
	"errors"
	"strings"
)

// Input variable names used by the model, the CLI and reports
const (
	VarHeartRate     = "heart_rate"
	VarWorryLevel    = "worry_level"
	VarSleepQuality  = "sleep_quality"
	VarMuscleTension = "muscle_tension"
	VarAnxietyLevel  = "anxiety_level"
)

// InputVariables lists the input variable names in canonical order
func InputVariables() []string {
	return []string{VarHeartRate, VarWorryLevel, VarSleepQuality, VarMuscleTension}
}

// AnxietyLevel is the categorical outcome of a diagnosis
type AnxietyLevel string

const (
	LOW      AnxietyLevel = "low"
	MODERATE AnxietyLevel = "moderate"
	HIGH     AnxietyLevel = "high"
)

// Validation errors for the category scale
var (
	ErrInvalidAnxietyLevel = errors.New("invalid anxiety level")
	ErrInvalidMethod       = errors.New("invalid defuzzification method")
)

// ParseAnxietyLevel accepts the canonical labels case-insensitively
func ParseAnxietyLevel(s string) (AnxietyLevel, error) {
	level := AnxietyLevel(strings.ToLower(strings.TrimSpace(s)))
	if !level.IsValid() {
		return "", ErrInvalidAnxietyLevel
	}
	return level, nil
}

// IsValid reports whether the level is one of the known categories
func (l AnxietyLevel) IsValid() bool {
	switch l {
	case LOW, MODERATE, HIGH:
		return true
	default:
		return false
	}
}

// String returns the string representation of the level
func (l AnxietyLevel) String() string {
	return string(l)
}

// Description returns the human-readable diagnosis for display
func (l AnxietyLevel) Description() string {
	switch l {
	case LOW:
		return "Low anxiety level"
	case MODERATE:
		return "Moderate anxiety level"
	case HIGH:
		return "High anxiety level"
	default:
		return "Unknown anxiety level"
	}
}

// Severity orders the levels; unknown levels sort first
func (l AnxietyLevel) Severity() int {
	switch l {
	case LOW:
		return 1
	case MODERATE:
		return 2
	case HIGH:
		return 3
	default:
		return 0
	}
}

// LogFields returns structured logging fields for the level
func (l AnxietyLevel) LogFields() map[string]any {
	return map[string]any{
		"anxiety_level": string(l),
		"description":   l.Description(),
		"severity":      l.Severity(),
		"is_valid":      l.IsValid(),
	}
}
