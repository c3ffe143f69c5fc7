package config

import (
	"github.com/anxiety-fuzzy-diagnosis/internal/domain"
)

// DefaultModel returns the built-in anxiety model: four inputs, one output on [0, 100],
// fourteen rules and three output bands.
func DefaultModel() domain.ModelConfig {
	return domain.ModelConfig{
		Inputs: []domain.VariableConfig{
			{
				Name: domain.VarHeartRate, Label: "Heart rate (bpm)", Min: 60, Max: 120,
				Sets: []domain.SetConfig{
					trap("normal", 60, 60, 70, 80),
					tri("elevated", 70, 85, 100),
					trap("very_high", 90, 100, 120, 120),
				},
			},
			{
				Name: domain.VarWorryLevel, Label: "Worry level (0-10)", Min: 0, Max: 10,
				Sets: []domain.SetConfig{
					tri("low", 0, 0, 5),
					tri("moderate", 3, 5, 7),
					tri("high", 5, 10, 10),
				},
			},
			{
				// fair reaches 8 so that poor/fair and fair/good overlap with no gap
				Name: domain.VarSleepQuality, Label: "Sleep quality (0-10)", Min: 0, Max: 10,
				Sets: []domain.SetConfig{
					tri("poor", 0, 0, 4),
					tri("fair", 3, 5, 8),
					tri("good", 7, 10, 10),
				},
			},
			{
				Name: domain.VarMuscleTension, Label: "Muscle tension (0-10)", Min: 0, Max: 10,
				Sets: []domain.SetConfig{
					tri("relaxed", 0, 0, 4),
					tri("moderate", 3, 5, 7),
					tri("tense", 6, 10, 10),
				},
			},
		},
		Output: domain.VariableConfig{
			Name: domain.VarAnxietyLevel, Label: "Anxiety level (0-100)", Min: 0, Max: 100,
			Sets: []domain.SetConfig{
				tri("low", 0, 0, 40),
				tri("moderate", 30, 50, 70),
				tri("high", 60, 100, 100),
			},
		},
		Rules: defaultRules(),
		Bands: []domain.BandConfig{
			{Label: string(domain.LOW), Lower: 0},
			{Label: string(domain.MODERATE), Lower: 30},
			{Label: string(domain.HIGH), Lower: 60},
		},
	}
}

func defaultRules() []domain.RuleConfig {
	return []domain.RuleConfig{
		all("R1", "Calm on every reading", "normal", "low", "good", "relaxed", "low"),
		all("R2", "Moderate readings across the board", "elevated", "moderate", "fair", "moderate", "moderate"),
		all("R3", "Every reading at its worst", "very_high", "high", "poor", "tense", "high"),
		{
			Name:        "R4",
			Description: "Any single warning sign",
			If: domain.AntecedentConfig{
				Operator: "or",
				Conditions: []domain.ConditionConfig{
					{Variable: domain.VarHeartRate, Set: "elevated"},
					{Variable: domain.VarWorryLevel, Set: "high"},
					{Variable: domain.VarSleepQuality, Set: "poor"},
					{Variable: domain.VarMuscleTension, Set: "tense"},
				},
			},
			Then: "moderate",
		},
		{
			Name:        "R5",
			Description: "Calm body and mind with at least fair sleep",
			If: domain.AntecedentConfig{
				Operator: "and",
				Conditions: []domain.ConditionConfig{
					{Variable: domain.VarHeartRate, Set: "normal"},
					{Variable: domain.VarWorryLevel, Set: "low"},
					{Variable: domain.VarMuscleTension, Set: "relaxed"},
				},
				Groups: []domain.AntecedentConfig{{
					Operator: "or",
					Conditions: []domain.ConditionConfig{
						{Variable: domain.VarSleepQuality, Set: "good"},
						{Variable: domain.VarSleepQuality, Set: "fair"},
					},
				}},
			},
			Then: "low",
		},
		all("R6", "Raised pulse while otherwise calm", "elevated", "low", "good", "relaxed", "moderate"),
		all("R7", "Racing pulse, poor sleep and tension", "very_high", "moderate", "poor", "tense", "high"),
		all("R8", "Some worry with poor sleep and tension", "normal", "moderate", "poor", "tense", "moderate"),
		all("R9", "Heavy worry with raised pulse", "elevated", "high", "good", "relaxed", "high"),
		all("R10", "Racing pulse alone", "very_high", "low", "good", "moderate", "moderate"),
		all("R11", "Heavy worry and tension", "normal", "high", "fair", "tense", "high"),
		all("R12", "Raised pulse, worry and poor sleep", "elevated", "moderate", "poor", "relaxed", "high"),
		all("R13", "Some worry and tension with good sleep", "normal", "moderate", "good", "moderate", "moderate"),
		all("R14", "Racing pulse, heavy worry and poor sleep", "very_high", "high", "poor", "relaxed", "high"),
	}
}

// all builds a rule that ANDs one set from each of the four inputs
func all(name, description, heartRate, worry, sleep, tension, then string) domain.RuleConfig {
	return domain.RuleConfig{
		Name:        name,
		Description: description,
		If: domain.AntecedentConfig{
			Operator: "and",
			Conditions: []domain.ConditionConfig{
				{Variable: domain.VarHeartRate, Set: heartRate},
				{Variable: domain.VarWorryLevel, Set: worry},
				{Variable: domain.VarSleepQuality, Set: sleep},
				{Variable: domain.VarMuscleTension, Set: tension},
			},
		},
		Then: then,
	}
}

func tri(name string, a, b, c float64) domain.SetConfig {
	return domain.SetConfig{Name: name, Shape: "triangular", Points: []float64{a, b, c}}
}

func trap(name string, a, b, c, d float64) domain.SetConfig {
	return domain.SetConfig{Name: name, Shape: "trapezoidal", Points: []float64{a, b, c, d}}
}
