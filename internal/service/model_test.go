package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anxiety-fuzzy-diagnosis/internal/config"
	"github.com/anxiety-fuzzy-diagnosis/internal/domain"
	"github.com/anxiety-fuzzy-diagnosis/pkg/fuzzy"
)

func TestBuildSystem_DefaultModel(t *testing.T) {
	system, err := BuildSystem(config.DefaultModel(), domain.EngineConfig{Method: "centroid"})
	require.NoError(t, err)

	assert.Len(t, system.Inputs(), 4)
	assert.Equal(t, domain.VarAnxietyLevel, system.Output().Name())
	assert.Equal(t, 14, system.RuleBase().Len())
	assert.Equal(t, fuzzy.DefaultResolution, system.Defuzzifier().Resolution())
	assert.Equal(t, fuzzy.PolicyFallback, system.Policy())
	assert.Equal(t, []string{"low", "moderate", "high"}, system.Classifier().Labels())

	r5 := system.RuleBase().Rules()[4]
	assert.Equal(t, "heart_rate is normal AND worry_level is low AND muscle_tension is relaxed AND (sleep_quality is good OR sleep_quality is fair)", r5.If.String())
}

func TestBuildSystem_NestedGroupFires(t *testing.T) {
	system, err := BuildSystem(config.DefaultModel(), domain.EngineConfig{})
	require.NoError(t, err)

	out, err := system.Infer(map[string]float64{
		domain.VarHeartRate:     65,
		domain.VarWorryLevel:    1,
		domain.VarSleepQuality:  5,
		domain.VarMuscleTension: 1,
	}, fuzzy.Centroid)
	require.NoError(t, err)

	assert.InDelta(t, 0.75, out.Inference.Firings[4].Strength, 1e-9)
	assert.Equal(t, "R5", out.Inference.Firings[4].Rule)
}

func TestBuildSystem_ShapeAndOperatorAreCaseInsensitive(t *testing.T) {
	model := config.DefaultModel()
	model.Inputs[0].Sets[0].Shape = "Trapezoidal"
	model.Rules[3].If.Operator = "OR"
	model.Rules[0].If.Operator = ""

	system, err := BuildSystem(model, domain.EngineConfig{NoActivationPolicy: "ERROR"})
	require.NoError(t, err)
	assert.Equal(t, fuzzy.PolicyError, system.Policy())
	assert.Equal(t, fuzzy.And, system.RuleBase().Rules()[0].If.Operator)
}

func TestBuildSystem_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.ModelConfig, *domain.EngineConfig)
	}{
		{"Unknown shape", func(m *domain.ModelConfig, _ *domain.EngineConfig) { m.Inputs[1].Sets[0].Shape = "gaussian" }},
		{"Wrong breakpoint count", func(m *domain.ModelConfig, _ *domain.EngineConfig) { m.Inputs[1].Sets[0].Points = []float64{0, 5} }},
		{"Coverage gap", func(m *domain.ModelConfig, _ *domain.EngineConfig) { m.Inputs[2].Sets[1].Points = []float64{3, 5, 6} }},
		{"Inverted universe", func(m *domain.ModelConfig, _ *domain.EngineConfig) { m.Output.Min, m.Output.Max = 100, 0 }},
		{"Unknown variable in rule", func(m *domain.ModelConfig, _ *domain.EngineConfig) { m.Rules[0].If.Conditions[0].Variable = "pulse" }},
		{"Unknown set in nested group", func(m *domain.ModelConfig, _ *domain.EngineConfig) { m.Rules[4].If.Groups[0].Conditions[0].Set = "excellent" }},
		{"Weight above one", func(m *domain.ModelConfig, _ *domain.EngineConfig) { m.Rules[2].Weight = weight(1.5) }},
		{"Renamed input", func(m *domain.ModelConfig, _ *domain.EngineConfig) { m.Inputs[0].Name = "pulse" }},
		{"Missing input", func(m *domain.ModelConfig, _ *domain.EngineConfig) { m.Inputs = m.Inputs[:3] }},
		{"Band outside the anxiety levels", func(m *domain.ModelConfig, _ *domain.EngineConfig) { m.Bands[2].Label = "severe" }},
		{"Bad band", func(m *domain.ModelConfig, _ *domain.EngineConfig) { m.Bands[0].Lower = 10 }},
		{"No rules", func(m *domain.ModelConfig, _ *domain.EngineConfig) { m.Rules = nil }},
		{"Unknown policy", func(_ *domain.ModelConfig, e *domain.EngineConfig) { e.NoActivationPolicy = "guess" }},
		{"Unknown method", func(_ *domain.ModelConfig, e *domain.EngineConfig) { e.Method = "median" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := config.DefaultModel()
			engine := domain.EngineConfig{}
			tt.mutate(&model, &engine)

			_, err := BuildSystem(model, engine)
			require.Error(t, err)

			var diagErr *domain.DiagnosisError
			require.True(t, errors.As(err, &diagErr))
			assert.Equal(t, domain.ErrConfiguration, diagErr.Code)
		})
	}
}

func TestBuildSystem_RenamedInputFailsAtSetup(t *testing.T) {
	model := config.DefaultModel()
	model.Inputs[0].Name = "pulse"
	for i := range model.Rules {
		renameVariable(&model.Rules[i].If, domain.VarHeartRate, "pulse")
	}

	_, err := BuildSystem(model, domain.EngineConfig{})
	require.Error(t, err)

	var diagErr *domain.DiagnosisError
	require.True(t, errors.As(err, &diagErr))
	assert.Equal(t, domain.ErrConfiguration, diagErr.Code)
	assert.Contains(t, diagErr.Details, `variable "pulse"`)

	var cfgErr *fuzzy.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "pulse", cfgErr.Name)
}

func TestBuildSystem_ZeroWeightFromModel(t *testing.T) {
	model := config.DefaultModel()
	model.Rules[2].Weight = weight(0)

	system, err := BuildSystem(model, domain.EngineConfig{})
	require.NoError(t, err)

	out, err := system.Infer(map[string]float64{
		domain.VarHeartRate:     120,
		domain.VarWorryLevel:    10,
		domain.VarSleepQuality:  0,
		domain.VarMuscleTension: 10,
	}, fuzzy.Centroid)
	require.NoError(t, err)

	assert.Equal(t, "R3", out.Inference.Firings[2].Rule)
	assert.Zero(t, out.Inference.Firings[2].Strength)
}

func TestVariableLabels(t *testing.T) {
	model := config.DefaultModel()
	model.Inputs[1].Label = ""

	labels := variableLabels(model)
	assert.Equal(t, "Heart rate (bpm)", labels[domain.VarHeartRate])
	assert.Equal(t, domain.VarWorryLevel, labels[domain.VarWorryLevel])
	assert.Equal(t, "Anxiety level (0-100)", labels[domain.VarAnxietyLevel])
}

func weight(w float64) *float64 { return &w }

func renameVariable(a *domain.AntecedentConfig, from, to string) {
	for i := range a.Conditions {
		if a.Conditions[i].Variable == from {
			a.Conditions[i].Variable = to
		}
	}
	for i := range a.Groups {
		renameVariable(&a.Groups[i], from, to)
	}
}
