package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// anxietyFixture mirrors the production anxiety model so that the library can be tested
// without importing application packages.
type anxietyFixture struct {
	heartRate, worry, sleep, tension, anxiety *LinguisticVariable
	rules                                     []Rule
	bands                                     []Band
}

func newAnxietyFixture(t *testing.T) *anxietyFixture {
	t.Helper()

	mustDefine := func(name string, min, max float64, sets ...FuzzySet) *LinguisticVariable {
		v, err := DefineVariable(name, min, max, sets...)
		require.NoError(t, err)
		return v
	}

	f := &anxietyFixture{
		heartRate: mustDefine("heart_rate", 60, 120,
			Set("normal", Trap(60, 60, 70, 80)),
			Set("elevated", Tri(70, 85, 100)),
			Set("very_high", Trap(90, 100, 120, 120)),
		),
		worry: mustDefine("worry_level", 0, 10,
			Set("low", Tri(0, 0, 5)),
			Set("moderate", Tri(3, 5, 7)),
			Set("high", Tri(5, 10, 10)),
		),
		sleep: mustDefine("sleep_quality", 0, 10,
			Set("poor", Tri(0, 0, 4)),
			Set("fair", Tri(3, 5, 8)),
			Set("good", Tri(7, 10, 10)),
		),
		tension: mustDefine("muscle_tension", 0, 10,
			Set("relaxed", Tri(0, 0, 4)),
			Set("moderate", Tri(3, 5, 7)),
			Set("tense", Tri(6, 10, 10)),
		),
		anxiety: mustDefine("anxiety_level", 0, 100,
			Set("low", Tri(0, 0, 40)),
			Set("moderate", Tri(30, 50, 70)),
			Set("high", Tri(60, 100, 100)),
		),
		bands: []Band{{"low", 0}, {"moderate", 30}, {"high", 60}},
	}

	all := func(hr, w, s, m string) Antecedent {
		return AllOf(Is("heart_rate", hr), Is("worry_level", w), Is("sleep_quality", s), Is("muscle_tension", m))
	}
	f.rules = []Rule{
		NewRule("R1", all("normal", "low", "good", "relaxed"), "low"),
		NewRule("R2", all("elevated", "moderate", "fair", "moderate"), "moderate"),
		NewRule("R3", all("very_high", "high", "poor", "tense"), "high"),
		NewRule("R4", AnyOf(Is("heart_rate", "elevated"), Is("worry_level", "high"), Is("sleep_quality", "poor"), Is("muscle_tension", "tense")), "moderate"),
		NewRule("R5", AllOf(Is("heart_rate", "normal"), Is("worry_level", "low"), Is("muscle_tension", "relaxed")).
			With(AnyOf(Is("sleep_quality", "good"), Is("sleep_quality", "fair"))), "low"),
		NewRule("R6", all("elevated", "low", "good", "relaxed"), "moderate"),
		NewRule("R7", all("very_high", "moderate", "poor", "tense"), "high"),
		NewRule("R8", all("normal", "moderate", "poor", "tense"), "moderate"),
		NewRule("R9", all("elevated", "high", "good", "relaxed"), "high"),
		NewRule("R10", all("very_high", "low", "good", "moderate"), "moderate"),
		NewRule("R11", all("normal", "high", "fair", "tense"), "high"),
		NewRule("R12", all("elevated", "moderate", "poor", "relaxed"), "high"),
		NewRule("R13", all("normal", "moderate", "good", "moderate"), "moderate"),
		NewRule("R14", all("very_high", "high", "poor", "relaxed"), "high"),
	}
	return f
}

func (f *anxietyFixture) inputs() []*LinguisticVariable {
	return []*LinguisticVariable{f.heartRate, f.worry, f.sleep, f.tension}
}

func (f *anxietyFixture) system(t *testing.T, policy NoActivationPolicy) *System {
	t.Helper()
	sys, err := NewSystem(SystemConfig{
		Inputs: f.inputs(),
		Output: f.anxiety,
		Rules:  f.rules,
		Bands:  f.bands,
		Policy: policy,
	})
	require.NoError(t, err)
	return sys
}

func crisp(hr, worry, sleep, tension float64) map[string]float64 {
	return map[string]float64{
		"heart_rate":     hr,
		"worry_level":    worry,
		"sleep_quality":  sleep,
		"muscle_tension": tension,
	}
}
