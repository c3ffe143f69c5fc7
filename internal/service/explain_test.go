package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anxiety-fuzzy-diagnosis/internal/domain"
	"github.com/anxiety-fuzzy-diagnosis/pkg/fuzzy"
)

func TestExplain(t *testing.T) {
	s := newTestService(t, nil)

	explanation, err := s.Explain(readings(80, 5, 5, 5), "")
	require.NoError(t, err)

	require.NotNil(t, explanation.Result)
	assert.Equal(t, domain.MODERATE, explanation.Result.Level)

	require.Len(t, explanation.Inputs, 4)
	hr := explanation.Inputs[0]
	assert.Equal(t, domain.VarHeartRate, hr.Name)
	assert.Equal(t, "Heart rate (bpm)", hr.Label)
	assert.Equal(t, 60.0, hr.Min)
	assert.Equal(t, 120.0, hr.Max)
	assert.Equal(t, 80.0, hr.Value)
	assert.InDelta(t, 2.0/3.0, hr.Membership["elevated"], 1e-9)
	assert.Zero(t, hr.Membership["normal"])

	require.Len(t, hr.Curves, 3)
	assert.Equal(t, []string{"normal", "elevated", "very_high"},
		[]string{hr.Curves[0].Set, hr.Curves[1].Set, hr.Curves[2].Set})
	for _, curve := range hr.Curves {
		require.Len(t, curve.Points, 51)
		assert.Equal(t, 60.0, curve.Points[0].X)
		assert.Equal(t, 120.0, curve.Points[50].X)
	}

	assert.Equal(t, domain.VarAnxietyLevel, explanation.Output.Name)
	assert.InDelta(t, 50.0, explanation.Output.Value, 1e-6)
	assert.InDelta(t, 2.0/3.0, explanation.Output.Membership["moderate"], 1e-9)

	require.Len(t, explanation.Surface, fuzzy.DefaultResolution)
	peak := 0.0
	for _, p := range explanation.Surface {
		assert.GreaterOrEqual(t, p.Degree, 0.0)
		if p.Degree > peak {
			peak = p.Degree
		}
	}
	assert.InDelta(t, 2.0/3.0, peak, 1e-9)
}

func TestExplain_DoesNotPopulateCache(t *testing.T) {
	s := newTestService(t, nil)

	_, err := s.Explain(readings(65, 2, 8, 1), "mom")
	require.NoError(t, err)

	assert.Zero(t, s.CacheStats().Entries)
}

func TestExplain_IndeterminateSurfaceIsFlat(t *testing.T) {
	s := newTestService(t, nil)

	explanation, err := s.Explain(readings(60, 5, 5, 5), "")
	require.NoError(t, err)

	assert.True(t, explanation.Result.Indeterminate)
	for _, p := range explanation.Surface {
		assert.Zero(t, p.Degree)
	}
}

func TestExplain_InvalidMethod(t *testing.T) {
	s := newTestService(t, nil)

	_, err := s.Explain(readings(80, 5, 5, 5), "median")
	assert.ErrorIs(t, err, domain.ErrInvalidMethod)
}
