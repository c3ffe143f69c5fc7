package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/anxiety-fuzzy-diagnosis/internal/domain"
	"github.com/anxiety-fuzzy-diagnosis/pkg/fuzzy"
)

// DiagnosisService turns crisp readings into diagnoses using a fuzzy inference system.
// It is safe for concurrent use; the system is immutable and the cache is synchronised.
type DiagnosisService struct {
	logger       *logrus.Logger
	system       *fuzzy.System
	labels       map[string]string
	method       fuzzy.Method
	curveSamples int

	// In-memory LRU of finished results, nil when caching is disabled
	cache  *lru.Cache[string, *domain.DiagnosisResult]
	hits   atomic.Int64
	misses atomic.Int64
}

// CacheStats represents cache performance statistics
type CacheStats struct {
	Enabled bool  `json:"enabled"`
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// NewDiagnosisService builds the inference system described by config and wraps it
func NewDiagnosisService(logger *logrus.Logger, config *domain.Config) (*DiagnosisService, error) {
	system, err := BuildSystem(config.Model, config.Engine)
	if err != nil {
		return nil, err
	}

	method, err := fuzzy.ParseMethod(config.Engine.Method)
	if err != nil {
		return nil, domain.NewDiagnosisError(domain.ErrConfiguration, "invalid default method", err)
	}

	s := &DiagnosisService{
		logger:       logger,
		system:       system,
		labels:       variableLabels(config.Model),
		method:       method,
		curveSamples: config.Report.CurveSamples,
	}
	if s.curveSamples < 2 {
		s.curveSamples = 201
	}

	if config.Cache.Enabled {
		size := config.Cache.MaxEntries
		if size <= 0 {
			size = 1024
		}
		cache, err := lru.New[string, *domain.DiagnosisResult](size)
		if err != nil {
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
		s.cache = cache
	}

	logger.WithFields(logrus.Fields{
		"inputs":        len(system.Inputs()),
		"rules":         system.RuleBase().Len(),
		"method":        method,
		"resolution":    system.Defuzzifier().Resolution(),
		"policy":        system.Policy(),
		"cache_enabled": s.cache != nil,
	}).Info("Diagnosis service initialised")

	return s, nil
}

// System returns the underlying inference system
func (s *DiagnosisService) System() *fuzzy.System {
	return s.system
}

// DefaultMethod returns the method used when none is requested
func (s *DiagnosisService) DefaultMethod() fuzzy.Method {
	return s.method
}

// Label returns the display label of a variable
func (s *DiagnosisService) Label(variable string) string {
	if label, ok := s.labels[variable]; ok {
		return label
	}
	return variable
}

// Diagnose runs the default method over the readings
func (s *DiagnosisService) Diagnose(input domain.CrispInput) (*domain.DiagnosisResult, error) {
	return s.DiagnoseWith(input, "")
}

// DiagnoseReadings is Diagnose over the four readings given positionally
func (s *DiagnosisService) DiagnoseReadings(heartRate, worry, sleep, tension float64) (*domain.DiagnosisResult, error) {
	return s.Diagnose(domain.CrispInput{
		HeartRate:     heartRate,
		WorryLevel:    worry,
		SleepQuality:  sleep,
		MuscleTension: tension,
	})
}

// DiagnoseWith runs the named defuzzification method; empty means the default
func (s *DiagnosisService) DiagnoseWith(input domain.CrispInput, method string) (*domain.DiagnosisResult, error) {
	m, err := s.resolveMethod(method)
	if err != nil {
		return nil, err
	}

	key := cacheKey(input, m)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			s.hits.Add(1)
			s.logger.WithField("method", m).Debug("Diagnosis served from cache")
			return cached.Clone(), nil
		}
		s.misses.Add(1)
	}

	outcome, err := s.infer(input, m)
	if err != nil {
		return nil, err
	}
	result := s.toResult(input, outcome)

	if s.cache != nil {
		s.cache.Add(key, result.Clone())
	}
	return result, nil
}

// CacheStats returns cache performance statistics
func (s *DiagnosisService) CacheStats() CacheStats {
	stats := CacheStats{Hits: s.hits.Load(), Misses: s.misses.Load()}
	if s.cache != nil {
		stats.Enabled = true
		stats.Entries = s.cache.Len()
	}
	return stats
}

// PurgeCache drops every cached result
func (s *DiagnosisService) PurgeCache() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

func (s *DiagnosisService) resolveMethod(method string) (fuzzy.Method, error) {
	if strings.TrimSpace(method) == "" {
		return s.method, nil
	}
	m, err := fuzzy.ParseMethod(method)
	if err != nil {
		return "", domain.NewDiagnosisError(domain.ErrValidation, "unsupported defuzzification method",
			fmt.Errorf("%w: %v", domain.ErrInvalidMethod, err))
	}
	return m, nil
}

// infer runs the system and maps its errors onto service error codes
func (s *DiagnosisService) infer(input domain.CrispInput, method fuzzy.Method) (*fuzzy.Outcome, error) {
	outcome, err := s.system.Infer(input.Values(), method)
	if err != nil {
		fields := logrus.Fields{"method": method, "input": input}
		switch {
		case errors.Is(err, fuzzy.ErrInvalidInput):
			s.logger.WithFields(fields).WithError(err).Warn("Rejected diagnosis input")
			return nil, domain.NewDiagnosisError(domain.ErrInvalidInput, "invalid readings", err)
		case errors.Is(err, fuzzy.ErrNoActivation):
			s.logger.WithFields(fields).Warn("No rule fired for the readings")
			return nil, domain.NewDiagnosisError(domain.ErrNoActivation, "diagnosis could not be computed", err)
		default:
			s.logger.WithFields(fields).WithError(err).Error("Inference failed")
			return nil, domain.NewDiagnosisError(domain.ErrInternalServer, "inference failed", err)
		}
	}

	for _, notice := range outcome.Clamped {
		s.logger.WithFields(logrus.Fields{
			"variable": notice.Variable,
			"given":    notice.Given,
			"used":     notice.Used,
		}).Warn("Input outside its range was clamped")
	}
	if outcome.Indeterminate {
		s.logger.WithFields(logrus.Fields{
			"method": method,
			"input":  input,
			"score":  outcome.Score,
		}).Warn("No rule fired; reporting the midpoint of the output range")
	}
	return outcome, nil
}

func (s *DiagnosisService) toResult(input domain.CrispInput, outcome *fuzzy.Outcome) *domain.DiagnosisResult {
	result := &domain.DiagnosisResult{
		Input:         input,
		Score:         outcome.Score,
		Level:         domain.AnxietyLevel(outcome.Label),
		Method:        outcome.Method.String(),
		Indeterminate: outcome.Indeterminate,
		Activations:   make(map[string]float64, len(outcome.Inference.Activations)),
		Firings:       make([]domain.RuleFiring, 0, len(outcome.Inference.Firings)),
	}
	for name, degree := range outcome.Inference.Activations {
		result.Activations[name] = degree
	}
	for _, f := range outcome.Inference.Firings {
		result.Firings = append(result.Firings, domain.RuleFiring{
			Rule:       f.Rule,
			Consequent: f.Consequent,
			Strength:   f.Strength,
		})
	}
	for _, notice := range outcome.Clamped {
		result.Warnings = append(result.Warnings, domain.InputWarning{
			Variable: notice.Variable,
			Given:    notice.Given,
			Used:     notice.Used,
			Message:  notice.String(),
		})
	}

	s.logger.WithFields(logrus.Fields{
		"score":         result.Score,
		"level":         result.Level,
		"method":        result.Method,
		"indeterminate": result.Indeterminate,
		"fired_rules":   len(result.FiredRules()),
	}).Debug("Diagnosis computed")

	return result
}

func cacheKey(input domain.CrispInput, method fuzzy.Method) string {
	parts := []string{
		method.String(),
		strconv.FormatFloat(input.HeartRate, 'g', -1, 64),
		strconv.FormatFloat(input.WorryLevel, 'g', -1, 64),
		strconv.FormatFloat(input.SleepQuality, 'g', -1, 64),
		strconv.FormatFloat(input.MuscleTension, 'g', -1, 64),
	}
	return strings.Join(parts, "|")
}
