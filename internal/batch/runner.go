// Package batch runs labelled assessments through a diagnoser and scores the results.
package batch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/anxiety-fuzzy-diagnosis/internal/domain"
	"github.com/anxiety-fuzzy-diagnosis/internal/logging"
	"github.com/anxiety-fuzzy-diagnosis/pkg/fuzzy"
)

// Runner evaluates test cases under one or more defuzzification methods
type Runner struct {
	diagnoser domain.Diagnoser
	logger    *logrus.Logger
	methods   []string
}

// MethodSummary aggregates the outcomes of one method
type MethodSummary struct {
	Method        string  `json:"method"`
	Total         int     `json:"total"`
	Passed        int     `json:"passed"`
	Failed        int     `json:"failed"`
	Errored       int     `json:"errored"`
	Indeterminate int     `json:"indeterminate"`
	PassRate      float64 `json:"pass_rate"`
}

// defaultMethoder is implemented by diagnosers that can name their default method
type defaultMethoder interface {
	DefaultMethod() fuzzy.Method
}

// NewRunner creates a runner. With no methods the diagnoser's default is used.
// Known method names are canonicalised so every outcome of one method, failed or
// not, carries the same name.
func NewRunner(diagnoser domain.Diagnoser, logger *logrus.Logger, methods []string) *Runner {
	if len(methods) == 0 {
		methods = []string{""}
	}
	resolved := make([]string, len(methods))
	for i, name := range methods {
		resolved[i] = resolveMethod(diagnoser, name)
	}
	return &Runner{
		diagnoser: diagnoser,
		logger:    logger,
		methods:   resolved,
	}
}

func resolveMethod(diagnoser domain.Diagnoser, name string) string {
	if strings.TrimSpace(name) == "" {
		if d, ok := diagnoser.(defaultMethoder); ok {
			return d.DefaultMethod().String()
		}
		return name
	}
	method, err := fuzzy.ParseMethod(name)
	if err != nil {
		// Left as given; each case reports the diagnoser's error
		return name
	}
	return method.String()
}

// Run diagnoses every case under every method. A failing diagnosis is recorded on its
// outcome rather than aborting the run; only cancellation stops it early.
func (r *Runner) Run(ctx context.Context, cases []domain.TestCase) (*domain.BatchReport, error) {
	if len(cases) == 0 {
		return nil, fmt.Errorf("no test cases to run")
	}

	op := logging.StartOperation(r.logger, "batch_run", logrus.Fields{
		"cases":   len(cases),
		"methods": r.methods,
	})

	report := &domain.BatchReport{
		RunID:     op.ID(),
		StartedAt: time.Now(),
		Methods:   append([]string(nil), r.methods...),
		Outcomes:  make([]domain.CaseOutcome, 0, len(cases)*len(r.methods)),
	}

	for _, method := range r.methods {
		for _, tc := range cases {
			if err := ctx.Err(); err != nil {
				op.End(err, logrus.Fields{"completed": len(report.Outcomes)})
				return nil, fmt.Errorf("batch run cancelled: %w", err)
			}

			outcome := r.runCase(tc, method)
			switch {
			case outcome.Error != "":
				report.Errored++
			case outcome.Passed:
				report.Passed++
			default:
				report.Failed++
			}
			report.Outcomes = append(report.Outcomes, outcome)
		}
	}

	report.Duration = time.Since(report.StartedAt)
	op.End(nil, logrus.Fields{
		"passed":    report.Passed,
		"failed":    report.Failed,
		"errored":   report.Errored,
		"pass_rate": report.PassRate(),
	})
	return report, nil
}

func (r *Runner) runCase(tc domain.TestCase, method string) domain.CaseOutcome {
	outcome := domain.CaseOutcome{
		Case:     tc.Name,
		Method:   method,
		Input:    tc.Input,
		Expected: tc.Expected,
	}

	result, err := r.diagnoser.DiagnoseWith(tc.Input, method)
	if err != nil {
		outcome.Error = err.Error()
		r.logger.WithFields(logrus.Fields{
			"case":   tc.Name,
			"method": method,
		}).WithError(err).Warn("Test case could not be diagnosed")
		return outcome
	}

	outcome.Method = result.Method
	outcome.Actual = result.Level
	outcome.Score = result.Score
	outcome.Indeterminate = result.Indeterminate
	outcome.Passed = result.Level == tc.Expected

	if !outcome.Passed {
		r.logger.WithFields(logrus.Fields{
			"case":     tc.Name,
			"method":   outcome.Method,
			"expected": tc.Expected,
			"actual":   result.Level,
			"score":    result.Score,
		}).Info("Test case diagnosis differs from expected level")
	}
	return outcome
}

// Summarize groups outcomes by method in run order
func Summarize(report *domain.BatchReport) []MethodSummary {
	index := make(map[string]int)
	var out []MethodSummary
	for _, o := range report.Outcomes {
		i, ok := index[o.Method]
		if !ok {
			i = len(out)
			index[o.Method] = i
			out = append(out, MethodSummary{Method: o.Method})
		}
		s := &out[i]
		s.Total++
		switch {
		case o.Error != "":
			s.Errored++
		case o.Passed:
			s.Passed++
		default:
			s.Failed++
		}
		if o.Indeterminate {
			s.Indeterminate++
		}
	}
	for i := range out {
		out[i].PassRate = float64(out[i].Passed) / float64(out[i].Total)
	}
	return out
}
