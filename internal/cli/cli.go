// Package cli implements the command-line and interactive menu front end.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/anxiety-fuzzy-diagnosis/internal/batch"
	"github.com/anxiety-fuzzy-diagnosis/internal/domain"
	"github.com/anxiety-fuzzy-diagnosis/internal/report"
	"github.com/anxiety-fuzzy-diagnosis/pkg/fuzzy"
)

// Diagnostician is what the CLI needs from the diagnosis service
type Diagnostician interface {
	domain.Diagnoser
	domain.Explainer
}

// CLI provides the command-line interface for diagnoses.
type CLI struct {
	service  Diagnostician
	settings domain.ConfigManager
	config   *domain.Config
	logger   *logrus.Logger
	reader   *bufio.Reader
	out      io.Writer
}

// NewCLI creates a new CLI instance reading from in and writing to out.
func NewCLI(service Diagnostician, settings domain.ConfigManager, logger *logrus.Logger, in io.Reader, out io.Writer) *CLI {
	return &CLI{
		service:  service,
		settings: settings,
		config:   settings.GetConfig(),
		logger:   logger,
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

// Run executes the command based on the provided arguments.
func (c *CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.runMenu(ctx)
	}

	switch args[0] {
	case "diagnose":
		return c.diagnose(args[1:])
	case "explain":
		return c.explain(args[1:])
	case "batch":
		return c.runBatch(ctx, args[1:])
	case "menu":
		return c.runMenu(ctx)
	case "help", "--help", "-h":
		return c.showHelp()
	default:
		c.printf("Unknown command: %s\n\n", args[0])
		c.showHelp()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

// showHelp displays usage information.
func (c *CLI) showHelp() error {
	help := `
Anxiety Diagnosis

Usage:
  anxiety-diagnosis [command] [options]

Commands:
  menu      Interactive menu (default when no command is given)
  diagnose  Diagnose one set of readings
  explain   Diagnose and write membership curves and the output surface to a workbook
  batch     Run labelled test cases under one or more defuzzification methods
  help      Show this help

Reading options (diagnose, explain):
  --heart-rate <bpm>   Resting heart rate, 60-120
  --worry <0-10>       Self-reported worry level
  --sleep <0-10>       Sleep quality, 10 is best
  --tension <0-10>     Muscle tension
  --method <name>      centroid, bisector, mom, som or lom
  --json               Print the result as JSON (diagnose only)
  --xlsx <path>        Workbook to write (explain, batch)

Batch options:
  --cases <file>       YAML, XLSX or CSV cases file (defaults to the built-in cases)
  --methods <list>     Comma-separated methods (defaults to the configured list)

Examples:
  anxiety-diagnosis diagnose --heart-rate 80 --worry 5 --sleep 5 --tension 5
  anxiety-diagnosis explain --heart-rate 110 --worry 9 --sleep 2 --tension 9 --xlsx acute.xlsx
  anxiety-diagnosis batch --methods centroid,mom --xlsx batch.xlsx
`
	c.println(help)
	return nil
}

// diagnose handles the diagnose subcommand.
func (c *CLI) diagnose(args []string) error {
	opts, err := parseFlags(args, "json")
	if err != nil {
		return err
	}
	input, err := readingsFromFlags(opts)
	if err != nil {
		return err
	}

	result, err := c.service.DiagnoseWith(input, opts["method"])
	if err != nil {
		return err
	}

	if _, ok := opts["json"]; ok {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	c.printResult(result, true)
	return nil
}

// explain handles the explain subcommand.
func (c *CLI) explain(args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	input, err := readingsFromFlags(opts)
	if err != nil {
		return err
	}

	explanation, err := c.service.Explain(input, opts["method"])
	if err != nil {
		return err
	}
	c.printResult(explanation.Result, true)

	c.println()
	for _, v := range explanation.Inputs {
		c.printf("%s = %g: %s\n", v.Label, v.Value, formatMembership(v))
	}

	path, err := c.outputPath(opts["xlsx"], "explanation.xlsx")
	if err != nil {
		return err
	}
	if err := report.WriteExplanation(explanation, path); err != nil {
		return fmt.Errorf("failed to write explanation: %w", err)
	}
	c.printf("\nCharts written to %s\n", path)
	return nil
}

// runBatch handles the batch subcommand.
func (c *CLI) runBatch(ctx context.Context, args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cases, err := c.loadCases(opts["cases"])
	if err != nil {
		return err
	}

	methods := c.config.Batch.Methods
	if raw, ok := opts["methods"]; ok {
		methods, err = parseMethods(raw)
		if err != nil {
			return err
		}
	}

	result, err := batch.NewRunner(c.service, c.logger, methods).Run(ctx, cases)
	if err != nil {
		return err
	}

	c.printf("Batch run %s: %d cases x %d methods\n\n", result.RunID, len(cases), len(result.Methods))
	for _, o := range result.Outcomes {
		status := "PASS"
		switch {
		case o.Error != "":
			status = "ERROR"
		case !o.Passed:
			status = "FAIL"
		}
		line := fmt.Sprintf("  %-5s %-10s %-9s expected %-8s got %-8s score %6.2f",
			status, o.Case, o.Method, o.Expected, o.Actual, o.Score)
		if o.Indeterminate {
			line += " (indeterminate)"
		}
		if o.Error != "" {
			line += " " + o.Error
		}
		c.println(line)
	}

	c.println()
	for _, s := range batch.Summarize(result) {
		c.printf("  %-9s %d/%d passed (%.0f%%)\n", s.Method, s.Passed, s.Total, s.PassRate*100)
	}
	c.printf("Overall: %d passed, %d failed, %d errored\n", result.Passed, result.Failed, result.Errored)

	if path, ok := opts["xlsx"]; ok {
		path, err = c.outputPath(path, "batch.xlsx")
		if err != nil {
			return err
		}
		if err := report.WriteBatchReport(result, path); err != nil {
			return fmt.Errorf("failed to write batch report: %w", err)
		}
		c.printf("Report written to %s\n", path)
	}
	return nil
}

func (c *CLI) loadCases(path string) ([]domain.TestCase, error) {
	if path == "" {
		path = c.config.Batch.CasesFile
	}
	if path == "" {
		return batch.DefaultCases(), nil
	}
	return batch.LoadCases(path)
}

// outputPath resolves a workbook path; without one the report directory is used
func (c *CLI) outputPath(path, fallback string) (string, error) {
	if path == "" {
		if err := c.settings.EnsureOutputDir(); err != nil {
			return "", fmt.Errorf("failed to create report directory: %w", err)
		}
		return c.settings.ReportPath(fallback), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	return path, nil
}

func (c *CLI) printResult(result *domain.DiagnosisResult, details bool) {
	c.printf("Result: %s\n", result.Summary())
	if !details {
		return
	}
	c.printf("Score: %.2f (%s)\n", result.Score, result.Method)
	for _, w := range result.Warnings {
		c.printf("Warning: %s\n", w.Message)
	}
	fired := result.FiredRules()
	if len(fired) == 0 {
		return
	}
	c.println("Fired rules:")
	for _, f := range fired {
		c.printf("  %-4s -> %-9s %.3f\n", f.Rule, f.Consequent, f.Strength)
	}
}

func formatMembership(v domain.VariableView) string {
	parts := make([]string, 0, len(v.Curves))
	for _, curve := range v.Curves {
		parts = append(parts, fmt.Sprintf("%s %.2f", curve.Set, v.Membership[curve.Set]))
	}
	return strings.Join(parts, ", ")
}

func (c *CLI) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *CLI) println(args ...interface{}) {
	fmt.Fprintln(c.out, args...)
}

// parseFlags reads "--name value" pairs; names listed in switches take no value
func parseFlags(args []string, switches ...string) (map[string]string, error) {
	isSwitch := make(map[string]bool, len(switches))
	for _, s := range switches {
		isSwitch[s] = true
	}

	opts := make(map[string]string)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			return nil, domain.NewValidationError("arguments", "unexpected argument", arg)
		}
		name := strings.TrimLeft(arg, "-")
		if key, value, ok := strings.Cut(name, "="); ok {
			opts[flagName(key)] = value
			continue
		}
		name = flagName(name)
		if isSwitch[name] {
			opts[name] = "true"
			continue
		}
		if i+1 >= len(args) {
			return nil, domain.NewValidationError(name, "missing value", nil)
		}
		opts[name] = args[i+1]
		i++
	}
	return opts, nil
}

// flagName maps short and alternative spellings onto canonical option names
func flagName(name string) string {
	switch name {
	case "r", "hr", "heart-rate", "heart_rate":
		return "heart-rate"
	case "w", "worry-level", "worry_level":
		return "worry"
	case "s", "sleep-quality", "sleep_quality":
		return "sleep"
	case "t", "muscle-tension", "muscle_tension":
		return "tension"
	case "m":
		return "method"
	default:
		return name
	}
}

func readingsFromFlags(opts map[string]string) (domain.CrispInput, error) {
	var input domain.CrispInput
	fields := []struct {
		flag     string
		variable string
		target   *float64
	}{
		{"heart-rate", domain.VarHeartRate, &input.HeartRate},
		{"worry", domain.VarWorryLevel, &input.WorryLevel},
		{"sleep", domain.VarSleepQuality, &input.SleepQuality},
		{"tension", domain.VarMuscleTension, &input.MuscleTension},
	}
	for _, f := range fields {
		raw, ok := opts[f.flag]
		if !ok {
			return input, domain.NewValidationError(f.variable, "reading is required (--"+f.flag+")", nil)
		}
		x, err := parseReading(f.variable, raw)
		if err != nil {
			return input, err
		}
		*f.target = x
	}
	return input, nil
}

// parseReading accepts a decimal number; NaN and infinities are rejected
func parseReading(variable, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	x, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, domain.NewValidationError(variable, "must be a number", raw)
	}
	return x, nil
}

func parseMethods(raw string) ([]string, error) {
	var methods []string
	for _, part := range strings.Split(raw, ",") {
		m, err := fuzzy.ParseMethod(part)
		if err != nil {
			return nil, domain.NewValidationError("methods", err.Error(), part)
		}
		methods = append(methods, m.String())
	}
	return methods, nil
}

// isQuit reports whether reading stopped because input ended
func isQuit(err error) bool {
	return errors.Is(err, io.EOF)
}
