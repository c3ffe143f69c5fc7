package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/anxiety-fuzzy-diagnosis/internal/config"
	"github.com/anxiety-fuzzy-diagnosis/internal/domain"
	"github.com/anxiety-fuzzy-diagnosis/internal/logging"
	"github.com/anxiety-fuzzy-diagnosis/internal/service"
)

func newTestCLI(t *testing.T, input string) (*CLI, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"cache:\n  max_entries: 16\n"+
			"report:\n  output_dir: "+filepath.Join(dir, "reports")+"\n  curve_samples: 21\n"), 0644))

	settings, err := config.NewManager(config.WithConfigFile(path), config.WithEnvFiles(filepath.Join(dir, "missing.env")))
	require.NoError(t, err)
	require.NoError(t, settings.Validate())

	logger := logging.Discard()
	svc, err := service.NewDiagnosisService(logger, settings.GetConfig())
	require.NoError(t, err)

	out := &bytes.Buffer{}
	return NewCLI(svc, settings, logger, strings.NewReader(input), out), out
}

func TestRun_Help(t *testing.T) {
	c, out := newTestCLI(t, "")

	require.NoError(t, c.Run(context.Background(), []string{"help"}))
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "batch")
}

func TestRun_UnknownCommand(t *testing.T) {
	c, out := newTestCLI(t, "")

	err := c.Run(context.Background(), []string{"frobnicate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
	assert.Contains(t, out.String(), "Unknown command: frobnicate")
}

func TestDiagnose_Text(t *testing.T) {
	c, out := newTestCLI(t, "")

	err := c.Run(context.Background(), []string{"diagnose", "--heart-rate", "80", "--worry", "5", "--sleep", "5", "--tension", "5"})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Result: Moderate anxiety level")
	assert.Contains(t, text, "Score: 50.00 (centroid)")
	assert.Contains(t, text, "R2")
	assert.Contains(t, text, "R4")
}

func TestDiagnose_JSONWithAliases(t *testing.T) {
	c, out := newTestCLI(t, "")

	err := c.Run(context.Background(), []string{"diagnose", "-r=65", "-w", "2", "-s", "8", "-t", "1", "--method", "mom", "--json"})
	require.NoError(t, err)

	var result domain.DiagnosisResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, domain.LOW, result.Level)
	assert.Equal(t, "mom", result.Method)
	assert.InDelta(t, 13.3, result.Score, 0.2)
}

func TestDiagnose_ClampWarning(t *testing.T) {
	c, out := newTestCLI(t, "")

	err := c.Run(context.Background(), []string{"diagnose", "--heart-rate", "130", "--worry", "9", "--sleep", "2", "--tension", "9"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Warning: heart_rate=130 outside [60, 120], clamped to 120")
}

func TestDiagnose_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing reading", []string{"--heart-rate", "80", "--worry", "5", "--sleep", "5"}, "muscle_tension"},
		{"non numeric", []string{"--heart-rate", "fast", "--worry", "5", "--sleep", "5", "--tension", "5"}, "must be a number"},
		{"not a number", []string{"--heart-rate", "NaN", "--worry", "5", "--sleep", "5", "--tension", "5"}, "must be a number"},
		{"missing value", []string{"--heart-rate"}, "missing value"},
		{"positional argument", []string{"80"}, "unexpected argument"},
		{"unknown method", []string{"--heart-rate", "80", "--worry", "5", "--sleep", "5", "--tension", "5", "--method", "median"}, "unsupported defuzzification method"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCLI(t, "")
			err := c.Run(context.Background(), append([]string{"diagnose"}, tt.args...))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestExplain_WritesWorkbook(t *testing.T) {
	c, out := newTestCLI(t, "")
	path := filepath.Join(t.TempDir(), "explain.xlsx")

	err := c.Run(context.Background(), []string{"explain", "--heart-rate", "110", "--worry", "9", "--sleep", "2", "--tension", "9", "--xlsx", path})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Result: High anxiety level")
	assert.Contains(t, out.String(), "Charts written to "+path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Diagnosis")
}

func TestExplain_DefaultsToReportDirectory(t *testing.T) {
	c, _ := newTestCLI(t, "")

	err := c.Run(context.Background(), []string{"explain", "--heart-rate", "80", "--worry", "5", "--sleep", "5", "--tension", "5"})
	require.NoError(t, err)

	assert.FileExists(t, c.settings.ReportPath("explanation.xlsx"))
}

func TestBatch_DefaultCases(t *testing.T) {
	c, out := newTestCLI(t, "")
	path := filepath.Join(t.TempDir(), "batch.xlsx")

	err := c.Run(context.Background(), []string{"batch", "--methods", "centroid", "--xlsx", path})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "10 cases x 1 methods")
	assert.Contains(t, text, "centroid  8/10 passed (80%)")
	assert.Contains(t, text, "(indeterminate)")
	assert.Contains(t, text, "Report written to "+path)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestBatch_InvalidMethods(t *testing.T) {
	c, _ := newTestCLI(t, "")

	err := c.Run(context.Background(), []string{"batch", "--methods", "centroid,median"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "median")
}

func TestBatch_CasesFile(t *testing.T) {
	c, out := newTestCLI(t, "")
	path := filepath.Join(t.TempDir(), "cases.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"name,heart_rate,worry_level,sleep_quality,muscle_tension,expected\n"+
			"calm,65,2,8,1,low\n"), 0644))

	err := c.Run(context.Background(), []string{"batch", "--cases", path, "--methods", "centroid"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "PASS  calm")
	assert.Contains(t, out.String(), "Overall: 1 passed, 0 failed, 0 errored")
}

func TestMenu_ExitOption(t *testing.T) {
	c, out := newTestCLI(t, "3\n")

	require.NoError(t, c.Run(context.Background(), nil))
	assert.Contains(t, out.String(), "Anxiety Diagnosis System")
	assert.Contains(t, out.String(), "Exiting.")
}

func TestMenu_EndOfInput(t *testing.T) {
	c, out := newTestCLI(t, "")

	require.NoError(t, c.Run(context.Background(), []string{"menu"}))
	assert.Contains(t, out.String(), "Choose an option")
}

func TestMenu_InvalidOption(t *testing.T) {
	c, out := newTestCLI(t, "9\n3\n")

	require.NoError(t, c.Run(context.Background(), nil))
	assert.Contains(t, out.String(), "Invalid option. Please choose a valid option.")
}

func TestMenu_ManualEntry(t *testing.T) {
	// centroid, then readings, then back and exit
	c, out := newTestCLI(t, "1\n1\n80\n5\n5\n5\n6\n3\n")

	require.NoError(t, c.Run(context.Background(), nil))
	text := out.String()
	assert.Contains(t, text, "Enter heart rate")
	assert.Contains(t, text, "Result: Moderate anxiety level")
	assert.Contains(t, text, "Score: 50.00 (centroid)")
}

func TestMenu_ManualEntryLargestOfMaximum(t *testing.T) {
	c, out := newTestCLI(t, "1\n5\n65\n2\n8\n1\n6\n3\n")

	require.NoError(t, c.Run(context.Background(), nil))
	assert.Contains(t, out.String(), "Result: Low anxiety level")
	assert.Contains(t, out.String(), "(lom)")
}

func TestMenu_ManualEntryRejectsText(t *testing.T) {
	c, out := newTestCLI(t, "1\n1\nfast\n6\n3\n")

	require.NoError(t, c.Run(context.Background(), nil))
	assert.Contains(t, out.String(), "Invalid input. Please enter numeric values.")
	assert.NotContains(t, out.String(), "Result:")
}

func TestMenu_ManualEntryClamps(t *testing.T) {
	c, out := newTestCLI(t, "1\n1\n150\n5\n5\n5\n6\n3\n")

	require.NoError(t, c.Run(context.Background(), nil))
	assert.Contains(t, out.String(), "Warning: heart_rate=150 outside [60, 120], clamped to 120")
}

func TestMenu_TestCasesQuit(t *testing.T) {
	c, out := newTestCLI(t, "2\nq\n3\n")

	require.NoError(t, c.Run(context.Background(), nil))
	text := out.String()
	assert.Contains(t, text, "Case 1 (Test 1)")
	assert.Contains(t, text, "Method centroid")
	assert.Contains(t, text, "Method lom")
	assert.NotContains(t, text, "Case 2 (Test 2)")
	assert.NotContains(t, text, "All test cases have been run.")
}

func TestMenu_TestCasesToCompletion(t *testing.T) {
	// an invalid answer re-prompts before the walkthrough continues
	input := "2\nx\n" + strings.Repeat("\n", 9) + "3\n"
	c, out := newTestCLI(t, input)

	require.NoError(t, c.Run(context.Background(), nil))
	text := out.String()
	assert.Contains(t, text, "Invalid option. Press ENTER to continue or 'q' to quit.")
	assert.Contains(t, text, "Case 10 (Test 10)")
	assert.Contains(t, text, "All test cases have been run.")
	assert.Contains(t, text, "Exiting.")
}

func TestMenu_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c, _ := newTestCLI(t, "2\n")

	err := c.Run(ctx, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"--hr", "80", "--worry-level=4", "-m", "som", "--json"}, "json")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"heart-rate": "80",
		"worry":      "4",
		"method":     "som",
		"json":       "true",
	}, opts)
}

func TestParseMethods(t *testing.T) {
	methods, err := parseMethods("Centroid, mom")
	require.NoError(t, err)
	assert.Equal(t, []string{"centroid", "mom"}, methods)
}
