package batch

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"github.com/xuri/excelize/v2"

	"github.com/anxiety-fuzzy-diagnosis/internal/domain"
)

// DefaultCases returns the ten labelled reference assessments
func DefaultCases() []domain.TestCase {
	return []domain.TestCase{
		newCase("Test 1", 65, 2, 8, 1, domain.LOW),
		newCase("Test 2", 80, 5, 5, 5, domain.MODERATE),
		newCase("Test 3", 110, 9, 2, 9, domain.HIGH),
		newCase("Test 4", 70, 3, 9, 2, domain.LOW),
		newCase("Test 5", 90, 6, 4, 6, domain.MODERATE),
		newCase("Test 6", 100, 4, 7, 4, domain.MODERATE),
		newCase("Test 7", 75, 1, 10, 3, domain.LOW),
		newCase("Test 8", 95, 7, 3, 7, domain.MODERATE),
		newCase("Test 9", 105, 8, 1, 8, domain.HIGH),
		newCase("Test 10", 85, 5, 6, 5, domain.MODERATE),
	}
}

func newCase(name string, hr, worry, sleep, tension float64, expected domain.AnxietyLevel) domain.TestCase {
	return domain.TestCase{
		Name: name,
		Input: domain.CrispInput{
			HeartRate:     hr,
			WorryLevel:    worry,
			SleepQuality:  sleep,
			MuscleTension: tension,
		},
		Expected: expected,
	}
}

// LoadCases reads labelled cases from a YAML/JSON, XLSX or CSV file
func LoadCases(path string) ([]domain.TestCase, error) {
	var (
		cases []domain.TestCase
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		cases, err = loadStructured(path)
	case ".xlsx":
		cases, err = loadWorkbook(path)
	case ".csv":
		cases, err = loadCSV(path)
	default:
		return nil, fmt.Errorf("unsupported cases file format: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("cases file %s contains no cases", path)
	}
	return normalise(cases)
}

func loadStructured(path string) ([]domain.TestCase, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading cases file %s: %w", path, err)
	}

	var cases []domain.TestCase
	if err := v.UnmarshalKey("cases", &cases); err != nil {
		return nil, fmt.Errorf("error unmarshaling cases file %s: %w", path, err)
	}
	return cases, nil
}

func loadWorkbook(path string) ([]domain.TestCase, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cases workbook: %w", err)
	}
	defer file.Close()

	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read cases workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from cases workbook: %w", err)
	}
	return parseRows(rows)
}

func loadCSV(path string) ([]domain.TestCase, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cases file: %w", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse cases file: %w", err)
	}
	return parseRows(rows)
}

// parseRows turns a header row plus data rows into cases. Column order is free; columns
// are matched by name.
func parseRows(rows [][]string) ([]domain.TestCase, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("cases sheet needs a header row and at least one data row")
	}

	header := rows[0]
	cols := map[string]int{
		"name":                  findIndex(header, "name", "case", "test"),
		domain.VarHeartRate:     findIndex(header, "heart_rate", "heart rate", "hr", "bpm"),
		domain.VarWorryLevel:    findIndex(header, "worry_level", "worry level", "worry"),
		domain.VarSleepQuality:  findIndex(header, "sleep_quality", "sleep quality", "sleep"),
		domain.VarMuscleTension: findIndex(header, "muscle_tension", "muscle tension", "tension"),
		"expected":              findIndex(header, "expected", "expected_level", "label", "level"),
	}

	var missing []string
	for _, name := range append(domain.InputVariables(), "expected") {
		if cols[name] == -1 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("cases sheet is missing columns: %s", strings.Join(missing, ", "))
	}

	cases := make([]domain.TestCase, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		if isBlank(row) {
			continue
		}

		values := make(map[string]float64, 4)
		for _, name := range domain.InputVariables() {
			raw := cell(row, cols[name])
			x, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %s: %w", line, name,
					domain.NewValidationError(name, "must be a number", raw))
			}
			values[name] = x
		}

		tc := domain.TestCase{
			Name: cell(row, cols["name"]),
			Input: domain.CrispInput{
				HeartRate:     values[domain.VarHeartRate],
				WorryLevel:    values[domain.VarWorryLevel],
				SleepQuality:  values[domain.VarSleepQuality],
				MuscleTension: values[domain.VarMuscleTension],
			},
			Expected: domain.AnxietyLevel(cell(row, cols["expected"])),
		}
		if tc.Name == "" {
			tc.Name = fmt.Sprintf("Row %d", line)
		}
		cases = append(cases, tc)
	}
	return cases, nil
}

// normalise names unnamed cases and checks every expected level
func normalise(cases []domain.TestCase) ([]domain.TestCase, error) {
	out := make([]domain.TestCase, len(cases))
	for i, tc := range cases {
		level, err := domain.ParseAnxietyLevel(string(tc.Expected))
		if err != nil {
			return nil, fmt.Errorf("case %d (%s): %w: %q", i+1, tc.Name, err, tc.Expected)
		}
		tc.Expected = level
		tc.Name = strings.TrimSpace(tc.Name)
		if tc.Name == "" {
			tc.Name = fmt.Sprintf("Case %d", i+1)
		}
		out[i] = tc
	}
	return out, nil
}

func findIndex(header []string, candidates ...string) int {
	for _, candidate := range candidates {
		for i, item := range header {
			if strings.EqualFold(strings.TrimSpace(item), candidate) {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
