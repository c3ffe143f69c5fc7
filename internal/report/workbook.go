// Package report renders diagnoses and batch runs as Excel workbooks with charts.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/anxiety-fuzzy-diagnosis/internal/batch"
	"github.com/anxiety-fuzzy-diagnosis/internal/domain"
)

// Sheet names shared by the writers and their readers
const (
	SheetSummary   = "Summary"
	SheetOutcomes  = "Outcomes"
	SheetDiagnosis = "Diagnosis"
	SheetSurface   = "Surface"
)

// writer wraps an excelize file with the header style used on every sheet
type writer struct {
	f      *excelize.File
	header int
	sheets int
}

// newWriter returns a writer over a fresh workbook; callers close w.f
func newWriter(title string) (*writer, error) {
	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   title,
		Creator: "anxiety-diagnosis",
		Created: time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return nil, fmt.Errorf("failed to set document properties: %w", err)
	}
	return &writer{f: f, header: header}, nil
}

// sheet returns a new sheet; the first call renames the default one
func (w *writer) sheet(name string) error {
	w.sheets++
	if w.sheets == 1 {
		return w.f.SetSheetName(w.f.GetSheetName(0), name)
	}
	_, err := w.f.NewSheet(name)
	return err
}

// table writes a styled header row and data rows starting at the given row
func (w *writer) table(sheet string, row int, header []interface{}, rows [][]interface{}) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := w.f.SetSheetRow(sheet, start, &header); err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(len(header), row)
	if err != nil {
		return err
	}
	if err := w.f.SetCellStyle(sheet, start, end, w.header); err != nil {
		return err
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, row+1+i)
		if err != nil {
			return err
		}
		if err := w.f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	last, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	return w.f.SetColWidth(sheet, "A", last, 16)
}

func (w *writer) save(path string) error {
	w.f.SetActiveSheet(0)
	if err := w.f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// ref builds an absolute range reference such as 'Outcomes'!$B$2:$B$11
func ref(sheet string, col, fromRow, toRow int) string {
	from, _ := excelize.CoordinatesToCellName(col, fromRow, true)
	to, _ := excelize.CoordinatesToCellName(col, toRow, true)
	return fmt.Sprintf("'%s'!%s:%s", sheet, from, to)
}

func cellRef(sheet string, col, row int) string {
	cell, _ := excelize.CoordinatesToCellName(col, row, true)
	return fmt.Sprintf("'%s'!%s", sheet, cell)
}

// WriteBatchReport saves a summary sheet with a pass-rate chart and an outcomes sheet
func WriteBatchReport(report *domain.BatchReport, path string) error {
	w, err := newWriter("Anxiety diagnosis batch run " + report.RunID)
	if err != nil {
		return err
	}
	defer w.f.Close()

	if err := w.sheet(SheetSummary); err != nil {
		return err
	}
	meta := [][]interface{}{
		{"Run ID", report.RunID},
		{"Started", report.StartedAt.Format(time.RFC3339)},
		{"Duration", report.Duration.String()},
		{"Outcomes", len(report.Outcomes)},
		{"Passed", report.Passed},
		{"Failed", report.Failed},
		{"Errored", report.Errored},
		{"Pass rate", report.PassRate()},
	}
	for i := range meta {
		if err := w.f.SetSheetRow(SheetSummary, fmt.Sprintf("A%d", i+1), &meta[i]); err != nil {
			return err
		}
	}

	summaries := batch.Summarize(report)
	summaryRow := len(meta) + 2
	rows := make([][]interface{}, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []interface{}{s.Method, s.Total, s.Passed, s.Failed, s.Errored, s.Indeterminate, s.PassRate})
	}
	if err := w.table(SheetSummary, summaryRow,
		[]interface{}{"Method", "Total", "Passed", "Failed", "Errored", "Indeterminate", "Pass rate"}, rows); err != nil {
		return err
	}

	if len(summaries) > 0 {
		first, last := summaryRow+1, summaryRow+len(summaries)
		chart := &excelize.Chart{
			Type: excelize.Col,
			Series: []excelize.ChartSeries{{
				Name:       cellRef(SheetSummary, 7, summaryRow),
				Categories: ref(SheetSummary, 1, first, last),
				Values:     ref(SheetSummary, 7, first, last),
			}},
			Title:     []excelize.RichTextRun{{Text: "Pass rate by method"}},
			Legend:    excelize.ChartLegend{Position: "none"},
			Dimension: excelize.ChartDimension{Width: 480, Height: 288},
		}
		if err := w.f.AddChart(SheetSummary, "I2", chart); err != nil {
			return fmt.Errorf("failed to add pass rate chart: %w", err)
		}
	}

	if err := w.sheet(SheetOutcomes); err != nil {
		return err
	}
	rows = rows[:0]
	for _, o := range report.Outcomes {
		rows = append(rows, []interface{}{
			o.Case, o.Method,
			o.Input.HeartRate, o.Input.WorryLevel, o.Input.SleepQuality, o.Input.MuscleTension,
			string(o.Expected), string(o.Actual), o.Score, o.Indeterminate, o.Passed, o.Error,
		})
	}
	if err := w.table(SheetOutcomes, 1, []interface{}{
		"Case", "Method", "Heart rate", "Worry", "Sleep", "Tension",
		"Expected", "Actual", "Score", "Indeterminate", "Passed", "Error",
	}, rows); err != nil {
		return err
	}
	if err := w.f.SetPanes(SheetOutcomes, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	return w.save(path)
}

// WriteExplanation saves the diagnosis, one sheet of membership curves per variable and
// the aggregated output surface, each with a line chart
func WriteExplanation(explanation *domain.Explanation, path string) error {
	w, err := newWriter("Anxiety diagnosis explanation")
	if err != nil {
		return err
	}
	defer w.f.Close()

	result := explanation.Result
	if err := w.sheet(SheetDiagnosis); err != nil {
		return err
	}
	meta := [][]interface{}{
		{"Diagnosis", result.Summary()},
		{"Level", string(result.Level)},
		{"Score", result.Score},
		{"Method", result.Method},
		{"Indeterminate", result.Indeterminate},
	}
	for _, v := range explanation.Inputs {
		meta = append(meta, []interface{}{v.Label, v.Value})
	}
	for i := range meta {
		if err := w.f.SetSheetRow(SheetDiagnosis, fmt.Sprintf("A%d", i+1), &meta[i]); err != nil {
			return err
		}
	}

	firingRow := len(meta) + 2
	rows := make([][]interface{}, 0, len(result.Firings))
	for _, f := range result.Firings {
		rows = append(rows, []interface{}{f.Rule, f.Consequent, f.Strength})
	}
	if err := w.table(SheetDiagnosis, firingRow, []interface{}{"Rule", "Consequent", "Strength"}, rows); err != nil {
		return err
	}

	activationRow := firingRow + len(rows) + 2
	rows = rows[:0]
	for _, name := range sortedKeys(result.Activations) {
		rows = append(rows, []interface{}{name, result.Activations[name]})
	}
	if err := w.table(SheetDiagnosis, activationRow, []interface{}{"Output set", "Activation"}, rows); err != nil {
		return err
	}

	for _, v := range append(append([]domain.VariableView(nil), explanation.Inputs...), explanation.Output) {
		if err := w.variableSheet(v); err != nil {
			return err
		}
	}

	if err := w.sheet(SheetSurface); err != nil {
		return err
	}
	rows = rows[:0]
	for _, p := range explanation.Surface {
		rows = append(rows, []interface{}{p.X, p.Degree})
	}
	if err := w.table(SheetSurface, 1, []interface{}{explanation.Output.Label, "Aggregated degree"}, rows); err != nil {
		return err
	}
	if len(rows) > 0 {
		chart := &excelize.Chart{
			Type: excelize.Area,
			Series: []excelize.ChartSeries{{
				Name:       cellRef(SheetSurface, 2, 1),
				Categories: ref(SheetSurface, 1, 2, len(rows)+1),
				Values:     ref(SheetSurface, 2, 2, len(rows)+1),
			}},
			Title:     []excelize.RichTextRun{{Text: fmt.Sprintf("Aggregated output (score %.2f)", result.Score)}},
			XAxis:     excelize.ChartAxis{TickLabelSkip: len(rows) / 10},
			Legend:    excelize.ChartLegend{Position: "none"},
			Dimension: excelize.ChartDimension{Width: 640, Height: 320},
		}
		if err := w.f.AddChart(SheetSurface, "D2", chart); err != nil {
			return fmt.Errorf("failed to add surface chart: %w", err)
		}
	}

	return w.save(path)
}

// variableSheet writes x plus one column per set and charts the curves
func (w *writer) variableSheet(v domain.VariableView) error {
	if err := w.sheet(v.Name); err != nil {
		return err
	}

	header := []interface{}{v.Label}
	for _, c := range v.Curves {
		header = append(header, c.Set)
	}

	samples := 0
	if len(v.Curves) > 0 {
		samples = len(v.Curves[0].Points)
	}
	rows := make([][]interface{}, samples)
	for i := range rows {
		row := []interface{}{v.Curves[0].Points[i].X}
		for _, c := range v.Curves {
			row = append(row, c.Points[i].Degree)
		}
		rows[i] = row
	}
	if err := w.table(v.Name, 1, header, rows); err != nil {
		return err
	}

	// membership of the crisp value, to the right of the curve table
	memberCol := len(header) + 2
	colName, err := excelize.ColumnNumberToName(memberCol)
	if err != nil {
		return err
	}
	if err := w.f.SetCellValue(v.Name, colName+"1", "Value"); err != nil {
		return err
	}
	if err := w.f.SetCellValue(v.Name, colName+"2", v.Value); err != nil {
		return err
	}
	for i, c := range v.Curves {
		label, _ := excelize.CoordinatesToCellName(memberCol, i+3)
		degree, _ := excelize.CoordinatesToCellName(memberCol+1, i+3)
		if err := w.f.SetCellValue(v.Name, label, c.Set); err != nil {
			return err
		}
		if err := w.f.SetCellValue(v.Name, degree, v.Membership[c.Set]); err != nil {
			return err
		}
	}

	if samples == 0 {
		return nil
	}
	series := make([]excelize.ChartSeries, 0, len(v.Curves))
	for i := range v.Curves {
		series = append(series, excelize.ChartSeries{
			Name:       cellRef(v.Name, i+2, 1),
			Categories: ref(v.Name, 1, 2, samples+1),
			Values:     ref(v.Name, i+2, 2, samples+1),
			Line:       excelize.ChartLine{Width: 1.5},
		})
	}
	anchor, _ := excelize.CoordinatesToCellName(memberCol+3, 2)
	chart := &excelize.Chart{
		Type:      excelize.Line,
		Series:    series,
		Title:     []excelize.RichTextRun{{Text: fmt.Sprintf("%s (value %g)", v.Label, v.Value)}},
		XAxis:     excelize.ChartAxis{TickLabelSkip: samples / 10},
		Legend:    excelize.ChartLegend{Position: "bottom"},
		Dimension: excelize.ChartDimension{Width: 640, Height: 320},
	}
	if err := w.f.AddChart(v.Name, anchor, chart); err != nil {
		return fmt.Errorf("failed to add chart for %s: %w", v.Name, err)
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
