package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/spigell/salary-spy/internal/lookup"
)

const (
	resultsSheet = "Salaries"
	summarySheet = "Insight"
)

var headers = []string{"Employer", "Job Title", "City", "Salary", "Year", "Source"}

// XLSX writes a lookup result as a workbook with a results sheet and an
// insight sheet.
func XLSX(w io.Writer, res *lookup.Result) error {
	f, err := build(res)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveXLSX writes the workbook to path.
func SaveXLSX(path string, res *lookup.Result) error {
	f, err := build(res)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %q: %w", path, err)
	}
	return nil
}

func build(res *lookup.Result) (*excelize.File, error) {
	if res == nil {
		return nil, fmt.Errorf("nothing to export")
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		f.Close()
		return nil, err
	}

	if err := writeResults(f, res); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSummary(f, res); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

func writeResults(f *excelize.File, res *lookup.Result) error {
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(resultsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		return err
	}

	for i, r := range res.Decision.Records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{r.Employer, r.JobTitle, r.City, r.Salary, r.Year, r.Source.String()}
		if err := f.SetSheetRow(resultsSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
		salaryCell, _ := excelize.CoordinatesToCellName(4, i+2)
		if err := f.SetCellStyle(resultsSheet, salaryCell, salaryCell, style); err != nil {
			return err
		}
	}

	return f.SetColWidth(resultsSheet, "A", "C", 28)
}

func writeSummary(f *excelize.File, res *lookup.Result) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	rows := [][]interface{}{
		{"State", res.Decision.State.String()},
		{"Synthetic", res.Decision.Synthetic},
		{"Highest salary", res.Summary.Max},
		{"Mean salary", res.Summary.Mean},
		{"Records", res.Summary.Count},
		{"Anchor", res.Anchor},
	}
	if res.Decision.Banner.Message != "" {
		rows = append(rows, []interface{}{"Notice", res.Decision.Banner.Message})
	}

	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	return nil
}
