package cmd

import (
	"strconv"

	"github.com/pterm/pterm"

	"github.com/spigell/salary-spy/internal/lookup"
	"github.com/spigell/salary-spy/internal/salary"
)

var tableHeader = []string{"Employer", "Job title", "City", "Salary", "Year", "Source"}

func renderResult(res *lookup.Result) error {
	renderBanner(res.Decision.Banner)

	pterm.DefaultSection.Println("Market insight")
	pterm.Println(res.Anchor)
	pterm.Printfln("Mean salary: %s across %d records", salary.FormatMean(res.Summary.Mean), res.Summary.Count)

	return pterm.DefaultTable.WithHasHeader().WithData(tableData(res.Decision.Records)).Render()
}

func renderBanner(b lookup.Banner) {
	switch b.Level {
	case lookup.LevelInfo:
		pterm.Info.Println(b.Message)
	case lookup.LevelWarning:
		pterm.Warning.Println(b.Message)
	case lookup.LevelError:
		pterm.Error.Println(b.Message)
	}
}

func tableData(records []salary.Record) pterm.TableData {
	data := pterm.TableData{tableHeader}
	for _, r := range records {
		data = append(data, []string{
			r.Employer,
			r.JobTitle,
			r.City,
			salary.FormatCurrency(r.Salary),
			strconv.Itoa(r.Year),
			r.Source.String(),
		})
	}
	return data
}
