package store

import (
	"time"

	"go.uber.org/zap"

	"github.com/spigell/salary-spy/internal/salary"
)

// row mirrors one line of the salary_data table.
type row struct {
	Employer string `json:"employer"`
	JobTitle string `json:"job_title" mapstructure:"job_title"`
	City     string `json:"city"`
	Salary   int    `json:"salary"`
	Year     int    `json:"year"`
	Source   string `json:"source"`
}

func (r row) record(now time.Time) (salary.Record, error) {
	source, err := salary.ParseSource(r.Source)
	if err != nil {
		return salary.Record{}, err
	}
	return salary.NewRecord(r.Employer, r.JobTitle, r.City, r.Salary, r.Year, source, now)
}

// toRecords converts rows, dropping the ones that break record invariants.
func toRecords(rows []row, now time.Time, logger *zap.Logger) []salary.Record {
	records := make([]salary.Record, 0, len(rows))
	for idx, r := range rows {
		rec, err := r.record(now)
		if err != nil {
			if logger != nil {
				logger.Warn("skipping invalid salary row",
					zap.Int("row", idx),
					zap.String("employer", r.Employer),
					zap.Error(err),
				)
			}
			continue
		}
		records = append(records, rec)
	}
	return records
}
