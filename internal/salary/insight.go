package salary

import (
	"errors"
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// ErrEmptyInput means Aggregate was called without records. Callers guarantee a
// non-empty set, so seeing it is a bug.
var ErrEmptyInput = errors.New("aggregate: empty record set")

// Summary holds the statistics shown next to a result set.
type Summary struct {
	Max   int     `json:"max"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// Aggregate computes the highest and the mean salary.
func Aggregate(records []Record) (Summary, error) {
	if len(records) == 0 {
		return Summary{}, ErrEmptyInput
	}

	var sum int64
	highest := records[0].Salary
	for _, r := range records {
		sum += int64(r.Salary)
		if r.Salary > highest {
			highest = r.Salary
		}
	}

	return Summary{
		Max:   highest,
		Mean:  float64(sum) / float64(len(records)),
		Count: len(records),
	}, nil
}

// Anchor renders the negotiation phrase built around the highest salary.
func (s Summary) Anchor() string {
	return fmt.Sprintf("I see that peers in this role are being compensated up to %s...", FormatCurrency(s.Max))
}

// FormatCurrency renders whole dollars with thousands separators.
func FormatCurrency(amount int) string {
	return "$" + humanize.Comma(int64(amount))
}

// FormatMean renders a mean rounded to whole dollars for display only.
func FormatMean(mean float64) string {
	return "$" + humanize.Comma(int64(math.Round(mean)))
}
