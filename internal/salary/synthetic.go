package salary

import (
	"strings"
	"time"
)

const (
	DefaultCompany = "Tech Corp"
	DefaultRole    = "Manager"
)

type variant struct {
	employerSuffix string
	titlePrefix    string
	city           string
	salary         int
	year           int
	source         Source
}

// Base < Lead < Senior; the competitor sits between base and lead.
var variants = [...]variant{
	{city: "New York, NY", salary: 145000, year: 2024, source: SourceFiledDisclosure},
	{titlePrefix: "Senior ", city: "San Francisco, CA", salary: 210000, year: 2025, source: SourceFiledDisclosure},
	{employerSuffix: " (Competitor)", city: "Austin, TX", salary: 165000, year: 2024, source: SourcePayTransparency},
	{titlePrefix: "Lead ", city: "Seattle, WA", salary: 198000, year: 2025, source: SourceUserVerified},
}

// Synthesize returns the fixed four-record market sample used when no real
// data is available. The output depends only on the arguments.
func Synthesize(company, role string) []Record {
	company = strings.TrimSpace(company)
	if company == "" {
		company = DefaultCompany
	}
	role = strings.TrimSpace(role)
	if role == "" {
		role = DefaultRole
	}

	records := make([]Record, 0, len(variants))
	for _, v := range variants {
		records = append(records, Record{
			Employer: company + v.employerSuffix,
			JobTitle: v.titlePrefix + role,
			City:     v.city,
			Salary:   v.salary,
			Year:     v.year,
			Source:   v.source,
		})
	}
	return records
}

// SynthesizeAt is Synthesize with every year moved into the observation
// window around now. Years already inside the window are unchanged.
func SynthesizeAt(company, role string, now time.Time) []Record {
	records := Synthesize(company, role)
	lo, hi := now.Year()-yearsBack, now.Year()+yearsAhead
	for i := range records {
		records[i].Year = min(max(records[i].Year, lo), hi)
	}
	return records
}
