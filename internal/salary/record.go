package salary

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultLimit caps the number of records returned for a single query.
	DefaultLimit = 50

	// yearsBack and yearsAhead bound the plausible observation window.
	yearsBack  = 5
	yearsAhead = 1
)

// ErrInvalidRecord is returned when a record violates one of its invariants.
var ErrInvalidRecord = errors.New("invalid salary record")

// Source tells where a compensation data point comes from.
type Source int

const (
	SourceFiledDisclosure Source = iota + 1
	SourcePayTransparency
	SourceUserVerified
)

var sourceLabels = map[Source]string{
	SourceFiledDisclosure: "H1B Filing",
	SourcePayTransparency: "Pay Transparency",
	SourceUserVerified:    "Verified User",
}

var sourceAliases = map[string]Source{
	"h1b filing":       SourceFiledDisclosure,
	"h1b":              SourceFiledDisclosure,
	"fileddisclosure":  SourceFiledDisclosure,
	"filed_disclosure": SourceFiledDisclosure,
	"filed disclosure": SourceFiledDisclosure,
	"pay transparency": SourcePayTransparency,
	"paytransparency":  SourcePayTransparency,
	"pay_transparency": SourcePayTransparency,
	"verified user":    SourceUserVerified,
	"userverified":     SourceUserVerified,
	"user_verified":    SourceUserVerified,
	"user verified":    SourceUserVerified,
}

// ParseSource converts a store label or a canonical name into a Source.
func ParseSource(s string) (Source, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if source, ok := sourceAliases[key]; ok {
		return source, nil
	}
	return 0, fmt.Errorf("%w: unknown source %q", ErrInvalidRecord, s)
}

func (s Source) String() string {
	if label, ok := sourceLabels[s]; ok {
		return label
	}
	return fmt.Sprintf("Source(%d)", int(s))
}

func (s Source) MarshalText() ([]byte, error) {
	if _, ok := sourceLabels[s]; !ok {
		return nil, fmt.Errorf("%w: unknown source %d", ErrInvalidRecord, int(s))
	}
	return []byte(s.String()), nil
}

func (s *Source) UnmarshalText(text []byte) error {
	parsed, err := ParseSource(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Record is one observed or synthesized compensation data point.
// Records are passed by value and never modified after construction.
type Record struct {
	Employer string `json:"employer" yaml:"employer"`
	JobTitle string `json:"job_title" yaml:"job_title"`
	City     string `json:"city" yaml:"city"`
	Salary   int    `json:"salary" yaml:"salary"`
	Year     int    `json:"year" yaml:"year"`
	Source   Source `json:"source" yaml:"source"`
}

// NewRecord builds a record and checks its invariants against the observation
// window around now.
func NewRecord(employer, jobTitle, city string, salary, year int, source Source, now time.Time) (Record, error) {
	r := Record{
		Employer: strings.TrimSpace(employer),
		JobTitle: strings.TrimSpace(jobTitle),
		City:     strings.TrimSpace(city),
		Salary:   salary,
		Year:     year,
		Source:   source,
	}
	if err := r.Validate(now); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Validate reports the first violated invariant.
func (r Record) Validate(now time.Time) error {
	if r.Employer == "" {
		return fmt.Errorf("%w: employer is empty", ErrInvalidRecord)
	}
	if r.JobTitle == "" {
		return fmt.Errorf("%w: job title is empty", ErrInvalidRecord)
	}
	if r.Salary < 0 {
		return fmt.Errorf("%w: negative salary %d", ErrInvalidRecord, r.Salary)
	}
	current := now.Year()
	if r.Year < current-yearsBack || r.Year > current+yearsAhead {
		return fmt.Errorf("%w: year %d outside %d..%d", ErrInvalidRecord, r.Year, current-yearsBack, current+yearsAhead)
	}
	if _, ok := sourceLabels[r.Source]; !ok {
		return fmt.Errorf("%w: unknown source %d", ErrInvalidRecord, int(r.Source))
	}
	return nil
}

// Query is a single search request. It has no side effects until executed.
type Query struct {
	Company string `json:"company"`
	Role    string `json:"role"`
	Limit   int    `json:"limit"`
}

// NewQuery trims the search terms and applies the default limit.
func NewQuery(company, role string) Query {
	return Query{
		Company: strings.TrimSpace(company),
		Role:    strings.TrimSpace(role),
		Limit:   DefaultLimit,
	}
}
