package filtering

import (
	"cmp"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/salary-spy/internal/salary"
)

// Field selects the record field a substring filter looks at.
type Field int

const (
	FieldEmployer Field = iota
	FieldJobTitle
)

func (f Field) value(r salary.Record) string {
	switch f {
	case FieldEmployer:
		return r.Employer
	case FieldJobTitle:
		return r.JobTitle
	default:
		return ""
	}
}

func (f Field) String() string {
	switch f {
	case FieldEmployer:
		return "employer"
	case FieldJobTitle:
		return "job_title"
	default:
		return "unknown"
	}
}

type substringFilter struct {
	field Field
	term  string
}

// NewSubstring keeps records whose field contains term, ignoring case.
// An empty term keeps everything.
func NewSubstring(field Field, term string) Filter {
	return &substringFilter{field: field, term: strings.ToLower(term)}
}

func (f *substringFilter) Name() string { return f.field.String() + "_substring" }

func (f *substringFilter) Apply(records []salary.Record) ([]salary.Record, Step) {
	if f.term == "" {
		return records, newStep(len(records), len(records))
	}

	kept := make([]salary.Record, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(f.field.value(r)), f.term) {
			kept = append(kept, r)
		}
	}
	return kept, newStep(len(records), len(kept))
}

type rankFilter struct{}

// NewRank orders records by salary, highest first. Equal salaries keep their
// relative order.
func NewRank() Filter {
	return rankFilter{}
}

func (rankFilter) Name() string { return "rank_by_salary" }

func (rankFilter) Apply(records []salary.Record) ([]salary.Record, Step) {
	ranked := slices.Clone(records)
	slices.SortStableFunc(ranked, func(a, b salary.Record) int {
		return cmp.Compare(b.Salary, a.Salary)
	})
	return ranked, newStep(len(records), len(ranked))
}

type limitFilter struct {
	limit int
}

// NewLimit caps the number of records. A non-positive limit disables the cap.
func NewLimit(limit int) Filter {
	return limitFilter{limit: limit}
}

func (limitFilter) Name() string { return "limit" }

func (f limitFilter) Apply(records []salary.Record) ([]salary.Record, Step) {
	if f.limit <= 0 || len(records) <= f.limit {
		return records, newStep(len(records), len(records))
	}
	return records[:f.limit:f.limit], newStep(len(records), f.limit)
}

// MatchSteps returns the pipeline used by Match.
func MatchSteps(company, role string, limit int) []Filter {
	return []Filter{
		NewSubstring(FieldEmployer, company),
		NewSubstring(FieldJobTitle, role),
		NewRank(),
		NewLimit(limit),
	}
}

// Match keeps records whose employer contains company and whose job title
// contains role, ranks them by salary and caps the result at limit.
func Match(records []salary.Record, company, role string, limit int) []salary.Record {
	return MatchWithLogger(nil, records, company, role, limit)
}

// MatchWithLogger is Match with per-step debug logging.
func MatchWithLogger(logger *zap.Logger, records []salary.Record, company, role string, limit int) []salary.Record {
	steps := MatchSteps(company, role, limit)
	if logger != nil {
		logger.Debug("matching records", zap.Strings("steps", Describe(steps)), zap.Int("records", len(records)))
	}
	return Run(logger, steps, records)
}
