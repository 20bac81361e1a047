package filtering

import (
	"go.uber.org/zap"

	"github.com/spigell/salary-spy/internal/salary"
)

// Filter represents a single step applied to a record set.
// Apply must not modify the input slice.
type Filter interface {
	Name() string
	Apply(records []salary.Record) ([]salary.Record, Step)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

func newStep(initial, left int) Step {
	return Step{Initial: initial, Dropped: initial - left, Left: left}
}

// Run executes the supplied filters sequentially and returns the resulting records.
func Run(logger *zap.Logger, steps []Filter, records []salary.Record) []salary.Record {
	for _, step := range steps {
		next, info := step.Apply(records)

		if logger != nil {
			logger.Debug("filter step",
				zap.String("name", step.Name()),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
		}

		records = next
	}

	return records
}

// Describe returns the names of the provided filters in execution order.
func Describe(steps []Filter) []string {
	names := make([]string, 0, len(steps))
	for _, step := range steps {
		names = append(names, step.Name())
	}
	return names
}
