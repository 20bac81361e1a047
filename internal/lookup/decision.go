package lookup

import (
	"fmt"
	"time"

	"github.com/spigell/salary-spy/internal/filtering"
	"github.com/spigell/salary-spy/internal/salary"
	"github.com/spigell/salary-spy/internal/store"
)

// State is the terminal state a lookup ends in.
type State int

const (
	StateNotAttempted State = iota
	StateConnectionUnavailable
	StateQueryFailed
	StateConnectedEmpty
	StateConnectedFound
)

var stateNames = map[State]string{
	StateNotAttempted:          "not_attempted",
	StateConnectionUnavailable: "connection_unavailable",
	StateQueryFailed:           "query_failed",
	StateConnectedEmpty:        "connected_empty",
	StateConnectedFound:        "connected_found",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Level is the severity of a user-facing banner.
type Level int

const (
	LevelNone Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "none"
	}
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Banner is the notice shown above a result set.
type Banner struct {
	Level   Level  `json:"level"`
	Message string `json:"message,omitempty"`
}

const (
	demoModeMessage    = "Demo mode active: connect a salary store to see real data. Showing estimated examples below."
	queryFailedMessage = "Salary store connection error. Showing estimated examples below."
	noRecordsMessage   = "No exact records found for %s. Showing similar market data."
)

// Decision tells which records to present and how to introduce them.
type Decision struct {
	State     State           `json:"state"`
	Banner    Banner          `json:"banner"`
	Synthetic bool            `json:"synthetic"`
	Records   []salary.Record `json:"records"`
}

// Decide maps a single gateway outcome to a decision. It performs no I/O;
// now only places synthetic years in the observation window.
// Every state except StateConnectedFound falls back to synthetic records, so
// the decision always carries at least one record.
func Decide(q salary.Query, out store.Outcome, now time.Time) Decision {
	switch out.Status {
	case store.StatusUnavailable:
		return synthetic(q, now, StateConnectionUnavailable, Banner{Level: LevelInfo, Message: demoModeMessage})
	case store.StatusQueryFailed:
		return synthetic(q, now, StateQueryFailed, Banner{Level: LevelError, Message: queryFailedMessage})
	case store.StatusOK:
		if len(out.Records) == 0 {
			return synthetic(q, now, StateConnectedEmpty, Banner{Level: LevelWarning, Message: fmt.Sprintf(noRecordsMessage, displayTerm(q.Company))})
		}
		return Decision{State: StateConnectedFound, Records: out.Records}
	default:
		return synthetic(q, now, StateQueryFailed, Banner{Level: LevelError, Message: queryFailedMessage})
	}
}

func synthetic(q salary.Query, now time.Time, state State, banner Banner) Decision {
	records := filtering.Run(nil, []filtering.Filter{filtering.NewRank()}, salary.SynthesizeAt(q.Company, q.Role, now))
	return Decision{
		State:     state,
		Banner:    banner,
		Synthetic: true,
		Records:   records,
	}
}

func displayTerm(company string) string {
	if company == "" {
		return "this search"
	}
	return company
}
