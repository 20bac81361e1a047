package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/spigell/salary-spy/internal/salary"
	"github.com/spigell/salary-spy/internal/store"
)

var testNow = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

type stubBackend struct {
	records []salary.Record
	err     error
	calls   int
	last    salary.Query
}

func (s *stubBackend) Search(_ context.Context, q salary.Query) ([]salary.Record, error) {
	s.calls++
	s.last = q
	return s.records, s.err
}

func (s *stubBackend) Close() error { return nil }

func TestDecideTransitions(t *testing.T) {
	t.Parallel()

	q := salary.NewQuery("Acme", "Engineer")
	found := []salary.Record{{Employer: "Acme", JobTitle: "Engineer", Salary: 1}}

	tests := []struct {
		name      string
		outcome   store.Outcome
		state     State
		level     Level
		synthetic bool
	}{
		{name: "unavailable", outcome: store.Outcome{Status: store.StatusUnavailable}, state: StateConnectionUnavailable, level: LevelInfo, synthetic: true},
		{name: "query failed", outcome: store.Outcome{Status: store.StatusQueryFailed, Reason: store.ErrQueryFailed}, state: StateQueryFailed, level: LevelError, synthetic: true},
		{name: "empty", outcome: store.Outcome{Status: store.StatusOK}, state: StateConnectedEmpty, level: LevelWarning, synthetic: true},
		{name: "found", outcome: store.Outcome{Status: store.StatusOK, Records: found}, state: StateConnectedFound, level: LevelNone},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := Decide(q, tt.outcome, testNow)
			if d.State != tt.state {
				t.Fatalf("expected state %v, got %v", tt.state, d.State)
			}
			if d.Banner.Level != tt.level {
				t.Fatalf("expected banner level %v, got %v", tt.level, d.Banner.Level)
			}
			if d.Synthetic != tt.synthetic {
				t.Fatalf("expected synthetic=%v", tt.synthetic)
			}
			if len(d.Records) == 0 {
				t.Fatalf("decision must always carry records")
			}
			if tt.level == LevelNone && d.Banner.Message != "" {
				t.Fatalf("expected no banner message, got %q", d.Banner.Message)
			}
			if tt.level != LevelNone && d.Banner.Message == "" {
				t.Fatalf("expected banner message")
			}
		})
	}
}

func TestDecideBannersAreDistinct(t *testing.T) {
	q := salary.NewQuery("Acme", "")
	messages := map[string]bool{}
	for _, status := range []store.Status{store.StatusUnavailable, store.StatusQueryFailed, store.StatusOK} {
		messages[Decide(q, store.Outcome{Status: status}, testNow).Banner.Message] = true
	}
	if len(messages) != 3 {
		t.Fatalf("expected three distinct banners, got %v", messages)
	}

	empty := Decide(q, store.Outcome{Status: store.StatusOK}, testNow)
	if !strings.Contains(empty.Banner.Message, "Acme") {
		t.Fatalf("expected company in empty banner, got %q", empty.Banner.Message)
	}
}

func TestDecideSyntheticIsRanked(t *testing.T) {
	d := Decide(salary.NewQuery("Acme", "PM"), store.Outcome{Status: store.StatusUnavailable}, testNow)
	for i := 0; i+1 < len(d.Records); i++ {
		if d.Records[i].Salary < d.Records[i+1].Salary {
			t.Fatalf("synthetic records not ranked: %+v", d.Records)
		}
	}
}

func TestLookupConnectionUnavailable(t *testing.T) {
	gateway := store.Open(context.Background(), store.Config{}, zap.NewNop())
	svc := New(gateway, zap.NewNop())

	res, err := svc.Lookup(context.Background(), "Google", "PM")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Decision.State != StateConnectionUnavailable {
		t.Fatalf("expected connection unavailable, got %v", res.Decision.State)
	}
	if len(res.Decision.Records) != 4 {
		t.Fatalf("expected 4 synthetic records, got %d", len(res.Decision.Records))
	}
	for _, r := range res.Decision.Records {
		if !strings.Contains(r.Employer, "Google") {
			t.Fatalf("expected employer to contain Google, got %q", r.Employer)
		}
	}
	if res.Summary.Max != 210000 {
		t.Fatalf("expected max 210000, got %d", res.Summary.Max)
	}
	if !strings.Contains(res.Anchor, "$210,000") {
		t.Fatalf("unexpected anchor: %q", res.Anchor)
	}
}

func TestLookupConnectedFound(t *testing.T) {
	backend := &stubBackend{records: []salary.Record{
		{Employer: "Acme", JobTitle: "Engineer", City: "Austin, TX", Salary: 120000, Year: 2025, Source: salary.SourceFiledDisclosure},
		{Employer: "Acme", JobTitle: "Senior Engineer", City: "Austin, TX", Salary: 180000, Year: 2025, Source: salary.SourceFiledDisclosure},
	}}
	svc := New(store.NewGateway(store.Config{}, backend, zap.NewNop()), zap.NewNop())

	res, err := svc.Lookup(context.Background(), "Acme", "Engineer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Decision.State != StateConnectedFound {
		t.Fatalf("expected connected found, got %v", res.Decision.State)
	}
	if res.Decision.Synthetic {
		t.Fatalf("expected real records")
	}
	if res.Summary.Max != 180000 || res.Summary.Mean != 150000 {
		t.Fatalf("unexpected summary: %+v", res.Summary)
	}
	if backend.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", backend.calls)
	}
}

func TestLookupConnectedEmpty(t *testing.T) {
	backend := &stubBackend{}
	svc := New(store.NewGateway(store.Config{}, backend, zap.NewNop()), zap.NewNop())

	res, err := svc.Lookup(context.Background(), "Nonexistent", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Decision.State != StateConnectedEmpty {
		t.Fatalf("expected connected empty, got %v", res.Decision.State)
	}
	if backend.last.Company != "Nonexistent" {
		t.Fatalf("expected query for Nonexistent, got %+v", backend.last)
	}

	want := Decide(salary.NewQuery("Nonexistent", ""), store.Outcome{Status: store.StatusUnavailable}, svc.now()).Records
	if diff := cmp.Diff(want, res.Decision.Records); diff != "" {
		t.Fatalf("expected synthetic records for Nonexistent (-want +got):\n%s", diff)
	}
	for _, r := range res.Decision.Records {
		if !strings.Contains(r.Employer, "Nonexistent") {
			t.Fatalf("expected employer to contain Nonexistent, got %q", r.Employer)
		}
		if !strings.Contains(r.JobTitle, salary.DefaultRole) {
			t.Fatalf("expected default role, got %q", r.JobTitle)
		}
	}
}

func TestLookupQueryFailed(t *testing.T) {
	backend := &stubBackend{err: errors.New("connection reset")}
	svc := New(store.NewGateway(store.Config{}, backend, zap.NewNop()), zap.NewNop())

	res, err := svc.Lookup(context.Background(), "Acme", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Decision.State != StateQueryFailed || res.Decision.Banner.Level != LevelError {
		t.Fatalf("unexpected decision: %+v", res.Decision)
	}
	if backend.calls != 1 {
		t.Fatalf("expected no retries, got %d calls", backend.calls)
	}
}

func TestLookupWithoutGateway(t *testing.T) {
	res, err := New(nil, nil).Lookup(context.Background(), "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Decision.State != StateConnectionUnavailable {
		t.Fatalf("expected connection unavailable, got %v", res.Decision.State)
	}
}

func TestResultJSON(t *testing.T) {
	res, err := New(nil, nil).Lookup(context.Background(), "Acme", "PM")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	for _, fragment := range []string{`"state":"connection_unavailable"`, `"level":"info"`, `"source":"H1B Filing"`, `"max":210000`} {
		if !strings.Contains(string(data), fragment) {
			t.Fatalf("expected %s in %s", fragment, data)
		}
	}
}

func TestLookupSyntheticYearsFollowClock(t *testing.T) {
	svc := New(nil, nil)
	now := time.Date(2033, time.May, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	res, err := svc.Lookup(context.Background(), "Acme", "PM")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range res.Decision.Records {
		if err := r.Validate(now); err != nil {
			t.Fatalf("synthetic record outside the observation window: %v", err)
		}
	}
}
