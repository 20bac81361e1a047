package salary

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestSynthesizeIsDeterministic(t *testing.T) {
	first := Synthesize("Google", "PM")
	second := Synthesize("Google", "PM")

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("synthesize is not deterministic (-first +second):\n%s", diff)
	}
}

func TestSynthesizeVariants(t *testing.T) {
	got := Synthesize("Google", "PM")

	want := []Record{
		{Employer: "Google", JobTitle: "PM", City: "New York, NY", Salary: 145000, Year: 2024, Source: SourceFiledDisclosure},
		{Employer: "Google", JobTitle: "Senior PM", City: "San Francisco, CA", Salary: 210000, Year: 2025, Source: SourceFiledDisclosure},
		{Employer: "Google (Competitor)", JobTitle: "PM", City: "Austin, TX", Salary: 165000, Year: 2024, Source: SourcePayTransparency},
		{Employer: "Google", JobTitle: "Lead PM", City: "Seattle, WA", Salary: 198000, Year: 2025, Source: SourceUserVerified},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected records (-want +got):\n%s", diff)
	}
}

func TestSynthesizeDefaults(t *testing.T) {
	for _, r := range Synthesize("", "  ") {
		if !strings.Contains(r.Employer, DefaultCompany) {
			t.Fatalf("expected default company in %q", r.Employer)
		}
		if !strings.Contains(r.JobTitle, DefaultRole) {
			t.Fatalf("expected default role in %q", r.JobTitle)
		}
	}
}

func TestSynthesizeSeniorityOrdering(t *testing.T) {
	records := Synthesize("Acme", "Engineer")
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}

	base, senior, lead := records[0].Salary, records[1].Salary, records[3].Salary
	if !(base < lead && lead < senior) {
		t.Fatalf("expected base < lead < senior, got %d, %d, %d", base, lead, senior)
	}

	seen := map[int]bool{}
	for _, r := range records {
		if seen[r.Salary] {
			t.Fatalf("duplicate salary level %d", r.Salary)
		}
		seen[r.Salary] = true
		if err := r.Validate(testNow); err != nil {
			t.Fatalf("synthetic record is invalid: %v", err)
		}
	}
}

func TestSynthesizeAtStaysInWindow(t *testing.T) {
	t.Parallel()

	if diff := cmp.Diff(Synthesize("Acme", "PM"), SynthesizeAt("Acme", "PM", testNow)); diff != "" {
		t.Fatalf("years inside the window must not move (-want +got):\n%s", diff)
	}

	for _, year := range []int{2018, 2026, 2031, 2040} {
		now := time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC)
		records := SynthesizeAt("Acme", "PM", now)
		for _, r := range records {
			if err := r.Validate(now); err != nil {
				t.Fatalf("year %d: synthetic record is invalid: %v", year, err)
			}
		}
		if records[0].Salary != 145000 || records[1].Salary != 210000 {
			t.Fatalf("year %d: salaries must not change: %+v", year, records)
		}
	}
}
