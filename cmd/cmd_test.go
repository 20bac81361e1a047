package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/spigell/salary-spy/internal/salary"
)

var testNow = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

func TestReadRecords(t *testing.T) {
	t.Parallel()

	input := `
- employer: "  Acme "
  job_title: Engineer
  city: Austin, TX
  salary: 150000
  year: 2025
  source: H1B Filing
- employer: Globex
  job_title: Product Manager
  salary: 170000
  year: 2024
  source: verified user
`
	got, err := readRecords(strings.NewReader(input), testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []salary.Record{
		{Employer: "Acme", JobTitle: "Engineer", City: "Austin, TX", Salary: 150000, Year: 2025, Source: salary.SourceFiledDisclosure},
		{Employer: "Globex", JobTitle: "Product Manager", Salary: 170000, Year: 2024, Source: salary.SourceUserVerified},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected records (-want +got):\n%s", diff)
	}
}

func TestReadRecordsErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr error
		message string
	}{
		{name: "empty file", input: "", wantErr: errNoRecords},
		{name: "empty list", input: "[]", wantErr: errNoRecords},
		{
			name:    "invalid record",
			input:   "- {employer: Acme, job_title: Engineer, salary: 1, year: 2025, source: H1B Filing}\n- {employer: Acme, job_title: '', salary: 1, year: 2025, source: H1B Filing}\n",
			wantErr: salary.ErrInvalidRecord,
			message: "record 1",
		},
		{name: "unknown source", input: "- {employer: Acme, job_title: Engineer, salary: 1, year: 2025, source: rumor}\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := readRecords(strings.NewReader(tt.input), testNow)
			if err == nil {
				t.Fatalf("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.message != "" && !strings.Contains(err.Error(), tt.message) {
				t.Fatalf("expected %q in %v", tt.message, err)
			}
		})
	}
}

func TestTableData(t *testing.T) {
	t.Parallel()

	data := tableData(salary.Synthesize("Acme", "PM")[:1])
	if len(data) != 2 {
		t.Fatalf("expected header and one row, got %d rows", len(data))
	}
	if diff := cmp.Diff(tableHeader, data[0]); diff != "" {
		t.Fatalf("unexpected header (-want +got):\n%s", diff)
	}

	want := []string{"Acme", "PM", "New York, NY", "$145,000", "2024", "H1B Filing"}
	if diff := cmp.Diff(want, data[1]); diff != "" {
		t.Fatalf("unexpected row (-want +got):\n%s", diff)
	}
}

func TestGatewayConfig(t *testing.T) {
	t.Parallel()

	keyFile := filepath.Join(t.TempDir(), "key")
	if err := os.WriteFile(keyFile, []byte("file-key\n"), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}

	tests := []struct {
		name    string
		store   *StoreConfig
		wantURL string
		wantKey string
	}{
		{name: "nothing configured", store: nil},
		{name: "inline values", store: &StoreConfig{URL: " https://x.supabase.co ", Key: "inline"}, wantURL: "https://x.supabase.co", wantKey: "inline"},
		{name: "file wins", store: &StoreConfig{URL: "https://x.supabase.co", Key: "inline", KeyFile: keyFile}, wantURL: "https://x.supabase.co", wantKey: "file-key"},
		{name: "missing file is absent", store: &StoreConfig{URL: "https://x.supabase.co", KeyFile: filepath.Join(t.TempDir(), "nope")}, wantURL: "https://x.supabase.co"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := (&Config{Store: tt.store}).GatewayConfig(zap.NewNop())
			if cfg.URL != tt.wantURL || cfg.Key != tt.wantKey {
				t.Fatalf("expected url=%q key=%q, got url=%q key=%q", tt.wantURL, tt.wantKey, cfg.URL, cfg.Key)
			}
		})
	}
}

func TestVoiceEnabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		voice *VoiceConfig
		want  bool
	}{
		{name: "no section", voice: nil},
		{name: "key only", voice: &VoiceConfig{PublicKey: "pk"}},
		{name: "assistant only", voice: &VoiceConfig{AssistantID: "a"}},
		{name: "blank values", voice: &VoiceConfig{PublicKey: " ", AssistantID: " "}},
		{name: "both", voice: &VoiceConfig{PublicKey: "pk", AssistantID: "a"}, want: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := (&Config{Voice: tt.voice}).VoiceEnabled(); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
