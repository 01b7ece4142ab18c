package reporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dvillagrablanco/inmova-app-sub030/internal/models"
	"github.com/dvillagrablanco/inmova-app-sub030/internal/reconciler"
)

func sampleReport() *reconciler.ApplyReport {
	return &reconciler.ApplyReport{
		RunID:        "run-123",
		Evaluated:    2,
		AppliedCount: 1,
		Results: []*reconciler.ApplyResult{
			{
				Suggestion: &models.MatchSuggestion{
					TransactionID: "TX001",
					ObligationID:  "OB001",
					Confidence:    95,
					Reason:        "exact amount match",
					Source:        models.SourceRule,
					Applied:       true,
				},
				Applied: true,
			},
			{
				Suggestion: &models.MatchSuggestion{
					TransactionID: "TX002",
					ObligationID:  "OB002",
					Confidence:    90,
					Reason:        "exact amount match",
					Source:        models.SourceAugmented,
				},
				Reason: "records already claimed",
			},
		},
		Message: "2 suggestions evaluated, 1 applied, 1 failed",
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatConsole, false},
		{"console", FormatConsole, false},
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"csv", FormatCSV, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestReporter_WriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := NewReporter(FormatJSON).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var decoded reconciler.ApplyReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	if decoded.RunID != "run-123" {
		t.Errorf("Expected run id run-123, got %s", decoded.RunID)
	}
	if len(decoded.Results) != 2 {
		t.Errorf("Expected 2 results, got %d", len(decoded.Results))
	}
}

func TestReporter_WriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := NewReporter(FormatCSV).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d records", len(records))
	}
	if records[0][0] != "transaction_id" {
		t.Errorf("Unexpected header: %v", records[0])
	}
	if records[1][0] != "TX001" || records[1][4] != "true" {
		t.Errorf("Unexpected first row: %v", records[1])
	}
	if records[2][6] != "records already claimed" {
		t.Errorf("Expected failure reason in last column, got %v", records[2])
	}
}

func TestReporter_WriteConsole(t *testing.T) {
	var buf bytes.Buffer
	if err := NewReporter(FormatConsole).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	output := buf.String()
	for _, fragment := range []string{
		"Reconciliation Report",
		"run-123",
		"Evaluated: 2",
		"Applied:   1",
		"Failed:    1",
		"TX001",
		"failed",
		"2 suggestions evaluated, 1 applied, 1 failed",
	} {
		if !strings.Contains(output, fragment) {
			t.Errorf("Expected console output to contain %q\nOutput:\n%s", fragment, output)
		}
	}
}

func TestReporter_WriteConsole_EmptyReport(t *testing.T) {
	var buf bytes.Buffer
	report := &reconciler.ApplyReport{Message: "no match suggestions produced"}

	if err := NewReporter(FormatConsole).Write(&buf, report); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.Contains(buf.String(), "no match suggestions produced") {
		t.Errorf("Expected summary message in output:\n%s", buf.String())
	}
}
