// Package reporter renders reconciliation reports for human and programmatic
// consumption.
//
// Supported output formats:
//   - Console: human-readable tabular output for terminal display
//   - JSON: structured data for programmatic consumption
//   - CSV: comma-separated rows for spreadsheet applications
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dvillagrablanco/inmova-app-sub030/internal/reconciler"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ParseFormat parses a format string, defaulting to console.
func ParseFormat(s string) (OutputFormat, error) {
	if s == "" {
		return FormatConsole, nil
	}

	format := OutputFormat(strings.ToLower(s))
	if !format.IsValid() {
		return "", fmt.Errorf("unsupported output format: %s (valid: console, json, csv)", s)
	}
	return format, nil
}

// Reporter renders apply reports in the configured format.
type Reporter struct {
	format OutputFormat
}

// NewReporter creates a reporter for the given format.
func NewReporter(format OutputFormat) *Reporter {
	return &Reporter{format: format}
}

// Write renders the report to the writer.
func (r *Reporter) Write(w io.Writer, report *reconciler.ApplyReport) error {
	switch r.format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatCSV:
		return writeCSV(w, report)
	default:
		return writeConsole(w, report)
	}
}

func writeJSON(w io.Writer, report *reconciler.ApplyReport) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func writeCSV(w io.Writer, report *reconciler.ApplyReport) error {
	writer := csv.NewWriter(w)

	header := []string{"transaction_id", "obligation_id", "confidence", "source", "applied", "reason", "failure"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range report.Results {
		s := result.Suggestion
		row := []string{
			s.TransactionID,
			s.ObligationID,
			strconv.Itoa(s.Confidence),
			string(s.Source),
			strconv.FormatBool(result.Applied),
			s.Reason,
			result.Reason,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeConsole(w io.Writer, report *reconciler.ApplyReport) error {
	fmt.Fprintf(w, "Reconciliation Report\n")
	fmt.Fprintf(w, "=====================\n")
	if report.RunID != "" {
		fmt.Fprintf(w, "Run:       %s\n", report.RunID)
	}
	fmt.Fprintf(w, "Evaluated: %d\n", report.Evaluated)
	fmt.Fprintf(w, "Applied:   %d\n", report.AppliedCount)
	fmt.Fprintf(w, "Failed:    %d\n\n", report.FailedCount())

	if len(report.Results) > 0 {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TRANSACTION\tOBLIGATION\tCONFIDENCE\tSOURCE\tAPPLIED\tREASON")

		for _, result := range report.Results {
			s := result.Suggestion
			status := strconv.FormatBool(result.Applied)
			if !result.Applied && result.Reason != "" {
				status = "failed"
			}

			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
				s.TransactionID, s.ObligationID, s.Confidence, s.Source, status, s.Reason)
		}

		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%s\n", report.Message)
	return nil
}
