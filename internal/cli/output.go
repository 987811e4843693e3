package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alfanzaky/sitecomply/internal/domain"
)

// recordView is a queue record with its payload decoded, so that YAML output
// shows fields instead of raw bytes.
type recordView struct {
	ID         string                 `json:"id" yaml:"id"`
	Table      string                 `json:"table" yaml:"table"`
	Intent     string                 `json:"intent" yaml:"intent"`
	EnqueuedAt time.Time              `json:"enqueued_at" yaml:"enqueued_at"`
	Payload    map[string]interface{} `json:"payload" yaml:"payload"`
}

func viewOf(r domain.QueueRecord) recordView {
	v := recordView{
		ID:         r.ID,
		Table:      string(r.Table),
		Intent:     string(domain.Classify(r.Table).Kind),
		EnqueuedAt: r.EnqueuedAt,
	}
	_ = json.Unmarshal(r.Payload, &v.Payload)
	return v
}

func encode(w io.Writer, format string, v interface{}) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	}
	return fmt.Errorf("unsupported format %q", format)
}

func printRecords(w io.Writer, format string, records []domain.QueueRecord) error {
	views := make([]recordView, 0, len(records))
	for _, r := range records {
		views = append(views, viewOf(r))
	}
	if format != FormatTable {
		return encode(w, format, views)
	}

	if len(views) == 0 {
		_, err := fmt.Fprintln(w, "No pending changes.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tTABLE\tINTENT\tQUEUED")
	for i, v := range views {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, v.ID, v.Table, v.Intent, v.EnqueuedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func printStatus(w io.Writer, format string, s *domain.SyncStatus) error {
	if format != FormatTable {
		return encode(w, format, s)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Connected:\t%t\n", s.Connected)
	fmt.Fprintf(tw, "Pending:\t%d\n", s.QueueSize)
	fmt.Fprintf(tw, "Running:\t%t\n", s.Running)
	if s.LastResult != nil {
		fmt.Fprintf(tw, "Last run:\t%s\n", s.LastResult.Outcome)
	}
	return tw.Flush()
}

func printDrain(w io.Writer, format string, r *domain.DrainResult) error {
	if format != FormatTable {
		return encode(w, format, r)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Outcome:\t%s\n", r.Outcome)
	if r.Reason != "" {
		fmt.Fprintf(tw, "Reason:\t%s\n", r.Reason)
	}
	fmt.Fprintf(tw, "Applied:\t%d of %d\n", r.Applied, r.Total)
	fmt.Fprintf(tw, "Remaining:\t%d\n", r.Remaining)
	if r.Halted {
		fmt.Fprintf(tw, "Stopped at:\t%s (%s)\n", r.FailedRecordID, r.FailedTag)
		fmt.Fprintf(tw, "Error:\t%s\n", r.Error)
	}
	return tw.Flush()
}
