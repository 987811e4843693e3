// Package cli implements queuectl, the operator tool for inspecting and
// draining the offline queue outside the API process.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfanzaky/sitecomply/internal/domain"
)

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

var validFormats = []string{FormatTable, FormatJSON, FormatYAML}

// Session is an opened sync core. Close releases the queue backend.
type Session struct {
	Sync   domain.SyncUsecase
	Online func(connected bool)
	Close  func() error
}

// Opener opens a session. Each command opens its own.
type Opener func(ctx context.Context) (*Session, error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format string
	open   Opener
}

// NewRootCommand creates the queuectl root command.
func NewRootCommand(open Opener) *cobra.Command {
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "queuectl",
		Short: "Inspect and drain the SiteComply offline queue",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range validFormats {
				if f == opts.Format {
					return nil
				}
			}
			return fmt.Errorf("invalid output %q: must be one of %v", opts.Format, validFormats)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.Format, "output", "o", FormatTable, "output format (table|json|yaml)")

	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newStatusCommand(opts))
	cmd.AddCommand(newDrainCommand(opts))
	cmd.AddCommand(newDropCommand(opts))

	return cmd
}

// withSession opens a session for the duration of fn.
func (o *RootOptions) withSession(ctx context.Context, fn func(*Session) error) (err error) {
	s, err := o.open(ctx)
	if err != nil {
		return fmt.Errorf("open queue: %w", err)
	}
	defer func() {
		if s.Close == nil {
			return
		}
		if cerr := s.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close queue: %w", cerr)
		}
	}()
	return fn(s)
}
