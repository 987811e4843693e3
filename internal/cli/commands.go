package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfanzaky/sitecomply/internal/domain"
)

func newListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pending changes in drain order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd.Context(), func(s *Session) error {
				records, err := s.Sync.Pending(cmd.Context())
				if err != nil {
					return err
				}
				return printRecords(cmd.OutOrStdout(), opts.Format, records)
			})
		},
	}
}

func newStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue size and connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd.Context(), func(s *Session) error {
				status, err := s.Sync.Status(cmd.Context())
				if err != nil {
					return err
				}
				return printStatus(cmd.OutOrStdout(), opts.Format, status)
			})
		},
	}
}

func newDrainCommand(opts *RootOptions) *cobra.Command {
	var assumeOnline bool

	cmd := &cobra.Command{
		Use:   "drain",
		Short: "Apply pending changes to the server",
		Long: `Apply pending changes to the server in the order they were made.

The drain stops at the first change the server rejects. That change and
everything after it stay queued.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd.Context(), func(s *Session) error {
				if assumeOnline && s.Online != nil {
					s.Online(true)
				}
				result, err := s.Sync.Drain(cmd.Context())
				if result != nil {
					if perr := printDrain(cmd.OutOrStdout(), opts.Format, result); perr != nil {
						return perr
					}
				}
				if errors.Is(err, domain.ErrSyncHalted) {
					return fmt.Errorf("drain halted: %w", err)
				}
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&assumeOnline, "assume-online", false, "treat the server as reachable without probing")
	return cmd
}

func newDropCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "drop <id>",
		Short: "Discard one pending change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd.Context(), func(s *Session) error {
				if err := s.Sync.Drop(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "dropped %s\n", args[0])
				return nil
			})
		},
	}
}
