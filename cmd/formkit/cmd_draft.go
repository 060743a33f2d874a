package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/reoring/formkit/draft"
	"github.com/reoring/formkit/schemafile"
	"github.com/spf13/cobra"
)

func (a *app) draftCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "draft", Short: "Inspect and manage local drafts"}

	show := &cobra.Command{
		Use:   "show KEY",
		Short: "Print a stored draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, release, err := a.drafts(cmd.Context())
			if err != nil {
				return err
			}
			defer release()
			snap, ok := m.LoadDraft(cmd.Context(), args[0])
			if !ok {
				return fmt.Errorf("no draft under %q", args[0])
			}
			return printJSON(cmd.OutOrStdout(), snap)
		},
	}

	save := &cobra.Command{
		Use:   "save KEY FILE",
		Short: "Store a schema document as the draft under KEY",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := schemafile.Load(args[1])
			if err != nil {
				return err
			}
			metrics := draft.NewMetrics(prometheus.NewRegistry())
			m, release, err := a.drafts(cmd.Context(), draft.WithMetrics(metrics))
			if err != nil {
				return err
			}
			defer release()
			h := m.ScheduleSave(args[0], draft.SnapshotOf(s))
			if !m.Flush(cmd.Context(), args[0]) {
				return fmt.Errorf("draft not written: %w", h.Err())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", args[0])
			return nil
		},
	}

	discard := &cobra.Command{
		Use:   "discard KEY",
		Short: "Delete the draft under KEY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, release, err := a.drafts(cmd.Context())
			if err != nil {
				return err
			}
			defer release()
			m.DiscardDraft(cmd.Context(), args[0])
			return nil
		},
	}

	cmd.AddCommand(show, save, discard)
	return cmd
}
