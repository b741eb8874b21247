package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "patterns",
		Aliases: []string{"pattern"},
		Short:   "Manage learned bank patterns",
		Long: `Inspect and manage the extraction patterns learned through the
teach command. Disabled patterns are kept but no longer used when
processing messages.`,
	}

	// Subcommands
	cmd.AddCommand(patternsListCmd())
	cmd.AddCommand(patternsEnableCmd("enable", true))
	cmd.AddCommand(patternsEnableCmd("disable", false))
	cmd.AddCommand(patternsDeleteCmd())

	return cmd
}

func patternsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List learned patterns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			patterns, err := store.GetLearnedPatterns(ctx)
			if err != nil {
				return fmt.Errorf("failed to get learned patterns: %w", err)
			}

			if len(patterns) == 0 {
				slog.Info("No learned patterns found. Use 'moneytap teach' to create one.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tBANK\tSENDERS\tCATEGORY\tMATCHES\tFAILS\tSUCCESS\tENABLED")
			_, _ = fmt.Fprintln(w, "──\t────\t───────\t────────\t───────\t─────\t───────\t───────")

			for _, p := range patterns {
				category := "-"
				if p.DefaultCategory != "" {
					category = p.DefaultCategory.DisplayName()
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%.0f%%\t%t\n",
					p.ID,
					p.BankName,
					strings.Join(p.SenderIDs, ","),
					category,
					p.SuccessCount,
					p.FailCount,
					p.SuccessRate()*100,
					p.Enabled)
			}

			return w.Flush()
		},
	}
}

func patternsEnableCmd(verb string, enabled bool) *cobra.Command {
	short := "Disable a learned pattern"
	if enabled {
		short = "Enable a learned pattern"
	}
	return &cobra.Command{
		Use:   verb + " <pattern-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SetLearnedPatternEnabled(ctx, args[0], enabled); err != nil {
				return fmt.Errorf("failed to %s pattern: %w", verb, err)
			}

			slog.Info("Pattern updated", "id", args[0], "enabled", enabled)
			return nil
		},
	}
}

func patternsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <pattern-id>",
		Short: "Delete a learned pattern and its examples",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteLearnedPattern(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete pattern: %w", err)
			}

			slog.Info("Pattern deleted", "id", args[0])
			return nil
		},
	}
}
