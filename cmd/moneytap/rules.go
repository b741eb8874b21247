package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rules",
		Aliases: []string{"rule"},
		Short:   "Manage user categorization rules",
		Long: `List and delete the categorization rules created when finishing a
teaching session. Rules run before keyword matching and every condition
of a rule must hold for it to apply.`,
	}

	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesDeleteCmd())

	return cmd
}

func rulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categorization rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rules, err := store.GetUserRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to get rules: %w", err)
			}

			if len(rules) == 0 {
				slog.Info("No categorization rules found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRIORITY\tCONDITIONS\tENABLED")
			_, _ = fmt.Fprintln(w, "──\t────\t────────\t────────\t──────────\t───────")

			for _, r := range rules {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%t\n",
					r.ID,
					r.Name,
					r.Category.DisplayName(),
					r.Priority,
					len(r.Conditions),
					r.Enabled)
			}

			return w.Flush()
		},
	}
}

func rulesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <rule-id>",
		Short: "Delete a categorization rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteUserRule(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete rule: %w", err)
			}

			slog.Info("Rule deleted", "id", args[0])
			return nil
		},
	}
}
