package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/juanfec/moneytap/internal/banks"
	"github.com/juanfec/moneytap/internal/engine"
	"github.com/juanfec/moneytap/internal/fuzzy"
	"github.com/juanfec/moneytap/internal/inbox"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func processCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process <inbox-file>",
		Short: "Parse and categorize SMS messages from an inbox export",
		Long: `Read an SMS inbox export (one JSON object per line), parse every
transactional message into a structured transaction, categorize it, and
store the result. Messages already in the database are skipped, so the
command is safe to re-run on a growing export.`,
		Args: cobra.ExactArgs(1),
		RunE: runProcess,
	}

	cmd.Flags().Bool("quiet", false, "Suppress the progress bar")

	return cmd
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	quiet, _ := cmd.Flags().GetBool("quiet")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	reader := inbox.NewFileReader(args[0])
	messages, err := reader.Messages(ctx)
	if err != nil {
		return fmt.Errorf("failed to read inbox: %w", err)
	}

	var onMessage func()
	if !quiet {
		bar := newProcessBar(len(messages))
		onMessage = func() { _ = bar.Add(1) }
	}

	eng := engine.New(store, banks.NewRegistry(), fuzzy.NewMatcher(fuzzy.Config{}))
	stats, err := eng.ProcessMessages(ctx, messages, onMessage)
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	slog.Info("Processing complete",
		"total", stats.Total,
		"parsed", stats.Parsed,
		"from_learned_patterns", stats.FromPatterns,
		"already_stored", stats.Skipped,
		"non_transactions", stats.NonTransactions,
		"duration", stats.Duration)

	return nil
}

func newProcessBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Processing messages...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}
