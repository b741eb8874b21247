package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/juanfec/moneytap/internal/cli"
	"github.com/juanfec/moneytap/internal/model"
	"github.com/juanfec/moneytap/internal/service"
	"github.com/juanfec/moneytap/internal/teach"

	"github.com/spf13/cobra"
)

func teachCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teach",
		Short: "Teach moneytap to parse messages from an unsupported bank",
		Long: `Start an interactive session that learns an extraction pattern from
example messages. Paste at least two messages from the same bank and
mark the amount, merchant, and any optional fields in each; moneytap
infers a pattern, shows it for review, and saves it for future
processing runs.`,
		RunE: runTeach,
	}

	cmd.Flags().String("bank", "", "name of the bank being taught")

	return cmd
}

var optionalFields = map[string]model.FieldType{
	"balance": model.FieldBalance,
	"card":    model.FieldCardLast4,
	"date":    model.FieldDate,
	"type":    model.FieldTransactionType,
}

func runTeach(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	reader := cli.NewReader(os.Stdin)

	bankName, _ := cmd.Flags().GetString("bank")
	if bankName == "" {
		bankName, err = reader.Prompt(ctx, "Bank name: ")
		if err != nil {
			return err
		}
	}
	if bankName == "" {
		return fmt.Errorf("a bank name is required")
	}

	return runTeachSession(ctx, reader, store, bankName)
}

// runTeachSession drives one teaching session over the given reader and
// persists the approved pattern.
func runTeachSession(ctx context.Context, reader *cli.Reader, store service.Storage, bankName string) error {
	session := teach.NewSession(bankName)

	for session.State() != teach.StateReviewPattern {
		if err := collectExample(ctx, reader, session); err != nil {
			return err
		}

		more, err := reader.Prompt(ctx, "Add another example? [y/n]: ")
		if err != nil {
			return err
		}
		if strings.EqualFold(more, "y") || strings.EqualFold(more, "yes") {
			continue
		}

		if err := session.RequestReview(); err != nil {
			// Too few examples: keep collecting.
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
	}

	fmt.Fprintln(os.Stderr, "\nInferred pattern:")
	for _, seg := range session.Pattern().Segments {
		fmt.Fprintf(os.Stderr, "  %s\n", describeSegment(seg))
	}

	approve, err := reader.Prompt(ctx, "Save this pattern? [y/n]: ")
	if err != nil {
		return err
	}
	if !strings.EqualFold(approve, "y") && !strings.EqualFold(approve, "yes") {
		slog.Info("Teaching session discarded")
		return nil
	}
	if err := session.ApprovePattern(); err != nil {
		return err
	}

	if err := askCategory(ctx, reader, session); err != nil {
		return err
	}

	pattern, err := session.Finish()
	if err != nil {
		return err
	}
	if err := store.SaveLearnedPattern(ctx, pattern); err != nil {
		return fmt.Errorf("failed to save pattern: %w", err)
	}

	slog.Info("Learned pattern saved", "id", pattern.ID, "bank", pattern.BankName)
	return nil
}

// collectExample walks one message through the selection states. Fields
// are selected by typing the exact text to mark; the first occurrence in
// the message is used.
func collectExample(ctx context.Context, reader *cli.Reader, session *teach.Session) error {
	sender, err := reader.Prompt(ctx, "Sender ID (e.g. 85540): ")
	if err != nil {
		return err
	}
	body, err := reader.Prompt(ctx, "Paste the message body: ")
	if err != nil {
		return err
	}
	if err := session.SelectMessage(sender, body); err != nil {
		return err
	}

	if err := selectField(ctx, reader, session, "amount", func(start, end int) error {
		return session.SelectAmount(start, end)
	}, session.SkipAmount); err != nil {
		return err
	}

	if err := selectField(ctx, reader, session, "merchant", func(start, end int) error {
		return session.SelectMerchant(start, end)
	}, session.SkipMerchant); err != nil {
		return err
	}

	for {
		line, err := reader.Prompt(ctx, "Optional field as name=text (balance, card, date, type), empty to finish: ")
		if err != nil {
			return err
		}
		if line == "" {
			break
		}
		name, text, ok := strings.Cut(line, "=")
		if !ok {
			fmt.Fprintln(os.Stderr, "expected name=text")
			continue
		}
		field, ok := optionalFields[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown field %q\n", name)
			continue
		}
		start, end, found := locate(session.CurrentBody(), text)
		if !found {
			fmt.Fprintf(os.Stderr, "%q not found in the message\n", text)
			continue
		}
		if err := session.AddOptionalField(field, start, end); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
	}

	return session.ConfirmExample()
}

func selectField(ctx context.Context, reader *cli.Reader, session *teach.Session, name string, apply func(start, end int) error, skip func() error) error {
	for {
		text, err := reader.Prompt(ctx, fmt.Sprintf("Text of the %s (empty to skip): ", name))
		if err != nil {
			return err
		}
		if text == "" {
			return skip()
		}
		start, end, found := locate(session.CurrentBody(), text)
		if !found {
			fmt.Fprintf(os.Stderr, "%q not found in the message\n", text)
			continue
		}
		if err := apply(start, end); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			continue
		}
		return nil
	}
}

func askCategory(ctx context.Context, reader *cli.Reader, session *teach.Session) error {
	for {
		answer, err := reader.Prompt(ctx, "Default category for this bank (empty to skip): ")
		if err != nil {
			return err
		}
		if answer == "" {
			return session.SetCategory("")
		}
		category := model.Category(strings.ToUpper(strings.TrimSpace(answer)))
		if err := session.SetCategory(category); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			continue
		}
		return nil
	}
}

func locate(body, text string) (start, end int, found bool) {
	text = strings.TrimSpace(text)
	idx := strings.Index(body, text)
	if text == "" || idx < 0 {
		return 0, 0, false
	}
	return idx, idx + len(text), true
}

func describeSegment(seg model.PatternSegment) string {
	if seg.Kind == model.SegmentVariable {
		return fmt.Sprintf("variable    <%s>", seg.Field)
	}
	mode := "exact"
	if seg.FuzzyAllowed {
		mode = "fuzzy"
	}
	return fmt.Sprintf("fixed (%s) %q", mode, seg.Text)
}
