// Package engine wires message parsing, categorization and persistence
// into the processing pipeline the CLI and API run.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/juanfec/moneytap/internal/banks"
	"github.com/juanfec/moneytap/internal/categorize"
	"github.com/juanfec/moneytap/internal/fuzzy"
	"github.com/juanfec/moneytap/internal/model"
	"github.com/juanfec/moneytap/internal/service"
)

// Engine processes raw inbox messages into categorized transactions.
type Engine struct {
	storage  service.Storage
	registry *banks.Registry
	matcher  *fuzzy.Matcher
}

// Stats summarizes one processing run.
type Stats struct {
	Duration        time.Duration
	Total           int
	Parsed          int
	Skipped         int
	NonTransactions int
	FromPatterns    int
}

// New creates a processing engine over the given storage. Nil registry or
// matcher fall back to the defaults.
func New(storage service.Storage, registry *banks.Registry, matcher *fuzzy.Matcher) *Engine {
	if registry == nil {
		registry = banks.NewRegistry()
	}
	if matcher == nil {
		matcher = fuzzy.NewMatcher(fuzzy.DefaultConfig())
	}
	return &Engine{
		storage:  storage,
		registry: registry,
		matcher:  matcher,
	}
}

// parseResult is the outcome of resolving one message.
type parseResult struct {
	info             *model.TransactionInfo
	matchedPatternID string
	triedPatternIDs  []string
}

// ProcessMessages parses, categorizes and persists a batch of messages.
// Messages whose ids are already stored are skipped; messages that are not
// transactions are counted and dropped. Each message is handled start to
// finish independently, so an abandoned batch leaves no partial state.
// The onMessage callback, when non-nil, is invoked once per message for
// progress reporting.
func (e *Engine) ProcessMessages(ctx context.Context, messages []service.InboxMessage, onMessage func()) (Stats, error) {
	start := time.Now()
	stats := Stats{Total: len(messages)}

	stored, err := e.storage.GetStoredMessageIDs(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to load stored message ids: %w", err)
	}

	rules, err := e.storage.GetUserRules(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to load user rules: %w", err)
	}
	patterns, err := e.storage.GetLearnedPatterns(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to load learned patterns: %w", err)
	}
	categorizer := categorize.NewEngine(rules, patterns, e.matcher)

	// Counters accumulate in memory across the batch and are written once
	// at the end; the storage collaborator owns the authoritative values.
	counters := make(map[string][2]int)
	for _, p := range patterns {
		counters[p.ID] = [2]int{p.SuccessCount, p.FailCount}
	}

	for _, msg := range messages {
		if onMessage != nil {
			onMessage()
		}
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if stored[msg.ID] {
			stats.Skipped++
			continue
		}

		result := e.parse(msg, patterns)
		for _, id := range result.triedPatternIDs {
			c := counters[id]
			if id == result.matchedPatternID {
				c[0]++
			} else {
				c[1]++
			}
			counters[id] = c
		}

		if result.info == nil {
			stats.NonTransactions++
			continue
		}
		if result.matchedPatternID != "" {
			stats.FromPatterns++
		}

		categorized := categorizer.Categorize(msg.Sender, *result.info)
		categorized.MessageID = msg.ID
		if err := e.storage.SaveTransaction(ctx, &categorized); err != nil {
			return stats, fmt.Errorf("failed to save message %s: %w", msg.ID, err)
		}
		stats.Parsed++
	}

	for _, p := range patterns {
		c := counters[p.ID]
		if c[0] == p.SuccessCount && c[1] == p.FailCount {
			continue
		}
		if err := e.storage.UpdateLearnedPatternCounters(ctx, p.ID, c[0], c[1]); err != nil {
			slog.Warn("Failed to update pattern counters", "pattern_id", p.ID, "error", err)
		}
	}

	stats.Duration = time.Since(start)
	slog.Info("Finished processing messages",
		"total", stats.Total,
		"parsed", stats.Parsed,
		"skipped", stats.Skipped,
		"not_transactions", stats.NonTransactions,
		"duration", stats.Duration)
	return stats, nil
}

// parse resolves one message to a transaction: bank parser by sender id
// first, then the learned patterns claiming that sender, then the generic
// fallback behind its body pre-check.
func (e *Engine) parse(msg service.InboxMessage, patterns []model.LearnedBankPattern) parseResult {
	if parser := e.registry.ParserFor(msg.Sender); parser != nil {
		return parseResult{info: parser.Parse(msg.Body, msg.Timestamp)}
	}

	var result parseResult
	for _, p := range patterns {
		if !p.Enabled || !fuzzy.MatchesSender(p, msg.Sender) {
			continue
		}
		result.triedPatternIDs = append(result.triedPatternIDs, p.ID)
		if extracted, _ := e.matcher.ExtractTransaction(p, msg.Body, msg.Timestamp); extracted != nil {
			result.info = extracted
			result.matchedPatternID = p.ID
			return result
		}
	}

	if e.registry.CanGenericParse(msg.Body) {
		result.info = e.registry.Generic().Parse(msg.Body, msg.Timestamp)
	}
	return result
}
