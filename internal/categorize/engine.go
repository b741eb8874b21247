package categorize

import (
	"sort"
	"strings"

	"github.com/juanfec/moneytap/internal/fuzzy"
	"github.com/juanfec/moneytap/internal/model"
)

// keywordConfidence is the fixed confidence for dictionary keyword hits,
// deliberately below exact and rule matches.
const keywordConfidence = 0.7

// Engine produces a (category, confidence, match type) decision for a
// parsed transaction. It holds an immutable snapshot of the user's rules
// and learned patterns, so a single instance is safe for concurrent use.
type Engine struct {
	matcher  *fuzzy.Matcher
	rules    []model.UserCategorizationRule
	patterns []model.LearnedBankPattern
}

// NewEngine builds an engine over a snapshot of rules and learned
// patterns. Rules are evaluated in ascending priority order; ties break on
// creation time, oldest first.
func NewEngine(rules []model.UserCategorizationRule, patterns []model.LearnedBankPattern, matcher *fuzzy.Matcher) *Engine {
	if matcher == nil {
		matcher = fuzzy.NewMatcher(fuzzy.DefaultConfig())
	}

	sorted := make([]model.UserCategorizationRule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	snapshot := make([]model.LearnedBankPattern, len(patterns))
	copy(snapshot, patterns)

	return &Engine{
		matcher:  matcher,
		rules:    sorted,
		patterns: snapshot,
	}
}

// Categorize assigns a category to the transaction. The layers are tried
// in a fixed priority order and the first success wins:
// exact merchant → user rule → learned fuzzy pattern → keyword → default.
func (e *Engine) Categorize(senderID string, txn model.TransactionInfo) model.CategorizedTransaction {
	if category, ok := LookupMerchant(txn.Merchant); ok {
		return categorized(txn, category, 1.0, model.MatchExact)
	}

	for _, rule := range e.rules {
		if rule.Matches(txn) {
			return categorized(txn, rule.Category, 1.0, model.MatchUserRule)
		}
	}

	if category, confidence, ok := e.matchLearnedPattern(senderID, txn); ok {
		return categorized(txn, category, confidence, model.MatchFuzzy)
	}

	if category, ok := LookupKeyword(keywordText(txn)); ok {
		return categorized(txn, category, keywordConfidence, model.MatchKeyword)
	}

	return categorized(txn, model.CategoryUncategorized, 0, model.MatchDefault)
}

// matchLearnedPattern tries the learned patterns registered for the
// transaction's sender. The pattern must be enabled, carry a default
// category, and its template must match the raw message.
func (e *Engine) matchLearnedPattern(senderID string, txn model.TransactionInfo) (model.Category, float64, bool) {
	for _, p := range e.patterns {
		if !p.Enabled || p.DefaultCategory == "" {
			continue
		}
		if !fuzzy.MatchesSender(p, senderID) {
			continue
		}
		if match := e.matcher.Match(p.Pattern, txn.RawMessage); match != nil {
			return p.DefaultCategory, match.Confidence, true
		}
	}
	return "", 0, false
}

// keywordText concatenates the transaction's free text for keyword lookup.
func keywordText(txn model.TransactionInfo) string {
	parts := []string{txn.Merchant, txn.Description, txn.RawMessage}
	return strings.Join(parts, " ")
}

func categorized(txn model.TransactionInfo, category model.Category, confidence float64, matchType model.MatchType) model.CategorizedTransaction {
	return model.CategorizedTransaction{
		Transaction: txn,
		Category:    category,
		Confidence:  confidence,
		MatchType:   matchType,
	}
}
