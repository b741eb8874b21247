// Package teach derives reusable extraction templates from user-labeled
// example messages and drives the teaching session that collects them.
package teach

import (
	"fmt"
	"sort"
	"strings"

	"github.com/juanfec/moneytap/internal/common"
	"github.com/juanfec/moneytap/internal/fuzzy"
	"github.com/juanfec/moneytap/internal/model"
)

// examplePieces is one example decomposed into the literal runs around and
// between its field selections.
type examplePieces struct {
	literals []string          // len(fields)+1 entries
	fields   []model.FieldType // selection order by position
}

// InferPattern generalizes two or more labeled examples into a pattern the
// fuzzy matcher can apply to new messages. It fails with a recoverable,
// human-readable error when fewer than two examples are given or when the
// examples' structure cannot be reconciled.
func InferPattern(examples []model.TeachingExample) (model.InferredPattern, error) {
	if len(examples) < 2 {
		return model.InferredPattern{}, common.NewUserError(
			"a single example cannot separate fixed text from message-specific values",
			common.ErrTooFewExamples)
	}

	pieces := make([]examplePieces, len(examples))
	for i, ex := range examples {
		p, err := decompose(ex)
		if err != nil {
			return model.InferredPattern{}, err
		}
		pieces[i] = p
	}

	for i := 1; i < len(pieces); i++ {
		if !sameFieldSequence(pieces[0].fields, pieces[i].fields) {
			return model.InferredPattern{}, common.NewUserError(
				"examples select different fields or select them in a different order",
				common.ErrInconsistentExamples)
		}
	}

	matcher := fuzzy.NewMatcher(fuzzy.DefaultConfig())
	segments, err := reconcile(pieces, matcher)
	if err != nil {
		return model.InferredPattern{}, err
	}

	pattern := model.InferredPattern{Segments: segments}
	if err := pattern.Validate(); err != nil {
		return model.InferredPattern{}, common.NewUserError("inferred pattern is not usable", err)
	}

	// Self-consistency: the pattern must re-match every example it was
	// derived from before it is returned as usable.
	for _, ex := range examples {
		if matcher.Match(pattern, ex.Body) == nil {
			return model.InferredPattern{}, common.NewUserError(
				"inferred pattern does not match all of its own examples",
				common.ErrInconsistentExamples)
		}
	}

	return pattern, nil
}

// decompose splits an example body into literal runs and selected fields,
// validating the selections along the way.
func decompose(ex model.TeachingExample) (examplePieces, error) {
	if len(ex.Selections) == 0 {
		return examplePieces{}, common.NewUserError(
			"an example needs at least one field selection",
			common.ErrInvalidSelection)
	}

	selections := make([]model.FieldSelection, len(ex.Selections))
	copy(selections, ex.Selections)
	sort.Slice(selections, func(i, j int) bool {
		return selections[i].StartIndex < selections[j].StartIndex
	})

	var p examplePieces
	cursor := 0
	for _, sel := range selections {
		if err := sel.Validate(ex.Body); err != nil {
			return examplePieces{}, common.NewUserError("field selection is out of range", err)
		}
		if sel.StartIndex < cursor {
			return examplePieces{}, common.NewUserError(
				fmt.Sprintf("selections for %s overlap", sel.Field),
				common.ErrInvalidSelection)
		}
		p.literals = append(p.literals, ex.Body[cursor:sel.StartIndex])
		p.fields = append(p.fields, sel.Field)
		cursor = sel.EndIndex
	}
	p.literals = append(p.literals, ex.Body[cursor:])
	return p, nil
}

func sameFieldSequence(a, b []model.FieldType) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// reconcile merges the per-example literal runs into a single ordered
// segment sequence. Literals that agree (within the matcher's drift
// tolerance) become fuzzy anchors; literals that disagree shrink to their
// common edges, and inference fails when nothing common remains.
func reconcile(pieces []examplePieces, matcher *fuzzy.Matcher) ([]model.PatternSegment, error) {
	fieldCount := len(pieces[0].fields)
	var segments []model.PatternSegment

	for pos := 0; pos <= fieldCount; pos++ {
		texts := make([]string, len(pieces))
		for i, p := range pieces {
			texts[i] = strings.TrimSpace(p.literals[pos])
		}

		anchors, ok := reconcileLiteral(texts, pos == 0, pos == fieldCount)
		if !ok {
			return nil, common.NewUserError(
				fmt.Sprintf("the text around field %d differs too much between examples", pos+1),
				common.ErrInconsistentExamples)
		}
		for _, anchor := range anchors {
			segments = append(segments, model.FixedText(anchor, true))
		}

		if pos < fieldCount {
			segments = append(segments, model.Variable(pieces[0].fields[pos]))
		}
	}
	return segments, nil
}

// minAgreement is the similarity all examples' literals must reach for a
// run to be kept whole; it mirrors the matcher's fuzzy-text threshold.
const minAgreement = 0.75

// reconcileLiteral turns one literal position's texts into zero or more
// anchor strings. leading/trailing mark the runs before the first and after
// the last selection, where a missing anchor is harmless.
func reconcileLiteral(texts []string, leading, trailing bool) ([]string, bool) {
	allEmpty := true
	for _, t := range texts {
		if t != "" {
			allEmpty = false
			break
		}
	}
	if allEmpty {
		// Adjacent selections with no text in between: the matcher falls
		// back to the field-type end rules.
		return nil, true
	}

	agreed := true
	for _, t := range texts[1:] {
		if common.Similarity(texts[0], t) < minAgreement {
			agreed = false
			break
		}
	}
	if agreed {
		return []string{texts[0]}, true
	}

	prefix := strings.TrimSpace(commonPrefixFold(texts))
	suffix := strings.TrimSpace(commonSuffixFold(texts))

	var anchors []string
	if prefix != "" && !leading {
		anchors = append(anchors, prefix)
	}
	if suffix != "" && !trailing && suffix != prefix {
		anchors = append(anchors, suffix)
	}
	if leading && len(anchors) == 0 && suffix != "" {
		anchors = append(anchors, suffix)
	}
	if trailing && len(anchors) == 0 && prefix != "" {
		anchors = append(anchors, prefix)
	}

	if len(anchors) == 0 {
		return nil, false
	}
	return anchors, true
}

// commonPrefixFold returns the longest case-insensitive common prefix,
// expressed in the first text's original casing.
func commonPrefixFold(texts []string) string {
	first := texts[0]
	limit := len(first)
	for _, t := range texts[1:] {
		n := 0
		for n < limit && n < len(t) && foldByte(first[n]) == foldByte(t[n]) {
			n++
		}
		if n < limit {
			limit = n
		}
	}
	return first[:limit]
}

// commonSuffixFold returns the longest case-insensitive common suffix,
// expressed in the first text's original casing.
func commonSuffixFold(texts []string) string {
	first := texts[0]
	limit := len(first)
	for _, t := range texts[1:] {
		n := 0
		for n < limit && n < len(t) && foldByte(first[len(first)-1-n]) == foldByte(t[len(t)-1-n]) {
			n++
		}
		if n < limit {
			limit = n
		}
	}
	return first[len(first)-limit:]
}

func foldByte(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}
