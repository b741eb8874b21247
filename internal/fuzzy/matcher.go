// Package fuzzy applies learned extraction templates to new message bodies,
// tolerating small textual drift in the fixed anchors.
package fuzzy

import (
	"strings"
	"unicode"

	"github.com/juanfec/moneytap/internal/common"
	"github.com/juanfec/moneytap/internal/model"
	"github.com/juanfec/moneytap/internal/money"
)

// Config holds the matcher thresholds.
type Config struct {
	// TextThreshold is the minimum similarity for an approximate anchor
	// match.
	TextThreshold float64
	// MinConfidence is the minimum mean segment confidence for the whole
	// match to be accepted.
	MinConfidence float64
	// SearchWindow bounds how far past the cursor a fuzzy anchor scan may
	// look. It is a fixed offset, independent of body length.
	SearchWindow int
}

// DefaultConfig returns the default matcher thresholds.
func DefaultConfig() Config {
	return Config{
		TextThreshold: 0.75,
		MinConfidence: 0.65,
		SearchWindow:  24,
	}
}

// Match is a successful application of a pattern to a body.
type Match struct {
	Fields     map[model.FieldType]string
	Confidence float64
}

// Matcher applies InferredPatterns to message bodies. It holds only
// configuration and is safe for concurrent use.
type Matcher struct {
	cfg Config
}

// NewMatcher creates a matcher with the given configuration. Zero
// thresholds fall back to the defaults.
func NewMatcher(cfg Config) *Matcher {
	def := DefaultConfig()
	if cfg.TextThreshold <= 0 {
		cfg.TextThreshold = def.TextThreshold
	}
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = def.MinConfidence
	}
	if cfg.SearchWindow <= 0 {
		cfg.SearchWindow = def.SearchWindow
	}
	return &Matcher{cfg: cfg}
}

// Match applies the pattern to body with a left-to-right cursor. It returns
// nil when any segment fails or the mean segment confidence falls below the
// configured minimum.
func (m *Matcher) Match(pattern model.InferredPattern, body string) *Match {
	if pattern.Validate() != nil || body == "" {
		return nil
	}

	fields := make(map[model.FieldType]string)
	var scores []float64
	cursor := 0

	for i, seg := range pattern.Segments {
		switch seg.Kind {
		case model.SegmentFixedText:
			if seg.Text == "" {
				scores = append(scores, 1.0)
				continue
			}
			end, score, ok := m.matchAnchor(body, cursor, seg)
			if !ok {
				return nil
			}
			scores = append(scores, score)
			cursor = end

		case model.SegmentVariable:
			end, ok := m.variableEnd(body, cursor, seg.Field, pattern.Segments, i)
			if !ok {
				return nil
			}
			value := strings.TrimSpace(body[cursor:end])
			if value == "" || !validateField(seg.Field, value) {
				return nil
			}
			fields[seg.Field] = value
			scores = append(scores, 1.0)
			cursor = end

		default:
			return nil
		}
	}

	confidence := mean(scores)
	if confidence < m.cfg.MinConfidence {
		return nil
	}
	return &Match{Fields: fields, Confidence: confidence}
}

// matchAnchor finds a fixed segment at or after the cursor. It returns the
// cursor position past the match and the match's similarity score.
func (m *Matcher) matchAnchor(body string, cursor int, seg model.PatternSegment) (end int, score float64, ok bool) {
	start, matchLen, score := m.findAnchor(body, cursor, len(body), seg)
	if start < 0 {
		return 0, 0, false
	}
	return start + matchLen, score, true
}

// findAnchor searches body[cursor:limit] for the segment text: first an
// exact case-insensitive occurrence, then, when the segment allows it, a
// bounded fuzzy scan. Returns the match start, its length, and the
// similarity score, or start == -1.
func (m *Matcher) findAnchor(body string, cursor, limit int, seg model.PatternSegment) (start, matchLen int, score float64) {
	if cursor > len(body) {
		return -1, 0, 0
	}
	if limit > len(body) {
		limit = len(body)
	}

	if idx := indexFold(body[cursor:limit], seg.Text); idx >= 0 {
		return cursor + idx, len(seg.Text), 1.0
	}
	if !seg.FuzzyAllowed {
		return -1, 0, 0
	}

	// Fuzzy scan: slide a window of roughly the anchor's length over a
	// bounded range past the cursor and keep the best-scoring candidate.
	bestStart, bestLen := -1, 0
	bestScore := 0.0
	maxOffset := m.cfg.SearchWindow
	for offset := 0; offset <= maxOffset; offset++ {
		pos := cursor + offset
		if pos >= limit {
			break
		}
		for delta := -2; delta <= 2; delta++ {
			length := len(seg.Text) + delta
			if length <= 0 || pos+length > limit {
				continue
			}
			s := common.Similarity(seg.Text, body[pos:pos+length])
			if s > bestScore {
				bestStart, bestLen, bestScore = pos, length, s
			}
		}
	}
	if bestStart < 0 || bestScore < m.cfg.TextThreshold {
		return -1, 0, 0
	}
	return bestStart, bestLen, bestScore
}

// variableEnd determines where the variable segment at index i stops.
func (m *Matcher) variableEnd(body string, cursor int, field model.FieldType, segments []model.PatternSegment, i int) (int, bool) {
	if cursor >= len(body) {
		return 0, false
	}

	// Final segment: consume the remainder of the body.
	if i == len(segments)-1 {
		return len(body), true
	}

	next := segments[i+1]
	if next.Kind == model.SegmentFixedText && next.Text != "" {
		limit := cursor + fieldMaxWidth(field) + m.cfg.SearchWindow
		start, _, _ := m.findAnchor(body, cursor, limit, next)
		if start < 0 {
			return 0, false
		}
		if start == cursor {
			return 0, false // empty extraction
		}
		return start, true
	}

	// Next segment is itself a variable (or an empty anchor): fall back to
	// the field-type-specific end rule.
	return fieldHeuristicEnd(body, cursor, field)
}

// fieldHeuristicEnd applies the per-field-type boundary rule used when no
// fixed anchor follows the variable.
func fieldHeuristicEnd(body string, cursor int, field model.FieldType) (int, bool) {
	switch field {
	case model.FieldAmount, model.FieldBalance:
		end := cursor
		for end < len(body) && isAmountRune(rune(body[end])) {
			end++
		}
		return end, end > cursor
	case model.FieldCardLast4:
		if cursor+4 > len(body) {
			return 0, false
		}
		return cursor + 4, true
	case model.FieldDate:
		end := cursor + maxDateWidth
		if end > len(body) {
			end = len(body)
		}
		return end, end > cursor
	default: // merchant and transaction-type text
		end := cursor
		for end < len(body) {
			r := rune(body[end])
			if unicode.IsDigit(r) || isPunctuation(r) {
				break
			}
			end++
		}
		return end, end > cursor
	}
}

const maxDateWidth = 10

func isAmountRune(r rune) bool {
	return unicode.IsDigit(r) || r == '.' || r == ',' || r == ' ' || r == '$'
}

func isPunctuation(r rune) bool {
	switch r {
	case '.', ',', ';', ':', '!', '?', '(', ')', '*', '#':
		return true
	}
	return false
}

// validateField checks an extracted value against its field type.
func validateField(field model.FieldType, value string) bool {
	switch field {
	case model.FieldAmount, model.FieldBalance:
		_, ok := money.Parse(value)
		return ok
	case model.FieldCardLast4:
		if len(value) != 4 {
			return false
		}
		for _, r := range value {
			if !unicode.IsDigit(r) {
				return false
			}
		}
		return true
	default:
		return strings.TrimSpace(value) != ""
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// fieldMaxWidth bounds how much body a variable may consume while looking
// for its trailing anchor.
func fieldMaxWidth(field model.FieldType) int {
	switch field {
	case model.FieldAmount, model.FieldBalance:
		return 24
	case model.FieldCardLast4:
		return 4
	case model.FieldDate:
		return maxDateWidth
	default:
		return 64
	}
}

// indexFold is strings.Index over case-folded text.
func indexFold(s, substr string) int {
	return strings.Index(strings.ToLower(s), strings.ToLower(substr))
}
