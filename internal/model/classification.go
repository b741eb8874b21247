package model

// MatchType records why a category was assigned to a transaction.
type MatchType string

// Match type constants.
const (
	MatchExact    MatchType = "EXACT"
	MatchKeyword  MatchType = "KEYWORD"
	MatchFuzzy    MatchType = "FUZZY"
	MatchUserRule MatchType = "USER_RULE"
	MatchDefault  MatchType = "DEFAULT"
)

// CategorizedTransaction pairs a parsed transaction with the category the
// engine assigned to it. After creation it changes only through the explicit
// user-correction path, which sets UserCorrected.
type CategorizedTransaction struct {
	Transaction   TransactionInfo
	Category      Category
	MatchType     MatchType
	MessageID     string
	Confidence    float64
	UserCorrected bool
}

// Correct returns a copy with the category replaced by a user's choice.
// Corrected records are never re-overwritten by automatic categorization.
func (c CategorizedTransaction) Correct(category Category) CategorizedTransaction {
	c.Category = category
	c.Confidence = 1.0
	c.UserCorrected = true
	return c
}
