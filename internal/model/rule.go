package model

import (
	"strings"
	"time"
)

// RuleField names the transaction attribute a rule condition inspects.
type RuleField string

// Rule field constants.
const (
	RuleFieldMerchant    RuleField = "MERCHANT"
	RuleFieldDescription RuleField = "DESCRIPTION"
	RuleFieldBank        RuleField = "BANK"
	RuleFieldRawMessage  RuleField = "RAW_MESSAGE"
	RuleFieldAmount      RuleField = "AMOUNT"
	RuleFieldType        RuleField = "TYPE"
)

// RuleOperator is the comparison a condition applies.
type RuleOperator string

// Rule operator constants. Text operators are case-insensitive; amount
// operators compare against AmountValue.
const (
	OpContains     RuleOperator = "CONTAINS"
	OpEquals       RuleOperator = "EQUALS"
	OpLessThan     RuleOperator = "LT"
	OpGreaterThan  RuleOperator = "GT"
	OpGreaterEqual RuleOperator = "GE"
	OpLessEqual    RuleOperator = "LE"
)

// RuleCondition is a single predicate over a transaction.
type RuleCondition struct {
	Field       RuleField    `json:"field"`
	Operator    RuleOperator `json:"operator"`
	Value       string       `json:"value,omitempty"`
	AmountValue *float64     `json:"amount_value,omitempty"`
}

// Matches evaluates the condition against a transaction.
func (c RuleCondition) Matches(txn TransactionInfo) bool {
	switch c.Field {
	case RuleFieldAmount:
		if c.AmountValue == nil {
			return false
		}
		return compareAmount(txn.Amount, c.Operator, *c.AmountValue)
	case RuleFieldType:
		return strings.EqualFold(string(txn.Type), c.Value)
	default:
		return matchText(c.fieldText(txn), c.Operator, c.Value)
	}
}

func (c RuleCondition) fieldText(txn TransactionInfo) string {
	switch c.Field {
	case RuleFieldMerchant:
		return txn.Merchant
	case RuleFieldDescription:
		return txn.Description
	case RuleFieldBank:
		return txn.BankName
	case RuleFieldRawMessage:
		return txn.RawMessage
	}
	return ""
}

func matchText(text string, op RuleOperator, value string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return false
	}
	switch op {
	case OpContains:
		return strings.Contains(text, value)
	case OpEquals:
		return text == value
	}
	return false
}

func compareAmount(amount float64, op RuleOperator, value float64) bool {
	switch op {
	case OpEquals:
		return amount == value
	case OpLessThan:
		return amount < value
	case OpLessEqual:
		return amount <= value
	case OpGreaterThan:
		return amount > value
	case OpGreaterEqual:
		return amount >= value
	}
	return false
}

// UserCategorizationRule maps transactions matching all of its conditions to
// a target category. Rules are evaluated in ascending Priority order; ties
// break on CreatedAt, oldest first.
type UserCategorizationRule struct {
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Category        Category        `json:"category"`
	SourcePatternID string          `json:"source_pattern_id,omitempty"`
	Conditions      []RuleCondition `json:"conditions"`
	Priority        int             `json:"priority"`
	Enabled         bool            `json:"enabled"`
}

// Matches reports whether every condition of the rule holds for txn.
// A rule with no conditions matches nothing.
func (r UserCategorizationRule) Matches(txn TransactionInfo) bool {
	if !r.Enabled || len(r.Conditions) == 0 {
		return false
	}
	for _, cond := range r.Conditions {
		if !cond.Matches(txn) {
			return false
		}
	}
	return true
}
