package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/juanfec/moneytap/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidPattern     = errors.New("invalid learned pattern")
	ErrInvalidRule        = errors.New("invalid user rule")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateCategorizedTransaction validates a record before persisting it.
func validateCategorizedTransaction(txn *model.CategorizedTransaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.MessageID == "" {
		return fmt.Errorf("%w: missing message id", ErrInvalidTransaction)
	}
	if !txn.Transaction.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, txn.Transaction.Type)
	}
	if txn.Transaction.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidTransaction)
	}
	if !txn.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidTransaction, txn.Category)
	}
	if txn.Confidence < 0 || txn.Confidence > 1 {
		return fmt.Errorf("%w: confidence out of range", ErrInvalidTransaction)
	}
	return nil
}

// validateLearnedPattern validates a pattern before persisting it.
func validateLearnedPattern(p *model.LearnedBankPattern) error {
	if p == nil {
		return fmt.Errorf("%w: pattern", ErrNilParameter)
	}
	if p.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidPattern)
	}
	if len(p.SenderIDs) == 0 {
		return fmt.Errorf("%w: no sender ids", ErrInvalidPattern)
	}
	if err := p.Pattern.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	if p.DefaultCategory != "" && !p.DefaultCategory.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidPattern, p.DefaultCategory)
	}
	return nil
}

// validateUserRule validates a rule before persisting it.
func validateUserRule(r *model.UserCategorizationRule) error {
	if r == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	if r.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidRule)
	}
	if len(r.Conditions) == 0 {
		return fmt.Errorf("%w: no conditions", ErrInvalidRule)
	}
	if !r.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidRule, r.Category)
	}
	return nil
}
