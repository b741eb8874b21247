// Package banks implements the bank-specific message parsers and the
// registry that dispatches a sender id to the right one. Each parser turns
// one notification message into a TransactionInfo, or reports no match when
// the message is not a parseable transaction.
package banks

import (
	"strings"
	"time"

	"github.com/juanfec/moneytap/internal/model"
)

// Parser extracts a transaction from a specific bank's message format.
type Parser interface {
	// BankName is the display name of the institution.
	BankName() string
	// SenderIDs returns the sender id patterns this parser claims.
	SenderIDs() []string
	// CanHandle reports whether the parser recognizes the sender id.
	CanHandle(senderID string) bool
	// Parse extracts a transaction from the message body. A nil result
	// means the message is not a transaction; that is not an error.
	Parse(body string, timestamp time.Time) *model.TransactionInfo
}

// matchesSender implements the default CanHandle contract: case-insensitive
// substring containment of any pattern in the sender id.
func matchesSender(patterns []string, senderID string) bool {
	sender := strings.ToLower(strings.TrimSpace(senderID))
	if sender == "" {
		return false
	}
	for _, p := range patterns {
		if strings.Contains(sender, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// typeKeyword pairs a phrase with the transaction type it implies. Chains
// are evaluated in order and the first hit wins, so specific phrases must
// come before generic ones.
type typeKeyword struct {
	keyword string
	txType  model.TransactionType
}

// detectType walks an ordered keyword chain over the accent-folded body.
func detectType(body string, chain []typeKeyword) (model.TransactionType, bool) {
	folded := foldBody(body)
	for _, entry := range chain {
		if strings.Contains(folded, entry.keyword) {
			return entry.txType, true
		}
	}
	return "", false
}
