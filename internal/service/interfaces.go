// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/juanfec/moneytap/internal/model"
)

// InboxMessage is one raw notification message as delivered by the host
// platform's inbox reader. The core consumes only sender, body and
// timestamp.
type InboxMessage struct {
	Timestamp time.Time
	ID        string
	Sender    string
	Body      string
	Read      bool
}

// InboxReader is the platform-specific collaborator that supplies raw
// messages. Implementations own permissions and I/O; the core only sees
// the interface.
type InboxReader interface {
	Messages(ctx context.Context) ([]InboxMessage, error)
}

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Category  model.Category
	Limit     int
	Offset    int
}

// MonthlyTotal aggregates spending for one calendar month. Categories
// excluded from totals are left out of Spending.
type MonthlyTotal struct {
	Month    string // "2006-01"
	Spending float64
	Income   float64
	Count    int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Transaction operations.
	SaveTransaction(ctx context.Context, txn *model.CategorizedTransaction) error
	SaveTransactions(ctx context.Context, txns []model.CategorizedTransaction) error
	GetStoredMessageIDs(ctx context.Context) (map[string]bool, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.CategorizedTransaction, error)
	UpdateTransactionCategory(ctx context.Context, messageID string, category model.Category) error
	UpdateTransactionType(ctx context.Context, messageID string, txType model.TransactionType) error
	GetMonthlyTotals(ctx context.Context, start, end time.Time) ([]MonthlyTotal, error)
	CountTransactions(ctx context.Context) (int, error)

	// Learned pattern operations.
	SaveLearnedPattern(ctx context.Context, pattern *model.LearnedBankPattern) error
	GetLearnedPattern(ctx context.Context, id string) (*model.LearnedBankPattern, error)
	GetLearnedPatterns(ctx context.Context) ([]model.LearnedBankPattern, error)
	UpdateLearnedPatternCounters(ctx context.Context, id string, successCount, failCount int) error
	SetLearnedPatternEnabled(ctx context.Context, id string, enabled bool) error
	DeleteLearnedPattern(ctx context.Context, id string) error

	// User rule operations.
	SaveUserRule(ctx context.Context, rule *model.UserCategorizationRule) error
	GetUserRules(ctx context.Context) ([]model.UserCategorizationRule, error)
	DeleteUserRule(ctx context.Context, id string) error

	// Database management.
	Migrate(ctx context.Context) error
	Close() error
}
