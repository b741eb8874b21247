// Package testutil provides shared fixtures for tests that need a real
// migrated database instead of a mock.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/juanfec/moneytap/internal/model"
	"github.com/juanfec/moneytap/internal/service"
	"github.com/juanfec/moneytap/internal/storage"
)

// SetupTestDB creates a migrated SQLite database in a per-test temp
// directory and registers its cleanup.
func SetupTestDB(t *testing.T) service.Storage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// SeedTransaction stores a plausible categorized debit so tests can query
// real rows. The message id keeps records distinct.
func SeedTransaction(t *testing.T, store service.Storage, messageID string, category model.Category, amount float64) {
	t.Helper()

	txn := model.CategorizedTransaction{
		Transaction: model.TransactionInfo{
			Timestamp:  time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
			Type:       model.TypeDebit,
			Amount:     amount,
			Currency:   model.DefaultCurrency,
			Merchant:   "ALMACEN EXITO",
			BankName:   "Bancolombia",
			RawMessage: "Compra por $150.000 en ALMACEN EXITO",
		},
		Category:   category,
		MatchType:  model.MatchExact,
		MessageID:  messageID,
		Confidence: 1.0,
	}
	if err := store.SaveTransaction(context.Background(), &txn); err != nil {
		t.Fatalf("failed to seed transaction %s: %v", messageID, err)
	}
}

// SeedPattern stores an enabled learned pattern claiming the given sender.
func SeedPattern(t *testing.T, store service.Storage, id, sender string) {
	t.Helper()

	pattern := model.LearnedBankPattern{
		ID:        id,
		BankName:  "Lulo",
		SenderIDs: []string{sender},
		Pattern: model.InferredPattern{Segments: []model.PatternSegment{
			model.FixedText("Pediste por $", true),
			model.Variable(model.FieldAmount),
		}},
		DefaultCategory: model.CategoryRestaurants,
		Enabled:         true,
		CreatedAt:       time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := store.SaveLearnedPattern(context.Background(), &pattern); err != nil {
		t.Fatalf("failed to seed pattern %s: %v", id, err)
	}
}
