package engine

import (
	"context"
	"testing"
	"time"

	"github.com/juanfec/moneytap/internal/model"
	"github.com/juanfec/moneytap/internal/service"
)

// mockStorage implements the pieces of service.Storage the engine touches.
type mockStorage struct {
	service.Storage

	storedIDs      map[string]bool
	rules          []model.UserCategorizationRule
	patterns       []model.LearnedBankPattern
	saved          []model.CategorizedTransaction
	counterUpdates map[string][2]int
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		storedIDs:      make(map[string]bool),
		counterUpdates: make(map[string][2]int),
	}
}

func (m *mockStorage) GetStoredMessageIDs(_ context.Context) (map[string]bool, error) {
	return m.storedIDs, nil
}

func (m *mockStorage) GetUserRules(_ context.Context) ([]model.UserCategorizationRule, error) {
	return m.rules, nil
}

func (m *mockStorage) GetLearnedPatterns(_ context.Context) ([]model.LearnedBankPattern, error) {
	return m.patterns, nil
}

func (m *mockStorage) SaveTransaction(_ context.Context, txn *model.CategorizedTransaction) error {
	m.saved = append(m.saved, *txn)
	return nil
}

func (m *mockStorage) UpdateLearnedPatternCounters(_ context.Context, id string, successCount, failCount int) error {
	m.counterUpdates[id] = [2]int{successCount, failCount}
	return nil
}

func message(id, sender, body string) service.InboxMessage {
	return service.InboxMessage{
		ID:        id,
		Sender:    sender,
		Body:      body,
		Timestamp: time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestProcessMessages(t *testing.T) {
	store := newMockStorage()
	store.storedIDs["old-1"] = true

	messages := []service.InboxMessage{
		message("old-1", "85540", "Compra por $10.000 en EXITO"),
		message("new-1", "85540", "Compra por $150.000 con TC *1234 en ALMACEN EXITO. Consulte saldo: $500.000"),
		message("new-2", "87725", "Retiraste $80.000. Saldo: $120.000"),
		message("spam-1", "899000", "Felicitaciones! Gana una promocion increible"),
		message("new-3", "300555", "Pago exitoso por $45.000 en tienda local"),
	}

	eng := New(store, nil, nil)
	stats, err := eng.ProcessMessages(context.Background(), messages, nil)
	if err != nil {
		t.Fatalf("ProcessMessages failed: %v", err)
	}

	if stats.Total != 5 {
		t.Errorf("Total = %d, want 5", stats.Total)
	}
	if stats.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", stats.Skipped)
	}
	if stats.Parsed != 3 {
		t.Errorf("Parsed = %d, want 3", stats.Parsed)
	}
	if stats.NonTransactions != 1 {
		t.Errorf("NonTransactions = %d, want 1", stats.NonTransactions)
	}
	if len(store.saved) != 3 {
		t.Fatalf("saved %d transactions, want 3", len(store.saved))
	}

	byID := make(map[string]model.CategorizedTransaction)
	for _, txn := range store.saved {
		byID[txn.MessageID] = txn
	}

	exito, ok := byID["new-1"]
	if !ok {
		t.Fatal("new-1 was not saved")
	}
	if exito.Transaction.BankName != "Bancolombia" {
		t.Errorf("new-1 bank = %q, want Bancolombia", exito.Transaction.BankName)
	}
	if exito.Category != model.CategoryGroceries {
		t.Errorf("new-1 category = %s, want %s", exito.Category, model.CategoryGroceries)
	}

	nequi, ok := byID["new-2"]
	if !ok {
		t.Fatal("new-2 was not saved")
	}
	if nequi.Transaction.Type != model.TypeWithdrawal {
		t.Errorf("new-2 type = %s, want %s", nequi.Transaction.Type, model.TypeWithdrawal)
	}

	generic, ok := byID["new-3"]
	if !ok {
		t.Fatal("new-3 was not saved")
	}
	if generic.Transaction.BankName != "Desconocido" {
		t.Errorf("new-3 bank = %q, want Desconocido", generic.Transaction.BankName)
	}
}

func TestProcessMessagesIsIdempotent(t *testing.T) {
	store := newMockStorage()
	messages := []service.InboxMessage{
		message("new-1", "85540", "Compra por $150.000 en ALMACEN EXITO"),
	}

	eng := New(store, nil, nil)
	if _, err := eng.ProcessMessages(context.Background(), messages, nil); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	// Simulate the ids now being stored, as the real storage would report.
	store.storedIDs["new-1"] = true
	stats, err := eng.ProcessMessages(context.Background(), messages, nil)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if stats.Skipped != 1 || stats.Parsed != 0 {
		t.Errorf("second run skipped=%d parsed=%d, want 1/0", stats.Skipped, stats.Parsed)
	}
	if len(store.saved) != 1 {
		t.Errorf("saved %d transactions, want 1", len(store.saved))
	}
}

func TestProcessMessagesUsesLearnedPatterns(t *testing.T) {
	store := newMockStorage()
	store.patterns = []model.LearnedBankPattern{
		{
			ID:              "p1",
			BankName:        "Lulo",
			SenderIDs:       []string{"891234"},
			DefaultCategory: model.CategoryRestaurants,
			Enabled:         true,
			SuccessCount:    3,
			FailCount:       1,
			Pattern: model.InferredPattern{Segments: []model.PatternSegment{
				model.FixedText("Pediste por $", true),
				model.Variable(model.FieldAmount),
			}},
		},
	}

	messages := []service.InboxMessage{
		message("new-1", "891234", "Pediste por $38.500"),
		message("new-2", "891234", "Tu pedido llego, que lo disfrutes"),
	}

	eng := New(store, nil, nil)
	stats, err := eng.ProcessMessages(context.Background(), messages, nil)
	if err != nil {
		t.Fatalf("ProcessMessages failed: %v", err)
	}

	if stats.FromPatterns != 1 {
		t.Errorf("FromPatterns = %d, want 1", stats.FromPatterns)
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved %d transactions, want 1", len(store.saved))
	}
	if store.saved[0].Transaction.BankName != "Lulo" {
		t.Errorf("bank = %q, want Lulo", store.saved[0].Transaction.BankName)
	}
	if store.saved[0].Category != model.CategoryRestaurants {
		t.Errorf("category = %s, want %s", store.saved[0].Category, model.CategoryRestaurants)
	}

	// One success on new-1, one failure on new-2, on top of the stored 3/1.
	got, ok := store.counterUpdates["p1"]
	if !ok {
		t.Fatal("pattern counters were not flushed")
	}
	if got != [2]int{4, 2} {
		t.Errorf("counters = %v, want [4 2]", got)
	}
}

func TestProcessMessagesContextCancellation(t *testing.T) {
	store := newMockStorage()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	messages := []service.InboxMessage{
		message("new-1", "85540", "Compra por $150.000 en ALMACEN EXITO"),
	}

	eng := New(store, nil, nil)
	if _, err := eng.ProcessMessages(ctx, messages, nil); err == nil {
		t.Error("ProcessMessages succeeded with a cancelled context, want error")
	}
}
