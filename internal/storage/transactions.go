package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/juanfec/moneytap/internal/common"
	"github.com/juanfec/moneytap/internal/model"
	"github.com/juanfec/moneytap/internal/service"
)

const transactionColumns = `message_id, type, amount, currency, balance, card_last4,
	merchant, description, reference, bank_name, timestamp, raw_message,
	category, confidence, match_type, user_corrected`

// SaveTransaction persists a single categorized transaction.
func (s *SQLiteStorage) SaveTransaction(ctx context.Context, txn *model.CategorizedTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategorizedTransaction(txn); err != nil {
		return err
	}
	return s.insertTransaction(ctx, s.db, txn)
}

// SaveTransactions persists a batch of categorized transactions in one
// database transaction.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, txns []model.CategorizedTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	for i := range txns {
		if err := validateCategorizedTransaction(&txns[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	for i := range txns {
		if err := s.insertTransaction(ctx, tx, &txns[i]); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStorage) insertTransaction(ctx context.Context, db execer, txn *model.CategorizedTransaction) error {
	// Re-saving an id refreshes the row, except when the user has
	// corrected it: those rows must never be overwritten by automatic
	// categorization.
	query := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(message_id) DO UPDATE SET
			type = excluded.type,
			amount = excluded.amount,
			currency = excluded.currency,
			balance = excluded.balance,
			card_last4 = excluded.card_last4,
			merchant = excluded.merchant,
			description = excluded.description,
			reference = excluded.reference,
			bank_name = excluded.bank_name,
			timestamp = excluded.timestamp,
			raw_message = excluded.raw_message,
			category = excluded.category,
			confidence = excluded.confidence,
			match_type = excluded.match_type,
			user_corrected = excluded.user_corrected
		WHERE transactions.user_corrected = 0`

	t := txn.Transaction
	_, err := db.ExecContext(ctx, query,
		txn.MessageID, string(t.Type), t.Amount, t.Currency, t.Balance, t.CardLast4,
		t.Merchant, t.Description, t.Reference, t.BankName, t.Timestamp, t.RawMessage,
		string(txn.Category), txn.Confidence, string(txn.MatchType), txn.UserCorrected,
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction %s: %w", txn.MessageID, err)
	}
	return nil
}

// GetStoredMessageIDs returns the set of message ids already persisted,
// used by callers to skip messages they have processed before.
func (s *SQLiteStorage) GetStoredMessageIDs(ctx context.Context) (map[string]bool, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT message_id FROM transactions`)
	if err != nil {
		return nil, fmt.Errorf("failed to query message ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan message id: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// GetTransactions returns stored transactions matching the filter, newest
// first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.CategorizedTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var conditions []string
	var args []any
	if filter.StartDate != nil {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, *filter.EndDate)
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, string(filter.Category))
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.CategorizedTransaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, txn)
	}
	return out, rows.Err()
}

func scanTransaction(rows *sql.Rows) (model.CategorizedTransaction, error) {
	var txn model.CategorizedTransaction
	var t model.TransactionInfo
	var txType, category, matchType string
	var balance sql.NullFloat64

	err := rows.Scan(&txn.MessageID, &txType, &t.Amount, &t.Currency, &balance,
		&t.CardLast4, &t.Merchant, &t.Description, &t.Reference, &t.BankName,
		&t.Timestamp, &t.RawMessage, &category, &txn.Confidence, &matchType,
		&txn.UserCorrected)
	if err != nil {
		return txn, fmt.Errorf("failed to scan transaction: %w", err)
	}

	t.Type = model.TransactionType(txType)
	if balance.Valid {
		t.Balance = &balance.Float64
	}
	txn.Transaction = t
	txn.Category = model.Category(category)
	txn.MatchType = model.MatchType(matchType)
	return txn, nil
}

// UpdateTransactionCategory overrides a record's category on behalf of the
// user and marks the record user-corrected, so later automatic runs leave
// it alone.
func (s *SQLiteStorage) UpdateTransactionCategory(ctx context.Context, messageID string, category model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if !category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidTransaction, category)
	}
	return s.userCorrect(ctx, messageID, "category = ?", string(category))
}

// UpdateTransactionType overrides a record's transaction type and marks the
// record user-corrected.
func (s *SQLiteStorage) UpdateTransactionType(ctx context.Context, messageID string, txType model.TransactionType) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if !txType.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, txType)
	}
	return s.userCorrect(ctx, messageID, "type = ?", string(txType))
}

func (s *SQLiteStorage) userCorrect(ctx context.Context, messageID, setClause string, value any) error {
	if err := validateString(messageID, "messageID"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET `+setClause+`, user_corrected = 1, confidence = 1.0 WHERE message_id = ?`,
		value, messageID)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", messageID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s: %w", messageID, common.ErrNotFound)
	}
	return nil
}

// GetMonthlyTotals aggregates spending and income per calendar month.
// Categories flagged as excluded from totals are left out of the spending
// sum.
func (s *SQLiteStorage) GetMonthlyTotals(ctx context.Context, start, end time.Time) ([]service.MonthlyTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	excluded := excludedCategoryList()
	placeholders := strings.Repeat("?,", len(excluded))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(`SELECT strftime('%%Y-%%m', timestamp) AS month,
			COALESCE(SUM(CASE WHEN type != 'CREDIT' AND category NOT IN (%s) THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'CREDIT' THEN amount ELSE 0 END), 0),
			COUNT(*)
		FROM transactions
		WHERE timestamp >= ? AND timestamp <= ?
		GROUP BY month
		ORDER BY month`, placeholders)

	args := make([]any, 0, len(excluded)+2)
	for _, c := range excluded {
		args = append(args, c)
	}
	args = append(args, start, end)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly totals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []service.MonthlyTotal
	for rows.Next() {
		var t service.MonthlyTotal
		if err := rows.Scan(&t.Month, &t.Spending, &t.Income, &t.Count); err != nil {
			return nil, fmt.Errorf("failed to scan monthly total: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CountTransactions returns the number of stored transactions.
func (s *SQLiteStorage) CountTransactions(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func excludedCategoryList() []string {
	var out []string
	for _, c := range model.AllCategories() {
		if c.ExcludedFromTotals() {
			out = append(out, string(c))
		}
	}
	return out
}
