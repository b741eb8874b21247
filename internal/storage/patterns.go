package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/juanfec/moneytap/internal/common"
	"github.com/juanfec/moneytap/internal/model"
)

// SaveLearnedPattern persists a learned pattern together with its teaching
// examples.
func (s *SQLiteStorage) SaveLearnedPattern(ctx context.Context, pattern *model.LearnedBankPattern) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateLearnedPattern(pattern); err != nil {
		return err
	}

	senderIDs, err := json.Marshal(pattern.SenderIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal sender ids: %w", err)
	}
	segments, err := json.Marshal(pattern.Pattern)
	if err != nil {
		return fmt.Errorf("failed to marshal pattern: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO learned_patterns
		(id, bank_name, sender_ids, pattern, default_category, enabled,
		 success_count, fail_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pattern.ID, pattern.BankName, string(senderIDs), string(segments),
		string(pattern.DefaultCategory), pattern.Enabled,
		pattern.SuccessCount, pattern.FailCount,
		pattern.CreatedAt, pattern.UpdatedAt)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to save pattern %s: %w", pattern.ID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM teaching_examples WHERE pattern_id = ?`, pattern.ID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to replace examples for %s: %w", pattern.ID, err)
	}
	for _, ex := range pattern.Examples {
		selections, err := json.Marshal(ex.Selections)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to marshal selections: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO teaching_examples
			(id, pattern_id, sender_id, body, selections, category, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			ex.ID, pattern.ID, ex.SenderID, ex.Body, string(selections),
			string(ex.Category), ex.CreatedAt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to save example %s: %w", ex.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pattern %s: %w", pattern.ID, err)
	}
	return nil
}

// GetLearnedPattern retrieves one pattern with its examples.
func (s *SQLiteStorage) GetLearnedPattern(ctx context.Context, id string) (*model.LearnedBankPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT id, bank_name, sender_ids, pattern,
		default_category, enabled, success_count, fail_count, created_at, updated_at
		FROM learned_patterns WHERE id = ?`, id)

	pattern, err := scanPattern(row)
	if err != nil {
		return nil, err
	}

	examples, err := s.examplesFor(ctx, pattern.ID)
	if err != nil {
		return nil, err
	}
	pattern.Examples = examples
	return pattern, nil
}

// GetLearnedPatterns retrieves every pattern, enabled or not, with
// examples attached.
func (s *SQLiteStorage) GetLearnedPatterns(ctx context.Context) ([]model.LearnedBankPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, bank_name, sender_ids, pattern,
		default_category, enabled, success_count, fail_count, created_at, updated_at
		FROM learned_patterns ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query patterns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.LearnedBankPattern
	for rows.Next() {
		pattern, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *pattern)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		examples, err := s.examplesFor(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Examples = examples
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPattern(row rowScanner) (*model.LearnedBankPattern, error) {
	var p model.LearnedBankPattern
	var senderIDs, segments, category string

	err := row.Scan(&p.ID, &p.BankName, &senderIDs, &segments, &category,
		&p.Enabled, &p.SuccessCount, &p.FailCount, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan pattern: %w", err)
	}

	if err := json.Unmarshal([]byte(senderIDs), &p.SenderIDs); err != nil {
		return nil, fmt.Errorf("failed to decode sender ids for %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(segments), &p.Pattern); err != nil {
		return nil, fmt.Errorf("failed to decode pattern for %s: %w", p.ID, err)
	}
	p.DefaultCategory = model.Category(category)
	return &p, nil
}

func (s *SQLiteStorage) examplesFor(ctx context.Context, patternID string) ([]model.TeachingExample, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, sender_id, body, selections,
		category, created_at FROM teaching_examples
		WHERE pattern_id = ? ORDER BY created_at`, patternID)
	if err != nil {
		return nil, fmt.Errorf("failed to query examples: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.TeachingExample
	for rows.Next() {
		var ex model.TeachingExample
		var selections, category string
		if err := rows.Scan(&ex.ID, &ex.SenderID, &ex.Body, &selections,
			&category, &ex.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan example: %w", err)
		}
		if err := json.Unmarshal([]byte(selections), &ex.Selections); err != nil {
			return nil, fmt.Errorf("failed to decode selections for %s: %w", ex.ID, err)
		}
		ex.Category = model.Category(category)
		out = append(out, ex)
	}
	return out, rows.Err()
}

// UpdateLearnedPatternCounters stores counter values the core computed
// after a match attempt.
func (s *SQLiteStorage) UpdateLearnedPatternCounters(ctx context.Context, id string, successCount, failCount int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.updatePattern(ctx, id,
		`UPDATE learned_patterns SET success_count = ?, fail_count = ?, updated_at = ? WHERE id = ?`,
		successCount, failCount, time.Now(), id)
}

// SetLearnedPatternEnabled flips a pattern's enabled flag.
func (s *SQLiteStorage) SetLearnedPatternEnabled(ctx context.Context, id string, enabled bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.updatePattern(ctx, id,
		`UPDATE learned_patterns SET enabled = ?, updated_at = ? WHERE id = ?`,
		enabled, time.Now(), id)
}

// DeleteLearnedPattern removes a pattern and, via the foreign key cascade,
// its examples.
func (s *SQLiteStorage) DeleteLearnedPattern(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.updatePattern(ctx, id, `DELETE FROM learned_patterns WHERE id = ?`, id)
}

func (s *SQLiteStorage) updatePattern(ctx context.Context, id, query string, args ...any) error {
	if err := validateString(id, "id"); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update pattern %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("pattern %s: %w", id, common.ErrNotFound)
	}
	return nil
}
