package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/juanfec/moneytap/internal/common"
	"github.com/juanfec/moneytap/internal/model"
)

// SaveUserRule persists a user categorization rule.
func (s *SQLiteStorage) SaveUserRule(ctx context.Context, rule *model.UserCategorizationRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUserRule(rule); err != nil {
		return err
	}

	conditions, err := json.Marshal(rule.Conditions)
	if err != nil {
		return fmt.Errorf("failed to marshal conditions: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO user_rules
		(id, name, conditions, category, priority, enabled, source_pattern_id,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, rule.Name, string(conditions), string(rule.Category),
		rule.Priority, rule.Enabled, rule.SourcePatternID,
		rule.CreatedAt, rule.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save rule %s: %w", rule.ID, err)
	}
	return nil
}

// GetUserRules returns every rule in ascending priority order.
func (s *SQLiteStorage) GetUserRules(ctx context.Context) ([]model.UserCategorizationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, conditions, category,
		priority, enabled, source_pattern_id, created_at, updated_at
		FROM user_rules ORDER BY priority, created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.UserCategorizationRule
	for rows.Next() {
		var r model.UserCategorizationRule
		var conditions, category string
		if err := rows.Scan(&r.ID, &r.Name, &conditions, &category, &r.Priority,
			&r.Enabled, &r.SourcePatternID, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		if err := json.Unmarshal([]byte(conditions), &r.Conditions); err != nil {
			return nil, fmt.Errorf("failed to decode conditions for %s: %w", r.ID, err)
		}
		r.Category = model.Category(category)
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteUserRule removes a rule by id.
func (s *SQLiteStorage) DeleteUserRule(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM user_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("rule %s: %w", id, common.ErrNotFound)
	}
	return nil
}
