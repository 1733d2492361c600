package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/acadplan/timetable-api/internal/models"
)

// RuleRepository reads institution-wide scheduling rules.
type RuleRepository struct {
	db *sqlx.DB
}

// NewRuleRepository constructs repository.
func NewRuleRepository(db *sqlx.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

type ruleRow struct {
	ID       string        `db:"id"`
	Text     string        `db:"rule_text"`
	Category string        `db:"category"`
	Priority int           `db:"priority"`
	Levels   pq.Int64Array `db:"levels"`
}

// List returns every rule ordered by descending priority.
func (r *RuleRepository) List(ctx context.Context) ([]models.Rule, error) {
	const query = `SELECT id, rule_text, category, priority, levels FROM scheduling_rules ORDER BY priority DESC, id`
	var rows []ruleRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list scheduling rules: %w", err)
	}
	rules := make([]models.Rule, 0, len(rows))
	for _, row := range rows {
		rule := models.Rule{
			ID:       row.ID,
			Text:     row.Text,
			Category: models.RuleCategory(row.Category),
			Priority: row.Priority,
		}
		for _, level := range row.Levels {
			rule.Levels = append(rule.Levels, int(level))
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
