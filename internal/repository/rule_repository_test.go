package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadplan/timetable-api/internal/models"
)

func TestRuleRepositoryListDecodesLevels(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	repo := NewRuleRepository(sqlx.NewDb(db, "sqlmock"))

	rows := sqlmock.NewRows([]string{"id", "rule_text", "category", "priority", "levels"}).
		AddRow("rule-1", "No classes on Friday", "no_friday", 10, []byte(`{}`)).
		AddRow("rule-2", "Level 1 labs must be consecutive", "lab_continuity", 5, []byte(`{1}`))
	mock.ExpectQuery("SELECT id, rule_text, category, priority, levels FROM scheduling_rules").
		WillReturnRows(rows)

	rules, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 2)

	assert.Equal(t, models.RuleCategoryNoFriday, rules[0].Category)
	assert.True(t, rules[0].AppliesTo(3), "empty level list binds every level")
	assert.Equal(t, []int{1}, rules[1].Levels)
	assert.False(t, rules[1].AppliesTo(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}
