package models

// RuleCategory tags a rule with its machine-checkable class; free-form rules
// carry CategoryGeneral and are only forwarded to the oracle as instructions.
type RuleCategory string

const (
	RuleCategoryBreakTime     RuleCategory = "break_time"
	RuleCategoryNoFriday      RuleCategory = "no_friday"
	RuleCategoryLabContinuity RuleCategory = "lab_continuity"
	RuleCategoryDayOffBalance RuleCategory = "day_off_balance"
	RuleCategoryGeneral       RuleCategory = "general"
)

// Rule is an institution-wide scheduling constraint.
type Rule struct {
	ID       string       `db:"id" json:"id"`
	Text     string       `db:"rule_text" json:"text"`
	Category RuleCategory `db:"category" json:"category"`
	Priority int          `db:"priority" json:"priority"`
	Levels   []int        `db:"-" json:"levels"`
}

// AppliesTo reports whether the rule binds the given level. An empty level
// list means institution-wide.
func (r Rule) AppliesTo(level int) bool {
	if len(r.Levels) == 0 {
		return true
	}
	for _, l := range r.Levels {
		if l == level {
			return true
		}
	}
	return false
}
