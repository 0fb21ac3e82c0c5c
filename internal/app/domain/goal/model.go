package goal

import (
	"encoding/json"
	"math"
	"time"
)

// Goal is a measurable target. CurrentValue is a denormalized running total:
// it moves when progress entries are added and can also be overwritten
// directly, so it is allowed to drift from the sum of the ledger.
type Goal struct {
	ID           string    `json:"id"`
	UserID       string    `json:"-"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Unit         string    `json:"unit"`
	TargetValue  float64   `json:"target_value"`
	CurrentValue float64   `json:"current_value"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Progress is one append-only ledger entry recorded against a goal. The date
// is server-assigned at creation; ledger entries are historical record and
// deleting one does not adjust the goal's running total.
type Progress struct {
	ID        string    `json:"id"`
	GoalID    string    `json:"goal"`
	UserID    string    `json:"-"`
	Date      string    `json:"date"`
	Amount    float64   `json:"amount"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// ProgressPercent returns the completion percentage, rounded, capped at 100.
// A non-positive target yields 0.
func (g Goal) ProgressPercent() int {
	if g.TargetValue <= 0 {
		return 0
	}
	pct := int(math.Round(100 * g.CurrentValue / g.TargetValue))
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return pct
}

// Complete reports whether the running total has reached the target.
func (g Goal) Complete() bool {
	return g.TargetValue > 0 && g.CurrentValue >= g.TargetValue
}

// MarshalJSON serializes the goal with its derived progress fields so every
// read carries them.
func (g Goal) MarshalJSON() ([]byte, error) {
	type alias Goal
	return json.Marshal(struct {
		alias
		ProgressPercentage int  `json:"progress_percentage"`
		IsComplete         bool `json:"is_complete"`
	}{
		alias:              alias(g),
		ProgressPercentage: g.ProgressPercent(),
		IsComplete:         g.Complete(),
	})
}
