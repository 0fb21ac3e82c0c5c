package habit

import "time"

// Default field values applied when a habit is created without them.
const (
	DefaultCategory  = "other"
	DefaultFrequency = "daily"
)

// Habit is a recurring activity a user tracks. Frequency is stored and
// echoed back but streak arithmetic always treats habits as daily.
type Habit struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Frequency string    `json:"frequency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Log records that a habit was completed on a calendar day. Dates are plain
// YYYY-MM-DD strings with no time component. Deleting a log is the undo path
// for a completion.
type Log struct {
	ID        string    `json:"id"`
	HabitID   string    `json:"habit"`
	UserID    string    `json:"-"`
	Date      string    `json:"date"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}
