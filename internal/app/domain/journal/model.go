package journal

import "time"

// Entry types. Freeform entries carry Content; prompted entries carry
// Responses, a prompt-id to answer map. Exactly one of the two is meaningful
// per entry.
const (
	TypeFreeform = "freeform"
	TypePrompted = "prompted"
)

// Moods, best to worst.
const (
	MoodGreat = "great"
	MoodGood  = "good"
	MoodOkay  = "okay"
	MoodLow   = "low"
	MoodRough = "rough"
)

// ValidType reports whether t is a known entry type.
func ValidType(t string) bool {
	return t == TypeFreeform || t == TypePrompted
}

// ValidMood reports whether m is a known mood.
func ValidMood(m string) bool {
	switch m {
	case MoodGreat, MoodGood, MoodOkay, MoodLow, MoodRough:
		return true
	}
	return false
}

// Entry is one journal record: a calendar date, a wall-clock time, a mood,
// and either freeform content or prompted responses.
type Entry struct {
	ID        string            `json:"id"`
	UserID    string            `json:"-"`
	Date      string            `json:"date"`
	Time      string            `json:"time"`
	EntryType string            `json:"entry_type"`
	Mood      string            `json:"mood"`
	Content   string            `json:"content,omitempty"`
	Responses map[string]string `json:"responses,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
