package types

// LessonSelection carries the optional per-item scheduling choices a user made
// while adding a program to their cart. Stored as JSONB on cart items and
// copied onto the enrollment at commitment time.
type LessonSelection struct {
	Weekday   string `json:"weekday,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	Teacher   string `json:"teacher,omitempty"`
	Room      string `json:"room,omitempty"`
}

// IsZero reports whether no selection was made.
func (l LessonSelection) IsZero() bool {
	return l == LessonSelection{}
}
