package track

import "time"

// Completion records that a user finished a content unit. At most one
// Completion may exist per (user, content) pair; CompletedAt is set at
// creation and never updated.
type Completion struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ContentID   string    `json:"content_id"`
	CompletedAt time.Time `json:"completed_at"` // UTC
}

// CourseProgress aggregates a user's completion state over a course's
// released contents.
type CourseProgress struct {
	Released  int `json:"released"`
	Completed int `json:"completed"`
}

// Done reports whether every released content has been completed. A course
// with nothing released yet is not done.
func (p CourseProgress) Done() bool {
	return p.Released > 0 && p.Completed >= p.Released
}
