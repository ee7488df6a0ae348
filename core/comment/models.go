package comment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tmwangi/elimu/core"
)

// Comment is feedback a course member leaves on a content unit. It stays
// hidden from public listings until an admin approves it.
type Comment struct {
	ID         string    `json:"id"`
	ContentID  string    `json:"content_id"`
	MemberID   string    `json:"member_id"`
	Text       string    `json:"comment"`
	IsApproved bool      `json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

// NewComment contains information needed to submit a new Comment.
type NewComment struct {
	ContentID string `json:"content_id" validate:"required"`
	Text      string `json:"comment" validate:"required"`
}

func (nc *NewComment) Validate(validate *validator.Validate) error {
	nc.Text = core.CleanString(nc.Text)
	return validate.Struct(nc)
}

// QueryFilter narrows down a Comment query. All set fields are ANDed.
type QueryFilter struct {
	ContentID  string
	MemberID   string
	IsApproved *bool
}
