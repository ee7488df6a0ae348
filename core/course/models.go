package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tmwangi/elimu/core"
)

// Membership roles
const (
	MemberRoleStudent = "std"
	MemberRoleTeacher = "tch"
)

type Course struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Price           int64     `json:"price"`
	MaxParticipants int       `json:"max_participants"`
	TeacherID       string    `json:"teacher_id"`
	CreatedAt       time.Time `json:"created_at"` // UTC
	UpdatedAt       time.Time `json:"updated_at"` // UTC
}

// Content is a unit of course material. It only becomes visible to students
// once ReleaseTime has passed.
type Content struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"course_id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	ReleaseTime time.Time `json:"release_time"` // UTC
	CreatedAt   time.Time `json:"created_at"`   // UTC
	UpdatedAt   time.Time `json:"updated_at"`   // UTC
}

func (c Content) Available(now time.Time) bool {
	return !c.ReleaseTime.After(now)
}

// Member links a User to a Course. At most one Member may exist
// per (user, course) pair.
type Member struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name            string `json:"name" validate:"required"`
	Description     string `json:"description"`
	Price           int64  `json:"price" validate:"gte=0"`
	MaxParticipants int    `json:"max_participants" validate:"required,gt=0"`
	TeacherID       string `json:"teacher_id" validate:"required"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
// Zero-valued fields are left untouched.
type UpdateCourse struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	Price           *int64 `json:"price" validate:"omitempty,gte=0"`
	MaxParticipants *int   `json:"max_participants" validate:"omitempty,gt=0"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	uc.Description = core.CleanString(uc.Description)
	return validate.Struct(uc)
}

// NewContent contains information needed to create a new Content.
// A zero ReleaseTime means "released immediately".
type NewContent struct {
	Title       string    `json:"title" validate:"required"`
	Body        string    `json:"body" validate:"required"`
	ReleaseTime time.Time `json:"release_time"`
}

func (nc *NewContent) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	return validate.Struct(nc)
}

// UpdateContent defines what information may be provided to modify an existing Content.
type UpdateContent struct {
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	ReleaseTime *time.Time `json:"release_time"`
}

func (uc *UpdateContent) Validate(validate *validator.Validate) error {
	uc.Title = core.CleanString(uc.Title)
	return validate.Struct(uc)
}

// ContentFilter narrows down a Content query. All set fields are ANDed.
type ContentFilter struct {
	CourseID       string
	ReleasedBefore time.Time
}

// MemberFilter narrows down a Member query.
type MemberFilter struct {
	UserID   string
	CourseID string
}
