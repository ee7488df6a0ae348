package track

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrContentNotFound = errors.New("course content not found")
	ErrNotCompleted    = errors.New("content not marked as completed")
)

type (
	Repository interface {
		ContentExists(ctx context.Context, contentID string) (bool, error)
		// CreateCompletion inserts a Completion unless one already exists for the
		// same (user, content) pair; in that case the existing row is returned
		// with created=false. The uniqueness check is atomic at the store.
		CreateCompletion(ctx context.Context, cpl Completion) (Completion, bool, error)
		DeleteCompletion(ctx context.Context, userID, contentID string) error
		// QueryUserCompletions returns a user's completions ordered by
		// CompletedAt ascending.
		QueryUserCompletions(ctx context.Context, userID string) ([]Completion, error)
		GetCourseProgress(ctx context.Context, userID, courseID string, asOf time.Time) (CourseProgress, error)
	}

	ServiceInterface interface {
		Mark(ctx context.Context, userID, contentID string) (Completion, bool, error)
		Unmark(ctx context.Context, userID, contentID string) error
		UserCompletions(ctx context.Context, userID string) ([]Completion, error)
		CourseProgress(ctx context.Context, userID, courseID string) (CourseProgress, error)
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

// Mark records that userID finished contentID. Marking an already-completed
// content is not an error; the existing record is returned with created=false
// and CompletedAt untouched.
func (svc *service) Mark(ctx context.Context, userID, contentID string) (Completion, bool, error) {
	exists, err := svc.repo.ContentExists(ctx, contentID)
	if err != nil {
		return Completion{}, false, err
	}
	if !exists {
		return Completion{}, false, ErrContentNotFound
	}

	cpl := Completion{
		UserID:      userID,
		ContentID:   contentID,
		CompletedAt: time.Now().UTC(),
	}
	return svc.repo.CreateCompletion(ctx, cpl)
}

// Unmark removes userID's completion of contentID. ErrNotCompleted when no
// such completion exists.
func (svc *service) Unmark(ctx context.Context, userID, contentID string) error {
	return svc.repo.DeleteCompletion(ctx, userID, contentID)
}

func (svc *service) UserCompletions(ctx context.Context, userID string) ([]Completion, error) {
	return svc.repo.QueryUserCompletions(ctx, userID)
}

// CourseProgress reports how many of the course's currently released contents
// the user has completed, evaluated at call time.
func (svc *service) CourseProgress(ctx context.Context, userID, courseID string) (CourseProgress, error) {
	return svc.repo.GetCourseProgress(ctx, userID, courseID, time.Now().UTC())
}
