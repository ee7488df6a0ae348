package comment

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/tmwangi/elimu/core"
)

var (
	// errors
	ErrNotFound = errors.New("comment not found")
)

type (
	Repository interface {
		CreateComment(ctx context.Context, cmt Comment) (Comment, error)
		GetComment(ctx context.Context, id string) (Comment, error)
		QueryComments(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Comment, error)
		UpdateComment(ctx context.Context, cmt Comment) (Comment, error)
	}

	ServiceInterface interface {
		Submit(ctx context.Context, memberID string, nc NewComment) (Comment, error)
		Pending(ctx context.Context) ([]Comment, error)
		Approved(ctx context.Context, contentID string) ([]Comment, error)
		Approve(ctx context.Context, id string) (Comment, bool, error)
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

// Submit creates a Comment on behalf of memberID. New comments are always
// unapproved; they stay out of public listings until moderated.
func (svc *service) Submit(ctx context.Context, memberID string, nc NewComment) (Comment, error) {
	cmt := Comment{
		ContentID:  nc.ContentID,
		MemberID:   memberID,
		Text:       nc.Text,
		IsApproved: false,
		CreatedAt:  time.Now().UTC(),
	}
	return svc.repo.CreateComment(ctx, cmt)
}

// Pending returns all comments awaiting moderation.
func (svc *service) Pending(ctx context.Context) ([]Comment, error) {
	approved := false
	filter := &QueryFilter{IsApproved: &approved}
	ordering := []core.DBOrdering{{Field: "created_at", Ascending: true}}
	return svc.repo.QueryComments(ctx, filter, ordering)
}

// Approved returns the publicly visible comments of a content unit.
func (svc *service) Approved(ctx context.Context, contentID string) ([]Comment, error) {
	approved := true
	filter := &QueryFilter{ContentID: contentID, IsApproved: &approved}
	ordering := []core.DBOrdering{{Field: "created_at", Ascending: true}}
	return svc.repo.QueryComments(ctx, filter, ordering)
}

// Approve flips the comment's approval flag. Approving an already-approved
// comment is not an error; the second return reports whether the comment had
// already been approved.
func (svc *service) Approve(ctx context.Context, id string) (Comment, bool, error) {
	cmt, err := svc.repo.GetComment(ctx, id)
	if err != nil {
		return Comment{}, false, err
	}
	if cmt.IsApproved {
		return cmt, true, nil
	}

	cmt.IsApproved = true
	cmt, err = svc.repo.UpdateComment(ctx, cmt)
	return cmt, false, err
}
