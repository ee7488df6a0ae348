package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/tmwangi/elimu/core"
	"github.com/tmwangi/elimu/core/comment"
)

type commentRepository struct {
	db *commentTable
}

var _ comment.Repository = (*commentRepository)(nil) // interface compliance check

func NewCommentRepository(db *DB) comment.Repository {
	return &commentRepository{db: db.comment}
}

func (repo *commentRepository) CreateComment(ctx context.Context, cmt comment.Comment) (comment.Comment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cmt.ID = uuid.New().String()
	repo.db.table[cmt.ID] = &cmt
	return cmt, nil
}

func (repo *commentRepository) GetComment(ctx context.Context, id string) (comment.Comment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cmt, ok := repo.db.table[id]; ok {
		return *cmt, nil
	}
	return comment.Comment{}, comment.ErrNotFound
}

func (repo *commentRepository) QueryComments(ctx context.Context, filter *comment.QueryFilter, ordering []core.DBOrdering) ([]comment.Comment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	comments := make([]comment.Comment, 0, len(repo.db.table))
	for _, cmt := range repo.db.table {
		if filter != nil {
			if filter.ContentID != "" && cmt.ContentID != filter.ContentID {
				continue
			}
			if filter.MemberID != "" && cmt.MemberID != filter.MemberID {
				continue
			}
			if filter.IsApproved != nil && cmt.IsApproved != *filter.IsApproved {
				continue
			}
		}
		comments = append(comments, *cmt)
	}
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID < comments[j].ID
		}
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

func (repo *commentRepository) UpdateComment(ctx context.Context, cmt comment.Comment) (comment.Comment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[cmt.ID]; !ok {
		return comment.Comment{}, comment.ErrNotFound
	}
	repo.db.table[cmt.ID] = &cmt
	return cmt, nil
}
