package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tmwangi/elimu/core"
	"github.com/tmwangi/elimu/core/comment"
)

type commentRow struct {
	ID         string    `db:"id"`
	ContentID  string    `db:"content_id"`
	MemberID   string    `db:"member_id"`
	Text       string    `db:"comment"`
	IsApproved bool      `db:"is_approved"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r commentRow) unpack() comment.Comment {
	return comment.Comment{
		ID:         r.ID,
		ContentID:  r.ContentID,
		MemberID:   r.MemberID,
		Text:       r.Text,
		IsApproved: r.IsApproved,
		CreatedAt:  r.CreatedAt,
	}
}

func packComment(cmt comment.Comment) commentRow {
	return commentRow{
		ID:         cmt.ID,
		ContentID:  cmt.ContentID,
		MemberID:   cmt.MemberID,
		Text:       cmt.Text,
		IsApproved: cmt.IsApproved,
		CreatedAt:  cmt.CreatedAt.UTC(),
	}
}

type commentRepository struct {
	db *sqlx.DB
}

var _ comment.Repository = (*commentRepository)(nil) // interface compliance check

func NewCommentRepository(db *sqlx.DB) *commentRepository {
	return &commentRepository{db: db}
}

func (repo commentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return comment.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo commentRepository) CreateComment(ctx context.Context, cmt comment.Comment) (comment.Comment, error) {
	cmt.ID = uuid.New().String()
	row := packComment(cmt)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO comment (id, content_id, member_id, comment, is_approved, created_at)
		VALUES (:id, :content_id, :member_id, :comment, :is_approved, :created_at)`,
		row)
	if err != nil {
		return comment.Comment{}, errors.Wrap(err, "inserting comment")
	}
	return row.unpack(), nil
}

func (repo commentRepository) GetComment(ctx context.Context, id string) (comment.Comment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return comment.Comment{}, comment.ErrNotFound
	}
	var row commentRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM comment WHERE id = $1`, id)
	if err != nil {
		return comment.Comment{}, repo.trapNoRowsErr(err, "finding comment")
	}
	return row.unpack(), nil
}

func (repo commentRepository) QueryComments(ctx context.Context, filter *comment.QueryFilter, ordering []core.DBOrdering) ([]comment.Comment, error) {
	query := `SELECT * FROM comment`
	var conds []string
	var args []interface{}

	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.ContentID != "" {
			conds = append(conds, fmt.Sprintf("content_id = %s", arg(filter.ContentID)))
		}
		if filter.MemberID != "" {
			conds = append(conds, fmt.Sprintf("member_id = %s", arg(filter.MemberID)))
		}
		if filter.IsApproved != nil {
			conds = append(conds, fmt.Sprintf("is_approved = %s", arg(*filter.IsApproved)))
		}
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += orderBy(ordering, commentColumns)

	var rows []commentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying comments")
	}
	comments := make([]comment.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, row.unpack())
	}
	return comments, nil
}

func (repo commentRepository) UpdateComment(ctx context.Context, cmt comment.Comment) (comment.Comment, error) {
	row := packComment(cmt)
	_, err := repo.db.NamedExecContext(ctx, `
		UPDATE comment
		SET comment = :comment, is_approved = :is_approved
		WHERE id = :id`,
		row)
	if err != nil {
		return comment.Comment{}, errors.Wrap(err, "updating comment")
	}
	return row.unpack(), nil
}
