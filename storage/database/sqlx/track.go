package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tmwangi/elimu/core/track"
)

type completionRow struct {
	ID          string    `db:"id"`
	UserID      string    `db:"user_id"`
	ContentID   string    `db:"content_id"`
	CompletedAt time.Time `db:"completed_at"`
}

func (r completionRow) unpack() track.Completion {
	return track.Completion{
		ID:          r.ID,
		UserID:      r.UserID,
		ContentID:   r.ContentID,
		CompletedAt: r.CompletedAt,
	}
}

type trackRepository struct {
	db *sqlx.DB
}

var _ track.Repository = (*trackRepository)(nil) // interface compliance check

func NewTrackRepository(db *sqlx.DB) *trackRepository {
	return &trackRepository{db: db}
}

func (repo trackRepository) ContentExists(ctx context.Context, contentID string) (bool, error) {
	if _, err := uuid.Parse(contentID); err != nil {
		return false, nil
	}
	var exists bool
	err := repo.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM course_content WHERE id = $1)`, contentID)
	if err != nil {
		return false, errors.Wrap(err, "checking content existence")
	}
	return exists, nil
}

// CreateCompletion relies on the store's (user_id, content_id) uniqueness so
// concurrent marks of the same content settle on a single row. On conflict the
// existing row is returned with created=false.
func (repo trackRepository) CreateCompletion(ctx context.Context, cpl track.Completion) (track.Completion, bool, error) {
	cpl.ID = uuid.New().String()
	res, err := repo.db.ExecContext(ctx, `
		INSERT INTO content_completion (id, user_id, content_id, completed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, content_id) DO NOTHING`,
		cpl.ID, cpl.UserID, cpl.ContentID, cpl.CompletedAt.UTC())
	if err != nil {
		return track.Completion{}, false, errors.Wrap(err, "inserting content completion")
	}

	cnt, err := res.RowsAffected()
	if err != nil {
		return track.Completion{}, false, errors.Wrap(err, "inserting content completion")
	}
	if cnt == 0 {
		var row completionRow
		err = repo.db.GetContext(ctx, &row,
			`SELECT * FROM content_completion WHERE user_id = $1 AND content_id = $2`,
			cpl.UserID, cpl.ContentID)
		if err != nil {
			return track.Completion{}, false, errors.Wrap(err, "finding content completion")
		}
		return row.unpack(), false, nil
	}
	return cpl, true, nil
}

func (repo trackRepository) DeleteCompletion(ctx context.Context, userID, contentID string) error {
	if _, err := uuid.Parse(contentID); err != nil {
		return track.ErrNotCompleted
	}
	res, err := repo.db.ExecContext(ctx,
		`DELETE FROM content_completion WHERE user_id = $1 AND content_id = $2`, userID, contentID)
	if err != nil {
		return errors.Wrap(err, "deleting content completion")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting content completion")
	}
	if cnt == 0 {
		return track.ErrNotCompleted
	}
	return nil
}

func (repo trackRepository) QueryUserCompletions(ctx context.Context, userID string) ([]track.Completion, error) {
	var rows []completionRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM content_completion WHERE user_id = $1 ORDER BY completed_at ASC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying content completions")
	}
	completions := make([]track.Completion, 0, len(rows))
	for _, row := range rows {
		completions = append(completions, row.unpack())
	}
	return completions, nil
}

func (repo trackRepository) GetCourseProgress(ctx context.Context, userID, courseID string, asOf time.Time) (track.CourseProgress, error) {
	var prg track.CourseProgress

	err := repo.db.GetContext(ctx, &prg.Released, `
		SELECT COUNT(*) FROM course_content
		WHERE course_id = $1 AND release_time <= $2`,
		courseID, asOf.UTC())
	if err != nil {
		return track.CourseProgress{}, errors.Wrap(err, "counting released contents")
	}

	err = repo.db.GetContext(ctx, &prg.Completed, `
		SELECT COUNT(*) FROM content_completion cc
		JOIN course_content cnt ON cnt.id = cc.content_id
		WHERE cc.user_id = $1 AND cnt.course_id = $2 AND cnt.release_time <= $3`,
		userID, courseID, asOf.UTC())
	if err != nil {
		return track.CourseProgress{}, errors.Wrap(err, "counting completed contents")
	}
	return prg, nil
}
