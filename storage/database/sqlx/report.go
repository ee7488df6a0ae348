package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tmwangi/elimu/core/course"
	"github.com/tmwangi/elimu/core/report"
)

type reportRepository struct {
	db *sqlx.DB
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(db *sqlx.DB) *reportRepository {
	return &reportRepository{db: db}
}

func (repo reportRepository) count(ctx context.Context, query string, args ...interface{}) (int, error) {
	var cnt int
	if err := repo.db.GetContext(ctx, &cnt, query, args...); err != nil {
		return 0, errors.Wrap(err, "counting rows")
	}
	return cnt, nil
}

func (repo reportRepository) GetCourseName(ctx context.Context, courseID string) (string, error) {
	if _, err := uuid.Parse(courseID); err != nil {
		return "", course.ErrNotFound
	}
	var name string
	err := repo.db.GetContext(ctx, &name, `SELECT name FROM course WHERE id = $1`, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", course.ErrNotFound
		}
		return "", errors.Wrap(err, "finding course name")
	}
	return name, nil
}

func (repo reportRepository) CountUserMemberships(ctx context.Context, userID string) (int, error) {
	return repo.count(ctx, `SELECT COUNT(*) FROM course_member WHERE user_id = $1`, userID)
}

func (repo reportRepository) CountUserComments(ctx context.Context, userID string) (int, error) {
	return repo.count(ctx, `
		SELECT COUNT(*) FROM comment c
		JOIN course_member m ON m.id = c.member_id
		WHERE m.user_id = $1`, userID)
}

func (repo reportRepository) CountCourseStudents(ctx context.Context, courseID string) (int, error) {
	return repo.count(ctx, `SELECT COUNT(*) FROM course_member WHERE course_id = $1`, courseID)
}

func (repo reportRepository) CountCourseContents(ctx context.Context, courseID string) (int, error) {
	return repo.count(ctx, `SELECT COUNT(*) FROM course_content WHERE course_id = $1`, courseID)
}

// CountCourseComments attributes a comment to the course its content belongs
// to, not to the commenting member's course.
func (repo reportRepository) CountCourseComments(ctx context.Context, courseID string) (int, error) {
	return repo.count(ctx, `
		SELECT COUNT(*) FROM comment c
		JOIN course_content cnt ON cnt.id = c.content_id
		WHERE cnt.course_id = $1`, courseID)
}
