package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/tmwangi/elimu/core"
	"github.com/tmwangi/elimu/core/course"
)

type courseRow struct {
	ID              string    `db:"id"`
	Name            string    `db:"name"`
	Description     string    `db:"description"`
	Price           int64     `db:"price"`
	MaxParticipants int       `db:"max_participants"`
	TeacherID       string    `db:"teacher_id"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func (r courseRow) unpack() course.Course {
	return course.Course{
		ID:              r.ID,
		Name:            r.Name,
		Description:     r.Description,
		Price:           r.Price,
		MaxParticipants: r.MaxParticipants,
		TeacherID:       r.TeacherID,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func packCourse(crs course.Course) courseRow {
	return courseRow{
		ID:              crs.ID,
		Name:            crs.Name,
		Description:     crs.Description,
		Price:           crs.Price,
		MaxParticipants: crs.MaxParticipants,
		TeacherID:       crs.TeacherID,
		CreatedAt:       crs.CreatedAt.UTC(),
		UpdatedAt:       crs.UpdatedAt.UTC(),
	}
}

type contentRow struct {
	ID          string    `db:"id"`
	CourseID    string    `db:"course_id"`
	Title       string    `db:"title"`
	Body        string    `db:"body"`
	ReleaseTime time.Time `db:"release_time"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r contentRow) unpack() course.Content {
	return course.Content{
		ID:          r.ID,
		CourseID:    r.CourseID,
		Title:       r.Title,
		Body:        r.Body,
		ReleaseTime: r.ReleaseTime,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func packContent(cnt course.Content) contentRow {
	return contentRow{
		ID:          cnt.ID,
		CourseID:    cnt.CourseID,
		Title:       cnt.Title,
		Body:        cnt.Body,
		ReleaseTime: cnt.ReleaseTime.UTC(),
		CreatedAt:   cnt.CreatedAt.UTC(),
		UpdatedAt:   cnt.UpdatedAt.UTC(),
	}
}

type memberRow struct {
	ID        string    `db:"id"`
	CourseID  string    `db:"course_id"`
	UserID    string    `db:"user_id"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}

func (r memberRow) unpack() course.Member {
	return course.Member{
		ID:        r.ID,
		CourseID:  r.CourseID,
		UserID:    r.UserID,
		Role:      r.Role,
		CreatedAt: r.CreatedAt,
	}
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo courseRepository) trapNoRowsErr(err error, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	crs.ID = uuid.New().String()
	row := packCourse(crs)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO course (id, name, description, price, max_participants, teacher_id, created_at, updated_at)
		VALUES (:id, :name, :description, :price, :max_participants, :teacher_id, :created_at, :updated_at)`,
		row)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return row.unpack(), nil
}

func (repo courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	if _, err := uuid.Parse(id); err != nil {
		return course.Course{}, course.ErrNotFound
	}
	var row courseRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM course WHERE id = $1`, id)
	if err != nil {
		return course.Course{}, repo.trapNoRowsErr(err, course.ErrNotFound, "finding course")
	}
	return row.unpack(), nil
}

func (repo courseRepository) GetFirstCourse(ctx context.Context) (course.Course, error) {
	var row courseRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM course ORDER BY created_at ASC, id ASC LIMIT 1`)
	if err != nil {
		return course.Course{}, repo.trapNoRowsErr(err, course.ErrNotFound, "finding first course")
	}
	return row.unpack(), nil
}

func (repo courseRepository) QueryCourses(ctx context.Context, ordering []core.DBOrdering) ([]course.Course, error) {
	query := `SELECT * FROM course` + orderBy(ordering, courseColumns)

	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.unpack())
	}
	return courses, nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	row := packCourse(crs)
	_, err := repo.db.NamedExecContext(ctx, `
		UPDATE course
		SET name = :name, description = :description, price = :price,
		    max_participants = :max_participants, updated_at = :updated_at
		WHERE id = :id`,
		row)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	return row.unpack(), nil
}

func (repo courseRepository) DeleteCoursesByID(ctx context.Context, ids ...string) (int, error) {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM course WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting courses")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting courses")
	}
	return int(cnt), nil
}

func (repo courseRepository) CreateContent(ctx context.Context, cnt course.Content) (course.Content, error) {
	cnt.ID = uuid.New().String()
	row := packContent(cnt)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO course_content (id, course_id, title, body, release_time, created_at, updated_at)
		VALUES (:id, :course_id, :title, :body, :release_time, :created_at, :updated_at)`,
		row)
	if err != nil {
		return course.Content{}, errors.Wrap(err, "inserting course content")
	}
	return row.unpack(), nil
}

func (repo courseRepository) GetContent(ctx context.Context, id string) (course.Content, error) {
	if _, err := uuid.Parse(id); err != nil {
		return course.Content{}, course.ErrContentNotFound
	}
	var row contentRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM course_content WHERE id = $1`, id)
	if err != nil {
		return course.Content{}, repo.trapNoRowsErr(err, course.ErrContentNotFound, "finding course content")
	}
	return row.unpack(), nil
}

func (repo courseRepository) QueryContents(ctx context.Context, filter *course.ContentFilter, ordering []core.DBOrdering) ([]course.Content, error) {
	query := `SELECT * FROM course_content`
	var conds []string
	var args []interface{}

	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.CourseID != "" {
			conds = append(conds, fmt.Sprintf("course_id = %s", arg(filter.CourseID)))
		}
		if !filter.ReleasedBefore.IsZero() {
			conds = append(conds, fmt.Sprintf("release_time <= %s", arg(filter.ReleasedBefore.UTC())))
		}
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += orderBy(ordering, contentColumns)

	var rows []contentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying course contents")
	}
	contents := make([]course.Content, 0, len(rows))
	for _, row := range rows {
		contents = append(contents, row.unpack())
	}
	return contents, nil
}

func (repo courseRepository) UpdateContent(ctx context.Context, cnt course.Content) (course.Content, error) {
	row := packContent(cnt)
	_, err := repo.db.NamedExecContext(ctx, `
		UPDATE course_content
		SET title = :title, body = :body, release_time = :release_time, updated_at = :updated_at
		WHERE id = :id`,
		row)
	if err != nil {
		return course.Content{}, errors.Wrap(err, "updating course content")
	}
	return row.unpack(), nil
}

// CreateMember inserts only when the (user, course) pair is new and the course
// member count is still below maxParticipants. The count and the insert run in
// one transaction holding the course row lock; without it, two enrollments
// under READ COMMITTED can both count below the quota and both insert.
func (repo courseRepository) CreateMember(ctx context.Context, mbr course.Member, maxParticipants int) (course.Member, error) {
	mbr.ID = uuid.New().String()

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return course.Member{}, errors.Wrap(err, "beginning enrollment transaction")
	}
	defer tx.Rollback() // no-op once committed

	var courseID string
	err = tx.GetContext(ctx, &courseID, `SELECT id FROM course WHERE id = $1 FOR UPDATE`, mbr.CourseID)
	if err != nil {
		return course.Member{}, repo.trapNoRowsErr(err, course.ErrNotFound, "locking course")
	}

	var cnt int
	err = tx.GetContext(ctx, &cnt, `SELECT COUNT(*) FROM course_member WHERE course_id = $1`, mbr.CourseID)
	if err != nil {
		return course.Member{}, errors.Wrap(err, "counting course members")
	}
	if cnt >= maxParticipants {
		return course.Member{}, course.ErrCourseFull
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO course_member (id, course_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, course_id) DO NOTHING`,
		mbr.ID, mbr.CourseID, mbr.UserID, mbr.Role, mbr.CreatedAt.UTC())
	if err != nil {
		return course.Member{}, errors.Wrap(err, "inserting course member")
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return course.Member{}, errors.Wrap(err, "inserting course member")
	}
	if inserted == 0 {
		return course.Member{}, course.ErrAlreadyEnrolled
	}

	if err = tx.Commit(); err != nil {
		return course.Member{}, errors.Wrap(err, "committing enrollment")
	}
	return mbr, nil
}

func (repo courseRepository) GetMember(ctx context.Context, userID, courseID string) (course.Member, error) {
	var row memberRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM course_member WHERE user_id = $1 AND course_id = $2`, userID, courseID)
	if err != nil {
		return course.Member{}, repo.trapNoRowsErr(err, course.ErrNotEnrolled, "finding course member")
	}
	return row.unpack(), nil
}

func (repo courseRepository) QueryMembers(ctx context.Context, filter *course.MemberFilter) ([]course.Member, error) {
	query := `SELECT * FROM course_member`
	var conds []string
	var args []interface{}

	arg := func(val interface{}) string {
		args = append(args, val)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.UserID != "" {
			conds = append(conds, fmt.Sprintf("user_id = %s", arg(filter.UserID)))
		}
		if filter.CourseID != "" {
			conds = append(conds, fmt.Sprintf("course_id = %s", arg(filter.CourseID)))
		}
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at ASC"

	var rows []memberRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying course members")
	}
	members := make([]course.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, row.unpack())
	}
	return members, nil
}

func (repo courseRepository) CountMembers(ctx context.Context, courseID string) (int, error) {
	var cnt int
	err := repo.db.GetContext(ctx, &cnt,
		`SELECT COUNT(*) FROM course_member WHERE course_id = $1`, courseID)
	if err != nil {
		return 0, errors.Wrap(err, "counting course members")
	}
	return cnt, nil
}
