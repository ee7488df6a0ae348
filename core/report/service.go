package report

import (
	"context"

	"github.com/tmwangi/elimu/core"
)

type (
	// Repository computes relational aggregates over the store. Counts are
	// read at call time; nothing is cached or maintained incrementally.
	Repository interface {
		// GetCourseName fails with course.ErrNotFound for an unknown course.
		GetCourseName(ctx context.Context, courseID string) (string, error)
		CountUserMemberships(ctx context.Context, userID string) (int, error)
		CountUserComments(ctx context.Context, userID string) (int, error)
		CountCourseStudents(ctx context.Context, courseID string) (int, error)
		CountCourseContents(ctx context.Context, courseID string) (int, error)
		CountCourseComments(ctx context.Context, courseID string) (int, error)
	}

	ServiceInterface interface {
		UserActivity(ctx context.Context, userID, username string) (UserActivity, error)
		CourseAnalytics(ctx context.Context, courseID string) (CourseAnalytics, error)
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

func (svc *service) UserActivity(ctx context.Context, userID, username string) (UserActivity, error) {
	joined, err := svc.repo.CountUserMemberships(ctx, userID)
	if err != nil {
		return UserActivity{}, err
	}
	comments, err := svc.repo.CountUserComments(ctx, userID)
	if err != nil {
		return UserActivity{}, err
	}
	return UserActivity{
		Username:       username,
		CoursesJoined:  joined,
		CommentsPosted: comments,
	}, nil
}

// CourseAnalytics recomputes the course's engagement counts.
// The average is rounded to 2 decimal places; a course with no contents
// reports 0 rather than dividing by zero.
func (svc *service) CourseAnalytics(ctx context.Context, courseID string) (CourseAnalytics, error) {
	name, err := svc.repo.GetCourseName(ctx, courseID)
	if err != nil {
		return CourseAnalytics{}, err
	}

	students, err := svc.repo.CountCourseStudents(ctx, courseID)
	if err != nil {
		return CourseAnalytics{}, err
	}
	contents, err := svc.repo.CountCourseContents(ctx, courseID)
	if err != nil {
		return CourseAnalytics{}, err
	}
	comments, err := svc.repo.CountCourseComments(ctx, courseID)
	if err != nil {
		return CourseAnalytics{}, err
	}

	var avg float64
	if contents > 0 {
		avg = core.Round2(float64(comments) / float64(contents))
	}
	return CourseAnalytics{
		CourseName:            name,
		TotalStudents:         students,
		TotalContents:         contents,
		TotalComments:         comments,
		AvgCommentsPerContent: avg,
	}, nil
}
