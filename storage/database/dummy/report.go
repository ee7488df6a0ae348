package dummydb

import (
	"context"

	"github.com/tmwangi/elimu/core/course"
	"github.com/tmwangi/elimu/core/report"
)

type reportRepository struct {
	course  *courseTable
	comment *commentTable
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(db *DB) report.Repository {
	return &reportRepository{course: db.course, comment: db.comment}
}

// memberIDs collects the user's membership row IDs; comments reference members,
// not users.
func (repo *reportRepository) memberIDs(userID string) map[string]struct{} {
	ids := make(map[string]struct{})
	for id, m := range repo.course.members {
		if m.UserID == userID {
			ids[id] = struct{}{}
		}
	}
	return ids
}

func (repo *reportRepository) courseMemberIDs(courseID string) map[string]struct{} {
	ids := make(map[string]struct{})
	for id, m := range repo.course.members {
		if m.CourseID == courseID {
			ids[id] = struct{}{}
		}
	}
	return ids
}

func (repo *reportRepository) countComments(memberIDs map[string]struct{}) int {
	repo.comment.RLock()
	defer repo.comment.RUnlock()

	var cnt int
	for _, cmt := range repo.comment.table {
		if _, ok := memberIDs[cmt.MemberID]; ok {
			cnt++
		}
	}
	return cnt
}

func (repo *reportRepository) GetCourseName(ctx context.Context, courseID string) (string, error) {
	repo.course.RLock()
	defer repo.course.RUnlock()

	if crs, ok := repo.course.courses[courseID]; ok {
		return crs.Name, nil
	}
	return "", course.ErrNotFound
}

func (repo *reportRepository) CountUserMemberships(ctx context.Context, userID string) (int, error) {
	repo.course.RLock()
	defer repo.course.RUnlock()
	return len(repo.memberIDs(userID)), nil
}

func (repo *reportRepository) CountUserComments(ctx context.Context, userID string) (int, error) {
	repo.course.RLock()
	ids := repo.memberIDs(userID)
	repo.course.RUnlock()
	return repo.countComments(ids), nil
}

func (repo *reportRepository) CountCourseStudents(ctx context.Context, courseID string) (int, error) {
	repo.course.RLock()
	defer repo.course.RUnlock()
	return len(repo.courseMemberIDs(courseID)), nil
}

func (repo *reportRepository) CountCourseContents(ctx context.Context, courseID string) (int, error) {
	repo.course.RLock()
	defer repo.course.RUnlock()

	var cnt int
	for _, c := range repo.course.contents {
		if c.CourseID == courseID {
			cnt++
		}
	}
	return cnt, nil
}

// CountCourseComments attributes a comment to the course its content belongs
// to, not to the commenting member's course.
func (repo *reportRepository) CountCourseComments(ctx context.Context, courseID string) (int, error) {
	repo.course.RLock()
	contentIDs := make(map[string]struct{})
	for id, cnt := range repo.course.contents {
		if cnt.CourseID == courseID {
			contentIDs[id] = struct{}{}
		}
	}
	repo.course.RUnlock()

	repo.comment.RLock()
	defer repo.comment.RUnlock()

	var count int
	for _, cmt := range repo.comment.table {
		if _, ok := contentIDs[cmt.ContentID]; ok {
			count++
		}
	}
	return count, nil
}
