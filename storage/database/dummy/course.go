package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/tmwangi/elimu/core"
	"github.com/tmwangi/elimu/core/course"
)

type courseRepository struct {
	db *courseTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course}
}

func (repo *courseRepository) queryCourses() []course.Course {
	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, c := range repo.db.courses {
		courses = append(courses, *c)
	}
	sort.Slice(courses, func(i, j int) bool {
		if courses[i].CreatedAt.Equal(courses[j].CreatedAt) {
			return courses[i].ID < courses[j].ID
		}
		return courses[i].CreatedAt.Before(courses[j].CreatedAt)
	})
	return courses
}

func (repo *courseRepository) countMembers(courseID string) int {
	var cnt int
	for _, m := range repo.db.members {
		if m.CourseID == courseID {
			cnt++
		}
	}
	return cnt
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs.ID = uuid.New().String()
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) GetFirstCourse(ctx context.Context) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := repo.queryCourses()
	if len(courses) == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return courses[0], nil
}

func (repo *courseRepository) QueryCourses(ctx context.Context, ordering []core.DBOrdering) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.queryCourses(), nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.courses[crs.ID]; !ok {
		return course.Course{}, course.ErrNotFound
	}
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids ...string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.courses[id]; ok {
			delete(repo.db.courses, id)
			cnt++
		}
	}
	return cnt, nil
}

func (repo *courseRepository) CreateContent(ctx context.Context, cnt course.Content) (course.Content, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	cnt.ID = uuid.New().String()
	repo.db.contents[cnt.ID] = &cnt
	return cnt, nil
}

func (repo *courseRepository) GetContent(ctx context.Context, id string) (course.Content, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cnt, ok := repo.db.contents[id]; ok {
		return *cnt, nil
	}
	return course.Content{}, course.ErrContentNotFound
}

func (repo *courseRepository) QueryContents(ctx context.Context, filter *course.ContentFilter, ordering []core.DBOrdering) ([]course.Content, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	contents := make([]course.Content, 0, len(repo.db.contents))
	for _, cnt := range repo.db.contents {
		if filter != nil {
			if filter.CourseID != "" && cnt.CourseID != filter.CourseID {
				continue
			}
			if !filter.ReleasedBefore.IsZero() && cnt.ReleaseTime.After(filter.ReleasedBefore) {
				continue
			}
		}
		contents = append(contents, *cnt)
	}
	sort.Slice(contents, func(i, j int) bool {
		if contents[i].ReleaseTime.Equal(contents[j].ReleaseTime) {
			return contents[i].ID < contents[j].ID
		}
		return contents[i].ReleaseTime.Before(contents[j].ReleaseTime)
	})
	return contents, nil
}

func (repo *courseRepository) UpdateContent(ctx context.Context, cnt course.Content) (course.Content, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.contents[cnt.ID]; !ok {
		return course.Content{}, course.ErrContentNotFound
	}
	repo.db.contents[cnt.ID] = &cnt
	return cnt, nil
}

func (repo *courseRepository) CreateMember(ctx context.Context, mbr course.Member, maxParticipants int) (course.Member, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, m := range repo.db.members {
		if m.UserID == mbr.UserID && m.CourseID == mbr.CourseID {
			return course.Member{}, course.ErrAlreadyEnrolled
		}
	}
	if repo.countMembers(mbr.CourseID) >= maxParticipants {
		return course.Member{}, course.ErrCourseFull
	}

	mbr.ID = uuid.New().String()
	repo.db.members[mbr.ID] = &mbr
	return mbr, nil
}

func (repo *courseRepository) GetMember(ctx context.Context, userID, courseID string) (course.Member, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, m := range repo.db.members {
		if m.UserID == userID && m.CourseID == courseID {
			return *m, nil
		}
	}
	return course.Member{}, course.ErrNotEnrolled
}

func (repo *courseRepository) QueryMembers(ctx context.Context, filter *course.MemberFilter) ([]course.Member, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	members := make([]course.Member, 0, len(repo.db.members))
	for _, m := range repo.db.members {
		if filter != nil {
			if filter.UserID != "" && m.UserID != filter.UserID {
				continue
			}
			if filter.CourseID != "" && m.CourseID != filter.CourseID {
				continue
			}
		}
		members = append(members, *m)
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].CreatedAt.Equal(members[j].CreatedAt) {
			return members[i].ID < members[j].ID
		}
		return members[i].CreatedAt.Before(members[j].CreatedAt)
	})
	return members, nil
}

func (repo *courseRepository) CountMembers(ctx context.Context, courseID string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.countMembers(courseID), nil
}
