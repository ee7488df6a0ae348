package course

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/tmwangi/elimu/core"
)

var (
	// errors
	ErrNotFound        = errors.New("course not found")
	ErrContentNotFound = errors.New("course content not found")
	ErrNotEnrolled     = errors.New("user is not enrolled in this course")
	ErrAlreadyEnrolled = errors.New("user is already enrolled in this course")
	ErrCourseFull      = errors.New("course participant quota is full")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourse(ctx context.Context, id string) (Course, error)
		// GetFirstCourse returns the oldest course on record; ErrNotFound when none exist.
		GetFirstCourse(ctx context.Context) (Course, error)
		QueryCourses(ctx context.Context, ordering []core.DBOrdering) ([]Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		DeleteCoursesByID(ctx context.Context, ids ...string) (int, error)

		CreateContent(ctx context.Context, cnt Content) (Content, error)
		GetContent(ctx context.Context, id string) (Content, error)
		QueryContents(ctx context.Context, filter *ContentFilter, ordering []core.DBOrdering) ([]Content, error)
		UpdateContent(ctx context.Context, cnt Content) (Content, error)

		// CreateMember inserts a new Member provided no member exists for the same
		// (user, course) pair and the course's member count is below maxParticipants.
		// Both checks and the insert happen atomically at the store; returns
		// ErrAlreadyEnrolled or ErrCourseFull accordingly.
		CreateMember(ctx context.Context, mbr Member, maxParticipants int) (Member, error)
		GetMember(ctx context.Context, userID, courseID string) (Member, error)
		QueryMembers(ctx context.Context, filter *MemberFilter) ([]Member, error)
		CountMembers(ctx context.Context, courseID string) (int, error)
	}

	ServiceInterface interface {
		Create(ctx context.Context, nc NewCourse) (Course, error)
		Get(ctx context.Context, id string) (Course, error)
		Query(ctx context.Context, ordering ...core.DBOrdering) ([]Course, error)
		Update(ctx context.Context, id string, uc UpdateCourse) (Course, error)
		Delete(ctx context.Context, ids ...string) error

		CreateContent(ctx context.Context, courseID string, nc NewContent) (Content, error)
		GetContent(ctx context.Context, id string) (Content, error)
		UpdateContent(ctx context.Context, id string, uc UpdateContent) (Content, error)
		AvailableContents(ctx context.Context, courseID string) ([]Content, error)

		Enroll(ctx context.Context, userID, courseID string) (Member, error)
		AutoEnrollFirstCourse(ctx context.Context, userID string) (Member, error)
		GetMember(ctx context.Context, userID, courseID string) (Member, error)
		UserMemberships(ctx context.Context, userID string) ([]Member, error)
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) *service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		Name:            nc.Name,
		Description:     nc.Description,
		Price:           nc.Price,
		MaxParticipants: nc.MaxParticipants,
		TeacherID:       nc.TeacherID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *service) Get(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *service) Query(ctx context.Context, ordering ...core.DBOrdering) ([]Course, error) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at", Ascending: true}}
	}
	return svc.repo.QueryCourses(ctx, ordering)
}

func (svc *service) Update(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	crs, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return Course{}, err
	}

	if uc.Name != "" {
		crs.Name = uc.Name
	}
	if uc.Description != "" {
		crs.Description = uc.Description
	}
	if uc.Price != nil {
		crs.Price = *uc.Price
	}
	if uc.MaxParticipants != nil {
		crs.MaxParticipants = *uc.MaxParticipants
	}
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteCoursesByID(ctx, ids...)
	return err
}

func (svc *service) CreateContent(ctx context.Context, courseID string, nc NewContent) (Content, error) {
	crs, err := svc.repo.GetCourse(ctx, courseID)
	if err != nil {
		return Content{}, err
	}

	now := time.Now().UTC()
	releaseTime := nc.ReleaseTime.UTC()
	if nc.ReleaseTime.IsZero() {
		releaseTime = now
	}
	cnt := Content{
		CourseID:    crs.ID,
		Title:       nc.Title,
		Body:        nc.Body,
		ReleaseTime: releaseTime,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateContent(ctx, cnt)
}

func (svc *service) GetContent(ctx context.Context, id string) (Content, error) {
	return svc.repo.GetContent(ctx, id)
}

func (svc *service) UpdateContent(ctx context.Context, id string, uc UpdateContent) (Content, error) {
	cnt, err := svc.repo.GetContent(ctx, id)
	if err != nil {
		return Content{}, err
	}

	if uc.Title != "" {
		cnt.Title = uc.Title
	}
	if uc.Body != "" {
		cnt.Body = uc.Body
	}
	if uc.ReleaseTime != nil {
		cnt.ReleaseTime = uc.ReleaseTime.UTC()
	}
	cnt.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateContent(ctx, cnt)
}

// AvailableContents returns the contents whose release time has passed,
// evaluated against wall-clock time at call time. courseID may be empty to
// span all courses.
func (svc *service) AvailableContents(ctx context.Context, courseID string) ([]Content, error) {
	if courseID != "" {
		if _, err := svc.repo.GetCourse(ctx, courseID); err != nil {
			return nil, err
		}
	}
	filter := &ContentFilter{
		CourseID:       courseID,
		ReleasedBefore: time.Now().UTC(),
	}
	ordering := []core.DBOrdering{{Field: "release_time", Ascending: true}}
	return svc.repo.QueryContents(ctx, filter, ordering)
}

// Enroll registers userID as a student of courseID.
// Preconditions, in order: the course exists (ErrNotFound), the user is not
// already enrolled (ErrAlreadyEnrolled), the course is below capacity
// (ErrCourseFull). The store re-checks the last two atomically on insert.
func (svc *service) Enroll(ctx context.Context, userID, courseID string) (Member, error) {
	crs, err := svc.repo.GetCourse(ctx, courseID)
	if err != nil {
		return Member{}, err
	}

	if _, err = svc.repo.GetMember(ctx, userID, crs.ID); err == nil {
		return Member{}, ErrAlreadyEnrolled
	} else if errors.Cause(err) != ErrNotEnrolled {
		return Member{}, err
	}

	cnt, err := svc.repo.CountMembers(ctx, crs.ID)
	if err != nil {
		return Member{}, err
	}
	if cnt >= crs.MaxParticipants {
		return Member{}, ErrCourseFull
	}

	return svc.repo.CreateMember(ctx, Member{
		CourseID:  crs.ID,
		UserID:    userID,
		Role:      MemberRoleStudent,
		CreatedAt: time.Now().UTC(),
	}, crs.MaxParticipants)
}

// AutoEnrollFirstCourse enrolls userID into the oldest course on record,
// as done on registration. ErrNotFound when no course exists yet.
func (svc *service) AutoEnrollFirstCourse(ctx context.Context, userID string) (Member, error) {
	crs, err := svc.repo.GetFirstCourse(ctx)
	if err != nil {
		return Member{}, err
	}
	return svc.Enroll(ctx, userID, crs.ID)
}

func (svc *service) GetMember(ctx context.Context, userID, courseID string) (Member, error) {
	return svc.repo.GetMember(ctx, userID, courseID)
}

func (svc *service) UserMemberships(ctx context.Context, userID string) ([]Member, error) {
	return svc.repo.QueryMembers(ctx, &MemberFilter{UserID: userID})
}
