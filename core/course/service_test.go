package course_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/tmwangi/elimu/core/course"
	dummydb "github.com/tmwangi/elimu/storage/database/dummy"
)

func newService(t *testing.T) course.ServiceInterface {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	return course.NewService(dummydb.NewCourseRepository(db))
}

func createCourse(t *testing.T, svc course.ServiceInterface, name string, maxParticipants int) course.Course {
	t.Helper()

	crs, err := svc.Create(context.Background(), course.NewCourse{
		Name:            name,
		MaxParticipants: maxParticipants,
		TeacherID:       "teacher",
	})
	if err != nil {
		t.Fatalf("svc.Create(): %v", err)
	}
	return crs
}

func TestService_Enroll(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	crs := createCourse(t, svc, "Go", 2)

	if _, err := svc.Enroll(ctx, "u1", "nope"); errors.Cause(err) != course.ErrNotFound {
		t.Errorf("Enroll() unknown course err = %v; want %v", err, course.ErrNotFound)
	}

	mbr, err := svc.Enroll(ctx, "u1", crs.ID)
	if err != nil {
		t.Fatalf("Enroll(): %v", err)
	}
	if mbr.Role != course.MemberRoleStudent {
		t.Errorf("Role = %v; want %v", mbr.Role, course.MemberRoleStudent)
	}

	if _, err = svc.Enroll(ctx, "u1", crs.ID); errors.Cause(err) != course.ErrAlreadyEnrolled {
		t.Errorf("Enroll() twice err = %v; want %v", err, course.ErrAlreadyEnrolled)
	}

	if _, err = svc.Enroll(ctx, "u2", crs.ID); err != nil {
		t.Fatalf("Enroll(): %v", err)
	}
	if _, err = svc.Enroll(ctx, "u3", crs.ID); errors.Cause(err) != course.ErrCourseFull {
		t.Errorf("Enroll() over capacity err = %v; want %v", err, course.ErrCourseFull)
	}

	// u1's membership survived the failed attempts
	got, err := svc.GetMember(ctx, "u1", crs.ID)
	if err != nil {
		t.Fatalf("GetMember(): %v", err)
	}
	if got.ID != mbr.ID {
		t.Errorf("GetMember().ID = %v; want %v", got.ID, mbr.ID)
	}
}

func TestService_Enroll_concurrent(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	crs := createCourse(t, svc, "Go", 5)

	const attempts = 20
	errc := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		go func(i int) {
			_, err := svc.Enroll(ctx, fmt.Sprintf("u%d", i), crs.ID)
			errc <- err
		}(i)
	}

	var enrolled int
	for i := 0; i < attempts; i++ {
		switch err := <-errc; errors.Cause(err) {
		case nil:
			enrolled++
		case course.ErrCourseFull:
		default:
			t.Errorf("Enroll(): %v", err)
		}
	}
	if enrolled != crs.MaxParticipants {
		t.Errorf("enrolled = %d; want %d", enrolled, crs.MaxParticipants)
	}

	mbrs, err := svc.UserMemberships(ctx, "u0")
	if err != nil {
		t.Fatalf("UserMemberships(): %v", err)
	}
	if len(mbrs) > 1 {
		t.Errorf("len(memberships) = %d; want at most 1", len(mbrs))
	}
}

func TestService_AutoEnrollFirstCourse(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	if _, err := svc.AutoEnrollFirstCourse(ctx, "u1"); errors.Cause(err) != course.ErrNotFound {
		t.Errorf("AutoEnrollFirstCourse() with no courses err = %v; want %v", err, course.ErrNotFound)
	}

	first := createCourse(t, svc, "First", 5)
	createCourse(t, svc, "Second", 5)

	mbr, err := svc.AutoEnrollFirstCourse(ctx, "u1")
	if err != nil {
		t.Fatalf("AutoEnrollFirstCourse(): %v", err)
	}
	if mbr.CourseID != first.ID {
		t.Errorf("CourseID = %v; want %v", mbr.CourseID, first.ID)
	}
}

func TestService_AvailableContents(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	crs := createCourse(t, svc, "Go", 5)

	released, err := svc.CreateContent(ctx, crs.ID, course.NewContent{
		Title: "Basics",
		Body:  "...",
	})
	if err != nil {
		t.Fatalf("CreateContent(): %v", err)
	}
	if _, err = svc.CreateContent(ctx, crs.ID, course.NewContent{
		Title:       "Future",
		Body:        "...",
		ReleaseTime: time.Now().UTC().Add(time.Hour),
	}); err != nil {
		t.Fatalf("CreateContent(): %v", err)
	}

	contents, err := svc.AvailableContents(ctx, crs.ID)
	if err != nil {
		t.Fatalf("AvailableContents(): %v", err)
	}
	if len(contents) != 1 || contents[0].ID != released.ID {
		t.Errorf("unexpected contents: %+v", contents)
	}

	if _, err = svc.AvailableContents(ctx, "nope"); errors.Cause(err) != course.ErrNotFound {
		t.Errorf("AvailableContents() unknown course err = %v; want %v", err, course.ErrNotFound)
	}
}

func TestService_Update(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	crs := createCourse(t, svc, "Go", 5)

	max := 10
	got, err := svc.Update(ctx, crs.ID, course.UpdateCourse{MaxParticipants: &max})
	if err != nil {
		t.Fatalf("Update(): %v", err)
	}
	if got.MaxParticipants != max {
		t.Errorf("MaxParticipants = %d; want %d", got.MaxParticipants, max)
	}
	if got.Name != crs.Name {
		t.Errorf("Name = %v; want untouched %v", got.Name, crs.Name)
	}
}
