package track_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/tmwangi/elimu/core/course"
	"github.com/tmwangi/elimu/core/track"
	dummydb "github.com/tmwangi/elimu/storage/database/dummy"
)

type testEnv struct {
	svc    track.ServiceInterface
	crsSvc course.ServiceInterface
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}
	return &testEnv{
		svc:    track.NewService(dummydb.NewTrackRepository(db)),
		crsSvc: course.NewService(dummydb.NewCourseRepository(db)),
	}
}

func (env *testEnv) createContent(t *testing.T, courseID, title string, releaseTime time.Time) course.Content {
	t.Helper()

	cnt, err := env.crsSvc.CreateContent(context.Background(), courseID, course.NewContent{
		Title:       title,
		Body:        title + " body",
		ReleaseTime: releaseTime,
	})
	if err != nil {
		t.Fatalf("crsSvc.CreateContent(): %v", err)
	}
	return cnt
}

func (env *testEnv) createCourse(t *testing.T, name string) course.Course {
	t.Helper()

	crs, err := env.crsSvc.Create(context.Background(), course.NewCourse{
		Name:            name,
		MaxParticipants: 10,
		TeacherID:       "teacher",
	})
	if err != nil {
		t.Fatalf("crsSvc.Create(): %v", err)
	}
	return crs
}

func TestService_Mark(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	crs := env.createCourse(t, "Go")
	cnt := env.createContent(t, crs.ID, "Basics", time.Time{})

	if _, _, err := env.svc.Mark(ctx, "u1", "nope"); errors.Cause(err) != track.ErrContentNotFound {
		t.Errorf("Mark() unknown content err = %v; want %v", err, track.ErrContentNotFound)
	}

	first, created, err := env.svc.Mark(ctx, "u1", cnt.ID)
	if err != nil {
		t.Fatalf("Mark(): %v", err)
	}
	if !created {
		t.Error("created = false; want true on first mark")
	}

	second, created, err := env.svc.Mark(ctx, "u1", cnt.ID)
	if err != nil {
		t.Fatalf("Mark(): %v", err)
	}
	if created {
		t.Error("created = true; want false on repeat mark")
	}
	if second.ID != first.ID || !second.CompletedAt.Equal(first.CompletedAt) {
		t.Errorf("repeat mark must return the original completion; got %+v, want %+v", second, first)
	}

	// another user's mark does not collide
	if _, created, err = env.svc.Mark(ctx, "u2", cnt.ID); err != nil || !created {
		t.Errorf("Mark() by another user = (created=%v, err=%v); want (true, nil)", created, err)
	}
}

func TestService_Unmark(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	crs := env.createCourse(t, "Go")
	cnt := env.createContent(t, crs.ID, "Basics", time.Time{})

	if _, _, err := env.svc.Mark(ctx, "u1", cnt.ID); err != nil {
		t.Fatalf("Mark(): %v", err)
	}
	if err := env.svc.Unmark(ctx, "u1", cnt.ID); err != nil {
		t.Fatalf("Unmark(): %v", err)
	}
	if err := env.svc.Unmark(ctx, "u1", cnt.ID); errors.Cause(err) != track.ErrNotCompleted {
		t.Errorf("Unmark() twice err = %v; want %v", err, track.ErrNotCompleted)
	}

	completions, err := env.svc.UserCompletions(ctx, "u1")
	if err != nil {
		t.Fatalf("UserCompletions(): %v", err)
	}
	if len(completions) != 0 {
		t.Errorf("len(completions) = %d; want 0", len(completions))
	}
}

func TestService_CourseProgress(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	crs := env.createCourse(t, "Go")
	cnt1 := env.createContent(t, crs.ID, "Basics", time.Time{})
	cnt2 := env.createContent(t, crs.ID, "Slices", time.Time{})
	env.createContent(t, crs.ID, "Future", time.Now().UTC().Add(time.Hour))

	progress, err := env.svc.CourseProgress(ctx, "u1", crs.ID)
	if err != nil {
		t.Fatalf("CourseProgress(): %v", err)
	}
	if progress.Released != 2 || progress.Completed != 0 || progress.Done() {
		t.Errorf("progress = %+v; want 0/2, not done", progress)
	}

	if _, _, err = env.svc.Mark(ctx, "u1", cnt1.ID); err != nil {
		t.Fatalf("Mark(): %v", err)
	}
	progress, err = env.svc.CourseProgress(ctx, "u1", crs.ID)
	if err != nil {
		t.Fatalf("CourseProgress(): %v", err)
	}
	if progress.Completed != 1 || progress.Done() {
		t.Errorf("progress = %+v; want 1/2, not done", progress)
	}

	if _, _, err = env.svc.Mark(ctx, "u1", cnt2.ID); err != nil {
		t.Fatalf("Mark(): %v", err)
	}
	progress, err = env.svc.CourseProgress(ctx, "u1", crs.ID)
	if err != nil {
		t.Fatalf("CourseProgress(): %v", err)
	}
	if !progress.Done() {
		t.Errorf("progress = %+v; want done, unreleased contents do not count", progress)
	}
}

func TestService_CourseProgress_emptyCourse(t *testing.T) {
	env := setup(t)

	crs := env.createCourse(t, "Empty")
	progress, err := env.svc.CourseProgress(context.Background(), "u1", crs.ID)
	if err != nil {
		t.Fatalf("CourseProgress(): %v", err)
	}
	if progress.Released != 0 || progress.Done() {
		t.Errorf("progress = %+v; want 0 released and not done", progress)
	}
}
