package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/tmwangi/elimu/core/report"
	"github.com/tmwangi/elimu/core/track"
	"github.com/tmwangi/elimu/core/user"
)

func TestTrackApi_mark(t *testing.T) {
	env := setup(t)

	teacher := env.createUser(t, "Teacher", "teacher", "teacher@test.cd", "Str0ngPwd!", []string{user.RoleTeacher})
	crs := env.createCourse(t, "Go", 5, teacher.ID)
	cnt := env.createContent(t, crs.ID, "Basics", time.Time{})

	alice := env.createUser(t, "Alice", "alice", "alice@test.cd", "Str0ngPwd!", nil)
	env.enroll(t, alice.ID, crs.ID)

	path := "/v1/contents/" + cnt.ID + "/complete"

	t.Run("unauthed", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, "")
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("content not found", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/contents/nope/complete", getToken(t, alice))
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("mark, then mark again", func(t *testing.T) {
		var first track.Completion

		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, alice))
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if first.UserID != alice.ID || first.ContentID != cnt.ID {
			t.Errorf("unexpected completion: %+v", first)
		}

		req, rec = newAuthRequest(http.MethodPost, path, getToken(t, alice))
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var second track.Completion
		if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if second.ID != first.ID || !second.CompletedAt.Equal(first.CompletedAt) {
			t.Errorf("remarking must return the original completion; got %+v, want %+v", second, first)
		}
	})
}

func TestTrackApi_unmark(t *testing.T) {
	env := setup(t)

	teacher := env.createUser(t, "Teacher", "teacher", "teacher@test.cd", "Str0ngPwd!", []string{user.RoleTeacher})
	crs := env.createCourse(t, "Go", 5, teacher.ID)
	cnt := env.createContent(t, crs.ID, "Basics", time.Time{})

	alice := env.createUser(t, "Alice", "alice", "alice@test.cd", "Str0ngPwd!", nil)
	env.enroll(t, alice.ID, crs.ID)
	env.mark(t, alice.ID, cnt.ID)

	path := "/v1/contents/" + cnt.ID + "/complete"

	t.Run("ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, path, getToken(t, alice))
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusNoContent, rec.Body.String())
		}
	})

	t.Run("not completed", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, path, getToken(t, alice))
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusNotFound, rec.Body.String())
		}
	})
}

func TestTrackApi_queryCompletions(t *testing.T) {
	env := setup(t)

	teacher := env.createUser(t, "Teacher", "teacher", "teacher@test.cd", "Str0ngPwd!", []string{user.RoleTeacher})
	crs := env.createCourse(t, "Go", 5, teacher.ID)
	cnt1 := env.createContent(t, crs.ID, "Basics", time.Time{})
	cnt2 := env.createContent(t, crs.ID, "Slices", time.Time{})

	alice := env.createUser(t, "Alice", "alice", "alice@test.cd", "Str0ngPwd!", nil)
	bob := env.createUser(t, "Bob", "bob", "bob@test.cd", "Str0ngPwd!", nil)
	env.enroll(t, alice.ID, crs.ID)
	env.enroll(t, bob.ID, crs.ID)

	cpl1 := env.mark(t, alice.ID, cnt1.ID)
	cpl2 := env.mark(t, alice.ID, cnt2.ID)
	env.mark(t, bob.ID, cnt1.ID)

	req, rec := newAuthRequest(http.MethodGet, "/v1/users/me/completions", getToken(t, alice))
	env.server.ServeHTTP(rec, req)

	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marchallList(t, cpl1, cpl2),
	}, rec)

	// the profile route shares the /users/me prefix and must stay reachable
	req, rec = newAuthRequest(http.MethodGet, "/v1/users/me", getToken(t, alice))
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("GET /v1/users/me code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
}

func TestTrackApi_dashboard(t *testing.T) {
	env := setup(t)

	teacher := env.createUser(t, "Teacher", "teacher", "teacher@test.cd", "Str0ngPwd!", []string{user.RoleTeacher})
	goCrs := env.createCourse(t, "Go", 5, teacher.ID)
	rustCrs := env.createCourse(t, "Rust", 5, teacher.ID)
	cnt := env.createContent(t, goCrs.ID, "Basics", time.Time{})

	alice := env.createUser(t, "Alice", "alice", "alice@test.cd", "Str0ngPwd!", nil)
	mbr := env.enroll(t, alice.ID, goCrs.ID)
	env.enroll(t, alice.ID, rustCrs.ID)
	env.createComment(t, mbr.ID, cnt.ID, "first", false)
	env.createComment(t, mbr.ID, cnt.ID, "second", true)

	req, rec := newAuthRequest(http.MethodGet, "/v1/users/me/dashboard", getToken(t, alice))
	env.server.ServeHTTP(rec, req)

	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, report.UserActivity{
			Username:       alice.Username,
			CoursesJoined:  2,
			CommentsPosted: 2,
		}),
	}, rec)
}
