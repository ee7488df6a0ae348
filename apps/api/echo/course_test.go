package echoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tmwangi/elimu/core/comment"
	"github.com/tmwangi/elimu/core/course"
	"github.com/tmwangi/elimu/core/report"
	"github.com/tmwangi/elimu/core/user"
	emailsvc "github.com/tmwangi/elimu/services/email"
)

func TestCourseApi_create(t *testing.T) {
	env := setup(t)

	student := env.createUser(t, "Student", "student", "student@test.cd", "Str0ngPwd!", nil)
	teacher := env.createUser(t, "Teacher", "teacher", "teacher@test.cd", "Str0ngPwd!", []string{user.RoleTeacher})

	tests := []httpTest{
		{
			name:     "unauthed",
			body:     marchallObj(t, course.NewCourse{Name: "Go", MaxParticipants: 5, TeacherID: teacher.ID}),
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "student forbidden",
			token:    getToken(t, student),
			body:     marchallObj(t, course.NewCourse{Name: "Go", MaxParticipants: 5, TeacherID: teacher.ID}),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "missing name",
			token:    getToken(t, teacher),
			body:     marchallObj(t, course.NewCourse{MaxParticipants: 5}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "zero max participants",
			token:    getToken(t, teacher),
			body:     []byte(`{"name": "Go", "max_participants": 0}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "teacher ok; defaults to own teacher_id",
			token:    getToken(t, teacher),
			body:     []byte(`{"name": "Go", "max_participants": 5}`),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/courses", tt.token, tt.body)
			env.server.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusCreated {
				return
			}
			var crs course.Course
			if err := json.Unmarshal(rec.Body.Bytes(), &crs); err != nil {
				t.Fatalf("unmarshalling response: %v", err)
			}
			if crs.TeacherID != teacher.ID {
				t.Errorf("TeacherID = %v; want %v", crs.TeacherID, teacher.ID)
			}
		})
	}
}

func TestCourseApi_enroll(t *testing.T) {
	env := setup(t)

	teacher := env.createUser(t, "Teacher", "teacher", "teacher@test.cd", "Str0ngPwd!", []string{user.RoleTeacher})
	crs := env.createCourse(t, "Go", 2, teacher.ID)
	tiny := env.createCourse(t, "Rust", 1, teacher.ID)

	alice := env.createUser(t, "Alice", "alice", "alice@test.cd", "Str0ngPwd!", nil)
	bob := env.createUser(t, "Bob", "bob", "bob@test.cd", "Str0ngPwd!", nil)
	env.enroll(t, bob.ID, tiny.ID) // fills the tiny course

	tests := []httpTest{
		{name: "unauthed", path: "/v1/courses/" + crs.ID + "/enroll", wantCode: http.StatusUnauthorized},
		{name: "course not found", path: "/v1/courses/lol/enroll", token: getToken(t, alice), wantCode: http.StatusNotFound},
		{name: "ok", path: "/v1/courses/" + crs.ID + "/enroll", token: getToken(t, alice), wantCode: http.StatusCreated},
		{name: "already enrolled", path: "/v1/courses/" + crs.ID + "/enroll", token: getToken(t, alice), wantCode: http.StatusConflict},
		{name: "course full", path: "/v1/courses/" + tiny.ID + "/enroll", token: getToken(t, alice), wantCode: http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, tt.path, tt.token)
			env.server.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusCreated {
				return
			}
			var mbr course.Member
			if err := json.Unmarshal(rec.Body.Bytes(), &mbr); err != nil {
				t.Fatalf("unmarshalling response: %v", err)
			}
			if mbr.UserID != alice.ID || mbr.CourseID != crs.ID || mbr.Role != course.MemberRoleStudent {
				t.Errorf("unexpected member: %+v", mbr)
			}
		})
	}
}

func TestCourseApi_availableContents(t *testing.T) {
	env := setup(t)

	teacher := env.createUser(t, "Teacher", "teacher", "teacher@test.cd", "Str0ngPwd!", []string{user.RoleTeacher})
	crs := env.createCourse(t, "Go", 5, teacher.ID)

	released := env.createContent(t, crs.ID, "Basics", time.Now().UTC().Add(-time.Hour))
	_ = env.createContent(t, crs.ID, "Future", time.Now().UTC().Add(time.Hour))

	alice := env.createUser(t, "Alice", "alice", "alice@test.cd", "Str0ngPwd!", nil)

	req, rec := newAuthRequest(http.MethodGet, "/v1/courses/"+crs.ID+"/contents", getToken(t, alice))
	env.server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var contents []course.Content
	if err := json.Unmarshal(rec.Body.Bytes(), &contents); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("len(contents) = %d; want 1", len(contents))
	}
	if contents[0].ID != released.ID {
		t.Errorf("contents[0].ID = %v; want %v", contents[0].ID, released.ID)
	}

	// the unscoped listing spans all courses
	req, rec = newAuthRequest(http.MethodGet, "/v1/contents", getToken(t, alice))
	env.server.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marchallList(t, released),
	}, rec)
}

func TestCourseApi_analytics(t *testing.T) {
	env := setup(t)

	teacher := env.createUser(t, "Teacher", "teacher", "teacher@test.cd", "Str0ngPwd!", []string{user.RoleTeacher})
	crs := env.createCourse(t, "Go", 5, teacher.ID)

	cnt1 := env.createContent(t, crs.ID, "Basics", time.Time{})
	cnt2 := env.createContent(t, crs.ID, "Slices", time.Time{})
	env.createContent(t, crs.ID, "Maps", time.Time{})

	alice := env.createUser(t, "Alice", "alice", "alice@test.cd", "Str0ngPwd!", nil)
	mbr := env.enroll(t, alice.ID, crs.ID)

	ctx := context.Background()
	for i, cnt := range []course.Content{cnt1, cnt1, cnt2} {
		nc := comment.NewComment{ContentID: cnt.ID, Text: fmt.Sprintf("comment %d", i)}
		if _, err := env.cmtSvc.Submit(ctx, mbr.ID, nc); err != nil {
			t.Fatalf("cmtSvc.Submit(): %v", err)
		}
	}

	tests := []httpTest{
		{name: "student forbidden", token: getToken(t, alice), wantCode: http.StatusForbidden},
		{
			name:     "teacher ok",
			token:    getToken(t, teacher),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, report.CourseAnalytics{
				CourseName:            crs.Name,
				TotalStudents:         1,
				TotalContents:         3,
				TotalComments:         3,
				AvgCommentsPerContent: 1,
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/courses/"+crs.ID+"/analytics", tt.token)
			env.server.ServeHTTP(rec, req)
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			} else if rec.Code != tt.wantCode {
				t.Errorf("code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}

func TestCourseApi_certificate(t *testing.T) {
	env := setup(t)

	teacher := env.createUser(t, "Teacher", "teacher", "teacher@test.cd", "Str0ngPwd!", []string{user.RoleTeacher})
	crs := env.createCourse(t, "Go", 5, teacher.ID)
	cnt1 := env.createContent(t, crs.ID, "Basics", time.Time{})
	cnt2 := env.createContent(t, crs.ID, "Slices", time.Time{})

	alice := env.createUser(t, "Alice", "alice", "alice@test.cd", "Str0ngPwd!", nil)
	bob := env.createUser(t, "Bob", "bob", "bob@test.cd", "Str0ngPwd!", nil)
	env.enroll(t, alice.ID, crs.ID)

	path := "/v1/courses/" + crs.ID + "/certificate"
	ctx := context.Background()

	t.Run("not enrolled", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path, getToken(t, bob))
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("course not completed", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path, getToken(t, alice))
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("completed", func(t *testing.T) {
		for _, cnt := range []course.Content{cnt1, cnt2} {
			if _, _, err := env.trkSvc.Mark(ctx, alice.ID, cnt.ID); err != nil {
				t.Fatalf("trkSvc.Mark(): %v", err)
			}
		}

		req, rec := newAuthRequest(http.MethodGet, path, getToken(t, alice))
		env.server.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		if ctype := rec.Header().Get(echo.HeaderContentType); ctype != "image/png" {
			t.Errorf("Content-Type = %v; want image/png", ctype)
		}
		if rec.Body.Len() == 0 {
			t.Error("expected a non-empty document")
		}

		var emailed bool
		for _, m := range emailsvc.SentMessages {
			if m.TemplateName == "certificate" && m.HasAttachments() {
				emailed = true
				break
			}
		}
		if !emailed {
			t.Error("expected the certificate email to be sent")
		}
	})
}
