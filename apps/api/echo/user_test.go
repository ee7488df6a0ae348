package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/tmwangi/elimu/core/user"
)

func TestUserApi_register(t *testing.T) {
	env := setup(t)

	teacher := env.createUser(t, "Teacher", "teacher", "teacher@test.cd", "Str0ngPwd!", []string{user.RoleTeacher})
	firstCourse := env.createCourse(t, "Intro to Go", 10, teacher.ID)

	tests := []httpTest{
		{
			name:     "empty body",
			body:     []byte("{}"),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "password mismatch",
			body: marchallObj(t, user.NewUser{
				Name: "Awe Mdr", Username: "awemdr", Email: "awe@test.cd",
				Password: "Str0ngPwd!", PasswordConfirm: "nope",
			}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "ok",
			body: marchallObj(t, user.NewUser{
				Name: "Awe Mdr", Username: "awemdr", Email: "awe@test.cd",
				Password: "Str0ngPwd!", PasswordConfirm: "Str0ngPwd!",
			}),
			wantCode: http.StatusCreated,
		},
		{
			name: "duplicate username",
			body: marchallObj(t, user.NewUser{
				Name: "Imposter", Username: "awemdr", Email: "other@test.cd",
				Password: "Str0ngPwd!", PasswordConfirm: "Str0ngPwd!",
			}),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/register", tt.body)
			env.server.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusCreated {
				return
			}

			var usr user.User
			if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
				t.Fatalf("unmarshalling response: %v", err)
			}
			if !usr.IsStudent() || usr.IsTeacher() || usr.IsAdmin() {
				t.Errorf("self-registered user roles = %v; want student only", usr.Roles)
			}

			// registration enrolls into the first course on record
			mbr, err := env.crsSvc.GetMember(context.Background(), usr.ID, firstCourse.ID)
			if err != nil {
				t.Fatalf("expected membership in first course: %v", err)
			}
			if mbr.UserID != usr.ID {
				t.Errorf("member.UserID = %v; want %v", mbr.UserID, usr.ID)
			}
		})
	}
}

func TestUserApi_login(t *testing.T) {
	env := setup(t)

	env.createUser(t, "Awe Mdr", "awemdr", "awe@test.cd", "Str0ngPwd!", nil)

	tests := []httpTest{
		{name: "empty body", body: []byte("{}"), wantCode: http.StatusBadRequest},
		{
			name:     "unknown user",
			body:     marchallObj(t, LoginRequest{Username: "lol", Password: "lol"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "wrong password",
			body:     marchallObj(t, LoginRequest{Username: "awemdr", Password: "nope"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "ok with username",
			body:     marchallObj(t, LoginRequest{Username: "awemdr", Password: "Str0ngPwd!"}),
			wantCode: http.StatusOK,
		},
		{
			name:     "ok with email",
			body:     marchallObj(t, LoginRequest{Username: "awe@test.cd", Password: "Str0ngPwd!"}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			env.server.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var res LoginResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
				t.Fatalf("unmarshalling response: %v", err)
			}
			if res.Token == "" {
				t.Error("expected a token")
			}
		})
	}
}

func TestUserApi_me(t *testing.T) {
	env := setup(t)

	usr := env.createUser(t, "Awe Mdr", "awemdr", "awe@test.cd", "Str0ngPwd!", nil)
	token := getToken(t, usr)

	tests := []httpTest{
		{name: "unauthed", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "ok", token: token, wantCode: http.StatusOK, wantData: marchallObj(t, usr)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/users/me", tt.token)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestUserApi_tokenRefresh(t *testing.T) {
	env := setup(t)

	usr := env.createUser(t, "Awe Mdr", "awemdr", "awe@test.cd", "Str0ngPwd!", nil)
	token := getToken(t, usr)

	req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", token)
	env.server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	var res LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if res.Token == "" {
		t.Error("expected a token")
	}
}

func TestUserApi_adminOnly(t *testing.T) {
	env := setup(t)

	student := env.createUser(t, "Student", "student", "student@test.cd", "Str0ngPwd!", nil)
	admin := env.createUser(t, "Admin", "admin", "admin@test.cd", "Str0ngPwd!", user.AllRoles)

	tests := []httpTest{
		{name: "query: unauthed", method: http.MethodGet, path: "/v1/users", wantCode: http.StatusUnauthorized},
		{name: "query: student forbidden", method: http.MethodGet, path: "/v1/users", token: getToken(t, student), wantCode: http.StatusForbidden},
		{name: "query: admin ok", method: http.MethodGet, path: "/v1/users", token: getToken(t, admin), wantCode: http.StatusOK},
		{name: "roles: admin ok", method: http.MethodGet, path: "/v1/users/roles", token: getToken(t, admin), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			env.server.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}
