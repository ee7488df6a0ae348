package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tmwangi/elimu/core"
	"github.com/tmwangi/elimu/core/comment"
	"github.com/tmwangi/elimu/core/course"
	"github.com/tmwangi/elimu/core/report"
	"github.com/tmwangi/elimu/core/track"
	"github.com/tmwangi/elimu/core/user"
	certsvc "github.com/tmwangi/elimu/services/certificate"
	emailsvc "github.com/tmwangi/elimu/services/email"
	dummydb "github.com/tmwangi/elimu/storage/database/dummy"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testEnv struct {
	server Server
	conf   *core.Config

	usrSvc user.ServiceInterface
	crsSvc course.ServiceInterface
	cmtSvc comment.ServiceInterface
	trkSvc track.ServiceInterface
	rptSvc report.ServiceInterface
}

func testConfig() *core.Config {
	return &core.Config{
		Env:                       "TEST",
		TestMode:                  true,
		AppName:                   "Elimu",
		SecretKey:                 []byte("secret"),
		FrontendBaseURL:           "http://localhost:3000",
		DefaultFromEmail:          mail.Address{Address: "noreply@localhost"},
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		Server: core.ServerConfig{
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}
}

type testLogger struct{ t *testing.T }

func (l testLogger) Debug(msg string, args ...interface{}) { l.t.Logf("DEBUG: %s %v", msg, args) }
func (l testLogger) Info(msg string, args ...interface{})  { l.t.Logf("INFO: %s %v", msg, args) }
func (l testLogger) Warn(msg string, args ...interface{})  { l.t.Logf("WARN: %s %v", msg, args) }
func (l testLogger) Error(msg string, args ...interface{}) { l.t.Logf("ERROR: %s %v", msg, args) }
func (l testLogger) Fatal(msg string, args ...interface{}) { l.t.Fatalf("FATAL: %s %v", msg, args) }

func setup(t *testing.T) *testEnv {
	conf := testConfig()

	// set up DB & repos
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewService(conf, dummydb.NewUserRepository(db), mailSvc)
	crsSvc := course.NewService(dummydb.NewCourseRepository(db))
	cmtSvc := comment.NewService(dummydb.NewCommentRepository(db))
	trkSvc := track.NewService(dummydb.NewTrackRepository(db))
	rptSvc := report.NewService(dummydb.NewReportRepository(db))

	validate, translator := core.NewValidator()
	user.RegisterAllRolesValidation(validate, translator)

	// set up server
	server := NewServer(
		&Options{
			DisableReqLogs: true,
			Conf:           conf,
			Logger:         testLogger{t},
			Validate:       validate,
			Translator:     translator,
			CertRenderer:   certsvc.NewPNGRenderer(conf),
			MailSvc:        mailSvc,
			UserSvc:        usrSvc,
			CourseSvc:      crsSvc,
			CommentSvc:     cmtSvc,
			TrackSvc:       trkSvc,
			ReportSvc:      rptSvc,
		},
	)

	return &testEnv{
		server: server,
		conf:   conf,
		usrSvc: usrSvc,
		crsSvc: crsSvc,
		cmtSvc: cmtSvc,
		trkSvc: trkSvc,
		rptSvc: rptSvc,
	}
}

// seed helpers

func (env *testEnv) createUser(t *testing.T, name, uname, email, pwd string, roles []string) user.User {
	t.Helper()

	usr, err := env.usrSvc.Create(context.Background(), user.NewUser{
		Name:            name,
		Username:        uname,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
		Roles:           roles,
	})
	if err != nil {
		t.Fatalf("usrSvc.Create(): %v", err)
	}
	return usr
}

func (env *testEnv) createCourse(t *testing.T, name string, maxParticipants int, teacherID string) course.Course {
	t.Helper()

	crs, err := env.crsSvc.Create(context.Background(), course.NewCourse{
		Name:            name,
		Description:     name + " description",
		MaxParticipants: maxParticipants,
		TeacherID:       teacherID,
	})
	if err != nil {
		t.Fatalf("crsSvc.Create(): %v", err)
	}
	return crs
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

func (env *testEnv) enroll(t *testing.T, userID, courseID string) course.Member {
	t.Helper()

	mbr, err := env.crsSvc.Enroll(context.Background(), userID, courseID)
	if err != nil {
		t.Fatalf("crsSvc.Enroll(): %v", err)
	}
	return mbr
}

func (env *testEnv) createComment(t *testing.T, memberID, contentID, text string, approved bool) comment.Comment {
	t.Helper()

	cmt, err := env.cmtSvc.Submit(context.Background(), memberID, comment.NewComment{ContentID: contentID, Text: text})
	if err != nil {
		t.Fatalf("cmtSvc.Submit(): %v", err)
	}
	if approved {
		if cmt, _, err = env.cmtSvc.Approve(context.Background(), cmt.ID); err != nil {
			t.Fatalf("cmtSvc.Approve(): %v", err)
		}
	}
	return cmt
}

func (env *testEnv) mark(t *testing.T, userID, contentID string) track.Completion {
	t.Helper()

	cpl, _, err := env.trkSvc.Mark(context.Background(), userID, contentID)
	if err != nil {
		t.Fatalf("trkSvc.Mark(): %v", err)
	}
	return cpl
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
