package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/mustangstride/stride/core"
	"github.com/mustangstride/stride/core/study"
)

type testLogger struct{}

func (testLogger) Enable(bool)                  {}
func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

type cannedInsight struct{ text string }

func (i cannedInsight) Analyze(context.Context, []study.Assignment, []study.Submission) (string, error) {
	return i.text, nil
}

func setup(t *testing.T) (Server, *study.Store) {
	t.Helper()
	core.Conf.Set("debug", false)
	core.Conf.Set("testMode", true)

	store := study.NewStore()
	svc := study.NewService(store, study.PlainVerifier{}, nil, testLogger{})
	srv := NewServer(&Options{
		DisableReqLogs: true,
		StudySvc:       svc,
		InsightSvc:     cannedInsight{text: "all quiet"},
		Logger:         testLogger{},
	})
	return srv, store
}

func tokenFor(t *testing.T, usr study.User) string {
	t.Helper()
	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		t.Fatalf("tokenFor() failed: %v", err)
	}
	return token
}

func doRequest(srv Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func addStudent(store *study.Store, name, pwd, section string) study.User {
	return store.AddUser(study.User{
		Name: name, Username: study.UsernameFromName(name), Password: pwd,
		Role: study.RoleStudent, Section: section,
	})
}

func addTeacher(store *study.Store, name, section, subject string) study.User {
	return store.AddUser(study.User{
		Name: name, Username: study.UsernameFromName(name), Password: "pwd",
		Role: study.RoleTeacher, Section: section, Subject: subject,
	})
}

func addAdmin(store *study.Store, name string) study.User {
	return store.AddUser(study.User{
		Name: name, Username: study.UsernameFromName(name), Password: "pwd",
		Role: study.RoleAdmin, Section: study.SectionNone,
	})
}

func Test_authApi_login(t *testing.T) {
	srv, store := setup(t)
	addStudent(store, "Ana Reyes", "s3cret", study.SectionEinsteinG11)

	t.Run("ok", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPost, "/v1/login", "", echo.Map{"name": "ana reyes", "password": "s3cret"})
		if !assert.Equal(t, http.StatusOK, rec.Code) {
			t.Log(rec.Body.String())
			return
		}
		var resp LoginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "Ana Reyes", resp.User.Name)

		if usr, ok := store.SessionUser(); !ok || usr.Name != "Ana Reyes" {
			t.Error("login did not set the session user")
		}
	})

	t.Run("wrong credentials", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPost, "/v1/login", "", echo.Map{"name": "ana reyes", "password": "guess"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "3", rec.Header().Get("Retry-After"))
		assert.Contains(t, rec.Body.String(), "sorry, wrong credentials")
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPost, "/v1/login", "", echo.Map{"name": "ana reyes"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "password")
	})
}

func Test_authApi_logout(t *testing.T) {
	srv, store := setup(t)
	usr := addStudent(store, "Ana Reyes", "s3cret", study.SectionEinsteinG11)
	store.SetSessionUser(usr)

	rec := doRequest(srv, http.MethodPost, "/v1/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(srv, http.MethodPost, "/v1/logout", tokenFor(t, usr), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	if _, ok := store.SessionUser(); ok {
		t.Error("logout left a session behind")
	}
}

func Test_userApi_state(t *testing.T) {
	srv, store := setup(t)
	usr := addStudent(store, "Ana Reyes", "s3cret", study.SectionEinsteinG11)
	teacher := addTeacher(store, "Ms. Cho", study.SectionEinsteinG11, "Physics")
	store.AddAssignment(study.Assignment{
		Title: "Lab Report", Section: teacher.Section,
		TeacherID: teacher.ID, TeacherName: teacher.Name, Subject: teacher.Subject,
		DueDate: time.Now().Add(24 * time.Hour),
	})
	store.SetSessionUser(usr)

	rec := doRequest(srv, http.MethodGet, "/v1/state", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/v1/state", tokenFor(t, usr), nil)
	if !assert.Equal(t, http.StatusOK, rec.Code) {
		t.Log(rec.Body.String())
		return
	}
	var resp StateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	assert.Len(t, resp.Users, 2)
	assert.Len(t, resp.Assignments, 1)
	assert.Len(t, resp.Submissions, 0)
	if assert.NotNil(t, resp.User) {
		assert.Equal(t, usr.ID, resp.User.ID)
	}
}

func Test_userApi_adminGate(t *testing.T) {
	srv, store := setup(t)
	student := addStudent(store, "Ana Reyes", "s3cret", study.SectionEinsteinG11)
	admin := addAdmin(store, "Root")

	tests := []struct {
		name     string
		token    string
		wantCode int
	}{
		{name: "anonymous", wantCode: http.StatusUnauthorized},
		{name: "student", token: tokenFor(t, student), wantCode: http.StatusForbidden},
		{name: "admin", token: tokenFor(t, admin), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(srv, http.MethodGet, "/v1/users", tt.token, nil)
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func Test_userApi_crud(t *testing.T) {
	srv, store := setup(t)
	admin := addAdmin(store, "Root")
	token := tokenFor(t, admin)

	// create
	rec := doRequest(srv, http.MethodPost, "/v1/users", token, echo.Map{
		"name": "Ben Cruz", "password": "pwd", "role": study.RoleStudent, "section": study.SectionGalileiG12,
	})
	if !assert.Equal(t, http.StatusCreated, rec.Code) {
		t.Log(rec.Body.String())
		return
	}
	var created study.User
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	assert.Equal(t, "ben_cruz", created.Username)

	// create: validation errors come back as a field map
	rec = doRequest(srv, http.MethodPost, "/v1/users", token, echo.Map{"name": "No Password"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "password")

	// update
	rec = doRequest(srv, http.MethodPatch, "/v1/users/"+created.ID, token, echo.Map{"section": study.SectionEinsteinG11})
	assert.Equal(t, http.StatusOK, rec.Code)
	if usr, _ := store.GetUser(created.ID); usr.Section != study.SectionEinsteinG11 {
		t.Errorf("update did not apply: %+v", usr)
	}

	// update: unknown ID
	rec = doRequest(srv, http.MethodPatch, "/v1/users/missing", token, echo.Map{"name": "X"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// password reset
	rec = doRequest(srv, http.MethodPut, "/v1/users/"+created.ID+"/password", token, PasswordResetRequest{Password: "new"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	if usr, _ := store.GetUser(created.ID); usr.Password != "new" {
		t.Error("password reset did not apply")
	}

	// destroy
	rec = doRequest(srv, http.MethodDelete, "/v1/users/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	if _, ok := store.GetUser(created.ID); ok {
		t.Error("destroy left the user behind")
	}
}

func Test_assignmentApi(t *testing.T) {
	srv, store := setup(t)
	teacher := addTeacher(store, "Ms. Cho", study.SectionEinsteinG11, "Physics")
	otherTeacher := addTeacher(store, "Mr. Uy", study.SectionGalileiG12, "History")
	student := addStudent(store, "Ana Reyes", "s3cret", study.SectionEinsteinG11)
	due := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)

	// students cannot author
	rec := doRequest(srv, http.MethodPost, "/v1/assignments", tokenFor(t, student), echo.Map{"title": "Sneaky", "dueDate": due})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// teachers can
	rec = doRequest(srv, http.MethodPost, "/v1/assignments", tokenFor(t, teacher), echo.Map{"title": "Lab Report", "dueDate": due})
	if !assert.Equal(t, http.StatusCreated, rec.Code) {
		t.Log(rec.Body.String())
		return
	}
	var agn study.Assignment
	if err := json.Unmarshal(rec.Body.Bytes(), &agn); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	assert.Equal(t, teacher.ID, agn.TeacherID)
	assert.Equal(t, study.SectionEinsteinG11, agn.Section)

	rec = doRequest(srv, http.MethodPost, "/v1/assignments", tokenFor(t, otherTeacher), echo.Map{"title": "Essay", "dueDate": due})
	assert.Equal(t, http.StatusCreated, rec.Code)

	// query scoping: a teacher sees only what they authored
	rec = doRequest(srv, http.MethodGet, "/v1/assignments", tokenFor(t, teacher), nil)
	var agns []study.Assignment
	_ = json.Unmarshal(rec.Body.Bytes(), &agns)
	if assert.Len(t, agns, 1) {
		assert.Equal(t, agn.ID, agns[0].ID)
	}

	// a student sees their section
	rec = doRequest(srv, http.MethodGet, "/v1/assignments", tokenFor(t, student), nil)
	agns = nil
	_ = json.Unmarshal(rec.Body.Bytes(), &agns)
	if assert.Len(t, agns, 1) {
		assert.Equal(t, study.SectionEinsteinG11, agns[0].Section)
	}

	// deadline extension
	newDue := due.Add(72 * time.Hour)
	rec = doRequest(srv, http.MethodPatch, "/v1/assignments/"+agn.ID, tokenFor(t, teacher), echo.Map{"dueDate": newDue})
	assert.Equal(t, http.StatusOK, rec.Code)
	if got, _ := store.GetAssignment(agn.ID); !got.DueDate.Equal(newDue) {
		t.Errorf("due = %v, want %v", got.DueDate, newDue)
	}

	// retract cascades
	store.AddSubmission(study.Submission{AssignmentID: agn.ID, StudentID: student.ID})
	rec = doRequest(srv, http.MethodDelete, "/v1/assignments/"+agn.ID, tokenFor(t, teacher), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	if len(store.Submissions()) != 0 {
		t.Error("retract did not cascade to submissions")
	}
}

func Test_submissionApi(t *testing.T) {
	srv, store := setup(t)
	teacher := addTeacher(store, "Ms. Cho", study.SectionEinsteinG11, "Physics")
	student := addStudent(store, "Ana Reyes", "s3cret", study.SectionEinsteinG11)
	agn := store.AddAssignment(study.Assignment{
		Title: "Lab Report", Section: teacher.Section,
		TeacherID: teacher.ID, TeacherName: teacher.Name, Subject: teacher.Subject,
		DueDate: time.Now().Add(24 * time.Hour),
	})
	token := tokenFor(t, student)
	file := study.SubmissionFile{Name: "answers.pdf", Type: "application/pdf", Data: "data:application/pdf;base64,JVBERg=="}

	// teachers cannot submit
	rec := doRequest(srv, http.MethodPost, "/v1/submissions", tokenFor(t, teacher), echo.Map{"assignmentId": agn.ID})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// a submission without files is rejected
	rec = doRequest(srv, http.MethodPost, "/v1/submissions", token, echo.Map{"assignmentId": agn.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "files")
	assert.Len(t, store.Submissions(), 0)

	// pending before submitting
	rec = doRequest(srv, http.MethodGet, "/v1/me/pending", token, nil)
	var pending []study.Assignment
	_ = json.Unmarshal(rec.Body.Bytes(), &pending)
	assert.Len(t, pending, 1)

	// happy path
	rec = doRequest(srv, http.MethodPost, "/v1/submissions", token, echo.Map{
		"assignmentId": agn.ID, "files": []study.SubmissionFile{file}, "textResponse": "done",
	})
	if !assert.Equal(t, http.StatusCreated, rec.Code) {
		t.Log(rec.Body.String())
		return
	}
	var sub study.Submission
	if err := json.Unmarshal(rec.Body.Bytes(), &sub); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	assert.Equal(t, student.ID, sub.StudentID)
	assert.Equal(t, study.StatusOnTime, sub.Status)

	// unknown assignment
	rec = doRequest(srv, http.MethodPost, "/v1/submissions", token, echo.Map{
		"assignmentId": "missing", "files": []study.SubmissionFile{file},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// completed after submitting
	rec = doRequest(srv, http.MethodGet, "/v1/me/completed", token, nil)
	var completed []study.Assignment
	_ = json.Unmarshal(rec.Body.Bytes(), &completed)
	if assert.Len(t, completed, 1) {
		assert.Equal(t, agn.ID, completed[0].ID)
	}
	rec = doRequest(srv, http.MethodGet, "/v1/me/pending", token, nil)
	pending = nil
	_ = json.Unmarshal(rec.Body.Bytes(), &pending)
	assert.Len(t, pending, 0)

	// teachers list an assignment's submissions
	rec = doRequest(srv, http.MethodGet, "/v1/assignments/"+agn.ID+"/submissions", tokenFor(t, teacher), nil)
	var subs []study.Submission
	_ = json.Unmarshal(rec.Body.Bytes(), &subs)
	assert.Len(t, subs, 1)
}

func Test_submissionApi_multipart(t *testing.T) {
	srv, store := setup(t)
	teacher := addTeacher(store, "Ms. Cho", study.SectionEinsteinG11, "Physics")
	student := addStudent(store, "Ana Reyes", "s3cret", study.SectionEinsteinG11)
	agn := store.AddAssignment(study.Assignment{
		Title: "Lab Report", Section: teacher.Section,
		TeacherID: teacher.ID, TeacherName: teacher.Name, Subject: teacher.Subject,
		DueDate: time.Now().Add(24 * time.Hour),
	})
	token := tokenFor(t, student)

	newForm := func(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
		t.Helper()
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for k, v := range fields {
			_ = w.WriteField(k, v)
		}
		for name, content := range files {
			fw, err := w.CreateFormFile("files", name)
			if err != nil {
				t.Fatalf("CreateFormFile() failed: %v", err)
			}
			_, _ = fw.Write([]byte(content))
		}
		_ = w.Close()
		return &buf, w.FormDataContentType()
	}

	doMultipart := func(body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/submissions", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		return rec
	}

	t.Run("raw parts are encoded server-side", func(t *testing.T) {
		body, contentType := newForm(t,
			map[string]string{"assignmentId": agn.ID, "textResponse": "done"},
			map[string]string{"notes.txt": "hello"},
		)
		rec := doMultipart(body, contentType)
		if !assert.Equal(t, http.StatusCreated, rec.Code) {
			t.Log(rec.Body.String())
			return
		}
		var sub study.Submission
		if err := json.Unmarshal(rec.Body.Bytes(), &sub); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		assert.Equal(t, "done", sub.TextResponse)
		if assert.Len(t, sub.Files, 1) {
			assert.Equal(t, "notes.txt", sub.Files[0].Name)
			// "hello" -> aGVsbG8=
			assert.True(t, strings.HasSuffix(sub.Files[0].Data, ";base64,aGVsbG8="), sub.Files[0].Data)
		}
	})

	t.Run("no file parts is rejected before mutation", func(t *testing.T) {
		before := len(store.Submissions())
		body, contentType := newForm(t, map[string]string{"assignmentId": agn.ID}, nil)
		rec := doMultipart(body, contentType)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "files")
		assert.Len(t, store.Submissions(), before)
	})
}

func Test_statsApi(t *testing.T) {
	srv, store := setup(t)
	admin := addAdmin(store, "Root")
	student := addStudent(store, "Ana Reyes", "s3cret", study.SectionEinsteinG11)
	agn := store.AddAssignment(study.Assignment{Title: "Lab Report", Section: study.SectionEinsteinG11, DueDate: time.Now()})
	store.AddSubmission(study.Submission{AssignmentID: agn.ID, StudentID: student.ID, Status: study.StatusLate})

	rec := doRequest(srv, http.MethodGet, "/v1/stats/"+url.PathEscape(study.SectionEinsteinG11), tokenFor(t, student), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/v1/stats/"+url.PathEscape(study.SectionEinsteinG11), tokenFor(t, admin), nil)
	if !assert.Equal(t, http.StatusOK, rec.Code) {
		t.Log(rec.Body.String())
		return
	}
	var stats study.SectionStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	want := study.SectionStats{Section: study.SectionEinsteinG11, Expected: 1, Late: 1, Total: 1, Rate: 100}
	assert.Equal(t, want, stats)

	rec = doRequest(srv, http.MethodGet, "/v1/insight", tokenFor(t, admin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp InsightResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.Equal(t, "all quiet", resp.Insight)
}
