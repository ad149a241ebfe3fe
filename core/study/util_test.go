package study

import (
	"sync"
	"testing"
	"time"
)

// testLogger discards everything; failures under test are asserted on
// directly, not logged.
type testLogger struct{}

func (testLogger) Enable(bool)                  {}
func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

func newTestService(t *testing.T) (*Service, *Store) {
	t.Helper()
	store := NewStore()
	svc := NewService(store, PlainVerifier{}, nil, testLogger{})
	return svc, store
}

func createStudent(t *testing.T, store *Store, name, pwd, section string) User {
	t.Helper()
	return store.AddUser(User{
		Name:     name,
		Username: UsernameFromName(name),
		Password: pwd,
		Role:     RoleStudent,
		Section:  section,
	})
}

func createTeacher(t *testing.T, store *Store, name, section, subject string) User {
	t.Helper()
	return store.AddUser(User{
		Name:     name,
		Username: UsernameFromName(name),
		Password: "pwd",
		Role:     RoleTeacher,
		Section:  section,
		Subject:  subject,
	})
}

func createAssignment(t *testing.T, store *Store, teacher User, title string, due time.Time) Assignment {
	t.Helper()
	return store.AddAssignment(Assignment{
		Title:       title,
		DueDate:     due,
		Section:     teacher.Section,
		TeacherID:   teacher.ID,
		TeacherName: teacher.Name,
		Subject:     teacher.Subject,
	})
}

func createSubmission(t *testing.T, store *Store, student User, assignmentID, status string) Submission {
	t.Helper()
	return store.AddSubmission(Submission{
		AssignmentID: assignmentID,
		StudentID:    student.ID,
		StudentName:  student.Name,
		Files:        []SubmissionFile{{Name: "answers.pdf", Type: "application/pdf", Data: "data:application/pdf;base64,JVBERg=="}},
		Status:       status,
	})
}

// keyRecorder captures persist hook invocations.
type keyRecorder struct {
	mu   sync.Mutex
	keys []string
}

func (r *keyRecorder) record(keys ...string) {
	r.mu.Lock()
	r.keys = append(r.keys, keys...)
	r.mu.Unlock()
}

func (r *keyRecorder) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r *keyRecorder) reset() {
	r.mu.Lock()
	r.keys = nil
	r.mu.Unlock()
}
