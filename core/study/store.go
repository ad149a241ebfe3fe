package study

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Durable store keys. They match the key names the previous client wrote, so
// an existing local store hydrates unchanged.
const (
	KeySessionUser = "research_user"
	KeyUsers       = "research_users"
	KeyAssignments = "research_assignments"
	KeySubmissions = "research_submissions"
)

// Store is the single in-memory source of truth: the three entity collections
// plus the active session user. Mutations are synchronous and atomic relative
// to each other; reads return copies.
//
// The store performs defaulting only, no business validation: callers
// (Service) are the trusted validation layer. After every mutation the
// persist hook fires, outside the lock, naming the collections touched.
//
// Ordering is part of the contract: users append, assignments and submissions
// prepend (most-recent-first).
type Store struct {
	mu          sync.RWMutex
	users       []User
	assignments []Assignment
	submissions []Submission
	session     *User

	persist func(keys ...string)

	nowFunc func() time.Time // mockable
	idFunc  func() string    // mockable
}

func NewStore() *Store {
	return &Store{
		nowFunc: func() time.Time { return time.Now().UTC() },
		idFunc:  uuid.NewString,
	}
}

// OnPersist registers the write-back hook. At most one hook is supported; the
// hydration controller owns it.
func (s *Store) OnPersist(fn func(keys ...string)) {
	s.mu.Lock()
	s.persist = fn
	s.mu.Unlock()
}

func (s *Store) notify(keys ...string) {
	s.mu.RLock()
	fn := s.persist
	s.mu.RUnlock()
	if fn != nil {
		fn(keys...)
	}
}

// Snapshots: deep copies, down to the attached file slices, so callers can
// never write through to store state.

func (s *Store) Users() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, len(s.users))
	copy(out, s.users)
	return out
}

func (s *Store) Assignments() []Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Assignment, len(s.assignments))
	for i, agn := range s.assignments {
		agn.Attachments = copyFiles(agn.Attachments)
		out[i] = agn
	}
	return out
}

func (s *Store) Submissions() []Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Submission, len(s.submissions))
	for i, sub := range s.submissions {
		sub.Files = copyFiles(sub.Files)
		out[i] = sub
	}
	return out
}

func copyFiles(files []SubmissionFile) []SubmissionFile {
	if files == nil {
		return nil
	}
	out := make([]SubmissionFile, len(files))
	copy(out, files)
	return out
}

// SessionUser returns a copy of the active session user, if any.
func (s *Store) SessionUser() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return User{}, false
	}
	return *s.session, true
}

// User mutations

// AddUser appends a user. A missing ID gets a fresh one; role defaults to
// STUDENT and section to NONE.
func (s *Store) AddUser(usr User) User {
	s.mu.Lock()
	if usr.ID == "" {
		usr.ID = s.idFunc()
	}
	if usr.Role == "" {
		usr.Role = RoleStudent
	}
	if usr.Section == "" {
		usr.Section = SectionNone
	}
	s.users = append(s.users, usr)
	s.mu.Unlock()

	s.notify(KeyUsers)
	return usr
}

// GetUser looks a user up by ID.
func (s *Store) GetUser(id string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, usr := range s.users {
		if usr.ID == id {
			return usr, true
		}
	}
	return User{}, false
}

// UpdateUser merges the set fields of upd into the matching user in place.
// A miss is a silent no-op. The session copy, if it points at the same user,
// is deliberately left stale until the next login.
func (s *Store) UpdateUser(id string, upd UpdateUser) (User, bool) {
	s.mu.Lock()
	var out User
	var found bool
	for i := range s.users {
		if s.users[i].ID != id {
			continue
		}
		usr := &s.users[i]
		if upd.Name != "" {
			usr.Name = upd.Name
		}
		if upd.Username != "" {
			usr.Username = upd.Username
		}
		if upd.Password != "" {
			usr.Password = upd.Password
		}
		if upd.Email != "" {
			usr.Email = upd.Email
		}
		if upd.Role != "" {
			usr.Role = upd.Role
		}
		if upd.Section != "" {
			usr.Section = upd.Section
		}
		if upd.Subject != "" {
			usr.Subject = upd.Subject
		}
		out, found = *usr, true
		break
	}
	s.mu.Unlock()

	if found {
		s.notify(KeyUsers)
	}
	return out, found
}

// DeleteUser removes the user with the given ID. A miss is a silent no-op.
// Assignments and submissions are not touched; denormalized names remain.
func (s *Store) DeleteUser(id string) {
	s.mu.Lock()
	var found bool
	kept := s.users[:0]
	for _, usr := range s.users {
		if usr.ID == id {
			found = true
			continue
		}
		kept = append(kept, usr)
	}
	s.users = kept
	s.mu.Unlock()

	if found {
		s.notify(KeyUsers)
	}
}

// Assignment mutations

// AddAssignment prepends an assignment (most-recent-first). A missing ID gets
// a fresh one, a zero CreatedAt is stamped now.
func (s *Store) AddAssignment(agn Assignment) Assignment {
	s.mu.Lock()
	if agn.ID == "" {
		agn.ID = s.idFunc()
	}
	if agn.CreatedAt.IsZero() {
		agn.CreatedAt = s.nowFunc()
	}
	if agn.Attachments == nil {
		agn.Attachments = []SubmissionFile{}
	}
	s.assignments = append([]Assignment{agn}, s.assignments...)
	s.mu.Unlock()

	s.notify(KeyAssignments)
	return agn
}

// GetAssignment looks an assignment up by ID.
func (s *Store) GetAssignment(id string) (Assignment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, agn := range s.assignments {
		if agn.ID == id {
			agn.Attachments = copyFiles(agn.Attachments)
			return agn, true
		}
	}
	return Assignment{}, false
}

// UpdateAssignment merges the set fields of upd into the matching assignment
// in place. A miss is a silent no-op.
func (s *Store) UpdateAssignment(id string, upd AssignmentUpdate) (Assignment, bool) {
	s.mu.Lock()
	var out Assignment
	var found bool
	for i := range s.assignments {
		if s.assignments[i].ID != id {
			continue
		}
		agn := &s.assignments[i]
		if upd.Title != "" {
			agn.Title = upd.Title
		}
		if upd.Description != "" {
			agn.Description = upd.Description
		}
		if !upd.DueDate.IsZero() {
			agn.DueDate = upd.DueDate
		}
		out, found = *agn, true
		break
	}
	s.mu.Unlock()

	if found {
		s.notify(KeyAssignments)
	}
	return out, found
}

// DeleteAssignment removes the assignment and, under the same lock
// acquisition, every submission referencing it. Callers never observe the
// intermediate state.
func (s *Store) DeleteAssignment(id string) {
	s.mu.Lock()
	var found bool
	keptAgn := s.assignments[:0]
	for _, agn := range s.assignments {
		if agn.ID == id {
			found = true
			continue
		}
		keptAgn = append(keptAgn, agn)
	}
	s.assignments = keptAgn

	if found {
		keptSub := s.submissions[:0]
		for _, sub := range s.submissions {
			if sub.AssignmentID == id {
				continue
			}
			keptSub = append(keptSub, sub)
		}
		s.submissions = keptSub
	}
	s.mu.Unlock()

	if found {
		s.notify(KeyAssignments, KeySubmissions)
	}
}

// Submission mutations

// AddSubmission prepends a submission (most-recent-first). A missing ID gets
// a fresh one; SubmittedAt defaults to now and Status to ON_TIME. Intake
// validation (non-empty files, status classification) is the caller's job.
func (s *Store) AddSubmission(sub Submission) Submission {
	s.mu.Lock()
	if sub.ID == "" {
		sub.ID = s.idFunc()
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = s.nowFunc()
	}
	if sub.Status == "" {
		sub.Status = StatusOnTime
	}
	s.submissions = append([]Submission{sub}, s.submissions...)
	s.mu.Unlock()

	s.notify(KeySubmissions)
	return sub
}

// Session

// SetSessionUser establishes the active session as a copy of usr.
func (s *Store) SetSessionUser(usr User) {
	s.mu.Lock()
	s.session = &usr
	s.mu.Unlock()

	s.notify(KeySessionUser)
}

// ClearSessionUser drops the active session.
func (s *Store) ClearSessionUser() {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()

	s.notify(KeySessionUser)
}

// Hydration seams: each replaces one collection wholesale without firing the
// persist hook. Only the hydration controller calls these.

func (s *Store) ReplaceUsers(users []User) {
	s.mu.Lock()
	s.users = users
	s.mu.Unlock()
}

func (s *Store) ReplaceAssignments(assignments []Assignment) {
	s.mu.Lock()
	s.assignments = assignments
	s.mu.Unlock()
}

func (s *Store) ReplaceSubmissions(submissions []Submission) {
	s.mu.Lock()
	s.submissions = submissions
	s.mu.Unlock()
}

func (s *Store) ReplaceSessionUser(usr *User) {
	s.mu.Lock()
	s.session = usr
	s.mu.Unlock()
}
