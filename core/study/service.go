package study

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/mustangstride/stride/core"
)

var (
	// errors
	ErrNotFound = errors.New("not found")
	ErrNoFiles  = errors.New("a submission requires at least one file")
)

// Service wraps the Store with the policy the store itself does not enforce:
// input validation, intake rules, status classification and notifications.
// It is the only write surface the presentation layer sees.
type Service struct {
	store    *Store
	verifier CredentialVerifier
	mailSvc  core.EmailService
	logger   core.Logger

	nowFunc func() time.Time // mockable
}

func NewService(store *Store, verifier CredentialVerifier, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{
		store:    store,
		verifier: verifier,
		mailSvc:  mailSvc,
		logger:   logger,
		nowFunc:  func() time.Time { return time.Now().UTC() },
	}
}

// Store exposes the read snapshots to the presentation boundary.
func (svc *Service) Store() *Store { return svc.store }

// Users

// RegisterUser validates and adds a participant. The username defaults to a
// normalized form of the name when unset. Duplicate names are permitted; the
// first match wins at login.
func (svc *Service) RegisterUser(nu NewUser) (User, error) {
	if err := nu.Validate(); err != nil {
		return User{}, err
	}
	usr := User{
		Name:     nu.Name,
		Username: nu.Username,
		Password: nu.Password,
		Email:    nu.Email,
		Role:     nu.Role,
		Section:  nu.Section,
		Subject:  nu.Subject,
	}
	if usr.Role == RoleAdmin {
		usr.Section = SectionNone
	}
	if !usr.IsTeacher() {
		usr.Subject = ""
	}
	return svc.store.AddUser(usr), nil
}

// ModifyUser merges set fields into the matching user. A missing ID is a
// silent no-op in the store; the service reports it so callers can decide.
func (svc *Service) ModifyUser(id string, uu UpdateUser) (User, error) {
	if err := uu.Validate(); err != nil {
		return User{}, err
	}
	usr, ok := svc.store.UpdateUser(id, uu)
	if !ok {
		return User{}, ErrNotFound
	}
	return usr, nil
}

// RemoveUser deletes the user. Assignments and submissions are not cascaded;
// orphaned denormalized names remain on purpose.
func (svc *Service) RemoveUser(id string) {
	svc.store.DeleteUser(id)
}

// ResetPassword replaces the user's credential.
func (svc *Service) ResetPassword(id, password string) error {
	if password == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "password", Error: "this field is required"})
	}
	if _, ok := svc.store.UpdateUser(id, UpdateUser{Password: password}); !ok {
		return ErrNotFound
	}
	return nil
}

// Assignments

// PostAssignment validates and prepends a new assignment authored by teacher,
// stamping section, teacher identity and subject from the acting user, then
// notifies the section's students (fire and forget).
func (svc *Service) PostAssignment(teacher User, na NewAssignment) (Assignment, error) {
	if err := na.Validate(); err != nil {
		return Assignment{}, err
	}
	if !teacher.IsTeacher() {
		return Assignment{}, core.NewValidationError(nil,
			core.FieldError{Field: "teacherId", Error: "assignments can only be posted by teachers"})
	}
	subject := teacher.Subject
	if subject == "" {
		subject = "General"
	}
	agn := svc.store.AddAssignment(Assignment{
		Title:       na.Title,
		Description: na.Description,
		DueDate:     na.DueDate,
		Section:     teacher.Section,
		TeacherID:   teacher.ID,
		TeacherName: teacher.Name,
		Subject:     subject,
		Attachments: na.Attachments,
	})
	svc.notifySection(agn)
	return agn, nil
}

// ExtendDeadline moves an assignment's due date.
func (svc *Service) ExtendDeadline(id string, due time.Time) (Assignment, error) {
	if due.IsZero() {
		return Assignment{}, core.NewValidationError(nil, core.FieldError{Field: "dueDate", Error: "this field is required"})
	}
	agn, ok := svc.store.UpdateAssignment(id, AssignmentUpdate{DueDate: due})
	if !ok {
		return Assignment{}, ErrNotFound
	}
	return agn, nil
}

// ModifyAssignment merges any set fields; deadline extension is the in-scope
// use but other fields are accepted.
func (svc *Service) ModifyAssignment(id string, au AssignmentUpdate) (Assignment, error) {
	if err := au.Validate(); err != nil {
		return Assignment{}, err
	}
	agn, ok := svc.store.UpdateAssignment(id, au)
	if !ok {
		return Assignment{}, ErrNotFound
	}
	return agn, nil
}

// RetractAssignment deletes the assignment and cascades to its submissions.
func (svc *Service) RetractAssignment(id string) {
	svc.store.DeleteAssignment(id)
}

// Submissions

// SubmitAssignment validates intake (a submission with zero files is rejected
// before any store mutation), classifies on-time/late against the due date at
// the time of the call, stamps the student's identity and prepends the
// submission.
func (svc *Service) SubmitAssignment(student User, ns NewSubmission) (Submission, error) {
	if err := ns.Validate(); err != nil {
		return Submission{}, err
	}
	if len(ns.Files) == 0 {
		return Submission{}, core.NewValidationError(ErrNoFiles, core.FieldError{Field: "files", Error: ErrNoFiles.Error()})
	}
	agn, ok := svc.store.GetAssignment(ns.AssignmentID)
	if !ok {
		return Submission{}, ErrNotFound
	}
	now := svc.nowFunc()
	return svc.store.AddSubmission(Submission{
		AssignmentID: agn.ID,
		StudentID:    student.ID,
		StudentName:  student.Name,
		SubmittedAt:  now,
		Files:        ns.Files,
		TextResponse: ns.TextResponse,
		Status:       Classify(now, agn.DueDate),
	}), nil
}

// notifySection emails the students of the assignment's section that have an
// email address on file. Sending is the mail service's concern and happens
// off the caller's goroutine.
func (svc *Service) notifySection(agn Assignment) {
	if svc.mailSvc == nil {
		return
	}
	var to []mail.Address
	for _, usr := range svc.store.Users() {
		if usr.IsStudent() && usr.Section == agn.Section && usr.Email != "" {
			to = append(to, mail.Address{Name: usr.Name, Address: usr.Email})
		}
	}
	if len(to) == 0 {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      to,
		Subject: fmt.Sprintf("New assignment: %s", agn.Title),
		Body: fmt.Sprintf(
			"%s posted %q for %s.\nDue: %s\n\n%s\n",
			agn.TeacherName, agn.Title, agn.Section, agn.DueDate.Format(time.RFC1123), agn.Description,
		),
	})
}
