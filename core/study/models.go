package study

import (
	"strings"
	"time"

	"github.com/mustangstride/stride/core"
)

// Roles
const (
	RoleAdmin   = "ADMIN"
	RoleTeacher = "TEACHER"
	RoleStudent = "STUDENT"
)

// Sections: the fixed cohort set under study. Admins belong to no section.
const (
	SectionNone        = "NONE"
	SectionEinsteinG11 = "Einstein (G11)"
	SectionGalileiG12  = "Galilei (G12)"
)

// Submission statuses
const (
	StatusOnTime = "ON_TIME"
	StatusLate   = "LATE"
)

var (
	AllRoles    = []string{RoleAdmin, RoleTeacher, RoleStudent}
	AllSections = []string{SectionNone, SectionEinsteinG11, SectionGalileiG12}

	// Sections lists the cohorts a participant may be enrolled in.
	Sections = []string{SectionEinsteinG11, SectionGalileiG12}
)

// User is a tracker participant: an admin, a teacher or a student.
// The password is stored and compared in plaintext: existing durable stores
// written by previous versions carry plaintext credentials and must keep
// hydrating; see CredentialVerifier for the swap-in point.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
	Section  string `json:"section"`
	Subject  string `json:"subject,omitempty"` // teachers only
}

func (u User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u User) IsStudent() bool { return u.Role == RoleStudent }

// SubmissionFile is an opaque attachment. Data is a self-describing encoded
// payload (a data URL); the tracker never inspects file contents.
type SubmissionFile struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Data string `json:"data"`
}

// Assignment is a task posted by a teacher for one section.
type Assignment struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	DueDate     time.Time        `json:"dueDate"`
	Section     string           `json:"section"`
	TeacherID   string           `json:"teacherId"`
	TeacherName string           `json:"teacherName"`
	Subject     string           `json:"subject"`
	Attachments []SubmissionFile `json:"attachments"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// Submission is a student's one-shot answer to an assignment. Submissions are
// never updated or deleted directly; deleting the assignment cascades.
type Submission struct {
	ID           string           `json:"id"`
	AssignmentID string           `json:"assignmentId"`
	StudentID    string           `json:"studentId"`
	StudentName  string           `json:"studentName"`
	SubmittedAt  time.Time        `json:"submittedAt"`
	Files        []SubmissionFile `json:"files"`
	TextResponse string           `json:"textResponse,omitempty"`
	Status       string           `json:"status"`
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"omitempty,alphanum_"`
	Password string `json:"password" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Role     string `json:"role" validate:"omitempty,role"`
	Section  string `json:"section" validate:"omitempty,section"`
	Subject  string `json:"subject"`
}

func (nu *NewUser) Validate() error {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	if nu.Username == "" && nu.Name != "" {
		nu.Username = UsernameFromName(nu.Name)
	}
	return core.Validate.Struct(nu)
}

// UpdateUser defines what information may be provided to modify an existing
// User. Empty fields are left untouched.
type UpdateUser struct {
	Name     string `json:"name"`
	Username string `json:"username" validate:"omitempty,alphanum_"`
	Password string `json:"password"`
	Email    string `json:"email" validate:"omitempty,email"`
	Role     string `json:"role" validate:"omitempty,role"`
	Section  string `json:"section" validate:"omitempty,section"`
	Subject  string `json:"subject"`
}

func (uu *UpdateUser) Validate() error {
	uu.Name = core.CleanString(uu.Name)
	uu.Username = core.CleanString(uu.Username, true /* lower */)
	uu.Email = core.CleanString(uu.Email, true /* lower */)
	return core.Validate.Struct(uu)
}

// NewAssignment contains information needed to post a new Assignment.
// Section, teacher identity and subject are stamped from the posting teacher.
type NewAssignment struct {
	Title       string           `json:"title" validate:"required"`
	Description string           `json:"description"`
	DueDate     time.Time        `json:"dueDate" validate:"required"`
	Attachments []SubmissionFile `json:"attachments"`
}

func (na *NewAssignment) Validate() error {
	na.Title = core.CleanString(na.Title)
	return core.Validate.Struct(na)
}

// AssignmentUpdate carries the modifiable Assignment fields. The in-scope use
// is deadline extension; empty fields are left untouched.
type AssignmentUpdate struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate"`
}

func (au *AssignmentUpdate) Validate() error {
	au.Title = core.CleanString(au.Title)
	return core.Validate.Struct(au)
}

// NewSubmission contains information needed to hand in an assignment.
// Student identity, timestamp and the on-time/late status are stamped by the
// service at intake time.
type NewSubmission struct {
	AssignmentID string           `json:"assignmentId" validate:"required"`
	Files        []SubmissionFile `json:"files" validate:"required,min=1"`
	TextResponse string           `json:"textResponse"`
}

func (ns *NewSubmission) Validate() error {
	return core.Validate.Struct(ns)
}

// Credentials is a login request.
type Credentials struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate() error {
	c.Name = core.CleanString(c.Name)
	return core.Validate.Struct(c)
}

// UsernameFromName derives a default username: lowercased, inner whitespace
// collapsed to underscores.
func UsernameFromName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}
