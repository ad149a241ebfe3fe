package study

import (
	"math"
	"time"
)

// Derived views: pure functions over collection snapshots, recomputed on
// every call. Collections are small and mutations infrequent, so there is no
// caching layer to invalidate.

// SectionStats summarizes submission volume for one section.
//
// Rate is a completion-rate percentage of submission volume against expected
// volume (assignments × enrolled students), not a per-student measure: a
// student submitting to several assignments counts once per assignment.
type SectionStats struct {
	Section  string `json:"section"`
	Expected int    `json:"expected"`
	OnTime   int    `json:"onTime"`
	Late     int    `json:"late"`
	Total    int    `json:"total"`
	Rate     int    `json:"rate"`
}

// ComputeSectionStats filters assignments and their submissions down to the
// section and derives the on-time/late counts and the completion rate.
// A section with zero expected submissions reports rate 0.
func ComputeSectionStats(users []User, assignments []Assignment, submissions []Submission, section string) SectionStats {
	stats := SectionStats{Section: section}

	sectionAgnIDs := make(map[string]bool)
	for _, agn := range assignments {
		if agn.Section == section {
			sectionAgnIDs[agn.ID] = true
		}
	}

	var studentCount int
	for _, usr := range users {
		if usr.IsStudent() && usr.Section == section {
			studentCount++
		}
	}
	stats.Expected = len(sectionAgnIDs) * studentCount

	for _, sub := range submissions {
		if !sectionAgnIDs[sub.AssignmentID] {
			continue
		}
		switch sub.Status {
		case StatusOnTime:
			stats.OnTime++
		case StatusLate:
			stats.Late++
		}
	}
	stats.Total = stats.OnTime + stats.Late

	if stats.Expected > 0 {
		stats.Rate = int(math.Round(100 * float64(stats.Total) / float64(stats.Expected)))
	}
	return stats
}

// SubmissionFor returns the first submission, in sequence order, matching
// both the student and the assignment. The store never enforces uniqueness of
// the (student, assignment) pair; all read paths use the first match.
func SubmissionFor(submissions []Submission, studentID, assignmentID string) (Submission, bool) {
	for _, sub := range submissions {
		if sub.StudentID == studentID && sub.AssignmentID == assignmentID {
			return sub, true
		}
	}
	return Submission{}, false
}

// PendingFor returns the assignments in the student's section that the
// student has not yet submitted to, preserving order.
func PendingFor(usr User, assignments []Assignment, submissions []Submission) []Assignment {
	pending := make([]Assignment, 0)
	for _, agn := range assignments {
		if agn.Section != usr.Section {
			continue
		}
		if _, ok := SubmissionFor(submissions, usr.ID, agn.ID); !ok {
			pending = append(pending, agn)
		}
	}
	return pending
}

// CompletedFor returns the assignments in the student's section that the
// student has submitted to, preserving order.
func CompletedFor(usr User, assignments []Assignment, submissions []Submission) []Assignment {
	completed := make([]Assignment, 0)
	for _, agn := range assignments {
		if agn.Section != usr.Section {
			continue
		}
		if _, ok := SubmissionFor(submissions, usr.ID, agn.ID); ok {
			completed = append(completed, agn)
		}
	}
	return completed
}

// SubmissionsFor returns all submissions referencing the assignment, in store
// order (most-recent-first).
func SubmissionsFor(submissions []Submission, assignmentID string) []Submission {
	out := make([]Submission, 0)
	for _, sub := range submissions {
		if sub.AssignmentID == assignmentID {
			out = append(out, sub)
		}
	}
	return out
}

// AssignmentsBy returns the assignments authored by the teacher, in store
// order.
func AssignmentsBy(assignments []Assignment, teacherID string) []Assignment {
	out := make([]Assignment, 0)
	for _, agn := range assignments {
		if agn.TeacherID == teacherID {
			out = append(out, agn)
		}
	}
	return out
}

// Classify returns the on-time/late status for a submission happening at now
// against the assignment's due instant. A simple instant comparison: no grace
// period, no timezone normalization beyond what the instants encode.
func Classify(now, due time.Time) string {
	if now.After(due) {
		return StatusLate
	}
	return StatusOnTime
}
