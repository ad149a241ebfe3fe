package study

import "context"

// InsightService produces a free-text reading of current submission activity.
// The core never depends on its output for any invariant: a failure degrades
// to "no insight".
type InsightService interface {
	Analyze(ctx context.Context, assignments []Assignment, submissions []Submission) (string, error)
}
