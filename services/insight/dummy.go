// Package insightsvc generates the free-text activity insight shown on the
// admin dashboard. The shipped implementation is a local mock; the core never
// depends on its output.
package insightsvc

import (
	"context"
	"fmt"

	"github.com/mustangstride/stride/core/study"
)

type dummyService struct{}

var _ study.InsightService = (*dummyService)(nil)

func NewDummyService() study.InsightService {
	return &dummyService{}
}

func (dummyService) Analyze(_ context.Context, assignments []study.Assignment, submissions []study.Submission) (string, error) {
	var late int
	for _, sub := range submissions {
		if sub.Status == study.StatusLate {
			late++
		}
	}
	if len(assignments) == 0 {
		return "No assignments posted yet; nothing to analyze.", nil
	}
	if len(submissions) == 0 {
		return fmt.Sprintf("%d assignment(s) posted, no submissions received yet.", len(assignments)), nil
	}
	return fmt.Sprintf(
		"Across %d assignment(s), %d submission(s) were received; %d arrived late. "+
			"Late submissions cluster where deadlines were not extended.",
		len(assignments), len(submissions), late,
	), nil
}
