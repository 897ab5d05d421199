package valueobjects

import (
	"fmt"
	"slices"
)

type ProjectStatus string

const (
	StatusSubmitted  ProjectStatus = "submitted"
	StatusAccepted   ProjectStatus = "accepted"
	StatusInProgress ProjectStatus = "in_progress"
	StatusQA         ProjectStatus = "qa"
	StatusCompleted  ProjectStatus = "completed"
	StatusRejected   ProjectStatus = "rejected"
	StatusDisputed   ProjectStatus = "disputed"
)

var validProjectStatuses = map[ProjectStatus]bool{
	StatusSubmitted:  true,
	StatusAccepted:   true,
	StatusInProgress: true,
	StatusQA:         true,
	StatusCompleted:  true,
	StatusRejected:   true,
	StatusDisputed:   true,
}

// Leaving disputed is not listed here: it returns to the status held before
// the dispute and is handled by Project.ResolveDispute.
var projectStatusTransitions = map[ProjectStatus][]ProjectStatus{
	StatusSubmitted:  {StatusAccepted, StatusRejected, StatusDisputed},
	StatusAccepted:   {StatusInProgress, StatusRejected, StatusDisputed},
	StatusInProgress: {StatusQA, StatusDisputed},
	StatusQA:         {StatusCompleted, StatusDisputed},
}

// analystTransitions are the targets reachable through analyst project
// access (assigned analyst or admin).
var analystTransitions = map[ProjectStatus]bool{
	StatusInProgress: true,
	StatusQA:         true,
	StatusCompleted:  true,
}

func (s ProjectStatus) String() string {
	return string(s)
}

func (s ProjectStatus) IsValid() bool {
	return validProjectStatuses[s]
}

func (s ProjectStatus) CanTransitionTo(next ProjectStatus) bool {
	return slices.Contains(projectStatusTransitions[s], next)
}

// IsTerminal reports whether no further transition is possible.
func (s ProjectStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// IsAnalystTarget reports whether an analyst may move a project into s.
func (s ProjectStatus) IsAnalystTarget() bool {
	return analystTransitions[s]
}

func NewProjectStatus(s string) (ProjectStatus, error) {
	ps := ProjectStatus(s)
	if !ps.IsValid() {
		return "", fmt.Errorf("invalid project status: %s", s)
	}
	return ps, nil
}
