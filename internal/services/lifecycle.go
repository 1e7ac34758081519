package services

import "github.com/itwoqa/bugtracker/internal/models"

// statusTransitions maps each status to the statuses it may move to.
// Resolved is terminal; a resolved bug cannot be reopened.
var statusTransitions = map[string][]string{
	models.StatusReported:   {models.StatusInProgress, models.StatusReturned, models.StatusResolved},
	models.StatusReturned:   {models.StatusInProgress, models.StatusReported},
	models.StatusInProgress: {models.StatusTesting, models.StatusReported, models.StatusReturned},
	models.StatusTesting:    {models.StatusResolved, models.StatusInProgress},
	models.StatusResolved:   {},
}

// CanTransition reports whether a bug may move from one status to another.
// Staying in the same status is always allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses reachable from the given status.
func AllowedTransitions(from string) []string {
	targets := statusTransitions[from]
	out := make([]string, len(targets))
	copy(out, targets)
	return out
}

// CanEditBug reports whether a bug in the given status accepts any edit.
// Resolved bugs are frozen.
func CanEditBug(status string) bool {
	return status != models.StatusResolved
}

// CanDeleteBug reports whether a bug in the given status may be deleted.
// Once work has started the record must be kept.
func CanDeleteBug(status string) bool {
	return status == models.StatusReported || status == models.StatusReturned
}
