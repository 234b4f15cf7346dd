package reports

import "reportify/models"

// CanTransition reports whether a moderator may move a report from one
// status to another. All four statuses are mutually reachable, including
// re-opening a terminal report; the only rejected move is a terminal
// self-loop, which would be a pointless write.
func CanTransition(from, to models.ReportStatus) bool {
	if !to.Valid() {
		return false
	}
	if from == to && from.Terminal() {
		return false
	}
	return true
}
