package core

import "github.com/openpulse/openpulse/model"

// CanMutate gates owner-only operations: deletion, status toggling and
// results viewing.
func CanMutate(survey model.Survey, actorID string) bool {
	return survey.OwnerID == actorID
}

// CanRespond reports whether actorRef may submit a response. An anonymous
// respondent has an empty actorRef.
func CanRespond(survey model.Survey, actorRef string) bool {
	return survey.IsActive && survey.OwnerID != actorRef
}
