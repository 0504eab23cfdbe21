package store

import (
	"context"
	"time"

	"github.com/openpulse/openpulse/model"
)

// Store is the persistence collaborator the core validators and the
// aggregation engine are written against.
type Store interface {
	SaveSurvey(ctx context.Context, survey model.Survey) (string, error)
	LoadSurvey(ctx context.Context, id string) (model.Survey, error)
	ListSurveysByOwner(ctx context.Context, ownerID string) ([]model.Survey, error)
	DeleteSurvey(ctx context.Context, id string) error
	ToggleSurveyStatus(ctx context.Context, id string) (bool, error)

	// SaveResponse persists a validated answer set and increments the
	// survey's response counter as one atomic unit.
	SaveResponse(ctx context.Context, surveyID string, answers map[string]model.AnswerValue, submittedAt time.Time) (string, error)
	LoadResponses(ctx context.Context, surveyID string) ([]model.Response, error)

	CreateUser(ctx context.Context, user model.User) error
	UserByEmail(ctx context.Context, email string) (model.User, error)
}
