package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpulse/openpulse/config"
	"github.com/openpulse/openpulse/core"
	"github.com/openpulse/openpulse/database"
	"github.com/openpulse/openpulse/model"
)

func newTestStore(t *testing.T) Store {
	t.Helper()

	cfg := config.Config{DBUrl: filepath.Join(t.TempDir(), "test.sqlite")}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewSQL(db)
}

func seedOwner(t *testing.T, s Store, id string) {
	t.Helper()
	require.NoError(t, s.CreateUser(context.Background(), model.User{
		ID:           id,
		Name:         "Owner " + id,
		Email:        id + "@example.com",
		PasswordHash: "x",
		CreatedAt:    time.Now().UTC(),
	}))
}

func seedSurvey(t *testing.T, s Store, id, ownerID string, createdAt time.Time) model.Survey {
	t.Helper()
	survey := model.Survey{
		ID:          id,
		OwnerID:     ownerID,
		Title:       "Survey " + id,
		Description: "seeded",
		IsActive:    true,
		CreatedAt:   createdAt,
		Questions: []model.Question{
			{ID: id + "-q1", Text: "Mood?", Type: model.TypeRadio, Options: []string{"Good", "Bad"}},
			{ID: id + "-q2", Text: "Comments?", Type: model.TypeText},
		},
	}
	_, err := s.SaveSurvey(context.Background(), survey)
	require.NoError(t, err)
	return survey
}

func TestSurveyRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedOwner(t, s, "owner-1")

	created := seedSurvey(t, s, "s1", "owner-1", time.Now().UTC())

	loaded, err := s.LoadSurvey(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, created.Title, loaded.Title)
	assert.Equal(t, created.OwnerID, loaded.OwnerID)
	assert.True(t, loaded.IsActive)
	assert.Zero(t, loaded.ResponseCount)
	require.Len(t, loaded.Questions, 2)
	assert.Equal(t, created.Questions[0].Options, loaded.Questions[0].Options)
	assert.Nil(t, loaded.Questions[1].Options)
}

func TestLoadSurveyNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.LoadSurvey(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, core.KindNotFound, core.KindOf(err))
}

func TestListSurveysByOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedOwner(t, s, "owner-1")
	seedOwner(t, s, "owner-2")

	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	seedSurvey(t, s, "old", "owner-1", base)
	seedSurvey(t, s, "new", "owner-1", base.Add(time.Hour))
	seedSurvey(t, s, "other", "owner-2", base)

	surveys, err := s.ListSurveysByOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, surveys, 2)
	assert.Equal(t, "new", surveys[0].ID, "newest first")
	assert.Equal(t, "old", surveys[1].ID)
	assert.Empty(t, surveys[0].Questions, "listing stays shallow")
}

func TestToggleSurveyStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedOwner(t, s, "owner-1")
	seedSurvey(t, s, "s1", "owner-1", time.Now().UTC())

	active, err := s.ToggleSurveyStatus(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, active)

	active, err = s.ToggleSurveyStatus(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, active)

	_, err = s.ToggleSurveyStatus(ctx, "missing")
	assert.Equal(t, core.KindNotFound, core.KindOf(err))
}

func TestSaveResponseIncrementsCounter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedOwner(t, s, "owner-1")
	survey := seedSurvey(t, s, "s1", "owner-1", time.Now().UTC())

	answers := map[string]model.AnswerValue{
		survey.Questions[0].ID: model.RadioAnswer("Good"),
		survey.Questions[1].ID: model.TextAnswer("all fine"),
	}

	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	id1, err := s.SaveResponse(ctx, "s1", answers, base)
	require.NoError(t, err)
	id2, err := s.SaveResponse(ctx, "s1", answers, base.Add(time.Minute))
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	loaded, err := s.LoadSurvey(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.ResponseCount, "insert and counter move together")

	responses, err := s.LoadResponses(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, responses, 2)
	assert.Equal(t, id1, responses[0].ID, "oldest first out of the store")
	assert.Equal(t, model.RadioAnswer("Good"), responses[0].Answers[survey.Questions[0].ID])
}

func TestSaveResponseUnknownSurvey(t *testing.T) {
	s := newTestStore(t)

	_, err := s.SaveResponse(context.Background(), "missing",
		map[string]model.AnswerValue{"q": model.TextAnswer("hi")}, time.Now().UTC())
	require.Error(t, err)
	assert.Equal(t, core.KindNotFound, core.KindOf(err))
}

func TestDeleteSurveyCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedOwner(t, s, "owner-1")
	survey := seedSurvey(t, s, "s1", "owner-1", time.Now().UTC())

	_, err := s.SaveResponse(ctx, "s1", map[string]model.AnswerValue{
		survey.Questions[0].ID: model.RadioAnswer("Bad"),
		survey.Questions[1].ID: model.TextAnswer("meh"),
	}, time.Now().UTC())
	require.NoError(t, err)

	require.NoError(t, s.DeleteSurvey(ctx, "s1"))

	_, err = s.LoadSurvey(ctx, "s1")
	assert.Equal(t, core.KindNotFound, core.KindOf(err))

	responses, err := s.LoadResponses(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, responses, "responses go with their survey")

	// a submission racing the delete is told the survey is gone
	_, err = s.SaveResponse(ctx, "s1", map[string]model.AnswerValue{
		survey.Questions[1].ID: model.TextAnswer("too late"),
	}, time.Now().UTC())
	assert.Equal(t, core.KindNotFound, core.KindOf(err))

	assert.Equal(t, core.KindNotFound, core.KindOf(s.DeleteSurvey(ctx, "s1")))
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := model.User{
		ID: "u1", Name: "Alice", Email: "alice@example.com",
		PasswordHash: "x", CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.CreateUser(ctx, user))

	dup := user
	dup.ID = "u2"
	err := s.CreateUser(ctx, dup)
	require.Error(t, err)
	assert.Equal(t, core.KindConflict, core.KindOf(err))

	loaded, err := s.UserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", loaded.ID)

	_, err = s.UserByEmail(ctx, "nobody@example.com")
	assert.Equal(t, core.KindNotFound, core.KindOf(err))
}
