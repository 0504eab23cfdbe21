package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/gofrs/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/openpulse/openpulse/core"
	"github.com/openpulse/openpulse/model"
)

type sqlStore struct {
	db *sql.DB
}

func NewSQL(db *sql.DB) Store {
	return &sqlStore{db}
}

func (s *sqlStore) SaveSurvey(ctx context.Context, survey model.Survey) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", errors.Wrap(err, "save_survey.begin_tx")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO survey (id, owner_id, title, description, is_active, created_at, response_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		survey.ID,
		survey.OwnerID,
		survey.Title,
		survey.Description,
		survey.IsActive,
		survey.CreatedAt,
		survey.ResponseCount,
	)
	if err != nil {
		return "", errors.Wrap(err, "save_survey.insert")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO question (id, survey_id, position, text, type, options)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", errors.Wrap(err, "save_survey.questions.prepare")
	}
	defer stmt.Close()

	for i, q := range survey.Questions {
		var optionsJson []byte
		if q.Options != nil {
			optionsJson, err = json.Marshal(q.Options)
			if err != nil {
				return "", errors.Wrap(err, "save_survey.questions.options")
			}
		}
		_, err = stmt.ExecContext(ctx, q.ID, survey.ID, i, q.Text, q.Type, string(optionsJson))
		if err != nil {
			return "", errors.Wrap(err, "save_survey.questions.insert")
		}
	}

	err = tx.Commit()
	if err != nil {
		return "", errors.Wrap(err, "save_survey.commit")
	}
	return survey.ID, nil
}

func (s *sqlStore) LoadSurvey(ctx context.Context, id string) (survey model.Survey, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, description, is_active, created_at, response_count
		FROM survey
		WHERE id = ?`,
		id,
	).Scan(
		&survey.ID, &survey.OwnerID, &survey.Title, &survey.Description,
		&survey.IsActive, &survey.CreatedAt, &survey.ResponseCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Survey{}, notFound("survey", id)
	}
	if err != nil {
		return model.Survey{}, errors.Wrap(err, "load_survey")
	}

	survey.Questions, err = s.loadQuestions(ctx, id)
	return survey, err
}

func (s *sqlStore) loadQuestions(ctx context.Context, surveyID string) ([]model.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, type, options
		FROM question
		WHERE survey_id = ?
		ORDER BY position`,
		surveyID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "load_questions")
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		q := model.Question{}
		var opts string
		err = rows.Scan(&q.ID, &q.Text, &q.Type, &opts)
		if err != nil {
			return nil, errors.Wrap(err, "load_questions.scan")
		}

		if opts != "" {
			err = json.Unmarshal([]byte(opts), &q.Options)
			if err != nil {
				return nil, errors.Wrap(err, "load_questions.parse_options")
			}
		}
		questions = append(questions, q)
	}
	return questions, errors.Wrap(rows.Err(), "load_questions.rows")
}

func (s *sqlStore) ListSurveysByOwner(ctx context.Context, ownerID string) ([]model.Survey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, title, description, is_active, created_at, response_count
		FROM survey
		WHERE owner_id = ?
		ORDER BY created_at DESC`,
		ownerID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list_surveys")
	}
	defer rows.Close()

	surveys := []model.Survey{}
	for rows.Next() {
		sv := model.Survey{}
		err = rows.Scan(
			&sv.ID, &sv.OwnerID, &sv.Title, &sv.Description,
			&sv.IsActive, &sv.CreatedAt, &sv.ResponseCount,
		)
		if err != nil {
			return nil, errors.Wrap(err, "list_surveys.scan")
		}
		surveys = append(surveys, sv)
	}
	return surveys, errors.Wrap(rows.Err(), "list_surveys.rows")
}

// DeleteSurvey removes the survey; questions and responses go with it in the
// same statement through ON DELETE CASCADE.
func (s *sqlStore) DeleteSurvey(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM survey WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "delete_survey")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete_survey.verify")
	}
	if n < 1 {
		return notFound("survey", id)
	}
	return nil
}

func (s *sqlStore) ToggleSurveyStatus(ctx context.Context, id string) (active bool, err error) {
	err = s.db.QueryRowContext(ctx, `
		UPDATE survey
		SET is_active = NOT is_active
		WHERE id = ?
		RETURNING is_active`,
		id,
	).Scan(&active)
	if errors.Is(err, sql.ErrNoRows) {
		return false, notFound("survey", id)
	}
	return active, errors.Wrap(err, "toggle_survey")
}

func (s *sqlStore) SaveResponse(ctx context.Context, surveyID string, answers map[string]model.AnswerValue, submittedAt time.Time) (string, error) {
	answersJson, err := json.Marshal(answers)
	if err != nil {
		return "", errors.Wrap(err, "save_response.answers")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", errors.Wrap(err, "save_response.begin_tx")
	}
	defer tx.Rollback()

	// incrementing first pins the survey row: a submission racing a delete
	// either lands before it (and is cascaded away) or fails here
	res, err := tx.ExecContext(ctx, `
		UPDATE survey
		SET response_count = response_count + 1
		WHERE id = ?`,
		surveyID,
	)
	if err != nil {
		return "", errors.Wrap(err, "save_response.count")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", errors.Wrap(err, "save_response.count.verify")
	}
	if n < 1 {
		return "", notFound("survey", surveyID)
	}

	id := uuid.Must(uuid.NewV4()).String()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO response (id, survey_id, answers, submitted_at)
		VALUES (?, ?, ?, ?)`,
		id,
		surveyID,
		string(answersJson),
		submittedAt,
	)
	if err != nil {
		return "", errors.Wrap(err, "save_response.insert")
	}

	err = tx.Commit()
	if err != nil {
		return "", errors.Wrap(err, "save_response.commit")
	}
	return id, nil
}

// LoadResponses returns a survey's responses ordered by submission time,
// then by insertion order, so downstream aggregation is deterministic.
func (s *sqlStore) LoadResponses(ctx context.Context, surveyID string) ([]model.Response, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, survey_id, answers, submitted_at
		FROM response
		WHERE survey_id = ?
		ORDER BY submitted_at, rowid`,
		surveyID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "load_responses")
	}
	defer rows.Close()

	responses := []model.Response{}
	for rows.Next() {
		r := model.Response{}
		var answersJson string
		err = rows.Scan(&r.ID, &r.SurveyID, &answersJson, &r.SubmittedAt)
		if err != nil {
			return nil, errors.Wrap(err, "load_responses.scan")
		}

		err = json.Unmarshal([]byte(answersJson), &r.Answers)
		if err != nil {
			return nil, errors.Wrap(err, "load_responses.parse_answers")
		}
		responses = append(responses, r)
	}
	return responses, errors.Wrap(rows.Err(), "load_responses.rows")
}

func (s *sqlStore) CreateUser(ctx context.Context, user model.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user (id, name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	)

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return &core.Error{
			Kind: core.KindConflict, Code: core.CodeEmailTaken,
			Field: "email", Message: "email already registered",
		}
	}
	return errors.Wrap(err, "create_user")
}

func (s *sqlStore) UserByEmail(ctx context.Context, email string) (user model.User, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM user
		WHERE email = ?`,
		email,
	).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, notFound("user", email)
	}
	return user, errors.Wrap(err, "user_by_email")
}

func notFound(entity, id string) *core.Error {
	return &core.Error{
		Kind: core.KindNotFound, Code: core.CodeNotFound,
		Field: entity, Message: entity + " " + id + " does not exist",
	}
}
