package core

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/openpulse/openpulse/model"
)

// DefinitionValidator turns a raw survey draft into a normalized Survey or a
// collected set of validation failures. It is pure over its input:
// persistence is the caller's business.
type DefinitionValidator struct {
	validate *validator.Validate
}

func NewDefinitionValidator() *DefinitionValidator {
	return &DefinitionValidator{validate: validator.New()}
}

func (v *DefinitionValidator) Validate(draft model.SurveyDraft, ownerID string, now time.Time) (model.Survey, error) {
	draft.Title = strings.TrimSpace(draft.Title)
	for i := range draft.Questions {
		draft.Questions[i].Text = strings.TrimSpace(draft.Questions[i].Text)
	}

	var result *multierror.Error
	if err := v.validate.Struct(draft); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return model.Survey{}, err
		}
		for _, fe := range verrs {
			result = multierror.Append(result, validationErr(
				CodeInvalidDefinition, strings.ToLower(fe.Field()),
				"failed constraint %q", fe.Tag(),
			))
		}
	}

	questions := make([]model.Question, 0, len(draft.Questions))
	seenIds := make(map[string]bool, len(draft.Questions))
	for _, q := range draft.Questions {
		if !q.Type.Known() {
			result = multierror.Append(result, validationErr(
				CodeInvalidDefinition, q.ID, "unknown question type %q", q.Type))
			continue
		}

		question := model.Question{ID: q.ID, Text: q.Text, Type: q.Type}
		if question.ID == "" {
			question.ID = newID()
		}
		if seenIds[question.ID] {
			result = multierror.Append(result, validationErr(
				CodeInvalidDefinition, question.ID, "duplicate question id"))
			continue
		}
		seenIds[question.ID] = true

		if q.Type.HasOptions() {
			options := normalizeOptions(q.Options)
			if len(options) < 2 {
				result = multierror.Append(result, validationErr(
					CodeInvalidDefinition, question.ID,
					"type %q needs at least 2 distinct options", q.Type))
				continue
			}
			question.Options = options
		}

		questions = append(questions, question)
	}

	if err := result.ErrorOrNil(); err != nil {
		return model.Survey{}, err
	}

	return model.Survey{
		ID:          newID(),
		OwnerID:     ownerID,
		Title:       draft.Title,
		Description: draft.Description,
		Questions:   questions,
		IsActive:    true,
		CreatedAt:   now,
	}, nil
}

// normalizeOptions trims every option, drops empties and keeps the first
// occurrence of each duplicate, preserving order.
func normalizeOptions(options []string) []string {
	normalized := make([]string, 0, len(options))
	seen := make(map[string]bool, len(options))
	for _, opt := range options {
		opt = strings.TrimSpace(opt)
		if opt == "" || seen[opt] {
			continue
		}
		seen[opt] = true
		normalized = append(normalized, opt)
	}
	return normalized
}

func newID() string {
	return uuid.Must(uuid.NewV4()).String()
}
