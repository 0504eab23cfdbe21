package core

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/openpulse/openpulse/model"
)

const (
	RatingMin = 1
	RatingMax = 5
)

// ValidateResponse checks a raw answer payload against a stored survey and
// its lifecycle state. Lifecycle and ownership failures short-circuit;
// per-question failures are all collected so the respondent can fix the whole
// form in one go. On success the returned mapping holds exactly one typed
// answer per survey question, ready for persistence.
func ValidateResponse(survey model.Survey, submitterRef string, answers map[string]json.RawMessage) (map[string]model.AnswerValue, error) {
	if !survey.IsActive {
		return nil, &Error{Kind: KindConflict, Code: CodeSurveyClosed, Message: "survey is closed"}
	}
	if submitterRef != "" && submitterRef == survey.OwnerID {
		return nil, &Error{
			Kind: KindAuthorization, Code: CodeSelfResponseForbidden,
			Message: "survey owners may not respond to their own survey",
		}
	}

	known := make(map[string]bool, len(survey.Questions))
	for _, q := range survey.Questions {
		known[q.ID] = true
	}

	var result *multierror.Error

	// unknown ids are rejected, not ignored; sorted for stable reporting
	extra := make([]string, 0)
	for id := range answers {
		if !known[id] {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	for _, id := range extra {
		result = multierror.Append(result, validationErr(
			CodeUnknownQuestion, id, "no such question in this survey"))
	}

	validated := make(map[string]model.AnswerValue, len(survey.Questions))
	for _, q := range survey.Questions {
		raw, ok := answers[q.ID]
		if !ok {
			result = multierror.Append(result, validationErr(
				CodeMissingAnswer, q.ID, "question %q requires an answer", q.Text))
			continue
		}

		answer, err := validateAnswer(q, raw)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		validated[q.ID] = answer
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return validated, nil
}

func validateAnswer(q model.Question, raw json.RawMessage) (model.AnswerValue, error) {
	switch q.Type {
	case model.TypeText:
		return validateText(q, raw)
	case model.TypeRadio, model.TypeSelect:
		return validateChoice(q, raw)
	case model.TypeCheckbox:
		return validateCheckbox(q, raw)
	case model.TypeRating:
		return validateRating(q, raw)
	}
	return model.AnswerValue{}, validationErr(CodeInvalidOption, q.ID, "unknown question type %q", q.Type)
}

func validateText(q model.Question, raw json.RawMessage) (model.AnswerValue, error) {
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return model.AnswerValue{}, validationErr(CodeEmptyAnswer, q.ID, "expected a text value")
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return model.AnswerValue{}, validationErr(CodeEmptyAnswer, q.ID, "answer must not be empty")
	}
	return model.TextAnswer(value), nil
}

func validateChoice(q model.Question, raw json.RawMessage) (model.AnswerValue, error) {
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return model.AnswerValue{}, validationErr(CodeInvalidOption, q.ID, "expected a single option")
	}
	if !isOption(q, value) {
		return model.AnswerValue{}, validationErr(CodeInvalidOption, q.ID, "%q is not an option", value)
	}
	if q.Type == model.TypeSelect {
		return model.SelectAnswer(value), nil
	}
	return model.RadioAnswer(value), nil
}

func validateCheckbox(q model.Question, raw json.RawMessage) (model.AnswerValue, error) {
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return model.AnswerValue{}, validationErr(CodeInvalidOption, q.ID, "expected a list of options")
	}
	if len(values) == 0 {
		return model.AnswerValue{}, validationErr(CodeEmptyAnswer, q.ID, "select at least one option")
	}

	seen := make(map[string]bool, len(values))
	for _, value := range values {
		if !isOption(q, value) {
			return model.AnswerValue{}, validationErr(CodeInvalidOption, q.ID, "%q is not an option", value)
		}
		if seen[value] {
			return model.AnswerValue{}, validationErr(CodeInvalidOption, q.ID, "%q selected twice", value)
		}
		seen[value] = true
	}
	return model.CheckboxAnswer(values), nil
}

// validateRating accepts a numeric literal or a numeric string, as long as it
// is an integer in [RatingMin, RatingMax].
func validateRating(q model.Question, raw json.RawMessage) (model.AnswerValue, error) {
	var value int

	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		if number != math.Trunc(number) {
			return model.AnswerValue{}, validationErr(CodeOutOfRange, q.ID, "rating must be a whole number")
		}
		value = int(number)
	} else {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return model.AnswerValue{}, validationErr(CodeOutOfRange, q.ID, "rating must be a number")
		}
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return model.AnswerValue{}, validationErr(CodeOutOfRange, q.ID, "rating must be a number")
		}
		value = n
	}

	if value < RatingMin || value > RatingMax {
		return model.AnswerValue{}, validationErr(
			CodeOutOfRange, q.ID, "rating must be between %d and %d", RatingMin, RatingMax)
	}
	return model.RatingAnswer(value), nil
}

func isOption(q model.Question, value string) bool {
	for _, opt := range q.Options {
		if opt == value {
			return true
		}
	}
	return false
}
