package model

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

type QuestionType string

const (
	TypeText     QuestionType = "text"
	TypeRadio    QuestionType = "radio"
	TypeCheckbox QuestionType = "checkbox"
	TypeRating   QuestionType = "rating"
	TypeSelect   QuestionType = "select"
)

func (t QuestionType) Known() bool {
	switch t {
	case TypeText, TypeRadio, TypeCheckbox, TypeRating, TypeSelect:
		return true
	}
	return false
}

// HasOptions reports whether questions of this type carry a list of
// admissible options.
func (t QuestionType) HasOptions() bool {
	switch t {
	case TypeRadio, TypeCheckbox, TypeSelect:
		return true
	}
	return false
}

type Survey struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"owner_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Questions     []Question `json:"questions"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	ResponseCount int        `json:"response_count"`
}

type Question struct {
	ID      string       `json:"id"`
	Text    string       `json:"text"`
	Type    QuestionType `json:"type"`
	Options []string     `json:"options,omitempty"`
}

// SurveyDraft is the creation payload before normalization. Scalar
// constraints live in validate tags; type-dependent rules are enforced by
// core.DefinitionValidator.
type SurveyDraft struct {
	Title       string          `json:"title" validate:"required,min=5"`
	Description string          `json:"description"`
	Questions   []QuestionDraft `json:"questions" validate:"required,min=1,dive"`
}

type QuestionDraft struct {
	ID      string       `json:"id,omitempty"`
	Text    string       `json:"text" validate:"required"`
	Type    QuestionType `json:"type" validate:"required"`
	Options []string     `json:"options,omitempty"`
}

type Response struct {
	ID          string                 `json:"id"`
	SurveyID    string                 `json:"survey_id"`
	Answers     map[string]AnswerValue `json:"answers"`
	SubmittedAt time.Time              `json:"submitted_at"`
}

// AnswerValue is the tagged union holding one validated answer. Exactly one
// variant field is meaningful, selected by Type:
//
//	text, radio, select  -> Text
//	checkbox             -> Selections
//	rating               -> Rating
//
// Raw submission payloads (string | []string | number) never reach this type
// directly; they are decoded by core.ValidateResponse against the question
// they answer.
type AnswerValue struct {
	Type       QuestionType
	Text       string
	Selections []string
	Rating     int
}

func TextAnswer(s string) AnswerValue {
	return AnswerValue{Type: TypeText, Text: s}
}

func RadioAnswer(option string) AnswerValue {
	return AnswerValue{Type: TypeRadio, Text: option}
}

func SelectAnswer(option string) AnswerValue {
	return AnswerValue{Type: TypeSelect, Text: option}
}

func CheckboxAnswer(options []string) AnswerValue {
	return AnswerValue{Type: TypeCheckbox, Selections: options}
}

func RatingAnswer(value int) AnswerValue {
	return AnswerValue{Type: TypeRating, Rating: value}
}

// Value returns the untagged wire representation of the answer.
func (a AnswerValue) Value() any {
	switch a.Type {
	case TypeCheckbox:
		return a.Selections
	case TypeRating:
		return a.Rating
	default:
		return a.Text
	}
}

type answerJSON struct {
	Type  QuestionType    `json:"type"`
	Value json.RawMessage `json:"value"`
}

func (a AnswerValue) MarshalJSON() ([]byte, error) {
	value, err := json.Marshal(a.Value())
	if err != nil {
		return nil, err
	}
	return json.Marshal(answerJSON{Type: a.Type, Value: value})
}

func (a *AnswerValue) UnmarshalJSON(data []byte) error {
	var raw answerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.Type.Known() {
		return errors.Errorf("unknown answer type %q", raw.Type)
	}

	a.Type = raw.Type
	a.Text = ""
	a.Selections = nil
	a.Rating = 0

	switch raw.Type {
	case TypeCheckbox:
		return json.Unmarshal(raw.Value, &a.Selections)
	case TypeRating:
		return json.Unmarshal(raw.Value, &a.Rating)
	default:
		return json.Unmarshal(raw.Value, &a.Text)
	}
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
