package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpulse/openpulse/model"
)

func testSurvey() model.Survey {
	return model.Survey{
		ID:       "s1",
		OwnerID:  "owner-1",
		Title:    "Team retrospective",
		IsActive: true,
		Questions: []model.Question{
			{ID: "q-text", Text: "What went well?", Type: model.TypeText},
			{ID: "q-radio", Text: "Mood?", Type: model.TypeRadio, Options: []string{"Good", "Bad"}},
			{ID: "q-check", Text: "Topics?", Type: model.TypeCheckbox, Options: []string{"CI", "Docs", "Oncall"}},
			{ID: "q-rate", Text: "Sprint score", Type: model.TypeRating},
			{ID: "q-select", Text: "Team?", Type: model.TypeSelect, Options: []string{"Core", "Infra"}},
		},
	}
}

func rawAnswers(pairs map[string]string) map[string]json.RawMessage {
	answers := make(map[string]json.RawMessage, len(pairs))
	for k, v := range pairs {
		answers[k] = json.RawMessage(v)
	}
	return answers
}

func completeAnswers() map[string]json.RawMessage {
	return rawAnswers(map[string]string{
		"q-text":   `"Shipping on time"`,
		"q-radio":  `"Good"`,
		"q-check":  `["CI","Docs"]`,
		"q-rate":   `4`,
		"q-select": `"Core"`,
	})
}

func TestValidateResponseAccepts(t *testing.T) {
	validated, err := ValidateResponse(testSurvey(), "someone-else", completeAnswers())
	require.NoError(t, err)

	require.Len(t, validated, 5, "exactly one answer per question")
	assert.Equal(t, model.TextAnswer("Shipping on time"), validated["q-text"])
	assert.Equal(t, model.RadioAnswer("Good"), validated["q-radio"])
	assert.Equal(t, model.CheckboxAnswer([]string{"CI", "Docs"}), validated["q-check"])
	assert.Equal(t, model.RatingAnswer(4), validated["q-rate"])
	assert.Equal(t, model.SelectAnswer("Core"), validated["q-select"])
}

func TestValidateResponseAnonymous(t *testing.T) {
	_, err := ValidateResponse(testSurvey(), "", completeAnswers())
	assert.NoError(t, err)
}

func TestValidateResponseClosedSurvey(t *testing.T) {
	survey := testSurvey()
	survey.IsActive = false

	_, err := ValidateResponse(survey, "someone-else", completeAnswers())
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
	require.Len(t, Leaves(err), 1)
	assert.Equal(t, CodeSurveyClosed, Leaves(err)[0].Code)
}

func TestValidateResponseSelfResponseForbidden(t *testing.T) {
	_, err := ValidateResponse(testSurvey(), "owner-1", completeAnswers())
	require.Error(t, err)
	assert.Equal(t, KindAuthorization, KindOf(err))
	assert.Equal(t, CodeSelfResponseForbidden, Leaves(err)[0].Code)
}

func TestValidateResponseMissingAnswer(t *testing.T) {
	answers := completeAnswers()
	delete(answers, "q-radio")

	_, err := ValidateResponse(testSurvey(), "someone-else", answers)
	require.Error(t, err)
	leaves := Leaves(err)
	require.Len(t, leaves, 1)
	assert.Equal(t, CodeMissingAnswer, leaves[0].Code)
	assert.Equal(t, "q-radio", leaves[0].Field)
}

// Unknown question ids are rejected outright rather than silently ignored.
func TestValidateResponseUnknownQuestion(t *testing.T) {
	answers := completeAnswers()
	answers["q-ghost"] = json.RawMessage(`"boo"`)

	_, err := ValidateResponse(testSurvey(), "someone-else", answers)
	require.Error(t, err)
	leaves := Leaves(err)
	require.Len(t, leaves, 1)
	assert.Equal(t, CodeUnknownQuestion, leaves[0].Code)
	assert.Equal(t, "q-ghost", leaves[0].Field)
}

func TestValidateResponsePerQuestion(t *testing.T) {
	tests := []struct {
		name       string
		questionID string
		value      string
		code       string
	}{
		{"empty text", "q-text", `""`, CodeEmptyAnswer},
		{"whitespace text", "q-text", `"   "`, CodeEmptyAnswer},
		{"text wrong shape", "q-text", `42`, CodeEmptyAnswer},
		{"radio off-option", "q-radio", `"Meh"`, CodeInvalidOption},
		{"radio case-sensitive", "q-radio", `"good"`, CodeInvalidOption},
		{"radio wrong shape", "q-radio", `["Good"]`, CodeInvalidOption},
		{"select off-option", "q-select", `"Sales"`, CodeInvalidOption},
		{"checkbox empty", "q-check", `[]`, CodeEmptyAnswer},
		{"checkbox duplicate", "q-check", `["CI","CI"]`, CodeInvalidOption},
		{"checkbox off-option", "q-check", `["CI","Lunch"]`, CodeInvalidOption},
		{"checkbox wrong shape", "q-check", `"CI"`, CodeInvalidOption},
		{"rating below range", "q-rate", `0`, CodeOutOfRange},
		{"rating above range", "q-rate", `6`, CodeOutOfRange},
		{"rating fractional", "q-rate", `3.5`, CodeOutOfRange},
		{"rating not numeric", "q-rate", `"loads"`, CodeOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := completeAnswers()
			answers[tt.questionID] = json.RawMessage(tt.value)

			_, err := ValidateResponse(testSurvey(), "someone-else", answers)
			require.Error(t, err)
			assert.Equal(t, KindValidation, KindOf(err))
			leaves := Leaves(err)
			require.Len(t, leaves, 1)
			assert.Equal(t, tt.code, leaves[0].Code)
			assert.Equal(t, tt.questionID, leaves[0].Field)
		})
	}
}

func TestValidateResponseRatingNumericString(t *testing.T) {
	answers := completeAnswers()
	answers["q-rate"] = json.RawMessage(`" 5 "`)

	validated, err := ValidateResponse(testSurvey(), "someone-else", answers)
	require.NoError(t, err)
	assert.Equal(t, model.RatingAnswer(5), validated["q-rate"])
}

func TestValidateResponseCollectsAllFailures(t *testing.T) {
	answers := rawAnswers(map[string]string{
		"q-text":  `""`,
		"q-radio": `"Meh"`,
		"q-rate":  `9`,
		"q-ghost": `"boo"`,
		// q-check and q-select missing
	})

	_, err := ValidateResponse(testSurvey(), "someone-else", answers)
	require.Error(t, err)

	codes := map[string]bool{}
	for _, e := range Leaves(err) {
		codes[e.Code] = true
	}
	assert.Len(t, Leaves(err), 6)
	for _, code := range []string{
		CodeEmptyAnswer, CodeInvalidOption, CodeOutOfRange,
		CodeUnknownQuestion, CodeMissingAnswer,
	} {
		assert.True(t, codes[code], "expected a %s failure", code)
	}
}
