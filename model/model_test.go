package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerValueJSON(t *testing.T) {
	answers := map[string]AnswerValue{
		"q1": TextAnswer("free text"),
		"q2": CheckboxAnswer([]string{"A", "C"}),
		"q3": RatingAnswer(4),
		"q4": RadioAnswer("Yes"),
	}

	data, err := json.Marshal(answers)
	require.NoError(t, err)

	decoded := map[string]AnswerValue{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, answers, decoded, "the tag selects the variant on the way back in")
}

func TestAnswerValueUnknownTag(t *testing.T) {
	var a AnswerValue
	err := json.Unmarshal([]byte(`{"type":"slider","value":3}`), &a)
	assert.Error(t, err)
}

func TestQuestionType(t *testing.T) {
	assert.True(t, TypeRadio.HasOptions())
	assert.True(t, TypeCheckbox.HasOptions())
	assert.True(t, TypeSelect.HasOptions())
	assert.False(t, TypeText.HasOptions())
	assert.False(t, TypeRating.HasOptions())
	assert.False(t, QuestionType("slider").Known())
}
