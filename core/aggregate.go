package core

import (
	"math"
	"sort"
	"strconv"

	"github.com/openpulse/openpulse/model"
)

const DefaultRecentAnswers = 5

type AggregateOptions struct {
	// RecentAnswers bounds the text-answer preview per question;
	// DefaultRecentAnswers when zero or negative.
	RecentAnswers int
}

type ResultsReport struct {
	SurveyInfo       SurveyInfo       `json:"survey_info"`
	TotalRespondents int              `json:"total_respondents"`
	Results          []QuestionResult `json:"results"`
}

type SurveyInfo struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// QuestionResult is one question's aggregate. Data shape depends on Type:
// option counts for radio/select/checkbox, RatingData for rating, TextData
// for text.
type QuestionResult struct {
	ID           string             `json:"id"`
	Text         string             `json:"text"`
	Type         model.QuestionType `json:"type"`
	TotalAnswers int                `json:"total_answers"`
	Data         any                `json:"data"`
}

type RatingData struct {
	Average      *float64       `json:"average,omitempty"`
	Min          *int           `json:"min,omitempty"`
	Max          *int           `json:"max,omitempty"`
	Distribution map[string]int `json:"distribution"`
}

type TextData struct {
	RecentAnswers []string `json:"recent_answers"`
}

// Aggregate reduces a survey's full response set to per-question summary
// statistics, in survey definition order. It is a pure function of its
// inputs: same survey and responses, same report. Cost is linear in the
// total number of answers; nothing is cached between calls.
func Aggregate(survey model.Survey, responses []model.Response, opts AggregateOptions) ResultsReport {
	recentLimit := opts.RecentAnswers
	if recentLimit <= 0 {
		recentLimit = DefaultRecentAnswers
	}

	// newest first; ties keep the repository's insertion order
	ordered := make([]model.Response, len(responses))
	copy(ordered, responses)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SubmittedAt.After(ordered[j].SubmittedAt)
	})

	results := make([]QuestionResult, 0, len(survey.Questions))
	for _, q := range survey.Questions {
		results = append(results, aggregateQuestion(q, ordered, recentLimit))
	}

	return ResultsReport{
		SurveyInfo:       SurveyInfo{Title: survey.Title, Description: survey.Description},
		TotalRespondents: len(responses),
		Results:          results,
	}
}

func aggregateQuestion(q model.Question, newestFirst []model.Response, recentLimit int) QuestionResult {
	result := QuestionResult{ID: q.ID, Text: q.Text, Type: q.Type}

	switch q.Type {
	case model.TypeRadio, model.TypeSelect:
		counts := zeroCounts(q.Options)
		for _, r := range newestFirst {
			answer, ok := r.Answers[q.ID]
			if !ok {
				continue
			}
			result.TotalAnswers++
			if _, declared := counts[answer.Text]; declared {
				counts[answer.Text]++
			}
		}
		result.Data = counts

	case model.TypeCheckbox:
		counts := zeroCounts(q.Options)
		for _, r := range newestFirst {
			answer, ok := r.Answers[q.ID]
			if !ok {
				continue
			}
			// one response counts once, however many options it picked
			result.TotalAnswers++
			for _, selected := range answer.Selections {
				if _, declared := counts[selected]; declared {
					counts[selected]++
				}
			}
		}
		result.Data = counts

	case model.TypeRating:
		data := RatingData{Distribution: make(map[string]int, RatingMax)}
		for v := RatingMin; v <= RatingMax; v++ {
			data.Distribution[strconv.Itoa(v)] = 0
		}

		sum := 0
		for _, r := range newestFirst {
			answer, ok := r.Answers[q.ID]
			if !ok {
				continue
			}
			result.TotalAnswers++
			sum += answer.Rating
			data.Distribution[strconv.Itoa(answer.Rating)]++

			if data.Min == nil || answer.Rating < *data.Min {
				data.Min = ptr(answer.Rating)
			}
			if data.Max == nil || answer.Rating > *data.Max {
				data.Max = ptr(answer.Rating)
			}
		}
		if result.TotalAnswers > 0 {
			avg := math.Round(float64(sum)/float64(result.TotalAnswers)*10) / 10
			data.Average = &avg
		}
		result.Data = data

	case model.TypeText:
		recent := make([]string, 0, recentLimit)
		for _, r := range newestFirst {
			answer, ok := r.Answers[q.ID]
			if !ok {
				continue
			}
			result.TotalAnswers++
			if len(recent) < recentLimit {
				recent = append(recent, answer.Text)
			}
		}
		result.Data = TextData{RecentAnswers: recent}
	}

	return result
}

func zeroCounts(options []string) map[string]int {
	counts := make(map[string]int, len(options))
	for _, opt := range options {
		counts[opt] = 0
	}
	return counts
}

func ptr[T any](v T) *T {
	return &v
}
