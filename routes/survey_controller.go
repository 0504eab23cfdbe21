package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/openpulse/openpulse/app"
	"github.com/openpulse/openpulse/core"
	"github.com/openpulse/openpulse/httpx"
	"github.com/openpulse/openpulse/metrics"
	"github.com/openpulse/openpulse/model"
	"github.com/openpulse/openpulse/routes/middlewares"
)

func CreateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draft := model.SurveyDraft{}
		err := render.DecodeJSON(r.Body, &draft)
		if err != nil {
			httpx.BadRequest(w, r, "create_survey.parse_body")
			return
		}

		survey, err := app.Definitions.Validate(draft, middlewares.UserID(r), time.Now())
		if err != nil {
			httpx.RenderError(w, r, "create_survey.validate", err)
			return
		}

		id, err := app.Store.SaveSurvey(r.Context(), survey)
		if err != nil {
			httpx.RenderError(w, r, "create_survey.save", err)
			return
		}
		metrics.SurveysCreated.Inc()

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": id,
		})
	}
}

func ListSurveys(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveys, err := app.Store.ListSurveysByOwner(r.Context(), middlewares.UserID(r))
		if err != nil {
			httpx.RenderError(w, r, "list_surveys", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"surveys": surveys,
		})
	}
}

func GetSurveyResults(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		survey, ok := loadOwnSurvey(app, w, r, "get_results")
		if !ok {
			return
		}

		responses, err := app.Store.LoadResponses(r.Context(), survey.ID)
		if err != nil {
			httpx.RenderError(w, r, "get_results.load_responses", err)
			return
		}

		report := core.Aggregate(survey, responses, core.AggregateOptions{
			RecentAnswers: app.RecentAnswers,
		})
		metrics.ResultsViewed.Inc()

		render.JSON(w, r, report)
	}
}

func ToggleSurveyStatus(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		survey, ok := loadOwnSurvey(app, w, r, "toggle_survey")
		if !ok {
			return
		}

		active, err := app.Store.ToggleSurveyStatus(r.Context(), survey.ID)
		if err != nil {
			httpx.RenderError(w, r, "toggle_survey", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"is_active": active,
		})
	}
}

func DeleteSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		survey, ok := loadOwnSurvey(app, w, r, "delete_survey")
		if !ok {
			return
		}

		err := app.Store.DeleteSurvey(r.Context(), survey.ID)
		if err != nil {
			httpx.RenderError(w, r, "delete_survey", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// loadOwnSurvey fetches the addressed survey and enforces the owner-only
// rule shared by results, toggle and delete.
func loadOwnSurvey(app app.App, w http.ResponseWriter, r *http.Request, code string) (model.Survey, bool) {
	survey, err := app.Store.LoadSurvey(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RenderError(w, r, code+".load_survey", err)
		return model.Survey{}, false
	}

	if !core.CanMutate(survey, middlewares.UserID(r)) {
		httpx.RenderError(w, r, code+".ownership", &core.Error{
			Kind: core.KindAuthorization, Code: core.CodeNotOwner,
			Message: "only the survey owner may do this",
		})
		return model.Survey{}, false
	}
	return survey, true
}
