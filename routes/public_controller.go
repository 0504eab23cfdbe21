package routes

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/openpulse/openpulse/app"
	"github.com/openpulse/openpulse/core"
	"github.com/openpulse/openpulse/httpx"
	"github.com/openpulse/openpulse/metrics"
	"github.com/openpulse/openpulse/routes/middlewares"
)

func PublicGetSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		survey, err := app.Store.LoadSurvey(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.RenderError(w, r, "public.get_survey", err)
			return
		}

		if !survey.IsActive {
			httpx.RenderError(w, r, "public.get_survey.closed", &core.Error{
				Kind: core.KindConflict, Code: core.CodeSurveyClosed,
				Message: "survey is closed",
			})
			return
		}

		render.JSON(w, r, map[string]any{
			"id":          survey.ID,
			"owner_id":    survey.OwnerID,
			"title":       survey.Title,
			"description": survey.Description,
			"questions":   survey.Questions,
		})
	}
}

type responsePayload struct {
	Answers map[string]json.RawMessage `json:"answers"`
}

func PublicSubmitResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := responsePayload{}
		err := render.DecodeJSON(r.Body, &payload)
		if err != nil || len(payload.Answers) == 0 {
			httpx.BadRequest(w, r, "public.submit.parse_body")
			return
		}

		survey, err := app.Store.LoadSurvey(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			httpx.RenderError(w, r, "public.submit.load_survey", err)
			return
		}

		answers, err := core.ValidateResponse(survey, middlewares.UserID(r), payload.Answers)
		if err != nil {
			httpx.RenderError(w, r, "public.submit.validate", err)
			return
		}

		id, err := app.Store.SaveResponse(r.Context(), survey.ID, answers, time.Now())
		if err != nil {
			httpx.RenderError(w, r, "public.submit.save", err)
			return
		}
		metrics.ResponsesSubmitted.Inc()

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": id,
		})
	}
}
