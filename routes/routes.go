package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"

	"github.com/openpulse/openpulse/app"
	"github.com/openpulse/openpulse/metrics"
	"github.com/openpulse/openpulse/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))
	root.Method(http.MethodGet, "/metrics", metrics.Handler())

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Route("/auth", func(r chi.Router) {
		r.Use(middlewares.AnonymousOnly(app.TokenAuth))
		r.Post("/register", Register(app))
		r.Post("/login", Login(app))
	})

	// owner endpoints
	api.Route("/surveys", func(r chi.Router) {
		r.Use(middlewares.Authenticated(app.TokenAuth))
		r.Post("/", CreateSurvey(app))
		r.Get("/", ListSurveys(app))
		r.Get("/{id}/results", GetSurveyResults(app))
		r.Patch("/{id}/status", ToggleSurveyStatus(app))
		r.Delete("/{id}", DeleteSurvey(app))
	})

	// respondent endpoints: the token is optional, read only by the
	// self-response guard
	api.Route("/public/surveys", func(r chi.Router) {
		r.Use(jwtauth.Verifier(app.TokenAuth))
		r.Get("/{id}", PublicGetSurvey(app))
		r.Post("/{id}/respond", PublicSubmitResponse(app))
	})

	return api
}
