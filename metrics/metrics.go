package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SurveysCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "openpulse_surveys_created_total",
		Help: "Surveys created since process start.",
	})
	ResponsesSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "openpulse_responses_submitted_total",
		Help: "Accepted survey responses since process start.",
	})
	ResultsViewed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "openpulse_results_viewed_total",
		Help: "Aggregated results requests served since process start.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
