package httpx

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/openpulse/openpulse/core"
	"github.com/openpulse/openpulse/log"
)

type errorBody struct {
	Error   string        `json:"error"`
	Details []errorDetail `json:"details,omitempty"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// StatusOf maps the core error taxonomy onto HTTP statuses. Anything the
// taxonomy does not claim is a persistence fault.
func StatusOf(err error) int {
	switch core.KindOf(err) {
	case core.KindValidation:
		return http.StatusBadRequest
	case core.KindAuthorization:
		return http.StatusForbidden
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RenderError logs err under the given code and writes the matching JSON
// error response. Internal faults are masked; taxonomy failures report every
// collected field error.
func RenderError(w http.ResponseWriter, r *http.Request, code string, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		log.Errorf("%s: %s", code, err)
		render.Status(r, status)
		render.JSON(w, r, errorBody{Error: http.StatusText(status)})
		return
	}
	log.Debugf("%s: %s", code, err)

	body := errorBody{Error: http.StatusText(status)}
	leaves := core.Leaves(err)
	if len(leaves) == 1 {
		body.Error = leaves[0].Message
	}
	for _, e := range leaves {
		body.Details = append(body.Details, errorDetail{Code: e.Code, Field: e.Field, Message: e.Message})
	}
	render.Status(r, status)
	render.JSON(w, r, body)
}

// Status logs a code at debug level and writes a bare JSON error with the
// given status and message.
func Status(w http.ResponseWriter, r *http.Request, status int, code string, msg string) {
	log.Debugf("%s: %s", code, msg)
	render.Status(r, status)
	render.JSON(w, r, errorBody{Error: msg})
}

func BadRequest(w http.ResponseWriter, r *http.Request, code string) {
	Status(w, r, http.StatusBadRequest, code, "invalid request")
}
