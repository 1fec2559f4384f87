package common

import (
	"net/http"

	"github.com/go-chi/render"
)

// Fields is the JSON response envelope. Every response carries a "code"
// member mirroring the HTTP status, plus operation-specific members such
// as "data", "meta", "token", "reset", "deleted" or "error".
type Fields map[string]interface{}

// Respond writes the envelope with the given status code. The "code"
// member is always set from code; extra members come from fields.
func Respond(w http.ResponseWriter, r *http.Request, code int, fields Fields) {
	body := Fields{"code": code}
	for k, v := range fields {
		body[k] = v
	}
	render.Status(r, code)
	render.JSON(w, r, body)
}

// RespondData writes a 200 envelope with a single "data" member.
func RespondData(w http.ResponseWriter, r *http.Request, data interface{}) {
	Respond(w, r, http.StatusOK, Fields{"data": data})
}

// RespondError writes {code, error} with the raw error message.
// Domain failures (including not-found conditions) deliberately surface
// as 500 here, matching the existing API contract.
func RespondError(w http.ResponseWriter, r *http.Request, code int, err error) {
	Respond(w, r, code, Fields{"error": err.Error()})
}

// RespondValidation writes a 422 envelope with field-keyed messages.
func RespondValidation(w http.ResponseWriter, r *http.Request, errs map[string][]string) {
	Respond(w, r, http.StatusUnprocessableEntity, Fields{"error": errs})
}
