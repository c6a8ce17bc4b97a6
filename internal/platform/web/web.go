// Package web holds the JSON response helpers every module handler uses.
package web

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/cornucopia-market/cornucopia-backend/internal/platform/apperr"
	"github.com/go-chi/chi/v5/middleware"
)

// JSON writes body as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// Error logs err with the request id and writes the mapped status with
// {"error": msg}. Unexpected errors get a generic message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	log.Printf("request_id=%s method=%s path=%s status=%d err=%v",
		middleware.GetReqID(r.Context()), r.Method, r.URL.Path, status, err)

	body := map[string]interface{}{"error": apperr.PublicMessage(err)}
	if fields := apperr.FieldsOf(err); len(fields) > 0 {
		body["fields"] = fields
	}
	JSON(w, status, body)
}

// Decode parses the JSON request body into v.
func Decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("invalid request body: " + err.Error())
	}
	return nil
}

// OK writes {"success": true}.
func OK(w http.ResponseWriter) {
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}
