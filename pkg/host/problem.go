package host

import (
	"encoding/json"
	"net/http"
)

// Problem is an RFC 7807 "problem details" response body.
type Problem struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// ContentTypeProblemJSON is the Content-Type of problem responses.
const ContentTypeProblemJSON = "application/problem+json"

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", ContentTypeProblemJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&Problem{
		Type:   "about:blank",
		Title:  title,
		Status: status,
		Detail: detail,
	})
}

func notFound(w http.ResponseWriter, detail string) {
	writeProblem(w, http.StatusNotFound, "Not Found", detail)
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="appfx"`)
	writeProblem(w, http.StatusUnauthorized, "Unauthorized", detail)
}

func internalServerError(w http.ResponseWriter, detail string) {
	writeProblem(w, http.StatusInternalServerError, "Internal Server Error", detail)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
