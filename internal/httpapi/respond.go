package httpapi

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

// json is the codec for every request and response body.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// errorResponse is the error contract of the API.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	_ = json.NewEncoder(w).Encode(v)
}

// writeError encodes the error contract with the given status.
func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: Message(err)})
}
