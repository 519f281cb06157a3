package httpapi

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the failure shape of the token API.
type errorBody struct {
	Error string `json:"error"`
}

// statusBody is the minimal success/failure shape of the session API.
type statusBody struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

const maxBodySize = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(v)
}
