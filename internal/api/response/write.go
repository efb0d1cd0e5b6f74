package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes data as a JSON body with the given status. The body is
// marshalled before any header goes out so an encoding failure can still
// turn into a 500 instead of a truncated 200.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	if data == nil {
		w.WriteHeader(status)
		return
	}

	body, err := json.Marshal(data)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// NoContent acknowledges a state-machine action that returns no body; the
// displays pick the resulting state up from the event stream
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
