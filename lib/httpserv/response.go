package httpserv

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// JSON writes v as a JSON response with the given status code.
func JSON(writer http.ResponseWriter, status int, v any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	if err := json.NewEncoder(writer).Encode(v); err != nil {
		log.Debug().Err(err).Msg("Failed to write JSON response")
	}
}

// Error writes a JSON error body with the given status code. Details, when
// given, are included verbatim under "details".
func Error(writer http.ResponseWriter, status int, message string, details ...any) {
	body := map[string]any{"error": message}
	if len(details) > 0 {
		body["details"] = details
	}
	JSON(writer, status, body)
}
