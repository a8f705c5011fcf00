package httpserv

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	handler := RequestLogger(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusTeapot)
	}))

	t.Run("generates a request id", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest("GET", "/patient", nil))

		assert.NotEmpty(t, recorder.Header().Get("X-Request-Id"))
		assert.Equal(t, http.StatusTeapot, recorder.Code)
	})
	t.Run("keeps a caller-provided request id", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest("GET", "/patient", nil)
		request.Header.Set("X-Request-Id", "caller-id")

		handler.ServeHTTP(recorder, request)

		assert.Equal(t, "caller-id", recorder.Header().Get("X-Request-Id"))
	})
}

func TestError(t *testing.T) {
	recorder := httptest.NewRecorder()

	Error(recorder, http.StatusBadRequest, "something is off", "detail one")

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "something is off", body["error"])
	assert.Equal(t, []any{"detail one"}, body["details"])
}
