package user

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandlerServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	NewHandler(newTestService()).RegisterHandlers(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	response, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { response.Body.Close() })
	return response
}

func TestHandler_Register(t *testing.T) {
	server := newTestHandlerServer(t)

	t.Run("created", func(t *testing.T) {
		response := postJSON(t, server.URL+"/auth/register",
			`{"email":"jan@example.com","name":"Jan","password":"secret","role":"CLINICIAN"}`)

		assert.Equal(t, http.StatusCreated, response.StatusCode)
		var account User
		require.NoError(t, json.NewDecoder(response.Body).Decode(&account))
		assert.NotEmpty(t, account.ID)
		assert.Empty(t, account.PasswordHash)
	})
	t.Run("duplicate email maps to 409", func(t *testing.T) {
		response := postJSON(t, server.URL+"/auth/register",
			`{"email":"jan@example.com","name":"Jan","password":"secret","role":"CLINICIAN"}`)

		assert.Equal(t, http.StatusConflict, response.StatusCode)
	})
	t.Run("unknown role maps to 400", func(t *testing.T) {
		response := postJSON(t, server.URL+"/auth/register",
			`{"email":"piet@example.com","name":"Piet","password":"secret","role":"SUPERUSER"}`)

		assert.Equal(t, http.StatusBadRequest, response.StatusCode)
	})
	t.Run("missing credentials map to 400", func(t *testing.T) {
		response := postJSON(t, server.URL+"/auth/register", `{"email":"piet@example.com","role":"CLINICIAN"}`)

		assert.Equal(t, http.StatusBadRequest, response.StatusCode)
	})
}

func TestHandler_Login(t *testing.T) {
	server := newTestHandlerServer(t)
	response := postJSON(t, server.URL+"/auth/register",
		`{"email":"jan@example.com","name":"Jan","password":"secret","role":"CLINICIAN"}`)
	require.Equal(t, http.StatusCreated, response.StatusCode)

	t.Run("valid credentials", func(t *testing.T) {
		response := postJSON(t, server.URL+"/auth/login", `{"email":"jan@example.com","password":"secret"}`)

		assert.Equal(t, http.StatusOK, response.StatusCode)
		var tokens TokenPair
		require.NoError(t, json.NewDecoder(response.Body).Decode(&tokens))
		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEmpty(t, tokens.RefreshToken)
	})
	t.Run("invalid credentials map to 401", func(t *testing.T) {
		response := postJSON(t, server.URL+"/auth/login", `{"email":"jan@example.com","password":"nope"}`)

		assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
	})
}

func TestHandler_Refresh(t *testing.T) {
	server := newTestHandlerServer(t)
	response := postJSON(t, server.URL+"/auth/register",
		`{"email":"jan@example.com","name":"Jan","password":"secret","role":"CLINICIAN"}`)
	require.Equal(t, http.StatusCreated, response.StatusCode)
	response = postJSON(t, server.URL+"/auth/login", `{"email":"jan@example.com","password":"secret"}`)
	var tokens TokenPair
	require.NoError(t, json.NewDecoder(response.Body).Decode(&tokens))

	t.Run("valid refresh token", func(t *testing.T) {
		response := postJSON(t, server.URL+"/auth/refresh", `{"refreshToken":"`+tokens.RefreshToken+`"}`)

		assert.Equal(t, http.StatusOK, response.StatusCode)
	})
	t.Run("garbage token maps to 401", func(t *testing.T) {
		response := postJSON(t, server.URL+"/auth/refresh", `{"refreshToken":"garbage"}`)

		assert.Equal(t, http.StatusUnauthorized, response.StatusCode)
	})
}
