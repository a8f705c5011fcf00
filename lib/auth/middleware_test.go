package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	claims AccessClaims
	err    error
}

func (s stubVerifier) Verify(_ string) (AccessClaims, error) {
	return s.claims, s.err
}

func TestMiddleware_Secure(t *testing.T) {
	claims := AccessClaims{Subject: "user-1", Email: "jan@example.com", Role: RoleClinician}

	t.Run("missing authorization header", func(t *testing.T) {
		middleware := Middleware{Verifier: stubVerifier{claims: claims}}
		handler := middleware.Secure(func(writer http.ResponseWriter, request *http.Request) {
			t.Error("handler should not be reached")
		})
		recorder := httptest.NewRecorder()

		handler(recorder, httptest.NewRequest("GET", "/patient", nil))

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
	t.Run("rejected token", func(t *testing.T) {
		middleware := Middleware{Verifier: stubVerifier{err: errors.New("bad signature")}}
		handler := middleware.Secure(func(writer http.ResponseWriter, request *http.Request) {
			t.Error("handler should not be reached")
		})
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest("GET", "/patient", nil)
		request.Header.Set("Authorization", "Bearer some-token")

		handler(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
	t.Run("insufficient role", func(t *testing.T) {
		middleware := Middleware{Verifier: stubVerifier{claims: claims}}
		handler := middleware.Secure(func(writer http.ResponseWriter, request *http.Request) {
			t.Error("handler should not be reached")
		}, RoleDataScientist)
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest("POST", "/patient/onboard", nil)
		request.Header.Set("Authorization", "Bearer some-token")

		handler(recorder, request)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})
	t.Run("allowed role passes claims to the handler", func(t *testing.T) {
		middleware := Middleware{Verifier: stubVerifier{claims: claims}}
		var seen AccessClaims
		handler := middleware.Secure(func(writer http.ResponseWriter, request *http.Request) {
			var err error
			seen, err = ClaimsFromContext(request.Context())
			require.NoError(t, err)
		}, RoleClinician)
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest("GET", "/patient", nil)
		request.Header.Set("Authorization", "Bearer some-token")

		handler(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, claims, seen)
	})
	t.Run("empty allow-list admits any authenticated caller", func(t *testing.T) {
		middleware := Middleware{Verifier: stubVerifier{claims: claims}}
		handler := middleware.Secure(func(writer http.ResponseWriter, request *http.Request) {})
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest("GET", "/patient", nil)
		request.Header.Set("Authorization", "Bearer some-token")

		handler(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

func TestRequireRole(t *testing.T) {
	claims := AccessClaims{Role: RoleClinician}

	assert.NoError(t, RequireRole(claims))
	assert.NoError(t, RequireRole(claims, RoleClinician))
	assert.NoError(t, RequireRole(claims, RoleDataScientist, RoleClinician))
	assert.ErrorIs(t, RequireRole(claims, RoleDataScientist), ErrForbidden)
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("DATA_SCIENTIST")
	require.NoError(t, err)
	assert.Equal(t, RoleDataScientist, role)

	_, err = ParseRole("SUPERUSER")
	assert.Error(t, err)
}

func TestClaimsFromContext(t *testing.T) {
	_, err := ClaimsFromContext(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
