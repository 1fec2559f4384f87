package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestToken(t *testing.T, ja *jwtauth.JWTAuth, claims map[string]interface{}) string {
	t.Helper()
	_, tokenStr, err := ja.Encode(claims)
	require.NoError(t, err)
	return tokenStr
}

func TestAuthUserMiddleware(t *testing.T) {
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	userID := uuid.New()
	jti := uuid.New()

	tokenStr := newTestToken(t, ja, map[string]interface{}{
		"sub": userID.String(),
		"jti": jti.String(),
		"extra_claims": map[string]interface{}{
			"email": "john@example.com",
			"roles": []string{"admin"},
		},
	})

	var got *AuthUser
	handler := Verifier(ja)(AuthUserMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetAuthUser(r)
	})))

	req := httptest.NewRequest("GET", "/users", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, userID, got.UserUuid)
	assert.Equal(t, jti, got.Jti)
	assert.Equal(t, "john@example.com", got.ExtraClaims.Email)
	assert.Equal(t, []string{"admin"}, got.ExtraClaims.Roles)
}

func TestAuthUserMiddlewareRejectsMissingToken(t *testing.T) {
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)

	handler := Verifier(ja)(AuthUserMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	})))

	req := httptest.NewRequest("GET", "/users", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type stubTokenChecker struct {
	revoked map[uuid.UUID]bool
}

func (s *stubTokenChecker) IsTokenRevoked(ctx context.Context, jti uuid.UUID) (bool, error) {
	return s.revoked[jti], nil
}

func TestRevocationMiddleware(t *testing.T) {
	jti := uuid.New()
	checker := &stubTokenChecker{revoked: map[uuid.UUID]bool{jti: true}}

	handler := RevocationMiddleware(checker)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	authUser := &AuthUser{UserId: uuid.New().String(), Jti: jti}
	req := httptest.NewRequest("GET", "/users", nil)
	req = req.WithContext(context.WithValue(req.Context(), AuthUserKey, authUser))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	authUser2 := &AuthUser{UserId: uuid.New().String(), Jti: uuid.New()}
	req2 := httptest.NewRequest("GET", "/users", nil)
	req2 = req2.WithContext(context.WithValue(req2.Context(), AuthUserKey, authUser2))
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)
	assert.Equal(t, http.StatusOK, rec2.Code)
}

func TestRequireAuth(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/users", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
