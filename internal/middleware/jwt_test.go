package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundtrip(t *testing.T) {
	Configure("test_secret", time.Hour)
	userID := uuid.New()

	token, err := GenerateToken(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "mindcanvus-api", claims.Issuer)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	Configure("test_secret", time.Hour)

	_, err := ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestTokenWithoutExpiryClaim(t *testing.T) {
	Configure("test_secret", time.Hour)
	userID := uuid.New()

	// A validly-signed token that never carried an exp claim.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
			Issuer:   "mindcanvus-api",
		},
	})
	signed, err := token.SignedString(jwtSecret)
	require.NoError(t, err)

	claims, err := ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Nil(t, claims.ExpiresAt)

	handler := ApplyJWTMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, "/post")

	req := httptest.NewRequest(http.MethodPost, "/post", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	Configure("test_secret", time.Hour)

	handler := ApplyJWTMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, "/post")

	// No Authorization header.
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/post", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid bearer token passes and the user ID lands in the context.
	userID := uuid.New()
	token, err := GenerateToken(userID)
	require.NoError(t, err)

	var seenID uuid.UUID
	handler = ApplyJWTMiddleware(func(w http.ResponseWriter, r *http.Request) {
		seenID, _ = GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}, "/post")

	req := httptest.NewRequest(http.MethodPost, "/post", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, seenID)
}

func TestUnprotectedRoutePassesWithoutToken(t *testing.T) {
	Configure("test_secret", time.Hour)

	handler := ApplyJWTMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, "/posts")

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/posts", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))

	// Other clients are unaffected.
	assert.True(t, rl.Allow("10.0.0.2"))
}
