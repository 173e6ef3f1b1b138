package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, email, given, family string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email":       email,
		"given_name":  given,
		"family_name": family,
		"exp":         time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString(testSecret)
	require.NoError(t, err)
	return s
}

// probe records whatever identity the middleware attached.
func probe(got *Identity, ok *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got, *ok = FromContext(r.Context())
	})
}

func TestMiddlewareValidToken(t *testing.T) {
	var got Identity
	var ok bool
	h := Middleware(testSecret)(probe(&got, &ok))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "vol@example.org", "Ada", "Byron"))
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.True(t, ok)
	assert.Equal(t, "vol@example.org", got.Email)
	assert.Equal(t, "Ada", got.GivenName)
	assert.Equal(t, "Byron", got.FamilyName)
}

func TestMiddlewareMissingHeader(t *testing.T) {
	var got Identity
	var ok bool
	h := Middleware(testSecret)(probe(&got, &ok))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.False(t, ok)
}

func TestMiddlewareBadSignature(t *testing.T) {
	var got Identity
	var ok bool
	h := Middleware(testSecret)(probe(&got, &ok))

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "vol@example.org"})
	s, err := tok.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+s)
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.False(t, ok, "forged token must not yield an identity")
}
