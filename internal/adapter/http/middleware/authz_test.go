package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/francoabl/HuertoHogar/configs"
)

func testConfig() configs.Config {
	var cfg configs.Config
	cfg.Security.JWTSecret = "test-secret"
	cfg.Security.Issuer = "test-issuer"
	cfg.Security.Audience = "test-audience"
	return cfg
}

func signToken(t *testing.T, cfg configs.Config, sub string, perms []string, mutate func(jwt.MapClaims)) string {
	t.Helper()

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   cfg.Security.Issuer,
		"aud":   cfg.Security.Audience,
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"exp":   now.Add(5 * time.Minute).Unix(),
		"sub":   sub,
		"perms": perms,
	}
	if mutate != nil {
		mutate(claims)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Security.JWTSecret))
	require.NoError(t, err)
	return signed
}

func authzEngine(cfg configs.Config, requiredPerms ...string) (*gin.Engine, *Identity) {
	gin.SetMode(gin.TestMode)

	var seen Identity
	r := gin.New()
	r.GET("/probe", NewAuthz(cfg).Require(requiredPerms...), func(c *gin.Context) {
		seen, _ = IdentityFrom(c)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r, &seen
}

func probe(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/probe", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthz_ValidTokenSetsIdentity(t *testing.T) {
	cfg := testConfig()
	r, seen := authzEngine(cfg, "orders.read")

	token := signToken(t, cfg, "u1", []string{"orders.read", "orders.write"}, nil)
	rec := probe(r, token)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", seen.UserID)
	assert.False(t, seen.Admin)
}

func TestAuthz_AdminPermMarksIdentity(t *testing.T) {
	cfg := testConfig()
	r, seen := authzEngine(cfg, "orders.admin")

	token := signToken(t, cfg, "ops", []string{"orders.read", "orders.write", "orders.admin"}, nil)
	rec := probe(r, token)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, seen.Admin)
}

func TestAuthz_MissingToken(t *testing.T) {
	r, _ := authzEngine(testConfig(), "orders.read")

	rec := probe(r, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthz_WrongSecret(t *testing.T) {
	cfg := testConfig()
	r, _ := authzEngine(cfg, "orders.read")

	bad := testConfig()
	bad.Security.JWTSecret = "other-secret"
	token := signToken(t, bad, "u1", []string{"orders.read"}, nil)

	rec := probe(r, token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthz_IssuerMismatch(t *testing.T) {
	cfg := testConfig()
	r, _ := authzEngine(cfg, "orders.read")

	token := signToken(t, cfg, "u1", []string{"orders.read"}, func(c jwt.MapClaims) {
		c["iss"] = "someone-else"
	})
	rec := probe(r, token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthz_MissingPermForbidden(t *testing.T) {
	cfg := testConfig()
	r, _ := authzEngine(cfg, "orders.admin")

	token := signToken(t, cfg, "u1", []string{"orders.read", "orders.write"}, nil)
	rec := probe(r, token)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthz_MissingSubject(t *testing.T) {
	cfg := testConfig()
	r, _ := authzEngine(cfg, "orders.read")

	token := signToken(t, cfg, "", []string{"orders.read"}, func(c jwt.MapClaims) {
		delete(c, "sub")
	})
	rec := probe(r, token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthz_ExpiredToken(t *testing.T) {
	cfg := testConfig()
	r, _ := authzEngine(cfg, "orders.read")

	token := signToken(t, cfg, "u1", []string{"orders.read"}, func(c jwt.MapClaims) {
		c["exp"] = time.Now().Add(-10 * time.Minute).Unix()
	})
	rec := probe(r, token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
