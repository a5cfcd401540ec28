package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"flashbill/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret-key"

func setupJWT(t *testing.T) {
	t.Helper()
	InitJWT(&config.Config{JWT: config.JWTConfig{Secret: testSecret}})
}

func signClaims(t *testing.T, method jwt.SigningMethod, secret string, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestGenerateToken_RoundTrip(t *testing.T) {
	setupJWT(t)

	token, err := GenerateToken(7, "alice", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "flashbill", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestGenerateToken_DefaultTTL(t *testing.T) {
	setupJWT(t)

	token, err := GenerateToken(1, "bob", 0)
	require.NoError(t, err)
	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParseToken_Rejects(t *testing.T) {
	setupJWT(t)
	valid := Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}}
	expired := Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))}}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.valid.jwt"},
		{"bad header", "eyJhbGciOiJmb29iIn0.xxxx.yyyy"},
		{"other secret", signClaims(t, jwt.SigningMethodHS256, "another-secret", valid)},
		{"other method", signClaims(t, jwt.SigningMethodHS384, testSecret, valid)},
		{"expired", signClaims(t, jwt.SigningMethodHS256, testSecret, expired)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.token)
			assert.Error(t, err)
		})
	}

	_, err := ParseToken(signClaims(t, jwt.SigningMethodHS256, testSecret, expired))
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTAuth(t *testing.T) {
	setupJWT(t)
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(JWTAuth())
	router.GET("/ledgers", func(c *gin.Context) {
		c.String(http.StatusOK, "%d:%s", GetCurrentUserID(c), GetCurrentUsername(c))
	})

	token, err := GenerateToken(42, "carol", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"missing", "", http.StatusUnauthorized, "40101"},
		{"basic scheme", "Basic xyz", http.StatusUnauthorized, "40101"},
		{"bearer without token", "Bearer ", http.StatusUnauthorized, "未登录"},
		{"invalid token", "Bearer abc.def.ghi", http.StatusUnauthorized, "登录已失效"},
		{"valid", "Bearer " + token, http.StatusOK, "42:carol"},
		{"lowercase scheme", "bearer " + token, http.StatusOK, "42:carol"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ledgers", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestGetCurrentUserID_Unset(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, uint(0), GetCurrentUserID(c))
	assert.Empty(t, GetCurrentUsername(c))
}
