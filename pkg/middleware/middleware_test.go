package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, key string, claims jwt.MapClaims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", CheckAuth(secret), func(c *gin.Context) {
		c.JSON(200, gin.H{"id": state.CurrentUser(c)})
	})
	return r
}

func TestCheckAuth(t *testing.T) {
	valid := sign(t, secret, jwt.MapClaims{"id": 7, "exp": time.Now().Add(time.Hour).Unix()})

	cases := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"malformed", "Token abc", "", http.StatusBadRequest},
		{"valid header", "Bearer " + valid, "", http.StatusOK},
		{"valid query", "", valid, http.StatusOK},
		{"wrong key", "Bearer " + sign(t, "other", jwt.MapClaims{"id": 7, "exp": time.Now().Add(time.Hour).Unix()}), "", http.StatusUnauthorized},
		{"expired", "Bearer " + sign(t, secret, jwt.MapClaims{"id": 7, "exp": time.Now().Add(-time.Hour).Unix()}), "", http.StatusUnauthorized},
		{"no subject", "Bearer " + sign(t, secret, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}), "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target := "/me"
			if tc.query != "" {
				target += "?token=" + tc.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router().ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.JSONEq(t, `{"id":7}`, w.Body.String())
			}
		})
	}
}
