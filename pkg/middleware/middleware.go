package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/mrifqidaffaaditya/WA-AKG-sub000/pkg/state"
	"github.com/rs/zerolog"
)

func ClaimIp() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(state.CurrentUserIP, c.ClientIP())
		c.Next()
	}
}

// RequestLogger writes one structured line per request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		evt := log.Info()
		if c.Writer.Status() >= 500 {
			evt = log.Error()
		}
		evt.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Str("ip", c.ClientIP()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// CheckAuth accepts HS256 bearer tokens signed with secret. Browsers
// opening a websocket cannot set headers, so a token query parameter is
// accepted too.
func CheckAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		myJwt := c.Query("token")
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			authToken := strings.Split(authHeader, " ")
			if len(authToken) != 2 || authToken[0] != "Bearer" {
				c.JSON(400, gin.H{"error": "Invalid/Malformed auth token"})
				c.Abort()
				return
			}
			myJwt = authToken[1]
		}
		if myJwt == "" {
			c.JSON(401, gin.H{"error": "Token is required"})
			c.Abort()
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(myJwt, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil {
			c.JSON(401, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		if !token.Valid {
			c.JSON(401, gin.H{"error": "Token is not valid"})
			c.Abort()
			return
		}

		if exp, ok := claims["exp"].(float64); !ok || float64(time.Now().Unix()) > exp {
			c.JSON(401, gin.H{"error": "Token expired"})
			c.Abort()
			return
		}

		userID, ok := claims["id"].(float64)
		if !ok || userID <= 0 {
			c.JSON(401, gin.H{"error": "Token is not valid"})
			c.Abort()
			return
		}
		c.Set(state.CurrentUserId, uint(userID))
		c.Next()
	}
}
