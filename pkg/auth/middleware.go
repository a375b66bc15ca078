package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware validates session tokens and injects the caller's
// identity into the Gin context as user_id / email. Every request
// needs a token; WebSocket upgrades go through OptionalJWTAuthMiddleware
// with a query-parameter token instead.
func JWTAuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			// Browser clients typically use httpOnly cookies for auth.
			if cookieToken, err := c.Cookie("access_token"); err == nil && cookieToken != "" {
				auth = "Bearer " + cookieToken
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Not authenticated."})
				c.Abort()
				return
			}
		}

		parts := strings.Split(auth, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Not authenticated."})
			c.Abort()
			return
		}

		claims, err := ValidateJWT(parts[1], secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Not authenticated."})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}

// OptionalJWTAuthMiddleware resolves the caller's identity when a
// token is present but lets anonymous requests through. WebSocket
// clients pass the token as a query parameter because browsers cannot
// set headers on upgrade requests.
func OptionalJWTAuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		} else if cookieToken, err := c.Cookie("access_token"); err == nil && cookieToken != "" {
			token = cookieToken
		} else if q := c.Query("token"); q != "" {
			token = q
		}
		if token != "" {
			if claims, err := ValidateJWT(token, secret); err == nil {
				c.Set("user_id", claims.UserID)
				c.Set("email", claims.Email)
			}
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user id from the context, or ""
// when the request carries no identity.
func CurrentUserID(c *gin.Context) string {
	return c.GetString("user_id")
}
