package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// AdminCookie holds the admin token for browser sessions.
	AdminCookie = "gk_admin"
	// adminUserKey is the Gin context key of the authenticated admin.
	adminUserKey = "adminUser"
)

// TokenVerifier validates an admin token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AdminAuth admits requests carrying a valid admin token, taken from an
// "Authorization: Bearer" header or else the admin cookie. Anything else is
// answered with 401 in the standard error envelope.
func AdminAuth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearerToken(c.GetHeader("Authorization"))
		if tok == "" {
			tok, _ = c.Cookie(AdminCookie)
		}
		user, err := v.Verify(tok)
		if tok == "" || err != nil {
			c.Header("WWW-Authenticate", `Bearer realm="admin"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "unauthorized",
				"message":    "admin authentication required",
			})
			return
		}
		c.Set(adminUserKey, user)
		c.Next()
	}
}

// AdminUser returns the admin authenticated by AdminAuth, or "".
func AdminUser(c *gin.Context) string {
	v, _ := c.Get(adminUserKey)
	return asString(v)
}

func bearerToken(h string) string {
	scheme, tok, found := strings.Cut(strings.TrimSpace(h), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}
