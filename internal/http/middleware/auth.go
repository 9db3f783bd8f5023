package middleware

import (
	"net/http"
	"strings"

	"busbooking/internal/domain"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// TokenParser turns a bearer token into the caller identity.
type TokenParser interface {
	ParseToken(raw string) (domain.Actor, error)
}

// Authenticate rejects requests without a valid bearer token with 401.
func Authenticate(p TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			abort(c, http.StatusUnauthorized, "unauthorized", "Unauthorized. No token provided.")
			return
		}
		actor, err := p.ParseToken(strings.TrimSpace(raw))
		if err != nil {
			abort(c, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// RequireRoles must run after Authenticate; other roles get 403.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "unauthorized", "Unauthorized. No token provided.")
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "forbidden", "Access denied. Insufficient permissions.")
	}
}

func GetActor(c *gin.Context) (domain.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return domain.Actor{}, false
	}
	actor, ok := v.(domain.Actor)
	return actor, ok
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"message":    message,
		"code":       code,
		"request_id": GetRequestID(c),
	})
}
