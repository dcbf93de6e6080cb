package middleware

import (
	"errors"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/hokamoto/studygroup-api/internal/authz"
	"github.com/hokamoto/studygroup-api/internal/constants"
	apierrors "github.com/hokamoto/studygroup-api/internal/errors"
	"github.com/hokamoto/studygroup-api/internal/services"
)

// RequireAuth resolves the session into an (userID, role) actor and stores it
// in the gin context. Everything downstream consumes only that pair; nothing
// below this layer re-derives identity. A suspended user's session stops
// resolving here.
func RequireAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		rawID := session.Get(constants.ContextKeyUserID)

		userID, ok := toUserID(rawID)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		user, err := authService.GetUser(userID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				apierrors.Unauthorized(c, "")
			} else {
				apierrors.InternalError(c)
			}
			c.Abort()
			return
		}

		if user.Suspended {
			apierrors.Unauthorized(c, "Account is suspended")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyActor, authz.Actor{UserID: user.ID, Role: user.Role})
		c.Next()
	}
}

// RequireAdmin rejects non-admin actors. Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, exists := GetActor(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if !actor.IsAdmin() {
			apierrors.Forbidden(c)
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetActor retrieves the resolved actor from context
func GetActor(c *gin.Context) (authz.Actor, bool) {
	value, exists := c.Get(constants.ContextKeyActor)
	if !exists {
		return authz.Actor{}, false
	}

	actor, ok := value.(authz.Actor)
	return actor, ok
}

func toUserID(value interface{}) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
