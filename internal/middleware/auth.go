package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"store-directory/internal/flash"
	"store-directory/internal/user/model"
	"store-directory/internal/user/service"
)

const (
	// SessionUserKey is the session entry holding the logged-in user id.
	SessionUserKey = "userID"
	// CurrentUserKey is the context entry holding the resolved user.
	CurrentUserKey = "currentUser"
)

// CurrentUser resolves the session user once per request and attaches
// the record to the context for handlers and templates. A stale session
// pointing at a deleted user is treated as logged out.
func CurrentUser(users *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		id, ok := session.Get(SessionUserKey).(string)
		if !ok || id == "" {
			c.Next()
			return
		}

		user, err := users.GetByID(c.Request.Context(), id)
		if err != nil {
			c.Next()
			return
		}

		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// LoginRequired short-circuits unauthenticated requests with an error
// flash and a redirect to the login page.
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetCurrentUser(c); !ok {
			flash.Add(c, flash.Error, "Oops - you must be logged in to do that!")
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetCurrentUser returns the user attached by CurrentUser, if any.
func GetCurrentUser(c *gin.Context) (*model.User, bool) {
	value, exists := c.Get(CurrentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*model.User)
	return user, ok
}
