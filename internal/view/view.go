package view

import (
	"github.com/gin-gonic/gin"

	"store-directory/internal/flash"
	"store-directory/internal/middleware"
)

// Render is the single rendering boundary for HTML pages: it drains the
// flash queue and attaches the current user before handing the data to
// the template.
func Render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["flashes"] = flash.Pop(c)
	if user, ok := middleware.GetCurrentUser(c); ok {
		data["user"] = user
	}
	c.HTML(status, name, data)
}
