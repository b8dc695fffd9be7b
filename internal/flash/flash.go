package flash

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Kind partitions flash messages into the buckets the templates render.
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
)

// Add queues a message on the session for the next rendered page.
func Add(c *gin.Context, kind Kind, message string) {
	session := sessions.Default(c)
	session.AddFlash(message, string(kind))
	_ = session.Save()
}

// Pop drains all queued messages, grouped by kind. The rendering
// boundary calls this exactly once per page.
func Pop(c *gin.Context) map[string][]string {
	session := sessions.Default(c)
	out := make(map[string][]string)

	for _, kind := range []Kind{Success, Error} {
		for _, raw := range session.Flashes(string(kind)) {
			if msg, ok := raw.(string); ok {
				out[string(kind)] = append(out[string(kind)], msg)
			}
		}
	}
	_ = session.Save()
	return out
}
