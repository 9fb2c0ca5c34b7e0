package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Dahbi-Dev/Excel-easy/pkg/httputil"
)

// Recovery turns a handler panic into a 500 envelope. The panic is logged
// with the workspace it happened in, when one was bound.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				event := log.Error()
				if ws := CurrentWorkspace(c); ws != nil {
					event = event.Str("workspace", ws.ID())
				}
				event.
					Interface("error", err).
					Str("stack", string(debug.Stack())).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Str("request_id", c.GetString(ContextRequestID)).
					Msg("Request panic recovered")

				c.AbortWithStatusJSON(http.StatusInternalServerError, httputil.Response{
					Error: &httputil.Error{
						Code:    http.StatusInternalServerError,
						Message: "Internal server error",
						TraceID: c.GetString(ContextRequestID),
					},
				})
			}
		}()
		c.Next()
	}
}
