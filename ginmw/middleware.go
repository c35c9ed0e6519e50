// Package ginmw installs qrwlock's deadlock-checked task scope around
// each inbound gin request, so handlers and anything they call into
// can take qrwlock primitives without wiring WithDeadlockCheck by hand.
// Grounded on gauth-demo-app/web/backend/middleware/middleware.go's
// RequestID, which follows the same "derive an id, stash it on the
// context, call Next" shape.
package ginmw

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mantisdb-labs/qrwlock"
)

// DeadlockScope installs a *qrwlock.Task on every request's context,
// named "<METHOD> <route>#<request-id>" so that concurrent requests to
// the same route still get distinct task identities for recursion and
// cycle checks. It warns (via qrwlock.WarnLockHeld) if the handler
// returns while still holding a lock, and brackets the request with
// qrwlock.DefaultScopeHook (a no-op unless the caller installed an
// OpenTelemetry hook via qrwlock.NewOTelSpanHook).
func DeadlockScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Header("X-Request-ID", reqID)
		c.Set("RequestID", reqID)

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		taskName := fmt.Sprintf("%s %s#%s", c.Request.Method, route, reqID)

		ctx := qrwlock.WithDeadlockCheck(c.Request.Context(), taskName)
		ctx, endSpan := qrwlock.DefaultScopeHook.Start(ctx, taskName)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		qrwlock.WarnLockHeld(ctx, taskName)
		endSpan()
	}
}
