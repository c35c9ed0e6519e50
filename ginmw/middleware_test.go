package ginmw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mantisdb-labs/qrwlock"
)

func TestDeadlockScopeInstallsTaskAndAssignsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(DeadlockScope())

	var taskName string
	router.GET("/widgets/:id", func(c *gin.Context) {
		task, ok := qrwlock.CurrentTask(c.Request.Context())
		require.True(t, ok)
		taskName = task.Name()
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/widgets/7", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Contains(t, taskName, "GET /widgets/:id#")
}

func TestDeadlockScopePreservesSuppliedRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(DeadlockScope())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-ID"))
}
