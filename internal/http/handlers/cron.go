package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-form-gatekeeper/internal/http/middleware"
)

// CronTokenHeader carries the cron token; the token query parameter is
// accepted too for plain curl jobs.
const CronTokenHeader = "X-Cron-Token"

// RunCleanup godoc
// @ID          runCleanup
// @Summary     Run the retention cleanup
// @Description Deletes log entries past the retention period and expired session state. Authenticated by the cron token.
// @Tags        Cron
// @Produce     json
//
// @Param       X-Cron-Token  header  string  false  "Cron token"
// @Param       token         query   string  false  "Cron token (alternative to the header)"
//
// @Success     200  {object}  services.CleanupResult
// @Failure     403  {object}  handlers.ErrorResponse  "Invalid or missing token"
// @Failure     500  {object}  handlers.ErrorResponse  "Cleanup failed"
// @Router      /cron/cleanup [get]
// @Router      /cron/cleanup [post]
func (h *Handlers) RunCleanup(c *gin.Context) {
	ctx := c.Request.Context()
	submitted := strings.TrimSpace(c.GetHeader(CronTokenHeader))
	if submitted == "" {
		submitted = strings.TrimSpace(c.Query("token"))
	}
	st, err := h.prefs.Load(ctx)
	if err != nil {
		internal(c, ErrCodeInternal, err)
		return
	}
	if submitted == "" || st.CronToken == "" ||
		subtle.ConstantTimeCompare([]byte(submitted), []byte(st.CronToken)) != 1 {
		fail(c, http.StatusForbidden, ErrCodeForbidden, "invalid or missing token")
		return
	}

	res, err := h.cleanup.Run(ctx)
	if err != nil {
		internal(c, ErrCodeCleanupFailed, err)
		return
	}
	middleware.LoggerFrom(c).Info().
		Int64("logs_deleted", res.LogsDeleted).
		Int("sessions_cleaned", res.SessionsCleaned).
		Msg("cron cleanup completed")
	ok(c, http.StatusOK, res)
}
