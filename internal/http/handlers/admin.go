// Admin HTTP handlers.
//
// This file exposes the administrator API:
//   - POST   /admin/login
//   - GET    /admin/events            (paginated, filters, ETag support)
//   - GET    /admin/events/export     (CSV)
//   - DELETE /admin/events            (manual purge)
//   - GET    /admin/stats, /admin/stats/daily
//   - GET    /admin/lists, POST /admin/lists
//   - DELETE /admin/lists/{id}, POST /admin/lists/{id}/toggle
//   - GET    /admin/preferences, PUT /admin/preferences
//   - POST   /admin/cron-token
//
// Every route except login sits behind middleware.AdminAuth.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-form-gatekeeper/internal/auth"
	"github.com/tbourn/go-form-gatekeeper/internal/config"
	"github.com/tbourn/go-form-gatekeeper/internal/domain"
	"github.com/tbourn/go-form-gatekeeper/internal/http/middleware"
	"github.com/tbourn/go-form-gatekeeper/internal/repo"
	"github.com/tbourn/go-form-gatekeeper/internal/services"
	"github.com/tbourn/go-form-gatekeeper/internal/utils"
)

//
// DTOs
//

// LoginRequest is the JSON payload for an admin login.
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=128" example:"admin"`
	Password string `json:"password" binding:"required,max=256"`
}

// LoginResponse carries the bearer token and its expiry.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListEventsResponse wraps a page of log entries and pagination information.
type ListEventsResponse struct {
	Events     []domain.BlockEvent `json:"events"`
	Pagination Pagination          `json:"pagination"`
}

// PurgeResponse reports how many log entries a purge removed.
type PurgeResponse struct {
	Deleted int64 `json:"deleted"`
}

// ListEntriesResponse wraps list entries.
type ListEntriesResponse struct {
	Entries []domain.ListEntry `json:"entries"`
}

// CronTokenResponse carries a freshly generated cron token.
type CronTokenResponse struct {
	Token string `json:"token"`
}

//
// Helpers
//

// eventFilter reads the type, form_type and blocked query filters.
func eventFilter(c *gin.Context) (repo.EventFilter, bool) {
	var f repo.EventFilter
	if v := c.Query("type"); v != "" {
		f.Type = domain.BlockType(v)
		if !f.Type.Valid() {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown block type")
			return f, false
		}
	}
	if v := c.Query("form_type"); v != "" {
		ft, okType := domain.ParseFormType(v)
		if !okType {
			fail(c, http.StatusBadRequest, ErrCodeInvalidFormType, "unknown form type")
			return f, false
		}
		f.FormType = ft
	}
	if v := c.Query("blocked"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "blocked must be a boolean")
			return f, false
		}
		f.Blocked = &b
	}
	return f, true
}

func entryID(c *gin.Context) (uint, bool) {
	n, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || n == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id must be a positive integer")
		return 0, false
	}
	return uint(n), true
}

func (h *Handlers) listError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrListEntryNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "list entry not found")
	case errors.Is(err, services.ErrDuplicateListEntry):
		fail(c, http.StatusConflict, ErrCodeConflict, "list entry already exists")
	case errors.Is(err, services.ErrInvalidListEntry):
		fail(c, http.StatusBadRequest, ErrCodeInvalidListEntry, err.Error())
	default:
		internal(c, ErrCodeInternal, err)
	}
}

//
// Handlers
//

// AdminLogin godoc
// @ID          adminLogin
// @Summary     Administrator login
// @Description Checks the credentials and returns a bearer token. The same token is set as the gk_admin cookie, which also lets the administrator's own form submissions through.
// @Tags        Admin
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Credentials"
//
// @Success     200  {object}  handlers.LoginResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     503  {object}  handlers.ErrorResponse  "Login not configured"
// @Router      /admin/login [post]
func (h *Handlers) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "username and password required")
		return
	}
	tok, exp, err := h.admin.Login(req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrLoginDisabled):
		fail(c, http.StatusServiceUnavailable, ErrCodeLoginDisabled, "admin login is not configured")
		return
	case err != nil:
		middleware.LoggerFrom(c).Warn().Str("username", req.Username).Msg("admin login failed")
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid credentials")
		return
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AdminCookie, tok, int(time.Until(exp).Seconds()), "/", "", h.cookies.Secure, true)
	ok(c, http.StatusOK, LoginResponse{Token: tok, ExpiresAt: exp})
}

// ListEvents godoc
// @ID          listEvents
// @Summary     List log entries (paginated)
// @Description Returns a page of the event log, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
//
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Param       page           query   int     false  "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false  "Items per page"  minimum(1) maximum(100) default(20)
// @Param       type           query   string  false  "Block type"      Enums(bot, spam, honeypot, javascript, rate_limit, content, other)
// @Param       form_type      query   string  false  "Form type"       Enums(item, contact, register, comment)
// @Param       blocked        query   bool    false  "Only blocked (true) or accepted (false) entries"
//
// @Success     200  {object}  handlers.ListEventsResponse
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string  "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/events [get]
func (h *Handlers) ListEvents(c *gin.Context) {
	ctx := c.Request.Context()
	f, valid := eventFilter(c)
	if !valid {
		return
	}
	pg := pageOf(c)

	// ETag pre-check (best effort).
	if count, maxTS, err := h.reports.EventsStats(ctx, f); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.Unix()
		}
		blocked := "all"
		if f.Blocked != nil {
			blocked = strconv.FormatBool(*f.Blocked)
		}
		etag := fmt.Sprintf(`W/"events:%s:%s:%s:%d:%d:%d:%d"`, f.Type, f.FormType, blocked, pg.Number, pg.Size, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, total, err := h.reports.Events(ctx, f, pg.Number, pg.Size)
	if err != nil {
		internal(c, ErrCodeListFailed, err)
		return
	}

	ok(c, http.StatusOK, ListEventsResponse{
		Events: items,
		Pagination: Pagination{
			Page:       pg.Number,
			PageSize:   pg.Size,
			Total:      total,
			TotalPages: pg.Pages(total),
			HasNext:    pg.HasNext(total),
		},
	})
}

// ExportEvents godoc
// @ID          exportEvents
// @Summary     Export log entries as CSV
// @Description UTF-8 CSV with BOM and the header ID,Date/Time,IP Address,User Agent,Type,Reason,Form Type,Email,Blocked.
// @Tags        Admin
// @Produce     text/csv
// @Security    BearerAuth
//
// @Param       type       query  string  false  "Block type"
// @Param       form_type  query  string  false  "Form type"
// @Param       blocked    query  bool    false  "Blocked filter"
//
// @Success     200  {string}  string  "CSV file"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Router      /admin/events/export [get]
func (h *Handlers) ExportEvents(c *gin.Context) {
	f, valid := eventFilter(c)
	if !valid {
		return
	}
	name := fmt.Sprintf("gatekeeper-log-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Status(http.StatusOK)
	if err := h.reports.Export(c.Request.Context(), f, c.Writer); err != nil {
		// Status and headers are already sent.
		middleware.LoggerFrom(c).Error().Err(err).Msg("csv export aborted")
		_ = c.Error(err)
	}
}

// PurgeEvents godoc
// @ID          purgeEvents
// @Summary     Delete log entries
// @Description Deletes entries older than older_than_days, or every entry when it is 0. reset_stats also clears the daily counters.
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
//
// @Param       older_than_days  query  int   false  "Age threshold in days (0 deletes all)"  minimum(0) default(0)
// @Param       reset_stats      query  bool  false  "Also clear daily statistics"
//
// @Success     200  {object}  handlers.PurgeResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/events [delete]
func (h *Handlers) PurgeEvents(c *gin.Context) {
	days := utils.IntOr(c.Query("older_than_days"), 0)
	if days < 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "older_than_days must not be negative")
		return
	}
	reset, _ := strconv.ParseBool(c.DefaultQuery("reset_stats", "false"))
	n, err := h.reports.Purge(c.Request.Context(), days, reset)
	if err != nil {
		internal(c, ErrCodeInternal, err)
		return
	}
	middleware.LoggerFrom(c).Info().Int("older_than_days", days).Bool("reset_stats", reset).Int64("deleted", n).Msg("log purged")
	ok(c, http.StatusOK, PurgeResponse{Deleted: n})
}

// Stats godoc
// @ID          stats
// @Summary     Block summary
// @Description Blocked submissions today, in the last 7 and 30 days and in total, with the top categories of the last 30 days.
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  services.Summary
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/stats [get]
func (h *Handlers) Stats(c *gin.Context) {
	sum, err := h.reports.Summary(c.Request.Context())
	if err != nil {
		internal(c, ErrCodeInternal, err)
		return
	}
	ok(c, http.StatusOK, sum)
}

// DailyStats godoc
// @ID          dailyStats
// @Summary     Daily block counters
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
// @Param       days  query  int  false  "Number of days"  minimum(1) maximum(366) default(30)
// @Success     200  {array}   domain.DailyStat
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/stats/daily [get]
func (h *Handlers) DailyStats(c *gin.Context) {
	rows, err := h.reports.Daily(c.Request.Context(), utils.IntOr(c.Query("days"), 30))
	if err != nil {
		internal(c, ErrCodeInternal, err)
		return
	}
	ok(c, http.StatusOK, rows)
}

// ListEntries godoc
// @ID          listEntries
// @Summary     List whitelist and blacklist entries
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
// @Param       kind  query  string  false  "List kind"   Enums(whitelist, blacklist)
// @Param       type  query  string  false  "Entry type"  Enums(ip, email, domain, keyword)
// @Success     200  {object}  handlers.ListEntriesResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/lists [get]
func (h *Handlers) ListEntries(c *gin.Context) {
	items, err := h.lists.List(c.Request.Context(), domain.ListKind(c.Query("kind")), domain.ListType(c.Query("type")))
	if err != nil {
		internal(c, ErrCodeListFailed, err)
		return
	}
	if items == nil {
		items = []domain.ListEntry{}
	}
	ok(c, http.StatusOK, ListEntriesResponse{Entries: items})
}

// AddListEntry godoc
// @ID          addListEntry
// @Summary     Add a list entry
// @Description IPs accept exact addresses, CIDR ranges and trailing wildcards (192.168.1.*).
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body  services.NewListEntry  true  "Entry"
// @Success     201  {object}  domain.ListEntry
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid entry"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     409  {object}  handlers.ErrorResponse  "Already listed"
// @Router      /admin/lists [post]
func (h *Handlers) AddListEntry(c *gin.Context) {
	var req services.NewListEntry
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "kind, type and value required")
		return
	}
	e, err := h.lists.Add(c.Request.Context(), req)
	if err != nil {
		h.listError(c, err)
		return
	}
	ok(c, http.StatusCreated, e)
}

// DeleteListEntry godoc
// @ID          deleteListEntry
// @Summary     Delete a list entry
// @Tags        Admin
// @Security    BearerAuth
// @Param       id  path  int  true  "Entry ID"
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Router      /admin/lists/{id} [delete]
func (h *Handlers) DeleteListEntry(c *gin.Context) {
	id, valid := entryID(c)
	if !valid {
		return
	}
	if err := h.lists.Delete(c.Request.Context(), id); err != nil {
		h.listError(c, err)
		return
	}
	noContent(c)
}

// ToggleListEntry godoc
// @ID          toggleListEntry
// @Summary     Flip a list entry between active and inactive
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
// @Param       id  path  int  true  "Entry ID"
// @Success     200  {object}  domain.ListEntry
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Router      /admin/lists/{id}/toggle [post]
func (h *Handlers) ToggleListEntry(c *gin.Context) {
	id, valid := entryID(c)
	if !valid {
		return
	}
	e, err := h.lists.Toggle(c.Request.Context(), id)
	if err != nil {
		h.listError(c, err)
		return
	}
	ok(c, http.StatusOK, e)
}

// GetPreferences godoc
// @ID          getPreferences
// @Summary     Current pipeline preferences
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  config.Settings
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/preferences [get]
func (h *Handlers) GetPreferences(c *gin.Context) {
	st, err := h.prefs.Load(c.Request.Context())
	if err != nil {
		internal(c, ErrCodeInternal, err)
		return
	}
	ok(c, http.StatusOK, st)
}

// UpdatePreferences godoc
// @ID          updatePreferences
// @Summary     Change pipeline preferences
// @Description Partial update keyed by preference name. The whole result is validated before anything is stored, and the new settings apply to the next request.
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body  object  true  "Preference changes, e.g. {\"url_limit\": 2, \"js_enabled\": false}"
// @Success     200  {object}  config.Settings
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid preferences"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Router      /admin/preferences [put]
func (h *Handlers) UpdatePreferences(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil || len(raw) == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "a JSON object of preferences is required")
		return
	}
	changes := make(map[string]string, len(raw))
	for k, v := range raw {
		s, err := config.PreferenceString(v)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeInvalidPreferences, k+": unsupported value")
			return
		}
		changes[k] = s
	}
	st, err := h.prefs.Update(c.Request.Context(), changes)
	switch {
	case errors.Is(err, services.ErrInvalidPreferences):
		fail(c, http.StatusBadRequest, ErrCodeInvalidPreferences, err.Error())
		return
	case err != nil:
		internal(c, ErrCodeInternal, err)
		return
	}
	ok(c, http.StatusOK, st)
}

// RotateCronToken godoc
// @ID          rotateCronToken
// @Summary     Generate a new cron token
// @Description The previous token stops working immediately.
// @Tags        Admin
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  handlers.CronTokenResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /admin/cron-token [post]
func (h *Handlers) RotateCronToken(c *gin.Context) {
	tok, err := h.prefs.RotateCronToken(c.Request.Context())
	if err != nil {
		internal(c, ErrCodeInternal, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	ok(c, http.StatusOK, CronTokenResponse{Token: tok})
}
