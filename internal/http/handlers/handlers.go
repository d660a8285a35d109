package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-form-gatekeeper/internal/config"
	"github.com/tbourn/go-form-gatekeeper/internal/domain"
	"github.com/tbourn/go-form-gatekeeper/internal/ipresolve"
	"github.com/tbourn/go-form-gatekeeper/internal/repo"
	"github.com/tbourn/go-form-gatekeeper/internal/services"
	"github.com/tbourn/go-form-gatekeeper/internal/utils"
)

//
// Service contracts (context-aware)
//

// FormGuard is the protection pipeline as the form routes use it.
// *services.Gatekeeper implements it.
type FormGuard interface {
	OnFormRender(ctx context.Context, formType domain.FormType, sid, clientIP, userAgent string) services.RenderedFields
	Validate(ctx context.Context, sub *domain.Submission) services.Decision
}

// Authenticator issues and checks administrator tokens.
type Authenticator interface {
	Login(username, password string) (string, time.Time, error)
	Verify(token string) (string, error)
}

// ReportService reads and prunes the event log.
type ReportService interface {
	Summary(ctx context.Context) (services.Summary, error)
	Daily(ctx context.Context, days int) ([]domain.DailyStat, error)
	Events(ctx context.Context, f repo.EventFilter, page, pageSize int) ([]domain.BlockEvent, int64, error)
	EventsStats(ctx context.Context, f repo.EventFilter) (int64, *time.Time, error)
	Export(ctx context.Context, f repo.EventFilter, w io.Writer) error
	Purge(ctx context.Context, olderThanDays int, resetStats bool) (int64, error)
}

// ListService manages the whitelist and blacklist.
type ListService interface {
	Add(ctx context.Context, in services.NewListEntry) (*domain.ListEntry, error)
	Delete(ctx context.Context, id uint) error
	Toggle(ctx context.Context, id uint) (*domain.ListEntry, error)
	List(ctx context.Context, kind domain.ListKind, typ domain.ListType) ([]domain.ListEntry, error)
}

// PreferenceService reads and writes the pipeline preferences.
type PreferenceService interface {
	Load(ctx context.Context) (config.Settings, error)
	Update(ctx context.Context, changes map[string]string) (config.Settings, error)
	RotateCronToken(ctx context.Context) (string, error)
}

// Cleaner runs one retention pass.
type Cleaner interface {
	Run(ctx context.Context) (services.CleanupResult, error)
}

//
// Handler wiring
//

// CookieOptions controls the cookies the handlers set.
type CookieOptions struct {
	// SessionName is the visitor session cookie.
	SessionName string
	// Secure marks every cookie Secure.
	Secure bool
	// AdminTTL is the lifetime of the admin cookie set on login.
	AdminTTL time.Duration
}

// Deps are the collaborators of Handlers. Guard is called per request so a
// preference change takes effect without rebuilding the router.
type Deps struct {
	Guard    func() FormGuard
	Admin    Authenticator
	Reports  ReportService
	Lists    ListService
	Prefs    PreferenceService
	Cleanup  Cleaner
	Resolver ipresolve.Resolver
	Cookies  CookieOptions
}

// Handlers groups the form, admin and cron endpoints.
type Handlers struct {
	guard    func() FormGuard
	admin    Authenticator
	reports  ReportService
	lists    ListService
	prefs    PreferenceService
	cleanup  Cleaner
	resolver ipresolve.Resolver
	cookies  CookieOptions
}

// New constructs a Handlers bound to d.
func New(d Deps) *Handlers {
	if d.Cookies.SessionName == "" {
		d.Cookies.SessionName = "gk_sid"
	}
	return &Handlers{
		guard:    d.Guard,
		admin:    d.Admin,
		reports:  d.Reports,
		lists:    d.Lists,
		prefs:    d.Prefs,
		cleanup:  d.Cleanup,
		resolver: d.Resolver,
		cookies:  d.Cookies,
	}
}

//
// Helpers
//

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// pageOf reads the page and page_size query parameters.
func pageOf(c *gin.Context) utils.Page {
	return utils.ParsePage(c.Query("page"), c.Query("page_size"), defaultPageSize, maxPageSize)
}

// sessionID returns the visitor session id from its cookie, or "" when the
// cookie is missing or malformed.
func (h *Handlers) sessionID(c *gin.Context) string {
	v, err := c.Cookie(h.cookies.SessionName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(v); err != nil {
		return ""
	}
	return v
}

// ensureSession returns the visitor session id, minting one and setting its
// cookie when there is none.
func (h *Handlers) ensureSession(c *gin.Context) string {
	if sid := h.sessionID(c); sid != "" {
		return sid
	}
	sid := uuid.NewString()
	h.setCookie(c, h.cookies.SessionName, sid, 0)
	return sid
}

// setCookie writes an HttpOnly, SameSite=Lax cookie scoped to the whole
// site. maxAge follows http.Cookie semantics.
func (h *Handlers) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", h.cookies.Secure, true)
}
