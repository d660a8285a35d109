// Package services – EventLog
//
// EventLog persists pipeline decisions into the block_events table and keeps
// the per-day block counters in step, both in one transaction. With enhanced
// logging on, each row also carries analytics derived from the submission.
package services

import (
	"context"
	"encoding/json"
	"net"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oschwald/geoip2-golang"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tbourn/go-form-gatekeeper/internal/content"
	"github.com/tbourn/go-form-gatekeeper/internal/domain"
	"github.com/tbourn/go-form-gatekeeper/internal/email"
	"github.com/tbourn/go-form-gatekeeper/internal/repo"
	"github.com/tbourn/go-form-gatekeeper/internal/session"
)

// maxMatchedKeywords caps the keyword list stored per row.
const maxMatchedKeywords = 10

// CountryResolver looks up the country of an address. *geoip2.Reader
// satisfies it.
type CountryResolver interface {
	Country(ip net.IP) (*geoip2.Country, error)
}

// EventLog records decisions in the database.
type EventLog struct {
	DB *gorm.DB
	// GeoIP is optional; without it rows carry no country.
	GeoIP CountryResolver
	Now   func() time.Time
}

// NewEventLog returns an EventLog using the wall clock.
func NewEventLog(db *gorm.DB, geo CountryResolver) *EventLog {
	return &EventLog{DB: db, GeoIP: geo, Now: time.Now}
}

func (l *EventLog) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// Record appends one row for d and, for rejections, bumps the daily counters.
func (l *EventLog) Record(ctx context.Context, sub *domain.Submission, d Decision, enhanced bool) error {
	tr := otel.Tracer("services/EventLog")
	ctx, span := tr.Start(ctx, "Record",
		trace.WithAttributes(
			attribute.String("form.type", string(sub.FormType)),
			attribute.Bool("blocked", !d.Accepted),
		),
	)
	defer span.End()

	ev := l.buildEvent(sub, d, enhanced)
	return l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.InsertEvent(ctx, tx, ev); err != nil {
			return err
		}
		if !ev.Blocked {
			return nil
		}
		return repo.UpsertDailyStat(ctx, tx, repo.StatDate(ev.CreatedAt), ev.Type)
	})
}

func (l *EventLog) buildEvent(sub *domain.Submission, d Decision, enhanced bool) *domain.BlockEvent {
	now := l.now().UTC()
	f := resolveFields(sub)
	ev := &domain.BlockEvent{
		CreatedAt: now,
		IP:        sub.ClientIP,
		UserAgent: sub.UserAgent,
		Type:      d.Category,
		Reason:    d.Reason,
		FormType:  sub.FormType,
		Email:     f.email(),
		Blocked:   !d.Accepted,
	}
	if ev.Type == "" {
		ev.Type = domain.BlockOther
	}
	if enhanced {
		l.enhance(ev, sub, f, now)
	}
	return ev
}

// enhance fills the optional analytics columns of ev.
func (l *EventLog) enhance(ev *domain.BlockEvent, sub *domain.Submission, f formFields, now time.Time) {
	text := f.content()
	if text != "" {
		ev.ContentHash = ptr(session.ContentHash(text))
	}
	ev.ContentLength = ptr(utf8.RuneCountInString(text))
	urls := content.CountURLs(text)
	ev.URLCount = ptr(urls)
	ev.HasLinks = ptr(urls > 0)

	ks := content.ScoreKeywords(text, content.SensitivityMedium)
	ev.KeywordScore = ptr(ks.Score)
	if len(ks.Matches) > 0 {
		m := ks.Matches
		if len(m) > maxMatchedKeywords {
			m = m[:maxMatchedKeywords]
		}
		if b, err := json.Marshal(m); err == nil {
			ev.MatchedKeywords = datatypes.JSON(b)
		}
	}

	if secs, ok := submitSeconds(sub, f, now); ok {
		ev.SubmitSeconds = ptr(secs)
	}

	filled := 0
	for name, v := range sub.Fields {
		if !isSecurityField(name) && strings.TrimSpace(v) != "" {
			filled++
		}
	}
	ev.FieldCount = ptr(filled)

	if lang := browserLanguage(sub.AcceptLanguage); lang != "" {
		ev.BrowserLanguage = ptr(lang)
	}
	if dom := email.Domain(ev.Email); dom != "" {
		ev.EmailDomain = ptr(dom)
	}
	ev.ScriptCount = ptr(content.CountScripts(text))
	ev.AllCaps = ptr(content.IsAllCaps(text))
	ev.HourOfDay = ptr(now.Hour())
	ev.DayOfWeek = ptr(int(now.Weekday()))

	if c := l.country(sub.ClientIP); c != "" {
		ev.Country = ptr(c)
	}
}

// submitSeconds measures fill-in time from the client timestamp (ms), else
// from the form-load cookie.
func submitSeconds(sub *domain.Submission, f formFields, now time.Time) (int, bool) {
	if ms, err := strconv.ParseInt(strings.TrimSpace(f[session.FieldJSTimestamp]), 10, 64); err == nil && ms > 0 {
		if secs := (now.UnixMilli() - ms) / 1000; secs >= 0 {
			return int(secs), true
		}
	}
	if load, ok := session.LoadTimeFromCookies(sub.SessionID, sub.Cookies); ok {
		if secs := int(now.Sub(load) / time.Second); secs >= 0 {
			return secs, true
		}
	}
	return 0, false
}

// browserLanguage returns the primary subtag of the preferred language.
func browserLanguage(header string) string {
	if strings.TrimSpace(header) == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}
	base, conf := tags[0].Base()
	if conf == language.No {
		return ""
	}
	return base.String()
}

func (l *EventLog) country(ip string) string {
	if l.GeoIP == nil {
		return ""
	}
	addr := net.ParseIP(ip)
	if addr == nil {
		return ""
	}
	rec, err := l.GeoIP.Country(addr)
	if err != nil || rec == nil {
		return ""
	}
	return rec.Country.IsoCode
}

func ptr[T any](v T) *T { return &v }
