package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tbourn/go-form-gatekeeper/internal/domain"
)

var errEmptySID = errors.New("empty session id")

// Options are the timing bounds a Manager enforces.
type Options struct {
	// Version seeds the daily field-name hash.
	Version string
	// MinSubmit is the fastest plausible human submission.
	MinSubmit time.Duration
	// MaxSubmit bounds both token age and form-load age.
	MaxSubmit time.Duration
}

// Manager implements the token, field-map, timing and duplicate-content
// checks on top of a Store.
type Manager struct {
	Store Store
	Opts  Options
	Now   func() time.Time
}

// NewManager returns a Manager using the wall clock.
func NewManager(store Store, opts Options) *Manager {
	return &Manager{Store: store, Opts: opts, Now: time.Now}
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Rendered is what a form render embeds: the token, the encoded field map,
// the honeypot names, and the load time with its fallback cookie name.
type Rendered struct {
	Token           string
	FieldMap        map[string]string
	EncodedFieldMap string
	Honeypots       []string
	LoadTime        time.Time
	LoadCookie      string
}

// Begin mints a fresh token and field map for sid and records the form-load
// time, replacing whatever the previous render stored. The returned Rendered
// is populated even when the store write fails.
func (m *Manager) Begin(ctx context.Context, sid, clientIP, userAgent string) (Rendered, error) {
	now := m.now()
	hash := DailyHash(m.Opts.Version, now)
	r := Rendered{
		Token:      mintToken(sid, now, clientIP, userAgent),
		FieldMap:   FieldMap(hash),
		Honeypots:  HoneypotFields(hash),
		LoadTime:   now,
		LoadCookie: LoadCookieName(sid),
	}
	enc, err := EncodeFieldMap(r.FieldMap)
	if err != nil {
		return r, err
	}
	r.EncodedFieldMap = enc
	if sid == "" {
		return r, errEmptySID
	}
	err = m.Store.Update(ctx, sid, func(st *domain.FormSessionState) error {
		st.Token = &domain.SessionToken{Value: r.Token, CreatedAt: now}
		st.FieldMap = r.FieldMap
		st.FormLoadTime = now
		return nil
	})
	return r, err
}

func mintToken(sid string, now time.Time, ip, ua string) string {
	var nonce [8]byte
	_, _ = rand.Read(nonce[:])
	data := strings.Join([]string{
		sid,
		strconv.FormatInt(now.Unix(), 10),
		ip,
		ua,
		uuid.NewString(),
		hex.EncodeToString(nonce[:]),
	}, "|")
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// ConsumeToken validates submitted against the stored token and marks it
// used. It succeeds at most once per minted token.
func (m *Manager) ConsumeToken(ctx context.Context, sid, submitted string) error {
	if submitted == "" {
		return ErrTokenMissing
	}
	if sid == "" {
		return ErrNoSession
	}
	now := m.now()
	return m.Store.Update(ctx, sid, func(st *domain.FormSessionState) error {
		tok := st.Token
		switch {
		case tok == nil:
			return ErrNoSession
		case subtle.ConstantTimeCompare([]byte(tok.Value), []byte(submitted)) != 1:
			return ErrTokenMismatch
		case tok.Used:
			return ErrReplayDetected
		case now.Sub(tok.CreatedAt) > m.Opts.MaxSubmit:
			return ErrTokenExpired
		}
		tok.Used = true
		return nil
	})
}

// VerifyFieldMap compares the echoed field map with the stored one. checked
// is false when there was nothing to compare: the form sent no map, or the
// session holds none.
func (m *Manager) VerifyFieldMap(ctx context.Context, sid, encoded string) (checked bool, err error) {
	if encoded == "" {
		return false, nil
	}
	submitted, err := DecodeFieldMap(encoded)
	if err != nil {
		return true, err
	}
	if sid == "" {
		return false, nil
	}
	st, err := m.Store.Get(ctx, sid)
	if err != nil {
		return false, err
	}
	if st == nil || len(st.FieldMap) == 0 {
		return false, nil
	}
	if !sameMap(submitted, st.FieldMap) {
		return true, ErrFieldMapMismatch
	}
	return true, nil
}

// CheckTiming measures the time since the form was loaded, from session state
// or else the load cookie, and enforces [MinSubmit, MaxSubmit]. checked is
// false when no timing data exists at all. A passing session measurement is
// cleared so it cannot be reused.
func (m *Manager) CheckTiming(ctx context.Context, sid string, cookies map[string]string) (elapsed time.Duration, checked bool, err error) {
	now := m.now()
	if sid != "" {
		err = m.Store.Update(ctx, sid, func(st *domain.FormSessionState) error {
			if st.FormLoadTime.IsZero() {
				return errUnchanged
			}
			checked = true
			elapsed = now.Sub(st.FormLoadTime)
			if err := m.judge(elapsed); err != nil {
				return err
			}
			st.FormLoadTime = time.Time{}
			return nil
		})
		if errors.Is(err, errUnchanged) {
			err = nil
		}
		if err != nil || checked {
			return elapsed, checked, err
		}
	}
	load, ok := LoadTimeFromCookies(sid, cookies)
	if !ok {
		return 0, false, nil
	}
	elapsed = now.Sub(load)
	return elapsed, true, m.judge(elapsed)
}

func (m *Manager) judge(elapsed time.Duration) error {
	d := elapsed.Truncate(time.Second)
	secs := int64(d / time.Second)
	switch {
	case d < m.Opts.MinSubmit:
		return &TimingError{Kind: ErrTooFast, Seconds: secs}
	case d > m.Opts.MaxSubmit:
		return &TimingError{Kind: ErrTooSlow, Seconds: secs}
	}
	return nil
}

// LoadTimeFromCookies reads the form-load time from the cookie named for sid,
// falling back to any other load cookie, picking the lexically first name.
func LoadTimeFromCookies(sid string, cookies map[string]string) (time.Time, bool) {
	if len(cookies) == 0 {
		return time.Time{}, false
	}
	if sid != "" {
		if t, ok := parseUnix(cookies[LoadCookieName(sid)]); ok {
			return t, true
		}
	}
	names := make([]string, 0, len(cookies))
	for k := range cookies {
		if strings.HasPrefix(k, loadCookiePrefix) {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	for _, k := range names {
		if t, ok := parseUnix(cookies[k]); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseUnix(v string) (time.Time, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || n <= 0 {
		return time.Time{}, false
	}
	return time.Unix(n, 0), true
}

// ContentHash is the hex SHA-256 of content.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// CheckDuplicate rejects content already submitted in this session among the
// last domain.MaxRecentHashes submissions, and remembers it otherwise.
func (m *Manager) CheckDuplicate(ctx context.Context, sid, content string) error {
	if sid == "" || content == "" {
		return nil
	}
	h := ContentHash(content)
	return m.Store.Update(ctx, sid, func(st *domain.FormSessionState) error {
		if st.HasHash(h) {
			return ErrDuplicateContent
		}
		st.RememberHash(h)
		return nil
	})
}

// Prune returns a sweep function dropping tokens (with the field map rendered
// alongside them) and load times older than maxAge at now.
func Prune(now time.Time, maxAge time.Duration) func(*domain.FormSessionState) bool {
	return func(st *domain.FormSessionState) bool {
		changed := false
		if st.Token != nil && now.Sub(st.Token.CreatedAt) > maxAge {
			st.Token = nil
			st.FieldMap = nil
			changed = true
		}
		if !st.FormLoadTime.IsZero() && now.Sub(st.FormLoadTime) > maxAge {
			st.FormLoadTime = time.Time{}
			changed = true
		}
		return changed
	}
}

// Sweep removes expired tokens and load times from every session.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	return m.Store.Sweep(ctx, Prune(m.now(), m.Opts.MaxSubmit))
}
