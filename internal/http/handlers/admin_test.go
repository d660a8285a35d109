package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tbourn/go-form-gatekeeper/internal/domain"
	"github.com/tbourn/go-form-gatekeeper/internal/http/middleware"
	"github.com/tbourn/go-form-gatekeeper/internal/repo"
	"github.com/tbourn/go-form-gatekeeper/internal/services"
)

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAdminLogin(t *testing.T) {
	d := newDeps()
	r := d.router()

	w := serve(r, jsonRequest(http.MethodPost, "/admin/login", `{"username":"admin","password":"s3cret"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.Token != "tok-admin" || resp.ExpiresAt.IsZero() {
		t.Fatalf("resp = %+v", resp)
	}
	ck := findCookie(w, middleware.AdminCookie)
	if ck == nil || ck.Value != "tok-admin" || !ck.HttpOnly || ck.SameSite != http.SameSiteStrictMode {
		t.Fatalf("admin cookie = %+v", ck)
	}

	cases := []struct {
		name string
		body string
		want int
		code string
	}{
		{"wrong password", `{"username":"admin","password":"nope"}`, http.StatusUnauthorized, ErrCodeUnauthorized},
		{"missing password", `{"username":"admin"}`, http.StatusBadRequest, ErrCodeBadRequest},
		{"not json", `username=admin`, http.StatusBadRequest, ErrCodeBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(r, jsonRequest(http.MethodPost, "/admin/login", tc.body))
			if w.Code != tc.want || !strings.Contains(w.Body.String(), tc.code) {
				t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
			}
		})
	}

	d.auth.disabled = true
	w = serve(r, jsonRequest(http.MethodPost, "/admin/login", `{"username":"admin","password":"s3cret"}`))
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), ErrCodeLoginDisabled) {
		t.Fatalf("disabled: status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestListEvents_PaginationFiltersAndETag(t *testing.T) {
	d := newDeps()
	ts := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	d.reports.maxTS = &ts
	d.reports.total = 45
	d.reports.events = []domain.BlockEvent{{ID: 1, IP: "203.0.113.7", Type: domain.BlockSpam, Blocked: true}}
	r := d.router()

	w := serve(r, httptest.NewRequest(http.MethodGet, "/admin/events?page=2&page_size=20&type=spam&form_type=contact&blocked=true", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	f := d.reports.lastFilter
	if f.Type != domain.BlockSpam || f.FormType != domain.FormContact || f.Blocked == nil || !*f.Blocked {
		t.Fatalf("filter = %+v", f)
	}
	var resp ListEventsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	p := resp.Pagination
	if p.Page != 2 || p.PageSize != 20 || p.Total != 45 || p.TotalPages != 3 || !p.HasNext {
		t.Fatalf("pagination = %+v", p)
	}
	if len(resp.Events) != 1 || resp.Events[0].IP != "203.0.113.7" {
		t.Fatalf("events = %+v", resp.Events)
	}

	etag := w.Header().Get("ETag")
	want := fmt.Sprintf(`W/"events:spam:contact:true:2:20:45:%d"`, ts.Unix())
	if etag != want {
		t.Fatalf("ETag = %q, want %q", etag, want)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/events?page=2&page_size=20&type=spam&form_type=contact&blocked=true", nil)
	req.Header.Set("If-None-Match", etag)
	w = serve(r, req)
	if w.Code != http.StatusNotModified || w.Body.Len() != 0 {
		t.Fatalf("conditional: status=%d body=%q", w.Code, w.Body.String())
	}
}

func TestListEvents_BadFilters(t *testing.T) {
	r := newDeps().router()
	for _, q := range []string{"type=nope", "form_type=nope", "blocked=maybe"} {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/admin/events?"+q, nil))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s -> %d", q, w.Code)
		}
	}
}

func TestListEvents_StoreFailure(t *testing.T) {
	d := newDeps()
	d.reports.statsErr = fmt.Errorf("stats down")
	d.reports.eventsErr = fmt.Errorf("db down")
	r := d.router()

	w := serve(r, httptest.NewRequest(http.MethodGet, "/admin/events", nil))
	if w.Code != http.StatusInternalServerError || !strings.Contains(w.Body.String(), ErrCodeListFailed) {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if w.Header().Get("ETag") != "" {
		t.Fatal("no ETag expected when stats fail")
	}
	if strings.Contains(w.Body.String(), "db down") {
		t.Fatal("internal error text leaked")
	}
}

func TestExportEvents_CSVAttachment(t *testing.T) {
	d := newDeps()
	d.reports.csv = "\ufeffID,Date/Time\n1,2026-05-01 10:00:00\n"
	r := d.router()

	w := serve(r, httptest.NewRequest(http.MethodGet, "/admin/events/export?type=bot", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("Content-Type=%q", ct)
	}
	cd := w.Header().Get("Content-Disposition")
	if !strings.HasPrefix(cd, `attachment; filename="gatekeeper-log-`) || !strings.HasSuffix(cd, `.csv"`) {
		t.Fatalf("Content-Disposition=%q", cd)
	}
	if w.Body.String() != d.reports.csv {
		t.Fatalf("body=%q", w.Body.String())
	}
	if d.reports.lastFilter.Type != domain.BlockBot {
		t.Fatalf("filter = %+v", d.reports.lastFilter)
	}
}

func TestPurgeEvents(t *testing.T) {
	d := newDeps()
	d.reports.purged = 12
	r := d.router()

	w := serve(r, httptest.NewRequest(http.MethodDelete, "/admin/events?older_than_days=30&reset_stats=true", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"deleted":12`) {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if d.reports.lastDays != 30 || !d.reports.lastReset {
		t.Fatalf("purge args = %d %v", d.reports.lastDays, d.reports.lastReset)
	}

	serve(r, httptest.NewRequest(http.MethodDelete, "/admin/events", nil))
	if d.reports.lastDays != 0 || d.reports.lastReset {
		t.Fatalf("defaults = %d %v", d.reports.lastDays, d.reports.lastReset)
	}

	w = serve(r, httptest.NewRequest(http.MethodDelete, "/admin/events?older_than_days=-1", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("negative days: status=%d", w.Code)
	}
}

func TestStatsAndDaily(t *testing.T) {
	d := newDeps()
	d.reports.summary = services.Summary{Today: 3, Week: 10, Month: 40, Total: 90,
		TopTypes: []repo.TypeCount{{Type: domain.BlockSpam, Count: 25}}}
	d.reports.daily = []domain.DailyStat{{Date: "2026-05-01", TotalBlocks: 4}}
	r := d.router()

	w := serve(r, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	var sum services.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &sum); err != nil || w.Code != http.StatusOK {
		t.Fatalf("status=%d err=%v", w.Code, err)
	}
	if sum.Today != 3 || sum.Total != 90 || len(sum.TopTypes) != 1 || sum.TopTypes[0].Count != 25 {
		t.Fatalf("summary = %+v", sum)
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/admin/stats/daily", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"total_blocks":4`) {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if d.reports.lastDays != 30 {
		t.Fatalf("default days = %d", d.reports.lastDays)
	}
	serve(r, httptest.NewRequest(http.MethodGet, "/admin/stats/daily?days=7", nil))
	if d.reports.lastDays != 7 {
		t.Fatalf("days = %d", d.reports.lastDays)
	}
}

func TestListEntries_CRUD(t *testing.T) {
	d := newDeps()
	r := d.router()

	w := serve(r, httptest.NewRequest(http.MethodGet, "/admin/lists?kind=blacklist", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"entries":[]`) {
		t.Fatalf("empty list: status=%d body=%s", w.Code, w.Body.String())
	}

	w = serve(r, jsonRequest(http.MethodPost, "/admin/lists", `{"kind":"blacklist","type":"ip","value":"192.168.1.*","reason":"abuse"}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("add: status=%d body=%s", w.Code, w.Body.String())
	}
	if d.lists.added.Value != "192.168.1.*" || d.lists.added.Kind != domain.Blacklist {
		t.Fatalf("added = %+v", d.lists.added)
	}

	w = serve(r, jsonRequest(http.MethodPost, "/admin/lists", `{"kind":"greylist","type":"ip","value":"x"}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad kind: status=%d", w.Code)
	}

	w = serve(r, httptest.NewRequest(http.MethodDelete, "/admin/lists/7", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: status=%d", w.Code)
	}

	w = serve(r, httptest.NewRequest(http.MethodPost, "/admin/lists/7/toggle", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"id":7`) {
		t.Fatalf("toggle: status=%d body=%s", w.Code, w.Body.String())
	}

	for _, path := range []string{"/admin/lists/0", "/admin/lists/abc"} {
		if w := serve(r, httptest.NewRequest(http.MethodDelete, path, nil)); w.Code != http.StatusBadRequest {
			t.Fatalf("%s -> %d", path, w.Code)
		}
	}
}

func TestListEntries_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
		code string
	}{
		{services.ErrListEntryNotFound, http.StatusNotFound, ErrCodeNotFound},
		{services.ErrDuplicateListEntry, http.StatusConflict, ErrCodeConflict},
		{fmt.Errorf("%w: not an ip", services.ErrInvalidListEntry), http.StatusBadRequest, ErrCodeInvalidListEntry},
		{fmt.Errorf("disk full"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tc := range cases {
		d := newDeps()
		d.lists.err = tc.err
		r := d.router()

		w := serve(r, jsonRequest(http.MethodPost, "/admin/lists", `{"kind":"whitelist","type":"email","value":"a@b.c"}`))
		if w.Code != tc.want || !strings.Contains(w.Body.String(), tc.code) {
			t.Fatalf("%v: status=%d body=%s", tc.err, w.Code, w.Body.String())
		}
		w = serve(r, httptest.NewRequest(http.MethodPost, "/admin/lists/3/toggle", nil))
		if w.Code != tc.want {
			t.Fatalf("%v toggle: status=%d", tc.err, w.Code)
		}
	}
}

func TestPreferences_GetAndUpdate(t *testing.T) {
	d := newDeps()
	d.prefs.settings.CronToken = "secret-cron"
	r := d.router()

	w := serve(r, httptest.NewRequest(http.MethodGet, "/admin/preferences", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if strings.Contains(w.Body.String(), "secret-cron") {
		t.Fatal("cron token exposed in preferences")
	}

	w = serve(r, jsonRequest(http.MethodPut, "/admin/preferences", `{"url_limit":2,"js_enabled":false,"protection_level":"high"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("update: status=%d body=%s", w.Code, w.Body.String())
	}
	want := map[string]string{"url_limit": "2", "js_enabled": "0", "protection_level": "high"}
	for k, v := range want {
		if d.prefs.changes[k] != v {
			t.Fatalf("changes[%s] = %q, want %q (all: %v)", k, d.prefs.changes[k], v, d.prefs.changes)
		}
	}

	for _, body := range []string{`{}`, `[]`, `{"url_limit":[1,2]}`} {
		if w := serve(r, jsonRequest(http.MethodPut, "/admin/preferences", body)); w.Code != http.StatusBadRequest {
			t.Fatalf("%s -> %d", body, w.Code)
		}
	}

	d.prefs.updErr = fmt.Errorf("%w: url_limit must be >= 0", services.ErrInvalidPreferences)
	w = serve(r, jsonRequest(http.MethodPut, "/admin/preferences", `{"url_limit":-1}`))
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), ErrCodeInvalidPreferences) {
		t.Fatalf("invalid: status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestRotateCronToken(t *testing.T) {
	d := newDeps()
	r := d.router()

	w := serve(r, httptest.NewRequest(http.MethodPost, "/admin/cron-token", nil))
	if w.Code != http.StatusOK || w.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("status=%d cc=%q", w.Code, w.Header().Get("Cache-Control"))
	}
	var resp CronTokenResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token != "new-cron-token" {
		t.Fatalf("resp=%+v err=%v", resp, err)
	}
}
