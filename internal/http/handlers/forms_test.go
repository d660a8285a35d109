package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tbourn/go-form-gatekeeper/internal/domain"
	"github.com/tbourn/go-form-gatekeeper/internal/http/middleware"
	"github.com/tbourn/go-form-gatekeeper/internal/services"
)

func TestFormProtection_MintsSessionAndLoadCookie(t *testing.T) {
	d := newDeps()
	d.guard.rendered = services.RenderedFields{
		HiddenFields:   []services.HiddenField{{Name: "oscbb_token", Value: "abc"}},
		HoneypotFields: []string{"website_url"},
		LoadCookie:     "gk_load",
		LoadTime:       time.Unix(1700000000, 0),
	}
	r := d.router()

	w := serve(r, httptest.NewRequest(http.MethodGet, "/forms/contact/protection", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("Cache-Control=%q", got)
	}

	sid := findCookie(w, "gk_sid")
	if sid == nil || !sid.HttpOnly {
		t.Fatalf("session cookie missing or not HttpOnly: %+v", sid)
	}
	if _, err := uuid.Parse(sid.Value); err != nil {
		t.Fatalf("session id %q is not a uuid", sid.Value)
	}
	if d.guard.renderSID != sid.Value || d.guard.renderType != domain.FormContact {
		t.Fatalf("guard got sid=%q type=%q", d.guard.renderSID, d.guard.renderType)
	}
	if d.guard.renderIP != "192.0.2.1" {
		t.Fatalf("client ip = %q", d.guard.renderIP)
	}
	if lc := findCookie(w, "gk_load"); lc == nil || lc.Value != "1700000000" {
		t.Fatalf("load cookie = %+v", lc)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body["form_type"] != "contact" {
		t.Fatalf("body = %v", body)
	}
	if _, leaked := body["LoadCookie"]; leaked {
		t.Fatalf("internal field serialized: %v", body)
	}
}

func TestFormProtection_ReusesValidSession(t *testing.T) {
	d := newDeps()
	r := d.router()

	sid := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/forms/item/protection", nil)
	req.AddCookie(&http.Cookie{Name: "gk_sid", Value: sid})
	w := serve(r, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if findCookie(w, "gk_sid") != nil {
		t.Fatal("existing session should not be reissued")
	}
	if d.guard.renderSID != sid {
		t.Fatalf("guard sid = %q, want %q", d.guard.renderSID, sid)
	}
	// no load time, no load cookie
	if findCookie(w, "gk_load") != nil {
		t.Fatal("unexpected load cookie")
	}

	// a malformed cookie is replaced
	req = httptest.NewRequest(http.MethodGet, "/forms/item/protection", nil)
	req.AddCookie(&http.Cookie{Name: "gk_sid", Value: "not-a-uuid"})
	w = serve(r, req)
	if ck := findCookie(w, "gk_sid"); ck == nil || ck.Value == "not-a-uuid" {
		t.Fatalf("malformed session not replaced: %+v", ck)
	}
}

func TestFormRoutes_UnknownType(t *testing.T) {
	r := newDeps().router()
	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/forms/newsletter/protection", nil),
		httptest.NewRequest(http.MethodPost, "/forms/newsletter/submit", strings.NewReader("a=b")),
		httptest.NewRequest(http.MethodPost, "/forms/newsletter/validate", strings.NewReader(`{"fields":{}}`)),
	} {
		w := serve(r, req)
		if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), ErrCodeInvalidFormType) {
			t.Fatalf("%s %s -> %d %s", req.Method, req.URL.Path, w.Code, w.Body.String())
		}
	}
}

func TestSubmitForm_URLEncoded(t *testing.T) {
	d := newDeps()
	r := d.router()

	form := url.Values{}
	form.Add("email", "jane@example.com")
	form.Add("email", "second@example.com")
	form.Set("message", "hello")
	req := httptest.NewRequest(http.MethodPost, "/forms/contact/submit", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "https://www.example.com/contact")
	req.Header.Set("Accept-Language", "en-GB")
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.AddCookie(&http.Cookie{Name: "oscbb_js_test", Value: "1"})

	w := serve(r, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"accepted"`) {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	sub := d.guard.lastSub
	if sub == nil {
		t.Fatal("guard not called")
	}
	if sub.Fields["email"] != "jane@example.com" || sub.Fields["message"] != "hello" {
		t.Fatalf("fields = %v", sub.Fields)
	}
	if sub.Method != http.MethodPost || sub.FormType != domain.FormContact || sub.Proto != "HTTP/1.1" {
		t.Fatalf("request facts = %+v", sub)
	}
	if sub.Referer != "https://www.example.com/contact" || sub.AcceptLanguage != "en-GB" || sub.UserAgent != "Mozilla/5.0" {
		t.Fatalf("headers = %+v", sub)
	}
	if sub.Cookies["oscbb_js_test"] != "1" || sub.IsAdmin || sub.SessionID != "" {
		t.Fatalf("cookies/admin/session = %v %v %q", sub.Cookies, sub.IsAdmin, sub.SessionID)
	}
}

func TestSubmitForm_Multipart(t *testing.T) {
	d := newDeps()
	r := d.router()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("name", "Jane")
	_ = mw.WriteField("comment", "nice post")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/forms/comment/submit", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := serve(r, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if f := d.guard.lastSub.Fields; f["name"] != "Jane" || f["comment"] != "nice post" {
		t.Fatalf("fields = %v", f)
	}
}

func TestSubmitForm_JSONBody(t *testing.T) {
	d := newDeps()
	r := d.router()

	req := httptest.NewRequest(http.MethodPost, "/forms/register/submit",
		strings.NewReader(`{"username":"jane","age":42,"terms":true,"nickname":null}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	f := d.guard.lastSub.Fields
	if f["username"] != "jane" || f["age"] != "42" || f["terms"] != "true" {
		t.Fatalf("fields = %v", f)
	}
	if v, ok := f["nickname"]; !ok || v != "" {
		t.Fatalf("null field = %q, present=%v", v, ok)
	}

	req = httptest.NewRequest(http.MethodPost, "/forms/register/submit",
		strings.NewReader(`{"address":{"city":"Athens"}}`))
	req.Header.Set("Content-Type", "application/json")
	w = serve(r, req)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), ErrCodeBadRequest) {
		t.Fatalf("nested json: status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestSubmitForm_BlockedIsGeneric(t *testing.T) {
	d := newDeps()
	d.guard.decision = services.Decision{
		Category: domain.BlockHoneypot,
		Code:     services.Code("honeypot_filled"),
		Reason:   "honeypot field website_url filled",
	}
	r := d.router()

	req := httptest.NewRequest(http.MethodPost, "/forms/contact/submit", strings.NewReader("website_url=spam"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := serve(r, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("status=%d", w.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Code != ErrCodeSubmissionBlocked || body.Message != services.PublicBlockMessage || body.RequestID == "" {
		t.Fatalf("body = %+v", body)
	}
	if strings.Contains(w.Body.String(), "honeypot") {
		t.Fatalf("reason leaked: %s", w.Body.String())
	}
}

func TestSubmitForm_AdminCookieMarksAdmin(t *testing.T) {
	d := newDeps()
	r := d.router()

	for _, tc := range []struct {
		token string
		want  bool
	}{
		{"good", true},
		{"forged", false},
	} {
		req := httptest.NewRequest(http.MethodPost, "/forms/item/submit", strings.NewReader("title=x"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(&http.Cookie{Name: middleware.AdminCookie, Value: tc.token})
		serve(r, req)
		if d.guard.lastSub.IsAdmin != tc.want {
			t.Fatalf("token %q: IsAdmin=%v", tc.token, d.guard.lastSub.IsAdmin)
		}
	}
}

func TestValidateForm_ForwardedSubmission(t *testing.T) {
	d := newDeps()
	r := d.router()

	payload := `{
		"client_ip": " 203.0.113.7 ",
		"user_agent": "",
		"proto": "HTTP/1.1",
		"session_id": "sess-1",
		"cookies": {"gk_admin": "good"},
		"fields": {"email": "jane@example.com"},
		"headers": {"User-Agent": "Mozilla/5.0", "Referer": "https://host.example/form", "Content-Type": "multipart/form-data"}
	}`
	req := httptest.NewRequest(http.MethodPost, "/forms/contact/validate", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	sub := d.guard.lastSub
	if sub.ClientIP != "203.0.113.7" {
		t.Fatalf("client ip = %q", sub.ClientIP)
	}
	if sub.Method != http.MethodPost {
		t.Fatalf("method default = %q", sub.Method)
	}
	if sub.UserAgent != "Mozilla/5.0" || sub.Referer != "https://host.example/form" || sub.ContentType != "multipart/form-data" {
		t.Fatalf("header fallbacks = %+v", sub)
	}
	if sub.SessionID != "sess-1" || !sub.IsAdmin || sub.Fields["email"] != "jane@example.com" {
		t.Fatalf("forwarded state = %+v", sub)
	}
}

func TestValidateForm_BadBodyAndBlocked(t *testing.T) {
	d := newDeps()
	r := d.router()

	for _, body := range []string{`not json`, `{}`} {
		req := httptest.NewRequest(http.MethodPost, "/forms/contact/validate", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if w := serve(r, req); w.Code != http.StatusBadRequest {
			t.Fatalf("%q -> %d", body, w.Code)
		}
	}

	d.guard.decision = services.Decision{Category: domain.BlockBot, Code: services.CodeIPBlacklisted}
	req := httptest.NewRequest(http.MethodPost, "/forms/contact/validate", strings.NewReader(`{"fields":{"a":"b"}}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)
	if w.Code != http.StatusForbidden || !strings.Contains(w.Body.String(), ErrCodeSubmissionBlocked) {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if d.guard.lastSub.Cookies == nil {
		t.Fatal("cookies map should never be nil")
	}
}

func TestScript_ServesJavaScript(t *testing.T) {
	r := newDeps().router()
	w := serve(r, httptest.NewRequest(http.MethodGet, "/static/gatekeeper.js", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/javascript") {
		t.Fatalf("Content-Type=%q", ct)
	}
	if cc := w.Header().Get("Cache-Control"); !strings.Contains(cc, "max-age=3600") {
		t.Fatalf("Cache-Control=%q", cc)
	}
	if w.Body.Len() == 0 {
		t.Fatal("empty script")
	}
}
