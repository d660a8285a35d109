// Form HTTP handlers.
//
// This file exposes the public endpoints a host site calls around its forms:
//   - GET  /forms/{type}/protection  (fields to embed when rendering)
//   - POST /forms/{type}/submit      (browser posts the form here)
//   - POST /forms/{type}/validate    (host server forwards a submission)
//   - GET  /static/gatekeeper.js     (client script)
//
// Rejections always answer 403 submission_blocked with the same message; the
// reason is only written to the event log.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-form-gatekeeper/internal/domain"
	"github.com/tbourn/go-form-gatekeeper/internal/http/assets"
	"github.com/tbourn/go-form-gatekeeper/internal/http/middleware"
	"github.com/tbourn/go-form-gatekeeper/internal/ipresolve"
	"github.com/tbourn/go-form-gatekeeper/internal/services"
)

const (
	maxMultipartMemory = 1 << 20
	// loadCookieMaxAge matches the longest timing window a form can have.
	loadCookieMaxAge = 3600
)

//
// DTOs
//

// SubmitResponse is returned for an accepted submission.
type SubmitResponse struct {
	Status string `json:"status" example:"accepted"`
}

// ValidateRequest is a submission forwarded by a host application. Headers
// fills in whatever the dedicated fields leave empty.
type ValidateRequest struct {
	Method         string            `json:"method"          example:"POST"`
	ContentType    string            `json:"content_type"    example:"application/x-www-form-urlencoded"`
	Proto          string            `json:"proto"           example:"HTTP/1.1"`
	Referer        string            `json:"referer"         example:"https://www.example.com/contact"`
	UserAgent      string            `json:"user_agent"`
	AcceptLanguage string            `json:"accept_language" example:"en-GB,en;q=0.8"`
	ClientIP       string            `json:"client_ip"       example:"203.0.113.7"`
	SessionID      string            `json:"session_id"`
	Cookies        map[string]string `json:"cookies"`
	Fields         map[string]string `json:"fields"          binding:"required"`
	Headers        map[string]string `json:"headers"`
}

func formType(c *gin.Context) (domain.FormType, bool) {
	ft, okType := domain.ParseFormType(c.Param("type"))
	if !okType {
		fail(c, http.StatusBadRequest, ErrCodeInvalidFormType, "unknown form type")
	}
	return ft, okType
}

// isAdmin reports whether cookies carry a valid admin token.
func (h *Handlers) isAdmin(cookies map[string]string) bool {
	tok := cookies[middleware.AdminCookie]
	if tok == "" || h.admin == nil {
		return false
	}
	_, err := h.admin.Verify(tok)
	return err == nil
}

// decide runs the pipeline and writes the public answer.
func (h *Handlers) decide(c *gin.Context, sub *domain.Submission) {
	d := h.guard().Validate(c.Request.Context(), sub)
	if !d.Accepted {
		fail(c, http.StatusForbidden, ErrCodeSubmissionBlocked, services.PublicBlockMessage)
		return
	}
	ok(c, http.StatusOK, SubmitResponse{Status: "accepted"})
}

// FormProtection godoc
// @ID          formProtection
// @Summary     Protection fields for a form render
// @Description Mints a one-time token and returns the hidden fields, honeypot names, script URL and a ready-to-embed HTML fragment. Sets the visitor session and form-load cookies.
// @Tags        Forms
// @Produce     json
//
// @Param       type  path  string  true  "Form type"  Enums(item, contact, register, comment)
//
// @Success     200  {object}  services.RenderedFields
// @Failure     400  {object}  handlers.ErrorResponse  "Unknown form type"
// @Router      /forms/{type}/protection [get]
func (h *Handlers) FormProtection(c *gin.Context) {
	ft, okType := formType(c)
	if !okType {
		return
	}
	sid := h.ensureSession(c)
	r := h.guard().OnFormRender(c.Request.Context(), ft, sid, h.resolver.Resolve(c.Request), c.Request.UserAgent())
	if r.LoadCookie != "" && !r.LoadTime.IsZero() {
		h.setCookie(c, r.LoadCookie, strconv.FormatInt(r.LoadTime.Unix(), 10), loadCookieMaxAge)
	}
	c.Header("Cache-Control", "no-store")
	ok(c, http.StatusOK, r)
}

// SubmitForm godoc
// @ID          submitForm
// @Summary     Validate a browser form submission
// @Description Runs every protection check against the posted form. Blocked submissions get a generic 403.
// @Tags        Forms
// @Accept      x-www-form-urlencoded
// @Accept      mpfd
// @Accept      json
// @Produce     json
//
// @Param       type  path  string  true  "Form type"  Enums(item, contact, register, comment)
//
// @Success     200  {object}  handlers.SubmitResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Unknown form type or unreadable body"
// @Failure     403  {object}  handlers.ErrorResponse  "Submission blocked"
// @Router      /forms/{type}/submit [post]
func (h *Handlers) SubmitForm(c *gin.Context) {
	ft, okType := formType(c)
	if !okType {
		return
	}
	fields, err := readFields(c)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable form body")
		return
	}
	cookies := requestCookies(c.Request)
	sub := &domain.Submission{
		ClientIP:       h.resolver.Resolve(c.Request),
		UserAgent:      c.Request.UserAgent(),
		FormType:       ft,
		Fields:         fields,
		Method:         c.Request.Method,
		ContentType:    c.GetHeader("Content-Type"),
		Proto:          c.Request.Proto,
		Referer:        c.Request.Referer(),
		AcceptLanguage: c.GetHeader("Accept-Language"),
		Cookies:        cookies,
		SessionID:      h.sessionID(c),
		IsAdmin:        h.isAdmin(cookies),
	}
	h.decide(c, sub)
}

// ValidateForm godoc
// @ID          validateForm
// @Summary     Validate a forwarded submission
// @Description For host applications that receive the form themselves: forward the request details and fields, persist only on 200.
// @Tags        Forms
// @Accept      json
// @Produce     json
//
// @Param       type  path  string                    true  "Form type"  Enums(item, contact, register, comment)
// @Param       body  body  handlers.ValidateRequest  true  "Forwarded submission"
//
// @Success     200  {object}  handlers.SubmitResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Unknown form type or invalid JSON"
// @Failure     403  {object}  handlers.ErrorResponse  "Submission blocked"
// @Router      /forms/{type}/validate [post]
func (h *Handlers) ValidateForm(c *gin.Context) {
	ft, okType := formType(c)
	if !okType {
		return
	}
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	hdr := http.Header{}
	for k, v := range req.Headers {
		hdr.Set(k, v)
	}
	pick := func(v, header string) string {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
		return strings.TrimSpace(hdr.Get(header))
	}
	cookies := req.Cookies
	if cookies == nil {
		cookies = map[string]string{}
	}
	method := req.Method
	if method == "" {
		method = http.MethodPost
	}
	sub := &domain.Submission{
		ClientIP:       ipresolve.Sanitize(req.ClientIP),
		UserAgent:      pick(req.UserAgent, "User-Agent"),
		FormType:       ft,
		Fields:         req.Fields,
		Method:         method,
		ContentType:    pick(req.ContentType, "Content-Type"),
		Proto:          req.Proto,
		Referer:        pick(req.Referer, "Referer"),
		AcceptLanguage: pick(req.AcceptLanguage, "Accept-Language"),
		Cookies:        cookies,
		SessionID:      req.SessionID,
		IsAdmin:        h.isAdmin(cookies),
	}
	h.decide(c, sub)
}

// Script godoc
// @ID          gatekeeperScript
// @Summary     Client script
// @Description The script rendered forms load; it fills in the client token fields and sets the test cookie.
// @Tags        Forms
// @Produce     application/javascript
// @Success     200  {string}  string  "JavaScript source"
// @Router      /static/gatekeeper.js [get]
func (h *Handlers) Script(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "application/javascript; charset=utf-8", assets.Script)
}

// readFields returns the submitted fields of a form-encoded, multipart or
// flat JSON body. Repeated form keys keep their first value.
func readFields(c *gin.Context) (map[string]string, error) {
	if c.ContentType() == gin.MIMEJSON {
		return readJSONFields(c.Request)
	}
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}
	out := make(map[string]string, len(c.Request.PostForm))
	for k, vs := range c.Request.PostForm {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out, nil
}

func readJSONFields(r *http.Request) (map[string]string, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case nil:
			out[k] = ""
		case string:
			out[k] = t
		case json.Number:
			out[k] = t.String()
		case bool:
			out[k] = strconv.FormatBool(t)
		default:
			return nil, fmt.Errorf("field %q: nested values are not supported", k)
		}
	}
	return out, nil
}

// requestCookies flattens the request cookies; the first of a repeated name
// wins.
func requestCookies(r *http.Request) map[string]string {
	out := make(map[string]string)
	for _, ck := range r.Cookies() {
		if _, seen := out[ck.Name]; !seen {
			out[ck.Name] = ck.Value
		}
	}
	return out
}
