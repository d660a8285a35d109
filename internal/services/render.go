package services

import (
	"context"
	"html/template"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-form-gatekeeper/internal/domain"
	"github.com/tbourn/go-form-gatekeeper/internal/session"
)

// HiddenField is one name/value pair a host form must embed.
type HiddenField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RenderedFields is everything a host application injects into a form.
type RenderedFields struct {
	FormType       domain.FormType `json:"form_type"`
	HiddenFields   []HiddenField   `json:"hidden_fields"`
	HoneypotFields []string        `json:"honeypot_fields"`
	ScriptURL      string          `json:"script_url,omitempty"`
	HTML           string          `json:"html"`

	// LoadCookie names the cookie carrying LoadTime for the timing fallback.
	LoadCookie string    `json:"-"`
	LoadTime   time.Time `json:"-"`
}

var fieldsTmpl = template.Must(template.New("fields").Parse(
	`{{range .HiddenFields}}<input type="hidden" name="{{.Name}}" value="{{.Value}}">` +
		`{{end}}{{if .HoneypotFields}}<div style="position:absolute;left:-9999px;top:-9999px" aria-hidden="true">` +
		`{{range .HoneypotFields}}<input type="text" name="{{.}}" value="" tabindex="-1" autocomplete="off">{{end}}</div>` +
		`{{end}}{{if .ScriptURL}}<script src="{{.ScriptURL}}" defer></script>{{end}}`,
))

// OnFormRender mints the protection fields for one render of formType. It
// never fails: store errors are logged and the token is still returned, and
// a disabled gatekeeper yields empty fields.
func (g *Gatekeeper) OnFormRender(ctx context.Context, formType domain.FormType, sid, clientIP, userAgent string) RenderedFields {
	tr := otel.Tracer("services/Gatekeeper")
	ctx, span := tr.Start(ctx, "OnFormRender",
		trace.WithAttributes(
			attribute.String("form.type", string(formType)),
		),
	)
	defer span.End()

	out := RenderedFields{FormType: formType, HiddenFields: []HiddenField{}, HoneypotFields: []string{}}
	if !g.Settings.Enabled {
		return out
	}

	r, err := g.Sessions.Begin(ctx, sid, clientIP, userAgent)
	if err != nil {
		fault(ctx, "session_store", err)
	}
	out.HiddenFields = append(out.HiddenFields, HiddenField{Name: session.FieldSessionToken, Value: r.Token})
	if r.EncodedFieldMap != "" {
		out.HiddenFields = append(out.HiddenFields, HiddenField{Name: session.FieldFieldMap, Value: r.EncodedFieldMap})
	}
	if g.Settings.HoneypotEnabled {
		out.HoneypotFields = append(out.HoneypotFields, r.Honeypots...)
		out.HiddenFields = append(out.HiddenFields, HiddenField{Name: session.FieldHoneypotCheck})
	}
	if g.Settings.JSEnabled {
		out.ScriptURL = g.ScriptURL
	}
	out.LoadCookie, out.LoadTime = r.LoadCookie, r.LoadTime

	var b strings.Builder
	if err := fieldsTmpl.Execute(&b, out); err != nil {
		logger(ctx).Error().Err(err).Msg("render protection fields")
		return out
	}
	out.HTML = b.String()
	return out
}
