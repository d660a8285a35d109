package services

import (
	"strings"

	"github.com/tbourn/go-form-gatekeeper/internal/domain"
	"github.com/tbourn/go-form-gatekeeper/internal/session"
)

// Host form field names, per role, in lookup order. The bare role name also
// covers fields renamed through the obfuscation map.
var (
	emailFieldNames   = []string{"contactEmail", "s_email", "email"}
	nameFieldNames    = []string{"yourName", "s_name", "name"}
	subjectFieldNames = []string{"subject", "s_subject"}
	messageFieldNames = []string{"message", "s_message"}

	// contentFieldNames feed content analysis.
	contentFieldNames = []string{"title", "description", "message", "comment"}
	// duplicateFieldNames feed the duplicate-content hash.
	duplicateFieldNames = []string{"title", "description", "message", "comment", "body"}
)

// formFields is a read view over submitted values in which obfuscated names
// also answer to the role they stand for.
type formFields map[string]string

func resolveFields(sub *domain.Submission) formFields {
	out := make(formFields, len(sub.Fields))
	for k, v := range sub.Fields {
		out[k] = v
	}
	raw := sub.Fields[session.FieldFieldMap]
	if raw == "" {
		return out
	}
	m, err := session.DecodeFieldMap(raw)
	if err != nil {
		return out
	}
	for obf, role := range m {
		if v, ok := sub.Fields[obf]; ok && out[role] == "" {
			out[role] = v
		}
	}
	return out
}

func (f formFields) first(names ...string) string {
	for _, n := range names {
		if v := strings.TrimSpace(f[n]); v != "" {
			return v
		}
	}
	return ""
}

// joined trims each named value and joins the non-empty ones with a space.
func (f formFields) joined(names ...string) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		if v := strings.TrimSpace(f[n]); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

func (f formFields) email() string   { return f.first(emailFieldNames...) }
func (f formFields) content() string { return f.joined(contentFieldNames...) }

// isSecurityField reports whether name was injected by the gatekeeper itself
// rather than typed by the visitor.
func isSecurityField(name string) bool {
	for _, s := range session.SecurityFields {
		if name == s {
			return true
		}
	}
	for _, p := range []string{"user_", "website_", "comment_"} {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
