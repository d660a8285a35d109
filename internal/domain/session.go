package domain

import "time"

// MaxRecentHashes bounds FormSessionState.RecentHashes.
const MaxRecentHashes = 5

// SessionToken is the one-time token minted on form render.
// Used flips false→true exactly once, on the first successful validation.
type SessionToken struct {
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	Used      bool      `json:"used"`
}

// FormSessionState is the per-visitor state written on form render and
// checked on submit. It mirrors what was embedded in the rendered form.
type FormSessionState struct {
	Token        *SessionToken     `json:"token,omitempty"`
	FieldMap     map[string]string `json:"field_map,omitempty"`
	FormLoadTime time.Time         `json:"form_load_time,omitempty"`
	RecentHashes []string          `json:"recent_hashes,omitempty"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Empty reports whether the state carries nothing worth keeping.
func (s *FormSessionState) Empty() bool {
	return s == nil || (s.Token == nil && len(s.FieldMap) == 0 && s.FormLoadTime.IsZero() && len(s.RecentHashes) == 0)
}

// RememberHash appends h to the ring of recent content hashes, evicting the
// oldest entries beyond MaxRecentHashes.
func (s *FormSessionState) RememberHash(h string) {
	s.RecentHashes = append(s.RecentHashes, h)
	if n := len(s.RecentHashes); n > MaxRecentHashes {
		s.RecentHashes = append([]string(nil), s.RecentHashes[n-MaxRecentHashes:]...)
	}
}

// HasHash reports whether h is among the recent content hashes.
func (s *FormSessionState) HasHash(h string) bool {
	for _, v := range s.RecentHashes {
		if v == h {
			return true
		}
	}
	return false
}

// Submission is the per-request context handed to the validation pipeline.
// It is built at request entry and discarded when the pipeline returns.
type Submission struct {
	ClientIP       string
	UserAgent      string
	FormType       FormType
	Fields         map[string]string
	Method         string
	ContentType    string
	Proto          string
	Referer        string
	AcceptLanguage string
	Cookies        map[string]string
	SessionID      string
	IsAdmin        bool
}

// Field returns the submitted value for name and whether it was present.
func (s *Submission) Field(name string) (string, bool) {
	v, ok := s.Fields[name]
	return v, ok
}

// FirstField returns the first non-empty value among names.
func (s *Submission) FirstField(names ...string) string {
	for _, n := range names {
		if v := s.Fields[n]; v != "" {
			return v
		}
	}
	return ""
}
