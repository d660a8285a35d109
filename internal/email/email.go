// Package email classifies submitted e-mail addresses: disposable and free
// provider lookups plus structural checks on the local part and domain.
package email

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	maxLocalLen     = 64
	minDomainLen    = 4
	maxDigitRatio   = 0.7
	suspiciousPlus  = "++"
	reasonEmpty     = "Email is empty"
	reasonFormat    = "Invalid email format"
	reasonDigits    = "Email contains excessive numbers"
	reasonPattern   = "Email contains suspicious character pattern"
	reasonLocalLen  = "Email local part too long"
	reasonIPDomain  = "Email uses IP address as domain"
	reasonShortHost = "Email domain too short"
)

var (
	validate   = validator.New()
	ipDomainRe = regexp.MustCompile(`^\[?[0-9.]+\]?$`)

	disposable = toSet(disposableDomains)
	free       = toSet(freeDomains)
)

func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, d := range list {
		m[d] = struct{}{}
	}
	return m
}

// Result is the outcome of ValidatePatterns.
type Result struct {
	Valid  bool
	Reason string
}

// Split returns the local part and the lower-cased domain of addr. The last
// '@' separates them; ok is false when there is none.
func Split(addr string) (local, domain string, ok bool) {
	addr = strings.TrimSpace(addr)
	i := strings.LastIndexByte(addr, '@')
	if i < 0 {
		return "", "", false
	}
	return addr[:i], strings.ToLower(strings.TrimSpace(addr[i+1:])), true
}

// Domain returns the lower-cased domain of addr, or "".
func Domain(addr string) string {
	_, d, ok := Split(addr)
	if !ok {
		return ""
	}
	return d
}

// IsDisposable reports whether addr belongs to a throwaway mail service.
func IsDisposable(addr string) bool {
	_, ok := disposable[Domain(addr)]
	return ok
}

// IsFree reports whether addr belongs to a free webmail provider.
func IsFree(addr string) bool {
	_, ok := free[Domain(addr)]
	return ok
}

// ValidatePatterns rejects malformed or suspicious addresses. The first
// failing check determines the reason.
func ValidatePatterns(addr string) Result {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return Result{Reason: reasonEmpty}
	}
	local, domain, ok := Split(addr)
	if !ok || local == "" || domain == "" {
		return Result{Reason: reasonFormat}
	}
	// Checked ahead of the syntax validator so bracketed literals get a
	// specific reason.
	if ipDomainRe.MatchString(domain) {
		return Result{Reason: reasonIPDomain}
	}
	if len(local) > maxLocalLen {
		return Result{Reason: reasonLocalLen}
	}
	if len(domain) < minDomainLen {
		return Result{Reason: reasonShortHost}
	}
	if err := validate.Var(addr, "required,email"); err != nil {
		return Result{Reason: reasonFormat}
	}

	digits := 0
	for i := 0; i < len(local); i++ {
		if local[i] >= '0' && local[i] <= '9' {
			digits++
		}
	}
	if float64(digits)/float64(len(local)) > maxDigitRatio {
		return Result{Reason: reasonDigits}
	}
	if strings.Contains(local, suspiciousPlus) {
		return Result{Reason: reasonPattern}
	}
	return Result{Valid: true}
}
