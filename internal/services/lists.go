// Package services – ListService
//
// ListService manages the administrator whitelist and blacklist and answers
// the pipeline's list lookups. Values are normalized on the way in so lookups
// can compare exactly: addresses are canonical, e-mails and domains are
// lower-cased, and keywords are trimmed.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-form-gatekeeper/internal/content"
	"github.com/tbourn/go-form-gatekeeper/internal/domain"
	"github.com/tbourn/go-form-gatekeeper/internal/email"
	"github.com/tbourn/go-form-gatekeeper/internal/ipresolve"
	"github.com/tbourn/go-form-gatekeeper/internal/repo"
)

// ListService implements ListChecker over the list_entries table.
type ListService struct {
	DB *gorm.DB
}

// NewListService returns a ListService over db.
func NewListService(db *gorm.DB) *ListService { return &ListService{DB: db} }

// NewListEntry is the admin input for Add.
type NewListEntry struct {
	Kind   domain.ListKind `json:"kind"   binding:"required,oneof=whitelist blacklist"`
	Type   domain.ListType `json:"type"   binding:"required,oneof=ip email domain keyword"`
	Value  string          `json:"value"  binding:"required,max=255"`
	Reason string          `json:"reason" binding:"max=1000"`
}

// NormalizeListValue canonicalizes value for a list of type typ.
func NormalizeListValue(typ domain.ListType, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", fmt.Errorf("%w: empty value", ErrInvalidListEntry)
	}
	switch typ {
	case domain.ListIP:
		return normalizeIPPattern(v)
	case domain.ListEmail:
		local, dom, ok := email.Split(v)
		if !ok || local == "" || dom == "" {
			return "", fmt.Errorf("%w: %q is not an e-mail address", ErrInvalidListEntry, v)
		}
		return strings.ToLower(local) + "@" + dom, nil
	case domain.ListDomain:
		d := strings.Trim(strings.ToLower(strings.TrimPrefix(v, "@")), ".")
		if !strings.Contains(d, ".") || strings.ContainsAny(d, " @/") {
			return "", fmt.Errorf("%w: %q is not a domain", ErrInvalidListEntry, v)
		}
		return d, nil
	case domain.ListKeyword:
		return strings.ToLower(v), nil
	}
	return "", fmt.Errorf("%w: unknown type %q", ErrInvalidListEntry, typ)
}

func normalizeIPPattern(v string) (string, error) {
	switch {
	case strings.Contains(v, "/"):
		p, err := netip.ParsePrefix(v)
		if err != nil {
			return "", fmt.Errorf("%w: %q is not a CIDR prefix", ErrInvalidListEntry, v)
		}
		return p.Masked().String(), nil
	case strings.Contains(v, "*"):
		parts := strings.Split(v, ".")
		if len(parts) != 4 {
			return "", fmt.Errorf("%w: %q is not an IPv4 wildcard", ErrInvalidListEntry, v)
		}
		for _, p := range parts {
			if p == "*" {
				continue
			}
			if n, err := strconv.Atoi(p); err != nil || n < 0 || n > 255 || strconv.Itoa(n) != p {
				return "", fmt.Errorf("%w: %q is not an IPv4 wildcard", ErrInvalidListEntry, v)
			}
		}
		return v, nil
	}
	ip := ipresolve.Sanitize(v)
	if ip == "" {
		return "", fmt.Errorf("%w: %q is not an IP address", ErrInvalidListEntry, v)
	}
	return ip, nil
}

// Add validates, normalizes and stores a new active entry.
func (s *ListService) Add(ctx context.Context, in NewListEntry) (*domain.ListEntry, error) {
	tr := otel.Tracer("services/ListService")
	ctx, span := tr.Start(ctx, "Add",
		trace.WithAttributes(
			attribute.String("list.kind", string(in.Kind)),
			attribute.String("list.type", string(in.Type)),
		),
	)
	defer span.End()

	if in.Kind != domain.Whitelist && in.Kind != domain.Blacklist {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidListEntry, in.Kind)
	}
	v, err := NormalizeListValue(in.Type, in.Value)
	if err != nil {
		return nil, err
	}
	e := &domain.ListEntry{
		Kind:   in.Kind,
		Type:   in.Type,
		Value:  v,
		Reason: strings.TrimSpace(in.Reason),
		Active: true,
	}
	if err := repo.CreateListEntry(ctx, s.DB, e); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateListEntry
		}
		return nil, err
	}
	return e, nil
}

// Delete removes the entry with id.
func (s *ListService) Delete(ctx context.Context, id uint) error {
	err := repo.DeleteListEntry(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrListEntryNotFound
	}
	return err
}

// Toggle flips the entry's active flag and returns it.
func (s *ListService) Toggle(ctx context.Context, id uint) (*domain.ListEntry, error) {
	e, err := repo.ToggleListEntry(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrListEntryNotFound
	}
	return e, err
}

// List returns entries filtered by kind and type; empty filters match all.
func (s *ListService) List(ctx context.Context, kind domain.ListKind, typ domain.ListType) ([]domain.ListEntry, error) {
	return repo.ListEntries(ctx, s.DB, kind, typ)
}

func (s *ListService) matchIP(ctx context.Context, kind domain.ListKind, ip string) (string, error) {
	if ip == "" {
		return "", nil
	}
	patterns, err := repo.ActiveValues(ctx, s.DB, kind, domain.ListIP)
	if err != nil {
		return "", err
	}
	for _, p := range patterns {
		if ipresolve.Matches(ip, p) {
			return p, nil
		}
	}
	return "", nil
}

// matchEmail looks addr up as an exact address, then by its domain.
func (s *ListService) matchEmail(ctx context.Context, kind domain.ListKind, addr string) (string, error) {
	local, dom, ok := email.Split(addr)
	if !ok || local == "" || dom == "" {
		return "", nil
	}
	lookups := []struct {
		typ   domain.ListType
		value string
	}{
		{domain.ListEmail, strings.ToLower(local) + "@" + dom},
		{domain.ListDomain, dom},
	}
	for _, l := range lookups {
		e, err := repo.FindActive(ctx, s.DB, kind, l.typ, l.value)
		switch {
		case errors.Is(err, repo.ErrNotFound):
		case err != nil:
			return "", err
		default:
			return e.Value, nil
		}
	}
	return "", nil
}

// Whitelisted reports whether ip or addr is on the active whitelist.
func (s *ListService) Whitelisted(ctx context.Context, ip, addr string) (bool, error) {
	hit, err := s.matchIP(ctx, domain.Whitelist, ip)
	if err != nil || hit != "" {
		return hit != "", err
	}
	hit, err = s.matchEmail(ctx, domain.Whitelist, addr)
	return hit != "", err
}

// BlacklistedIP returns the blacklist pattern matching ip.
func (s *ListService) BlacklistedIP(ctx context.Context, ip string) (string, error) {
	return s.matchIP(ctx, domain.Blacklist, ip)
}

// BlacklistedEmail returns the blacklisted address or domain matching addr.
func (s *ListService) BlacklistedEmail(ctx context.Context, addr string) (string, error) {
	return s.matchEmail(ctx, domain.Blacklist, addr)
}

// BlacklistedKeyword returns the first blacklisted keyword found in text.
func (s *ListService) BlacklistedKeyword(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	words, err := repo.ActiveValues(ctx, s.DB, domain.Blacklist, domain.ListKeyword)
	if err != nil {
		return "", err
	}
	for _, w := range words {
		if content.ContainsFold(text, w) {
			return w, nil
		}
	}
	return "", nil
}
