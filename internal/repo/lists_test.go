package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-form-gatekeeper/internal/domain"
)

func TestListEntries_CRUD(t *testing.T) {
	db := newTestDB(t, &domain.ListEntry{})
	ctx := context.Background()

	e := &domain.ListEntry{Kind: domain.Whitelist, Type: domain.ListIP, Value: "10.0.0.0/8", Active: true}
	if err := CreateListEntry(ctx, db, e); err != nil {
		t.Fatalf("create: %v", err)
	}
	dup := &domain.ListEntry{Kind: domain.Whitelist, Type: domain.ListIP, Value: "10.0.0.0/8", Active: true}
	if err := CreateListEntry(ctx, db, dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate: want ErrDuplicate, got %v", err)
	}
	// same value on the other list is allowed
	other := &domain.ListEntry{Kind: domain.Blacklist, Type: domain.ListIP, Value: "10.0.0.0/8", Active: true}
	if err := CreateListEntry(ctx, db, other); err != nil {
		t.Fatalf("create blacklist twin: %v", err)
	}

	if got, err := FindActive(ctx, db, domain.Whitelist, domain.ListIP, "10.0.0.0/8"); err != nil || got.ID != e.ID {
		t.Fatalf("FindActive: got=%+v err=%v", got, err)
	}

	toggled, err := ToggleListEntry(ctx, db, e.ID)
	if err != nil || toggled.Active {
		t.Fatalf("toggle: %+v err=%v", toggled, err)
	}
	if _, err := FindActive(ctx, db, domain.Whitelist, domain.ListIP, "10.0.0.0/8"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("inactive entry should not be found, got %v", err)
	}
	if vals, _ := ActiveValues(ctx, db, domain.Whitelist, domain.ListIP); len(vals) != 0 {
		t.Fatalf("ActiveValues = %v, want none", vals)
	}
	if vals, _ := ActiveValues(ctx, db, domain.Blacklist, domain.ListIP); len(vals) != 1 {
		t.Fatalf("ActiveValues(blacklist) = %v", vals)
	}

	all, err := ListEntries(ctx, db, "", domain.ListIP)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListEntries: %d err=%v", len(all), err)
	}

	if err := DeleteListEntry(ctx, db, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := DeleteListEntry(ctx, db, e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
	if _, err := ToggleListEntry(ctx, db, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("toggle missing: want ErrNotFound, got %v", err)
	}
}
