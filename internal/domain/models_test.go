package domain

import (
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:domain_models_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

func TestTableNames(t *testing.T) {
	cases := map[string]string{
		(BlockEvent{}).TableName(): "block_events",
		(DailyStat{}).TableName():  "daily_stats",
		(ListEntry{}).TableName():  "list_entries",
		(Preference{}).TableName(): "preferences",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("TableName() = %q; want %q", got, want)
		}
	}
}

func TestMigrations_Indexes(t *testing.T) {
	db := newDomainDB(t)
	if err := db.AutoMigrate(&BlockEvent{}, &DailyStat{}, &ListEntry{}, &Preference{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	m := db.Migrator()
	for _, tbl := range []any{&BlockEvent{}, &DailyStat{}, &ListEntry{}, &Preference{}} {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}
	if !m.HasIndex(&BlockEvent{}, "idx_events_ip_time") {
		t.Fatalf("expected idx_events_ip_time on block_events")
	}
	if !m.HasIndex(&DailyStat{}, "ux_daily_stats_date") {
		t.Fatalf("expected ux_daily_stats_date on daily_stats")
	}
	if !m.HasIndex(&ListEntry{}, "ux_list_entry") {
		t.Fatalf("expected ux_list_entry on list_entries")
	}

	// Unique (kind, type, value)
	e := ListEntry{Kind: Whitelist, Type: ListIP, Value: "203.0.113.7", Active: true}
	if err := db.Create(&e).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	dup := ListEntry{Kind: Whitelist, Type: ListIP, Value: "203.0.113.7", Active: true}
	if err := db.Create(&dup).Error; err == nil {
		t.Fatalf("expected unique violation for duplicate list entry")
	}
	other := ListEntry{Kind: Blacklist, Type: ListIP, Value: "203.0.113.7", Active: true}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("same value on the other list must be allowed: %v", err)
	}
}

func TestStatColumn(t *testing.T) {
	if StatColumn(BlockJavaScript) != "javascript_blocks" {
		t.Fatalf("javascript column mismatch")
	}
	if StatColumn(BlockOther) != "" {
		t.Fatalf("other must only count toward the total")
	}
	for _, bt := range []BlockType{BlockBot, BlockSpam, BlockHoneypot, BlockRateLimit, BlockContent} {
		if StatColumn(bt) == "" {
			t.Fatalf("missing column for %s", bt)
		}
	}
}

func TestParseFormType(t *testing.T) {
	if ft, ok := ParseFormType("contact"); !ok || ft != FormContact {
		t.Fatalf("contact not parsed: %q %v", ft, ok)
	}
	if _, ok := ParseFormType("newsletter"); ok {
		t.Fatalf("unknown form type accepted")
	}
}

func TestRememberHash_EvictsOldest(t *testing.T) {
	var st FormSessionState
	for i := 0; i < 7; i++ {
		st.RememberHash(fmt.Sprintf("h%d", i))
	}
	if len(st.RecentHashes) != MaxRecentHashes {
		t.Fatalf("ring size = %d; want %d", len(st.RecentHashes), MaxRecentHashes)
	}
	if st.HasHash("h0") || st.HasHash("h1") {
		t.Fatalf("oldest hashes should be evicted: %v", st.RecentHashes)
	}
	if !st.HasHash("h6") || st.RecentHashes[0] != "h2" {
		t.Fatalf("unexpected ring order: %v", st.RecentHashes)
	}
}

func TestFormSessionState_Empty(t *testing.T) {
	var nilState *FormSessionState
	if !nilState.Empty() {
		t.Fatalf("nil state must be empty")
	}
	st := &FormSessionState{RecentHashes: []string{"x"}}
	if st.Empty() {
		t.Fatalf("state with hashes is not empty")
	}
}
