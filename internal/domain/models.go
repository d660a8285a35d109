// Package domain defines the persistence models and shared value types of the
// form gatekeeper: the block/accept event log, daily aggregate counters,
// administrator-curated allow/deny lists, and key/value preferences. These
// types are mapped with GORM and shared by the repository, service, and HTTP
// layers.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// BlockType is the coarse category attached to every logged event and used
// for daily statistics.
type BlockType string

const (
	BlockBot        BlockType = "bot"
	BlockSpam       BlockType = "spam"
	BlockHoneypot   BlockType = "honeypot"
	BlockJavaScript BlockType = "javascript"
	BlockRateLimit  BlockType = "rate_limit"
	BlockContent    BlockType = "content"
	BlockOther      BlockType = "other"
)

// Valid reports whether t is one of the known categories.
func (t BlockType) Valid() bool {
	switch t {
	case BlockBot, BlockSpam, BlockHoneypot, BlockJavaScript, BlockRateLimit, BlockContent, BlockOther:
		return true
	}
	return false
}

// FormType identifies which host form a submission belongs to.
type FormType string

const (
	FormItem     FormType = "item"
	FormContact  FormType = "contact"
	FormRegister FormType = "register"
	FormComment  FormType = "comment"
)

// ParseFormType normalizes s and reports whether it names a known form.
func ParseFormType(s string) (FormType, bool) {
	switch ft := FormType(s); ft {
	case FormItem, FormContact, FormRegister, FormComment:
		return ft, true
	}
	return "", false
}

// BlockEvent is one row of the persistent submission log. Rows are written
// for every rejected submission and, when enabled, for accepted ones
// (Blocked=false). They are never updated, only deleted in bulk by retention
// cleanup or a manual purge.
//
// The pointer fields hold the optional enhanced analytics and stay NULL when
// enhanced logging is off.
type BlockEvent struct {
	ID        uint      `json:"id"         gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;index;index:idx_events_ip_time,priority:2"`
	IP        string    `json:"ip"         gorm:"type:varchar(45);not null;index:idx_events_ip_time,priority:1"`
	UserAgent string    `json:"user_agent" gorm:"type:varchar(500);not null;default:''"`
	Type      BlockType `json:"type"       gorm:"type:varchar(16);not null;index"`
	Reason    string    `json:"reason"     gorm:"type:text;not null"`
	FormType  FormType  `json:"form_type"  gorm:"type:varchar(16);not null;index"`
	Email     string    `json:"email"      gorm:"type:varchar(255);not null;default:''"`
	Blocked   bool      `json:"blocked"    gorm:"not null;index"`

	ContentHash     *string        `json:"content_hash,omitempty"     gorm:"type:char(64)"`
	ContentLength   *int           `json:"content_length,omitempty"`
	URLCount        *int           `json:"url_count,omitempty"`
	HasLinks        *bool          `json:"has_links,omitempty"`
	KeywordScore    *int           `json:"keyword_score,omitempty"`
	MatchedKeywords datatypes.JSON `json:"matched_keywords,omitempty" swaggertype:"array,string"`
	SubmitSeconds   *int           `json:"submit_seconds,omitempty"`
	FieldCount      *int           `json:"field_count,omitempty"`
	BrowserLanguage *string        `json:"browser_language,omitempty" gorm:"type:varchar(16)"`
	EmailDomain     *string        `json:"email_domain,omitempty"     gorm:"type:varchar(255)"`
	ScriptCount     *int           `json:"script_count,omitempty"`
	AllCaps         *bool          `json:"all_caps,omitempty"`
	HourOfDay       *int           `json:"hour_of_day,omitempty"`
	DayOfWeek       *int           `json:"day_of_week,omitempty"`
	Country         *string        `json:"country,omitempty"          gorm:"type:varchar(8)"`
}

// TableName returns the database table name for BlockEvent.
func (BlockEvent) TableName() string { return "block_events" }

// DailyStat aggregates blocks per calendar day (UTC, "2006-01-02"). Rows are
// upserted with increment semantics so concurrent blocks on the same day do
// not lose updates.
type DailyStat struct {
	ID              uint   `json:"-"                gorm:"primaryKey;autoIncrement"`
	Date            string `json:"date"             gorm:"type:varchar(10);not null;uniqueIndex:ux_daily_stats_date"`
	TotalBlocks     int64  `json:"total_blocks"     gorm:"not null;default:0"`
	BotBlocks       int64  `json:"bot_blocks"       gorm:"not null;default:0"`
	SpamBlocks      int64  `json:"spam_blocks"      gorm:"not null;default:0"`
	HoneypotBlocks  int64  `json:"honeypot_blocks"  gorm:"not null;default:0"`
	JSBlocks        int64  `json:"js_blocks"        gorm:"column:javascript_blocks;not null;default:0"`
	RateLimitBlocks int64  `json:"rate_limit_blocks" gorm:"not null;default:0"`
	ContentBlocks   int64  `json:"content_blocks"   gorm:"not null;default:0"`
}

// TableName returns the database table name for DailyStat.
func (DailyStat) TableName() string { return "daily_stats" }

// StatColumn returns the per-category counter column for t, or "" when the
// category only contributes to the total.
func StatColumn(t BlockType) string {
	switch t {
	case BlockBot:
		return "bot_blocks"
	case BlockSpam:
		return "spam_blocks"
	case BlockHoneypot:
		return "honeypot_blocks"
	case BlockJavaScript:
		return "javascript_blocks"
	case BlockRateLimit:
		return "rate_limit_blocks"
	case BlockContent:
		return "content_blocks"
	}
	return ""
}

// ListKind discriminates allow entries from deny entries.
type ListKind string

const (
	Whitelist ListKind = "whitelist"
	Blacklist ListKind = "blacklist"
)

// ListType is what a list entry's value is matched against.
type ListType string

const (
	ListIP      ListType = "ip"
	ListEmail   ListType = "email"
	ListDomain  ListType = "domain"
	ListKeyword ListType = "keyword"
)

// ListEntry is an administrator-curated override. Whitelist entries bypass
// the whole pipeline; blacklist entries supplement the built-in lists.
type ListEntry struct {
	ID        uint      `json:"id"         gorm:"primaryKey;autoIncrement"`
	Kind      ListKind  `json:"kind"       gorm:"type:varchar(16);not null;uniqueIndex:ux_list_entry,priority:1"`
	Type      ListType  `json:"type"       gorm:"type:varchar(16);not null;uniqueIndex:ux_list_entry,priority:2"`
	Value     string    `json:"value"      gorm:"type:varchar(255);not null;uniqueIndex:ux_list_entry,priority:3"`
	Reason    string    `json:"reason"     gorm:"type:text;not null;default:''"`
	Active    bool      `json:"active"     gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for ListEntry.
func (ListEntry) TableName() string { return "list_entries" }

// PreferenceType is the declared type of a stored preference value.
type PreferenceType string

const (
	PrefBool   PreferenceType = "BOOLEAN"
	PrefInt    PreferenceType = "INTEGER"
	PrefString PreferenceType = "STRING"
)

// Preference is a single key/value setting.
type Preference struct {
	Key       string         `json:"key"        gorm:"type:varchar(64);primaryKey"`
	Value     string         `json:"value"      gorm:"type:text;not null"`
	Type      PreferenceType `json:"type"       gorm:"type:varchar(16);not null"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName returns the database table name for Preference.
func (Preference) TableName() string { return "preferences" }
