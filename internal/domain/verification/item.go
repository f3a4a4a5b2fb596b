// Package verification implements the item-tracking engine shared by the
// underwriting and quality-control flows.
package verification

import "time"

type Kind string

const (
	KindDocument    Kind = "document"
	KindStipulation Kind = "stipulation"
	KindChecklist   Kind = "checklist"
)

type ItemStatus string

const (
	ItemUnverified ItemStatus = "unverified"
	ItemVerified   ItemStatus = "verified"
	ItemRejected   ItemStatus = "rejected"
	ItemWaived     ItemStatus = "waived"
)

// Terminal reports whether a status may only be left via an explicit reset.
func (s ItemStatus) Terminal() bool {
	return s == ItemVerified || s == ItemRejected || s == ItemWaived
}

// Item is a single verifiable unit inside a QC review. SourceRef points at the
// upstream record being verified (document id, stipulation id), empty for
// checklist items.
type Item struct {
	ID         uint64     `gorm:"primaryKey;column:id" json:"-"`
	ItemID     string     `gorm:"size:32;uniqueIndex:ux_verification_items_item_id" json:"item_id"`
	ReviewID   string     `gorm:"size:32;index:idx_verification_items_review" json:"review_id"`
	Kind       Kind       `gorm:"size:16" json:"kind"`
	Label      string     `gorm:"size:255" json:"label"`
	SourceRef  string     `gorm:"size:32" json:"source_ref,omitempty"`
	Status     ItemStatus `gorm:"size:16;default:'unverified'" json:"status"`
	VerifiedBy *string    `gorm:"size:32" json:"verified_by,omitempty"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	Comments   *string    `gorm:"type:text" json:"comments,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Item) TableName() string { return "verification_items" }

// StatusChange describes one successful item mutation. The owning usecase
// publishes it as a domain event in the same transaction.
type StatusChange struct {
	ItemID    string     `json:"item_id"`
	ReviewID  string     `json:"review_id"`
	Kind      Kind       `json:"kind"`
	From      ItemStatus `json:"from"`
	To        ItemStatus `json:"to"`
	ChangedBy string     `json:"changed_by"`
	At        time.Time  `json:"at"`
}
