package qc

import (
	"time"
)

type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewInReview ReviewStatus = "in_review"
	ReviewApproved ReviewStatus = "approved"
	ReviewReturned ReviewStatus = "returned"
)

// Review is the quality-control pass over an executed application. It owns
// three verification collections (documents, stipulations, checklist) stored
// in verification_items keyed by ReviewID + kind. Completion percentages are
// derived on read, never stored.
type Review struct {
	ID            uint64       `gorm:"primaryKey;column:id" json:"-"`
	ReviewID      string       `gorm:"size:32;uniqueIndex:ux_qc_reviews_review_id" json:"review_id"`
	ApplicationID string       `gorm:"size:32;uniqueIndex:ux_qc_reviews_app" json:"application_id"`
	Status        ReviewStatus `gorm:"size:16;default:'pending'" json:"status"`
	ReturnReason  *string      `gorm:"type:text" json:"return_reason,omitempty"`
	Notes         *string      `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Review) TableName() string { return "qc_reviews" }

// Open reports whether the review still accepts item changes.
func (r *Review) Open() bool {
	return r.Status == ReviewPending || r.Status == ReviewInReview
}
