package qc

import (
	"time"

	domain "loan-origination-backend/internal/domain/qc"
	"loan-origination-backend/internal/domain/verification"
)

type StartQCInput struct {
	ApplicationID   string
	TriggeredBy     string
	ExpectedVersion uint64
	// DocumentRefs are the executed document ids fed by the document service;
	// one document verification item is seeded per ref.
	DocumentRefs []DocumentRef
}

type DocumentRef struct {
	DocumentID string
	Label      string
}

type ItemActionInput struct {
	ReviewID   string
	ItemID     string
	VerifierID string
	Comments   string
}

type AddItemInput struct {
	ReviewID string
	Kind     verification.Kind
	Label    string
	// SourceRef ties the item to its upstream record (document/stipulation id).
	SourceRef string
}

type SubmitDecisionInput struct {
	ReviewID        string
	Status          domain.ReviewStatus // approved or returned
	ReturnReason    string
	Notes           string
	DecidedBy       string
	ExpectedVersion uint64
}

type ItemDTO struct {
	ItemID     string                  `json:"item_id"`
	Kind       verification.Kind       `json:"kind"`
	Label      string                  `json:"label"`
	SourceRef  string                  `json:"source_ref,omitempty"`
	Status     verification.ItemStatus `json:"status"`
	VerifiedBy *string                 `json:"verified_by,omitempty"`
	VerifiedAt *time.Time              `json:"verified_at,omitempty"`
	Comments   *string                 `json:"comments,omitempty"`
}

// ReviewDTO carries the review plus derived completion numbers; none of the
// percentages are stored.
type ReviewDTO struct {
	ReviewID              string              `json:"review_id"`
	ApplicationID         string              `json:"application_id"`
	Status                domain.ReviewStatus `json:"status"`
	ReturnReason          *string             `json:"return_reason,omitempty"`
	Notes                 *string             `json:"notes,omitempty"`
	Documents             []ItemDTO           `json:"documents"`
	Stipulations          []ItemDTO           `json:"stipulations"`
	Checklist             []ItemDTO           `json:"checklist"`
	DocumentCompletion    int                 `json:"document_completion"`
	StipulationCompletion int                 `json:"stipulation_completion"`
	ChecklistCompletion   int                 `json:"checklist_completion"`
	OverallCompletion     int                 `json:"overall_completion"`
	Blocked               bool                `json:"blocked"`
}

func itemDTO(it *verification.Item) ItemDTO {
	return ItemDTO{
		ItemID:     it.ItemID,
		Kind:       it.Kind,
		Label:      it.Label,
		SourceRef:  it.SourceRef,
		Status:     it.Status,
		VerifiedBy: it.VerifiedBy,
		VerifiedAt: it.VerifiedAt,
		Comments:   it.Comments,
	}
}
