package application

import (
	"time"

	domain "loan-origination-backend/internal/domain/application"
	"loan-origination-backend/internal/domain/underwriting"
)

type CreateDraftInput struct {
	BorrowerID       string
	CoBorrowerID     string // optional
	SchoolID         string
	ProgramID        string
	ProgramVersionID string
	CreatedBy        string
}

// EventInput drives one named lifecycle transition. ExpectedVersion is the
// caller's optimistic-concurrency token; a stale value fails with a conflict
// and no mutation.
type EventInput struct {
	ApplicationID   string
	TriggeredBy     string
	ExpectedVersion uint64
}

type SubmitInput struct {
	EventInput
	Priority underwriting.Priority // optional, defaults to medium
}

type SignatureScope string

const (
	SignaturePartial SignatureScope = "partial"
	SignatureFull    SignatureScope = "full"
)

type RecordSignatureInput struct {
	EventInput
	Scope SignatureScope
}

type ApplicationDTO struct {
	ApplicationID    string          `json:"application_id"`
	BorrowerID       string          `json:"borrower_id"`
	CoBorrowerID     *string         `json:"co_borrower_id,omitempty"`
	SchoolID         string          `json:"school_id"`
	ProgramID        string          `json:"program_id"`
	ProgramVersionID string          `json:"program_version_id"`
	Status           domain.Status   `json:"status"`
	Category         domain.Category `json:"category"`
	SubmissionDate   *time.Time      `json:"submission_date,omitempty"`
	Version          uint64          `json:"version"`
	AllowedEvents    []domain.Event  `json:"allowed_events"`
	CreatedAt        time.Time       `json:"created_at"`
}

type HistoryDTO struct {
	FromStatus  domain.Status `json:"from_status"`
	ToStatus    domain.Status `json:"to_status"`
	TriggeredBy string        `json:"triggered_by"`
	OccurredAt  time.Time     `json:"occurred_at"`
}

func toDTO(a *domain.Application) *ApplicationDTO {
	return &ApplicationDTO{
		ApplicationID:    a.ApplicationID,
		BorrowerID:       a.BorrowerID,
		CoBorrowerID:     a.CoBorrowerID,
		SchoolID:         a.SchoolID,
		ProgramID:        a.ProgramID,
		ProgramVersionID: a.ProgramVersionID,
		Status:           a.Status,
		Category:         a.Status.Category(),
		SubmissionDate:   a.SubmissionDate,
		Version:          a.Version,
		AllowedEvents:    domain.AllowedEvents(a.Status),
		CreatedAt:        a.CreatedAt,
	}
}
