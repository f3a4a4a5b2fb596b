package underwriting

import (
	"time"

	"github.com/shopspring/decimal"

	domain "loan-origination-backend/internal/domain/underwriting"
)

type StartReviewInput struct {
	ApplicationID   string
	ReviewerID      string
	ExpectedVersion uint64
}

type ReasonInput struct {
	Code        string
	Description string
}

type StipulationInput struct {
	Type           string
	Category       string
	Description    string
	RequiredByDate time.Time
}

// RecordDecisionInput carries the full decision payload. Amount, rate and term
// are required for approve and forbidden for deny/revise.
type RecordDecisionInput struct {
	ApplicationID   string
	Decision        domain.DecisionKind
	ApprovedAmount  *decimal.Decimal
	InterestRate    *float64
	TermMonths      *int
	Reasons         []ReasonInput
	Stipulations    []StipulationInput
	DecidedBy       string
	ExpectedVersion uint64
}

type StipulationActionInput struct {
	StipulationID string
	ActorID       string
}

type QueueEntryDTO struct {
	EntryID       string             `json:"entry_id"`
	ApplicationID string             `json:"application_id"`
	AssignedTo    *string            `json:"assigned_to,omitempty"`
	Priority      domain.Priority    `json:"priority"`
	Status        domain.QueueStatus `json:"status"`
	DueDate       time.Time          `json:"due_date"`
	IsOverdue     bool               `json:"is_overdue"`
}

type DecisionDTO struct {
	DecisionID     string              `json:"decision_id"`
	ApplicationID  string              `json:"application_id"`
	Decision       domain.DecisionKind `json:"decision"`
	ApprovedAmount *decimal.Decimal    `json:"approved_amount,omitempty"`
	InterestRate   *float64            `json:"interest_rate,omitempty"`
	TermMonths     *int                `json:"term_months,omitempty"`
	Reasons        []ReasonInput       `json:"reasons,omitempty"`
	Stipulations   []StipulationDTO    `json:"stipulations,omitempty"`
	DecidedBy      string              `json:"decided_by"`
	DecidedAt      time.Time           `json:"decided_at"`
}

type StipulationDTO struct {
	StipulationID  string                   `json:"stipulation_id"`
	ApplicationID  string                   `json:"application_id"`
	Type           string                   `json:"type"`
	Category       string                   `json:"category"`
	Description    string                   `json:"description"`
	RequiredByDate time.Time                `json:"required_by_date"`
	Status         domain.StipulationStatus `json:"status"`
	IsOverdue      bool                     `json:"is_overdue"`
	SatisfiedBy    *string                  `json:"satisfied_by,omitempty"`
	SatisfiedAt    *time.Time               `json:"satisfied_at,omitempty"`
}

func queueDTO(q *domain.QueueEntry, now time.Time) *QueueEntryDTO {
	return &QueueEntryDTO{
		EntryID:       q.EntryID,
		ApplicationID: q.ApplicationID,
		AssignedTo:    q.AssignedTo,
		Priority:      q.Priority,
		Status:        q.Status,
		DueDate:       q.DueDate,
		IsOverdue:     q.IsOverdue(now),
	}
}

func stipulationDTO(s *domain.Stipulation, now time.Time) StipulationDTO {
	return StipulationDTO{
		StipulationID:  s.StipulationID,
		ApplicationID:  s.ApplicationID,
		Type:           s.Type,
		Category:       s.Category,
		Description:    s.Description,
		RequiredByDate: s.RequiredByDate,
		Status:         s.Status,
		IsOverdue:      s.IsOverdue(now),
		SatisfiedBy:    s.SatisfiedBy,
		SatisfiedAt:    s.SatisfiedAt,
	}
}
