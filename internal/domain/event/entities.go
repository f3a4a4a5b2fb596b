package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeApplicationStatusChanged Type = "ApplicationStatusChanged"
	TypeDecisionRecorded         Type = "DecisionRecorded"
	TypeQCDecisionRecorded       Type = "QCDecisionRecorded"
	TypeItemStatusChanged        Type = "VerificationItemStatusChanged"
	TypeDisbursementCompleted    Type = "DisbursementCompleted"
)

// OutboxEvent is a transactional-outbox row. It is inserted in the same
// transaction as the aggregate change and delivered by the dispatcher with
// at-least-once semantics; consumers dedupe on (application_id, event_type,
// event_id).
type OutboxEvent struct {
	ID            uint64     `gorm:"primaryKey;column:id" json:"-"`
	EventID       string     `gorm:"size:36;uniqueIndex:ux_outbox_events_event_id" json:"event_id"`
	ApplicationID string     `gorm:"size:32;index:idx_outbox_events_app" json:"application_id"`
	EventType     Type       `gorm:"size:64" json:"event_type"`
	Payload       string     `gorm:"type:text" json:"payload"`
	IsProcessed   bool       `gorm:"not null;default:false;index:idx_outbox_events_unprocessed" json:"is_processed"`
	Attempts      int        `gorm:"not null;default:0" json:"attempts"`
	LockedAt      *time.Time `json:"locked_at,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (OutboxEvent) TableName() string { return "outbox_events" }

// New builds an outbox row from a payload value. Marshal failures are
// programmer errors on payload types and surface to the caller.
func New(applicationID string, t Type, payload any) (*OutboxEvent, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &OutboxEvent{
		EventID:       uuid.NewString(),
		ApplicationID: applicationID,
		EventType:     t,
		Payload:       string(b),
	}, nil
}

// StatusChangedPayload is emitted on every successful lifecycle transition.
type StatusChangedPayload struct {
	ApplicationID string    `json:"application_id"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	At            time.Time `json:"at"`
}

type DecisionRecordedPayload struct {
	ApplicationID string    `json:"application_id"`
	DecisionID    string    `json:"decision_id"`
	Decision      string    `json:"decision"`
	DecidedBy     string    `json:"decided_by"`
	At            time.Time `json:"at"`
}

type QCDecisionRecordedPayload struct {
	ApplicationID string    `json:"application_id"`
	ReviewID      string    `json:"review_id"`
	Status        string    `json:"status"`
	ReturnReason  string    `json:"return_reason,omitempty"`
	At            time.Time `json:"at"`
}

type DisbursementCompletedPayload struct {
	ApplicationID    string    `json:"application_id"`
	FundingRequestID string    `json:"funding_request_id"`
	DisbursementID   string    `json:"disbursement_id"`
	Amount           string    `json:"amount"`
	ReferenceNumber  string    `json:"reference_number"`
	At               time.Time `json:"at"`
}
