package underwriting

import (
	"time"

	"github.com/shopspring/decimal"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

type QueueStatus string

const (
	QueuePending    QueueStatus = "pending"
	QueueAssigned   QueueStatus = "assigned"
	QueueInProgress QueueStatus = "in_progress"
	QueueCompleted  QueueStatus = "completed"
	QueueReturned   QueueStatus = "returned"
)

// QueueEntry is opened on submission and closed when a decision is recorded.
type QueueEntry struct {
	ID            uint64      `gorm:"primaryKey;column:id" json:"-"`
	EntryID       string      `gorm:"size:32;uniqueIndex:ux_uw_queue_entry_id" json:"entry_id"`
	ApplicationID string      `gorm:"size:32;index:idx_uw_queue_app" json:"application_id"`
	AssignedTo    *string     `gorm:"size:32" json:"assigned_to,omitempty"`
	Priority      Priority    `gorm:"size:8;default:'medium'" json:"priority"`
	Status        QueueStatus `gorm:"size:16;index:idx_uw_queue_status;default:'pending'" json:"status"`
	DueDate       time.Time   `json:"due_date"`
	CreatedAt     time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (QueueEntry) TableName() string { return "underwriting_queue" }

func (q *QueueEntry) Open() bool {
	return q.Status == QueuePending || q.Status == QueueAssigned || q.Status == QueueInProgress
}

// IsOverdue is computed at read time, never by a timer.
func (q *QueueEntry) IsOverdue(now time.Time) bool {
	return q.Open() && now.After(q.DueDate)
}

type DecisionKind string

const (
	DecisionApprove DecisionKind = "approve"
	DecisionDeny    DecisionKind = "deny"
	DecisionRevise  DecisionKind = "revise"
)

// Decision records one underwriting determination. At most one non-superseded
// row may exist per application; a new review round supersedes the prior one.
type Decision struct {
	ID             uint64              `gorm:"primaryKey;column:id" json:"-"`
	DecisionID     string              `gorm:"size:32;uniqueIndex:ux_uw_decisions_decision_id" json:"decision_id"`
	ApplicationID  string              `gorm:"size:32;index:idx_uw_decisions_app" json:"application_id"`
	Decision       DecisionKind        `gorm:"size:8" json:"decision"`
	ApprovedAmount decimal.NullDecimal `gorm:"type:decimal(18,2)" json:"approved_amount,omitempty"`
	InterestRate   *float64            `gorm:"type:decimal(6,4)" json:"interest_rate,omitempty"`
	TermMonths     *int                `json:"term_months,omitempty"`
	Superseded     bool                `gorm:"not null;default:false" json:"superseded"`
	DecidedBy      string              `gorm:"size:32" json:"decided_by"`
	DecidedAt      time.Time           `json:"decided_at"`
	Reasons        []DecisionReason    `gorm:"foreignKey:DecisionRef;references:ID" json:"reasons,omitempty"`
	CreatedAt      time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Decision) TableName() string { return "underwriting_decisions" }

type DecisionReason struct {
	ID          uint64 `gorm:"primaryKey;column:id" json:"-"`
	DecisionRef uint64 `gorm:"column:decision_ref;index" json:"-"`
	Code        string `gorm:"size:64" json:"code"`
	Description string `gorm:"type:text" json:"description"`
}

func (DecisionReason) TableName() string { return "underwriting_decision_reasons" }

type StipulationStatus string

const (
	StipulationPending   StipulationStatus = "pending"
	StipulationSatisfied StipulationStatus = "satisfied"
	StipulationWaived    StipulationStatus = "waived"
)

// Stipulation is a condition attached to an approval that must be satisfied,
// waived, or left pending.
type Stipulation struct {
	ID             uint64            `gorm:"primaryKey;column:id" json:"-"`
	StipulationID  string            `gorm:"size:32;uniqueIndex:ux_stipulations_stip_id" json:"stipulation_id"`
	ApplicationID  string            `gorm:"size:32;index:idx_stipulations_app" json:"application_id"`
	Type           string            `gorm:"size:64" json:"type"`
	Category       string            `gorm:"size:64" json:"category"`
	Description    string            `gorm:"type:text" json:"description"`
	RequiredByDate time.Time         `json:"required_by_date"`
	Status         StipulationStatus `gorm:"size:16;default:'pending'" json:"status"`
	SatisfiedBy    *string           `gorm:"size:32" json:"satisfied_by,omitempty"`
	SatisfiedAt    *time.Time        `json:"satisfied_at,omitempty"`
	CreatedAt      time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Stipulation) TableName() string { return "stipulations" }

func (s *Stipulation) IsOverdue(now time.Time) bool {
	return s.Status == StipulationPending && now.After(s.RequiredByDate)
}
