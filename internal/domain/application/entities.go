package application

import (
	"time"
)

// Status is the canonical application status literal set. The literals are part
// of the external contract and must not be renamed.
type Status string

const (
	StatusDraft              Status = "Draft"
	StatusSubmitted          Status = "Submitted"
	StatusIncomplete         Status = "Incomplete"
	StatusInReview           Status = "InReview"
	StatusApproved           Status = "Approved"
	StatusDenied             Status = "Denied"
	StatusRevisionRequested  Status = "RevisionRequested"
	StatusCommitmentSent     Status = "CommitmentSent"
	StatusCommitmentAccepted Status = "CommitmentAccepted"
	StatusCommitmentDeclined Status = "CommitmentDeclined"
	StatusCounterOfferMade   Status = "CounterOfferMade"
	StatusDocumentsSent      Status = "DocumentsSent"
	StatusPartiallyExecuted  Status = "PartiallyExecuted"
	StatusFullyExecuted      Status = "FullyExecuted"
	StatusDocumentsExpired   Status = "DocumentsExpired"
	StatusQCReview           Status = "QCReview"
	StatusQCApproved         Status = "QCApproved"
	StatusQCRejected         Status = "QCRejected"
	StatusReadyToFund        Status = "ReadyToFund"
	StatusFunded             Status = "Funded"
	StatusAbandoned          Status = "Abandoned"
)

// AllStatuses lists every valid status, in lifecycle order.
var AllStatuses = []Status{
	StatusDraft, StatusSubmitted, StatusIncomplete, StatusInReview,
	StatusApproved, StatusDenied, StatusRevisionRequested,
	StatusCommitmentSent, StatusCommitmentAccepted, StatusCommitmentDeclined,
	StatusCounterOfferMade, StatusDocumentsSent, StatusPartiallyExecuted,
	StatusFullyExecuted, StatusDocumentsExpired,
	StatusQCReview, StatusQCApproved, StatusQCRejected,
	StatusReadyToFund, StatusFunded, StatusAbandoned,
}

func (s Status) Valid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Category is the display grouping consumed by list screens. The mapping is
// exhaustive over the status set; no substring matching.
type Category string

const (
	CategoryIntake       Category = "intake"
	CategoryUnderwriting Category = "underwriting"
	CategoryCommitment   Category = "commitment"
	CategoryDocuments    Category = "documents"
	CategoryQC           Category = "quality_control"
	CategoryFunding      Category = "funding"
	CategoryClosed       Category = "closed"
)

func (s Status) Category() Category {
	switch s {
	case StatusDraft, StatusSubmitted, StatusIncomplete, StatusRevisionRequested:
		return CategoryIntake
	case StatusInReview, StatusApproved:
		return CategoryUnderwriting
	case StatusCommitmentSent, StatusCommitmentAccepted, StatusCounterOfferMade:
		return CategoryCommitment
	case StatusDocumentsSent, StatusPartiallyExecuted, StatusFullyExecuted:
		return CategoryDocuments
	case StatusQCReview, StatusQCApproved, StatusQCRejected:
		return CategoryQC
	case StatusReadyToFund, StatusFunded:
		return CategoryFunding
	case StatusDenied, StatusCommitmentDeclined, StatusDocumentsExpired, StatusAbandoned:
		return CategoryClosed
	}
	return CategoryClosed
}

// Application is the aggregate root. Status is mutated only through Apply;
// Version backs the optimistic-concurrency check in the repository layer.
type Application struct {
	ID               uint64     `gorm:"primaryKey;column:id" json:"-"`
	ApplicationID    string     `gorm:"size:32;uniqueIndex:ux_applications_app_id" json:"application_id"`
	BorrowerID       string     `gorm:"size:32;index:idx_applications_borrower" json:"borrower_id"`
	CoBorrowerID     *string    `gorm:"size:32" json:"co_borrower_id,omitempty"`
	SchoolID         string     `gorm:"size:32;index:idx_applications_school" json:"school_id"`
	ProgramID        string     `gorm:"size:32" json:"program_id"`
	ProgramVersionID string     `gorm:"size:32" json:"program_version_id"`
	Status           Status     `gorm:"size:32;index:idx_applications_status;default:'Draft'" json:"status"`
	SubmissionDate   *time.Time `json:"submission_date,omitempty"`
	CreatedBy        string     `gorm:"size:32" json:"created_by"`
	StatusUpdatedAt  time.Time  `gorm:"autoCreateTime" json:"status_updated_at"`
	Version          uint64     `gorm:"not null;default:1" json:"version"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Application) TableName() string { return "applications" }

// StatusHistory is the append-only transition log. Rows are inserted alongside
// every successful Apply and never updated or deleted.
type StatusHistory struct {
	ID            uint64    `gorm:"primaryKey;column:id" json:"-"`
	ApplicationID string    `gorm:"size:32;index:idx_status_history_app" json:"application_id"`
	FromStatus    Status    `gorm:"size:32" json:"from_status"`
	ToStatus      Status    `gorm:"size:32" json:"to_status"`
	TriggeredBy   string    `gorm:"size:32" json:"triggered_by"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func (StatusHistory) TableName() string { return "application_status_history" }
