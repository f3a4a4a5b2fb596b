package funding

import (
	"time"

	"github.com/shopspring/decimal"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// Request is a funding request raised against a ready-to-fund application.
type Request struct {
	ID              uint64              `gorm:"primaryKey;column:id" json:"-"`
	RequestID       string              `gorm:"size:32;uniqueIndex:ux_funding_requests_req_id" json:"request_id"`
	ApplicationID   string              `gorm:"size:32;index:idx_funding_requests_app" json:"application_id"`
	Status          RequestStatus       `gorm:"size:16;default:'pending'" json:"status"`
	RequestedAmount decimal.Decimal     `gorm:"type:decimal(18,2)" json:"requested_amount"`
	ApprovedAmount  decimal.NullDecimal `gorm:"type:decimal(18,2)" json:"approved_amount,omitempty"`
	Comments        *string             `gorm:"type:text" json:"comments,omitempty"`
	CreatedAt       time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Request) TableName() string { return "funding_requests" }

type DisbursementStatus string

const (
	DisbursementScheduled DisbursementStatus = "scheduled"
	DisbursementPending   DisbursementStatus = "pending"
	DisbursementCompleted DisbursementStatus = "completed"
	DisbursementFailed    DisbursementStatus = "failed"
)

// Disbursement is one payment transfer against an approved funding request.
// Sub-states move scheduled → pending → {completed|failed}; completed needs a
// reference number from the payment rail.
type Disbursement struct {
	ID              uint64             `gorm:"primaryKey;column:id" json:"-"`
	DisbursementID  string             `gorm:"size:32;uniqueIndex:ux_disbursements_disb_id" json:"disbursement_id"`
	FundingRequestID string            `gorm:"size:32;index:idx_disbursements_request" json:"funding_request_id"`
	Amount          decimal.Decimal    `gorm:"type:decimal(18,2)" json:"amount"`
	Status          DisbursementStatus `gorm:"size:16;default:'scheduled'" json:"status"`
	Method          string             `gorm:"size:32" json:"method"`
	ReferenceNumber *string            `gorm:"size:64" json:"reference_number,omitempty"`
	CreatedAt       time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Disbursement) TableName() string { return "disbursements" }

// CountsTowardTotal reports whether the amount is held against the approved
// amount. Failed disbursements release their slice.
func (d *Disbursement) CountsTowardTotal() bool {
	return d.Status != DisbursementFailed
}

// EnrollmentVerification gates the first disbursement of a request.
type EnrollmentVerification struct {
	ID               uint64    `gorm:"primaryKey;column:id" json:"-"`
	FundingRequestID string    `gorm:"size:32;uniqueIndex:ux_enrollment_verifications_req" json:"funding_request_id"`
	Confirmed        bool      `json:"confirmed"`
	StartDate        time.Time `json:"start_date"`
	VerifiedBy       string    `gorm:"size:32" json:"verified_by"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (EnrollmentVerification) TableName() string { return "enrollment_verifications" }
