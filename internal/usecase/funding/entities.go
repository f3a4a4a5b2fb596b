package funding

import (
	"time"

	"github.com/shopspring/decimal"

	domain "loan-origination-backend/internal/domain/funding"
)

type CreateRequestInput struct {
	ApplicationID   string
	RequestedAmount decimal.Decimal
	RequestedBy     string
}

type ApproveRequestInput struct {
	RequestID      string
	ApprovedAmount decimal.Decimal
	Comments       string
	ApprovedBy     string
}

type RejectRequestInput struct {
	RequestID  string
	Comments   string
	RejectedBy string
}

type EnrollmentVerificationInput struct {
	RequestID  string
	Confirmed  bool
	StartDate  time.Time
	VerifiedBy string
}

type CreateDisbursementInput struct {
	RequestID string
	Amount    decimal.Decimal
	Method    string
}

type UpdateDisbursementInput struct {
	DisbursementID  string
	Status          domain.DisbursementStatus
	ReferenceNumber string
}

type CompleteFundingInput struct {
	ApplicationID   string
	RequestID       string
	TriggeredBy     string
	ExpectedVersion uint64
}

type RequestDTO struct {
	RequestID       string               `json:"request_id"`
	ApplicationID   string               `json:"application_id"`
	Status          domain.RequestStatus `json:"status"`
	RequestedAmount decimal.Decimal      `json:"requested_amount"`
	ApprovedAmount  *decimal.Decimal     `json:"approved_amount,omitempty"`
	Comments        *string              `json:"comments,omitempty"`
	// DisbursedTotal sums non-failed disbursements; derived on read.
	DisbursedTotal decimal.Decimal `json:"disbursed_total"`
}

type DisbursementDTO struct {
	DisbursementID   string                    `json:"disbursement_id"`
	FundingRequestID string                    `json:"funding_request_id"`
	Amount           decimal.Decimal           `json:"amount"`
	Status           domain.DisbursementStatus `json:"status"`
	Method           string                    `json:"method"`
	ReferenceNumber  *string                   `json:"reference_number,omitempty"`
}

type EnrollmentVerificationDTO struct {
	FundingRequestID string    `json:"funding_request_id"`
	Confirmed        bool      `json:"confirmed"`
	StartDate        time.Time `json:"start_date"`
	VerifiedBy       string    `json:"verified_by"`
}

func requestDTO(r *domain.Request, disbursed decimal.Decimal) *RequestDTO {
	dto := &RequestDTO{
		RequestID:       r.RequestID,
		ApplicationID:   r.ApplicationID,
		Status:          r.Status,
		RequestedAmount: r.RequestedAmount,
		Comments:        r.Comments,
		DisbursedTotal:  disbursed,
	}
	if r.ApprovedAmount.Valid {
		amt := r.ApprovedAmount.Decimal
		dto.ApprovedAmount = &amt
	}
	return dto
}

func disbursementDTO(d *domain.Disbursement) *DisbursementDTO {
	return &DisbursementDTO{
		DisbursementID:   d.DisbursementID,
		FundingRequestID: d.FundingRequestID,
		Amount:           d.Amount,
		Status:           d.Status,
		Method:           d.Method,
		ReferenceNumber:  d.ReferenceNumber,
	}
}
