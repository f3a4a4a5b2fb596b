package funding

import "context"

// Filters is the typed query object for funding listings.
type Filters struct {
	ApplicationID string
	Status        RequestStatus
}

type Repository interface {
	CreateRequest(ctx context.Context, r *Request) error
	GetRequestByRequestID(ctx context.Context, requestID string) (*Request, error)
	SaveRequest(ctx context.Context, r *Request) error
	ListRequests(ctx context.Context, f Filters) ([]*Request, error)

	CreateDisbursement(ctx context.Context, d *Disbursement) error
	GetDisbursementByDisbursementID(ctx context.Context, disbursementID string) (*Disbursement, error)
	SaveDisbursement(ctx context.Context, d *Disbursement) error
	ListDisbursementsByRequestID(ctx context.Context, requestID string) ([]*Disbursement, error)

	UpsertEnrollmentVerification(ctx context.Context, ev *EnrollmentVerification) error
	GetEnrollmentVerificationByRequestID(ctx context.Context, requestID string) (*EnrollmentVerification, error)
}
