package funding

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"loan-origination-backend/internal/apperror"
	appdomain "loan-origination-backend/internal/domain/application"
	"loan-origination-backend/internal/domain/event"
	domain "loan-origination-backend/internal/domain/funding"
	"loan-origination-backend/internal/domain/uow"
	appusecase "loan-origination-backend/internal/usecase/application"
	"loan-origination-backend/pkg/id"
)

// Usecase is the funding orchestrator: request approval, the enrollment
// gate, the disbursement sub-state machine, and funding completion.
type Usecase struct {
	repo    domain.Repository
	appRepo appdomain.Repository
	uow     uow.UnitOfWork
	// allowQCApproved lets deployments raise funding requests right after QC
	// approval instead of waiting for the explicit ready-to-fund step.
	allowQCApproved bool
}

func NewUsecase(repo domain.Repository, appRepo appdomain.Repository, tx uow.UnitOfWork, allowQCApproved bool) *Usecase {
	return &Usecase{repo: repo, appRepo: appRepo, uow: tx, allowQCApproved: allowQCApproved}
}

func (u *Usecase) fundableStatus(s appdomain.Status) bool {
	if s == appdomain.StatusReadyToFund {
		return true
	}
	return u.allowQCApproved && s == appdomain.StatusQCApproved
}

// CreateRequest raises a funding request against a fundable application.
func (u *Usecase) CreateRequest(ctx context.Context, in CreateRequestInput) (*RequestDTO, error) {
	if !in.RequestedAmount.IsPositive() {
		return nil, apperror.Validation("requested_amount must be positive")
	}
	a, err := u.appRepo.GetByApplicationID(ctx, in.ApplicationID)
	if err != nil {
		return nil, err
	}
	if !u.fundableStatus(a.Status) {
		return nil, apperror.BusinessRule("application %s is %s, funding requires ReadyToFund", a.ApplicationID, a.Status)
	}
	r := &domain.Request{
		RequestID:       id.NewID32(),
		ApplicationID:   in.ApplicationID,
		Status:          domain.RequestPending,
		RequestedAmount: in.RequestedAmount,
	}
	if err := u.repo.CreateRequest(ctx, r); err != nil {
		return nil, apperror.Infrastructure(err, "create funding request")
	}
	return requestDTO(r, decimal.Zero), nil
}

func (u *Usecase) GetRequest(ctx context.Context, requestID string) (*RequestDTO, error) {
	r, err := u.repo.GetRequestByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	total, err := u.disbursedTotal(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return requestDTO(r, total), nil
}

func (u *Usecase) ListRequests(ctx context.Context, f domain.Filters) ([]*RequestDTO, error) {
	rows, err := u.repo.ListRequests(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]*RequestDTO, 0, len(rows))
	for _, r := range rows {
		total, err := u.disbursedTotal(ctx, r.RequestID)
		if err != nil {
			return nil, err
		}
		out = append(out, requestDTO(r, total))
	}
	return out, nil
}

// ApproveRequest approves a pending request for at most the requested amount.
func (u *Usecase) ApproveRequest(ctx context.Context, in ApproveRequestInput) (*RequestDTO, error) {
	r, err := u.repo.GetRequestByRequestID(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	if r.Status != domain.RequestPending {
		return nil, apperror.BusinessRule("funding request %s is %s, only pending requests can be approved", r.RequestID, r.Status)
	}
	a, err := u.appRepo.GetByApplicationID(ctx, r.ApplicationID)
	if err != nil {
		return nil, err
	}
	if !u.fundableStatus(a.Status) {
		return nil, apperror.BusinessRule("application %s is %s, funding requires ReadyToFund", a.ApplicationID, a.Status)
	}
	if !in.ApprovedAmount.IsPositive() {
		return nil, apperror.Validation("approved_amount must be positive")
	}
	if in.ApprovedAmount.GreaterThan(r.RequestedAmount) {
		return nil, apperror.BusinessRule("approved_amount %s exceeds requested_amount %s", in.ApprovedAmount, r.RequestedAmount)
	}
	r.Status = domain.RequestApproved
	r.ApprovedAmount = decimal.NewNullDecimal(in.ApprovedAmount)
	if in.Comments != "" {
		c := in.Comments
		r.Comments = &c
	}
	if err := u.repo.SaveRequest(ctx, r); err != nil {
		return nil, apperror.Infrastructure(err, "save funding request")
	}
	return requestDTO(r, decimal.Zero), nil
}

// RejectRequest is terminal. Comments are mandatory so the rejection is
// explainable downstream.
func (u *Usecase) RejectRequest(ctx context.Context, in RejectRequestInput) (*RequestDTO, error) {
	if in.Comments == "" {
		return nil, apperror.Validation("rejection comments are required")
	}
	r, err := u.repo.GetRequestByRequestID(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	if r.Status != domain.RequestPending {
		return nil, apperror.BusinessRule("funding request %s is %s, only pending requests can be rejected", r.RequestID, r.Status)
	}
	c := in.Comments
	r.Status = domain.RequestRejected
	r.Comments = &c
	if err := u.repo.SaveRequest(ctx, r); err != nil {
		return nil, apperror.Infrastructure(err, "save funding request")
	}
	return requestDTO(r, decimal.Zero), nil
}

// RecordEnrollmentVerification stores the enrollment confirmation that gates
// the first disbursement.
func (u *Usecase) RecordEnrollmentVerification(ctx context.Context, in EnrollmentVerificationInput) (*EnrollmentVerificationDTO, error) {
	if in.VerifiedBy == "" {
		return nil, apperror.Validation("verified_by is required")
	}
	if in.StartDate.IsZero() {
		return nil, apperror.Validation("start_date is required")
	}
	if _, err := u.repo.GetRequestByRequestID(ctx, in.RequestID); err != nil {
		return nil, err
	}
	ev := &domain.EnrollmentVerification{
		FundingRequestID: in.RequestID,
		Confirmed:        in.Confirmed,
		StartDate:        in.StartDate,
		VerifiedBy:       in.VerifiedBy,
	}
	if err := u.repo.UpsertEnrollmentVerification(ctx, ev); err != nil {
		return nil, apperror.Infrastructure(err, "save enrollment verification")
	}
	return &EnrollmentVerificationDTO{
		FundingRequestID: ev.FundingRequestID,
		Confirmed:        ev.Confirmed,
		StartDate:        ev.StartDate,
		VerifiedBy:       ev.VerifiedBy,
	}, nil
}

// CreateDisbursement schedules a transfer. Guards: approved request, confirmed
// enrollment, and no overdisbursement (the sum of non-failed disbursement
// amounts never exceeds the approved amount).
func (u *Usecase) CreateDisbursement(ctx context.Context, in CreateDisbursementInput) (*DisbursementDTO, error) {
	if !in.Amount.IsPositive() {
		return nil, apperror.Validation("amount must be positive")
	}
	if in.Method == "" {
		return nil, apperror.Validation("method is required")
	}

	var dto *DisbursementDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		req, err := r.Funding.GetRequestByRequestID(ctx, in.RequestID)
		if err != nil {
			return err
		}
		if req.Status != domain.RequestApproved {
			return apperror.BusinessRule("funding request %s is %s, disbursements require approval", req.RequestID, req.Status)
		}
		enrollment, err := r.Funding.GetEnrollmentVerificationByRequestID(ctx, in.RequestID)
		if err != nil {
			if apperror.IsKind(err, apperror.KindNotFound) {
				return apperror.BusinessRule("funding request %s has no enrollment verification", in.RequestID)
			}
			return err
		}
		if !enrollment.Confirmed {
			return apperror.BusinessRule("enrollment for funding request %s is not confirmed", in.RequestID)
		}

		existing, err := r.Funding.ListDisbursementsByRequestID(ctx, in.RequestID)
		if err != nil {
			return apperror.Infrastructure(err, "list disbursements")
		}
		total := in.Amount
		for _, d := range existing {
			if d.CountsTowardTotal() {
				total = total.Add(d.Amount)
			}
		}
		if total.GreaterThan(req.ApprovedAmount.Decimal) {
			return apperror.BusinessRule("disbursement total %s exceeds approved amount %s", total, req.ApprovedAmount.Decimal)
		}

		d := &domain.Disbursement{
			DisbursementID:   id.NewID32(),
			FundingRequestID: in.RequestID,
			Amount:           in.Amount,
			Status:           domain.DisbursementScheduled,
			Method:           in.Method,
		}
		if err := r.Funding.CreateDisbursement(ctx, d); err != nil {
			return apperror.Infrastructure(err, "create disbursement")
		}
		dto = disbursementDTO(d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// disbursementOrder encodes scheduled → pending → {completed|failed}.
var disbursementOrder = map[domain.DisbursementStatus][]domain.DisbursementStatus{
	domain.DisbursementScheduled: {domain.DisbursementPending},
	domain.DisbursementPending:   {domain.DisbursementCompleted, domain.DisbursementFailed},
}

// UpdateDisbursementStatus advances the sub-state machine. Completion
// requires the payment rail's reference number and emits
// DisbursementCompleted.
func (u *Usecase) UpdateDisbursementStatus(ctx context.Context, in UpdateDisbursementInput) (*DisbursementDTO, error) {
	var dto *DisbursementDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		d, err := r.Funding.GetDisbursementByDisbursementID(ctx, in.DisbursementID)
		if err != nil {
			return err
		}
		allowed := false
		for _, next := range disbursementOrder[d.Status] {
			if next == in.Status {
				allowed = true
				break
			}
		}
		if !allowed {
			return apperror.InvalidTransition("disbursement %s cannot move from %s to %s", d.DisbursementID, d.Status, in.Status)
		}
		if in.Status == domain.DisbursementCompleted {
			if in.ReferenceNumber == "" {
				return apperror.Validation("completed disbursement requires a reference number")
			}
			ref := in.ReferenceNumber
			d.ReferenceNumber = &ref
		}
		d.Status = in.Status
		if err := r.Funding.SaveDisbursement(ctx, d); err != nil {
			return apperror.Infrastructure(err, "save disbursement")
		}

		if in.Status == domain.DisbursementCompleted {
			req, err := r.Funding.GetRequestByRequestID(ctx, d.FundingRequestID)
			if err != nil {
				return err
			}
			ev, err := event.New(req.ApplicationID, event.TypeDisbursementCompleted, event.DisbursementCompletedPayload{
				ApplicationID:    req.ApplicationID,
				FundingRequestID: req.RequestID,
				DisbursementID:   d.DisbursementID,
				Amount:           d.Amount.String(),
				ReferenceNumber:  in.ReferenceNumber,
				At:               time.Now().UTC(),
			})
			if err != nil {
				return apperror.Infrastructure(err, "encode disbursement event")
			}
			if err := r.Outbox.Publish(ctx, ev); err != nil {
				return apperror.Infrastructure(err, "publish disbursement event")
			}
		}
		dto = disbursementDTO(d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) ListDisbursements(ctx context.Context, requestID string) ([]*DisbursementDTO, error) {
	rows, err := u.repo.ListDisbursementsByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	out := make([]*DisbursementDTO, 0, len(rows))
	for _, d := range rows {
		out = append(out, disbursementDTO(d))
	}
	return out, nil
}

// CompleteFunding transitions the application to Funded once the request is
// fully disbursed: every disbursement completed, completed total equal to the
// approved amount.
func (u *Usecase) CompleteFunding(ctx context.Context, in CompleteFundingInput) error {
	return u.uow.WithinApplicationTx(ctx, in.ApplicationID, func(r uow.Repos, a *appdomain.Application) error {
		req, err := r.Funding.GetRequestByRequestID(ctx, in.RequestID)
		if err != nil {
			return err
		}
		if req.ApplicationID != a.ApplicationID {
			return apperror.Validation("funding request %s does not belong to application %s", in.RequestID, in.ApplicationID)
		}
		if req.Status != domain.RequestApproved {
			return apperror.BusinessRule("funding request %s is %s, completion requires approval", req.RequestID, req.Status)
		}
		disbursements, err := r.Funding.ListDisbursementsByRequestID(ctx, in.RequestID)
		if err != nil {
			return apperror.Infrastructure(err, "list disbursements")
		}
		completedTotal := decimal.Zero
		for _, d := range disbursements {
			switch d.Status {
			case domain.DisbursementCompleted:
				completedTotal = completedTotal.Add(d.Amount)
			case domain.DisbursementFailed:
				// released; does not block completion
			default:
				return apperror.BusinessRule("disbursement %s is still %s", d.DisbursementID, d.Status)
			}
		}
		if !completedTotal.Equal(req.ApprovedAmount.Decimal) {
			return apperror.BusinessRule("completed total %s does not match approved amount %s", completedTotal, req.ApprovedAmount.Decimal)
		}
		return appusecase.ApplyTransition(ctx, r, a, appdomain.EventRecordFunding, in.TriggeredBy, in.ExpectedVersion)
	})
}

func (u *Usecase) disbursedTotal(ctx context.Context, requestID string) (decimal.Decimal, error) {
	rows, err := u.repo.ListDisbursementsByRequestID(ctx, requestID)
	if err != nil {
		return decimal.Zero, apperror.Infrastructure(err, "list disbursements")
	}
	total := decimal.Zero
	for _, d := range rows {
		if d.CountsTowardTotal() {
			total = total.Add(d.Amount)
		}
	}
	return total, nil
}
