package funding

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"loan-origination-backend/internal/apperror"
	appdomain "loan-origination-backend/internal/domain/application"
	"loan-origination-backend/internal/domain/event"
	domain "loan-origination-backend/internal/domain/funding"
	"loan-origination-backend/internal/domain/uow"
	"loan-origination-backend/internal/testutil/appmock"
	"loan-origination-backend/internal/testutil/fundmock"
	"loan-origination-backend/internal/testutil/outboxmock"
	"loan-origination-backend/internal/testutil/uowmock"
)

const (
	actorID = "dddddddddddddddddddddddddddddddd"
	appID   = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	reqID   = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	disbID  = "cccccccccccccccccccccccccccccccc"
)

type harness struct {
	apps   *appmock.Repo
	fund   *fundmock.Repo
	outbox *outboxmock.Publisher
	uc     *Usecase
}

func newHarness(current *appdomain.Application, req *domain.Request, allowQCApproved bool) *harness {
	h := &harness{
		apps:   &appmock.Repo{},
		fund:   &fundmock.Repo{},
		outbox: &outboxmock.Publisher{},
	}
	h.apps.GetByApplicationIDFn = func(_ context.Context, id string) (*appdomain.Application, error) {
		if current != nil && id == current.ApplicationID {
			return current, nil
		}
		return nil, apperror.NotFound("application %s not found", id)
	}
	h.fund.GetRequestByRequestIDFn = func(_ context.Context, id string) (*domain.Request, error) {
		if req != nil && id == req.RequestID {
			return req, nil
		}
		return nil, apperror.NotFound("funding request %s not found", id)
	}
	h.fund.ListDisbursementsByRequestIDFn = func(context.Context, string) ([]*domain.Disbursement, error) {
		return nil, nil
	}
	repos := uow.Repos{Applications: h.apps, Funding: h.fund, Outbox: h.outbox}
	h.uc = NewUsecase(h.fund, h.apps, uowmock.Passthrough(repos), allowQCApproved)
	return h
}

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func approvedRequest() *domain.Request {
	return &domain.Request{
		RequestID:       reqID,
		ApplicationID:   appID,
		Status:          domain.RequestApproved,
		RequestedAmount: amt("25000"),
		ApprovedAmount:  decimal.NewNullDecimal(amt("20000")),
	}
}

func TestCreateRequest(t *testing.T) {
	a := &appdomain.Application{ApplicationID: appID, Status: appdomain.StatusReadyToFund}
	h := newHarness(a, nil, false)

	var created *domain.Request
	h.fund.CreateRequestFn = func(_ context.Context, r *domain.Request) error {
		created = r
		return nil
	}
	dto, err := h.uc.CreateRequest(context.Background(), CreateRequestInput{
		ApplicationID: appID, RequestedAmount: amt("25000"), RequestedBy: actorID,
	})
	if err != nil {
		t.Fatalf("CreateRequest err: %v", err)
	}
	if created == nil || created.Status != domain.RequestPending {
		t.Fatalf("created = %+v", created)
	}
	if dto.ApprovedAmount != nil {
		t.Fatalf("approved amount must be unset on a new request")
	}
}

func TestCreateRequest_StatusGuard(t *testing.T) {
	a := &appdomain.Application{ApplicationID: appID, Status: appdomain.StatusQCApproved}
	h := newHarness(a, nil, false)
	_, err := h.uc.CreateRequest(context.Background(), CreateRequestInput{
		ApplicationID: appID, RequestedAmount: amt("25000"),
	})
	if !apperror.IsKind(err, apperror.KindBusinessRule) {
		t.Fatalf("want business rule, got %v", err)
	}

	// QCApproved is fundable when the deployment opts in
	h = newHarness(a, nil, true)
	h.fund.CreateRequestFn = func(context.Context, *domain.Request) error { return nil }
	if _, err := h.uc.CreateRequest(context.Background(), CreateRequestInput{
		ApplicationID: appID, RequestedAmount: amt("25000"),
	}); err != nil {
		t.Fatalf("CreateRequest with allowQCApproved err: %v", err)
	}
}

func TestCreateRequest_AmountMustBePositive(t *testing.T) {
	h := newHarness(nil, nil, false)
	_, err := h.uc.CreateRequest(context.Background(), CreateRequestInput{
		ApplicationID: appID, RequestedAmount: amt("0"),
	})
	if !apperror.IsKind(err, apperror.KindValidation) {
		t.Fatalf("want validation, got %v", err)
	}
}

func TestApproveRequest(t *testing.T) {
	a := &appdomain.Application{ApplicationID: appID, Status: appdomain.StatusReadyToFund}
	req := &domain.Request{RequestID: reqID, ApplicationID: appID, Status: domain.RequestPending, RequestedAmount: amt("25000")}
	h := newHarness(a, req, false)
	h.fund.SaveRequestFn = func(context.Context, *domain.Request) error { return nil }

	dto, err := h.uc.ApproveRequest(context.Background(), ApproveRequestInput{
		RequestID: reqID, ApprovedAmount: amt("20000"), Comments: "partial approval", ApprovedBy: actorID,
	})
	if err != nil {
		t.Fatalf("ApproveRequest err: %v", err)
	}
	if dto.Status != domain.RequestApproved {
		t.Fatalf("status = %s", dto.Status)
	}
	if dto.ApprovedAmount == nil || !dto.ApprovedAmount.Equal(amt("20000")) {
		t.Fatalf("approved amount = %v", dto.ApprovedAmount)
	}

	// second approval hits the pending-only guard
	_, err = h.uc.ApproveRequest(context.Background(), ApproveRequestInput{RequestID: reqID, ApprovedAmount: amt("20000")})
	if !apperror.IsKind(err, apperror.KindBusinessRule) {
		t.Fatalf("want business rule, got %v", err)
	}
}

func TestApproveRequest_CannotExceedRequested(t *testing.T) {
	a := &appdomain.Application{ApplicationID: appID, Status: appdomain.StatusReadyToFund}
	req := &domain.Request{RequestID: reqID, ApplicationID: appID, Status: domain.RequestPending, RequestedAmount: amt("25000")}
	h := newHarness(a, req, false)

	_, err := h.uc.ApproveRequest(context.Background(), ApproveRequestInput{RequestID: reqID, ApprovedAmount: amt("25000.01")})
	if !apperror.IsKind(err, apperror.KindBusinessRule) {
		t.Fatalf("want business rule, got %v", err)
	}
	if req.Status != domain.RequestPending {
		t.Fatalf("request mutated: %s", req.Status)
	}
}

func TestRejectRequest(t *testing.T) {
	req := &domain.Request{RequestID: reqID, ApplicationID: appID, Status: domain.RequestPending, RequestedAmount: amt("25000")}
	h := newHarness(nil, req, false)

	_, err := h.uc.RejectRequest(context.Background(), RejectRequestInput{RequestID: reqID})
	if !apperror.IsKind(err, apperror.KindValidation) {
		t.Fatalf("want validation without comments, got %v", err)
	}

	h.fund.SaveRequestFn = func(context.Context, *domain.Request) error { return nil }
	dto, err := h.uc.RejectRequest(context.Background(), RejectRequestInput{RequestID: reqID, Comments: "duplicate request"})
	if err != nil {
		t.Fatalf("RejectRequest err: %v", err)
	}
	if dto.Status != domain.RequestRejected || dto.Comments == nil {
		t.Fatalf("dto = %+v", dto)
	}
}

func TestRecordEnrollmentVerification(t *testing.T) {
	req := approvedRequest()
	h := newHarness(nil, req, false)

	_, err := h.uc.RecordEnrollmentVerification(context.Background(), EnrollmentVerificationInput{
		RequestID: reqID, Confirmed: true, StartDate: time.Now(),
	})
	if !apperror.IsKind(err, apperror.KindValidation) {
		t.Fatalf("want validation without verifier, got %v", err)
	}

	var saved *domain.EnrollmentVerification
	h.fund.UpsertEnrollmentVerificationFn = func(_ context.Context, ev *domain.EnrollmentVerification) error {
		saved = ev
		return nil
	}
	dto, err := h.uc.RecordEnrollmentVerification(context.Background(), EnrollmentVerificationInput{
		RequestID: reqID, Confirmed: true, StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), VerifiedBy: actorID,
	})
	if err != nil {
		t.Fatalf("RecordEnrollmentVerification err: %v", err)
	}
	if saved == nil || !saved.Confirmed || dto.FundingRequestID != reqID {
		t.Fatalf("saved = %+v dto = %+v", saved, dto)
	}
}

func TestCreateDisbursement(t *testing.T) {
	req := approvedRequest()
	h := newHarness(nil, req, false)
	h.fund.GetEnrollmentVerificationByRequestIDFn = func(context.Context, string) (*domain.EnrollmentVerification, error) {
		return &domain.EnrollmentVerification{FundingRequestID: reqID, Confirmed: true}, nil
	}
	var created *domain.Disbursement
	h.fund.CreateDisbursementFn = func(_ context.Context, d *domain.Disbursement) error {
		created = d
		return nil
	}

	dto, err := h.uc.CreateDisbursement(context.Background(), CreateDisbursementInput{
		RequestID: reqID, Amount: amt("10000"), Method: "ach",
	})
	if err != nil {
		t.Fatalf("CreateDisbursement err: %v", err)
	}
	if created == nil || created.Status != domain.DisbursementScheduled {
		t.Fatalf("created = %+v", created)
	}
	if dto.Method != "ach" {
		t.Fatalf("method = %s", dto.Method)
	}
}

func TestCreateDisbursement_EnrollmentGate(t *testing.T) {
	req := approvedRequest()
	h := newHarness(nil, req, false)

	// no verification record at all
	h.fund.GetEnrollmentVerificationByRequestIDFn = func(_ context.Context, id string) (*domain.EnrollmentVerification, error) {
		return nil, apperror.NotFound("no enrollment verification for request %s", id)
	}
	_, err := h.uc.CreateDisbursement(context.Background(), CreateDisbursementInput{
		RequestID: reqID, Amount: amt("10000"), Method: "ach",
	})
	if !apperror.IsKind(err, apperror.KindBusinessRule) {
		t.Fatalf("want business rule without enrollment, got %v", err)
	}

	// verification exists but enrollment is not confirmed
	h.fund.GetEnrollmentVerificationByRequestIDFn = func(context.Context, string) (*domain.EnrollmentVerification, error) {
		return &domain.EnrollmentVerification{FundingRequestID: reqID, Confirmed: false}, nil
	}
	_, err = h.uc.CreateDisbursement(context.Background(), CreateDisbursementInput{
		RequestID: reqID, Amount: amt("10000"), Method: "ach",
	})
	if !apperror.IsKind(err, apperror.KindBusinessRule) {
		t.Fatalf("want business rule for unconfirmed enrollment, got %v", err)
	}
}

func TestCreateDisbursement_NoOverdisbursement(t *testing.T) {
	req := approvedRequest()
	h := newHarness(nil, req, false)
	h.fund.GetEnrollmentVerificationByRequestIDFn = func(context.Context, string) (*domain.EnrollmentVerification, error) {
		return &domain.EnrollmentVerification{FundingRequestID: reqID, Confirmed: true}, nil
	}
	h.fund.ListDisbursementsByRequestIDFn = func(context.Context, string) ([]*domain.Disbursement, error) {
		return []*domain.Disbursement{
			{DisbursementID: "d-1", FundingRequestID: reqID, Amount: amt("12000"), Status: domain.DisbursementCompleted},
			{DisbursementID: "d-2", FundingRequestID: reqID, Amount: amt("5000"), Status: domain.DisbursementFailed},
		}, nil
	}
	h.fund.CreateDisbursementFn = func(context.Context, *domain.Disbursement) error { return nil }

	// 12000 completed + 9000 > 20000 approved; the failed 5000 is released
	_, err := h.uc.CreateDisbursement(context.Background(), CreateDisbursementInput{
		RequestID: reqID, Amount: amt("9000"), Method: "wire",
	})
	if !apperror.IsKind(err, apperror.KindBusinessRule) {
		t.Fatalf("want business rule, got %v", err)
	}

	if _, err := h.uc.CreateDisbursement(context.Background(), CreateDisbursementInput{
		RequestID: reqID, Amount: amt("8000"), Method: "wire",
	}); err != nil {
		t.Fatalf("CreateDisbursement up to approved amount err: %v", err)
	}
}

func TestUpdateDisbursementStatus(t *testing.T) {
	req := approvedRequest()
	d := &domain.Disbursement{DisbursementID: disbID, FundingRequestID: reqID, Amount: amt("20000"), Status: domain.DisbursementScheduled, Method: "ach"}
	h := newHarness(nil, req, false)
	h.fund.GetDisbursementByDisbursementIDFn = func(context.Context, string) (*domain.Disbursement, error) { return d, nil }
	h.fund.SaveDisbursementFn = func(context.Context, *domain.Disbursement) error { return nil }

	// scheduled cannot jump straight to completed
	_, err := h.uc.UpdateDisbursementStatus(context.Background(), UpdateDisbursementInput{
		DisbursementID: disbID, Status: domain.DisbursementCompleted, ReferenceNumber: "ACH-1",
	})
	if !apperror.IsKind(err, apperror.KindInvalidTransition) {
		t.Fatalf("want invalid transition, got %v", err)
	}

	if _, err := h.uc.UpdateDisbursementStatus(context.Background(), UpdateDisbursementInput{
		DisbursementID: disbID, Status: domain.DisbursementPending,
	}); err != nil {
		t.Fatalf("scheduled to pending err: %v", err)
	}

	// completion without the rail reference is refused
	_, err = h.uc.UpdateDisbursementStatus(context.Background(), UpdateDisbursementInput{
		DisbursementID: disbID, Status: domain.DisbursementCompleted,
	})
	if !apperror.IsKind(err, apperror.KindValidation) {
		t.Fatalf("want validation, got %v", err)
	}

	dto, err := h.uc.UpdateDisbursementStatus(context.Background(), UpdateDisbursementInput{
		DisbursementID: disbID, Status: domain.DisbursementCompleted, ReferenceNumber: "ACH-1",
	})
	if err != nil {
		t.Fatalf("pending to completed err: %v", err)
	}
	if dto.ReferenceNumber == nil || *dto.ReferenceNumber != "ACH-1" {
		t.Fatalf("reference = %v", dto.ReferenceNumber)
	}
	if got := h.outbox.ByType(event.TypeDisbursementCompleted); len(got) != 1 {
		t.Fatalf("disbursement events = %d", len(got))
	}

	// completed is terminal
	_, err = h.uc.UpdateDisbursementStatus(context.Background(), UpdateDisbursementInput{
		DisbursementID: disbID, Status: domain.DisbursementFailed,
	})
	if !apperror.IsKind(err, apperror.KindInvalidTransition) {
		t.Fatalf("want invalid transition from completed, got %v", err)
	}
}

func TestCompleteFunding(t *testing.T) {
	a := &appdomain.Application{ApplicationID: appID, Status: appdomain.StatusReadyToFund, Version: 9}
	req := approvedRequest()
	h := newHarness(a, req, false)
	h.fund.ListDisbursementsByRequestIDFn = func(context.Context, string) ([]*domain.Disbursement, error) {
		return []*domain.Disbursement{
			{DisbursementID: "d-1", FundingRequestID: reqID, Amount: amt("12000"), Status: domain.DisbursementCompleted},
			{DisbursementID: "d-2", FundingRequestID: reqID, Amount: amt("8000"), Status: domain.DisbursementCompleted},
			{DisbursementID: "d-3", FundingRequestID: reqID, Amount: amt("5000"), Status: domain.DisbursementFailed},
		}, nil
	}

	err := h.uc.CompleteFunding(context.Background(), CompleteFundingInput{
		ApplicationID: appID, RequestID: reqID, TriggeredBy: actorID,
	})
	if err != nil {
		t.Fatalf("CompleteFunding err: %v", err)
	}
	if a.Status != appdomain.StatusFunded {
		t.Fatalf("application status = %s", a.Status)
	}
	if got := h.outbox.ByType(event.TypeApplicationStatusChanged); len(got) != 1 {
		t.Fatalf("status events = %d", len(got))
	}
}

func TestCompleteFunding_Guards(t *testing.T) {
	a := &appdomain.Application{ApplicationID: appID, Status: appdomain.StatusReadyToFund, Version: 9}

	t.Run("open disbursement blocks completion", func(t *testing.T) {
		req := approvedRequest()
		h := newHarness(a, req, false)
		h.fund.ListDisbursementsByRequestIDFn = func(context.Context, string) ([]*domain.Disbursement, error) {
			return []*domain.Disbursement{
				{DisbursementID: "d-1", FundingRequestID: reqID, Amount: amt("20000"), Status: domain.DisbursementPending},
			}, nil
		}
		err := h.uc.CompleteFunding(context.Background(), CompleteFundingInput{ApplicationID: appID, RequestID: reqID, TriggeredBy: actorID})
		if !apperror.IsKind(err, apperror.KindBusinessRule) {
			t.Fatalf("want business rule, got %v", err)
		}
	})

	t.Run("total short of approved amount", func(t *testing.T) {
		req := approvedRequest()
		h := newHarness(a, req, false)
		h.fund.ListDisbursementsByRequestIDFn = func(context.Context, string) ([]*domain.Disbursement, error) {
			return []*domain.Disbursement{
				{DisbursementID: "d-1", FundingRequestID: reqID, Amount: amt("12000"), Status: domain.DisbursementCompleted},
			}, nil
		}
		err := h.uc.CompleteFunding(context.Background(), CompleteFundingInput{ApplicationID: appID, RequestID: reqID, TriggeredBy: actorID})
		if !apperror.IsKind(err, apperror.KindBusinessRule) {
			t.Fatalf("want business rule, got %v", err)
		}
		if a.Status != appdomain.StatusReadyToFund {
			t.Fatalf("application mutated: %s", a.Status)
		}
	})

	t.Run("request from another application", func(t *testing.T) {
		req := approvedRequest()
		req.ApplicationID = "other-application"
		h := newHarness(a, req, false)
		err := h.uc.CompleteFunding(context.Background(), CompleteFundingInput{ApplicationID: appID, RequestID: reqID, TriggeredBy: actorID})
		if !apperror.IsKind(err, apperror.KindValidation) {
			t.Fatalf("want validation, got %v", err)
		}
	})
}
