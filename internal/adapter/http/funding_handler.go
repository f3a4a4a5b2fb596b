package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	fundDomain "loan-origination-backend/internal/domain/funding"
	fundUsecase "loan-origination-backend/internal/usecase/funding"
)

type FundingHandler struct{ uc *fundUsecase.Usecase }

func NewFundingHandler(uc *fundUsecase.Usecase) *FundingHandler {
	return &FundingHandler{uc: uc}
}

type createFundingRequestReq struct {
	ApplicationID   string `json:"application_id" validate:"required,hex32"`
	RequestedAmount string `json:"requested_amount" validate:"required,dec2"`
	RequestedBy     string `json:"requested_by" validate:"required,hex32"`
}

func (h *FundingHandler) CreateRequest(c echo.Context) error {
	var req createFundingRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	amount, err := decimal.NewFromString(req.RequestedAmount)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid requested_amount"})
	}
	dto, err := h.uc.CreateRequest(c.Request().Context(), fundUsecase.CreateRequestInput{
		ApplicationID:   req.ApplicationID,
		RequestedAmount: amount,
		RequestedBy:     req.RequestedBy,
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *FundingHandler) GetRequest(c echo.Context) error {
	dto, err := h.uc.GetRequest(c.Request().Context(), c.Param("request_id"))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *FundingHandler) ListRequests(c echo.Context) error {
	f := fundDomain.Filters{
		ApplicationID: c.QueryParam("application_id"),
		Status:        fundDomain.RequestStatus(c.QueryParam("status")),
	}
	dtos, err := h.uc.ListRequests(c.Request().Context(), f)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dtos)
}

type approveFundingReq struct {
	ApprovedAmount string `json:"approved_amount" validate:"required,dec2"`
	Comments       string `json:"comments"`
	ApprovedBy     string `json:"approved_by" validate:"required,hex32"`
}

func (h *FundingHandler) ApproveRequest(c echo.Context) error {
	var req approveFundingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	amount, err := decimal.NewFromString(req.ApprovedAmount)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid approved_amount"})
	}
	dto, err := h.uc.ApproveRequest(c.Request().Context(), fundUsecase.ApproveRequestInput{
		RequestID:      c.Param("request_id"),
		ApprovedAmount: amount,
		Comments:       req.Comments,
		ApprovedBy:     req.ApprovedBy,
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type rejectFundingReq struct {
	Comments   string `json:"comments" validate:"required"`
	RejectedBy string `json:"rejected_by" validate:"required,hex32"`
}

func (h *FundingHandler) RejectRequest(c echo.Context) error {
	var req rejectFundingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.RejectRequest(c.Request().Context(), fundUsecase.RejectRequestInput{
		RequestID:  c.Param("request_id"),
		Comments:   req.Comments,
		RejectedBy: req.RejectedBy,
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type enrollmentReq struct {
	Confirmed  bool      `json:"confirmed"`
	StartDate  time.Time `json:"start_date" validate:"required"`
	VerifiedBy string    `json:"verified_by" validate:"required,hex32"`
}

func (h *FundingHandler) RecordEnrollmentVerification(c echo.Context) error {
	var req enrollmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.RecordEnrollmentVerification(c.Request().Context(), fundUsecase.EnrollmentVerificationInput{
		RequestID:  c.Param("request_id"),
		Confirmed:  req.Confirmed,
		StartDate:  req.StartDate,
		VerifiedBy: req.VerifiedBy,
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type createDisbursementReq struct {
	Amount string `json:"amount" validate:"required,dec2"`
	Method string `json:"method" validate:"required,oneof=ach wire check"`
}

func (h *FundingHandler) CreateDisbursement(c echo.Context) error {
	var req createDisbursementReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid amount"})
	}
	dto, err := h.uc.CreateDisbursement(c.Request().Context(), fundUsecase.CreateDisbursementInput{
		RequestID: c.Param("request_id"),
		Amount:    amount,
		Method:    req.Method,
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

type updateDisbursementReq struct {
	Status          string `json:"status" validate:"required,oneof=scheduled pending completed failed"`
	ReferenceNumber string `json:"reference_number"`
}

func (h *FundingHandler) UpdateDisbursementStatus(c echo.Context) error {
	var req updateDisbursementReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.UpdateDisbursementStatus(c.Request().Context(), fundUsecase.UpdateDisbursementInput{
		DisbursementID:  c.Param("disbursement_id"),
		Status:          fundDomain.DisbursementStatus(req.Status),
		ReferenceNumber: req.ReferenceNumber,
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *FundingHandler) ListDisbursements(c echo.Context) error {
	dtos, err := h.uc.ListDisbursements(c.Request().Context(), c.Param("request_id"))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dtos)
}

type completeFundingReq struct {
	ApplicationID   string `json:"application_id" validate:"required,hex32"`
	TriggeredBy     string `json:"triggered_by" validate:"required,hex32"`
	ExpectedVersion uint64 `json:"expected_version"`
}

func (h *FundingHandler) CompleteFunding(c echo.Context) error {
	var req completeFundingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	err := h.uc.CompleteFunding(c.Request().Context(), fundUsecase.CompleteFundingInput{
		ApplicationID:   req.ApplicationID,
		RequestID:       c.Param("request_id"),
		TriggeredBy:     req.TriggeredBy,
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
