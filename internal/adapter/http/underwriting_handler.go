package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	uwDomain "loan-origination-backend/internal/domain/underwriting"
	uwUsecase "loan-origination-backend/internal/usecase/underwriting"
)

type UnderwritingHandler struct{ uc *uwUsecase.Usecase }

func NewUnderwritingHandler(uc *uwUsecase.Usecase) *UnderwritingHandler {
	return &UnderwritingHandler{uc: uc}
}

func (h *UnderwritingHandler) ListQueue(c echo.Context) error {
	f := uwDomain.QueueFilters{
		Status:     uwDomain.QueueStatus(c.QueryParam("status")),
		Priority:   uwDomain.Priority(c.QueryParam("priority")),
		AssignedTo: c.QueryParam("assigned_to"),
	}
	dtos, err := h.uc.ListQueue(c.Request().Context(), f)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dtos)
}

type assignReq struct {
	ReviewerID string `json:"reviewer_id" validate:"required,hex32"`
}

func (h *UnderwritingHandler) Assign(c echo.Context) error {
	var req assignReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Assign(c.Request().Context(), c.Param("entry_id"), req.ReviewerID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type startReviewReq struct {
	ReviewerID      string `json:"reviewer_id" validate:"required,hex32"`
	ExpectedVersion uint64 `json:"expected_version"`
}

func (h *UnderwritingHandler) StartReview(c echo.Context) error {
	var req startReviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.StartReview(c.Request().Context(), uwUsecase.StartReviewInput{
		ApplicationID:   c.Param("application_id"),
		ReviewerID:      req.ReviewerID,
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type reasonReq struct {
	Code        string `json:"code" validate:"required"`
	Description string `json:"description"`
}

type stipulationReq struct {
	Type           string    `json:"type" validate:"required"`
	Category       string    `json:"category" validate:"required"`
	Description    string    `json:"description" validate:"required"`
	RequiredByDate time.Time `json:"required_by_date" validate:"required"`
}

type recordDecisionReq struct {
	Decision       string           `json:"decision" validate:"required,oneof=approve deny revise"`
	ApprovedAmount *string          `json:"approved_amount" validate:"omitempty,dec2"`
	InterestRate   *float64         `json:"interest_rate" validate:"omitempty,gt=0"`
	TermMonths     *int             `json:"term_months" validate:"omitempty,gt=0"`
	Reasons        []reasonReq      `json:"reasons" validate:"dive"`
	Stipulations   []stipulationReq `json:"stipulations" validate:"dive"`
	DecidedBy      string           `json:"decided_by" validate:"required,hex32"`
	ExpectedVersion uint64          `json:"expected_version"`
}

func (h *UnderwritingHandler) RecordDecision(c echo.Context) error {
	var req recordDecisionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	in := uwUsecase.RecordDecisionInput{
		ApplicationID:   c.Param("application_id"),
		Decision:        uwDomain.DecisionKind(req.Decision),
		InterestRate:    req.InterestRate,
		TermMonths:      req.TermMonths,
		DecidedBy:       req.DecidedBy,
		ExpectedVersion: req.ExpectedVersion,
	}
	if req.ApprovedAmount != nil {
		amt, err := decimal.NewFromString(*req.ApprovedAmount)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid approved_amount"})
		}
		in.ApprovedAmount = &amt
	}
	for _, r := range req.Reasons {
		in.Reasons = append(in.Reasons, uwUsecase.ReasonInput{Code: r.Code, Description: r.Description})
	}
	for _, s := range req.Stipulations {
		in.Stipulations = append(in.Stipulations, uwUsecase.StipulationInput{
			Type:           s.Type,
			Category:       s.Category,
			Description:    s.Description,
			RequiredByDate: s.RequiredByDate,
		})
	}
	dto, err := h.uc.RecordDecision(c.Request().Context(), in)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *UnderwritingHandler) GetActiveDecision(c echo.Context) error {
	dto, err := h.uc.GetActiveDecision(c.Request().Context(), c.Param("application_id"))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *UnderwritingHandler) ListStipulations(c echo.Context) error {
	dtos, err := h.uc.ListStipulations(c.Request().Context(), c.Param("application_id"))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dtos)
}

type stipulationActionReq struct {
	ActorID string `json:"actor_id" validate:"required,hex32"`
}

func (h *UnderwritingHandler) SatisfyStipulation(c echo.Context) error {
	return h.stipulationAction(c, h.uc.SatisfyStipulation)
}

func (h *UnderwritingHandler) WaiveStipulation(c echo.Context) error {
	return h.stipulationAction(c, h.uc.WaiveStipulation)
}

func (h *UnderwritingHandler) stipulationAction(c echo.Context, fn func(ctx context.Context, in uwUsecase.StipulationActionInput) (*uwUsecase.StipulationDTO, error)) error {
	var req stipulationActionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := fn(c.Request().Context(), uwUsecase.StipulationActionInput{
		StipulationID: c.Param("stipulation_id"),
		ActorID:       req.ActorID,
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
