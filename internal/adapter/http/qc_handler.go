package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	qcDomain "loan-origination-backend/internal/domain/qc"
	"loan-origination-backend/internal/domain/verification"
	qcUsecase "loan-origination-backend/internal/usecase/qc"
)

type QCHandler struct{ uc *qcUsecase.Usecase }

func NewQCHandler(uc *qcUsecase.Usecase) *QCHandler {
	return &QCHandler{uc: uc}
}

type documentRefReq struct {
	DocumentID string `json:"document_id" validate:"required,hex32"`
	Label      string `json:"label" validate:"required"`
}

type startQCReq struct {
	TriggeredBy     string           `json:"triggered_by" validate:"required,hex32"`
	ExpectedVersion uint64           `json:"expected_version"`
	DocumentRefs    []documentRefReq `json:"document_refs" validate:"dive"`
}

func (h *QCHandler) StartQC(c echo.Context) error {
	var req startQCReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	in := qcUsecase.StartQCInput{
		ApplicationID:   c.Param("application_id"),
		TriggeredBy:     req.TriggeredBy,
		ExpectedVersion: req.ExpectedVersion,
	}
	for _, d := range req.DocumentRefs {
		in.DocumentRefs = append(in.DocumentRefs, qcUsecase.DocumentRef{DocumentID: d.DocumentID, Label: d.Label})
	}
	dto, err := h.uc.StartQC(c.Request().Context(), in)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *QCHandler) GetReview(c echo.Context) error {
	dto, err := h.uc.GetReview(c.Request().Context(), c.Param("review_id"))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *QCHandler) ListReviews(c echo.Context) error {
	f := qcDomain.Filters{
		Status:        qcDomain.ReviewStatus(c.QueryParam("status")),
		ApplicationID: c.QueryParam("application_id"),
	}
	dtos, err := h.uc.ListReviews(c.Request().Context(), f)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dtos)
}

type itemActionReq struct {
	VerifierID string `json:"verifier_id" validate:"required,hex32"`
	Comments   string `json:"comments"`
}

func (h *QCHandler) VerifyItem(c echo.Context) error { return h.itemAction(c, h.uc.VerifyItem) }
func (h *QCHandler) RejectItem(c echo.Context) error { return h.itemAction(c, h.uc.RejectItem) }
func (h *QCHandler) WaiveItem(c echo.Context) error  { return h.itemAction(c, h.uc.WaiveItem) }
func (h *QCHandler) ResetItem(c echo.Context) error  { return h.itemAction(c, h.uc.ResetItem) }

func (h *QCHandler) itemAction(c echo.Context, fn func(ctx context.Context, in qcUsecase.ItemActionInput) (*qcUsecase.ItemDTO, error)) error {
	var req itemActionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := fn(c.Request().Context(), qcUsecase.ItemActionInput{
		ReviewID:   c.Param("review_id"),
		ItemID:     c.Param("item_id"),
		VerifierID: req.VerifierID,
		Comments:   req.Comments,
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type addItemReq struct {
	Kind      string `json:"kind" validate:"required,oneof=document stipulation checklist"`
	Label     string `json:"label" validate:"required"`
	SourceRef string `json:"source_ref"`
}

func (h *QCHandler) AddItem(c echo.Context) error {
	var req addItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.AddItem(c.Request().Context(), qcUsecase.AddItemInput{
		ReviewID:  c.Param("review_id"),
		Kind:      verification.Kind(req.Kind),
		Label:     req.Label,
		SourceRef: req.SourceRef,
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

type qcDecisionReq struct {
	Status          string `json:"status" validate:"required,oneof=approved returned"`
	ReturnReason    string `json:"return_reason"`
	Notes           string `json:"notes"`
	DecidedBy       string `json:"decided_by" validate:"required,hex32"`
	ExpectedVersion uint64 `json:"expected_version"`
}

func (h *QCHandler) SubmitDecision(c echo.Context) error {
	var req qcDecisionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.SubmitDecision(c.Request().Context(), qcUsecase.SubmitDecisionInput{
		ReviewID:        c.Param("review_id"),
		Status:          qcDomain.ReviewStatus(req.Status),
		ReturnReason:    req.ReturnReason,
		Notes:           req.Notes,
		DecidedBy:       req.DecidedBy,
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
