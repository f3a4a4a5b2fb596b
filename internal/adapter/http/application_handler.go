package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	appDomain "loan-origination-backend/internal/domain/application"
	"loan-origination-backend/internal/domain/underwriting"
	appUsecase "loan-origination-backend/internal/usecase/application"
)

type ApplicationHandler struct{ uc *appUsecase.Usecase }

func NewApplicationHandler(uc *appUsecase.Usecase) *ApplicationHandler {
	return &ApplicationHandler{uc: uc}
}

type createDraftReq struct {
	BorrowerID       string `json:"borrower_id" validate:"required,hex32"`
	CoBorrowerID     string `json:"co_borrower_id" validate:"omitempty,hex32"`
	SchoolID         string `json:"school_id" validate:"required,hex32"`
	ProgramID        string `json:"program_id" validate:"required,hex32"`
	ProgramVersionID string `json:"program_version_id" validate:"omitempty,hex32"`
	CreatedBy        string `json:"created_by" validate:"required,hex32"`
}

// eventReq is the shared body for plain lifecycle transitions.
type eventReq struct {
	TriggeredBy     string `json:"triggered_by" validate:"required,hex32"`
	ExpectedVersion uint64 `json:"expected_version"`
}

func (h *ApplicationHandler) CreateDraft(c echo.Context) error {
	var req createDraftReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.CreateDraft(c.Request().Context(), appUsecase.CreateDraftInput{
		BorrowerID:       req.BorrowerID,
		CoBorrowerID:     req.CoBorrowerID,
		SchoolID:         req.SchoolID,
		ProgramID:        req.ProgramID,
		ProgramVersionID: req.ProgramVersionID,
		CreatedBy:        req.CreatedBy,
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ApplicationHandler) Get(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("application_id"))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApplicationHandler) List(c echo.Context) error {
	f := appDomain.Filters{
		BorrowerID: c.QueryParam("borrower_id"),
		SchoolID:   c.QueryParam("school_id"),
		Category:   appDomain.Category(c.QueryParam("category")),
	}
	if s := c.QueryParam("status"); s != "" {
		f.Statuses = []appDomain.Status{appDomain.Status(s)}
	}
	dtos, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dtos)
}

func (h *ApplicationHandler) History(c echo.Context) error {
	rows, err := h.uc.History(c.Request().Context(), c.Param("application_id"))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, rows)
}

type submitReq struct {
	eventReq
	Priority string `json:"priority" validate:"omitempty,oneof=high medium low"`
}

func (h *ApplicationHandler) Submit(c echo.Context) error {
	var req submitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Submit(c.Request().Context(), appUsecase.SubmitInput{
		EventInput: h.eventInput(c, req.eventReq),
		Priority:   underwriting.Priority(req.Priority),
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type signatureReq struct {
	eventReq
	Scope string `json:"scope" validate:"required,oneof=partial full"`
}

func (h *ApplicationHandler) RecordSignature(c echo.Context) error {
	var req signatureReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.RecordSignature(c.Request().Context(), appUsecase.RecordSignatureInput{
		EventInput: h.eventInput(c, req.eventReq),
		Scope:      appUsecase.SignatureScope(req.Scope),
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// event wires the one-shot transitions that share the eventReq body.
func (h *ApplicationHandler) event(fn func(c echo.Context, in appUsecase.EventInput) (any, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req eventReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
		}
		dto, err := fn(c, h.eventInput(c, req))
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(http.StatusOK, dto)
	}
}

func (h *ApplicationHandler) MarkIncomplete(c echo.Context) error {
	return h.event(func(c echo.Context, in appUsecase.EventInput) (any, error) {
		return h.uc.MarkIncomplete(c.Request().Context(), in)
	})(c)
}

func (h *ApplicationHandler) SendCommitment(c echo.Context) error {
	return h.event(func(c echo.Context, in appUsecase.EventInput) (any, error) {
		return h.uc.SendCommitment(c.Request().Context(), in)
	})(c)
}

func (h *ApplicationHandler) AcceptCommitment(c echo.Context) error {
	return h.event(func(c echo.Context, in appUsecase.EventInput) (any, error) {
		return h.uc.AcceptCommitment(c.Request().Context(), in)
	})(c)
}

func (h *ApplicationHandler) DeclineCommitment(c echo.Context) error {
	return h.event(func(c echo.Context, in appUsecase.EventInput) (any, error) {
		return h.uc.DeclineCommitment(c.Request().Context(), in)
	})(c)
}

func (h *ApplicationHandler) CounterOffer(c echo.Context) error {
	return h.event(func(c echo.Context, in appUsecase.EventInput) (any, error) {
		return h.uc.CounterOffer(c.Request().Context(), in)
	})(c)
}

func (h *ApplicationHandler) SendDocuments(c echo.Context) error {
	return h.event(func(c echo.Context, in appUsecase.EventInput) (any, error) {
		return h.uc.SendDocuments(c.Request().Context(), in)
	})(c)
}

func (h *ApplicationHandler) ExpireDocuments(c echo.Context) error {
	return h.event(func(c echo.Context, in appUsecase.EventInput) (any, error) {
		return h.uc.ExpireDocuments(c.Request().Context(), in)
	})(c)
}

func (h *ApplicationHandler) MarkReadyToFund(c echo.Context) error {
	return h.event(func(c echo.Context, in appUsecase.EventInput) (any, error) {
		return h.uc.MarkReadyToFund(c.Request().Context(), in)
	})(c)
}

func (h *ApplicationHandler) Cancel(c echo.Context) error {
	return h.event(func(c echo.Context, in appUsecase.EventInput) (any, error) {
		return h.uc.Cancel(c.Request().Context(), in)
	})(c)
}

func (h *ApplicationHandler) eventInput(c echo.Context, req eventReq) appUsecase.EventInput {
	return appUsecase.EventInput{
		ApplicationID:   c.Param("application_id"),
		TriggeredBy:     req.TriggeredBy,
		ExpectedVersion: req.ExpectedVersion,
	}
}
