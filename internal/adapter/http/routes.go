package http

import "github.com/labstack/echo/v4"

type Handlers struct {
	Health       *Handler
	Applications *ApplicationHandler
	Underwriting *UnderwritingHandler
	QC           *QCHandler
	Funding      *FundingHandler
}

// RegisterRoutes mounts the whole API surface. Lifecycle transitions are
// verbs under the application resource so the status machine stays the only
// way to change status.
func RegisterRoutes(e *echo.Echo, h Handlers, mw ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)

	api := e.Group("/api/v1", mw...)

	api.POST("/applications", h.Applications.CreateDraft)
	api.GET("/applications", h.Applications.List)
	api.GET("/applications/:application_id", h.Applications.Get)
	api.GET("/applications/:application_id/history", h.Applications.History)
	api.POST("/applications/:application_id/submit", h.Applications.Submit)
	api.POST("/applications/:application_id/mark-incomplete", h.Applications.MarkIncomplete)
	api.POST("/applications/:application_id/commitment/send", h.Applications.SendCommitment)
	api.POST("/applications/:application_id/commitment/accept", h.Applications.AcceptCommitment)
	api.POST("/applications/:application_id/commitment/decline", h.Applications.DeclineCommitment)
	api.POST("/applications/:application_id/commitment/counter", h.Applications.CounterOffer)
	api.POST("/applications/:application_id/documents/send", h.Applications.SendDocuments)
	api.POST("/applications/:application_id/documents/signature", h.Applications.RecordSignature)
	api.POST("/applications/:application_id/documents/expire", h.Applications.ExpireDocuments)
	api.POST("/applications/:application_id/ready-to-fund", h.Applications.MarkReadyToFund)
	api.POST("/applications/:application_id/cancel", h.Applications.Cancel)

	api.GET("/underwriting/queue", h.Underwriting.ListQueue)
	api.POST("/underwriting/queue/:entry_id/assign", h.Underwriting.Assign)
	api.POST("/applications/:application_id/underwriting/start", h.Underwriting.StartReview)
	api.POST("/applications/:application_id/underwriting/decision", h.Underwriting.RecordDecision)
	api.GET("/applications/:application_id/underwriting/decision", h.Underwriting.GetActiveDecision)
	api.GET("/applications/:application_id/stipulations", h.Underwriting.ListStipulations)
	api.POST("/stipulations/:stipulation_id/satisfy", h.Underwriting.SatisfyStipulation)
	api.POST("/stipulations/:stipulation_id/waive", h.Underwriting.WaiveStipulation)

	api.POST("/applications/:application_id/qc/start", h.QC.StartQC)
	api.GET("/qc/reviews", h.QC.ListReviews)
	api.GET("/qc/reviews/:review_id", h.QC.GetReview)
	api.POST("/qc/reviews/:review_id/items", h.QC.AddItem)
	api.POST("/qc/reviews/:review_id/items/:item_id/verify", h.QC.VerifyItem)
	api.POST("/qc/reviews/:review_id/items/:item_id/reject", h.QC.RejectItem)
	api.POST("/qc/reviews/:review_id/items/:item_id/waive", h.QC.WaiveItem)
	api.POST("/qc/reviews/:review_id/items/:item_id/reset", h.QC.ResetItem)
	api.POST("/qc/reviews/:review_id/decision", h.QC.SubmitDecision)

	api.POST("/funding/requests", h.Funding.CreateRequest)
	api.GET("/funding/requests", h.Funding.ListRequests)
	api.GET("/funding/requests/:request_id", h.Funding.GetRequest)
	api.POST("/funding/requests/:request_id/approve", h.Funding.ApproveRequest)
	api.POST("/funding/requests/:request_id/reject", h.Funding.RejectRequest)
	api.POST("/funding/requests/:request_id/enrollment", h.Funding.RecordEnrollmentVerification)
	api.POST("/funding/requests/:request_id/disbursements", h.Funding.CreateDisbursement)
	api.GET("/funding/requests/:request_id/disbursements", h.Funding.ListDisbursements)
	api.POST("/funding/requests/:request_id/complete", h.Funding.CompleteFunding)
	api.POST("/funding/disbursements/:disbursement_id/status", h.Funding.UpdateDisbursementStatus)
}
