package qc

import (
	"context"
	"time"

	"loan-origination-backend/internal/apperror"
	appdomain "loan-origination-backend/internal/domain/application"
	"loan-origination-backend/internal/domain/event"
	domain "loan-origination-backend/internal/domain/qc"
	"loan-origination-backend/internal/domain/underwriting"
	"loan-origination-backend/internal/domain/uow"
	"loan-origination-backend/internal/domain/verification"
	appusecase "loan-origination-backend/internal/usecase/application"
	"loan-origination-backend/pkg/id"
)

// ChecklistTemplate seeds the checklist collection of every new review.
// Deployments override it through config.
var DefaultChecklistTemplate = []string{
	"Signed promissory note matches approved terms",
	"Borrower identity re-verified",
	"Program enrollment window still open",
	"No new adverse credit events",
}

// Usecase is the QC review processor. Each review owns three verification
// collections; the aggregator engine guards every item mutation.
type Usecase struct {
	repo      domain.Repository
	uow       uow.UnitOfWork
	checklist []string
	// requireFullCompletion gates decision submission on 100% completion.
	// Off by default: the observed product behavior lets a manager decide
	// early, so this stays a policy knob.
	requireFullCompletion bool
}

func NewUsecase(repo domain.Repository, tx uow.UnitOfWork, checklist []string, requireFullCompletion bool) *Usecase {
	if len(checklist) == 0 {
		checklist = DefaultChecklistTemplate
	}
	return &Usecase{repo: repo, uow: tx, checklist: checklist, requireFullCompletion: requireFullCompletion}
}

// StartQC drives FullyExecuted→QCReview and creates the review with its
// seeded items: one per executed document, one per open stipulation, and the
// checklist template.
func (u *Usecase) StartQC(ctx context.Context, in StartQCInput) (*ReviewDTO, error) {
	var dto *ReviewDTO
	err := u.uow.WithinApplicationTx(ctx, in.ApplicationID, func(r uow.Repos, a *appdomain.Application) error {
		if _, err := r.QC.GetReviewByApplicationID(ctx, a.ApplicationID); err == nil {
			return apperror.BusinessRule("application %s already has a QC review", a.ApplicationID)
		} else if !apperror.IsKind(err, apperror.KindNotFound) {
			return err
		}

		if err := appusecase.ApplyTransition(ctx, r, a, appdomain.EventStartQC, in.TriggeredBy, in.ExpectedVersion); err != nil {
			return err
		}

		review := &domain.Review{
			ReviewID:      id.NewID32(),
			ApplicationID: a.ApplicationID,
			Status:        domain.ReviewInReview,
		}
		if err := r.QC.CreateReview(ctx, review); err != nil {
			return apperror.Infrastructure(err, "create qc review")
		}

		var items []*verification.Item
		for _, ref := range in.DocumentRefs {
			items = append(items, &verification.Item{
				ItemID:    id.NewID32(),
				ReviewID:  review.ReviewID,
				Kind:      verification.KindDocument,
				Label:     ref.Label,
				SourceRef: ref.DocumentID,
				Status:    verification.ItemUnverified,
			})
		}
		stips, err := r.Underwriting.ListStipulationsByApplicationID(ctx, a.ApplicationID)
		if err != nil {
			return apperror.Infrastructure(err, "list stipulations")
		}
		for _, s := range stips {
			if s.Status != underwriting.StipulationPending {
				continue
			}
			items = append(items, &verification.Item{
				ItemID:    id.NewID32(),
				ReviewID:  review.ReviewID,
				Kind:      verification.KindStipulation,
				Label:     s.Description,
				SourceRef: s.StipulationID,
				Status:    verification.ItemUnverified,
			})
		}
		for _, label := range u.checklist {
			items = append(items, &verification.Item{
				ItemID:   id.NewID32(),
				ReviewID: review.ReviewID,
				Kind:     verification.KindChecklist,
				Label:    label,
				Status:   verification.ItemUnverified,
			})
		}
		for _, it := range items {
			if err := r.QC.CreateItem(ctx, it); err != nil {
				return apperror.Infrastructure(err, "create verification item")
			}
		}

		dto = buildReviewDTO(review, items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) GetReview(ctx context.Context, reviewID string) (*ReviewDTO, error) {
	review, err := u.repo.GetReviewByReviewID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	items, err := u.repo.ListItemsByReviewID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	return buildReviewDTO(review, items), nil
}

func (u *Usecase) VerifyItem(ctx context.Context, in ItemActionInput) (*ItemDTO, error) {
	return u.setItemStatus(ctx, in, verification.ItemVerified, false)
}

func (u *Usecase) RejectItem(ctx context.Context, in ItemActionInput) (*ItemDTO, error) {
	return u.setItemStatus(ctx, in, verification.ItemRejected, false)
}

func (u *Usecase) WaiveItem(ctx context.Context, in ItemActionInput) (*ItemDTO, error) {
	return u.setItemStatus(ctx, in, verification.ItemWaived, false)
}

// ResetItem is the only way back to unverified once an item went terminal.
func (u *Usecase) ResetItem(ctx context.Context, in ItemActionInput) (*ItemDTO, error) {
	return u.setItemStatus(ctx, in, verification.ItemUnverified, true)
}

// AddItem appends a new item to an open review.
func (u *Usecase) AddItem(ctx context.Context, in AddItemInput) (*ItemDTO, error) {
	if in.Label == "" {
		return nil, apperror.Validation("item label is required")
	}
	var dto *ItemDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		review, err := mustReview(ctx, r, in.ReviewID)
		if err != nil {
			return err
		}
		items, err := r.QC.ListItemsByReviewID(ctx, in.ReviewID)
		if err != nil {
			return apperror.Infrastructure(err, "list items")
		}
		agg := verification.NewAggregator(filterKind(items, in.Kind), review.Open())
		it := &verification.Item{
			ItemID:    id.NewID32(),
			ReviewID:  in.ReviewID,
			Kind:      in.Kind,
			Label:     in.Label,
			SourceRef: in.SourceRef,
			Status:    verification.ItemUnverified,
		}
		if err := agg.Add(it); err != nil {
			return err
		}
		if err := r.QC.CreateItem(ctx, it); err != nil {
			return apperror.Infrastructure(err, "create verification item")
		}
		d := itemDTO(it)
		dto = &d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) setItemStatus(ctx context.Context, in ItemActionInput, to verification.ItemStatus, reset bool) (*ItemDTO, error) {
	if in.VerifierID == "" {
		return nil, apperror.Validation("verifier id is required")
	}
	var dto *ItemDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		review, err := mustReview(ctx, r, in.ReviewID)
		if err != nil {
			return err
		}
		items, err := r.QC.ListItemsByReviewID(ctx, in.ReviewID)
		if err != nil {
			return apperror.Infrastructure(err, "list items")
		}
		agg := verification.NewAggregator(items, review.Open())
		change, err := agg.SetStatus(in.ItemID, to, in.VerifierID, in.Comments, reset)
		if err != nil {
			return err
		}
		var changed *verification.Item
		for _, it := range items {
			if it.ItemID == in.ItemID {
				changed = it
				break
			}
		}
		if err := r.QC.SaveItem(ctx, changed); err != nil {
			return apperror.Infrastructure(err, "save verification item")
		}
		ev, err := event.New(review.ApplicationID, event.TypeItemStatusChanged, change)
		if err != nil {
			return apperror.Infrastructure(err, "encode item event")
		}
		if err := r.Outbox.Publish(ctx, ev); err != nil {
			return apperror.Infrastructure(err, "publish item event")
		}
		d := itemDTO(changed)
		dto = &d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// SubmitDecision records the QC outcome and drives the status machine.
// Routing out of QCRejected back to underwriting is a separate caller action,
// never chained here.
func (u *Usecase) SubmitDecision(ctx context.Context, in SubmitDecisionInput) (*ReviewDTO, error) {
	if in.Status != domain.ReviewApproved && in.Status != domain.ReviewReturned {
		return nil, apperror.Validation("decision status must be approved or returned")
	}
	if in.Status == domain.ReviewReturned && in.ReturnReason == "" {
		return nil, apperror.Validation("returned decision requires a return reason")
	}

	var dto *ReviewDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		review, err := r.QC.GetReviewByReviewID(ctx, in.ReviewID)
		if err != nil {
			return err
		}
		if !review.Open() {
			return apperror.BusinessRule("qc review %s is already %s", review.ReviewID, review.Status)
		}
		items, err := r.QC.ListItemsByReviewID(ctx, review.ReviewID)
		if err != nil {
			return apperror.Infrastructure(err, "list items")
		}
		if u.requireFullCompletion && in.Status == domain.ReviewApproved {
			if verification.NewAggregator(items, true).CompletionPercentage() < 100 {
				return apperror.BusinessRule("qc review %s is not fully verified", review.ReviewID)
			}
		}

		a, err := r.Applications.GetByApplicationID(ctx, review.ApplicationID)
		if err != nil {
			return err
		}
		machineEvent := appdomain.EventQCApprove
		if in.Status == domain.ReviewReturned {
			machineEvent = appdomain.EventQCReturn
		}
		if err := appusecase.ApplyTransition(ctx, r, a, machineEvent, in.DecidedBy, in.ExpectedVersion); err != nil {
			return err
		}

		now := time.Now().UTC()
		review.Status = in.Status
		if in.ReturnReason != "" {
			reason := in.ReturnReason
			review.ReturnReason = &reason
		}
		if in.Notes != "" {
			notes := in.Notes
			review.Notes = &notes
		}
		if err := r.QC.SaveReview(ctx, review); err != nil {
			return apperror.Infrastructure(err, "save qc review")
		}

		ev, err := event.New(review.ApplicationID, event.TypeQCDecisionRecorded, event.QCDecisionRecordedPayload{
			ApplicationID: review.ApplicationID,
			ReviewID:      review.ReviewID,
			Status:        string(review.Status),
			ReturnReason:  in.ReturnReason,
			At:            now,
		})
		if err != nil {
			return apperror.Infrastructure(err, "encode qc event")
		}
		if err := r.Outbox.Publish(ctx, ev); err != nil {
			return apperror.Infrastructure(err, "publish qc event")
		}

		dto = buildReviewDTO(review, items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) ListReviews(ctx context.Context, f domain.Filters) ([]*ReviewDTO, error) {
	reviews, err := u.repo.ListReviews(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]*ReviewDTO, 0, len(reviews))
	for _, review := range reviews {
		items, err := u.repo.ListItemsByReviewID(ctx, review.ReviewID)
		if err != nil {
			return nil, err
		}
		out = append(out, buildReviewDTO(review, items))
	}
	return out, nil
}

func mustReview(ctx context.Context, r uow.Repos, reviewID string) (*domain.Review, error) {
	review, err := r.QC.GetReviewByReviewID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	return review, nil
}

func filterKind(items []*verification.Item, k verification.Kind) []*verification.Item {
	var out []*verification.Item
	for _, it := range items {
		if it.Kind == k {
			out = append(out, it)
		}
	}
	return out
}

func buildReviewDTO(review *domain.Review, items []*verification.Item) *ReviewDTO {
	docs := filterKind(items, verification.KindDocument)
	stips := filterKind(items, verification.KindStipulation)
	checks := filterKind(items, verification.KindChecklist)

	all := verification.NewAggregator(items, review.Open())
	dto := &ReviewDTO{
		ReviewID:              review.ReviewID,
		ApplicationID:         review.ApplicationID,
		Status:                review.Status,
		ReturnReason:          review.ReturnReason,
		Notes:                 review.Notes,
		DocumentCompletion:    verification.NewAggregator(docs, review.Open()).CompletionPercentage(),
		StipulationCompletion: verification.NewAggregator(stips, review.Open()).CompletionPercentage(),
		ChecklistCompletion:   verification.NewAggregator(checks, review.Open()).CompletionPercentage(),
		OverallCompletion:     all.CompletionPercentage(),
		Blocked:               all.IsBlocked(),
	}
	for _, it := range docs {
		dto.Documents = append(dto.Documents, itemDTO(it))
	}
	for _, it := range stips {
		dto.Stipulations = append(dto.Stipulations, itemDTO(it))
	}
	for _, it := range checks {
		dto.Checklist = append(dto.Checklist, itemDTO(it))
	}
	return dto
}
