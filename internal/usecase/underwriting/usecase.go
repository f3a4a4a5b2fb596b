package underwriting

import (
	"context"
	"time"

	"loan-origination-backend/internal/apperror"
	appdomain "loan-origination-backend/internal/domain/application"
	"loan-origination-backend/internal/domain/event"
	domain "loan-origination-backend/internal/domain/underwriting"
	"loan-origination-backend/internal/domain/uow"
	appusecase "loan-origination-backend/internal/usecase/application"
	"loan-origination-backend/pkg/id"
)

// Usecase is the underwriting decision processor: queue management, the
// decision recording transaction, and stipulation upkeep.
type Usecase struct {
	repo domain.Repository
	uow  uow.UnitOfWork
}

func NewUsecase(repo domain.Repository, tx uow.UnitOfWork) *Usecase {
	return &Usecase{repo: repo, uow: tx}
}

func (u *Usecase) ListQueue(ctx context.Context, f domain.QueueFilters) ([]*QueueEntryDTO, error) {
	rows, err := u.repo.ListQueue(ctx, f)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	out := make([]*QueueEntryDTO, 0, len(rows))
	for _, q := range rows {
		out = append(out, queueDTO(q, now))
	}
	return out, nil
}

// Assign hands a pending queue entry to a reviewer.
func (u *Usecase) Assign(ctx context.Context, entryID, reviewerID string) (*QueueEntryDTO, error) {
	if reviewerID == "" {
		return nil, apperror.Validation("reviewer id is required")
	}
	q, err := u.repo.GetQueueEntryByEntryID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if q.Status != domain.QueuePending && q.Status != domain.QueueAssigned {
		return nil, apperror.BusinessRule("queue entry %s is %s, cannot assign", entryID, q.Status)
	}
	q.AssignedTo = &reviewerID
	q.Status = domain.QueueAssigned
	if err := u.repo.SaveQueueEntry(ctx, q); err != nil {
		return nil, apperror.Infrastructure(err, "save queue entry")
	}
	return queueDTO(q, time.Now().UTC()), nil
}

// StartReview moves the application into InReview and the queue entry into
// in_progress. Any decision left over from a prior review round is superseded
// here so that the round gets a fresh decision slot.
func (u *Usecase) StartReview(ctx context.Context, in StartReviewInput) (*QueueEntryDTO, error) {
	var dto *QueueEntryDTO
	err := u.uow.WithinApplicationTx(ctx, in.ApplicationID, func(r uow.Repos, a *appdomain.Application) error {
		q, err := r.Underwriting.GetOpenQueueEntryByApplicationID(ctx, a.ApplicationID)
		if err != nil {
			return apperror.InvalidTransition("no open underwriting queue entry for application %s", a.ApplicationID)
		}
		if err := appusecase.ApplyTransition(ctx, r, a, appdomain.EventStartReview, in.ReviewerID, in.ExpectedVersion); err != nil {
			return err
		}
		if err := r.Underwriting.SupersedeDecisions(ctx, a.ApplicationID); err != nil {
			return apperror.Infrastructure(err, "supersede decisions")
		}
		q.Status = domain.QueueInProgress
		if in.ReviewerID != "" {
			rid := in.ReviewerID
			q.AssignedTo = &rid
		}
		if err := r.Underwriting.SaveQueueEntry(ctx, q); err != nil {
			return apperror.Infrastructure(err, "save queue entry")
		}
		dto = queueDTO(q, time.Now().UTC())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// RecordDecision runs the whole decision sequence in one aggregate
// transaction: guards, invariant validation, duplicate-decision check,
// persistence, queue close, and the status-machine drive.
func (u *Usecase) RecordDecision(ctx context.Context, in RecordDecisionInput) (*DecisionDTO, error) {
	if err := validateDecision(in); err != nil {
		return nil, err
	}

	var dto *DecisionDTO
	err := u.uow.WithinApplicationTx(ctx, in.ApplicationID, func(r uow.Repos, a *appdomain.Application) error {
		if a.Status != appdomain.StatusInReview {
			return apperror.InvalidTransition("application %s is %s, decisions require InReview", a.ApplicationID, a.Status)
		}
		q, err := r.Underwriting.GetOpenQueueEntryByApplicationID(ctx, a.ApplicationID)
		if err != nil {
			return apperror.InvalidTransition("no open underwriting queue entry for application %s", a.ApplicationID)
		}

		// Idempotency guard: a retried call must not create a second decision.
		if _, err := r.Underwriting.GetActiveDecisionByApplicationID(ctx, a.ApplicationID); err == nil {
			return apperror.BusinessRule("application %s already has an active decision", a.ApplicationID)
		} else if !apperror.IsKind(err, apperror.KindNotFound) {
			return err
		}

		now := time.Now().UTC()
		d := &domain.Decision{
			DecisionID:    id.NewID32(),
			ApplicationID: a.ApplicationID,
			Decision:      in.Decision,
			InterestRate:  in.InterestRate,
			TermMonths:    in.TermMonths,
			DecidedBy:     in.DecidedBy,
			DecidedAt:     now,
		}
		if in.ApprovedAmount != nil {
			d.ApprovedAmount.Decimal = *in.ApprovedAmount
			d.ApprovedAmount.Valid = true
		}
		for _, reason := range in.Reasons {
			d.Reasons = append(d.Reasons, domain.DecisionReason{Code: reason.Code, Description: reason.Description})
		}
		if err := r.Underwriting.CreateDecision(ctx, d); err != nil {
			return apperror.Infrastructure(err, "create decision")
		}

		stips := make([]StipulationDTO, 0, len(in.Stipulations))
		for _, si := range in.Stipulations {
			s := &domain.Stipulation{
				StipulationID:  id.NewID32(),
				ApplicationID:  a.ApplicationID,
				Type:           si.Type,
				Category:       si.Category,
				Description:    si.Description,
				RequiredByDate: si.RequiredByDate,
				Status:         domain.StipulationPending,
			}
			if err := r.Underwriting.CreateStipulation(ctx, s); err != nil {
				return apperror.Infrastructure(err, "create stipulation")
			}
			stips = append(stips, stipulationDTO(s, now))
		}

		q.Status = domain.QueueCompleted
		if err := r.Underwriting.SaveQueueEntry(ctx, q); err != nil {
			return apperror.Infrastructure(err, "close queue entry")
		}

		if err := appusecase.ApplyTransition(ctx, r, a, decisionEvent(in.Decision), in.DecidedBy, in.ExpectedVersion); err != nil {
			return err
		}

		recorded, err := event.New(a.ApplicationID, event.TypeDecisionRecorded, event.DecisionRecordedPayload{
			ApplicationID: a.ApplicationID,
			DecisionID:    d.DecisionID,
			Decision:      string(d.Decision),
			DecidedBy:     d.DecidedBy,
			At:            now,
		})
		if err != nil {
			return apperror.Infrastructure(err, "encode decision event")
		}
		if err := r.Outbox.Publish(ctx, recorded); err != nil {
			return apperror.Infrastructure(err, "publish decision event")
		}

		dto = &DecisionDTO{
			DecisionID:     d.DecisionID,
			ApplicationID:  d.ApplicationID,
			Decision:       d.Decision,
			ApprovedAmount: in.ApprovedAmount,
			InterestRate:   d.InterestRate,
			TermMonths:     d.TermMonths,
			Reasons:        in.Reasons,
			Stipulations:   stips,
			DecidedBy:      d.DecidedBy,
			DecidedAt:      d.DecidedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) GetActiveDecision(ctx context.Context, applicationID string) (*DecisionDTO, error) {
	d, err := u.repo.GetActiveDecisionByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	dto := &DecisionDTO{
		DecisionID:    d.DecisionID,
		ApplicationID: d.ApplicationID,
		Decision:      d.Decision,
		InterestRate:  d.InterestRate,
		TermMonths:    d.TermMonths,
		DecidedBy:     d.DecidedBy,
		DecidedAt:     d.DecidedAt,
	}
	if d.ApprovedAmount.Valid {
		amt := d.ApprovedAmount.Decimal
		dto.ApprovedAmount = &amt
	}
	for _, reason := range d.Reasons {
		dto.Reasons = append(dto.Reasons, ReasonInput{Code: reason.Code, Description: reason.Description})
	}
	return dto, nil
}

func (u *Usecase) ListStipulations(ctx context.Context, applicationID string) ([]StipulationDTO, error) {
	rows, err := u.repo.ListStipulationsByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	out := make([]StipulationDTO, 0, len(rows))
	for _, s := range rows {
		out = append(out, stipulationDTO(s, now))
	}
	return out, nil
}

// SatisfyStipulation closes a pending stipulation. Satisfied and waived are
// terminal.
func (u *Usecase) SatisfyStipulation(ctx context.Context, in StipulationActionInput) (*StipulationDTO, error) {
	return u.closeStipulation(ctx, in, domain.StipulationSatisfied)
}

func (u *Usecase) WaiveStipulation(ctx context.Context, in StipulationActionInput) (*StipulationDTO, error) {
	return u.closeStipulation(ctx, in, domain.StipulationWaived)
}

func (u *Usecase) closeStipulation(ctx context.Context, in StipulationActionInput, to domain.StipulationStatus) (*StipulationDTO, error) {
	if in.ActorID == "" {
		return nil, apperror.Validation("actor id is required")
	}
	s, err := u.repo.GetStipulationByStipulationID(ctx, in.StipulationID)
	if err != nil {
		return nil, err
	}
	if s.Status != domain.StipulationPending {
		return nil, apperror.BusinessRule("stipulation %s is already %s", s.StipulationID, s.Status)
	}
	now := time.Now().UTC()
	s.Status = to
	s.SatisfiedBy = &in.ActorID
	s.SatisfiedAt = &now
	if err := u.repo.SaveStipulation(ctx, s); err != nil {
		return nil, apperror.Infrastructure(err, "save stipulation")
	}
	dto := stipulationDTO(s, now)
	return &dto, nil
}

func decisionEvent(k domain.DecisionKind) appdomain.Event {
	switch k {
	case domain.DecisionApprove:
		return appdomain.EventApprove
	case domain.DecisionDeny:
		return appdomain.EventDeny
	default:
		return appdomain.EventRequestRevision
	}
}

func validateDecision(in RecordDecisionInput) error {
	switch in.Decision {
	case domain.DecisionApprove:
		if in.ApprovedAmount == nil || !in.ApprovedAmount.IsPositive() {
			return apperror.Validation("approve requires approved_amount > 0")
		}
		if in.TermMonths == nil || *in.TermMonths <= 0 {
			return apperror.Validation("approve requires term_months > 0")
		}
	case domain.DecisionDeny, domain.DecisionRevise:
		if in.ApprovedAmount != nil || in.InterestRate != nil || in.TermMonths != nil {
			return apperror.Validation("%s forbids amount, rate and term fields", in.Decision)
		}
		if len(in.Reasons) == 0 {
			return apperror.Validation("%s requires at least one reason", in.Decision)
		}
	default:
		return apperror.Validation("unknown decision %q", in.Decision)
	}
	if in.DecidedBy == "" {
		return apperror.Validation("decided_by is required")
	}
	return nil
}
