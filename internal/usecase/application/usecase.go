package application

import (
	"context"
	"time"

	"loan-origination-backend/internal/apperror"
	domain "loan-origination-backend/internal/domain/application"
	"loan-origination-backend/internal/domain/event"
	"loan-origination-backend/internal/domain/underwriting"
	"loan-origination-backend/internal/domain/uow"
	"loan-origination-backend/pkg/id"
)

// Usecase owns the lifecycle operations that are not claimed by the
// underwriting, QC, or funding processors: draft intake, submission,
// commitment handling, document execution, ready-to-fund, and cancellation.
type Usecase struct {
	repo         domain.Repository
	uow          uow.UnitOfWork
	queueDueDays int
}

func NewUsecase(repo domain.Repository, tx uow.UnitOfWork, queueDueDays int) *Usecase {
	if queueDueDays <= 0 {
		queueDueDays = 5
	}
	return &Usecase{repo: repo, uow: tx, queueDueDays: queueDueDays}
}

func (u *Usecase) CreateDraft(ctx context.Context, in CreateDraftInput) (*ApplicationDTO, error) {
	if in.BorrowerID == "" || in.SchoolID == "" || in.ProgramID == "" {
		return nil, apperror.Validation("borrower_id, school_id and program_id are required")
	}
	a := &domain.Application{
		ApplicationID:    id.NewID32(),
		BorrowerID:       in.BorrowerID,
		SchoolID:         in.SchoolID,
		ProgramID:        in.ProgramID,
		ProgramVersionID: in.ProgramVersionID,
		Status:           domain.StatusDraft,
		CreatedBy:        in.CreatedBy,
		StatusUpdatedAt:  time.Now().UTC(),
		Version:          1,
	}
	if in.CoBorrowerID != "" {
		co := in.CoBorrowerID
		a.CoBorrowerID = &co
	}
	if err := u.repo.Create(ctx, a); err != nil {
		return nil, apperror.Infrastructure(err, "create application")
	}
	return toDTO(a), nil
}

func (u *Usecase) Get(ctx context.Context, applicationID string) (*ApplicationDTO, error) {
	a, err := u.repo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	return toDTO(a), nil
}

func (u *Usecase) List(ctx context.Context, f domain.Filters) ([]*ApplicationDTO, error) {
	apps, err := u.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]*ApplicationDTO, 0, len(apps))
	for _, a := range apps {
		out = append(out, toDTO(a))
	}
	return out, nil
}

func (u *Usecase) History(ctx context.Context, applicationID string) ([]*HistoryDTO, error) {
	if _, err := u.repo.GetByApplicationID(ctx, applicationID); err != nil {
		return nil, err
	}
	rows, err := u.repo.ListHistory(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	out := make([]*HistoryDTO, 0, len(rows))
	for _, h := range rows {
		out = append(out, &HistoryDTO{FromStatus: h.FromStatus, ToStatus: h.ToStatus, TriggeredBy: h.TriggeredBy, OccurredAt: h.OccurredAt})
	}
	return out, nil
}

// Submit moves Draft/RevisionRequested/Incomplete to Submitted and opens the
// underwriting queue entry in the same transaction.
func (u *Usecase) Submit(ctx context.Context, in SubmitInput) (*ApplicationDTO, error) {
	priority := in.Priority
	switch priority {
	case "":
		priority = underwriting.PriorityMedium
	case underwriting.PriorityHigh, underwriting.PriorityMedium, underwriting.PriorityLow:
	default:
		return nil, apperror.Validation("unknown priority %q", priority)
	}

	var dto *ApplicationDTO
	err := u.uow.WithinApplicationTx(ctx, in.ApplicationID, func(r uow.Repos, a *domain.Application) error {
		if err := applyTransition(ctx, r, a, domain.EventSubmit, in.TriggeredBy, in.ExpectedVersion); err != nil {
			return err
		}
		now := time.Now().UTC()
		q := &underwriting.QueueEntry{
			EntryID:       id.NewID32(),
			ApplicationID: a.ApplicationID,
			Priority:      priority,
			Status:        underwriting.QueuePending,
			DueDate:       now.AddDate(0, 0, u.queueDueDays),
		}
		if err := r.Underwriting.CreateQueueEntry(ctx, q); err != nil {
			return apperror.Infrastructure(err, "create queue entry")
		}
		dto = toDTO(a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// MarkIncomplete flags a submitted application as missing information. The
// open queue entry is returned so the work item leaves the review queue.
func (u *Usecase) MarkIncomplete(ctx context.Context, in EventInput) (*ApplicationDTO, error) {
	return u.applyWithQueueClose(ctx, in, domain.EventMarkIncomplete, underwriting.QueueReturned)
}

func (u *Usecase) SendCommitment(ctx context.Context, in EventInput) (*ApplicationDTO, error) {
	return u.applyEvent(ctx, in, domain.EventSendCommitment)
}

func (u *Usecase) AcceptCommitment(ctx context.Context, in EventInput) (*ApplicationDTO, error) {
	return u.applyEvent(ctx, in, domain.EventAcceptCommitment)
}

func (u *Usecase) DeclineCommitment(ctx context.Context, in EventInput) (*ApplicationDTO, error) {
	return u.applyEvent(ctx, in, domain.EventDeclineCommitment)
}

func (u *Usecase) CounterOffer(ctx context.Context, in EventInput) (*ApplicationDTO, error) {
	return u.applyEvent(ctx, in, domain.EventCounterOffer)
}

func (u *Usecase) SendDocuments(ctx context.Context, in EventInput) (*ApplicationDTO, error) {
	return u.applyEvent(ctx, in, domain.EventSendDocuments)
}

// RecordSignature consumes the signature status fed by the document service;
// the core never performs signing itself.
func (u *Usecase) RecordSignature(ctx context.Context, in RecordSignatureInput) (*ApplicationDTO, error) {
	switch in.Scope {
	case SignaturePartial:
		return u.applyEvent(ctx, in.EventInput, domain.EventRecordPartialSign)
	case SignatureFull:
		return u.applyEvent(ctx, in.EventInput, domain.EventRecordFullSign)
	default:
		return nil, apperror.Validation("signature scope must be partial or full")
	}
}

func (u *Usecase) ExpireDocuments(ctx context.Context, in EventInput) (*ApplicationDTO, error) {
	return u.applyEvent(ctx, in, domain.EventExpireDocuments)
}

// MarkReadyToFund is deliberately a separate, explicit call after QC approval,
// never auto-chained from the QC decision.
func (u *Usecase) MarkReadyToFund(ctx context.Context, in EventInput) (*ApplicationDTO, error) {
	return u.applyEvent(ctx, in, domain.EventMarkReadyToFund)
}

// Cancel abandons any non-terminal application and returns its open queue
// entry if one exists.
func (u *Usecase) Cancel(ctx context.Context, in EventInput) (*ApplicationDTO, error) {
	var dto *ApplicationDTO
	err := u.uow.WithinApplicationTx(ctx, in.ApplicationID, func(r uow.Repos, a *domain.Application) error {
		if err := applyTransition(ctx, r, a, domain.EventCancel, in.TriggeredBy, in.ExpectedVersion); err != nil {
			return err
		}
		if q, err := r.Underwriting.GetOpenQueueEntryByApplicationID(ctx, a.ApplicationID); err == nil {
			q.Status = underwriting.QueueReturned
			if err := r.Underwriting.SaveQueueEntry(ctx, q); err != nil {
				return apperror.Infrastructure(err, "close queue entry")
			}
		}
		dto = toDTO(a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) applyEvent(ctx context.Context, in EventInput, ev domain.Event) (*ApplicationDTO, error) {
	var dto *ApplicationDTO
	err := u.uow.WithinApplicationTx(ctx, in.ApplicationID, func(r uow.Repos, a *domain.Application) error {
		if err := applyTransition(ctx, r, a, ev, in.TriggeredBy, in.ExpectedVersion); err != nil {
			return err
		}
		dto = toDTO(a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) applyWithQueueClose(ctx context.Context, in EventInput, ev domain.Event, to underwriting.QueueStatus) (*ApplicationDTO, error) {
	var dto *ApplicationDTO
	err := u.uow.WithinApplicationTx(ctx, in.ApplicationID, func(r uow.Repos, a *domain.Application) error {
		if err := applyTransition(ctx, r, a, ev, in.TriggeredBy, in.ExpectedVersion); err != nil {
			return err
		}
		if q, err := r.Underwriting.GetOpenQueueEntryByApplicationID(ctx, a.ApplicationID); err == nil {
			q.Status = to
			if err := r.Underwriting.SaveQueueEntry(ctx, q); err != nil {
				return apperror.Infrastructure(err, "close queue entry")
			}
		}
		dto = toDTO(a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// applyTransition is the single write path for status changes: version check,
// state-machine apply, history append, outbox row, guarded save. Shared with
// the underwriting, QC and funding usecases.
func applyTransition(ctx context.Context, r uow.Repos, a *domain.Application, ev domain.Event, triggeredBy string, expectedVersion uint64) error {
	if expectedVersion != 0 && expectedVersion != a.Version {
		return apperror.Conflict("application %s version is %d, caller expected %d", a.ApplicationID, a.Version, expectedVersion)
	}
	now := time.Now().UTC()
	entry, err := a.Apply(ev, triggeredBy, now)
	if err != nil {
		return err
	}
	if err := r.Applications.AppendHistory(ctx, entry); err != nil {
		return apperror.Infrastructure(err, "append status history")
	}
	ev2, err := event.New(a.ApplicationID, event.TypeApplicationStatusChanged, event.StatusChangedPayload{
		ApplicationID: a.ApplicationID,
		From:          string(entry.FromStatus),
		To:            string(entry.ToStatus),
		At:            now,
	})
	if err != nil {
		return apperror.Infrastructure(err, "encode status event")
	}
	if err := r.Outbox.Publish(ctx, ev2); err != nil {
		return apperror.Infrastructure(err, "publish status event")
	}
	if err := r.Applications.Save(ctx, a); err != nil {
		return err
	}
	return nil
}

// ApplyTransition exposes the write path to the sibling usecases that drive
// the machine from their own transactions.
func ApplyTransition(ctx context.Context, r uow.Repos, a *domain.Application, ev domain.Event, triggeredBy string, expectedVersion uint64) error {
	return applyTransition(ctx, r, a, ev, triggeredBy, expectedVersion)
}
