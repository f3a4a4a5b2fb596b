package application

import (
	"context"
	"errors"
	"testing"

	"loan-origination-backend/internal/apperror"
	domain "loan-origination-backend/internal/domain/application"
	"loan-origination-backend/internal/domain/event"
	"loan-origination-backend/internal/domain/underwriting"
	"loan-origination-backend/internal/domain/uow"
	"loan-origination-backend/internal/testutil/appmock"
	"loan-origination-backend/internal/testutil/outboxmock"
	"loan-origination-backend/internal/testutil/uowmock"
	"loan-origination-backend/internal/testutil/uwmock"
)

const (
	actorID = "cccccccccccccccccccccccccccccccc"
	appID   = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
)

// harness bundles the mocks behind a passthrough unit of work so the
// transaction body runs inline.
type harness struct {
	apps   *appmock.Repo
	uw     *uwmock.Repo
	outbox *outboxmock.Publisher
	uc     *Usecase
}

func newHarness(current *domain.Application) *harness {
	h := &harness{
		apps:   &appmock.Repo{},
		uw:     &uwmock.Repo{},
		outbox: &outboxmock.Publisher{},
	}
	h.apps.GetByApplicationIDFn = func(_ context.Context, id string) (*domain.Application, error) {
		if current != nil && id == current.ApplicationID {
			return current, nil
		}
		return nil, apperror.NotFound("application %s not found", id)
	}
	// no open queue entry unless a test overrides
	h.uw.GetOpenQueueEntryByApplicationIDFn = func(context.Context, string) (*underwriting.QueueEntry, error) {
		return nil, apperror.NotFound("no open queue entry")
	}
	repos := uow.Repos{Applications: h.apps, Underwriting: h.uw, Outbox: h.outbox}
	h.uc = NewUsecase(h.apps, uowmock.Passthrough(repos), 5)
	return h
}

func TestCreateDraft(t *testing.T) {
	h := newHarness(nil)
	created := false
	h.apps.CreateFn = func(_ context.Context, a *domain.Application) error {
		created = true
		if a.Status != domain.StatusDraft {
			t.Fatalf("new draft status = %s", a.Status)
		}
		if a.Version != 1 {
			t.Fatalf("new draft version = %d", a.Version)
		}
		return nil
	}

	dto, err := h.uc.CreateDraft(context.Background(), CreateDraftInput{
		BorrowerID: actorID, SchoolID: actorID, ProgramID: actorID, CreatedBy: actorID,
	})
	if err != nil {
		t.Fatalf("CreateDraft err: %v", err)
	}
	if !created {
		t.Fatalf("CreateFn not called")
	}
	if len(dto.ApplicationID) != 32 {
		t.Fatalf("ApplicationID length: %d", len(dto.ApplicationID))
	}
	if dto.Category != domain.CategoryIntake {
		t.Fatalf("category = %s", dto.Category)
	}
}

func TestCreateDraft_RequiresFields(t *testing.T) {
	h := newHarness(nil)
	_, err := h.uc.CreateDraft(context.Background(), CreateDraftInput{BorrowerID: actorID})
	if !apperror.IsKind(err, apperror.KindValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
}

func TestSubmit_OpensQueueEntryAndEmitsEvent(t *testing.T) {
	a := &domain.Application{ApplicationID: appID, Status: domain.StatusDraft, Version: 1}
	h := newHarness(a)

	var entry *underwriting.QueueEntry
	h.uw.CreateQueueEntryFn = func(_ context.Context, q *underwriting.QueueEntry) error {
		entry = q
		return nil
	}
	var history *domain.StatusHistory
	h.apps.AppendHistoryFn = func(_ context.Context, hrow *domain.StatusHistory) error {
		history = hrow
		return nil
	}
	saved := false
	h.apps.SaveFn = func(_ context.Context, got *domain.Application) error {
		saved = true
		return nil
	}

	dto, err := h.uc.Submit(context.Background(), SubmitInput{
		EventInput: EventInput{ApplicationID: appID, TriggeredBy: actorID},
	})
	if err != nil {
		t.Fatalf("Submit err: %v", err)
	}
	if dto.Status != domain.StatusSubmitted {
		t.Fatalf("status = %s", dto.Status)
	}
	if !saved {
		t.Fatalf("Save not called")
	}
	if history == nil || history.FromStatus != domain.StatusDraft || history.ToStatus != domain.StatusSubmitted {
		t.Fatalf("history = %+v", history)
	}
	if entry == nil {
		t.Fatalf("queue entry not created")
	}
	if entry.Priority != underwriting.PriorityMedium || entry.Status != underwriting.QueuePending {
		t.Fatalf("queue entry = %+v", entry)
	}
	if got := h.outbox.ByType(event.TypeApplicationStatusChanged); len(got) != 1 {
		t.Fatalf("status events = %d", len(got))
	}
	if a.SubmissionDate == nil {
		t.Fatalf("submission date not set")
	}
}

func TestSubmit_UnknownPriority(t *testing.T) {
	h := newHarness(&domain.Application{ApplicationID: appID, Status: domain.StatusDraft, Version: 1})
	_, err := h.uc.Submit(context.Background(), SubmitInput{
		EventInput: EventInput{ApplicationID: appID, TriggeredBy: actorID},
		Priority:   "urgent",
	})
	if !apperror.IsKind(err, apperror.KindValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
}

func TestApplyEvent_VersionConflict(t *testing.T) {
	a := &domain.Application{ApplicationID: appID, Status: domain.StatusApproved, Version: 4}
	h := newHarness(a)

	_, err := h.uc.SendCommitment(context.Background(), EventInput{
		ApplicationID: appID, TriggeredBy: actorID, ExpectedVersion: 3,
	})
	if !apperror.IsKind(err, apperror.KindConflict) {
		t.Fatalf("want conflict, got %v", err)
	}
	if a.Status != domain.StatusApproved {
		t.Fatalf("aggregate mutated on conflict: %s", a.Status)
	}
	if len(h.outbox.Events) != 0 {
		t.Fatalf("event emitted on conflict")
	}
}

func TestApplyEvent_ZeroExpectedVersionSkipsCheck(t *testing.T) {
	a := &domain.Application{ApplicationID: appID, Status: domain.StatusApproved, Version: 9}
	h := newHarness(a)

	dto, err := h.uc.SendCommitment(context.Background(), EventInput{
		ApplicationID: appID, TriggeredBy: actorID,
	})
	if err != nil {
		t.Fatalf("SendCommitment err: %v", err)
	}
	if dto.Status != domain.StatusCommitmentSent {
		t.Fatalf("status = %s", dto.Status)
	}
}

func TestApplyEvent_InvalidTransition(t *testing.T) {
	a := &domain.Application{ApplicationID: appID, Status: domain.StatusDraft, Version: 1}
	h := newHarness(a)

	_, err := h.uc.SendCommitment(context.Background(), EventInput{ApplicationID: appID, TriggeredBy: actorID})
	if !apperror.IsKind(err, apperror.KindInvalidTransition) {
		t.Fatalf("want invalid transition, got %v", err)
	}
}

func TestRecordSignature_Scopes(t *testing.T) {
	a := &domain.Application{ApplicationID: appID, Status: domain.StatusDocumentsSent, Version: 1}
	h := newHarness(a)

	dto, err := h.uc.RecordSignature(context.Background(), RecordSignatureInput{
		EventInput: EventInput{ApplicationID: appID, TriggeredBy: actorID},
		Scope:      SignaturePartial,
	})
	if err != nil {
		t.Fatalf("partial err: %v", err)
	}
	if dto.Status != domain.StatusPartiallyExecuted {
		t.Fatalf("status = %s", dto.Status)
	}

	dto, err = h.uc.RecordSignature(context.Background(), RecordSignatureInput{
		EventInput: EventInput{ApplicationID: appID, TriggeredBy: actorID},
		Scope:      SignatureFull,
	})
	if err != nil {
		t.Fatalf("full err: %v", err)
	}
	if dto.Status != domain.StatusFullyExecuted {
		t.Fatalf("status = %s", dto.Status)
	}

	_, err = h.uc.RecordSignature(context.Background(), RecordSignatureInput{
		EventInput: EventInput{ApplicationID: appID, TriggeredBy: actorID},
		Scope:      "notarized",
	})
	if !apperror.IsKind(err, apperror.KindValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
}

func TestCancel_ReturnsOpenQueueEntry(t *testing.T) {
	a := &domain.Application{ApplicationID: appID, Status: domain.StatusSubmitted, Version: 2}
	h := newHarness(a)

	open := &underwriting.QueueEntry{EntryID: "q-1", ApplicationID: appID, Status: underwriting.QueuePending}
	h.uw.GetOpenQueueEntryByApplicationIDFn = func(context.Context, string) (*underwriting.QueueEntry, error) {
		return open, nil
	}
	var savedEntry *underwriting.QueueEntry
	h.uw.SaveQueueEntryFn = func(_ context.Context, q *underwriting.QueueEntry) error {
		savedEntry = q
		return nil
	}

	dto, err := h.uc.Cancel(context.Background(), EventInput{ApplicationID: appID, TriggeredBy: actorID})
	if err != nil {
		t.Fatalf("Cancel err: %v", err)
	}
	if dto.Status != domain.StatusAbandoned {
		t.Fatalf("status = %s", dto.Status)
	}
	if savedEntry == nil || savedEntry.Status != underwriting.QueueReturned {
		t.Fatalf("queue entry not returned: %+v", savedEntry)
	}
}

func TestMarkIncomplete_ClosesQueue(t *testing.T) {
	a := &domain.Application{ApplicationID: appID, Status: domain.StatusSubmitted, Version: 2}
	h := newHarness(a)

	open := &underwriting.QueueEntry{EntryID: "q-2", ApplicationID: appID, Status: underwriting.QueuePending}
	h.uw.GetOpenQueueEntryByApplicationIDFn = func(context.Context, string) (*underwriting.QueueEntry, error) {
		return open, nil
	}
	h.uw.SaveQueueEntryFn = func(context.Context, *underwriting.QueueEntry) error { return nil }

	dto, err := h.uc.MarkIncomplete(context.Background(), EventInput{ApplicationID: appID, TriggeredBy: actorID})
	if err != nil {
		t.Fatalf("MarkIncomplete err: %v", err)
	}
	if dto.Status != domain.StatusIncomplete {
		t.Fatalf("status = %s", dto.Status)
	}
	if open.Status != underwriting.QueueReturned {
		t.Fatalf("queue status = %s", open.Status)
	}
}

func TestApplyEvent_SaveFailureSurfaces(t *testing.T) {
	a := &domain.Application{ApplicationID: appID, Status: domain.StatusApproved, Version: 1}
	h := newHarness(a)

	sentinel := apperror.Conflict("application %s version is stale", appID)
	h.apps.SaveFn = func(context.Context, *domain.Application) error { return sentinel }

	_, err := h.uc.SendCommitment(context.Background(), EventInput{ApplicationID: appID, TriggeredBy: actorID})
	if !errors.Is(err, sentinel) && !apperror.IsKind(err, apperror.KindConflict) {
		t.Fatalf("want save conflict, got %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	h := newHarness(nil)
	_, err := h.uc.Get(context.Background(), "missing")
	if !apperror.IsKind(err, apperror.KindNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
}
