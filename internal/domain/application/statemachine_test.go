package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-origination-backend/internal/apperror"
)

func fire(t *testing.T, a *Application, events ...Event) {
	t.Helper()
	for _, ev := range events {
		_, err := a.Apply(ev, "tester", time.Now().UTC())
		require.NoError(t, err, "event %s from %s", ev, a.Status)
	}
}

func TestHappyPathToFunded(t *testing.T) {
	a := &Application{ApplicationID: "app-1", Status: StatusDraft}

	fire(t, a,
		EventSubmit,
		EventStartReview,
		EventApprove,
		EventSendCommitment,
		EventAcceptCommitment,
		EventSendDocuments,
		EventRecordPartialSign,
		EventRecordFullSign,
		EventStartQC,
		EventQCApprove,
		EventMarkReadyToFund,
		EventRecordFunding,
	)

	assert.Equal(t, StatusFunded, a.Status)
	assert.True(t, IsTerminal(a.Status))
	require.NotNil(t, a.SubmissionDate)
}

func TestDenialIsTerminal(t *testing.T) {
	a := &Application{ApplicationID: "app-2", Status: StatusDraft}
	fire(t, a, EventSubmit, EventStartReview, EventDeny)

	assert.Equal(t, StatusDenied, a.Status)
	assert.True(t, IsTerminal(a.Status))

	_, err := a.Apply(EventCancel, "tester", time.Now().UTC())
	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err))
}

func TestRevisionLoopAllowsResubmission(t *testing.T) {
	a := &Application{ApplicationID: "app-3", Status: StatusDraft}
	fire(t, a, EventSubmit, EventStartReview, EventRequestRevision)
	assert.Equal(t, StatusRevisionRequested, a.Status)

	fire(t, a, EventSubmit, EventStartReview, EventApprove)
	assert.Equal(t, StatusApproved, a.Status)
}

func TestIncompleteLoopAllowsResubmission(t *testing.T) {
	a := &Application{ApplicationID: "app-4", Status: StatusDraft}
	fire(t, a, EventSubmit, EventMarkIncomplete)
	assert.Equal(t, StatusIncomplete, a.Status)

	fire(t, a, EventSubmit)
	assert.Equal(t, StatusSubmitted, a.Status)
}

func TestCommitmentOutcomes(t *testing.T) {
	base := func() *Application {
		a := &Application{ApplicationID: "app-5", Status: StatusDraft}
		fire(t, a, EventSubmit, EventStartReview, EventApprove, EventSendCommitment)
		return a
	}

	a := base()
	fire(t, a, EventDeclineCommitment)
	assert.Equal(t, StatusCommitmentDeclined, a.Status)
	assert.True(t, IsTerminal(a.Status))

	a = base()
	fire(t, a, EventCounterOffer)
	assert.Equal(t, StatusCounterOfferMade, a.Status)
	assert.False(t, IsTerminal(a.Status))
}

func TestDocumentExpiry(t *testing.T) {
	a := &Application{ApplicationID: "app-6", Status: StatusDocumentsSent}
	fire(t, a, EventRecordPartialSign, EventExpireDocuments)
	assert.Equal(t, StatusDocumentsExpired, a.Status)
	assert.True(t, IsTerminal(a.Status))
}

func TestQCReturnGoesBackThroughQC(t *testing.T) {
	a := &Application{ApplicationID: "app-7", Status: StatusFullyExecuted}
	fire(t, a, EventStartQC, EventQCReturn)
	assert.Equal(t, StatusQCRejected, a.Status)
	assert.False(t, IsTerminal(a.Status))
}

func TestCancelFromAnyNonTerminal(t *testing.T) {
	for _, s := range AllStatuses {
		a := &Application{ApplicationID: "app-8", Status: s}
		_, err := a.Apply(EventCancel, "tester", time.Now().UTC())
		if IsTerminal(s) {
			assert.Error(t, err, "cancel from terminal %s must fail", s)
		} else {
			require.NoError(t, err, "cancel from %s", s)
			assert.Equal(t, StatusAbandoned, a.Status)
		}
	}
}

func TestDisallowedEventLeavesAggregateUntouched(t *testing.T) {
	a := &Application{ApplicationID: "app-9", Status: StatusDraft}

	_, err := a.Apply(EventApprove, "tester", time.Now().UTC())
	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err))
	assert.Equal(t, StatusDraft, a.Status)
	assert.Nil(t, a.SubmissionDate)
}

func TestNextUnknownEvent(t *testing.T) {
	_, err := Next(StatusDraft, Event("Frobnicate"))
	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidTransition, apperror.KindOf(err))
}

func TestAllowedEvents(t *testing.T) {
	evs := AllowedEvents(StatusCommitmentSent)
	assert.ElementsMatch(t, []Event{EventAcceptCommitment, EventDeclineCommitment, EventCounterOffer, EventCancel}, evs)

	assert.Empty(t, AllowedEvents(StatusFunded))
}

func TestHistoryEntryRecordsTransition(t *testing.T) {
	a := &Application{ApplicationID: "app-10", Status: StatusDraft}
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	h, err := a.Apply(EventSubmit, "actor-1", now)
	require.NoError(t, err)
	assert.Equal(t, "app-10", h.ApplicationID)
	assert.Equal(t, StatusDraft, h.FromStatus)
	assert.Equal(t, StatusSubmitted, h.ToStatus)
	assert.Equal(t, "actor-1", h.TriggeredBy)
	assert.Equal(t, now, h.OccurredAt)
	assert.Equal(t, now, a.StatusUpdatedAt)
}
