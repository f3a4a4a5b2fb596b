package application

import (
	"time"

	"loan-origination-backend/internal/apperror"
)

// Event names a guarded transition of the application lifecycle.
type Event string

const (
	EventSubmit             Event = "Submit"
	EventMarkIncomplete     Event = "MarkIncomplete"
	EventStartReview        Event = "StartReview"
	EventApprove            Event = "Approve"
	EventDeny               Event = "Deny"
	EventRequestRevision    Event = "RequestRevision"
	EventSendCommitment     Event = "SendCommitment"
	EventAcceptCommitment   Event = "AcceptCommitment"
	EventDeclineCommitment  Event = "DeclineCommitment"
	EventCounterOffer       Event = "CounterOffer"
	EventSendDocuments      Event = "SendDocuments"
	EventRecordPartialSign  Event = "RecordPartialSignature"
	EventRecordFullSign     Event = "RecordFullSignature"
	EventExpireDocuments    Event = "ExpireDocuments"
	EventStartQC            Event = "StartQC"
	EventQCApprove          Event = "QCApprove"
	EventQCReturn           Event = "QCReturn"
	EventMarkReadyToFund    Event = "MarkReadyToFund"
	EventRecordFunding      Event = "RecordFunding"
	EventCancel             Event = "Cancel"
)

type transition struct {
	from []Status
	to   Status
}

// transitions is the full guarded table. Cancel is handled separately because
// its source set is "any non-terminal".
var transitions = map[Event]transition{
	EventSubmit:            {from: []Status{StatusDraft, StatusRevisionRequested, StatusIncomplete}, to: StatusSubmitted},
	EventMarkIncomplete:    {from: []Status{StatusSubmitted}, to: StatusIncomplete},
	EventStartReview:       {from: []Status{StatusSubmitted}, to: StatusInReview},
	EventApprove:           {from: []Status{StatusInReview}, to: StatusApproved},
	EventDeny:              {from: []Status{StatusInReview}, to: StatusDenied},
	EventRequestRevision:   {from: []Status{StatusInReview}, to: StatusRevisionRequested},
	EventSendCommitment:    {from: []Status{StatusApproved}, to: StatusCommitmentSent},
	EventAcceptCommitment:  {from: []Status{StatusCommitmentSent}, to: StatusCommitmentAccepted},
	EventDeclineCommitment: {from: []Status{StatusCommitmentSent}, to: StatusCommitmentDeclined},
	EventCounterOffer:      {from: []Status{StatusCommitmentSent}, to: StatusCounterOfferMade},
	EventSendDocuments:     {from: []Status{StatusCommitmentAccepted}, to: StatusDocumentsSent},
	EventRecordPartialSign: {from: []Status{StatusDocumentsSent}, to: StatusPartiallyExecuted},
	EventRecordFullSign:    {from: []Status{StatusDocumentsSent, StatusPartiallyExecuted}, to: StatusFullyExecuted},
	EventExpireDocuments:   {from: []Status{StatusDocumentsSent, StatusPartiallyExecuted}, to: StatusDocumentsExpired},
	EventStartQC:           {from: []Status{StatusFullyExecuted}, to: StatusQCReview},
	EventQCApprove:         {from: []Status{StatusQCReview}, to: StatusQCApproved},
	EventQCReturn:          {from: []Status{StatusQCReview}, to: StatusQCRejected},
	EventMarkReadyToFund:   {from: []Status{StatusQCApproved}, to: StatusReadyToFund},
	EventRecordFunding:     {from: []Status{StatusReadyToFund}, to: StatusFunded},
}

// terminalStatuses admit no further events, Cancel included.
var terminalStatuses = map[Status]bool{
	StatusFunded:             true,
	StatusAbandoned:          true,
	StatusDenied:             true,
	StatusDocumentsExpired:   true,
	StatusCommitmentDeclined: true,
}

func IsTerminal(s Status) bool { return terminalStatuses[s] }

// Next returns the target status of ev when fired from from, or an
// invalid-transition error.
func Next(from Status, ev Event) (Status, error) {
	if ev == EventCancel {
		if IsTerminal(from) {
			return "", apperror.InvalidTransition("event %s not allowed from terminal status %s", ev, from)
		}
		return StatusAbandoned, nil
	}
	tr, ok := transitions[ev]
	if !ok {
		return "", apperror.InvalidTransition("unknown event %s", ev)
	}
	for _, f := range tr.from {
		if f == from {
			return tr.to, nil
		}
	}
	return "", apperror.InvalidTransition("event %s not allowed from status %s", ev, from)
}

// CanApply reports whether ev is currently permitted.
func (a *Application) CanApply(ev Event) bool {
	_, err := Next(a.Status, ev)
	return err == nil
}

// AllowedEvents lists the events permitted from s, useful for API introspection.
func AllowedEvents(s Status) []Event {
	var out []Event
	for ev := range transitions {
		if _, err := Next(s, ev); err == nil {
			out = append(out, ev)
		}
	}
	if !IsTerminal(s) {
		out = append(out, EventCancel)
	}
	return out
}

// Apply fires ev against the aggregate, mutating Status and returning the
// history entry to append. On a disallowed event nothing is mutated.
func (a *Application) Apply(ev Event, triggeredBy string, now time.Time) (*StatusHistory, error) {
	to, err := Next(a.Status, ev)
	if err != nil {
		return nil, err
	}
	entry := &StatusHistory{
		ApplicationID: a.ApplicationID,
		FromStatus:    a.Status,
		ToStatus:      to,
		TriggeredBy:   triggeredBy,
		OccurredAt:    now,
	}
	a.Status = to
	a.StatusUpdatedAt = now
	if ev == EventSubmit {
		t := now
		a.SubmissionDate = &t
	}
	return entry, nil
}
