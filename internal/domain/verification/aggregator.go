package verification

import (
	"math"
	"time"

	"loan-origination-backend/internal/apperror"
)

// Aggregator tracks one homogeneous item collection and computes its
// completion. It holds no persistence concern: callers load the items, mutate
// through the aggregator, then persist whatever changed.
type Aggregator struct {
	items []*Item
	open  bool
}

// NewAggregator wraps items. open reflects whether the owning review still
// accepts new items (pending / in_review).
func NewAggregator(items []*Item, open bool) *Aggregator {
	return &Aggregator{items: items, open: open}
}

func (a *Aggregator) Items() []*Item { return a.items }

func (a *Aggregator) find(itemID string) *Item {
	for _, it := range a.items {
		if it.ItemID == itemID {
			return it
		}
	}
	return nil
}

// Add appends a new item while the collection is open.
func (a *Aggregator) Add(it *Item) error {
	if !a.open {
		return apperror.BusinessRule("collection is closed, cannot add item %s", it.ItemID)
	}
	if it.Status == "" {
		it.Status = ItemUnverified
	}
	if a.find(it.ItemID) != nil {
		return apperror.BusinessRule("item %s already exists", it.ItemID)
	}
	a.items = append(a.items, it)
	return nil
}

// SetStatus moves one item to a new status. An item that already reached a
// terminal status is never overwritten silently: the second writer gets a
// business-rule error unless reset is passed.
func (a *Aggregator) SetStatus(itemID string, to ItemStatus, verifierID, comments string, reset bool) (*StatusChange, error) {
	if !a.open {
		return nil, apperror.BusinessRule("collection is closed, cannot change item %s", itemID)
	}
	switch to {
	case ItemUnverified, ItemVerified, ItemRejected, ItemWaived:
	default:
		return nil, apperror.Validation("unknown item status %q", to)
	}
	it := a.find(itemID)
	if it == nil {
		return nil, apperror.NotFound("verification item %s not found", itemID)
	}
	if it.Status == to {
		return nil, apperror.BusinessRule("item %s is already %s", itemID, to)
	}
	if it.Status.Terminal() && !reset {
		return nil, apperror.BusinessRule("item %s already %s, reset required", itemID, it.Status)
	}

	now := time.Now().UTC()
	change := &StatusChange{
		ItemID:    it.ItemID,
		ReviewID:  it.ReviewID,
		Kind:      it.Kind,
		From:      it.Status,
		To:        to,
		ChangedBy: verifierID,
		At:        now,
	}

	it.Status = to
	if to == ItemUnverified {
		it.VerifiedBy = nil
		it.VerifiedAt = nil
	} else {
		it.VerifiedBy = &verifierID
		it.VerifiedAt = &now
	}
	if comments != "" {
		it.Comments = &comments
	}
	return change, nil
}

// Reset returns a terminal item to unverified. This is the only path back.
func (a *Aggregator) Reset(itemID, by string) (*StatusChange, error) {
	return a.SetStatus(itemID, ItemUnverified, by, "", true)
}

// CompletionPercentage is (verified+waived)/total, rounded. An empty
// collection is vacuously complete: 100.
func (a *Aggregator) CompletionPercentage() int {
	if len(a.items) == 0 {
		return 100
	}
	done := 0
	for _, it := range a.items {
		if it.Status == ItemVerified || it.Status == ItemWaived {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(a.items)) * 100))
}

// IsBlocked reports whether any item was rejected.
func (a *Aggregator) IsBlocked() bool {
	for _, it := range a.items {
		if it.Status == ItemRejected {
			return true
		}
	}
	return false
}
