package domain

import "time"

// ItemType is the kind of economic action recorded in the ledger.
type ItemType string

const (
	ItemEggs     ItemType = "eggs"
	ItemMilk     ItemType = "milk"
	ItemHerdBuy  ItemType = "herd_buy"
	ItemHerdSell ItemType = "herd_sell"
)

// IsHerd reports whether the item type is a herd transaction.
func (it ItemType) IsHerd() bool {
	return it == ItemHerdBuy || it == ItemHerdSell
}

// GatherEvent is one parsed economic action attributed to an actor.
// Immutable once stored; removed only by bulk time-range deletes.
type GatherEvent struct {
	ID        int64
	At        time.Time // stored with millisecond precision
	ChannelID int64
	MessageID string // source-message id, unique across the ledger
	ActorID   string // mention id digits; empty means unattributed
	RanchID   *int64
	Item      ItemType
	Amount    int64
	Value     float64 // currency; meaningful only for herd types
	Subtype   string  // animal kind for herd types, empty otherwise
}

// Subscriber is an actor who opted into report notifications.
type Subscriber struct {
	ActorID   string
	ChatID    int64 // chat to deliver the report copy to
	CreatedAt time.Time
}
