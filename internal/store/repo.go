package store

import (
	"context"
	"errors"
	"time"

	"github.com/khgaming94/Herding-Total/internal/domain"
)

// ErrDuplicateMessage is returned by AppendEvent when the ledger
// already holds an event for the same source message.
var ErrDuplicateMessage = errors.New("duplicate source message")

// Totals is the egg/milk sum over a query window.
type Totals struct {
	Eggs int64
	Milk int64
}

// ActorRollup is one actor's aggregate row over a query window.
type ActorRollup struct {
	ActorID       string
	Eggs          int64
	Milk          int64
	HerdBought    int64
	HerdSold      int64
	HerdBuyCost   float64
	HerdSellTotal float64
}

// Gathered returns the combined egg and milk count, the leaderboard
// sort key.
func (r ActorRollup) Gathered() int64 { return r.Eggs + r.Milk }

// Repo defines storage operations for the gather ledger, the config
// namespace, and subscribers. Events are append-only: no updates, and
// removal only through DeleteEventsSince.
type Repo interface {
	AppendEvent(ctx context.Context, ev *domain.GatherEvent) error
	HasRecentEquivalent(ctx context.Context, channelID int64, item domain.ItemType, amount int64, actorID string, since time.Time) (bool, error)

	Totals(ctx context.Context, ranchID *int64, since *time.Time) (Totals, error)
	ActorRollups(ctx context.Context, ranchID *int64, since *time.Time, limit int) ([]ActorRollup, error)
	HerdValueTotal(ctx context.Context, since time.Time, item domain.ItemType) (float64, error)
	DeleteEventsSince(ctx context.Context, since time.Time, ranchID *int64) (int64, error)

	GetConfigValue(ctx context.Context, key string) (string, bool, error)
	SetConfigValue(ctx context.Context, key, value string) error
	DeleteConfigValue(ctx context.Context, key string) error

	AddSubscriber(ctx context.Context, sub domain.Subscriber) error
	RemoveSubscriber(ctx context.Context, actorID string) error
	ListSubscribers(ctx context.Context) ([]domain.Subscriber, error)

	Close() error
}
