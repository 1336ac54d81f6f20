package stats

import (
	"context"
	"time"

	"github.com/khgaming94/Herding-Total/internal/domain"
	"github.com/khgaming94/Herding-Total/internal/store"
)

const (
	// Leaderboard size bounds; requests outside are clamped, not rejected.
	MinLimit     = 1
	MaxLimit     = 200
	DefaultLimit = 10

	// WeeklyWindow is the aggregation span of the scheduled report.
	WeeklyWindow = 7 * 24 * time.Hour
)

// Aggregator computes totals and per-actor rollups over the ledger.
// Absent rows aggregate to zero; nil filters are no-ops.
type Aggregator struct {
	repo store.Repo
}

func New(repo store.Repo) *Aggregator {
	return &Aggregator{repo: repo}
}

// Totals returns egg/milk sums, optionally filtered by ranch and start time.
func (a *Aggregator) Totals(ctx context.Context, ranchID *int64, since *time.Time) (store.Totals, error) {
	return a.repo.Totals(ctx, ranchID, since)
}

// Leaderboard returns attributed per-actor rollups ordered by
// eggs+milk descending, ties broken by first-seen order. The limit is
// clamped to [MinLimit, MaxLimit].
func (a *Aggregator) Leaderboard(ctx context.Context, ranchID *int64, since *time.Time, limit int) ([]store.ActorRollup, error) {
	if limit < MinLimit {
		limit = MinLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return a.repo.ActorRollups(ctx, ranchID, since, limit)
}

// WeeklyPerActor returns rollups for every actor since the given time,
// unfiltered by ranch, in leaderboard order.
func (a *Aggregator) WeeklyPerActor(ctx context.Context, since time.Time) ([]store.ActorRollup, error) {
	return a.repo.ActorRollups(ctx, nil, &since, MaxLimit)
}

// HerdTotals returns the summed buy cost and sell revenue since the
// given time.
func (a *Aggregator) HerdTotals(ctx context.Context, since time.Time) (buyCost, sellRevenue float64, err error) {
	buyCost, err = a.repo.HerdValueTotal(ctx, since, domain.ItemHerdBuy)
	if err != nil {
		return 0, 0, err
	}
	sellRevenue, err = a.repo.HerdValueTotal(ctx, since, domain.ItemHerdSell)
	if err != nil {
		return 0, 0, err
	}
	return buyCost, sellRevenue, nil
}
