package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/khgaming94/Herding-Total/internal/domain"
	"github.com/khgaming94/Herding-Total/internal/store"
)

func seededAggregator(t *testing.T) *Aggregator {
	t.Helper()
	ctx := context.Background()
	repo, err := store.OpenSQLite(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	now := time.Now().UTC()
	add := func(msgID, actor string, item domain.ItemType, amount int64, value float64) {
		ev := &domain.GatherEvent{
			At: now, ChannelID: 100, MessageID: msgID,
			ActorID: actor, Item: item, Amount: amount, Value: value,
		}
		require.NoError(t, repo.AppendEvent(ctx, ev))
	}

	add("a1", "100000000000000001", domain.ItemEggs, 10, 0)
	add("a2", "100000000000000001", domain.ItemMilk, 5, 0)
	add("b1", "100000000000000002", domain.ItemEggs, 15, 0)
	add("b2", "100000000000000002", domain.ItemHerdBuy, 5, 300)
	add("c1", "100000000000000003", domain.ItemHerdSell, 4, 960)

	return New(repo)
}

func TestLeaderboard_LimitOne(t *testing.T) {
	agg := seededAggregator(t)
	rows, err := agg.Leaderboard(context.Background(), nil, nil, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	// Actors 1 and 2 tie at 15; actor 1 was seen first.
	require.Equal(t, "100000000000000001", rows[0].ActorID)
	require.Equal(t, int64(15), rows[0].Gathered())
}

func TestLeaderboard_ClampsLimit(t *testing.T) {
	agg := seededAggregator(t)
	ctx := context.Background()

	rows, err := agg.Leaderboard(ctx, nil, nil, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	rows, err = agg.Leaderboard(ctx, nil, nil, 5000)
	require.NoError(t, err)
	require.Len(t, rows, 3)
}

func TestWeeklyPerActorAndHerdTotals(t *testing.T) {
	agg := seededAggregator(t)
	ctx := context.Background()
	since := time.Now().UTC().Add(-WeeklyWindow)

	rows, err := agg.WeeklyPerActor(ctx, since)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "100000000000000001", rows[0].ActorID)

	buy, sell, err := agg.HerdTotals(ctx, since)
	require.NoError(t, err)
	require.Equal(t, float64(300), buy)
	require.Equal(t, float64(960), sell)
}

func TestTotals_EmptyLedgerIsZero(t *testing.T) {
	repo, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	tot, err := New(repo).Totals(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Equal(t, store.Totals{}, tot)
}
