package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/khgaming94/Herding-Total/internal/domain"
	"github.com/khgaming94/Herding-Total/internal/report"
	"github.com/khgaming94/Herding-Total/internal/stats"
	"github.com/khgaming94/Herding-Total/internal/store"
)

type recordingSink struct {
	batches  [][]report.Block
	notified []int64
}

func (s *recordingSink) DeliverBatch(_ context.Context, blocks []report.Block) error {
	s.batches = append(s.batches, blocks)
	return nil
}

func (s *recordingSink) NotifySubscriber(_ context.Context, chatID int64, _ report.Block) error {
	s.notified = append(s.notified, chatID)
	return nil
}

type rawResolver struct{}

func (rawResolver) DisplayName(_ context.Context, actorID string) string { return actorID }

// failingPrune wraps a Repo and fails the bulk delete until unblocked.
type failingPrune struct {
	store.Repo
	fail bool
}

func (f *failingPrune) DeleteEventsSince(ctx context.Context, since time.Time, ranchID *int64) (int64, error) {
	if f.fail {
		return 0, errors.New("disk full")
	}
	return f.Repo.DeleteEventsSince(ctx, since, ranchID)
}

func newTestWeekly(t *testing.T, repo store.Repo, sink Sink) *Weekly {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	return New(repo, stats.New(repo), report.NewComposer(25), rawResolver{}, sink, loc, zap.NewNop())
}

func openRepo(t *testing.T) *store.SQLiteRepo {
	t.Helper()
	repo, err := store.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

// slotTime returns a Moscow-local Sunday 18:30 instant.
func slotTime(t *testing.T) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)
	return time.Date(2025, time.May, 11, 18, 30, 5, 0, loc) // Sunday
}

func seedEvent(t *testing.T, repo store.Repo, msgID string, at time.Time) {
	t.Helper()
	require.NoError(t, repo.AppendEvent(context.Background(), &domain.GatherEvent{
		At: at, ChannelID: 100, MessageID: msgID,
		ActorID: "123456789012345678", Item: domain.ItemEggs, Amount: 5,
	}))
}

func TestTick_FiresOncePerDate(t *testing.T) {
	repo := openRepo(t)
	sink := &recordingSink{}
	w := newTestWeekly(t, repo, sink)
	ctx := context.Background()

	at := slotTime(t)
	w.now = func() time.Time { return at }
	require.NoError(t, w.Configure(ctx, domain.Slot{Weekday: time.Sunday, Hour: 18, Minute: 30}))
	seedEvent(t, repo, "m1", at.Add(-time.Hour))

	w.Tick(ctx)
	require.Len(t, sink.batches, 1)

	// Second tick in the same minute: the marker blocks a re-fire.
	w.Tick(ctx)
	require.Len(t, sink.batches, 1)

	// The window was pruned.
	tot, err := repo.Totals(ctx, nil, nil)
	require.NoError(t, err)
	require.Equal(t, store.Totals{}, tot)
}

func TestTick_OffSlotOrUnconfigured(t *testing.T) {
	repo := openRepo(t)
	sink := &recordingSink{}
	w := newTestWeekly(t, repo, sink)
	ctx := context.Background()

	at := slotTime(t)
	w.now = func() time.Time { return at }

	// No schedule configured: nothing fires.
	w.Tick(ctx)
	require.Empty(t, sink.batches)

	// Configured for a different minute: nothing fires.
	require.NoError(t, w.Configure(ctx, domain.Slot{Weekday: time.Sunday, Hour: 18, Minute: 31}))
	w.Tick(ctx)
	require.Empty(t, sink.batches)
}

func TestConfigure_ClearsMarker(t *testing.T) {
	repo := openRepo(t)
	sink := &recordingSink{}
	w := newTestWeekly(t, repo, sink)
	ctx := context.Background()

	at := slotTime(t)
	w.now = func() time.Time { return at }
	require.NoError(t, w.Configure(ctx, domain.Slot{Weekday: time.Sunday, Hour: 18, Minute: 30}))

	w.Tick(ctx)
	require.Len(t, sink.batches, 1)

	// Reconfiguring to a later minute the same day clears the marker,
	// so the new slot fires on an already-marked date.
	require.NoError(t, w.Configure(ctx, domain.Slot{Weekday: time.Sunday, Hour: 19, Minute: 0}))
	later := at.Add(30 * time.Minute)
	w.now = func() time.Time { return later }
	w.Tick(ctx)
	require.Len(t, sink.batches, 2)
}

func TestRunNow_DoesNotAdvanceMarker(t *testing.T) {
	repo := openRepo(t)
	sink := &recordingSink{}
	w := newTestWeekly(t, repo, sink)
	ctx := context.Background()

	at := slotTime(t)
	w.now = func() time.Time { return at.Add(-2 * time.Hour) }
	require.NoError(t, w.Configure(ctx, domain.Slot{Weekday: time.Sunday, Hour: 18, Minute: 30}))

	require.NoError(t, w.RunNow(ctx))
	require.Len(t, sink.batches, 1)

	// The scheduled slot later the same day still fires.
	w.now = func() time.Time { return at }
	w.Tick(ctx)
	require.Len(t, sink.batches, 2)
}

func TestTick_FailedCycleRetries(t *testing.T) {
	repo := openRepo(t)
	wrapped := &failingPrune{Repo: repo, fail: true}
	sink := &recordingSink{}
	w := newTestWeekly(t, wrapped, sink)
	ctx := context.Background()

	at := slotTime(t)
	w.now = func() time.Time { return at }
	require.NoError(t, w.Configure(ctx, domain.Slot{Weekday: time.Sunday, Hour: 18, Minute: 30}))

	// Prune fails: marker stays put, so the next tick retries (and
	// delivers again — the documented duplicate-delivery risk).
	w.Tick(ctx)
	require.Len(t, sink.batches, 1)

	wrapped.fail = false
	w.Tick(ctx)
	require.Len(t, sink.batches, 2)

	// Now marked; no third fire.
	w.Tick(ctx)
	require.Len(t, sink.batches, 2)
}

func TestCycle_NotifiesSubscribers(t *testing.T) {
	repo := openRepo(t)
	sink := &recordingSink{}
	w := newTestWeekly(t, repo, sink)
	ctx := context.Background()

	require.NoError(t, repo.AddSubscriber(ctx, domain.Subscriber{ActorID: "123456789012345678", ChatID: 42}))
	w.now = func() time.Time { return slotTime(t) }

	require.NoError(t, w.RunNow(ctx))
	require.Equal(t, []int64{42}, sink.notified)
}
