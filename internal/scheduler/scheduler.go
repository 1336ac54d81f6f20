package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khgaming94/Herding-Total/internal/domain"
	"github.com/khgaming94/Herding-Total/internal/report"
	"github.com/khgaming94/Herding-Total/internal/stats"
	"github.com/khgaming94/Herding-Total/internal/store"
)

// Config-namespace keys. Both are re-read from the store on every tick
// so schedule changes and restarts take effect without coordination.
const (
	keySchedule = "schedule"
	keyMarker   = "last_report_date"
)

// tickInterval is coarse on purpose: the slot predicate has minute
// resolution and the marker guards against double firing within a day.
const tickInterval = 30 * time.Second

// Sink delivers composed report blocks. Failures are recorded by the
// caller, not auto-retried.
type Sink interface {
	// DeliverBatch sends one ordered batch of at most report.BatchSize
	// blocks to the report channel.
	DeliverBatch(ctx context.Context, blocks []report.Block) error
	// NotifySubscriber sends one block to a subscriber's chat.
	NotifySubscriber(ctx context.Context, chatID int64, block report.Block) error
}

// Weekly fires the report-and-reset cycle at the configured weekly
// slot, at most once per calendar day, and on manual trigger.
type Weekly struct {
	repo     store.Repo
	agg      *stats.Aggregator
	composer *report.Composer
	resolver report.IdentityResolver
	sink     Sink
	loc      *time.Location
	log      *zap.Logger
	now      func() time.Time
}

func New(repo store.Repo, agg *stats.Aggregator, composer *report.Composer, resolver report.IdentityResolver, sink Sink, loc *time.Location, log *zap.Logger) *Weekly {
	return &Weekly{
		repo:     repo,
		agg:      agg,
		composer: composer,
		resolver: resolver,
		sink:     sink,
		loc:      loc,
		log:      log,
		now:      time.Now,
	}
}

// Run ticks until ctx is canceled.
func (w *Weekly) Run(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick runs one scheduling check: if the current minute matches the
// configured slot and the cycle has not yet completed today, run it
// and advance the marker. The marker is advanced only after the full
// cycle (through prune) succeeds, so a failed cycle is retried on the
// next matching tick.
func (w *Weekly) Tick(ctx context.Context) {
	now := w.now().In(w.loc)

	slot, ok, err := w.CurrentSlot(ctx)
	if err != nil {
		w.log.Error("read schedule failed", zap.Error(err))
		return
	}
	if !ok || !slot.Matches(now) {
		return
	}

	today := domain.DateKey(now)
	marker, _, err := w.repo.GetConfigValue(ctx, keyMarker)
	if err != nil {
		w.log.Error("read recurrence marker failed", zap.Error(err))
		return
	}
	if marker == today {
		return
	}

	if err := w.runCycle(ctx, now); err != nil {
		w.log.Error("weekly cycle failed", zap.Error(err))
		return
	}
	if err := w.repo.SetConfigValue(ctx, keyMarker, today); err != nil {
		w.log.Error("advance recurrence marker failed", zap.Error(err))
	}
}

// RunNow runs the identical cycle immediately, bypassing the slot
// predicate. It deliberately leaves the marker untouched so a manual
// run cannot suppress the next scheduled firing.
func (w *Weekly) RunNow(ctx context.Context) error {
	return w.runCycle(ctx, w.now().In(w.loc))
}

// Configure persists a new slot and clears the marker, so the new slot
// may fire even on a date already marked under the old schedule.
func (w *Weekly) Configure(ctx context.Context, slot domain.Slot) error {
	if err := w.repo.SetConfigValue(ctx, keySchedule, slot.Encode()); err != nil {
		return err
	}
	return w.repo.DeleteConfigValue(ctx, keyMarker)
}

// CurrentSlot reads the configured slot; ok is false when no schedule
// has been set yet.
func (w *Weekly) CurrentSlot(ctx context.Context) (domain.Slot, bool, error) {
	raw, ok, err := w.repo.GetConfigValue(ctx, keySchedule)
	if err != nil || !ok {
		return domain.Slot{}, false, err
	}
	slot, err := domain.DecodeSlot(raw)
	if err != nil {
		return domain.Slot{}, false, err
	}
	return slot, true, nil
}

// runCycle aggregates the weekly window, composes and delivers the
// report, then prunes the window from the ledger. Delivery failures
// are logged and skipped; aggregation and prune failures abort the
// cycle so it can be retried.
func (w *Weekly) runCycle(ctx context.Context, now time.Time) error {
	runID := uuid.NewString()
	since := now.Add(-stats.WeeklyWindow)
	log := w.log.With(zap.String("runID", runID))
	log.Info("weekly cycle starting", zap.Time("since", since))

	totals, err := w.agg.Totals(ctx, nil, &since)
	if err != nil {
		return fmt.Errorf("totals: %w", err)
	}
	rollups, err := w.agg.WeeklyPerActor(ctx, since)
	if err != nil {
		return fmt.Errorf("per-actor rollups: %w", err)
	}
	buyCost, sellRevenue, err := w.agg.HerdTotals(ctx, since)
	if err != nil {
		return fmt.Errorf("herd totals: %w", err)
	}

	blocks := w.composer.Compose(ctx, totals, rollups, buyCost, sellRevenue, w.resolver)
	for i, batch := range report.Batch(blocks) {
		if err := w.sink.DeliverBatch(ctx, batch); err != nil {
			log.Error("batch delivery failed", zap.Int("batch", i), zap.Error(err))
		}
	}

	w.notifySubscribers(ctx, log, blocks[0])

	removed, err := w.repo.DeleteEventsSince(ctx, since, nil)
	if err != nil {
		return fmt.Errorf("prune: %w", err)
	}
	log.Info("weekly cycle done",
		zap.Int("actors", len(rollups)),
		zap.Int64("pruned", removed),
	)
	return nil
}

// notifySubscribers sends the overview block to each subscriber. One
// subscriber's failure never aborts the rest.
func (w *Weekly) notifySubscribers(ctx context.Context, log *zap.Logger, overview report.Block) {
	subs, err := w.repo.ListSubscribers(ctx)
	if err != nil {
		log.Error("list subscribers failed", zap.Error(err))
		return
	}
	for _, sub := range subs {
		if err := w.sink.NotifySubscriber(ctx, sub.ChatID, overview); err != nil {
			log.Error("subscriber notify failed",
				zap.String("actorID", sub.ActorID),
				zap.Error(err),
			)
		}
	}
}
