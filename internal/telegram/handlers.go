package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/khgaming94/Herding-Total/internal/domain"
	"github.com/khgaming94/Herding-Total/internal/stats"
)

// parseWindow turns an optional "7d" / "24h" / "all" argument into a
// since-filter. Nil means no time filter.
func parseWindow(arg string) (*time.Time, error) {
	arg = strings.ToLower(strings.TrimSpace(arg))
	if arg == "" || arg == "all" {
		return nil, nil
	}
	var unit time.Duration
	switch {
	case strings.HasSuffix(arg, "d"):
		unit = 24 * time.Hour
	case strings.HasSuffix(arg, "h"):
		unit = time.Hour
	default:
		return nil, fmt.Errorf("bad window %q", arg)
	}
	n, err := strconv.Atoi(arg[:len(arg)-1])
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("bad window %q", arg)
	}
	since := time.Now().UTC().Add(-time.Duration(n) * unit)
	return &since, nil
}

func (r *Router) handleTotals(ctx context.Context, chatID int64, args []string) {
	var arg string
	if len(args) > 0 {
		arg = args[0]
	}
	since, err := parseWindow(arg)
	if err != nil {
		r.sendText(chatID, badWindowText)
		return
	}
	tot, err := r.agg.Totals(ctx, nil, since)
	if err != nil {
		r.log.Error("totals failed", zap.Error(err))
		r.sendText(chatID, genericFailureText)
		return
	}
	r.sendText(chatID, fmt.Sprintf(totalsFmt, windowLabel(arg), tot.Eggs, tot.Milk))
}

func (r *Router) handleLeaderboard(ctx context.Context, chatID int64, args []string) {
	limit := stats.DefaultLimit
	var since *time.Time
	for _, arg := range args {
		if n, err := strconv.Atoi(arg); err == nil {
			limit = n
			continue
		}
		s, err := parseWindow(arg)
		if err != nil {
			r.sendText(chatID, badLimitText)
			return
		}
		since = s
	}
	rows, err := r.agg.Leaderboard(ctx, nil, since, limit)
	if err != nil {
		r.log.Error("leaderboard failed", zap.Error(err))
		r.sendText(chatID, genericFailureText)
		return
	}
	if len(rows) == 0 {
		r.sendText(chatID, emptyLedgerText)
		return
	}

	var b strings.Builder
	b.WriteString(leaderboardTitle + "\n")
	for i, ru := range rows {
		name := r.DisplayName(ctx, ru.ActorID)
		fmt.Fprintf(&b, "%d. %s — %d (eggs %d, milk %d)\n", i+1, name, ru.Gathered(), ru.Eggs, ru.Milk)
	}
	r.sendText(chatID, b.String())
}

func (r *Router) handleWeekly(ctx context.Context, chatID int64) {
	since := time.Now().UTC().Add(-stats.WeeklyWindow)
	rows, err := r.agg.WeeklyPerActor(ctx, since)
	if err != nil {
		r.log.Error("weekly rollups failed", zap.Error(err))
		r.sendText(chatID, genericFailureText)
		return
	}
	if len(rows) == 0 {
		r.sendText(chatID, emptyWeekText)
		return
	}

	var b strings.Builder
	b.WriteString(weeklyTitle + "\n")
	for i, ru := range rows {
		name := r.DisplayName(ctx, ru.ActorID)
		fmt.Fprintf(&b, "%d. %s — eggs %d, milk %d, bought %d, sold %d\n",
			i+1, name, ru.Eggs, ru.Milk, ru.HerdBought, ru.HerdSold)
	}
	r.sendText(chatID, b.String())
}

func (r *Router) handleResetWeek(ctx context.Context, msg *tgbotapi.Message) {
	if !r.isAdmin(msg) {
		r.sendText(msg.Chat.ID, permissionDeniedText)
		return
	}
	since := time.Now().UTC().Add(-stats.WeeklyWindow)
	removed, err := r.repo.DeleteEventsSince(ctx, since, nil)
	if err != nil {
		r.log.Error("reset week failed", zap.Error(err))
		r.sendText(msg.Chat.ID, genericFailureText)
		return
	}
	r.sendText(msg.Chat.ID, fmt.Sprintf(resetDoneFmt, removed))
}

func (r *Router) handleSubscribe(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	sub := domain.Subscriber{
		ActorID:   strconv.FormatInt(msg.From.ID, 10),
		ChatID:    msg.Chat.ID,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.repo.AddSubscriber(ctx, sub); err != nil {
		r.log.Error("subscribe failed", zap.Error(err))
		r.sendText(msg.Chat.ID, genericFailureText)
		return
	}
	r.sendText(msg.Chat.ID, subscribedText)
}

func (r *Router) handleUnsubscribe(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	if err := r.repo.RemoveSubscriber(ctx, strconv.FormatInt(msg.From.ID, 10)); err != nil {
		r.log.Error("unsubscribe failed", zap.Error(err))
		r.sendText(msg.Chat.ID, genericFailureText)
		return
	}
	r.sendText(msg.Chat.ID, unsubscribedText)
}

func (r *Router) handleSetSchedule(ctx context.Context, msg *tgbotapi.Message, args []string) {
	if !r.isAdmin(msg) {
		r.sendText(msg.Chat.ID, permissionDeniedText)
		return
	}
	if len(args) != 2 {
		r.sendText(msg.Chat.ID, setScheduleUsage)
		return
	}
	slot, err := domain.ParseSlot(args[0], args[1])
	if err != nil {
		r.sendText(msg.Chat.ID, setScheduleUsage)
		return
	}
	if err := r.weekly.Configure(ctx, slot); err != nil {
		r.log.Error("set schedule failed", zap.Error(err))
		r.sendText(msg.Chat.ID, genericFailureText)
		return
	}
	r.sendText(msg.Chat.ID, fmt.Sprintf(scheduleSetFmt, slot))
}

func (r *Router) handleGetSchedule(ctx context.Context, chatID int64) {
	slot, ok, err := r.weekly.CurrentSlot(ctx)
	if err != nil {
		r.log.Error("get schedule failed", zap.Error(err))
		r.sendText(chatID, genericFailureText)
		return
	}
	if !ok {
		r.sendText(chatID, noScheduleText)
		return
	}
	r.sendText(chatID, fmt.Sprintf(scheduleFmt, slot, r.cfg.ReportTZ))
}

func (r *Router) handleRunWeekly(ctx context.Context, msg *tgbotapi.Message) {
	if !r.isAdmin(msg) {
		r.sendText(msg.Chat.ID, permissionDeniedText)
		return
	}
	if err := r.weekly.RunNow(ctx); err != nil {
		r.log.Error("manual weekly run failed", zap.Error(err))
		r.sendText(msg.Chat.ID, genericFailureText)
		return
	}
	r.sendText(msg.Chat.ID, weeklyRanText)
}
