package telegram

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/khgaming94/Herding-Total/internal/config"
	"github.com/khgaming94/Herding-Total/internal/ingest"
	"github.com/khgaming94/Herding-Total/internal/scheduler"
	"github.com/khgaming94/Herding-Total/internal/stats"
	"github.com/khgaming94/Herding-Total/internal/store"
)

// Router wires Telegram updates to handlers: commands from anywhere,
// plain text from the configured ranch channel into the ingest
// pipeline.
type Router struct {
	bot      *tgbotapi.BotAPI
	log      *zap.Logger
	cfg      config.Config
	repo     store.Repo
	pipeline *ingest.Pipeline
	agg      *stats.Aggregator
	weekly   *scheduler.Weekly
}

// NewRouter creates a new Telegram router. The weekly scheduler is
// attached later via SetWeekly because it needs the router as its
// delivery sink.
func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, cfg config.Config, repo store.Repo, pipeline *ingest.Pipeline, agg *stats.Aggregator) *Router {
	return &Router{
		bot:      bot,
		log:      log,
		cfg:      cfg,
		repo:     repo,
		pipeline: pipeline,
		agg:      agg,
	}
}

// SetWeekly attaches the weekly scheduler used by /setschedule,
// /schedule and /runweekly.
func (r *Router) SetWeekly(w *scheduler.Weekly) { r.weekly = w }

// HandleUpdate routes a single update to the appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil {
		return
	}
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if msg.IsCommand() {
		args := strings.Fields(msg.CommandArguments())
		switch msg.Command() {
		case "start", "help":
			r.sendText(chatID, helpText)
		case "totals":
			r.handleTotals(ctx, chatID, args)
		case "leaderboard":
			r.handleLeaderboard(ctx, chatID, args)
		case "weekly":
			r.handleWeekly(ctx, chatID)
		case "resetweek":
			r.handleResetWeek(ctx, msg)
		case "subscribe":
			r.handleSubscribe(ctx, msg)
		case "unsubscribe":
			r.handleUnsubscribe(ctx, msg)
		case "setschedule":
			r.handleSetSchedule(ctx, msg, args)
		case "schedule":
			r.handleGetSchedule(ctx, chatID)
		case "runweekly":
			r.handleRunWeekly(ctx, msg)
		default:
			// Unknown command — ignore silently
		}
		return
	}

	// Only the configured channel feeds the ledger.
	if chatID != r.cfg.ChannelID {
		return
	}
	if text == "" {
		// Media posts carry their text in the caption.
		text = strings.TrimSpace(msg.Caption)
	}
	if text == "" {
		return
	}

	out, err := r.pipeline.Ingest(ctx, ingest.Inbound{
		ChannelID: chatID,
		MessageID: strconv.Itoa(msg.MessageID),
		Text:      text,
		At:        msg.Time().UTC(),
	})
	if err != nil {
		r.log.Error("ingest failed",
			zap.Int("messageID", msg.MessageID),
			zap.Error(err),
		)
		return
	}
	r.log.Debug("ingest outcome",
		zap.Int("messageID", msg.MessageID),
		zap.String("outcome", out.String()),
	)
}

// isAdmin checks the sender against the configured admin list.
func (r *Router) isAdmin(msg *tgbotapi.Message) bool {
	return msg.From != nil && r.cfg.IsAdmin(msg.From.ID)
}

func (r *Router) sendText(chatID int64, text string) {
	if _, err := r.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.log.Error("send failed", zap.Int64("chatID", chatID), zap.Error(err))
	}
}
