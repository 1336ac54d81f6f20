package telegram

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/khgaming94/Herding-Total/internal/report"
)

// DisplayName resolves an actor id to a member name in the ranch
// channel. It never fails: unresolvable ids come back verbatim. This
// makes Router satisfy report.IdentityResolver.
func (r *Router) DisplayName(ctx context.Context, actorID string) string {
	userID, err := strconv.ParseInt(actorID, 10, 64)
	if err != nil {
		return actorID
	}
	member, err := r.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: r.cfg.ChannelID,
			UserID: userID,
		},
	})
	if err != nil || member.User == nil {
		r.log.Debug("identity resolution failed", zap.String("actorID", actorID), zap.Error(err))
		return actorID
	}
	if member.User.UserName != "" {
		return "@" + member.User.UserName
	}
	if member.User.FirstName != "" {
		return member.User.FirstName
	}
	return actorID
}

// DeliverBatch sends one batch of report blocks to the ranch channel
// as a single message. This makes Router satisfy scheduler.Sink.
func (r *Router) DeliverBatch(_ context.Context, blocks []report.Block) error {
	_, err := r.bot.Send(tgbotapi.NewMessage(r.cfg.ChannelID, renderBlocks(blocks)))
	return err
}

// NotifySubscriber sends one block to a subscriber's chat.
func (r *Router) NotifySubscriber(_ context.Context, chatID int64, block report.Block) error {
	_, err := r.bot.Send(tgbotapi.NewMessage(chatID, renderBlocks([]report.Block{block})))
	return err
}

func renderBlocks(blocks []report.Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, b.Title+"\n"+b.Body)
	}
	return strings.Join(parts, "\n\n")
}
