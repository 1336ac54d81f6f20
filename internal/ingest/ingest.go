package ingest

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/khgaming94/Herding-Total/internal/domain"
	"github.com/khgaming94/Herding-Total/internal/store"
)

// DuplicateWindow is the span in which an identical event is treated
// as redundant re-delivery and suppressed.
const DuplicateWindow = 10 * time.Second

// Outcome classifies what happened to one inbound message.
type Outcome int

const (
	// OutcomeStored means a new ledger row was appended.
	OutcomeStored Outcome = iota
	// OutcomeNoMatch means the text was not recognizable.
	OutcomeNoMatch
	// OutcomeRejected means the candidate failed validation.
	OutcomeRejected
	// OutcomeDuplicate means an equivalent recent event already exists.
	OutcomeDuplicate
	// OutcomeAlreadySeen means the same source message was reprocessed.
	OutcomeAlreadySeen
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStored:
		return "stored"
	case OutcomeNoMatch:
		return "no_match"
	case OutcomeRejected:
		return "rejected"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeAlreadySeen:
		return "already_seen"
	}
	return "unknown"
}

// Inbound is one raw message handed to the pipeline.
type Inbound struct {
	ChannelID int64
	MessageID string
	Text      string
	At        time.Time
}

// Pipeline runs extract → validate → dedup → append for one channel's
// messages.
type Pipeline struct {
	repo store.Repo
	log  *zap.Logger
}

func New(repo store.Repo, log *zap.Logger) *Pipeline {
	return &Pipeline{repo: repo, log: log}
}

// Ingest processes one inbound message. Drops are reported as
// outcomes, not errors; the error return covers storage failures only.
func (p *Pipeline) Ingest(ctx context.Context, in Inbound) (Outcome, error) {
	cand, ok := domain.Extract(in.Text)
	if !ok {
		p.log.Debug("no match", zap.String("messageID", in.MessageID))
		return OutcomeNoMatch, nil
	}

	if err := domain.Validate(cand, in.Text); err != nil {
		// Explicit unknown actors are expected noise; everything else
		// is worth a debug line.
		if !errors.Is(err, domain.ErrUnknownActor) {
			p.log.Debug("rejected",
				zap.String("messageID", in.MessageID),
				zap.String("reason", err.Error()),
			)
		}
		return OutcomeRejected, nil
	}

	at := in.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	found, err := p.repo.HasRecentEquivalent(ctx, in.ChannelID, cand.Item, cand.Amount, cand.ActorID, at.Add(-DuplicateWindow))
	if err != nil {
		return OutcomeRejected, err
	}
	if found {
		p.log.Debug("duplicate suppressed",
			zap.String("messageID", in.MessageID),
			zap.String("actorID", cand.ActorID),
		)
		return OutcomeDuplicate, nil
	}

	ev := &domain.GatherEvent{
		At:        at,
		ChannelID: in.ChannelID,
		MessageID: in.MessageID,
		ActorID:   cand.ActorID,
		RanchID:   cand.RanchID,
		Item:      cand.Item,
		Amount:    cand.Amount,
		Value:     cand.Value,
		Subtype:   cand.Subtype,
	}
	if err := p.repo.AppendEvent(ctx, ev); err != nil {
		// A literal re-insert of the same source message is benign.
		if errors.Is(err, store.ErrDuplicateMessage) {
			return OutcomeAlreadySeen, nil
		}
		return OutcomeRejected, err
	}

	p.log.Info("event stored",
		zap.Int64("id", ev.ID),
		zap.String("item", string(ev.Item)),
		zap.Int64("amount", ev.Amount),
		zap.String("actorID", ev.ActorID),
	)
	return OutcomeStored, nil
}
