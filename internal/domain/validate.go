package domain

import (
	"errors"
	"regexp"
	"strings"
)

const MaxAmount = 100000

var (
	ErrNoAmount     = errors.New("no amount extracted")
	ErrAmountRange  = errors.New("amount out of range")
	ErrNoActor      = errors.New("no actor attribution")
	ErrUnknownActor = errors.New("explicit unknown actor")
)

// Leading "[Name]" or "Name |" prefixes some game clients prepend.
var (
	reBracketName = regexp.MustCompile(`^\s*\[([^\]]+)\]`)
	rePipedName   = regexp.MustCompile(`^\s*([^|\n]+)\|`)
)

// Validate bounds-checks and attribution-checks a candidate against the
// raw text it came from. Unattributed events are never stored;
// attribution is part of the ledger semantics, not optional enrichment.
func Validate(c Candidate, text string) error {
	if !c.HasAmt {
		return ErrNoAmount
	}
	if c.Amount <= 0 || c.Amount > MaxAmount {
		return ErrAmountRange
	}
	if c.ActorID == "" {
		if strings.EqualFold(leadingName(text), "unknown") {
			return ErrUnknownActor
		}
		return ErrNoActor
	}
	return nil
}

// leadingName extracts a bracketed or piped name prefix, if any.
func leadingName(text string) string {
	if m := reBracketName.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := rePipedName.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
