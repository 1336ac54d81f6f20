package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// Candidate is the raw result of text extraction, before validation.
type Candidate struct {
	Item    ItemType
	Amount  int64
	HasAmt  bool
	Value   float64
	Subtype string
	ActorID string // first mention id found, empty if none
	RanchID *int64
}

var (
	reMention = regexp.MustCompile(`<@!?(\d{17,20})>`)
	reRanch   = regexp.MustCompile(`(?i)\branch(?:\s+id)?\s+(\d+)`)
	rePrimary = regexp.MustCompile(`(?i)\b(\d+)\s*(eggs?|milk)\b`)
	reHerd    = regexp.MustCompile(`(?i)\b(bought|sold)\s+(\d+)\s+([a-z]+)\s+for\s+\$?([\d,]+(?:\.\d+)?)\$?`)
	reProduct = regexp.MustCompile(`(?i)\b(eggs?|milk)\b`)
	reInteger = regexp.MustCompile(`\d+`)
)

// Extract parses one text blob into a candidate event. Rules run in
// priority order so a ranch id or other incidental number is never
// misread as the amount. Returns false when nothing recognizable is
// present.
func Extract(text string) (Candidate, bool) {
	var c Candidate

	if m := reMention.FindStringSubmatch(text); m != nil {
		c.ActorID = m[1]
	}
	if m := reRanch.FindStringSubmatch(text); m != nil {
		if id, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			c.RanchID = &id
		}
	}

	// Rule: integer immediately followed by "egg(s)" or "milk".
	if m := rePrimary.FindStringSubmatch(text); m != nil {
		amount, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return c, false
		}
		c.Item = ItemEggs
		if strings.HasPrefix(strings.ToLower(m[2]), "milk") {
			c.Item = ItemMilk
		}
		c.Amount = amount
		c.HasAmt = true
		return c, true
	}

	// Rule: herd transaction "<bought|sold> <N> <animal> for $<price>".
	if m := reHerd.FindStringSubmatch(text); m != nil {
		amount, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return c, false
		}
		price, err := strconv.ParseFloat(strings.ReplaceAll(m[4], ",", ""), 64)
		if err != nil {
			return c, false
		}
		c.Item = ItemHerdBuy
		if strings.EqualFold(m[1], "sold") {
			c.Item = ItemHerdSell
		}
		c.Amount = amount
		c.HasAmt = true
		c.Value = price
		c.Subtype = strings.ToLower(m[3])
		return c, true
	}

	// Fallback: the text mentions eggs/milk somewhere but no pattern
	// matched; take the last integer that is not the ranch id.
	if m := reProduct.FindStringSubmatch(text); m != nil {
		c.Item = ItemEggs
		if strings.Contains(strings.ToLower(text), "milk") {
			c.Item = ItemMilk
		}
		ranchSkipped := false
		for _, raw := range reInteger.FindAllString(text, -1) {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				continue
			}
			// The ranch id itself is not an amount; skip its first occurrence.
			if !ranchSkipped && c.RanchID != nil && n == *c.RanchID {
				ranchSkipped = true
				continue
			}
			c.Amount = n
			c.HasAmt = true
		}
		if c.HasAmt {
			return c, true
		}
	}

	return c, false
}
