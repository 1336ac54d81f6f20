package report

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/khgaming94/Herding-Total/internal/store"
)

const (
	// BatchSize is the delivery transport's hard limit on blocks per
	// transmission.
	BatchSize = 10

	// resolveConcurrency bounds the identity-resolution fan-out.
	resolveConcurrency = 4
)

// IdentityResolver maps an actor id to a display label. It never
// fails: implementations return the raw id (or another sentinel) when
// resolution is impossible.
type IdentityResolver interface {
	DisplayName(ctx context.Context, actorID string) string
}

// Block is one presentation unit of the report.
type Block struct {
	Title string
	Body  string
}

// Revenue holds the derived figures shared by the overview and the
// per-actor blocks.
type Revenue struct {
	ItemRevenue  float64 // (eggs + milk) × unit price
	HerdNet      float64 // sell revenue − buy cost
	TotalRevenue float64 // item revenue + herd net
}

// Composer turns aggregates into presentation blocks.
type Composer struct {
	unitPrice float64
}

func NewComposer(unitPrice float64) *Composer {
	return &Composer{unitPrice: unitPrice}
}

func (c *Composer) revenue(eggs, milk int64, buyCost, sellRevenue float64) Revenue {
	item := float64(eggs+milk) * c.unitPrice
	net := sellRevenue - buyCost
	return Revenue{ItemRevenue: item, HerdNet: net, TotalRevenue: item + net}
}

// Compose builds the overview block followed by one block per actor in
// the given rollup order. Display names are resolved concurrently with
// a bounded fan-out; a slow or failing resolver for one actor does not
// affect the others.
func (c *Composer) Compose(ctx context.Context, totals store.Totals, rollups []store.ActorRollup, buyCost, sellRevenue float64, resolver IdentityResolver) []Block {
	names := make([]string, len(rollups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i, ru := range rollups {
		i, ru := i, ru
		g.Go(func() error {
			names[i] = resolver.DisplayName(gctx, ru.ActorID)
			return nil
		})
	}
	_ = g.Wait()

	blocks := make([]Block, 0, len(rollups)+1)

	rev := c.revenue(totals.Eggs, totals.Milk, buyCost, sellRevenue)
	blocks = append(blocks, Block{
		Title: "Weekly ranch report",
		Body: fmt.Sprintf(
			"Eggs: %d\nMilk: %d\nItem revenue: %s\nHerd net: %s\nTotal revenue: %s",
			totals.Eggs, totals.Milk,
			money(rev.ItemRevenue), money(rev.HerdNet), money(rev.TotalRevenue),
		),
	})

	for i, ru := range rollups {
		r := c.revenue(ru.Eggs, ru.Milk, ru.HerdBuyCost, ru.HerdSellTotal)
		blocks = append(blocks, Block{
			Title: fmt.Sprintf("%d. %s", i+1, names[i]),
			Body: fmt.Sprintf(
				"Eggs: %d\nMilk: %d\nHerd bought: %d (%s)\nHerd sold: %d (%s)\nHerd net: %s\nTotal revenue: %s",
				ru.Eggs, ru.Milk,
				ru.HerdBought, money(ru.HerdBuyCost),
				ru.HerdSold, money(ru.HerdSellTotal),
				money(r.HerdNet), money(r.TotalRevenue),
			),
		})
	}
	return blocks
}

// Batch splits blocks into delivery batches of at most BatchSize,
// preserving order.
func Batch(blocks []Block) [][]Block {
	var batches [][]Block
	for len(blocks) > 0 {
		n := BatchSize
		if len(blocks) < n {
			n = len(blocks)
		}
		batches = append(batches, blocks[:n])
		blocks = blocks[n:]
	}
	return batches
}

// money renders a currency amount without trailing zero noise
// (300 → "$300", 960.5 → "$960.5").
func money(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v < 0 {
		return "-$" + s[1:]
	}
	return "$" + s
}
