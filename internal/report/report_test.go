package report

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/khgaming94/Herding-Total/internal/store"
)

type mapResolver map[string]string

func (m mapResolver) DisplayName(_ context.Context, actorID string) string {
	if name, ok := m[actorID]; ok {
		return name
	}
	return actorID
}

func TestCompose_RevenueMath(t *testing.T) {
	c := NewComposer(25)
	totals := store.Totals{Eggs: 10, Milk: 5}
	rollups := []store.ActorRollup{
		{ActorID: "1", Eggs: 10, Milk: 5, HerdBought: 5, HerdBuyCost: 300, HerdSold: 4, HerdSellTotal: 960},
	}

	blocks := c.Compose(context.Background(), totals, rollups, 300, 960, mapResolver{"1": "PlayerX"})
	require.Len(t, blocks, 2)

	// Overview: item revenue 15×25=375, herd net 960−300=660, total 1035.
	require.Contains(t, blocks[0].Body, "Item revenue: $375")
	require.Contains(t, blocks[0].Body, "Herd net: $660")
	require.Contains(t, blocks[0].Body, "Total revenue: $1035")

	require.Equal(t, "1. PlayerX", blocks[1].Title)
	require.Contains(t, blocks[1].Body, "Herd bought: 5 ($300)")
	require.Contains(t, blocks[1].Body, "Herd sold: 4 ($960)")
	require.Contains(t, blocks[1].Body, "Total revenue: $1035")
}

func TestCompose_UnresolvedFallsBackToID(t *testing.T) {
	c := NewComposer(1)
	rollups := []store.ActorRollup{
		{ActorID: "100000000000000001", Eggs: 3},
		{ActorID: "100000000000000002", Eggs: 2},
	}
	blocks := c.Compose(context.Background(), store.Totals{Eggs: 5}, rollups, 0, 0,
		mapResolver{"100000000000000002": "Resolved"})

	require.Len(t, blocks, 3)
	// Order follows the rollup order regardless of resolution outcome.
	require.True(t, strings.HasSuffix(blocks[1].Title, "100000000000000001"))
	require.Equal(t, "2. Resolved", blocks[2].Title)
}

func TestCompose_NegativeHerdNet(t *testing.T) {
	c := NewComposer(0)
	blocks := c.Compose(context.Background(), store.Totals{}, nil, 500, 200, mapResolver{})
	require.Len(t, blocks, 1)
	require.Contains(t, blocks[0].Body, "Herd net: -$300")
	require.Contains(t, blocks[0].Body, "Total revenue: -$300")
}

func TestBatch(t *testing.T) {
	blocks := make([]Block, 23)
	batches := Batch(blocks)
	require.Len(t, batches, 3)
	require.Len(t, batches[0], 10)
	require.Len(t, batches[1], 10)
	require.Len(t, batches[2], 3)

	require.Nil(t, Batch(nil))
}
