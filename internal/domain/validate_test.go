package domain

import (
	"errors"
	"testing"
)

func TestValidate_AmountBounds(t *testing.T) {
	cases := []struct {
		amount int64
		hasAmt bool
		err    error
	}{
		{0, false, ErrNoAmount},
		{0, true, ErrAmountRange},
		{-3, true, ErrAmountRange},
		{100001, true, ErrAmountRange},
		{100000, true, nil},
		{1, true, nil},
	}
	for _, tc := range cases {
		c := Candidate{Item: ItemEggs, Amount: tc.amount, HasAmt: tc.hasAmt, ActorID: "123456789012345678"}
		err := Validate(c, "whatever")
		if !errors.Is(err, tc.err) {
			t.Fatalf("amount %d: got %v, want %v", tc.amount, err, tc.err)
		}
	}
}

func TestValidate_MissingActor(t *testing.T) {
	c := Candidate{Item: ItemEggs, Amount: 5, HasAmt: true}

	if err := Validate(c, "5 eggs today"); !errors.Is(err, ErrNoActor) {
		t.Fatalf("got %v, want ErrNoActor", err)
	}
	// Bracketed "unknown" prefix is an explicit unknown actor and is
	// dropped silently.
	if err := Validate(c, "[unknown] 5 eggs"); !errors.Is(err, ErrUnknownActor) {
		t.Fatalf("got %v, want ErrUnknownActor", err)
	}
	if err := Validate(c, "Unknown | 5 eggs"); !errors.Is(err, ErrUnknownActor) {
		t.Fatalf("got %v, want ErrUnknownActor", err)
	}
	if err := Validate(c, "[PlayerX] 5 eggs"); !errors.Is(err, ErrNoActor) {
		t.Fatalf("got %v, want ErrNoActor", err)
	}
}
