package inventory

import (
	"encoding/json"
	"strings"
	"testing"
)

func tier(id string) *string { return &id }

func TestAggregateGridRowsAndFlatSeats(t *testing.T) {
	rows := &SeatedGrid{Rows: []Row{
		{Seats: []Seat{{TierID: tier("vip"), Status: StatusBooked}, {TierID: tier("vip")}}},
		{Seats: []Seat{{Status: StatusReserved}, {TierID: tier("std")}}},
	}}
	flat := &SeatedGrid{Seats: []Seat{{TierID: tier("std")}, {TierID: tier("std"), Status: StatusBooked}}}
	c := AggregateSeatCounts([]Block{rows, flat})

	if c.Total != 6 {
		t.Fatalf("expected 6 seats, got %d", c.Total)
	}
	if c.ByStatus[StatusAvailable] != 3 || c.ByStatus[StatusBooked] != 2 || c.ByStatus[StatusReserved] != 1 {
		t.Fatalf("unexpected status tally: %v", c.ByStatus)
	}
	if c.ByTier[TierOf(tier("vip"))] != 2 || c.ByTier[TierOf(tier("std"))] != 3 || c.ByTier[Unassigned] != 1 {
		t.Fatalf("unexpected tier tally: %v", c.ByTier)
	}
}

func TestAggregateStandingCapacity(t *testing.T) {
	c := AggregateSeatCounts([]Block{&StandingCapacity{Capacity: 200}})
	if c.ByStatus[StatusAvailable] != 200 || c.Total != 200 {
		t.Fatalf("expected 200 available, got %v", c.ByStatus)
	}
	if c.ByTier[Unassigned] != 200 {
		t.Fatalf("expected capacity in unassigned tier, got %v", c.ByTier)
	}
}

func TestAggregateStandingPartialSeatsUseFirstTier(t *testing.T) {
	s := &StandingCapacity{Capacity: 50, Seats: []Seat{
		{TierID: tier("floor"), Status: StatusBooked},
		{TierID: tier("other")},
	}}
	c := AggregateSeatCounts([]Block{s})
	if c.ByTier[TierOf(tier("floor"))] != 50 || len(c.ByTier) != 1 {
		t.Fatalf("expected all capacity under first tier, got %v", c.ByTier)
	}
	if c.ByStatus[StatusAvailable] != 50 {
		t.Fatalf("expected capacity counted available, got %v", c.ByStatus)
	}
}

func TestAggregateStandingFullSeatsAreAuthoritative(t *testing.T) {
	s := &StandingCapacity{Capacity: 2, Seats: []Seat{
		{TierID: tier("floor"), Status: StatusBooked},
		{TierID: tier("other")},
	}}
	c := AggregateSeatCounts([]Block{s})
	if c.Total != 2 || c.ByStatus[StatusBooked] != 1 || c.ByTier[TierOf(tier("other"))] != 1 {
		t.Fatalf("expected seat-level tally, got %+v", c)
	}
}

func TestAggregateNonSellableContributesNothing(t *testing.T) {
	c := AggregateSeatCounts([]Block{&NonSellable{}, nil})
	if c.Total != 0 || len(c.ByStatus) != 0 || len(c.ByTier) != 0 {
		t.Fatalf("expected empty tally, got %+v", c)
	}
}

func TestAggregateTotalsMatchSeatCount(t *testing.T) {
	blocks := []Block{
		gridOf(3, 4),
		&SeatedGrid{Seats: make([]Seat, 7)},
		&StandingCapacity{Capacity: 120, Seats: []Seat{{TierID: tier("ga")}}},
		&StandingCapacity{Capacity: 1, Seats: []Seat{{}, {Status: StatusReserved}}},
		&StandingCapacity{Capacity: -4},
		&NonSellable{},
	}
	c := AggregateSeatCounts(blocks)
	want := 0
	for _, b := range blocks {
		want += SeatCount(b)
	}
	sumStatus, sumTier := 0, 0
	for _, n := range c.ByStatus {
		sumStatus += n
	}
	for _, n := range c.ByTier {
		sumTier += n
	}
	if want != 12+7+120+2 || c.Total != want || sumStatus != want || sumTier != want {
		t.Fatalf("expected %d everywhere, got total=%d status=%d tier=%d", want, c.Total, sumStatus, sumTier)
	}
}

func TestTierKeyDoesNotCollideWithLiteralName(t *testing.T) {
	c := AggregateSeatCounts([]Block{&SeatedGrid{Seats: []Seat{{TierID: tier("unassigned")}, {}}}})
	if c.ByTier[Unassigned] != 1 || c.ByTier[TierOf(tier("unassigned"))] != 1 {
		t.Fatalf("expected separate buckets, got %v", c.ByTier)
	}
}

func TestCountsJSON(t *testing.T) {
	c := AggregateSeatCounts([]Block{&SeatedGrid{Seats: []Seat{{TierID: tier("vip")}, {}}}})
	raw, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("unexpected marshal error: %v", err)
	}
	got := string(raw)
	for _, want := range []string{`"BOOKED":0`, `{"tierId":"vip","count":1}`, `{"tierId":null,"count":1}`, `"total":2`} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %s in %s", want, got)
		}
	}
}
