package inventory

import (
	"encoding/json"
	"sort"
)

// TierKey identifies a tier bucket.  The zero value is the unassigned
// bucket, which cannot collide with any real tier id.
type TierKey struct {
	ID       string
	Assigned bool
}

// Unassigned is the bucket for seats without a tier.
var Unassigned = TierKey{}

// TierOf returns the bucket for a tier id; a nil id is Unassigned.
func TierOf(id *string) TierKey {
	if id == nil {
		return Unassigned
	}
	return TierKey{ID: *id, Assigned: true}
}

// String renders the key for display.  It is not a round-trippable id.
func (k TierKey) String() string {
	if !k.Assigned {
		return "(unassigned)"
	}
	return k.ID
}

// Counts tallies seats by status and by tier.
type Counts struct {
	ByStatus map[SeatStatus]int
	ByTier   map[TierKey]int
	Total    int
}

// TierCount is one entry of the tier tally in serialized form.
type TierCount struct {
	TierID *string `json:"tierId"`
	Count  int     `json:"count"`
}

// TierCounts returns the tier tally sorted with assigned tiers by id first
// and the unassigned bucket last.
func (c Counts) TierCounts() []TierCount {
	keys := make([]TierKey, 0, len(c.ByTier))
	for k := range c.ByTier {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Assigned != keys[j].Assigned {
			return keys[i].Assigned
		}
		return keys[i].ID < keys[j].ID
	})
	out := make([]TierCount, 0, len(keys))
	for _, k := range keys {
		tc := TierCount{Count: c.ByTier[k]}
		if k.Assigned {
			id := k.ID
			tc.TierID = &id
		}
		out = append(out, tc)
	}
	return out
}

// MarshalJSON encodes the tier tally as a list so that the unassigned
// bucket serializes as a null tier id instead of a magic string.
func (c Counts) MarshalJSON() ([]byte, error) {
	byStatus := make(map[SeatStatus]int, len(Statuses))
	for _, s := range Statuses {
		byStatus[s] = c.ByStatus[s]
	}
	for s, n := range c.ByStatus {
		byStatus[s] = n
	}
	return json.Marshal(struct {
		ByStatus map[SeatStatus]int `json:"byStatus"`
		ByTier   []TierCount        `json:"byTier"`
		Total    int                `json:"total"`
	}{byStatus, c.TierCounts(), c.Total})
}

func (c *Counts) add(status SeatStatus, tier TierKey, n int) {
	if n <= 0 {
		return
	}
	c.ByStatus[status] += n
	c.ByTier[tier] += n
	c.Total += n
}

func (c *Counts) addSeats(seats []Seat) {
	for _, s := range seats {
		c.add(s.EffectiveStatus(), TierOf(s.TierID), 1)
	}
}

// AggregateSeatCounts tallies every sellable place in blocks.  Grid seats
// are counted one by one; standing areas are counted by capacity unless
// their seat list covers the whole capacity.
func AggregateSeatCounts(blocks []Block) Counts {
	c := Counts{ByStatus: map[SeatStatus]int{}, ByTier: map[TierKey]int{}}
	for _, b := range blocks {
		Match(b,
			func(g *SeatedGrid) struct{} {
				if g.Rows != nil {
					for _, r := range g.Rows {
						c.addSeats(r.Seats)
					}
				} else {
					c.addSeats(g.Seats)
				}
				return struct{}{}
			},
			func(s *StandingCapacity) struct{} {
				if standingEnumerated(s) {
					c.addSeats(s.Seats)
					return struct{}{}
				}
				tier := Unassigned
				if len(s.Seats) > 0 {
					tier = TierOf(s.Seats[0].TierID)
				}
				c.add(StatusAvailable, tier, s.Capacity)
				return struct{}{}
			},
			func(*NonSellable) struct{} { return struct{}{} },
		)
	}
	return c
}

// standingEnumerated reports whether a standing area's seat list is
// complete enough to be tallied seat by seat.
func standingEnumerated(s *StandingCapacity) bool {
	return len(s.Seats) > 0 && len(s.Seats) >= s.Capacity
}

// SeatCount is the number of sellable places a block contributes to
// AggregateSeatCounts.
func SeatCount(b Block) int {
	return Match(b,
		func(g *SeatedGrid) int {
			if g.Rows == nil {
				return len(g.Seats)
			}
			n := 0
			for _, r := range g.Rows {
				n += len(r.Seats)
			}
			return n
		},
		func(s *StandingCapacity) int {
			if standingEnumerated(s) {
				return len(s.Seats)
			}
			return max(s.Capacity, 0)
		},
		func(*NonSellable) int { return 0 },
	)
}
