// Package inventory computes derived seating data from raw block records:
// estimated block sizes, a normalized rendering frame and seat tallies by
// status and tier.  Every function is pure; callers own fetching the records
// and drawing the result.
package inventory

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// BlockKind names one of the three block shapes a venue layout is built from.
type BlockKind string

const (
	KindSeatedGrid       BlockKind = "SEATED_GRID"       // rows of individually sold seats
	KindStandingCapacity BlockKind = "STANDING_CAPACITY" // standing area sold by head count
	KindNonSellable      BlockKind = "NON_SELLABLE"      // stage, bar, aisle and other decoration
)

// SeatStatus is the sale state of a single seat.  The zero value means the
// record carried no status and is read as StatusAvailable.
type SeatStatus string

const (
	StatusAvailable SeatStatus = "AVAILABLE"
	StatusReserved  SeatStatus = "RESERVED"
	StatusBooked    SeatStatus = "BOOKED"
)

// Statuses lists every status in display order.
var Statuses = []SeatStatus{StatusAvailable, StatusReserved, StatusBooked}

// ParseSeatStatus trims and upper-cases a stored or posted status.
func ParseSeatStatus(s string) SeatStatus {
	return SeatStatus(strings.ToUpper(strings.TrimSpace(s)))
}

// UnmarshalJSON implements json.Unmarshaler.  Editors emit lower-case
// statuses; they are folded so they tally with the canonical ones.
func (s *SeatStatus) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*s = ""
		return nil
	}
	*s = ParseSeatStatus(*raw)
	return nil
}

// Position is the authored origin of a block.  Either coordinate may be
// missing in the source record.
type Position struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
}

// Seat is one sellable place inside a block.
type Seat struct {
	ID     string     `json:"id"`
	Label  string     `json:"label"`
	TierID *string    `json:"tierId,omitempty"`
	Status SeatStatus `json:"status,omitempty"`
}

// EffectiveStatus returns the seat status with the Available default applied.
func (s Seat) EffectiveStatus() SeatStatus {
	if s.Status == "" {
		return StatusAvailable
	}
	return s.Status
}

// Row is a labelled line of seats inside a seated grid.
type Row struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Seats []Seat `json:"seats"`
}

// Tier is a named price level.  Color is a CSS-style hex string used by
// renderers.
type Tier struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Color string          `json:"color"`
}

// Frame carries the fields shared by every block kind.
type Frame struct {
	ID       string   `json:"id"`
	Name     string   `json:"name,omitempty"`
	Position Position `json:"position"`
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
}

// Block is a closed union over *SeatedGrid, *StandingCapacity and
// *NonSellable.  Use Match to branch on the concrete kind.
type Block interface {
	Kind() BlockKind
	BlockFrame() Frame
	sealed()
}

// SeatedGrid is a block of seats laid out in rows.  Rows is authoritative
// when present; RowCount and Columns describe the shape of a grid whose
// seats were not loaded.  Seats holds a flat seat list for grids stored
// without row structure.
type SeatedGrid struct {
	Frame
	Rows     []Row  `json:"rows,omitempty"`
	RowCount *int   `json:"rowCount,omitempty"`
	Columns  *int   `json:"columns,omitempty"`
	Seats    []Seat `json:"seats,omitempty"`
}

// StandingCapacity is a general-admission area.  Seats optionally carries
// per-place overrides (tier, status).
type StandingCapacity struct {
	Frame
	Capacity int    `json:"capacity"`
	Seats    []Seat `json:"seats,omitempty"`
}

// NonSellable is a purely structural block.
type NonSellable struct {
	Frame
}

func (*SeatedGrid) Kind() BlockKind       { return KindSeatedGrid }
func (*StandingCapacity) Kind() BlockKind { return KindStandingCapacity }
func (*NonSellable) Kind() BlockKind      { return KindNonSellable }

func (b *SeatedGrid) BlockFrame() Frame       { return b.Frame }
func (b *StandingCapacity) BlockFrame() Frame { return b.Frame }
func (b *NonSellable) BlockFrame() Frame      { return b.Frame }

func (*SeatedGrid) sealed()       {}
func (*StandingCapacity) sealed() {}
func (*NonSellable) sealed()      {}

// Match dispatches on the concrete kind of b.  Every kind needs a handler,
// so adding a kind to the union changes this signature and every caller has
// to be updated before the tree builds again.  A nil block yields the zero T.
func Match[T any](
	b Block,
	grid func(*SeatedGrid) T,
	standing func(*StandingCapacity) T,
	nonSellable func(*NonSellable) T,
) T {
	var zero T
	switch v := b.(type) {
	case *SeatedGrid:
		if v != nil {
			return grid(v)
		}
	case *StandingCapacity:
		if v != nil {
			return standing(v)
		}
	case *NonSellable:
		if v != nil {
			return nonSellable(v)
		}
	}
	return zero
}
