package model

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/seat-inventory/internal/inventory"
)

// LayoutBlock is a stored block record.  Blocks, rows, seats and tiers all
// hang off a layouts.id.  Kind decides which of the nullable columns matter:
//
//	SEATED_GRID        row_count, col_count (used only when no rows are stored)
//	STANDING_CAPACITY  capacity
//	NON_SELLABLE       none
//
// pos_x, pos_y, width and height are NULL when the editor never set them.
type LayoutBlock struct {
	ID        string          `db:"id"`         // layout_blocks.id
	LayoutID  uint64          `db:"layout_id"`  // layout_blocks.layout_id
	Kind      string          `db:"kind"`       // layout_blocks.kind
	Name      string          `db:"name"`       // layout_blocks.name
	PosX      sql.NullFloat64 `db:"pos_x"`      // layout_blocks.pos_x
	PosY      sql.NullFloat64 `db:"pos_y"`      // layout_blocks.pos_y
	Width     sql.NullFloat64 `db:"width"`      // layout_blocks.width
	Height    sql.NullFloat64 `db:"height"`     // layout_blocks.height
	RowCount  sql.NullInt64   `db:"row_count"`  // layout_blocks.row_count
	ColCount  sql.NullInt64   `db:"col_count"`  // layout_blocks.col_count
	Capacity  int             `db:"capacity"`   // layout_blocks.capacity
	SortOrder int             `db:"sort_order"` // layout_blocks.sort_order
}

// BlockRow is a labelled row inside a seated grid.
type BlockRow struct {
	ID        string `db:"id"`
	LayoutID  uint64 `db:"layout_id"`
	BlockID   string `db:"block_id"`
	Label     string `db:"label"`
	SortOrder int    `db:"sort_order"`
}

// BlockSeat is one seat.  RowID is NULL for seats stored directly on the
// block (standing areas and flat grids).  TierID and Status are NULL when
// unassigned.
type BlockSeat struct {
	ID        string         `db:"id"`
	LayoutID  uint64         `db:"layout_id"`
	BlockID   string         `db:"block_id"`
	RowID     sql.NullString `db:"row_id"`
	Label     string         `db:"label"`
	TierID    sql.NullString `db:"tier_id"`
	Status    sql.NullString `db:"status"`
	SortOrder int            `db:"sort_order"`
}

// Tier is a price level defined for a layout.
type Tier struct {
	ID       string          `db:"id"`
	LayoutID uint64          `db:"layout_id"`
	Name     string          `db:"name"`
	Price    decimal.Decimal `db:"price"`
	Color    string          `db:"color"`
}

// ToTier converts the row into the inventory tier.
func (t Tier) ToTier() inventory.Tier {
	return inventory.Tier{ID: t.ID, Name: t.Name, Price: t.Price, Color: t.Color}
}

// ToSeat converts the row into an inventory seat.  Status is upper-cased;
// NULL becomes the empty status, which counts as available.
func (s BlockSeat) ToSeat() inventory.Seat {
	seat := inventory.Seat{ID: s.ID, Label: s.Label}
	if s.TierID.Valid && s.TierID.String != "" {
		id := s.TierID.String
		seat.TierID = &id
	}
	if s.Status.Valid {
		seat.Status = inventory.ParseSeatStatus(s.Status.String)
	}
	return seat
}

// ToBlock assembles the inventory block from the block row and its rows and
// seats, both already in display order.  Rows and seats belonging to other
// blocks are ignored.  Seats whose row is unknown go to a trailing unlabelled
// row when the grid has rows, and to the flat seat list otherwise.
func (b LayoutBlock) ToBlock(rows []BlockRow, seats []BlockSeat) (inventory.Block, error) {
	kind, err := inventory.ParseBlockKind(b.Kind)
	if err != nil {
		return nil, fmt.Errorf("block %s: %w", b.ID, err)
	}
	frame := inventory.Frame{
		ID:       b.ID,
		Name:     b.Name,
		Position: inventory.Position{X: nullFloat(b.PosX), Y: nullFloat(b.PosY)},
		Width:    nullFloat(b.Width),
		Height:   nullFloat(b.Height),
	}

	var gridRows []inventory.Row
	rowIndex := map[string]int{}
	for _, r := range rows {
		if r.BlockID != b.ID {
			continue
		}
		rowIndex[r.ID] = len(gridRows)
		gridRows = append(gridRows, inventory.Row{ID: r.ID, Label: r.Label, Seats: []inventory.Seat{}})
	}
	var flat []inventory.Seat
	for _, s := range seats {
		if s.BlockID != b.ID {
			continue
		}
		if i, ok := rowIndex[s.RowID.String]; ok && s.RowID.Valid {
			gridRows[i].Seats = append(gridRows[i].Seats, s.ToSeat())
			continue
		}
		flat = append(flat, s.ToSeat())
	}

	switch kind {
	case inventory.KindSeatedGrid:
		// counts read only the rows once a grid has any
		if len(gridRows) > 0 && len(flat) > 0 {
			gridRows = append(gridRows, inventory.Row{Seats: flat})
			flat = nil
		}
		return &inventory.SeatedGrid{
			Frame:    frame,
			Rows:     gridRows,
			RowCount: nullInt(b.RowCount),
			Columns:  nullInt(b.ColCount),
			Seats:    flat,
		}, nil
	case inventory.KindStandingCapacity:
		for _, r := range gridRows {
			flat = append(flat, r.Seats...)
		}
		return &inventory.StandingCapacity{Frame: frame, Capacity: b.Capacity, Seats: flat}, nil
	default:
		return &inventory.NonSellable{Frame: frame}, nil
	}
}

// AssembleBlocks converts every block row, grouping rows and seats by block.
func AssembleBlocks(blocks []LayoutBlock, rows []BlockRow, seats []BlockSeat) ([]inventory.Block, error) {
	rowsBy := map[string][]BlockRow{}
	for _, r := range rows {
		rowsBy[r.BlockID] = append(rowsBy[r.BlockID], r)
	}
	seatsBy := map[string][]BlockSeat{}
	for _, s := range seats {
		seatsBy[s.BlockID] = append(seatsBy[s.BlockID], s)
	}
	out := make([]inventory.Block, 0, len(blocks))
	for _, b := range blocks {
		block, err := b.ToBlock(rowsBy[b.ID], seatsBy[b.ID])
		if err != nil {
			return nil, err
		}
		out = append(out, block)
	}
	return out, nil
}

func nullFloat(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	return inventory.Float(n.Float64)
}

func nullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	return inventory.Int(int(n.Int64))
}
