package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/seat-inventory/internal/inventory"
	"github.com/iliyamo/seat-inventory/internal/model"
)

// LayoutRepo loads the block records of a seating layout.
type LayoutRepo struct {
	db *sqlx.DB
}

// NewLayoutRepo constructs a LayoutRepo with the given DB handle.
func NewLayoutRepo(db *sqlx.DB) *LayoutRepo {
	return &LayoutRepo{db: db}
}

// Exists reports whether the layout id is known.
func (r *LayoutRepo) Exists(ctx context.Context, layoutID uint64) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM layouts WHERE id = ?`, layoutID)
	return n > 0, err
}

// GetBlocks loads every block of the layout with its rows and seats, in
// display order.  A layout with no blocks yields an empty slice; an unknown
// layout yields ErrLayoutNotFound.
func (r *LayoutRepo) GetBlocks(ctx context.Context, layoutID uint64) ([]inventory.Block, error) {
	ok, err := r.Exists(ctx, layoutID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLayoutNotFound
	}

	var blocks []model.LayoutBlock
	const qb = `SELECT id, layout_id, kind, name, pos_x, pos_y, width, height,
	                   row_count, col_count, capacity, sort_order
	            FROM layout_blocks
	            WHERE layout_id = ?
	            ORDER BY sort_order, id`
	if err := r.db.SelectContext(ctx, &blocks, qb, layoutID); err != nil {
		return nil, err
	}
	if len(blocks) == 0 {
		return []inventory.Block{}, nil
	}

	var rows []model.BlockRow
	const qr = `SELECT id, layout_id, block_id, label, sort_order
	            FROM block_rows
	            WHERE layout_id = ?
	            ORDER BY block_id, sort_order, id`
	if err := r.db.SelectContext(ctx, &rows, qr, layoutID); err != nil {
		return nil, err
	}

	var seats []model.BlockSeat
	const qs = `SELECT id, layout_id, block_id, row_id, label, tier_id, status, sort_order
	            FROM block_seats
	            WHERE layout_id = ?
	            ORDER BY block_id, sort_order, id`
	if err := r.db.SelectContext(ctx, &seats, qs, layoutID); err != nil {
		return nil, err
	}

	return model.AssembleBlocks(blocks, rows, seats)
}

// TierRepo reads the price tiers of a layout.
type TierRepo struct {
	db *sqlx.DB
}

// NewTierRepo constructs a TierRepo with the given DB handle.
func NewTierRepo(db *sqlx.DB) *TierRepo {
	return &TierRepo{db: db}
}

// ListByLayout returns the layout's tiers ordered by price, then name.
func (r *TierRepo) ListByLayout(ctx context.Context, layoutID uint64) ([]inventory.Tier, error) {
	var rows []model.Tier
	const q = `SELECT id, layout_id, name, price, color
	           FROM tiers
	           WHERE layout_id = ?
	           ORDER BY price DESC, name`
	if err := r.db.SelectContext(ctx, &rows, q, layoutID); err != nil {
		return nil, err
	}
	out := make([]inventory.Tier, 0, len(rows))
	for _, t := range rows {
		out = append(out, t.ToTier())
	}
	return out, nil
}

// GetByIDs returns the layout's tiers keyed by id, restricted to ids.
// Unknown ids are absent from the map.
func (r *TierRepo) GetByIDs(ctx context.Context, layoutID uint64, ids []string) (map[string]inventory.Tier, error) {
	out := map[string]inventory.Tier{}
	if len(ids) == 0 {
		return out, nil
	}
	q, args, err := tiersByIDsQuery(sqlx.BindType(r.db.DriverName()), layoutID, ids)
	if err != nil {
		return nil, err
	}
	var rows []model.Tier
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	for _, t := range rows {
		out[t.ID] = t.ToTier()
	}
	return out, nil
}

// tiersByIDsQuery expands the id list into one placeholder per id for the
// driver's bind type.
func tiersByIDsQuery(bindType int, layoutID uint64, ids []string) (string, []any, error) {
	q, args, err := sqlx.In(`SELECT id, layout_id, name, price, color
	                         FROM tiers
	                         WHERE layout_id = ? AND id IN (?)`, layoutID, ids)
	if err != nil {
		return "", nil, err
	}
	return sqlx.Rebind(bindType, q), args, nil
}
