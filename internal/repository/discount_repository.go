package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/seat-inventory/internal/model"
	"github.com/iliyamo/seat-inventory/internal/pricing"
)

// DiscountRepo reads discount rules and tracks their usage.
type DiscountRepo struct {
	db *sqlx.DB
}

// NewDiscountRepo constructs a DiscountRepo with the given DB handle.
func NewDiscountRepo(db *sqlx.DB) *DiscountRepo {
	return &DiscountRepo{db: db}
}

const discountColumns = `id, code, kind, percentage, amount, currency, min_spend, max_discount,
	buy_quantity, get_quantity, active_from, expires_at, max_usage, current_usage,
	is_active, is_public, created_at`

// GetByCode loads the rule for a code, matched case-insensitively, with its
// tier restrictions.
func (r *DiscountRepo) GetByCode(ctx context.Context, code string) (*pricing.Rule, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrDiscountNotFound
	}
	var row model.DiscountRule
	q := `SELECT ` + discountColumns + ` FROM discount_rules WHERE UPPER(code) = UPPER(?) LIMIT 1`
	if err := r.db.GetContext(ctx, &row, q, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDiscountNotFound
		}
		return nil, err
	}

	var tiers []model.DiscountRuleTier
	const qt = `SELECT rule_id, tier_id, tier_name FROM discount_rule_tiers WHERE rule_id = ? ORDER BY tier_id`
	if err := r.db.SelectContext(ctx, &tiers, qt, row.ID); err != nil {
		return nil, err
	}
	return row.ToRule(tiers)
}

// IncrementUsage bumps current_usage by one if the rule is still active
// and under its limit.  The guard lives in the UPDATE itself so concurrent
// redemptions cannot overshoot max_usage; when it matches nothing the call
// returns ErrConflict.
func (r *DiscountRepo) IncrementUsage(ctx context.Context, ruleID uint64) error {
	const q = `UPDATE discount_rules
	           SET current_usage = current_usage + 1
	           WHERE id = ?
	             AND is_active = 1
	             AND (max_usage IS NULL OR current_usage < max_usage)`
	res, err := r.db.ExecContext(ctx, q, ruleID)
	if err != nil {
		return err
	}
	return usageApplied(res)
}

// usageApplied maps an UPDATE that matched no row to ErrConflict.
func usageApplied(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}
