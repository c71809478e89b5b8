package model

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/seat-inventory/internal/inventory"
	"github.com/iliyamo/seat-inventory/internal/pricing"
)

// DiscountRule is a stored promotion.  The parameter columns are a flattened
// union keyed by Kind:
//
//	PERCENTAGE        percentage, min_spend, max_discount
//	FLAT_OFF          amount, currency, min_spend
//	BUY_N_GET_N_FREE  buy_quantity, get_quantity
//
// Columns that do not belong to the kind are NULL.
type DiscountRule struct {
	ID           uint64              `db:"id"`            // discount_rules.id
	Code         string              `db:"code"`          // discount_rules.code (unique)
	Kind         string              `db:"kind"`          // discount_rules.kind
	Percentage   decimal.NullDecimal `db:"percentage"`    // discount_rules.percentage
	Amount       decimal.NullDecimal `db:"amount"`        // discount_rules.amount
	Currency     sql.NullString      `db:"currency"`      // discount_rules.currency
	MinSpend     decimal.NullDecimal `db:"min_spend"`     // discount_rules.min_spend
	MaxDiscount  decimal.NullDecimal `db:"max_discount"`  // discount_rules.max_discount
	BuyQuantity  sql.NullInt64       `db:"buy_quantity"`  // discount_rules.buy_quantity
	GetQuantity  sql.NullInt64       `db:"get_quantity"`  // discount_rules.get_quantity
	ActiveFrom   sql.NullTime        `db:"active_from"`   // discount_rules.active_from
	ExpiresAt    sql.NullTime        `db:"expires_at"`    // discount_rules.expires_at
	MaxUsage     sql.NullInt64       `db:"max_usage"`     // discount_rules.max_usage
	CurrentUsage int                 `db:"current_usage"` // discount_rules.current_usage
	IsActive     bool                `db:"is_active"`     // discount_rules.is_active
	IsPublic     bool                `db:"is_public"`     // discount_rules.is_public
	CreatedAt    time.Time           `db:"created_at"`    // discount_rules.created_at
}

// DiscountRuleTier restricts a rule to one tier.  A rule without tier rows
// applies to every seat.
type DiscountRuleTier struct {
	RuleID   uint64 `db:"rule_id"`
	TierID   string `db:"tier_id"`
	TierName string `db:"tier_name"`
}

// ToRule converts the row and its tier restrictions into a pricing rule.
// A row whose kind-specific columns are missing is rejected.
func (d DiscountRule) ToRule(tiers []DiscountRuleTier) (*pricing.Rule, error) {
	params, err := d.parameters()
	if err != nil {
		return nil, fmt.Errorf("discount %s: %w", d.Code, err)
	}
	used := d.CurrentUsage
	rule := &pricing.Rule{
		ID:           strconv.FormatUint(d.ID, 10),
		Code:         d.Code,
		Parameters:   params,
		ActiveFrom:   nullTime(d.ActiveFrom),
		ExpiresAt:    nullTime(d.ExpiresAt),
		MaxUsage:     nullInt(d.MaxUsage),
		CurrentUsage: &used,
		Active:       d.IsActive,
		Public:       d.IsPublic,
	}
	for _, t := range tiers {
		if t.RuleID != d.ID {
			continue
		}
		name := t.TierName
		if name == "" {
			name = t.TierID
		}
		rule.ApplicableTiers = append(rule.ApplicableTiers, inventory.Tier{ID: t.TierID, Name: name})
	}
	return rule, nil
}

func (d DiscountRule) parameters() (pricing.Parameters, error) {
	switch pricing.Kind(strings.ToUpper(strings.TrimSpace(d.Kind))) {
	case pricing.KindPercentage:
		if !d.Percentage.Valid {
			return nil, fmt.Errorf("percentage rule without percentage")
		}
		return pricing.Percentage{
			Percentage:  d.Percentage.Decimal,
			MinSpend:    nullDecimal(d.MinSpend),
			MaxDiscount: nullDecimal(d.MaxDiscount),
		}, nil
	case pricing.KindFlatOff:
		if !d.Amount.Valid {
			return nil, fmt.Errorf("flat-off rule without amount")
		}
		return pricing.FlatOff{
			Amount:   d.Amount.Decimal,
			Currency: d.Currency.String,
			MinSpend: nullDecimal(d.MinSpend),
		}, nil
	case pricing.KindBuyNGetNFree:
		if !d.BuyQuantity.Valid || !d.GetQuantity.Valid {
			return nil, fmt.Errorf("multi-buy rule without quantities")
		}
		return pricing.BuyNGetNFree{
			BuyQuantity: int(d.BuyQuantity.Int64),
			GetQuantity: int(d.GetQuantity.Int64),
		}, nil
	}
	return nil, fmt.Errorf("unknown discount kind %q", d.Kind)
}

func nullDecimal(n decimal.NullDecimal) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	return pricing.Dec(n.Decimal)
}

func nullTime(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}
