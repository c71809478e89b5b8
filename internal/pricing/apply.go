package pricing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// RejectReason classifies why a rule was not applied.
type RejectReason string

const (
	ReasonTierMismatch      RejectReason = "TIER_MISMATCH"
	ReasonMinimumSpend      RejectReason = "MINIMUM_SPEND"
	ReasonInsufficientItems RejectReason = "INSUFFICIENT_ITEMS"
	ReasonInvalidRule       RejectReason = "INVALID_RULE"
)

// Result is the outcome of applying a rule.  A non-empty Error means the
// discount was not applied: FinalPrice is the unchanged subtotal and
// DiscountAmount is zero.
type Result struct {
	FinalPrice     decimal.Decimal `json:"finalPrice"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Description    *string         `json:"description"`
	Reason         RejectReason    `json:"reason,omitempty"`
	Error          string          `json:"error,omitempty"`
}

// Applied reports whether the rule took effect.
func (r Result) Applied() bool { return r.Error == "" }

// FreeItemPolicy picks which eligible items a multi-buy rule gives away.
type FreeItemPolicy int

const (
	// FreeCheapest gives away the lowest-priced eligible items.
	FreeCheapest FreeItemPolicy = iota
	// FreeMostExpensive gives away the highest-priced eligible items.
	FreeMostExpensive
)

// ParseFreeItemPolicy maps "cheapest" / "most-expensive" to a policy.
func ParseFreeItemPolicy(s string) (FreeItemPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "cheapest":
		return FreeCheapest, nil
	case "most-expensive", "most_expensive", "priciest":
		return FreeMostExpensive, nil
	}
	return FreeCheapest, fmt.Errorf("unknown free item policy %q", s)
}

func (p FreeItemPolicy) String() string {
	if p == FreeMostExpensive {
		return "most-expensive"
	}
	return "cheapest"
}

// Evaluator applies rules under a fixed policy.  The zero value uses
// FreeCheapest.
type Evaluator struct {
	FreeItems FreeItemPolicy
}

// Apply evaluates rule with the default Evaluator.
func Apply(subtotal decimal.Decimal, rule *Rule, seats []SelectedSeat) Result {
	return Evaluator{}.Apply(subtotal, rule, seats)
}

// Apply evaluates rule against the cart.  A nil rule returns the subtotal
// unchanged.
func (e Evaluator) Apply(subtotal decimal.Decimal, rule *Rule, seats []SelectedSeat) Result {
	if rule == nil {
		return Result{FinalPrice: subtotal, DiscountAmount: decimal.Zero}
	}

	applicable := seats
	if len(rule.ApplicableTiers) > 0 {
		allowed := make(map[string]struct{}, len(rule.ApplicableTiers))
		names := make([]string, 0, len(rule.ApplicableTiers))
		for _, t := range rule.ApplicableTiers {
			allowed[t.ID] = struct{}{}
			names = append(names, t.Name)
		}
		applicable = make([]SelectedSeat, 0, len(seats))
		for _, s := range seats {
			if _, ok := allowed[s.Tier.ID]; ok {
				applicable = append(applicable, s)
			}
		}
		if len(applicable) == 0 {
			return reject(subtotal, ReasonTierMismatch,
				"no eligible items for this rule's tier restriction (requires: %s)", strings.Join(names, ", "))
		}
	}

	var discount decimal.Decimal
	params := concrete(rule.Parameters)
	switch p := params.(type) {
	case FlatOff:
		if p.MinSpend != nil && subtotal.LessThan(*p.MinSpend) {
			return reject(subtotal, ReasonMinimumSpend, "minimum spend of %s not met", money(*p.MinSpend))
		}
		discount = p.Amount
	case Percentage:
		if p.MinSpend != nil && subtotal.LessThan(*p.MinSpend) {
			return reject(subtotal, ReasonMinimumSpend, "minimum spend of %s not met", money(*p.MinSpend))
		}
		discount = subtotal.Mul(p.Percentage).Div(decimal.NewFromInt(100))
		if p.MaxDiscount != nil && discount.GreaterThan(*p.MaxDiscount) {
			discount = *p.MaxDiscount
		}
	case BuyNGetNFree:
		if p.BuyQuantity < 1 {
			return reject(subtotal, ReasonInvalidRule, "buy quantity must be at least 1")
		}
		if len(applicable) < p.BuyQuantity {
			return reject(subtotal, ReasonInsufficientItems,
				"insufficient eligible items: requires %d, found %d", p.BuyQuantity, len(applicable))
		}
		discount = e.freeItemsValue(applicable, p)
	default:
		return reject(subtotal, ReasonInvalidRule, "rule %q has no parameters", rule.Code)
	}

	discount = clamp(discount, subtotal)
	desc := Describe(params)
	return Result{
		FinalPrice:     decimal.Max(decimal.Zero, subtotal.Sub(discount)),
		DiscountAmount: discount,
		Description:    &desc,
	}
}

// freeItemsValue sums the prices of the items given away.  It sorts a copy
// so the caller's cart order is preserved.
func (e Evaluator) freeItemsValue(items []SelectedSeat, p BuyNGetNFree) decimal.Decimal {
	prices := make([]decimal.Decimal, len(items))
	for i, s := range items {
		prices[i] = s.Tier.Price
	}
	sort.SliceStable(prices, func(i, j int) bool {
		if e.FreeItems == FreeMostExpensive {
			return prices[i].GreaterThan(prices[j])
		}
		return prices[i].LessThan(prices[j])
	})
	free := (len(prices) / p.BuyQuantity) * max(p.GetQuantity, 0)
	free = min(free, len(prices))
	sum := decimal.Zero
	for _, price := range prices[:free] {
		sum = sum.Add(price)
	}
	return sum
}

// clamp bounds d to [0, subtotal].
func clamp(d, subtotal decimal.Decimal) decimal.Decimal {
	upper := decimal.Max(decimal.Zero, subtotal)
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(upper) {
		return upper
	}
	return d
}

func reject(subtotal decimal.Decimal, reason RejectReason, format string, args ...any) Result {
	return Result{
		FinalPrice:     subtotal,
		DiscountAmount: decimal.Zero,
		Reason:         reason,
		Error:          fmt.Sprintf(format, args...),
	}
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }
