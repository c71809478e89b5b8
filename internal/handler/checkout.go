package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/seat-inventory/internal/inventory"
	"github.com/iliyamo/seat-inventory/internal/middleware"
	"github.com/iliyamo/seat-inventory/internal/pricing"
	"github.com/iliyamo/seat-inventory/internal/queue"
	"github.com/iliyamo/seat-inventory/internal/repository"
	"github.com/iliyamo/seat-inventory/internal/service"
)

// DiscountStore reads rules and records their usage.
// *repository.DiscountRepo satisfies it.
type DiscountStore interface {
	GetByCode(ctx context.Context, code string) (*pricing.Rule, error)
	IncrementUsage(ctx context.Context, ruleID uint64) error
}

// TierPricer resolves stored tiers by id.  *repository.TierRepo satisfies it.
type TierPricer interface {
	GetByIDs(ctx context.Context, layoutID uint64, ids []string) (map[string]inventory.Tier, error)
}

// CheckoutHandler prices carts against discount codes.
type CheckoutHandler struct {
	Discounts DiscountStore
	Tiers     TierPricer // optional; used when a request names its layout
	Publisher service.Publisher
	Evaluator pricing.Evaluator
	Now       func() time.Time // defaults to time.Now
}

// quoteRequest is the body of the quote and redeem routes.  Subtotal
// defaults to the sum of the seats' tier prices when omitted.  When LayoutID
// is set, each seat's tier is replaced by the stored tier of that layout.
type quoteRequest struct {
	LayoutID *uint64                `json:"layoutId"`
	Subtotal *decimal.Decimal       `json:"subtotal"`
	Code     string                 `json:"code"`
	Seats    []pricing.SelectedSeat `json:"seats"`
}

// quoteResponse echoes the priced input alongside the evaluation result.
type quoteResponse struct {
	Code     string          `json:"code,omitempty"`
	Subtotal decimal.Decimal `json:"subtotal"`
	pricing.Result
}

// discountSummary is the public view of a rule.
type discountSummary struct {
	Code        string     `json:"code"`
	Kind        string     `json:"kind"`
	Description string     `json:"description"`
	Tiers       []string   `json:"tiers,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

func (h *CheckoutHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// GetDiscount describes a public discount code.  Unknown and non-public
// codes both answer 404 so private codes cannot be probed.
func (h *CheckoutHandler) GetDiscount(c echo.Context) error {
	rule, err := h.Discounts.GetByCode(c.Request().Context(), c.Param("code"))
	if err != nil && !errors.Is(err, repository.ErrDiscountNotFound) {
		c.Logger().Errorf("get discount %q: %v", c.Param("code"), err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if rule == nil || !rule.Public || rule.Parameters == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "discount not found"})
	}
	out := discountSummary{
		Code:        rule.Code,
		Kind:        string(rule.Parameters.Kind()),
		Description: pricing.Describe(rule.Parameters),
		ExpiresAt:   rule.ExpiresAt,
	}
	for _, t := range rule.ApplicableTiers {
		out.Tiers = append(out.Tiers, t.Name)
	}
	return c.JSON(http.StatusOK, out)
}

// Quote prices the cart.  A rule that evaluates to a rejection (wrong tier,
// minimum spend, too few items) still answers 200 with the reason in the
// body; an unknown code is 404 and a code outside its validity window or
// usage limit is 409.
func (h *CheckoutHandler) Quote(c echo.Context) error {
	req, rule, status, msg := h.prepare(c)
	if status != 0 {
		return c.JSON(status, echo.Map{"error": msg})
	}
	res := h.Evaluator.Apply(*req.Subtotal, rule, req.Seats)
	return c.JSON(http.StatusOK, quoteResponse{Code: codeOf(rule), Subtotal: *req.Subtotal, Result: res})
}

// Redeem prices the cart, consumes one use of the code and publishes a
// discount.redeemed event.  The usage increment is guarded in SQL, so a code
// that ran out between quote and redeem answers 409.  A rejected evaluation
// answers 422 and does not consume a use.  Publish failures are logged and
// do not fail the request.
func (h *CheckoutHandler) Redeem(c echo.Context) error {
	req, rule, status, msg := h.prepare(c)
	if status != 0 {
		return c.JSON(status, echo.Map{"error": msg})
	}
	if rule == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code is required"})
	}
	res := h.Evaluator.Apply(*req.Subtotal, rule, req.Seats)
	resp := quoteResponse{Code: rule.Code, Subtotal: *req.Subtotal, Result: res}
	if !res.Applied() {
		return c.JSON(http.StatusUnprocessableEntity, resp)
	}

	ruleID, err := strconv.ParseUint(rule.ID, 10, 64)
	if err != nil {
		c.Logger().Errorf("discount %s has non-numeric id %q", rule.Code, rule.ID)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "invalid rule"})
	}
	ctx := c.Request().Context()
	if err := h.Discounts.IncrementUsage(ctx, ruleID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": pricing.ErrUsageExhausted.Error()})
		}
		c.Logger().Errorf("increment usage of %s: %v", rule.Code, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	userID, _ := middleware.NumericUserID(c)
	ev := queue.DiscountRedeemedEvent{
		UserID:         userID,
		Code:           rule.Code,
		RuleID:         rule.ID,
		Kind:           string(rule.Parameters.Kind()),
		Subtotal:       *req.Subtotal,
		DiscountAmount: res.DiscountAmount,
		FinalPrice:     res.FinalPrice,
		RedeemedAt:     h.now().UTC(),
	}
	for _, s := range req.Seats {
		ev.SeatIDs = append(ev.SeatIDs, s.ID)
	}
	if h.Publisher != nil {
		if err := h.Publisher.PublishDiscountRedeemed(context.WithoutCancel(ctx), ev); err != nil {
			c.Logger().Warnf("publish redemption of %s: %v", rule.Code, err)
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// prepare binds the request and resolves the code.  A non-zero status means
// the request must be answered with msg.  rule is nil when no code was sent.
func (h *CheckoutHandler) prepare(c echo.Context) (req quoteRequest, rule *pricing.Rule, status int, msg string) {
	if err := c.Bind(&req); err != nil {
		return req, nil, http.StatusBadRequest, bindError(err)
	}
	if req.LayoutID != nil && h.Tiers != nil {
		if status, msg := h.priceSeats(c, *req.LayoutID, req.Seats); status != 0 {
			return req, nil, status, msg
		}
	}
	if req.Subtotal == nil {
		sum := decimal.Zero
		for _, s := range req.Seats {
			sum = sum.Add(s.Tier.Price)
		}
		req.Subtotal = &sum
	}
	if req.Subtotal.IsNegative() {
		return req, nil, http.StatusBadRequest, "subtotal must not be negative"
	}
	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" {
		return req, nil, 0, ""
	}

	rule, err := h.Discounts.GetByCode(c.Request().Context(), req.Code)
	switch {
	case errors.Is(err, repository.ErrDiscountNotFound):
		return req, nil, http.StatusNotFound, "discount not found"
	case err != nil:
		c.Logger().Errorf("get discount %q: %v", req.Code, err)
		return req, nil, http.StatusInternalServerError, "database error"
	}
	if err := pricing.CheckRedeemable(rule, h.now()); err != nil {
		return req, nil, http.StatusConflict, err.Error()
	}
	return req, rule, 0, ""
}

// priceSeats overwrites the client-sent tiers with the layout's stored ones.
func (h *CheckoutHandler) priceSeats(c echo.Context, layoutID uint64, seats []pricing.SelectedSeat) (int, string) {
	ids := make([]string, 0, len(seats))
	for _, s := range seats {
		ids = append(ids, seatTierID(s))
	}
	tiers, err := h.Tiers.GetByIDs(c.Request().Context(), layoutID, ids)
	if err != nil {
		c.Logger().Errorf("tiers of layout %d: %v", layoutID, err)
		return http.StatusInternalServerError, "database error"
	}
	for i, s := range seats {
		id := seatTierID(s)
		t, ok := tiers[id]
		if !ok {
			return http.StatusBadRequest, fmt.Sprintf("seat %s has unknown tier %q", s.ID, id)
		}
		seats[i].Tier = t
	}
	return 0, ""
}

// seatTierID prefers the embedded tier object over the seat's tierId.
func seatTierID(s pricing.SelectedSeat) string {
	if s.Tier.ID != "" {
		return s.Tier.ID
	}
	if s.TierID != nil {
		return *s.TierID
	}
	return ""
}

func codeOf(rule *pricing.Rule) string {
	if rule == nil {
		return ""
	}
	return rule.Code
}
