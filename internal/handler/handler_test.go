package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/seat-inventory/internal/inventory"
	"github.com/iliyamo/seat-inventory/internal/middleware"
	"github.com/iliyamo/seat-inventory/internal/pricing"
	"github.com/iliyamo/seat-inventory/internal/queue"
	"github.com/iliyamo/seat-inventory/internal/repository"
)

type fakeLayouts map[uint64][]inventory.Block

func (f fakeLayouts) GetBlocks(_ context.Context, id uint64) ([]inventory.Block, error) {
	if id == 500 {
		return nil, errors.New("connection refused")
	}
	b, ok := f[id]
	if !ok {
		return nil, repository.ErrLayoutNotFound
	}
	return b, nil
}

func (f fakeLayouts) ListByLayout(_ context.Context, id uint64) ([]inventory.Tier, error) {
	if _, ok := f[id]; !ok {
		return []inventory.Tier{}, nil
	}
	return []inventory.Tier{{ID: "vip", Name: "VIP", Price: decimal.NewFromInt(30)}}, nil
}

type fakeDiscounts struct {
	rules     map[string]*pricing.Rule
	increment error
	used      int
}

func (f *fakeDiscounts) GetByCode(_ context.Context, code string) (*pricing.Rule, error) {
	if r, ok := f.rules[strings.ToUpper(code)]; ok {
		return r, nil
	}
	return nil, repository.ErrDiscountNotFound
}

func (f *fakeDiscounts) IncrementUsage(context.Context, uint64) error {
	if f.increment != nil {
		return f.increment
	}
	f.used++
	return nil
}

type recordingPublisher struct {
	events []queue.DiscountRedeemedEvent
	err    error
}

func (p *recordingPublisher) PublishDiscountRedeemed(_ context.Context, ev queue.DiscountRedeemedEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func tierPtr(s string) *string { return &s }

func sampleLayouts() fakeLayouts {
	return fakeLayouts{
		1: {
			&inventory.SeatedGrid{
				Frame: inventory.Frame{ID: "stalls", Position: inventory.Position{X: inventory.Float(-100), Y: inventory.Float(0)}},
				Rows: []inventory.Row{{ID: "A", Seats: []inventory.Seat{
					{ID: "A1", TierID: tierPtr("vip"), Status: inventory.StatusBooked},
					{ID: "A2", TierID: tierPtr("vip")},
				}}},
			},
			&inventory.StandingCapacity{Frame: inventory.Frame{ID: "pit", Position: inventory.Position{X: inventory.Float(200)}}, Capacity: 50},
		},
	}
}

func newLayoutServer() *echo.Echo {
	e := echo.New()
	l := sampleLayouts()
	h := &LayoutHandler{Blocks: l, Tiers: l}
	e.GET("/v1/layouts/:id", h.GetLayout)
	e.GET("/v1/layouts/:id/counts", h.GetCounts)
	e.GET("/v1/layouts/:id/tiers", h.GetTiers)
	e.POST("/v1/layouts/normalize", h.Normalize)
	e.POST("/v1/layouts/counts", h.Counts)
	return e
}

func request(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	e := echo.New()
	e.GET("/healthz", Health)
	rec := request(e, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("expected ok, got %d %q", rec.Code, rec.Body)
	}
}

func TestGetLayout(t *testing.T) {
	e := newLayoutServer()
	rec := request(e, http.MethodGet, "/v1/layouts/1?padding=10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var out struct {
		Padding float64 `json:"padding"`
		Blocks  []struct {
			ID       string             `json:"id"`
			Type     string             `json:"type"`
			Position map[string]float64 `json:"position"`
		} `json:"blocks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Padding != 10 || len(out.Blocks) != 2 {
		t.Fatalf("unexpected layout: %+v", out)
	}
	if out.Blocks[0].Position["x"] != 10 || out.Blocks[1].Position["x"] != 310 {
		t.Fatalf("expected blocks shifted by the min x, got %+v", out.Blocks)
	}
	if out.Blocks[0].Type != "SEATED_GRID" {
		t.Fatalf("expected type on block, got %q", out.Blocks[0].Type)
	}
}

func TestGetLayoutErrors(t *testing.T) {
	e := newLayoutServer()
	tests := []struct {
		target string
		status int
	}{
		{"/v1/layouts/abc", http.StatusBadRequest},
		{"/v1/layouts/0", http.StatusBadRequest},
		{"/v1/layouts/1?seat_size=big", http.StatusBadRequest},
		{"/v1/layouts/1?padding=NaN", http.StatusBadRequest},
		{"/v1/layouts/9", http.StatusNotFound},
		{"/v1/layouts/500", http.StatusInternalServerError},
		{"/v1/layouts/9/counts", http.StatusNotFound},
	}
	for _, tt := range tests {
		if rec := request(e, http.MethodGet, tt.target, ""); rec.Code != tt.status {
			t.Fatalf("%s: expected %d, got %d", tt.target, tt.status, rec.Code)
		}
	}
}

func TestGetCounts(t *testing.T) {
	e := newLayoutServer()
	rec := request(e, http.MethodGet, "/v1/layouts/1/counts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out struct {
		ByStatus map[string]int `json:"byStatus"`
		Total    int            `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Total != 52 || out.ByStatus["BOOKED"] != 1 || out.ByStatus["AVAILABLE"] != 51 || out.ByStatus["RESERVED"] != 0 {
		t.Fatalf("unexpected counts: %+v", out)
	}
}

func TestGetTiers(t *testing.T) {
	rec := request(newLayoutServer(), http.MethodGet, "/v1/layouts/1/tiers", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"VIP"`) {
		t.Fatalf("unexpected tiers response: %d %s", rec.Code, rec.Body)
	}
}

func TestNormalizeAndCountsPosted(t *testing.T) {
	e := newLayoutServer()
	body := `{"blocks": [{"type": "standing", "id": "ga", "capacity": "120", "position": {"x": -50, "y": -50}},
	                     {"type": "stage", "id": "s"}], "options": {"padding": 0}}`
	if rec := request(e, http.MethodPost, "/v1/layouts/normalize", body); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected unknown block type to be rejected, got %d", rec.Code)
	}

	body = `{"blocks": [{"type": "standing", "id": "ga", "capacity": "120", "position": {"x": -50, "y": -50}},
	                    {"type": "non_sellable", "id": "s"}], "options": {"padding": 0}}`
	rec := request(e, http.MethodPost, "/v1/layouts/normalize", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var layout struct {
		CanvasWidth  float64 `json:"canvasWidth"`
		CanvasHeight float64 `json:"canvasHeight"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &layout); err != nil {
		t.Fatal(err)
	}
	// standing 200x120 at (-50,-50), non-sellable 160x80 at (0,0)
	if layout.CanvasWidth != 210 || layout.CanvasHeight != 130 {
		t.Fatalf("unexpected canvas: %+v", layout)
	}

	rec = request(e, http.MethodPost, "/v1/layouts/counts", body)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"total":120`) {
		t.Fatalf("unexpected counts: %d %s", rec.Code, rec.Body)
	}
	if rec := request(e, http.MethodPost, "/v1/layouts/counts", `{"blocks": 3}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed blocks, got %d", rec.Code)
	}
}

func checkoutServer(d *fakeDiscounts, p *recordingPublisher, now time.Time) *echo.Echo {
	e := echo.New()
	h := &CheckoutHandler{Discounts: d, Publisher: p, Now: func() time.Time { return now }}
	e.GET("/v1/discounts/:code", h.GetDiscount)
	e.POST("/v1/checkout/quote", h.Quote)
	// stands in for JWTAuth
	auth := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.ContextUserID, "42")
			return next(c)
		}
	}
	e.POST("/v1/checkout/redeem", h.Redeem, auth)
	return e
}

func sampleDiscounts(now time.Time) *fakeDiscounts {
	past, future := now.Add(-time.Hour), now.Add(time.Hour)
	one, zero := 1, 0
	return &fakeDiscounts{rules: map[string]*pricing.Rule{
		"BOGO": {ID: "7", Code: "BOGO", Active: true, Public: true, ExpiresAt: &future,
			Parameters: pricing.BuyNGetNFree{BuyQuantity: 2, GetQuantity: 1}},
		"STAFF": {ID: "8", Code: "STAFF", Active: true,
			Parameters: pricing.Percentage{Percentage: decimal.NewFromInt(50)}},
		"OLD": {ID: "9", Code: "OLD", Active: true, Public: true, ExpiresAt: &past,
			Parameters: pricing.FlatOff{Amount: decimal.NewFromInt(5)}},
		"ONCE": {ID: "10", Code: "ONCE", Active: true, MaxUsage: &one, CurrentUsage: &zero,
			Parameters: pricing.FlatOff{Amount: decimal.NewFromInt(5), MinSpend: pricing.Dec(decimal.NewFromInt(100))}},
	}}
}

const cart = `"seats": [
  {"id": "A1", "tier": {"id": "vip", "name": "VIP", "price": 30}},
  {"id": "A2", "tier": {"id": "std", "name": "Standard", "price": 10}},
  {"id": "A3", "tier": {"id": "std", "name": "Standard", "price": 20}}]`

type quoteBody struct {
	Subtotal       decimal.Decimal      `json:"subtotal"`
	FinalPrice     decimal.Decimal      `json:"finalPrice"`
	DiscountAmount decimal.Decimal      `json:"discountAmount"`
	Description    *string              `json:"description"`
	Reason         pricing.RejectReason `json:"reason"`
	Error          string               `json:"error"`
}

func decodeQuote(t *testing.T, rec *httptest.ResponseRecorder) quoteBody {
	t.Helper()
	var q quoteBody
	if err := json.Unmarshal(rec.Body.Bytes(), &q); err != nil {
		t.Fatalf("decode %s: %v", rec.Body, err)
	}
	return q
}

func TestGetDiscount(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	e := checkoutServer(sampleDiscounts(now), &recordingPublisher{}, now)
	rec := request(e, http.MethodGet, "/v1/discounts/bogo", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Buy 2, get 1 free") {
		t.Fatalf("unexpected response: %d %s", rec.Code, rec.Body)
	}
	for _, code := range []string{"STAFF", "NOPE"} {
		if rec := request(e, http.MethodGet, "/v1/discounts/"+code, ""); rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", code, rec.Code)
		}
	}
}

func TestQuote(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	e := checkoutServer(sampleDiscounts(now), &recordingPublisher{}, now)

	rec := request(e, http.MethodPost, "/v1/checkout/quote", `{"code": "bogo", `+cart+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	q := decodeQuote(t, rec)
	if !q.Subtotal.Equal(decimal.NewFromInt(60)) || !q.DiscountAmount.Equal(decimal.NewFromInt(10)) || !q.FinalPrice.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("unexpected quote: %+v", q)
	}

	rec = request(e, http.MethodPost, "/v1/checkout/quote", `{"subtotal": "60", `+cart+`}`)
	if q := decodeQuote(t, rec); rec.Code != http.StatusOK || !q.FinalPrice.Equal(decimal.NewFromInt(60)) || q.Description != nil {
		t.Fatalf("expected undiscounted quote, got %d %+v", rec.Code, q)
	}

	rec = request(e, http.MethodPost, "/v1/checkout/quote", `{"code": "ONCE", `+cart+`}`)
	q = decodeQuote(t, rec)
	if rec.Code != http.StatusOK || q.Reason != pricing.ReasonMinimumSpend || !q.FinalPrice.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected minimum spend rejection, got %d %+v", rec.Code, q)
	}
}

func TestQuoteErrors(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	e := checkoutServer(sampleDiscounts(now), &recordingPublisher{}, now)
	tests := []struct {
		body   string
		status int
	}{
		{`{"code": "NOPE", ` + cart + `}`, http.StatusNotFound},
		{`{"code": "OLD", ` + cart + `}`, http.StatusConflict},
		{`{"subtotal": "-1"}`, http.StatusBadRequest},
		{`{"seats": "x"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		if rec := request(e, http.MethodPost, "/v1/checkout/quote", tt.body); rec.Code != tt.status {
			t.Fatalf("%s: expected %d, got %d: %s", tt.body, tt.status, rec.Code, rec.Body)
		}
	}
}

func TestRedeem(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	d := sampleDiscounts(now)
	p := &recordingPublisher{err: errors.New("broker down")}
	e := checkoutServer(d, p, now)

	rec := request(e, http.MethodPost, "/v1/checkout/redeem", `{"code": "BOGO", `+cart+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 despite publish failure, got %d: %s", rec.Code, rec.Body)
	}
	if d.used != 1 || len(p.events) != 1 {
		t.Fatalf("expected one use and one event, got %d %d", d.used, len(p.events))
	}
	ev := p.events[0]
	if ev.UserID != 42 || ev.RuleID != "7" || ev.Kind != "BUY_N_GET_N_FREE" || len(ev.SeatIDs) != 3 || !ev.RedeemedAt.Equal(now) {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if !ev.DiscountAmount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected discount 10 in event, got %s", ev.DiscountAmount)
	}
}

func TestRedeemRejections(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	d := sampleDiscounts(now)
	p := &recordingPublisher{}
	e := checkoutServer(d, p, now)

	if rec := request(e, http.MethodPost, "/v1/checkout/redeem", `{`+cart+`}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without code, got %d", rec.Code)
	}
	if rec := request(e, http.MethodPost, "/v1/checkout/redeem", `{"code": "ONCE", `+cart+`}`); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for minimum spend, got %d", rec.Code)
	}
	d.increment = repository.ErrConflict
	if rec := request(e, http.MethodPost, "/v1/checkout/redeem", `{"code": "BOGO", `+cart+`}`); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 when usage ran out, got %d", rec.Code)
	}
	if d.used != 0 || len(p.events) != 0 {
		t.Fatalf("expected no use and no event, got %d %d", d.used, len(p.events))
	}
}

type fakeTierPricer map[uint64][]inventory.Tier

func (f fakeTierPricer) GetByIDs(_ context.Context, layoutID uint64, ids []string) (map[string]inventory.Tier, error) {
	out := map[string]inventory.Tier{}
	for _, t := range f[layoutID] {
		for _, id := range ids {
			if t.ID == id {
				out[id] = t
			}
		}
	}
	return out, nil
}

func TestQuoteUsesStoredTierPrices(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	e := echo.New()
	h := &CheckoutHandler{
		Discounts: sampleDiscounts(now),
		Tiers: fakeTierPricer{1: {
			{ID: "vip", Name: "VIP", Price: decimal.NewFromInt(40)},
			{ID: "std", Name: "Standard", Price: decimal.NewFromInt(15)},
		}},
		Now: func() time.Time { return now },
	}
	e.POST("/v1/checkout/quote", h.Quote)

	// client prices are ignored once the layout is named
	rec := request(e, http.MethodPost, "/v1/checkout/quote", `{"layoutId": 1, "code": "BOGO", `+cart+`}`)
	q := decodeQuote(t, rec)
	if rec.Code != http.StatusOK || !q.Subtotal.Equal(decimal.NewFromInt(70)) || !q.DiscountAmount.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected stored prices, got %d %+v", rec.Code, q)
	}

	rec = request(e, http.MethodPost, "/v1/checkout/quote", `{"layoutId": 1, "seats": [{"id": "B1", "tierId": "std"}]}`)
	if q := decodeQuote(t, rec); rec.Code != http.StatusOK || !q.Subtotal.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected tierId lookup, got %d %+v", rec.Code, q)
	}

	rec = request(e, http.MethodPost, "/v1/checkout/quote", `{"layoutId": 2, `+cart+`}`)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "unknown tier") {
		t.Fatalf("expected unknown tier rejection, got %d %s", rec.Code, rec.Body)
	}
}
