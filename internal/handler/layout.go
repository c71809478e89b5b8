package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/seat-inventory/internal/inventory"
	"github.com/iliyamo/seat-inventory/internal/repository"
)

// BlockSource loads the blocks of a stored layout.  *repository.LayoutRepo
// satisfies it.
type BlockSource interface {
	GetBlocks(ctx context.Context, layoutID uint64) ([]inventory.Block, error)
}

// TierSource lists the price tiers of a stored layout.
// *repository.TierRepo satisfies it.
type TierSource interface {
	ListByLayout(ctx context.Context, layoutID uint64) ([]inventory.Tier, error)
}

// LayoutHandler serves normalized layouts and seat counts, both for stored
// layouts and for block lists posted by an editor preview.
type LayoutHandler struct {
	Blocks  BlockSource
	Tiers   TierSource
	Options inventory.Overrides // server-wide geometry overrides, from LAYOUT_OPTIONS_FILE
}

// normalizeRequest is the body of POST /v1/layouts/normalize and
// POST /v1/layouts/counts.  Options is ignored by the counts route.
type normalizeRequest struct {
	Blocks  inventory.BlockList `json:"blocks"`
	Options inventory.Overrides `json:"options"`
}

// queryOverrides maps the geometry query parameters onto Overrides.
var queryOverrides = map[string]func(*inventory.Overrides, float64){
	"padding":       func(o *inventory.Overrides, v float64) { o.Padding = &v },
	"seat_size":     func(o *inventory.Overrides, v float64) { o.SeatSize = &v },
	"seat_gap":      func(o *inventory.Overrides, v float64) { o.SeatGap = &v },
	"block_padding": func(o *inventory.Overrides, v float64) { o.BlockPadding = &v },
	"header_height": func(o *inventory.Overrides, v float64) { o.HeaderHeight = &v },
}

// GetLayout returns the normalized layout of a stored layout.  Geometry may
// be overridden per request with ?padding=, ?seat_size=, ?seat_gap=,
// ?block_padding= and ?header_height=.
func (h *LayoutHandler) GetLayout(c echo.Context) error {
	id, ok := layoutID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid layout id"})
	}
	ov := h.Options
	for name, set := range queryOverrides {
		raw := c.QueryParam(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid " + name})
		}
		set(&ov, v)
	}
	blocks, err := h.Blocks.GetBlocks(c.Request().Context(), id)
	if err != nil {
		return loadFailed(c, id, err)
	}
	return c.JSON(http.StatusOK, inventory.NormalizeSeatingLayout(blocks, ov))
}

// GetCounts returns seat tallies by status and tier for a stored layout.
func (h *LayoutHandler) GetCounts(c echo.Context) error {
	id, ok := layoutID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid layout id"})
	}
	blocks, err := h.Blocks.GetBlocks(c.Request().Context(), id)
	if err != nil {
		return loadFailed(c, id, err)
	}
	return c.JSON(http.StatusOK, inventory.AggregateSeatCounts(blocks))
}

// GetTiers lists the tiers defined for a layout, most expensive first.
func (h *LayoutHandler) GetTiers(c echo.Context) error {
	id, ok := layoutID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid layout id"})
	}
	tiers, err := h.Tiers.ListByLayout(c.Request().Context(), id)
	if err != nil {
		c.Logger().Errorf("list tiers for layout %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": tiers})
}

// Normalize normalizes a posted block list.  Request options are layered
// over the server-wide overrides.
func (h *LayoutHandler) Normalize(c echo.Context) error {
	var req normalizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": bindError(err)})
	}
	return c.JSON(http.StatusOK, inventory.NormalizeSeatingLayout(req.Blocks, h.Options.Overlay(req.Options)))
}

// Counts tallies a posted block list.
func (h *LayoutHandler) Counts(c echo.Context) error {
	var req normalizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": bindError(err)})
	}
	return c.JSON(http.StatusOK, inventory.AggregateSeatCounts(req.Blocks))
}

// loadFailed maps a block loading error to its response.
func loadFailed(c echo.Context, id uint64, err error) error {
	switch {
	case errors.Is(err, repository.ErrLayoutNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "layout not found"})
	case errors.Is(err, inventory.ErrUnknownBlockKind):
		c.Logger().Errorf("layout %d has an unreadable block: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "layout data is corrupt"})
	default:
		c.Logger().Errorf("load layout %d: %v", id, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}

// layoutID parses the :id path parameter as a positive integer.
func layoutID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// bindError extracts a client-facing message from a bind failure.
func bindError(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			return he.Internal.Error()
		}
		if msg, ok := he.Message.(string); ok {
			return msg
		}
	}
	return err.Error()
}
