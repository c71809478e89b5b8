package inventory

import "math"

// Size is a width/height pair in layout units.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Options holds the resolved geometry constants for one computation.
type Options struct {
	SeatSize               float64 // edge length of a single seat glyph
	SeatGap                float64 // spacing between neighbouring seats
	BlockPadding           float64 // inner margin of a grid block, applied on each side
	HeaderHeight           float64 // label strip above a grid block's seats
	DefaultStandingSize    Size    // fallback size of a standing area
	DefaultNonSellableSize Size    // fallback size of a structural block
	Padding                float64 // canvas margin around the content bounding box
}

// DefaultOptions returns the built-in geometry constants.
func DefaultOptions() Options {
	return Options{
		SeatSize:               24,
		SeatGap:                6,
		BlockPadding:           16,
		HeaderHeight:           24,
		DefaultStandingSize:    Size{Width: 200, Height: 120},
		DefaultNonSellableSize: Size{Width: 160, Height: 80},
		Padding:                40,
	}
}

// SizeOverride overrides either axis of a default size.
type SizeOverride struct {
	Width  *float64 `json:"width,omitempty" yaml:"width"`
	Height *float64 `json:"height,omitempty" yaml:"height"`
}

// Overrides is the caller-facing subset of Options.  Nil and non-finite
// fields keep the default.
type Overrides struct {
	SeatSize               *float64      `json:"seatSize,omitempty" yaml:"seat_size"`
	SeatGap                *float64      `json:"seatGap,omitempty" yaml:"seat_gap"`
	BlockPadding           *float64      `json:"blockPadding,omitempty" yaml:"block_padding"`
	HeaderHeight           *float64      `json:"headerHeight,omitempty" yaml:"header_height"`
	DefaultStandingSize    *SizeOverride `json:"defaultStandingSize,omitempty" yaml:"default_standing_size"`
	DefaultNonSellableSize *SizeOverride `json:"defaultNonSellableSize,omitempty" yaml:"default_non_sellable_size"`
	Padding                *float64      `json:"padding,omitempty" yaml:"padding"`
}

// Merge applies ov on top of o and returns the result.  Later overrides win
// when Merge is chained.
func (o Options) Merge(ov Overrides) Options {
	o.SeatSize = numberOr(ov.SeatSize, o.SeatSize)
	o.SeatGap = numberOr(ov.SeatGap, o.SeatGap)
	o.BlockPadding = numberOr(ov.BlockPadding, o.BlockPadding)
	o.HeaderHeight = numberOr(ov.HeaderHeight, o.HeaderHeight)
	o.Padding = numberOr(ov.Padding, o.Padding)
	o.DefaultStandingSize = o.DefaultStandingSize.merge(ov.DefaultStandingSize)
	o.DefaultNonSellableSize = o.DefaultNonSellableSize.merge(ov.DefaultNonSellableSize)
	return o
}

// Overlay returns ov with every field set in top replacing its counterpart.
func (ov Overrides) Overlay(top Overrides) Overrides {
	pick := func(a, b *float64) *float64 {
		if b != nil {
			return b
		}
		return a
	}
	ov.SeatSize = pick(ov.SeatSize, top.SeatSize)
	ov.SeatGap = pick(ov.SeatGap, top.SeatGap)
	ov.BlockPadding = pick(ov.BlockPadding, top.BlockPadding)
	ov.HeaderHeight = pick(ov.HeaderHeight, top.HeaderHeight)
	ov.Padding = pick(ov.Padding, top.Padding)
	if top.DefaultStandingSize != nil {
		ov.DefaultStandingSize = top.DefaultStandingSize
	}
	if top.DefaultNonSellableSize != nil {
		ov.DefaultNonSellableSize = top.DefaultNonSellableSize
	}
	return ov
}

func (s Size) merge(ov *SizeOverride) Size {
	if ov == nil {
		return s
	}
	return Size{Width: numberOr(ov.Width, s.Width), Height: numberOr(ov.Height, s.Height)}
}

func resolve(ov Overrides) Options {
	return DefaultOptions().Merge(ov)
}

// numberOr is the single coercion point for optional numeric input: a
// missing, NaN or infinite value yields fallback.
func numberOr(v *float64, fallback float64) float64 {
	if v == nil || !finite(*v) {
		return fallback
	}
	return *v
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func nonNegative(f float64) float64 {
	if f < 0 || !finite(f) {
		return 0
	}
	return f
}

// Float returns a pointer to f, for building Overrides and positions in code.
func Float(f float64) *float64 { return &f }

// Int returns a pointer to n.
func Int(n int) *int { return &n }
