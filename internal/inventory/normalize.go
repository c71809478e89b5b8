package inventory

import (
	"encoding/json"
	"math"
)

// NormalizedBlock is a block with its final canvas placement.
type NormalizedBlock struct {
	Block  Block
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// MarshalJSON emits the source block's fields with position, width and
// height replaced by the normalized values.
func (nb NormalizedBlock) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(nb.Block)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	pos, _ := json.Marshal(map[string]float64{"x": nb.X, "y": nb.Y})
	fields["position"] = pos
	fields["width"], _ = json.Marshal(nb.Width)
	fields["height"], _ = json.Marshal(nb.Height)
	return json.Marshal(fields)
}

// Layout is a set of blocks translated into a padded, non-negative frame.
type Layout struct {
	Blocks        []NormalizedBlock `json:"blocks"`
	ContentWidth  float64           `json:"contentWidth"`
	ContentHeight float64           `json:"contentHeight"`
	CanvasWidth   float64           `json:"canvasWidth"`
	CanvasHeight  float64           `json:"canvasHeight"`
	Padding       float64           `json:"padding"`
}

// NormalizeSeatingLayout places every block so that the content bounding
// box starts at (padding, padding) and reports content and canvas sizes.
// Authored coordinates may be negative or arbitrarily offset; missing ones
// count as zero.
func NormalizeSeatingLayout(blocks []Block, ov Overrides) Layout {
	opts := resolve(ov)
	padding := nonNegative(opts.Padding)
	out := Layout{Blocks: make([]NormalizedBlock, 0, len(blocks)), Padding: padding}

	type placed struct {
		block Block
		x, y  float64
		size  Size
	}
	items := make([]placed, 0, len(blocks))
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, b := range blocks {
		if b == nil {
			continue
		}
		f := b.BlockFrame()
		p := placed{
			block: b,
			x:     numberOr(f.Position.X, 0),
			y:     numberOr(f.Position.Y, 0),
			size:  estimate(b, opts),
		}
		minX, minY = math.Min(minX, p.x), math.Min(minY, p.y)
		maxX, maxY = math.Max(maxX, p.x+p.size.Width), math.Max(maxY, p.y+p.size.Height)
		items = append(items, p)
	}

	if len(items) == 0 {
		out.CanvasWidth, out.CanvasHeight = 2*padding, 2*padding
		return out
	}

	out.ContentWidth = math.Max(0, maxX-minX)
	out.ContentHeight = math.Max(0, maxY-minY)
	out.CanvasWidth = out.ContentWidth + 2*padding
	out.CanvasHeight = out.ContentHeight + 2*padding
	for _, p := range items {
		out.Blocks = append(out.Blocks, NormalizedBlock{
			Block:  p.block,
			X:      p.x - minX + padding,
			Y:      p.y - minY + padding,
			Width:  p.size.Width,
			Height: p.size.Height,
		})
	}
	return out
}
