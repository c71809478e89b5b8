package inventory

// EstimateBlockDimensions returns the size a block occupies on the canvas.
// Explicit finite width and height win per axis; missing axes are derived
// from the block's grid shape or its kind's default size.
func EstimateBlockDimensions(b Block, ov Overrides) Size {
	return estimate(b, resolve(ov))
}

func estimate(b Block, opts Options) Size {
	if b == nil {
		return Size{}
	}
	f := b.BlockFrame()
	if f.Width != nil && f.Height != nil && finite(*f.Width) && finite(*f.Height) {
		return Size{Width: nonNegative(*f.Width), Height: nonNegative(*f.Height)}
	}
	fallback := Match(b,
		func(g *SeatedGrid) Size { return gridSize(g, opts) },
		func(*StandingCapacity) Size { return opts.DefaultStandingSize },
		func(*NonSellable) Size { return opts.DefaultNonSellableSize },
	)
	return Size{
		Width:  nonNegative(numberOr(f.Width, fallback.Width)),
		Height: nonNegative(numberOr(f.Height, fallback.Height)),
	}
}

// gridShape reports the row count and seats per row of a grid, each at
// least one.
func gridShape(g *SeatedGrid) (rows, cols int) {
	switch {
	case g.Rows != nil:
		rows = len(g.Rows)
	case g.RowCount != nil:
		rows = *g.RowCount
	}
	if g.Rows != nil {
		for _, r := range g.Rows {
			if len(r.Seats) > cols {
				cols = len(r.Seats)
			}
		}
	} else if g.Columns != nil {
		cols = *g.Columns
	}
	return max(rows, 1), max(cols, 1)
}

func gridSize(g *SeatedGrid, opts Options) Size {
	rows, cols := gridShape(g)
	seatWidth := float64(cols)*opts.SeatSize + float64(cols-1)*opts.SeatGap
	seatHeight := float64(rows)*opts.SeatSize + float64(rows-1)*opts.SeatGap
	return Size{
		Width:  seatWidth + 2*opts.BlockPadding,
		Height: seatHeight + 2*opts.BlockPadding + opts.HeaderHeight,
	}
}
