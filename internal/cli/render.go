package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/iliyamo/seat-inventory/internal/inventory"
)

var (
	blockStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
	titleStyle     = lipgloss.NewStyle().Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	structureStyle = blockStyle.BorderForeground(lipgloss.Color("8"))
)

// Seat glyphs by status.
var glyphs = map[inventory.SeatStatus]string{
	inventory.StatusAvailable: "o",
	inventory.StatusReserved:  "r",
	inventory.StatusBooked:    "x",
}

// renderSeatMap draws one bordered box per block in input order followed by
// a legend.  Seats are coloured with their tier's colour; unassigned and
// unknown tiers are grey.
func renderSeatMap(blocks []inventory.Block, tiers []inventory.Tier) string {
	colors := make(map[string]lipgloss.Color, len(tiers))
	for _, t := range tiers {
		if t.Color != "" {
			colors[t.ID] = lipgloss.Color(t.Color)
		}
	}
	seat := func(s inventory.Seat) string {
		g, ok := glyphs[s.EffectiveStatus()]
		if !ok {
			g = "?"
		}
		if s.TierID != nil {
			if c, ok := colors[*s.TierID]; ok {
				return lipgloss.NewStyle().Foreground(c).Render(g)
			}
		}
		return mutedStyle.Render(g)
	}
	seatLine := func(seats []inventory.Seat) string {
		parts := make([]string, len(seats))
		for i, s := range seats {
			parts[i] = seat(s)
		}
		return strings.Join(parts, " ")
	}

	boxes := make([]string, 0, len(blocks)+1)
	for _, b := range blocks {
		box := inventory.Match(b,
			func(g *inventory.SeatedGrid) string {
				lines := []string{titleStyle.Render(blockTitle(g.Frame, "grid"))}
				if g.Rows != nil {
					width := 0
					for _, r := range g.Rows {
						width = max(width, len(r.Label))
					}
					for _, r := range g.Rows {
						lines = append(lines, fmt.Sprintf("%-*s %s", width, r.Label, seatLine(r.Seats)))
					}
				} else if len(g.Seats) > 0 {
					lines = append(lines, seatLine(g.Seats))
				} else {
					lines = append(lines, mutedStyle.Render(gridShapeNote(g)))
				}
				return blockStyle.Render(strings.Join(lines, "\n"))
			},
			func(s *inventory.StandingCapacity) string {
				lines := []string{
					titleStyle.Render(blockTitle(s.Frame, "standing")),
					fmt.Sprintf("capacity %d, %d sellable", s.Capacity, inventory.SeatCount(s)),
				}
				if len(s.Seats) > 0 {
					lines = append(lines, seatLine(s.Seats))
				}
				return blockStyle.Render(strings.Join(lines, "\n"))
			},
			func(n *inventory.NonSellable) string {
				return structureStyle.Render(mutedStyle.Render(blockTitle(n.Frame, "structure")))
			},
		)
		boxes = append(boxes, box)
	}
	boxes = append(boxes, legend(tiers))
	return lipgloss.JoinVertical(lipgloss.Left, boxes...)
}

func blockTitle(f inventory.Frame, kind string) string {
	name := f.Name
	if name == "" {
		name = f.ID
	}
	if name == "" {
		return kind
	}
	return fmt.Sprintf("%s [%s]", name, kind)
}

func gridShapeNote(g *inventory.SeatedGrid) string {
	rows, cols := "?", "?"
	if g.RowCount != nil {
		rows = fmt.Sprint(*g.RowCount)
	}
	if g.Columns != nil {
		cols = fmt.Sprint(*g.Columns)
	}
	return fmt.Sprintf("%s x %s seats (not loaded)", rows, cols)
}

func legend(tiers []inventory.Tier) string {
	out := mutedStyle.Render("o available  r reserved  x booked")
	parts := make([]string, 0, len(tiers))
	for _, t := range tiers {
		swatch := mutedStyle.Render("■")
		if t.Color != "" {
			swatch = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color)).Render("■")
		}
		parts = append(parts, fmt.Sprintf("%s %s %s", swatch, t.Name, t.Price.StringFixed(2)))
	}
	if len(parts) == 0 {
		return out
	}
	return out + "\n" + strings.Join(parts, "  ")
}
