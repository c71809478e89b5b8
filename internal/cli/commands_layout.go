package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/iliyamo/seat-inventory/internal/config"
	"github.com/iliyamo/seat-inventory/internal/inventory"
)

func newLayoutCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Inspect seating layout files.",
	}
	cmd.AddCommand(newLayoutNormalizeCommand())
	cmd.AddCommand(newLayoutCountsCommand())
	cmd.AddCommand(newLayoutRenderCommand())
	return cmd
}

func newLayoutNormalizeCommand() *cobra.Command {
	var (
		padding     float64
		seatSize    float64
		optionsFile string
	)
	cmd := &cobra.Command{
		Use:   "normalize FILE",
		Short: "Place every block on a padded canvas and print the layout as JSON.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadLayout(cmd, args[0])
			if err != nil {
				return err
			}
			ov, err := config.LoadLayoutOverrides(optionsFile)
			if err != nil {
				return err
			}
			// options file < document options < flags
			ov = ov.Overlay(doc.Options)
			if cmd.Flags().Changed("padding") {
				ov.Padding = &padding
			}
			if cmd.Flags().Changed("seat-size") {
				ov.SeatSize = &seatSize
			}
			return writeJSON(cmd.OutOrStdout(), inventory.NormalizeSeatingLayout(doc.Blocks, ov))
		},
	}
	cmd.Flags().Float64Var(&padding, "padding", 0, "Canvas margin around the content.")
	cmd.Flags().Float64Var(&seatSize, "seat-size", 0, "Edge length of one seat.")
	cmd.Flags().StringVar(&optionsFile, "options", "", "YAML file with geometry overrides.")
	return cmd
}

func newLayoutCountsCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "counts FILE",
		Short: "Tally sellable places by status and tier.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadLayout(cmd, args[0])
			if err != nil {
				return err
			}
			counts := inventory.AggregateSeatCounts(doc.Blocks)
			switch strings.ToLower(format) {
			case "json":
				return writeJSON(cmd.OutOrStdout(), counts)
			case "table", "":
				_, err := fmt.Fprintln(cmd.OutOrStdout(), countsTable(counts, doc.Tiers))
				return err
			}
			return fmt.Errorf("unknown format %q (want table or json)", format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json.")
	return cmd
}

// countsTable renders counts as two stacked sections, statuses then tiers.
// Tier ids are shown with their names when the document defines them.
func countsTable(c inventory.Counts, tiers []inventory.Tier) string {
	names := make(map[string]string, len(tiers))
	for _, t := range tiers {
		names[t.ID] = t.Name
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Group", "Key", "Places"})
	for _, s := range inventory.Statuses {
		t.AppendRow(table.Row{"status", string(s), c.ByStatus[s]})
	}
	for s, n := range c.ByStatus {
		if !isKnownStatus(s) {
			t.AppendRow(table.Row{"status", string(s), n})
		}
	}
	t.AppendSeparator()
	for _, tc := range c.TierCounts() {
		key := inventory.TierOf(tc.TierID).String()
		if tc.TierID != nil {
			if name, ok := names[*tc.TierID]; ok && name != "" {
				key = fmt.Sprintf("%s (%s)", name, *tc.TierID)
			}
		}
		t.AppendRow(table.Row{"tier", key, tc.Count})
	}
	t.AppendFooter(table.Row{"", "Total", c.Total})
	return t.Render()
}

func isKnownStatus(s inventory.SeatStatus) bool {
	for _, k := range inventory.Statuses {
		if k == s {
			return true
		}
	}
	return false
}

func newLayoutRenderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "render FILE",
		Short: "Draw a seat map coloured by tier and status.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadLayout(cmd, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), renderSeatMap(doc.Blocks, doc.Tiers))
			return err
		},
	}
}
