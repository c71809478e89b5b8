package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iliyamo/seat-inventory/internal/pricing"
)

func newDiscountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discount",
		Short: "Describe and try discount rules.",
	}
	cmd.AddCommand(newDiscountDescribeCommand())
	cmd.AddCommand(newDiscountApplyCommand())
	return cmd
}

// decodeRules accepts one rule object or an array of them.
func decodeRules(data []byte) ([]pricing.Rule, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		var many []pricing.Rule
		if err := json.Unmarshal(trimmed, &many); err != nil {
			return nil, err
		}
		return many, nil
	}
	var one pricing.Rule
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, err
	}
	return []pricing.Rule{one}, nil
}

func newDiscountDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe FILE",
		Short: "Print the customer-facing summary of each rule in FILE.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			rules, err := decodeRules(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			now := time.Now()
			t := table.NewWriter()
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Code", "Kind", "Description", "Redeemable"})
			for _, r := range rules {
				state := "yes"
				if err := pricing.CheckRedeemable(&r, now); err != nil {
					state = err.Error()
				}
				t.AppendRow(table.Row{r.Code, r.Parameters.Kind(), pricing.Describe(r.Parameters), state})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return err
		},
	}
}

// applyDocument is the input of discount apply.  Subtotal defaults to the
// sum of the seats' tier prices.
type applyDocument struct {
	Rule     *pricing.Rule          `json:"rule"`
	Subtotal *decimal.Decimal       `json:"subtotal"`
	Seats    []pricing.SelectedSeat `json:"seats"`
}

func newDiscountApplyCommand() *cobra.Command {
	var free string
	cmd := &cobra.Command{
		Use:   "apply FILE",
		Short: "Evaluate a rule against a cart and print the result as JSON.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := pricing.ParseFreeItemPolicy(free)
			if err != nil {
				return err
			}
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			var doc applyDocument
			if err := json.Unmarshal(data, &doc); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			subtotal := decimal.Zero
			if doc.Subtotal != nil {
				subtotal = *doc.Subtotal
			} else {
				for _, s := range doc.Seats {
					subtotal = subtotal.Add(s.Tier.Price)
				}
			}
			res := pricing.Evaluator{FreeItems: policy}.Apply(subtotal, doc.Rule, doc.Seats)
			return writeJSON(cmd.OutOrStdout(), struct {
				Subtotal decimal.Decimal `json:"subtotal"`
				pricing.Result
			}{subtotal, res})
		},
	}
	cmd.Flags().StringVar(&free, "free", "cheapest", "Items a multi-buy rule gives away: cheapest or most-expensive.")
	return cmd
}
