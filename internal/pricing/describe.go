package pricing

import (
	"fmt"
	"strings"
)

// Describe renders the terms of a rule for display, e.g.
// "15% off, min spend 50.00, up to 100.00 off".
func Describe(p Parameters) string {
	var b strings.Builder
	switch v := concrete(p).(type) {
	case Percentage:
		fmt.Fprintf(&b, "%s%% off", v.Percentage.String())
		if v.MinSpend != nil {
			fmt.Fprintf(&b, ", min spend %s", money(*v.MinSpend))
		}
		if v.MaxDiscount != nil {
			fmt.Fprintf(&b, ", up to %s off", money(*v.MaxDiscount))
		}
	case FlatOff:
		b.WriteString(money(v.Amount))
		if v.Currency != "" {
			b.WriteString(" " + strings.ToUpper(v.Currency))
		}
		b.WriteString(" off")
		if v.MinSpend != nil {
			fmt.Fprintf(&b, ", min spend %s", money(*v.MinSpend))
		}
	case BuyNGetNFree:
		fmt.Fprintf(&b, "Buy %d, get %d free", v.BuyQuantity, v.GetQuantity)
	}
	return b.String()
}
