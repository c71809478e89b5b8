// Package pricing evaluates promotional discount rules against a cart of
// selected seats.  Evaluation is pure: it never mutates its inputs and
// reports every precondition failure as a structured rejection.
package pricing

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/seat-inventory/internal/inventory"
)

// Kind names a discount parameter variant.
type Kind string

const (
	KindPercentage   Kind = "PERCENTAGE"
	KindFlatOff      Kind = "FLAT_OFF"
	KindBuyNGetNFree Kind = "BUY_N_GET_N_FREE"
)

// Parameters is a closed union over Percentage, FlatOff and BuyNGetNFree.
type Parameters interface {
	Kind() Kind
	sealed()
}

// Percentage takes a share of the subtotal, optionally capped.
type Percentage struct {
	Percentage  decimal.Decimal  `json:"percentage"`
	MinSpend    *decimal.Decimal `json:"minSpend,omitempty"`
	MaxDiscount *decimal.Decimal `json:"maxDiscount,omitempty"`
}

// FlatOff takes a fixed amount off the subtotal.
type FlatOff struct {
	Amount   decimal.Decimal  `json:"amount"`
	Currency string           `json:"currency"`
	MinSpend *decimal.Decimal `json:"minSpend,omitempty"`
}

// BuyNGetNFree gives GetQuantity eligible items free for every BuyQuantity
// eligible items in the cart.
type BuyNGetNFree struct {
	BuyQuantity int `json:"buyQuantity"`
	GetQuantity int `json:"getQuantity"`
}

func (Percentage) Kind() Kind   { return KindPercentage }
func (FlatOff) Kind() Kind      { return KindFlatOff }
func (BuyNGetNFree) Kind() Kind { return KindBuyNGetNFree }

func (Percentage) sealed()   {}
func (FlatOff) sealed()      {}
func (BuyNGetNFree) sealed() {}

// Rule is a discount code with its terms and redemption limits.
type Rule struct {
	ID              string           `json:"id"`
	Code            string           `json:"code"`
	Parameters      Parameters       `json:"parameters"`
	ApplicableTiers []inventory.Tier `json:"applicableTiers,omitempty"`
	ActiveFrom      *time.Time       `json:"activeFrom,omitempty"`
	ExpiresAt       *time.Time       `json:"expiresAt,omitempty"`
	MaxUsage        *int             `json:"maxUsage,omitempty"`
	CurrentUsage    *int             `json:"currentUsage,omitempty"`
	Active          bool             `json:"active"`
	Public          bool             `json:"public"`
}

// SelectedSeat is a cart line: a seat with its resolved tier.
type SelectedSeat struct {
	inventory.Seat
	Tier      inventory.Tier `json:"tier"`
	BlockName string         `json:"blockName"`
}

// UnmarshalJSON decodes the parameters union from its "kind" field.
func (r *Rule) UnmarshalJSON(data []byte) error {
	type plain Rule
	var w struct {
		*plain
		Parameters json.RawMessage `json:"parameters"`
	}
	w.plain = (*plain)(r)
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if len(w.Parameters) == 0 || string(w.Parameters) == "null" {
		return fmt.Errorf("rule %q: parameters are required", r.Code)
	}
	p, err := DecodeParameters(w.Parameters)
	if err != nil {
		return fmt.Errorf("rule %q: %w", r.Code, err)
	}
	r.Parameters = p
	return nil
}

// MarshalJSON encodes the parameters union with its "kind" field.
func (r Rule) MarshalJSON() ([]byte, error) {
	type plain Rule
	params, err := EncodeParameters(r.Parameters)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		plain
		Parameters json.RawMessage `json:"parameters"`
	}{plain(r), params})
}

// DecodeParameters reads a {"kind": ..., ...} record.
func DecodeParameters(data []byte) (Parameters, error) {
	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode parameters: %w", err)
	}
	var (
		p   Parameters
		err error
	)
	switch Kind(strings.ToUpper(strings.TrimSpace(head.Kind))) {
	case KindPercentage:
		var v Percentage
		err = json.Unmarshal(data, &v)
		p = v
	case KindFlatOff:
		var v FlatOff
		err = json.Unmarshal(data, &v)
		p = v
	case KindBuyNGetNFree:
		var v BuyNGetNFree
		err = json.Unmarshal(data, &v)
		p = v
	default:
		return nil, fmt.Errorf("unknown discount kind %q", head.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s parameters: %w", head.Kind, err)
	}
	return p, nil
}

// EncodeParameters writes p with its "kind" field.
func EncodeParameters(p Parameters) ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	fields["kind"], _ = json.Marshal(p.Kind())
	return json.Marshal(fields)
}

// Dec returns a pointer to d, for optional money fields built in code.
func Dec(d decimal.Decimal) *decimal.Decimal { return &d }

// concrete unwraps pointer variants so callers can switch on value types.
func concrete(p Parameters) Parameters {
	switch v := p.(type) {
	case *Percentage:
		if v != nil {
			return *v
		}
	case *FlatOff:
		if v != nil {
			return *v
		}
	case *BuyNGetNFree:
		if v != nil {
			return *v
		}
	default:
		return p
	}
	return nil
}
