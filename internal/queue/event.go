// Package queue defines the messages exchanged over RabbitMQ and the
// background consumer that records them.
package queue

import (
	"time"

	"github.com/shopspring/decimal"
)

// RedemptionQueue is the durable queue that carries DiscountRedeemedEvent.
const RedemptionQueue = "discount.redeemed"

// DiscountRedeemedEvent is published after a discount code was applied to a
// checkout and its usage counter incremented.  It carries the priced result
// so consumers can log or reconcile without querying MySQL.
type DiscountRedeemedEvent struct {
	EventID        string          `json:"event_id"`
	UserID         uint64          `json:"user_id"`
	Code           string          `json:"code"`
	RuleID         string          `json:"rule_id"`
	Kind           string          `json:"kind"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalPrice     decimal.Decimal `json:"final_price"`
	SeatIDs        []string        `json:"seats"`
	RedeemedAt     time.Time       `json:"redeemed_at"`
}
