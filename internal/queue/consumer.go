package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RedemptionLogDir is where StartRedemptionConsumer appends redemptions.log.
var RedemptionLogDir = "logs"

// StartRedemptionConsumer connects to the broker at url, declares the
// discount.redeemed queue (durable) and appends one line per event to
// logs/redemptions.log.  Dial failures back off exponentially up to 30s.
// It returns only when ctx is cancelled.
func StartRedemptionConsumer(ctx context.Context, url string) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warnf("redemption-consumer: dial failed: %v; retrying in %s", err, backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = min(backoff*2, 30*time.Second)
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warnf("redemption-consumer: consume loop ended: %v; reconnecting", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warnf("redemption-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(RedemptionQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, RedemptionQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := HandleRedemption(d.Body); err != nil {
			log.Errorf("redemption-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject without requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// HandleRedemption decodes one message body and appends it to the log file.
func HandleRedemption(body []byte) error {
	var ev DiscountRedeemedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll(RedemptionLogDir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(RedemptionLogDir, "redemptions.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatRedemptionLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatRedemptionLine renders ev as a single newline-terminated log line.
func FormatRedemptionLine(ev DiscountRedeemedEvent) string {
	return fmt.Sprintf("[%s] Discount redeemed | event_id=%s | user_id=%d | code=%q | rule_id=%s | kind=%s | subtotal=%s | discount=%s | final=%s | seats=[%s]\n",
		ev.RedeemedAt.UTC().Format(time.RFC3339), ev.EventID, ev.UserID, ev.Code, ev.RuleID, ev.Kind,
		ev.Subtotal.StringFixed(2), ev.DiscountAmount.StringFixed(2), ev.FinalPrice.StringFixed(2),
		strings.Join(ev.SeatIDs, ","))
}
