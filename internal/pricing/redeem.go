package pricing

import (
	"errors"
	"time"
)

// Redemption state errors returned by CheckRedeemable.
var (
	ErrRuleInactive   = errors.New("discount is not active")
	ErrRuleNotStarted = errors.New("discount is not yet valid")
	ErrRuleExpired    = errors.New("discount has expired")
	ErrUsageExhausted = errors.New("discount usage limit reached")
)

// CheckRedeemable reports whether rule may be redeemed at now.  It looks at
// the active flag, the validity window and the usage counter only; whether a
// given customer may use the code is decided elsewhere.
func CheckRedeemable(rule *Rule, now time.Time) error {
	if rule == nil {
		return nil
	}
	if !rule.Active {
		return ErrRuleInactive
	}
	if rule.ActiveFrom != nil && now.Before(*rule.ActiveFrom) {
		return ErrRuleNotStarted
	}
	if rule.ExpiresAt != nil && !now.Before(*rule.ExpiresAt) {
		return ErrRuleExpired
	}
	if rule.MaxUsage != nil {
		used := 0
		if rule.CurrentUsage != nil {
			used = *rule.CurrentUsage
		}
		if used >= *rule.MaxUsage {
			return ErrUsageExhausted
		}
	}
	return nil
}
