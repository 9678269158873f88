package translate

import (
	"context"
	"time"

	"github.com/user/nessus-rider/pkg/transport"
)

// Defaults approximating the free Gemini tier: two requests per miss, a pause
// once the counter passes the threshold.
const (
	DefaultQuotaThreshold = 14
	DefaultQuotaCost      = 2
	DefaultCooldown       = 75 * time.Second
)

// Quota is a coarse request budget. It does not track the provider's real
// window; it only pauses once Used exceeds Threshold and then starts over.
type Quota struct {
	Threshold int
	Cost      int
	Cooldown  time.Duration
	Sleep     transport.SleepFunc

	used      int
	cooldowns int
}

func NewQuota(threshold, cost int, cooldown time.Duration) *Quota {
	return &Quota{
		Threshold: threshold,
		Cost:      cost,
		Cooldown:  cooldown,
		Sleep:     transport.Sleep,
	}
}

func (q *Quota) Used() int      { return q.used }
func (q *Quota) Cooldowns() int { return q.cooldowns }

// Wait pauses for Cooldown when the budget is exhausted and resets it.
// It reports whether a pause happened.
func (q *Quota) Wait(ctx context.Context) (bool, error) {
	if q.used <= q.Threshold {
		return false, nil
	}
	if err := q.Sleep(ctx, q.Cooldown); err != nil {
		return false, err
	}
	q.used = 0
	q.cooldowns++
	return true, nil
}

// Consume charges one translation.
func (q *Quota) Consume() {
	q.used += q.Cost
}
