package accounts

// Status is a read-only view of one credential set's health, shaped for
// the status endpoint.
type Status struct {
	ID                      string  `json:"id"`
	Calls                   int     `json:"calls"`
	SuccessRate             float64 `json:"success_rate"`
	ConsecutiveFailures     int     `json:"consecutive_failures"`
	RateLimited             bool    `json:"rate_limited"`
	RateLimitRemainingSecs  int     `json:"rate_limit_remaining_seconds"`
	Current                 bool    `json:"is_current"`
	PreferredByTime         bool    `json:"is_preferred_by_time"`
	LastUsed                string  `json:"last_used"`
}

// Snapshot returns the current health of every credential set.
func (r *Rotator) Snapshot() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	preferred := int(now.Unix()/int64(RotationSlot.Seconds())) % len(r.accounts)

	out := make([]Status, 0, len(r.accounts))
	for i, a := range r.accounts {
		s := Status{
			ID:                  a.creds.ID,
			Calls:               a.stats.Calls,
			ConsecutiveFailures: a.stats.ConsecutiveFailures,
			Current:             i == r.current,
			PreferredByTime:     i == preferred,
			LastUsed:            "never",
		}
		if a.stats.Calls > 0 {
			s.SuccessRate = float64(a.stats.Successes) / float64(a.stats.Calls) * 100
		}
		if a.isLimited(now) {
			s.RateLimited = true
			s.RateLimitRemainingSecs = int(a.stats.RateLimitedUntil.Sub(now).Seconds())
		}
		if !a.stats.LastUsed.IsZero() {
			s.LastUsed = a.stats.LastUsed.Format("15:04:05")
		}
		out = append(out, s)
	}
	return out
}
