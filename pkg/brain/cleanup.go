package brain

import (
	"github.com/robfig/cron/v3"

	"github.com/pacifico/agora/internal/observability"
)

// StartMaintenance launches the background schedules: an hourly sweep of
// idle sessions, a daily request-counter reset at midnight, and a
// monthly token-counter reset. Call StopMaintenance on shutdown.
func (r *Registry) StartMaintenance() error {
	c := cron.New()

	if _, err := c.AddFunc("@hourly", func() {
		evicted := r.EvictIdle()
		if evicted > 0 {
			r.logger.Info().Int("evicted", evicted).Msg("Idle sessions evicted")
		}
	}); err != nil {
		return err
	}
	if _, err := c.AddFunc("@midnight", r.ResetDailyCounters); err != nil {
		return err
	}
	if _, err := c.AddFunc("0 0 1 * *", r.ResetMonthlyCounters); err != nil {
		return err
	}

	c.Start()
	r.cron = c
	return nil
}

// StopMaintenance stops the background schedules and waits for any
// running job to finish.
func (r *Registry) StopMaintenance() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
		r.cron = nil
	}
}

// EvictIdle drops every session whose last activity is older than the
// configured idle TTL and returns how many were removed.
func (r *Registry) EvictIdle() int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.RLock()
	candidates := make(map[string]*Session, len(r.sessions))
	for id, session := range r.sessions {
		candidates[id] = session
	}
	r.mu.RUnlock()

	stale := make([]string, 0)
	for id, session := range candidates {
		if session.LastActive().Before(cutoff) {
			stale = append(stale, id)
		}
	}

	r.mu.Lock()
	evicted := 0
	for _, id := range stale {
		// The entry may have been replaced by CreateSession since the
		// snapshot; only drop the instance we judged stale.
		if r.sessions[id] == candidates[id] {
			delete(r.sessions, id)
			evicted++
		}
	}
	count := len(r.sessions)
	r.mu.Unlock()

	for i := 0; i < evicted; i++ {
		observability.RecordSessionEvicted()
	}
	observability.SetActiveSessions(count)
	return evicted
}

// ResetDailyCounters zeroes the per-day request counter on every
// session.
func (r *Registry) ResetDailyCounters() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, session := range r.sessions {
		session.mu.Lock()
		session.usage.RequestsToday = 0
		session.mu.Unlock()
	}
	r.logger.Info().Msg("Daily request counters reset")
}

// ResetMonthlyCounters zeroes the per-month token counter on every
// session.
func (r *Registry) ResetMonthlyCounters() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, session := range r.sessions {
		session.mu.Lock()
		session.usage.TokensUsedMonth = 0
		session.mu.Unlock()
	}
	r.logger.Info().Msg("Monthly token counters reset")
}
