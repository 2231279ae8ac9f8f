package brain

import (
	"sync"
	"time"

	"github.com/pacifico/agora/pkg/tier"
)

// UsageStats are the monotonically increasing counters the orchestrator
// bumps after every completed turn. They are checked against the tier
// limits before a turn starts.
type UsageStats struct {
	RequestsToday    int `json:"requests_today"`
	TokensUsedMonth  int `json:"tokens_used_month"`
	WorkflowsCreated int `json:"workflows_created"`
}

// Session is the live per-user binding of a reasoning backend, a memory
// buffer and a tier-scoped tool subset. It is owned by the Registry and
// mutated only by the orchestrator while holding the session mutex.
type Session struct {
	UserID string
	Tier   tier.Config

	backend Backend
	memory  *MemoryBuffer
	usage   UsageStats

	createdAt  time.Time
	lastActive time.Time

	// mu serializes turns: at most one Process call per session runs at
	// a time so the memory buffer cannot be corrupted.
	mu sync.Mutex
}

func newSession(userID string, cfg tier.Config, backend Backend, now time.Time) *Session {
	return &Session{
		UserID:     userID,
		Tier:       cfg,
		backend:    backend,
		memory:     NewMemoryBuffer(cfg.MemoryWindow),
		createdAt:  now,
		lastActive: now,
	}
}

// Memory exposes the session's buffer for inspection.
func (s *Session) Memory() *MemoryBuffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memory
}

// Usage returns a snapshot of the usage counters.
func (s *Session) Usage() UsageStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage
}

// LastActive returns the time of the session's most recent turn.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// withinQuota reports whether another turn fits the tier limits. Caller
// holds s.mu.
func (s *Session) withinQuota() bool {
	return s.Tier.DailyRequests.Allows(s.usage.RequestsToday) &&
		s.Tier.MonthlyTokens.Allows(s.usage.TokensUsedMonth)
}

// estimateTokens is a rough size estimate: one token per four characters.
func estimateTokens(texts ...string) int {
	total := 0
	for _, t := range texts {
		total += len(t)
	}
	return (total + 3) / 4
}
