package tier

// Tier is the capability class assigned to a session. It governs which
// tools the agent exposes, how much conversation history is retained and
// which usage limits apply.
type Tier string

const (
	// TierFree is the default tier for unrecognized labels.
	TierFree Tier = "free"
	// TierPremium unlocks higher limits and the remote reasoning backend.
	TierPremium Tier = "premium"
	// TierDeveloper has unbounded limits and every administrative tool.
	TierDeveloper Tier = "developer"
	// TierMaster manages team accounts, theming and network data.
	TierMaster Tier = "master"
	// TierCandidato sees campaign status and personal map markers.
	TierCandidato Tier = "candidato"
	// TierLider manages team structure and integrations.
	TierLider Tier = "lider"
	// TierVotante is a plain voter account.
	TierVotante Tier = "votante"
	// TierPublicidad generates advertising copy.
	TierPublicidad Tier = "publicidad"
)

// Valid returns true if the tier is a known value.
func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierPremium, TierDeveloper, TierMaster,
		TierCandidato, TierLider, TierVotante, TierPublicidad:
		return true
	default:
		return false
	}
}

// Limit is a usage ceiling that is either a finite count or unbounded.
// Unbounded limits always have room; there is no finite sentinel value.
type Limit struct {
	unbounded bool
	n         int
}

// Bounded returns a finite limit of n.
func Bounded(n int) Limit {
	return Limit{n: n}
}

// Unbounded returns a limit with no ceiling.
func Unbounded() Limit {
	return Limit{unbounded: true}
}

// Allows reports whether used is still within the limit.
func (l Limit) Allows(used int) bool {
	if l.unbounded {
		return true
	}
	return used < l.n
}

// IsUnbounded reports whether the limit has no ceiling.
func (l Limit) IsUnbounded() bool {
	return l.unbounded
}

// Value returns the finite ceiling and whether one exists.
func (l Limit) Value() (int, bool) {
	if l.unbounded {
		return 0, false
	}
	return l.n, true
}

// Remaining returns how many uses are left. The second return is false
// for unbounded limits.
func (l Limit) Remaining(used int) (int, bool) {
	if l.unbounded {
		return 0, false
	}
	left := l.n - used
	if left < 0 {
		left = 0
	}
	return left, true
}

// Config is the immutable policy resolved for a tier at session creation.
type Config struct {
	Tier               Tier
	DailyRequests      Limit
	MonthlyTokens      Limit
	MaxWorkflows       Limit
	RealTimeMonitoring bool
	MemoryWindow       int
	Welcome            string
	Tools              []string
	// RequiresRemote marks tiers that must run on the remote reasoning
	// backend and cannot fall back to the simulated one.
	RequiresRemote bool
}

// HasTool reports whether the tier's tool subset contains name.
func (c Config) HasTool(name string) bool {
	for _, t := range c.Tools {
		if t == name {
			return true
		}
	}
	return false
}
