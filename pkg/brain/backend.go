// Package brain is the tiered agent core: per-user sessions that bind a
// reasoning backend, a bounded memory buffer and a tier-scoped tool
// subset, plus the orchestrator that turns free-text requests into tool
// invocations.
package brain

import (
	"context"
	"time"

	"github.com/pacifico/agora/pkg/tier"
	"github.com/pacifico/agora/pkg/tools"
)

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	// RoleObservation carries a tool result back into the reasoning
	// context for the final pass of a turn.
	RoleObservation = "observation"
)

// Message is one conversation turn as seen by a reasoning backend.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Backend turns an utterance plus conversation context into raw text:
// either a final answer or a tool directive in ReAct form. Callers treat
// every invocation as fallible and potentially slow.
type Backend interface {
	Respond(ctx context.Context, utterance string, history []Message, available []tools.Info) (string, error)

	// Kind returns a short backend identifier for logs and metrics.
	Kind() string
}

// Credential is a remote-provider credential profile.
type Credential struct {
	Provider string // "openai" or "anthropic"
	APIKey   string
	Model    string
}

// BackendFactory selects the reasoning backend for a tier. Selection is
// a pure function of tier policy and credential availability.
type BackendFactory struct {
	credentials      []Credential
	simulatedLatency time.Duration
}

// NewBackendFactory creates a factory. simulatedLatency is the artificial
// delay of the offline backend; pass 0 to disable (tests).
func NewBackendFactory(credentials []Credential, simulatedLatency time.Duration) *BackendFactory {
	return &BackendFactory{
		credentials:      credentials,
		simulatedLatency: simulatedLatency,
	}
}

// ForTier returns the backend a session of the given tier runs on.
// With no credentials configured the whole system runs offline on the
// simulated backend. When credentials exist, tiers that demand remote
// reasoning get it; a credential profile that cannot be used surfaces
// as ErrConfiguration.
func (f *BackendFactory) ForTier(cfg tier.Config) (Backend, error) {
	if !cfg.RequiresRemote || len(f.credentials) == 0 {
		return NewSimulatedBackend(f.simulatedLatency), nil
	}
	return NewRemoteBackend(f.credentials)
}
