package brain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/pacifico/agora/internal/observability"
	"github.com/pacifico/agora/pkg/tier"
	"github.com/pacifico/agora/pkg/tools"
)

// maxToolCycles bounds the reason/tool round-trips of one turn so a
// backend that keeps emitting directives cannot loop forever.
const maxToolCycles = 3

// defaultBackendTimeout caps a single reasoning call.
const defaultBackendTimeout = 30 * time.Second

// TurnRecorder receives completed turns for durable logging. Recording
// is best effort; failures never fail the turn.
type TurnRecorder interface {
	RecordTurn(userID string, user, assistant Message) error
}

// Result is the outcome of one conversational turn. Nothing from a tool
// or backend call escapes Process: faults are folded into an error
// Result with a short, human-readable message.
type Result struct {
	Status   string `json:"status"` // "success" or "error"
	Response string `json:"response,omitempty"`
	Err      string `json:"error,omitempty"`

	// Failure classifies error results against the sentinel taxonomy.
	// Nil on success and for plain backend parsing failures.
	Failure error `json:"-"`
}

// SessionInfo is returned by CreateSession.
type SessionInfo struct {
	UserID  string      `json:"brain_id"`
	Tier    tier.Tier   `json:"tier"`
	Limits  tier.Config `json:"-"`
	Welcome string      `json:"welcome_message"`
}

// UsageRemaining reports how much headroom a session has. Nil fields
// mean the corresponding limit is unbounded.
type UsageRemaining struct {
	RequestsRemaining *int `json:"requests_remaining,omitempty"`
	TokensRemaining   *int `json:"tokens_remaining,omitempty"`
}

// Registry owns every live session: a process-wide, concurrency-safe
// mapping from user identifier to agent. Dependencies are injected so
// tests can swap backends and clocks.
type Registry struct {
	tools    *tools.Registry
	backends *BackendFactory
	recorder TurnRecorder
	logger   zerolog.Logger

	backendTimeout time.Duration
	idleTTL        time.Duration
	now            func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
	cron     *cron.Cron
}

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	Tools    *tools.Registry
	Backends *BackendFactory
	Recorder TurnRecorder // optional
	Logger   zerolog.Logger

	BackendTimeout time.Duration // default 30s
	IdleTTL        time.Duration // default 24h
	Clock          func() time.Time
}

// NewRegistry creates a session registry.
func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	observability.EnsureRegistered()

	if cfg.Tools == nil {
		return nil, fmt.Errorf("tool registry is required")
	}
	if cfg.Backends == nil {
		return nil, fmt.Errorf("backend factory is required")
	}
	if cfg.BackendTimeout == 0 {
		cfg.BackendTimeout = defaultBackendTimeout
	}
	if cfg.IdleTTL == 0 {
		cfg.IdleTTL = 24 * time.Hour
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &Registry{
		tools:          cfg.Tools,
		backends:       cfg.Backends,
		recorder:       cfg.Recorder,
		logger:         cfg.Logger,
		backendTimeout: cfg.BackendTimeout,
		idleTTL:        cfg.IdleTTL,
		now:            cfg.Clock,
		sessions:       make(map[string]*Session),
	}, nil
}

// CreateSession builds and registers the agent for a user. Calling it
// again for the same user replaces the session wholesale: fresh memory,
// fresh usage counters, no merge.
func (r *Registry) CreateSession(userID, tierLabel string) (*SessionInfo, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id cannot be empty")
	}

	cfg := tier.Resolve(tierLabel)
	backend, err := r.backends.ForTier(cfg)
	if err != nil {
		return nil, fmt.Errorf("cannot create session for tier %s: %w", cfg.Tier, err)
	}

	session := newSession(userID, cfg, backend, r.now())

	r.mu.Lock()
	r.sessions[userID] = session
	count := len(r.sessions)
	r.mu.Unlock()

	observability.RecordSessionCreated(string(cfg.Tier))
	observability.SetActiveSessions(count)

	r.logger.Info().
		Str("user_id", userID).
		Str("tier", string(cfg.Tier)).
		Str("backend", backend.Kind()).
		Msg("Session created")

	return &SessionInfo{
		UserID:  userID,
		Tier:    cfg.Tier,
		Limits:  cfg,
		Welcome: cfg.Welcome,
	}, nil
}

// Get returns the live session for a user, or nil.
func (r *Registry) Get(userID string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[userID]
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Process runs one conversational turn for a user. Every fault resolves
// to an error Result; nothing propagates as a raw failure.
func (r *Registry) Process(ctx context.Context, userID, utterance string) Result {
	r.mu.RLock()
	session := r.sessions[userID]
	r.mu.RUnlock()

	if session == nil {
		observability.RecordTurn("not_found")
		return Result{
			Status:  "error",
			Err:     "Cerebro no inicializado para este usuario",
			Failure: ErrSessionNotFound,
		}
	}

	// One in-flight turn per session; concurrent callers queue here.
	session.mu.Lock()
	defer session.mu.Unlock()

	if !session.withinQuota() {
		observability.RecordTurn("quota")
		return Result{Status: "error", Err: "Límite de uso excedido.", Failure: ErrQuotaExceeded}
	}

	logger := r.logger.With().Str("user_id", userID).Logger()
	answer, res := r.runTurn(ctx, session, utterance, logger)
	if res != nil {
		observability.RecordTurn(turnStatus(res.Failure))
		return *res
	}

	session.memory.Append(RoleUser, utterance)
	session.memory.Append(RoleAssistant, answer)
	session.usage.RequestsToday++
	session.usage.TokensUsedMonth += estimateTokens(utterance, answer)
	session.lastActive = r.now()

	if r.recorder != nil {
		userMsg := Message{Role: RoleUser, Content: utterance, Timestamp: session.lastActive}
		assistantMsg := Message{Role: RoleAssistant, Content: answer, Timestamp: session.lastActive}
		if err := r.recorder.RecordTurn(userID, userMsg, assistantMsg); err != nil {
			logger.Warn().Err(err).Msg("Failed to record turn transcript")
		}
	}

	observability.RecordTurn("success")
	return Result{Status: "success", Response: answer}
}

// runTurn drives the reason/tool/reason loop. It returns either the
// final answer or a ready error Result. Caller holds the session mutex.
func (r *Registry) runTurn(ctx context.Context, session *Session, utterance string, logger zerolog.Logger) (string, *Result) {
	history := session.memory.Turns()
	available := r.tools.Describe(session.Tier.Tools)

	raw, res := r.callBackend(ctx, session, utterance, history, available, logger)
	if res != nil {
		return "", res
	}

	for cycle := 0; cycle < maxToolCycles; cycle++ {
		directive := ParseDirective(raw)
		if directive.Kind == KindFinal {
			return directive.Text, nil
		}

		if !session.Tier.HasTool(directive.Tool) {
			logger.Warn().Str("tool", directive.Tool).Str("tier", string(session.Tier.Tier)).Msg("Tool not permitted")
			return "", &Result{
				Status:  "error",
				Err:     fmt.Sprintf("No tienes permiso para usar la herramienta '%s'.", directive.Tool),
				Failure: ErrToolNotPermitted,
			}
		}

		start := time.Now()
		toolCtx := tools.WithCallerRole(ctx, string(session.Tier.Tier))
		observation, err := r.tools.Run(toolCtx, directive.Tool, directive.Argument)
		if err != nil {
			observability.RecordToolExecution(directive.Tool, "error", time.Since(start))
			logger.Error().Err(err).Str("tool", directive.Tool).Msg("Tool dispatch failed")
			return "", &Result{Status: "error", Err: "No se pudo obtener una respuesta."}
		}
		observability.RecordToolExecution(directive.Tool, "ok", time.Since(start))

		logger.Debug().Str("tool", directive.Tool).Msg("Tool executed")
		if directive.Tool == tier.ToolConfigureWhatsApp {
			session.usage.WorkflowsCreated++
		}

		// Feed the observation back for a final natural-language pass.
		history = append(history,
			Message{Role: RoleUser, Content: utterance, Timestamp: r.now()},
			Message{Role: RoleAssistant, Content: raw, Timestamp: r.now()},
			Message{Role: RoleObservation, Content: observation, Timestamp: r.now()},
		)
		raw, res = r.callBackend(ctx, session, "", history, available, logger)
		if res != nil {
			return "", res
		}
	}

	logger.Warn().Msg("Tool cycle limit reached without a final answer")
	return "", &Result{Status: "error", Err: "No se pudo interpretar la respuesta del asistente."}
}

// turnStatus maps a failed turn's sentinel to its metrics label.
func turnStatus(failure error) string {
	switch {
	case errors.Is(failure, ErrToolNotPermitted):
		return "denied"
	case errors.Is(failure, ErrBackendTimeout):
		return "timeout"
	default:
		return "error"
	}
}

func (r *Registry) callBackend(ctx context.Context, session *Session, utterance string, history []Message, available []tools.Info, logger zerolog.Logger) (string, *Result) {
	callCtx, cancel := context.WithTimeout(ctx, r.backendTimeout)
	defer cancel()

	start := time.Now()
	raw, err := session.backend.Respond(callCtx, utterance, history, available)
	observability.RecordBackendCall(session.backend.Kind(), time.Since(start))

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Error().Dur("timeout", r.backendTimeout).Msg("Reasoning backend timed out")
			return "", &Result{
				Status:  "error",
				Err:     "El asistente tardó demasiado en responder.",
				Failure: ErrBackendTimeout,
			}
		}
		logger.Error().Err(err).Msg("Reasoning backend failed")
		return "", &Result{Status: "error", Err: "No se pudo obtener una respuesta."}
	}
	return raw, nil
}

// Remaining returns the usage headroom for a user's session.
func (r *Registry) Remaining(userID string) (UsageRemaining, error) {
	session := r.Get(userID)
	if session == nil {
		return UsageRemaining{}, ErrSessionNotFound
	}

	usage := session.Usage()
	var out UsageRemaining
	if left, ok := session.Tier.DailyRequests.Remaining(usage.RequestsToday); ok {
		out.RequestsRemaining = &left
	}
	if left, ok := session.Tier.MonthlyTokens.Remaining(usage.TokensUsedMonth); ok {
		out.TokensRemaining = &left
	}
	return out, nil
}
