package brain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pacifico/agora/pkg/tier"
	"github.com/pacifico/agora/pkg/tools"
)

// Canned responses of the offline engine. The Spanish text is part of
// the user-visible contract.
const (
	respGreeting  = "¡Hola! Soy tu asistente de campaña. ¿En qué puedo ayudarte?"
	respAdvice    = "Para mejorar tu campaña, enfócate en la comunicación directa y usa redes sociales."
	respSentiment = "El análisis de sentimiento muestra una tendencia positiva."
	respCrisis    = "En caso de crisis, mantén la calma y comunica de forma transparente."
	respDefault   = "Puedo ayudarte con análisis de sentimientos y consejos de campaña."
)

// SimulatedBackend is the deterministic offline reasoning backend. It
// applies ordered keyword rules to the lowercased utterance, first match
// wins, and sleeps a fixed artificial latency to emulate a network
// round-trip.
type SimulatedBackend struct {
	latency time.Duration
}

// NewSimulatedBackend creates the offline backend. latency of 0 disables
// the artificial delay.
func NewSimulatedBackend(latency time.Duration) *SimulatedBackend {
	return &SimulatedBackend{latency: latency}
}

// Kind returns "simulated".
func (b *SimulatedBackend) Kind() string {
	return "simulated"
}

// Respond applies the keyword rules. When the previous message is a tool
// observation, the observation itself becomes the final answer: that is
// how the offline engine closes the reason/tool/reason loop without a
// real model.
func (b *SimulatedBackend) Respond(ctx context.Context, utterance string, history []Message, available []tools.Info) (string, error) {
	if b.latency > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(b.latency):
		}
	}

	if len(history) > 0 && history[len(history)-1].Role == RoleObservation {
		return finalAnswerPrefix + " " + history[len(history)-1].Content, nil
	}

	lower := strings.ToLower(utterance)

	if tool, ok := accountCreationTool(lower); ok {
		return fmt.Sprintf("Thought: El usuario quiere crear una cuenta. Usaré la herramienta `%s`.\nAction: %s\nAction Input: %s",
			tool, tool, utterance), nil
	}
	if containsAny(lower, "auditoría", "auditoria", "audit") {
		return fmt.Sprintf("Thought: El usuario solicita una auditoría del sistema.\nAction: %s\nAction Input: %s",
			tier.ToolRunSystemAudit, utterance), nil
	}

	switch {
	case containsAny(lower, "hola", "buenos", "saludos"):
		return respGreeting, nil
	case containsAny(lower, "consejo", "estrategia", "campaña"):
		return respAdvice, nil
	case containsAny(lower, "sentimiento", "análisis", "opinión"):
		return respSentiment, nil
	case containsAny(lower, "crisis", "problema", "emergencia"):
		return respCrisis, nil
	default:
		return respDefault, nil
	}
}

// accountCreationTool maps a creation utterance to the creation tool for
// its role. Only master, candidato and lider are reachable by keyword;
// voter and advertising accounts need the remote backend.
func accountCreationTool(lower string) (string, bool) {
	if !strings.Contains(lower, "crea una cuenta") {
		return "", false
	}
	switch {
	case strings.Contains(lower, "master"):
		return tier.ToolCreateMaster, true
	case strings.Contains(lower, "candidato"):
		return tier.ToolCreateCandidate, true
	case strings.Contains(lower, "lider"), strings.Contains(lower, "líder"):
		return tier.ToolCreateLeader, true
	default:
		return "", false
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
