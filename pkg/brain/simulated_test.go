package brain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pacifico/agora/pkg/tier"
)

func TestSimulatedBackendKeywordRules(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		want      string
	}{
		{"greeting", "Hola, ¿cómo estás?", respGreeting},
		{"greeting buenos dias", "buenos días equipo", respGreeting},
		{"advice", "dame un consejo para la campaña", respAdvice},
		{"strategy", "¿qué estrategia recomiendas?", respAdvice},
		{"sentiment", "muéstrame el sentimiento de los votantes", respSentiment},
		{"crisis", "tenemos una crisis en el municipio", respCrisis},
		{"default", "xyzzy", respDefault},
	}

	b := NewSimulatedBackend(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Respond(context.Background(), tt.utterance, nil, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSimulatedBackendAccountCreationDirectives(t *testing.T) {
	tests := []struct {
		name      string
		utterance string
		wantTool  string
	}{
		{"master", "Crea una cuenta master para el usuario 'Ana' con el email 'ana@agora.io'", tier.ToolCreateMaster},
		{"candidate", "crea una cuenta de candidato para el usuario 'Luis' con el email 'luis@agora.io'", tier.ToolCreateCandidate},
		{"leader accented", "Crea una cuenta de líder para el usuario 'Marta' con el email 'marta@agora.io'", tier.ToolCreateLeader},
		{"leader unaccented", "crea una cuenta de lider para el usuario 'Marta' con el email 'marta@agora.io'", tier.ToolCreateLeader},
	}

	b := NewSimulatedBackend(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := b.Respond(context.Background(), tt.utterance, nil, nil)
			require.NoError(t, err)

			directive := ParseDirective(raw)
			assert.Equal(t, KindToolCall, directive.Kind)
			assert.Equal(t, tt.wantTool, directive.Tool)
			assert.Equal(t, tt.utterance, directive.Argument)
		})
	}
}

func TestSimulatedBackendAuditDirective(t *testing.T) {
	b := NewSimulatedBackend(0)

	raw, err := b.Respond(context.Background(), "Ejecuta una auditoría del sistema", nil, nil)
	require.NoError(t, err)

	directive := ParseDirective(raw)
	assert.Equal(t, KindToolCall, directive.Kind)
	assert.Equal(t, tier.ToolRunSystemAudit, directive.Tool)
}

func TestSimulatedBackendClosesLoopOnObservation(t *testing.T) {
	b := NewSimulatedBackend(0)

	history := []Message{
		{Role: RoleUser, Content: "Ejecuta una auditoría"},
		{Role: RoleAssistant, Content: "Action: run_system_audit"},
		{Role: RoleObservation, Content: "Auditoría completada. Estado del sistema: Óptimo. Todos los servicios en línea."},
	}

	raw, err := b.Respond(context.Background(), "", history, nil)
	require.NoError(t, err)

	directive := ParseDirective(raw)
	assert.Equal(t, KindFinal, directive.Kind)
	assert.Equal(t, "Auditoría completada. Estado del sistema: Óptimo. Todos los servicios en línea.", directive.Text)
}

func TestSimulatedBackendHonorsContextCancellation(t *testing.T) {
	b := NewSimulatedBackend(5 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Respond(ctx, "hola", nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
