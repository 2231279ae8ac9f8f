package brain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pacifico/agora/pkg/tools"
)

const remoteMaxRetries = 3

// RemoteBackend delegates reasoning to an external language model. It
// tries each configured credential in order and retries transient
// failures with exponential backoff.
type RemoteBackend struct {
	providers []chatProvider
}

// NewRemoteBackend builds a backend over the configured credentials. At
// least one credential must resolve to a supported provider.
func NewRemoteBackend(credentials []Credential) (*RemoteBackend, error) {
	providers := make([]chatProvider, 0, len(credentials))
	for _, cred := range credentials {
		p, err := newProvider(cred)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		providers = append(providers, p)
	}
	if len(providers) == 0 {
		return nil, ErrConfiguration
	}
	return &RemoteBackend{providers: providers}, nil
}

// Kind returns "remote".
func (b *RemoteBackend) Kind() string {
	return "remote"
}

// Respond sends the conversation to the model. The tool-call protocol is
// described in the system prompt; the orchestrator parses the resulting
// text into a directive.
func (b *RemoteBackend) Respond(ctx context.Context, utterance string, history []Message, available []tools.Info) (string, error) {
	messages := append([]Message{}, history...)
	if utterance != "" {
		messages = append(messages, Message{Role: RoleUser, Content: utterance})
	}
	req := chatRequest{
		SystemPrompt: buildSystemPrompt(available),
		Messages:     messages,
		MaxTokens:    1024,
		Temperature:  0.7,
	}

	var lastErr error
	for _, provider := range b.providers {
		content, err := b.callWithRetry(ctx, provider, req)
		if err == nil {
			return content, nil
		}
		lastErr = err
		log.Warn().Err(err).Str("provider", provider.Name()).Msg("Remote reasoning call failed")
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("all reasoning providers failed: %w", lastErr)
}

func (b *RemoteBackend) callWithRetry(ctx context.Context, provider chatProvider, req chatRequest) (string, error) {
	var lastErr error
	for attempt := 0; attempt < remoteMaxRetries; attempt++ {
		content, err := provider.Call(ctx, req)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if !IsRetryableError(err) {
			return "", err
		}
		if attempt == remoteMaxRetries-1 {
			break
		}

		// Backoff: 1s, 2s.
		delay := time.Duration(1<<attempt) * time.Second
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

func buildSystemPrompt(available []tools.Info) string {
	var sb strings.Builder
	sb.WriteString("Eres el asistente de campaña Agora. Responde en español.\n")
	if len(available) == 0 {
		return sb.String()
	}

	sb.WriteString("\nTienes acceso a estas herramientas:\n")
	for _, t := range available {
		fmt.Fprintf(&sb, "- %s: %s\n", t.Name, t.Description)
	}
	sb.WriteString("\nPara usar una herramienta responde exactamente con:\n")
	sb.WriteString("Action: <nombre de la herramienta>\n")
	sb.WriteString("Action Input: <argumento>\n")
	sb.WriteString("Si no necesitas ninguna herramienta, responde con:\nFinal Answer: <tu respuesta>\n")
	return sb.String()
}
