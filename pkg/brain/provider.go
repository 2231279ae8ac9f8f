package brain

import (
	"fmt"
	"strings"
)

// chatRequest is the provider-level view of one reasoning call. The tool
// protocol lives entirely in the system prompt: providers exchange plain
// text and the directive parser recovers structure afterwards.
type chatRequest struct {
	Model        string
	SystemPrompt string
	Messages     []Message
	MaxTokens    int
	Temperature  float64
}

// IsRetryableError checks if a provider error should be retried.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()

	for _, marker := range []string{
		"ECONNRESET", "ETIMEDOUT",
		"429", "rate limit",
		"500", "502", "503", "504",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func newProvider(cred Credential) (chatProvider, error) {
	switch cred.Provider {
	case "openai":
		return newOpenAIProvider(cred.APIKey, cred.Model), nil
	case "anthropic":
		return newAnthropicProvider(cred.APIKey, cred.Model), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cred.Provider)
	}
}
