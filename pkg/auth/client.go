// Package auth talks to the external identity backend that owns user
// accounts. The backend is authoritative: account creation either succeeds
// there or not at all.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Registration is the payload for provisioning a new account.
type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Result reports the outcome of a provisioning call.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Provisioner creates accounts on the identity backend.
type Provisioner interface {
	Register(ctx context.Context, reg Registration) (Result, error)
}

// Client is an HTTP Provisioner for a Supabase-style auth service.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Config holds client configuration.
type Config struct {
	BaseURL    string
	ServiceKey string
	Timeout    time.Duration
	Logger     zerolog.Logger
}

// NewClient creates a provisioning client. It fails when the backend
// connection parameters are missing so callers can degrade gracefully
// instead of discovering the problem mid-conversation.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" || cfg.ServiceKey == "" {
		return nil, fmt.Errorf("auth backend is not configured: base URL and service key are required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		serviceKey: cfg.ServiceKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     cfg.Logger,
	}, nil
}

// Register provisions a new account. Backend rejections come back as a
// Result with Success=false; transport failures are returned as errors.
func (c *Client) Register(ctx context.Context, reg Registration) (Result, error) {
	if reg.Email == "" || reg.Password == "" {
		return Result{Success: false, Error: "Email y contraseña son requeridos."}, nil
	}

	payload := map[string]interface{}{
		"email":    reg.Email,
		"password": reg.Password,
		"data": map[string]string{
			"full_name": reg.FullName,
			"role":      reg.Role,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal registration: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/signup", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to build signup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("auth backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("failed to read auth response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.logger.Info().Str("email", reg.Email).Str("role", reg.Role).Msg("Account provisioned")
		return Result{Success: true}, nil
	}

	reason := backendError(raw)
	if strings.Contains(reason, "already registered") {
		reason = "El correo electrónico ya está registrado."
	}

	c.logger.Warn().
		Int("status", resp.StatusCode).
		Str("email", reg.Email).
		Str("reason", reason).
		Msg("Account provisioning rejected")

	return Result{Success: false, Error: reason}, nil
}

func backendError(raw []byte) string {
	var parsed struct {
		Message  string `json:"message"`
		Msg      string `json:"msg"`
		ErrorMsg string `json:"error_description"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil {
		for _, m := range []string{parsed.Message, parsed.Msg, parsed.ErrorMsg} {
			if m != "" {
				return m
			}
		}
	}
	if len(raw) > 0 {
		return string(raw)
	}
	return "Desconocido"
}
