package tools

import (
	"context"
	"fmt"
	"regexp"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog/log"

	"github.com/pacifico/agora/pkg/auth"
)

const (
	passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	passwordLength   = 12

	usageError = "Error: formato de entrada inválido. Se requiere: para el usuario 'nombre' con email 'email@ejemplo.com'"
)

var (
	namePattern  = regexp.MustCompile(`(?:para el usuario|usuario)\s+'([^']+)'`)
	emailPattern = regexp.MustCompile(`email\s+'([^']+)'`)
)

// AccountRequest is the result of parsing a free-text account-creation
// argument. It is consumed once and never stored.
type AccountRequest struct {
	FullName string
	Email    string
	Role     string
}

// ParseAccountRequest extracts the name and email from a free-text
// argument such as "crea una cuenta para el usuario 'Ana' con email
// 'ana@x.com'". It reports ok=false when either field is missing.
func ParseAccountRequest(arg, role string) (AccountRequest, bool) {
	nameMatch := namePattern.FindStringSubmatch(arg)
	emailMatch := emailPattern.FindStringSubmatch(arg)
	if nameMatch == nil || emailMatch == nil {
		return AccountRequest{}, false
	}
	return AccountRequest{
		FullName: nameMatch[1],
		Email:    emailMatch[1],
		Role:     role,
	}, true
}

// NewTempPassword generates a cryptographically random 12-character
// alphanumeric temporary password.
func NewTempPassword() (string, error) {
	return gonanoid.Generate(passwordAlphabet, passwordLength)
}

// accountCreator builds the account-creation tool handlers. When the
// provisioner is nil (auth backend unconfigured) every invocation returns
// a fixed error string instead of failing the turn.
type accountCreator struct {
	provisioner auth.Provisioner
}

func (c *accountCreator) createWithRole(ctx context.Context, arg, role string) string {
	if c.provisioner == nil {
		return "Error: El servicio de autenticación no está disponible."
	}

	req, ok := ParseAccountRequest(arg, role)
	if !ok {
		return usageError
	}

	password, err := NewTempPassword()
	if err != nil {
		return fmt.Sprintf("Error al crear cuenta de %s: no se pudo generar la contraseña", role)
	}

	result, err := c.provisioner.Register(ctx, auth.Registration{
		Email:    req.Email,
		Password: password,
		FullName: req.FullName,
		Role:     role,
	})
	if err != nil {
		log.Warn().Err(err).Str("role", role).Msg("Account provisioning call failed")
		return fmt.Sprintf("Excepción al crear cuenta de %s: %v", role, err)
	}
	if !result.Success {
		reason := result.Error
		if reason == "" {
			reason = "Desconocido"
		}
		return fmt.Sprintf("Error al crear cuenta de %s: %s", role, reason)
	}

	// The temporary password is deliberately part of the confirmation;
	// callers must treat this string as sensitive output.
	return fmt.Sprintf("Cuenta de %s creada para %s (%s). Contraseña temporal: %s. El usuario debe cambiarla.",
		role, req.FullName, req.Email, password)
}

func (c *accountCreator) handler(role string) Handler {
	return func(ctx context.Context, arg string) string {
		return c.createWithRole(ctx, arg, role)
	}
}
