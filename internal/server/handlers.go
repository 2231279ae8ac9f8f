package server

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/pacifico/agora/pkg/brain"
)

// chatRequest is the POST /chat body.
type chatRequest struct {
	UserID string `json:"user_id"`
	Prompt string `json:"prompt"`
}

// chatResponse is the POST /chat reply.
type chatResponse struct {
	Status   string `json:"status"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// createSessionRequest is the POST /session body.
type createSessionRequest struct {
	UserID string `json:"user_id"`
	Tier   string `json:"tier"`
}

// defaultUserID identifies the shared console session created on first
// contact without an explicit user.
const defaultUserID = "default"

// accountPattern matches account-creation confirmations; the captured
// role drives the post-creation redirect.
var accountPattern = regexp.MustCompile(`^Cuenta de (\w+)`)

var redirectPaths = map[string]string{
	"master":     "/configuracion",
	"candidato":  "/candidato",
	"lider":      "/liderazgo",
	"votante":    "/dashboard",
	"publicidad": "/reporte-publicidad",
}

// inferRedirect maps an account-creation response to the panel its new
// role should land on.
func inferRedirect(response string) string {
	m := accountPattern.FindStringSubmatch(response)
	if m == nil {
		return ""
	}
	return redirectPaths[strings.ToLower(m[1])]
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Método no permitido.")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Cuerpo de la solicitud inválido.")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "El campo 'prompt' es obligatorio.")
		return
	}
	if req.UserID == "" {
		req.UserID = defaultUserID
	}

	// First contact gets a developer session automatically.
	if s.registry.Get(req.UserID) == nil {
		if _, err := s.registry.CreateSession(req.UserID, "developer"); err != nil {
			s.logger.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to create session")
			writeError(w, http.StatusInternalServerError, "No se pudo inicializar la sesión.")
			return
		}
	}

	result := s.registry.Process(r.Context(), req.UserID, req.Prompt)
	if result.Status != "success" {
		writeJSON(w, statusFor(result.Failure), chatResponse{Status: "error", Error: result.Err})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Status:   "success",
		Response: result.Response,
		Redirect: inferRedirect(result.Response),
	})
}

// statusFor maps a turn failure onto an HTTP status code.
func statusFor(failure error) int {
	switch {
	case errors.Is(failure, brain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(failure, brain.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	case errors.Is(failure, brain.ErrToolNotPermitted):
		return http.StatusForbidden
	case errors.Is(failure, brain.ErrBackendTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Método no permitido.")
		return
	}

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Cuerpo de la solicitud inválido.")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "El campo 'user_id' es obligatorio.")
		return
	}

	info, err := s.registry.CreateSession(req.UserID, req.Tier)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", req.UserID).Msg("Failed to create session")
		writeError(w, http.StatusInternalServerError, "No se pudo inicializar la sesión.")
		return
	}

	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Método no permitido.")
		return
	}
	writeJSON(w, http.StatusOK, s.themes.Get())
}

func (s *Server) handleMapData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Método no permitido.")
		return
	}

	role := r.URL.Query().Get("role")
	if role == "" {
		role = "default"
	}

	markers, err := s.maps.MarkersFor(role)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, markers)
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Método no permitido.")
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "El parámetro 'user_id' es obligatorio.")
		return
	}

	remaining, err := s.registry.Remaining(userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Cerebro no inicializado para este usuario")
		return
	}
	writeJSON(w, http.StatusOK, remaining)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Método no permitido.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "ok",
		"uptime_seconds":  int(time.Since(s.startTime).Seconds()),
		"active_sessions": s.registry.Len(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"status": "error", "error": msg})
}

// clientIP extracts the originating address, honoring X-Forwarded-For
// when a proxy sits in front.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
