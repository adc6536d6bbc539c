package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/satriahrh/pixel-relay/domain"
	"github.com/satriahrh/pixel-relay/usecase"
	"github.com/satriahrh/pixel-relay/utils/log"
)

type ChatHandler struct {
	relay *usecase.RelayService
}

type ChatResponse struct {
	Text string `json:"text"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewChatHandler(relay *usecase.RelayService) *ChatHandler {
	return &ChatHandler{relay: relay}
}

// Chat relays {"history": [...]} to the upstream model. Only POST is
// accepted; other verbs on the route get 405 with the JSON envelope.
func (h *ChatHandler) Chat(c echo.Context) error {
	if c.Request().Method != http.MethodPost {
		return writeError(c, domain.ErrMethodNotAllowed)
	}

	ctx := log.WithRequestID(c.Request().Context(), c.Response().Header().Get(echo.HeaderXRequestID))

	text, err := h.relay.Relay(ctx, c.Request().Body)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, ChatResponse{Text: text})
}

// writeError is the only place errors become status codes.
func writeError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrMethodNotAllowed) {
		status = http.StatusMethodNotAllowed
	}
	return c.JSON(status, ErrorResponse{Error: err.Error()})
}

// HealthCheck reports liveness; it does not contact the upstream.
func (h *ChatHandler) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "chat-relay",
	})
}

// Register mounts the relay routes on e.
func Register(e *echo.Echo, h *ChatHandler) {
	e.Any("/api/chat", h.Chat)
	e.GET("/api/v1/health", h.HealthCheck)
}
