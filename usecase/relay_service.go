package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/satriahrh/pixel-relay/domain"
	"github.com/satriahrh/pixel-relay/utils/log"
)

// Options are the recognized relay settings.
type Options struct {
	APIKey string
}

// RelayService turns an inbound chat body into one upstream call.
// It holds no per-request state and is safe for concurrent use.
type RelayService struct {
	llm    domain.Llm
	hasher domain.Hasher
	opts   Options
}

func NewRelayService(llm domain.Llm, hasher domain.Hasher, opts Options) *RelayService {
	return &RelayService{llm: llm, hasher: hasher, opts: opts}
}

type chatRequest struct {
	History *domain.ConversationHistory `json:"history"`
}

var errHistoryRequired = errors.New("history is required")

// Relay decodes body, forwards the history and returns the reply text.
// The body is decoded before the API key is checked, so a malformed body
// always reports the decode error. The error is a
// *domain.ConfigurationError when no API key is set, and a
// *domain.RelayFailure for everything else.
func (s *RelayService) Relay(ctx context.Context, body io.Reader) (string, error) {
	history, failure := decodeHistory(body)
	if failure != nil {
		s.logFailure(ctx, nil, failure)
		return "", failure
	}

	if s.opts.APIKey == "" {
		return "", domain.NewAPIKeyMissingError()
	}

	reply, err := s.llm.Generate(ctx, history)
	if err != nil {
		rf := domain.AsRelayFailure(err)
		s.logFailure(ctx, history, rf)
		return "", rf
	}
	return reply, nil
}

func decodeHistory(body io.Reader) (domain.ConversationHistory, *domain.RelayFailure) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, domain.NewDecodeFailure(err)
	}

	var req chatRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, domain.NewDecodeFailure(err)
	}
	if req.History == nil {
		return nil, domain.NewDecodeFailure(errHistoryRequired)
	}
	return *req.History, nil
}

func (s *RelayService) logFailure(ctx context.Context, history domain.ConversationHistory, err *domain.RelayFailure) {
	fields := []zap.Field{
		zap.String("kind", string(err.Kind)),
		zap.Int("messages", len(history)),
		zap.Error(err),
	}
	if err.StatusCode != 0 {
		fields = append(fields, zap.Int("upstream_status", err.StatusCode))
	}
	if history != nil && s.hasher != nil {
		fields = append(fields, zap.String("history_digest", s.hasher.Digest(history)))
	}
	log.WithCtx(ctx).Error("chat relay failed", fields...)
}
