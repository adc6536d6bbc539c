package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/satriahrh/pixel-relay/domain"
	"github.com/satriahrh/pixel-relay/utils/log"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.0-flash"

	replyPath        = "candidates.0.content.parts.0.text"
	errorMessagePath = "error.message"
)

type Part struct {
	Text string `json:"text"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type GenerationConfig struct {
	Temperature     float32 `json:"temperature"`
	TopK            int32   `json:"topK"`
	TopP            float32 `json:"topP"`
	MaxOutputTokens int32   `json:"maxOutputTokens"`
}

// GenerateRequest is the generateContent request body.
type GenerateRequest struct {
	Contents          []Content        `json:"contents"`
	GenerationConfig  GenerationConfig `json:"generationConfig"`
	SystemInstruction Content          `json:"systemInstruction"`
}

// BuildRequest maps history one-to-one onto upstream contents, keeping
// order, and attaches the persona and generation settings.
func BuildRequest(history domain.ConversationHistory, persona string, gen domain.GenerationSettings) GenerateRequest {
	contents := make([]Content, len(history))
	for i, msg := range history {
		contents[i] = Content{
			Role:  msg.Role.Upstream(),
			Parts: []Part{{Text: msg.Text}},
		}
	}

	return GenerateRequest{
		Contents: contents,
		GenerationConfig: GenerationConfig{
			Temperature:     gen.Temperature,
			TopK:            gen.TopK,
			TopP:            gen.TopP,
			MaxOutputTokens: gen.MaxOutputTokens,
		},
		SystemInstruction: Content{Parts: []Part{{Text: persona}}},
	}
}

// GeminiREST calls generateContent over plain HTTP with the API key in
// the query string.
type GeminiREST struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
}

type RESTOption func(*GeminiREST)

func WithBaseURL(u string) RESTOption {
	return func(g *GeminiREST) {
		if u != "" {
			g.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithModel(model string) RESTOption {
	return func(g *GeminiREST) {
		if model != "" {
			g.model = model
		}
	}
}

func WithHTTPClient(c *http.Client) RESTOption {
	return func(g *GeminiREST) {
		if c != nil {
			g.httpClient = c
		}
	}
}

func NewGeminiREST(apiKey string, opts ...RESTOption) *GeminiREST {
	g := &GeminiREST{
		httpClient: &http.Client{},
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GeminiREST) endpoint() string {
	q := url.Values{"key": {g.apiKey}}
	return fmt.Sprintf("%s/models/%s:generateContent?%s", g.baseURL, url.PathEscape(g.model), q.Encode())
}

// Generate implements domain.Llm. Every error is a *domain.RelayFailure.
func (g *GeminiREST) Generate(ctx context.Context, history domain.ConversationHistory) (string, error) {
	payload, err := json.Marshal(BuildRequest(history, domain.Persona, domain.DefaultGeneration))
	if err != nil {
		return "", domain.NewDecodeFailure(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return "", domain.NewTransportFailure(stripURL(err))
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", domain.NewTransportFailure(stripURL(err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.NewTransportFailure(err)
	}

	log.WithCtx(ctx).Debug("upstream responded",
		zap.String("model", g.model),
		zap.Int("status", resp.StatusCode),
		zap.Int("body_size", len(data)),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", domain.NewUpstreamFailure(resp.StatusCode, gjson.GetBytes(data, errorMessagePath).String())
	}

	reply := gjson.GetBytes(data, replyPath)
	if reply.Type != gjson.String {
		return "", domain.NewShapeFailure(replyPath)
	}
	return reply.String(), nil
}

// stripURL drops the request URL from transport errors; it carries the key.
func stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}
