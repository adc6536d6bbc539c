package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/satriahrh/pixel-relay/domain"
)

// GeminiSDK is the google.golang.org/genai backed driver. The SDK sends
// the key as a header rather than in the query string.
type GeminiSDK struct {
	client *genai.Client
	model  string
}

type SDKOption func(*genai.ClientConfig)

// WithSDKBaseURL points the SDK at another host, e.g. a test server.
func WithSDKBaseURL(u string) SDKOption {
	return func(cc *genai.ClientConfig) {
		cc.HTTPOptions.BaseURL = u
	}
}

func NewGeminiSDK(ctx context.Context, apiKey, model string, opts ...SDKOption) (*GeminiSDK, error) {
	cc := &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1beta"},
	}
	for _, opt := range opts {
		opt(cc)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	if model == "" {
		model = DefaultModel
	}
	return &GeminiSDK{client: client, model: model}, nil
}

func toGenaiContents(history domain.ConversationHistory) []*genai.Content {
	contents := make([]*genai.Content, len(history))
	for i, msg := range history {
		contents[i] = &genai.Content{
			Role: msg.Role.Upstream(),
			Parts: []*genai.Part{
				{Text: msg.Text},
			},
		}
	}
	return contents
}

func generateConfig(persona string, gen domain.GenerationSettings) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: persona}},
		},
		Temperature:     genai.Ptr(gen.Temperature),
		TopK:            genai.Ptr(float32(gen.TopK)),
		TopP:            genai.Ptr(gen.TopP),
		MaxOutputTokens: gen.MaxOutputTokens,
	}
}

// Generate implements domain.Llm.
func (g *GeminiSDK) Generate(ctx context.Context, history domain.ConversationHistory) (string, error) {
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		toGenaiContents(history),
		generateConfig(domain.Persona, domain.DefaultGeneration),
	)
	if err != nil {
		return "", sdkFailure(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", domain.NewShapeFailure(replyPath)
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// sdkFailure keeps the upstream error.message from genai's APIError rather
// than its formatted Error() text. Other errors never got a response.
func sdkFailure(err error) *domain.RelayFailure {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return domain.NewUpstreamFailure(apiErr.Code, apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return domain.NewUpstreamFailure(apiErrPtr.Code, apiErrPtr.Message)
	}
	return domain.NewTransportFailure(stripURL(err))
}
