package domain

import "context"

// Llm abstracts the upstream generation provider.
type Llm interface {
	// Generate sends the whole history with the persona and generation
	// settings attached and returns the model's reply text.
	Generate(ctx context.Context, history ConversationHistory) (string, error)
}

type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// ConversationHistory is ordered oldest first.
type ConversationHistory []Message

type Role string

const (
	UserRole  Role = "user"
	BotRole   Role = "bot"
	ModelRole Role = "model"
)

// Upstream roles understood by the generation API.
const (
	UpstreamUser  = "user"
	UpstreamModel = "model"
)

// Upstream collapses a caller role to one of the two upstream roles.
// Anything that is not bot or model is sent as user.
func (r Role) Upstream() string {
	switch r {
	case BotRole, ModelRole:
		return UpstreamModel
	default:
		return UpstreamUser
	}
}

// GenerationSettings are fixed for every request.
type GenerationSettings struct {
	Temperature     float32
	TopK            int32
	TopP            float32
	MaxOutputTokens int32
}

var DefaultGeneration = GenerationSettings{
	Temperature:     0.7,
	TopK:            40,
	TopP:            0.95,
	MaxOutputTokens: 1024,
}
