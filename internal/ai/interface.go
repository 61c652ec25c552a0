package ai

import "context"

// Role values for conversation messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLMProvider defines the contract for free-form text generation.
// The dialogue engine only needs "returns a string"; no structured output.
type LLMProvider interface {
	// Generate produces a reply to the last user message in history,
	// conditioned on the system prompt and the preceding turns.
	Generate(ctx context.Context, systemPrompt string, history []Message) (string, error)
}
