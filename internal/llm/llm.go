// Package llm wraps an OpenAI-compatible chat-completion endpoint. The
// pipeline treats completion as a pure function of the prompt: one request,
// one text response, no state retained between calls.
package llm

import "context"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
