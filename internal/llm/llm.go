// Package llm defines the chat model boundary. Model and temperature are
// fixed at construction; a ChatModel turns a message sequence into one
// completion and nothing else.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
)

var (
	// ErrInvalidConfig indicates invalid chat model configuration.
	ErrInvalidConfig = errors.New("invalid llm configuration")

	// ErrNoCompletion indicates the provider returned no choices.
	ErrNoCompletion = errors.New("model returned no completion")
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a chat transcript.
type Message struct {
	Role Role
	Text string
}

// ChatModel produces a single completion for a message sequence.
type ChatModel interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// toContent converts transcript messages to the langchaingo content shape.
func toContent(messages []Message) ([]llms.MessageContent, error) {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		var role llms.ChatMessageType
		switch m.Role {
		case RoleSystem:
			role = llms.ChatMessageTypeSystem
		case RoleUser:
			role = llms.ChatMessageTypeHuman
		case RoleAssistant:
			role = llms.ChatMessageTypeAI
		default:
			return nil, fmt.Errorf("unknown message role %q", m.Role)
		}
		out = append(out, llms.TextParts(role, m.Text))
	}
	return out, nil
}

// firstChoice extracts the completion text from a provider response.
func firstChoice(resp *llms.ContentResponse) (string, error) {
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return "", ErrNoCompletion
	}
	return resp.Choices[0].Content, nil
}
