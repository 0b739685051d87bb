package ai

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

// Provider generates a reply for an ordered message sequence.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// ErrNotConfigured means the provider is missing a credential or endpoint.
var ErrNotConfigured = errors.New("ai: provider not configured")
