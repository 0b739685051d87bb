// Package history persists per-session chat turns. Both chat paths thread
// their history through a Store keyed by session identifier, so concurrent
// sessions never share context and history survives process restarts.
package history

import "context"

const (
	TypeHuman = "human"
	TypeAI    = "ai"
)

type Message struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type Store interface {
	// Append adds one turn to the end of the session's history.
	Append(ctx context.Context, sessionKey string, msg Message) error
	// Messages returns the full history, oldest first.
	Messages(ctx context.Context, sessionKey string) ([]Message, error)
	// Recent returns at most limit of the newest turns, oldest first.
	Recent(ctx context.Context, sessionKey string, limit int) ([]Message, error)
}
