package persona

import (
	"context"

	"github.com/companionhq/companion-server/internal/ai"
	"github.com/companionhq/companion-server/internal/history"
)

// Chain binds a system instruction to a provider and a history store.
// Each Reply call loads the session's prior turns, sends
// [system, history..., human] to the provider, then appends the human
// input and the reply to the session's history.
type Chain struct {
	system   string
	provider ai.Provider
	store    history.Store
	window   int
}

func NewChain(system string, provider ai.Provider, store history.Store, window int) *Chain {
	if window <= 0 || window > 100 {
		window = 20
	}
	return &Chain{system: system, provider: provider, store: store, window: window}
}

func (c *Chain) Reply(ctx context.Context, sessionKey, input string) (string, error) {
	if c.provider == nil {
		return "", ai.ErrNotConfigured
	}

	prior, err := c.store.Recent(ctx, sessionKey, c.window)
	if err != nil {
		return "", err
	}

	msgs := make([]ai.Message, 0, len(prior)+2)
	msgs = append(msgs, ai.Message{Role: ai.RoleSystem, Content: c.system})
	for _, m := range prior {
		role := ai.RoleUser
		if m.Type == history.TypeAI {
			role = ai.RoleAssistant
		}
		msgs = append(msgs, ai.Message{Role: role, Content: m.Content})
	}
	msgs = append(msgs, ai.Message{Role: ai.RoleUser, Content: input})

	reply, err := c.provider.Chat(ctx, msgs)
	if err != nil {
		return "", err
	}

	// Persist both turns only after the provider answered, so a failed
	// call leaves the history unchanged.
	if err := c.store.Append(ctx, sessionKey, history.Message{Type: history.TypeHuman, Content: input}); err != nil {
		return "", err
	}
	if err := c.store.Append(ctx, sessionKey, history.Message{Type: history.TypeAI, Content: reply}); err != nil {
		return "", err
	}
	return reply, nil
}
