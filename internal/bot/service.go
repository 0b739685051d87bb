// Package bot is the redis-prompt chat path: a raw system prompt per bot
// identifier, history in redis lists, and one chain built per bot.
package bot

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/companionhq/companion-server/internal/ai"
	"github.com/companionhq/companion-server/internal/history"
	"github.com/companionhq/companion-server/internal/persona"
)

// PromptStore is the subset of the KV store the bot path needs.
type PromptStore interface {
	Create(ctx context.Context, key, value string) error
	Read(ctx context.Context, key string) (string, error)
	Update(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, pattern string) ([]string, error)
}

type Service struct {
	prompts  PromptStore
	hist     history.Store
	provider ai.Provider
	window   int

	mu     sync.RWMutex
	chains map[string]*persona.Chain
	group  singleflight.Group
}

func NewService(prompts PromptStore, hist history.Store, provider ai.Provider, window int) *Service {
	return &Service{
		prompts:  prompts,
		hist:     hist,
		provider: provider,
		window:   window,
		chains:   make(map[string]*persona.Chain),
	}
}

// chainFor memoizes one chain per bot id. Concurrent first requests for an
// unseen bot collapse into a single prompt lookup and build.
func (s *Service) chainFor(ctx context.Context, botID string) (*persona.Chain, error) {
	s.mu.RLock()
	chain, ok := s.chains[botID]
	s.mu.RUnlock()
	if ok {
		return chain, nil
	}

	v, err, _ := s.group.Do(botID, func() (any, error) {
		prompt, err := s.prompts.Read(ctx, botID)
		if err != nil {
			return nil, err
		}
		c := persona.NewChain(prompt, s.provider, s.hist, s.window)
		s.mu.Lock()
		s.chains[botID] = c
		s.mu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*persona.Chain), nil
}

func (s *Service) invalidate(botID string) {
	s.mu.Lock()
	delete(s.chains, botID)
	s.mu.Unlock()
}

// Reply routes one user turn through the bot's chain. History is keyed by
// sessionID, so one bot can hold many independent sessions.
func (s *Service) Reply(ctx context.Context, botID, sessionID, input string) (string, error) {
	chain, err := s.chainFor(ctx, botID)
	if err != nil {
		return "", err
	}
	return chain.Reply(ctx, sessionID, input)
}

func (s *Service) CreatePrompt(ctx context.Context, botID, prompt string) error {
	return s.prompts.Create(ctx, botID, prompt)
}

func (s *Service) ReadPrompt(ctx context.Context, botID string) (string, error) {
	return s.prompts.Read(ctx, botID)
}

// UpdatePrompt overwrites the stored prompt and drops the cached chain so
// the next turn picks up the new instruction.
func (s *Service) UpdatePrompt(ctx context.Context, botID, prompt string) error {
	if err := s.prompts.Update(ctx, botID, prompt); err != nil {
		return err
	}
	s.invalidate(botID)
	return nil
}

func (s *Service) DeletePrompt(ctx context.Context, botID string) error {
	if err := s.prompts.Delete(ctx, botID); err != nil {
		return err
	}
	s.invalidate(botID)
	return nil
}

func (s *Service) ListBots(ctx context.Context, pattern string) ([]string, error) {
	return s.prompts.List(ctx, pattern)
}
