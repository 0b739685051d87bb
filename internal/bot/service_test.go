package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/companionhq/companion-server/internal/ai"
	"github.com/companionhq/companion-server/internal/history"
	"github.com/companionhq/companion-server/internal/store/redisstore"
)

type fakePrompts struct {
	mu    sync.Mutex
	data  map[string]string
	reads int
}

func newFakePrompts() *fakePrompts {
	return &fakePrompts{data: make(map[string]string)}
}

func (f *fakePrompts) Create(ctx context.Context, key, value string) error {
	_ = ctx
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return redisstore.ErrExists
	}
	f.data[key] = value
	return nil
}

func (f *fakePrompts) Read(ctx context.Context, key string) (string, error) {
	_ = ctx
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	v, ok := f.data[key]
	if !ok {
		return "", redisstore.ErrNotFound
	}
	return v, nil
}

func (f *fakePrompts) Update(ctx context.Context, key, value string) error {
	_ = ctx
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; !ok {
		return redisstore.ErrNotFound
	}
	f.data[key] = value
	return nil
}

func (f *fakePrompts) Delete(ctx context.Context, key string) error {
	_ = ctx
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; !ok {
		return redisstore.ErrNotFound
	}
	delete(f.data, key)
	return nil
}

func (f *fakePrompts) List(ctx context.Context, pattern string) ([]string, error) {
	_ = ctx
	_ = pattern
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.data))
	for k := range f.data {
		out = append(out, k)
	}
	return out, nil
}

type echoProvider struct {
	mu   sync.Mutex
	last []ai.Message
}

func (p *echoProvider) Chat(ctx context.Context, messages []ai.Message) (string, error) {
	_ = ctx
	p.mu.Lock()
	p.last = append([]ai.Message(nil), messages...)
	p.mu.Unlock()
	return "pong", nil
}

type memStore struct {
	mu       sync.Mutex
	sessions map[string][]history.Message
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string][]history.Message)}
}

func (s *memStore) Append(ctx context.Context, key string, msg history.Message) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[key] = append(s.sessions[key], msg)
	return nil
}

func (s *memStore) Messages(ctx context.Context, key string) ([]history.Message, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]history.Message(nil), s.sessions[key]...), nil
}

func (s *memStore) Recent(ctx context.Context, key string, limit int) ([]history.Message, error) {
	msgs, _ := s.Messages(ctx, key)
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func TestReply_UsesStoredPrompt(t *testing.T) {
	prompts := newFakePrompts()
	prompts.data["mira"] = "You are Mira."
	prov := &echoProvider{}
	svc := NewService(prompts, newMemStore(), prov, 20)

	reply, err := svc.Reply(context.Background(), "mira", "mira-user001", "hi")
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if reply != "pong" {
		t.Fatalf("unexpected reply %q", reply)
	}
	if len(prov.last) == 0 || prov.last[0].Content != "You are Mira." {
		t.Fatalf("expected stored prompt as system message, got %+v", prov.last)
	}
}

func TestReply_UnknownBot(t *testing.T) {
	svc := NewService(newFakePrompts(), newMemStore(), &echoProvider{}, 20)
	_, err := svc.Reply(context.Background(), "ghost", "s1", "hi")
	if !errors.Is(err, redisstore.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReply_ChainBuiltOnce(t *testing.T) {
	prompts := newFakePrompts()
	prompts.data["mira"] = "You are Mira."
	svc := NewService(prompts, newMemStore(), &echoProvider{}, 20)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := svc.Reply(ctx, "mira", "s1", "hi"); err != nil {
			t.Fatalf("reply %d: %v", i, err)
		}
	}
	if prompts.reads != 1 {
		t.Fatalf("expected one prompt read for the cached chain, got %d", prompts.reads)
	}
}

func TestReply_ConcurrentFirstRequestsSingleBuild(t *testing.T) {
	prompts := newFakePrompts()
	prompts.data["mira"] = "You are Mira."
	svc := NewService(prompts, newMemStore(), &echoProvider{}, 20)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Reply(context.Background(), "mira", "s1", "hi")
		}()
	}
	wg.Wait()

	if prompts.reads != 1 {
		t.Fatalf("expected single-flight build, got %d prompt reads", prompts.reads)
	}
}

func TestUpdatePrompt_InvalidatesCachedChain(t *testing.T) {
	prompts := newFakePrompts()
	prompts.data["mira"] = "old prompt"
	prov := &echoProvider{}
	svc := NewService(prompts, newMemStore(), prov, 20)

	ctx := context.Background()
	if _, err := svc.Reply(ctx, "mira", "s1", "hi"); err != nil {
		t.Fatalf("reply: %v", err)
	}
	if err := svc.UpdatePrompt(ctx, "mira", "new prompt"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := svc.Reply(ctx, "mira", "s1", "hi again"); err != nil {
		t.Fatalf("reply after update: %v", err)
	}
	if !strings.Contains(prov.last[0].Content, "new prompt") {
		t.Fatalf("expected rebuilt chain with new prompt, got %q", prov.last[0].Content)
	}
}

func TestSessionsSeparatePerSessionID(t *testing.T) {
	prompts := newFakePrompts()
	prompts.data["mira"] = "You are Mira."
	store := newMemStore()
	svc := NewService(prompts, store, &echoProvider{}, 20)

	ctx := context.Background()
	if _, err := svc.Reply(ctx, "mira", "mira-user001", "hi"); err != nil {
		t.Fatalf("reply: %v", err)
	}
	if _, err := svc.Reply(ctx, "mira", "mira-user002", "hello"); err != nil {
		t.Fatalf("reply: %v", err)
	}

	if len(store.sessions["mira-user001"]) != 2 || len(store.sessions["mira-user002"]) != 2 {
		t.Fatalf("sessions crossed: %v", store.sessions)
	}
}
