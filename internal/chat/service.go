package chat

import (
	"context"
	"strconv"

	"github.com/companionhq/companion-server/internal/ai"
	"github.com/companionhq/companion-server/internal/history"
	"github.com/companionhq/companion-server/internal/models"
	"github.com/companionhq/companion-server/internal/persona"
)

// Service runs the relational chat path: companion attributes come from
// the database, history lives in the message_store table, replies come
// from the configured provider.
type Service struct {
	repo              *Repo
	hist              history.Store
	registry          *ai.Registry
	providerName      string
	contextWindowSize int
}

func NewService(repo *Repo, hist history.Store, registry *ai.Registry, providerName string, contextWindowSize int) *Service {
	if contextWindowSize <= 0 || contextWindowSize > 100 {
		contextWindowSize = 20
	}
	if providerName == "" {
		providerName = "ollama"
	}
	return &Service{
		repo:              repo,
		hist:              hist,
		registry:          registry,
		providerName:      providerName,
		contextWindowSize: contextWindowSize,
	}
}

func personaFor(c *models.Companion) persona.Persona {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	p := persona.Persona{
		Name:         c.Name,
		Gender:       deref(c.Gender),
		BirthCountry: deref(c.BirthCountry),
		Personality:  deref(c.Personality),
		Education:    deref(c.Education),
		Background:   deref(c.Background),
		SystemPrompt: deref(c.SystemPrompt),
	}
	if c.Age != nil {
		p.Age = strconv.Itoa(*c.Age)
	}
	return p
}

func (s *Service) chainFor(ctx context.Context, c *models.Companion) (*persona.Chain, error) {
	provider, err := s.registry.Get(ctx, s.providerName)
	if err != nil {
		return nil, err
	}
	return persona.NewChain(personaFor(c).SystemMessage(), provider, s.hist, s.contextWindowSize), nil
}

// Reply runs one synchronous chat turn. The caller's user and companion
// must both exist; gorm.ErrRecordNotFound propagates when either is
// missing.
func (s *Service) Reply(ctx context.Context, userID, companionID uint64, sessionKey, input string) (string, error) {
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return "", err
	}
	companion, err := s.repo.GetCompanion(ctx, companionID)
	if err != nil {
		return "", err
	}

	chain, err := s.chainFor(ctx, companion)
	if err != nil {
		return "", err
	}
	return chain.Reply(ctx, sessionKey, input)
}

func (s *Service) History(ctx context.Context, sessionKey string) ([]history.Message, error) {
	return s.hist.Messages(ctx, sessionKey)
}

// Async path. EnqueueReply records the human turn immediately and leaves
// reply generation to the worker.

func (s *Service) AppendHumanTurn(ctx context.Context, sessionKey, input string) error {
	return s.hist.Append(ctx, sessionKey, history.Message{Type: history.TypeHuman, Content: input})
}

func (s *Service) CreateJobOrGetExisting(ctx context.Context, job *Job) (*Job, bool, error) {
	return s.repo.CreateJobOrGetExisting(ctx, job)
}

func (s *Service) GetJob(ctx context.Context, jobID string) (*Job, error) {
	return s.repo.GetJobByID(ctx, jobID)
}

func (s *Service) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *Service) GetCompanion(ctx context.Context, id uint64) (*models.Companion, error) {
	return s.repo.GetCompanion(ctx, id)
}

// GenerateAssistantTurn builds provider context from the stored history
// (which already ends with the job's human turn) and appends only the AI
// reply. Used by the worker.
func (s *Service) GenerateAssistantTurn(ctx context.Context, job *Job) (string, error) {
	companion, err := s.repo.GetCompanion(ctx, job.CompanionID)
	if err != nil {
		return "", err
	}

	provider, err := s.registry.Get(ctx, s.providerName)
	if err != nil {
		return "", err
	}

	prior, err := s.hist.Recent(ctx, job.SessionKey, s.contextWindowSize)
	if err != nil {
		return "", err
	}

	msgs := make([]ai.Message, 0, len(prior)+1)
	msgs = append(msgs, ai.Message{Role: ai.RoleSystem, Content: personaFor(companion).SystemMessage()})
	for _, m := range prior {
		role := ai.RoleUser
		if m.Type == history.TypeAI {
			role = ai.RoleAssistant
		}
		msgs = append(msgs, ai.Message{Role: role, Content: m.Content})
	}

	reply, err := provider.Chat(ctx, msgs)
	if err != nil {
		return "", err
	}
	if err := s.hist.Append(ctx, job.SessionKey, history.Message{Type: history.TypeAI, Content: reply}); err != nil {
		return "", err
	}
	return reply, nil
}

func (s *Service) MarkJobRunning(ctx context.Context, id string) error {
	return s.repo.MarkJobRunning(ctx, id)
}

func (s *Service) MarkJobSucceeded(ctx context.Context, id string) error {
	return s.repo.MarkJobSucceeded(ctx, id)
}

func (s *Service) MarkJobFailed(ctx context.Context, id string, msg string) error {
	return s.repo.MarkJobFailed(ctx, id, msg)
}
