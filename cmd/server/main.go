package main

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/companionhq/companion-server/internal/ai"
	"github.com/companionhq/companion-server/internal/bot"
	"github.com/companionhq/companion-server/internal/chat"
	"github.com/companionhq/companion-server/internal/config"
	"github.com/companionhq/companion-server/internal/db"
	"github.com/companionhq/companion-server/internal/history"
	"github.com/companionhq/companion-server/internal/httpapi"
	"github.com/companionhq/companion-server/internal/store/rabbitmq"
	"github.com/companionhq/companion-server/internal/store/redisstore"
)

const botPromptPrefix = "bot:prompt:"

func main() {
	cfg := config.Load()

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Printf("redis ping failed (bot path degraded): %v", err)
	}

	reg := ai.NewRegistry()
	reg.Register("ollama", func(ctx context.Context) (ai.Provider, error) {
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.ChatTimeout), nil
	})
	reg.Register("openai", func(ctx context.Context) (ai.Provider, error) {
		return ai.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.ChatTimeout)
	})

	chatSvc := chat.NewService(
		chat.NewRepo(gdb),
		history.NewSQLStore(gdb),
		reg,
		cfg.AIProvider,
		cfg.ChatContextWindowSize,
	)

	// The bot path resolves its provider once at boot; a misconfigured
	// provider turns into a per-request configuration error.
	botProvider, err := reg.Get(context.Background(), cfg.AIProvider)
	if err != nil {
		log.Printf("bot provider unavailable: %v", err)
	}
	botSvc := bot.NewService(
		redisstore.New(rdb, botPromptPrefix),
		history.NewRedisStore(rdb),
		botProvider,
		cfg.ChatContextWindowSize,
	)

	var rabbit *rabbitmq.Publisher
	if cfg.RabbitEnabled {
		rabbit, err = rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			log.Fatalf("rabbit connect: %v", err)
		}
		defer rabbit.Close()
	}

	r := httpapi.NewRouter(gdb, cfg, chatSvc, botSvc, rabbit)

	log.Printf("listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
