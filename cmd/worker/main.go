package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sourcegraph/conc"

	"github.com/companionhq/companion-server/internal/ai"
	"github.com/companionhq/companion-server/internal/chat"
	"github.com/companionhq/companion-server/internal/config"
	"github.com/companionhq/companion-server/internal/db"
	"github.com/companionhq/companion-server/internal/history"
	"github.com/companionhq/companion-server/internal/store/rabbitmq"
)

type jobMsg struct {
	JobID string `json:"job_id"`
}

func workerConcurrency() int {
	v := os.Getenv("WORKER_CONCURRENCY")
	if v == "" {
		return 2
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 2
	}
	if n > 50 {
		return 50
	}
	return n
}

func buildRegistry(cfg config.Config) *ai.Registry {
	reg := ai.NewRegistry()
	reg.Register("ollama", func(ctx context.Context) (ai.Provider, error) {
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.ChatTimeout), nil
	})
	reg.Register("openai", func(ctx context.Context) (ai.Provider, error) {
		return ai.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.ChatTimeout)
	})
	return reg
}

func main() {
	cfg := config.Load()

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}

	repo := chat.NewRepo(gdb)
	svc := chat.NewService(repo, history.NewSQLStore(gdb), buildRegistry(cfg), cfg.AIProvider, cfg.ChatContextWindowSize)

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("rabbit dial: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("rabbit channel: %v", err)
	}
	defer ch.Close()

	if err := rabbitmq.DeclareTopology(ch, cfg.RabbitQueue); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	concurrency := workerConcurrency()
	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("worker started, queue=%s concurrency=%d", cfg.RabbitQueue, concurrency)

	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg conc.WaitGroup
	for i := 0; i < concurrency; i++ {
		workerID := i
		wg.Go(func() {
			for d := range jobs {
				var m jobMsg
				if err := json.Unmarshal(d.Body, &m); err != nil || m.JobID == "" {
					log.Printf("worker=%d bad message: %v", workerID, err)
					_ = d.Nack(false, false)
					continue
				}

				start := time.Now()
				if err := handleJob(ctx, svc, m.JobID); err != nil {
					log.Printf("worker=%d job %s failed cost=%s err=%v", workerID, m.JobID, time.Since(start), err)
					_ = d.Nack(false, false)
					continue
				}

				if err := d.Ack(false); err != nil {
					log.Printf("worker=%d ack failed job=%s err=%v", workerID, m.JobID, err)
				}
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			log.Printf("worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				log.Printf("delivery channel closed")
				time.Sleep(1 * time.Second)
				continue
			}
			jobs <- d
		}
	}
}

func handleJob(ctx context.Context, svc *chat.Service, jobID string) error {
	_ = svc.MarkJobRunning(ctx, jobID)

	j, err := svc.GetJob(ctx, jobID)
	if err != nil {
		return err
	}

	if _, err := svc.GenerateAssistantTurn(ctx, j); err != nil {
		_ = svc.MarkJobFailed(ctx, jobID, err.Error())
		return err
	}

	return svc.MarkJobSucceeded(ctx, jobID)
}
