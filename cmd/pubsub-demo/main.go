// Command pubsub-demo wires a priority broker between a handful of
// publisher and subscriber goroutines and prints every delivery, showing
// how decoupled components communicate through channels without calling
// each other directly.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	json "github.com/goccy/go-json"
	_ "github.com/joho/godotenv/autoload"
	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"

	"github.com/Thierry46/pubsub"
	"github.com/Thierry46/pubsub/pkg/slogx"
)

var log zerolog.Logger

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Stamp}
	log = zerolog.New(output).With().Timestamp().Logger()
	slog.SetDefault(slog.New(
		zeroslog.NewHandler(log, &zeroslog.HandlerOptions{Level: slog.LevelDebug}),
	))
}

type config struct {
	Channel       string        `env:"PUBSUB_CHANNEL" envDefault:"news"`
	QueueCapacity int           `env:"PUBSUB_QUEUE_CAPACITY" envDefault:"100"`
	Subscribers   int           `env:"PUBSUB_SUBSCRIBERS" envDefault:"3"`
	Messages      int           `env:"PUBSUB_MESSAGES" envDefault:"10"`
	DrainTimeout  time.Duration `env:"PUBSUB_DRAIN_TIMEOUT" envDefault:"2s"`
}

func main() {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		slog.Error("failed to parse config", slogx.Error(err))
		os.Exit(1)
	}

	broker, err := pubsub.NewPriority(pubsub.WithQueueCapacity(cfg.QueueCapacity))
	if err != nil {
		slog.Error("failed to create broker", slogx.Error(err))
		os.Exit(1)
	}

	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < cfg.Subscribers; i++ {
		queue, err := broker.Subscribe(cfg.Channel)
		if err != nil {
			slog.Error("failed to subscribe", slogx.Error(err), slogx.Channel(cfg.Channel))
			os.Exit(1)
		}

		wg.Add(1)
		go func(name string, q *pubsub.Queue) {
			defer wg.Done()
			defer q.Unsubscribe()
			received := 0
			for received < cfg.Messages {
				env, err := q.TryReceive(cfg.DrainTimeout)
				if err != nil {
					slog.Warn("subscriber timed out waiting for messages",
						slog.String("subscriber", name),
						slog.Int("received", received),
					)
					return
				}
				received++
				line, _ := json.Marshal(env)
				fmt.Printf("%s <- %s\n", name, line)
			}
		}(fmt.Sprintf("subscriber-%d", i+1), queue)
	}

	// Urgent messages (low priority values) interleave with bulk traffic
	// and arrive first at every still-undrained queue.
	for i := 0; i < cfg.Messages; i++ {
		priority := pubsub.DefaultPriority
		if i%3 == 0 {
			priority = 1
		}
		payload := fmt.Sprintf("message %d", i)
		if err := broker.PublishPriority(ctx, cfg.Channel, payload, priority); err != nil {
			slog.Error("failed to publish", slogx.Error(err), slogx.Channel(cfg.Channel))
			os.Exit(1)
		}
	}

	wg.Wait()
	slog.Info("demo finished",
		slogx.Channel(cfg.Channel),
		slog.Int("subscribers", cfg.Subscribers),
		slog.Int("messages", cfg.Messages),
	)
}
