package main

import (
	"context"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/raglinehq/ragline/pkg/cmd"
	"github.com/raglinehq/ragline/pkg/log"
	"github.com/raglinehq/ragline/pkg/otelhelper"
)

const defaultPort = 9091

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "ragline-api",
		Usage:                 "Create, manage and execute retrieval pipelines",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (file:// or postgres://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:    "retrieval-url",
				Usage:   "Base URL of the retrieval backend (empty for the built-in stand-in)",
				Sources: cli.EnvVars("RETRIEVAL_URL"),
			},
			&cli.StringFlag{
				Name:    "generation-url",
				Usage:   "Base URL of the generation backend (empty for the built-in stand-in)",
				Sources: cli.EnvVars("GENERATION_URL"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for the retrieval cache (empty disables caching)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.DurationFlag{
				Name:    "cache-ttl",
				Usage:   "TTL for cached retrieval results",
				Value:   5 * time.Minute,
				Sources: cli.EnvVars("CACHE_TTL"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export execution spans over OTLP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Ragline API")

			registry := cmd.NewRegistry(logger, cmd.CollaboratorConfig{
				RetrievalURL:  command.String("retrieval-url"),
				GenerationURL: command.String("generation-url"),
				RedisURL:      command.String("redis-url"),
				CacheTTL:      command.Duration("cache-ttl"),
			})
			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			api := NewAPI(logger, persistence, registry, eventBus)

			if command.Bool("tracing") {
				tracer, err := otelhelper.NewTracer(ctx, "ragline-api")
				if err != nil {
					return err
				}

				api = api.WithTracer(tracer)
			}

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)

				return err
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
