// Package main provides the scheduled replay daemon.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/raglinehq/ragline/pkg/cmd"
	"github.com/raglinehq/ragline/pkg/log"
	"github.com/raglinehq/ragline/pkg/otelhelper"
	"github.com/raglinehq/ragline/pkg/scheduler"
	"github.com/raglinehq/ragline/pkg/workflow"
)

func main() {
	logger := log.WithModule("replay")

	command := &cli.Command{
		Name:                  "ragline-replay",
		Usage:                 "Replay active workflows on their configured schedules",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
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

			logger.InfoContext(ctx, "Initializing Ragline replay daemon")

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

			executor := workflow.NewExecutor(logger, registry, persistence).
				WithPublisher(eventBus)

			if command.Bool("tracing") {
				tracer, err := otelhelper.NewTracer(ctx, "ragline-replay")
				if err != nil {
					return err
				}

				executor = executor.WithTracer(tracer)
			}

			replayer := scheduler.NewScheduler(logger, executor, persistence)
			if err := replayer.Start(ctx); err != nil {
				return err
			}

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			<-stop

			logger.InfoContext(ctx, "Shutting down replay daemon")

			return replayer.Stop()
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
