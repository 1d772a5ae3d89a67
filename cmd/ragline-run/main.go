// Package main provides one-shot workflow execution from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/raglinehq/ragline/pkg/cmd"
	"github.com/raglinehq/ragline/pkg/log"
	"github.com/raglinehq/ragline/pkg/models"
	"github.com/raglinehq/ragline/pkg/workflow"
)

func main() {
	logger := log.WithModule("run")

	command := &cli.Command{
		Name:                  "ragline-run",
		Usage:                 "Execute a workflow once and print its trace as JSON",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (file:// or postgres://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "workflow-id",
				Aliases: []string{"w"},
				Usage:   "ID of the workflow to execute (omit to run the active workflow for --mode)",
			},
			&cli.StringFlag{
				Name:    "mode",
				Aliases: []string{"m"},
				Usage:   "Mode whose active workflow should run (fast, thorough, code)",
				Value:   "fast",
			},
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Input text to run through the pipeline",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "stop-at-node",
				Usage: "Halt after this node and record a partial trace",
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
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

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

			executor := workflow.NewExecutor(logger, registry, persistence)

			var (
				trace *models.ExecutionTrace
				err   error
			)

			if workflowID := command.String("workflow-id"); workflowID != "" {
				trace, err = executor.Execute(ctx, workflowID, command.String("input"), command.String("stop-at-node"))
			} else {
				mode := models.WorkflowMode(command.String("mode"))
				trace, err = executor.ExecuteActive(ctx, mode, command.String("input"), command.String("stop-at-node"))
			}

			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(trace, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to render trace: %w", err)
			}

			fmt.Println(string(out))

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		logger.Error("Execution failed", "error", err)
		os.Exit(1)
	}
}
