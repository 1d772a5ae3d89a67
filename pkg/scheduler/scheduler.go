// Package scheduler periodically replays active workflows whose metadata
// carries a replay schedule, appending fresh traces for regression auditing.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/raglinehq/ragline/pkg/models"
	"github.com/raglinehq/ragline/pkg/persistence"
	"github.com/raglinehq/ragline/pkg/workflow"
)

// Metadata keys read from workflow definitions.
const (
	ReplayCronKey  = "replay_cron"
	ReplayInputKey = "replay_input"
)

var ErrNotStarted = errors.New("scheduler not started")

// Scheduler re-executes every active workflow with a `replay_cron` metadata
// entry on its schedule. Each replay produces a normal execution trace.
type Scheduler struct {
	logger      *slog.Logger
	executor    *workflow.Executor
	persistence persistence.Persistence

	mu   sync.Mutex
	cron *cron.Cron
}

func NewScheduler(logger *slog.Logger, executor *workflow.Executor, persistence persistence.Persistence) *Scheduler {
	return &Scheduler{
		logger:      logger.With("module", "scheduler"),
		executor:    executor,
		persistence: persistence,
	}
}

// Start loads replay schedules for all active workflows and begins running
// them. Workflows with an invalid cron expression are skipped with a warning.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return nil
	}

	workflows, err := s.persistence.WorkflowRepository().List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list workflows: %w", err)
	}

	runner := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	scheduled := 0

	for _, wf := range workflows {
		if !wf.Active {
			continue
		}

		spec, input, ok := replayConfig(wf)
		if !ok {
			continue
		}

		if err := s.schedule(ctx, runner, wf, spec, input); err != nil {
			s.logger.Warn("Skipping workflow replay schedule",
				"workflow_id", wf.ID,
				"cron", spec,
				"error", err,
			)

			continue
		}

		scheduled++
	}

	runner.Start()
	s.cron = runner

	s.logger.Info("Scheduler started", "scheduled_workflows", scheduled)

	return nil
}

// Stop halts the scheduler and waits for in-flight replays to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return ErrNotStarted
	}

	<-s.cron.Stop().Done()
	s.cron = nil

	return nil
}

func (s *Scheduler) schedule(ctx context.Context, runner *cron.Cron, wf *models.Workflow, spec, input string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	workflowID := wf.ID

	_, err := runner.AddFunc(spec, func() {
		s.replay(ctx, workflowID, input)
	})

	return err
}

func (s *Scheduler) replay(ctx context.Context, workflowID, input string) {
	trace, err := s.executor.Execute(ctx, workflowID, input, "")
	if err != nil {
		s.logger.Error("Workflow replay failed", "workflow_id", workflowID, "error", err)

		return
	}

	s.logger.Info("Workflow replayed",
		"workflow_id", workflowID,
		"execution_id", trace.ExecutionID,
		"status", trace.Status,
	)
}

func replayConfig(wf *models.Workflow) (spec, input string, ok bool) {
	if wf.Metadata == nil {
		return "", "", false
	}

	spec, _ = wf.Metadata[ReplayCronKey].(string)
	if spec == "" {
		return "", "", false
	}

	input, _ = wf.Metadata[ReplayInputKey].(string)
	if input == "" {
		input = "scheduled replay"
	}

	return spec, input, true
}
