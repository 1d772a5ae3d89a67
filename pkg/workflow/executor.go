// Package workflow contains the orchestrator that runs pipeline definitions
// and records execution traces.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/raglinehq/ragline/pkg/eventbus"
	"github.com/raglinehq/ragline/pkg/events"
	"github.com/raglinehq/ragline/pkg/models"
	"github.com/raglinehq/ragline/pkg/otelhelper"
	"github.com/raglinehq/ragline/pkg/persistence"
	"github.com/raglinehq/ragline/pkg/protocol"
	"github.com/raglinehq/ragline/pkg/registry"
)

// Executor runs a workflow's enabled nodes in position order, threading each
// node's output into the next node's input, and appends an immutable
// ExecutionTrace for every run, including failed and partial ones.
type Executor struct {
	logger      *slog.Logger
	registry    *registry.Registry
	persistence persistence.Persistence
	publisher   eventbus.EventPublisher
	tracer      trace.Tracer
}

func NewExecutor(logger *slog.Logger, reg *registry.Registry, persistence persistence.Persistence) *Executor {
	return &Executor{
		logger:      logger.With("module", "workflow_executor"),
		registry:    reg,
		persistence: persistence,
		tracer:      noop.NewTracerProvider().Tracer("ragline"),
	}
}

// WithPublisher wires an event publisher for run lifecycle notifications.
// Publishing is best-effort and never affects execution results.
func (e *Executor) WithPublisher(publisher eventbus.EventPublisher) *Executor {
	e.publisher = publisher

	return e
}

// WithTracer wires an OpenTelemetry tracer for per-run and per-node spans.
func (e *Executor) WithTracer(tracer trace.Tracer) *Executor {
	e.tracer = tracer

	return e
}

type stage struct {
	definition *models.WorkflowNode
	node       protocol.Node
}

// Execute runs the workflow identified by workflowID against inputText. When
// stopAtNodeID names an enabled node, execution halts after that node has run
// and its output is recorded, yielding a partial trace. A stop target that
// matches no enabled node is ignored and the run completes in full.
//
// Node failures never propagate as Go errors: the failing node's error is
// recorded in the trace, downstream nodes are skipped and the trace status is
// "error". Returned errors indicate configuration problems found before the
// first node ran, or a trace that could not be persisted.
func (e *Executor) Execute(ctx context.Context, workflowID, inputText, stopAtNodeID string) (*models.ExecutionTrace, error) {
	wf, err := e.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("fetch workflow %q: %w", workflowID, err)
	}

	enabled := wf.EnabledNodesInOrder()
	if len(enabled) == 0 {
		return nil, fmt.Errorf("workflow %q: %w", workflowID, ErrNoEnabledNodes)
	}

	stages, err := e.buildStages(ctx, wf, enabled)
	if err != nil {
		return nil, err
	}

	executionID := "exec-" + uuid.New().String()
	logger := e.logger.With(
		"workflow_id", workflowID,
		"execution_id", executionID,
	)

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "workflow.execute",
		attribute.String(otelhelper.WorkflowIDKey, wf.ID),
		attribute.String(otelhelper.WorkflowNameKey, wf.Name),
		attribute.String(otelhelper.WorkflowModeKey, string(wf.Mode)),
		attribute.String(otelhelper.ExecutionIDKey, executionID),
		attribute.String(otelhelper.StopAtNodeKey, stopAtNodeID),
	)
	defer span.End()

	logger.Info("Starting workflow execution", "stop_at_node", stopAtNodeID, "nodes", len(stages))

	e.publishStarted(ctx, wf, executionID, inputText, stopAtNodeID)

	run := &models.ExecutionTrace{
		ExecutionID:   executionID,
		WorkflowID:    wf.ID,
		TestInput:     inputText,
		ExecutionPath: make([]string, 0, len(stages)),
		NodeOutputs:   make([]models.NodeExecutionRecord, 0, len(stages)),
		Status:        models.ExecutionStatusSuccess,
		CreatedAt:     time.Now().UTC(),
	}

	started := time.Now()

	var carried any = inputText

	for _, st := range stages {
		record, output := e.runStage(ctx, logger, wf, executionID, st, carried)

		run.ExecutionPath = append(run.ExecutionPath, st.definition.ID)
		run.NodeOutputs = append(run.NodeOutputs, record)

		if record.Status == models.NodeRecordStatusError {
			run.Status = models.ExecutionStatusError
			run.ErrorMessage = record.Error

			break
		}

		carried = output

		if st.definition.ID == stopAtNodeID {
			run.Status = models.ExecutionStatusPartial

			break
		}
	}

	run.ProcessingTime = time.Since(started).Seconds()

	// FinalOutput is only set when every enabled node ran. Partial runs leave
	// it unset: the stop node's output lives in its own record.
	if run.Status == models.ExecutionStatusSuccess {
		run.FinalOutput = carried
	}

	if err := e.persistence.TraceRepository().Append(ctx, run); err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("persist trace %q: %w", executionID, err)
	}

	e.publishFinished(ctx, wf, run)

	logger.Info("Workflow execution finished",
		"status", run.Status,
		"nodes_executed", len(run.NodeOutputs),
		"duration_seconds", run.ProcessingTime,
	)

	return run, nil
}

// ExecuteActive resolves the active workflow for a mode and runs it.
func (e *Executor) ExecuteActive(ctx context.Context, mode models.WorkflowMode, inputText, stopAtNodeID string) (*models.ExecutionTrace, error) {
	wf, err := e.persistence.WorkflowRepository().GetActiveByMode(ctx, mode)
	if err != nil {
		return nil, fmt.Errorf("resolve active workflow for mode %q: %w", mode, err)
	}

	return e.Execute(ctx, wf.ID, inputText, stopAtNodeID)
}

// buildStages instantiates every enabled node before the run starts so that
// configuration problems surface as errors instead of half-finished traces.
func (e *Executor) buildStages(ctx context.Context, wf *models.Workflow, enabled []*models.WorkflowNode) ([]stage, error) {
	stages := make([]stage, 0, len(enabled))

	for _, definition := range enabled {
		node, err := e.registry.CreateNode(ctx, definition.Kind, definition.ID, definition.Config)
		if err != nil {
			return nil, fmt.Errorf("workflow %q node %q: %w", wf.ID, definition.ID, err)
		}

		stages = append(stages, stage{definition: definition, node: node})
	}

	return stages, nil
}

func (e *Executor) runStage(ctx context.Context, logger *slog.Logger, wf *models.Workflow, executionID string, st stage, carried any) (models.NodeExecutionRecord, any) {
	nodeCtx, span := otelhelper.StartSpan(ctx, e.tracer, "node.execute",
		attribute.String(otelhelper.NodeIDKey, st.definition.ID),
		attribute.String(otelhelper.NodeKindKey, string(st.definition.Kind)),
		attribute.String(otelhelper.ExecutionIDKey, executionID),
	)
	defer span.End()

	record := models.NodeExecutionRecord{
		NodeID:   st.definition.ID,
		NodeName: st.definition.Name,
		NodeType: st.definition.Kind,
		Input:    carried,
		Status:   models.NodeRecordStatusSuccess,
	}

	started := time.Now()
	output, err := st.node.Execute(nodeCtx, carried)
	record.ProcessingTime = time.Since(started).Seconds()

	if err != nil {
		record.Status = models.NodeRecordStatusError
		record.Error = fmt.Sprintf("node %s: %v", st.definition.ID, err)

		otelhelper.SetError(span, err)
		logger.Error("Node execution failed",
			"node_id", st.definition.ID,
			"node_kind", st.definition.Kind,
			"error", err,
		)
		e.publishNodeFailed(ctx, wf, executionID, st.definition, err, record.ProcessingTime)

		return record, nil
	}

	record.Output = output

	logger.Debug("Node executed",
		"node_id", st.definition.ID,
		"node_kind", st.definition.Kind,
		"duration_seconds", record.ProcessingTime,
	)
	e.publishNodeCompleted(ctx, wf, executionID, st.definition, output, record.ProcessingTime)

	return record, output
}

func (e *Executor) publishStarted(ctx context.Context, wf *models.Workflow, executionID, inputText, stopAtNodeID string) {
	if e.publisher == nil {
		return
	}

	event := events.ExecutionStarted{
		BaseEvent:    events.NewBaseEvent(events.ExecutionStartedEvent, wf.ID),
		ExecutionID:  executionID,
		WorkflowName: wf.Name,
		TestInput:    inputText,
		StopAtNode:   stopAtNodeID,
	}

	if err := e.publisher.Publish(ctx, wf.ID, event); err != nil {
		e.logger.Warn("Failed to publish execution started event", "error", err)
	}
}

func (e *Executor) publishNodeCompleted(ctx context.Context, wf *models.Workflow, executionID string, definition *models.WorkflowNode, output any, seconds float64) {
	if e.publisher == nil {
		return
	}

	payload, _ := output.(map[string]any)

	event := events.NodeCompleted{
		BaseEvent:   events.NewBaseEvent(events.NodeCompletedEvent, wf.ID),
		ExecutionID: executionID,
		NodeID:      definition.ID,
		NodeKind:    definition.Kind,
		Output:      payload,
		DurationMs:  int64(seconds * 1000),
	}

	if err := e.publisher.Publish(ctx, wf.ID, event); err != nil {
		e.logger.Warn("Failed to publish node completed event", "error", err)
	}
}

func (e *Executor) publishNodeFailed(ctx context.Context, wf *models.Workflow, executionID string, definition *models.WorkflowNode, nodeErr error, seconds float64) {
	if e.publisher == nil {
		return
	}

	event := events.NodeFailed{
		BaseEvent:   events.NewBaseEvent(events.NodeFailedEvent, wf.ID),
		ExecutionID: executionID,
		NodeID:      definition.ID,
		NodeKind:    definition.Kind,
		Error:       nodeErr.Error(),
		DurationMs:  int64(seconds * 1000),
	}

	if err := e.publisher.Publish(ctx, wf.ID, event); err != nil {
		e.logger.Warn("Failed to publish node failed event", "error", err)
	}
}

func (e *Executor) publishFinished(ctx context.Context, wf *models.Workflow, run *models.ExecutionTrace) {
	if e.publisher == nil {
		return
	}

	durationMs := int64(run.ProcessingTime * 1000)

	var event eventbus.Event

	if run.Status == models.ExecutionStatusError {
		failedNodeID := ""
		if record, ok := run.LastRecord(); ok {
			failedNodeID = record.NodeID
		}

		event = events.ExecutionFailed{
			BaseEvent:     events.NewBaseEvent(events.ExecutionFailedEvent, wf.ID),
			ExecutionID:   run.ExecutionID,
			FailedNodeID:  failedNodeID,
			Error:         run.ErrorMessage,
			NodesExecuted: len(run.NodeOutputs),
			DurationMs:    durationMs,
		}
	} else {
		event = events.ExecutionCompleted{
			BaseEvent:     events.NewBaseEvent(events.ExecutionCompletedEvent, wf.ID),
			ExecutionID:   run.ExecutionID,
			Status:        run.Status,
			NodesExecuted: len(run.NodeOutputs),
			DurationMs:    durationMs,
			FinalOutput:   run.FinalOutput,
		}
	}

	if err := e.publisher.Publish(ctx, wf.ID, event); err != nil {
		e.logger.Warn("Failed to publish execution finished event", "error", err)
	}
}
