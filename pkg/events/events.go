// Package events defines event types and structures for execution lifecycle notifications.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/raglinehq/ragline/pkg/models"
)

type EventType string

// Kafka topic for execution lifecycle events.
const Topic = "ragline.executions"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	ExecutionStartedEvent   EventType = "execution.started"
	ExecutionCompletedEvent EventType = "execution.completed"
	ExecutionFailedEvent    EventType = "execution.failed"

	NodeCompletedEvent EventType = "node.completed"
	NodeFailedEvent    EventType = "node.failed"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type ExecutionStarted struct {
	BaseEvent

	ExecutionID  string `json:"execution_id"`
	WorkflowName string `json:"workflow_name"`
	TestInput    string `json:"test_input"`
	StopAtNode   string `json:"stop_at_node,omitempty"`
}

func (e ExecutionStarted) GetType() EventType {
	return ExecutionStartedEvent
}

type NodeCompleted struct {
	BaseEvent

	ExecutionID string          `json:"execution_id"`
	NodeID      string          `json:"node_id"`
	NodeKind    models.NodeKind `json:"node_kind"`
	Output      map[string]any  `json:"output"`
	DurationMs  int64           `json:"duration_ms"`
}

func (n NodeCompleted) GetType() EventType {
	return NodeCompletedEvent
}

type NodeFailed struct {
	BaseEvent

	ExecutionID string          `json:"execution_id"`
	NodeID      string          `json:"node_id"`
	NodeKind    models.NodeKind `json:"node_kind"`
	Error       string          `json:"error"`
	DurationMs  int64           `json:"duration_ms"`
}

func (n NodeFailed) GetType() EventType {
	return NodeFailedEvent
}

type ExecutionCompleted struct {
	BaseEvent

	ExecutionID   string                 `json:"execution_id"`
	Status        models.ExecutionStatus `json:"status"`
	NodesExecuted int                    `json:"nodes_executed"`
	DurationMs    int64                  `json:"duration_ms"`
	FinalOutput   any                    `json:"final_output,omitempty"`
}

func (e ExecutionCompleted) GetType() EventType {
	return ExecutionCompletedEvent
}

type ExecutionFailed struct {
	BaseEvent

	ExecutionID   string `json:"execution_id"`
	FailedNodeID  string `json:"failed_node_id"`
	Error         string `json:"error"`
	NodesExecuted int    `json:"nodes_executed"`
	DurationMs    int64  `json:"duration_ms"`
}

func (e ExecutionFailed) GetType() EventType {
	return ExecutionFailedEvent
}

func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
		Metadata:   make(map[string]any),
	}
}
