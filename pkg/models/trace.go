package models

import "time"

// ExecutionStatus is the overall outcome of one engine invocation.
type ExecutionStatus string

const (
	ExecutionStatusSuccess ExecutionStatus = "success" // All enabled nodes ran
	ExecutionStatusPartial ExecutionStatus = "partial" // Halted at a requested stop node
	ExecutionStatusError   ExecutionStatus = "error"   // A node failed, run aborted
)

// NodeRecordStatus is the outcome of a single node within a run.
type NodeRecordStatus string

const (
	NodeRecordStatusSuccess NodeRecordStatus = "success"
	NodeRecordStatusError   NodeRecordStatus = "error"
)

// NodeExecutionRecord is one stage's contribution to an execution trace.
// ProcessingTime is in seconds.
type NodeExecutionRecord struct {
	NodeID         string           `json:"node_id"`
	NodeName       string           `json:"node_name"`
	NodeType       NodeKind         `json:"node_type"`
	Input          any              `json:"input"`
	Output         any              `json:"output,omitempty"`
	ProcessingTime float64          `json:"processing_time"`
	Status         NodeRecordStatus `json:"status"`
	Error          string           `json:"error,omitempty"`
}

// ExecutionTrace is the immutable record of one invocation of the engine:
// every node's input, output, timing and failure state, plus the aggregate
// outcome. Traces are appended once and never mutated.
type ExecutionTrace struct {
	ExecutionID    string                `json:"execution_id"`
	WorkflowID     string                `json:"workflow_id"`
	TestInput      string                `json:"test_input"`
	ExecutionPath  []string              `json:"execution_path"`
	NodeOutputs    []NodeExecutionRecord `json:"node_outputs"`
	FinalOutput    any                   `json:"final_output,omitempty"`
	ProcessingTime float64               `json:"processing_time"`
	Status         ExecutionStatus       `json:"status"`
	ErrorMessage   string                `json:"error_message,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}

// LastRecord returns the final node record of the trace, if any.
func (t *ExecutionTrace) LastRecord() (NodeExecutionRecord, bool) {
	if len(t.NodeOutputs) == 0 {
		return NodeExecutionRecord{}, false
	}

	return t.NodeOutputs[len(t.NodeOutputs)-1], true
}
