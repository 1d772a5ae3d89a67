package models

// NodeKind identifies the stage a node implements within a pipeline.
type NodeKind string

const (
	NodeKindInput     NodeKind = "input"
	NodeKindRouter    NodeKind = "router"
	NodeKindRetriever NodeKind = "retriever"
	NodeKindGenerator NodeKind = "generator"
	NodeKindOutput    NodeKind = "output"
)

// ValidNodeKinds lists every built-in node kind in pipeline order.
func ValidNodeKinds() []NodeKind {
	return []NodeKind{
		NodeKindInput,
		NodeKindRouter,
		NodeKindRetriever,
		NodeKindGenerator,
		NodeKindOutput,
	}
}

// WorkflowNode represents one stage within a workflow. Positions are unique
// per workflow and define the execution order. Nodes are immutable during a
// single execution.
type WorkflowNode struct {
	ID       string         `json:"id"       validate:"required"`
	Kind     NodeKind       `json:"kind"     validate:"required,oneof=input router retriever generator output"`
	Name     string         `json:"name"     validate:"required,min=1"`
	Position int            `json:"position"`
	Config   map[string]any `json:"config"`
	Enabled  bool           `json:"enabled"`
}

// Connection is an advisory edge between two nodes, used by the studio for
// visualization. It does not drive branching: routing decisions are made
// inside the router node, and execution walks nodes by position.
type Connection struct {
	ID         string `json:"id"`
	SourceNode string `json:"source_node" validate:"required"`
	TargetNode string `json:"target_node" validate:"required"`
}
