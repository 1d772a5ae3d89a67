// Package router provides the intent routing node for pipeline execution.
package router

import (
	"context"
	"strings"

	"github.com/raglinehq/ragline/pkg/models"
	"github.com/raglinehq/ragline/pkg/nodes"
)

// Intent labels produced by the router.
const (
	IntentQuestion   = "question"
	IntentGeneration = "generation"
	IntentGreeting   = "greeting"
	IntentUnknown    = "unknown"
)

// Routing targets for the stages that follow the router.
const (
	RouteRetriever = "retriever"
	RouteGenerator = "generator"
)

// rule is one ordered intent detection rule. Rules are evaluated top to
// bottom and the first match wins, which keeps tie-breaking reproducible:
// question markers beat generation verbs beat greetings.
type rule struct {
	intent     string
	target     string
	confidence float64
	match      func(text string) bool
}

// rules is the ordered intent rule list. This is a keyword heuristic, not a
// classifier; confidence values are coarse scores, not calibrated
// probabilities.
var rules = []rule{
	{
		intent:     IntentQuestion,
		target:     RouteRetriever,
		confidence: 0.9,
		match: func(text string) bool {
			if strings.Contains(text, "?") {
				return true
			}

			return hasAnyPrefixWord(text, "who", "what", "when", "where", "why", "how", "which")
		},
	},
	{
		intent:     IntentGeneration,
		target:     RouteGenerator,
		confidence: 0.8,
		match: func(text string) bool {
			return hasAnyPrefixWord(text, "write", "create", "generate", "make", "compose", "draft", "build")
		},
	},
	{
		intent:     IntentGreeting,
		target:     RouteGenerator,
		confidence: 0.7,
		match: func(text string) bool {
			return hasAnyPrefixWord(text, "hello", "hi", "hey", "greetings") ||
				strings.HasPrefix(text, "good morning") ||
				strings.HasPrefix(text, "good afternoon") ||
				strings.HasPrefix(text, "good evening")
		},
	},
}

// unknownConfidence scores inputs no rule matched.
const unknownConfidence = 0.3

// RouterNode inspects the input text for coarse intent signals and produces a
// routing decision. The decision is advisory metadata for later stages:
// execution order is still defined by node positions.
type RouterNode struct {
	id string
}

// NewRouterNode creates a new router node. The router takes no configuration;
// its rule order is fixed so tie-breaks stay reproducible.
func NewRouterNode(id string, _ map[string]any) (*RouterNode, error) {
	return &RouterNode{id: id}, nil
}

// ID returns the node ID.
func (n *RouterNode) ID() string {
	return n.id
}

// Kind returns the node kind.
func (n *RouterNode) Kind() models.NodeKind {
	return models.NodeKindRouter
}

// Execute classifies the carried text and attaches the routing decision.
func (n *RouterNode) Execute(_ context.Context, value any) (any, error) {
	text, _ := nodes.Text(value)
	normalized := strings.ToLower(strings.TrimSpace(text))

	intent, target, confidence := IntentUnknown, RouteGenerator, unknownConfidence

	for _, r := range rules {
		if r.match(normalized) {
			intent, target, confidence = r.intent, r.target, r.confidence

			break
		}
	}

	return map[string]any{
		"text":         text,
		"intent":       intent,
		"target_route": target,
		"confidence":   confidence,
	}, nil
}

// hasAnyPrefixWord reports whether the text starts with one of the given
// words followed by a word boundary.
func hasAnyPrefixWord(text string, words ...string) bool {
	for _, word := range words {
		if text == word || strings.HasPrefix(text, word+" ") {
			return true
		}
	}

	return false
}
