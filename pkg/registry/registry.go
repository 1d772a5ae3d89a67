// Package registry provides node factory registration and creation for the
// execution engine.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/raglinehq/ragline/pkg/models"
	"github.com/raglinehq/ragline/pkg/protocol"
)

// Registry maps node kinds to their factories and validates node
// configuration against each factory's schema before instantiation.
type Registry struct {
	logger        *slog.Logger
	nodeFactories map[models.NodeKind]protocol.NodeFactory
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:        logger,
		nodeFactories: make(map[models.NodeKind]protocol.NodeFactory),
	}
}

// RegisterNode registers a node factory, replacing any factory previously
// registered for the same kind.
func (r *Registry) RegisterNode(factory protocol.NodeFactory) {
	r.nodeFactories[factory.Kind()] = factory
}

// CreateNode validates config against the factory schema for the kind, then
// builds the node instance.
func (r *Registry) CreateNode(ctx context.Context, kind models.NodeKind, id string, config map[string]any) (protocol.Node, error) {
	factory, ok := r.nodeFactories[kind]
	if !ok {
		return nil, fmt.Errorf("node kind '%s' not registered", kind)
	}

	if config == nil {
		config = map[string]any{}
	}

	err := r.validateConfig(factory.Schema(), config)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration for %s node %s: %w", kind, id, err)
	}

	return factory.Create(ctx, id, config)
}

// RegisteredKinds returns the registered node kinds.
func (r *Registry) RegisteredKinds() []models.NodeKind {
	kinds := make([]models.NodeKind, 0, len(r.nodeFactories))
	for kind := range r.nodeFactories {
		kinds = append(kinds, kind)
	}

	return kinds
}

// NodeSchema returns the configuration schema of a registered node kind.
func (r *Registry) NodeSchema(kind models.NodeKind) (map[string]any, error) {
	factory, ok := r.nodeFactories[kind]
	if !ok {
		return nil, fmt.Errorf("node kind '%s' not registered", kind)
	}

	return factory.Schema(), nil
}

// HealthCheck reports whether every built-in node kind has a factory.
func (r *Registry) HealthCheck() (string, bool) {
	missing := make([]string, 0)

	for _, kind := range models.ValidNodeKinds() {
		if _, ok := r.nodeFactories[kind]; !ok {
			missing = append(missing, string(kind))
		}
	}

	if len(missing) > 0 {
		return "missing node factories: " + strings.Join(missing, ", "), false
	}

	return "ok", true
}

func (r *Registry) validateConfig(schema map[string]any, config map[string]any) error {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, validationErr := range result.Errors() {
			details = append(details, validationErr.String())
		}

		return fmt.Errorf("configuration does not match schema: %s", strings.Join(details, "; "))
	}

	return nil
}
