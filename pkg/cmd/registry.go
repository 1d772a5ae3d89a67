package cmd

import (
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/raglinehq/ragline/pkg/collaborators/generation"
	"github.com/raglinehq/ragline/pkg/collaborators/retrieval"
	"github.com/raglinehq/ragline/pkg/protocol"
	"github.com/raglinehq/ragline/pkg/registry"
)

// CollaboratorConfig selects the search and generation backends the node
// factories are wired with. Empty URLs leave the corresponding service nil so
// nodes fall back to their deterministic stand-ins.
type CollaboratorConfig struct {
	RetrievalURL  string
	GenerationURL string
	RedisURL      string
	CacheTTL      time.Duration
}

// NewRegistry builds a node registry with the built-in factories wired to the
// configured collaborator backends.
func NewRegistry(logger *slog.Logger, config CollaboratorConfig) *registry.Registry {
	reg := registry.NewRegistry(logger)
	reg.RegisterDefaultNodes(newRetrievalService(logger, config), newGenerationService(config))

	return reg
}

func newRetrievalService(logger *slog.Logger, config CollaboratorConfig) protocol.RetrievalService {
	if config.RetrievalURL == "" {
		return nil
	}

	var service protocol.RetrievalService = retrieval.NewHTTPService(config.RetrievalURL, 0)

	if config.RedisURL != "" {
		opts, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			logger.Warn("Invalid redis URL, retrieval cache disabled", "error", err)

			return service
		}

		service = retrieval.NewCachedService(service, redis.NewClient(opts), config.CacheTTL)
	}

	return service
}

func newGenerationService(config CollaboratorConfig) protocol.GenerationService {
	if config.GenerationURL == "" {
		return nil
	}

	return generation.NewHTTPService(config.GenerationURL, 0)
}
