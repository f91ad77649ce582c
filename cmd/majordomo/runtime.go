package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/majordomo-labs/majordomo/internal/action"
	"github.com/majordomo-labs/majordomo/internal/action/builtin"
	"github.com/majordomo-labs/majordomo/internal/audit"
	"github.com/majordomo-labs/majordomo/internal/config"
	"github.com/majordomo-labs/majordomo/internal/intent"
	"github.com/majordomo-labs/majordomo/internal/model"
	anthropicprovider "github.com/majordomo-labs/majordomo/internal/model/providers/anthropic"
	geminiprovider "github.com/majordomo-labs/majordomo/internal/model/providers/gemini"
	openaiprovider "github.com/majordomo-labs/majordomo/internal/model/providers/openai"
	"github.com/majordomo-labs/majordomo/internal/policy"
	"github.com/majordomo-labs/majordomo/internal/router"
	"github.com/majordomo-labs/majordomo/internal/store"
)

// pipeline wires the core components for one process: registry, policy
// engine, audit store, resolver, and router.
type pipeline struct {
	registry *action.Registry
	policy   *policy.Engine
	audit    *audit.Store
	router   *router.Router
	lock     *store.Lock
}

// buildPipeline constructs the whole decision pipeline. withLock takes the
// data-dir lock, which long-running processes (serve, repl) should hold.
func buildPipeline(cfg *config.Config, withLock bool) (*pipeline, error) {
	dataDir, err := store.ResolveDataDir(cfg.Store.DataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	var lock *store.Lock
	if withLock {
		lock, err = store.AcquireLock(dataDir)
		if err != nil {
			return nil, err
		}
	}

	auditStore, err := audit.Open(store.AuditDBPath(dataDir))
	if err != nil {
		releaseLock(lock)
		return nil, err
	}

	registry, err := builtin.Registry()
	if err != nil {
		auditStore.Close()
		releaseLock(lock)
		return nil, fmt.Errorf("build action registry: %w", err)
	}

	attemptTimeout, err := config.DurationOrDefault(cfg.Resolver.AttemptTimeout, config.DefaultResolverAttemptTimeout)
	if err != nil {
		auditStore.Close()
		releaseLock(lock)
		return nil, err
	}

	extractor, err := intent.NewExtractor(buildModelClient(cfg.Models), registry, intent.ExtractorConfig{
		Model:          cfg.Resolver.Model,
		MaxRetries:     cfg.Resolver.MaxRetries,
		AttemptTimeout: attemptTimeout,
	})
	if err != nil {
		auditStore.Close()
		releaseLock(lock)
		return nil, fmt.Errorf("build extractor: %w", err)
	}

	resolver := intent.NewResolver(extractor, intent.NewHeuristic(registry, nil))
	policyEngine := policy.NewEngine()

	return &pipeline{
		registry: registry,
		policy:   policyEngine,
		audit:    auditStore,
		router:   router.New(registry, policyEngine, resolver, auditStore),
		lock:     lock,
	}, nil
}

func (p *pipeline) Close() {
	if err := p.audit.Close(); err != nil {
		slog.Error("Close audit store failed", "error", err)
	}
	releaseLock(p.lock)
}

func releaseLock(lock *store.Lock) {
	if lock == nil {
		return
	}
	if err := lock.Release(); err != nil {
		slog.Error("Release data dir lock failed", "error", err)
	}
}

// buildModelClient assembles the model router from the configured registry.
// Entries without a resolvable credential are skipped; when nothing remains,
// the resolver runs in its degraded no-extraction mode.
func buildModelClient(cfg config.ModelsConfig) model.Client {
	mr := model.NewRouter()

	for _, entry := range cfg.Registry {
		switch entry.Provider {
		case "openai":
			if entry.APIKey == "" && os.Getenv("OPENAI_API_KEY") == "" {
				continue
			}
			mr.RegisterModel(entry.Name, openaiprovider.New(entry.APIKey, entry.BaseURL))

		case "anthropic":
			if entry.APIKey == "" && os.Getenv("ANTHROPIC_API_KEY") == "" {
				continue
			}
			mr.RegisterModel(entry.Name, anthropicprovider.New(entry.APIKey))

		case "gemini":
			if entry.APIKey == "" && os.Getenv("GEMINI_API_KEY") == "" {
				continue
			}
			p, err := geminiprovider.New(entry.APIKey)
			if err != nil {
				slog.Warn("Skipping gemini provider", "model", entry.Name, "error", err)
				continue
			}
			mr.RegisterModel(entry.Name, p)

		default:
			slog.Warn("Unknown model provider", "provider", entry.Provider, "model", entry.Name)
		}
	}

	if !mr.Configured() {
		slog.Info("No model provider configured, intent extraction disabled")
		return nil
	}

	mr.SetDefault(cfg.Default)
	slog.Info("Model providers ready", "models", mr.ListModels())
	return mr
}
