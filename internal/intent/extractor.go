package intent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/majordomo-labs/majordomo/internal/action"
	majordomoErrors "github.com/majordomo-labs/majordomo/internal/errors"
	"github.com/majordomo-labs/majordomo/internal/model"
	"github.com/majordomo-labs/majordomo/internal/model/contract"
)

const rawOutputPreviewLimit = 800

// ExtractorConfig bounds the extraction loop. MaxRetries counts repair
// attempts past the first, so the loop runs MaxRetries+1 times at most.
// AttemptTimeout bounds each model call; a timed-out attempt feeds the repair
// loop like any other validation failure.
type ExtractorConfig struct {
	Model          string
	MaxRetries     int
	AttemptTimeout time.Duration
}

// Extractor resolves intent through a model-backed extraction capability,
// running an extract-validate-repair loop. Model output is adversarial:
// action_name and arguments are re-validated against the registry and the
// action's schema on every attempt, including the last.
type Extractor struct {
	client   model.Client
	registry *action.Registry
	schema   *jsonschema.Schema
	doc      map[string]any
	cfg      ExtractorConfig
}

// NewExtractor builds the strategy. client may be nil, which puts the
// extractor in a designed degraded mode where it matches nothing.
func NewExtractor(client model.Client, registry *action.Registry, cfg ExtractorConfig) (*Extractor, error) {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	doc := envelopeSchemaDoc(registry.Names())
	schema, err := compileEnvelopeSchema(doc)
	if err != nil {
		return nil, err
	}
	return &Extractor{
		client:   client,
		registry: registry,
		schema:   schema,
		doc:      doc,
		cfg:      cfg,
	}, nil
}

func (e *Extractor) Name() string {
	return "extractor"
}

func (e *Extractor) Resolve(ctx context.Context, req action.Request) (*Resolution, error) {
	if e.client == nil {
		return &Resolution{
			State:      StateNoMatch,
			Message:    "Intent extraction is disabled (no model configured).",
			Confidence: 0,
		}, nil
	}

	descriptors := e.registry.List()
	repairContext := ""

	for attempt := 0; attempt <= e.cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		env, failure, err := e.attempt(ctx, req, descriptors, repairContext)
		if err != nil {
			return nil, err
		}
		if failure != "" {
			slog.Debug("Extraction attempt failed", "attempt", attempt, "error", failure)
			repairContext = failure
			continue
		}

		if env.ActionName == nil {
			return &Resolution{
				State:         StateAsk,
				Question:      clarificationQuestion(env),
				MissingFields: env.MissingFields,
				Confidence:    env.Confidence,
			}, nil
		}

		def, err := e.registry.Get(*env.ActionName)
		if err != nil {
			repairContext = fmt.Sprintf("Unknown action_name %q. Must be one of: %s",
				*env.ActionName, strings.Join(e.registry.Names(), ", "))
			continue
		}

		args, err := def.Validate(env.Arguments)
		if err != nil {
			repairContext = fmt.Sprintf(
				"Action args invalid for %s: %v\nIf the user did not supply required fields, set action_name=null and ask a clarification_question instead of guessing.",
				def.Name, err)
			continue
		}

		return &Resolution{
			State:      StateReady,
			ActionName: def.Name,
			Args:       args,
			Confidence: env.Confidence,
		}, nil
	}

	// The exhaustion error is recorded but never escapes: the contract with
	// callers is a NoMatch resolution, letting the strategy chain continue.
	slog.Warn("Extraction attempts exhausted",
		"error", majordomoErrors.ExtractionExhausted(e.cfg.MaxRetries+1),
		"last_failure", truncate(repairContext, rawOutputPreviewLimit))
	return &Resolution{
		State:      StateNoMatch,
		Message:    "Intent extraction failed after retries. Please rephrase with more specifics.",
		Confidence: 0,
	}, nil
}

// attempt runs one model call and envelope validation. A non-empty failure
// string becomes the next attempt's repair context; a non-nil error aborts
// the whole resolution (caller cancellation only).
func (e *Extractor) attempt(ctx context.Context, req action.Request, descriptors []action.Descriptor, repairContext string) (*envelope, string, error) {
	attemptCtx := ctx
	if e.cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, e.cfg.AttemptTimeout)
		defer cancel()
	}

	resp, err := e.client.Generate(attemptCtx, contract.CompletionRequest{
		Model: e.cfg.Model,
		Messages: []contract.Message{
			{Role: "system", Content: extractorSystemPrompt},
			{Role: "user", Content: buildUserPrompt(req, descriptors, repairContext)},
		},
		ResponseFormat: &contract.ResponseSchema{
			Name:   envelopeSchemaName,
			Schema: e.doc,
			Strict: true,
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, fmt.Sprintf("Model call failed: %v", err), nil
	}

	raw := strings.TrimSpace(resp.Content)
	env, err := parseEnvelope(e.schema, raw)
	if err != nil {
		if !errors.Is(err, majordomoErrors.ErrExtractionParse) {
			return nil, "", err
		}
		return nil, fmt.Sprintf("Envelope parse failed: %v\nRaw text: %s", err, truncate(raw, rawOutputPreviewLimit)), nil
	}

	return env, "", nil
}

func clarificationQuestion(env *envelope) string {
	if env.ClarificationQuestion != nil && strings.TrimSpace(*env.ClarificationQuestion) != "" {
		return *env.ClarificationQuestion
	}
	if len(env.MissingFields) > 0 {
		return fmt.Sprintf("I need: %s", strings.Join(env.MissingFields, ", "))
	}
	return "What would you like me to do?"
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
