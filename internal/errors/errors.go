package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the decision pipeline. Callers classify with errors.Is.
// Policy denials and escalations are decision outcomes, not errors, so they
// have no sentinels here.
var (
	// ErrUnknownAction - the requested action name is not in the registry.
	ErrUnknownAction = errors.New("unknown action")

	// ErrInvalidInput - input failed schema validation (carries field-level detail in the wrap).
	ErrInvalidInput = errors.New("invalid input")

	// ErrExtractionParse - the extraction capability returned output that does
	// not conform to the envelope schema. Recovered inside the resolver's
	// repair loop, never surfaced to the router.
	ErrExtractionParse = errors.New("extraction parse failure")

	// ErrExtractionExhausted - the repair loop ran out of attempts. Surfaced to
	// callers as a NoMatch resolution, never as an error.
	ErrExtractionExhausted = errors.New("extraction retries exhausted")

	// ErrHandlerFailure - an action handler returned an error. Converted to a
	// displayed failure at the router boundary.
	ErrHandlerFailure = errors.New("handler failure")
)

// Wrap adds context to an error without changing its category.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// UnknownAction wraps a message as an unknown-action error.
func UnknownAction(name string) error {
	return fmt.Errorf("%q: %w", name, ErrUnknownAction)
}

// ExtractionParse wraps a message as a repairable extraction failure.
func ExtractionParse(message string) error {
	return fmt.Errorf("%s: %w", message, ErrExtractionParse)
}

// ExtractionExhausted records how many attempts the repair loop burned.
func ExtractionExhausted(attempts int) error {
	return fmt.Errorf("after %d attempts: %w", attempts, ErrExtractionExhausted)
}

// HandlerFailure wraps a handler error.
func HandlerFailure(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%v: %w", err, ErrHandlerFailure)
}
