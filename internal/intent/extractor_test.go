package intent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/majordomo-labs/majordomo/internal/action"
	"github.com/majordomo-labs/majordomo/internal/action/builtin"
	"github.com/majordomo-labs/majordomo/internal/model"
	"github.com/majordomo-labs/majordomo/internal/model/contract"
)

// stubClient replays canned completions and records the prompts it saw.
type stubClient struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (s *stubClient) Generate(_ context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	idx := s.calls
	s.calls++
	for _, m := range req.Messages {
		if m.Role == "user" {
			s.prompts = append(s.prompts, m.Content)
		}
	}
	if idx < len(s.errs) && s.errs[idx] != nil {
		return nil, s.errs[idx]
	}
	if idx >= len(s.responses) {
		return &contract.CompletionResponse{Content: "{}"}, nil
	}
	return &contract.CompletionResponse{Content: s.responses[idx]}, nil
}

func testRegistry(t *testing.T) *action.Registry {
	t.Helper()
	r, err := builtin.Registry()
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return r
}

func newTestExtractor(t *testing.T, client *stubClient, maxRetries int) *Extractor {
	t.Helper()
	var c model.Client
	if client != nil {
		c = client
	}
	e, err := NewExtractor(c, testRegistry(t), ExtractorConfig{Model: "test-model", MaxRetries: maxRetries})
	if err != nil {
		t.Fatalf("build extractor: %v", err)
	}
	return e
}

func TestExtractorReady(t *testing.T) {
	client := &stubClient{responses: []string{
		`{"action_name":"expense.approve","arguments":{"amount":1200,"vendor":"ACME"},"confidence":0.94,"missing_fields":[],"clarification_question":null}`,
	}}
	e := newTestExtractor(t, client, 2)

	res, err := e.Resolve(context.Background(), action.Request{Text: "approve 1200 for ACME"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.State != StateReady {
		t.Fatalf("expected READY, got %s (%s)", res.State, res.Message)
	}
	if res.ActionName != "expense.approve" {
		t.Errorf("unexpected action: %s", res.ActionName)
	}
	if res.Confidence != 0.94 {
		t.Errorf("unexpected confidence: %v", res.Confidence)
	}
	// Schema defaults fill the optional fields.
	if res.Args["purpose"] != "Unspecified" {
		t.Errorf("defaults not applied: %v", res.Args)
	}
	if client.calls != 1 {
		t.Errorf("expected 1 model call, got %d", client.calls)
	}
}

func TestExtractorAsk(t *testing.T) {
	client := &stubClient{responses: []string{
		`{"action_name":null,"arguments":{},"confidence":0.4,"missing_fields":["amount"],"clarification_question":"How much is the expense?"}`,
	}}
	e := newTestExtractor(t, client, 2)

	res, err := e.Resolve(context.Background(), action.Request{Text: "approve the expense"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.State != StateAsk {
		t.Fatalf("expected ASK, got %s", res.State)
	}
	if res.Question != "How much is the expense?" {
		t.Errorf("unexpected question: %q", res.Question)
	}
	if len(res.MissingFields) != 1 || res.MissingFields[0] != "amount" {
		t.Errorf("unexpected missing fields: %v", res.MissingFields)
	}
}

func TestExtractorAskSynthesizesQuestion(t *testing.T) {
	client := &stubClient{responses: []string{
		`{"action_name":null,"arguments":{},"confidence":0.3,"missing_fields":["amount","vendor"],"clarification_question":null}`,
	}}
	e := newTestExtractor(t, client, 0)

	res, err := e.Resolve(context.Background(), action.Request{Text: "expense"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.State != StateAsk {
		t.Fatalf("expected ASK, got %s", res.State)
	}
	if res.Question != "I need: amount, vendor" {
		t.Errorf("unexpected synthesized question: %q", res.Question)
	}
}

func TestExtractorRepairsMalformedJSON(t *testing.T) {
	client := &stubClient{responses: []string{
		`not json at all`,
		`{"action_name":"inventory.flag","arguments":{"sku":"S1","issue":"crushed box"},"confidence":0.8,"missing_fields":[],"clarification_question":null}`,
	}}
	e := newTestExtractor(t, client, 2)

	res, err := e.Resolve(context.Background(), action.Request{Text: "flag sku S1 crushed"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.State != StateReady {
		t.Fatalf("expected READY after repair, got %s", res.State)
	}
	if client.calls != 2 {
		t.Errorf("expected 2 model calls, got %d", client.calls)
	}
	// The second prompt must carry the repair context verbatim framing.
	second := client.prompts[1]
	if !strings.Contains(second, "The previous output failed validation.") {
		t.Errorf("repair framing missing from prompt:\n%s", second)
	}
	if !strings.Contains(second, "not valid JSON") {
		t.Errorf("parse failure detail missing from prompt:\n%s", second)
	}
}

func TestExtractorRepairsUnknownAction(t *testing.T) {
	client := &stubClient{responses: []string{
		`{"action_name":"expense.approve","arguments":{"amount":-5},"confidence":0.8,"missing_fields":[],"clarification_question":null}`,
		`{"action_name":"expense.approve","arguments":{"amount":5},"confidence":0.8,"missing_fields":[],"clarification_question":null}`,
	}}
	e := newTestExtractor(t, client, 2)

	res, err := e.Resolve(context.Background(), action.Request{Text: "approve 5"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.State != StateReady {
		t.Fatalf("expected READY after arg repair, got %s", res.State)
	}
	second := client.prompts[1]
	if !strings.Contains(second, "Action args invalid for expense.approve") {
		t.Errorf("arg failure detail missing from prompt:\n%s", second)
	}
	if !strings.Contains(second, "set action_name=null") {
		t.Errorf("repair guidance missing from prompt:\n%s", second)
	}
}

func TestExtractorExhaustionIsNoMatchNotError(t *testing.T) {
	client := &stubClient{responses: []string{
		`garbage`, `garbage`, `garbage`,
	}}
	e := newTestExtractor(t, client, 2)

	res, err := e.Resolve(context.Background(), action.Request{Text: "do something"})
	if err != nil {
		t.Fatalf("exhaustion must not return an error: %v", err)
	}
	if res.State != StateNoMatch {
		t.Fatalf("expected NO_MATCH, got %s", res.State)
	}
	if res.Message != "Intent extraction failed after retries. Please rephrase with more specifics." {
		t.Errorf("unexpected message: %q", res.Message)
	}
	// MaxRetries counts repairs past the first attempt.
	if client.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", client.calls)
	}
}

func TestExtractorModelErrorsFeedRepairLoop(t *testing.T) {
	client := &stubClient{
		errs: []error{errors.New("rate limited"), nil},
		responses: []string{
			``,
			`{"action_name":null,"arguments":{},"confidence":0,"missing_fields":[],"clarification_question":"What do you need?"}`,
		},
	}
	e := newTestExtractor(t, client, 1)

	res, err := e.Resolve(context.Background(), action.Request{Text: "hello"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.State != StateAsk {
		t.Fatalf("expected ASK after transient model error, got %s", res.State)
	}
	if client.calls != 2 {
		t.Errorf("expected 2 attempts, got %d", client.calls)
	}
}

func TestExtractorNilClientIsDegradedNoMatch(t *testing.T) {
	e := newTestExtractor(t, nil, 2)

	res, err := e.Resolve(context.Background(), action.Request{Text: "approve the expense"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.State != StateNoMatch {
		t.Fatalf("expected NO_MATCH, got %s", res.State)
	}
	if res.Message != "Intent extraction is disabled (no model configured)." {
		t.Errorf("unexpected message: %q", res.Message)
	}
}

func TestExtractorHonorsCancellation(t *testing.T) {
	client := &stubClient{responses: []string{`garbage`}}
	e := newTestExtractor(t, client, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Resolve(ctx, action.Request{Text: "anything"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if client.calls != 0 {
		t.Errorf("expected no model calls after cancellation, got %d", client.calls)
	}
}

func TestExtractorRejectsInventedAction(t *testing.T) {
	client := &stubClient{responses: []string{
		// Invented name passes the enum only if listed; an unlisted name fails
		// envelope validation and feeds repair.
		`{"action_name":"payroll.run","arguments":{},"confidence":0.9,"missing_fields":[],"clarification_question":null}`,
		`{"action_name":null,"arguments":{},"confidence":0.2,"missing_fields":[],"clarification_question":"Which action did you mean?"}`,
	}}
	e := newTestExtractor(t, client, 1)

	res, err := e.Resolve(context.Background(), action.Request{Text: "run payroll"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.State != StateAsk {
		t.Fatalf("expected ASK after invented action, got %s", res.State)
	}
}
