package intent

import (
	"errors"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	majordomoErrors "github.com/majordomo-labs/majordomo/internal/errors"
)

func compileTestEnvelope(t *testing.T) *jsonschema.Schema {
	t.Helper()
	doc := envelopeSchemaDoc([]string{"expense.approve", "inventory.flag"})
	schema, err := compileEnvelopeSchema(doc)
	if err != nil {
		t.Fatalf("compile envelope schema: %v", err)
	}
	return schema
}

func TestParseEnvelopeValid(t *testing.T) {
	schema := compileTestEnvelope(t)

	env, err := parseEnvelope(schema, `{"action_name":"expense.approve","arguments":{"amount":5},"confidence":0.9,"missing_fields":[],"clarification_question":null}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if env.ActionName == nil || *env.ActionName != "expense.approve" {
		t.Errorf("unexpected action_name: %v", env.ActionName)
	}
	if env.Arguments["amount"] != float64(5) {
		t.Errorf("unexpected arguments: %v", env.Arguments)
	}
}

func TestParseEnvelopeNullAction(t *testing.T) {
	schema := compileTestEnvelope(t)

	env, err := parseEnvelope(schema, `{"action_name":null,"arguments":{},"confidence":0.2,"missing_fields":["amount"],"clarification_question":"How much?"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if env.ActionName != nil {
		t.Errorf("expected nil action_name, got %v", *env.ActionName)
	}
	if env.ClarificationQuestion == nil || *env.ClarificationQuestion != "How much?" {
		t.Errorf("unexpected question: %v", env.ClarificationQuestion)
	}
}

func TestParseEnvelopeRejections(t *testing.T) {
	schema := compileTestEnvelope(t)

	cases := []string{
		`not json`,
		`{}`,
		`{"action_name":"payroll.run","arguments":{},"confidence":0.5,"missing_fields":[],"clarification_question":null}`,
		`{"action_name":"expense.approve","arguments":{},"confidence":1.5,"missing_fields":[],"clarification_question":null}`,
		`{"action_name":"expense.approve","arguments":{},"confidence":0.5,"missing_fields":[],"clarification_question":null,"extra":1}`,
		`{"action_name":"expense.approve","confidence":0.5,"missing_fields":[],"clarification_question":null}`,
	}
	for _, raw := range cases {
		_, err := parseEnvelope(schema, raw)
		if err == nil {
			t.Errorf("input %s: expected rejection", raw)
			continue
		}
		if !errors.Is(err, majordomoErrors.ErrExtractionParse) {
			t.Errorf("input %s: expected ErrExtractionParse, got %v", raw, err)
		}
	}
}
