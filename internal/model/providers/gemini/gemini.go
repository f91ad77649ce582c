package gemini

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"

	"github.com/majordomo-labs/majordomo/internal/model/contract"
)

type Provider struct {
	client *genai.Client
}

func New(apiKey string) (*Provider, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{client: client}, nil
}

func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) Generate(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	var contents []*genai.Content
	config := &genai.GenerateContentConfig{}

	for _, m := range req.Messages {
		switch m.Role {
		case "system":
			if config.SystemInstruction == nil {
				config.SystemInstruction = &genai.Content{}
			}
			config.SystemInstruction.Parts = append(config.SystemInstruction.Parts, &genai.Part{Text: m.Content})
		case "assistant":
			contents = append(contents, &genai.Content{Role: "model", Parts: []*genai.Part{{Text: m.Content}}})
		default:
			contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: m.Content}}})
		}
	}

	if rf := req.ResponseFormat; rf != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = convertSchema(rf.Schema)
	}

	resp, err := p.client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	out := &contract.CompletionResponse{Model: req.Model}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return out, nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			out.Content += part.Text
		}
	}
	return out, nil
}

// convertSchema maps a JSON Schema document onto genai's schema type. Union
// types like ["string","null"] become a nullable single type; keywords the
// genai schema cannot express are dropped (the caller re-validates output
// against the full schema anyway).
func convertSchema(doc map[string]any) *genai.Schema {
	if doc == nil {
		return nil
	}

	schema := &genai.Schema{}

	switch t := doc["type"].(type) {
	case string:
		schema.Type = genaiType(t)
	case []any:
		for _, entry := range t {
			name, ok := entry.(string)
			if !ok {
				continue
			}
			if name == "null" {
				schema.Nullable = genai.Ptr(true)
				continue
			}
			schema.Type = genaiType(name)
		}
	}

	if props, ok := doc["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema, len(props))
		for name, prop := range props {
			if propDoc, ok := prop.(map[string]any); ok {
				schema.Properties[name] = convertSchema(propDoc)
			}
		}
	}
	if required, ok := doc["required"].([]any); ok {
		for _, field := range required {
			if name, ok := field.(string); ok {
				schema.Required = append(schema.Required, name)
			}
		}
	}
	if items, ok := doc["items"].(map[string]any); ok {
		schema.Items = convertSchema(items)
	}
	if enum, ok := doc["enum"].([]any); ok {
		for _, entry := range enum {
			if name, ok := entry.(string); ok {
				schema.Enum = append(schema.Enum, name)
			}
			if entry == nil {
				schema.Nullable = genai.Ptr(true)
			}
		}
	}
	if min, ok := doc["minimum"].(float64); ok {
		schema.Minimum = genai.Ptr(min)
	}
	if max, ok := doc["maximum"].(float64); ok {
		schema.Maximum = genai.Ptr(max)
	}

	return schema
}

func genaiType(name string) genai.Type {
	switch name {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeUnspecified
	}
}
