package contract

// Message is a single turn handed to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseSchema constrains generation to a fixed JSON envelope. Providers
// must enforce the constraint through their native structured-output
// mechanism, not merely request it in prose.
type ResponseSchema struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
	Strict bool           `json:"strict"`
}

type CompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float32         `json:"temperature,omitempty"`
	ResponseFormat *ResponseSchema `json:"response_format,omitempty"`
}

// CompletionResponse carries the raw text returned by the provider. When a
// ResponseSchema was set, Content is expected (but not guaranteed) to parse
// as that schema; callers must validate.
type CompletionResponse struct {
	Content string `json:"content"`
	Model   string `json:"model,omitempty"`
}
