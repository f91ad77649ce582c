package router

import (
	"encoding/json"
	"strings"
)

// parseCommand splits "/name args..." into the action name (token after the
// slash, up to the first space) and the raw argument remainder.
func parseCommand(text string) (name string, args string) {
	body := strings.TrimPrefix(text, "/")
	if idx := strings.IndexByte(body, ' '); idx >= 0 {
		return strings.TrimSpace(body[:idx]), strings.TrimSpace(body[idx+1:])
	}
	return strings.TrimSpace(body), ""
}

// decodeArgs JSON-decodes the remainder when it looks array/object-shaped,
// falling back to the raw string on decode failure. Schema validation decides
// whether the resulting value is acceptable.
func decodeArgs(raw string) any {
	if strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, "[") {
		var decoded any
		if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
			return decoded
		}
	}
	return raw
}
