package intent

import (
	"fmt"
	"strings"

	"github.com/majordomo-labs/majordomo/internal/action"
)

const extractorSystemPrompt = `You are an intent router for an operations assistant.
Goal: convert user text into ONE action from the allowed list, or ask a clarification question.

Rules:
- Choose ONLY from the allowed actions list. Never invent actions.
- If details are missing, set action_name=null, list missing_fields, and ask one concise clarification_question.
- Put values into arguments ONLY if the user explicitly provided them.
- confidence: 0..1, how sure you are that action_name and arguments match the user's request.`

func buildUserPrompt(req action.Request, descriptors []action.Descriptor, repairContext string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "User text:\n%s\n\n", req.Text)

	b.WriteString("Allowed actions:\n")
	for _, d := range descriptors {
		fmt.Fprintf(&b, "- %s: %s\n", d.Name, d.Description)
	}

	b.WriteString("\nReturn ONLY valid JSON matching the provided schema.\n")

	if repairContext != "" {
		b.WriteString("\nThe previous output failed validation.\n")
		b.WriteString("Fix the JSON. Do not add any other text.\n")
		b.WriteString("Validation errors:\n")
		b.WriteString(repairContext)
		b.WriteString("\n")
	}

	return b.String()
}
