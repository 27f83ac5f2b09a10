package llm

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Rrens/opsflow/internal/domain"
)

// BuildFormSchemaPrompt asks for a JSON array of form fields matching description
func BuildFormSchemaPrompt(description string) string {
	return fmt.Sprintf(`You are an expert form builder AI. Create a form schema based on this description: %q.

Output strictly valid JSON. DO NOT include markdown formatting.

The output must be an array of objects with this shape:
{
  "id": string,            // short unique id such as "f1", "f2"
  "type": "text" | "number" | "email" | "textarea" | "checkbox" | "select",
  "label": string,
  "placeholder": string,   // optional, not for checkbox or select
  "required": boolean,
  "options": string[]      // required for select, omitted otherwise
}

Example Output:
[
  { "id": "a1", "type": "text", "label": "Full Name", "required": true, "placeholder": "John Doe" },
  { "id": "a2", "type": "email", "label": "Email Address", "required": true }
]`, description)
}

// BuildInsightPrompt asks for three insights over the given answers. Each
// question is rendered as "id: label" and each answer map as one JSON line.
func BuildInsightPrompt(fields []domain.Field, answers []map[string]any) (string, error) {
	questions := make([]string, 0, len(fields))
	for _, f := range fields {
		questions = append(questions, f.ID+": "+f.Label)
	}

	lines := make([]string, 0, len(answers))
	for _, a := range answers {
		b, err := json.Marshal(a)
		if err != nil {
			return "", fmt.Errorf("failed to encode answers: %w", err)
		}
		lines = append(lines, string(b))
	}

	return fmt.Sprintf(`Analyze these form responses and provide 3 key insights.
Focus on trends, common answers, and anomalies.

IMPORTANT: Output strictly valid JSON. Do not include markdown formatting.
The output must be an array of objects:
[
  { "title": "Dominance of Gmail", "description": "60%% of users are using Gmail...", "type": "trend" },
  { "title": "Missing Phone Numbers", "description": "Most users skipped the optional phone field.", "type": "warning" },
  { "title": "High Engagement", "description": "Responses peaked on weekends.", "type": "positive" }
]

Questions Map:
%s

Responses Data:
%s`, strings.Join(questions, "\n"), strings.Join(lines, "\n")), nil
}

// StripCodeFences removes markdown code fences around a model reply
func StripCodeFences(content string) string {
	content = strings.TrimSpace(content)
	if body, ok := extractFromCodeBlock(content, "```json"); ok {
		return body
	}
	if body, ok := extractFromCodeBlock(content, "```"); ok {
		return body
	}
	return content
}

func extractFromCodeBlock(content, startMarker string) (string, bool) {
	startIdx := strings.Index(content, startMarker)
	if startIdx == -1 {
		return "", false
	}

	contentStart := startIdx + len(startMarker)
	endIdx := strings.Index(content[contentStart:], "```")
	if endIdx == -1 {
		// unterminated fence, keep everything after the marker
		return strings.TrimSpace(content[contentStart:]), true
	}

	return strings.TrimSpace(content[contentStart : contentStart+endIdx]), true
}

// DecodeJSONArray strips fences and decodes the reply into out
func DecodeJSONArray(content string, out any) error {
	body := StripCodeFences(content)
	if !strings.HasPrefix(body, "[") {
		return fmt.Errorf("expected a JSON array, got %q", truncate(body, 40))
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return fmt.Errorf("failed to decode model output: %w", err)
	}
	return nil
}

// truncate keeps at most n bytes of s without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
