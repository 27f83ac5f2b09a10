package llm_test

import (
	"strings"
	"testing"

	"github.com/Rrens/opsflow/internal/domain"
	"github.com/Rrens/opsflow/internal/llm"
)

func TestBuildFormSchemaPrompt(t *testing.T) {
	prompt := llm.BuildFormSchemaPrompt("Customer feedback for a coffee shop")

	mustContain := []string{
		"Customer feedback for a coffee shop",
		`"select"`,
		"options",
		"strictly valid JSON",
	}

	for _, s := range mustContain {
		if !strings.Contains(prompt, s) {
			t.Errorf("prompt should contain %q", s)
		}
	}
}

func TestBuildInsightPrompt(t *testing.T) {
	fields := []domain.Field{
		{ID: "f1", Label: "Name"},
		{ID: "f2", Label: "Rating"},
	}
	answers := []map[string]any{
		{"f1": "Ada", "f2": float64(5)},
		{"f1": "Linus", "f2": float64(3)},
	}

	prompt, err := llm.BuildInsightPrompt(fields, answers)
	if err != nil {
		t.Fatalf("failed to build prompt: %v", err)
	}

	mustContain := []string{
		"f1: Name\nf2: Rating",
		`{"f1":"Ada","f2":5}`,
		`{"f1":"Linus","f2":3}`,
		"60% of users",
	}

	for _, s := range mustContain {
		if !strings.Contains(prompt, s) {
			t.Errorf("prompt should contain %q", s)
		}
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			"plain json",
			`[{"id":"a"}]`,
			`[{"id":"a"}]`,
		},
		{
			"json fence",
			"```json\n[{\"id\":\"a\"}]\n```",
			`[{"id":"a"}]`,
		},
		{
			"generic fence",
			"```\n[1, 2]\n```",
			"[1, 2]",
		},
		{
			"prose before fence",
			"Here you go:\n```json\n[]\n```\nEnjoy",
			"[]",
		},
		{
			"unterminated fence",
			"```json\n[true]",
			"[true]",
		},
		{
			"surrounding whitespace",
			"   [\"x\"]  \n",
			`["x"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := llm.StripCodeFences(tt.content)
			if result != tt.expected {
				t.Errorf("StripCodeFences() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestDecodeJSONArray(t *testing.T) {
	var fields []domain.Field
	err := llm.DecodeJSONArray("```json\n[{\"id\":\"f1\",\"type\":\"text\",\"label\":\"Name\",\"required\":true}]\n```", &fields)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fields) != 1 || fields[0].ID != "f1" || fields[0].Type != domain.FieldText {
		t.Errorf("unexpected fields: %+v", fields)
	}

	malformed := []string{
		"Sorry, I cannot help with that.",
		`{"id":"f1"}`,
		"[{\"id\": }]",
		"",
	}
	for _, m := range malformed {
		var out []domain.Field
		if err := llm.DecodeJSONArray(m, &out); err == nil {
			t.Errorf("expected error for %q", m)
		}
	}
}

func TestDecodeJSONArray_ErrorKeepsRunesWhole(t *testing.T) {
	// one ASCII byte shifts every two-byte rune so the cut lands mid-rune
	reply := "x" + strings.Repeat("é", 40)

	var out []domain.Field
	err := llm.DecodeJSONArray(reply, &out)
	if err == nil {
		t.Fatal("expected error for a non-array reply")
	}
	if strings.Contains(err.Error(), `\x`) {
		t.Errorf("error message splits a rune: %s", err)
	}
	if !strings.Contains(err.Error(), "é...") {
		t.Errorf("expected truncated reply in error, got %s", err)
	}
}
