package llm

import "context"

// Request contains text generation parameters
type Request struct {
	Prompt      string
	System      string
	Temperature float32
	MaxTokens   int
}

// Response contains LLM generation result
type Response struct {
	Text       string
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Generate returns the model's raw text completion for the prompt
	Generate(ctx context.Context, req Request, model string) (*Response, error)
}

// Generation defaults shared by providers
const (
	DefaultMaxTokens = 4096
	SystemPrompt     = "You are a precise assistant that answers with strictly valid JSON and nothing else."
)
