// Package llm is the boundary to language-model backed capabilities:
// retailer config synthesis and item similarity judging.
package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/valpere/DressCodex/internal/utils"
)

// Provider sends one prompt to a language model.
type Provider interface {
	// Name returns the provider name, e.g. "openai".
	Name() string

	// Available reports whether the provider is configured.
	Available() bool

	// Generate sends a prompt and returns the model's text.
	Generate(ctx context.Context, req Request) (Response, error)
}

// Request is a prompt request.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
	// JSON asks the backend for a JSON object response when supported.
	JSON bool
}

// Response is the model's answer.
type Response struct {
	Content string
	Model   string
}

// ParseJSON decodes a model answer into v. Markdown code fences are
// removed; when the cleaned text still does not decode, the outermost
// object or array is cut out and decoded instead.
func ParseJSON(content string, v interface{}) error {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(cleaned, pair[0])
		end := strings.LastIndex(cleaned, pair[1])
		if start < 0 || end <= start {
			continue
		}
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), v); err == nil {
			return nil
		}
	}

	return utils.NewError(utils.ErrCodeMalformedResponse, "model response is not valid JSON").
		WithContext("response", utils.TruncateString(cleaned, 200)).
		WithoutStackTrace().
		Build()
}
