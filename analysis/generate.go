package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// generate renders tpl with the retrieved context and runs it through llm.
func generate(ctx context.Context, llm llms.Model, tpl prompts.ChatPromptTemplate, contextText string, temperature float64) (string, error) {
	msgs, err := tpl.FormatMessages(map[string]any{"context": contextText})
	if err != nil {
		return "", fmt.Errorf("format prompt: %w", err)
	}

	content := make([]llms.MessageContent, len(msgs))
	for i, m := range msgs {
		content[i] = llms.TextParts(m.GetType(), m.GetContent())
	}

	resp, err := llm.GenerateContent(ctx, content, llms.WithTemperature(temperature))
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}
