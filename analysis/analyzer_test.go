package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/smallnest/pitchgraph/llms/provider"
	"github.com/smallnest/pitchgraph/log"
	"github.com/smallnest/pitchgraph/rag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func TestAnalyzer_Analyze(t *testing.T) {
	llm := &mockLLM{answer: "Success Probability: 68 %\nReasoning:\n- Market: large"}
	a := NewAnalyzer(newTestBuilder(t), testModels(llm), testOptions())

	res, err := a.Analyze(context.Background(), samplePitch)
	require.NoError(t, err)

	assert.Equal(t, llm.answer, res.Text)
	require.NotNil(t, res.Probability)
	assert.Equal(t, 68, *res.Probability)
	assert.Greater(t, res.Chunks, 1)
	assert.Greater(t, res.Coverage.Characters, 0)

	require.Len(t, llm.calls, 1)
	msgs := llm.calls[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, msgs[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, msgs[1].Role)

	system := textOf(msgs[0])
	assert.Contains(t, system, "You are a startup evaluation expert.")
	assert.Contains(t, system, "Success Probability: <number between 0 and 100> %")
	assert.Contains(t, system, "Use only the given context.\n")
	assert.NotContains(t, system, "{{.context}}")
	assert.NotContains(t, system, "<p>", "editor markup must be stripped before indexing")
	assert.Equal(t, "Analyze the startup and predict its success rate.", textOf(msgs[1]))
	assert.InDelta(t, 0.3, llm.opts[0].Temperature, 1e-9)
}

func TestAnalyzer_Temperature(t *testing.T) {
	llm := &mockLLM{}
	a := NewAnalyzer(newTestBuilder(t), testModels(llm), Options{Logger: &log.NoOpLogger{}})
	_, err := a.Analyze(context.Background(), samplePitch)
	require.NoError(t, err)

	greedy := 0.0
	a = NewAnalyzer(newTestBuilder(t), testModels(llm), Options{Temperature: &greedy, Logger: &log.NoOpLogger{}})
	_, err = a.Analyze(context.Background(), samplePitch)
	require.NoError(t, err)

	require.Len(t, llm.opts, 2)
	assert.InDelta(t, DefaultTemperature, llm.opts[0].Temperature, 1e-9, "unset uses the default")
	assert.Zero(t, llm.opts[1].Temperature, "explicit zero is kept")
}

func TestAnalyzer_NoProbability(t *testing.T) {
	llm := &mockLLM{answer: "Hard to say."}
	a := NewAnalyzer(newTestBuilder(t), testModels(llm), testOptions())

	res, err := a.Analyze(context.Background(), "A marketplace for used lab equipment.")
	require.NoError(t, err)
	assert.Nil(t, res.Probability)
	assert.Equal(t, 1, res.Chunks)
}

func TestAnalyzer_EmptyPrompt(t *testing.T) {
	llm := &mockLLM{}
	a := NewAnalyzer(newTestBuilder(t), testModels(llm), testOptions())

	for _, prompt := range []string{"", "   ", "<p></p>"} {
		_, err := a.Analyze(context.Background(), prompt)
		assert.ErrorIs(t, err, rag.ErrEmptyPrompt, prompt)
	}
	assert.Empty(t, llm.calls)
}

func TestAnalyzer_MissingKey(t *testing.T) {
	a := NewAnalyzer(newTestBuilder(t), provider.NewLazy(provider.Config{}), testOptions())
	_, err := a.Analyze(context.Background(), "pitch")
	assert.ErrorIs(t, err, provider.ErrMissingAPIKey)
}

func TestAnalyzer_ModelError(t *testing.T) {
	llm := &mockLLM{failRole: "startup evaluation expert"}
	a := NewAnalyzer(newTestBuilder(t), testModels(llm), testOptions())

	_, err := a.Analyze(context.Background(), "pitch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream 500")
}

func TestAnalyzer_EmptyAnswer(t *testing.T) {
	llm := &mockLLM{answer: "   "}
	a := NewAnalyzer(newTestBuilder(t), testModels(llm), testOptions())

	_, err := a.Analyze(context.Background(), "pitch")
	assert.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestParseProbability(t *testing.T) {
	tests := []struct {
		text string
		want int
		ok   bool
	}{
		{"Success Probability: 72 %", 72, true},
		{"**Success Probability:** 65%", 65, true},
		{"success probability: 33.6 %\nReasoning", 34, true},
		{"Success Probability: 140 %", 100, true},
		{"Probability unknown", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseProbability(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}
}
