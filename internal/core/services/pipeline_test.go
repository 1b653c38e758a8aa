package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragserve/internal/core/domain"
	"github.com/custodia-labs/ragserve/internal/core/ports/driven"
)

func TestRenderPrompt(t *testing.T) {
	got := RenderPrompt(DefaultPromptTemplate, []string{"first", "second"}, "What?")

	assert.Equal(t, "Answer based on context:\nfirst\n\nsecond\nQuestion: What?\nAnswer:", got)
}

func TestRenderPrompt_PlaceholderInQuestionNotExpanded(t *testing.T) {
	got := RenderPrompt("{question}|{context}", []string{"ctx"}, "say {context}")

	assert.Equal(t, "say {context}|ctx", got)
}

func TestRenderPrompt_NoContext(t *testing.T) {
	got := RenderPrompt(DefaultPromptTemplate, nil, "Q")
	assert.Equal(t, "Answer based on context:\n\nQuestion: Q\nAnswer:", got)
}

func TestExtractAnswer(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"marker present", "Answer based on context:\nctx\nQuestion: q\nAnswer: 42 ", "42"},
		{"last marker wins", "Answer: one\nAnswer:  two\n", "two"},
		{"no marker", "  plain completion \n", "plain completion"},
		{"marker at end", "text Answer:", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractAnswer(tt.output))
		})
	}
}

func TestPipeline_Answer(t *testing.T) {
	embedder := &mockEmbedder{}
	idx := buildIndex(t, embedder, "paris is the capital", "berlin has bears", "unrelated zzz")
	gen := &mockGenerator{output: "Answer based on context: ... Answer: Paris."}
	opts := GenerateOptionsFrom(domain.DefaultAppSettings().Generation)

	p := NewPipeline(NewRetriever(idx, embedder, 2), gen, "", opts)

	answer, err := p.Answer(context.Background(), "capital paris")
	require.NoError(t, err)
	assert.Equal(t, "Paris.", answer)

	prompt := gen.lastPrompt()
	assert.Contains(t, prompt, "Question: capital paris\nAnswer:")
	assert.Contains(t, prompt, "paris is the capital\n\n")
	assert.Equal(t, driven.GenerateOptions{
		MaxTokens:         256,
		RepetitionPenalty: 1.2,
		StopWords:         []string{"\nQuestion:"},
	}, gen.lastOpts)
}

func TestPipeline_Answer_CustomTemplate(t *testing.T) {
	embedder := &mockEmbedder{}
	idx := buildIndex(t, embedder, "alpha")
	gen := &mockGenerator{output: "ok"}

	p := NewPipeline(NewRetriever(idx, embedder, 1), gen, "C={context} Q={question}", driven.GenerateOptions{})

	_, err := p.Answer(context.Background(), "alpha?")
	require.NoError(t, err)
	assert.Equal(t, "C=alpha Q=alpha?", gen.lastPrompt())
}

func TestPipeline_Answer_GenerationError(t *testing.T) {
	embedder := &mockEmbedder{}
	idx := buildIndex(t, embedder, "alpha")
	gen := &mockGenerator{err: errors.New("oom")}

	p := NewPipeline(NewRetriever(idx, embedder, 1), gen, "", driven.GenerateOptions{})

	_, err := p.Answer(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.Contains(t, err.Error(), "oom")
}

func TestPipeline_Answer_EmbeddingError(t *testing.T) {
	embedder := &mockEmbedder{}
	idx := buildIndex(t, embedder, "alpha")
	embedder.embedErr = errors.New("down")
	gen := &mockGenerator{output: "x"}

	p := NewPipeline(NewRetriever(idx, embedder, 1), gen, "", driven.GenerateOptions{})

	_, err := p.Answer(context.Background(), "q")
	assert.ErrorIs(t, err, domain.ErrEmbedding)
	assert.Empty(t, gen.lastPrompt(), "generator must not run without context")
}
