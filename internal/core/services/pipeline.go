package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/custodia-labs/ragserve/internal/core/domain"
	"github.com/custodia-labs/ragserve/internal/core/ports/driven"
	"github.com/custodia-labs/ragserve/internal/logger"
)

// DefaultPromptTemplate renders retrieved context and a question.
const DefaultPromptTemplate = "Answer based on context:\n{context}\nQuestion: {question}\nAnswer:"

// AnswerMarker precedes the answer in generator output.
const AnswerMarker = "Answer:"

// contextSeparator joins retrieved chunks in the prompt.
const contextSeparator = "\n\n"

// Pipeline answers questions about one document. It is immutable once built;
// replacing a user's document replaces the whole pipeline.
type Pipeline struct {
	retriever *Retriever
	generator driven.TextGenerator
	template  string
	opts      driven.GenerateOptions
}

// NewPipeline binds a retriever to the shared generator.
// An empty template falls back to DefaultPromptTemplate.
func NewPipeline(
	retriever *Retriever,
	generator driven.TextGenerator,
	template string,
	opts driven.GenerateOptions,
) *Pipeline {
	if template == "" {
		template = DefaultPromptTemplate
	}
	return &Pipeline{
		retriever: retriever,
		generator: generator,
		template:  template,
		opts:      opts,
	}
}

// Answer retrieves context for question, generates a completion and
// returns the extracted answer.
func (p *Pipeline) Answer(ctx context.Context, question string) (string, error) {
	contexts, err := p.retriever.Query(ctx, question)
	if err != nil {
		return "", err
	}
	logger.Debug("Retrieved %d context chunks", len(contexts))

	prompt := RenderPrompt(p.template, contexts, question)

	output, err := p.generator.Generate(ctx, prompt, p.opts)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	return ExtractAnswer(output), nil
}

// Close releases the pipeline's index. The shared generator stays open.
func (p *Pipeline) Close() error {
	return p.retriever.Close()
}

// RenderPrompt fills the {context} and {question} placeholders of template.
// Context chunks are joined by a blank line.
func RenderPrompt(template string, contexts []string, question string) string {
	r := strings.NewReplacer(
		"{context}", strings.Join(contexts, contextSeparator),
		"{question}", question,
	)
	return r.Replace(template)
}

// ExtractAnswer returns the trimmed text after the last AnswerMarker in
// output, or the whole output trimmed when the marker is absent.
func ExtractAnswer(output string) string {
	if i := strings.LastIndex(output, AnswerMarker); i >= 0 {
		output = output[i+len(AnswerMarker):]
	}
	return strings.TrimSpace(output)
}

// GenerateOptionsFrom converts generation settings to generator options.
func GenerateOptionsFrom(s domain.GenerationSettings) driven.GenerateOptions {
	return driven.GenerateOptions{
		MaxTokens:         s.MaxTokens,
		RepetitionPenalty: s.RepetitionPenalty,
		Temperature:       s.Temperature,
		StopWords:         slices.Clone(s.StopWords),
	}
}
