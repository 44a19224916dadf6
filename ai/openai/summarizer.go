package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/guilhermexp/recall/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const summaryPrompt = `Summarize the following text in 2-3 sentences, then on a final line
starting with "Tags:" list up to %d short lowercase topic tags separated by commas.

Text:
%s`

// maxSummaryInputRunes bounds the text sent to the summarizer model.
// Long documents are summarized from their head; the summary is
// best-effort, so a truncated view is acceptable.
const maxSummaryInputRunes = 24000

// Summarizer implements ai.Summarizer using OpenAI-compatible chat APIs.
type Summarizer struct {
	llm     *openai.LLM
	maxTags int
	logger  *slog.Logger
}

// newSummarizer is an internal constructor that returns the concrete type.
func newSummarizer(config *ai.Config) (*Summarizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.SummarizerHost),
		openai.WithToken("none"),
		openai.WithModel(config.SummarizerModel),
	)
	if err != nil {
		return nil, err
	}

	return &Summarizer{
		llm:     client,
		maxTags: config.MaxSummaryTags,
		logger:  slog.Default().With("component", "openai-summarizer"),
	}, nil
}

// NewSummarizer creates a new summarizer using the provided configuration.
//
// Returns ai.Summarizer interface to enforce abstraction.
func NewSummarizer(config *ai.Config) (ai.Summarizer, error) {
	return newSummarizer(config)
}

// Summarize generates a summary and topic tags for the given text.
func (s *Summarizer) Summarize(ctx context.Context, text string) (*ai.Summary, error) {
	if runes := []rune(text); len(runes) > maxSummaryInputRunes {
		text = string(runes[:maxSummaryInputRunes])
	}

	prompt := fmt.Sprintf(summaryPrompt, s.maxTags, text)

	s.logger.Debug("generating summary", "length", len(text))
	response, err := llms.GenerateFromSinglePrompt(ctx, s.llm, prompt, llms.WithTemperature(0.2))
	if err != nil {
		s.logger.Error("failed to generate summary", "err", err)
		return nil, err
	}

	return parseSummary(response, s.maxTags), nil
}

// parseSummary splits a model response into summary text and tags. The tags
// line is optional; models that ignore the instruction still yield a usable
// summary.
func parseSummary(response string, maxTags int) *ai.Summary {
	summary := strings.TrimSpace(response)
	var tags []string

	if idx := strings.LastIndex(summary, "Tags:"); idx >= 0 {
		tagLine := summary[idx+len("Tags:"):]
		summary = strings.TrimSpace(summary[:idx])

		for _, tag := range strings.Split(tagLine, ",") {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" {
				continue
			}
			tags = append(tags, tag)
			if len(tags) == maxTags {
				break
			}
		}
	}

	return &ai.Summary{Content: summary, Tags: tags}
}
