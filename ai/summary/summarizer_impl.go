package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vjinviraj/pwalib-backend/ai"
)

// CannedSummary is returned when every model in the chain fails. The route
// still answers 200 with this text so the client never loses a book page to
// an LLM outage.
const CannedSummary = "A summary for this book is not available right now. Please check back later or refer to the description."

const defaultMaxLen = 400

type llmSummarizer struct {
	llm    ai.Service
	models []string // ordered fallback chain, tried front to back
}

// NewSummarizer creates a summarizer that walks the given model chain in
// order until one model answers. Empty model identifiers are skipped.
func NewSummarizer(llmSvc ai.Service, models ...string) Summarizer {
	chain := make([]string, 0, len(models))
	for _, m := range models {
		if m != "" {
			chain = append(chain, m)
		}
	}
	return &llmSummarizer{
		llm:    llmSvc,
		models: chain,
	}
}

func (s *llmSummarizer) Summarize(ctx context.Context, req *SummarizeRequest) (*SummarizeResponse, error) {
	maxLen := req.MaxLen
	if maxLen <= 0 {
		maxLen = defaultMaxLen
	}

	if s.llm == nil || len(s.models) == 0 {
		return cannedResponse(), nil
	}

	messages := []ai.Message{
		ai.SystemPrompt(summarySystemPrompt),
		ai.UserMessage(buildPrompt(req, maxLen)),
	}

	start := time.Now()
	for i, model := range s.models {
		content, stats, err := s.llm.Chat(ctx, model, messages)
		if err != nil {
			slog.Warn("summary: model failed, trying next in chain",
				"model", model,
				"attempt", i+1,
				"remaining", len(s.models)-i-1,
				"error", err,
			)
			if ctx.Err() != nil {
				// The caller is gone; running the rest of the chain is pointless.
				return nil, ctx.Err()
			}
			continue
		}

		source := SourcePrimary
		if i > 0 {
			source = SourceFallbackModel
		}

		latency := time.Since(start)
		if stats != nil {
			latency = time.Duration(stats.TotalDurationMs) * time.Millisecond
		}

		return &SummarizeResponse{
			Summary: truncateRunes(parseSummary(content), maxLen),
			Source:  source,
			Model:   model,
			Latency: latency,
		}, nil
	}

	slog.Warn("summary: all models in chain failed, returning canned summary",
		"models", s.models,
		"title", req.Title,
	)
	return cannedResponse(), nil
}

func cannedResponse() *SummarizeResponse {
	return &SummarizeResponse{
		Summary: CannedSummary,
		Source:  SourceFallbackCanned,
	}
}

func buildPrompt(req *SummarizeRequest, maxLen int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a reader-facing summary of at most %d characters for the following book.\n\n", maxLen)
	fmt.Fprintf(&b, "Title: %s\n", req.Title)
	if req.Author != "" {
		fmt.Fprintf(&b, "Author: %s\n", req.Author)
	}
	if req.Genre != "" {
		fmt.Fprintf(&b, "Genre: %s\n", req.Genre)
	}
	if req.Description != "" {
		fmt.Fprintf(&b, "Catalog description: %s\n", req.Description)
	}
	b.WriteString(`
Return JSON: {"summary": "the summary"}`)
	return b.String()
}

func parseSummary(content string) string {
	// Strip markdown code block wrapper if present
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var result struct {
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(content), &result); err == nil && result.Summary != "" {
		return strings.TrimSpace(result.Summary)
	}

	return content
}

// truncateRunes safely truncates a string by rune count rather than bytes.
func truncateRunes(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen])
}

const summarySystemPrompt = `You are a librarian writing short book summaries for a public library catalog.

Rules:
1. Stay within the requested length.
2. Base the summary only on the provided metadata; never invent plot details.
3. Write in the language of the provided description, defaulting to English.
4. Do not add prefixes such as "Summary:".
5. Return JSON: {"summary": "the summary"}`
