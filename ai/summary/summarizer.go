// Package summary generates short book blurbs from catalog metadata.
package summary

import (
	"context"
	"time"
)

// Source values reported in SummarizeResponse.
const (
	SourcePrimary        = "primary"
	SourceFallbackModel  = "fallback_model"
	SourceFallbackCanned = "fallback_static"
)

// Summarizer generates a summary for a book.
type Summarizer interface {
	Summarize(ctx context.Context, req *SummarizeRequest) (*SummarizeResponse, error)
}

// SummarizeRequest carries the book metadata the prompt is built from.
type SummarizeRequest struct {
	Title       string
	Author      string
	Genre       string
	Description string
	MaxLen      int // summary max length in runes, default 400
}

// SummarizeResponse is the generated summary.
type SummarizeResponse struct {
	Summary string
	Source  string // "primary" | "fallback_model" | "fallback_static"
	Model   string // model identifier that produced the summary, empty for the canned fallback
	Latency time.Duration
}
