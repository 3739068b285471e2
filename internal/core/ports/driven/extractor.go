package driven

import "github.com/custodia-labs/pagelens/internal/core/domain"

// ReplyExtractor recovers a JSON object from free-form reply text.
type ReplyExtractor interface {
	// Extract returns the first JSON object found, or a
	// *domain.ExtractionError carrying a bounded excerpt of the text.
	Extract(text string) (domain.AnalysisResult, error)
}
