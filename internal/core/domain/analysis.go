package domain

import (
	"math"
	"time"
)

// AnalysisResult is the structured record recovered from an endpoint reply.
// Values are whatever encoding/json produces: float64, string, bool, nil,
// []any and map[string]any.
type AnalysisResult map[string]any

// String returns the string value at key, or "" when absent or not a string.
func (r AnalysisResult) String(key string) string {
	s, ok := r[key].(string)
	if !ok {
		return ""
	}
	return s
}

// Summary holds the headline fields of a page analysis.
type Summary struct {
	ProductName string `json:"product_name"`
	BrandName   string `json:"brand_name"`
	Category    string `json:"category"`

	// OverallScore is nil when the reply carries no score.
	OverallScore *int `json:"overall_score,omitempty"`
}

// Summarize extracts headline fields from the result.
// The overall score is taken from "overall_score" when numeric, otherwise
// it is the rounded mean of the numeric values under "scores".
func (r AnalysisResult) Summarize() Summary {
	s := Summary{
		ProductName: r.String("product_name"),
		BrandName:   r.String("brand_name"),
		Category:    r.String("category"),
	}

	if v, ok := r["overall_score"].(float64); ok {
		score := int(math.Round(v))
		s.OverallScore = &score
		return s
	}

	scores, ok := r["scores"].(map[string]any)
	if !ok {
		return s
	}
	var sum float64
	var n int
	for _, v := range scores {
		if f, ok := v.(float64); ok {
			sum += f
			n++
		}
	}
	if n > 0 {
		score := int(math.Round(sum / float64(n)))
		s.OverallScore = &score
	}
	return s
}

// Analysis is the outcome of one pipeline run.
type Analysis struct {
	// ID uniquely identifies the run in logs.
	ID string `json:"id"`

	// Result is the parsed record.
	Result AnalysisResult `json:"result"`

	// Summary holds headline fields derived from Result.
	Summary Summary `json:"summary"`

	// ImageCount is the number of source images submitted.
	ImageCount int `json:"image_count"`

	// TileCount is the number of image blocks sent.
	TileCount int `json:"tile_count"`

	// Attempts is the number of endpoint calls made, including the successful one.
	Attempts int `json:"attempts"`

	// Duration is the wall time of the whole run.
	Duration time.Duration `json:"duration"`
}
