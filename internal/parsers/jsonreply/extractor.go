// Package jsonreply recovers a JSON object from free-form model replies.
package jsonreply

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driven"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.ReplyExtractor = (*Extractor)(nil)

// DefaultExcerptLength is the number of characters of the reply kept in
// an ExtractionError.
const DefaultExcerptLength = 500

var errNotObject = errors.New("candidate is not a JSON object")

var (
	jsonFence    = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	genericFence = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

// Strategy locates one candidate JSON span in a reply.
type Strategy struct {
	// Name identifies the strategy in logs.
	Name string

	// Locate returns the candidate span and whether one was found.
	Locate func(text string) (string, bool)
}

// JSONFence finds the first fenced block tagged as json.
func JSONFence() Strategy {
	return Strategy{Name: "json-fence", Locate: submatch(jsonFence)}
}

// GenericFence finds the first fenced block of any kind.
func GenericFence() Strategy {
	return Strategy{Name: "fence", Locate: submatch(genericFence)}
}

// Braces takes everything from the first '{' to the last '}'.
func Braces() Strategy {
	return Strategy{Name: "braces", Locate: func(text string) (string, bool) {
		start := strings.IndexByte(text, '{')
		end := strings.LastIndexByte(text, '}')
		if start < 0 || end <= start {
			return "", false
		}
		return text[start : end+1], true
	}}
}

func submatch(re *regexp.Regexp) func(string) (string, bool) {
	return func(text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return "", false
		}
		return m[1], true
	}
}

// DefaultStrategies returns the strategies in priority order.
func DefaultStrategies() []Strategy {
	return []Strategy{JSONFence(), GenericFence(), Braces()}
}

// Extractor tries each strategy in order; the first candidate that parses
// as a JSON object wins. A candidate that fails to parse falls through to
// the next strategy.
type Extractor struct {
	strategies    []Strategy
	excerptLength int
}

// Option configures the extractor.
type Option func(*Extractor)

// WithStrategies replaces the default strategy list.
func WithStrategies(strategies ...Strategy) Option {
	return func(e *Extractor) {
		if len(strategies) > 0 {
			e.strategies = strategies
		}
	}
}

// WithExcerptLength sets the number of characters kept in errors.
func WithExcerptLength(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.excerptLength = n
		}
	}
}

// New creates an extractor with the given options.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		strategies:    DefaultStrategies(),
		excerptLength: DefaultExcerptLength,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the first JSON object recovered from text.
func (e *Extractor) Extract(text string) (domain.AnalysisResult, error) {
	for _, s := range e.strategies {
		candidate, ok := s.Locate(text)
		if !ok {
			continue
		}
		result, err := parseObject(candidate)
		if err != nil {
			logger.Debug("extract: %s candidate rejected: %v", s.Name, err)
			continue
		}
		logger.Debug("extract: matched %s (%d bytes)", s.Name, len(candidate))
		return result, nil
	}

	return nil, &domain.ExtractionError{Excerpt: Excerpt(text, e.excerptLength)}
}

// parseObject decodes candidate, accepting only a JSON object.
func parseObject(candidate string) (domain.AnalysisResult, error) {
	var result domain.AnalysisResult
	if err := json.Unmarshal([]byte(candidate), &result); err != nil {
		return nil, err
	}
	if result == nil {
		// "null" decodes into a nil map
		return nil, errNotObject
	}
	return result, nil
}

// Excerpt returns at most n characters from the start of text without
// splitting a multi-byte character.
func Excerpt(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	i := 0
	for pos := range text {
		if i == n {
			return text[:pos]
		}
		i++
	}
	return text
}
