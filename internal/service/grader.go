package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/acadlabs/assessment-engine/config"
	apperrors "github.com/acadlabs/assessment-engine/internal/errors"
	"github.com/rs/zerolog/log"
)

// Available grading strategies.
const (
	StrategyKeyword = "keyword"
	StrategyGemini  = "gemini"
	StrategyOpenAI  = "openai"
	StrategyHybrid  = "hybrid" // LLM for text, keyword for choice
)

// GradeResult is the outcome of grading a single answer.
type GradeResult struct {
	Awarded  float64
	Possible float64
	Feedback string
}

// ExpectedText is the normalized expected answer for a free-text question:
// the raw rubric for LLM prompts plus the lower-cased, trimmed keyword set
// for deterministic grading.
type ExpectedText struct {
	Rubric   string
	Keywords []string
}

// Grader is the pluggable grading strategy. GradeText takes a context
// because the LLM-backed variants perform a blocking external call;
// implementations must never return an error: an ungradable input yields
// zero awarded points and the LLM variants fall back to keyword grading.
type Grader interface {
	GradeChoice(expectedKey, selectedKey string, points float64) GradeResult
	GradeText(ctx context.Context, questionText string, expected ExpectedText, studentAnswer string, points float64) GradeResult
}

// NewGraderForStrategy builds the grader named by the configuration.
// Unknown strategy names are a configuration error; callers are expected to
// degrade to the keyword grader when construction fails.
func NewGraderForStrategy(cfg *config.Config) (Grader, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Grading.Strategy)) {
	case StrategyKeyword, "":
		return NewKeywordGrader(), nil
	case StrategyGemini:
		return NewGeminiGrader(cfg)
	case StrategyOpenAI:
		return NewOpenAIGrader(cfg)
	case StrategyHybrid:
		text, err := NewGeminiGrader(cfg)
		if err != nil {
			return nil, err
		}
		return &hybridGrader{choice: NewKeywordGrader(), text: text}, nil
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownGradingStrategy, cfg.Grading.Strategy)
	}
}

// NewGrader is the fx provider: it degrades to the deterministic keyword
// grader when the configured strategy cannot be constructed, so a bad
// strategy name or missing credential never prevents startup.
func NewGrader(cfg *config.Config) Grader {
	grader, err := NewGraderForStrategy(cfg)
	if err != nil {
		log.Warn().Err(err).Str("strategy", cfg.Grading.Strategy).Msg("Falling back to keyword grading strategy")
		return NewKeywordGrader()
	}
	return grader
}

// keywordGrader is the deterministic strategy: exact key match for choice
// questions, keyword-density substring matching for text questions. It has
// no external dependencies and is always available.
type keywordGrader struct{}

func NewKeywordGrader() Grader {
	return keywordGrader{}
}

func (keywordGrader) GradeChoice(expectedKey, selectedKey string, points float64) GradeResult {
	expected := strings.TrimSpace(expectedKey)
	if expected == "" {
		// Ungradable question (no expected key stored); award nothing
		// rather than erroring out of the whole submission.
		return GradeResult{Awarded: 0, Possible: points}
	}

	if strings.EqualFold(expected, strings.TrimSpace(selectedKey)) {
		return GradeResult{Awarded: points, Possible: points, Feedback: "Correct!"}
	}
	return GradeResult{Awarded: 0, Possible: points, Feedback: fmt.Sprintf("Incorrect. Expected: %s", expected)}
}

func (keywordGrader) GradeText(_ context.Context, _ string, expected ExpectedText, studentAnswer string, points float64) GradeResult {
	if expected.Rubric == "" && len(expected.Keywords) == 0 {
		return GradeResult{Awarded: 0, Possible: points, Feedback: "No expected answer provided."}
	}
	if len(expected.Keywords) == 0 {
		return GradeResult{Awarded: 0, Possible: points, Feedback: "No keywords to match."}
	}

	answer := strings.ToLower(studentAnswer)
	matched := 0
	for _, kw := range expected.Keywords {
		if kw != "" && strings.Contains(answer, kw) {
			matched++
		}
	}

	ratio := float64(matched) / float64(len(expected.Keywords))
	awarded := round4(ratio * points)
	feedback := fmt.Sprintf("Matched %d/%d keywords. Score: %.1f%%", matched, len(expected.Keywords), ratio*100)

	return GradeResult{Awarded: awarded, Possible: points, Feedback: feedback}
}

// hybridGrader composes two strategies instead of duplicating their logic.
type hybridGrader struct {
	choice Grader
	text   Grader
}

func (g *hybridGrader) GradeChoice(expectedKey, selectedKey string, points float64) GradeResult {
	return g.choice.GradeChoice(expectedKey, selectedKey, points)
}

func (g *hybridGrader) GradeText(ctx context.Context, questionText string, expected ExpectedText, studentAnswer string, points float64) GradeResult {
	return g.text.GradeText(ctx, questionText, expected, studentAnswer, points)
}

// splitKeywords turns a comma-separated rubric string into the lower-cased,
// trimmed keyword set used by deterministic grading.
func splitKeywords(s string) []string {
	var keywords []string
	for _, part := range strings.Split(s, ",") {
		if kw := strings.ToLower(strings.TrimSpace(part)); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
