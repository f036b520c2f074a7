package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/acadlabs/assessment-engine/config"
	apperrors "github.com/acadlabs/assessment-engine/internal/errors"
	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

const defaultLLMTimeout = 30 * time.Second

// textGenerator is the narrow seam between a grader and its LLM backend:
// one prompt in, raw completion text out.
type textGenerator func(ctx context.Context, prompt string) (string, error)

// geminiGrader grades free-text answers through the Gemini API. Choice
// questions and every failure path delegate to the deterministic keyword
// grader, so the external service being down never fails a submission.
type geminiGrader struct {
	generate textGenerator
	fallback Grader
	timeout  time.Duration
}

func NewGeminiGrader(cfg *config.Config) (Grader, error) {
	apiKey := cfg.Grading.GeminiAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: gemini", apperrors.ErrMissingAPICredential)
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Grading.GeminiModel)
	model.SetTemperature(0.3)
	model.SetMaxOutputTokens(500)

	timeout := cfg.Grading.LLMTimeout
	if timeout <= 0 {
		timeout = defaultLLMTimeout
	}

	return &geminiGrader{
		generate: geminiGenerator(model),
		fallback: NewKeywordGrader(),
		timeout:  timeout,
	}, nil
}

func geminiGenerator(model *genai.GenerativeModel) textGenerator {
	return func(ctx context.Context, prompt string) (string, error) {
		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return "", err
		}
		raw := ""
		if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
			for _, part := range resp.Candidates[0].Content.Parts {
				if txt, ok := part.(genai.Text); ok {
					raw += string(txt)
				}
			}
		}
		if raw == "" {
			return "", fmt.Errorf("response contains no text content")
		}
		return raw, nil
	}
}

func (g *geminiGrader) GradeChoice(expectedKey, selectedKey string, points float64) GradeResult {
	return g.fallback.GradeChoice(expectedKey, selectedKey, points)
}

func (g *geminiGrader) GradeText(ctx context.Context, questionText string, expected ExpectedText, studentAnswer string, points float64) GradeResult {
	if strings.TrimSpace(studentAnswer) == "" {
		// Cost/latency guard: a blank answer scores zero without an API call.
		return GradeResult{Awarded: 0, Possible: points, Feedback: "No answer provided."}
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	prompt := buildGradingPrompt(questionText, rubricText(expected), studentAnswer, points)
	raw, err := g.generate(callCtx, prompt)
	if err != nil {
		log.Warn().Err(err).Msg("Gemini grading call failed, falling back to keyword grading")
		return g.fallback.GradeText(ctx, questionText, expected, studentAnswer, points)
	}

	score, feedback, err := parseScoreAndFeedback(raw, points)
	if err != nil {
		log.Warn().Err(err).Str("raw", raw).Msg("Unparseable Gemini response, falling back to keyword grading")
		return g.fallback.GradeText(ctx, questionText, expected, studentAnswer, points)
	}

	return GradeResult{Awarded: score, Possible: points, Feedback: feedback}
}

func rubricText(expected ExpectedText) string {
	if expected.Rubric != "" {
		return expected.Rubric
	}
	return strings.Join(expected.Keywords, ", ")
}

func buildGradingPrompt(question, rubric, answer string, points float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Grade the following student answer on a scale of 0 to %g points.\n\n", points)
	fmt.Fprintf(&b, "QUESTION:\n%s\n\n", question)
	fmt.Fprintf(&b, "EXPECTED ANSWER / RUBRIC:\n%s\n\n", rubric)
	fmt.Fprintf(&b, "STUDENT ANSWER:\n%s\n\n", answer)
	fmt.Fprintf(&b, "Provide your response in this exact format:\n")
	fmt.Fprintf(&b, "SCORE: [number between 0 and %g]\n", points)
	fmt.Fprintf(&b, "FEEDBACK: [constructive feedback explaining the grade]\n\n")
	fmt.Fprintf(&b, "Be fair and thorough. Award partial credit for partially correct answers.")
	return b.String()
}

// parseScoreAndFeedback extracts the SCORE and FEEDBACK lines from an LLM
// response. The score is clamped into [0, maxPoints] and rounded to 4
// decimal places; a response without a parseable SCORE line is an error.
func parseScoreAndFeedback(raw string, maxPoints float64) (float64, string, error) {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	score := 0.0
	scoreFound := false
	feedback := raw

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "SCORE:") {
			scoreText := strings.TrimSpace(strings.TrimPrefix(trimmed, "SCORE:"))
			if fields := strings.Fields(scoreText); len(fields) > 0 {
				scoreText = fields[0]
			}
			parsed, err := strconv.ParseFloat(scoreText, 64)
			if err != nil {
				continue
			}
			score = parsed
			scoreFound = true
		} else if strings.HasPrefix(trimmed, "FEEDBACK:") {
			feedback = strings.TrimSpace(strings.TrimPrefix(strings.Join(lines[i:], "\n"), "FEEDBACK:"))
			feedback = strings.TrimSpace(feedback)
			break
		}
	}

	if !scoreFound {
		return 0, "", fmt.Errorf("response does not contain a parseable SCORE line")
	}

	if score > maxPoints {
		score = maxPoints
	}
	if score < 0 {
		score = 0
	}
	return round4(score), feedback, nil
}
