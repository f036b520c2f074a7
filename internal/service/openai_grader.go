package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/acadlabs/assessment-engine/config"
	apperrors "github.com/acadlabs/assessment-engine/internal/errors"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// openAIGrader grades free-text answers through an OpenAI-compatible chat
// endpoint, with the same transparent keyword fallback as the Gemini
// variant. A custom base URL allows pointing at self-hosted gateways.
type openAIGrader struct {
	generate textGenerator
	fallback Grader
	timeout  time.Duration
}

type openAIGradePayload struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

func NewOpenAIGrader(cfg *config.Config) (Grader, error) {
	apiKey := cfg.Grading.OpenAIAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: openai", apperrors.ErrMissingAPICredential)
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.Grading.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.Grading.OpenAIBaseURL
	}

	timeout := cfg.Grading.LLMTimeout
	if timeout <= 0 {
		timeout = defaultLLMTimeout
	}

	return &openAIGrader{
		generate: openAIGenerator(openai.NewClientWithConfig(clientCfg), cfg.Grading.OpenAIModel),
		fallback: NewKeywordGrader(),
		timeout:  timeout,
	}, nil
}

func openAIGenerator(api *openai.Client, model string) textGenerator {
	return func(ctx context.Context, prompt string) (string, error) {
		resp, err := api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Temperature: 0.3,
			MaxTokens:   500,
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("response contains no choices")
		}
		return resp.Choices[0].Message.Content, nil
	}
}

func (g *openAIGrader) GradeChoice(expectedKey, selectedKey string, points float64) GradeResult {
	return g.fallback.GradeChoice(expectedKey, selectedKey, points)
}

func (g *openAIGrader) GradeText(ctx context.Context, questionText string, expected ExpectedText, studentAnswer string, points float64) GradeResult {
	if strings.TrimSpace(studentAnswer) == "" {
		return GradeResult{Awarded: 0, Possible: points, Feedback: "No answer provided."}
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	prompt := buildOpenAIGradingPrompt(questionText, rubricText(expected), studentAnswer, points)
	raw, err := g.generate(callCtx, prompt)
	if err != nil {
		log.Warn().Err(err).Msg("OpenAI grading call failed, falling back to keyword grading")
		return g.fallback.GradeText(ctx, questionText, expected, studentAnswer, points)
	}

	var payload openAIGradePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		log.Warn().Err(err).Str("raw", raw).Msg("Unparseable OpenAI response, falling back to keyword grading")
		return g.fallback.GradeText(ctx, questionText, expected, studentAnswer, points)
	}

	score := payload.Score
	if score > points {
		score = points
	}
	if score < 0 {
		score = 0
	}
	return GradeResult{Awarded: round4(score), Possible: points, Feedback: payload.Feedback}
}

func buildOpenAIGradingPrompt(question, rubric, answer string, points float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an exam grader. Grade the student answer on a scale of 0 to %g points against the rubric. ", points)
	fmt.Fprintf(&b, "Award partial credit for partially correct answers. ")
	fmt.Fprintf(&b, `Respond with a JSON object: {"score": <number>, "feedback": "<constructive feedback>"}.`)
	fmt.Fprintf(&b, "\n\nQUESTION:\n%s\n\nEXPECTED ANSWER / RUBRIC:\n%s\n\nSTUDENT ANSWER:\n%s", question, rubric, answer)
	return b.String()
}
