package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/acadlabs/assessment-engine/internal/model"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

// AnswerGrade is the grading outcome for a single answer.
type AnswerGrade struct {
	QuestionID uint
	Awarded    float64
	Possible   float64
	Feedback   string
}

// GradingOutcome aggregates a full grading pass. Grade is the submission
// percentage, rounded to 2 decimal places, and 0 when no points were
// possible (an exam of zero-point questions is graded 0, not an error).
type GradingOutcome struct {
	PerAnswer     []AnswerGrade
	TotalAwarded  float64
	TotalPossible float64
	Grade         float64
}

// GradingService iterates validated answers and applies the configured
// grading strategy per question type.
type GradingService interface {
	GradeAnswers(ctx context.Context, answers []model.Answer, questions map[uint]model.Question, grader Grader) GradingOutcome
}

type gradingService struct{}

func NewGradingService() GradingService {
	return &gradingService{}
}

func (s *gradingService) GradeAnswers(ctx context.Context, answers []model.Answer, questions map[uint]model.Question, grader Grader) GradingOutcome {
	outcome := GradingOutcome{PerAnswer: make([]AnswerGrade, 0, len(answers))}

	for _, answer := range answers {
		question, ok := questions[answer.QuestionID]
		if !ok {
			// Validation guarantees membership; skip defensively rather
			// than grading against the wrong question.
			log.Warn().Uint("questionID", answer.QuestionID).Msg("GradeAnswers: answer for unknown question, skipping")
			continue
		}

		expected := normalizeExpectedAnswer(question)

		var result GradeResult
		if question.Type == model.QuestionTypeChoice {
			result = grader.GradeChoice(expected.ChoiceKey, answer.SelectedChoice, question.Points)
		} else {
			result = grader.GradeText(ctx, question.Text, expected.Text, answer.AnswerText, question.Points)
		}

		outcome.PerAnswer = append(outcome.PerAnswer, AnswerGrade{
			QuestionID: question.ID,
			Awarded:    result.Awarded,
			Possible:   result.Possible,
			Feedback:   result.Feedback,
		})
		outcome.TotalAwarded += result.Awarded
		outcome.TotalPossible += result.Possible
	}

	if outcome.TotalPossible > 0 {
		outcome.Grade = round2(outcome.TotalAwarded / outcome.TotalPossible * 100)
	}
	return outcome
}

// expectedAnswer is the tagged normalization of a question's stored
// expected-answer JSON: a choice key for mcq questions, rubric + keyword
// list for text questions. Normalizing here keeps ad hoc shape inspection
// out of the graders.
type expectedAnswer struct {
	ChoiceKey string
	Text      ExpectedText
}

func normalizeExpectedAnswer(question model.Question) expectedAnswer {
	raw := question.ExpectedAnswer
	if len(raw) == 0 || string(raw) == "null" {
		return expectedAnswer{}
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		// Treat unparseable JSON as an opaque string rubric.
		s := string(raw)
		return expectedAnswer{ChoiceKey: s, Text: ExpectedText{Rubric: s, Keywords: splitKeywords(s)}}
	}

	switch val := parsed.(type) {
	case string:
		return expectedAnswer{ChoiceKey: val, Text: ExpectedText{Rubric: val, Keywords: splitKeywords(val)}}
	case map[string]any:
		key := firstString(val, "key")
		rubric := firstString(val, "rubric", "text")
		if rubric == "" {
			rubric = key
		}
		return expectedAnswer{ChoiceKey: key, Text: ExpectedText{Rubric: rubric, Keywords: splitKeywords(rubric)}}
	case []any:
		var keywords []string
		var items []string
		for _, item := range val {
			s := fmt.Sprint(item)
			items = append(items, s)
			if kw := strings.ToLower(strings.TrimSpace(s)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		return expectedAnswer{Text: ExpectedText{Rubric: strings.Join(items, ", "), Keywords: keywords}}
	default:
		s := fmt.Sprint(val)
		return expectedAnswer{ChoiceKey: s, Text: ExpectedText{Rubric: s, Keywords: splitKeywords(s)}}
	}
}

// ExpectedChoiceKey reports the normalized expected key of a choice
// question, used by the question service to warn about ungradable saves.
func ExpectedChoiceKey(expected datatypes.JSON) string {
	q := model.Question{ExpectedAnswer: expected}
	return normalizeExpectedAnswer(q).ChoiceKey
}
