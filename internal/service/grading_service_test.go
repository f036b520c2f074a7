package service

import (
	"context"
	"testing"

	"github.com/acadlabs/assessment-engine/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestGradeAnswersEndToEnd(t *testing.T) {
	questions := map[uint]model.Question{
		1: {
			ID:             1,
			Text:           "Pick the right option",
			Type:           model.QuestionTypeChoice,
			Choices:        datatypes.JSON(`[{"key":"A"},{"key":"B"},{"key":"C"}]`),
			ExpectedAnswer: datatypes.JSON(`"A"`),
			Points:         2,
		},
		2: {
			ID:             2,
			Text:           "Explain recursion",
			Type:           model.QuestionTypeText,
			ExpectedAnswer: datatypes.JSON(`"recursion,base case"`),
			Points:         3,
		},
	}
	answers := []model.Answer{
		{QuestionID: 1, SelectedChoice: "B"},
		{QuestionID: 2, AnswerText: "it calls itself via recursion"},
	}

	svc := NewGradingService()
	outcome := svc.GradeAnswers(context.Background(), answers, questions, NewKeywordGrader())

	require.Len(t, outcome.PerAnswer, 2)
	assert.Equal(t, 0.0, outcome.PerAnswer[0].Awarded)
	assert.Equal(t, "Incorrect. Expected: A", outcome.PerAnswer[0].Feedback)
	assert.Equal(t, 1.5, outcome.PerAnswer[1].Awarded)

	assert.Equal(t, 1.5, outcome.TotalAwarded)
	assert.Equal(t, 5.0, outcome.TotalPossible)
	assert.Equal(t, 30.0, outcome.Grade)
}

func TestGradeAnswersZeroTotalPoints(t *testing.T) {
	questions := map[uint]model.Question{
		1: {
			ID:             1,
			Type:           model.QuestionTypeChoice,
			ExpectedAnswer: datatypes.JSON(`"A"`),
			Points:         0,
		},
	}
	answers := []model.Answer{{QuestionID: 1, SelectedChoice: "A"}}

	svc := NewGradingService()
	outcome := svc.GradeAnswers(context.Background(), answers, questions, NewKeywordGrader())

	assert.Equal(t, 0.0, outcome.TotalPossible)
	assert.Equal(t, 0.0, outcome.Grade)
}

func TestGradeAnswersSkipsUnknownQuestions(t *testing.T) {
	questions := map[uint]model.Question{
		1: {ID: 1, Type: model.QuestionTypeChoice, ExpectedAnswer: datatypes.JSON(`"A"`), Points: 2},
	}
	answers := []model.Answer{
		{QuestionID: 1, SelectedChoice: "A"},
		{QuestionID: 99, SelectedChoice: "A"},
	}

	svc := NewGradingService()
	outcome := svc.GradeAnswers(context.Background(), answers, questions, NewKeywordGrader())

	require.Len(t, outcome.PerAnswer, 1)
	assert.Equal(t, 100.0, outcome.Grade)
}

func TestNormalizeExpectedAnswer(t *testing.T) {
	t.Run("plain string is both key and rubric", func(t *testing.T) {
		q := model.Question{ExpectedAnswer: datatypes.JSON(`"A"`)}
		expected := normalizeExpectedAnswer(q)
		assert.Equal(t, "A", expected.ChoiceKey)
		assert.Equal(t, "A", expected.Text.Rubric)
		assert.Equal(t, []string{"a"}, expected.Text.Keywords)
	})

	t.Run("object with key field", func(t *testing.T) {
		q := model.Question{ExpectedAnswer: datatypes.JSON(`{"key":"B"}`)}
		expected := normalizeExpectedAnswer(q)
		assert.Equal(t, "B", expected.ChoiceKey)
	})

	t.Run("object with rubric field", func(t *testing.T) {
		q := model.Question{ExpectedAnswer: datatypes.JSON(`{"rubric":"cat, dog"}`)}
		expected := normalizeExpectedAnswer(q)
		assert.Equal(t, "cat, dog", expected.Text.Rubric)
		assert.Equal(t, []string{"cat", "dog"}, expected.Text.Keywords)
	})

	t.Run("list becomes keyword set", func(t *testing.T) {
		q := model.Question{ExpectedAnswer: datatypes.JSON(`["Recursion","Base Case"]`)}
		expected := normalizeExpectedAnswer(q)
		assert.Empty(t, expected.ChoiceKey)
		assert.Equal(t, []string{"recursion", "base case"}, expected.Text.Keywords)
	})

	t.Run("empty and null are zero values", func(t *testing.T) {
		assert.Equal(t, expectedAnswer{}, normalizeExpectedAnswer(model.Question{}))
		assert.Equal(t, expectedAnswer{}, normalizeExpectedAnswer(model.Question{ExpectedAnswer: datatypes.JSON(`null`)}))
	})
}

func TestExpectedChoiceKey(t *testing.T) {
	assert.Equal(t, "A", ExpectedChoiceKey(datatypes.JSON(`"A"`)))
	assert.Equal(t, "B", ExpectedChoiceKey(datatypes.JSON(`{"key":"B"}`)))
	assert.Empty(t, ExpectedChoiceKey(nil))
}
