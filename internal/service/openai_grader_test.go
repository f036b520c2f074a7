package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOpenAIGraderFallsBackOnCallFailure(t *testing.T) {
	calls := 0
	grader := &openAIGrader{
		generate: failingGenerator(&calls),
		fallback: NewKeywordGrader(),
		timeout:  time.Second,
	}

	expected := ExpectedText{Rubric: "recursion,base case", Keywords: []string{"recursion", "base case"}}
	answer := "it calls itself via recursion"

	result := grader.GradeText(context.Background(), "Explain recursion", expected, answer, 3)
	want := NewKeywordGrader().GradeText(context.Background(), "Explain recursion", expected, answer, 3)

	assert.Equal(t, 1, calls)
	assert.Equal(t, want, result)
	assert.Equal(t, 1.5, result.Awarded)
}

func TestOpenAIGraderFallsBackOnUnparseableResponse(t *testing.T) {
	grader := &openAIGrader{
		generate: fixedGenerator("not a json object"),
		fallback: NewKeywordGrader(),
		timeout:  time.Second,
	}

	expected := ExpectedText{Rubric: "cat,dog", Keywords: []string{"cat", "dog"}}
	answer := "I like cats and dogs"

	result := grader.GradeText(context.Background(), "Name two pets", expected, answer, 4)
	want := NewKeywordGrader().GradeText(context.Background(), "Name two pets", expected, answer, 4)

	assert.Equal(t, want, result)
	assert.Equal(t, 4.0, result.Awarded)
}

func TestOpenAIGraderParsesAndClampsPayload(t *testing.T) {
	t.Run("well formed payload", func(t *testing.T) {
		grader := &openAIGrader{
			generate: fixedGenerator(`{"score": 2.5, "feedback": "Solid answer."}`),
			fallback: NewKeywordGrader(),
			timeout:  time.Second,
		}
		result := grader.GradeText(context.Background(), "q", ExpectedText{Rubric: "rubric"}, "answer", 5)
		assert.Equal(t, 2.5, result.Awarded)
		assert.Equal(t, "Solid answer.", result.Feedback)
	})

	t.Run("score above maximum is clamped", func(t *testing.T) {
		grader := &openAIGrader{
			generate: fixedGenerator(`{"score": 99, "feedback": "generous"}`),
			fallback: NewKeywordGrader(),
			timeout:  time.Second,
		}
		result := grader.GradeText(context.Background(), "q", ExpectedText{Rubric: "rubric"}, "answer", 5)
		assert.Equal(t, 5.0, result.Awarded)
	})

	t.Run("negative score is clamped to zero", func(t *testing.T) {
		grader := &openAIGrader{
			generate: fixedGenerator(`{"score": -2, "feedback": "harsh"}`),
			fallback: NewKeywordGrader(),
			timeout:  time.Second,
		}
		result := grader.GradeText(context.Background(), "q", ExpectedText{Rubric: "rubric"}, "answer", 5)
		assert.Equal(t, 0.0, result.Awarded)
	})
}

func TestOpenAIGraderBlankAnswerSkipsCall(t *testing.T) {
	calls := 0
	grader := &openAIGrader{
		generate: failingGenerator(&calls),
		fallback: NewKeywordGrader(),
		timeout:  time.Second,
	}

	result := grader.GradeText(context.Background(), "q", ExpectedText{Rubric: "rubric"}, "", 3)
	assert.Zero(t, calls)
	assert.Equal(t, "No answer provided.", result.Feedback)
}
