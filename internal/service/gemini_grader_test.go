package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func failingGenerator(calls *int) textGenerator {
	return func(_ context.Context, _ string) (string, error) {
		*calls++
		return "", errors.New("upstream unavailable")
	}
}

func fixedGenerator(response string) textGenerator {
	return func(_ context.Context, _ string) (string, error) {
		return response, nil
	}
}

func TestGeminiGraderFallsBackOnCallFailure(t *testing.T) {
	calls := 0
	grader := &geminiGrader{
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

func TestGeminiGraderFallsBackOnUnparseableResponse(t *testing.T) {
	grader := &geminiGrader{
		generate: fixedGenerator("The answer seems mostly fine to me."),
		fallback: NewKeywordGrader(),
		timeout:  time.Second,
	}

	expected := ExpectedText{Rubric: "cat,dog", Keywords: []string{"cat", "dog"}}
	answer := "I like cats"

	result := grader.GradeText(context.Background(), "Name two pets", expected, answer, 4)
	want := NewKeywordGrader().GradeText(context.Background(), "Name two pets", expected, answer, 4)

	assert.Equal(t, want, result)
	assert.Equal(t, 2.0, result.Awarded)
}

func TestGeminiGraderParsesWellFormedResponse(t *testing.T) {
	grader := &geminiGrader{
		generate: fixedGenerator("SCORE: 2.5\nFEEDBACK: Good coverage of the topic."),
		fallback: NewKeywordGrader(),
		timeout:  time.Second,
	}

	result := grader.GradeText(context.Background(), "q", ExpectedText{Rubric: "rubric"}, "answer", 5)
	assert.Equal(t, 2.5, result.Awarded)
	assert.Equal(t, 5.0, result.Possible)
	assert.Equal(t, "Good coverage of the topic.", result.Feedback)
}

func TestGeminiGraderBlankAnswerSkipsCall(t *testing.T) {
	calls := 0
	grader := &geminiGrader{
		generate: failingGenerator(&calls),
		fallback: NewKeywordGrader(),
		timeout:  time.Second,
	}

	result := grader.GradeText(context.Background(), "q", ExpectedText{Rubric: "rubric"}, "   ", 3)
	assert.Zero(t, calls)
	assert.Equal(t, 0.0, result.Awarded)
	assert.Equal(t, 3.0, result.Possible)
	assert.Equal(t, "No answer provided.", result.Feedback)
}

func TestGeminiGraderChoiceDelegatesToFallback(t *testing.T) {
	grader := &geminiGrader{
		generate: fixedGenerator("unused"),
		fallback: NewKeywordGrader(),
		timeout:  time.Second,
	}

	result := grader.GradeChoice("A", " a ", 2)
	assert.Equal(t, 2.0, result.Awarded)
	assert.Equal(t, "Correct!", result.Feedback)
}
