package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/acadlabs/assessment-engine/internal/dto"
	apperrors "github.com/acadlabs/assessment-engine/internal/errors"
	"github.com/acadlabs/assessment-engine/internal/model"
	"github.com/acadlabs/assessment-engine/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ResolvedAnswer pairs a submitted answer with the question it resolved to.
type ResolvedAnswer struct {
	Question       model.Question
	AnswerText     string
	SelectedChoice string
}

// AnswerValidator checks a raw answer payload against an exam's question
// set. Validation is pure: no records are created or modified. The returned
// exam and question map are reused downstream to avoid redundant lookups.
type AnswerValidator interface {
	ValidateSubmission(examID uint, answers []dto.SubmissionAnswerDTO) (*model.Exam, map[uint]model.Question, []ResolvedAnswer, error)
}

type answerValidator struct {
	examRepo repository.ExamRepository
}

func NewAnswerValidator(examRepo repository.ExamRepository) AnswerValidator {
	return &answerValidator{examRepo: examRepo}
}

func (v *answerValidator) ValidateSubmission(examID uint, answers []dto.SubmissionAnswerDTO) (*model.Exam, map[uint]model.Question, []ResolvedAnswer, error) {
	exam, err := v.examRepo.FindByIDWithQuestions(examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, apperrors.NewValidationError("exam", "exam does not exist", examID)
		}
		return nil, nil, nil, err
	}

	if len(answers) == 0 {
		return nil, nil, nil, apperrors.NewValidationError("answers", "at least one answer is required", nil)
	}
	if len(exam.Questions) == 0 {
		return nil, nil, nil, apperrors.NewValidationError("exam", "exam has no questions", examID)
	}

	// Reject duplicate raw references before resolving anything.
	seenRefs := make(map[uint]bool, len(answers))
	for i, ans := range answers {
		if ans.Question == nil {
			return nil, nil, nil, apperrors.NewValidationError(
				fmt.Sprintf("answers[%d]", i), "each answer must include a question id or order index", nil)
		}
		if seenRefs[*ans.Question] {
			return nil, nil, nil, apperrors.NewValidationError(
				fmt.Sprintf("answers[%d]", i), "duplicate question references are not allowed", *ans.Question)
		}
		seenRefs[*ans.Question] = true
	}

	// References resolve against the stable id first, then against the
	// 1-based position in the (order, id) question ordering. Positional
	// resolution lets clients submit without knowing internal ids, at the
	// cost of requiring stable question order for the exam's lifetime.
	idMap := make(map[uint]model.Question, len(exam.Questions))
	positionMap := make(map[uint]model.Question, len(exam.Questions))
	for i, q := range exam.Questions {
		idMap[q.ID] = q
		positionMap[uint(i+1)] = q
	}

	questionMap := make(map[uint]model.Question, len(answers))
	resolved := make([]ResolvedAnswer, 0, len(answers))

	for i, ans := range answers {
		ref := *ans.Question
		question, ok := idMap[ref]
		if !ok {
			question, ok = positionMap[ref]
		}
		if !ok {
			return nil, nil, nil, apperrors.NewValidationError(
				fmt.Sprintf("answers[%d]", i),
				fmt.Sprintf("question reference '%d' is invalid for this exam; provide a question id or its order index", ref), ref)
		}
		if _, dup := questionMap[question.ID]; dup {
			return nil, nil, nil, apperrors.NewValidationError(
				fmt.Sprintf("answers[%d]", i),
				fmt.Sprintf("question %d is referenced more than once", question.ID), ref)
		}

		if err := validateAnswerContent(i, question, ans); err != nil {
			return nil, nil, nil, err
		}

		questionMap[question.ID] = question
		resolved = append(resolved, ResolvedAnswer{
			Question:       question,
			AnswerText:     ans.AnswerText,
			SelectedChoice: ans.SelectedChoice,
		})
	}

	return exam, questionMap, resolved, nil
}

func validateAnswerContent(idx int, question model.Question, ans dto.SubmissionAnswerDTO) error {
	field := fmt.Sprintf("answers[%d]", idx)

	if question.Type == model.QuestionTypeChoice {
		keys := normalizeChoiceKeys(question.Choices)
		if ans.SelectedChoice == "" {
			return apperrors.NewValidationError(field, "selected_choice is required for choice questions", nil)
		}
		for _, k := range keys {
			if ans.SelectedChoice == k {
				return nil
			}
		}
		return apperrors.NewValidationError(field,
			fmt.Sprintf("selected_choice '%s' is not valid for question %d; choices: %v", ans.SelectedChoice, question.ID, keys),
			ans.SelectedChoice)
	}

	if strings.TrimSpace(ans.AnswerText) == "" {
		return apperrors.NewValidationError(field, "answer_text is required for open-ended questions", nil)
	}
	return nil
}

// normalizeChoiceKeys flattens the stored choice list into its key set.
// Three representations occur in practice: a list of {key,text} objects
// (key may also be under "id" or "value", with "text" as last resort), a
// list of "key:text" strings, and a single comma-separated string.
func normalizeChoiceKeys(choices datatypes.JSON) []string {
	if len(choices) == 0 {
		return nil
	}

	var parsed any
	if err := json.Unmarshal(choices, &parsed); err != nil {
		return nil
	}

	var keys []string
	switch val := parsed.(type) {
	case []any:
		for _, c := range val {
			switch item := c.(type) {
			case map[string]any:
				key := firstString(item, "key", "id", "value", "text")
				if key == "" {
					key = fmt.Sprint(item)
				}
				keys = append(keys, key)
			case string:
				if idx := strings.Index(item, ":"); idx >= 0 {
					keys = append(keys, strings.TrimSpace(item[:idx]))
				} else {
					keys = append(keys, strings.TrimSpace(item))
				}
			default:
				keys = append(keys, fmt.Sprint(item))
			}
		}
	case string:
		for _, part := range strings.Split(val, ",") {
			if k := strings.TrimSpace(part); k != "" {
				keys = append(keys, k)
			}
		}
	}
	return keys
}

func firstString(m map[string]any, fields ...string) string {
	for _, f := range fields {
		if s, ok := m[f].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
