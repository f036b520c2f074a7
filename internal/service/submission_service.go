package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/acadlabs/assessment-engine/internal/dto"
	apperrors "github.com/acadlabs/assessment-engine/internal/errors"
	"github.com/acadlabs/assessment-engine/internal/model"
	"github.com/acadlabs/assessment-engine/internal/repository"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SubmissionService coordinates the full grading pipeline: validation,
// atomic persistence of the submission and its answers, the grading pass,
// and finalization. Either the whole graded submission is persisted or none
// of it is.
type SubmissionService interface {
	Create(ctx context.Context, studentID uint, req dto.SubmissionCreateDTO) (*dto.SubmissionDetailDTO, error)
	GetByID(id uint, requester *model.User) (*dto.SubmissionDetailDTO, error)
	List(requester *model.User) ([]dto.SubmissionSummaryDTO, error)
}

type submissionService struct {
	validator      AnswerValidator
	gradingService GradingService
	grader         Grader
	submissionRepo repository.SubmissionRepository
	db             *gorm.DB
}

func NewSubmissionService(
	validator AnswerValidator,
	gradingService GradingService,
	grader Grader,
	submissionRepo repository.SubmissionRepository,
	db *gorm.DB,
) SubmissionService {
	return &submissionService{
		validator:      validator,
		gradingService: gradingService,
		grader:         grader,
		submissionRepo: submissionRepo,
		db:             db,
	}
}

func (s *submissionService) Create(ctx context.Context, studentID uint, req dto.SubmissionCreateDTO) (*dto.SubmissionDetailDTO, error) {
	exam, questionMap, resolved, err := s.validator.ValidateSubmission(req.Exam, req.Answers)
	if err != nil {
		return nil, err
	}

	// Pre-check for a clean error message; the unique constraint on
	// (student_id, exam_id) remains the authoritative guard against two
	// concurrent attempts both passing this check.
	exists, err := s.submissionRepo.ExistsByStudentAndExam(studentID, exam.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrDuplicateSubmission
	}

	submission := model.Submission{
		StudentID: studentID,
		ExamID:    exam.ID,
		StartedAt: time.Now().UTC(),
	}
	for _, ra := range resolved {
		submission.Answers = append(submission.Answers, model.Answer{
			QuestionID:     ra.Question.ID,
			AnswerText:     ra.AnswerText,
			SelectedChoice: ra.SelectedChoice,
		})
	}

	feedback := make(map[uint]string, len(resolved))

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&submission).Error; err != nil {
			return err
		}

		// Grading never errors: LLM strategies fall back to keyword
		// grading internally, so only storage failures abort the
		// transaction here.
		outcome := s.gradingService.GradeAnswers(ctx, submission.Answers, questionMap, s.grader)

		byQuestion := make(map[uint]AnswerGrade, len(outcome.PerAnswer))
		for _, ag := range outcome.PerAnswer {
			byQuestion[ag.QuestionID] = ag
			if ag.Feedback != "" {
				feedback[ag.QuestionID] = ag.Feedback
			}
		}
		for i := range submission.Answers {
			ag, ok := byQuestion[submission.Answers[i].QuestionID]
			if !ok {
				continue
			}
			awarded := ag.Awarded
			submission.Answers[i].PointsAwarded = &awarded
			if err := tx.Model(&submission.Answers[i]).Update("points_awarded", awarded).Error; err != nil {
				return err
			}
		}

		// Grading is immediate, so no real elapsed time is modeled:
		// submitted_at mirrors started_at.
		grade := outcome.Grade
		submission.SubmittedAt = &submission.StartedAt
		submission.Graded = true
		submission.Grade = &grade
		return tx.Model(&submission).Updates(map[string]any{
			"submitted_at": submission.SubmittedAt,
			"graded":       true,
			"grade":        grade,
		}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateSubmission
		}
		log.Error().Err(err).Uint("studentID", studentID).Uint("examID", exam.ID).Msg("Submission transaction failed, rolled back")
		return nil, err
	}

	detailed, err := s.submissionRepo.FindByIDWithDetails(submission.ID)
	if err != nil {
		log.Error().Err(err).Uint("submissionID", submission.ID).Msg("Failed to reload submission for response")
		return nil, err
	}
	return buildSubmissionDetailDTO(detailed, questionMap, feedback), nil
}

func (s *submissionService) GetByID(id uint, requester *model.User) (*dto.SubmissionDetailDTO, error) {
	submission, err := s.submissionRepo.FindByIDWithDetails(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSubmissionNotFound
		}
		return nil, err
	}
	if !requester.IsStaff && submission.StudentID != requester.ID {
		return nil, apperrors.ErrForbidden
	}

	questionMap := make(map[uint]model.Question, len(submission.Answers))
	for _, ans := range submission.Answers {
		questionMap[ans.QuestionID] = ans.Question
	}
	return buildSubmissionDetailDTO(submission, questionMap, nil), nil
}

func (s *submissionService) List(requester *model.User) ([]dto.SubmissionSummaryDTO, error) {
	var studentID *uint
	if !requester.IsStaff {
		studentID = &requester.ID
	}

	submissions, err := s.submissionRepo.FindAll(studentID)
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.SubmissionSummaryDTO, 0, len(submissions))
	for _, sub := range submissions {
		var summary dto.SubmissionSummaryDTO
		if err := copier.Copy(&summary, &sub); err != nil {
			log.Error().Err(err).Uint("submissionID", sub.ID).Msg("Error copying submission to summary DTO")
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// buildSubmissionDetailDTO renders a submission with its answers in question
// order. The feedback map is ephemeral grading output; when nil (reads after
// the fact) answers simply carry no feedback.
func buildSubmissionDetailDTO(submission *model.Submission, questions map[uint]model.Question, feedback map[uint]string) *dto.SubmissionDetailDTO {
	answers := make([]model.Answer, len(submission.Answers))
	copy(answers, submission.Answers)
	sort.SliceStable(answers, func(i, j int) bool {
		qi, oki := questions[answers[i].QuestionID]
		qj, okj := questions[answers[j].QuestionID]
		if !oki || !okj {
			return false
		}
		if qi.OrderIndex != qj.OrderIndex {
			return qi.OrderIndex < qj.OrderIndex
		}
		return qi.ID < qj.ID
	})

	resp := &dto.SubmissionDetailDTO{
		ID:          submission.ID,
		Student:     submission.Student.Username,
		ExamID:      submission.ExamID,
		ExamTitle:   submission.Exam.Title,
		StartedAt:   submission.StartedAt,
		SubmittedAt: submission.SubmittedAt,
		Graded:      submission.Graded,
		Grade:       submission.Grade,
	}

	for _, ans := range answers {
		ansDTO := dto.AnswerResponseDTO{
			ID:             ans.ID,
			QuestionID:     ans.QuestionID,
			AnswerText:     ans.AnswerText,
			SelectedChoice: ans.SelectedChoice,
			PointsAwarded:  ans.PointsAwarded,
			Feedback:       feedback[ans.QuestionID],
		}
		if q, ok := questions[ans.QuestionID]; ok {
			qDTO := buildQuestionDTO(q)
			ansDTO.Question = &qDTO
		}
		resp.Answers = append(resp.Answers, ansDTO)
	}
	return resp
}

func buildQuestionDTO(q model.Question) dto.QuestionResponseDTO {
	return dto.QuestionResponseDTO{
		ID:             q.ID,
		ExamID:         q.ExamID,
		Text:           q.Text,
		Type:           q.Type,
		Choices:        json.RawMessage(q.Choices),
		ExpectedAnswer: json.RawMessage(q.ExpectedAnswer),
		Points:         q.Points,
		Order:          q.OrderIndex,
		CreatedAt:      q.CreatedAt,
	}
}
