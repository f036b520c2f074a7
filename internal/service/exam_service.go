package service

import (
	"errors"
	"fmt"

	"github.com/acadlabs/assessment-engine/internal/dto"
	apperrors "github.com/acadlabs/assessment-engine/internal/errors"
	"github.com/acadlabs/assessment-engine/internal/model"
	"github.com/acadlabs/assessment-engine/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ExamService interface {
	CreateExam(req dto.ExamCreateDTO) (*dto.ExamResponseDTO, error)
	UpdateExam(id uint, req dto.ExamCreateDTO) (*dto.ExamResponseDTO, error)
	DeleteExam(id uint) error
	GetAllExams() ([]dto.ExamSummaryDTO, error)
	GetExam(id uint) (*dto.ExamResponseDTO, error)
}

type examService struct {
	examRepo repository.ExamRepository
}

func NewExamService(examRepo repository.ExamRepository) ExamService {
	return &examService{examRepo: examRepo}
}

func (s *examService) CreateExam(req dto.ExamCreateDTO) (*dto.ExamResponseDTO, error) {
	exam := model.Exam{
		Title:           req.Title,
		DurationMinutes: req.DurationMinutes,
		Course:          req.Course,
		Metadata:        datatypes.JSONMap(req.Metadata),
	}
	for _, qDTO := range req.Questions {
		question, err := questionFromDTO(qDTO)
		if err != nil {
			return nil, err
		}
		exam.Questions = append(exam.Questions, question)
	}

	if err := s.examRepo.Create(&exam); err != nil {
		log.Error().Err(err).Msg("Failed to create exam")
		return nil, fmt.Errorf("database error creating exam: %w", err)
	}

	created, err := s.examRepo.FindByIDWithQuestions(exam.ID)
	if err != nil {
		log.Error().Err(err).Uint("examID", exam.ID).Msg("Failed to reload created exam")
		return nil, err
	}
	resp := buildExamDTO(created)
	return &resp, nil
}

func (s *examService) UpdateExam(id uint, req dto.ExamCreateDTO) (*dto.ExamResponseDTO, error) {
	exam, err := s.examRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExamNotFound
		}
		return nil, err
	}

	exam.Title = req.Title
	exam.DurationMinutes = req.DurationMinutes
	exam.Course = req.Course
	if req.Metadata != nil {
		exam.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.examRepo.Update(exam); err != nil {
		return nil, err
	}

	updated, err := s.examRepo.FindByIDWithQuestions(exam.ID)
	if err != nil {
		return nil, err
	}
	resp := buildExamDTO(updated)
	return &resp, nil
}

func (s *examService) DeleteExam(id uint) error {
	if _, err := s.examRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrExamNotFound
		}
		return err
	}
	return s.examRepo.Delete(id)
}

func (s *examService) GetAllExams() ([]dto.ExamSummaryDTO, error) {
	examsWithCount, err := s.examRepo.FindAllWithQuestionCount()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list exams")
		return nil, fmt.Errorf("error fetching exams: %w", err)
	}

	summaries := make([]dto.ExamSummaryDTO, 0, len(examsWithCount))
	for _, ewc := range examsWithCount {
		summaries = append(summaries, dto.ExamSummaryDTO{
			ID:              ewc.Exam.ID,
			Title:           ewc.Exam.Title,
			DurationMinutes: ewc.Exam.DurationMinutes,
			Course:          ewc.Exam.Course,
			QuestionCount:   ewc.QuestionCount,
			CreatedAt:       ewc.Exam.CreatedAt,
		})
	}
	return summaries, nil
}

func (s *examService) GetExam(id uint) (*dto.ExamResponseDTO, error) {
	exam, err := s.examRepo.FindByIDWithQuestions(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExamNotFound
		}
		return nil, err
	}
	resp := buildExamDTO(exam)
	return &resp, nil
}

func buildExamDTO(exam *model.Exam) dto.ExamResponseDTO {
	resp := dto.ExamResponseDTO{
		ID:              exam.ID,
		Title:           exam.Title,
		DurationMinutes: exam.DurationMinutes,
		Course:          exam.Course,
		Metadata:        exam.Metadata,
		CreatedAt:       exam.CreatedAt,
	}
	for _, q := range exam.Questions {
		resp.Questions = append(resp.Questions, buildQuestionDTO(q))
	}
	return resp
}
