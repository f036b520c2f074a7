package service

import (
	"errors"

	"github.com/acadlabs/assessment-engine/internal/dto"
	apperrors "github.com/acadlabs/assessment-engine/internal/errors"
	"github.com/acadlabs/assessment-engine/internal/model"
	"github.com/acadlabs/assessment-engine/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionService interface {
	CreateQuestion(req dto.QuestionCreateDTO) (*dto.QuestionResponseDTO, error)
	GetQuestion(id uint) (*dto.QuestionResponseDTO, error)
	GetAllQuestions(examID *uint) ([]dto.QuestionResponseDTO, error)
	UpdateQuestion(id uint, req dto.QuestionCreateDTO) (*dto.QuestionResponseDTO, error)
	DeleteQuestion(id uint) error
}

type questionService struct {
	repo     repository.QuestionRepository
	examRepo repository.ExamRepository
}

func NewQuestionService(repo repository.QuestionRepository, examRepo repository.ExamRepository) QuestionService {
	return &questionService{repo: repo, examRepo: examRepo}
}

func (s *questionService) CreateQuestion(req dto.QuestionCreateDTO) (*dto.QuestionResponseDTO, error) {
	if req.ExamID == nil {
		return nil, apperrors.NewValidationError("exam_id", "a question must belong to an exam", nil)
	}
	if _, err := s.examRepo.FindByID(*req.ExamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewValidationError("exam_id", "exam does not exist", *req.ExamID)
		}
		return nil, err
	}

	question, err := questionFromDTO(req)
	if err != nil {
		return nil, err
	}
	question.ExamID = *req.ExamID

	if err := s.repo.Create(&question); err != nil {
		log.Error().Err(err).Msg("Failed to create question")
		return nil, err
	}
	resp := buildQuestionDTO(question)
	return &resp, nil
}

func (s *questionService) GetQuestion(id uint) (*dto.QuestionResponseDTO, error) {
	question, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrQuestionNotFound
		}
		return nil, err
	}
	resp := buildQuestionDTO(*question)
	return &resp, nil
}

func (s *questionService) GetAllQuestions(examID *uint) ([]dto.QuestionResponseDTO, error) {
	var questions []model.Question
	var err error
	if examID != nil {
		questions, err = s.repo.FindByExamID(*examID)
	} else {
		questions, err = s.repo.FindAll()
	}
	if err != nil {
		return nil, err
	}

	resp := make([]dto.QuestionResponseDTO, 0, len(questions))
	for _, q := range questions {
		resp = append(resp, buildQuestionDTO(q))
	}
	return resp, nil
}

func (s *questionService) UpdateQuestion(id uint, req dto.QuestionCreateDTO) (*dto.QuestionResponseDTO, error) {
	question, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrQuestionNotFound
		}
		return nil, err
	}

	updated, err := questionFromDTO(req)
	if err != nil {
		return nil, err
	}
	question.Text = updated.Text
	question.Type = updated.Type
	question.Choices = updated.Choices
	question.ExpectedAnswer = updated.ExpectedAnswer
	question.Points = updated.Points
	question.OrderIndex = updated.OrderIndex

	if err := s.repo.Update(question); err != nil {
		return nil, err
	}
	resp := buildQuestionDTO(*question)
	return &resp, nil
}

func (s *questionService) DeleteQuestion(id uint) error {
	if _, err := s.repo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrQuestionNotFound
		}
		return err
	}
	return s.repo.Delete(id)
}

// questionFromDTO converts a create/update payload into a model. Choice
// questions must carry at least one choice. An expected key that is not
// among the question's own choice keys is allowed (the question is then
// ungradable and scores zero) but logged, since it is almost always an
// authoring mistake.
func questionFromDTO(req dto.QuestionCreateDTO) (model.Question, error) {
	question := model.Question{
		Text:           req.Text,
		Type:           req.Type,
		Choices:        datatypes.JSON(req.Choices),
		ExpectedAnswer: datatypes.JSON(req.ExpectedAnswer),
		Points:         req.Points,
		OrderIndex:     req.Order,
	}

	if req.Type == model.QuestionTypeChoice {
		keys := normalizeChoiceKeys(question.Choices)
		if len(keys) == 0 {
			return model.Question{}, apperrors.NewValidationError("choices", "choice questions require at least one choice", nil)
		}
		expectedKey := ExpectedChoiceKey(question.ExpectedAnswer)
		if expectedKey == "" {
			log.Warn().Str("text", req.Text).Msg("Choice question saved without an expected key; it will grade as 0")
		} else if !containsKey(keys, expectedKey) {
			log.Warn().Str("expectedKey", expectedKey).Interface("choices", keys).Msg("Expected key is not among the question's choices; it will grade as 0")
		}
	}
	return question, nil
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
