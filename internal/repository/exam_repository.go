package repository

import (
	"github.com/acadlabs/assessment-engine/internal/model"
	"gorm.io/gorm"
)

type ExamWithQuestionCount struct {
	model.Exam
	QuestionCount int
}

type ExamRepository interface {
	Create(exam *model.Exam) error
	Update(exam *model.Exam) error
	Delete(id uint) error
	FindByID(id uint) (*model.Exam, error)
	FindByIDWithQuestions(id uint) (*model.Exam, error)
	FindAllWithQuestionCount() ([]ExamWithQuestionCount, error)
}

type examRepository struct {
	db *gorm.DB
}

func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) Create(exam *model.Exam) error {
	// GORM creates associated questions when exam.Questions is populated.
	return r.db.Create(exam).Error
}

func (r *examRepository) Update(exam *model.Exam) error {
	return r.db.Save(exam).Error
}

func (r *examRepository) Delete(id uint) error {
	return r.db.Select("Questions").Delete(&model.Exam{ID: id}).Error
}

func (r *examRepository) FindByID(id uint) (*model.Exam, error) {
	var exam model.Exam
	if err := r.db.First(&exam, id).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *examRepository) FindByIDWithQuestions(id uint) (*model.Exam, error) {
	var exam model.Exam
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.order_index ASC, questions.id ASC")
	}).First(&exam, id).Error
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *examRepository) FindAllWithQuestionCount() ([]ExamWithQuestionCount, error) {
	var results []ExamWithQuestionCount
	err := r.db.Model(&model.Exam{}).
		Select("exams.*, (SELECT COUNT(*) FROM questions WHERE questions.exam_id = exams.id AND questions.deleted_at IS NULL) as question_count").
		Where("exams.deleted_at IS NULL").
		Order("exams.created_at DESC").
		Scan(&results).Error
	return results, err
}
