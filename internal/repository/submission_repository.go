package repository

import (
	"errors"

	"github.com/acadlabs/assessment-engine/internal/model"
	"gorm.io/gorm"
)

type SubmissionRepository interface {
	ExistsByStudentAndExam(studentID, examID uint) (bool, error)
	FindByID(id uint) (*model.Submission, error)
	FindByIDWithDetails(id uint) (*model.Submission, error)
	FindAll(studentID *uint) ([]model.Submission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) ExistsByStudentAndExam(studentID, examID uint) (bool, error) {
	var submission model.Submission
	err := r.db.Where("student_id = ? AND exam_id = ?", studentID, examID).First(&submission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *submissionRepository) FindByID(id uint) (*model.Submission, error) {
	var submission model.Submission
	if err := r.db.First(&submission, id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepository) FindByIDWithDetails(id uint) (*model.Submission, error) {
	var submission model.Submission
	err := r.db.
		Preload("Student").
		Preload("Exam").
		Preload("Answers.Question").
		First(&submission, id).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// FindAll lists submissions, newest first. A non-nil studentID restricts the
// result to that student's own submissions.
func (r *submissionRepository) FindAll(studentID *uint) ([]model.Submission, error) {
	var submissions []model.Submission
	query := r.db.Model(&model.Submission{})
	if studentID != nil {
		query = query.Where("student_id = ?", *studentID)
	}
	err := query.Order("created_at DESC").Find(&submissions).Error
	return submissions, err
}
