package model

import (
	"time"
)

// Submission is one student's single attempt at one exam. The composite
// unique index is the authoritative one-submission-per-(student, exam)
// guard; the service-level pre-check only exists for a clean error message.
// Submissions are never soft-deleted: a graded submission is immutable.
type Submission struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	StudentID   uint       `json:"student_id" gorm:"not null;uniqueIndex:idx_submissions_student_exam"`
	Student     User       `json:"-" gorm:"foreignKey:StudentID"`
	ExamID      uint       `json:"exam_id" gorm:"not null;uniqueIndex:idx_submissions_student_exam"`
	Exam        Exam       `json:"exam,omitempty" gorm:"foreignKey:ExamID"`
	StartedAt   time.Time  `json:"started_at" gorm:"not null"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	Graded      bool       `json:"graded" gorm:"not null;default:false"`
	Grade       *float64   `json:"grade,omitempty"`
	Answers     []Answer   `json:"answers,omitempty" gorm:"foreignKey:SubmissionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
