package model

import (
	"time"
)

// Answer holds either free-text content or a selected choice key, depending
// on the question type. PointsAwarded is the only field mutated after
// creation; it is written during the grading pass of the same transaction
// that created the row.
//
// Question deletes are soft, so answers of graded submissions survive them
// and keep their awarded points; the cascade applies only when a question
// row is hard-deleted.
type Answer struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	SubmissionID   uint      `json:"submission_id" gorm:"not null;uniqueIndex:idx_answers_submission_question"`
	QuestionID     uint      `json:"question_id" gorm:"not null;uniqueIndex:idx_answers_submission_question"`
	Question       Question  `json:"question,omitempty" gorm:"foreignKey:QuestionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	AnswerText     string    `json:"answer_text,omitempty" gorm:"type:text"`
	SelectedChoice string    `json:"selected_choice,omitempty"`
	PointsAwarded  *float64  `json:"points_awarded,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
