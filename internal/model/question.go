package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	QuestionTypeChoice = "mcq"
	QuestionTypeText   = "text"
)

// Question is a single gradable item. Choices and ExpectedAnswer are stored
// as JSON because their shape depends on the question type: for mcq, Choices
// is a list of {key,text} objects (older data may hold "key:text" strings or
// a comma-separated string) and ExpectedAnswer is a choice key, possibly
// wrapped as {"key": ...}; for text, ExpectedAnswer is a keyword list or a
// comma-separated string.
type Question struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	ExamID         uint           `json:"exam_id" gorm:"not null;index"`
	Text           string         `json:"text" gorm:"type:text;not null"`
	Type           string         `json:"question_type" gorm:"not null;default:'text'"`
	Choices        datatypes.JSON `json:"choices,omitempty"`
	ExpectedAnswer datatypes.JSON `json:"expected_answer,omitempty"`
	Points         float64        `json:"points" gorm:"not null;default:1"`
	OrderIndex     int            `json:"order" gorm:"not null;default:0;index"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
