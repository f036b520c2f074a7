package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Exam struct {
	ID              uint              `gorm:"primarykey" json:"id"`
	Title           string            `json:"title" gorm:"not null"`
	DurationMinutes *uint             `json:"duration_minutes,omitempty"`
	Course          string            `json:"course,omitempty"`
	Metadata        datatypes.JSONMap `json:"metadata,omitempty"`
	Questions       []Question        `json:"questions,omitempty" gorm:"foreignKey:ExamID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	DeletedAt       gorm.DeletedAt    `gorm:"index" json:"-"`
}
