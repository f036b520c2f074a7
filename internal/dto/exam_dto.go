package dto

import (
	"encoding/json"
	"time"
)

// QuestionCreateDTO is used both standalone and nested in ExamCreateDTO.
// Choices and ExpectedAnswer are raw JSON because their shape depends on the
// question type; the validator and orchestrator normalize them downstream.
type QuestionCreateDTO struct {
	ExamID         *uint           `json:"exam_id"`
	Text           string          `json:"text" binding:"required"`
	Type           string          `json:"question_type" binding:"required,oneof=mcq text"`
	Choices        json.RawMessage `json:"choices,omitempty"`
	ExpectedAnswer json.RawMessage `json:"expected_answer,omitempty"`
	Points         float64         `json:"points" binding:"gte=0"`
	Order          int             `json:"order" binding:"gte=0"`
}

type ExamCreateDTO struct {
	Title           string              `json:"title" binding:"required"`
	DurationMinutes *uint               `json:"duration_minutes"`
	Course          string              `json:"course"`
	Metadata        map[string]any      `json:"metadata"`
	Questions       []QuestionCreateDTO `json:"questions" binding:"omitempty,dive"`
}

type QuestionResponseDTO struct {
	ID             uint            `json:"id"`
	ExamID         uint            `json:"exam_id"`
	Text           string          `json:"text"`
	Type           string          `json:"question_type"`
	Choices        json.RawMessage `json:"choices,omitempty"`
	ExpectedAnswer json.RawMessage `json:"expected_answer,omitempty"`
	Points         float64         `json:"points"`
	Order          int             `json:"order"`
	CreatedAt      time.Time       `json:"created_at"`
}

type ExamResponseDTO struct {
	ID              uint                  `json:"id"`
	Title           string                `json:"title"`
	DurationMinutes *uint                 `json:"duration_minutes,omitempty"`
	Course          string                `json:"course,omitempty"`
	Metadata        map[string]any        `json:"metadata,omitempty"`
	Questions       []QuestionResponseDTO `json:"questions,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
}

type ExamSummaryDTO struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	DurationMinutes *uint     `json:"duration_minutes,omitempty"`
	Course          string    `json:"course,omitempty"`
	QuestionCount   int       `json:"question_count"`
	CreatedAt       time.Time `json:"created_at"`
}
