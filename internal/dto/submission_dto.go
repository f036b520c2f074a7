package dto

import "time"

// SubmissionAnswerDTO carries one answer in a create-submission request.
// Question may be a stable question id or the question's 1-based position
// within the exam; a nil reference fails validation.
type SubmissionAnswerDTO struct {
	Question       *uint  `json:"question"`
	AnswerText     string `json:"answer_text,omitempty"`
	SelectedChoice string `json:"selected_choice,omitempty"`
}

type SubmissionCreateDTO struct {
	Exam    uint                  `json:"exam" binding:"required"`
	Answers []SubmissionAnswerDTO `json:"answers" binding:"required,dive"`
}

// AnswerResponseDTO includes the grading feedback for this answer. Feedback
// is ephemeral: it is computed during grading and returned to the caller but
// never persisted with the answer.
type AnswerResponseDTO struct {
	ID             uint                 `json:"id"`
	QuestionID     uint                 `json:"question_id"`
	Question       *QuestionResponseDTO `json:"question,omitempty"`
	AnswerText     string               `json:"answer_text,omitempty"`
	SelectedChoice string               `json:"selected_choice,omitempty"`
	PointsAwarded  *float64             `json:"points_awarded,omitempty"`
	Feedback       string               `json:"feedback,omitempty"`
}

type SubmissionDetailDTO struct {
	ID          uint                `json:"id"`
	Student     string              `json:"student"`
	ExamID      uint                `json:"exam_id"`
	ExamTitle   string              `json:"exam_title,omitempty"`
	StartedAt   time.Time           `json:"started_at"`
	SubmittedAt *time.Time          `json:"submitted_at,omitempty"`
	Graded      bool                `json:"graded"`
	Grade       *float64            `json:"grade,omitempty"`
	Answers     []AnswerResponseDTO `json:"answers,omitempty"`
}

type SubmissionSummaryDTO struct {
	ID          uint       `json:"id"`
	StudentID   uint       `json:"student_id"`
	ExamID      uint       `json:"exam_id"`
	StartedAt   time.Time  `json:"started_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	Graded      bool       `json:"graded"`
	Grade       *float64   `json:"grade,omitempty"`
}
