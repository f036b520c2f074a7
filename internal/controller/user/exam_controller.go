package user

import (
	"net/http"

	"github.com/acadlabs/assessment-engine/internal/controller"
	"github.com/acadlabs/assessment-engine/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ExamController struct {
	examService     service.ExamService
	questionService service.QuestionService
}

func NewExamController(examService service.ExamService, questionService service.QuestionService) *ExamController {
	return &ExamController{examService: examService, questionService: questionService}
}

// GetAllExams godoc
// @Summary List all exams
// @Description Get summaries of all exams, including question counts
// @Tags Exams
// @Produce json
// @Success 200 {array} dto.ExamSummaryDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /exams [get]
func (ctrl *ExamController) GetAllExams(c *gin.Context) {
	exams, err := ctrl.examService.GetAllExams()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list exams")
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exams)
}

// GetExam godoc
// @Summary Get an exam by ID with its questions
// @Description Retrieve a single exam and all of its questions in display order
// @Tags Exams
// @Produce json
// @Param id path int true "Exam ID"
// @Success 200 {object} dto.ExamResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /exams/{id} [get]
func (ctrl *ExamController) GetExam(c *gin.Context) {
	id, ok := controller.ParseIDParam(c, "id")
	if !ok {
		return
	}
	exam, err := ctrl.examService.GetExam(id)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exam)
}

// GetAllQuestions godoc
// @Summary List questions, optionally filtered by exam
// @Description Retrieve questions. Use the 'exam_id' query param to filter by exam.
// @Tags Questions
// @Produce json
// @Param exam_id query int false "Filter by Exam ID"
// @Success 200 {array} dto.QuestionResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid exam_id format"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /questions [get]
func (ctrl *ExamController) GetAllQuestions(c *gin.Context) {
	var examID *uint
	if examIDStr := c.Query("exam_id"); examIDStr != "" {
		id, ok := controller.ParseQueryUint(c, "exam_id", examIDStr)
		if !ok {
			return
		}
		examID = &id
	}

	questions, err := ctrl.questionService.GetAllQuestions(examID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list questions")
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

// GetQuestion godoc
// @Summary Get a question by ID
// @Tags Questions
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} dto.QuestionResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format"
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /questions/{id} [get]
func (ctrl *ExamController) GetQuestion(c *gin.Context) {
	id, ok := controller.ParseIDParam(c, "id")
	if !ok {
		return
	}
	question, err := ctrl.questionService.GetQuestion(id)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}
