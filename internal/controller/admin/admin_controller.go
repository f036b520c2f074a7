package admin

import (
	"errors"
	"net/http"

	"github.com/acadlabs/assessment-engine/internal/controller"
	"github.com/acadlabs/assessment-engine/internal/dto"
	apperrors "github.com/acadlabs/assessment-engine/internal/errors"
	"github.com/acadlabs/assessment-engine/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// AdminController carries the staff-only write surface: exam and question
// authoring plus user management.
type AdminController struct {
	examService     service.ExamService
	questionService service.QuestionService
	userService     service.UserService
}

func NewAdminController(examService service.ExamService, questionService service.QuestionService, userService service.UserService) *AdminController {
	return &AdminController{
		examService:     examService,
		questionService: questionService,
		userService:     userService,
	}
}

func bindJSON(c *gin.Context, target any) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		log.Warn().Err(err).Str("path", c.FullPath()).Msg("Failed to bind request body")
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Message: "Validation failed",
				Fields:  apperrors.ToValidationErrors(verrs),
			})
			return false
		}
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return false
	}
	return true
}

// CreateExam godoc
// @Summary (Admin) Create a new exam
// @Description Create an exam, optionally with its questions in one request
// @Tags Admin - Exams
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param exam body dto.ExamCreateDTO true "Exam data including optional questions"
// @Success 201 {object} dto.ExamResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Staff access required"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/exams [post]
func (ctrl *AdminController) CreateExam(c *gin.Context) {
	var req dto.ExamCreateDTO
	if !bindJSON(c, &req) {
		return
	}

	exam, err := ctrl.examService.CreateExam(req)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	log.Info().Uint("examID", exam.ID).Str("title", exam.Title).Msg("Exam created")
	c.JSON(http.StatusCreated, exam)
}

// UpdateExam godoc
// @Summary (Admin) Update an exam's metadata
// @Description Update the title, duration, course or metadata of an exam. Questions are managed through the question endpoints.
// @Tags Admin - Exams
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param id path int true "Exam ID"
// @Param exam body dto.ExamCreateDTO true "Exam metadata (questions are ignored)"
// @Success 200 {object} dto.ExamResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body or ID"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/exams/{id} [put]
func (ctrl *AdminController) UpdateExam(c *gin.Context) {
	id, ok := controller.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ExamCreateDTO
	if !bindJSON(c, &req) {
		return
	}

	exam, err := ctrl.examService.UpdateExam(id, req)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exam)
}

// DeleteExam godoc
// @Summary (Admin) Delete an exam
// @Description Delete an exam and its questions
// @Tags Admin - Exams
// @Security TokenAuth
// @Param id path int true "Exam ID"
// @Success 204 "No Content"
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/exams/{id} [delete]
func (ctrl *AdminController) DeleteExam(c *gin.Context) {
	id, ok := controller.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.examService.DeleteExam(id); err != nil {
		controller.RespondError(c, err)
		return
	}
	log.Info().Uint("examID", id).Msg("Exam deleted")
	c.Status(http.StatusNoContent)
}

// CreateQuestion godoc
// @Summary (Admin) Add a question to an exam
// @Description Create a question. The payload must name the exam it belongs to.
// @Tags Admin - Questions
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param question body dto.QuestionCreateDTO true "Question data"
// @Success 201 {object} dto.QuestionResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body or exam reference"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/questions [post]
func (ctrl *AdminController) CreateQuestion(c *gin.Context) {
	var req dto.QuestionCreateDTO
	if !bindJSON(c, &req) {
		return
	}

	question, err := ctrl.questionService.CreateQuestion(req)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

// UpdateQuestion godoc
// @Summary (Admin) Update a question
// @Tags Admin - Questions
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param id path int true "Question ID"
// @Param question body dto.QuestionCreateDTO true "Updated question data"
// @Success 200 {object} dto.QuestionResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body or ID"
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/questions/{id} [put]
func (ctrl *AdminController) UpdateQuestion(c *gin.Context) {
	id, ok := controller.ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.QuestionCreateDTO
	if !bindJSON(c, &req) {
		return
	}

	question, err := ctrl.questionService.UpdateQuestion(id, req)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// DeleteQuestion godoc
// @Summary (Admin) Delete a question
// @Tags Admin - Questions
// @Security TokenAuth
// @Param id path int true "Question ID"
// @Success 204 "No Content"
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format"
// @Failure 404 {object} dto.ErrorResponse "Question not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/questions/{id} [delete]
func (ctrl *AdminController) DeleteQuestion(c *gin.Context) {
	id, ok := controller.ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.questionService.DeleteQuestion(id); err != nil {
		controller.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateUser godoc
// @Summary (Admin) Create a user
// @Description Create a user account. The response includes the account's auth token; it is only ever returned here.
// @Tags Admin - Users
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param user body dto.UserCreateDTO true "User data"
// @Success 201 {object} dto.UserResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 409 {object} dto.ErrorResponse "Username or email already taken"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/users [post]
func (ctrl *AdminController) CreateUser(c *gin.Context) {
	var req dto.UserCreateDTO
	if !bindJSON(c, &req) {
		return
	}

	user, err := ctrl.userService.CreateUser(req)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	log.Info().Uint("userID", user.ID).Str("username", user.Username).Bool("isStaff", user.IsStaff).Msg("User created")
	c.JSON(http.StatusCreated, user)
}
