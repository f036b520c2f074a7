package user

import (
	"errors"
	"net/http"

	"github.com/acadlabs/assessment-engine/internal/controller"
	"github.com/acadlabs/assessment-engine/internal/controller/middleware"
	"github.com/acadlabs/assessment-engine/internal/dto"
	apperrors "github.com/acadlabs/assessment-engine/internal/errors"
	"github.com/acadlabs/assessment-engine/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

type SubmissionController struct {
	submissionService service.SubmissionService
}

func NewSubmissionController(submissionService service.SubmissionService) *SubmissionController {
	return &SubmissionController{submissionService: submissionService}
}

// CreateSubmission godoc
// @Summary Submit answers for an exam
// @Description Submit all answers for an exam in one shot. The submission is validated, graded and persisted atomically; the response carries per-answer scores and ephemeral feedback. A student may submit each exam once.
// @Tags Submissions
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param submission body dto.SubmissionCreateDTO true "Exam ID and answers"
// @Success 201 {object} dto.SubmissionDetailDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body or answers"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 409 {object} dto.ErrorResponse "Exam already submitted"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /submissions [post]
func (ctrl *SubmissionController) CreateSubmission(c *gin.Context) {
	requester := middleware.CurrentUser(c)
	if requester == nil {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Authentication required"})
		return
	}

	var req dto.SubmissionCreateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Failed to bind submission payload")
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Message: "Validation failed",
				Fields:  apperrors.ToValidationErrors(verrs),
			})
			return
		}
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	detail, err := ctrl.submissionService.Create(c.Request.Context(), requester.ID, req)
	if err != nil {
		controller.RespondError(c, err)
		return
	}

	log.Info().Uint("studentID", requester.ID).Uint("examID", req.Exam).Uint("submissionID", detail.ID).Msg("Submission graded")
	c.JSON(http.StatusCreated, detail)
}

// GetAllSubmissions godoc
// @Summary List submissions
// @Description Staff see every submission; students see only their own.
// @Tags Submissions
// @Produce json
// @Security TokenAuth
// @Success 200 {array} dto.SubmissionSummaryDTO
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /submissions [get]
func (ctrl *SubmissionController) GetAllSubmissions(c *gin.Context) {
	requester := middleware.CurrentUser(c)
	if requester == nil {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Authentication required"})
		return
	}

	submissions, err := ctrl.submissionService.List(requester)
	if err != nil {
		log.Error().Err(err).Uint("userID", requester.ID).Msg("Failed to list submissions")
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, submissions)
}

// GetSubmission godoc
// @Summary Get a submission by ID
// @Description Retrieve a graded submission with all answers and awarded points. Students may only read their own submissions.
// @Tags Submissions
// @Produce json
// @Security TokenAuth
// @Param id path int true "Submission ID"
// @Success 200 {object} dto.SubmissionDetailDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Submission not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /submissions/{id} [get]
func (ctrl *SubmissionController) GetSubmission(c *gin.Context) {
	requester := middleware.CurrentUser(c)
	if requester == nil {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "Authentication required"})
		return
	}

	id, ok := controller.ParseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := ctrl.submissionService.GetByID(id, requester)
	if err != nil {
		controller.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
