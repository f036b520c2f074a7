package errors

import "errors"

var (
	// Generic errors
	ErrNotFound      = errors.New("resource not found")
	ErrUnauthorized  = errors.New("unauthorized access")
	ErrForbidden     = errors.New("forbidden - insufficient permissions")
	ErrInternalError = errors.New("internal server error")

	// Exam / question errors
	ErrExamNotFound       = errors.New("exam not found")
	ErrExamHasNoQuestions = errors.New("exam has no questions")
	ErrQuestionNotFound   = errors.New("question not found")

	// Submission errors
	ErrSubmissionNotFound  = errors.New("submission not found")
	ErrDuplicateSubmission = errors.New("a submission already exists for this student and exam")

	// Grading configuration errors
	ErrUnknownGradingStrategy = errors.New("unknown grading strategy")
	ErrMissingAPICredential   = errors.New("missing API credential for grading strategy")

	// User errors
	ErrUserNotFound  = errors.New("user not found")
	ErrDuplicateUser = errors.New("username or email already in use")
	ErrInvalidToken  = errors.New("invalid or missing auth token")
	ErrInactiveUser  = errors.New("user account is inactive")
)
