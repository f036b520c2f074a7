package service

import (
	"context"
	"errors"
	"testing"

	"github.com/acadlabs/assessment-engine/internal/dto"
	apperrors "github.com/acadlabs/assessment-engine/internal/errors"
	"github.com/acadlabs/assessment-engine/internal/model"
	"github.com/acadlabs/assessment-engine/internal/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection so every query sees the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.AuthToken{},
		&model.Exam{},
		&model.Question{},
		&model.Submission{},
		&model.Answer{},
	))
	return db
}

type submissionFixture struct {
	db      *gorm.DB
	svc     SubmissionService
	student model.User
	staff   model.User
	exam    model.Exam
}

func newSubmissionFixture(t *testing.T) *submissionFixture {
	t.Helper()
	db := openTestDB(t)

	student := model.User{Username: "alice", Email: "alice@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&student).Error)
	staff := model.User{Username: "prof", Email: "prof@example.com", Password: "x", IsStaff: true, IsActive: true}
	require.NoError(t, db.Create(&staff).Error)

	exam := model.Exam{
		Title: "Intro to CS",
		Questions: []model.Question{
			{
				Text:           "Pick the right option",
				Type:           model.QuestionTypeChoice,
				Choices:        datatypes.JSON(`[{"key":"A"},{"key":"B"},{"key":"C"}]`),
				ExpectedAnswer: datatypes.JSON(`"A"`),
				Points:         2,
				OrderIndex:     0,
			},
			{
				Text:           "Explain recursion",
				Type:           model.QuestionTypeText,
				ExpectedAnswer: datatypes.JSON(`"recursion,base case"`),
				Points:         3,
				OrderIndex:     1,
			},
		},
	}
	require.NoError(t, db.Create(&exam).Error)

	examRepo := repository.NewExamRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	svc := NewSubmissionService(
		NewAnswerValidator(examRepo),
		NewGradingService(),
		NewKeywordGrader(),
		submissionRepo,
		db,
	)

	return &submissionFixture{db: db, svc: svc, student: student, staff: staff, exam: exam}
}

func (f *submissionFixture) answersFor(t *testing.T) []dto.SubmissionAnswerDTO {
	t.Helper()
	require.Len(t, f.exam.Questions, 2)
	return []dto.SubmissionAnswerDTO{
		{Question: &f.exam.Questions[0].ID, SelectedChoice: "B"},
		{Question: &f.exam.Questions[1].ID, AnswerText: "it calls itself via recursion"},
	}
}

func TestCreateSubmissionGradesAndPersists(t *testing.T) {
	f := newSubmissionFixture(t)

	detail, err := f.svc.Create(context.Background(), f.student.ID, dto.SubmissionCreateDTO{
		Exam:    f.exam.ID,
		Answers: f.answersFor(t),
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", detail.Student)
	assert.Equal(t, f.exam.ID, detail.ExamID)
	assert.True(t, detail.Graded)
	require.NotNil(t, detail.Grade)
	assert.Equal(t, 30.0, *detail.Grade)
	require.NotNil(t, detail.SubmittedAt)

	require.Len(t, detail.Answers, 2)
	require.NotNil(t, detail.Answers[0].PointsAwarded)
	assert.Equal(t, 0.0, *detail.Answers[0].PointsAwarded)
	assert.Equal(t, "Incorrect. Expected: A", detail.Answers[0].Feedback)
	require.NotNil(t, detail.Answers[1].PointsAwarded)
	assert.Equal(t, 1.5, *detail.Answers[1].PointsAwarded)

	var persisted model.Submission
	require.NoError(t, f.db.Preload("Answers").First(&persisted, detail.ID).Error)
	assert.True(t, persisted.Graded)
	require.NotNil(t, persisted.Grade)
	assert.Equal(t, 30.0, *persisted.Grade)
	assert.Len(t, persisted.Answers, 2)
}

func TestCreateSubmissionFeedbackIsNotPersisted(t *testing.T) {
	f := newSubmissionFixture(t)

	detail, err := f.svc.Create(context.Background(), f.student.ID, dto.SubmissionCreateDTO{
		Exam:    f.exam.ID,
		Answers: f.answersFor(t),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, detail.Answers[0].Feedback)

	// Reading the submission back must not resurface grading feedback.
	reloaded, err := f.svc.GetByID(detail.ID, &f.student)
	require.NoError(t, err)
	for _, ans := range reloaded.Answers {
		assert.Empty(t, ans.Feedback)
	}
}

func TestCreateSubmissionDuplicateIsRejected(t *testing.T) {
	f := newSubmissionFixture(t)

	_, err := f.svc.Create(context.Background(), f.student.ID, dto.SubmissionCreateDTO{
		Exam:    f.exam.ID,
		Answers: f.answersFor(t),
	})
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), f.student.ID, dto.SubmissionCreateDTO{
		Exam:    f.exam.ID,
		Answers: f.answersFor(t),
	})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateSubmission)

	var count int64
	require.NoError(t, f.db.Model(&model.Submission{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSubmissionUniqueConstraintAtStorageLevel(t *testing.T) {
	f := newSubmissionFixture(t)

	first := model.Submission{StudentID: f.student.ID, ExamID: f.exam.ID}
	require.NoError(t, f.db.Create(&first).Error)

	second := model.Submission{StudentID: f.student.ID, ExamID: f.exam.ID}
	err := f.db.Create(&second).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestCreateSubmissionValidationFailureLeavesNoState(t *testing.T) {
	f := newSubmissionFixture(t)

	_, err := f.svc.Create(context.Background(), f.student.ID, dto.SubmissionCreateDTO{
		Exam: f.exam.ID,
		Answers: []dto.SubmissionAnswerDTO{
			{Question: &f.exam.Questions[0].ID, SelectedChoice: "Z"},
		},
	})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)

	var count int64
	require.NoError(t, f.db.Model(&model.Submission{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateSubmissionStorageFailureRollsBack(t *testing.T) {
	f := newSubmissionFixture(t)

	// Fail every update against the answers table, which breaks the
	// points_awarded write in the middle of the grading transaction.
	err := f.db.Callback().Update().Before("gorm:update").Register("fail_answer_updates", func(tx *gorm.DB) {
		if tx.Statement.Table == "answers" {
			tx.AddError(errors.New("storage unavailable"))
		}
	})
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), f.student.ID, dto.SubmissionCreateDTO{
		Exam:    f.exam.ID,
		Answers: f.answersFor(t),
	})
	require.Error(t, err)

	var submissionCount, answerCount int64
	require.NoError(t, f.db.Model(&model.Submission{}).Count(&submissionCount).Error)
	require.NoError(t, f.db.Model(&model.Answer{}).Count(&answerCount).Error)
	assert.Zero(t, submissionCount)
	assert.Zero(t, answerCount)
}

func TestQuestionDeleteRetainsGradedAnswers(t *testing.T) {
	f := newSubmissionFixture(t)

	detail, err := f.svc.Create(context.Background(), f.student.ID, dto.SubmissionCreateDTO{
		Exam:    f.exam.ID,
		Answers: f.answersFor(t),
	})
	require.NoError(t, err)

	questionID := f.exam.Questions[1].ID
	require.NoError(t, repository.NewQuestionRepository(f.db).Delete(questionID))

	// Question deletes are soft; the graded submission keeps its answers
	// and awarded points.
	var answers []model.Answer
	require.NoError(t, f.db.Where("submission_id = ?", detail.ID).Find(&answers).Error)
	require.Len(t, answers, 2)
	for _, ans := range answers {
		assert.NotNil(t, ans.PointsAwarded)
	}

	reloaded, err := f.svc.GetByID(detail.ID, &f.student)
	require.NoError(t, err)
	assert.Len(t, reloaded.Answers, 2)
}

func TestGetSubmissionOwnership(t *testing.T) {
	f := newSubmissionFixture(t)

	detail, err := f.svc.Create(context.Background(), f.student.ID, dto.SubmissionCreateDTO{
		Exam:    f.exam.ID,
		Answers: f.answersFor(t),
	})
	require.NoError(t, err)

	other := model.User{Username: "bob", Email: "bob@example.com", Password: "x", IsActive: true}
	require.NoError(t, f.db.Create(&other).Error)

	_, err = f.svc.GetByID(detail.ID, &other)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	got, err := f.svc.GetByID(detail.ID, &f.staff)
	require.NoError(t, err)
	assert.Equal(t, detail.ID, got.ID)

	_, err = f.svc.GetByID(9999, &f.staff)
	assert.ErrorIs(t, err, apperrors.ErrSubmissionNotFound)
}

func TestListSubmissionsScopedByRole(t *testing.T) {
	f := newSubmissionFixture(t)

	_, err := f.svc.Create(context.Background(), f.student.ID, dto.SubmissionCreateDTO{
		Exam:    f.exam.ID,
		Answers: f.answersFor(t),
	})
	require.NoError(t, err)

	other := model.User{Username: "bob", Email: "bob@example.com", Password: "x", IsActive: true}
	require.NoError(t, f.db.Create(&other).Error)
	_, err = f.svc.Create(context.Background(), other.ID, dto.SubmissionCreateDTO{
		Exam:    f.exam.ID,
		Answers: f.answersFor(t),
	})
	require.NoError(t, err)

	mine, err := f.svc.List(&f.student)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, f.student.ID, mine[0].StudentID)

	all, err := f.svc.List(&f.staff)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
