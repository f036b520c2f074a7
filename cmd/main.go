package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/acadlabs/assessment-engine/config"
	"github.com/acadlabs/assessment-engine/database"
	adminctrl "github.com/acadlabs/assessment-engine/internal/controller/admin"
	"github.com/acadlabs/assessment-engine/internal/controller/middleware"
	userctrl "github.com/acadlabs/assessment-engine/internal/controller/user"
	"github.com/acadlabs/assessment-engine/internal/logger"
	"github.com/acadlabs/assessment-engine/internal/model"
	"github.com/acadlabs/assessment-engine/internal/repository"
	"github.com/acadlabs/assessment-engine/internal/service"
)

// @title Assessment Engine API
// @version 1.0
// @description Exam authoring, one-shot submissions and automatic grading with pluggable strategies.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey TokenAuth
// @in header
// @name Authorization
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
		),

		fx.Provide(
			repository.NewExamRepository,
			repository.NewQuestionRepository,
			repository.NewSubmissionRepository,
			repository.NewUserRepository,
		),

		fx.Provide(
			service.NewExamService,
			service.NewQuestionService,
			service.NewUserService,
			service.NewGrader,
			service.NewAnswerValidator,
			service.NewGradingService,
			service.NewSubmissionService,
		),

		fx.Provide(
			adminctrl.NewAdminController,
			userctrl.NewExamController,
			userctrl.NewSubmissionController,
			userctrl.NewUserController,
		),

		fx.Invoke(AutoMigrateDB),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// URL: http://localhost:PORT/swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer wires the route tree and manages the HTTP
// server lifecycle. Reads are public; submissions require a token; the admin
// group additionally requires a staff account.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	userService service.UserService,
	adminCtrl *adminctrl.AdminController,
	examCtrl *userctrl.ExamController,
	submissionCtrl *userctrl.SubmissionController,
	userCtrl *userctrl.UserController,
) {
	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/exams", examCtrl.GetAllExams)
		apiV1.GET("/exams/:id", examCtrl.GetExam)
		apiV1.GET("/questions", examCtrl.GetAllQuestions)
		apiV1.GET("/questions/:id", examCtrl.GetQuestion)
		apiV1.GET("/users", userCtrl.GetAllUsers)
		apiV1.GET("/users/:id", userCtrl.GetUser)

		submissions := apiV1.Group("/submissions")
		submissions.Use(middleware.TokenAuth(userService))
		{
			submissions.POST("", submissionCtrl.CreateSubmission)
			submissions.GET("", submissionCtrl.GetAllSubmissions)
			submissions.GET("/:id", submissionCtrl.GetSubmission)
		}
	}

	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.TokenAuth(userService), middleware.RequireStaff())
	{
		adminAPI.POST("/exams", adminCtrl.CreateExam)
		adminAPI.PUT("/exams/:id", adminCtrl.UpdateExam)
		adminAPI.DELETE("/exams/:id", adminCtrl.DeleteExam)

		adminAPI.POST("/questions", adminCtrl.CreateQuestion)
		adminAPI.PUT("/questions/:id", adminCtrl.UpdateQuestion)
		adminAPI.DELETE("/questions/:id", adminCtrl.DeleteQuestion)

		adminAPI.POST("/users", adminCtrl.CreateUser)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Assessment engine listening on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.AuthToken{},
		&model.Exam{},
		&model.Question{},
		&model.Submission{},
		&model.Answer{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed.")
	return nil
}
