package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/stemsi/klausurgen/internal/config"
	"github.com/stemsi/klausurgen/internal/handler"
	"github.com/stemsi/klausurgen/internal/middleware"
	"github.com/stemsi/klausurgen/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Exam     *handler.ExamHandler
	Pool     *handler.PoolHandler
	Question *handler.QuestionHandler
	Media    *handler.MediaHandler
	Job      *handler.JobHandler
	WS       *handler.WSHandler
	Health   *handler.HealthHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition", "Location", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	router.Use(middleware.Brotli())

	// Health checks.
	router.GET("/health", handlers.Health.Live)
	router.GET("/health/ready", handlers.Health.Ready)

	// Compiling costs a remote build per request.
	generateLimiter := middleware.NewRateLimiter(cfg.GenerateRateLimit, time.Minute)

	// ─── 1. Pool ───────────────────────────────────────────────────────
	api := router.Group("/api/v1")
	{
		api.GET("/questions", handlers.Pool.ListQuestions)
		api.POST("/questions", handlers.Question.CreateQuestion)
		api.GET("/questions/:question_id", handlers.Question.GetQuestion)
		api.POST("/questions/:question_id/graphics", handlers.Media.UploadGraphic)
		api.GET("/students", handlers.Pool.ListStudents)
		api.GET("/classes", handlers.Pool.ListClasses)
		api.PUT("/schools/:code/logo", handlers.Media.UploadLogo)
	}

	// ─── 2. Exams ──────────────────────────────────────────────────────
	exams := api.Group("/exams")
	{
		exams.GET("", handlers.Exam.ListExams)
		exams.POST("", handlers.Exam.CreateExam)
		exams.GET("/:exam_id", handlers.Exam.GetExam)
		exams.PUT("/:exam_id", handlers.Exam.UpdateExam)
		exams.GET("/:exam_id/summary", handlers.Exam.GetSummary)
		exams.POST("/:exam_id/generate", generateLimiter.Middleware(), handlers.Job.Generate)
	}

	// ─── 3. Jobs ───────────────────────────────────────────────────────
	jobs := api.Group("/jobs")
	{
		jobs.GET("/:job_id", middleware.NoStore(), handlers.Job.GetJob)
		jobs.GET("/:job_id/download", middleware.PrivateMaxAge(3600), handlers.Job.Download)
	}

	// ─── 4. WebSocket ──────────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/jobs/:job_id/progress", handlers.WS.JobProgressStream)
	}

	return router
}
