package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/klausurgen/internal/compiler"
	"github.com/stemsi/klausurgen/internal/config"
	"github.com/stemsi/klausurgen/internal/database"
	"github.com/stemsi/klausurgen/internal/handler"
	"github.com/stemsi/klausurgen/internal/latex"
	"github.com/stemsi/klausurgen/internal/logger"
	"github.com/stemsi/klausurgen/internal/pdf"
	"github.com/stemsi/klausurgen/internal/repository"
	"github.com/stemsi/klausurgen/internal/router"
	"github.com/stemsi/klausurgen/internal/service"
	"github.com/stemsi/klausurgen/internal/storage"
	"github.com/stemsi/klausurgen/internal/validator"
	"github.com/stemsi/klausurgen/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("latex_api", cfg.LatexAPIURL).
		Msg("Starting Klausurgen")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	examRepo := repository.NewExamRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	schoolRepo := repository.NewSchoolRepository(pool)
	graphicRepo := repository.NewGraphicRepository(pool)
	counterRepo := repository.NewCounterRepository(pool)

	// ─── Initialize Pipeline ───────────────────────────────────────────
	store, err := storage.NewFSStore(cfg.OutputDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.OutputDir).Msg("Failed to open output directory")
	}

	reorderer, err := pdf.NewReorderer(cfg.ReorderPattern, log)
	if err != nil {
		log.Fatal().Err(err).Ints("pattern", cfg.ReorderPattern).Msg("Invalid reorder pattern")
	}

	latexClient := compiler.New(compiler.Config{
		URL:      cfg.LatexAPIURL,
		Compiler: cfg.LatexCompiler,
		Timeout:  cfg.CompileTimeout,
	}, log)

	assembler := latex.NewAssembler(counterRepo, log)

	// ─── Initialize Services ──────────────────────────────────────────
	examService := service.NewExamService(examRepo, questionRepo, studentRepo, schoolRepo, log)
	poolService := service.NewPoolService(questionRepo, studentRepo)
	questionService := service.NewQuestionService(questionRepo, questionRepo, log)
	mediaService := service.NewMediaService(questionRepo, graphicRepo, schoolRepo, cfg.MaxUploadBytes, log)
	jobService := service.NewJobService(rdb, log)
	generationService := service.NewGenerationService(assembler, latexClient, reorderer, graphicRepo, store, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Exam:     handler.NewExamHandler(examService),
		Pool:     handler.NewPoolHandler(poolService),
		Question: handler.NewQuestionHandler(questionService),
		Media:    handler.NewMediaHandler(mediaService),
		Job:      handler.NewJobHandler(examService, jobService, store),
		WS:       handler.NewWSHandler(jobService, log, cfg.AllowedOrigins),
		Health:   handler.NewHealthHandler(pool, rdb),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	generationWorker := worker.NewGenerationWorker(rdb, examService, generationService, jobService, log)
	wg.Add(1)
	go func() {
		defer wg.Done()
		generationWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the worker. A compile in flight finishes first, bounded by the compile timeout.
	workerCancel()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(cfg.CompileTimeout + 10*time.Second):
		log.Warn().Msg("Generation worker did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
