package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ptpcell/placement-backend/internal/config"
	"github.com/ptpcell/placement-backend/internal/database"
	"github.com/ptpcell/placement-backend/internal/handler"
	"github.com/ptpcell/placement-backend/internal/logger"
	"github.com/ptpcell/placement-backend/internal/mailer"
	"github.com/ptpcell/placement-backend/internal/metrics"
	"github.com/ptpcell/placement-backend/internal/repository"
	"github.com/ptpcell/placement-backend/internal/router"
	"github.com/ptpcell/placement-backend/internal/service"
	"github.com/ptpcell/placement-backend/internal/validator"
	"github.com/ptpcell/placement-backend/internal/worker"
	"github.com/rs/zerolog"
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
		Dur("quiz_window", cfg.QuizWindow).
		Msg("Starting placement backend")

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

	// ─── Metrics ───────────────────────────────────────────────────────
	var m *metrics.Metrics
	var quizMetrics service.QuizMetrics
	if cfg.MetricsEnabled {
		m = metrics.New()
		m.RegisterPool(pool)
		quizMetrics = m
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	studentRepo := repository.NewStudentRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	roleRepo := repository.NewRoleRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	responseRepo := repository.NewResponseRepository(pool)
	quizRepo := repository.NewQuizRepository(pool)
	attendanceRepo := repository.NewAttendanceRepository(pool)
	alumniRepo := repository.NewAlumniRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)
	activationRepo := repository.NewActivationRepository(rdb)
	monitorRepo := repository.NewMonitorRepository(rdb)

	mailQueue := worker.NewMailQueue(rdb)
	loc := cfg.AttendanceLocation()
	policy := service.ExpiryPolicy{Window: cfg.QuizWindow}

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	monitorService := service.NewMonitorService(monitorRepo)
	activationService := service.NewActivationService(
		eventRepo, questionRepo, activationRepo, monitorService, quizMetrics, policy, nil,
	)
	questionService := service.NewQuestionService(eventRepo, questionRepo, activationRepo, monitorService, nil)
	answerService := service.NewAnswerService(
		activationService, eventRepo, questionRepo, responseRepo, studentRepo, monitorService, quizMetrics, nil,
	)
	leaderboardService := service.NewLeaderboardService(eventRepo, responseRepo, studentRepo, monitorService, nil)
	monitorService.Attach(activationService, leaderboardService)

	eventService := service.NewEventService(eventRepo, activationRepo, activationService)
	quizService := service.NewQuizService(quizRepo, nil)
	studentService := service.NewStudentService(studentRepo, mailQueue)
	attendanceService := service.NewAttendanceService(studentRepo, attendanceRepo, mailQueue, loc, nil)
	alumniService := service.NewAlumniService(alumniRepo)
	notificationService := service.NewNotificationService(eventRepo, studentRepo, mailQueue)
	adminService := service.NewAdminService(adminRepo, roleRepo, authService)
	dashboardService := service.NewDashboardService(dashboardRepo, mailQueue, loc)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:          handler.NewAuthHandler(authService, studentService, adminService),
		StudentPortal: handler.NewStudentPortalHandler(answerService, attendanceService),
		StudentMgmt:   handler.NewStudentManagementHandler(studentService, authService, cfg.MaxImportBytes),
		Admin:         handler.NewAdminHandler(adminService),
		Event:         handler.NewEventHandler(eventService, activationService, leaderboardService, notificationService),
		Question:      handler.NewQuestionHandler(questionService),
		Quiz:          handler.NewQuizHandler(quizService),
		Attendance:    handler.NewAttendanceHandler(attendanceService),
		Alumni:        handler.NewAlumniHandler(alumniService, cfg.MaxImportBytes),
		Dashboard:     handler.NewDashboardHandler(dashboardService),
		Monitor:       handler.NewMonitorHandler(monitorService, log),
		WS:            handler.NewWSHandler(activationService, monitorService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	mail, err := mailer.New(cfg.Mail, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to configure mailer")
	}
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	mailWorker := worker.NewMailWorker(rdb, mail, cfg.Mail.MaxAttempts, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		mailWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(router.Deps{Auth: authService, Redis: rdb, Metrics: m}, handlers, cfg)

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

	// 2. Stop the mail worker and wait for it to drain.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
