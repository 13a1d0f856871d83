package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ptpcell/placement-backend/internal/config"
	"github.com/ptpcell/placement-backend/internal/handler"
	"github.com/ptpcell/placement-backend/internal/metrics"
	"github.com/ptpcell/placement-backend/internal/middleware"
	"github.com/ptpcell/placement-backend/internal/model"
	"github.com/ptpcell/placement-backend/internal/response"
	"github.com/ptpcell/placement-backend/internal/service"
	"github.com/redis/go-redis/v9"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth          *handler.AuthHandler
	StudentPortal *handler.StudentPortalHandler
	StudentMgmt   *handler.StudentManagementHandler
	Admin         *handler.AdminHandler
	Event         *handler.EventHandler
	Question      *handler.QuestionHandler
	Quiz          *handler.QuizHandler
	Attendance    *handler.AttendanceHandler
	Alumni        *handler.AlumniHandler
	Dashboard     *handler.DashboardHandler
	Monitor       *handler.MonitorHandler
	WS            *handler.WSHandler
}

// Deps are the shared infrastructure the router needs besides handlers.
type Deps struct {
	Auth    *service.AuthService
	Redis   *redis.Client
	Metrics *metrics.Metrics
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(deps Deps, handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger())

	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		Quality:   middleware.DefaultBrotliConfig.Quality,
		MinLength: middleware.DefaultBrotliConfig.MinLength,
		Skipper:   middleware.SkipPaths("/metrics"),
	}))

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	auth := deps.Auth
	perm := middleware.RequirePermission

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/v1/public")
	publicAPI.Use(middleware.CacheControl(30))
	{
		publicAPI.GET("/quizzes", handlers.Quiz.ListAvailable)
		publicAPI.GET("/quizzes/:id", handlers.Quiz.GetPublic)
	}
	router.POST("/api/v1/public/quizzes/:id/attempts",
		middleware.NewRateLimiter(deps.Redis, "attempt", 10, time.Minute, middleware.ByClientIP).Middleware(),
		handlers.Quiz.SubmitAttempt,
	)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	authLimiter := middleware.NewRateLimiter(deps.Redis, "auth", 30, time.Minute, middleware.ByClientIP)
	authAPI := router.Group("/api/v1/auth")
	authAPI.Use(authLimiter.Middleware())
	{
		authAPI.POST("/student/login", handlers.Auth.StudentLogin)
		authAPI.POST("/admin/login", handlers.Auth.AdminLogin)

		authAPI.POST("/student/logout", middleware.RequireStudentJWT(auth), handlers.Auth.StudentLogout)
		authAPI.GET("/student/me", middleware.RequireStudentJWT(auth), handlers.Auth.GetStudentProfile)
		authAPI.GET("/admin/me", middleware.RequireAdminJWT(auth), handlers.Auth.GetAdminProfile)
	}

	// ─── 2. Student Group (JWT + Newest Session) ───────────────────────
	pollLimiter := middleware.NewRateLimiter(deps.Redis, "student", cfg.PollRatePerMinute, time.Minute, middleware.ByUser)
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(
		middleware.RequireStudentJWT(auth),
		middleware.RequireActiveSession(auth),
		pollLimiter.Middleware(),
		middleware.NoStore(),
	)
	{
		studentAPI.GET("/quiz/poll", handlers.StudentPortal.PollMyEvent)
		studentAPI.GET("/events/:id/poll", handlers.StudentPortal.PollEvent)
		studentAPI.POST("/events/:id/answers", handlers.StudentPortal.SubmitAnswer)
		studentAPI.GET("/events/:id/response", handlers.StudentPortal.MyResponse)
		studentAPI.GET("/attendance", handlers.StudentPortal.MyAttendance)
	}

	// ─── 3. WebSocket Group (Admin WS Auth) ────────────────────────────
	ws := router.Group("/ws/v1/admin")
	ws.Use(middleware.RequireAdminWSAuth(auth))
	{
		ws.GET("/events/:id/console", handlers.WS.QuizConsole)
	}

	// ─── 4. Admin Group (JWT + RBAC) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(auth))
	{
		adminAPI.GET("/dashboard", handlers.Dashboard.GetDashboardData)

		// Events
		adminAPI.GET("/events", perm(model.PermissionEventsRead), handlers.Event.ListEvents)
		adminAPI.POST("/events", perm(model.PermissionEventsWrite), handlers.Event.CreateEvent)
		adminAPI.GET("/events/:id", perm(model.PermissionEventsRead), handlers.Event.GetEvent)
		adminAPI.PUT("/events/:id", perm(model.PermissionEventsWrite), handlers.Event.UpdateEvent)
		adminAPI.DELETE("/events/:id", perm(model.PermissionEventsWrite), handlers.Event.DeleteEvent)

		// Event questions
		adminAPI.GET("/events/:id/questions", perm(model.PermissionEventsRead), handlers.Question.ListQuestions)
		adminAPI.POST("/events/:id/questions", perm(model.PermissionEventsWrite), handlers.Question.AddQuestion)
		adminAPI.PUT("/events/:id/questions/:qid", perm(model.PermissionEventsWrite), handlers.Question.UpdateQuestion)
		adminAPI.DELETE("/events/:id/questions/:qid", perm(model.PermissionEventsWrite), handlers.Question.DeleteQuestion)

		// Live quiz control
		adminAPI.POST("/events/:id/activate", perm(model.PermissionQuizControl), handlers.Event.ActivateQuestion)
		adminAPI.POST("/events/:id/deactivate", perm(model.PermissionQuizControl), handlers.Event.DeactivateQuestion)
		adminAPI.GET("/events/:id/status", perm(model.PermissionEventsRead), handlers.Event.QuizStatus)
		adminAPI.GET("/events/:id/monitor", perm(model.PermissionEventsRead), handlers.Monitor.MonitorEventSSE)
		adminAPI.GET("/events/:id/leaderboard", perm(model.PermissionEventsRead), handlers.Event.GetLeaderboard)
		adminAPI.DELETE("/events/:id/leaderboard", perm(model.PermissionQuizControl), handlers.Event.ClearLeaderboard)
		adminAPI.POST("/events/:id/reminders", perm(model.PermissionNotificationsSend), handlers.Event.SendReminders)

		// Standalone quizzes
		quizzes := adminAPI.Group("/quizzes")
		quizzes.Use(middleware.RequireRole(model.RoleAdmin))
		{
			quizzes.GET("", perm(model.PermissionQuizzesRead), handlers.Quiz.ListQuizzes)
			quizzes.POST("", perm(model.PermissionQuizzesWrite), handlers.Quiz.CreateQuiz)
			quizzes.GET("/:id", perm(model.PermissionQuizzesRead), handlers.Quiz.GetQuiz)
			quizzes.PUT("/:id", perm(model.PermissionQuizzesWrite), handlers.Quiz.UpdateQuiz)
			quizzes.DELETE("/:id", perm(model.PermissionQuizzesWrite), handlers.Quiz.DeleteQuiz)
			quizzes.PATCH("/:id/live", perm(model.PermissionQuizzesWrite), handlers.Quiz.SetLive)
			quizzes.GET("/:id/analytics", perm(model.PermissionQuizzesRead), handlers.Quiz.Analytics)
		}

		// Students
		adminAPI.GET("/students", perm(model.PermissionStudentsRead), handlers.StudentMgmt.ListStudents)
		adminAPI.POST("/students", perm(model.PermissionStudentsWrite), handlers.StudentMgmt.CreateStudent)
		adminAPI.POST("/students/import", perm(model.PermissionStudentsWrite), handlers.StudentMgmt.ImportStudents)
		adminAPI.GET("/students/:id", perm(model.PermissionStudentsRead), handlers.StudentMgmt.GetStudent)
		adminAPI.PUT("/students/:id", perm(model.PermissionStudentsWrite), handlers.StudentMgmt.UpdateStudent)
		adminAPI.DELETE("/students/:id", perm(model.PermissionStudentsWrite), handlers.StudentMgmt.DeleteStudent)
		adminAPI.PUT("/students/:id/review", perm(model.PermissionStudentsReview), handlers.StudentMgmt.ReviewStudent)
		adminAPI.POST("/students/:id/reset-session",
			perm(model.PermissionStudentsResetSession),
			handlers.StudentMgmt.ResetStudentSession,
		)
		adminAPI.GET("/students/:id/attendance", perm(model.PermissionStudentsRead), handlers.Attendance.StudentHistory)

		// Attendance
		adminAPI.POST("/attendance", perm(model.PermissionAttendanceMark), handlers.Attendance.Mark)
		adminAPI.GET("/attendance",
			middleware.RequireAnyPermission(model.PermissionAttendanceMark, model.PermissionStudentsRead),
			handlers.Attendance.ByDay,
		)

		// Alumni
		adminAPI.GET("/alumni", perm(model.PermissionAlumniRead), handlers.Alumni.ListAlumni)
		adminAPI.POST("/alumni/import", perm(model.PermissionAlumniWrite), handlers.Alumni.ImportAlumni)

		// Staff accounts
		staff := adminAPI.Group("")
		staff.Use(middleware.RequireRole(model.RoleAdmin))
		{
			staff.GET("/staff", handlers.Admin.ListStaff)
			staff.POST("/staff", handlers.Admin.CreateStaff)
			staff.DELETE("/staff/:id", handlers.Admin.DeleteStaff)
			staff.GET("/roles", handlers.Admin.ListRoles)
		}
	}

	return router
}
