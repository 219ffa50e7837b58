package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/lms-backend/internal/http/handlers"
	httpMW "github.com/yungbote/lms-backend/internal/http/middleware"
	"github.com/yungbote/lms-backend/internal/http/response"
	"github.com/yungbote/lms-backend/internal/observability"
	"github.com/yungbote/lms-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	AuthMiddleware *httpMW.AuthMiddleware

	// TracingService enables otelgin spans under that service name.
	TracingService string
	CORSOrigins    []string
	RequestTimeout time.Duration

	AuthHandler       *httpH.AuthHandler
	CourseHandler     *httpH.CourseHandler
	LessonHandler     *httpH.LessonHandler
	AssignmentHandler *httpH.AssignmentHandler
	EnrollmentHandler *httpH.EnrollmentHandler
	RosterHandler     *httpH.RosterHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	if cfg.TracingService != "" {
		r.Use(otelgin.Middleware(cfg.TracingService, otelgin.WithFilter(func(req *http.Request) bool {
			return req.URL.Path != "/healthcheck" && req.URL.Path != "/metrics"
		})))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.AttachRequestContext(cfg.RequestTimeout))

	r.NoRoute(func(c *gin.Context) {
		response.RespondError(c, http.StatusNotFound, "not_found", errors.New("route not found"))
	})
	r.NoMethod(func(c *gin.Context) {
		response.RespondError(c, http.StatusMethodNotAllowed, "method_not_allowed", errors.New("method not allowed"))
	})

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Courses and weeks
		if cfg.CourseHandler != nil {
			protected.POST("/courses", cfg.CourseHandler.CreateCourse)
			protected.GET("/courses/:id", cfg.CourseHandler.GetCourse)
			protected.DELETE("/courses/:id", cfg.CourseHandler.DeleteCourse)
			protected.GET("/courses/:id/weeks", cfg.CourseHandler.ListCourseWeeks)
			protected.POST("/courses/:id/weeks", cfg.CourseHandler.CreateCourseWeek)
			protected.PATCH("/weeks/:id", cfg.CourseHandler.UpdateCourseWeek)
			protected.DELETE("/weeks/:id", cfg.CourseHandler.DeleteCourseWeek)
		}

		// Lessons
		if cfg.LessonHandler != nil {
			protected.GET("/weeks/:id/lessons", cfg.LessonHandler.ListWeekLessons)
			protected.POST("/weeks/:id/lessons", cfg.LessonHandler.CreateLesson)
			protected.PATCH("/lessons/:id", cfg.LessonHandler.UpdateLesson)
			protected.DELETE("/lessons/:id", cfg.LessonHandler.DeleteLesson)
		}

		// Assignments
		if cfg.AssignmentHandler != nil {
			protected.GET("/weeks/:id/assignments", cfg.AssignmentHandler.ListWeekAssignments)
			protected.POST("/weeks/:id/assignments", cfg.AssignmentHandler.CreateAssignment)
			protected.PATCH("/assignments/:id", cfg.AssignmentHandler.UpdateAssignment)
			protected.DELETE("/assignments/:id", cfg.AssignmentHandler.DeleteAssignment)
		}

		// Enrollment and withdrawals
		if cfg.EnrollmentHandler != nil {
			protected.POST("/weeks/:id/unlocks", cfg.EnrollmentHandler.UnlockWeek)
			protected.POST("/courses/:id/enroll", cfg.EnrollmentHandler.SelfEnroll)
			protected.GET("/courses/:id/students", cfg.EnrollmentHandler.ListStudents)
			protected.POST("/courses/:id/students", cfg.EnrollmentHandler.EnrollStudent)
			protected.DELETE("/courses/:id/students/:userId", cfg.EnrollmentHandler.RemoveStudent)
			protected.POST("/courses/:id/withdrawals", cfg.EnrollmentHandler.RequestWithdrawal)
			protected.GET("/courses/:id/withdrawals", cfg.EnrollmentHandler.ListWithdrawals)
			protected.POST("/withdrawals/:id/review", cfg.EnrollmentHandler.ReviewWithdrawal)
		}

		// Roster
		if cfg.RosterHandler != nil {
			protected.GET("/courses/:id/instructors", cfg.RosterHandler.ListInstructors)
			protected.POST("/courses/:id/instructors", cfg.RosterHandler.AddInstructor)
			protected.DELETE("/courses/:id/instructors/:userId", cfg.RosterHandler.RemoveInstructor)
			protected.PATCH("/users/:id/role", cfg.RosterHandler.UpdateUserRole)
		}
	}

	return r
}
