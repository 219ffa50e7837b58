package app

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/data/aggregates"
	"github.com/yungbote/lms-backend/internal/data/repos"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	lmshttp "github.com/yungbote/lms-backend/internal/http"
	httpH "github.com/yungbote/lms-backend/internal/http/handlers"
	httpMW "github.com/yungbote/lms-backend/internal/http/middleware"
	"github.com/yungbote/lms-backend/internal/observability"
	"github.com/yungbote/lms-backend/internal/platform/logger"
	"github.com/yungbote/lms-backend/internal/realtime/bus"
	"github.com/yungbote/lms-backend/internal/services"
)

type Repos struct {
	User             repos.UserRepo
	Course           repos.CourseRepo
	CourseInstructor repos.CourseInstructorRepo
	CourseWeek       repos.CourseWeekRepo
	Lesson           repos.LessonRepo
	Assignment       repos.AssignmentRepo
	Enrollment       repos.EnrollmentRepo
	WeekUnlock       repos.WeekUnlockRepo
	Withdrawal       repos.WithdrawalRequestRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:             repos.NewUserRepo(db, log),
		Course:           repos.NewCourseRepo(db, log),
		CourseInstructor: repos.NewCourseInstructorRepo(db, log),
		CourseWeek:       repos.NewCourseWeekRepo(db, log),
		Lesson:           repos.NewLessonRepo(db, log),
		Assignment:       repos.NewAssignmentRepo(db, log),
		Enrollment:       repos.NewEnrollmentRepo(db, log),
		WeekUnlock:       repos.NewWeekUnlockRepo(db, log),
		Withdrawal:       repos.NewWithdrawalRequestRepo(db, log),
	}
}

type Aggregates struct {
	Course     domainagg.CourseAggregate
	Enrollment domainagg.EnrollmentAggregate
	Roster     domainagg.RosterAggregate
}

func wireAggregates(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, events bus.Bus, metrics *observability.Metrics) Aggregates {
	log.Info("Wiring aggregates...")
	base := aggregates.BaseDeps{
		DB:     db,
		Log:    log,
		Runner: aggregates.NewGormTxRunner(db, aggregates.WithLockTimeout(cfg.TxLockTimeout)),
		Hooks:  aggregates.NewObservabilityHooks(metrics),
		Events: events,
	}
	return Aggregates{
		Course: aggregates.NewCourseAggregate(aggregates.CourseAggregateDeps{
			Base:               base,
			Users:              r.User,
			Courses:            r.Course,
			Instructors:        r.CourseInstructor,
			Weeks:              r.CourseWeek,
			Lessons:            r.Lesson,
			Assignments:        r.Assignment,
			Enrollments:        r.Enrollment,
			Unlocks:            r.WeekUnlock,
			Scaffold:           aggregates.CourseScaffoldFromEnv(log),
			DefaultMaxStudents: cfg.DefaultMaxStudents,
		}),
		Enrollment: aggregates.NewEnrollmentAggregate(aggregates.EnrollmentAggregateDeps{
			Base:        base,
			Users:       r.User,
			Courses:     r.Course,
			Instructors: r.CourseInstructor,
			Weeks:       r.CourseWeek,
			Enrollments: r.Enrollment,
			Unlocks:     r.WeekUnlock,
			Withdrawals: r.Withdrawal,
		}),
		Roster: aggregates.NewRosterAggregate(aggregates.RosterAggregateDeps{
			Base:        base,
			Users:       r.User,
			Courses:     r.Course,
			Instructors: r.CourseInstructor,
			Enrollments: r.Enrollment,
		}),
	}
}

type Services struct {
	Auth services.AuthService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) Services {
	log.Info("Wiring services...")
	return Services{
		Auth: services.NewAuthService(db, log, r.User, cfg.JWTSecretKey, cfg.AccessTokenTTL),
	}
}

// wireRouter builds handlers, middleware and the gin engine.
func wireRouter(log *logger.Logger, cfg Config, db *gorm.DB, svc Services, aggs Aggregates, events bus.Bus, metrics *observability.Metrics) *lmshttp.Server {
	log.Info("Wiring handlers...")
	checks := map[string]httpH.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rb, ok := events.(bus.RedisBus); ok {
		checks["redis"] = rb.Ping
	}

	tracing := ""
	if cfg.Otel.Enabled {
		tracing = cfg.Otel.ServiceName
	}
	return lmshttp.NewServer(lmshttp.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, svc.Auth),
		TracingService: tracing,
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,

		AuthHandler:       httpH.NewAuthHandler(log, svc.Auth),
		CourseHandler:     httpH.NewCourseHandler(log, aggs.Course),
		LessonHandler:     httpH.NewLessonHandler(log, aggs.Course),
		AssignmentHandler: httpH.NewAssignmentHandler(log, aggs.Course),
		EnrollmentHandler: httpH.NewEnrollmentHandler(log, aggs.Enrollment),
		RosterHandler:     httpH.NewRosterHandler(log, aggs.Roster),
		HealthHandler:     httpH.NewHealthHandler(checks),
	})
}
