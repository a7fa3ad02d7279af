package http

import (
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/config"
	"github.com/cmlabs-hris/hr-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hr-attendance/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// Handlers groups every resource handler mounted by NewRouter.
type Handlers struct {
	Auth         AuthHandler
	Employee     EmployeeHandler
	Attendance   AttendanceHandler
	Leave        LeaveHandler
	Holiday      HolidayHandler
	Project      ProjectHandler
	Dashboard    DashboardHandler
	Notification NotificationHandler
	Report       ReportHandler
}

func NewRouter(cfg *config.Config, logger *slog.Logger, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.App.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition", "X-Total-Count", "X-Page", "X-Limit", "X-Total-Pages", "X-Unread-Count", "Retry-After"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	perMinute := time.Minute
	approvalLimit := middleware.RateLimit(cfg.RateLimit.Approval, perMinute, middleware.KeyByPrincipalOrIP)

	r.Route(cfg.App.BasePath, func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.With(
				middleware.RateLimit(cfg.RateLimit.Login, perMinute, middleware.KeyByIP),
				middleware.RateLimit(cfg.RateLimit.Login, perMinute, middleware.KeyByLoginEmail),
			).Post("/login", h.Auth.Login)
			r.Get("/login/google", h.Auth.LoginWithGoogle)
			r.Get("/oauth/callback/google", h.Auth.OAuthCallbackGoogle)

			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verify(JWTService.JWTAuth(), jwtauth.TokenFromHeader))
				r.Use(middleware.AuthRequired(JWTService))
				r.Post("/logout", h.Auth.Logout)
				r.Post("/change-password", h.Auth.ChangePassword)
				r.Get("/me", h.Auth.Me)
			})
		})

		// EventSource cannot send Authorization, so the stream authenticates
		// with a short-lived token in the query string.
		r.Get("/notifications/stream", h.Notification.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verify(JWTService.JWTAuth(), jwtauth.TokenFromHeader))
			r.Use(middleware.AuthRequired(JWTService))
			r.Use(middleware.RateLimit(cfg.RateLimit.General, perMinute, middleware.KeyByPrincipalOrIP))

			r.Route("/users", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionUserView)).Get("/", h.Employee.ListEmployees)
				r.With(middleware.RequirePermission(user.PermissionUserManage)).Post("/", h.Employee.CreateEmployee)
				r.Route("/{id}", func(r chi.Router) {
					r.With(middleware.RequirePermission(user.PermissionUserView)).Get("/", h.Employee.GetEmployee)
					// self edits are checked by the service
					r.Put("/", h.Employee.UpdateEmployee)
					r.With(middleware.RequirePermission(user.PermissionUserManage)).Delete("/", h.Employee.DeleteEmployee)
				})
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/", h.Attendance.List)
				r.With(middleware.RequirePermission(user.PermissionAttendanceManage)).Post("/", h.Attendance.Create)
				r.With(middleware.RequirePermission(user.PermissionAttendanceMark)).Post("/mark", h.Attendance.Mark)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Attendance.Get)
					r.Put("/", h.Attendance.Update)
					r.With(middleware.RequirePermission(user.PermissionAttendanceManage)).Delete("/", h.Attendance.Delete)

					r.Get("/entries", h.Attendance.ListEntries)
					r.Post("/entries", h.Attendance.AddEntry)
					r.With(middleware.RequirePermission(user.PermissionAttendanceDeleteEntry)).Delete("/entries/{entryId}", h.Attendance.DeleteEntry)

					r.Post("/confirm", h.Attendance.Confirm)
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionAttendanceApprove))
						r.Use(approvalLimit)
						r.Post("/approve", h.Attendance.Approve)
						r.Post("/reject", h.Attendance.Reject)
					})
				})
			})

			r.Route("/leave", func(r chi.Router) {
				r.Get("/", h.Leave.List)
				r.With(middleware.RequirePermission(user.PermissionLeaveCreate)).Post("/", h.Leave.Create)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.Leave.Get)
					r.Put("/", h.Leave.Update)
					r.Delete("/", h.Leave.Delete)
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionLeaveApprove))
						r.Use(approvalLimit)
						r.Post("/approve", h.Leave.Approve)
						r.Post("/reject", h.Leave.Reject)
					})
				})
			})

			r.Route("/holidays", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionHolidayView))
					r.Get("/", h.Holiday.List)
					r.Get("/{id}", h.Holiday.Get)
				})
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionHolidayManage))
					r.Post("/", h.Holiday.Create)
					r.Put("/{id}", h.Holiday.Update)
					r.Delete("/{id}", h.Holiday.Delete)
				})
			})

			r.Route("/projects", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionProjectView))
					r.Get("/", h.Project.List)
					r.Get("/{id}", h.Project.Get)
				})
				r.With(middleware.RequirePermission(user.PermissionProjectPropose)).Post("/", h.Project.Propose)
				r.With(middleware.RequirePermission(user.PermissionProjectApprove), approvalLimit).Post("/{id}/approve", h.Project.Approve)
				// proposers may withdraw their own pending proposal
				r.Delete("/{id}", h.Project.Delete)
			})

			r.With(middleware.RequirePermission(user.PermissionDashboardView)).Get("/dashboard/stats", h.Dashboard.GetStats)

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.List)
				r.Get("/unread-count", h.Notification.UnreadCount)
				r.Post("/read", h.Notification.MarkAsRead)
				r.Post("/read-all", h.Notification.MarkAllAsRead)
				r.Get("/preferences", h.Notification.GetPreferences)
				r.Put("/preferences", h.Notification.UpdatePreference)
				r.Get("/sse-token", h.Notification.GetSSEToken)
				r.Delete("/{id}", h.Notification.Delete)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionReportsView))
				r.Get("/attendance", h.Report.GetMonthlyAttendanceReport)
				r.Get("/leave-balances", h.Report.GetLeaveBalanceReport)
			})
		})
	})
	return r
}
