package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hr-attendance/internal/config"
	appHTTP "github.com/cmlabs-hris/hr-attendance/internal/handler/http"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/cron"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/database"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/email"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/jwt"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/oauth"
	"github.com/cmlabs-hris/hr-attendance/internal/pkg/sse"
	"github.com/cmlabs-hris/hr-attendance/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hr-attendance/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/hr-attendance/internal/service/auth"
	dashboardService "github.com/cmlabs-hris/hr-attendance/internal/service/dashboard"
	employeeService "github.com/cmlabs-hris/hr-attendance/internal/service/employee"
	holidayService "github.com/cmlabs-hris/hr-attendance/internal/service/holiday"
	leaveService "github.com/cmlabs-hris/hr-attendance/internal/service/leave"
	notificationService "github.com/cmlabs-hris/hr-attendance/internal/service/notification"
	projectService "github.com/cmlabs-hris/hr-attendance/internal/service/project"
	reportService "github.com/cmlabs-hris/hr-attendance/internal/service/report"
	"github.com/go-chi/httplog/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{MaxConns: int32(cfg.Database.MaxConns)})
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer db.Close()

	txManager := postgresql.NewTxManager(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveRequestRepo := postgresql.NewLeaveRequestRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	projectRepo := postgresql.NewProjectRepository(db)
	dashboardRepo := postgresql.NewDashboardRepository(db)
	reportRepo := postgresql.NewReportRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)
	revokedTokenRepo := postgresql.NewRevokedTokenRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	var googleService oauth.GoogleService
	if cfg.OAuth2Google.Enabled() {
		googleService = oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)
	}
	emailService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize email service: ", err)
	}

	hub := sse.NewHub()
	notifSvc := notificationService.NewNotificationService(notificationRepo, employeeRepo, hub, emailService, notificationService.Config{
		BatchSize:     cfg.Notification.BatchSize,
		FlushInterval: cfg.Notification.FlushInterval,
		WorkerCount:   cfg.Notification.Workers,
		QueueSize:     cfg.Notification.QueueSize,
		FrontendURL:   cfg.App.FrontendURL,
	})

	authSvc := serviceAuth.NewAuthService(employeeRepo, revokedTokenRepo, JWTService, googleService)
	employeeSvc := employeeService.NewEmployeeService(txManager, employeeRepo, emailService, notifSvc, employeeService.OnboardingOptions{
		DefaultLeaveBalance: cfg.Leave.DefaultBalance,
		LoginURL:            strings.TrimRight(cfg.App.FrontendURL, "/") + "/login",
		CompanyName:         cfg.SMTP.FromName,
	})
	attendanceSvc := attendanceService.NewAttendanceService(txManager, attendanceRepo, employeeRepo, notifSvc, cfg.Attendance, cfg.App.Location)
	leaveSvc := leaveService.NewLeaveService(txManager, leaveRequestRepo, employeeRepo, notifSvc)
	holidaySvc := holidayService.NewHolidayService(holidayRepo)
	proposalSvc := projectService.NewProposalService(txManager, projectRepo, employeeRepo, notifSvc)
	dashboardSvc := dashboardService.NewDashboardService(dashboardRepo, holidayRepo, cfg.App.Location)
	reportSvc := reportService.NewReportService(reportRepo, holidayRepo, cfg.App.Location)

	restored, err := authSvc.RestoreRevocations(ctx)
	if err != nil {
		log.Fatal("Failed to restore revoked tokens: ", err)
	}
	slog.Info("restored revoked tokens", "count", restored)

	scheduler := cron.NewScheduler()
	cron.NewMaintenanceJobs(notifSvc, authSvc, cfg.Cron.ReminderHour, cfg.App.Location).RegisterJobs(scheduler)
	scheduler.Start()

	handlers := appHTTP.Handlers{
		Auth:         appHTTP.NewAuthHandler(authSvc, cfg.App.FrontendURL, cfg.App.BasePath+"/auth/oauth/callback/google", cfg.IsProduction()),
		Employee:     appHTTP.NewEmployeeHandler(employeeSvc),
		Attendance:   appHTTP.NewAttendanceHandler(attendanceSvc),
		Leave:        appHTTP.NewLeaveHandler(leaveSvc),
		Holiday:      appHTTP.NewHolidayHandler(holidaySvc),
		Project:      appHTTP.NewProjectHandler(proposalSvc),
		Dashboard:    appHTTP.NewDashboardHandler(dashboardSvc),
		Notification: appHTTP.NewNotificationHandler(notifSvc, JWTService),
		Report:       appHTTP.NewReportHandler(reportSvc),
	}
	router := appHTTP.NewRouter(cfg, logger, JWTService, handlers)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server running", "addr", server.Addr, "base_path", cfg.App.BasePath, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	// SSE streams only end when their subscriptions close
	hub.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	scheduler.Stop()
	notifSvc.Stop()
	slog.Info("shutdown complete")
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	logFormat := httplog.SchemaECS.Concise(!cfg.IsProduction())
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hr-attendance"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)
}
