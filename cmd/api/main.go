package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joaquinkuster/rrhh-sub000/internal/config"
	appHTTP "github.com/joaquinkuster/rrhh-sub000/internal/handler/http"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/calendar"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/cron"
	"github.com/joaquinkuster/rrhh-sub000/internal/pkg/database"
	"github.com/joaquinkuster/rrhh-sub000/internal/repository/postgresql"
	payrollService "github.com/joaquinkuster/rrhh-sub000/internal/service/payroll"
	requestService "github.com/joaquinkuster/rrhh-sub000/internal/service/request"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	tx := postgresql.NewTransactor(db)
	contractRepo := postgresql.NewContractRepository(db)
	requestRepo := postgresql.NewRequestRepository(db)
	conceptRepo := postgresql.NewConceptRepository(db)
	breakdownRepo := postgresql.NewBreakdownRepository(db)
	calendars := calendar.NewSource(postgresql.NewHolidayRepository(db), cfg.Payroll.Holidays...)

	settings := payrollService.DefaultSettings()
	settings.AbsenceThreshold = cfg.Payroll.AbsenceThreshold
	settings.SeniorityAnnualRate = cfg.Payroll.SeniorityAnnualRate

	payrollSvc := payrollService.NewService(
		tx,
		contractRepo,
		requestRepo,
		conceptRepo,
		breakdownRepo,
		calendars,
		payrollService.NewEngine(settings),
	)
	requestSvc := requestService.NewService(tx, requestRepo, contractRepo, calendars, payrollSvc)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			AllowedOrigins: []string{cfg.App.FrontendURL},
			Env:            cfg.App.Env,
			Version:        version,
			LogLevel:       cfg.SlogLevel(),
		},
		appHTTP.NewPayrollHandler(payrollSvc),
		appHTTP.NewRequestHandler(requestSvc),
	)

	scheduler := cron.NewScheduler(ctx)
	cron.NewResignationJobs(requestSvc, cfg.Cron.ResignationSweepInterval).RegisterJobs(scheduler)
	cron.NewPayrollJobs(payrollSvc, cfg.Payroll.BatchDay, cfg.Cron.PayrollBatchInterval).RegisterJobs(scheduler)
	scheduler.Start()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	scheduler.Stop()
}
