package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/httplog/v3"
	"github.com/haulbook/haulbook-backend-go/internal/config"
	appHTTP "github.com/haulbook/haulbook-backend-go/internal/handler/http"
	"github.com/haulbook/haulbook-backend-go/internal/observability"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/cron"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/database"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/jwt"
	"github.com/haulbook/haulbook-backend-go/internal/pkg/lock"
	"github.com/haulbook/haulbook-backend-go/internal/repository/postgresql"
	paymentMethodService "github.com/haulbook/haulbook-backend-go/internal/service/paymentmethod"
	payrollService "github.com/haulbook/haulbook-backend-go/internal/service/payroll"
	paystubService "github.com/haulbook/haulbook-backend-go/internal/service/paystub"
	"github.com/redis/go-redis/v9"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	locker := lock.NewNoopLocker()
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Error("connect redis", slog.Any("error", err))
			os.Exit(1)
		}
		locker = lock.NewRedisLocker(redisClient)
	} else {
		logger.Warn("REDIS_ADDR not set, payroll week writes are only serialised by the database")
	}

	metrics := observability.NewMetrics()
	transactor := postgresql.NewTransactor(db)

	employeeRepo := postgresql.NewEmployeeRepository(db)
	loadRepo := postgresql.NewLoadRepository(db)
	fuelRepo := postgresql.NewFuelTransactionRepository(db)
	historyRepo := postgresql.NewPaymentMethodHistoryRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	paystubRepo := postgresql.NewPaystubRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	paymentMethodSvc := paymentMethodService.NewPaymentMethodService(transactor, historyRepo, employeeRepo, logger)
	payrollSvc := payrollService.NewPayrollService(
		transactor,
		payrollRepo,
		employeeRepo,
		loadRepo,
		fuelRepo,
		locker,
		metrics,
		logger,
	)
	paystubSvc := paystubService.NewPaystubService(transactor, paystubRepo, payrollRepo, metrics, logger)

	scheduler := cron.NewScheduler(logger)
	cron.NewPayrollJobs(payrollSvc, logger).RegisterJobs(scheduler, cfg.Payroll.RefreshInterval)
	scheduler.Start()
	defer scheduler.Stop()

	paymentMethodHandler := appHTTP.NewPaymentMethodHandler(paymentMethodSvc)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	paystubHandler := appHTTP.NewPaystubHandler(paystubSvc)

	router := appHTTP.NewRouter(
		logger,
		cfg,
		JWTService,
		metrics,
		paymentMethodHandler,
		payrollHandler,
		paystubHandler,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.App.LogLevel))); err != nil {
		level = slog.LevelInfo
	}

	logFormat := httplog.SchemaECS.Concise(!cfg.IsProduction())
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("env", cfg.App.Env),
	)
}
