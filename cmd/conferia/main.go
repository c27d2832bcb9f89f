package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/conferia/conferia/internal/accounts"
	"github.com/conferia/conferia/internal/app"
	"github.com/conferia/conferia/internal/contributions"
	"github.com/conferia/conferia/internal/fines"
	"github.com/conferia/conferia/internal/meetings"
	"github.com/conferia/conferia/internal/observability"
	"github.com/conferia/conferia/internal/platform/cache"
	"github.com/conferia/conferia/internal/platform/db"
	"github.com/conferia/conferia/internal/reporting"
	"github.com/conferia/conferia/internal/shared"
	"github.com/conferia/conferia/internal/vouchers"
	"github.com/conferia/conferia/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(dbpool)
	approvalRecorder := shared.NewApprovalRecorder(dbpool, logger)
	reportCache := reporting.NewCache(redisClient, cfg.ReportCacheTTL)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	notifier := jobs.NewQueueNotifier(jobClient, logger)

	accountRepo := accounts.NewRepository(dbpool)
	accountService := accounts.NewService(accountRepo, auditLogger, logger)
	accountHandler := accounts.NewHandler(logger, accountService)

	contributionRepo := contributions.NewRepository(dbpool)
	contributionService := contributions.NewService(contributionRepo, accountService, approvalRecorder, notifier, reportCache, logger)
	contributionHandler := contributions.NewHandler(logger, contributionService)

	fineRepo := fines.NewRepository(dbpool)
	fineService := fines.NewService(fineRepo, accountService, approvalRecorder, notifier, reportCache, logger)
	fineHandler := fines.NewHandler(logger, fineService)

	meetingRepo := meetings.NewRepository(dbpool)
	meetingService := meetings.NewService(meetingRepo, logger)
	meetingHandler := meetings.NewHandler(logger, meetingService)

	voucherStore := vouchers.NewStore(dbpool)
	voucherService := vouchers.NewService(voucherStore)
	voucherHandler := vouchers.NewHandler(logger, voucherService)

	budgetRepo := reporting.NewBudgetRepository(dbpool)
	reportService := reporting.NewService(contributionRepo, fineRepo, budgetRepo, reportCache, logger)
	reportHandler := reporting.NewHandler(logger, reportService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		ContributionHandler: contributionHandler,
		FineHandler:         fineHandler,
		MeetingHandler:      meetingHandler,
		AccountHandler:      accountHandler,
		VoucherHandler:      voucherHandler,
		ReportHandler:       reportHandler,
		JobHandler:          jobHandler,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
