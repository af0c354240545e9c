package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nanocoin-game/nanocoin-bot/internal/accountcache"
	"github.com/nanocoin-game/nanocoin-bot/internal/bot"
	"github.com/nanocoin-game/nanocoin-bot/internal/database"
	"github.com/nanocoin-game/nanocoin-bot/internal/economy"
	"github.com/nanocoin-game/nanocoin-bot/internal/game"
	"github.com/nanocoin-game/nanocoin-bot/internal/health"
	"github.com/nanocoin-game/nanocoin-bot/internal/i18n"
	"github.com/nanocoin-game/nanocoin-bot/internal/idempotency"
	"github.com/nanocoin-game/nanocoin-bot/internal/jobs"
	jobhandlers "github.com/nanocoin-game/nanocoin-bot/internal/jobs/handlers"
	"github.com/nanocoin-game/nanocoin-bot/internal/lifecycle"
	"github.com/nanocoin-game/nanocoin-bot/internal/middleware"
	"github.com/nanocoin-game/nanocoin-bot/internal/quests"
	"github.com/nanocoin-game/nanocoin-bot/internal/ratelimit"
	"github.com/nanocoin-game/nanocoin-bot/internal/repository"
	"github.com/nanocoin-game/nanocoin-bot/internal/state"
	"github.com/nanocoin-game/nanocoin-bot/pkg/config"
	"github.com/nanocoin-game/nanocoin-bot/pkg/graceful"
	"github.com/nanocoin-game/nanocoin-bot/pkg/logger"
	"github.com/nanocoin-game/nanocoin-bot/pkg/metrics"
	redisclient "github.com/nanocoin-game/nanocoin-bot/pkg/redis"

	_ "github.com/lib/pq"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(*cfg)
	log.Info("starting nanocoin bot",
		slog.String("env", cfg.AppEnv),
		slog.String("mode", cfg.Bot.Mode),
		slog.String("http_port", cfg.Server.Port),
	)

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			log.Error("failed to init sentry", slog.Any("error", err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Error("failed to open database", slog.Any("error", err))
		return
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Error("error closing database", slog.Any("error", cerr))
		}
	}()

	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to ping database", slog.Any("error", err))
		return
	}

	migrator := database.NewMigrator(db, log)
	if err := migrator.ApplyDir(ctx, "migrations"); err != nil {
		log.Error("failed to apply migrations", slog.Any("error", err))
		return
	}

	rdb, err := redisclient.New(ctx, redisclient.Config{
		Addr:            cfg.Redis.Addr,
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		PoolSize:        cfg.Redis.PoolSize,
		MinIdleConns:    cfg.Redis.MinIdleConns,
		PoolTimeout:     cfg.Redis.PoolTimeout,
		IdleTimeout:     cfg.Redis.IdleTimeout,
		MaxRetries:      cfg.Redis.MaxRetries,
		MinRetryBackoff: cfg.Redis.MinRetryBackoff,
		MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
	})
	if err != nil {
		log.Error("failed to connect to redis", slog.Any("error", err))
		return
	}
	defer func() {
		if cerr := rdb.Close(); cerr != nil {
			log.Error("error closing redis", slog.Any("error", cerr))
		}
	}()

	i18nDir := cfg.I18n.Dir
	if i18nDir == "" {
		i18nDir = "locales"
	}
	i18nm, err := i18n.LoadFromDir(i18nDir, cfg.I18n.DefaultLang)
	if err != nil {
		log.Error("failed to load translations", slog.Any("error", err))
		return
	}

	stateStorage := state.NewRedisStorage(rdb.Client, log)
	fsm := state.NewStateMachine(stateStorage, log, rdb.Client)
	go state.NewCleaner(rdb.Client, stateStorage, log, 30*time.Minute, 5*time.Minute).Run(ctx)

	idemManager := idempotency.NewManager(idempotency.NewRedisStore(rdb.Client, log), log)
	go idempotency.NewCleaner(rdb.Client, log, time.Hour).Run(ctx)

	var rateLimitMw *middleware.RateLimitMiddleware
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.NewAdaptiveLimiter(
			ratelimit.NewRedisLimiter(rdb.Client, log),
			ratelimit.NewMemoryLimiter(log),
			log,
		)
		rateLimitMw = middleware.NewRateLimitMiddleware(limiter, ratelimit.NewRules(cfg.RateLimit), log)
		go ratelimit.NewCleaner(rdb.Client, log, time.Hour).Run(ctx)
	}

	accounts := repository.NewAccountRepository(db, log)
	items := repository.NewItemRepository(db, log)
	inventory := repository.NewInventoryRepository(db, log)
	market := repository.NewMarketRepository(db, log)
	questRepo := repository.NewQuestRepository(db, log)
	achievementRepo := repository.NewAchievementRepository(db, log)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	queue := jobs.NewManager(redisOpt, log)

	engine := economy.New(cfg.Economy, nil, nil)
	cache := accountcache.NewCache(rdb.Client)

	gameSvc := game.NewService(accounts, items, inventory, market, questRepo, achievementRepo, cache, queue, engine, log)
	questSvc := quests.NewService(questRepo, accounts, gameSvc.Engine, log)

	config.WatchEconomy(v, log, func(eco economy.Config) {
		gameSvc.SwapEngine(economy.New(eco, nil, nil))
	})

	worker := jobs.NewWorker(redisOpt, cfg.Jobs.Queues, cfg.Jobs.Concurrency, log)
	worker.RegisterHandler(jobs.TaskTypeQuestProgress, jobhandlers.NewQuestProgressHandler(questSvc, log))
	worker.RegisterHandler(jobs.TaskTypeQuestReset, jobhandlers.NewQuestResetHandler(questSvc, log))
	worker.RegisterHandler(jobs.TaskTypeEnergyRegen,
		jobhandlers.NewEnergyRegenHandler(accounts,
			cfg.Economy.EnergyRegenPerMinute, cfg.Economy.ElectricityRegenPerMinute, log))

	go func() {
		if err := worker.Run(); err != nil {
			log.Error("jobs worker stopped", slog.Any("error", err))
		}
	}()

	scheduler := jobs.NewScheduler(redisOpt, log)
	if err := scheduler.RegisterTasks(); err != nil {
		log.Error("failed to register scheduled tasks", slog.Any("error", err))
		return
	}
	scheduler.Run()

	b, err := bot.New(*cfg, log, gameSvc, questSvc, i18nm, fsm, idemManager, rateLimitMw)
	if err != nil {
		log.Error("failed to initialize bot", slog.Any("error", err))
		return
	}
	go b.Start()

	go metrics.NewStateCollector(fsm).Run(ctx)

	checker := health.NewChecker(log)
	checker.AddCheck("postgres", health.NewDBChecker(db))
	checker.AddCheck("redis", health.NewRedisChecker(rdb.Client))
	checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))
	probes := lifecycle.NewProbes(log)

	srv := graceful.NewServer(log, &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           logger.Middleware(middleware.New(log)(httpMux(checker, probes))),
		ReadHeaderTimeout: 5 * time.Second,
	}, cfg.Server.ShutdownTimeout)

	go func() {
		if err := srv.ListenAndServe(ctx); err != nil {
			log.Error("http server stopped", slog.Any("error", err))
		}
	}()

	<-ctx.Done()

	shutdown := lifecycle.NewShutdown(log)
	shutdown.Register("bot", func(context.Context) error {
		b.Stop()
		return nil
	})
	shutdown.Register("scheduler", func(context.Context) error {
		scheduler.Shutdown()
		return nil
	})
	shutdown.Register("worker", func(context.Context) error {
		worker.Shutdown()
		return nil
	})
	shutdown.Register("queue", func(context.Context) error {
		return queue.Close()
	})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := shutdown.Execute(shutdownCtx); err != nil {
		log.Error("shutdown finished with errors", slog.Any("error", err))
	}

	log.Info("nanocoin bot stopped")
}

func httpMux(checker *health.Checker, probes *lifecycle.Probes) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		results := checker.Check(r.Context())

		status := http.StatusOK
		for _, v := range results {
			if v != "OK" {
				status = http.StatusServiceUnavailable
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(results)
	})

	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		if err := probes.Liveness(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := probes.Readiness(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	return mux
}
