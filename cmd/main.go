package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "coffeebot/docs"
	"coffeebot/internal/chat"
	"coffeebot/internal/config"
	"coffeebot/internal/dispatcher"
	"coffeebot/internal/handlers"
	"coffeebot/internal/logger"
	"coffeebot/internal/metrics"
	"coffeebot/internal/mqtt"
	"coffeebot/internal/repository"
	"coffeebot/internal/repository/db"
	"coffeebot/internal/scheduler"
	"coffeebot/internal/server"
	"coffeebot/internal/service"
	"coffeebot/internal/timeparse"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 10 * time.Second

// @title        Coffee Bot API
// @version      1.0
// @description  Tracks the office coffee pot: brew, fresh, status and admin endpoints.
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load("configs", ".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	defer func() { _ = log.Sync() }()

	auth := service.NewAuthService(cfg.Admin.Secret, cfg.Admin.TokenTTL)
	if len(os.Args) > 1 && os.Args[1] == "token" {
		os.Exit(printToken(auth, os.Args[2:]))
	}

	if err := run(cfg, auth, log); err != nil {
		log.Errorw("coffeebot_failed", "err", err)
		_ = log.Sync()
		os.Exit(1)
	}
}

// printToken implements `coffeebot token <subject>`.
func printToken(auth *service.AuthService, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: coffeebot token <subject>")
		return 2
	}
	token, err := auth.IssueToken(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(token)
	return 0
}

func run(cfg config.Config, auth *service.AuthService, log *logger.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// open DB
	sqlDB, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("init sqlite: %w", err)
	}
	defer closeDB(sqlDB, log)

	repos := repository.NewRepository(sqlDB)
	if err := mirrorConfig(ctx, repos.Store, cfg); err != nil {
		return err
	}

	// metrics
	reg := prom.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheusRecorder(reg)

	// alert timer
	runner, err := scheduler.NewGocronRunner()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	runner.Start()
	defer func() {
		if err := runner.Stop(); err != nil {
			log.Warnw("scheduler_stop_failed", "err", err)
		}
	}()
	alerts := scheduler.NewAlertScheduler(runner, log, time.Now)

	// announcement sinks; chat is added once the dispatcher exists
	fanout := service.NewFanout(log, recorder)
	if pub := openMQTT(cfg, log); pub != nil {
		defer func() { _ = pub.Close() }()
		fanout.Add("mqtt", mqtt.NewAnnouncer(pub))
	}

	coffee := service.NewCoffeeService(service.CoffeeDeps{
		Store:        repos.Store,
		Events:       repos.EventRepo,
		Alerts:       alerts,
		Parser:       timeparse.New(),
		Announcer:    fanout,
		Metrics:      recorder,
		Log:          log,
		DefaultDelay: cfg.Brew.Delay,
	})

	disp := dispatcher.New(dispatcher.Deps{
		Coffee:          coffee,
		Store:           repos.Store,
		RoomID:          cfg.Chat.RoomID,
		AnnounceOnStart: cfg.Brew.AnnounceOnStart,
		Metrics:         recorder,
		Log:             log,
	})
	if err := disp.ResetWatermark(ctx, time.Now()); err != nil {
		return fmt.Errorf("reset chat watermark: %w", err)
	}

	if cfg.Chat.Enabled {
		bot, err := chat.New(chat.Config{
			Token:         cfg.Chat.Token,
			RoomID:        cfg.Chat.RoomID,
			RatePerSecond: cfg.Chat.RatePerSecond,
		}, disp, log)
		if err != nil {
			log.Warnw("chat_unavailable", "err", err)
		} else {
			fanout.Add("chat", bot)
			go bot.Run(ctx)
		}
	}

	if err := coffee.Restore(ctx); err != nil {
		return fmt.Errorf("restore alert: %w", err)
	}

	services := service.NewService(repos, coffee, auth)
	apiHandler := handlers.NewHandler(services, disp, log, handlers.Options{
		Prefix:    cfg.HTTP.Prefix,
		AssetsDir: cfg.HTTP.AssetsDir,
		Metrics:   recorder.HTTPHandler(),
	})

	srv := server.New(cfg.HTTP.Port, apiHandler.InitRoutes())
	errCh := make(chan error, 1)
	go func() {
		log.Infow("http_listening", "addr", srv.Addr(), "prefix", cfg.HTTP.Prefix)
		errCh <- srv.Run()
	}()

	return waitForShutdown(cancel, srv, errCh, log)
}

// mirrorConfig writes the effective settings into the State Store. Config wins at start.
func mirrorConfig(ctx context.Context, store repository.KVStore, cfg config.Config) error {
	for key, value := range map[string]string{
		repository.KeyCoffeeRoomID: cfg.Chat.RoomID,
		repository.KeyBrewDelay:    cfg.Brew.Delay,
		repository.KeyHTTPPort:     cfg.HTTP.Port,
		repository.KeyHTTPPrefix:   cfg.HTTP.Prefix,
	} {
		if err := store.Set(ctx, key, value); err != nil {
			return fmt.Errorf("store %s: %w", key, err)
		}
	}
	return nil
}

func openMQTT(cfg config.Config, log *logger.Logger) mqtt.Publisher {
	if cfg.MQTT.Broker == "" {
		return nil
	}
	pub, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.Topic)
	if err != nil {
		log.Warnw("mqtt_unavailable", "broker", cfg.MQTT.Broker, "err", err)
		return nil
	}
	log.Infow("mqtt_connected", "broker", cfg.MQTT.Broker, "topic", cfg.MQTT.Topic)
	return pub
}

func closeDB(sqlDB *sql.DB, log *logger.Logger) {
	if err := sqlDB.Close(); err != nil {
		log.Warnw("sqlite_close_failed", "err", err)
	}
}

// waitForShutdown blocks until a termination signal or a server failure, then stops the server.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, errCh <-chan error, log *logger.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		log.Infow("shutting_down", "signal", sig.String())
	case err := <-errCh:
		cancel()
		return fmt.Errorf("http server: %w", err)
	}

	// stop the chat poller and other background goroutines
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
