package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/luno/jettison/log"
	"github.com/robfig/cron/v3"

	workflow "github.com/lucasmqar/vercflow-sub003"
	"github.com/lucasmqar/vercflow-sub003/adapters/jlog"
	"github.com/lucasmqar/vercflow-sub003/adapters/kafkanotifier"
	"github.com/lucasmqar/vercflow-sub003/adapters/sqlstore"
	"github.com/lucasmqar/vercflow-sub003/internal/api"
	"github.com/lucasmqar/vercflow-sub003/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := jlog.New()

	db, err := sqlstore.Open(cfg.Database.Path)
	if err != nil {
		log.Error(ctx, err)
		os.Exit(1)
	}
	defer db.Close()

	if err := sqlstore.InitSchema(db); err != nil {
		log.Error(ctx, err)
		os.Exit(1)
	}

	store := sqlstore.NewEntityStore(db)
	registry := workflow.DefaultRegistry()
	engine := workflow.NewEngine(registry)

	runnerOpts := []workflow.RunnerOption{workflow.WithLogger(logger)}

	var notifier *kafkanotifier.Notifier
	if cfg.Notifier.Enabled {
		notifier = kafkanotifier.New(cfg.Notifier.Brokers, cfg.Notifier.Topic)
		defer notifier.Close()
		runnerOpts = append(runnerOpts, workflow.WithNotifier(notifier))
	}

	runner := workflow.NewRunner(engine, store, runnerOpts...)

	var scheduler *cron.Cron
	if cfg.Escalation.Enabled {
		escalator := workflow.NewEscalator(runner, store, workflow.EscalatorConfig{
			Kind:    workflow.Kind(cfg.Escalation.Kind),
			From:    workflow.Status(cfg.Escalation.From),
			To:      workflow.Status(cfg.Escalation.To),
			MaxAge:  cfg.Escalation.MaxAge,
			ActorID: cfg.Escalation.ActorID,
			Reason:  cfg.Escalation.Reason,
		}, workflow.WithEscalatorLogger(logger))

		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.Escalation.Schedule, func() {
			n, err := escalator.Sweep(ctx)
			if err != nil {
				logger.Error(ctx, err)
				return
			}

			logger.Debug(ctx, "escalation sweep complete", workflow.MKV{
				"escalated": fmt.Sprintf("%d", n),
			})
		})
		if err != nil {
			log.Error(ctx, err)
			os.Exit(1)
		}

		scheduler.Start()
		defer scheduler.Stop()
	}

	server := api.NewServer(runner, store, registry, logger)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info(ctx, "server listening on "+httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, err)
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, err)
	}
}
