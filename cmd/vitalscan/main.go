// cmd/vitalscan/main.go
package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"vitalscan/internal/common/config"
	"vitalscan/internal/common/database"
	"vitalscan/internal/common/logger"
	"vitalscan/internal/narrative"
	"vitalscan/internal/notify"
	"vitalscan/internal/pipeline"
	"vitalscan/internal/report"
	"vitalscan/internal/server"
	"vitalscan/internal/store"
	"vitalscan/internal/tracker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	log := logger.NewZapAdapter(zapLogger)

	log.Info("starting vitalscan", map[string]interface{}{
		"environment": cfg.App.Environment,
		"version":     cfg.App.Version,
	})

	for _, dir := range []string{cfg.Reports.OutputDir, cfg.Reports.DataDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			zapLogger.Fatal("failed to create directory", zap.String("dir", dir), zap.Error(err))
		}
	}

	// The service stays up without a database; persistence degrades to
	// snapshot files until the next restart.
	pg := connectPostgres(cfg, log)
	var db *sql.DB
	if pg != nil {
		db = pg.DB
		defer pg.Close()
	}

	gateway := store.NewGateway(db, cfg.Reports.DataDir, log)

	branding := report.Branding{
		CompanyName:  cfg.Branding.CompanyName,
		Tagline:      cfg.Branding.Tagline,
		ContactEmail: cfg.Branding.ContactEmail,
		ContactPhone: cfg.Branding.ContactPhone,
	}

	var primary report.Engine
	wk := report.NewWKEngine(branding)
	if wk.Available() {
		primary = wk
		log.Info("primary render engine available", nil)
	} else {
		log.Warn("wkhtmltopdf not found, using fallback engine only", nil)
	}
	renderer := report.NewRenderer(primary, report.NewFallbackEngine(branding), cfg.Reports.OutputDir, log)

	completer := narrative.NewOpenAICompleter(
		cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.MaxTokens, cfg.OpenAI.Temperature,
	)
	generator := narrative.NewGenerator(completer, log)

	emailer := notify.NewSMTPEmailer(cfg.SMTP, cfg.Branding, cfg.App.BaseURL, log)
	whatsapp := notify.NewWhatsAppSender(cfg.WhatsApp, cfg.Branding.CompanyName, log)
	dispatcher := notify.NewDispatcher(emailer, whatsapp, log)

	jobTracker := tracker.New()

	pipe := pipeline.New(generator, gateway, renderer, dispatcher, jobTracker, log, pipeline.Options{
		Workers:    cfg.Pipeline.Workers,
		QueueSize:  cfg.Pipeline.QueueSize,
		JobTimeout: config.GetDuration(cfg.Pipeline.JobTimeout),
	})
	pipe.Start()

	srv := server.New(pipe, gateway, jobTracker, cfg.Reports.OutputDir, log)
	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: srv.Router(),
	}

	go func() {
		log.Info("http server listening", map[string]interface{}{"address": cfg.Server.Address})
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("http server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutting down", map[string]interface{}{"signal": sig.String()})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http shutdown failed", nil)
	}

	pipe.Stop()
	log.Info("shutdown complete", nil)
}

// connectPostgres retries with backoff, then gives up and lets the store
// run in snapshot-only mode.
func connectPostgres(cfg *config.Config, log logger.Logger) *database.PostgresClient {
	const attempts = 5

	for i := 1; i <= attempts; i++ {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			pingErr := pg.Ping(ctx)
			cancel()
			if pingErr == nil {
				log.Info("connected to postgres", map[string]interface{}{
					"host": cfg.Database.Postgres.Host,
				})
				return pg
			}
			pg.Close()
			err = pingErr
		}

		log.WithError(err).Warn("postgres connection failed", map[string]interface{}{
			"attempt": i,
		})
		time.Sleep(time.Duration(i) * 2 * time.Second)
	}

	log.Warn("postgres unavailable, running with snapshot persistence only", nil)
	return nil
}
