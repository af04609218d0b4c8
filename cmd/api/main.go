package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"portfolio/api/internal/app"
	"portfolio/api/internal/captcha"
	"portfolio/api/internal/config"
	"portfolio/api/internal/email"
	"portfolio/api/internal/freshness"
	"portfolio/api/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	dataStore := store.NewPostgresStore(db)

	detailDirective := freshness.Directive{
		FreshFor:             cfg.DetailFreshFor,
		StaleWhileRevalidate: cfg.DetailStaleFor,
	}
	listDirective := freshness.Directive{
		FreshFor:             cfg.ListFreshFor,
		StaleWhileRevalidate: cfg.ListStaleFor,
	}

	// Redis snapshot cache is optional; without it every detail request
	// resolves at the origin.
	var snapshots *freshness.SnapshotCache
	if strings.TrimSpace(cfg.RedisURL) != "" {
		snapshots, err = freshness.NewSnapshotCache(cfg.RedisURL, detailDirective)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		defer snapshots.Close()
		log.Printf("Using Redis snapshot cache")
	}

	mailer := email.NewService(email.Config{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		From:      cfg.SMTPFrom,
		FromName:  cfg.SMTPFromName,
		ContactTo: cfg.ContactEmail,
	})
	if !mailer.IsConfigured() {
		log.Printf("WARNING: SMTP not configured, contact form disabled")
	}

	var verifier captcha.Verifier = captcha.Disabled{}
	if strings.TrimSpace(cfg.CaptchaSecret) != "" {
		verifier = captcha.NewService(cfg.CaptchaSecret)
	}

	if cfg.SlugFallback {
		log.Printf("Using normalized-title slug fallback")
	}

	service := app.NewService(app.ServiceOptions{
		Store:           dataStore,
		SlugFallback:    cfg.SlugFallback,
		Snapshots:       snapshots,
		Mailer:          mailer,
		Verifier:        verifier,
		SendConfirm:     cfg.SendConfirmation,
		ListDirective:   listDirective,
		DetailDirective: detailDirective,
	})

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin, cfg.WriteRatePerMinute)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Portfolio API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
