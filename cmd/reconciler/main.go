package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/config"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/forecast"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/httpapi"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/metrics"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/session"
	"github.com/danielpatrickdp/adaptive-plan/go-reconciler/internal/store"
)

// #region main

func main() {
	settingsPath := flag.String("settings", envOr("RECONCILER_SETTINGS", ""), "path to settings YAML (optional)")
	flag.Parse()

	settings, err := config.Load(*settingsPath)
	if err != nil {
		log.Fatalf("load settings: %v", err)
	}
	if v := os.Getenv("RECONCILER_DB"); v != "" {
		settings.DBPath = v
	}
	if v := os.Getenv("FORECAST_ADDR"); v != "" {
		settings.ForecastAddr = v
	}

	st, err := store.NewStore(settings.DBPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	client := forecast.NewClient(settings.ForecastAddr, settings.RequestTimeout())
	prom := metrics.NewProm("plan_reconciler")

	sess, err := session.New(st, client, settings, prom)
	if err != nil {
		log.Fatalf("open session: %v", err)
	}
	defer sess.Close()

	// Seeding is best-effort: the session starts on defaults when the
	// forecast service is unreachable and recovers on the next recompute.
	if err := sess.Seed(context.Background()); err != nil {
		log.Printf("[SESS] seed skipped: %v", err)
	}

	srv := &http.Server{
		Addr:    settings.ListenAddr,
		Handler: httpapi.NewServer(sess, prom.Handler()).Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		fmt.Printf("Plan reconciler listening on %s\n", settings.ListenAddr)
		fmt.Printf("  DB: %s | Forecast: %s\n", settings.DBPath, settings.ForecastAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// #endregion main

// #region helpers

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
