package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/crypto/bcrypt"

	"github.com/dukerupert/hearth/internal/database"
	"github.com/dukerupert/hearth/internal/logging"
	"github.com/dukerupert/hearth/internal/server"
	"github.com/dukerupert/hearth/internal/store"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := logging.Setup(os.Getenv("HEARTH_LOG_LEVEL"))

	port := os.Getenv("HEARTH_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("HEARTH_DB_PATH")
	if dbPath == "" {
		dbPath = "hearth.db"
	}

	location := time.Local
	if tz := os.Getenv("HEARTH_TZ"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			log.Fatalf("invalid HEARTH_TZ %q: %v", tz, err)
		}
		location = loc
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	srv := server.New(db, location, logger)

	if pin := os.Getenv("HEARTH_PANEL_PIN"); pin != "" {
		if err := seedPanelPIN(srv.SettingsStore(), pin); err != nil {
			log.Fatalf("failed to seed panel PIN: %v", err)
		}
	}

	// First refresh before serving so the panel never boots to an empty screen.
	refreshCtx, cancelRefresh := context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := srv.CalendarService().Refresh(refreshCtx); err != nil {
		logger.Warn("initial calendar refresh failed", "error", err)
	}
	cancelRefresh()

	schedule := os.Getenv("HEARTH_REFRESH_SCHEDULE")
	if schedule == "" {
		schedule = "@every 5m"
	}
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := srv.CalendarService().Refresh(ctx); err != nil {
			logger.Error("scheduled calendar refresh failed", "error", err)
		}
	}); err != nil {
		log.Fatalf("invalid HEARTH_REFRESH_SCHEDULE %q: %v", schedule, err)
	}
	if _, err := c.AddFunc("@hourly", srv.RateLimiter().Cleanup); err != nil {
		log.Fatalf("failed to schedule rate limiter cleanup: %v", err)
	}
	c.Start()
	defer c.Stop()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Hearth running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

// seedPanelPIN stores the PIN from the environment if none is configured yet.
// An existing PIN is never overwritten so panel-side changes survive restarts.
func seedPanelPIN(settings *store.SettingsStore, pin string) error {
	existing, err := settings.Get(store.SettingPanelPINHash)
	if err != nil {
		return err
	}
	if existing != "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return settings.Set(store.SettingPanelPINHash, string(hash))
}
