package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jcjuneja-hospital/triage-service/internal/assistant"
	"github.com/jcjuneja-hospital/triage-service/internal/auth"
	"github.com/jcjuneja-hospital/triage-service/internal/db"
	httpserver "github.com/jcjuneja-hospital/triage-service/internal/http"
	"github.com/jcjuneja-hospital/triage-service/internal/messaging"
	"github.com/jcjuneja-hospital/triage-service/internal/records"
	"github.com/jcjuneja-hospital/triage-service/internal/telemetry"
	"github.com/jcjuneja-hospital/triage-service/internal/triage"
)

func main() {
	ctx := context.Background()

	log.Println("triage-service starting...")

	// Initialize OpenTelemetry (fails gracefully when the collector is down)
	otelCfg := telemetry.LoadConfig()
	provider, err := telemetry.InitProvider(ctx, otelCfg)
	if err != nil {
		log.Printf("Warning: OpenTelemetry initialization failed: %v", err)
	}
	if provider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error during telemetry shutdown: %v", err)
			}
		}()
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Printf("Warning: failed to initialize metrics: %v", err)
		metrics = nil
	}

	// Record store: postgres-backed when reachable, memory-only otherwise.
	// An unreachable database never blocks patient intake.
	var kv records.KV
	database, err := db.Connect()
	if err != nil {
		log.Printf("Warning: database unavailable, running memory-only record store: %v", err)
	} else {
		defer database.Close()
		kvStore := db.NewKVStore(database)
		if err := kvStore.Migrate(ctx); err != nil {
			log.Printf("Warning: record store migration failed, running memory-only: %v", err)
		} else {
			kv = kvStore
		}
	}

	store := records.NewStore(kv)
	if err := store.Load(ctx); err != nil {
		log.Printf("Warning: could not load record history, starting empty: %v", err)
	} else {
		log.Printf("✓ Record store ready (%d records)", len(store.All()))
	}

	// Event publishing is best-effort: a down broker degrades to no events.
	publisher, err := messaging.NewPublisher()
	if err != nil {
		log.Printf("Warning: RabbitMQ unavailable, events will not be published: %v", err)
		publisher = nil
	} else {
		defer publisher.Close()
	}

	// Assistant client. A missing OPENAI_API_KEY surfaces as a configuration
	// error when an assessment starts, not here.
	aiClient := assistant.NewClientFromEnv()

	triageService := triage.NewService(aiClient, store, publisher, metrics)

	// Doctor portal auth
	authCfg := auth.LoadConfig()
	verifier := auth.NewVerifier(authCfg)
	if authCfg.Secret == "" {
		log.Println("Warning: AUTH_JWT_SECRET not set, doctor portal will reject all tokens")
	}

	perms := auth.DefaultPermissions()
	if path := os.Getenv("PERMISSIONS_FILE"); path != "" {
		loaded, err := auth.LoadPermissions(path)
		if err != nil {
			log.Printf("Warning: could not load permissions file %s, using defaults: %v", path, err)
		} else {
			perms = loaded
		}
	}

	router := httpserver.SetupRouter(triageService, store, verifier, perms, metrics)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      httpserver.CORSMiddleware(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		log.Printf("triage-service listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down triage-service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}
	log.Println("✓ Server stopped")
}
