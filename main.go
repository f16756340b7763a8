package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jambase_sync/config"
	"jambase_sync/httputil"
	"jambase_sync/jambase"
	"jambase_sync/logging"
	"jambase_sync/scheduler"
	"jambase_sync/services"
	"jambase_sync/storage"
)

var (
	syncNow  = flag.Bool("sync", false, "Run incremental sync once and exit")
	fullSync = flag.Bool("full", false, "Run full sync once and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	logFile, err := logging.Setup("sync.log")
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting jambase_sync...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Loaded %d source configs", len(cfg.Sources))
	for id, src := range cfg.Sources {
		log.Printf("  - %s (%s)", src.Name, id)
	}

	src, ok := cfg.Sources["jambase"]
	if !ok {
		log.Fatal("No jambase source configured")
	}

	clients := httputil.NewClients()
	ctx := context.Background()

	// Entity store: direct Postgres when DATABASE_URL is set, otherwise the
	// Supabase REST backend.
	var entityStore services.EntityStore
	switch {
	case cfg.Database.URL != "":
		pgStore, err := storage.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		defer pgStore.Close()
		log.Printf("Connected to Postgres: %s", maskConnectionString(cfg.Database.URL))
		entityStore = pgStore
	case cfg.Supabase.URL != "":
		entityStore = storage.NewSupabaseStore(&cfg.Supabase, clients.Supabase)
		log.Printf("Using Supabase backend: %s", cfg.Supabase.URL)
	default:
		log.Fatal("No entity store configured: set DATABASE_URL or SUPABASE_URL")
	}

	// SQLite for operational data (runs, logs, watermarks)
	sqliteStore, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open SQLite: %v", err)
	}
	defer sqliteStore.Close()
	log.Printf("SQLite database: %s", cfg.DBPath)

	client := jambase.NewClient(src, cfg.Jambase.APIKey, clients.Jambase)
	svc := services.NewSyncService(entityStore)

	delay := time.Duration(cfg.Sync.DelayMS) * time.Millisecond
	if src.RateLimitMS > 0 {
		delay = time.Duration(src.RateLimitMS) * time.Millisecond
	}
	runner := services.NewRunner(client, svc, sqliteStore, src, delay)

	// Handle one-shot commands
	if *syncNow || *fullSync {
		log.Println("Running sync...")
		if err := runner.RunSync(ctx, *fullSync); err != nil {
			log.Fatalf("Sync failed: %v", err)
		}
		log.Println("Sync complete!")
		return
	}

	// Daemon mode
	sched := scheduler.New(cfg, runner)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	cancel()
	sched.Stop()
	log.Println("Goodbye!")
}

// maskConnectionString masks the password in a connection string for logging
func maskConnectionString(connStr string) string {
	start := 0
	for i := 0; i < len(connStr)-3; i++ {
		if connStr[i:i+3] == "://" {
			start = i + 3
			break
		}
	}
	if start == 0 {
		return connStr
	}
	for i := start; i < len(connStr); i++ {
		if connStr[i] == '@' {
			return connStr[:start] + "***" + connStr[i:]
		}
	}
	return connStr
}
