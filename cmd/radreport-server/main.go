package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/osgrady/radreport/internal/genclient"
	"github.com/osgrady/radreport/internal/httpapi"
	"github.com/osgrady/radreport/internal/report"
	"github.com/osgrady/radreport/internal/reportstore"
	"github.com/osgrady/radreport/internal/telemetry"
)

func main() {
	dbFlag := flag.String("db", "", "path to SQLite archive (overrides DB_PATH env var)")
	flag.Parse()

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdown, err := telemetry.Setup(ctx, "radreport-server")
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("radreport telemetry_shutdown err=%v", err)
		}
	}()

	backend, err := genclient.NewAnthropicBackendFromEnv()
	if err != nil {
		log.Fatalf("backend: %v", err)
	}
	orch, err := report.NewOrchestrator(genclient.New(backend, genclient.DefaultConfig()), report.DefaultConfig())
	if err != nil {
		log.Fatalf("orchestrator: %v", err)
	}

	dbPath := *dbFlag
	if dbPath == "" {
		dbPath = os.Getenv("DB_PATH")
	}
	var store *reportstore.Store
	if dbPath != "" {
		store, err = reportstore.New(dbPath)
		if err != nil {
			log.Fatalf("failed to initialize archive (%s): %v", dbPath, err)
		}
		defer store.Close()
		log.Printf("using sqlite archive at %s", dbPath)
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: httpapi.NewServer(orch, store),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("radreport-server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Println("radreport-server stopped")
}
