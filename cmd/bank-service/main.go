package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/jcmexdev/bookstore-sagas/internal/bank-service/app"
	"github.com/jcmexdev/bookstore-sagas/internal/bank-service/httpx"
	kvsqlite "github.com/jcmexdev/bookstore-sagas/internal/kvstore/sqlite"
	"github.com/jcmexdev/bookstore-sagas/internal/pkg/telemetry"
)

func main() {
	telemetry.InitLogger("bank-service")

	ctx := context.Background()

	if shutdown, err := telemetry.SetupTracer(ctx, "bank-service"); err != nil {
		log.Printf("tracing disabled: %v", err)
	} else {
		defer shutdown(context.Background())
	}

	store, err := kvsqlite.Open(getEnv("BANK_DB", "./data/bank.db"))
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	svc := app.NewService(store)
	if err := svc.Bootstrap(ctx); err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}

	handler := httpx.NewHandler(svc)
	addr := getEnv("BANK_ADDR", ":9093")
	log.Printf("Bank service running on %s", addr)

	if err := http.ListenAndServe(addr, httpx.NewRouter(handler)); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
