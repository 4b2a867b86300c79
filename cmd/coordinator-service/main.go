package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/jcmexdev/bookstore-sagas/internal/coordinator"
	"github.com/jcmexdev/bookstore-sagas/internal/coordinator/client"
	"github.com/jcmexdev/bookstore-sagas/internal/coordinator/httpx"
	sagasqlite "github.com/jcmexdev/bookstore-sagas/internal/coordinator/sagalog/sqlite"
	"github.com/jcmexdev/bookstore-sagas/internal/pkg/telemetry"
)

func main() {
	telemetry.InitLogger("coordinator-service")

	ctx := context.Background()

	if shutdown, err := telemetry.SetupTracer(ctx, "coordinator-service"); err != nil {
		log.Printf("tracing disabled: %v", err)
	} else {
		defer shutdown(context.Background())
	}

	sagaRepo, err := sagasqlite.Open(getEnv("SAGALOG_DB", "./data/saga.db"))
	if err != nil {
		log.Fatalf("failed to open saga log: %v", err)
	}
	defer sagaRepo.Close()

	bookstore := client.NewBookstoreClient(getEnv("BOOKSTORE_URL", "http://localhost:9092"))
	bank := client.NewBankClient(getEnv("BANK_URL", "http://localhost:9093"))

	coord := coordinator.New(bookstore, bank, sagaRepo)
	handler := httpx.NewHandler(coord, sagaRepo)

	addr := getEnv("COORDINATOR_ADDR", ":8080")
	log.Printf("Coordinator service running on %s", addr)

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
