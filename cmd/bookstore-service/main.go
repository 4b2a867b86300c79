package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/jcmexdev/bookstore-sagas/internal/bookstore-service/app"
	"github.com/jcmexdev/bookstore-sagas/internal/bookstore-service/httpx"
	kvsqlite "github.com/jcmexdev/bookstore-sagas/internal/kvstore/sqlite"
	"github.com/jcmexdev/bookstore-sagas/internal/pkg/cache"
	"github.com/jcmexdev/bookstore-sagas/internal/pkg/telemetry"
)

func main() {
	telemetry.InitLogger("bookstore-service")

	ctx := context.Background()

	if shutdown, err := telemetry.SetupTracer(ctx, "bookstore-service"); err != nil {
		log.Printf("tracing disabled: %v", err)
	} else {
		defer shutdown(context.Background())
	}

	store, err := kvsqlite.Open(getEnv("BOOKSTORE_DB", "./data/bookstore.db"))
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	svc := app.NewService(store)
	if err := svc.Bootstrap(ctx); err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}

	var c cache.Cache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c = cache.NewRedisCache(addr, "bookstore-service")
	}

	handler := httpx.NewHandler(svc, c)
	addr := getEnv("BOOKSTORE_ADDR", ":9092")
	log.Printf("Bookstore service running on %s", addr)

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
