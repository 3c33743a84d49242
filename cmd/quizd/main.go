package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/mind-engage/practice-exam/internal/api/http"
	"github.com/mind-engage/practice-exam/internal/catalog"
	"github.com/mind-engage/practice-exam/internal/config"
	"github.com/mind-engage/practice-exam/internal/db"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := catalog.NewSQLStore(dbh)

	// --- Seed ---
	if cfg.SeedDir != "" {
		n, err := catalog.ImportDir(ctx, store, cfg.SeedDir)
		if err != nil {
			log.Fatalf("seed %s: %v", cfg.SeedDir, err)
		}
		log.Printf("seeded %d quiz(zes) from %s", n, cfg.SeedDir)
	}

	// --- Router ---
	r := api.NewRouter(store, api.RouterOptions{
		CORSOrigins: cfg.CORSOrigins,
		DB:          dbh,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(srv.ListenAndServe())
}
