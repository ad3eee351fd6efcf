package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/crossroads-hq/crossroads-backend/internal/adapters/database"
	"github.com/crossroads-hq/crossroads-backend/internal/adapters/search"
	"github.com/crossroads-hq/crossroads-backend/internal/domain/repositories"
	"github.com/crossroads-hq/crossroads-backend/internal/infrastructure/clients/postgres"
	"github.com/crossroads-hq/crossroads-backend/internal/infrastructure/clients/typesense"
	"github.com/crossroads-hq/crossroads-backend/pkg/config"
)

const indexBatchSize = 500

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	var err error
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatalf("Invalid interval %q: %v", intervalValue, err)
		}
		if interval <= 0 {
			log.Fatalf("Interval must be greater than zero")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, reset); err != nil {
			log.Printf("Reindex failed: %v", err)
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Printf("Reindex complete. Next run in %s.", interval)

		select {
		case <-ctx.Done():
			log.Println("Reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, reset bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	businessRepo := database.NewBusinessAdapter(pgClient)

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	searchAdapter := search.NewTypesenseAdapter(tsClient)

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Println("Reset requested, deleting businesses collection")
		if err := searchAdapter.Reset(ctx); err != nil {
			log.Printf("Warning: failed to delete collection: %v", err)
		}
	}

	if err := searchAdapter.InitSchema(ctx); err != nil {
		return err
	}

	indexed := 0
	failed := 0
	offset := 0

	for {
		businesses, err := businessRepo.List(ctx, repositories.BusinessFilter{
			Limit:  indexBatchSize,
			Offset: offset,
		})
		if err != nil {
			return err
		}
		if len(businesses) == 0 {
			break
		}

		for _, business := range businesses {
			if business == nil {
				continue
			}
			if err := searchAdapter.Index(ctx, business); err != nil {
				log.Printf("Failed to index business %s: %v", business.ID, err)
				failed++
				continue
			}
			indexed++
		}

		log.Printf("Indexed %d businesses so far...", indexed)

		if len(businesses) < indexBatchSize {
			break
		}
		offset += indexBatchSize

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	log.Printf("Indexing complete: %d indexed, %d failed.", indexed, failed)
	return nil
}
