// Command ingest imports recipe pages into the external catalog that backs
// discover search.
//
// Usage:
//
//	ingest [-concurrency n] [-file urls.txt] [url ...]
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/windoze95/forkful-api/internal/ai"
	"github.com/windoze95/forkful-api/internal/config"
	"github.com/windoze95/forkful-api/internal/db"
	"github.com/windoze95/forkful-api/internal/logger"
	"github.com/windoze95/forkful-api/internal/repository"
	"github.com/windoze95/forkful-api/internal/service"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	concurrency := flag.Int("concurrency", 4, "pages fetched in parallel")
	file := flag.String("file", "", "file with one URL per line")
	flag.Parse()

	logger.Init(os.Getenv("GIN_MODE") != "release")
	defer logger.Sync()
	log := logger.Get()

	urls := flag.Args()
	if *file != "" {
		fromFile, err := readURLs(*file)
		if err != nil {
			log.Fatal("failed to read url file", zap.Error(err))
		}
		urls = append(urls, fromFile...)
	}
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "usage: ingest [-concurrency n] [-file urls.txt] [url ...]")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}
	if cfg.EnvVars.DatabaseUrl == "" {
		log.Fatal("$DATABASE_URL must be set")
	}

	database, err := db.New(cfg)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Text extraction is optional: without a key only schema.org pages import.
	var text ai.TextProvider
	if cfg.EnvVars.AnthropicAPIKey != "" {
		prompts, err := config.LoadPrompts("configs/prompts.yaml")
		if err != nil {
			log.Fatal("failed to load prompts", zap.Error(err))
		}
		text = ai.NewAnthropicProvider(cfg.EnvVars.AnthropicAPIKey, prompts)
	}

	catalog := service.NewCatalogService(repository.NewRecipeRepository(database), text)

	var created, updated, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*concurrency, 1))
	for _, u := range urls {
		g.Go(func() error {
			recipe, isNew, err := catalog.IngestURL(gctx, u)
			if err != nil {
				failed.Add(1)
				log.Warn("ingest failed", zap.String("url", u), zap.Error(err))
				return nil
			}
			if isNew {
				created.Add(1)
			} else {
				updated.Add(1)
			}
			log.Info("ingested", zap.String("url", u), zap.Uint("recipe_id", recipe.ID), zap.Bool("created", isNew))
			return nil
		})
	}
	_ = g.Wait()

	log.Info("ingest finished",
		zap.Int64("created", created.Load()),
		zap.Int64("updated", updated.Load()),
		zap.Int64("failed", failed.Load()),
	)
	if failed.Load() > 0 {
		os.Exit(1)
	}
}

func readURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}
