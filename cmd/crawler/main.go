// Package main is the entry point for the feed crawler CLI.
//
// The crawler fetches the configured RSS feeds, embeds each article, and
// ingests it into the news partition of a local vector index. With -interval
// it keeps crawling on a schedule until interrupted; without it the crawl
// runs once and exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pai-labs/engine/internal/config"
	"github.com/pai-labs/engine/internal/embed"
	"github.com/pai-labs/engine/internal/middleware"
	"github.com/pai-labs/engine/internal/news"
	sig "github.com/pai-labs/engine/internal/signal"
	"github.com/pai-labs/engine/internal/stats"
	"github.com/pai-labs/engine/internal/vector"
)

func main() {
	configFile := flag.String("config", "", "path to YAML config file")
	interval := flag.Duration("interval", 0, "crawl interval (0 = run once and exit)")
	dryRun := flag.Bool("dry-run", false, "fetch and print articles without embedding or storing")
	help := flag.Bool("help", false, "display help message")
	flag.Parse()

	if *help {
		fmt.Println("PAI Intelligence Engine Feed Crawler")
		fmt.Println()
		fmt.Println("Usage: crawler [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	// A dry run only fetches feeds, so missing API keys are tolerated.
	cfg, errs := config.Load(*configFile)
	if cfg == nil || (len(errs) > 0 && !*dryRun) {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, "config:", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	feeds, err := config.LoadFeeds(cfg.FeedsFile)
	if err != nil {
		logger.Error("failed to load feed sources", "error", err, "file", cfg.FeedsFile)
		os.Exit(1)
	}
	logger.Info("loaded feed sources", "count", len(feeds))

	crawler := news.NewCrawler(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *dryRun {
		articles := crawler.FetchAll(ctx, feeds, cfg.CrawlLimitPerFeed)
		printArticles(os.Stdout, articles)
		logger.Info("dry run complete", "fetched", len(articles))
		return
	}

	embedder := embed.NewGeminiEmbedder(cfg.GeminiAPIKey, logger, embed.WithModel(cfg.GeminiModel))
	index := vector.NewChromemIndex()
	ingestStats := stats.NewIngestStats()
	signals := sig.NewService(embedder, index, logger, sig.NewMetrics(), ingestStats)

	crawl := func() {
		articles := crawler.FetchAll(ctx, feeds, cfg.CrawlLimitPerFeed)
		processed := signals.Ingest(ctx, articles)
		ingestStats.RecordCrawl(time.Now())
		logger.Info("crawl complete", "fetched", len(articles), "processed", processed)
		ingestStats.LogSummary(logger, "crawler")
	}

	crawl()
	if *interval <= 0 {
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("crawler stopped")
			return
		case <-ticker.C:
			crawl()
		}
	}
}

// printArticles writes one source/title/link block per article for dry runs.
func printArticles(w io.Writer, articles []news.NewsArticle) {
	for _, a := range articles {
		fmt.Fprintf(w, "[%s] %s\n    %s\n", a.Source, a.Title, a.URL)
	}
}
