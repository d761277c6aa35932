package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uet-rag/prospectus/internal/config"
	"github.com/uet-rag/prospectus/internal/server"
	"github.com/uet-rag/prospectus/internal/util"
	"github.com/uet-rag/prospectus/pkg/common"
	"github.com/uet-rag/prospectus/pkg/graph"
	"github.com/uet-rag/prospectus/pkg/leaselock"
	"github.com/uet-rag/prospectus/pkg/logger"
	"github.com/uet-rag/prospectus/pkg/logger/console"
	storepgx "github.com/uet-rag/prospectus/pkg/store/pgx"

	gonanoid "github.com/matoous/go-nanoid/v2"

	_ "github.com/lib/pq"
)

func main() {
	filePath := flag.String("file", "", "path to a plain text document to ingest")
	backfill := flag.Bool("backfill", false, "recompute embeddings for chunks that are missing one")
	flag.Parse()

	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	if *filePath == "" && !*backfill {
		logger.Fatal("Nothing to do: pass -file or -backfill")
	}

	cfg, err := config.Load(util.GetEnvString("CONFIG_PATH", "config.yaml"))
	if err != nil {
		logger.Fatal("Failed to load config", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "err", err)
	}

	conn, err := server.NewDBPool(ctx)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()

	aiClient := server.NewAIClient()
	graphStore := storepgx.NewGraphDBStorageWithConnection(conn)

	embedDim := int(util.GetEnvNumeric("AI_EMBED_DIM", 768))
	if err := graphStore.EnsureVectorIndex(ctx, embedDim); err != nil {
		logger.Fatal("Failed to ensure vector index", "err", err)
	}

	extractor := graph.NewExtractor(aiClient,
		graph.WithRetryConfig(cfg.RetryConfig()),
		graph.WithEntityTypes(cfg.EntityTypes),
		graph.WithExtractionPrompt(cfg.Prompts.Extraction),
	)
	ingestor := graph.NewIngestor(aiClient, graphStore, extractor)

	// Only one ingest run at a time; concurrent runs would interleave merges.
	locks := leaselock.New(conn)
	err = locks.WithLease(ctx, "ingest", leaselock.Options{TTL: 10 * time.Minute}, func(ctx context.Context) error {
		if *backfill {
			updated, err := ingestor.BackfillEmbeddings(ctx)
			if err != nil {
				return err
			}
			logger.Info("Backfill complete", "updated", updated)
		}

		if *filePath != "" {
			chunks, err := loadChunks(*filePath, cfg.Chunking)
			if err != nil {
				return err
			}
			logger.Info("Ingesting document", "file", *filePath, "chunks", len(chunks))

			stats, err := ingestor.Ingest(ctx, chunks)
			if err != nil {
				return err
			}
			logger.Info("Ingestion complete",
				"chunks", stats.Chunks,
				"failed", stats.Failed,
				"skipped_merges", stats.SkippedMerges)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, leaselock.ErrBusy) {
			logger.Fatal("Another ingest run is in progress")
		}
		logger.Fatal("Ingestion failed", "err", err)
	}

	metrics := aiClient.GetMetrics()
	logger.Info("Model usage",
		"input_tokens", metrics.InputTokens,
		"output_tokens", metrics.OutputTokens,
		"total_tokens", metrics.TotalTokens,
		"duration_ms", metrics.DurationMs,
		"tokens_per_second", metrics.TokenPerSecond)
}

func loadChunks(path string, chunking config.ChunkingConfig) ([]common.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	texts, err := util.SplitTokens(string(data), chunking.Encoding, chunking.MaxTokens, chunking.OverlapTokens)
	if err != nil {
		return nil, err
	}

	chunks := make([]common.Chunk, 0, len(texts))
	for _, text := range texts {
		id, err := gonanoid.New()
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, common.Chunk{ID: id, Text: text})
	}
	return chunks, nil
}
