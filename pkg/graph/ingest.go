package graph

import (
	"context"
	"fmt"

	"github.com/uet-rag/prospectus/pkg/ai"
	"github.com/uet-rag/prospectus/pkg/common"
	"github.com/uet-rag/prospectus/pkg/logger"
	"github.com/uet-rag/prospectus/pkg/store"
)

// Ingestor runs the chunk ingestion pipeline: embed, persist, extract, and
// merge into the knowledge graph. Chunks are processed sequentially so a
// failing chunk never blocks the ones after it.
type Ingestor struct {
	client    ai.Client
	store     store.GraphStore
	extractor *Extractor
}

// IngestStats summarizes an ingestion run.
type IngestStats struct {
	Chunks        int
	Failed        int
	SkippedMerges int
}

// NewIngestor creates an Ingestor wiring the AI client, graph store, and
// extractor together.
func NewIngestor(client ai.Client, graphStore store.GraphStore, extractor *Extractor) *Ingestor {
	return &Ingestor{
		client:    client,
		store:     graphStore,
		extractor: extractor,
	}
}

// IngestChunk processes a single chunk end to end. The chunk text and its
// embedding are upserted first, so a later extraction failure leaves the
// chunk searchable and the run re-runnable.
func (i *Ingestor) IngestChunk(ctx context.Context, chunk common.Chunk) (int, error) {
	embedding, err := i.client.GenerateEmbedding(ctx, chunk.Text)
	if err != nil {
		return 0, fmt.Errorf("embed chunk %s: %w", chunk.ID, err)
	}

	if err := i.store.UpsertChunk(ctx, chunk.ID, chunk.Text, embedding); err != nil {
		return 0, err
	}

	fragment, err := i.extractor.Extract(ctx, chunk.ID, chunk.Text)
	if err != nil {
		return 0, err
	}

	skipped, err := i.store.MergeFragment(ctx, fragment, chunk.ID)
	if err != nil {
		return skipped, err
	}

	logger.Debug("[Graph][IngestChunk] Chunk merged",
		"chunk", chunk.ID,
		"nodes", len(fragment.Nodes),
		"edges", len(fragment.Edges),
		"skipped", skipped)
	return skipped, nil
}

// Ingest processes chunks in order, logging and counting failures instead of
// aborting. Context errors stop the run immediately.
func (i *Ingestor) Ingest(ctx context.Context, chunks []common.Chunk) (IngestStats, error) {
	stats := IngestStats{Chunks: len(chunks)}

	for _, chunk := range chunks {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		skipped, err := i.IngestChunk(ctx, chunk)
		stats.SkippedMerges += skipped
		if err != nil {
			logger.Error("[Graph][Ingest] Chunk failed", "chunk", chunk.ID, "err", err)
			stats.Failed++
			continue
		}
	}
	return stats, nil
}

// BackfillEmbeddings computes and stores embeddings for every chunk that is
// missing one. Returns the number of chunks updated.
func (i *Ingestor) BackfillEmbeddings(ctx context.Context) (int, error) {
	chunks, err := i.store.ChunksWithoutEmbedding(ctx)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	logger.Info("[Graph][BackfillEmbeddings] Backfilling", "chunks", len(chunks))

	updated := 0
	for _, chunk := range chunks {
		if ctx.Err() != nil {
			return updated, ctx.Err()
		}

		embedding, err := i.client.GenerateEmbedding(ctx, chunk.Text)
		if err != nil {
			logger.Error("[Graph][BackfillEmbeddings] Embedding failed", "chunk", chunk.ID, "err", err)
			continue
		}
		if err := i.store.UpsertChunk(ctx, chunk.ID, chunk.Text, embedding); err != nil {
			logger.Error("[Graph][BackfillEmbeddings] Upsert failed", "chunk", chunk.ID, "err", err)
			continue
		}
		updated++
	}
	return updated, nil
}
