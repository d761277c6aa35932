package store

import (
	"context"

	"github.com/uet-rag/prospectus/pkg/common"
)

// GraphStore defines the interface for persisting and querying the knowledge
// graph and its source chunks. It covers chunk upserts with embeddings,
// idempotent merging of extracted graph fragments, vector similarity search,
// and entity lookups by mentioning chunk.
type GraphStore interface {
	// UpsertChunk stores a document chunk and its embedding. Re-running with
	// the same id overwrites text and embedding in place. A nil embedding
	// keeps any embedding already stored for the chunk.
	UpsertChunk(ctx context.Context, id string, text string, embedding []float32) error

	// EnsureVectorIndex pins the embedding column to the given dimension and
	// creates the similarity index if it does not exist yet.
	EnsureVectorIndex(ctx context.Context, dim int) error

	// MergeFragment merges an extracted fragment into the graph, linking each
	// node to the chunk it was extracted from. Items that fail to merge are
	// skipped individually; the returned count reports how many were skipped.
	MergeFragment(ctx context.Context, fragment *common.Fragment, chunkID string) (int, error)

	// VectorSearch returns the topK chunks most similar to the embedding,
	// ordered by descending similarity score.
	VectorSearch(ctx context.Context, embedding []float32, topK int) ([]common.SearchResult, error)

	// EntitiesMentionedIn returns the distinct entities linked to any of the
	// given chunk ids.
	EntitiesMentionedIn(ctx context.Context, chunkIDs []string) ([]common.Entity, error)

	// ChunksWithoutEmbedding returns all chunks whose embedding is missing,
	// for backfill runs.
	ChunksWithoutEmbedding(ctx context.Context) ([]common.Chunk, error)
}
