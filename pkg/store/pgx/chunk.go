package pgx

import (
	"context"
	"fmt"

	"github.com/uet-rag/prospectus/internal/util"
	"github.com/uet-rag/prospectus/pkg/common"
	"github.com/uet-rag/prospectus/pkg/logger"

	"github.com/pgvector/pgvector-go"
)

// UpsertChunk stores a document chunk and its embedding. A nil embedding
// keeps whatever embedding the chunk already has, so re-ingesting text does
// not wipe out previously computed vectors.
func (s *GraphDBStorage) UpsertChunk(ctx context.Context, id string, text string, embedding []float32) error {
	text = util.SanitizePostgresText(text)

	var vec *pgvector.Vector
	if embedding != nil {
		v := pgvector.NewVector(embedding)
		vec = &v
	}

	_, err := s.conn.Exec(ctx, `
		INSERT INTO chunks (id, text, embedding)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET text = EXCLUDED.text,
		    embedding = COALESCE(EXCLUDED.embedding, chunks.embedding)
	`, id, text, vec)
	if err != nil {
		return fmt.Errorf("upsert chunk %s: %w", id, err)
	}
	return nil
}

// EnsureVectorIndex pins the embedding column to the given dimension and
// creates the HNSW similarity index if it does not exist yet. Safe to call
// on every startup.
func (s *GraphDBStorage) EnsureVectorIndex(ctx context.Context, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("invalid embedding dimension: %d", dim)
	}

	_, err := s.conn.Exec(ctx, fmt.Sprintf(
		`ALTER TABLE chunks ALTER COLUMN embedding TYPE vector(%d)`, dim,
	))
	if err != nil {
		return fmt.Errorf("pin embedding dimension: %w", err)
	}

	_, err = s.conn.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS chunks_embedding_idx
		ON chunks USING hnsw (embedding vector_cosine_ops)
	`)
	if err != nil {
		return fmt.Errorf("create vector index: %w", err)
	}

	logger.Debug("[Store][EnsureVectorIndex] Vector index ready", "dim", dim)
	return nil
}

// VectorSearch returns the topK chunks most similar to the embedding, ordered
// by descending cosine similarity.
func (s *GraphDBStorage) VectorSearch(ctx context.Context, embedding []float32, topK int) ([]common.SearchResult, error) {
	if topK <= 0 {
		return nil, nil
	}

	rows, err := s.conn.Query(ctx, `
		SELECT id, text, 1 - (embedding <=> $1) AS score
		FROM chunks
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2
	`, pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer rows.Close()

	results := make([]common.SearchResult, 0, topK)
	for rows.Next() {
		var r common.SearchResult
		if err := rows.Scan(&r.ChunkID, &r.Text, &r.Score); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ChunksWithoutEmbedding returns all chunks whose embedding is missing.
func (s *GraphDBStorage) ChunksWithoutEmbedding(ctx context.Context) ([]common.Chunk, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT id, text
		FROM chunks
		WHERE embedding IS NULL
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list chunks without embedding: %w", err)
	}
	defer rows.Close()

	chunks := make([]common.Chunk, 0)
	for rows.Next() {
		var c common.Chunk
		if err := rows.Scan(&c.ID, &c.Text); err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}
