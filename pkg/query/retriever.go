package query

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/uet-rag/prospectus/pkg/ai"
	"github.com/uet-rag/prospectus/pkg/common"
	"github.com/uet-rag/prospectus/pkg/logger"
	"github.com/uet-rag/prospectus/pkg/store"
)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 3

// Result is the outcome of a hybrid search: the assembled context string,
// the ids of the chunks it was built from in similarity order, and whether
// graph enrichment was degraded by an entity lookup failure.
type Result struct {
	Context  string
	Sources  []string
	Degraded bool
}

// HybridRetriever combines vector search over chunks with graph enrichment:
// entities mentioned in the retrieved chunks are appended to the context.
type HybridRetriever struct {
	client ai.Client
	store  store.GraphStore
	topK   int
}

type RetrieverOption func(*HybridRetriever)

// WithTopK overrides the number of chunks retrieved per question.
func WithTopK(topK int) RetrieverOption {
	return func(r *HybridRetriever) {
		if topK > 0 {
			r.topK = topK
		}
	}
}

// NewHybridRetriever creates a HybridRetriever over the given client and store.
func NewHybridRetriever(client ai.Client, graphStore store.GraphStore, opts ...RetrieverOption) *HybridRetriever {
	r := &HybridRetriever{
		client: client,
		store:  graphStore,
		topK:   DefaultTopK,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Search embeds the question, retrieves the most similar chunks, and enriches
// them with the entities mentioned in those chunks. An empty result set
// yields an empty context, not an error. A failing entity lookup degrades the
// result to chunks only.
func (r *HybridRetriever) Search(ctx context.Context, question string) (Result, error) {
	embedding, err := r.client.GenerateEmbedding(ctx, question)
	if err != nil {
		return Result{}, fmt.Errorf("embed question: %w", err)
	}

	hits, err := r.store.VectorSearch(ctx, embedding, r.topK)
	if err != nil {
		return Result{}, fmt.Errorf("vector search: %w", err)
	}
	if len(hits) == 0 {
		return Result{}, nil
	}

	contextParts := make([]string, 0, len(hits)+1)
	sources := make([]string, 0, len(hits))
	for _, hit := range hits {
		sources = append(sources, hit.ChunkID)
		contextParts = append(contextParts, fmt.Sprintf(
			"--- Document Chunk (ID: %s, Score: %.2f) ---\n%s",
			hit.ChunkID, hit.Score, hit.Text,
		))
	}

	result := Result{Sources: sources}

	entities, err := r.store.EntitiesMentionedIn(ctx, sources)
	if err != nil {
		logger.Error("[Query][Search] Error retrieving linked entities", "err", err)
		result.Degraded = true
	} else if len(entities) > 0 {
		contextParts = append(contextParts, formatEntities(entities))
	}

	result.Context = strings.Join(contextParts, "\n\n")
	return result, nil
}

// formatEntities renders the entity section of the context. Entities are
// deduplicated by display name, first occurrence wins.
func formatEntities(entities []common.Entity) string {
	var b strings.Builder
	b.WriteString("\n--- Key Entities Mentioned in Context ---")

	seen := make(map[string]bool, len(entities))
	for _, e := range entities {
		name := e.Name
		if name == "" {
			name = e.ID
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		b.WriteString(fmt.Sprintf("\nEntity: %s | Details: %s", name, formatEntityDetails(e)))
	}
	return b.String()
}

func formatEntityDetails(e common.Entity) string {
	keys := make([]string, 0, len(e.Properties))
	for k := range e.Properties {
		switch k {
		case "embedding", "text", "id":
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+2)
	if e.Label != "" {
		parts = append(parts, fmt.Sprintf("label: %s", e.Label))
	}
	if e.Name != "" {
		parts = append(parts, fmt.Sprintf("name: %s", e.Name))
	}
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, e.Properties[k]))
	}
	return strings.Join(parts, ", ")
}
