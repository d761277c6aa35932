package pgx

import (
	"context"
	"fmt"

	"github.com/uet-rag/prospectus/pkg/common"
	"github.com/uet-rag/prospectus/pkg/logger"
)

// MergeFragment merges an extracted fragment into the graph. Nodes are merged
// by id with properties combined over existing ones and, when chunkID is
// non-empty, linked to the chunk they were extracted from. Edges are merged
// by (source, target, type).
//
// Each item is merged independently: a failing node or edge is logged and
// skipped without aborting the rest of the fragment. The returned count is
// the number of skipped items.
func (s *GraphDBStorage) MergeFragment(ctx context.Context, fragment *common.Fragment, chunkID string) (int, error) {
	if fragment == nil {
		return 0, nil
	}

	skipped := 0
	for _, node := range fragment.Nodes {
		if err := s.mergeNode(ctx, node, chunkID); err != nil {
			logger.Warn("[Store][MergeFragment] Skipping node",
				"node", node.ID, "chunk", chunkID, "err", err)
			skipped++
		}
	}
	for _, edge := range fragment.Edges {
		if err := s.mergeEdge(ctx, edge); err != nil {
			logger.Warn("[Store][MergeFragment] Skipping edge",
				"source", edge.Source, "target", edge.Target, "chunk", chunkID, "err", err)
			skipped++
		}
	}
	return skipped, nil
}

func (s *GraphDBStorage) mergeNode(ctx context.Context, node common.Node, chunkID string) error {
	if node.ID == "" {
		return fmt.Errorf("node has no id")
	}

	label := common.SanitizeLabel(node.Type)
	name := node.Name
	if name == "" {
		name = common.DefaultEntityName
	}
	props := node.Properties
	if props == nil {
		props = map[string]any{}
	}

	_, err := s.conn.Exec(ctx, `
		INSERT INTO entities (id, label, name, properties)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET label = EXCLUDED.label,
		    name = EXCLUDED.name,
		    properties = entities.properties || EXCLUDED.properties
	`, node.ID, label, name, props)
	if err != nil {
		return fmt.Errorf("merge entity: %w", err)
	}

	if chunkID == "" {
		return nil
	}
	_, err = s.conn.Exec(ctx, `
		INSERT INTO mentions (entity_id, chunk_id)
		VALUES ($1, $2)
		ON CONFLICT (entity_id, chunk_id) DO NOTHING
	`, node.ID, chunkID)
	if err != nil {
		return fmt.Errorf("link mention: %w", err)
	}
	return nil
}

func (s *GraphDBStorage) mergeEdge(ctx context.Context, edge common.Edge) error {
	if edge.Source == "" || edge.Target == "" {
		return fmt.Errorf("edge has no source or target")
	}

	relType := common.SanitizeRelationType(edge.Type)
	props := edge.Properties
	if props == nil {
		props = map[string]any{}
	}

	// The foreign keys on source and target reject edges whose endpoints
	// were not extracted as nodes; those count as skipped.
	_, err := s.conn.Exec(ctx, `
		INSERT INTO relationships (source, target, type, properties)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (source, target, type) DO UPDATE
		SET properties = relationships.properties || EXCLUDED.properties
	`, edge.Source, edge.Target, relType, props)
	if err != nil {
		return fmt.Errorf("merge relationship: %w", err)
	}
	return nil
}
