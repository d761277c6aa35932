package pgx

import (
	"context"
	"fmt"

	"github.com/uet-rag/prospectus/pkg/common"
)

// EntitiesMentionedIn returns the distinct entities linked to any of the
// given chunk ids through the mentions table.
func (s *GraphDBStorage) EntitiesMentionedIn(ctx context.Context, chunkIDs []string) ([]common.Entity, error) {
	if len(chunkIDs) == 0 {
		return nil, nil
	}

	rows, err := s.conn.Query(ctx, `
		SELECT DISTINCT e.id, e.label, e.name, e.properties
		FROM entities e
		JOIN mentions m ON m.entity_id = e.id
		WHERE m.chunk_id = ANY($1)
		ORDER BY e.id
	`, chunkIDs)
	if err != nil {
		return nil, fmt.Errorf("entities mentioned in chunks: %w", err)
	}
	defer rows.Close()

	entities := make([]common.Entity, 0)
	for rows.Next() {
		var e common.Entity
		if err := rows.Scan(&e.ID, &e.Label, &e.Name, &e.Properties); err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}
