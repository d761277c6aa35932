package common

import (
	"fmt"
	"strings"
)

const (
	// DefaultLabel is used when sanitizing an entity type leaves nothing.
	DefaultLabel = "Entity"
	// DefaultRelationType is used when sanitizing an edge type leaves nothing.
	DefaultRelationType = "RELATED_TO"
	// DefaultEntityName is used for nodes that arrive without a name.
	DefaultEntityName = "Unknown"
)

// SanitizeLabel turns a free-form entity type into a valid node label by
// keeping only alphanumeric and underscore characters. An empty result falls
// back to DefaultLabel, so the function is total.
func SanitizeLabel(entityType string) string {
	var b strings.Builder
	for _, r := range entityType {
		if isIdentRune(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return DefaultLabel
	}
	return b.String()
}

// SanitizeRelationType turns a free-form relationship type into
// UPPER_SNAKE_CASE: uppercased, spaces replaced by underscores, everything
// else outside [A-Z0-9_] stripped. An empty result falls back to
// DefaultRelationType.
func SanitizeRelationType(relType string) string {
	upper := strings.ToUpper(strings.ReplaceAll(relType, " ", "_"))
	var b strings.Builder
	for _, r := range upper {
		if isIdentRune(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return DefaultRelationType
	}
	return b.String()
}

func isIdentRune(r rune) bool {
	return r == '_' ||
		(r >= '0' && r <= '9') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z')
}

// Validate checks that every node and edge in the fragment carries the
// fields required for merging. A fragment with a node missing its id, or an
// edge missing source or target, is a schema violation from the extraction
// model and must not reach the store.
func (f *Fragment) Validate() error {
	for i, node := range f.Nodes {
		if strings.TrimSpace(node.ID) == "" {
			return fmt.Errorf("node %d: missing id", i)
		}
	}
	for i, edge := range f.Edges {
		if strings.TrimSpace(edge.Source) == "" {
			return fmt.Errorf("edge %d: missing source", i)
		}
		if strings.TrimSpace(edge.Target) == "" {
			return fmt.Errorf("edge %d: missing target", i)
		}
	}
	return nil
}
