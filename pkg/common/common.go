package common

// Chunk represents a contiguous slice of source text, the atomic retrieval
// unit of the system. Chunks are produced by an external splitter, stored
// together with their embedding, and linked to the entities extracted from
// them.
//
// Chunk ids are assigned by the caller and globally unique. The text is
// immutable after creation; the embedding may be backfilled later.
type Chunk struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Node is an entity record inside a Fragment, prior to merging. The Type
// field is free text from the extraction model and is sanitized into a
// label at merge time.
type Node struct {
	ID         string         `json:"id" jsonschema_description:"Unique identifier for the entity (e.g., 'department::computer_science', 'person::john_doe')"`
	Type       string         `json:"type" jsonschema_description:"Type of the entity (e.g., 'Department', 'DegreeProgram', 'Person', 'EligibilityCriteria')"`
	Name       string         `json:"name" jsonschema_description:"Human-readable name of the entity"`
	Properties map[string]any `json:"properties" jsonschema_description:"Additional attributes and properties of the entity"`
}

// Edge is a directed relationship record inside a Fragment. Source and
// Target reference node ids. The Type field is sanitized into
// UPPER_SNAKE_CASE at merge time.
type Edge struct {
	Source     string         `json:"source" jsonschema_description:"ID of the source entity"`
	Target     string         `json:"target" jsonschema_description:"ID of the target entity"`
	Type       string         `json:"type" jsonschema_description:"Type of relationship (UPPER_SNAKE_CASE)"`
	Properties map[string]any `json:"properties" jsonschema_description:"Attributes of the relationship"`
}

// Fragment is the transient output of one extraction call: the entities and
// relationships found in a single chunk of text. A fragment is never
// persisted as-is; it is validated and merged into the graph store.
type Fragment struct {
	Nodes []Node `json:"nodes" jsonschema_description:"List of nodes (entities) found in the text"`
	Edges []Edge `json:"edges" jsonschema_description:"List of edges (relationships) between nodes"`
}

// Entity is a merged graph node as read back from the store. Label is the
// sanitized type under which the node was stored.
type Entity struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties"`
}

// SearchResult is one hit of a vector search over chunk embeddings, ordered
// by similarity score descending.
type SearchResult struct {
	ChunkID string  `json:"chunk_id"`
	Text    string  `json:"text"`
	Score   float64 `json:"score"`
}
