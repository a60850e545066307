package models

// LegalChunk is a search-oriented text fragment regenerated deterministically
// from a Work's DocumentNode tree by BuildChunks. Chunks are always fully
// replaced as a unit for a Work (ReplaceWorkChunks), never patched in place.
// Metadata carries structured facts about the chunk's position in the
// regulation (node_type, plus the pasal number for pasal chunks) that the search API
// can filter on without re-parsing the heading text. The store computes the
// full-text-search key itself (legal_chunks.search_vector), so Metadata only
// needs to hold what a tsvector over Heading/Text can't answer.
type LegalChunk struct {
	ID         string                 `json:"id"`
	WorkID     string                 `json:"work_id"`
	NodeID     string                 `json:"node_id"`
	ChunkIndex int                    `json:"chunk_index"`
	Heading    string                 `json:"heading,omitempty"`
	Text       string                 `json:"text" validate:"required"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}
