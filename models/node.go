package models

// NodeKind is the tagged variant for a DocumentNode's position in the
// hierarchical structure of a regulation. Kept as a closed Go type instead
// of a free-form string so the parser and loader can switch exhaustively.
type NodeKind string

const (
	NodeKindPreamble        NodeKind = "preamble"
	NodeKindBab             NodeKind = "bab"
	NodeKindBagian          NodeKind = "bagian"
	NodeKindParagraf        NodeKind = "paragraf"
	NodeKindPasal           NodeKind = "pasal"
	NodeKindAyat            NodeKind = "ayat"
	NodeKindContent         NodeKind = "content"
	NodeKindPenjelasanUmum  NodeKind = "penjelasan_umum"
	NodeKindPenjelasanPasal NodeKind = "penjelasan_pasal"
	NodeKindAturan          NodeKind = "aturan"
)

// chunkableKinds are the node kinds BuildChunks ever turns into a LegalChunk.
var chunkableKinds = map[NodeKind]bool{
	NodeKindPasal:           true,
	NodeKindPreamble:        true,
	NodeKindContent:         true,
	NodeKindPenjelasanUmum:  true,
	NodeKindPenjelasanPasal: true,
}

// IsChunkable reports whether this node kind produces search chunks.
func (k NodeKind) IsChunkable() bool {
	return chunkableKinds[k]
}

// DocumentNode is one node in a Work's hierarchical structure tree: BAB,
// Bagian, Paragraf, Pasal, Ayat, and the two elucidation (Penjelasan) kinds.
// Parent linkage is by ParentID only; nothing here owns a cyclic pointer
// back up the tree.
type DocumentNode struct {
	ID         string   `json:"id"`
	WorkID     string   `json:"work_id"`
	ParentID   *string  `json:"parent_id,omitempty"`
	Kind       NodeKind `json:"node_type" validate:"required"`
	Number     string   `json:"number,omitempty"`
	Heading    string   `json:"heading,omitempty"`
	Content    string   `json:"content,omitempty"`
	Path       string   `json:"path"`
	Depth      int      `json:"depth"`
	SortOrder  int      `json:"sort_order"`
}
