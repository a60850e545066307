package regulations

import (
	"fmt"
	"strings"

	"github.com/bantuaku/peraturan-ingest/models"
)

const chunkWordTarget = 300

// "cukup jelas" is the Indonesian legal boilerplate for "no explanation
// needed" and carries no search value, so penjelasan_pasal nodes whose
// content is only that phrase produce no chunk.
func isCukupJelas(content string) bool {
	normalized := strings.ToLower(strings.TrimSpace(content))
	normalized = strings.Trim(normalized, ".")
	return normalized == "cukup jelas"
}

// BuildChunks regenerates a Work's LegalChunk set deterministically from its
// DocumentNode tree. Chunking never touches the node tree itself: it is a
// pure projection, always replaced as a whole by Store.ReplaceWorkChunks.
// Grounded on create_chunks in the original loader (load_to_supabase.py).
func BuildChunks(workTitle string, nodes []models.DocumentNode) []models.LegalChunk {
	var chunks []models.LegalChunk
	index := 0

	add := func(nodeID, heading, text string, metadata map[string]interface{}) {
		if strings.TrimSpace(text) == "" {
			return
		}
		chunks = append(chunks, models.LegalChunk{
			NodeID: nodeID, ChunkIndex: index, Heading: heading, Text: text, Metadata: metadata,
		})
		index++
	}

	hasPasalLevel := false

	for _, n := range nodes {
		if !n.Kind.IsChunkable() {
			continue
		}

		switch n.Kind {
		case models.NodeKindPasal:
			hasPasalLevel = true
			heading := fmt.Sprintf("Pasal %s", n.Number)
			text := fmt.Sprintf("%s\n%s\n%s", workTitle, heading, n.Content)
			add(n.ID, heading, text, map[string]interface{}{
				"node_type": string(n.Kind), "pasal": n.Number,
			})

		case models.NodeKindPenjelasanPasal:
			if isCukupJelas(n.Content) {
				continue
			}
			heading := fmt.Sprintf("Penjelasan Pasal %s", n.Number)
			text := fmt.Sprintf("%s\n%s\n%s", workTitle, heading, n.Content)
			add(n.ID, heading, text, map[string]interface{}{
				"node_type": string(n.Kind), "pasal": n.Number,
			})

		case models.NodeKindPenjelasanUmum:
			heading := n.Heading
			if heading == "" {
				heading = "Penjelasan Umum"
			}
			text := fmt.Sprintf("%s\n%s\n%s", workTitle, heading, n.Content)
			add(n.ID, heading, text, map[string]interface{}{"node_type": string(n.Kind)})

		case models.NodeKindPreamble, models.NodeKindContent:
			// handled below as a fallback only when no pasal-level chunk exists
		}
	}

	if hasPasalLevel {
		return chunks
	}

	// Fallback: no pasal-level structure was parsed (malformed or heavily
	// OCR-damaged document). Chunk the full text by word count instead of
	// producing zero chunks.
	chunks = nil
	index = 0
	for _, n := range nodes {
		if n.Kind != models.NodeKindPreamble && n.Kind != models.NodeKindContent {
			continue
		}
		for _, part := range chunkByWordCount(n.Content, chunkWordTarget) {
			add(n.ID, workTitle, fmt.Sprintf("%s\n%s", workTitle, part), map[string]interface{}{"node_type": string(n.Kind)})
		}
	}

	return chunks
}

func chunkByWordCount(text string, wordsPerChunk int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	for i := 0; i < len(words); i += wordsPerChunk {
		end := i + wordsPerChunk
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}
