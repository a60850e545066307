package regulations

import (
	"strings"
	"testing"

	"github.com/bantuaku/peraturan-ingest/models"
)

func TestBuildChunks_SkipsCukupJelas(t *testing.T) {
	nodes := []models.DocumentNode{
		{ID: "p1", Kind: models.NodeKindPasal, Number: "1", Content: "Isi pasal satu."},
		{ID: "pj1", Kind: models.NodeKindPenjelasanPasal, Number: "1", Content: "Cukup jelas."},
		{ID: "pj2", Kind: models.NodeKindPenjelasanPasal, Number: "2", Content: "Yang dimaksud adalah sesuatu."},
	}

	chunks := BuildChunks("Undang-Undang Test", nodes)

	for _, c := range chunks {
		if strings.Contains(strings.ToLower(c.Text), "cukup jelas") {
			t.Errorf("expected cukup-jelas penjelasan to be skipped, got chunk: %+v", c)
		}
	}

	found := false
	for _, c := range chunks {
		if c.NodeID == "pj2" {
			found = true
		}
	}
	if !found {
		t.Error("expected a chunk for the non-boilerplate penjelasan_pasal node")
	}
}

func TestBuildChunks_PasalChunkCarriesStructuredMetadata(t *testing.T) {
	nodes := []models.DocumentNode{
		{ID: "p1", Kind: models.NodeKindPasal, Number: "13", Content: "Isi pasal tiga belas."},
	}

	chunks := BuildChunks("Undang-Undang Test", nodes)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Metadata["node_type"] != string(models.NodeKindPasal) {
		t.Errorf("expected node_type metadata %q, got %v", models.NodeKindPasal, chunks[0].Metadata["node_type"])
	}
	if chunks[0].Metadata["pasal"] != "13" {
		t.Errorf("expected pasal metadata \"13\", got %v", chunks[0].Metadata["pasal"])
	}
}

func TestBuildChunks_FallsBackToWordCountWithoutPasalLevel(t *testing.T) {
	longText := strings.Repeat("kata ", chunkWordTarget*2+10)
	nodes := []models.DocumentNode{
		{ID: "c1", Kind: models.NodeKindContent, Content: longText},
	}

	chunks := BuildChunks("Peraturan Tanpa Struktur", nodes)

	if len(chunks) < 2 {
		t.Fatalf("expected word-count fallback to split into multiple chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if c.NodeID != "c1" {
			t.Errorf("expected fallback chunks to reference the content node, got %q", c.NodeID)
		}
	}
}

func TestBuildChunks_NonChunkableKindIgnored(t *testing.T) {
	nodes := []models.DocumentNode{
		{ID: "b1", Kind: models.NodeKindBab, Number: "I", Heading: "Ketentuan Umum"},
		{ID: "p1", Kind: models.NodeKindPasal, Number: "1", Content: "Isi pasal satu."},
	}

	chunks := BuildChunks("Title", nodes)

	for _, c := range chunks {
		if c.NodeID == "b1" {
			t.Error("expected bab node to produce no chunk, it is not chunkable")
		}
	}
	if len(chunks) != 1 {
		t.Errorf("expected exactly one chunk from the pasal node, got %d", len(chunks))
	}
}
