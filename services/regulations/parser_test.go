package regulations

import (
	"strings"
	"testing"

	"github.com/bantuaku/peraturan-ingest/models"
)

const sampleLaw = `UNDANG-UNDANG REPUBLIK INDONESIA
NOMOR 13 TAHUN 2003
TENTANG KETENAGAKERJAAN

BAB I
KETENTUAN UMUM

Pasal 1
Dalam Undang-Undang ini yang dimaksud dengan:
(1) Ketenagakerjaan adalah segala hal yang berhubungan dengan tenaga kerja.
(2) Pekerja adalah setiap orang yang bekerja.

BAB II
LANDASAN, ASAS, DAN TUJUAN

Bagian Kesatu
Landasan

Pasal 2
Pembangunan ketenagakerjaan berdasarkan Pancasila.

PENJELASAN

I. UMUM
Undang-Undang ini disusun untuk memberi perlindungan.

II. PASAL DEMI PASAL

Pasal 1
Cukup jelas.

Pasal 2
Yang dimaksud dengan "Pancasila" adalah dasar negara.
`

func TestParseStructure_BuildsHierarchy(t *testing.T) {
	nodes := ParseStructure(sampleLaw)

	if CountPasals(nodes) != 2 {
		t.Fatalf("expected 2 pasal nodes, got %d", CountPasals(nodes))
	}

	var babCount, ayatCount, penjelasanUmumCount, penjelasanPasalCount int
	for _, n := range nodes {
		switch n.Kind {
		case models.NodeKindBab:
			babCount++
		case models.NodeKindAyat:
			ayatCount++
		case models.NodeKindPenjelasanUmum:
			penjelasanUmumCount++
		case models.NodeKindPenjelasanPasal:
			penjelasanPasalCount++
		}
	}

	if babCount != 2 {
		t.Errorf("expected 2 bab nodes, got %d", babCount)
	}
	if ayatCount != 2 {
		t.Errorf("expected 2 ayat nodes under pasal 1, got %d", ayatCount)
	}
	if penjelasanUmumCount == 0 {
		t.Error("expected at least one penjelasan_umum node")
	}
	if penjelasanPasalCount != 2 {
		t.Errorf("expected 2 penjelasan_pasal nodes, got %d", penjelasanPasalCount)
	}
}

func TestParseStructure_SortOrderMonotonic(t *testing.T) {
	nodes := ParseStructure(sampleLaw)

	for i := 1; i < len(nodes); i++ {
		if nodes[i].SortOrder <= nodes[i-1].SortOrder {
			t.Fatalf("sort_order not strictly increasing at index %d: %d <= %d",
				i, nodes[i].SortOrder, nodes[i-1].SortOrder)
		}
	}
}

func TestParseStructure_NoMarkersFallsBackToContent(t *testing.T) {
	nodes := ParseStructure("just some unstructured plain text with no markers at all that is long enough")

	if len(nodes) != 1 || nodes[0].Kind != models.NodeKindContent {
		t.Fatalf("expected a single content fallback node, got %+v", nodes)
	}
}

func TestFixRomanPasals_SkipsAmendmentLaws(t *testing.T) {
	text := "UNDANG-UNDANG TENTANG Perubahan Atas Undang-Undang Nomor 1\n\nPasal I\nIsi pasal I.\n\nPasal II\nIsi pasal II."
	got := fixRomanPasals(text)
	if !strings.Contains(got, "Pasal I\n") {
		t.Errorf("amendment law should not have its roman pasal numbers rewritten, got: %s", got)
	}
}

func TestFixRomanPasals_ConvertsBeforeAturanPeralihan(t *testing.T) {
	text := "Pasal IV\nisi.\n\nATURAN PERALIHAN\n\nPasal II\nisi peralihan."
	got := fixRomanPasals(text)
	if !strings.Contains(got, "Pasal 4") {
		t.Errorf("roman pasal before ATURAN PERALIHAN should convert to arabic, got: %s", got)
	}
	if !strings.Contains(got, "Pasal II\n") {
		t.Errorf("roman pasal inside ATURAN PERALIHAN should stay roman, got: %s", got)
	}
}

func TestSplitAyat_DedupsFirstWins(t *testing.T) {
	body := "(1) pertama\n(1) duplikat\n(2) kedua"
	_, ayats := splitAyat(body, "")

	if len(ayats) != 2 {
		t.Fatalf("expected 2 deduped ayat entries, got %d", len(ayats))
	}
	if ayats[0].content != "pertama" {
		t.Errorf("expected first occurrence to win, got %q", ayats[0].content)
	}
}
