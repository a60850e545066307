package regulations

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestParseSlug_ExtractsTypeNumberYear(t *testing.T) {
	regType, number, year, ok := ParseSlug("uu-no-13-tahun-2003")
	if !ok {
		t.Fatal("expected slug to parse")
	}
	if regType != "UU" || number != "13" || year != "2003" {
		t.Errorf("got (%s, %s, %s), want (UU, 13, 2003)", regType, number, year)
	}
}

func TestParseSlug_RejectsUnrecognizedForm(t *testing.T) {
	if _, _, _, ok := ParseSlug("not-a-regulation-slug"); ok {
		t.Error("expected an unrecognized slug form to fail to parse")
	}
}

func TestFormalTitleFromSlug_UsesTypeNameAndAnchor(t *testing.T) {
	got := formalTitleFromSlug("uu-no-13-tahun-2003", "Ketenagakerjaan")
	want := "Undang-Undang Nomor 13 Tahun 2003 tentang Ketenagakerjaan"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFormalTitleFromSlug_NoAnchorOmitsTentangClause(t *testing.T) {
	got := formalTitleFromSlug("pp-no-5-tahun-2021", "")
	want := "Peraturan Pemerintah Nomor 5 Tahun 2021"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFormalTitleFromSlug_FallsBackToAnchorThenRawSlug(t *testing.T) {
	slug := "unparseable-slug-format"
	if got := formalTitleFromSlug(slug, "Some Anchor"); got != "Some Anchor" {
		t.Errorf("expected anchor fallback, got %q", got)
	}
	if got := formalTitleFromSlug(slug, ""); got != slug {
		t.Errorf("expected raw slug fallback, got %q", got)
	}
}

func TestParseTotalPages_HandlesThousandsSeparator(t *testing.T) {
	got := parseTotalPages("Menampilkan 1.234 Peraturan ditemukan")
	want := 62 // ceil(1234/20)
	if got != want {
		t.Errorf("got %d, want %d", got, want)
	}
}

func TestParseTotalPages_DefaultsToOneWhenUnparseable(t *testing.T) {
	if got := parseTotalPages("no count here"); got != 1 {
		t.Errorf("got %d, want 1", got)
	}
}

func TestExtractRegulationsFromPage_DedupsBySlug(t *testing.T) {
	html := `
	<html><body>
		<a href="/peraturan/uu-no-13-tahun-2003">UU No 13 Tahun 2003</a>
		<a href="/peraturan/uu-no-13-tahun-2003">duplicate anchor</a>
		<a href="/peraturan/pp-no-5-tahun-2021"></a>
	</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture html: %v", err)
	}

	regs := extractRegulationsFromPage(doc, "https://peraturan.go.id")
	if len(regs) != 2 {
		t.Fatalf("expected 2 deduped regulations, got %d", len(regs))
	}

	var sawEmptyTitleFallback bool
	for _, r := range regs {
		if r.slug == "pp-no-5-tahun-2021" {
			sawEmptyTitleFallback = r.title == "Peraturan Pemerintah Nomor 5 Tahun 2021"
		}
	}
	if !sawEmptyTitleFallback {
		t.Error("expected empty anchor text to fall back to a formal title built from the slug")
	}
}
