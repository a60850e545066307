package regulations

import (
	"strings"
	"testing"
)

func TestStripHeaderFooter_RemovesPageNumberNoise(t *testing.T) {
	input := "- 3 -\nIsi pasal yang sebenarnya.\nwww.peraturan.go.id\nHalaman 1 dari 10"
	got := stripHeaderFooter(input)

	if got == input {
		t.Error("expected header/footer noise to be stripped")
	}
	if got != "\nIsi pasal yang sebenarnya.\n" {
		t.Errorf("unexpected result: %q", got)
	}
}

func TestStripHeaderFooter_RemovesPresidenStampAndOCRVariants(t *testing.T) {
	input := "Isi pasal.\nPRESIDEN REPUBLIK INDONESIA\nFRESIDEN REPUEUK INDONESIA\nSK No 12345\nLanjutan isi."
	got := stripHeaderFooter(input)

	for _, noise := range []string{"PRESIDEN REPUBLIK INDONESIA", "FRESIDEN REPUEUK INDONESIA", "SK No 12345"} {
		if strings.Contains(got, noise) {
			t.Errorf("expected %q to be stripped, got %q", noise, got)
		}
	}
}

func TestNonWhitespaceLen(t *testing.T) {
	if n := nonWhitespaceLen("  a b\tc\n"); n != 3 {
		t.Errorf("got %d, want 3", n)
	}
	if n := nonWhitespaceLen("   \t\n\r"); n != 0 {
		t.Errorf("got %d, want 0", n)
	}
}

func TestJoinWithOverlapDedup_TrimsRepeatedTail(t *testing.T) {
	overlap := "berdasarkan ketentuan peraturan perundang-undangan yang berlaku di Indonesia"
	pages := []string{
		"halaman pertama isinya " + overlap,
		overlap + " dan halaman kedua melanjutkan isi.",
	}

	got := joinWithOverlapDedup(pages)
	if want := "halaman pertama isinya " + overlap + "\n dan halaman kedua melanjutkan isi."; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestJoinWithOverlapDedup_NoOverlapJoinsPlainly(t *testing.T) {
	pages := []string{"first page text", "second page text"}
	got := joinWithOverlapDedup(pages)
	want := "first page text\nsecond page text"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCollapseBlankLines(t *testing.T) {
	got := collapseBlankLines("a\n\n\n\n\nb")
	if got != "a\n\nb" {
		t.Errorf("got %q", got)
	}
}

func TestClassifyQuality_BornDigital(t *testing.T) {
	quality, confidence := classifyQuality(10, 10, 0)
	if quality != PDFQualityBornDigital {
		t.Errorf("got %v, want born_digital", quality)
	}
	if confidence != 1.0 {
		t.Errorf("got confidence %f, want 1.0", confidence)
	}
}

func TestClassifyQuality_ImageOnly(t *testing.T) {
	quality, _ := classifyQuality(10, 0, 10)
	if quality != PDFQualityImageOnly {
		t.Errorf("got %v, want image_only", quality)
	}
}

func TestClassifyQuality_ScannedClean(t *testing.T) {
	quality, _ := classifyQuality(10, 5, 0)
	if quality != PDFQualityScannedClean {
		t.Errorf("got %v, want scanned_clean", quality)
	}
}

func TestClassifyQuality_ZeroPages(t *testing.T) {
	quality, confidence := classifyQuality(0, 0, 0)
	if quality != PDFQualityImageOnly || confidence != 0 {
		t.Errorf("got (%v, %f), want (image_only, 0)", quality, confidence)
	}
}

func TestLooksLikeJunkPDF_DetectsHTMLErrorPage(t *testing.T) {
	if !LooksLikeJunkPDF([]byte("<html><body>Access Denied</body></html>")) {
		t.Error("expected HTML error page to be flagged as junk")
	}
}

func TestLooksLikeJunkPDF_AcceptsRealPDFHeader(t *testing.T) {
	if LooksLikeJunkPDF([]byte("%PDF-1.4\n%...binary content...")) {
		t.Error("expected a real PDF header to not be flagged as junk")
	}
}
