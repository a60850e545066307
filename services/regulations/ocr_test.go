package regulations

import "testing"

func TestCorrectOCRErrors_FixesKnownConfusions(t *testing.T) {
	cases := map[string]string{
		"FRESIDEN REPUBUK INDONES1A": "PRESIDEN REPUBLIK INDONESIA",
		"Pasal l3":                   "Pasal 13",
		"menimbang:":                 "Menimbang :",
		"MEMUTUSKAN:":                "MEMUTUSKAN :",
	}

	for input, want := range cases {
		if got := CorrectOCRErrors(input); got != want {
			t.Errorf("CorrectOCRErrors(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestCorrectOCRErrors_Idempotent(t *testing.T) {
	inputs := []string{
		"FRESIDEN REPUBUK INDONES1A\n\n\n\nPasal l3 ayat (1)",
		"---\nMenimbang :\na. bahwa ...\n___",
		"already clean text with no OCR artifacts",
	}

	for _, input := range inputs {
		once := CorrectOCRErrors(input)
		twice := CorrectOCRErrors(once)
		if once != twice {
			t.Errorf("correction not idempotent for %q: once=%q twice=%q", input, once, twice)
		}
	}
}

func TestCorrectOCRErrors_CollapsesBlankLines(t *testing.T) {
	input := "line one\n\n\n\n\nline two"
	got := CorrectOCRErrors(input)
	want := "line one\n\nline two"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
