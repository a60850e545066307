package regulations

import "regexp"

// ocrPattern is one (match, replacement) pair in the deterministic OCR
// correction table. Order matters: later patterns may depend on earlier
// ones having already normalised a substring.
type ocrPattern struct {
	re          *regexp.Regexp
	replacement string
}

// ocrPatterns is the exact correction table ported from the original
// pipeline's ocr_correct.py, transliterated from Python re to Go regexp.
// It is data, not code, per SPEC_FULL.md's Design Notes: new confusions are
// added as table rows, never as new branches of logic.
var ocrPatterns = []ocrPattern{
	// digit/letter confusion inside "Pasal N" headings
	{regexp.MustCompile(`\bPasal\s+l(\d*)\b`), "Pasal 1$1"},
	{regexp.MustCompile(`\bPasal\s+I(\d)\b`), "Pasal 1$1"},
	{regexp.MustCompile(`\b1O\b`), "10"},
	{regexp.MustCompile(`\bO1\b`), "01"},

	// known uppercase word misreads
	{regexp.MustCompile(`\bFRESIDEN\b`), "PRESIDEN"},
	{regexp.MustCompile(`\bPRES1DEN\b`), "PRESIDEN"},
	{regexp.MustCompile(`\bREPUB!IK\b`), "REPUBLIK"},
	{regexp.MustCompile(`\bREPUBUK\b`), "REPUBLIK"},
	{regexp.MustCompile(`\bINDONES!A\b`), "INDONESIA"},
	{regexp.MustCompile(`\bINDONES1A\b`), "INDONESIA"},
	{regexp.MustCompile(`\bUND4NG\b`), "UNDANG"},
	{regexp.MustCompile(`\bUNDANG[\s\-]+UNDANG\b`), "UNDANG-UNDANG"},

	// section-keyword case fixes (scanners frequently drop letters to lowercase mid-run)
	{regexp.MustCompile(`(?i)\bmenimbang\s*:`), "Menimbang :"},
	{regexp.MustCompile(`(?i)\bmengingat\s*:`), "Mengingat :"},
	{regexp.MustCompile(`(?i)\bmemutuskan\s*:`), "MEMUTUSKAN :"},
	{regexp.MustCompile(`(?i)\bmenetapkan\s*:`), "MENETAPKAN :"},

	// ligatures and non-breaking whitespace
	{regexp.MustCompile(`\x{FB01}`), "fi"},
	{regexp.MustCompile(`\x{FB02}`), "fl"},
	{regexp.MustCompile(`\x{FB00}`), "ff"},
	{regexp.MustCompile(`\x{00A0}`), " "},

	// scanner debris: lines that are only punctuation, or long dash/underscore rules
	{regexp.MustCompile(`(?m)^\s*[.\-_=~]{1}\s*$`), ""},
	{regexp.MustCompile(`[\-_]{3,}`), ""},

	// blank-line collapse (run last, after debris removal may leave new blank runs)
	{regexp.MustCompile(`\n{3,}`), "\n\n"},
}

// CorrectOCRErrors applies the ordered substitution table once. The table
// is constructed so that correct(correct(t)) == correct(t): every rule
// either matches already-normalised text (no-op) or moves text strictly
// closer to its fixed point.
func CorrectOCRErrors(text string) string {
	for _, p := range ocrPatterns {
		text = p.re.ReplaceAllString(text, p.replacement)
	}
	return text
}
