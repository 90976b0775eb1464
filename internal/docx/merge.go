package docx

import (
	"regexp"
	"strings"
)

// Word processors split visually contiguous text into multiple runs at
// autocorrect and spell-check boundaries, so a placeholder like
// {numero_proposta} often arrives as three or four <w:r> fragments. The
// merger collapses every paragraph that carries a template delimiter into a
// single run so the substitution scanner sees whole tokens.

var (
	paragraphRe = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>`)
	pOpenRe     = regexp.MustCompile(`^<w:p(?:\s[^>]*)?>`)
	pPrRe       = regexp.MustCompile(`(?s)<w:pPr(?:\s[^>]*)?>.*?</w:pPr>|<w:pPr\s*/>`)
	rPrRe       = regexp.MustCompile(`(?s)<w:rPr(?:\s[^>]*)?>(.*?)</w:rPr>`)
	textOrTabRe = regexp.MustCompile(`(?s)<w:t(?:\s[^>]*)?>(.*?)</w:t>|<w:tab\s*/>`)
)

// MergeRuns coalesces fragmented runs in every paragraph of documentXML that
// contains a `{` or `}` delimiter. Paragraphs with at most one text node, or
// whose concatenated text carries no delimiter, are returned byte-identical,
// which also makes the operation idempotent.
func MergeRuns(documentXML string) string {
	return paragraphRe.ReplaceAllStringFunc(documentXML, mergeParagraph)
}

func mergeParagraph(p string) string {
	if !strings.ContainsAny(p, "{}") {
		return p
	}

	var merged strings.Builder
	textNodes := 0
	for _, m := range textOrTabRe.FindAllStringSubmatch(p, -1) {
		if strings.HasPrefix(m[0], "<w:tab") {
			merged.WriteByte('\t')
			continue
		}
		textNodes++
		merged.WriteString(m[1])
	}
	text := merged.String()

	if textNodes <= 1 || !strings.ContainsAny(text, "{}") {
		return p
	}

	open := pOpenRe.FindString(p)
	if open == "" {
		return p
	}

	var sb strings.Builder
	sb.WriteString(open)
	sb.WriteString(pPrRe.FindString(p)) // block-level formatting survives
	sb.WriteString("<w:r>")
	sb.WriteString(firstRunProperties(p)) // run formatting copied from the first formatted run
	sb.WriteString(`<w:t xml:space="preserve">`)
	sb.WriteString(text)
	sb.WriteString(`</w:t></w:r></w:p>`)
	return sb.String()
}

// firstRunProperties returns the first non-empty <w:rPr> block of the
// paragraph's runs, or "" when every run is unformatted. The <w:pPr> block is
// skipped: its paragraph-mark <w:rPr> is not run formatting and is already
// kept with the preserved <w:pPr>.
func firstRunProperties(p string) string {
	p = pPrRe.ReplaceAllString(p, "")
	for _, m := range rPrRe.FindAllStringSubmatch(p, -1) {
		if strings.TrimSpace(m[1]) != "" {
			return m[0]
		}
	}
	return ""
}
