package docx

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/CocotaJobs/dealexpress-sub000/internal/docgen"
)

// maxTagLen bounds the tag excerpt quoted in errors so a damaged template
// cannot leak arbitrary payloads into user-facing messages.
const maxTagLen = 60

// TagError reports an unresolved or structurally invalid template tag.
type TagError struct {
	Tag string
}

func (e *TagError) Error() string {
	return fmt.Sprintf("tag inválida no modelo: %q", truncateTag(e.Tag))
}

func truncateTag(tag string) string {
	if len(tag) > maxTagLen {
		return tag[:maxTagLen] + "..."
	}
	return tag
}

// scalarRe matches a clean single-delimiter placeholder. The delimiters are
// single characters on purpose: word processors split multi-character
// delimiters across runs far more often than single braces.
var scalarRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

var loopNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// renderPart expands {#items}...{/items} loop blocks and substitutes scalar
// placeholders. Each template segment is checked for stray delimiters before
// its data goes in, so braces inside proposal data pass through untouched
// while genuine template damage still fails the render. Absent or empty map
// values substitute to the empty string; the engine never emits the words
// "undefined" or "null".
func renderPart(s string, data docgen.TemplateData) (string, error) {
	var sb strings.Builder
	for {
		start := strings.Index(s, "{#")
		if start < 0 {
			out, err := renderSegment(s, data.Campos)
			if err != nil {
				return "", err
			}
			sb.WriteString(out)
			return sb.String(), nil
		}
		out, err := renderSegment(s[:start], data.Campos)
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
		rest := s[start:]

		nameEnd := strings.IndexByte(rest, '}')
		if nameEnd < 0 {
			return "", &TagError{Tag: rest}
		}
		name := rest[2:nameEnd]
		if !loopNameRe.MatchString(name) {
			return "", &TagError{Tag: rest[:nameEnd+1]}
		}
		if name != docgen.LoopName {
			return "", &TagError{Tag: "#" + name}
		}

		closing := "{/" + name + "}"
		body := rest[nameEnd+1:]
		end := strings.Index(body, closing)
		if end < 0 {
			return "", &TagError{Tag: "#" + name + " sem fechamento"}
		}

		if err := checkResidual(scalarRe.ReplaceAllString(body[:end], "")); err != nil {
			return "", err
		}
		for _, item := range data.Itens {
			sb.WriteString(substituteScalars(body[:end], item))
		}
		s = body[end+len(closing):]
	}
}

// renderSegment validates one loop-free template segment and substitutes its
// scalar placeholders.
func renderSegment(seg string, campos map[string]string) (string, error) {
	if err := checkResidual(scalarRe.ReplaceAllString(seg, "")); err != nil {
		return "", err
	}
	return substituteScalars(seg, campos), nil
}

func substituteScalars(s string, campos map[string]string) string {
	return scalarRe.ReplaceAllStringFunc(s, func(m string) string {
		return escapeXMLText(campos[m[1:len(m)-1]])
	})
}

// checkResidual fails on any delimiter found in template text once valid
// placeholders are removed; whatever sits between the braces is the
// offending tag (a split placeholder the merger could not fix, a stray
// closing block, invalid characters).
func checkResidual(s string) error {
	open := strings.IndexByte(s, '{')
	closeIdx := strings.IndexByte(s, '}')
	if open < 0 && closeIdx < 0 {
		return nil
	}
	if open < 0 || (closeIdx >= 0 && closeIdx < open) {
		return &TagError{Tag: "}"}
	}
	rest := s[open:]
	if end := strings.IndexByte(rest, '}'); end >= 0 {
		return &TagError{Tag: rest[:end+1]}
	}
	return &TagError{Tag: rest}
}

var xmlTextEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// escapeXMLText escapes a data value for insertion into XML character data.
func escapeXMLText(s string) string {
	return xmlTextEscaper.Replace(s)
}
