// Package docx manipulates the OOXML parts of .docx templates: repairing
// malformed XML, merging fragmented text runs and substituting field/loop
// placeholders. A .docx is a ZIP archive; the parts this package touches are
// word/document.xml and any word/header*.xml / word/footer*.xml.
package docx

import (
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// PartError reports an XML part that stayed malformed after repair. It names
// the part so the template owner can locate the damage in the source
// document; anything beyond stray control characters and bare ampersands
// (unbalanced tags, invalid nesting) is out of repair scope and fatal.
type PartError struct {
	Part string
}

func (e *PartError) Error() string {
	return fmt.Sprintf("XML inválido no arquivo %q do modelo", e.Part)
}

// wellFormed reports whether s parses as well-formed XML.
func wellFormed(s string) bool {
	dec := xml.NewDecoder(strings.NewReader(s))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return true
		}
		if err != nil {
			return false
		}
	}
}

// legalXMLChar follows the XML 1.0 Char production: tab, LF, CR and the
// non-surrogate, non-control planes.
func legalXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}

func stripIllegalChars(s string) string {
	return strings.Map(func(r rune) rune {
		if legalXMLChar(r) {
			return r
		}
		return -1
	}, s)
}

// entityRe matches a recognized entity or numeric character reference
// anchored at an ampersand.
var entityRe = regexp.MustCompile(`^&(amp|lt|gt|quot|apos|#[0-9]{1,7}|#x[0-9a-fA-F]{1,6});`)

// escapeBareAmps rewrites every `&` that does not start a recognized entity
// to `&amp;`. Word processors occasionally emit literal ampersands inside
// attribute values of damaged documents.
func escapeBareAmps(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '&' {
			b.WriteByte(c)
			continue
		}
		if entityRe.MatchString(s[i:]) {
			b.WriteByte(c)
			continue
		}
		b.WriteString("&amp;")
	}
	return b.String()
}

// RepairPart strips XML-illegal characters, then escapes bare ampersands
// when the part still fails to parse. The decoder tolerates control
// characters in character data, so the strip runs unconditionally; clean
// content comes back value-identical. Content that is still malformed after
// both passes yields a *PartError naming the part. No other class of damage
// is repaired.
func RepairPart(name, content string) (string, error) {
	fixed := stripIllegalChars(content)
	if wellFormed(fixed) {
		return fixed, nil
	}
	fixed = escapeBareAmps(fixed)
	if wellFormed(fixed) {
		return fixed, nil
	}
	return "", &PartError{Part: name}
}
