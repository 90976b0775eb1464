package pdfkit

import "strings"

// typographicRepl folds the characters word processors and copy-paste
// commonly introduce into their closest ASCII forms before drawing.
var typographicRepl = strings.NewReplacer(
	"\t", "    ",
	"\r\n", "\n",
	"\r", "\n",
	"‘", "'", "’", "'",
	"“", `"`, "”", `"`,
	"–", "-", "—", "-",
	"•", "-", "…", "...",
	" ", " ",
)

// Sanitize prepares text for drawing: tabs become spaces, typographic
// quotes and dashes become ASCII, and anything the font cannot encode is
// stripped rather than failing the composition.
func Sanitize(s string) string {
	s = typographicRepl.Replace(s)
	return strings.Map(func(r rune) rune {
		if encodable(r) {
			return r
		}
		return -1
	}, s)
}
