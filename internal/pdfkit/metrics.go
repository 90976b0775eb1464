package pdfkit

// Glyph widths for the two built-in fonts, in 1/1000 em units per the Adobe
// AFM files. Layout decisions (wrapping, truncation, column fitting) measure
// text with these tables rather than heuristics, so rendered output never
// overlaps even at exact column boundaries.

// helveticaWidths covers the printable ASCII range 0x20..0x7E.
var helveticaWidths = [95]int{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278, // space..slash
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 278, 278, 584, 584, 584, 556, // 0..?
	1015, 667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, 722, 778, // @..O
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 278, 278, 278, 469, 556, // P.._
	333, 556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, 556, 556, // `..o
	556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, 334, 260, 334, 584, // p..~
}

// helveticaBoldWidths covers the same range for Helvetica-Bold.
var helveticaBoldWidths = [95]int{
	278, 333, 474, 556, 556, 889, 722, 238, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 333, 333, 584, 584, 584, 611,
	975, 722, 722, 722, 722, 667, 611, 778, 722, 278, 556, 722, 611, 833, 722, 778,
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 333, 278, 333, 584, 556,
	333, 556, 611, 556, 611, 556, 333, 611, 611, 278, 278, 556, 278, 889, 611, 611,
	611, 611, 389, 556, 333, 611, 556, 778, 556, 556, 500, 389, 280, 389, 584,
}

// latinBase maps the Latin-1 letters that appear in Portuguese text to the
// unaccented glyph of identical advance width (accents do not change the
// advance in Helvetica).
var latinBase = map[rune]rune{
	'á': 'a', 'à': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a',
	'é': 'e', 'è': 'e', 'ê': 'e', 'ë': 'e',
	'í': 'i', 'ì': 'i', 'î': 'i', 'ï': 'i',
	'ó': 'o', 'ò': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o',
	'ú': 'u', 'ù': 'u', 'û': 'u', 'ü': 'u',
	'ç': 'c', 'ñ': 'n', 'ý': 'y',
	'Á': 'A', 'À': 'A', 'Â': 'A', 'Ã': 'A', 'Ä': 'A',
	'É': 'E', 'È': 'E', 'Ê': 'E', 'Ë': 'E',
	'Í': 'I', 'Ì': 'I', 'Î': 'I', 'Ï': 'I',
	'Ó': 'O', 'Ò': 'O', 'Ô': 'O', 'Õ': 'O', 'Ö': 'O',
	'Ú': 'U', 'Ù': 'U', 'Û': 'U', 'Ü': 'U',
	'Ç': 'C', 'Ñ': 'N',
	'º': 'o', 'ª': 'a', '°': 'o',
}

// glyphWidth returns the advance of r in milli-ems, or false when the glyph
// has no WinAnsi encoding we support.
func glyphWidth(r rune, bold bool) (int, bool) {
	if base, ok := latinBase[r]; ok {
		r = base
	}
	if r < 0x20 || r > 0x7E {
		return 0, false
	}
	if bold {
		return helveticaBoldWidths[r-0x20], true
	}
	return helveticaWidths[r-0x20], true
}

// encodable reports whether Sanitize keeps r.
func encodable(r rune) bool {
	if r == '\n' {
		return true
	}
	_, ok := glyphWidth(r, false)
	return ok
}

// TextWidth measures s at the given point size using exact font metrics.
// Unencodable runes contribute nothing, matching what drawing strips.
func TextWidth(s string, size float64, bold bool) float64 {
	total := 0
	for _, r := range s {
		if w, ok := glyphWidth(r, bold); ok {
			total += w
		}
	}
	return float64(total) * size / 1000
}
