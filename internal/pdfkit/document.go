// Package pdfkit writes PDF files directly, without an external renderer.
// It carries just enough of the format (a catalog, a page tree, Type1
// Helvetica fonts and Flate-compressed content streams) to compose proposal
// documents when an organization has no .docx template.
package pdfkit

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"strings"
	"time"
)

const pdfVersion = "1.4"

// A4 page geometry in points.
const (
	PageWidth  = 595.28
	PageHeight = 841.89
)

// Document accumulates pages and serializes them into a complete PDF.
// Object layout: 1 catalog, 2 page tree, 3 Helvetica, 4 Helvetica-Bold,
// then stream/page pairs, then the info dictionary.
type Document struct {
	objects []string
	pages   []int // 1-based positions within objects
}

func NewDocument() *Document {
	return &Document{}
}

const fixedObjects = 4

func (d *Document) addObject(content string) int {
	d.objects = append(d.objects, content)
	return len(d.objects)
}

// AddPage appends one A4 page with the given content stream, compressed.
func (d *Document) AddPage(content string) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	w.Write([]byte(content))
	w.Close()

	streamNum := d.addObject(fmt.Sprintf(
		"<< /Length %d\n/Filter /FlateDecode\n>>\nstream\n%s\nendstream",
		buf.Len(), buf.String()))

	pageNum := d.addObject(fmt.Sprintf(
		"<< /Type /Page\n/Parent 2 0 R\n/MediaBox [0 0 %.2f %.2f]\n/Contents %d 0 R\n/Resources << /Font << /F1 3 0 R /F2 4 0 R >> >>\n>>",
		PageWidth, PageHeight, streamNum+fixedObjects))

	d.pages = append(d.pages, pageNum)
}

// PageCount returns the number of pages added so far.
func (d *Document) PageCount() int {
	return len(d.pages)
}

// Build serializes the document: header, objects, xref table and trailer.
func (d *Document) Build() []byte {
	var kids strings.Builder
	kids.WriteString("[")
	for i, p := range d.pages {
		if i > 0 {
			kids.WriteString(" ")
		}
		fmt.Fprintf(&kids, "%d 0 R", p+fixedObjects)
	}
	kids.WriteString("]")

	final := []string{
		"<< /Type /Catalog\n/Pages 2 0 R\n>>",
		fmt.Sprintf("<< /Type /Pages\n/Kids %s\n/Count %d\n>>", kids.String(), len(d.pages)),
		"<< /Type /Font\n/Subtype /Type1\n/BaseFont /Helvetica\n/Encoding /WinAnsiEncoding\n>>",
		"<< /Type /Font\n/Subtype /Type1\n/BaseFont /Helvetica-Bold\n/Encoding /WinAnsiEncoding\n>>",
	}
	final = append(final, d.objects...)

	now := time.Now().UTC().Format("D:20060102150405Z")
	final = append(final, fmt.Sprintf("<<\n/Producer (dealexpress)\n/CreationDate (%s)\n/ModDate (%s)\n>>", now, now))
	infoNum := len(final)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%%PDF-%s\n", pdfVersion)
	buf.WriteString("%\xE2\xE3\xCF\xD3\n")

	offsets := make([]int, len(final)+1)
	for i, obj := range final {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefPos := buf.Len()
	buf.WriteString("xref\n")
	fmt.Fprintf(&buf, "0 %d\n", len(final)+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(final); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}

	buf.WriteString("trailer\n")
	fmt.Fprintf(&buf, "<< /Size %d\n/Root 1 0 R\n/Info %d 0 R\n>>", len(final)+1, infoNum)
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xrefPos)

	return buf.Bytes()
}

// escapePDFText encodes a sanitized string as a WinAnsi PDF literal string:
// parens and backslashes escaped, runes above ASCII emitted as Latin-1
// bytes, anything else dropped.
func escapePDFText(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '(' || r == ')' || r == '\\':
			b.WriteByte('\\')
			b.WriteByte(byte(r))
		case r >= 0x20 && r <= 0x7E:
			b.WriteByte(byte(r))
		case r <= 0xFF:
			if encodable(r) {
				b.WriteByte(byte(r))
			}
		}
	}
	return b.String()
}
