package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/CocotaJobs/dealexpress-sub000/internal/docgen"
)

// renderablePart reports whether a ZIP entry holds markup the substitution
// engine should process. Body, headers and footers carry visible text;
// everything else (styles, rels, media) passes through untouched.
func renderablePart(name string) bool {
	if name == "word/document.xml" {
		return true
	}
	if !strings.HasSuffix(name, ".xml") {
		return false
	}
	return strings.HasPrefix(name, "word/header") || strings.HasPrefix(name, "word/footer")
}

// Render takes the raw bytes of a .docx template and produces the filled
// document: every renderable part is repaired, run-merged and substituted
// against data, and the container is rewritten with all other entries copied
// verbatim. Any part or tag failure aborts the whole render.
func Render(docxBytes []byte, data docgen.TemplateData) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(docxBytes), int64(len(docxBytes)))
	if err != nil {
		return nil, fmt.Errorf("abrir pacote docx: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("abrir entrada %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("ler entrada %s: %w", f.Name, err)
		}

		if renderablePart(f.Name) {
			repaired, err := RepairPart(f.Name, string(content))
			if err != nil {
				return nil, err
			}
			rendered, err := renderPart(MergeRuns(repaired), data)
			if err != nil {
				return nil, err
			}
			content = []byte(rendered)
		}

		w, err := zw.Create(f.Name)
		if err != nil {
			return nil, fmt.Errorf("gravar entrada %s: %w", f.Name, err)
		}
		if _, err := w.Write(content); err != nil {
			return nil, fmt.Errorf("gravar entrada %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("fechar pacote docx: %w", err)
	}
	return buf.Bytes(), nil
}
