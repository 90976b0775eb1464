package pdfkit

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"strings"
	"testing"
)

func sampleDados(items int) Dados {
	d := Dados{
		EmpresaNome:        "Empresa Teste",
		Numero:             "PRP-0001",
		DataExtenso:        "15 de Janeiro de 2026",
		ClienteNome:        "Ana Souza",
		ClienteEmpresa:     "Cliente Ltda",
		ClienteEmail:       "ana@cliente.com.br",
		ValorTotal:         "R$ 2.300,00",
		CondicoesPagamento: "50% na assinatura, 50% na entrega.",
		ValidadeDias:       "30",
		DataValidade:       "14/02/2026",
	}
	for i := 0; i < items; i++ {
		d.Itens = append(d.Itens, ItemRow{
			Nome:          fmt.Sprintf("Item %d", i+1),
			Quantidade:    "1",
			ValorUnitario: "R$ 100,00",
			Valor:         "R$ 100,00",
		})
	}
	return d
}

// decodeStreams inflates every FlateDecode content stream of a built PDF.
func decodeStreams(t *testing.T, pdf []byte) string {
	t.Helper()
	var out strings.Builder
	rest := pdf
	for {
		idx := bytes.Index(rest, []byte("stream\n"))
		if idx < 0 {
			break
		}
		rest = rest[idx+len("stream\n"):]
		end := bytes.Index(rest, []byte("endstream"))
		if end < 0 {
			break
		}
		zr, err := zlib.NewReader(bytes.NewReader(rest[:end]))
		if err != nil {
			t.Fatalf("content stream is not zlib: %v", err)
		}
		content, err := io.ReadAll(zr)
		zr.Close()
		if err != nil {
			t.Fatalf("inflate content stream: %v", err)
		}
		out.Write(content)
		rest = rest[end+len("endstream"):]
	}
	return out.String()
}

func TestComposeSinglePage(t *testing.T) {
	pdf := Compose(sampleDados(3))

	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Fatalf("not a PDF: %q", pdf[:8])
	}
	content := decodeStreams(t, pdf)
	for _, want := range []string{
		"Empresa Teste",
		"Proposta PRP-0001",
		"Dados do Cliente",
		"Ana Souza",
		"Item 1",
		"R$ 2.300,00",
		"30 dias",
		"14/02/2026",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("content missing %q", want)
		}
	}
}

func TestComposePaginatesLongTables(t *testing.T) {
	onePage := pageCountOf(t, Compose(sampleDados(2)))
	manyPages := pageCountOf(t, Compose(sampleDados(80)))

	if onePage != 1 {
		t.Errorf("2-item proposal used %d pages, want 1", onePage)
	}
	if manyPages < 2 {
		t.Errorf("80-item proposal used %d pages, want at least 2", manyPages)
	}
	// Every item still present.
	content := decodeStreams(t, Compose(sampleDados(80)))
	for _, item := range []string{"Item 1", "Item 40", "Item 80"} {
		if !strings.Contains(content, item) {
			t.Errorf("paginated content missing %q", item)
		}
	}
}

func pageCountOf(t *testing.T, pdf []byte) int {
	t.Helper()
	var count int
	idx := bytes.Index(pdf, []byte("/Count "))
	if idx < 0 {
		t.Fatal("no /Count in page tree")
	}
	if _, err := fmt.Sscanf(string(pdf[idx:]), "/Count %d", &count); err != nil {
		t.Fatalf("parse /Count: %v", err)
	}
	return count
}

func TestComposeNeverFailsOnExoticInput(t *testing.T) {
	d := sampleDados(1)
	d.ClienteNome = "名前 🙂 Ana"
	d.CondicoesPagamento = strings.Repeat("palavra ", 200)
	pdf := Compose(d)
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Fatalf("compose failed on exotic input")
	}
	if !strings.Contains(decodeStreams(t, pdf), "Ana") {
		t.Errorf("encodable part of the name was dropped")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("curto", baseSize, false, 200); got != "curto" {
		t.Errorf("short string was truncated: %q", got)
	}

	long := strings.Repeat("Descrição longa ", 10)
	got := truncate(long, baseSize, false, 120)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated string missing ellipsis: %q", got)
	}
	if w := TextWidth(got, baseSize, false); w > 120 {
		t.Errorf("truncated string still too wide: %.2f", w)
	}
}

func TestWrap(t *testing.T) {
	text := "Pagamento em duas parcelas iguais, a primeira na assinatura do contrato e a segunda na entrega final."
	lines := wrap(text, baseSize, false, 200)
	if len(lines) < 2 {
		t.Fatalf("expected multiple lines, got %d", len(lines))
	}
	for _, l := range lines {
		if w := TextWidth(l, baseSize, false); w > 200 {
			t.Errorf("line %q too wide: %.2f", l, w)
		}
	}
	if strings.Join(strings.Fields(strings.Join(lines, " ")), " ") != text {
		t.Errorf("wrap lost or reordered words:\n%v", lines)
	}
}

func TestWrapOversizedWord(t *testing.T) {
	word := strings.Repeat("x", 100)
	lines := wrap("antes "+word+" depois", baseSize, false, 100)
	found := false
	for _, l := range lines {
		if l == word {
			found = true
		}
	}
	if !found {
		t.Errorf("oversized word should occupy its own line: %v", lines)
	}
}
