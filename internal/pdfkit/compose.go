package pdfkit

import (
	"fmt"
	"strings"
)

const (
	margin       = 50.0
	contentWidth = PageWidth - 2*margin

	baseSize    = 10.0
	headerSize  = 16.0
	sectionSize = 11.0
	lineGap     = 4.0
	rowHeight   = 18.0
)

// ItemRow is one already-formatted line of the items table.
type ItemRow struct {
	Nome          string
	Quantidade    string
	ValorUnitario string
	Desconto      string
	Valor         string
}

// Dados carries the display-ready strings the fallback composer lays out.
// It is the same information the template mapper produces, so the two
// rendering paths stay in lockstep.
type Dados struct {
	EmpresaNome string
	Numero      string
	DataExtenso string

	ClienteNome     string
	ClienteEmpresa  string
	ClienteEmail    string
	ClienteWhatsapp string
	ClienteEndereco string
	ClienteCpfCnpj  string

	Itens      []ItemRow
	ValorTotal string

	CondicoesPagamento string
	ValidadeDias       string
	DataValidade       string
}

// composer walks a vertical cursor down A4 pages, breaking to a new page
// whenever the next block does not fit above the bottom margin.
type composer struct {
	doc *Document
	sb  strings.Builder
	y   float64
}

// Compose lays the proposal out directly onto PDF pages: header, client
// block, items table, totals, payment terms, validity notice and signature
// lines. It never fails: text that cannot be encoded is stripped and the
// document is completed anyway.
func Compose(d Dados) []byte {
	c := &composer{doc: NewDocument()}
	c.startPage()

	c.drawHeader(d)
	c.drawClientBlock(d)
	c.drawItemsTable(d)
	c.drawPaymentTerms(d)
	c.drawValidityBox(d)
	c.drawSignatures(d)

	c.flushPage()
	return c.doc.Build()
}

func (c *composer) startPage() {
	c.sb.Reset()
	c.y = PageHeight - margin
}

func (c *composer) flushPage() {
	c.doc.AddPage(c.sb.String())
}

// ensure starts a new page when fewer than h points remain.
func (c *composer) ensure(h float64) {
	if c.y-h < margin {
		c.flushPage()
		c.startPage()
	}
}

func (c *composer) text(x, y, size float64, bold bool, s string) {
	font := "/F1"
	if bold {
		font = "/F2"
	}
	fmt.Fprintf(&c.sb, "BT\n%s %.1f Tf\n%.2f %.2f Td\n(%s) Tj\nET\n",
		font, size, x, y, escapePDFText(Sanitize(s)))
}

func (c *composer) line(x1, y1, x2, y2 float64) {
	fmt.Fprintf(&c.sb, "%.2f %.2f m\n%.2f %.2f l\nS\n", x1, y1, x2, y2)
}

func (c *composer) fillRect(x, y, w, h float64, gray float64) {
	fmt.Fprintf(&c.sb, "%.2f g\n%.2f %.2f %.2f %.2f re\nf\n0 g\n", gray, x, y, w, h)
}

func (c *composer) strokeRect(x, y, w, h float64) {
	fmt.Fprintf(&c.sb, "%.2f %.2f %.2f %.2f re\nS\n", x, y, w, h)
}

func (c *composer) drawHeader(d Dados) {
	c.ensure(70)
	c.text(margin, c.y-headerSize, headerSize, true, d.EmpresaNome)
	c.y -= headerSize + lineGap

	numero := "Proposta " + d.Numero
	c.text(margin, c.y-baseSize, baseSize, true, numero)
	dateWidth := TextWidth(Sanitize(d.DataExtenso), baseSize, false)
	c.text(PageWidth-margin-dateWidth, c.y-baseSize, baseSize, false, d.DataExtenso)
	c.y -= baseSize + 2*lineGap

	c.line(margin, c.y, PageWidth-margin, c.y)
	c.y -= 2 * lineGap
}

func (c *composer) drawClientBlock(d Dados) {
	lines := make([]string, 0, 6)
	for _, l := range []string{
		d.ClienteNome,
		d.ClienteEmpresa,
		d.ClienteCpfCnpj,
		d.ClienteEndereco,
		d.ClienteEmail,
		d.ClienteWhatsapp,
	} {
		if l != "" {
			lines = append(lines, l)
		}
	}

	blockH := sectionSize + lineGap + float64(len(lines))*(baseSize+lineGap) + 2*lineGap
	c.ensure(blockH)

	c.text(margin, c.y-sectionSize, sectionSize, true, "Dados do Cliente")
	c.y -= sectionSize + lineGap
	for _, l := range lines {
		c.text(margin, c.y-baseSize, baseSize, false, l)
		c.y -= baseSize + lineGap
	}
	c.y -= 2 * lineGap
}

// Fixed columns: quantity, unit price, discount and subtotal get what they
// need; the item name takes the remainder and is truncated with an ellipsis
// when the metrics say it will not fit.
var itemCols = struct {
	qtd, unit, desc, valor float64
}{45, 95, 55, 95}

func (c *composer) drawItemsTable(d Dados) {
	nameWidth := contentWidth - itemCols.qtd - itemCols.unit - itemCols.desc - itemCols.valor

	c.ensure(rowHeight * 3) // header plus at least one row before any break

	// header row
	c.fillRect(margin, c.y-rowHeight, contentWidth, rowHeight, 0.85)
	c.tableRow(true, nameWidth, "Item", "Qtd", "Valor Unit.", "Desc.", "Subtotal")

	for _, item := range d.Itens {
		c.ensure(rowHeight) // a row never splits across pages
		c.tableRow(false, nameWidth, item.Nome, item.Quantidade, item.ValorUnitario, item.Desconto, item.Valor)
	}

	// highlighted total row
	c.ensure(rowHeight)
	c.fillRect(margin, c.y-rowHeight, contentWidth, rowHeight, 0.92)
	c.tableRow(true, nameWidth, "Total", "", "", "", d.ValorTotal)
	c.y -= 2 * lineGap
}

func (c *composer) tableRow(bold bool, nameWidth float64, nome, qtd, unit, desc, valor string) {
	textY := c.y - rowHeight + (rowHeight-baseSize)/2
	c.text(margin+2, textY, baseSize, bold, truncate(nome, baseSize, bold, nameWidth-4))

	x := margin + nameWidth
	for _, col := range []struct {
		w float64
		s string
	}{
		{itemCols.qtd, qtd},
		{itemCols.unit, unit},
		{itemCols.desc, desc},
		{itemCols.valor, valor},
	} {
		// right-aligned numeric columns
		w := TextWidth(Sanitize(col.s), baseSize, bold)
		c.text(x+col.w-w-2, textY, baseSize, bold, col.s)
		x += col.w
	}
	c.y -= rowHeight
}

func (c *composer) drawPaymentTerms(d Dados) {
	if d.CondicoesPagamento == "" {
		return
	}
	wrapped := wrap(Sanitize(d.CondicoesPagamento), baseSize, false, contentWidth)

	blockH := sectionSize + lineGap + float64(len(wrapped))*(baseSize+lineGap)
	c.ensure(blockH)

	c.text(margin, c.y-sectionSize, sectionSize, true, "Condições de Pagamento")
	c.y -= sectionSize + lineGap
	for _, l := range wrapped {
		c.text(margin, c.y-baseSize, baseSize, false, l)
		c.y -= baseSize + lineGap
	}
	c.y -= 2 * lineGap
}

func (c *composer) drawValidityBox(d Dados) {
	notice := fmt.Sprintf("Esta proposta é válida por %s dias, até %s.", d.ValidadeDias, d.DataValidade)
	boxH := baseSize + 4*lineGap
	c.ensure(boxH + lineGap)

	c.strokeRect(margin, c.y-boxH, contentWidth, boxH)
	c.text(margin+2*lineGap, c.y-boxH+2*lineGap, baseSize, false, notice)
	c.y -= boxH + 3*lineGap
}

func (c *composer) drawSignatures(d Dados) {
	const sigHeight = 60.0
	c.ensure(sigHeight)

	colW := (contentWidth - 40) / 2
	baseY := c.y - sigHeight + 2*lineGap + baseSize

	for i, label := range []string{d.EmpresaNome, d.ClienteNome} {
		x := margin + float64(i)*(colW+40)
		c.line(x, baseY, x+colW, baseY)
		w := TextWidth(Sanitize(label), baseSize, false)
		c.text(x+(colW-w)/2, baseY-baseSize-lineGap, baseSize, false, label)
	}
	c.y -= sigHeight
}

// truncate cuts s so it fits maxWidth at the given size, appending an
// ellipsis when anything was removed.
func truncate(s string, size float64, bold bool, maxWidth float64) string {
	s = Sanitize(s)
	if TextWidth(s, size, bold) <= maxWidth {
		return s
	}
	const ellipsis = "..."
	ellW := TextWidth(ellipsis, size, bold)
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		if TextWidth(string(runes), size, bold)+ellW <= maxWidth {
			break
		}
	}
	return string(runes) + ellipsis
}

// wrap breaks s into lines no wider than maxWidth, measuring with the font
// metrics. Words wider than a whole line are emitted on their own line
// rather than overflowing silently.
func wrap(s string, size float64, bold bool, maxWidth float64) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}
		current := words[0]
		for _, w := range words[1:] {
			candidate := current + " " + w
			if TextWidth(candidate, size, bold) > maxWidth {
				lines = append(lines, current)
				current = w
				continue
			}
			current = candidate
		}
		lines = append(lines, current)
	}
	return lines
}
