package docgen

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// All currency and date output is pinned to pt-BR and América/São Paulo so a
// proposal renders the same bytes no matter which region the server runs in.

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

var (
	tzOnce sync.Once
	tzBR   *time.Location
)

func locationBR() *time.Location {
	tzOnce.Do(func() {
		loc, err := time.LoadLocation("America/Sao_Paulo")
		if err != nil {
			// tzdata missing from the image; Brasília standard offset.
			loc = time.FixedZone("-03", -3*60*60)
		}
		tzBR = loc
	})
	return tzBR
}

// FormatBRL renders a monetary value as "R$ 1.234,56".
func FormatBRL(v float64) string {
	return brPrinter.Sprintf("R$ %.2f", v)
}

// FormatDate renders a timestamp as dd/mm/yyyy in Brasília time.
func FormatDate(t time.Time) string {
	return t.In(locationBR()).Format("02/01/2006")
}

var monthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// FormatDateExtenso renders "29 de Janeiro de 2026" in Brasília time.
func FormatDateExtenso(t time.Time) string {
	local := t.In(locationBR())
	return fmt.Sprintf("%d de %s de %d", local.Day(), monthNames[local.Month()-1], local.Year())
}

// FormatPct renders a discount percentage, empty when zero (a line without
// discount shows nothing, never "0%"). Fractional discounts keep the pt-BR
// decimal comma: 12.5 → "12,5%".
func FormatPct(v float64) string {
	if v == 0 {
		return ""
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	return strings.ReplaceAll(s, ".", ",") + "%"
}
