package docgen

import "fmt"

// LoopName is the single repeating array a template may expand with
// {#items}...{/items}. Each element carries the per-item fields
// (nome, descricao, valor, quantidade, valor_unitario, desconto, indice).
const LoopName = "items"

// TemplateData is the ephemeral substitution input for one generation
// request: a flat placeholder→string map plus the items array for loop
// expansion. It is built fresh per request and never persisted.
type TemplateData struct {
	Campos map[string]string
	Itens  []map[string]string
}

// Error is a pipeline failure with a short user-facing title and, when the
// cause is identifiable (a template tag, an XML part), a details string the
// template owner can act on. Raw provider or library errors never reach the
// caller through this type.
type Error struct {
	Titulo   string
	Detalhes string
}

func (e *Error) Error() string {
	if e.Detalhes == "" {
		return e.Titulo
	}
	return fmt.Sprintf("%s: %s", e.Titulo, e.Detalhes)
}
