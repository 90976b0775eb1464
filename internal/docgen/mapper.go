package docgen

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/CocotaJobs/dealexpress-sub000/internal/entity"
)

// BuildTemplateData assembles the substitution map and items array for one
// proposal. Every optional field collapses to the empty string here; the
// substitution engine downstream receives no nil or absent values it would
// have to special-case.
func BuildTemplateData(p *entity.Proposal, vendor *entity.User, org *entity.Organization) TemplateData {
	campos := map[string]string{
		"cliente_nome":        p.ClienteNome,
		"cliente_email":       p.ClienteEmail,
		"cliente_whatsapp":    p.ClienteWhatsapp,
		"cliente_empresa":     p.ClienteEmpresa,
		"cliente_endereco":    p.ClienteEndereco,
		"cliente_cpf_cnpj":    p.ClienteCpfCnpj,
		"numero_proposta":     p.Numero,
		"data_criacao":        FormatDate(p.CreatedAt),
		"data_extenso":        FormatDateExtenso(p.CreatedAt),
		"condicoes_pagamento": p.CondicoesPagamento,
		"validade_dias":       strconv.Itoa(p.ValidadeDias),
		"data_validade":       FormatDate(expiryOf(p)),
		"valor_total":         FormatBRL(p.Total()),
		"itens_resumo":        buildItensResumo(p),
	}
	if vendor != nil {
		campos["vendedor_nome"] = vendor.Nome
		campos["vendedor_email"] = vendor.Email
	} else {
		campos["vendedor_nome"] = ""
		campos["vendedor_email"] = ""
	}
	if org != nil {
		campos["empresa_nome"] = org.Nome
	} else {
		campos["empresa_nome"] = ""
	}

	itens := make([]map[string]string, 0, len(p.Items))
	for i := range p.Items {
		item := &p.Items[i]
		sub, _ := item.SubtotalDecimal().Float64()
		itens = append(itens, map[string]string{
			"indice":         strconv.Itoa(i + 1),
			"nome":           item.Nome,
			"descricao":      item.Descricao,
			"quantidade":     strconv.Itoa(item.Quantidade),
			"valor_unitario": FormatBRL(item.PrecoUnitario),
			"desconto":       FormatPct(item.DescontoPct),
			"valor":          FormatBRL(sub),
		})
	}

	return TemplateData{Campos: campos, Itens: itens}
}

// expiryOf resolves the validity date, always from creation + validity days;
// a stored ExpiresAt is only trusted when it matches that relationship's
// owner (the send flow keeps them in sync).
func expiryOf(p *entity.Proposal) time.Time {
	if p.ExpiresAt != nil {
		return *p.ExpiresAt
	}
	return p.CreatedAt.AddDate(0, 0, p.ValidadeDias)
}

// buildItensResumo renders the single-field fallback listing used by
// templates without a loop block: a numbered list with quantity, unit price,
// optional discount annotation and line subtotal, closed by the grand total.
func buildItensResumo(p *entity.Proposal) string {
	var sb strings.Builder
	for i := range p.Items {
		item := &p.Items[i]
		sub, _ := item.SubtotalDecimal().Float64()
		sb.WriteString(fmt.Sprintf("%d. %s - %d x %s", i+1, item.Nome, item.Quantidade, FormatBRL(item.PrecoUnitario)))
		if desc := FormatPct(item.DescontoPct); desc != "" {
			sb.WriteString(fmt.Sprintf(" (%s de desconto)", desc))
		}
		sb.WriteString(fmt.Sprintf(" = %s\n", FormatBRL(sub)))
	}
	sb.WriteString(fmt.Sprintf("Total: %s", FormatBRL(p.Total())))
	return sb.String()
}
