package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/CocotaJobs/dealexpress-sub000/internal/docgen"
	"github.com/CocotaJobs/dealexpress-sub000/internal/repository"
	"github.com/xuri/excelize/v2"
)

// ReportService produces spreadsheet exports of an organization's proposals.
type ReportService struct {
	proposals *repository.ProposalRepository
}

func NewReportService(proposals *repository.ProposalRepository) *ReportService {
	return &ReportService{proposals: proposals}
}

var exportHeader = []string{
	"Número", "Cliente", "Empresa", "Status", "Criada em", "Enviada em", "Válida até", "Itens", "Valor total",
}

// ExportXLSX renders every proposal of the organization into a single-sheet
// workbook, newest first, with a grand total row at the bottom.
func (s *ReportService) ExportXLSX(ctx context.Context, orgID string) ([]byte, error) {
	proposals, err := s.proposals.ListAll(ctx, orgID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Propostas"
	f.SetSheetName("Sheet1", sheet)

	for i, h := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "I1", headerStyle)

	var grandTotal float64
	for row, p := range proposals {
		sentAt := ""
		if p.SentAt != nil {
			sentAt = docgen.FormatDate(*p.SentAt)
		}
		validUntil := ""
		if p.ExpiresAt != nil {
			validUntil = docgen.FormatDate(*p.ExpiresAt)
		}
		total := p.Total()
		grandTotal += total

		values := []interface{}{
			p.Numero,
			p.ClienteNome,
			p.ClienteEmpresa,
			p.Status,
			docgen.FormatDate(p.CreatedAt),
			sentAt,
			validUntil,
			len(p.Items),
			total,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	totalRow := len(proposals) + 2
	f.SetCellValue(sheet, fmt.Sprintf("A%d", totalRow), "Total")
	f.SetCellValue(sheet, fmt.Sprintf("I%d", totalRow), grandTotal)

	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "C", 28)
	f.SetColWidth(sheet, "E", "G", 14)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
