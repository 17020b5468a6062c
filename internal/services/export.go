package services

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const statementSheet = "DRE"

// ExportStatementXLSX renders the computed statement as an XLSX
// workbook. Derived lines (net revenue, margins, results) are visually
// separated from the root-group lines by bold styling.
func ExportStatementXLSX(lines StatementLines, periodLabel string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(statementSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create statement sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	headers := []string{fmt.Sprintf("DRE — %s", periodLabel), "Valor", "% Receita Bruta"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(statementSheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	type row struct {
		label   string
		line    StatementLine
		derived bool
	}
	rows := []row{
		{"Receita Bruta", lines.GrossRevenue, false},
		{"(-) Deduções", lines.Deductions, false},
		{"(=) Receita Líquida", lines.NetRevenue, true},
		{"(-) Custos Variáveis", lines.VariableCosts, false},
		{"(=) Margem de Contribuição", lines.ContributionMargin, true},
		{"(-) Custos Fixos", lines.FixedCosts, false},
		{"(=) Resultado Operacional", lines.OperatingResult, true},
		{"(+/-) Resultado Não Operacional", lines.NonOperating, false},
		{"(=) Resultado Antes dos Impostos", lines.PreTaxResult, true},
		{"(-) Impostos sobre Resultado", lines.IncomeTax, false},
		{"(=) Resultado Líquido", lines.NetResult, true},
	}

	for i, r := range rows {
		rowIdx := i + 2
		values := []interface{}{r.label, decimalCell(r.line.Value), r.line.Percent / 100}
		for col, val := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx)
			if err := f.SetCellValue(statementSheet, cell, val); err != nil {
				return nil, fmt.Errorf("failed to write row %q: %w", r.label, err)
			}
		}
		if r.derived {
			start, _ := excelize.CoordinatesToCellName(1, rowIdx)
			end, _ := excelize.CoordinatesToCellName(len(values), rowIdx)
			if err := f.SetCellStyle(statementSheet, start, end, bold); err != nil {
				return nil, fmt.Errorf("failed to style row %q: %w", r.label, err)
			}
		}
	}

	if err := f.SetColWidth(statementSheet, "A", "A", 36); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// decimalCell converts to float for the spreadsheet cell. Statement
// values are already rounded to cents, so the conversion is lossless for
// realistic magnitudes.
func decimalCell(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
