package services

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportStatementXLSX(t *testing.T) {
	line := func(v string, pct float64) StatementLine {
		return StatementLine{Value: decimal.RequireFromString(v), Percent: pct}
	}
	lines := StatementLines{
		GrossRevenue:       line("10000.00", 100),
		Deductions:         line("1000.00", 10),
		NetRevenue:         line("9000.00", 90),
		VariableCosts:      line("3000.00", 30),
		ContributionMargin: line("6000.00", 60),
		FixedCosts:         line("2000.00", 20),
		OperatingResult:    line("4000.00", 40),
		NonOperating:       line("-200.00", -2),
		PreTaxResult:       line("3800.00", 38),
		IncomeTax:          line("500.00", 5),
		NetResult:          line("3300.00", 33),
	}

	data, err := ExportStatementXLSX(lines, "2025-06")
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{statementSheet}, f.GetSheetList())

	label, err := f.GetCellValue(statementSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "Receita Bruta", label)

	gross, err := f.GetCellValue(statementSheet, "B2")
	require.NoError(t, err)
	assert.Equal(t, "10000", gross)

	lastLabel, err := f.GetCellValue(statementSheet, "A12")
	require.NoError(t, err)
	assert.Equal(t, "(=) Resultado Líquido", lastLabel)

	lastValue, err := f.GetCellValue(statementSheet, "B12")
	require.NoError(t, err)
	assert.Equal(t, "3300", lastValue)
}
