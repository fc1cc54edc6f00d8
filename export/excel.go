// export/excel.go
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/metrics"
	"github.com/amarodesenvolvedor/qualicontrol-flow-app-sub001/models"
)

const recordsSheet = "Registros"

// NonConformancesXLSX writes one or many records to a workbook: header
// row of translated labels in the fixed field order, one row per record.
func NonConformancesXLSX(recs []models.NonConformance) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return nil, fmt.Errorf("export: rename sheet: %w", err)
	}

	for col, field := range FieldOrder {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(recordsSheet, cell, Labels[field]); err != nil {
			return nil, err
		}
	}

	for row, rec := range recs {
		for col, field := range FieldOrder {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(recordsSheet, cell, FieldValue(rec, field)); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("export: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// SummaryXLSX writes the dashboard aggregates: one sheet of KPI counters
// and status buckets, one of department totals, one of the monthly trend.
func SummaryXLSX(kpis metrics.KPISet, statuses []metrics.StatusBucket, departments []metrics.DepartmentCount, trend []metrics.MonthBucket) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Resumo"); err != nil {
		return nil, err
	}

	kpiRows := [][]interface{}{
		{"Indicador", "Total"},
		{"Não conformidades", kpis.Total},
		{"Urgentes", kpis.Urgent},
		{"Críticas", kpis.Critical},
		{"Prazo próximo", kpis.Approaching},
		{"Vencidas", kpis.Overdue},
		{},
		{"Status", "Total"},
	}
	for _, b := range statuses {
		kpiRows = append(kpiRows, []interface{}{b.Label, b.Count})
	}
	if err := writeRows(f, "Resumo", kpiRows); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet("Departamentos"); err != nil {
		return nil, err
	}
	deptRows := [][]interface{}{{"Departamento", "Total"}}
	for _, d := range departments {
		deptRows = append(deptRows, []interface{}{d.Name, d.Total})
	}
	if err := writeRows(f, "Departamentos", deptRows); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet("Tendência"); err != nil {
		return nil, err
	}
	trendRows := [][]interface{}{{"Mês", "Pendentes", "Em andamento", "Resolvidas", "Encerradas", "Total"}}
	for _, m := range trend {
		trendRows = append(trendRows, []interface{}{m.Label, m.Pending, m.InProgress, m.Resolved, m.Closed, m.Total})
	}
	if err := writeRows(f, "Tendência", trendRows); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("export: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return err
			}
		}
	}
	return nil
}
