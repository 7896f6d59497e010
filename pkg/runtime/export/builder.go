package export

import (
	"fmt"

	"github.com/de-tools/problem-report/pkg/adapters"
	"github.com/de-tools/problem-report/pkg/models/domain"
	"github.com/xuri/excelize/v2"
)

const (
	RawDataSheet = "Raw Data"
	SummarySheet = "Repetitive Index"
	SummaryTable = "RepetitiveIndex"

	headerFill      = "FFFF00"
	timestampFormat = "yyyy-mm-dd hh:mm:ss"
	tableStyle      = "TableStyleMedium9"
)

var (
	RawDataHeader = []string{
		"Problem ID",
		"Display ID",
		"Title",
		"Impact Level",
		"Severity Level",
		"Status",
		"Root Cause Entity",
		"Start Time",
		"End Time",
		"Management Zones",
	}
	SummaryHeader = []string{"Impact Level", "Severity Level", "Count"}
)

// Build lays out both sheets. It has no side effects; the same rows always
// produce the same report.
func Build(rows []domain.NormalizedRow, aggregates []domain.AggregateRow) (*domain.Report, error) {
	raw, err := buildRawData(rows)
	if err != nil {
		return nil, err
	}
	summary, err := buildSummary(aggregates)
	if err != nil {
		return nil, err
	}
	return &domain.Report{Sheets: []domain.Sheet{raw, summary}}, nil
}

func buildRawData(rows []domain.NormalizedRow) (domain.Sheet, error) {
	sheet := domain.Sheet{
		Name:   RawDataSheet,
		Header: RawDataHeader,
		Rows:   make([][]interface{}, 0, len(rows)),
	}
	for _, row := range rows {
		sheet.Rows = append(sheet.Rows, adapters.MapNormalizedRowToCells(row))
	}

	lastRow := len(rows) + 1
	cols := len(RawDataHeader)

	header, err := cellRange(1, 1, cols, 1)
	if err != nil {
		return domain.Sheet{}, err
	}
	sheet.Styles = append(sheet.Styles, domain.RangeStyle{
		Range: header,
		Style: domain.CellStyle{Bold: true, FillColor: headerFill},
	})

	if len(rows) > 0 {
		// Start Time and End Time columns.
		timestamps, err := cellRange(8, 2, 9, lastRow)
		if err != nil {
			return domain.Sheet{}, err
		}
		sheet.Styles = append(sheet.Styles, domain.RangeStyle{
			Range: timestamps,
			Style: domain.CellStyle{NumberFormat: timestampFormat},
		})
	}

	sheet.AutoFilter, err = cellRange(1, 1, cols, lastRow)
	if err != nil {
		return domain.Sheet{}, err
	}
	return sheet, nil
}

func buildSummary(aggregates []domain.AggregateRow) (domain.Sheet, error) {
	sheet := domain.Sheet{
		Name:   SummarySheet,
		Header: SummaryHeader,
		Rows:   make([][]interface{}, 0, len(aggregates)),
	}
	for _, row := range aggregates {
		sheet.Rows = append(sheet.Rows, adapters.MapAggregateRowToCells(row))
	}

	// A table needs at least one data row.
	if len(aggregates) == 0 {
		return sheet, nil
	}

	ref, err := cellRange(1, 1, len(SummaryHeader), len(aggregates)+1)
	if err != nil {
		return domain.Sheet{}, err
	}
	sheet.Tables = append(sheet.Tables, domain.TableRegion{
		Name:              SummaryTable,
		Range:             ref,
		StyleName:         tableStyle,
		ShowRowStripes:    true,
		ShowColumnStripes: true,
	})
	return sheet, nil
}

func cellRange(col1, row1, col2, row2 int) (string, error) {
	from, err := excelize.CoordinatesToCellName(col1, row1)
	if err != nil {
		return "", fmt.Errorf("invalid range start: %w", err)
	}
	to, err := excelize.CoordinatesToCellName(col2, row2)
	if err != nil {
		return "", fmt.Errorf("invalid range end: %w", err)
	}
	return from + ":" + to, nil
}
