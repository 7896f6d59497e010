package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/de-tools/problem-report/pkg/models/domain"
	"github.com/xuri/excelize/v2"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Workbook renders a report into an excelize workbook. The caller owns the
// returned file and must Close it.
func Workbook(report *domain.Report) (*excelize.File, error) {
	if report == nil || len(report.Sheets) == 0 {
		return nil, fmt.Errorf("report has no sheets")
	}

	f := excelize.NewFile()
	w := &workbookWriter{file: f, styles: map[domain.CellStyle]int{}}

	if err := w.writeSheets(report.Sheets); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

// Encode writes the report as an .xlsx document.
func Encode(report *domain.Report, out io.Writer) error {
	f, err := Workbook(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func EncodeBytes(report *domain.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(report, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type workbookWriter struct {
	file   *excelize.File
	styles map[domain.CellStyle]int
}

func (w *workbookWriter) writeSheets(sheets []domain.Sheet) error {
	defaultSheet := w.file.GetSheetName(0)
	for i, sheet := range sheets {
		if i == 0 {
			if err := w.file.SetSheetName(defaultSheet, sheet.Name); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", sheet.Name, err)
			}
		} else if _, err := w.file.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", sheet.Name, err)
		}

		if err := w.writeSheet(sheet); err != nil {
			return fmt.Errorf("failed to write sheet %q: %w", sheet.Name, err)
		}
	}
	w.file.SetActiveSheet(0)
	return nil
}

func (w *workbookWriter) writeSheet(sheet domain.Sheet) error {
	header := make([]interface{}, 0, len(sheet.Header))
	for _, h := range sheet.Header {
		header = append(header, h)
	}
	if err := w.file.SetSheetRow(sheet.Name, "A1", &header); err != nil {
		return err
	}

	for i, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row
		if err := w.file.SetSheetRow(sheet.Name, cell, &values); err != nil {
			return err
		}
	}

	// Styles go last so they replace the default date style set on time cells.
	for _, rs := range sheet.Styles {
		if err := w.applyStyle(sheet.Name, rs); err != nil {
			return err
		}
	}

	if sheet.AutoFilter != "" {
		if err := w.file.AutoFilter(sheet.Name, sheet.AutoFilter, nil); err != nil {
			return fmt.Errorf("failed to set autofilter %s: %w", sheet.AutoFilter, err)
		}
	}

	for _, table := range sheet.Tables {
		showRowStripes := table.ShowRowStripes
		err := w.file.AddTable(sheet.Name, &excelize.Table{
			Range:             table.Range,
			Name:              table.Name,
			StyleName:         table.StyleName,
			ShowRowStripes:    &showRowStripes,
			ShowColumnStripes: table.ShowColumnStripes,
		})
		if err != nil {
			return fmt.Errorf("failed to add table %s: %w", table.Name, err)
		}
	}
	return nil
}

func (w *workbookWriter) applyStyle(sheet string, rs domain.RangeStyle) error {
	id, err := w.style(rs.Style)
	if err != nil {
		return err
	}
	from, to, ok := strings.Cut(rs.Range, ":")
	if !ok {
		to = from
	}
	return w.file.SetCellStyle(sheet, from, to, id)
}

func (w *workbookWriter) style(cs domain.CellStyle) (int, error) {
	if id, ok := w.styles[cs]; ok {
		return id, nil
	}

	style := &excelize.Style{}
	if cs.Bold {
		style.Font = &excelize.Font{Bold: true}
	}
	if cs.FillColor != "" {
		style.Fill = excelize.Fill{Type: "pattern", Color: []string{cs.FillColor}, Pattern: 1}
	}
	if cs.NumberFormat != "" {
		format := cs.NumberFormat
		style.CustomNumFmt = &format
	}

	id, err := w.file.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("failed to create style: %w", err)
	}
	w.styles[cs] = id
	return id, nil
}
