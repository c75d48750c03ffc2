package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ContentType xlsx响应类型
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Column 列定义
type Column struct {
	Header string
	Width  float64
}

// Sheet 一个工作表：表头、数据行、可选汇总行
type Sheet struct {
	Name    string
	Columns []Column
	Rows    [][]interface{}
	Summary []interface{}
}

// AddRow 追加一行
func (s *Sheet) AddRow(values ...interface{}) {
	s.Rows = append(s.Rows, values)
}

// Build 生成工作簿，第一个Sheet替换默认的Sheet1
func Build(sheets ...Sheet) (*excelize.File, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	summaryStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("summary style: %w", err)
	}

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.Name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sh.Name); err != nil {
			return nil, fmt.Errorf("new sheet %s: %w", sh.Name, err)
		}
		if err := writeSheet(f, sh, headerStyle, summaryStyle); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func writeSheet(f *excelize.File, sh Sheet, headerStyle, summaryStyle int) error {
	header := make([]interface{}, len(sh.Columns))
	for i, c := range sh.Columns {
		header[i] = c.Header
		if c.Width > 0 {
			col, _ := excelize.ColumnNumberToName(i + 1)
			f.SetColWidth(sh.Name, col, col, c.Width)
		}
	}
	if err := f.SetSheetRow(sh.Name, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if len(sh.Columns) > 0 {
		last, _ := excelize.ColumnNumberToName(len(sh.Columns))
		f.SetCellStyle(sh.Name, "A1", last+"1", headerStyle)
	}

	for i, row := range sh.Rows {
		r := row
		if err := f.SetSheetRow(sh.Name, fmt.Sprintf("A%d", i+2), &r); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if len(sh.Summary) > 0 {
		line := len(sh.Rows) + 2
		cell := fmt.Sprintf("A%d", line)
		if err := f.SetSheetRow(sh.Name, cell, &sh.Summary); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		last, _ := excelize.ColumnNumberToName(len(sh.Summary))
		f.SetCellStyle(sh.Name, cell, fmt.Sprintf("%s%d", last, line), summaryStyle)
	}
	return nil
}

// Bytes 生成xlsx字节
func Bytes(sheets ...Sheet) ([]byte, error) {
	f, err := Build(sheets...)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
