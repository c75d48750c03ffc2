package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format, expected .csv or .xlsx")
	ErrEmptyFile         = errors.New("file has no header row")
	ErrTooManyRows       = errors.New("too many rows")
)

// Table 导入表格，表头已规范化为小写下划线
type Table struct {
	Header []string
	Rows   []Row
}

// Row 一行数据，Line为源文件中的行号（表头为第1行）
type Row struct {
	Line   int
	Values map[string]string
}

// Get 取列值，不存在返回空串
func (r Row) Get(col string) string {
	return r.Values[col]
}

// Has 表头是否包含某列
func (t *Table) Has(col string) bool {
	for _, h := range t.Header {
		if h == col {
			return true
		}
	}
	return false
}

// RequireColumns 缺列时返回错误，列出所有缺失列
func (t *Table) RequireColumns(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Read 按扩展名解析CSV或XLSX。maxRows<=0表示不限制
func Read(r io.Reader, fileName string, maxRows int) (*Table, error) {
	var (
		t   *Table
		err error
	)
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		t, err = ReadCSV(r)
	case ".xlsx":
		t, err = ReadXLSX(r)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	if maxRows > 0 && len(t.Rows) > maxRows {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyRows, len(t.Rows), maxRows)
	}
	return t, nil
}

// ReadCSV 非UTF-8内容按Windows-1252解码（Excel导出的CSV常见）
func ReadCSV(r io.Reader) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	var src io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		src = transform.NewReader(src, charmap.Windows1252.NewDecoder())
	}

	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return fromRecords(records)
}

// ReadXLSX 读取第一个工作表
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	return fromRecords(rows)
}

func fromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = NormalizeHeader(h)
	}

	t := &Table{Header: header}
	for i, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		values := make(map[string]string, len(header))
		for j, col := range header {
			if j < len(rec) && col != "" {
				values[col] = strings.TrimSpace(rec[j])
			}
		}
		t.Rows = append(t.Rows, Row{Line: i + 2, Values: values})
	}
	return t, nil
}

// NormalizeHeader "Bid Amount" -> "bid_amount"
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer(" ", "_", "-", "_").Replace(h)
	return h
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
