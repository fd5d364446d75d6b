package csvstore

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Dialect delimiter của một file. Gazetteer/station/route files dùng chấm
// phẩy, staff/vehicle/trip files dùng phẩy.
type Dialect struct {
	Comma rune
}

var (
	Semicolon = Dialect{Comma: ';'}
	Comma     = Dialect{Comma: ','}
)

// Row một dòng dữ liệu keyed theo header
type Row map[string]string

// Table nội dung một file delimited: header thứ tự cố định + rows.
type Table struct {
	Headers []string
	Rows    []Row
}

// ReadTable đọc toàn bộ file. Dòng thiếu cột vẫn được giữ (cột thiếu = "");
// dòng thừa cột bị cắt về số header.
func ReadTable(path string, d Dialect) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = d.Comma
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}

	t := &Table{Headers: records[0]}
	for _, rec := range records[1:] {
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		row := make(Row, len(t.Headers))
		for i, h := range t.Headers {
			if i < len(rec) {
				row[h] = rec[i]
			} else {
				row[h] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ReadTableIfExists như ReadTable nhưng file chưa tồn tại trả về bảng rỗng
// với headers đã cho — dùng cho output append-only trước lần chạy đầu.
func ReadTableIfExists(path string, d Dialect, headers []string) (*Table, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Table{Headers: headers}, nil
	}
	return ReadTable(path, d)
}

// MaxNumericID id số lớn nhất trong cột; giá trị không parse được bỏ qua.
func (t *Table) MaxNumericID(col string) int64 {
	var max int64
	for _, row := range t.Rows {
		n, err := strconv.ParseInt(strings.TrimSpace(row[col]), 10, 64)
		if err == nil && n > max {
			max = n
		}
	}
	return max
}

// Col giá trị cột thứ i của row theo thứ tự header (positional access cho
// các file reference đọc theo vị trí cột thay vì tên).
func (t *Table) Col(row Row, i int) string {
	if i < 0 || i >= len(t.Headers) {
		return ""
	}
	return row[t.Headers[i]]
}

// Index builds key → row over the table using the caller's natural key.
// Rows whose key is empty are skipped.
func (t *Table) Index(keyFn func(Row) string) map[string]Row {
	idx := make(map[string]Row, len(t.Rows))
	for _, row := range t.Rows {
		if k := keyFn(row); k != "" {
			idx[k] = row
		}
	}
	return idx
}

// WriteTable tạo mới (hoặc ghi đè) file với header + rows.
func WriteTable(path string, d Dialect, headers []string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = d.Comma
	if err := w.Write(headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := writeRows(w, headers, rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// AppendRows thêm rows vào cuối file; file chưa tồn tại hoặc rỗng thì ghi
// header trước. Rows đã có không bao giờ bị ghi lại.
func AppendRows(path string, d Dialect, headers []string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	needHeader := false
	if fi, err := os.Stat(path); os.IsNotExist(err) || (err == nil && fi.Size() == 0) {
		needHeader = true
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s for append: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = d.Comma
	if needHeader {
		if err := w.Write(headers); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	if err := writeRows(w, headers, rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func writeRows(w *csv.Writer, headers []string, rows []Row) error {
	record := make([]string, len(headers))
	for _, row := range rows {
		for i, h := range headers {
			record[i] = row[h]
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}
