// Package register writes extracted records into the "registru de evidenta
// a marfurilor la iesire" workbook kept by the customs broker.
package register

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/a3tai/ead-extract/internal/ead"
)

// SheetName is the sheet created in new workbooks. Existing workbooks are
// written on their first sheet whatever its name.
const SheetName = "Registru"

const (
	titleRow     = 1
	blockRow     = 2
	topHeaderRow = 3
	leafRow      = 4
	firstDataRow = 5
	columns      = 15
	// headerScan is how many rows are searched for the leaf header row of an
	// existing workbook.
	headerScan = 10
)

// ErrHeaderMismatch is returned when an existing workbook does not carry the
// register header.
var ErrHeaderMismatch = errors.New("register header mismatch")

// leafHeaders are the labels of row 4. Columns whose top header spans both
// header rows have no leaf label.
var leafHeaders = [columns]string{
	2:  "Felul",
	3:  "Numărul",
	4:  "Data",
	5:  "De unde provine",
	8:  "Felul",
	9:  "Buc.",
	10: "Mărci și numere",
}

type topHeader struct {
	col, span int
	text      string
	// tall headers are merged down over the leaf row.
	tall bool
}

var topHeaders = []topHeader{
	{0, 1, "Nr. crt.", true},
	{1, 1, "Data", true},
	{2, 4, "Documente însoțitoare", false},
	{6, 1, "Nr. identificare al mijlocului de transport sau numele navei, nr. aeronavei", true},
	{7, 1, "Numele exportatorului / expeditorului", true},
	{8, 3, "Colete", false},
	{11, 1, "Greutate", true},
	{12, 1, "Felul mărfurilor", true},
	{13, 1, "Mențiuni speciale", true},
	{14, 1, "Data", true},
}

var columnWidths = [columns]float64{8, 14, 12, 20, 14, 14, 26, 28, 10, 10, 14, 10, 36, 18, 14}

// Writer appends records to a register workbook on disk.
type Writer struct {
	path   string
	logger *slog.Logger
}

func NewWriter(path string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{path: path, logger: logger.With("component", "register")}
}

// Append writes the successful records after the last filled row, numbering
// them from startIndex, and returns how many rows were written. A missing
// workbook is created with the register header. The file is replaced
// atomically.
func (w *Writer) Append(records []ead.Record, startIndex int) (int, error) {
	var rows []ead.Record
	for _, r := range records {
		if !r.Failed() {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return 0, nil
	}
	start := time.Now()

	f, sheet, err := w.open()
	if err != nil {
		return 0, err
	}
	defer f.Close()

	next, err := nextEmptyRow(f, sheet)
	if err != nil {
		return 0, err
	}
	style, err := dataStyle(f)
	if err != nil {
		return 0, err
	}

	idx := startIndex
	for i, rec := range rows {
		row := next + i
		values := rowValues(rec, idx)
		for col, v := range values {
			cell := cellName(col, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return 0, fmt.Errorf("write %s: %w", cell, err)
			}
		}
		if err := f.SetCellStyle(sheet, cellName(0, row), cellName(columns-1, row), style); err != nil {
			return 0, fmt.Errorf("style row %d: %w", row, err)
		}
		idx++
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      leafRow,
		TopLeftCell: cellName(0, firstDataRow),
		ActivePane:  "bottomLeft",
	}); err != nil {
		return 0, fmt.Errorf("freeze header: %w", err)
	}

	if err := w.save(f); err != nil {
		return 0, err
	}
	w.logger.Info("register updated",
		"path", w.path,
		"rows", len(rows),
		"first_row", next,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return len(rows), nil
}

// open loads the workbook and checks its header, or creates a new one.
func (w *Writer) open() (*excelize.File, string, error) {
	if _, err := os.Stat(w.path); errors.Is(err, os.ErrNotExist) {
		f, err := newWorkbook()
		if err != nil {
			return nil, "", err
		}
		return f, SheetName, nil
	}

	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, "", fmt.Errorf("existing register is unreadable: %s: %w", filepath.Base(w.path), err)
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, "", fmt.Errorf("%w: workbook has no sheets", ErrHeaderMismatch)
	}
	if err := validateHeader(f, sheets[0]); err != nil {
		f.Close()
		return nil, "", err
	}
	return f, sheets[0], nil
}

func newWorkbook() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeHeader(f, SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("write register header: %w", err)
	}
	return f, nil
}

func writeHeader(f *excelize.File, sheet string) error {
	border := thinBorder()
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true}

	title, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 18}, Alignment: center, Border: border})
	if err != nil {
		return err
	}
	block, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}, Alignment: center, Border: border})
	if err != nil {
		return err
	}
	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, Alignment: center, Border: border})
	if err != nil {
		return err
	}

	last := columns - 1
	banner := []struct {
		from, to, row int
		text          string
	}{
		{0, last, titleRow, "REGISTRU DE EVIDENȚĂ A MĂRFURILOR LA IEȘIRE"},
		{0, 12, blockRow, "PREZENTATE LA IEȘIRE"},
		{13, last, blockRow, "IEȘIRE EFECTIVĂ"},
	}
	for _, b := range banner {
		if err := f.SetCellValue(sheet, cellName(b.from, b.row), b.text); err != nil {
			return err
		}
		if err := f.MergeCell(sheet, cellName(b.from, b.row), cellName(b.to, b.row)); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, cellName(0, titleRow), cellName(last, titleRow), title); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, cellName(0, blockRow), cellName(last, blockRow), block); err != nil {
		return err
	}

	for _, h := range topHeaders {
		if err := f.SetCellValue(sheet, cellName(h.col, topHeaderRow), h.text); err != nil {
			return err
		}
		end := cellName(h.col+h.span-1, topHeaderRow)
		if h.tall {
			end = cellName(h.col, leafRow)
		}
		if end != cellName(h.col, topHeaderRow) {
			if err := f.MergeCell(sheet, cellName(h.col, topHeaderRow), end); err != nil {
				return err
			}
		}
	}
	for col, text := range leafHeaders {
		if text == "" {
			continue
		}
		if err := f.SetCellValue(sheet, cellName(col, leafRow), text); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, cellName(0, topHeaderRow), cellName(last, leafRow), header); err != nil {
		return err
	}

	for row, height := range map[int]float64{titleRow: 26, blockRow: 18, topHeaderRow: 40, leafRow: 28} {
		if err := f.SetRowHeight(sheet, row, height); err != nil {
			return err
		}
	}
	for col, width := range columnWidths {
		name, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			return err
		}
	}
	return nil
}

// validateHeader finds the leaf header row, by its "Felul" label or right
// under the "Documente însoțitoare" group, and compares its labels.
func validateHeader(f *excelize.File, sheet string) error {
	leaf := 0
	for row := 1; row <= headerScan && leaf == 0; row++ {
		v, _ := f.GetCellValue(sheet, cellName(2, row))
		if strings.TrimSpace(v) == leafHeaders[2] {
			leaf = row
		}
	}
	for row := 1; row <= headerScan && leaf == 0; row++ {
		v, _ := f.GetCellValue(sheet, cellName(2, row))
		if strings.TrimSpace(v) == "Documente însoțitoare" {
			leaf = row + 1
		}
	}
	if leaf == 0 {
		return fmt.Errorf("%w: could not locate the leaf header row", ErrHeaderMismatch)
	}

	for col, want := range leafHeaders {
		if want == "" {
			continue
		}
		got, _ := f.GetCellValue(sheet, cellName(col, leaf))
		if strings.TrimSpace(got) != want {
			return fmt.Errorf("%w: column %d: expected %q, found %q", ErrHeaderMismatch, col+1, want, strings.TrimSpace(got))
		}
	}
	return nil
}

// nextEmptyRow returns the row after the last non-empty one, never before
// the first data row.
func nextEmptyRow(f *excelize.File, sheet string) (int, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("read rows: %w", err)
	}
	last := 0
	for i, r := range rows {
		for _, v := range r {
			if strings.TrimSpace(v) != "" {
				last = i + 1
				break
			}
		}
	}
	return max(last+1, firstDataRow), nil
}

// rowValues lays a record out over the 15 register columns.
func rowValues(r ead.Record, index int) []any {
	values := make([]any, columns)
	values[0] = index
	values[1] = r.DataDeclaratie
	values[2] = "SAD"
	values[3] = r.NrMrn
	values[4] = r.DataDeclaratie
	values[5] = ""
	values[6] = r.Identificare
	values[7] = r.NumeExportator
	values[8] = ""
	values[9] = intOrBlank(r.Buc)
	values[10] = ""
	values[11] = intOrBlank(r.Greutate)
	values[12] = r.DescriereaMarfurilor
	values[13] = ""
	values[14] = r.DataDeclaratie
	return values
}

func intOrBlank(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

func dataStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Italic: true, Size: 12},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorder(),
	})
}

func thinBorder() []excelize.Border {
	var out []excelize.Border
	for _, side := range []string{"left", "top", "right", "bottom"} {
		out = append(out, excelize.Border{Type: side, Color: "000000", Style: 1})
	}
	return out
}

// save writes to a temporary sibling and renames it over the target.
func (w *Writer) save(f *excelize.File) error {
	dir := filepath.Dir(w.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := f.Write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("xlsx write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	if err := os.Rename(tmpName, w.path); err != nil {
		return fmt.Errorf("replace register: %w", err)
	}
	return nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}
