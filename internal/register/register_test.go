package register

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/a3tai/ead-extract/internal/ead"
)

var quiet = slog.New(slog.DiscardHandler)

func intPtr(v int) *int { return &v }

func sampleRecord(mrn string) ead.Record {
	return ead.Record{
		DataDeclaratie:       "02-09",
		NrMrn:                mrn,
		Identificare:         ead.TransportAWB,
		NumeExportator:       "SC EXEMPLU IMPEX SRL",
		Buc:                  intPtr(92),
		Greutate:             intPtr(230),
		DescriereaMarfurilor: "Electronice diverse",
		File:                 mrn + ".pdf",
	}
}

func cell(t *testing.T, f *excelize.File, ref string) string {
	t.Helper()
	v, err := f.GetCellValue(SheetName, ref)
	require.NoError(t, err)
	return v
}

func TestWriter_CreateThenAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registru.xlsx")
	w := NewWriter(path, quiet)

	n, err := w.Append([]ead.Record{
		sampleRecord("8901234"),
		ead.ErrorRecord("broken.pdf", errors.New("invalid PDF file")),
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = w.Append([]ead.Record{sampleRecord("5550001"), sampleRecord("5550002")}, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	assert.Equal(t, "REGISTRU DE EVIDENȚĂ A MĂRFURILOR LA IEȘIRE", cell(t, f, "A1"))
	assert.Equal(t, "IEȘIRE EFECTIVĂ", cell(t, f, "N2"))
	assert.Equal(t, "Documente însoțitoare", cell(t, f, "C3"))
	assert.Equal(t, "Felul", cell(t, f, "C4"))
	assert.Equal(t, "Buc.", cell(t, f, "J4"))

	assert.Equal(t, "1", cell(t, f, "A5"))
	assert.Equal(t, "02-09", cell(t, f, "B5"))
	assert.Equal(t, "SAD", cell(t, f, "C5"))
	assert.Equal(t, "8901234", cell(t, f, "D5"))
	assert.Equal(t, "AWB", cell(t, f, "G5"))
	assert.Equal(t, "SC EXEMPLU IMPEX SRL", cell(t, f, "H5"))
	assert.Equal(t, "92", cell(t, f, "J5"))
	assert.Equal(t, "230", cell(t, f, "L5"))
	assert.Equal(t, "Electronice diverse", cell(t, f, "M5"))
	assert.Equal(t, "02-09", cell(t, f, "O5"))

	assert.Equal(t, "2", cell(t, f, "A6"))
	assert.Equal(t, "5550001", cell(t, f, "D6"))
	assert.Equal(t, "3", cell(t, f, "A7"))
	assert.Equal(t, "5550002", cell(t, f, "D7"))
	assert.Empty(t, cell(t, f, "A8"))

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestWriter_MissingValuesStayBlank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registru.xlsx")
	_, err := NewWriter(path, quiet).Append([]ead.Record{{File: "partial.pdf", NrMrn: "123"}}, 10)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, "10", cell(t, f, "A5"))
	assert.Empty(t, cell(t, f, "J5"))
	assert.Empty(t, cell(t, f, "L5"))
}

func TestWriter_NothingToWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registru.xlsx")
	n, err := NewWriter(path, quiet).Append([]ead.Record{ead.ErrorRecord("x.pdf", errors.New("boom"))}, 1)
	require.NoError(t, err)
	assert.Zero(t, n)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestWriter_RejectsForeignWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Receipts"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	_, err := NewWriter(path, quiet).Append([]ead.Record{sampleRecord("1")}, 1)
	assert.ErrorIs(t, err, ErrHeaderMismatch)
}

func TestWriter_RejectsChangedLeafHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registru.xlsx")
	_, err := NewWriter(path, quiet).Append([]ead.Record{sampleRecord("1")}, 1)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue(SheetName, "J4", "Kg"))
	require.NoError(t, f.Save())
	require.NoError(t, f.Close())

	_, err = NewWriter(path, quiet).Append([]ead.Record{sampleRecord("2")}, 2)
	require.ErrorIs(t, err, ErrHeaderMismatch)
	assert.Contains(t, err.Error(), "column 10")
}

func TestWriter_UnreadableWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registru.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	_, err := NewWriter(path, quiet).Append([]ead.Record{sampleRecord("1")}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreadable")
}
