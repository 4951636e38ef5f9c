package ingest_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/laborcalc/indemnity-engine/generic"
	"github.com/laborcalc/indemnity-engine/generic/store"
	"github.com/laborcalc/indemnity-engine/ingest"
)

// =============================================================================
// XLSX
// =============================================================================

func workbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	require.NoError(t, f.SetCellValue(sheet, "A1", "Desde"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "Hasta"))
	require.NoError(t, f.SetCellValue(sheet, "C1", "Tasa"))

	require.NoError(t, f.SetCellValue(sheet, "A2", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, f.SetCellValue(sheet, "B2", time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, f.SetCellValue(sheet, "C2", 4.25))

	require.NoError(t, f.SetCellValue(sheet, "A3", "01/02/2024"))
	require.NoError(t, f.SetCellValue(sheet, "B3", "29/02/2024"))
	require.NoError(t, f.SetCellValue(sheet, "C3", "3,9"))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestReadXLSX_DateSerialsAndText(t *testing.T) {
	// GIVEN: a workbook mixing date cells and text dates
	tbl, err := ingest.ReadXLSX(bytes.NewReader(workbook(t)))
	require.NoError(t, err)
	assert.True(t, tbl.DateSerials)

	// WHEN: building lending rates from it
	s, rep, err := ingest.BuildLendingRates(tbl)
	require.NoError(t, err)

	// THEN: both representations yield the same kind of interval
	require.Equal(t, 2, s.Len(), "drops: %+v", rep.Drops)
	assert.Equal(t, generic.NewDate(2024, time.January, 1), s.Intervals[0].From)
	assert.Equal(t, generic.NewDate(2024, time.January, 31), s.Intervals[0].To)
	assert.True(t, s.Intervals[0].MonthlyRate.Equal(d("4.25")))
	assert.Equal(t, generic.NewDate(2024, time.February, 29), s.Intervals[1].To)
	assert.True(t, s.Intervals[1].MonthlyRate.Equal(d("3.9")))
}

// =============================================================================
// PARSE / IMPORT
// =============================================================================

func TestParse_UnknownDataset(t *testing.T) {
	_, _, err := ingest.Parse("salarios", ingest.FormatCSV, strings.NewReader("a,b\n"))
	assert.ErrorIs(t, err, generic.ErrUnknownDataset)
}

func TestParse_YAMLOnlyForFloors(t *testing.T) {
	_, _, err := ingest.Parse(generic.DatasetWageIndex, ingest.FormatYAML, strings.NewReader("floors: []"))
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ingest.ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, ingest.FormatXLSX, f)

	f, err = ingest.FormatFromPath("data/pisos.yml")
	require.NoError(t, err)
	assert.Equal(t, ingest.FormatYAML, f)

	_, err = ingest.ParseFormat("pdf")
	assert.Error(t, err)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestImporter_ImportAll(t *testing.T) {
	// GIVEN: a data directory with three of the four datasets
	dir := t.TempDir()
	writeFile(t, dir, "dataset_ripte.csv", "año,mes,indice_ripte\n2024,Enero,100\n2024,Febrero,110\n")
	writeFile(t, dir, "dataset_ipc.csv", "periodo;variacion_mensual\n2024-01;20,6\n")
	writeFile(t, dir, "pisos.yaml", "floors:\n  - from: 2024-03-01\n    amount: 55000000\n    norm: Res. 5/2024\n")

	sources := ingest.DefaultSources(dir)
	sources.Files[generic.DatasetFloors] = "pisos.yaml"

	repo := store.NewMemory()
	im := &ingest.Importer{Sources: sources, Repo: repo, Logger: zap.NewNop()}

	// WHEN: importing everything
	reports, err := im.ImportAll(context.Background())

	// THEN: present datasets are stored, the missing one is skipped
	require.NoError(t, err)
	assert.Len(t, reports, 3)

	snap, err := repo.LoadSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, snap.WageIndex.Len())
	assert.Equal(t, 1, snap.PriceIndex.Len())
	assert.True(t, snap.LendingRates.IsEmpty())
	assert.Equal(t, 1, snap.Floors.Len())
}

func TestImporter_BrokenDatasetDoesNotStopOthers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dataset_ripte.csv", "nivel\n100\n")
	writeFile(t, dir, "dataset_ipc.csv", "periodo,ipc\n2024-01,20\n")

	repo := store.NewMemory()
	im := &ingest.Importer{Sources: ingest.DefaultSources(dir), Repo: repo, Logger: zap.NewNop()}

	reports, err := im.ImportAll(context.Background())
	assert.ErrorIs(t, err, generic.ErrMissingColumn)
	assert.Len(t, reports, 1)

	snap, _ := repo.LoadSnapshot(context.Background())
	assert.Equal(t, 1, snap.PriceIndex.Len())
}
