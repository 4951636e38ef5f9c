package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/laborcalc/indemnity-engine/generic"
	"github.com/laborcalc/indemnity-engine/observability/metrics"
)

// =============================================================================
// DATASET - One parsed source, ready to persist
// =============================================================================

// Dataset holds exactly one of the series, selected by Name.
type Dataset struct {
	Name   string
	Index  generic.IndexSeries
	Rates  generic.RateSeries
	Floors generic.FloorSchedule
}

// Len returns the number of entries parsed.
func (d Dataset) Len() int {
	switch d.Name {
	case generic.DatasetLendingRates:
		return d.Rates.Len()
	case generic.DatasetFloors:
		return d.Floors.Len()
	}
	return d.Index.Len()
}

// Save replaces the matching dataset in repo.
func (d Dataset) Save(ctx context.Context, repo generic.SeriesRepository) error {
	switch d.Name {
	case generic.DatasetWageIndex:
		return repo.ReplaceWageIndex(ctx, d.Index)
	case generic.DatasetPriceIndex:
		return repo.ReplacePriceIndex(ctx, d.Index)
	case generic.DatasetLendingRates:
		return repo.ReplaceLendingRates(ctx, d.Rates)
	case generic.DatasetFloors:
		return repo.ReplaceFloors(ctx, d.Floors)
	}
	return fmt.Errorf("%w: %q", generic.ErrUnknownDataset, d.Name)
}

// Parse reads one dataset from r.
func Parse(name string, format Format, r io.Reader) (Dataset, Report, error) {
	if !generic.IsDataset(name) {
		return Dataset{}, Report{Dataset: name}, fmt.Errorf("%w: %q", generic.ErrUnknownDataset, name)
	}

	ds := Dataset{Name: name}
	if format == FormatYAML {
		if name != generic.DatasetFloors {
			return ds, Report{Dataset: name}, fmt.Errorf("%s: YAML is only accepted for %s", name, generic.DatasetFloors)
		}
		var (
			rep Report
			err error
		)
		ds.Floors, rep, err = ReadFloorsYAML(r)
		return ds, rep, err
	}

	var (
		t   *Table
		err error
	)
	switch format {
	case FormatXLSX:
		t, err = ReadXLSX(r)
	default:
		t, err = ReadCSV(r)
	}
	if err != nil {
		return ds, Report{Dataset: name}, err
	}

	var rep Report
	switch name {
	case generic.DatasetWageIndex:
		ds.Index, rep, err = BuildWageIndex(t)
	case generic.DatasetPriceIndex:
		ds.Index, rep, err = BuildPriceIndex(t)
	case generic.DatasetLendingRates:
		ds.Rates, rep, err = BuildLendingRates(t)
	case generic.DatasetFloors:
		ds.Floors, rep, err = BuildFloors(t)
	}
	return ds, rep, err
}

// =============================================================================
// DIRECTORY IMPORT
// =============================================================================

// Sources maps each dataset to a file under Dir.
type Sources struct {
	Dir   string
	Files map[string]string
}

// DefaultSources uses the file names of the published exports.
func DefaultSources(dir string) Sources {
	return Sources{
		Dir: dir,
		Files: map[string]string{
			generic.DatasetWageIndex:    "dataset_ripte.csv",
			generic.DatasetPriceIndex:   "dataset_ipc.csv",
			generic.DatasetLendingRates: "dataset_tasa.csv",
			generic.DatasetFloors:       "dataset_pisos.csv",
		},
	}
}

// Path returns the file for a dataset, or "" when none is configured.
func (s Sources) Path(dataset string) string {
	name := s.Files[dataset]
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.Dir, name)
}

// Importer reads every configured source and saves it into a repository.
type Importer struct {
	Sources Sources
	Repo    generic.SeriesRepository
	Logger  *zap.Logger
}

// ImportAll imports each dataset whose file exists. A missing file leaves the
// stored dataset untouched. Failures of individual datasets are joined; the
// other datasets are still imported.
func (im *Importer) ImportAll(ctx context.Context) ([]Report, error) {
	var (
		reports []Report
		errs    []error
	)
	for _, name := range generic.Datasets {
		path := im.Sources.Path(name)
		if path == "" {
			continue
		}
		rep, err := im.ImportFile(ctx, name, path)
		if errors.Is(err, os.ErrNotExist) {
			im.Logger.Warn("dataset file not found",
				zap.String("dataset", name), zap.String("path", path))
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		reports = append(reports, rep)
	}
	return reports, errors.Join(errs...)
}

// ImportFile parses one file and replaces the stored dataset.
func (im *Importer) ImportFile(ctx context.Context, name, path string) (Report, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Report{Dataset: name, Source: path}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Report{Dataset: name, Source: path}, err
	}
	defer f.Close()

	rep, err := im.Import(ctx, name, format, f)
	rep.Source = path
	return rep, err
}

// Import parses r and replaces the stored dataset.
func (im *Importer) Import(ctx context.Context, name string, format Format, r io.Reader) (Report, error) {
	ds, rep, err := Parse(name, format, r)
	if err != nil {
		im.Logger.Error("dataset parse failed", zap.String("dataset", name), zap.Error(err))
		return rep, fmt.Errorf("import %s: %w", name, err)
	}

	for _, d := range rep.Drops {
		im.Logger.Debug("dataset row dropped",
			zap.String("dataset", name), zap.Int("row", d.Row), zap.String("reason", d.Reason))
	}
	metrics.AddIngestRows(name, rep.Accepted, rep.Dropped)

	if err := ds.Save(ctx, im.Repo); err != nil {
		return rep, fmt.Errorf("save %s: %w", name, err)
	}
	im.Logger.Info("dataset imported",
		zap.String("dataset", name),
		zap.Int("rows", rep.Rows),
		zap.Int("accepted", rep.Accepted),
		zap.Int("dropped", rep.Dropped),
		zap.Any("columns", rep.Columns))
	return rep, nil
}
