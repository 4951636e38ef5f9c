package ingest

import (
	"strings"

	"github.com/laborcalc/indemnity-engine/generic"
)

// =============================================================================
// COLUMN ALIAS TABLE
// =============================================================================
//
// A logical column is resolved against the normalised header in three passes,
// stopping at the first hit:
//   1. exact alias, in the listed order
//   2. header containing a fragment, in the listed order
//   3. first column whose cells are all numeric (NumericFallback only)
// A header column claimed by one logical column is not offered to the next.

// ColumnSpec declares how to find one logical column.
type ColumnSpec struct {
	Name            string
	Aliases         []string
	Fragments       []string
	NumericFallback bool
	Required        bool
}

var (
	wageYearColumn = ColumnSpec{
		Name:    "year",
		Aliases: []string{"ano", "anio", "year"},
	}
	wageMonthColumn = ColumnSpec{
		Name:    "month",
		Aliases: []string{"mes", "month"},
	}
	wageDateColumn = ColumnSpec{
		Name:      "date",
		Aliases:   []string{"fecha", "periodo", "period", "date"},
		Fragments: []string{"fecha", "periodo", "mes"},
		Required:  true,
	}
	wageValueColumn = ColumnSpec{
		Name:            "value",
		Aliases:         []string{"indice_ripte", "ripte", "indice", "valor", "value"},
		Fragments:       []string{"ripte", "valor", "indice"},
		NumericFallback: true,
		Required:        true,
	}

	priceDateColumn = ColumnSpec{
		Name:      "date",
		Aliases:   []string{"periodo", "fecha", "mes", "period", "date"},
		Fragments: []string{"fecha", "periodo", "mes"},
		Required:  true,
	}
	priceValueColumn = ColumnSpec{
		Name:            "variation",
		Aliases:         []string{"variacion_mensual", "variacion", "inflacion", "ipc", "value"},
		Fragments:       []string{"variacion", "inflacion", "ipc", "porcentaje", "mensual", "indice"},
		NumericFallback: true,
		Required:        true,
	}

	rateFromColumn = ColumnSpec{
		Name:      "from",
		Aliases:   []string{"desde", "fecha_desde", "from", "inicio", "fecha"},
		Fragments: []string{"desde", "inicio"},
		Required:  true,
	}
	rateToColumn = ColumnSpec{
		Name:      "to",
		Aliases:   []string{"hasta", "fecha_hasta", "to", "fin"},
		Fragments: []string{"hasta"},
	}
	rateValueColumn = ColumnSpec{
		Name:            "rate",
		Aliases:         []string{"valor", "porcentaje", "tasa", "rate", "value"},
		Fragments:       []string{"tasa", "valor", "porcentaje"},
		NumericFallback: true,
		Required:        true,
	}

	floorFromColumn = ColumnSpec{
		Name:      "from",
		Aliases:   []string{"fecha_inicio", "desde", "vigencia_desde", "from", "fecha"},
		Fragments: []string{"inicio", "desde"},
		Required:  true,
	}
	floorToColumn = ColumnSpec{
		Name:      "to",
		Aliases:   []string{"fecha_fin", "hasta", "vigencia_hasta", "to"},
		Fragments: []string{"fin", "hasta"},
	}
	floorAmountColumn = ColumnSpec{
		Name:            "amount",
		Aliases:         []string{"monto_minimo", "piso", "monto", "importe", "amount"},
		Fragments:       []string{"monto", "piso", "importe"},
		NumericFallback: true,
		Required:        true,
	}
	floorNormColumn = ColumnSpec{
		Name:      "norm",
		Aliases:   []string{"norma", "resol", "resolucion", "norm"},
		Fragments: []string{"norma", "resol"},
	}
	floorLinkColumn = ColumnSpec{
		Name:      "link",
		Aliases:   []string{"enlace", "link", "url"},
		Fragments: []string{"enlace", "link", "url"},
	}
)

// NormalizeHeader folds case and accents and joins words with '_':
// "Índice RIPTE" -> "indice_ripte".
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = generic.FoldText(h)
	return strings.Join(strings.FieldsFunc(h, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '.'
	}), "_")
}

// =============================================================================
// RESOLVER
// =============================================================================

type resolver struct {
	dataset string
	table   *Table
	header  []string
	claimed map[int]bool
	found   map[string]string
}

func newResolver(dataset string, t *Table) *resolver {
	header := make([]string, len(t.Header))
	for i, h := range t.Header {
		header[i] = NormalizeHeader(h)
	}
	return &resolver{
		dataset: dataset,
		table:   t,
		header:  header,
		claimed: make(map[int]bool),
		found:   make(map[string]string),
	}
}

// resolve returns the column index for spec, or -1. A required column that
// cannot be found yields a *generic.MissingColumnError.
func (r *resolver) resolve(spec ColumnSpec) (int, error) {
	col := r.lookup(spec)
	if col < 0 {
		if spec.Required {
			return -1, &generic.MissingColumnError{Dataset: r.dataset, Column: spec.Name, Header: r.table.Header}
		}
		return -1, nil
	}
	r.claimed[col] = true
	r.found[spec.Name] = r.table.Header[col]
	return col, nil
}

func (r *resolver) lookup(spec ColumnSpec) int {
	for _, alias := range spec.Aliases {
		for i, h := range r.header {
			if !r.claimed[i] && h == alias {
				return i
			}
		}
	}
	for _, frag := range spec.Fragments {
		for i, h := range r.header {
			if !r.claimed[i] && strings.Contains(h, frag) {
				return i
			}
		}
	}
	if spec.NumericFallback {
		for i := range r.header {
			if !r.claimed[i] && r.numericColumn(i) {
				return i
			}
		}
	}
	return -1
}

// release returns a claimed column to the pool.
func (r *resolver) release(col int, name string) {
	if col < 0 {
		return
	}
	delete(r.claimed, col)
	delete(r.found, name)
}

// numericColumn reports whether every non-empty cell of col parses as a
// number, with at least one such cell.
func (r *resolver) numericColumn(col int) bool {
	seen := false
	for _, row := range r.table.Rows {
		cell := r.table.Cell(row, col)
		if cell == "" {
			continue
		}
		if _, err := generic.ParseNumber(cell); err != nil {
			return false
		}
		seen = true
	}
	return seen
}
