/*
Package sqlstore implements generic.Store on database/sql.

PURPOSE:
  One implementation of the dataset and calculation tables shared by the
  SQLite and PostgreSQL backends. The backends open the connection, run their
  migrations and wrap it with New; only the placeholder style differs.

KEY TABLES:
  wage_index, price_index: month (YYYY-MM-DD), value
  lending_rates:           date_from, date_to, monthly_rate
  floors:                  date_from, date_to (NULL = in force), amount, norm, link
  calculations:            id, kind, created_at, input_json, result_json

STORAGE FORMAT:
  Dates are stored as ISO text and decimals as their exact string form, so a
  loaded snapshot carries the same digits that were imported.

REPLACE SEMANTICS:
  Each Replace* call deletes and re-inserts one dataset inside a single
  transaction. Readers see either the old or the new dataset, never a mix.
*/
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/laborcalc/indemnity-engine/generic"
)

// Placeholder selects the bind parameter syntax of the driver.
type Placeholder int

const (
	Question Placeholder = iota // sqlite3: ?
	Dollar                      // postgres: $1
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

	defaultListLimit = 100
)

// Store implements generic.Store.
type Store struct {
	db          *sql.DB
	placeholder Placeholder
}

// New wraps an open, migrated database.
func New(db *sql.DB, placeholder Placeholder) *Store {
	return &Store{db: db, placeholder: placeholder}
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders for the driver.
func (s *Store) rebind(query string) string {
	if s.placeholder != Dollar {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// =============================================================================
// SERIES REPOSITORY
// =============================================================================

func (s *Store) ReplaceWageIndex(ctx context.Context, series generic.IndexSeries) error {
	return s.replaceIndex(ctx, "wage_index", series)
}

func (s *Store) ReplacePriceIndex(ctx context.Context, series generic.IndexSeries) error {
	return s.replaceIndex(ctx, "price_index", series)
}

func (s *Store) replaceIndex(ctx context.Context, table string, series generic.IndexSeries) error {
	return s.replace(ctx, table, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, s.rebind(
			"INSERT INTO "+table+" (month, value) VALUES (?, ?)"))
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, p := range series.Points {
			if _, err := stmt.ExecContext(ctx, p.Date.String(), p.Value.String()); err != nil {
				return fmt.Errorf("insert %s %s: %w", table, p.Date, err)
			}
		}
		return nil
	})
}

func (s *Store) ReplaceLendingRates(ctx context.Context, series generic.RateSeries) error {
	return s.replace(ctx, "lending_rates", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, s.rebind(
			"INSERT INTO lending_rates (date_from, date_to, monthly_rate) VALUES (?, ?, ?)"))
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, r := range series.Intervals {
			if _, err := stmt.ExecContext(ctx, r.From.String(), r.To.String(), r.MonthlyRate.String()); err != nil {
				return fmt.Errorf("insert lending rate %s: %w", r.From, err)
			}
		}
		return nil
	})
}

func (s *Store) ReplaceFloors(ctx context.Context, schedule generic.FloorSchedule) error {
	return s.replace(ctx, "floors", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, s.rebind(
			"INSERT INTO floors (date_from, date_to, amount, norm, link) VALUES (?, ?, ?, ?, ?)"))
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, f := range schedule.Records {
			var to sql.NullString
			if f.To != nil {
				to = sql.NullString{String: f.To.String(), Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, f.From.String(), to, f.Amount.String(), f.NormReference, f.Link); err != nil {
				return fmt.Errorf("insert floor %s: %w", f.From, err)
			}
		}
		return nil
	})
}

// replace empties table and refills it within one transaction.
func (s *Store) replace(ctx context.Context, table string, fill func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	if err := fill(tx); err != nil {
		return fmt.Errorf("failed to replace %s: %w", table, err)
	}
	return tx.Commit()
}

// LoadSnapshot reads all four datasets.
func (s *Store) LoadSnapshot(ctx context.Context) (*generic.Snapshot, error) {
	wage, err := s.loadIndex(ctx, "wage_index", generic.DatasetWageIndex)
	if err != nil {
		return nil, err
	}
	price, err := s.loadIndex(ctx, "price_index", generic.DatasetPriceIndex)
	if err != nil {
		return nil, err
	}
	rates, err := s.loadRates(ctx)
	if err != nil {
		return nil, err
	}
	floors, err := s.loadFloors(ctx)
	if err != nil {
		return nil, err
	}
	return &generic.Snapshot{
		WageIndex:    wage,
		PriceIndex:   price,
		LendingRates: rates,
		Floors:       floors,
		LoadedAt:     time.Now().UTC(),
	}, nil
}

func (s *Store) loadIndex(ctx context.Context, table, name string) (generic.IndexSeries, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT month, value FROM "+table+" ORDER BY month, id")
	if err != nil {
		return generic.IndexSeries{}, fmt.Errorf("failed to load %s: %w", table, err)
	}
	defer rows.Close()

	var points []generic.IndexPoint
	for rows.Next() {
		var month, value string
		if err := rows.Scan(&month, &value); err != nil {
			return generic.IndexSeries{}, err
		}
		p, err := indexPoint(month, value)
		if err != nil {
			return generic.IndexSeries{}, fmt.Errorf("%s: %w", table, err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return generic.IndexSeries{}, err
	}
	return generic.NewIndexSeries(name, points), nil
}

func (s *Store) loadRates(ctx context.Context) (generic.RateSeries, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT date_from, date_to, monthly_rate FROM lending_rates ORDER BY date_from, id")
	if err != nil {
		return generic.RateSeries{}, fmt.Errorf("failed to load lending_rates: %w", err)
	}
	defer rows.Close()

	var intervals []generic.RateInterval
	for rows.Next() {
		var from, to, rate string
		if err := rows.Scan(&from, &to, &rate); err != nil {
			return generic.RateSeries{}, err
		}
		var r generic.RateInterval
		if r.From, err = parseDate(from); err != nil {
			return generic.RateSeries{}, err
		}
		if r.To, err = parseDate(to); err != nil {
			return generic.RateSeries{}, err
		}
		if r.MonthlyRate, err = decimal.NewFromString(rate); err != nil {
			return generic.RateSeries{}, fmt.Errorf("lending_rates: %w", err)
		}
		intervals = append(intervals, r)
	}
	if err := rows.Err(); err != nil {
		return generic.RateSeries{}, err
	}
	return generic.NewRateSeries(intervals), nil
}

func (s *Store) loadFloors(ctx context.Context) (generic.FloorSchedule, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT date_from, date_to, amount, norm, link FROM floors ORDER BY date_from, id")
	if err != nil {
		return generic.FloorSchedule{}, fmt.Errorf("failed to load floors: %w", err)
	}
	defer rows.Close()

	var records []generic.FloorRecord
	for rows.Next() {
		var (
			from, amount, norm, link string
			to                       sql.NullString
		)
		if err := rows.Scan(&from, &to, &amount, &norm, &link); err != nil {
			return generic.FloorSchedule{}, err
		}
		f := generic.FloorRecord{NormReference: norm, Link: link}
		if f.From, err = parseDate(from); err != nil {
			return generic.FloorSchedule{}, err
		}
		if to.Valid {
			end, err := parseDate(to.String)
			if err != nil {
				return generic.FloorSchedule{}, err
			}
			f.To = &end
		}
		if f.Amount, err = decimal.NewFromString(amount); err != nil {
			return generic.FloorSchedule{}, fmt.Errorf("floors: %w", err)
		}
		records = append(records, f)
	}
	if err := rows.Err(); err != nil {
		return generic.FloorSchedule{}, err
	}
	return generic.NewFloorSchedule(records), nil
}

// =============================================================================
// CALCULATION LOG
// =============================================================================

func (s *Store) RecordCalculation(ctx context.Context, rec generic.CalculationRecord) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO calculations (id, kind, created_at, input_json, result_json)
		VALUES (?, ?, ?, ?, ?)`),
		rec.ID,
		string(rec.Kind),
		rec.CreatedAt.UTC().Format(timeLayout),
		string(rec.Input),
		string(rec.Result),
	)
	if err != nil {
		return fmt.Errorf("failed to record calculation: %w", err)
	}
	return nil
}

func (s *Store) GetCalculation(ctx context.Context, id string) (*generic.CalculationRecord, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, kind, created_at, input_json, result_json
		FROM calculations WHERE id = ?`), id)

	rec, err := scanCalculation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, generic.ErrCalculationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) ListCalculations(ctx context.Context, limit int) ([]generic.CalculationRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, kind, created_at, input_json, result_json
		FROM calculations ORDER BY created_at DESC, id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list calculations: %w", err)
	}
	defer rows.Close()

	var out []generic.CalculationRecord
	for rows.Next() {
		rec, err := scanCalculation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCalculation(row scanner) (generic.CalculationRecord, error) {
	var (
		rec                   generic.CalculationRecord
		kind, created         string
		inputJSON, resultJSON string
	)
	if err := row.Scan(&rec.ID, &kind, &created, &inputJSON, &resultJSON); err != nil {
		return rec, err
	}
	rec.Kind = generic.CalculationKind(kind)
	rec.Input = []byte(inputJSON)
	rec.Result = []byte(resultJSON)

	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return rec, fmt.Errorf("calculation %s: bad created_at: %w", rec.ID, err)
	}
	rec.CreatedAt = t
	return rec, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func parseDate(s string) (generic.CalendarDate, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return generic.CalendarDate{}, fmt.Errorf("bad stored date %q: %w", s, err)
	}
	return generic.DateOf(t), nil
}

func indexPoint(month, value string) (generic.IndexPoint, error) {
	d, err := parseDate(month)
	if err != nil {
		return generic.IndexPoint{}, err
	}
	v, err := decimal.NewFromString(value)
	if err != nil {
		return generic.IndexPoint{}, err
	}
	return generic.IndexPoint{Date: d, Value: v}, nil
}

var _ generic.Store = (*Store)(nil)
