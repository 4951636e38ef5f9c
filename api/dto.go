/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's result values from the external contract.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *DTO: Response types returned to clients

NUMBERS:
  Amounts are exact decimal strings ("1424456.62"); each carries a sibling
  "*_display" field in Argentine format ("$ 1.424.456,62"). Input amounts
  accept JSON numbers or strings in either convention ("150000.50",
  "150.000,50"). Dates accept any format the date normalizer reads.

VALIDATION:
  Validation is done by the engine's Case.Validate, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"bytes"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/laborcalc/indemnity-engine/generic"
	"github.com/laborcalc/indemnity-engine/injury"
	"github.com/laborcalc/indemnity-engine/ingest"
	"github.com/laborcalc/indemnity-engine/money"
	"github.com/laborcalc/indemnity-engine/severance"
)

// =============================================================================
// INPUT HELPERS
// =============================================================================

// Number is a decimal read from a JSON number or a formatted string.
type Number struct {
	decimal.Decimal
	Set bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	d, err := generic.ParseNumber(raw)
	if err != nil {
		return err
	}
	n.Decimal, n.Set = d, true
	return nil
}

// parseDateField reads an optional date; empty stays zero.
func parseDateField(field, raw string) (generic.CalendarDate, error) {
	if raw == "" {
		return generic.CalendarDate{}, nil
	}
	d, err := generic.ParseDate(raw)
	if err != nil {
		return generic.CalendarDate{}, generic.NewInvalidInput(field, err.Error())
	}
	return d, nil
}

func dateString(d generic.CalendarDate) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

// =============================================================================
// SEVERANCE
// =============================================================================

// SeveranceRequest is the request to liquidate a dismissal.
type SeveranceRequest struct {
	HireDate          string `json:"hire_date"`
	DismissalDate     string `json:"dismissal_date"`
	LiquidationDate   string `json:"liquidation_date,omitempty"`
	MonthlyWage       Number `json:"monthly_wage"`
	NoticeAlreadyPaid bool   `json:"notice_already_paid"`
}

func (r SeveranceRequest) toCase() (severance.Case, error) {
	var (
		c   severance.Case
		err error
	)
	if c.HireDate, err = parseDateField("hire_date", r.HireDate); err != nil {
		return c, err
	}
	if c.DismissalDate, err = parseDateField("dismissal_date", r.DismissalDate); err != nil {
		return c, err
	}
	if c.LiquidationDate, err = parseDateField("liquidation_date", r.LiquidationDate); err != nil {
		return c, err
	}
	c.MonthlyWage = r.MonthlyWage.Decimal
	c.NoticeAlreadyPaid = r.NoticeAlreadyPaid
	return c, nil
}

// AmountDTO is an exact amount and its display form.
type AmountDTO struct {
	Value   decimal.Decimal `json:"value"`
	Display string          `json:"display"`
}

func amount(x decimal.Decimal) AmountDTO {
	return AmountDTO{Value: x, Display: money.FormatCurrency(x)}
}

// ConceptDTO is one line of a liquidation.
type ConceptDTO struct {
	Code   string    `json:"code"`
	Label  string    `json:"label"`
	Amount AmountDTO `json:"amount"`
}

// SeveranceDTO is the liquidation of one dismissal.
type SeveranceDTO struct {
	TenureYears     int           `json:"tenure_years"`
	TenureMonths    int           `json:"tenure_months"`
	NoticeMonths    int           `json:"notice_months"`
	DaysInMonth     int           `json:"days_in_month"`
	IntegrationDays int           `json:"integration_days"`
	BonusDays       int           `json:"bonus_days"`
	VacationDays    int           `json:"vacation_days"`
	Concepts        []ConceptDTO  `json:"concepts"`
	Total           AmountDTO     `json:"total"`
	Updates         *SevUpdateDTO `json:"updates,omitempty"`
}

// SevUpdateDTO carries the severance total to the liquidation date.
type SevUpdateDTO struct {
	From           string          `json:"from"`
	To             string          `json:"to"`
	IndexRatio     decimal.Decimal `json:"index_ratio"`
	IndexNeutral   bool            `json:"index_neutral"`
	IndexUpdated   AmountDTO       `json:"index_updated"`
	IndexSurcharge AmountDTO       `json:"index_surcharge"`
	IndexTotal     AmountDTO       `json:"index_total"`
	RatePct        string          `json:"rate_pct"`
	RateTotal      AmountDTO       `json:"rate_total"`
	InflationPct   string          `json:"inflation_pct"`
	InflationTotal AmountDTO       `json:"inflation_total"`
}

func toSeveranceDTO(res severance.Result) SeveranceDTO {
	dto := SeveranceDTO{
		TenureYears:     res.Tenure.Years,
		TenureMonths:    res.Tenure.Months,
		NoticeMonths:    res.Detail.NoticeMonths,
		DaysInMonth:     res.Detail.DaysInMonth,
		IntegrationDays: res.Detail.IntegrationDays,
		BonusDays:       res.Detail.BonusDays,
		VacationDays:    res.Detail.VacationDays,
		Total:           amount(res.Total),
	}
	for _, l := range res.Concepts.Lines() {
		dto.Concepts = append(dto.Concepts, ConceptDTO{Code: l.Code, Label: l.Label, Amount: amount(l.Amount)})
	}
	if u := res.Updates; u != nil {
		dto.Updates = &SevUpdateDTO{
			From:           dateString(u.Window.Start),
			To:             dateString(u.Window.End),
			IndexRatio:     u.Index.Ratio.Ratio.Round(6),
			IndexNeutral:   u.Index.Ratio.Neutral,
			IndexUpdated:   amount(u.Index.Updated),
			IndexSurcharge: amount(u.Index.Surcharge),
			IndexTotal:     amount(u.Index.Total),
			RatePct:        money.FormatPercent(u.Rate.TotalPct, 2),
			RateTotal:      amount(u.RateTotal),
			InflationPct:   money.FormatPercent(u.InflationPct, 2),
			InflationTotal: amount(u.InflationTotal),
		}
	}
	return dto
}

// =============================================================================
// INJURY
// =============================================================================

// InjuryRequest is the request to compute an occupational injury claim.
type InjuryRequest struct {
	EventDate         string `json:"event_date"`
	FinalDate         string `json:"final_date"`
	BaseMonthlyIncome Number `json:"base_monthly_income"`
	Age               int    `json:"age"`
	DisabilityPct     Number `json:"disability_pct"`
	IncludeSurcharge  bool   `json:"include_surcharge"`
}

func (r InjuryRequest) toCase() (injury.Case, error) {
	var (
		c   injury.Case
		err error
	)
	if c.EventDate, err = parseDateField("event_date", r.EventDate); err != nil {
		return c, err
	}
	if c.FinalDate, err = parseDateField("final_date", r.FinalDate); err != nil {
		return c, err
	}
	c.BaseMonthlyIncome = r.BaseMonthlyIncome.Decimal
	c.Age = r.Age
	c.DisabilityPct = r.DisabilityPct.Decimal
	c.IncludeSurcharge = r.IncludeSurcharge
	return c, nil
}

// FloorDTO is a statutory minimum record.
type FloorDTO struct {
	From          string    `json:"from"`
	To            string    `json:"to,omitempty"`
	InForce       bool      `json:"in_force"`
	Amount        AmountDTO `json:"amount"`
	NormReference string    `json:"norm_reference"`
	Link          string    `json:"link,omitempty"`
}

// FloorCheckDTO reports the floor comparison of a claim.
type FloorCheckDTO struct {
	Found         bool       `json:"found"`
	Applied       bool       `json:"applied"`
	Amount        *AmountDTO `json:"amount,omitempty"`
	Proportional  *AmountDTO `json:"proportional,omitempty"`
	NormReference string     `json:"norm_reference,omitempty"`
	Link          string     `json:"link,omitempty"`
}

// InjuryDTO is the computed claim with its liquidation.
type InjuryDTO struct {
	FormulaCapital AmountDTO     `json:"formula_capital"`
	Floor          FloorCheckDTO `json:"floor"`
	Capital        AmountDTO     `json:"capital"`
	Surcharge      AmountDTO     `json:"surcharge"`
	CapitalBase    AmountDTO     `json:"capital_base"`

	IndexStart     string          `json:"index_start,omitempty"`
	IndexEnd       string          `json:"index_end,omitempty"`
	IndexRatio     decimal.Decimal `json:"index_ratio"`
	IndexNeutral   bool            `json:"index_neutral"`
	ElapsedDays    int             `json:"elapsed_days"`
	IndexUpdated   AmountDTO       `json:"index_updated"`
	IndexInterest  AmountDTO       `json:"index_interest"`
	IndexTotal     AmountDTO       `json:"index_total"`
	RateDays       int             `json:"rate_days"`
	RatePct        string          `json:"rate_pct"`
	RateTotal      AmountDTO       `json:"rate_total"`
	InflationPct   string          `json:"inflation_pct"`
	Favorable      string          `json:"favorable"`
	FavorableTotal AmountDTO       `json:"favorable_total"`

	Liquidation LiquidationDTO `json:"liquidation"`
}

// LiquidationDTO adds court charges to the favourable amount.
type LiquidationDTO struct {
	CourtFee     AmountDTO `json:"court_fee"`
	BarSurcharge AmountDTO `json:"bar_surcharge"`
	Total        AmountDTO `json:"total"`
	InWords      string    `json:"in_words"`
}

func toInjuryDTO(res injury.Result, liq injury.Liquidation) InjuryDTO {
	dto := InjuryDTO{
		FormulaCapital: amount(res.FormulaCapital),
		Floor: FloorCheckDTO{
			Found:         res.Floor.Found,
			Applied:       res.Floor.Applied,
			NormReference: res.Floor.NormReference,
			Link:          res.Floor.Link,
		},
		Capital:        amount(res.Capital),
		Surcharge:      amount(res.Surcharge),
		CapitalBase:    amount(res.CapitalBase),
		IndexRatio:     res.Index.Ratio.Ratio.Round(6),
		IndexNeutral:   res.Index.Ratio.Neutral,
		ElapsedDays:    res.Index.ElapsedDays,
		IndexUpdated:   amount(res.Index.Updated),
		IndexInterest:  amount(res.Index.Surcharge),
		IndexTotal:     amount(res.Index.Total),
		RateDays:       res.Rate.Days(),
		RatePct:        money.FormatPercent(res.Rate.TotalPct, 2),
		RateTotal:      amount(res.RateTotal),
		InflationPct:   money.FormatPercent(res.InflationPct, 2),
		Favorable:      string(res.Favorable),
		FavorableTotal: amount(res.FavorableAmount),
		Liquidation: LiquidationDTO{
			CourtFee:     amount(liq.CourtFee),
			BarSurcharge: amount(liq.BarSurcharge),
			Total:        amount(liq.Total),
			InWords:      liq.InWords,
		},
	}
	if res.Floor.Found {
		a, p := amount(res.Floor.Amount), amount(res.Floor.Proportional)
		dto.Floor.Amount, dto.Floor.Proportional = &a, &p
	}
	if !res.Index.Ratio.Neutral {
		dto.IndexStart = res.Index.Ratio.Start.Date.MonthKey()
		dto.IndexEnd = res.Index.Ratio.End.Date.MonthKey()
	}
	return dto
}

// =============================================================================
// BASE INCOME
// =============================================================================

// BaseIncomeRequest lists the wages of the year before the event. When
// Months is empty, Amounts are matched to the twelve prior months, oldest
// first.
type BaseIncomeRequest struct {
	EventDate string         `json:"event_date"`
	Wages     []WageEntryDTO `json:"wages"`
}

// WageEntryDTO is one month's wage. Include defaults to true.
type WageEntryDTO struct {
	Month   string `json:"month"`
	Amount  Number `json:"amount"`
	Include *bool  `json:"include,omitempty"`
}

func (r BaseIncomeRequest) toWages() (generic.CalendarDate, []injury.MonthlyWage, error) {
	event, err := parseDateField("event_date", r.EventDate)
	if err != nil {
		return event, nil, err
	}
	if event.IsZero() {
		return event, nil, generic.NewInvalidInput("event_date", "required")
	}
	if len(r.Wages) > baseIncomeMonths {
		return event, nil, generic.NewInvalidInput("wages", "at most 12 months")
	}

	prior := injury.PriorMonths(event, baseIncomeMonths)
	offset := baseIncomeMonths - len(r.Wages)

	wages := make([]injury.MonthlyWage, 0, len(r.Wages))
	for i, w := range r.Wages {
		month := prior[offset+i]
		if w.Month != "" {
			if month, err = parseDateField("wages.month", w.Month); err != nil {
				return event, nil, err
			}
		}
		if w.Amount.IsNegative() {
			return event, nil, generic.NewInvalidInput("wages.amount", "must not be negative")
		}
		include := true
		if w.Include != nil {
			include = *w.Include
		}
		wages = append(wages, injury.MonthlyWage{Month: month, Amount: w.Amount.Decimal, Include: include})
	}
	return event, wages, nil
}

// BaseIncomeRowDTO is one updated month.
type BaseIncomeRowDTO struct {
	Month     string           `json:"month"`
	Amount    AmountDTO        `json:"amount"`
	Index     *decimal.Decimal `json:"index,omitempty"`
	Variation string           `json:"variation,omitempty"`
	Updated   AmountDTO        `json:"updated"`
	Days      int              `json:"days"`
	Counted   bool             `json:"counted"`
}

// BaseIncomeDTO is the IBM and its detail.
type BaseIncomeDTO struct {
	EventDate    string             `json:"event_date"`
	Rows         []BaseIncomeRowDTO `json:"rows"`
	Months       int                `json:"months"`
	Days         int                `json:"days"`
	TotalWages   AmountDTO          `json:"total_wages"`
	TotalUpdated AmountDTO          `json:"total_updated"`
	IBM          AmountDTO          `json:"ibm"`
}

func toBaseIncomeDTO(b injury.BaseIncome) BaseIncomeDTO {
	dto := BaseIncomeDTO{
		EventDate:    dateString(b.EventDate),
		Rows:         make([]BaseIncomeRowDTO, 0, len(b.Rows)),
		Months:       b.Months,
		Days:         b.Days,
		TotalWages:   amount(b.TotalWages),
		TotalUpdated: amount(money.Round2(b.TotalUpdated)),
		IBM:          amount(b.IBM),
	}
	for _, r := range b.Rows {
		row := BaseIncomeRowDTO{
			Month:   r.Month.MonthKey(),
			Amount:  amount(r.Amount),
			Index:   r.Index,
			Updated: amount(money.Round2(r.Updated)),
			Days:    r.Days,
			Counted: r.Counted,
		}
		if r.Variation != nil {
			row.Variation = money.FormatPercent(r.Variation.Mul(decimal.NewFromInt(100)), 2)
		}
		dto.Rows = append(dto.Rows, row)
	}
	return dto
}

// =============================================================================
// SERIES / DATASETS
// =============================================================================

// SeriesSummaryDTO is the latest entry of a dataset.
type SeriesSummaryDTO struct {
	Dataset string           `json:"dataset"`
	Count   int              `json:"count"`
	Date    string           `json:"date,omitempty"`
	To      string           `json:"to,omitempty"`
	Value   *decimal.Decimal `json:"value,omitempty"`
	Note    string           `json:"note,omitempty"`
	InForce *bool            `json:"in_force,omitempty"`
}

// SeriesStatusDTO describes the published snapshot.
type SeriesStatusDTO struct {
	LoadedAt string             `json:"loaded_at"`
	Series   []SeriesSummaryDTO `json:"series"`
}

func toSeriesStatus(snap *generic.Snapshot, today generic.CalendarDate) SeriesStatusDTO {
	dto := SeriesStatusDTO{Series: []SeriesSummaryDTO{}}
	if !snap.LoadedAt.IsZero() {
		dto.LoadedAt = snap.LoadedAt.UTC().Format(timeLayout)
	}
	for _, s := range snap.Summary(today) {
		sum := SeriesSummaryDTO{Dataset: s.Dataset, Count: s.Count, Value: s.Value, Note: s.Note}
		if s.Date != nil {
			sum.Date = s.Date.String()
		}
		if s.To != nil {
			sum.To = s.To.String()
		}
		if s.Dataset == generic.DatasetFloors && s.Date != nil {
			inForce := s.InForce
			sum.InForce = &inForce
		}
		dto.Series = append(dto.Series, sum)
	}
	return dto
}

func toFloorDTOs(s generic.FloorSchedule, today generic.CalendarDate) []FloorDTO {
	inForce, hasInForce := s.InForce(today)
	out := make([]FloorDTO, 0, s.Len())
	for _, r := range s.Records {
		f := FloorDTO{
			From:          r.From.String(),
			Amount:        amount(r.Amount),
			NormReference: r.NormReference,
			Link:          r.Link,
		}
		if r.To != nil {
			f.To = r.To.String()
		}
		f.InForce = hasInForce && r.From.Equal(inForce.From) && r.NormReference == inForce.NormReference
		out = append(out, f)
	}
	return out
}

// ImportReportDTO summarises one dataset import.
type ImportReportDTO struct {
	Dataset  string            `json:"dataset"`
	Source   string            `json:"source,omitempty"`
	Rows     int               `json:"rows"`
	Accepted int               `json:"accepted"`
	Dropped  int               `json:"dropped"`
	Columns  map[string]string `json:"columns,omitempty"`
	Drops    []DropDTO         `json:"drops,omitempty"`
}

// DropDTO is one rejected source row.
type DropDTO struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

func toImportReport(rep ingest.Report) ImportReportDTO {
	dto := ImportReportDTO{
		Dataset:  rep.Dataset,
		Source:   rep.Source,
		Rows:     rep.Rows,
		Accepted: rep.Accepted,
		Dropped:  rep.Dropped,
		Columns:  rep.Columns,
	}
	for _, d := range rep.Drops {
		dto.Drops = append(dto.Drops, DropDTO{Row: d.Row, Reason: d.Reason})
	}
	return dto
}

// =============================================================================
// CALCULATION LOG
// =============================================================================

// CalculationDTO is a logged calculation.
type CalculationDTO struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	CreatedAt string          `json:"created_at"`
	Input     json.RawMessage `json:"input,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
}

func toCalculationDTO(rec generic.CalculationRecord, withBody bool) CalculationDTO {
	dto := CalculationDTO{
		ID:        rec.ID,
		Kind:      string(rec.Kind),
		CreatedAt: rec.CreatedAt.UTC().Format(timeLayout),
	}
	if withBody {
		dto.Input = json.RawMessage(rec.Input)
		dto.Result = json.RawMessage(rec.Result)
	}
	return dto
}

// CalculationResponse wraps a computed result with its log id.
type CalculationResponse struct {
	ID     string `json:"id,omitempty"`
	Result any    `json:"result"`
}

// =============================================================================
// COMMON
// =============================================================================

// ErrorResponse is returned on errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Field   string `json:"field,omitempty"`
}
