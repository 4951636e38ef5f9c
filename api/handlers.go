/*
handlers.go - HTTP API handlers for the indemnity engine

PURPOSE:
  Exposes the severance and injury policies via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Calculations:
    POST   /api/severance              Liquidate a dismissal
    POST   /api/injury                 Compute an injury claim
    POST   /api/base-income            Compute the IBM from monthly wages
    GET    /api/calculations           List logged calculations
    GET    /api/calculations/{id}      Get one logged calculation

  Policies:
    GET    /api/policies               Rates in force, as a policy document

  Datasets:
    GET    /api/series/latest          Latest value of every dataset
    GET    /api/floors                 Statutory minimum schedule

  Admin:
    POST   /api/admin/datasets/{name}  Upload and replace one dataset
    POST   /api/admin/import           Re-import the configured files
    POST   /api/admin/reload           Reload and publish the snapshot

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Snapshots: the published dataset snapshot, read once per request
  - Store: calculation log
  - Importer/Refresher: dataset replacement and publication
  - Severance/Injury: policy rates

REQUEST FLOW:
  1. Parse HTTP request
  2. Normalize dates and amounts
  3. Call domain logic against the current snapshot
  4. Log the calculation
  5. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, unparseable values, unknown datasets
  - 404: Calculation not found
  - 413: Upload too large
  - 503: Import not configured
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - refresher.go: Snapshot reload
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/laborcalc/indemnity-engine/factory"
	"github.com/laborcalc/indemnity-engine/generic"
	"github.com/laborcalc/indemnity-engine/ingest"
	"github.com/laborcalc/indemnity-engine/injury"
	"github.com/laborcalc/indemnity-engine/observability/metrics"
	"github.com/laborcalc/indemnity-engine/severance"
)

const (
	timeLayout       = time.RFC3339
	baseIncomeMonths = 12

	defaultListLimit = 50
	maxListLimit     = 500
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Reloader publishes a fresh snapshot.
type Reloader interface {
	Reload(ctx context.Context) (*generic.Snapshot, error)
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Snapshots *generic.SnapshotHolder
	Store     generic.CalculationLog
	Importer  *ingest.Importer
	Refresher Reloader

	Severance *severance.Policy
	Injury    *injury.Policy

	// AdminLimiter throttles dataset writes and reloads; nil disables it.
	AdminLimiter *rate.Limiter

	Logger         *zap.Logger
	Now            func() time.Time
	NewID          func() string
	MaxUploadBytes int64
}

// NewHandler creates a handler with the statutory policies.
func NewHandler(snapshots *generic.SnapshotHolder, store generic.CalculationLog, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Snapshots:      snapshots,
		Store:          store,
		Severance:      severance.DefaultPolicy(),
		Injury:         injury.DefaultPolicy(),
		Logger:         logger,
		Now:            time.Now,
		NewID:          uuid.NewString,
		MaxUploadBytes: 10 << 20,
	}
}

func (h *Handler) snapshot() *generic.Snapshot {
	if h.Snapshots == nil {
		return generic.EmptySnapshot()
	}
	return h.Snapshots.Current()
}

func (h *Handler) today() generic.CalendarDate {
	return generic.DateOf(h.Now())
}

// =============================================================================
// CALCULATION HANDLERS
// =============================================================================

// CalculateSeverance liquidates a dismissal without cause.
func (h *Handler) CalculateSeverance(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req SeveranceRequest
	if err := decodeBody(r, &req); err != nil {
		h.observe(generic.KindSeverance, start, err)
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res, err := func() (severance.Result, error) {
		c, err := req.toCase()
		if err != nil {
			return severance.Result{}, err
		}
		return h.Severance.Calculate(h.snapshot(), c)
	}()
	h.observe(generic.KindSeverance, start, err)
	if err != nil {
		h.writeDomainError(w, "Invalid severance case", err)
		return
	}

	dto := toSeveranceDTO(res)
	id := h.record(r.Context(), generic.KindSeverance, req, dto)
	writeJSON(w, http.StatusOK, CalculationResponse{ID: id, Result: dto})
}

// CalculateInjury computes an occupational injury claim and its liquidation.
func (h *Handler) CalculateInjury(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req InjuryRequest
	if err := decodeBody(r, &req); err != nil {
		h.observe(generic.KindInjury, start, err)
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res, err := func() (injury.Result, error) {
		c, err := req.toCase()
		if err != nil {
			return injury.Result{}, err
		}
		return h.Injury.Calculate(h.snapshot(), c)
	}()
	h.observe(generic.KindInjury, start, err)
	if err != nil {
		h.writeDomainError(w, "Invalid injury case", err)
		return
	}

	dto := toInjuryDTO(res, h.Injury.Liquidate(res))
	id := h.record(r.Context(), generic.KindInjury, req, dto)
	writeJSON(w, http.StatusOK, CalculationResponse{ID: id, Result: dto})
}

// CalculateBaseIncome updates monthly wages by the wage index and returns
// the IBM.
func (h *Handler) CalculateBaseIncome(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req BaseIncomeRequest
	if err := decodeBody(r, &req); err != nil {
		h.observe(generic.KindBaseIncome, start, err)
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	event, wages, err := req.toWages()
	h.observe(generic.KindBaseIncome, start, err)
	if err != nil {
		h.writeDomainError(w, "Invalid wages", err)
		return
	}

	dto := toBaseIncomeDTO(injury.ComputeBaseIncome(h.snapshot().WageIndex, event, wages))
	id := h.record(r.Context(), generic.KindBaseIncome, req, dto)
	writeJSON(w, http.StatusOK, CalculationResponse{ID: id, Result: dto})
}

func (h *Handler) observe(kind generic.CalculationKind, start time.Time, err error) {
	result := metrics.ResultSuccess
	switch {
	case err == nil:
	case generic.IsClientError(err):
		result = metrics.ResultInvalid
	default:
		result = metrics.ResultError
	}
	metrics.ObserveCalculation(string(kind), result, time.Since(start))
}

// record appends the calculation to the log. A failed write is logged and
// the calculation is still returned, without an id.
func (h *Handler) record(ctx context.Context, kind generic.CalculationKind, input, result any) string {
	if h.Store == nil {
		return ""
	}
	in, err := json.Marshal(input)
	if err != nil {
		h.Logger.Error("encode calculation input", zap.Error(err))
		return ""
	}
	out, err := json.Marshal(result)
	if err != nil {
		h.Logger.Error("encode calculation result", zap.Error(err))
		return ""
	}

	rec := generic.CalculationRecord{
		ID:        h.NewID(),
		Kind:      kind,
		CreatedAt: h.Now().UTC(),
		Input:     in,
		Result:    out,
	}
	if err := h.Store.RecordCalculation(ctx, rec); err != nil {
		h.Logger.Error("record calculation", zap.String("kind", string(kind)), zap.Error(err))
		return ""
	}
	return rec.ID
}

// =============================================================================
// CALCULATION LOG HANDLERS
// =============================================================================

// ListCalculations returns the newest calculations first.
func (h *Handler) ListCalculations(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = min(n, maxListLimit)
	}
	if h.Store == nil {
		writeJSON(w, http.StatusOK, []CalculationDTO{})
		return
	}

	recs, err := h.Store.ListCalculations(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list calculations", err)
		return
	}
	dtos := make([]CalculationDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = toCalculationDTO(rec, false)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCalculation returns one logged calculation with its input and result.
func (h *Handler) GetCalculation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.Store == nil {
		writeError(w, http.StatusNotFound, "Calculation not found", generic.ErrCalculationNotFound)
		return
	}
	rec, err := h.Store.GetCalculation(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get calculation", err)
		return
	}
	writeJSON(w, http.StatusOK, toCalculationDTO(*rec, true))
}

// =============================================================================
// POLICY HANDLERS
// =============================================================================

// GetPolicies returns the rates the calculations use.
func (h *Handler) GetPolicies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, factory.NewPolicyFactory().ToJSON(h.Severance, h.Injury))
}

// =============================================================================
// DATASET HANDLERS
// =============================================================================

// LatestSeries reports the latest entry of every published dataset.
func (h *Handler) LatestSeries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toSeriesStatus(h.snapshot(), h.today()))
}

// ListFloors returns the floor schedule, flagging the record in force today.
func (h *Handler) ListFloors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toFloorDTOs(h.snapshot().Floors, h.today()))
}

// UploadDataset replaces one dataset from the request body and publishes a
// new snapshot. The body is either the raw file, with ?format=csv|xlsx|yaml,
// or a multipart form with a "file" field.
func (h *Handler) UploadDataset(w http.ResponseWriter, r *http.Request) {
	if h.Importer == nil {
		writeError(w, http.StatusServiceUnavailable, "Dataset import not configured", nil)
		return
	}
	name := chi.URLParam(r, "name")
	if !generic.IsDataset(name) {
		writeError(w, http.StatusBadRequest, "Unknown dataset", generic.ErrUnknownDataset)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	body, format, err := uploadSource(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Upload too large", err)
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid upload", err)
		return
	}
	defer body.Close()

	rep, err := h.Importer.Import(r.Context(), name, format, body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "Upload too large", err)
		case generic.IsClientError(err):
			writeJSON(w, http.StatusBadRequest, struct {
				ErrorResponse
				Report ImportReportDTO `json:"report"`
			}{ErrorResponse{Error: "Dataset rejected", Details: err.Error()}, toImportReport(rep)})
		default:
			writeError(w, http.StatusInternalServerError, "Failed to import dataset", err)
		}
		return
	}

	status, err := h.reload(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Dataset saved but reload failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"report":   toImportReport(rep),
		"snapshot": status,
	})
}

func uploadSource(r *http.Request) (io.ReadCloser, ingest.Format, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, hdr, err := r.FormFile("file")
		if err != nil {
			return nil, "", err
		}
		raw := r.URL.Query().Get("format")
		var format ingest.Format
		if raw != "" {
			format, err = ingest.ParseFormat(raw)
		} else {
			format, err = ingest.FormatFromPath(filepath.Base(hdr.Filename))
		}
		if err != nil {
			file.Close()
			return nil, "", err
		}
		return file, format, nil
	}

	raw := r.URL.Query().Get("format")
	if raw == "" {
		raw = string(ingest.FormatCSV)
	}
	format, err := ingest.ParseFormat(raw)
	if err != nil {
		return nil, "", err
	}
	return r.Body, format, nil
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// ImportAll re-imports every configured dataset file and publishes.
func (h *Handler) ImportAll(w http.ResponseWriter, r *http.Request) {
	if h.Importer == nil {
		writeError(w, http.StatusServiceUnavailable, "Dataset import not configured", nil)
		return
	}
	reports, importErr := h.Importer.ImportAll(r.Context())

	status, err := h.reload(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Reload failed", err)
		return
	}

	dtos := make([]ImportReportDTO, len(reports))
	for i, rep := range reports {
		dtos[i] = toImportReport(rep)
	}
	resp := map[string]any{"reports": dtos, "snapshot": status}
	if importErr != nil {
		resp["error"] = importErr.Error()
		writeJSON(w, http.StatusMultiStatus, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Reload publishes a fresh snapshot from the store.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	status, err := h.reload(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Reload failed", err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) reload(ctx context.Context) (SeriesStatusDTO, error) {
	if h.Refresher == nil {
		return toSeriesStatus(h.snapshot(), h.today()), nil
	}
	snap, err := h.Refresher.Reload(ctx)
	if err != nil {
		return SeriesStatusDTO{}, err
	}
	return toSeriesStatus(snap, h.today()), nil
}

// Healthz reports liveness and the age of the published snapshot.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if snap := h.snapshot(); !snap.LoadedAt.IsZero() {
		resp["snapshot_loaded_at"] = snap.LoadedAt.UTC().Format(timeLayout)
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors to HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case generic.IsClientError(err):
		resp := ErrorResponse{Error: message, Details: err.Error()}
		var invalid *generic.InvalidInputError
		if errors.As(err, &invalid) {
			resp.Field = invalid.Field
		}
		writeJSON(w, http.StatusBadRequest, resp)
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	default:
		h.Logger.Error(message, zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
