/*
handlers.go - HTTP API handlers for the career compensation simulator

PURPOSE:
  Exposes the simulation engine via REST API. Handles HTTP request/response,
  JSON serialization and spreadsheet uploads, and delegates to the career
  engine and report renderers.

ENDPOINTS:
  Reference:
    GET    /api/health                       Liveness
    GET    /api/levels                       CD levels and grade limits

  Ad-hoc simulation:
    POST   /api/simulate                     Inline scenario + roster -> report

  Scenarios:
    GET    /api/scenarios                    List saved scenarios
    POST   /api/scenarios                    Create or replace a scenario
    POST   /api/scenarios/presets            Install built-in scenarios
    GET    /api/scenarios/{id}               Get one scenario
    DELETE /api/scenarios/{id}               Delete (runs are kept)
    POST   /api/scenarios/{id}/simulate      Run it, records a run
    POST   /api/scenarios/{id}/report.pdf    Run it, PDF document
    POST   /api/scenarios/{id}/report.xlsx   Run it, Excel workbook
    GET    /api/scenarios/{id}/runs          Run history, newest first

RUN INPUT:
  The {id}/simulate and report endpoints accept either a JSON RunRequest or
  a multipart form with:
    roster               .xlsx or .csv file (columns REF, fanti, CD)
    as_of                YYYY-MM-DD, defaults to today
    headcount_overrides  JSON array of {grade, level, count}

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid configuration, malformed body, unreadable roster
  - 404: Scenario not found
  - 413: Upload too large
  - 500: Internal errors (logged)

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/warp/career-simulator/career"
	"github.com/warp/career-simulator/report"
	"github.com/warp/career-simulator/roster"
	"github.com/warp/career-simulator/scenario"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  scenario.Store
	Logger *slog.Logger

	// PDF is applied to every rendered report.
	PDF report.PDFOptions

	// MaxUploadBytes bounds request bodies. Zero means 10 MiB.
	MaxUploadBytes int64

	validate *validator.Validate
	now      func() time.Time
	newID    func() string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store scenario.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Store:    store,
		Logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

const defaultMaxUpload = 10 << 20

func (h *Handler) maxUpload() int64 {
	if h.MaxUploadBytes > 0 {
		return h.MaxUploadBytes
	}
	return defaultMaxUpload
}

// =============================================================================
// REFERENCE ENDPOINTS
// =============================================================================

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListLevels returns the CD levels in order.
func (h *Handler) ListLevels(w http.ResponseWriter, r *http.Request) {
	dto := LevelsDTO{
		MinLevel:  int(career.MinLevel),
		MaxLevel:  int(career.MaxLevel),
		MaxGrades: career.MaxGrades,
	}
	for _, l := range career.Levels() {
		dto.Levels = append(dto.Levels, l.String())
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// SIMULATION
// =============================================================================

// Simulate runs an inline scenario. Nothing is persisted.
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	res, err := h.run(req.Scenario, req.RunRequest)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewReportDTO(res.Report))
}

// SimulateScenario runs a stored scenario and records the run.
func (h *Handler) SimulateScenario(w http.ResponseWriter, r *http.Request) {
	rec, res, ok := h.runStored(w, r)
	if !ok {
		return
	}

	run := scenario.Run{
		ID:             h.newID(),
		ScenarioID:     rec.Scenario.ID,
		AsOf:           res.Report.AsOf,
		GrandTotal:     res.Report.GrandTotal,
		TotalHeadcount: res.Report.TotalHeadcount,
		Employees:      len(res.Roster.Employees),
		Excluded:       len(res.Roster.Excluded),
		CreatedAt:      h.now().UTC(),
	}
	if err := h.Store.AppendRun(r.Context(), run); err != nil {
		h.writeDomainError(w, r, fmt.Errorf("recording run: %w", err))
		return
	}
	h.Logger.Info("simulation recorded",
		slog.String("scenario_id", run.ScenarioID),
		slog.String("run_id", run.ID),
		slog.String("grand_total", run.GrandTotal.StringFixed(2)),
		slog.Int("excluded", run.Excluded),
	)

	dto := NewReportDTO(res.Report)
	dto.RunID = run.ID
	dto.ScenarioID = run.ScenarioID
	writeJSON(w, http.StatusOK, dto)
}

// ScenarioPDF renders a stored scenario as a PDF report.
func (h *Handler) ScenarioPDF(w http.ResponseWriter, r *http.Request) {
	rec, res, ok := h.runStored(w, r)
	if !ok {
		return
	}

	opts := h.PDF
	opts.GeneratedAt = h.now()
	if opts.Title == "" && rec.Scenario.Name != "" {
		opts.Title = report.DefaultTitle + ": " + rec.Scenario.Name
	}

	var buf bytes.Buffer
	if err := report.WritePDF(&buf, res.Report, opts); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeFile(w, "application/pdf", rec.Scenario.ID+".pdf", buf.Bytes())
}

// ScenarioXLSX exports a stored scenario run as a workbook.
func (h *Handler) ScenarioXLSX(w http.ResponseWriter, r *http.Request) {
	rec, res, ok := h.runStored(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, res.Report); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeFile(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Scenario.ID+".xlsx", buf.Bytes())
}

// runStored loads the {id} scenario, reads the run input and simulates.
// On failure the error response is already written.
func (h *Handler) runStored(w http.ResponseWriter, r *http.Request) (*scenario.Record, *career.Result, bool) {
	rec, err := h.Store.GetScenario(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return nil, nil, false
	}

	in, err := h.readRunRequest(w, r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return nil, nil, false
	}

	res, err := h.run(rec.Scenario, in)
	if err != nil {
		h.writeDomainError(w, r, err)
		return nil, nil, false
	}
	return rec, res, true
}

// run merges the request overrides over the scenario's and simulates.
func (h *Handler) run(sc scenario.Scenario, in RunRequest) (*career.Result, error) {
	if err := h.validate.Struct(in); err != nil {
		return nil, err
	}

	cfg, err := sc.Config()
	if err != nil {
		return nil, err
	}

	var asOf time.Time
	if in.AsOf != "" {
		asOf, _ = time.Parse(dateLayout, in.AsOf)
	}

	overrides := sc.HeadcountOverrides()
	if len(in.Overrides) > 0 {
		if overrides == nil {
			overrides = career.Overrides{}
		}
		for _, o := range in.Overrides {
			overrides[career.Cell{Grade: career.Grade(o.Grade), Level: career.Level(o.Level)}] = o.Count
		}
	}

	rows := make([]career.RosterRow, len(in.Roster))
	for i, row := range in.Roster {
		line := row.Line
		if line == 0 {
			line = i + 1
		}
		rows[i] = career.RosterRow{
			Line:          line,
			ID:            row.ID,
			AdmissionDate: string(row.AdmissionDate),
			Level:         string(row.Level),
		}
	}

	return career.Simulate(cfg, career.Input{
		Roster:    rows,
		Overrides: overrides,
		AsOf:      asOf,
		ParseDate: roster.ParseDate,
	})
}

// readRunRequest accepts an empty body, a JSON RunRequest or a multipart
// form with an uploaded roster.
func (h *Handler) readRunRequest(w http.ResponseWriter, r *http.Request) (RunRequest, error) {
	var in RunRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		if r.ContentLength == 0 {
			return in, nil
		}
		err := h.decodeJSON(w, r, &in)
		if errors.Is(err, io.EOF) {
			return in, nil
		}
		return in, err
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload())
	if err := r.ParseMultipartForm(h.maxUpload()); err != nil {
		return in, badRequest("invalid multipart form", err)
	}

	in.AsOf = strings.TrimSpace(r.FormValue("as_of"))
	if raw := strings.TrimSpace(r.FormValue("headcount_overrides")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Overrides); err != nil {
			return in, badRequest("invalid headcount_overrides", err)
		}
	}

	file, header, err := r.FormFile("roster")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil
	}
	if err != nil {
		return in, badRequest("invalid roster upload", err)
	}
	defer file.Close()

	rows, err := roster.Read(header.Filename, file)
	if err != nil {
		return in, badRequest("unreadable roster", err)
	}
	for _, row := range rows {
		in.Roster = append(in.Roster, RosterRowDTO{
			Line:          row.Line,
			ID:            row.ID,
			AdmissionDate: flexString(row.AdmissionDate),
			Level:         flexString(row.Level),
		})
	}
	return in, nil
}

// =============================================================================
// SCENARIO ENDPOINTS
// =============================================================================

// ListScenarios returns every saved scenario.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListScenarios(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	dtos := make([]ScenarioDTO, len(records))
	for i, rec := range records {
		dtos[i] = toScenarioDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveScenario validates and stores a scenario. A missing id is generated.
func (h *Handler) SaveScenario(w http.ResponseWriter, r *http.Request) {
	var sc scenario.Scenario
	if err := h.decodeJSON(w, r, &sc); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if err := sc.Validate(); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	if sc.ID == "" {
		sc.ID = h.newID()
	}

	if err := h.Store.SaveScenario(r.Context(), sc); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	rec, err := h.Store.GetScenario(r.Context(), sc.ID)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.Logger.Info("scenario saved", slog.String("scenario_id", sc.ID))
	writeJSON(w, http.StatusCreated, toScenarioDTO(*rec))
}

// InstallPresets stores the built-in scenarios, replacing same-id entries.
func (h *Handler) InstallPresets(w http.ResponseWriter, r *http.Request) {
	presets := scenario.Presets()
	dtos := make([]ScenarioDTO, 0, len(presets))
	for _, p := range presets {
		if err := h.Store.SaveScenario(r.Context(), p); err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		rec, err := h.Store.GetScenario(r.Context(), p.ID)
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		dtos = append(dtos, toScenarioDTO(*rec))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetScenario returns one scenario.
func (h *Handler) GetScenario(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Store.GetScenario(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toScenarioDTO(*rec))
}

// DeleteScenario removes a scenario; its run history stays.
func (h *Handler) DeleteScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteScenario(r.Context(), id); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	h.Logger.Info("scenario deleted", slog.String("scenario_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// ListRuns returns the run history of a scenario.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.ListRuns(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	dtos := make([]RunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toRunDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

// requestError is a client mistake carrying its response message.
type requestError struct {
	status  int
	message string
	err     error
}

func (e *requestError) Error() string { return e.message + ": " + e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func badRequest(message string, err error) error {
	return &requestError{status: http.StatusBadRequest, message: message, err: err}
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload())
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return err
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &requestError{status: http.StatusRequestEntityTooLarge, message: "request body too large", err: err}
		}
		return badRequest("invalid JSON body", err)
	}
	return nil
}

// writeDomainError maps engine, store and request errors to HTTP status.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *requestError
	var verrs validator.ValidationErrors

	switch {
	case errors.As(err, &reqErr):
		writeError(w, reqErr.status, reqErr.message, reqErr.err)
	case errors.Is(err, io.EOF):
		writeError(w, http.StatusBadRequest, "request body is empty", nil)
	case errors.Is(err, scenario.ErrNotFound):
		writeError(w, http.StatusNotFound, "scenario not found", nil)
	case career.IsConfigError(err):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:    "invalid configuration",
			Problems: problems(err),
		})
	case errors.As(err, &verrs):
		list := make([]string, len(verrs))
		for i, fe := range verrs {
			list[i] = fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag())
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request", Problems: list})
	default:
		h.Logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal error", nil)
	}
}

// problems flattens a joined error into one message per problem.
func problems(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, problems(e)...)
		}
		return out
	}
	return []string{err.Error()}
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

func writeFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
