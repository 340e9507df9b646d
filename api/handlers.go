/*
handlers.go - HTTP handlers for the maintenance tracker

ENDPOINTS:
  POST   /api/query      Evaluate which items are due at a given odometer reading
  GET    /api/logs       List the service history (newest first)
  POST   /api/logs       Record a maintenance visit (and purchase date, once)
  DELETE /api/logs/{id}  Remove one history row
  GET    /api/vehicle    Read the vehicle profile
  DELETE /api/vehicle    Full reset: profile + history, atomically
  GET    /api/rules      The maintenance rule catalog

REQUEST FLOW:
  1. Parse and validate input
  2. Fetch the state snapshot from the store
  3. Run the scheduler (query path only)
  4. Serialize response

ERROR HANDLING:
  - 400: missing/invalid input, no purchase date on record
  - 404: row or profile not found
  - 500: malformed stored data (integrity), store failures

User-facing flow messages are the Chinese strings the frontend displays
verbatim; auxiliary endpoint errors are plain English.

SEE ALSO:
  - dto.go: Request/response shapes
  - server.go: Router setup and middleware
  - ../schedule/evaluate.go: The evaluator this wraps
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/warp/maintenance-engine/schedule"
	"github.com/warp/maintenance-engine/store/sqlite"
)

// User-facing messages, kept byte-identical to what the frontend expects.
const (
	msgNoPurchaseDate  = "请先在“保养日志”页面填入并提交一次购车日期。"
	msgMissingMileage  = "请提供有效的 current_mileage。"
	msgItemsNeedDateKM = "保存保养项目时，必须提供 maintenance_date 和 mileage。"
	msgLogSaved        = "保养记录已成功保存！"
	msgLogDeleted      = "记录已成功删除"
	msgVehicleReset    = "购车日期及所有相关记录已删除。"
	purchaseItemName   = "车辆购买"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store
	Log   zerolog.Logger
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store, log zerolog.Logger) *Handler {
	return &Handler{Store: store, Log: log}
}

// =============================================================================
// QUERY
// =============================================================================

// QueryDue evaluates the rule catalog against the stored state.
// POST /api/query
func (h *Handler) QueryDue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.CurrentMileage == nil || *req.CurrentMileage < 0 {
		writeError(w, http.StatusBadRequest, msgMissingMileage, nil)
		return
	}

	// The evaluator requires a purchase date; short-circuit when there is none.
	stored, ok, err := h.Store.GetPurchaseDate(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load vehicle profile", err)
		return
	}
	if !ok {
		h.writeScheduleError(w, schedule.ErrNoPurchaseDate)
		return
	}

	purchaseDate, err := schedule.ParseDate(stored)
	if err != nil {
		h.Log.Error().Err(err).Str("purchase_date", stored).Msg("malformed stored purchase date")
		writeError(w, http.StatusInternalServerError, "Stored purchase date is malformed", err)
		return
	}

	history, err := h.Store.ListEvents(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load service history", err)
		return
	}

	eval, err := schedule.Evaluate(schedule.Catalog(), purchaseDate, history, *req.CurrentMileage, schedule.Today())
	if err != nil {
		h.writeScheduleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, QueryResponse{
		Suggestions: eval.Suggestions,
		DebugInfo:   eval.Debug,
	})
}

// =============================================================================
// SERVICE LOG
// =============================================================================

// ListLogs returns the full history, newest first.
// GET /api/logs
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	events, err := h.Store.ListEvents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list logs", err)
		return
	}

	dtos := make([]LogDTO, len(events))
	for i, ev := range events {
		dtos[i] = LogDTO{
			ID:              ev.ID,
			MaintenanceDate: ev.Date,
			Mileage:         ev.Mileage,
			ItemName:        ev.ItemName,
		}
		if !ev.CreatedAt.IsZero() {
			dtos[i].CreatedAt = ev.CreatedAt.Format("2006-01-02T15:04:05Z07:00")
		}
	}

	writeJSON(w, http.StatusOK, dtos)
}

// SubmitLog records a maintenance visit. On first use it also records the
// purchase date and a synthetic "车辆购买" event at 0 km, so the history
// starts at the purchase itself.
// POST /api/logs
func (h *Handler) SubmitLog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SubmitLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	// Validate the entire request before touching the store: a submit must
	// either fully apply or leave no trace, and the profile insert is not
	// repeatable (SetPurchaseDateIfAbsent only fires once).
	if req.PurchaseDate != "" {
		if _, err := schedule.ParseDate(req.PurchaseDate); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid purchase_date format (use YYYY-MM-DD)", err)
			return
		}
	}
	if len(req.Items) > 0 {
		if req.MaintenanceDate == "" || req.Mileage == nil {
			writeError(w, http.StatusBadRequest, msgItemsNeedDateKM, nil)
			return
		}
		if _, err := schedule.ParseDate(req.MaintenanceDate); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid maintenance_date format (use YYYY-MM-DD)", err)
			return
		}
		if *req.Mileage < 0 {
			writeError(w, http.StatusBadRequest, "mileage must be non-negative", nil)
			return
		}
	}

	var batch []schedule.ServiceEvent

	if req.PurchaseDate != "" {
		newlySet, err := h.Store.SetPurchaseDateIfAbsent(ctx, req.PurchaseDate)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save purchase date", err)
			return
		}
		if newlySet {
			batch = append(batch, schedule.ServiceEvent{
				ItemName: purchaseItemName,
				Date:     req.PurchaseDate,
				Mileage:  0,
			})
		}
	}

	for _, item := range req.Items {
		batch = append(batch, schedule.ServiceEvent{
			ItemName: item,
			Date:     req.MaintenanceDate,
			Mileage:  *req.Mileage,
		})
	}

	// One transactional batch: the purchase event and all items apply
	// together or not at all.
	if err := h.Store.AppendEvents(ctx, batch); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save maintenance log", err)
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Success: true, Message: msgLogSaved})
}

// DeleteLog removes one history row.
// DELETE /api/logs/{id}
func (h *Handler) DeleteLog(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid log id", err)
		return
	}

	removed, err := h.Store.DeleteEvent(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete log", err)
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "Log not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Success: true, Message: msgLogDeleted})
}

// =============================================================================
// VEHICLE PROFILE
// =============================================================================

// GetVehicle returns the vehicle profile.
// GET /api/vehicle
func (h *Handler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	date, ok, err := h.Store.GetPurchaseDate(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load vehicle profile", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Vehicle profile not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, VehicleDTO{PurchaseDate: date})
}

// ResetVehicle deletes the profile and the entire history atomically.
// DELETE /api/vehicle
func (h *Handler) ResetVehicle(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset vehicle data", err)
		return
	}

	h.Log.Info().Msg("vehicle profile and history reset")
	writeJSON(w, http.StatusOK, StatusResponse{Success: true, Message: msgVehicleReset})
}

// =============================================================================
// RULE CATALOG
// =============================================================================

// ListRules exposes the catalog read-only, in definition order.
// GET /api/rules
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules := schedule.Catalog()

	dtos := make([]RuleDTO, len(rules))
	for i, rule := range rules {
		dto := RuleDTO{Name: rule.Name}
		if rule.Time != nil {
			dto.TimeInterval = &TimeIntervalDTO{Amount: rule.Time.Amount, Unit: string(rule.Time.Unit)}
		}
		if rule.Mileage != nil {
			km := rule.Mileage.Amount
			dto.MileageKM = &km
		}
		dtos[i] = dto
	}

	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

// writeScheduleError maps the scheduler's error taxonomy to status codes:
// validation errors are user-correctable 400s with the message the frontend
// displays; everything else (integrity, store) is a logged 500.
func (h *Handler) writeScheduleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, schedule.ErrNoPurchaseDate):
		writeError(w, http.StatusBadRequest, msgNoPurchaseDate, nil)
	case schedule.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		h.Log.Error().Err(err).Msg("evaluation failed")
		writeError(w, http.StatusInternalServerError, "Evaluation failed", err)
	}
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
