package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/lifter/internal/app"
	"github.com/hyperengineering/lifter/internal/engine"
	"github.com/hyperengineering/lifter/internal/parser"
	"github.com/hyperengineering/lifter/internal/types"
	"github.com/hyperengineering/lifter/internal/workout"
)

// Request body limits. Import carries a base64 document.
const (
	maxBodyBytes       = 1 << 20
	maxImportBodyBytes = 16 << 20
)

// Handler implements the API handlers
type Handler struct {
	svc          *app.Service
	apiKey       string
	version      string
	parserModel  string
	parseTimeout time.Duration
}

// NewHandler creates a new Handler over the session service.
// A zero parseTimeout leaves imports bounded only by the request context.
func NewHandler(svc *app.Service, apiKey, version, parserModel string, parseTimeout time.Duration) *Handler {
	return &Handler{
		svc:          svc,
		apiKey:       apiKey,
		version:      version,
		parserModel:  parserModel,
		parseTimeout: parseTimeout,
	}
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:      "healthy",
		Version:     h.version,
		ParserModel: h.parserModel,
		PlanCount:   len(h.svc.Plans()),
	})
}

// ListPlans handles GET /api/v1/plans
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	selected := h.svc.Selected()
	plans := h.svc.Plans()

	resp := types.ListPlansResponse{Plans: make([]types.PlanSummary, 0, len(plans))}
	for _, p := range plans {
		var tp *workout.Tracker
		if t, ok := h.svc.Tracker(p.ID); ok {
			tp = &t
		}
		resp.Plans = append(resp.Plans, types.NewPlanSummary(p, tp, p.ID == selected))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetPlan handles GET /api/v1/plans/{id}
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.svc.Plan(chi.URLParam(r, "id"))
	if err != nil {
		MapAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// ImportPlan handles POST /api/v1/plans/import
func (h *Handler) ImportPlan(w http.ResponseWriter, r *http.Request) {
	var req types.ImportRequest
	if !decodeJSON(w, r, maxImportBodyBytes, &req) {
		return
	}

	in := parser.Input{Text: req.Text}
	if req.File != nil {
		in.File = &parser.File{Data: req.File.Data, MimeType: req.File.MimeType}
	}

	ctx := r.Context()
	if h.parseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.parseTimeout)
		defer cancel()
	}

	plan, err := h.svc.Import(ctx, in)
	if err != nil {
		MapAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

// DeletePlan handles DELETE /api/v1/plans/{id}?confirm=true
func (h *Handler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	confirmed := r.URL.Query().Get("confirm") == "true"

	if err := h.svc.DeletePlan(r.Context(), id, confirmed); err != nil {
		MapAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectPlan handles POST /api/v1/plans/{id}/select
func (h *Handler) SelectPlan(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SelectPlan(chi.URLParam(r, "id")); err != nil {
		MapAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.View())
}

// GetSession handles GET /api/v1/session
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.View())
}

// PutCursor handles PUT /api/v1/session/cursor
func (h *Handler) PutCursor(w http.ResponseWriter, r *http.Request) {
	var req types.CursorRequest
	if !decodeJSON(w, r, maxBodyBytes, &req) {
		return
	}

	if req.Repetition != nil {
		if _, err := h.svc.SetRepetition(*req.Repetition); err != nil {
			MapAppError(w, r, err)
			return
		}
	}
	if req.Week != nil {
		if _, err := h.svc.SetWeek(*req.Week); err != nil {
			MapAppError(w, r, err)
			return
		}
	}
	if req.Day != nil {
		if _, err := h.svc.SetDay(*req.Day); err != nil {
			MapAppError(w, r, err)
			return
		}
	}

	v := h.svc.View()
	writeJSON(w, http.StatusOK, types.CursorResponse{
		Repetition: v.Repetition,
		Week:       v.Week,
		Day:        v.DayIndex,
	})
}

// StartRepetition handles POST /api/v1/session/repetitions
func (h *Handler) StartRepetition(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.StartNewRepetition(r.Context()); err != nil {
		MapAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.svc.View())
}

// RenameRepetition handles PUT /api/v1/session/repetition/name
func (h *Handler) RenameRepetition(w http.ResponseWriter, r *http.Request) {
	var req types.RenameRequest
	if !decodeJSON(w, r, maxBodyBytes, &req) {
		return
	}

	renamed, err := h.svc.RenameRepetition(r.Context(), req.Name)
	if err != nil {
		MapAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.RenameResponse{
		Renamed: renamed,
		Label:   h.svc.View().RepetitionLabel,
	})
}

// PutLog handles PUT /api/v1/session/logs
func (h *Handler) PutLog(w http.ResponseWriter, r *http.Request) {
	var req types.LogRequest
	if !decodeJSON(w, r, maxBodyBytes, &req) {
		return
	}

	addr := engine.LogAddress{Week: req.Week, DayID: req.DayID, ExerciseID: req.ExerciseID, Set: req.Set}
	if err := h.svc.UpdateLog(r.Context(), addr, workout.Field(req.Field), req.Value); err != nil {
		MapAppError(w, r, err)
		return
	}

	logged, err := h.svc.ReadLog(addr)
	if err != nil {
		MapAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, logged)
}

// ProposeEdit handles POST /api/v1/session/pending/edit
func (h *Handler) ProposeEdit(w http.ResponseWriter, r *http.Request) {
	var req types.ExerciseRequest
	if !decodeJSON(w, r, maxBodyBytes, &req) {
		return
	}

	if err := h.svc.BeginEdit(req.ExerciseID); err != nil {
		MapAppError(w, r, err)
		return
	}
	_, err := h.svc.ProposeEdit(app.EditInput{Name: req.Name, Sets: req.Sets, Reps: req.Reps})
	h.writePending(w, r, err)
}

// ProposeAdd handles POST /api/v1/session/pending/add
func (h *Handler) ProposeAdd(w http.ResponseWriter, r *http.Request) {
	var req types.ExerciseRequest
	if !decodeJSON(w, r, maxBodyBytes, &req) {
		return
	}

	_, err := h.svc.ProposeAdd(app.EditInput{Name: req.Name, Sets: req.Sets, Reps: req.Reps})
	h.writePending(w, r, err)
}

// ProposeRemove handles POST /api/v1/session/pending/remove
func (h *Handler) ProposeRemove(w http.ResponseWriter, r *http.Request) {
	var req types.RemoveRequest
	if !decodeJSON(w, r, maxBodyBytes, &req) {
		return
	}

	_, err := h.svc.ProposeRemove(req.ExerciseID, req.Confirm)
	h.writePending(w, r, err)
}

// ProposeReorder handles POST /api/v1/session/pending/reorder.
// Moving an exercise onto its own position stages nothing and returns 204.
func (h *Handler) ProposeReorder(w http.ResponseWriter, r *http.Request) {
	var req types.ReorderRequest
	if !decodeJSON(w, r, maxBodyBytes, &req) {
		return
	}

	u, err := h.svc.ProposeReorder(req.From, req.To)
	if err == nil && u == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writePending(w, r, err)
}

// ApplyPending handles POST /api/v1/session/pending/apply
func (h *Handler) ApplyPending(w http.ResponseWriter, r *http.Request) {
	var req types.ApplyRequest
	if !decodeJSON(w, r, maxBodyBytes, &req) {
		return
	}

	if err := h.svc.ApplyPending(r.Context(), workout.Scope(req.Scope)); err != nil {
		MapAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.View())
}

// DismissPending handles DELETE /api/v1/session/pending
func (h *Handler) DismissPending(w http.ResponseWriter, r *http.Request) {
	h.svc.DismissPending()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writePending(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		MapAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.View().Pending)
}

// decodeJSON reads a JSON body of at most limit bytes into dst. On failure it
// writes a 400 problem and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			WriteProblem(w, r, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
		case errors.Is(err, io.EOF):
			WriteProblem(w, r, http.StatusBadRequest, "Request body is empty")
		default:
			WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		}
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
