// internal/session/handlers.go
package session

import (
	"encoding/json"
	"net/http"
	"strconv"

	"listings-console/internal/common/errors"
	"listings-console/internal/common/logger"
	"listings-console/internal/forms/orchestrator"
	"listings-console/internal/listings"
	"listings-console/internal/platform"
)

// Handler is the JSON HTTP surface over the session manager and the list
// views.
type Handler struct {
	manager *Manager
	lists   *listings.Service
	log     logger.Logger
}

func NewHandler(manager *Manager, lists *listings.Service, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Handler{manager: manager, lists: lists, log: log}
}

// Register mounts every route on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.openSession)
	mux.HandleFunc("GET /api/sessions/{id}", h.getSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.closeSession)
	mux.HandleFunc("POST /api/sessions/{id}/fields", h.updateField)
	mux.HandleFunc("POST /api/sessions/{id}/draft", h.draftDecision)
	mux.HandleFunc("POST /api/sessions/{id}/steps", h.stepNavigation)
	mux.HandleFunc("POST /api/sessions/{id}/submit", h.submit)

	mux.HandleFunc("GET /api/listings/{entityType}", h.list)
	mux.HandleFunc("GET /api/listings/{entityType}/counts", h.counts)
	mux.HandleFunc("DELETE /api/listings/{entityType}/{id}", h.deleteEntity)
}

func (h *Handler) openSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FormType string `json:"formType"`
		Mode     string `json:"mode"`
		EntityID string `json:"entityId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	mode := orchestrator.Mode(body.Mode)
	if mode == "" {
		mode = orchestrator.ModeAdd
	}

	id, o, err := h.manager.Open(r.Context(), body.FormType, mode, body.EntityID)
	if err != nil {
		h.writeTypedError(w, err)
		return
	}

	reply := map[string]interface{}{
		"success":   true,
		"sessionId": id,
		"state":     sessionState(o),
	}
	if o.Phase() == orchestrator.PhaseDraftPending {
		if savedAt, err := o.DraftTimestamp(r.Context()); err == nil && savedAt != "" {
			reply["draftSavedAt"] = savedAt
		}
	}
	writeJSON(w, http.StatusCreated, reply)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	o, err := h.manager.Get(r.PathValue("id"))
	if err != nil {
		h.writeTypedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"state":   sessionState(o),
	})
}

func (h *Handler) closeSession(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Close(r.PathValue("id")); err != nil {
		h.writeTypedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) updateField(w http.ResponseWriter, r *http.Request) {
	o, err := h.manager.Get(r.PathValue("id"))
	if err != nil {
		h.writeTypedError(w, err)
		return
	}

	var body struct {
		Path  string      `json:"path"`
		Value interface{} `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Path == "" {
		writeError(w, http.StatusBadRequest, "field path is required")
		return
	}

	if err := o.Update(body.Path, body.Value); err != nil {
		h.writeTypedError(w, err)
		return
	}

	value, _ := o.Value(body.Path)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"value":       value,
		"fieldErrors": o.FieldErrors(),
		"warnings":    o.Warnings(),
	})
}

func (h *Handler) draftDecision(w http.ResponseWriter, r *http.Request) {
	o, err := h.manager.Get(r.PathValue("id"))
	if err != nil {
		h.writeTypedError(w, err)
		return
	}

	var body struct {
		Decision string `json:"decision"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	switch body.Decision {
	case "restore":
		err = o.RestoreDraft(r.Context())
	case "discard":
		err = o.DiscardDraft(r.Context())
	default:
		writeError(w, http.StatusBadRequest, `decision must be "restore" or "discard"`)
		return
	}
	if err != nil {
		h.writeTypedError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"state":   sessionState(o),
	})
}

func (h *Handler) stepNavigation(w http.ResponseWriter, r *http.Request) {
	o, err := h.manager.Get(r.PathValue("id"))
	if err != nil {
		h.writeTypedError(w, err)
		return
	}

	var body struct {
		Action string `json:"action"`
		Index  int    `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	switch body.Action {
	case "next":
		o.NextStep()
	case "prev":
		o.PrevStep()
	case "goto":
		o.GoToStep(body.Index)
	default:
		writeError(w, http.StatusBadRequest, `action must be "next", "prev", or "goto"`)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"stepIndex": o.StepIndex(),
	})
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	o, err := h.manager.Get(r.PathValue("id"))
	if err != nil {
		h.writeTypedError(w, err)
		return
	}

	result, err := o.Submit(r.Context())
	if err != nil {
		h.writeTypedError(w, err)
		return
	}
	if result.Stale {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"stale":   true,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"entity":  result.Entity,
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	params := platform.ListParams{
		Search:  r.URL.Query().Get("search"),
		Filters: map[string]string{},
	}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		params.Page = page
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		params.Limit = limit
	}
	for key, values := range r.URL.Query() {
		switch key {
		case "page", "limit", "search":
		default:
			if len(values) > 0 {
				params.Filters[key] = values[0]
			}
		}
	}

	result, err := h.lists.List(r.Context(), r.PathValue("entityType"), params)
	if err != nil {
		h.writeTypedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"items":      result.Items,
		"pagination": result.Pagination,
	})
}

func (h *Handler) counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.lists.TabCounts(r.Context(), r.PathValue("entityType"))
	if err != nil {
		h.writeTypedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"counts":  counts,
	})
}

func (h *Handler) deleteEntity(w http.ResponseWriter, r *http.Request) {
	result, err := h.lists.Delete(r.Context(), r.PathValue("entityType"), r.PathValue("id"))
	if err != nil {
		h.writeTypedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"permanent": result.Permanent,
		"entity":    result.Entity,
	})
}

// sessionState flattens the orchestrator's read surface into one reply.
func sessionState(o *orchestrator.Orchestrator) map[string]interface{} {
	stepList := o.Steps()
	stepsOut := make([]map[string]interface{}, 0, len(stepList))
	for i, step := range stepList {
		stepsOut = append(stepsOut, map[string]interface{}{
			"id":     step.ID,
			"title":  step.Title,
			"status": string(o.StepStatus(i)),
		})
	}

	state := o.State()
	submission := map[string]interface{}{
		"isSubmitting": state.IsSubmitting,
		"networkError": state.NetworkError,
	}
	if state.APIError != nil {
		submission["apiError"] = state.APIError.Message
	}

	return map[string]interface{}{
		"formType":     o.FormType(),
		"mode":         string(o.Mode()),
		"phase":        string(o.Phase()),
		"values":       o.Snapshot(),
		"fieldErrors":  o.FieldErrors(),
		"warnings":     o.Warnings(),
		"stepIndex":    o.StepIndex(),
		"steps":        stepsOut,
		"overallValid": o.OverallValid(),
		"submission":   submission,
	}
}

func (h *Handler) writeTypedError(w http.ResponseWriter, err error) {
	std := errors.Convert(err, errors.ErrCodeUnexpectedReply, err.Error())
	writeJSON(w, httpStatusFor(std.Code), map[string]interface{}{
		"success":   false,
		"code":      string(std.Code),
		"message":   std.Message,
		"retryable": std.Retryable,
		"errors":    errors.FieldErrorsOf(std),
	})
}

func httpStatusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeSessionNotFound, errors.ErrCodeEntityNotFound,
		errors.ErrCodeDraftNotFound, errors.ErrCodeCountsNotFound,
		errors.ErrCodeUnknownFormType:
		return http.StatusNotFound
	case errors.ErrCodeSubmitBlocked, errors.ErrCodeValidationFailed:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeSubmitInProgress, errors.ErrCodeDeleteInProgress,
		errors.ErrCodeDraftDecisionPending, errors.ErrCodeFormNotOpen:
		return http.StatusConflict
	case errors.ErrCodeServerRejected:
		return http.StatusBadGateway
	case errors.ErrCodeNetworkFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}
