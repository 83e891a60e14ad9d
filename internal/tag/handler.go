package tag

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-barangay/pkg/httpx"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/pagination"
)

type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
	debug  bool
}

func NewHandler(svc *Service, logger *zap.SugaredLogger, debug bool) *Handler {
	return &Handler{svc: svc, logger: logger, debug: debug}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	httpx.WriteError(w, h.logger, err, h.debug)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"tags": out})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateInput
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	t, err := h.svc.Create(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	var req AssignInput
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	a, err := h.svc.Assign(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) Unassign(w http.ResponseWriter, r *http.Request) {
	var req AssignInput
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	if err := h.svc.Unassign(r.Context(), req); err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Tag removed from member"})
}

func (h *Handler) Residents(w http.ResponseWriter, r *http.Request) {
	p := pagination.FromQuery(r.URL.Query(), pagination.DefaultLimit)
	t, out, desc, err := h.svc.Residents(r.Context(), r.PathValue("id"), p)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"tag": t, "residents": out, "pagination": desc})
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	t, data, err := h.svc.Export(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(t.Name)), " ", "-")
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "residents-"+name+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
