package complaint

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/identity"
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

// File is the public complaint form.
func (h *Handler) File(w http.ResponseWriter, r *http.Request) {
	var req FileInput
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	receipt, err := h.svc.File(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, receipt)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	out, desc, err := h.svc.List(r.Context(), pagination.FromQuery(r.URL.Query(), pagination.DefaultLimit))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"complaints": out, "pagination": desc})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusInput
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	caller, _ := identity.From(r.Context())
	c, err := h.svc.UpdateStatus(r.Context(), caller, r.PathValue("id"), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}
