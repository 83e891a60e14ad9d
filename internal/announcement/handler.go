package announcement

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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	out, desc, err := h.svc.List(r.Context(), pagination.FromQuery(r.URL.Query(), pagination.DefaultLimit))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"announcements": out, "pagination": desc})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateInput
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	caller, _ := identity.From(r.Context())
	a, err := h.svc.Create(r.Context(), caller, req)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateInput
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	a, err := h.svc.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Announcement deleted successfully"})
}
