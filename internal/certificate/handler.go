package certificate

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

// Submit is the public online request form.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitInput
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	// walk-in only fields are ignored on the public path
	req.ProfilePhotoURL, req.TemplateID = "", ""
	receipt, err := h.svc.Submit(r.Context(), req)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, receipt)
}

// Status is the public tracking lookup.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.LookupStatus(r.Context(), r.PathValue("ref"))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) WalkIn(w http.ResponseWriter, r *http.Request) {
	var req SubmitInput
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	caller, _ := identity.From(r.Context())
	c, err := h.svc.WalkIn(r.Context(), caller, req)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, desc, err := h.svc.List(r.Context(), pagination.FromQuery(q, pagination.DefaultLimit), q.Get("certificate_type"))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"certificates": out, "pagination": desc})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateInput
	if err := httpx.Decode(r, &req); err != nil {
		h.fail(w, err)
		return
	}
	c, err := h.svc.Update(r.Context(), r.PathValue("id"), req)
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

// Render returns the filled document. A missing template is reported with found=false, not an error.
func (h *Handler) Render(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Render(r.Context(), r.PathValue("id"), r.URL.Query().Get("template_id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	if r.URL.Query().Get("format") == "html" && !out.NoTemplate() {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(out.HTML))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"found":       !out.NoTemplate(),
		"certificate": out.Request,
		"template":    out.Template,
		"html":        out.HTML,
	})
}
