package system

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-barangay/internal/system/entity"
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

func (h *Handler) Logs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := entity.Filter{
		UserID: strings.TrimSpace(q.Get("user_id")),
		Action: strings.TrimSpace(q.Get("action")),
	}
	out, desc, err := h.svc.Logs(r.Context(), pagination.FromQuery(q, pagination.DefaultLogLimit), f)
	if err != nil {
		httpx.WriteError(w, h.logger, err, h.debug)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"logs": out, "pagination": desc})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		httpx.WriteError(w, h.logger, err, h.debug)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, st)
}
