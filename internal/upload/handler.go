package upload

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-barangay/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/httpx"
	"github.com/ovaphlow/pitchfork/service-barangay/pkg/utilities"
)

// MaxImageSize bounds a single uploaded image.
const MaxImageSize = 5 << 20

var (
	ErrNoFile   = apperr.Validation("No file uploaded", nil)
	ErrTooLarge = apperr.Validation("File too large", map[string]string{"image": "must be at most 5MB"})
	ErrNotImage = apperr.Validation("Only image files are allowed", nil)
)

type Handler struct {
	store  ObjectStore
	logger *zap.SugaredLogger
	debug  bool
}

func NewHandler(store ObjectStore, logger *zap.SugaredLogger, debug bool) *Handler {
	return &Handler{store: store, logger: logger, debug: debug}
}

// Image accepts the multipart field "image" and returns the stored URL.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxImageSize+1<<20)
	file, hdr, err := r.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			httpx.WriteError(w, h.logger, ErrTooLarge, h.debug)
		default:
			httpx.WriteError(w, h.logger, ErrNoFile, h.debug)
		}
		return
	}
	defer file.Close()
	if hdr.Size > MaxImageSize {
		httpx.WriteError(w, h.logger, ErrTooLarge, h.debug)
		return
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		httpx.WriteError(w, h.logger, apperr.Storage(err), h.debug)
		return
	}
	contentType := http.DetectContentType(head[:n])
	if !strings.HasPrefix(contentType, "image/") {
		httpx.WriteError(w, h.logger, ErrNotImage, h.debug)
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		httpx.WriteError(w, h.logger, apperr.Storage(err), h.debug)
		return
	}

	key := "images/" + utilities.NewKSUID() + strings.ToLower(filepath.Ext(hdr.Filename))
	url, err := h.store.Put(r.Context(), key, contentType, file, hdr.Size)
	if err != nil {
		h.logger.Errorw("upload failed", "store", h.store.Name(), "key", key, "err", err)
		httpx.WriteError(w, h.logger, apperr.Storage(err), h.debug)
		return
	}
	h.logger.Infow("image uploaded", "store", h.store.Name(), "key", key, "size", hdr.Size)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"url": url, "message": "File uploaded successfully"})
}
