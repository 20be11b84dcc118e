package httpapi

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/shelflab/platform/internal/domain/sessions"
	"github.com/shelflab/platform/internal/upload"
)

// registerUploadRoutes accepts product image uploads from authenticated
// researchers. The stored path is meant to be set as a product's
// image_path when configuring a survey.
func registerUploadRoutes(mux *http.ServeMux, logger *slog.Logger, sessionService sessions.Service, store *upload.Store) {
	mux.HandleFunc("/v1/uploads/images", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if _, ok := requireAuth(w, r, sessionService); !ok {
			return
		}

		// Multipart overhead on top of the file itself.
		r.Body = http.MaxBytesReader(w, r.Body, store.MaxBytes()+(1<<20))

		file, _, err := r.FormFile("image")
		if err != nil {
			respondError(w, http.StatusBadRequest, "multipart field 'image' is required")
			return
		}
		defer file.Close()

		webPath, err := store.Save(file)
		if err != nil {
			switch {
			case errors.Is(err, upload.ErrTooLarge):
				respondError(w, http.StatusRequestEntityTooLarge, "image exceeds size limit")
			case errors.Is(err, upload.ErrUnsupportedType):
				respondError(w, http.StatusUnsupportedMediaType, "image must be png, jpeg or webp")
			default:
				logger.Error("store upload failed", "err", err)
				respondError(w, http.StatusInternalServerError, "internal error")
			}
			return
		}

		respondJSON(w, http.StatusCreated, map[string]string{"image_path": webPath})
	})
}
