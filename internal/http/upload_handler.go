package http

import (
	"net/http"

	"github.com/artelar/shop/internal/media"
)

// maxUploadBytes caps customer art uploads at 10 MiB.
const maxUploadBytes = 10 << 20

type UploadHandler struct {
	uploader media.Uploader
}

func NewUploadHandler(uploader media.Uploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

// Upload receives one customer image as multipart form data and stores it
// with the media collaborator, returning the public URL for the cart item.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "a file field is required")
		return
	}
	defer file.Close()

	asset, err := h.uploader.Upload(r.Context(), header.Filename, file)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, asset)
}
