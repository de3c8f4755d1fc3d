// ABOUTME: File upload and download endpoints.
// ABOUTME: Multipart uploads capped by config; bytes stored alongside metadata.

package gateway

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/genz-ai/agentchat/internal/auth"
	"github.com/genz-ai/agentchat/internal/store"
)

// FileResponse is the JSON response for a completed upload.
type FileResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Mime       string `json:"mime"`
	Size       int64  `json:"size"`
	UploadedAt string `json:"uploadedAt"`
}

// handleUpload handles POST /api/upload requests. Expects a multipart form
// with the file under the "file" field. Requires authentication.
func (g *Gateway) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	maxSize := g.config.Uploads.MaxSizeBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			g.sendJSONError(w, http.StatusRequestEntityTooLarge, "file exceeds the upload size limit")
			return
		}
		g.sendJSONError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	id := auth.MustFromContext(r.Context())
	f := &store.File{
		ID:         uuid.New().String(),
		Name:       header.Filename,
		Mime:       header.Header.Get("Content-Type"),
		Size:       int64(len(data)),
		OwnerID:    id.UserID,
		Data:       data,
		UploadedAt: time.Now(),
	}
	if err := g.store.SaveFile(r.Context(), f); err != nil {
		g.logger.Error("failed to save file", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	g.logger.Info("file uploaded", "file_id", f.ID, "size", f.Size, "user_id", id.UserID)
	g.sendJSON(w, http.StatusCreated, FileResponse{
		ID:         f.ID,
		Name:       f.Name,
		Mime:       f.Mime,
		Size:       f.Size,
		UploadedAt: f.UploadedAt.UTC().Format(time.RFC3339Nano),
	})
}

// handleFileDownload handles GET /api/files/{id} requests. Requires authentication.
func (g *Gateway) handleFileDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	fileID := strings.TrimPrefix(r.URL.Path, "/api/files/")
	if fileID == "" || strings.Contains(fileID, "/") {
		g.sendJSONError(w, http.StatusBadRequest, "file id is required")
		return
	}

	f, err := g.store.GetFile(r.Context(), fileID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			g.sendJSONError(w, http.StatusNotFound, "file not found")
			return
		}
		g.logger.Error("failed to load file", "file_id", fileID, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	mime := f.Mime
	if mime == "" {
		mime = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.FormatInt(f.Size, 10))
	w.Header().Set("Content-Disposition", `attachment; filename="`+f.Name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(f.Data)
}
