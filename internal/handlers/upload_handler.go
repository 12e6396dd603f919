package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jobreadyai/backend/pkg/httputil"
	"github.com/jobreadyai/backend/pkg/middleware"
	log "github.com/sirupsen/logrus"
)

const maxUploadBytes = 5 << 20 // 5 MB

// UploadsFileServer serves stored images by exact file name. Bare directory
// requests are rejected so the uploads folder cannot be enumerated.
func UploadsFileServer(uploadDir string) http.Handler {
	fs := http.FileServer(http.Dir(uploadDir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// UploadHandler stores profile and portfolio images under the uploads
// directory and returns their server-relative path.
type UploadHandler struct {
	UploadDir string
}

// NewUploadHandler creates a new instance of UploadHandler.
func NewUploadHandler(uploadDir string) *UploadHandler {
	return &UploadHandler{
		UploadDir: uploadDir,
	}
}

// UploadImageHandler accepts a multipart image (field "image"), capped at
// 5 MB, jpeg/png/gif only.
func (h *UploadHandler) UploadImageHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		httputil.Error(w, httputil.ErrUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.Error(w, fmt.Errorf("%w: file too large or invalid form", httputil.ErrValidation))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httputil.Error(w, fmt.Errorf("%w: missing image in request", httputil.ErrValidation))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		httputil.Error(w, fmt.Errorf("%w: only jpeg, png and gif images are allowed", httputil.ErrValidation))
		return
	}

	// The stored extension comes from the validated content type, never from
	// the client-supplied filename.
	fileName := fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), uuid.NewString()[:8], ext)
	savePath := filepath.Join(h.UploadDir, fileName)

	if err := os.MkdirAll(h.UploadDir, os.ModePerm); err != nil {
		httputil.Error(w, fmt.Errorf("failed to create upload folder: %v", err))
		return
	}

	out, err := os.Create(savePath)
	if err != nil {
		httputil.Error(w, fmt.Errorf("failed to save file: %v", err))
		return
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		httputil.Error(w, fmt.Errorf("failed to write file: %v", err))
		return
	}

	fileURL := "/uploads/" + fileName

	log.WithFields(log.Fields{
		"userID": claims.UserID,
		"file":   fileName,
		"size":   header.Size,
	}).Info("Image uploaded")

	httputil.JSON(w, http.StatusCreated, map[string]string{"url": fileURL})
}
