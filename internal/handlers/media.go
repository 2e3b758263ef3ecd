// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/storage"
)

const (
	// maxUploadSize is the maximum allowed file upload size (10 MB).
	maxUploadSize = 10 << 20

	// presignExpiry is how long a presigned URL for private files is valid.
	presignExpiry = 1 * time.Hour
)

// allowedMediaTypes defines MIME types accepted for upload.
var allowedMediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Media handles image uploads for post content.
type Media struct {
	storage *storage.Client
}

// NewMedia creates a Media handler group. storage may be nil; uploads
// then return 503.
func NewMedia(s *storage.Client) *Media {
	return &Media{storage: s}
}

// Upload accepts a multipart image and stores it in S3. Public uploads
// return a direct URL; private uploads (premium attachments) return a
// presigned URL.
func (h *Media) Upload(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}

	// Limit request body to maxUploadSize + some overhead for form fields.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large (max 10 MB)")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided", "file")
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large (max 10 MB)")
		return
	}

	// Detect content type by sniffing the first 512 bytes.
	sniffBuf := make([]byte, 512)
	n, err := file.Read(sniffBuf)
	if err != nil && err != io.EOF {
		writeServerError(w, "upload read failed", err)
		return
	}
	contentType := http.DetectContentType(sniffBuf[:n])

	if !allowedMediaTypes[contentType] {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("file type %q is not allowed", contentType), "file")
		return
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		writeServerError(w, "upload seek failed", err)
		return
	}

	bucket := h.storage.PublicBucket()
	private := r.FormValue("bucket") == "private"
	if private {
		bucket = h.storage.PrivateBucket()
	}

	now := time.Now()
	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = extensionFromType(contentType)
	}
	key := fmt.Sprintf("media/%d/%02d/%s%s", now.Year(), now.Month(), uuid.New().String(), ext)

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		writeServerError(w, "upload read failed", err)
		return
	}

	ctx := r.Context()
	if err := h.storage.Upload(ctx, bucket, key, contentType, bytes.NewReader(fileBytes), int64(len(fileBytes))); err != nil {
		slog.Error("s3 upload failed", "error", err, "key", key)
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	url := h.storage.FileURL(key)
	if private {
		url, err = h.storage.PresignedURL(ctx, bucket, key, presignExpiry)
		if err != nil {
			writeServerError(w, "presign failed", err)
			return
		}
	}

	writeData(w, http.StatusCreated, map[string]string{
		"url": url,
		"key": key,
	})
}

type mediaDeleteRequest struct {
	Key    string `json:"key"`
	URL    string `json:"url"`
	Bucket string `json:"bucket"`
}

// Remove deletes a stored object by key, or by public URL. Used by
// editors cleaning up media that no post references anymore.
func (h *Media) Remove(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}

	var req mediaDeleteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	key := req.Key
	if key == "" && req.URL != "" {
		var ok bool
		key, ok = h.storage.ExtractS3Key(req.URL)
		if !ok {
			writeError(w, http.StatusBadRequest, "url does not belong to this storage", "url")
			return
		}
	}
	if key == "" {
		writeError(w, http.StatusBadRequest, "key or url is required", "key")
		return
	}

	bucket := h.storage.PublicBucket()
	if req.Bucket == "private" {
		bucket = h.storage.PrivateBucket()
	}

	if err := h.storage.Delete(r.Context(), bucket, key); err != nil {
		writeServerError(w, "media delete failed", err)
		return
	}

	writeData(w, http.StatusOK, map[string]bool{"deleted": true})
}

// extensionFromType maps an allowed MIME type to a file extension.
func extensionFromType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
