package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"interviewai/internal/archive"
	"interviewai/internal/extract"
	"interviewai/internal/metrics"
	"interviewai/pkg/logging/logging"
)

const (
	resumeField         = "resume_file"
	unsupportedExtLabel = "other"
)

type UploadHandler struct {
	MaxBytes        int64
	MaxResumeLength int
	// Archiver is optional; archiving failures never fail the upload.
	Archiver archive.Archiver
}

type uploadResponse struct {
	ResumeText string `json:"resume_text"`
	Truncated  bool   `json:"truncated"`
	Filename   string `json:"filename"`
	ArchiveKey string `json:"archive_key,omitempty"`
}

func NewUploadHandler(maxBytes int64, maxResumeLength int, archiver archive.Archiver) *UploadHandler {
	return &UploadHandler{
		MaxBytes:        maxBytes,
		MaxResumeLength: maxResumeLength,
		Archiver:        archiver,
	}
}

// Upload handles POST /upload: extracts plain text from a PDF or DOCX
// resume and truncates it for the prompt.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)

	file, header, err := r.FormFile(resumeField)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			writeError(w, http.StatusBadRequest, tooLargeMessage(h.MaxBytes))
		case emptyFilePart(r):
			writeError(w, http.StatusBadRequest, "No file selected.")
		default:
			logger.Debug("no resume file in request", zap.Error(err))
			writeError(w, http.StatusBadRequest, "No file uploaded.")
		}
		return
	}
	defer file.Close()

	if h.MaxBytes > 0 && header.Size > h.MaxBytes {
		writeError(w, http.StatusBadRequest, tooLargeMessage(h.MaxBytes))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		logger.Error("read upload", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ext := extract.Ext(header.Filename)
	resp := uploadResponse{Filename: header.Filename}

	if !extract.Supported(ext) {
		// the extension is client supplied, keep it out of the label set
		metrics.ExtractionsTotal.WithLabelValues(unsupportedExtLabel, "unsupported").Inc()
		logger.Info("unsupported resume format", zap.String("ext", ext))
		writeJSON(w, http.StatusOK, resp)
		return
	}

	start := time.Now()
	text, err := extract.Extract(data, ext)
	if err != nil {
		metrics.ExtractionsTotal.WithLabelValues(ext, "error").Inc()
		logger.Warn("extract resume", zap.String("ext", ext), zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	metrics.ExtractionsTotal.WithLabelValues(ext, "ok").Inc()

	resp.ResumeText, resp.Truncated = extract.Truncate(text, h.MaxResumeLength)

	if h.Archiver != nil {
		key, err := h.Archiver.Archive(ctx, header.Filename, data)
		if err != nil {
			logger.Warn("archive upload failed", zap.Error(err))
		} else {
			resp.ArchiveKey = key
		}
	}

	logger.Info("resume extracted",
		zap.String("ext", ext),
		zap.Int("bytes", len(data)),
		zap.Int("chars", len(text)),
		zap.Bool("truncated", resp.Truncated),
		zap.Duration("latency", time.Since(start)),
	)

	writeJSON(w, http.StatusOK, resp)
}

// emptyFilePart reports whether the resume field was sent without a filename.
// multipart parsing files such a part under form values, not files.
func emptyFilePart(r *http.Request) bool {
	if r.MultipartForm == nil {
		return false
	}
	_, ok := r.MultipartForm.Value[resumeField]
	return ok
}

func tooLargeMessage(limit int64) string {
	if limit < 1024*1024 {
		return fmt.Sprintf("File too large. Maximum size is %d KB.", limit/1024)
	}
	return fmt.Sprintf("File too large. Maximum size is %d MB.", limit/(1024*1024))
}
