package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"hostpanel/internal/model"
	"hostpanel/internal/service"
	"hostpanel/pkg/apierror"
)

// FileHandler serves transfers and the text editor of the file manager.
type FileHandler struct {
	service       *service.FileService
	maxUploadSize int64
}

func NewFileHandler(service *service.FileService, maxUploadSize int64) *FileHandler {
	return &FileHandler{service: service, maxUploadSize: maxUploadSize}
}

func contentDisposition(disposition string, filename string) string {
	return mime.FormatMediaType(disposition, map[string]string{"filename": filename})
}

func isPayloadTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}

// Upload reads a multipart stream: optional "path" and "overwrite" fields
// followed by one or more "files" parts. Fields must precede the files they
// apply to.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	reader, err := r.MultipartReader()
	if err != nil {
		writeError(w, r, apierror.BadRequest("invalid multipart body", err.Error()))
		return
	}

	destination := r.URL.Query().Get("path")
	overwrite, _ := strconv.ParseBool(r.URL.Query().Get("overwrite"))
	result := model.UploadResult{Uploaded: []model.FileItem{}, Failed: []model.UploadFailure{}}

	for {
		part, nextErr := reader.NextPart()
		if nextErr == io.EOF {
			break
		}
		if nextErr != nil {
			if isPayloadTooLarge(nextErr) {
				writeError(w, r, nextErr)
				return
			}
			writeError(w, r, apierror.BadRequest("invalid multipart stream", nextErr.Error()))
			return
		}

		switch part.FormName() {
		case "path":
			if v := readField(part); v != "" {
				destination = v
			}
			continue
		case "overwrite":
			overwrite, _ = strconv.ParseBool(readField(part))
			continue
		case "files":
		default:
			_ = part.Close()
			continue
		}

		if strings.TrimSpace(part.FileName()) == "" {
			_ = part.Close()
			continue
		}

		uploaded, uploadErr := h.service.Upload(r.Context(), destination, part.FileName(), part, overwrite)
		_ = part.Close()
		if uploadErr != nil {
			if isPayloadTooLarge(uploadErr) {
				writeError(w, r, uploadErr)
				return
			}
			result.Failed = append(result.Failed, model.UploadFailure{Name: part.FileName(), Reason: uploadErr.Error()})
			continue
		}
		result.Uploaded = append(result.Uploaded, uploaded)
	}

	h.service.UploadFinished(r.Context(), result)
	writeSuccess(w, r, http.StatusOK, result, nil)
}

func readField(part io.ReadCloser) string {
	defer part.Close()
	raw, _ := io.ReadAll(io.LimitReader(part, 4096))
	return strings.TrimSpace(string(raw))
}

// Download streams a file, or a directory as zip when archive=true.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	requestedPath, err := requiredQuery(r, "path")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if strings.EqualFold(r.URL.Query().Get("archive"), "true") {
		item, err := h.service.Stat(requestedPath)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if item.Type != model.KindDirectory {
			writeError(w, r, apierror.BadRequest("archive download requires a directory path", item.Path))
			return
		}

		setAttachmentHeaders(w, r, service.ArchiveName(item.Path), "application/zip")
		if err := h.service.Archive(item.Path, w); err != nil {
			slog.WarnContext(r.Context(), "archive stream failed", "path", item.Path, "error", err.Error())
		}
		return
	}

	file, item, err := h.service.Open(requestedPath)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer file.Close()

	contentType := item.MimeType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	setAttachmentHeaders(w, r, item.Name, contentType)
	http.ServeContent(w, r, item.Name, item.ModifiedAt, file)
}

// Thumbnail answers 204 for files that have no preview.
func (h *FileHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	requestedPath, err := requiredQuery(r, "path")
	if err != nil {
		writeError(w, r, err)
		return
	}

	size := parseIntOrDefault(r.URL.Query().Get("size"), 256)
	if size < 32 {
		size = 32
	}

	file, info, err := h.service.Thumbnail(requestedPath, size)
	if err != nil {
		var apiErr *apierror.APIError
		if errors.As(err, &apiErr) && apiErr.Code == "UNSUPPORTED_TYPE" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeError(w, r, err)
		return
	}
	defer file.Close()

	filename := path.Base(requestedPath) + ".jpg"
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.Header().Set("Content-Disposition", contentDisposition("inline", filename))
	http.ServeContent(w, r, filename, info.ModTime(), file)
}

func (h *FileHandler) ReadText(w http.ResponseWriter, r *http.Request) {
	requestedPath, err := requiredQuery(r, "path")
	if err != nil {
		writeError(w, r, err)
		return
	}

	text, err := h.service.ReadText(requestedPath)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, text, nil)
}

func (h *FileHandler) SaveText(w http.ResponseWriter, r *http.Request) {
	var payload model.SaveTextRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	text, err := h.service.SaveText(r.Context(), payload.Path, payload.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, text, nil)
}
