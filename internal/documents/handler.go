package documents

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lendnova-backend/internal/doctype"
	"lendnova-backend/internal/shared/server/middleware"
	"lendnova-backend/internal/shared/server/respond"
)

const defaultMaxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadSize
	}
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.upload)
	rg.GET("/documents", h.list)
}

// upload accepts a multipart form with one file field per document type,
// e.g. bank_statement=@statement.pdf. Other fields are ignored.
func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	form, err := c.MultipartForm()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "upload exceeds size limit", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "multipart form required", nil)
		return
	}

	var uploads []Upload
	for _, t := range doctype.All() {
		for _, fh := range form.File[string(t)] {
			content, err := readFormFile(fh)
			if err != nil {
				respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
				return
			}
			uploads = append(uploads, Upload{Label: string(t), FileName: fh.Filename, Content: content})
		}
	}
	if len(uploads) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "no document files submitted", nil)
		return
	}

	report, err := h.Svc.Ingest(c.Request.Context(), userID, uploads)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to ingest documents", nil)
		}
		return
	}
	c.Set("documentCount", len(report.Documents))

	respond.JSON(c, http.StatusCreated, toIngestResponse(report))
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	limit, offset := pageParams(c)

	docs, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		}
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toResponse(doc))
	}
	respond.OK(c, resp)
}

func pageParams(c *gin.Context) (int, int) {
	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
