package assessments

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lendnova-backend/internal/shared/server/middleware"
	"lendnova-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
	// Guard runs before routes that score or summarise the owner's data,
	// typically the consent check.
	Guard gin.HandlerFunc
}

func NewHandler(svc *Service, guard gin.HandlerFunc) *Handler {
	return &Handler{Svc: svc, Guard: guard}
}

// RegisterRoutes attaches assessment routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	guarded := rg.Group("")
	if h.Guard != nil {
		guarded.Use(h.Guard)
	}
	guarded.POST("/assessments", h.run)
	guarded.GET("/dashboard", h.dashboard)

	rg.GET("/assessments", h.list)
	rg.GET("/assessments/current", h.current)
}

// run enqueues when a job queue is configured and otherwise scores inline.
func (h *Handler) run(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	requestID := middleware.RequestIDFromContext(c)

	if h.Svc.Queue != nil {
		if err := h.Svc.Enqueue(c.Request.Context(), userID, requestID); err != nil {
			h.fail(c, err, "failed to enqueue assessment")
			return
		}
		respond.JSON(c, http.StatusAccepted, QueuedResponse{Status: "queued", RequestID: requestID})
		return
	}

	out, err := h.Svc.Run(WithRequestID(c.Request.Context(), requestID), userID)
	if err != nil {
		h.fail(c, err, "failed to run assessment")
		return
	}

	resp := RunResponse{
		Produced:          out.Produced,
		ValidDocuments:    out.ValidDocuments,
		RequiredDocuments: out.Required,
	}
	if !out.Produced {
		respond.OK(c, resp)
		return
	}
	c.Set("assessmentId", out.Assessment.ID)
	a := toResponse(out.Assessment)
	resp.Assessment = &a
	respond.JSON(c, http.StatusCreated, resp)
}

func (h *Handler) current(c *gin.Context) {
	a, err := h.Svc.Current(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "no assessment yet", nil)
			return
		}
		h.fail(c, err, "failed to load assessment")
		return
	}
	c.Set("assessmentId", a.ID)
	respond.OK(c, toResponse(a))
}

func (h *Handler) list(c *gin.Context) {
	limit, offset := pageParams(c)
	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		h.fail(c, err, "failed to list assessments")
		return
	}
	resp := ListResponse{Items: make([]AssessmentResponse, 0, len(items))}
	for _, a := range items {
		resp.Items = append(resp.Items, toResponse(a))
	}
	respond.OK(c, resp)
}

func (h *Handler) dashboard(c *gin.Context) {
	d, err := h.Svc.Dashboard(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		h.fail(c, err, "failed to load dashboard")
		return
	}
	resp := DashboardResponse{ValidDocuments: d.ValidDocuments, InvalidDocuments: d.InvalidDocuments}
	if d.Current != nil {
		a := toResponse(*d.Current)
		resp.Assessment = &a
	}
	respond.OK(c, resp)
}

func (h *Handler) fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrJobQueueNotConfigured):
		respond.Error(c, http.StatusServiceUnavailable, "queue_unavailable", "job queue not configured", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", msg, nil)
	}
}

func pageParams(c *gin.Context) (int, int) {
	limit, offset := 20, 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = v
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
