package video

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veoflow/server/internal/module/gallery"
	"github.com/veoflow/server/internal/shared/response"
)

// Handler handles HTTP requests for video generation.
type Handler struct {
	service *Service
}

// NewHandler creates a new video handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the video generation routes. Middleware passed
// here applies to the generate route only; submits are the one costly
// operation worth gating.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, generateMiddleware ...gin.HandlerFunc) {
	r.POST("/generate", append(generateMiddleware, h.Generate)...)
	r.POST("/poll", h.Poll)
	r.GET("/gallery", h.Gallery)
}

// Generate starts a video generation and returns the operation name the
// browser polls with.
func (h *Handler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	resp, err := h.service.Generate(c.Request.Context(), &req)
	if err != nil {
		response.HandleAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Poll checks a running generation once and reports its state.
func (h *Handler) Poll(c *gin.Context) {
	var req PollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	result, err := h.service.Poll(c.Request.Context(), &req)
	if err != nil {
		response.HandleAppError(c, err)
		return
	}

	if !result.Done {
		c.JSON(http.StatusOK, PollPendingResponse{
			Done:    false,
			Message: "Video generation in progress",
		})
		return
	}

	c.JSON(http.StatusOK, PollDoneResponse{
		Done:             true,
		Videos:           result.Videos,
		RaiFilteredCount: result.RaiFilteredCount,
	})
}

// Gallery returns the stored generations, newest first.
func (h *Handler) Gallery(c *gin.Context) {
	entries := h.service.Gallery()
	if entries == nil {
		entries = []gallery.Entry{}
	}
	c.JSON(http.StatusOK, entries)
}
