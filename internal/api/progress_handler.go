package api

import (
	"alcyxob/routine-progress/internal/service"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const maxHistoryLimit = 500

type ProgressHandler struct {
	sessionService service.SessionService
	metricsService service.MetricsService
	exportService  service.ExportService
}

func NewProgressHandler(sessionService service.SessionService, metricsService service.MetricsService, exportService service.ExportService) *ProgressHandler {
	return &ProgressHandler{
		sessionService: sessionService,
		metricsService: metricsService,
		exportService:  exportService,
	}
}

// GetHistory godoc
// @Summary Training history
// @Description Logged sessions, newest first, labelled with the template they were recorded against.
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Param traineeId path string false "Trainee's ObjectID Hex (staff routes)"
// @Param limit query int false "Maximum entries (1-500)"
// @Success 200 {array} domain.HistoryEntry
// @Failure 400 {object} gin.H "Invalid limit"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /me/history [get]
func (h *ProgressHandler) GetHistory(c *gin.Context) {
	traineeID, ok := traineeFromRequest(c)
	if !ok {
		return
	}
	limit := maxHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			abortWithError(c, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	history, err := h.sessionService.History(c.Request.Context(), traineeID, limit)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve history.")
		return
	}
	c.JSON(http.StatusOK, history)
}

// GetMetrics godoc
// @Summary Progress metrics
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Param traineeId path string false "Trainee's ObjectID Hex (staff routes)"
// @Success 200 {object} domain.Metrics
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /me/metrics [get]
func (h *ProgressHandler) GetMetrics(c *gin.Context) {
	traineeID, ok := traineeFromRequest(c)
	if !ok {
		return
	}
	metrics, err := h.metricsService.Metrics(c.Request.Context(), traineeID)
	if err != nil {
		respondServiceError(c, err, "Failed to compute metrics.")
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// ExportHistory godoc
// @Summary Export history as CSV
// @Description Uploads the full history to object storage and returns a temporary download URL.
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Param traineeId path string true "Trainee's ObjectID Hex"
// @Success 201 {object} service.ExportResult
// @Failure 503 {object} gin.H "Export storage not configured"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /trainees/{traineeId}/history/export [post]
func (h *ProgressHandler) ExportHistory(c *gin.Context) {
	traineeID, ok := traineeFromRequest(c)
	if !ok {
		return
	}
	result, err := h.exportService.ExportHistory(c.Request.Context(), traineeID, actorFromRequest(c))
	if err != nil {
		respondServiceError(c, err, "Failed to export history.")
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListExports godoc
// @Summary Previous history exports
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Param traineeId path string true "Trainee's ObjectID Hex"
// @Success 200 {array} domain.HistoryExport
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /trainees/{traineeId}/history/exports [get]
func (h *ProgressHandler) ListExports(c *gin.Context) {
	traineeID, ok := traineeFromRequest(c)
	if !ok {
		return
	}
	exports, err := h.exportService.ListExports(c.Request.Context(), traineeID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve exports.")
		return
	}
	c.JSON(http.StatusOK, exports)
}
