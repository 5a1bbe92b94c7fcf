package api

import (
	"alcyxob/routine-progress/internal/domain"
	"alcyxob/routine-progress/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	planService    service.PlanService
	sessionService service.SessionService
}

func NewPlanHandler(planService service.PlanService, sessionService service.SessionService) *PlanHandler {
	return &PlanHandler{planService: planService, sessionService: sessionService}
}

// --- DTOs ---

type CompleteTodayRequest struct {
	Kind        string `json:"kind"`        // AUTO, BASE or EXTRA; AUTO when empty
	WorkoutDate string `json:"workoutDate"` // YYYY-MM-DD, today when empty
	Label       string `json:"label"`
	Intensity   string `json:"intensity"`
}

type SetFrequencyRequest struct {
	BaseDaysPerWeek int    `json:"baseDaysPerWeek" binding:"required"`
	EffectiveFrom   string `json:"effectiveFrom"` // YYYY-MM-DD, today when empty
}

// parseDate reads an optional YYYY-MM-DD value.
func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// --- Handler Methods ---

// GetToday godoc
// @Summary Classify today
// @Description Returns whether today is a BASE or EXTRA day and the next routine day owed.
// @Tags Plan
// @Produce json
// @Security BearerAuth
// @Param traineeId path string false "Trainee's ObjectID Hex (staff routes)"
// @Success 200 {object} domain.DayClassification
// @Failure 400 {object} gin.H "Invalid trainee ID"
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /me/plan/today [get]
func (h *PlanHandler) GetToday(c *gin.Context) {
	traineeID, ok := traineeFromRequest(c)
	if !ok {
		return
	}
	classification, err := h.planService.ClassifyToday(c.Request.Context(), traineeID)
	if err != nil {
		respondServiceError(c, err, "Failed to classify today.")
		return
	}
	c.JSON(http.StatusOK, classification)
}

// CompleteToday godoc
// @Summary Record today's session
// @Description Logs a completed session. BASE sessions advance the routine day pointer.
// @Tags Plan
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param traineeId path string false "Trainee's ObjectID Hex (staff routes)"
// @Param session body CompleteTodayRequest false "Session details"
// @Success 201 {object} domain.SessionRecord
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "No active routine"
// @Failure 409 {object} gin.H "Today is not a BASE day"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /me/plan/today [post]
func (h *PlanHandler) CompleteToday(c *gin.Context) {
	traineeID, ok := traineeFromRequest(c)
	if !ok {
		return
	}

	var req CompleteTodayRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}
	kind, err := domain.ParseDayKind(req.Kind)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	intensity, err := domain.ParseIntensity(req.Intensity)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	workoutDate, err := parseDate(req.WorkoutDate)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "workoutDate must be YYYY-MM-DD")
		return
	}

	record, err := h.sessionService.CompleteToday(c.Request.Context(), traineeID, actorFromRequest(c), service.CompleteInput{
		Kind:        kind,
		WorkoutDate: workoutDate,
		Label:       req.Label,
		Intensity:   intensity,
	})
	if err != nil {
		respondServiceError(c, err, "Failed to record session.")
		return
	}
	c.JSON(http.StatusCreated, record)
}

// SetFrequency godoc
// @Summary Set weekly frequency
// @Description Appends a weekly BASE-day target to the trainee's history.
// @Tags Plan
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param traineeId path string true "Trainee's ObjectID Hex"
// @Param frequency body SetFrequencyRequest true "New frequency"
// @Success 200 {object} domain.EffectiveConfig
// @Failure 400 {object} gin.H "Invalid input or out of range"
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /trainees/{traineeId}/plan/frequency [put]
func (h *PlanHandler) SetFrequency(c *gin.Context) {
	traineeID, ok := traineeFromRequest(c)
	if !ok {
		return
	}
	var req SetFrequencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	effectiveFrom, err := parseDate(req.EffectiveFrom)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "effectiveFrom must be YYYY-MM-DD")
		return
	}

	cfg, err := h.planService.SetFrequency(c.Request.Context(), traineeID, actorFromRequest(c), req.BaseDaysPerWeek, effectiveFrom)
	if err != nil {
		respondServiceError(c, err, "Failed to set frequency.")
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// GetFrequencyHistory godoc
// @Summary Weekly frequency history
// @Tags Plan
// @Produce json
// @Security BearerAuth
// @Param traineeId path string false "Trainee's ObjectID Hex (staff routes)"
// @Success 200 {array} domain.EffectiveConfig
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /me/plan/frequency [get]
func (h *PlanHandler) GetFrequencyHistory(c *gin.Context) {
	traineeID, ok := traineeFromRequest(c)
	if !ok {
		return
	}
	history, err := h.planService.FrequencyHistory(c.Request.Context(), traineeID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve frequency history.")
		return
	}
	if history == nil {
		history = []domain.EffectiveConfig{}
	}
	c.JSON(http.StatusOK, history)
}
