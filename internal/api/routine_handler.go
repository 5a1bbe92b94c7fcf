package api

import (
	"alcyxob/routine-progress/internal/domain"
	"alcyxob/routine-progress/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type RoutineHandler struct {
	routineService service.RoutineService
}

func NewRoutineHandler(routineService service.RoutineService) *RoutineHandler {
	return &RoutineHandler{routineService: routineService}
}

// --- DTOs ---

type TemplateItemRequest struct {
	DayIndex     int      `json:"dayIndex" binding:"required,min=1"`
	OrderIndex   int      `json:"orderIndex" binding:"min=0"`
	Category     string   `json:"category"`
	ExerciseKey  string   `json:"exerciseKey" binding:"required"`
	Sets         *int     `json:"sets,omitempty"`
	Reps         string   `json:"reps,omitempty"`
	RestSeconds  *int     `json:"restSeconds,omitempty"`
	TargetWeight *float64 `json:"targetWeight,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

type CreateTemplateRequest struct {
	ExternalKey string                `json:"externalKey" binding:"required"`
	Name        string                `json:"name" binding:"required"`
	Items       []TemplateItemRequest `json:"items" binding:"required,dive"`
}

type AssignRoutineRequest struct {
	TemplateKey string `json:"templateKey" binding:"required"`
}

// --- Handler Methods ---

// ListTemplates godoc
// @Summary List routine templates
// @Description Active templates, ordered by key. Staff may pass all=true to include retired versions.
// @Tags Routines
// @Produce json
// @Security BearerAuth
// @Param all query bool false "Include inactive versions (staff only)"
// @Success 200 {array} domain.RoutineTemplate
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /routines/templates [get]
func (h *RoutineHandler) ListTemplates(c *gin.Context) {
	role, _ := getUserRoleFromContext(c)
	includeInactive := role.IsStaff() && c.Query("all") == "true"

	templates, err := h.routineService.ListTemplates(c.Request.Context(), includeInactive)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve templates.")
		return
	}
	c.JSON(http.StatusOK, templates)
}

// CreateTemplate godoc
// @Summary Publish a routine template
// @Description Creates a new version for the external key and retires the previous one.
// @Tags Routines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param template body CreateTemplateRequest true "Template definition"
// @Success 201 {object} domain.RoutineTemplate
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Forbidden"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /routines/templates [post]
func (h *RoutineHandler) CreateTemplate(c *gin.Context) {
	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	items := make([]domain.RoutineItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = domain.RoutineItem{
			DayIndex:     it.DayIndex,
			OrderIndex:   it.OrderIndex,
			Category:     it.Category,
			ExerciseKey:  it.ExerciseKey,
			Sets:         it.Sets,
			Reps:         it.Reps,
			RestSeconds:  it.RestSeconds,
			TargetWeight: it.TargetWeight,
			Notes:        it.Notes,
		}
	}

	tpl, err := h.routineService.CreateTemplate(c.Request.Context(), service.TemplateInput{
		ExternalKey: req.ExternalKey,
		Name:        req.Name,
		Items:       items,
	})
	if err != nil {
		respondServiceError(c, err, "Failed to create template.")
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

// AssignRoutine godoc
// @Summary Assign a routine to a trainee
// @Description Copies the active template into a new snapshot and restarts the trainee's cycle.
// @Tags Routines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param traineeId path string true "Trainee's ObjectID Hex"
// @Param assignment body AssignRoutineRequest true "Template to assign"
// @Success 201 {object} service.AssignResult
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Template missing or inactive"
// @Failure 422 {object} gin.H "Template has no items"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /trainees/{traineeId}/routine [post]
func (h *RoutineHandler) AssignRoutine(c *gin.Context) {
	traineeID, ok := traineeFromRequest(c)
	if !ok {
		return
	}
	var req AssignRoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.routineService.Assign(c.Request.Context(), traineeID, actorFromRequest(c), req.TemplateKey)
	if err != nil {
		respondServiceError(c, err, "Failed to assign routine.")
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GetRoutine godoc
// @Summary Get the active routine
// @Tags Routines
// @Produce json
// @Security BearerAuth
// @Param traineeId path string false "Trainee's ObjectID Hex (staff routes)"
// @Success 200 {object} service.RoutineView
// @Failure 404 {object} gin.H "No active routine"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /me/routine [get]
func (h *RoutineHandler) GetRoutine(c *gin.Context) {
	traineeID, ok := traineeFromRequest(c)
	if !ok {
		return
	}
	view, err := h.routineService.GetActiveRoutine(c.Request.Context(), traineeID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve routine.")
		return
	}
	c.JSON(http.StatusOK, view)
}
