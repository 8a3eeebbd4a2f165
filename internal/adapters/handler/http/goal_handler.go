package http

import (
	"net/http"

	"github.com/comitanigiacomo/kanso-rise/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-rise/internal/core/domain"
	"github.com/comitanigiacomo/kanso-rise/internal/core/services"
	"github.com/gin-gonic/gin"
)

type GoalHandler struct {
	svc *services.GoalService
}

func NewGoalHandler(svc *services.GoalService) *GoalHandler {
	return &GoalHandler{svc: svc}
}

type habitStepRequest struct {
	Step  string `json:"step" binding:"required"`
	Order int    `json:"order" binding:"min=0"`
}

type createGoalRequest struct {
	TargetTime string             `json:"target_time" binding:"required"`
	Timezone   string             `json:"timezone"`
	DaysOfWeek []int              `json:"days_of_week" binding:"required,min=1,dive,min=0,max=6"`
	HabitStack []habitStepRequest `json:"habit_stack" binding:"required,min=3,max=7,dive"`
}

func (h *GoalHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/goal", h.Create)
	router.GET("/goal", h.GetActive)
}

func (h *GoalHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req createGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stack := make([]domain.HabitStep, 0, len(req.HabitStack))
	for _, s := range req.HabitStack {
		stack = append(stack, domain.HabitStep{Step: s.Step, Order: s.Order})
	}

	goal, err := h.svc.Create(c.Request.Context(), services.CreateGoalInput{
		UserID:     userID,
		TargetTime: req.TargetTime,
		Timezone:   req.Timezone,
		DaysOfWeek: req.DaysOfWeek,
		HabitStack: stack,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusCreated, goal)
}

func (h *GoalHandler) GetActive(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	goal, err := h.svc.GetActive(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, goal)
}
