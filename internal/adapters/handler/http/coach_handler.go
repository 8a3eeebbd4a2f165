package http

import (
	"net/http"

	"github.com/comitanigiacomo/kanso-rise/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-rise/internal/core/domain"
	"github.com/comitanigiacomo/kanso-rise/internal/core/services"
	"github.com/gin-gonic/gin"
)

type CoachHandler struct {
	svc *services.CoachService
}

func NewCoachHandler(svc *services.CoachService) *CoachHandler {
	return &CoachHandler{svc: svc}
}

type habitStackRequest struct {
	TargetTime  string `json:"target_time" binding:"required"`
	UserContext string `json:"user_context" binding:"max=1000"`
}

func (h *CoachHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/habit-stack", h.SuggestHabitStack)
	router.POST("/reflection", h.WeeklyReflection)
}

func (h *CoachHandler) SuggestHabitStack(c *gin.Context) {
	if _, ok := middleware.GetUserID(c); !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req habitStackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.svc.SuggestHabitStack(c.Request.Context(), domain.HabitStackPromptInput{
		TargetTime:  req.TargetTime,
		UserContext: req.UserContext,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, resp)
}

func (h *CoachHandler) WeeklyReflection(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	summary, err := h.svc.WeeklyReflection(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, summary)
}
