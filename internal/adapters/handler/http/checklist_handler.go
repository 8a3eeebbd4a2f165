package http

import (
	"net/http"

	"github.com/comitanigiacomo/kanso-rise/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-rise/internal/core/domain"
	"github.com/comitanigiacomo/kanso-rise/internal/core/services"
	"github.com/gin-gonic/gin"
)

type ChecklistHandler struct {
	svc *services.ChecklistService
}

func NewChecklistHandler(svc *services.ChecklistService) *ChecklistHandler {
	return &ChecklistHandler{svc: svc}
}

type logRequest struct {
	Status         string `json:"status" binding:"required,oneof=completed snoozed skipped"`
	WakeTime       string `json:"wake_time" binding:"required"`
	CompletedSteps []int  `json:"completed_steps" binding:"omitempty,dive,min=1"`
	Reason         string `json:"reason" binding:"max=500"`
}

func (h *ChecklistHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/checklist", h.Log)
	router.GET("/checklist", h.History)
}

func (h *ChecklistHandler) Log(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var req logRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.svc.Log(c.Request.Context(), services.LogInput{
		UserID:         userID,
		Status:         domain.LogStatus(req.Status),
		WakeTime:       req.WakeTime,
		CompletedSteps: req.CompletedSteps,
		Reason:         req.Reason,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, entry)
}

func (h *ChecklistHandler) History(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	logs, err := h.svc.History(c.Request.Context(), userID, c.Query("from"), c.Query("to"))
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, logs)
}
