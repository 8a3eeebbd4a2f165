package http

import (
	"net/http"

	"github.com/comitanigiacomo/kanso-rise/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-rise/internal/core/services"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	svc *services.DashboardService
}

func NewDashboardHandler(svc *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/dashboard", h.Get)
}

func (h *DashboardHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	dash, err := h.svc.Get(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusOK, dash)
}
