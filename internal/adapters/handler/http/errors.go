package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/kanso-rise/internal/adapters/llm"
	"github.com/comitanigiacomo/kanso-rise/internal/core/coach"
	"github.com/comitanigiacomo/kanso-rise/internal/core/domain"
)

var badRequestErrors = []error{
	domain.ErrGoalInvalidUserID,
	domain.ErrInvalidTargetTime,
	domain.ErrInvalidWeekdays,
	domain.ErrInvalidHabitStack,
	domain.ErrHabitStepEmpty,
	domain.ErrHabitStepTooLong,
	domain.ErrInvalidTimezone,
	domain.ErrInvalidLogDate,
	domain.ErrInvalidLogStatus,
	domain.ErrInvalidWakeTime,
	domain.ErrInvalidSteps,
	domain.ErrInvalidDateRange,
	domain.ErrInvalidEmail,
	domain.ErrPasswordTooShort,
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func handleError(c *gin.Context, err error) {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	var apiErr *llm.APIError

	switch {
	case errors.Is(err, domain.ErrGoalNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "No active goal found"})

	case errors.Is(err, domain.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "email already exists"})

	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})

	case errors.Is(err, coach.ErrInvalidResponse):
		log.Printf("[COACH] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI response was invalid", "detail": err.Error()})

	case errors.Is(err, llm.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "LLM service is not configured"})

	case errors.As(err, &apiErr):
		log.Printf("[ERROR] LLM gateway failed on %s: %v", c.Request.URL.Path, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "LLM service error"})

	case errors.Is(err, llm.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		log.Printf("[ERROR] Timeout on %s: %v", c.Request.URL.Path, err)
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out"})

	case errors.Is(err, llm.ErrUnavailable):
		log.Printf("[ERROR] LLM gateway unreachable on %s: %v", c.Request.URL.Path, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "LLM service unavailable"})

	default:
		log.Printf("[ERROR] Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
