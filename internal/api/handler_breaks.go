package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pitboss-backend/internal/model"
)

type breakRequest struct {
	Type            string `json:"type"`
	DurationMinutes int    `json:"duration_minutes"`
}

// PostBreak ends any open assignment for the dealer and starts a break
// or meal period.
func (h *Handler) PostBreak(c *gin.Context) {
	dealerID := c.Param("dealer_id")

	var req breakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	breakType := model.BreakShort
	switch req.Type {
	case "", string(model.BreakShort):
	case string(model.BreakMeal):
		breakType = model.BreakMeal
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be \"break\" or \"meal\""})
		return
	}

	record, err := h.manager.SendToBreak(c.Request.Context(), dealerID, breakType, req.DurationMinutes, actorID(c))
	if err != nil {
		abortWithEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// PostReturn manually returns a dealer from break ahead of the break
// monitor.
func (h *Handler) PostReturn(c *gin.Context) {
	dealerID := c.Param("dealer_id")

	ended, err := h.manager.EndBreak(c.Request.Context(), dealerID, actorID(c))
	if err != nil {
		abortWithEngineError(c, err)
		return
	}
	if ended == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "dealer has no open break"})
		return
	}

	c.JSON(http.StatusOK, ended)
}

// PostHome ends any open assignment and sends the dealer home.
func (h *Handler) PostHome(c *gin.Context) {
	dealerID := c.Param("dealer_id")

	if err := h.manager.SendHome(c.Request.Context(), dealerID, actorID(c)); err != nil {
		abortWithEngineError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
