package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type createAssignmentRequest struct {
	DealerID      string     `json:"dealer_id" binding:"required"`
	TableID       string     `json:"table_id" binding:"required"`
	ScheduledTime *time.Time `json:"scheduled_time"`
}

// PostAssignment assigns a dealer to a table, rotating them off any
// current table first.
func (h *Handler) PostAssignment(c *gin.Context) {
	var req createAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignment, err := h.manager.Assign(c.Request.Context(), req.DealerID, req.TableID, req.ScheduledTime, actorID(c), false)
	if err != nil {
		abortWithEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

// PostPush ends the current assignment on a table (manual push). A
// pending expiry countdown for that assignment is cancelled so the
// auto-rotation cannot fire after the manual action.
func (h *Handler) PostPush(c *gin.Context) {
	tableID := c.Param("table_id")

	ended, err := h.manager.EndAssignment(c.Request.Context(), tableID, actorID(c))
	if err != nil {
		abortWithEngineError(c, err)
		return
	}
	if ended == nil {
		c.JSON(http.StatusOK, gin.H{"ended": nil})
		return
	}

	h.monitor.Dismiss(ended.ID)
	c.JSON(http.StatusOK, gin.H{"ended": ended})
}

type swapRequest struct {
	DealerA string `json:"dealer_a" binding:"required"`
	DealerB string `json:"dealer_b" binding:"required"`
}

// PostSwap exchanges the tables of two dealers' open assignments. A
// no-op if either dealer has no open assignment; callers verify the
// result by reloading state.
func (h *Handler) PostSwap(c *gin.Context) {
	var req swapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.manager.Swap(c.Request.Context(), req.DealerA, req.DealerB, actorID(c)); err != nil {
		abortWithEngineError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// actorID identifies the acting supervisor from the request header,
// falling back to a generic floor actor.
func actorID(c *gin.Context) string {
	if actor := c.GetHeader("X-Actor-ID"); actor != "" {
		return actor
	}
	return "floor"
}
