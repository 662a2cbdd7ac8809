package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pitboss-backend/internal/model"
)

// GetDealers returns the active roster with certifications.
func (h *Handler) GetDealers(c *gin.Context) {
	dealers, err := h.store.Roster(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve dealers"})
		return
	}
	c.JSON(http.StatusOK, dealers)
}

// tableResponse flattens a table with its current staffing state.
type tableResponse struct {
	model.GameTable
	HighLimit  bool              `json:"high_limit"`
	Assignment *model.Assignment `json:"assignment"`
	Elapsed    *int64            `json:"elapsed_seconds,omitempty"`
}

// GetTables returns every table with its open assignment, if any.
func (h *Handler) GetTables(c *gin.Context) {
	var tables []model.GameTable
	if err := h.store.DB().WithContext(c.Request.Context()).
		Order("table_number").Find(&tables).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tables"})
		return
	}

	open, err := h.store.OpenAssignments(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve assignments"})
		return
	}
	byTable := make(map[string]model.Assignment, len(open))
	for _, a := range open {
		byTable[a.TableID] = a
	}

	now := time.Now().UTC()
	response := make([]tableResponse, 0, len(tables))
	for _, table := range tables {
		entry := tableResponse{GameTable: table, HighLimit: table.HighLimit()}
		if a, ok := byTable[table.ID]; ok {
			assignment := a
			elapsed := int64(now.Sub(a.StartTime).Seconds())
			entry.Assignment = &assignment
			entry.Elapsed = &elapsed
		}
		response = append(response, entry)
	}
	c.JSON(http.StatusOK, response)
}

// PostSweep triggers one sweep pass and returns its result.
func (h *Handler) PostSweep(c *gin.Context) {
	c.JSON(http.StatusOK, h.sweeper.SweepEmptyTables(c.Request.Context()))
}

// GetAlerts lists the raised, undismissed rotation-expiry alerts.
func (h *Handler) GetAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, h.monitor.Alerts())
}

// PostDismissAlert cancels the pending auto-rotation for an assignment.
func (h *Handler) PostDismissAlert(c *gin.Context) {
	assignmentID := c.Param("assignment_id")
	if !h.monitor.Dismiss(assignmentID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no pending alert for assignment"})
		return
	}
	c.Status(http.StatusNoContent)
}
