package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pitboss-backend/internal/parse"
)

type commandRequest struct {
	Text string `json:"text" binding:"required"`
}

// PostCommand parses a free-text staffing request and returns the
// structured requirement plus the ranked candidate list for its table.
func (h *Handler) PostCommand(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	requirement := parse.ParseCommand(req.Text)
	if err := requirement.Validate(); err != nil {
		abortWithEngineError(c, err)
		return
	}

	candidates, table, err := h.scorer.FindQualified(c.Request.Context(), requirement)
	if err != nil {
		abortWithEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requirement": requirement,
		"table":       table,
		"candidates":  candidates,
	})
}
