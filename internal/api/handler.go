package api

import (
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"pitboss-backend/internal/parse"
	"pitboss-backend/internal/rotation"
	"pitboss-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	manager *rotation.Manager
	scorer  *rotation.Scorer
	sweeper *rotation.Sweeper
	monitor *rotation.RotationMonitor
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, manager *rotation.Manager, scorer *rotation.Scorer, sweeper *rotation.Sweeper, monitor *rotation.RotationMonitor, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:   s,
		manager: manager,
		scorer:  scorer,
		sweeper: sweeper,
		monitor: monitor,
		webpush: webpushOptions,
	}
}

// abortWithEngineError maps engine error kinds to HTTP statuses.
func abortWithEngineError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, rotation.ErrTableNotFound),
		errors.Is(err, rotation.ErrDealerNotFound),
		errors.Is(err, rotation.ErrNoQualifiedCandidates):
		status = http.StatusNotFound
	case errors.Is(err, rotation.ErrUnsupportedGameType):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, parse.ErrInvalidCommand):
		status = http.StatusBadRequest
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
