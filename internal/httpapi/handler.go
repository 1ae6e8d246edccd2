package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"inbox_sync/internal/domain"
	"inbox_sync/internal/ingest"
)

type Ingestor interface {
	Merge(ctx context.Context, batch *domain.Batch) (*domain.IngestResult, error)
	Cursors(ctx context.Context, workspaceID string) (map[string]string, error)
}

type Handler struct {
	ingestor Ingestor
	logger   *slog.Logger
}

func NewHandler(ingestor Ingestor, logger *slog.Logger) *Handler {
	return &Handler{
		ingestor: ingestor,
		logger:   logger,
	}
}

func (h *Handler) Sync(c *gin.Context) {
	ctx := c.Request.Context()
	logger := h.logger.With("correlation_id", GetCorrelationID(ctx))

	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		logger.Warn("invalid sync request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	batch := req.toBatch()
	logger.Info("sync batch received",
		"workspace_id", batch.WorkspaceID,
		"conversations", len(batch.Conversations),
		"messages", batch.MessageCount(),
	)

	result, err := h.ingestor.Merge(ctx, batch)
	if err != nil {
		if errors.Is(err, ingest.ErrInvalidBatch) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("failed to merge batch", "workspace_id", batch.WorkspaceID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to merge batch"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) Cursors(c *gin.Context) {
	ctx := c.Request.Context()
	workspaceID := c.Param("workspaceID")

	cursors, err := h.ingestor.Cursors(ctx, workspaceID)
	if err != nil {
		h.logger.Error("failed to load cursors",
			"workspace_id", workspaceID,
			"correlation_id", GetCorrelationID(ctx),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load cursors"})
		return
	}
	if cursors == nil {
		cursors = map[string]string{}
	}

	c.JSON(http.StatusOK, CursorsResponse{Cursors: cursors})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
