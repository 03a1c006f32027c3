package controllers

import (
	"errors"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"diskpanel/internal/middleware"
	"diskpanel/internal/models"
	"diskpanel/internal/services"
)

// VolumesController serves snapshots as JSON
type VolumesController struct {
	pipeline  *services.Pipeline
	metrics   *services.PipelineMetrics
	validator *middleware.InputValidator
}

func NewVolumesController(pipeline *services.Pipeline, metrics *services.PipelineMetrics) *VolumesController {
	return &VolumesController{
		pipeline:  pipeline,
		metrics:   metrics,
		validator: middleware.NewInputValidator(),
	}
}

// GetVolumes runs the pipeline and returns the new snapshot
func (vc *VolumesController) GetVolumes(c *gin.Context) {
	snap, err := vc.pipeline.Refresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetSnapshot returns a previously taken snapshot
func (vc *VolumesController) GetSnapshot(c *gin.Context) {
	snap, ok := vc.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetSnapshotTable returns the table of a snapshot, optionally sorted.
// Query params: sort=device|total|used|free|percent, order=asc|desc (default: asc)
func (vc *VolumesController) GetSnapshotTable(c *gin.Context) {
	snap, ok := vc.lookup(c)
	if !ok {
		return
	}

	order := c.DefaultQuery("order", "asc")
	if order != "asc" && order != "desc" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order must be asc or desc"})
		return
	}

	controller := services.NewTableSortController(models.NewVolumeTable(snap.Records))
	if key := c.Query("sort"); key != "" {
		sortKey, err := models.ParseSortKey(key)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if _, err := controller.Select(sortKey); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if order == "desc" {
			if _, err := controller.Select(sortKey); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
	}

	table := controller.Table()
	c.JSON(http.StatusOK, services.TablePayload{
		SnapshotID: snap.ID,
		Sort:       controller.State(),
		Columns:    table.Columns,
		Rows:       slices.Clone(table.Rows),
	})
}

func (vc *VolumesController) lookup(c *gin.Context) (*models.VolumeSnapshot, bool) {
	id := c.Param("id")
	if !vc.validator.ValidateSnapshotID(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid snapshot id"})
		return nil, false
	}

	snap, err := vc.pipeline.Store().Get(id)
	if errors.Is(err, services.ErrSnapshotNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not found or expired"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return snap, true
}
