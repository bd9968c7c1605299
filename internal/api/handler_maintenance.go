package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RunBackup handles POST /api/admin/maintenance/backup.
func (h *Handler) RunBackup(c *gin.Context) {
	result, err := h.maintenance.WriteSnapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// RunStatusSync handles POST /api/admin/maintenance/sync.
func (h *Handler) RunStatusSync(c *gin.Context) {
	result, err := h.maintenance.SyncStatuses(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
