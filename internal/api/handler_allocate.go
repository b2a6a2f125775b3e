package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type allocateRequest struct {
	CustomerID uint   `json:"customer_id"`
	TableIDs   []uint `json:"table_ids"`
}

// AllocateTables handles POST /api/admin/allocate_table: it binds the
// selected tables to the selected customer atomically, or rejects without
// side effects.
func (h *Handler) AllocateTables(c *gin.Context) {
	var req allocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.Allocate(c.Request.Context(), req.CustomerID, req.TableIDs); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tables allocated successfully."})
}
