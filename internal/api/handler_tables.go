package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"waitlist-backend/internal/model"
	"waitlist-backend/internal/store"
)

// tableResponse is the admin-facing view of one table.
type tableResponse struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	Capacity   int     `json:"capacity"`
	Status     string  `json:"status"`
	TimeSeated *string `json:"time_seated,omitempty"`
}

func toTableResponse(t model.Table) tableResponse {
	resp := tableResponse{
		ID:       t.ID,
		Name:     t.Name,
		Capacity: t.Capacity,
		Status:   t.Status,
	}
	if t.TimeSeated != nil {
		seated := t.TimeSeated.UTC().Format(time.RFC3339)
		resp.TimeSeated = &seated
	}
	return resp
}

func tableIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid table id"})
		return 0, false
	}
	return uint(id), true
}

// GetTables handles GET /api/admin/tables.
func (h *Handler) GetTables(c *gin.Context) {
	tables, err := h.store.ListTables(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	response := make([]tableResponse, 0, len(tables))
	for _, table := range tables {
		response = append(response, toTableResponse(table))
	}
	c.JSON(http.StatusOK, response)
}

type addTableRequest struct {
	Capacity int    `json:"capacity"`
	Name     string `json:"name"`
}

// AddTable handles POST /api/admin/tables.
func (h *Handler) AddTable(c *gin.Context) {
	var req addTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.store.AddTable(c.Request.Context(), req.Capacity, req.Name); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Table added successfully."})
}

type updateTableRequest struct {
	Name     *string `json:"name"`
	Capacity *int    `json:"capacity"`
	Status   *string `json:"status"`
}

// UpdateTable handles PUT /api/admin/tables/:id. A status-only body is the
// vacate/occupy toggle; name and capacity edits never touch the status.
func (h *Handler) UpdateTable(c *gin.Context) {
	id, ok := tableIDParam(c)
	if !ok {
		return
	}

	var req updateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, err := h.store.UpdateTable(c.Request.Context(), id, store.UpdateTableParams{
		Name:     req.Name,
		Capacity: req.Capacity,
		Status:   req.Status,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Table updated successfully."})
}

// DeleteTable handles DELETE /api/admin/tables/:id.
func (h *Handler) DeleteTable(c *gin.Context) {
	id, ok := tableIDParam(c)
	if !ok {
		return
	}

	if err := h.store.RemoveTable(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
