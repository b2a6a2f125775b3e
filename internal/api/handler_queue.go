package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"waitlist-backend/internal/model"
	"waitlist-backend/internal/notification"
	"waitlist-backend/internal/store"
)

type joinQueueRequest struct {
	Name            string `json:"name"`
	PartySize       int    `json:"party_size"`
	ContactNumber   string `json:"contact_number"`
	ReservationTime string `json:"reservation_time"`
}

// queueEntryResponse is the admin-facing view of one waiting customer.
type queueEntryResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	PartySize       int    `json:"party_size"`
	ContactNumber   string `json:"contact_number"`
	ReservationTime string `json:"reservation_time"`
}

func toQueueEntryResponse(c model.Customer) queueEntryResponse {
	return queueEntryResponse{
		ID:              c.ID,
		Name:            c.Name,
		PartySize:       c.PartySize,
		ContactNumber:   c.ContactNumber,
		ReservationTime: c.ReservationTime.UTC().Format(time.RFC3339),
	}
}

// JoinQueue handles POST /api/queue.
func (h *Handler) JoinQueue(c *gin.Context) {
	var req joinQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customer, minutes, err := h.store.EnqueueCustomer(c.Request.Context(), store.EnqueueRequest{
		Name:            req.Name,
		PartySize:       req.PartySize,
		ContactNumber:   req.ContactNumber,
		ReservationTime: req.ReservationTime,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	if h.pool != nil {
		h.pool.Dispatch(notification.Arrival{
			CustomerID: customer.ID,
			Name:       customer.Name,
			PartySize:  customer.PartySize,
		})
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":             "You have been added to the waitlist.",
		"estimated_wait_time": minutes,
	})
}

// GetQueue handles GET /api/admin/queue.
func (h *Handler) GetQueue(c *gin.Context) {
	customers, err := h.store.ListQueue(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	response := make([]queueEntryResponse, 0, len(customers))
	for _, customer := range customers {
		response = append(response, toQueueEntryResponse(customer))
	}
	c.JSON(http.StatusOK, response)
}
