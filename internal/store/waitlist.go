package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"waitlist-backend/internal/estimate"
	"waitlist-backend/internal/model"
)

// ReservationNow is the literal a client sends to be queued for immediate
// seating.
const ReservationNow = "now"

// EnqueueCustomer validates an intake request, inserts the customer and
// computes the wait-time estimate in the same critical section. The queue
// position is determined by reservation time, ties broken by insertion
// order.
func (s *gormStore) EnqueueCustomer(ctx context.Context, req EnqueueRequest) (model.Customer, int, error) {
	name := strings.TrimSpace(req.Name)
	contact := strings.TrimSpace(req.ContactNumber)
	if name == "" {
		return model.Customer{}, 0, fmt.Errorf("name is required: %w", ErrInvalidArgument)
	}
	if contact == "" {
		return model.Customer{}, 0, fmt.Errorf("contact number is required: %w", ErrInvalidArgument)
	}
	if req.PartySize <= 0 {
		return model.Customer{}, 0, fmt.Errorf("party size must be a positive integer: %w", ErrInvalidArgument)
	}

	now := time.Now().UTC()
	reservationTime, err := parseReservationTime(req.ReservationTime, now)
	if err != nil {
		return model.Customer{}, 0, err
	}

	customer := model.Customer{
		Name:            name,
		PartySize:       req.PartySize,
		ContactNumber:   contact,
		ReservationTime: reservationTime,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var minutes int
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&customer).Error; err != nil {
			return fmt.Errorf("failed to enqueue customer: %w", err)
		}

		var tables []model.Table
		if err := tx.Find(&tables).Error; err != nil {
			return fmt.Errorf("failed to load tables: %w", err)
		}

		var ahead []model.Customer
		if err := tx.
			Where("reservation_time < ? OR (reservation_time = ? AND id < ?)",
				customer.ReservationTime, customer.ReservationTime, customer.ID).
			Find(&ahead).Error; err != nil {
			return fmt.Errorf("failed to load queue: %w", err)
		}

		minutes = estimate.Wait(tables, ahead, customer.PartySize, s.policy)
		return nil
	})
	if err != nil {
		return model.Customer{}, 0, err
	}
	return customer, minutes, nil
}

// ListQueue returns waiting customers earliest-due-first.
func (s *gormStore) ListQueue(ctx context.Context) ([]model.Customer, error) {
	var customers []model.Customer
	if err := s.db.WithContext(ctx).Order("reservation_time, id").Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	return customers, nil
}

func parseReservationTime(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("reservation time is required: %w", ErrInvalidArgument)
	}
	if raw == ReservationNow {
		return now, nil
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("reservation time must be %q or an RFC3339 timestamp: %w",
			ReservationNow, ErrInvalidArgument)
	}
	if t.Before(now) {
		return time.Time{}, fmt.Errorf("reservation time must not be in the past: %w", ErrInvalidArgument)
	}
	return t.UTC(), nil
}
