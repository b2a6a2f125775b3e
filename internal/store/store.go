package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"waitlist-backend/internal/estimate"
	"waitlist-backend/internal/model"
)

// Store defines the engine's operations over the waitlist and the table
// registry.
type Store interface {
	DB() *gorm.DB

	AddTable(ctx context.Context, capacity int, name string) (model.Table, error)
	UpdateTable(ctx context.Context, id uint, params UpdateTableParams) (model.Table, error)
	SetTableStatus(ctx context.Context, id uint, status string) (model.Table, error)
	RemoveTable(ctx context.Context, id uint) error
	ListTables(ctx context.Context) ([]model.Table, error)

	EnqueueCustomer(ctx context.Context, req EnqueueRequest) (model.Customer, int, error)
	ListQueue(ctx context.Context) ([]model.Customer, error)

	Allocate(ctx context.Context, customerID uint, tableIDs []uint) error
}

// UpdateTableParams carries the optional fields of a table update. Nil
// fields are left untouched.
type UpdateTableParams struct {
	Name     *string
	Capacity *int
	Status   *string
}

// EnqueueRequest carries a customer intake request. ReservationTime is
// either the literal "now" or an RFC3339 timestamp.
type EnqueueRequest struct {
	Name            string
	PartySize       int
	ContactNumber   string
	ReservationTime string
}

// gormStore implements Store on top of GORM. A single mutex serializes
// every mutating operation so that validation and commit of an allocation
// form one critical section; the commit itself additionally runs in a
// database transaction so readers outside the mutex only ever observe
// fully applied state.
type gormStore struct {
	db     *gorm.DB
	mu     sync.Mutex
	policy estimate.Policy
}

// NewGormStore creates a new GORM-backed store with the given estimation
// policy.
func NewGormStore(db *gorm.DB, policy estimate.Policy) Store {
	return &gormStore{db: db, policy: policy}
}

// DB exposes the underlying connection for collaborators that manage their
// own entities (push subscriptions, notification workers).
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// AddTable registers a new table. It starts out vacant.
func (s *gormStore) AddTable(ctx context.Context, capacity int, name string) (model.Table, error) {
	if capacity <= 0 {
		return model.Table{}, fmt.Errorf("capacity must be a positive integer: %w", ErrInvalidArgument)
	}

	table := model.Table{
		Name:     name,
		Capacity: capacity,
		Status:   model.TableStatusVacant,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.WithContext(ctx).Create(&table).Error; err != nil {
		return model.Table{}, fmt.Errorf("failed to create table: %w", err)
	}
	return table, nil
}

// UpdateTable applies the given fields to a table. A status change to
// occupied stamps TimeSeated; a change back to vacant clears it.
func (s *gormStore) UpdateTable(ctx context.Context, id uint, params UpdateTableParams) (model.Table, error) {
	if params.Capacity != nil && *params.Capacity <= 0 {
		return model.Table{}, fmt.Errorf("capacity must be a positive integer: %w", ErrInvalidArgument)
	}
	if params.Status != nil && *params.Status != model.TableStatusVacant && *params.Status != model.TableStatusOccupied {
		return model.Table{}, fmt.Errorf("status must be %q or %q: %w",
			model.TableStatusVacant, model.TableStatusOccupied, ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var table model.Table
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&table, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("table %d does not exist: %w", id, ErrNotFound)
			}
			return err
		}

		if params.Name != nil {
			table.Name = *params.Name
		}
		if params.Capacity != nil {
			table.Capacity = *params.Capacity
		}
		if params.Status != nil && *params.Status != table.Status {
			table.Status = *params.Status
			if table.Status == model.TableStatusOccupied {
				now := time.Now().UTC()
				table.TimeSeated = &now
			} else {
				table.TimeSeated = nil
			}
		}

		return tx.Save(&table).Error
	})
	if err != nil {
		return model.Table{}, err
	}
	return table, nil
}

// SetTableStatus transitions a table between vacant and occupied. This is
// also the vacate action at the end of a sitting.
func (s *gormStore) SetTableStatus(ctx context.Context, id uint, status string) (model.Table, error) {
	return s.UpdateTable(ctx, id, UpdateTableParams{Status: &status})
}

// RemoveTable deletes a table. Occupied tables must be vacated first.
func (s *gormStore) RemoveTable(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var table model.Table
		if err := tx.First(&table, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("table %d does not exist: %w", id, ErrNotFound)
			}
			return err
		}

		if table.Status == model.TableStatusOccupied {
			return fmt.Errorf("table %d is occupied and must be vacated first: %w", id, ErrConflict)
		}

		return tx.Delete(&table).Error
	})
}

// ListTables returns every table in stable id order.
func (s *gormStore) ListTables(ctx context.Context) ([]model.Table, error) {
	var tables []model.Table
	if err := s.db.WithContext(ctx).Order("id").Find(&tables).Error; err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}
