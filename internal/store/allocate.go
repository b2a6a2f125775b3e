package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"waitlist-backend/internal/model"
)

// Allocate binds one or more vacant tables to a waiting customer. It either
// commits fully (every table occupied, customer removed from the waitlist)
// or rejects without touching any state. Two allocations racing for the
// same table have exactly one winner; the loser gets a conflict.
func (s *gormStore) Allocate(ctx context.Context, customerID uint, tableIDs []uint) error {
	if len(tableIDs) == 0 {
		return fmt.Errorf("at least one table must be selected: %w", ErrInvalidArgument)
	}
	tableIDs = dedupe(tableIDs)

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer model.Customer
		if err := tx.First(&customer, customerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("customer %d is not on the waitlist: %w", customerID, ErrNotFound)
			}
			return err
		}

		var tables []model.Table
		if err := tx.Find(&tables, tableIDs).Error; err != nil {
			return fmt.Errorf("failed to load tables: %w", err)
		}
		byID := make(map[uint]model.Table, len(tables))
		for _, t := range tables {
			byID[t.ID] = t
		}

		// Validate in request order so the reported failure names the
		// first offending table.
		totalCapacity := 0
		for _, id := range tableIDs {
			table, ok := byID[id]
			if !ok {
				return fmt.Errorf("table %d does not exist: %w", id, ErrNotFound)
			}
			if table.Status != model.TableStatusVacant {
				return fmt.Errorf("table %d is already occupied: %w", id, ErrConflict)
			}
			totalCapacity += table.Capacity
		}

		if totalCapacity < customer.PartySize {
			return fmt.Errorf("selected tables seat %d but the party size is %d: %w",
				totalCapacity, customer.PartySize, ErrCapacityExceeded)
		}

		now := time.Now().UTC()
		for _, id := range tableIDs {
			table := byID[id]
			table.Status = model.TableStatusOccupied
			table.TimeSeated = &now
			if err := tx.Save(&table).Error; err != nil {
				return fmt.Errorf("failed to occupy table %d: %w", id, err)
			}
		}

		if err := tx.Delete(&customer).Error; err != nil {
			return fmt.Errorf("failed to remove customer %d from the waitlist: %w", customerID, err)
		}
		return nil
	})
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
