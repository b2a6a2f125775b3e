package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"waitlist-backend/internal/db"
	"waitlist-backend/internal/estimate"
	"waitlist-backend/internal/model"
)

// newTestStore opens a fresh in-memory database and returns a store over it.
func newTestStore(t *testing.T) Store {
	t.Helper()

	testDB, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(testDB))

	t.Cleanup(func() {
		sqlDB, err := testDB.DB()
		require.NoError(t, err)
		sqlDB.Close()
	})

	return NewGormStore(testDB, estimate.DefaultPolicy())
}

func enqueueNow(t *testing.T, s Store, name string, partySize int) model.Customer {
	t.Helper()
	customer, minutes, err := s.EnqueueCustomer(context.Background(), EnqueueRequest{
		Name:            name,
		PartySize:       partySize,
		ContactNumber:   "555-0100",
		ReservationTime: ReservationNow,
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, minutes, 0)
	return customer
}

func TestAddTable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddTable(ctx, 0, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	table, err := s.AddTable(ctx, 4, "window")
	require.NoError(t, err)
	assert.NotZero(t, table.ID)
	assert.Equal(t, model.TableStatusVacant, table.Status)
	assert.Nil(t, table.TimeSeated)

	tables, err := s.ListTables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "window", tables[0].Name)
}

func TestUpdateTable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	table, err := s.AddTable(ctx, 2, "")
	require.NoError(t, err)

	_, err = s.UpdateTable(ctx, table.ID+99, UpdateTableParams{})
	assert.ErrorIs(t, err, ErrNotFound)

	badCapacity := -1
	_, err = s.UpdateTable(ctx, table.ID, UpdateTableParams{Capacity: &badCapacity})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	badStatus := "reserved"
	_, err = s.UpdateTable(ctx, table.ID, UpdateTableParams{Status: &badStatus})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	name := "patio"
	capacity := 6
	updated, err := s.UpdateTable(ctx, table.ID, UpdateTableParams{Name: &name, Capacity: &capacity})
	require.NoError(t, err)
	assert.Equal(t, "patio", updated.Name)
	assert.Equal(t, 6, updated.Capacity)
	assert.Equal(t, model.TableStatusVacant, updated.Status)

	occupied, err := s.SetTableStatus(ctx, table.ID, model.TableStatusOccupied)
	require.NoError(t, err)
	require.NotNil(t, occupied.TimeSeated)
	assert.WithinDuration(t, time.Now(), *occupied.TimeSeated, 5*time.Second)

	vacated, err := s.SetTableStatus(ctx, table.ID, model.TableStatusVacant)
	require.NoError(t, err)
	assert.Nil(t, vacated.TimeSeated)
}

func TestRemoveTable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.RemoveTable(ctx, 42), ErrNotFound)

	vacant, err := s.AddTable(ctx, 2, "")
	require.NoError(t, err)
	occupied, err := s.AddTable(ctx, 4, "")
	require.NoError(t, err)
	_, err = s.SetTableStatus(ctx, occupied.ID, model.TableStatusOccupied)
	require.NoError(t, err)

	err = s.RemoveTable(ctx, occupied.ID)
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, s.RemoveTable(ctx, vacant.ID))

	tables, err := s.ListTables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 1, "the occupied table must survive the rejected delete")
	assert.Equal(t, occupied.ID, tables[0].ID)
}

func TestEnqueueCustomerValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	testCases := []struct {
		name string
		req  EnqueueRequest
	}{
		{"empty name", EnqueueRequest{Name: "  ", PartySize: 2, ContactNumber: "555", ReservationTime: "now"}},
		{"empty contact", EnqueueRequest{Name: "Asha", PartySize: 2, ContactNumber: "", ReservationTime: "now"}},
		{"non-positive party size", EnqueueRequest{Name: "Asha", PartySize: 0, ContactNumber: "555", ReservationTime: "now"}},
		{"missing reservation time", EnqueueRequest{Name: "Asha", PartySize: 2, ContactNumber: "555"}},
		{"malformed reservation time", EnqueueRequest{Name: "Asha", PartySize: 2, ContactNumber: "555", ReservationTime: "tomorrow"}},
		{"past reservation time", EnqueueRequest{Name: "Asha", PartySize: 2, ContactNumber: "555",
			ReservationTime: time.Now().Add(-time.Hour).Format(time.RFC3339)}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := s.EnqueueCustomer(ctx, tc.req)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}

	queue, err := s.ListQueue(ctx)
	require.NoError(t, err)
	assert.Empty(t, queue, "rejected intakes must not enqueue anyone")
}

func TestEnqueueCustomerOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	later := time.Now().Add(2 * time.Hour).UTC()
	reserved, _, err := s.EnqueueCustomer(ctx, EnqueueRequest{
		Name:            "Booked Ahead",
		PartySize:       2,
		ContactNumber:   "555-0101",
		ReservationTime: later.Format(time.RFC3339),
	})
	require.NoError(t, err)

	first := enqueueNow(t, s, "Walk-in One", 2)
	second := enqueueNow(t, s, "Walk-in Two", 3)

	queue, err := s.ListQueue(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 3)

	// Walk-ins are due now, so they come before the future reservation,
	// FIFO among themselves.
	assert.Equal(t, first.ID, queue[0].ID)
	assert.Equal(t, second.ID, queue[1].ID)
	assert.Equal(t, reserved.ID, queue[2].ID)
}

func TestEnqueueCustomerEstimate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// No tables at all: the estimator degrades to its floor.
	_, minutes, err := s.EnqueueCustomer(ctx, EnqueueRequest{
		Name: "First", PartySize: 2, ContactNumber: "555", ReservationTime: "now",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, minutes)

	// A vacant table that fits makes the next arrival immediate.
	_, err = s.AddTable(ctx, 4, "")
	require.NoError(t, err)
	_, minutes, err = s.EnqueueCustomer(ctx, EnqueueRequest{
		Name: "Second", PartySize: 3, ContactNumber: "555", ReservationTime: "now",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, minutes)
}

func TestAllocateCommit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tableA, err := s.AddTable(ctx, 2, "A")
	require.NoError(t, err)
	tableB, err := s.AddTable(ctx, 4, "B")
	require.NoError(t, err)

	customer, minutes, err := s.EnqueueCustomer(ctx, EnqueueRequest{
		Name: "Chandra", PartySize: 3, ContactNumber: "555-0102", ReservationTime: "now",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, minutes, "table B alone suffices")

	require.NoError(t, s.Allocate(ctx, customer.ID, []uint{tableB.ID}))

	tables, err := s.ListTables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, model.TableStatusVacant, tables[0].Status, "table A stays vacant")
	assert.Equal(t, model.TableStatusOccupied, tables[1].Status)
	require.NotNil(t, tables[1].TimeSeated)
	assert.WithinDuration(t, time.Now(), *tables[1].TimeSeated, 5*time.Second)

	queue, err := s.ListQueue(ctx)
	require.NoError(t, err)
	assert.Empty(t, queue)

	// The customer is gone, so repeating the allocation cannot no-op.
	err = s.Allocate(ctx, customer.ID, []uint{tableA.ID})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAllocateMultiTable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tableA, err := s.AddTable(ctx, 2, "A")
	require.NoError(t, err)
	tableB, err := s.AddTable(ctx, 4, "B")
	require.NoError(t, err)

	customer := enqueueNow(t, s, "Big Party", 5)

	err = s.Allocate(ctx, customer.ID, []uint{tableA.ID})
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	// The rejection must leave everything untouched.
	queue, err := s.ListQueue(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	tables, err := s.ListTables(ctx)
	require.NoError(t, err)
	for _, table := range tables {
		assert.Equal(t, model.TableStatusVacant, table.Status)
	}

	require.NoError(t, s.Allocate(ctx, customer.ID, []uint{tableA.ID, tableB.ID}))

	tables, err = s.ListTables(ctx)
	require.NoError(t, err)
	for _, table := range tables {
		assert.Equal(t, model.TableStatusOccupied, table.Status)
		assert.NotNil(t, table.TimeSeated)
	}
}

func TestAllocateRejections(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	table, err := s.AddTable(ctx, 4, "")
	require.NoError(t, err)
	customer := enqueueNow(t, s, "Waiting", 2)

	err = s.Allocate(ctx, customer.ID, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	err = s.Allocate(ctx, customer.ID+99, []uint{table.ID})
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Allocate(ctx, customer.ID, []uint{table.ID, table.ID + 99})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.SetTableStatus(ctx, table.ID, model.TableStatusOccupied)
	require.NoError(t, err)

	err = s.Allocate(ctx, customer.ID, []uint{table.ID})
	assert.ErrorIs(t, err, ErrConflict)

	// Nothing was committed along the way.
	queue, err := s.ListQueue(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, customer.ID, queue[0].ID)
}

func TestAllocateRace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	table, err := s.AddTable(ctx, 4, "")
	require.NoError(t, err)
	first := enqueueNow(t, s, "First", 2)
	second := enqueueNow(t, s, "Second", 2)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, customerID := range []uint{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id uint) {
			defer wg.Done()
			errs[i] = s.Allocate(ctx, id, []uint{table.ID})
		}(i, customerID)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrConflict)
		}
	}
	assert.Equal(t, 1, winners, "exactly one allocation may win the table")

	queue, err := s.ListQueue(ctx)
	require.NoError(t, err)
	assert.Len(t, queue, 1, "the losing customer keeps waiting")
}
