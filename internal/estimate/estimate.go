package estimate

import "waitlist-backend/internal/model"

// Policy holds the tunable constants of the wait-time heuristic.
type Policy struct {
	TurnoverMinutes    int
	MinimumWaitMinutes int
}

// DefaultPolicy returns the policy used when no configuration is supplied.
func DefaultPolicy() Policy {
	return Policy{TurnoverMinutes: 15, MinimumWaitMinutes: 5}
}

// Wait estimates the wait in minutes for a party of partySize arriving
// behind the given queue. It is a heuristic, not a promise: if any vacant
// table can seat the party the estimate is zero; otherwise every seatable
// party ahead is charged one table turnover, floored at the policy minimum.
// It never fails, and with an empty table registry it degrades to the floor.
func Wait(tables []model.Table, ahead []model.Customer, partySize int, p Policy) int {
	if p.TurnoverMinutes <= 0 || p.MinimumWaitMinutes < 0 {
		p = DefaultPolicy()
	}

	maxCapacity := 0
	for _, t := range tables {
		if t.Capacity > maxCapacity {
			maxCapacity = t.Capacity
		}
		if t.Status == model.TableStatusVacant && t.Capacity >= partySize {
			return 0
		}
	}

	// Parties too large for every table will never turn over ahead of us.
	seatable := 0
	for _, c := range ahead {
		if c.PartySize <= maxCapacity {
			seatable++
		}
	}

	minutes := seatable * p.TurnoverMinutes
	if minutes < p.MinimumWaitMinutes {
		minutes = p.MinimumWaitMinutes
	}
	return minutes
}
