// Package session owns the page-session state: a read-mostly cache of the
// remote trip collection plus the mutation flow around it. The backend is
// authoritative; the cache is only ever replaced wholesale after a
// confirmed round-trip, never patched in place, so consistency is simply
// "last full refresh wins".
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/lmoreno/corsa-logbook/internal/domain"
)

// TripStore defines the remote persistence operations the manager depends
// on. Defining the interface here, in the consumer package, lets tests
// inject a double without touching the rpc layer. *rpc.Client satisfies it.
type TripStore interface {
	ListTrips(ctx context.Context) ([]domain.Trip, error)
	CreateTrip(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	UpdateTrip(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	DeleteTrip(ctx context.Context, id uuid.UUID) error
}

// Manager holds the cached trip set and serializes mutations.
//
// Mutations are guarded by a single-slot in-flight flag: while one
// create/update/delete round-trip is pending, further mutations fail fast
// with domain.ErrBusy instead of queueing. Reads are never blocked by an
// in-flight mutation; they see the last fully refreshed cache.
type Manager struct {
	store TripStore

	mu    sync.Mutex
	trips []domain.Trip

	busyMu sync.Mutex
	busy   bool
}

// NewManager constructs a Manager with an empty cache.
// Call Refresh before the first read.
func NewManager(store TripStore) *Manager {
	return &Manager{store: store}
}

// Refresh replaces the whole cache with the backend's current collection.
// On error the previous cache is left untouched.
func (m *Manager) Refresh(ctx context.Context) error {
	trips, err := m.store.ListTrips(ctx)
	if err != nil {
		return fmt.Errorf("session.Manager.Refresh: %w", err)
	}
	m.mu.Lock()
	m.trips = trips
	m.mu.Unlock()
	return nil
}

// Create validates and persists a new trip, then refreshes the cache.
// Validation failures return before any remote call is made.
func (m *Manager) Create(ctx context.Context, trip domain.Trip) error {
	if err := trip.Validate(); err != nil {
		return err
	}
	release, err := m.acquire()
	if err != nil {
		return err
	}
	defer release()

	if _, err := m.store.CreateTrip(ctx, trip); err != nil {
		return fmt.Errorf("session.Manager.Create: %w", err)
	}
	return m.Refresh(ctx)
}

// Update validates and persists changes to an existing trip, then refreshes
// the cache. The trip's kind is immutable: an update whose kind differs from
// the cached record fails validation before any remote call.
func (m *Manager) Update(ctx context.Context, trip domain.Trip) error {
	existing, err := m.Get(trip.ID)
	if err != nil {
		return err
	}
	if trip.Kind != existing.Kind {
		return fmt.Errorf("%w: trip kind cannot be changed", domain.ErrValidation)
	}
	if err := trip.Validate(); err != nil {
		return err
	}
	release, err := m.acquire()
	if err != nil {
		return err
	}
	defer release()

	if _, err := m.store.UpdateTrip(ctx, trip); err != nil {
		return fmt.Errorf("session.Manager.Update: %w", err)
	}
	return m.Refresh(ctx)
}

// Delete removes a trip by ID, then refreshes the cache. The explicit user
// confirmation required before deletion lives in the page markup; by the
// time Delete runs the confirmation has already happened.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	release, err := m.acquire()
	if err != nil {
		return err
	}
	defer release()

	if err := m.store.DeleteTrip(ctx, id); err != nil {
		return fmt.Errorf("session.Manager.Delete: %w", err)
	}
	return m.Refresh(ctx)
}

// Get returns the cached trip with the given ID.
// Returns domain.ErrNotFound when the cache holds no such trip.
func (m *Manager) Get(id uuid.UUID) (domain.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.trips {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Trip{}, fmt.Errorf("session.Manager.Get: %w", domain.ErrNotFound)
}

// Trips returns a copy of the full cached trip set.
func (m *Manager) Trips() []domain.Trip {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Trip, len(m.trips))
	copy(out, m.trips)
	return out
}

// Filtered returns the cached trips matching the filter.
func (m *Manager) Filtered(f domain.Filter) []domain.Trip {
	return f.Apply(m.Trips())
}

// StatsFor aggregates the cached trips matching the filter.
func (m *Manager) StatsFor(f domain.Filter) domain.Stats {
	return domain.Aggregate(m.Filtered(f))
}

// acquire takes the single mutation slot or fails with domain.ErrBusy.
// The returned release function must be called exactly once.
func (m *Manager) acquire() (func(), error) {
	m.busyMu.Lock()
	defer m.busyMu.Unlock()
	if m.busy {
		return nil, domain.ErrBusy
	}
	m.busy = true
	return func() {
		m.busyMu.Lock()
		m.busy = false
		m.busyMu.Unlock()
	}, nil
}
