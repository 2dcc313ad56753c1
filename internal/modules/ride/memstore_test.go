// README: In-memory Store fake shared by the service and race tests.
package ride

import (
	"context"
	"sync"
	"time"

	"gocab/internal/types"
)

type memStore struct {
	mu          sync.Mutex
	rides       map[types.ID]*Ride
	pins        map[types.ID]string
	completions map[types.ID]int
}

func newMemStore() *memStore {
	return &memStore{
		rides:       make(map[types.ID]*Ride),
		pins:        make(map[types.ID]string),
		completions: make(map[types.ID]int),
	}
}

func (m *memStore) seed(r Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := r
	m.rides[r.ID] = &cp
}

func (m *memStore) Create(_ context.Context, r *Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.rides[r.ID] = &cp
	return nil
}

func (m *memStore) Get(_ context.Context, id types.ID) (*Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) AcceptPending(_ context.Context, rideID, driverID types.ID, at time.Time) (*Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[rideID]
	if !ok {
		return nil, ErrNotFound
	}
	if r.Status != StatusPending {
		return nil, ErrConflict
	}
	d := driverID
	r.DriverID = &d
	r.Status = StatusAccepted
	cp := *r
	return &cp, nil
}

func (m *memStore) StartRide(_ context.Context, rideID types.ID, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[rideID]
	if !ok || r.Status != StatusAccepted {
		return false, nil
	}
	r.Status = StatusInProgress
	t := at
	r.StartedAt = &t
	r.PinVerifiedAt = &t
	return true, nil
}

func (m *memStore) CompleteRide(_ context.Context, rideID, driverID types.ID, at time.Time) (*Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[rideID]
	if !ok {
		return nil, ErrNotFound
	}
	if r.Status != StatusInProgress || r.DriverID == nil || *r.DriverID != driverID {
		return nil, ErrConflict
	}
	r.Status = StatusCompleted
	t := at
	r.CompletedAt = &t
	if r.FinalFare == nil {
		fare := r.Fare
		r.FinalFare = &fare
	}
	m.completions[driverID]++
	cp := *r
	return &cp, nil
}

func (m *memStore) CancelRide(_ context.Context, rideID types.ID, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[rideID]
	if !ok || r.Status.Terminal() {
		return false, nil
	}
	r.Status = StatusCancelled
	t := at
	r.CancelledAt = &t
	return true, nil
}

func (m *memStore) ListPending(_ context.Context) ([]Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Ride
	for _, r := range m.rides {
		if r.Status == StatusPending {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memStore) ActiveByDriver(_ context.Context, driverID types.ID) (*Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rides {
		if r.DriverID != nil && *r.DriverID == driverID &&
			(r.Status == StatusAccepted || r.Status == StatusInProgress) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) HistoryByDriver(_ context.Context, driverID types.ID) ([]Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Ride
	for _, r := range m.rides {
		if r.DriverID != nil && *r.DriverID == driverID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memStore) ActiveDriverIDs(_ context.Context) (map[types.ID]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make(map[types.ID]struct{})
	for _, r := range m.rides {
		if r.DriverID == nil {
			continue
		}
		switch r.Status {
		case StatusPending, StatusAccepted, StatusInProgress:
			ids[*r.DriverID] = struct{}{}
		}
	}
	return ids, nil
}

func (m *memStore) RiderPin(_ context.Context, riderID types.ID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pins[riderID], nil
}

// fakeDirectory answers driver existence from a fixed set.
type fakeDirectory map[types.ID]struct{}

func (f fakeDirectory) Exists(_ context.Context, id types.ID) (bool, error) {
	_, ok := f[id]
	return ok, nil
}
