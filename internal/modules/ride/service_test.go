// README: Unit tests for ride state transitions, the PIN gate, and idempotency rules.
package ride

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"gocab/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(drivers ...types.ID) (*Service, *memStore) {
	store := newMemStore()
	dir := fakeDirectory{}
	for _, d := range drivers {
		dir[d] = struct{}{}
	}
	svc := NewService(store, nil, nil, dir, testLogger())
	return svc, store
}

func pendingRide(id, rider types.ID) Ride {
	return Ride{
		ID:          id,
		RiderID:     rider,
		Pickup:      types.Point{Lat: 17.0, Lng: 78.0},
		Dropoff:     types.Point{Lat: 17.1, Lng: 78.1},
		VehicleType: "auto",
		Fare:        types.Money{Amount: 12000, Currency: "INR"},
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestAccept_AssignsDriver(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService("d1")
	store.seed(pendingRide("r1", "u1"))

	r, err := svc.Accept(ctx, "r1", "d1")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if r.Status != StatusAccepted {
		t.Errorf("status = %s, want accepted", r.Status)
	}
	if r.DriverID == nil || *r.DriverID != "d1" {
		t.Errorf("driver_id = %v, want d1", r.DriverID)
	}
}

func TestAccept_UnknownDriver(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService("d1")
	store.seed(pendingRide("r1", "u1"))

	if _, err := svc.Accept(ctx, "r1", "ghost"); err != ErrDriverNotFound {
		t.Fatalf("err = %v, want ErrDriverNotFound", err)
	}
}

func TestAccept_AlreadyResolved(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService("d1", "d2")
	store.seed(pendingRide("r1", "u1"))

	if _, err := svc.Accept(ctx, "r1", "d1"); err != nil {
		t.Fatalf("first accept: %v", err)
	}
	if _, err := svc.Accept(ctx, "r1", "d2"); err != ErrConflict {
		t.Fatalf("second accept err = %v, want ErrConflict", err)
	}
	r, _ := store.Get(ctx, "r1")
	if *r.DriverID != "d1" {
		t.Errorf("driver_id = %s, want the first accepter", *r.DriverID)
	}
}

func TestStart_TrimsPin(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService("d1")
	store.seed(pendingRide("r1", "u1"))
	store.pins["u1"] = "4821"
	if _, err := svc.Accept(ctx, "r1", "d1"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	r, err := svc.Start(ctx, "r1", "d1", " 4821")
	if err != nil {
		t.Fatalf("start with padded pin: %v", err)
	}
	if r.Status != StatusInProgress {
		t.Errorf("status = %s, want in_progress", r.Status)
	}
	if r.StartedAt == nil {
		t.Error("started_at not set")
	}
}

func TestStart_PinMismatch(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService("d1")
	store.seed(pendingRide("r1", "u1"))
	store.pins["u1"] = "4821"
	if _, err := svc.Accept(ctx, "r1", "d1"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if _, err := svc.Start(ctx, "r1", "d1", "0000"); err != ErrPinMismatch {
		t.Fatalf("err = %v, want ErrPinMismatch", err)
	}
	r, _ := store.Get(ctx, "r1")
	if r.Status != StatusAccepted {
		t.Errorf("status = %s, want accepted after failed pin", r.Status)
	}
	if r.StartedAt != nil {
		t.Error("started_at set despite pin mismatch")
	}
}

func TestStart_NoPinConfigured(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService("d1")
	store.seed(pendingRide("r1", "u1"))
	if _, err := svc.Accept(ctx, "r1", "d1"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if _, err := svc.Start(ctx, "r1", "d1", "anything"); err != nil {
		t.Fatalf("start without configured pin: %v", err)
	}
}

func TestStart_NotAssignedDriver(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService("d1", "d2")
	store.seed(pendingRide("r1", "u1"))
	if _, err := svc.Accept(ctx, "r1", "d1"); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if _, err := svc.Start(ctx, "r1", "d2", ""); err != ErrConflict {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestComplete_FinalizesFare(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService("d1")
	store.seed(pendingRide("r1", "u1"))
	if _, err := svc.Accept(ctx, "r1", "d1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Start(ctx, "r1", "d1", ""); err != nil {
		t.Fatal(err)
	}

	r, err := svc.Complete(ctx, "r1", "d1")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if r.Status != StatusCompleted {
		t.Errorf("status = %s, want completed", r.Status)
	}
	if r.FinalFare == nil || r.FinalFare.Amount != r.Fare.Amount {
		t.Errorf("final fare = %v, want fallback to estimate %d", r.FinalFare, r.Fare.Amount)
	}
	if store.completions["d1"] != 1 {
		t.Errorf("driver completions = %d, want 1", store.completions["d1"])
	}
}

func TestCompleted_IsTerminal(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService("d1")
	store.seed(pendingRide("r1", "u1"))
	if _, err := svc.Accept(ctx, "r1", "d1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Start(ctx, "r1", "d1", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Complete(ctx, "r1", "d1"); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Start(ctx, "r1", "d1", ""); err != ErrConflict {
		t.Errorf("start on completed ride err = %v, want ErrConflict", err)
	}
	if _, err := svc.Complete(ctx, "r1", "d1"); err != ErrConflict {
		t.Errorf("repeat complete err = %v, want ErrConflict", err)
	}
	if store.completions["d1"] != 1 {
		t.Errorf("driver completions = %d after repeat complete, want 1", store.completions["d1"])
	}
}

func TestCancel_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()
	store.seed(pendingRide("r1", "u1"))

	r, err := svc.Cancel(ctx, "r1")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if r.Status != StatusCancelled {
		t.Fatalf("status = %s, want cancelled", r.Status)
	}

	r, err = svc.Cancel(ctx, "r1")
	if err != nil {
		t.Fatalf("repeat cancel: %v", err)
	}
	if r.Status != StatusCancelled {
		t.Errorf("status = %s after repeat cancel", r.Status)
	}
}

func TestCancel_CompletedRideConflicts(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService("d1")
	store.seed(pendingRide("r1", "u1"))
	if _, err := svc.Accept(ctx, "r1", "d1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Start(ctx, "r1", "d1", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Complete(ctx, "r1", "d1"); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Cancel(ctx, "r1"); err != ErrConflict {
		t.Fatalf("cancel on completed err = %v, want ErrConflict", err)
	}
}
