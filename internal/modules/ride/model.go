// README: Ride aggregate and status definitions.
package ride

import (
	"time"

	"gocab/internal/types"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusAccepted   Status = "accepted"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether no further transition can leave the status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Ride struct {
	ID             types.ID     `json:"id"`
	RiderID        types.ID     `json:"rider_id"`
	DriverID       *types.ID    `json:"driver_id,omitempty"`
	Pickup         types.Point  `json:"pickup"`
	PickupAddress  string       `json:"pickup_address"`
	Dropoff        types.Point  `json:"dropoff"`
	DropoffAddress string       `json:"dropoff_address"`
	VehicleType    string       `json:"vehicle_type"`
	DistanceKm     float64      `json:"estimated_distance_km"`
	DurationMin    int          `json:"estimated_duration_min"`
	Fare           types.Money  `json:"fare"`
	FinalFare      *types.Money `json:"final_fare,omitempty"`
	Status         Status       `json:"status"`
	PinVerifiedAt  *time.Time   `json:"rider_pin_verified_at,omitempty"`
	StartedAt      *time.Time   `json:"started_at,omitempty"`
	CompletedAt    *time.Time   `json:"completed_at,omitempty"`
	CancelledAt    *time.Time   `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// AllowedTransitions represents the ride state flow as code. pending is the
// initial state; completed and cancelled are terminal.
var AllowedTransitions = map[Status][]Status{
	StatusPending:    {StatusAccepted, StatusCancelled},
	StatusAccepted:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}
