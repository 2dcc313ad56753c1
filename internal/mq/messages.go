// README: Wire messages exchanged over RabbitMQ.
package mq

import "gocab/internal/types"

const (
	RideExchange   = "ride_topic"
	NotifyExchange = "notify_topic"

	RideCreatedKey = "ride.created"
)

// RideCreatedMessage kicks off the first dispatch cycle for a new ride.
type RideCreatedMessage struct {
	RideID types.ID `json:"ride_id"`
}

// DriverOfferMessage is the structured offer payload delivered toward a
// driver's device; the transport past the exchange is out of scope here.
type DriverOfferMessage struct {
	Type        string      `json:"type"`
	RideID      types.ID    `json:"ride_id"`
	DriverID    types.ID    `json:"driver_id"`
	Pickup      types.Point `json:"pickup"`
	PickupAddr  string      `json:"pickup_address"`
	Dropoff     types.Point `json:"dropoff"`
	DropoffAddr string      `json:"dropoff_address"`
	Fare        types.Money `json:"fare"`
	DistanceKm  float64     `json:"distance_km"`
	DurationMin int         `json:"duration_min"`
}

// RiderUpdateMessage tells a rider about a status change on their ride.
type RiderUpdateMessage struct {
	Type    string         `json:"type"`
	RideID  types.ID       `json:"ride_id"`
	RiderID types.ID       `json:"rider_id"`
	Payload map[string]any `json:"payload,omitempty"`
}
