// README: AMQP-backed notification adapter; the exchange is the delivery boundary.
package notify

import (
	"context"
	"log/slog"

	"gocab/internal/modules/ride"
	"gocab/internal/mq"
	"gocab/internal/types"
)

// AMQPNotifier publishes offers and rider updates to the notify exchange.
// Delivery to the device (push, WebSocket) happens downstream; from here the
// contract is a single best-effort publish per call.
type AMQPNotifier struct {
	pub *mq.Publisher
	log *slog.Logger
}

func NewAMQPNotifier(pub *mq.Publisher, log *slog.Logger) *AMQPNotifier {
	return &AMQPNotifier{pub: pub, log: log}
}

func (n *AMQPNotifier) NotifyDriver(ctx context.Context, driverID types.ID, r *ride.Ride, distanceKm float64) error {
	return n.pub.PublishDriverOffer(ctx, mq.DriverOfferMessage{
		Type:        "ride_request",
		RideID:      r.ID,
		DriverID:    driverID,
		Pickup:      r.Pickup,
		PickupAddr:  r.PickupAddress,
		Dropoff:     r.Dropoff,
		DropoffAddr: r.DropoffAddress,
		Fare:        r.Fare,
		DistanceKm:  distanceKm,
		DurationMin: r.DurationMin,
	})
}

func (n *AMQPNotifier) NotifyRider(ctx context.Context, riderID types.ID, kind string, r *ride.Ride) error {
	payload := map[string]any{"status": r.Status}
	if r.DriverID != nil {
		payload["driver_id"] = *r.DriverID
	}
	if r.FinalFare != nil {
		payload["final_fare"] = *r.FinalFare
	}
	return n.pub.PublishRiderUpdate(ctx, mq.RiderUpdateMessage{
		Type:    kind,
		RideID:  r.ID,
		RiderID: riderID,
		Payload: payload,
	})
}
