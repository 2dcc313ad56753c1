// README: Driver location update and snapshot models.
package location

import (
	"time"

	"gocab/internal/types"
)

type Update struct {
	DriverID types.ID
	Position types.Point
}

// Snapshot is an append-only history row; the live position lives on
// driver_profiles and in the GEO index.
type Snapshot struct {
	DriverID   types.ID
	Position   types.Point
	RecordedAt time.Time
}
