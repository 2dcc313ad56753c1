// README: Ride endpoints; driver-side transitions go through the dispatch coordinator.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gocab/internal/http/middleware"
	"gocab/internal/modules/dispatch"
	"gocab/internal/modules/ride"
	"gocab/internal/mq"
	"gocab/internal/types"
)

type RideHandler struct {
	rides       *ride.Service
	coordinator *dispatch.Coordinator
	bus         *mq.Publisher
}

func NewRideHandler(rides *ride.Service, coordinator *dispatch.Coordinator, bus *mq.Publisher) *RideHandler {
	return &RideHandler{rides: rides, coordinator: coordinator, bus: bus}
}

type createRideRequest struct {
	Pickup         types.Point `json:"pickup" binding:"required"`
	PickupAddress  string      `json:"pickup_address"`
	Dropoff        types.Point `json:"dropoff" binding:"required"`
	DropoffAddress string      `json:"dropoff_address"`
	VehicleType    string      `json:"vehicle_type" binding:"required"`
}

func (h *RideHandler) Create(c *gin.Context) {
	var req createRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	r, err := h.rides.Create(c.Request.Context(), ride.CreateCommand{
		RiderID:        types.ID(middleware.CallerID(c)),
		Pickup:         req.Pickup,
		PickupAddress:  req.PickupAddress,
		Dropoff:        req.Dropoff,
		DropoffAddress: req.DropoffAddress,
		VehicleType:    req.VehicleType,
	})
	if err != nil {
		writeRideError(c, err)
		return
	}
	// Best-effort: a lost event only delays dispatch until the timeout sweep.
	_ = h.bus.PublishRideCreated(c.Request.Context(), mq.RideCreatedMessage{RideID: r.ID})
	c.JSON(http.StatusCreated, r)
}

func (h *RideHandler) Get(c *gin.Context) {
	r, err := h.rides.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeRideError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RideHandler) ListPending(c *gin.Context) {
	rides, err := h.rides.ListPending(c.Request.Context())
	if err != nil {
		writeRideError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rides": rides})
}

func (h *RideHandler) Current(c *gin.Context) {
	r, err := h.rides.CurrentForDriver(c.Request.Context(), types.ID(middleware.CallerID(c)))
	if err != nil {
		writeRideError(c, err)
		return
	}
	if r == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RideHandler) History(c *gin.Context) {
	rides, err := h.rides.HistoryForDriver(c.Request.Context(), types.ID(middleware.CallerID(c)))
	if err != nil {
		writeRideError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rides": rides})
}

func (h *RideHandler) Accept(c *gin.Context) {
	r, err := h.coordinator.Accept(c.Request.Context(),
		types.ID(c.Param("id")), types.ID(middleware.CallerID(c)))
	if err != nil {
		writeRideError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RideHandler) Decline(c *gin.Context) {
	err := h.coordinator.Decline(c.Request.Context(),
		types.ID(c.Param("id")), types.ID(middleware.CallerID(c)))
	if err != nil {
		writeRideError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ride declined. Notifying next driver."})
}

type startRideRequest struct {
	Pin string `json:"pin"`
}

func (h *RideHandler) Start(c *gin.Context) {
	var req startRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	r, err := h.coordinator.Start(c.Request.Context(),
		types.ID(c.Param("id")), types.ID(middleware.CallerID(c)), req.Pin)
	if err != nil {
		writeRideError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RideHandler) Complete(c *gin.Context) {
	r, err := h.coordinator.Complete(c.Request.Context(),
		types.ID(c.Param("id")), types.ID(middleware.CallerID(c)))
	if err != nil {
		writeRideError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *RideHandler) Cancel(c *gin.Context) {
	r, err := h.coordinator.Cancel(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeRideError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
