// README: Driver-side location and availability endpoints.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gocab/internal/http/middleware"
	"gocab/internal/modules/location"
	"gocab/internal/types"
)

type DriverHandler struct {
	location *location.Service
}

func NewDriverHandler(locationSvc *location.Service) *DriverHandler {
	return &DriverHandler{location: locationSvc}
}

type locationUpdateRequest struct {
	Lat float64 `json:"lat" binding:"required"`
	Lng float64 `json:"lng" binding:"required"`
}

func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	var req locationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	err := h.location.Update(c.Request.Context(), location.Update{
		DriverID: types.ID(middleware.CallerID(c)),
		Position: types.Point{Lat: req.Lat, Lng: req.Lng},
	})
	if err != nil {
		h.writeLocationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type availabilityRequest struct {
	Online *bool `json:"online" binding:"required"`
}

func (h *DriverHandler) SetAvailability(c *gin.Context) {
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	err := h.location.SetAvailability(c.Request.Context(),
		types.ID(middleware.CallerID(c)), *req.Online)
	if err != nil {
		h.writeLocationError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *DriverHandler) writeLocationError(c *gin.Context, err error) {
	if errors.Is(err, location.ErrDriverNotFound) {
		writeError(c, http.StatusNotFound, err.Error())
		return
	}
	writeError(c, http.StatusInternalServerError, "internal error")
}
