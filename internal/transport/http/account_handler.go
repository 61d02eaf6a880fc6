package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"matha-service/internal/app"
)

type sendOTPRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
}

func (a *API) sendOTP(c *gin.Context) {
	var req sendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "phoneNumber is required")
		return
	}
	ok, err := a.Auth.SendOTP(c.Request.Context(), req.PhoneNumber)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": ok})
}

func (a *API) verifyOTP(c *gin.Context) {
	var req app.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	user, err := a.Auth.VerifyOTP(c.Request.Context(), req)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (a *API) getUser(c *gin.Context) {
	user, err := a.Users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (a *API) updateProfile(c *gin.Context) {
	var update app.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	user, err := a.Users.UpdateProfile(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (a *API) createBooking(c *gin.Context) {
	var req app.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	booking, err := a.Bookings.Create(c.Request.Context(), req)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}

func (a *API) userBookings(c *gin.Context) {
	bookings, err := a.Bookings.UserBookings(c.Request.Context(), c.Param("userId"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}
