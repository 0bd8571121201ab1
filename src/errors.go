package main

import (
	"artbook/src/booking"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorMapping struct {
	target  error
	status  int
	remedy  string
	message string
}

var errorMappings = []errorMapping{
	{booking.ErrCapacityExhausted, http.StatusConflict, "waitlist", ""},
	{booking.ErrPaymentDeclined, http.StatusPaymentRequired, "", ""},
	{booking.ErrPaymentUnavailable, http.StatusServiceUnavailable, "retry", ""},
	{booking.ErrPaymentMethodRequired, http.StatusPreconditionRequired, "add_payment_method", ""},
	{booking.ErrLoginRequired, http.StatusUnauthorized, "", ""},
	{booking.ErrSubmitting, http.StatusConflict, "", ""},
	{booking.ErrInvalidStep, http.StatusConflict, "", ""},
	{booking.ErrWaitlistOnly, http.StatusConflict, "waitlist", ""},
	{booking.ErrSessionNotFound, http.StatusNotFound, "", ""},
	{booking.ErrNotOwner, http.StatusForbidden, "", ""},
	{booking.ErrSubjectNotFound, http.StatusUnprocessableEntity, "", "cannot complete booking"},
	{booking.ErrBookingFailed, http.StatusUnprocessableEntity, "", "cannot complete booking"},
	{booking.ErrNoSlots, http.StatusBadRequest, "choose_date", ""},
	{booking.ErrDateOutOfRange, http.StatusBadRequest, "choose_date", ""},
	{booking.ErrInvalidSlot, http.StatusBadRequest, "choose_slot", ""},
	{booking.ErrEmptyComposition, http.StatusBadRequest, "", ""},
	{booking.ErrUnknownTicketClass, http.StatusBadRequest, "", ""},
}

// respondError writes the status and body for a booking error. When the
// session snapshot is known it is returned too, so clients can redraw.
func respondError(ctx *gin.Context, err error, session any) {
	body := gin.H{"error": err.Error()}
	if session != nil {
		body["session"] = session
	}
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		if m.remedy != "" {
			body["remedy"] = m.remedy
		}
		if m.message != "" {
			body["error"] = m.message
		}
		ctx.AbortWithStatusJSON(m.status, body)
		return
	}
	zap.S().Errorf("[api] %s %s: %s", ctx.Request.Method, ctx.FullPath(), err.Error())
	body["error"] = "internal error"
	ctx.AbortWithStatusJSON(http.StatusInternalServerError, body)
}

func badRequest(ctx *gin.Context, err error) {
	ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
