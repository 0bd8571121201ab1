package main

import (
	"artbook/src/booking"
	"artbook/src/boot"
	"artbook/src/middlewares"
	"artbook/src/types"
	"net/http"

	"github.com/gin-gonic/gin"
)

// reply writes the session view, or the mapped error along with the view.
func reply(ctx *gin.Context, status int, v booking.View, err error) {
	if err != nil {
		if v.ID == "" {
			respondError(ctx, err, nil)
			return
		}
		respondError(ctx, err, v)
		return
	}
	ctx.JSON(status, v)
}

func sessionHandlers(g *gin.RouterGroup, app *boot.App) *gin.RouterGroup {
	c := app.Controller
	g.
		POST("/sessions", func(ctx *gin.Context) {
			var body types.BeginSessionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				badRequest(ctx, err)
				return
			}
			v, err := c.Begin(ctx.Request.Context(), middlewares.CurrentUserID(ctx), body.SubjectID)
			reply(ctx, http.StatusCreated, v, err)
		}).
		GET("/sessions/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, err)
				return
			}
			v, err := c.Session(middlewares.CurrentUserID(ctx), params.ID)
			reply(ctx, http.StatusOK, v, err)
		}).
		PUT("/sessions/:id/date", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, err)
				return
			}
			var body types.ChooseDateRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				badRequest(ctx, err)
				return
			}
			date, err := c.SlotPolicy().ParseDate(body.Date)
			if err != nil {
				badRequest(ctx, err)
				return
			}
			v, err := c.ChooseDate(ctx.Request.Context(), middlewares.CurrentUserID(ctx), params.ID, date)
			reply(ctx, http.StatusOK, v, err)
		}).
		PUT("/sessions/:id/slot", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, err)
				return
			}
			var body types.ChooseSlotRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				badRequest(ctx, err)
				return
			}
			v, err := c.ChooseSlot(ctx.Request.Context(), middlewares.CurrentUserID(ctx), params.ID, body.Slot)
			reply(ctx, http.StatusOK, v, err)
		}).
		PUT("/sessions/:id/tickets", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, err)
				return
			}
			var body types.SetTicketsRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				badRequest(ctx, err)
				return
			}
			v, err := c.SetQuantity(ctx.Request.Context(), middlewares.CurrentUserID(ctx), params.ID, body.Class, *body.Quantity)
			reply(ctx, http.StatusOK, v, err)
		}).
		POST("/sessions/:id/continue", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, err)
				return
			}
			v, err := c.Advance(ctx.Request.Context(), middlewares.CurrentUserID(ctx), params.ID)
			reply(ctx, http.StatusOK, v, err)
		}).
		POST("/sessions/:id/back", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, err)
				return
			}
			v, err := c.Back(middlewares.CurrentUserID(ctx), params.ID)
			reply(ctx, http.StatusOK, v, err)
		}).
		POST("/sessions/:id/waitlist", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, err)
				return
			}
			v, err := c.JoinWaitlist(ctx.Request.Context(), middlewares.CurrentUserID(ctx), params.ID)
			reply(ctx, http.StatusOK, v, err)
		}).
		DELETE("/sessions/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, err)
				return
			}
			if err := c.Close(middlewares.CurrentUserID(ctx), params.ID); err != nil {
				respondError(ctx, err, nil)
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
