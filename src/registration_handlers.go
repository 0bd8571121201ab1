package main

import (
	"artbook/src/boot"
	"artbook/src/middlewares"
	"artbook/src/types"
	"net/http"

	"github.com/gin-gonic/gin"
)

func registrationHandlers(g *gin.RouterGroup, app *boot.App) *gin.RouterGroup {
	g.
		GET("/registrations", func(ctx *gin.Context) {
			list, err := app.Controller.Registrations(ctx.Request.Context(), middlewares.CurrentUserID(ctx))
			if err != nil {
				respondError(ctx, err, nil)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"registrations": list})
		}).
		DELETE("/registrations/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, err)
				return
			}
			if err := app.Controller.Cancel(ctx.Request.Context(), middlewares.CurrentUserID(ctx), params.ID); err != nil {
				respondError(ctx, err, nil)
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
