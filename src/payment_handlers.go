package main

import (
	"artbook/src/boot"
	"artbook/src/middlewares"
	"artbook/src/models"
	"artbook/src/payment"
	"artbook/src/types"
	"net/http"

	"github.com/gin-gonic/gin"
)

type paymentMethodView struct {
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
	Label    string `json:"label"`
}

func viewPaymentMethod(pm models.PaymentMethod) paymentMethodView {
	return paymentMethodView{Brand: pm.Brand, Last4: pm.Last4, ExpMonth: pm.ExpMonth, ExpYear: pm.ExpYear, Label: pm.Label()}
}

func paymentHandlers(g *gin.RouterGroup, app *boot.App) *gin.RouterGroup {
	g.
		GET("/payment-method", func(ctx *gin.Context) {
			pm, ok := app.Controller.PaymentMethod(ctx.Request.Context(), middlewares.CurrentUserID(ctx))
			if !ok {
				ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "no payment method", "remedy": "add_payment_method"})
				return
			}
			ctx.JSON(http.StatusOK, viewPaymentMethod(pm))
		}).
		PUT("/payment-method", func(ctx *gin.Context) {
			var body types.AddPaymentMethodRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				badRequest(ctx, err)
				return
			}
			pm, err := app.Controller.AddPaymentMethod(ctx.Request.Context(), middlewares.CurrentUserID(ctx), payment.MethodDetails{
				Token:    body.Token,
				Brand:    body.Brand,
				Last4:    body.Last4,
				ExpMonth: body.ExpMonth,
				ExpYear:  body.ExpYear,
			})
			if err != nil {
				respondError(ctx, err, nil)
				return
			}
			ctx.JSON(http.StatusOK, viewPaymentMethod(pm))
		}).
		PUT("/fcm", func(ctx *gin.Context) {
			var body types.FCMTokenRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				badRequest(ctx, err)
				return
			}
			if app.Push == nil {
				ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "push notifications are disabled"})
				return
			}
			if err := app.Push.SaveToken(ctx.Request.Context(), middlewares.CurrentUserID(ctx), body.Token); err != nil {
				respondError(ctx, err, nil)
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
