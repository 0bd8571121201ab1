package main

import (
	"artbook/src/boot"
	"artbook/src/config"
	"artbook/src/ledger"
	"artbook/src/models"
	"artbook/src/pricing"
	"artbook/src/types"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type subjectView struct {
	models.Subject
	Classes  []string `json:"classes"`
	SoldOut  bool     `json:"sold_out"`
	FromText string   `json:"from,omitempty"`
}

func viewSubject(s models.Subject) subjectView {
	v := subjectView{Subject: s, Classes: pricing.Classes(s.Kind), SoldOut: s.Remaining <= 0}
	var lowest int64 = -1
	for _, p := range s.Prices {
		if lowest < 0 || p < lowest {
			lowest = p
		}
	}
	if lowest >= 0 {
		v.FromText = pricing.Format(lowest, s.Currency)
	}
	return v
}

func subjectHandlers(g *gin.RouterGroup, app *boot.App) *gin.RouterGroup {
	g.
		GET("/subjects", func(ctx *gin.Context) {
			subjects := app.Ledger.List(ctx.Request.Context())
			out := make([]subjectView, 0, len(subjects))
			for _, s := range subjects {
				out = append(out, viewSubject(s))
			}
			ctx.JSON(http.StatusOK, gin.H{"subjects": out})
		}).
		GET("/subjects/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, err)
				return
			}
			s, err := app.Ledger.Get(ctx.Request.Context(), params.ID)
			if errors.Is(err, ledger.ErrSubjectNotFound) {
				ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			if err != nil {
				respondError(ctx, err, nil)
				return
			}
			ctx.JSON(http.StatusOK, viewSubject(s))
		}).
		GET("/subjects/:id/slots", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, err)
				return
			}
			var filters types.SlotsQueryFilters
			if err := ctx.ShouldBindQuery(&filters); err != nil {
				badRequest(ctx, err)
				return
			}
			policy := app.Controller.SlotPolicy()
			date, err := policy.ParseDate(filters.Date)
			if err != nil {
				badRequest(ctx, err)
				return
			}
			slots, err := app.Controller.Slots(ctx.Request.Context(), params.ID, date)
			if err != nil {
				respondError(ctx, err, nil)
				return
			}
			out := make([]string, 0, len(slots))
			for _, s := range slots {
				out = append(out, s.Format(config.SLOT_FORMAT))
			}
			ctx.JSON(http.StatusOK, gin.H{"date": filters.Date, "slots": out})
		})
	return g
}
