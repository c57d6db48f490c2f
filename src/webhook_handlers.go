package main

import (
	"errors"
	"io"
	"log"
	"net/http"

	"tixgate/src/common"

	"github.com/gin-gonic/gin"
)

func paymentWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/payment", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}

		outcome, err := common.ReconcileWebhook(payload)
		if err != nil {
			if errors.Is(err, common.ErrMissingReference) {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "missing transaction reference"})
				return
			}
			if errors.Is(err, common.ErrNotFound) {
				// Never fabricate a transaction for an unknown reference.
				ctx.JSON(http.StatusNotFound, gin.H{"error": "unknown transaction reference"})
				return
			}
			log.Printf("[Webhook] Error reconciling callback: %s\n", err.Error())
			ctx.Status(http.StatusInternalServerError)
			return
		}

		if outcome.NoOp {
			log.Printf("[Webhook] ref=%s replay acknowledged without side effects\n", outcome.ReferenceID)
		} else {
			log.Printf("[Webhook] ref=%s reconciled to %s\n", outcome.ReferenceID, outcome.Status)
		}
		ctx.JSON(http.StatusOK, gin.H{"status": outcome.Status})
	})
	return apiv1
}
