package main

import (
	"errors"
	"log"
	"net/http"

	"tixgate/src/common"
	"tixgate/src/types"

	"github.com/gin-gonic/gin"
)

func purchaseHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.POST("/purchase", func(ctx *gin.Context) {
		var body types.PurchaseRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		input := &common.PurchaseInput{
			SessionID:      body.SessionID,
			Name:           body.Name,
			Phone:          body.Phone,
			Quantities:     body.Quantities(),
			Guests:         body.Guests,
			IdempotencyKey: body.IdempotencyKey,
		}
		result, err := common.CreatePendingPurchase(input)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
				return
			}
			if errors.Is(err, common.ErrInvalidState) {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "session is not open for booking"})
				return
			}
			if common.IsInventoryExhausted(err) {
				ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			log.Printf("Error creating purchase: %s\n", err.Error())
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
			return
		}

		status := http.StatusCreated
		if result.Duplicate {
			// A retried submission gets its original ticket back.
			status = http.StatusOK
		}
		payload := gin.H{
			"ticket_id": result.Ticket.ID,
			"code":      result.Ticket.Code,
			"status":    result.Ticket.Status,
			"amount":    result.Ticket.Amount,
		}
		if result.Transaction != nil {
			payload["transaction_id"] = result.Transaction.ID
			payload["reference_id"] = result.Transaction.ReferenceID
		}
		ctx.JSON(status, payload)
	})
	return g
}
