package main

import (
	"errors"
	"log"
	"net/http"

	"tixgate/src/common"

	"github.com/gin-gonic/gin"
)

func transactionHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.GET("/transactions/:ref", func(ctx *gin.Context) {
		ref := ctx.Params.ByName("ref")
		txn, err := common.FindTransactionByReference(ref)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				ctx.Status(http.StatusNotFound)
				return
			}
			log.Printf("Error retrieving Transaction [%s]: %s\n", ref, err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"data": txn})
	})
	return g
}
