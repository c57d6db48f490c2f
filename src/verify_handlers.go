package main

import (
	"net/http"
	"time"

	"tixgate/src/common"
	"tixgate/src/types"

	"github.com/gin-gonic/gin"
)

func verifyHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.POST("/verify", func(ctx *gin.Context) {
		var body types.VerifyRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// The gate UI always gets a structured checklist back, pass or fail.
		result := common.VerifyTicket(body.Code, time.Now())
		ctx.JSON(http.StatusOK, result)
	})
	return g
}
