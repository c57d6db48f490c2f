package main

import (
	"errors"
	"log"
	"net/http"

	"tixgate/src/common"
	"tixgate/src/db"
	"tixgate/src/models"
	"tixgate/src/types"

	"github.com/gin-gonic/gin"
)

func sessionHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/sessions", func(ctx *gin.Context) {
			var sessions []models.Session
			db := db.GetDb()
			if err := db.
				Model(&models.Session{}).
				Preload("Limits").
				Order("day asc, starts_at asc").
				Find(&sessions).
				Error; err != nil {
				log.Printf("Error retrieving Sessions: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": sessions, "count": len(sessions)})
		}).
		POST("/sessions", func(ctx *gin.Context) {
			var body types.CreateSessionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			id, err := common.CreateNewSession(&body)
			if err != nil {
				log.Printf("error creating session: %s", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"id": id})
		}).
		GET("/sessions/:id/availability", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			snapshot, err := common.Snapshot(params.ID)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				log.Printf("Error retrieving availability for Session [%d]: %s\n", params.ID, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": snapshot})
		}).
		PUT("/sessions/:id/activate", func(ctx *gin.Context) {
			setSessionActive(ctx, true)
		}).
		PUT("/sessions/:id/deactivate", func(ctx *gin.Context) {
			setSessionActive(ctx, false)
		})
	return g
}

func setSessionActive(ctx *gin.Context, active bool) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := common.SetSessionActive(params.ID, active); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			ctx.Status(http.StatusNotFound)
			return
		}
		log.Printf("Error toggling Session [%d]: %s\n", params.ID, err.Error())
		ctx.Status(http.StatusInternalServerError)
		return
	}
	ctx.Status(http.StatusNoContent)
}
