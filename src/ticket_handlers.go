package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"tixgate/src/db"
	"tixgate/src/lib"
	"tixgate/src/models"
	"tixgate/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func ticketHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/tickets/:code", func(ctx *gin.Context) {
			code := ctx.Params.ByName("code")
			var ticket models.Ticket
			db := db.GetDb()
			if err := db.
				Where(&models.Ticket{Code: code}).
				Preload("Session").
				Preload("Attendees").
				First(&ticket).
				Error; err != nil {
				log.Printf("Error retrieving Ticket [%s]: %s\n", code, err.Error())
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": ticket})
		}).
		GET("/tickets/:code/qr", func(ctx *gin.Context) {
			code := ctx.Params.ByName("code")
			var ticket models.Ticket
			db := db.GetDb()
			if err := db.
				Where(&models.Ticket{Code: code}).
				First(&ticket).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.Status(http.StatusBadRequest)
				return
			}

			cacheKey := fmt.Sprintf("ticketcode_%s", code)
			rd := lib.GetRedisClient()
			if rd != nil {
				cached, err := rd.Get(context.Background(), cacheKey).Result()
				if err != nil && !errors.Is(err, redis.Nil) {
					log.Printf("Error reading from cache: %s\n", err.Error())
				}
				if cached != "" {
					ctx.FileAttachment(cached, "eticket.jpeg")
					return
				}
			}

			filepath, err := utils.RenderTicketQR(code)
			if err != nil {
				log.Printf("Could not render qrcode for [%s]: %s\n", code, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			if rd != nil {
				rd.SetEx(context.Background(), cacheKey, filepath, 2*time.Hour)
			}
			ctx.FileAttachment(filepath, "eticket.jpeg")
		})
	return g
}
