package main

import (
	"log"
	"os"
	"regexp"
	"time"

	"tixgate/src/boot"
	"tixgate/src/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
)

const (
	apiPrefix string = "/api/v1"
)

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

// sessionDayValidatorFunc rejects sessions created for a day already past.
func sessionDayValidatorFunc(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	day, err := time.Parse(config.DAY_PARSE_FORMAT, value)
	if err != nil {
		return false
	}
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !day.Before(today)
}

var phoneRe = regexp.MustCompile(`^\+?[0-9][0-9 \-()]{5,19}$`)

func phoneValidatorFunc(fl validator.FieldLevel) bool {
	return phoneRe.MatchString(fl.Field().String())
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("sessionday", sessionDayValidatorFunc)
		v.RegisterValidation("phonenumber", phoneValidatorFunc)
	}
}

func setupRouter() *gin.Engine {
	router := gin.Default()

	cc := cors.DefaultConfig()
	appHost := os.Getenv("APP_HOST")
	if appHost != "" {
		cc.AllowOrigins = []string{appHost}
	} else {
		cc.AllowAllOrigins = true
	}
	router.Use(cors.New(cc))

	registerValidators()

	paymentWebhookRoute(router)

	apiv1 := apiv1Group(router)
	{
		apiv1 = sessionHandlers(apiv1)
		apiv1 = purchaseHandlers(apiv1)
		apiv1 = verifyHandlers(apiv1)
		apiv1 = ticketHandlers(apiv1)
		apiv1 = transactionHandlers(apiv1)
	}

	return router
}

func main() {
	boot.InitDb()
	boot.InitBroker()
	boot.InitScheduler()

	router := setupRouter()

	if err := router.Run(":9090"); err != nil {
		log.Fatalf("Failed to start server: %s", err)
	}
}
