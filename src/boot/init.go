package boot

import (
	"log"

	"tixgate/src/common"
	"tixgate/src/config"
	"tixgate/src/db"
	"tixgate/src/lib"
	"tixgate/src/models"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.Session{},
		&models.SessionLimits{},
		&models.Ticket{},
		&models.Attendee{},
		&models.Transaction{},
		&models.SmsLog{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitBroker() {
	go lib.KafkaCreateTopics(lib.TOPIC_OPS_ALERTS, lib.TOPIC_TICKETS_CONFIRMED)
}

func InitScheduler() {
	id, err := lib.CreateCronJob(common.RunReaper, config.ReaperInterval())
	if err != nil {
		log.Fatalf("error registering reaper job: %s", err.Error())
	}
	log.Printf("Registered reaper job %s (every %s)\n", *id, config.ReaperInterval())
	lib.StartScheduler()
}
