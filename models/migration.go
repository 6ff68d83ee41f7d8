package models

import (
	"log"

	"bitbucket.org/mmdatafocus/networth_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Account{}, &AccountConfig{},
		&Transaction{},
		&Setting{},
		&DailySummary{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
