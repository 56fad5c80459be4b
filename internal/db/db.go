package db

import (
	"log"

	"github.com/servihub/marketplace/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func Connect(dsn string) *gorm.DB {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}

	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.Review{},
		&models.ChatMessage{},
		&models.Notification{},
		&models.ForumTopic{},
		&models.ForumPost{},
	); err != nil {
		log.Fatalf("automigrate: %v", err)
	}

	return gdb
}
