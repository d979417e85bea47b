package models

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// ConnectDataBase Open (or create) the sqlite image catalog and run the
// migrations.
func ConnectDataBase(filename string) {
	dbURL := filename + ".sqlite"

	var err error
	DB, err = gorm.Open(sqlite.Open(dbURL), &gorm.Config{})
	if err != nil {
		log.Fatal(fmt.Sprintf("Cannot connect sqlite database at %s: %v", dbURL, err))
	}
	log.Info(fmt.Sprintf("Connecting sqlite database at %s", dbURL))

	DB.AutoMigrate(&Image{})
}
