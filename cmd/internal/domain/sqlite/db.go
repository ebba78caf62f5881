package sqlite

import (
	"clinic/cmd/internal/domain/entity"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"
	"time"

	"gorm.io/gorm"
)

func Init(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// A single connection serialises writers, which is what keeps the
	// conflict re-check and the insert of a booking atomic.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	err = db.AutoMigrate(&entity.User{}, &entity.Doctor{}, &entity.Patient{}, &entity.Appointment{})
	if err != nil {
		return nil, err
	}
	return db, nil
}
