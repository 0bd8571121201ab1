package db

import (
	"artbook/src/config"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// GetDb returns the shared connection, opening it on first use.
func GetDb() *gorm.DB {
	if db != nil {
		return db
	}
	_db, err := Open(config.GetDSN())
	if err != nil {
		zap.S().Errorf("Error connecting to database: %s", err.Error())
		return nil
	}
	db = _db
	return _db
}

// Open connects to postgres. The connection is used as the remote mirror,
// so translated errors are enabled and default transactions are skipped.
func Open(dsn string) (*gorm.DB, error) {
	_db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := _db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	return _db, nil
}

func NewDB(newdb *gorm.DB) {
	db = newdb
}
