package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewMySQL returns a connected GORM DB instance. Query logging verbosity
// follows the environment: development echoes every statement, anything
// else logs slow queries and errors only.
func NewMySQL(dsn, env string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(LogLevelFor(env)),
	})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return db, nil
}

// LogLevelFor maps the application environment to a GORM log level.
func LogLevelFor(env string) gormlogger.LogLevel {
	if env == "development" {
		return gormlogger.Info
	}
	return gormlogger.Warn
}
