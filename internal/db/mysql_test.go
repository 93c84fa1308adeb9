package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	gormlogger "gorm.io/gorm/logger"
)

func TestLogLevelFor(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		expected gormlogger.LogLevel
	}{
		{name: "development echoes statements", env: "development", expected: gormlogger.Info},
		{name: "production logs warnings only", env: "production", expected: gormlogger.Warn},
		{name: "unknown environments default to warnings", env: "", expected: gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LogLevelFor(tt.env))
		})
	}
}
