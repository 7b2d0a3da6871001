// Package database opens the gorm handle behind the stand-in users store.
package database

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MemoryDSN is a private sqlite database that lives as long as its single connection.
const MemoryDSN = ":memory:"

var ErrUnsupportedDriver = errors.New("unsupported db driver")

type Opts struct {
	Driver             string // sqlite | mysql | postgres
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	LogLevel           string // silent | error | warn | info
}

func NewGorm(o Opts) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch strings.ToLower(o.Driver) {
	case "", "sqlite":
		if o.DSN == "" {
			o.DSN = MemoryDSN
		}
		dial = sqlite.Open(o.DSN)
	case "postgres":
		dial = postgres.Open(o.DSN)
	case "mysql":
		dial = mysql.Open(o.DSN)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, o.Driver)
	}

	db, err := gorm.Open(dial, &gorm.Config{
		// 走标准 log，mockapi 已把它重定向到 zap
		Logger: logger.New(log.New(log.Writer(), "[gorm] ", 0), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel(o.LogLevel),
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true, // 唯一键冲突 -> gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if isMemory(o) {
		// 每个连接都是一份独立的内存库，只能有一个
		o.MaxOpenConns, o.MaxIdleConns, o.ConnMaxLifetimeMin = 1, 1, 0
	}
	if o.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(o.MaxOpenConns)
	}
	if o.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(o.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Duration(o.ConnMaxLifetimeMin) * time.Minute)
	return db, nil
}

// OpenMemory is NewGorm for a throwaway sqlite database.
func OpenMemory() (*gorm.DB, error) {
	return NewGorm(Opts{Driver: "sqlite", DSN: MemoryDSN, LogLevel: "silent"})
}

func isMemory(o Opts) bool {
	d := strings.ToLower(o.Driver)
	return (d == "" || d == "sqlite") && strings.Contains(o.DSN, ":memory:")
}

func logLevel(s string) logger.LogLevel {
	switch s {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	}
	return logger.Warn
}
