package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const defaultPath = "./configs/config.local.yaml"

type App struct {
	Name string
	Env  string
}

// API is the users backend the console talks to.
type API struct {
	BaseURL     string
	TimeoutSec  int
	Token       string  // 静态 token，优先于 JWT 签发
	RateRPS     float64 // <=0 不限速
	Burst       int
	MaxInFlight int64
	PageSize    int
	PushURL     string // Pushgateway 地址，空则不推送客户端指标
}

func (a API) Timeout() time.Duration { return time.Duration(a.TimeoutSec) * time.Second }

type Rotate struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level  string
	JSON   bool
	Rotate Rotate
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

func (j JWT) TTL() time.Duration { return time.Duration(j.AccessTokenTTLMin) * time.Minute }

// Mock is the stand-in users backend.
type Mock struct {
	Host            string
	Port            int
	Seed            bool
	RequireAuth     bool
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

// DB backs the stand-in store; the default is a throwaway in-memory sqlite.
type DB struct {
	Driver             string // sqlite | mysql | postgres
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Config struct {
	App  App
	API  API
	Log  Log
	JWT  JWT
	Mock Mock
	DB   DB
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "user-admin")
	v.SetDefault("app.env", "local")

	v.SetDefault("api.baseURL", "http://127.0.0.1:8080")
	v.SetDefault("api.timeoutSec", 10)
	v.SetDefault("api.rateRPS", 20)
	v.SetDefault("api.burst", 40)
	v.SetDefault("api.maxInFlight", 8)
	v.SetDefault("api.pageSize", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.rotate.filename", "logs/app.log")
	v.SetDefault("log.rotate.maxSizeMB", 100)
	v.SetDefault("log.rotate.maxBackups", 7)
	v.SetDefault("log.rotate.maxAgeDays", 30)

	v.SetDefault("jwt.issuer", "user-admin")
	v.SetDefault("jwt.accessTokenTTLMin", 60)

	v.SetDefault("mock.host", "0.0.0.0")
	v.SetDefault("mock.port", 8080)
	v.SetDefault("mock.seed", true)
	v.SetDefault("mock.readTimeoutSec", 5)
	v.SetDefault("mock.writeTimeoutSec", 10)
	v.SetDefault("mock.idleTimeoutSec", 60)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", ":memory:")
	v.SetDefault("db.maxOpenConns", 10)
	v.SetDefault("db.maxIdleConns", 5)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.autoMigrate", true)
	v.SetDefault("db.logLevel", "warn")
}

// flagKeys maps CLI flags onto config keys.
var flagKeys = map[string]string{
	"config":    "",
	"api-url":   "api.baseURL",
	"token":     "api.token",
	"timeout":   "api.timeoutSec",
	"log-level": "log.level",
	"log-json":  "log.json",
	"port":      "mock.port",
	"push-url":  "api.pushURL",
	"db-dsn":    "db.dsn",
}

// Read loads path (or CONFIG_PATH, or the local default) with APP_ env overrides.
// A missing default file is not an error; flags in fs override everything.
func Read(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	explicit := path != ""
	if !explicit {
		path = os.Getenv("CONFIG_PATH")
		explicit = path != ""
	}
	if !explicit {
		path = defaultPath
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && key != "" {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Load is Read for binaries: it exits on error.
func Load(path string, fs *pflag.FlagSet) *Config {
	c, err := Read(path, fs)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return c
}
