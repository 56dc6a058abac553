package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Email     EmailConfig     `mapstructure:"email"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Frontend  FrontendConfig  `mapstructure:"frontend"`
}

type ServerConfig struct {
	Port    int           `mapstructure:"port"`
	Mode    string        `mapstructure:"mode"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	JWTSecret      string `mapstructure:"jwt_secret"`
	JWTExpiryHours int    `mapstructure:"jwt_expiry_hours"`
	JWTIssuer      string `mapstructure:"jwt_issuer"`
}

type EmailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	// Timeout is the client-side SMTP deadline. It must stay below any
	// gateway timeout in front of the process so a hung relay fails the
	// single send, not the whole scan tick.
	Timeout time.Duration `mapstructure:"timeout"`
}

// SchedulerConfig drives the two background scanners.
type SchedulerConfig struct {
	DeadlineInterval     time.Duration `mapstructure:"deadline_interval"`
	InactivityInterval   time.Duration `mapstructure:"inactivity_interval"`
	IdleThreshold        time.Duration `mapstructure:"idle_threshold"`
	DeadlineLookahead    time.Duration `mapstructure:"deadline_lookahead"`
	DeadlineEmailEnabled bool          `mapstructure:"deadline_email_enabled"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type FrontendConfig struct {
	URL string `mapstructure:"url"`
}

func LoadConfig(configPath string) (*Config, error) {
	var config Config

	// CONFIG_FILE always wins over the passed-in path
	if envConfigFile := os.Getenv("CONFIG_FILE"); envConfigFile != "" {
		configPath = envConfigFile
	}

	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		dir := filepath.Dir(configPath)
		file := filepath.Base(configPath)
		name := strings.TrimSuffix(file, filepath.Ext(file))

		v.AddConfigPath(dir)
		v.SetConfigName(name)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./pkg/config")
		v.SetConfigName("config")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine: defaults plus environment variables
		// are enough to boot in containerized deployments.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error loading config file: %v", err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	applyEnvOverrides(v)

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %v", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "development")
	v.SetDefault("server.timeout", 30*time.Second)

	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("auth.jwt_expiry_hours", 24)
	v.SetDefault("auth.jwt_issuer", "taskflow")

	v.SetDefault("email.timeout", 10*time.Second)

	// Reference cadence: deadlines hourly, inactivity every 15 minutes.
	v.SetDefault("scheduler.deadline_interval", time.Hour)
	v.SetDefault("scheduler.inactivity_interval", 15*time.Minute)
	v.SetDefault("scheduler.idle_threshold", 2*time.Hour)
	v.SetDefault("scheduler.deadline_lookahead", 24*time.Hour)
	v.SetDefault("scheduler.deadline_email_enabled", false)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Authorization"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("frontend.url", "http://localhost:5173")
}

func applyEnvOverrides(v *viper.Viper) {
	envVars := map[string]string{
		"server.port":                      "PORT",
		"server.mode":                      "SERVER_MODE",
		"database.host":                    "DB_HOST",
		"database.port":                    "DB_PORT",
		"database.user":                    "DB_USER",
		"database.password":                "DB_PASSWORD",
		"database.name":                    "DB_NAME",
		"database.sslmode":                 "DB_SSLMODE",
		"redis.host":                       "REDIS_HOST",
		"redis.port":                       "REDIS_PORT",
		"redis.password":                   "REDIS_PASSWORD",
		"redis.db":                         "REDIS_DB",
		"auth.jwt_secret":                  "JWT_SECRET",
		"auth.jwt_issuer":                  "JWT_ISSUER",
		"auth.jwt_expiry_hours":            "JWT_EXPIRY_HOURS",
		"email.host":                       "EMAIL_HOST",
		"email.port":                       "EMAIL_PORT",
		"email.username":                   "EMAIL_USER",
		"email.password":                   "EMAIL_PASS",
		"email.from":                       "EMAIL_FROM",
		"email.timeout":                    "EMAIL_TIMEOUT",
		"scheduler.deadline_interval":      "SCHEDULER_DEADLINE_INTERVAL",
		"scheduler.inactivity_interval":    "SCHEDULER_INACTIVITY_INTERVAL",
		"scheduler.idle_threshold":         "SCHEDULER_IDLE_THRESHOLD",
		"scheduler.deadline_lookahead":     "SCHEDULER_DEADLINE_LOOKAHEAD",
		"scheduler.deadline_email_enabled": "SCHEDULER_DEADLINE_EMAIL_ENABLED",
		"logging.level":                    "LOG_LEVEL",
		"logging.format":                   "LOG_FORMAT",
		"frontend.url":                     "FRONTEND_URL",
	}

	for configKey, envVar := range envVars {
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}
		switch envVar {
		case "PORT", "DB_PORT", "REDIS_PORT", "REDIS_DB", "EMAIL_PORT", "JWT_EXPIRY_HOURS":
			if intVal, err := strconv.Atoi(value); err == nil {
				v.Set(configKey, intVal)
			}
		case "EMAIL_TIMEOUT",
			"SCHEDULER_DEADLINE_INTERVAL", "SCHEDULER_INACTIVITY_INTERVAL",
			"SCHEDULER_IDLE_THRESHOLD", "SCHEDULER_DEADLINE_LOOKAHEAD":
			if d, err := time.ParseDuration(value); err == nil {
				v.Set(configKey, d)
			}
		case "SCHEDULER_DEADLINE_EMAIL_ENABLED":
			v.Set(configKey, value == "true" || value == "1")
		default:
			v.Set(configKey, value)
		}
	}
}
