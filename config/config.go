package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Booking.
	SlotLockTTL     time.Duration `mapstructure:"SLOT_LOCK_TTL"`
	PaymentTimeout  time.Duration `mapstructure:"PAYMENT_TIMEOUT"`
	DoctorCacheSize int           `mapstructure:"DOCTOR_CACHE_SIZE"`
	DoctorCacheTTL  time.Duration `mapstructure:"DOCTOR_CACHE_TTL"`

	// Payments.
	StripeKey             string `mapstructure:"STRIPE_KEY"`
	PaymentCurrency       string `mapstructure:"PAYMENT_CURRENCY"`
	PaymentEventsAMQPURL  string `mapstructure:"PAYMENT_EVENTS_AMQP_URL"`
	PaymentEventsExchange string `mapstructure:"PAYMENT_EVENTS_EXCHANGE"`
	PaymentEventsQueue    string `mapstructure:"PAYMENT_EVENTS_QUEUE"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "medislot")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("SLOT_LOCK_TTL", "120s")
	viper.SetDefault("PAYMENT_TIMEOUT", "15m")
	viper.SetDefault("DOCTOR_CACHE_SIZE", 256)
	viper.SetDefault("DOCTOR_CACHE_TTL", "5m")
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("PAYMENT_CURRENCY", "inr")
	viper.SetDefault("PAYMENT_EVENTS_AMQP_URL", "")
	viper.SetDefault("PAYMENT_EVENTS_EXCHANGE", "payments")
	viper.SetDefault("PAYMENT_EVENTS_QUEUE", "medislot.payments")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
