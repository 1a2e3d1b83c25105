package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	AdminToken        string `mapstructure:"ADMIN_TOKEN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisLockDB   int    `mapstructure:"REDIS_LOCK_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Zarinpal payment gateway. Merchant id and base URL may instead come
	// from the settings record; these are the environment fallbacks.
	ZarinpalMerchantID           string `mapstructure:"ZARINPAL_MERCHANT_ID"`
	ZarinpalBaseURL              string `mapstructure:"ZARINPAL_BASE_URL"`
	ZarinpalCallbackURL          string `mapstructure:"ZARINPAL_CALLBACK_URL"`
	ZarinpalCallbackURLOrders    string `mapstructure:"ZARINPAL_CALLBACK_URL_ORDERS"`
	ZarinpalCallbackURLDonations string `mapstructure:"ZARINPAL_CALLBACK_URL_DONATIONS"`
	ZarinpalDescription          string `mapstructure:"ZARINPAL_DESCRIPTION"`
	ZarinpalDescriptionOrders    string `mapstructure:"ZARINPAL_DESCRIPTION_ORDERS"`
	ZarinpalDescriptionDonations string `mapstructure:"ZARINPAL_DESCRIPTION_DONATION"`

	// Google Calendar OAuth (refresh-token flow).
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRefreshToken string `mapstructure:"GOOGLE_REFRESH_TOKEN"`
	GoogleCalendarID   string `mapstructure:"GOOGLE_CALENDAR_ID"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available. AutomaticEnv
	// alone does not surface env values through Unmarshal; every key must be
	// bound explicitly.
	viper.AutomaticEnv()
	for _, key := range []string{
		"APP_PORT", "DATABASE_URL", "ENV", "LOG_LEVEL",
		"MAX_REQUESTS_PER_MIN", "ADMIN_TOKEN",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_CACHE_DB", "REDIS_LOCK_DB", "REDIS_QUEUE_DB",
		"ZARINPAL_MERCHANT_ID", "ZARINPAL_BASE_URL",
		"ZARINPAL_CALLBACK_URL", "ZARINPAL_CALLBACK_URL_ORDERS", "ZARINPAL_CALLBACK_URL_DONATIONS",
		"ZARINPAL_DESCRIPTION", "ZARINPAL_DESCRIPTION_ORDERS", "ZARINPAL_DESCRIPTION_DONATION",
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_REFRESH_TOKEN", "GOOGLE_CALENDAR_ID",
	} {
		if err := viper.BindEnv(key); err != nil {
			log.Fatalf("Failed to bind env key %s: %v", key, err)
		}
	}

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_LOCK_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("GOOGLE_CALENDAR_ID", "primary")

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
