package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort     int     `mapstructure:"http_port"`
	LogLevel     string  `mapstructure:"log_level"`
	DatabaseURL  string  `mapstructure:"database_url"`
	JwtSecret    string  `mapstructure:"jwt_secret"`
	CookieSecure bool    `mapstructure:"cookie_secure"` // Secure flag on the session cookie; enable behind TLS
	CORSOrigin   string  `mapstructure:"cors_origin"`
	RateLimit    float64 `mapstructure:"rate_limit"` // requests per second across the whole surface
	RateBurst    int     `mapstructure:"rate_burst"`
}

var AppConfig Config

func InitConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variable overrides
	viper.SetEnvPrefix("MEALDESK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("http_port", 5000)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("jwt_secret", "default-very-insecure-secret-key") // CHANGE THIS IN PRODUCTION
	viper.SetDefault("cookie_secure", false)
	viper.SetDefault("cors_origin", "http://localhost:3000")
	viper.SetDefault("rate_limit", 2.0)
	viper.SetDefault("rate_burst", 20)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("Config file not found, using defaults and environment variables.")
		} else {
			panic(fmt.Errorf("fatal error reading config file: %w", err))
		}
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		panic(fmt.Errorf("unable to decode config into struct: %w", err))
	}
}
