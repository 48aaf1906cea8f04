package main

import "github.com/spf13/viper"

type Config struct {
	Port        string `mapstructure:"PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`
	Version     string `mapstructure:"VERSION"`

	WebsiteURL  string `mapstructure:"WEBSITE_URL"`
	WebsiteName string `mapstructure:"WEBSITE_NAME"`
	JWTSecret   string `mapstructure:"JWT_SECRET"`

	DB struct {
		Host     string `mapstructure:"POSTGRES_HOST"`
		Port     string `mapstructure:"POSTGRES_PORT"`
		User     string `mapstructure:"POSTGRES_USER"`
		Password string `mapstructure:"POSTGRES_PASSWORD"`
		Name     string `mapstructure:"POSTGRES_DB"`
	} `mapstructure:",squash"`

	Redis struct {
		Host     string `mapstructure:"REDIS_HOST"`
		Port     string `mapstructure:"REDIS_PORT"`
		Password string `mapstructure:"REDIS_PASSWORD"`
	} `mapstructure:",squash"`

	Mail struct {
		Host     string `mapstructure:"MAIL_HOST"`
		Port     int    `mapstructure:"MAIL_PORT"`
		User     string `mapstructure:"MAIL_USER"`
		Password string `mapstructure:"MAIL_PASSWORD"`
		Sender   string `mapstructure:"MAIL_SENDER"`
	} `mapstructure:",squash"`

	RabbitMQ struct {
		Host     string `mapstructure:"RABBITMQ_HOST"`
		Port     string `mapstructure:"RABBITMQ_PORT"`
		User     string `mapstructure:"RABBITMQ_USER"`
		Password string `mapstructure:"RABBITMQ_PASSWORD"`
	} `mapstructure:",squash"`

	Limiter struct {
		Enabled bool    `mapstructure:"LIMITER_ENABLED"`
		RPS     float64 `mapstructure:"LIMITER_RPS"`
		Burst   int     `mapstructure:"LIMITER_BURST"`
	} `mapstructure:",squash"`
}

func loadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetConfigType("env")

	viper.SetDefault("PORT", ":4000")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("VERSION", "2.0.0")
	viper.SetDefault("WEBSITE_URL", "http://localhost:4000")
	viper.SetDefault("WEBSITE_NAME", "BlogM")
	// Fallback matches the historical default. Every real deployment must
	// override it.
	viper.SetDefault("JWT_SECRET", "SecretKey")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("LIMITER_ENABLED", true)
	viper.SetDefault("LIMITER_RPS", 25)
	viper.SetDefault("LIMITER_BURST", 50)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
