package config

import (
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

type FulfillmentConfig struct {
	Env            string `yaml:"env"`
	HTTPServer     `yaml:"http_server"`
	FulfillmentDB  `yaml:"fulfillment_db"`
	LogConfig      `yaml:"log_config"`
	KafkaService   `yaml:"kafka-service"`
	PaymentGateway `yaml:"payment-gateway"`
	CatalogService `yaml:"catalog-service"`
	Notifier       `yaml:"notifier"`
	Migrations     `yaml:"migrations"`
}

type HTTPServer struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type FulfillmentDB struct {
	Dsn string `yaml:"dsn"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogOutput string `yaml:"log_output"`
}

type KafkaService struct {
	Host  string `yaml:"host"`
	Port  string `yaml:"port"`
	Topic string `yaml:"topic" env-default:"order-events"`
}

type PaymentGateway struct {
	BaseURL       string `yaml:"base_url"`
	APIKey        string `yaml:"api_key" env:"GATEWAY_API_KEY"`
	WebhookSecret string `yaml:"webhook_secret" env:"GATEWAY_WEBHOOK_SECRET"`
}

type CatalogService struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type Notifier struct {
	CallbackURL string `yaml:"callback_url"`
}

type Migrations struct {
	Path string `yaml:"path"`
}

func MustLoad() *FulfillmentConfig {

	// Processing env config variable and file
	configPath := os.Getenv("FULFILLMENT_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("FULFILLMENT_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg FulfillmentConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	return &cfg
}
