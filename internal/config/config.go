package config

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string `yaml:"env" env:"ENV" env-default:"local"`
	Telegram struct {
		ApiKey  string `yaml:"api_key" env:"TELEGRAM_API_KEY" env-default:""`
		AdminId int64  `yaml:"admin_id" env:"TELEGRAM_ADMIN_ID" env-default:"0"`
		BotName string `yaml:"bot_name" env-default:"CoverBot"`
		Enabled bool   `yaml:"enabled" env:"TELEGRAM_ENABLED" env-default:"false"`
	} `yaml:"telegram"`
	OpenAI struct {
		Enabled bool   `yaml:"enabled" env:"OPENAI_ENABLED" env-default:"false"`
		ApiKey  string `yaml:"api_key" env:"OPENAI_API_KEY" env-default:""`
		Model   string `yaml:"model" env-default:"gpt-4o-mini"`
		BaseURL string `yaml:"base_url" env:"OPENAI_BASE_URL" env-default:""`
	} `yaml:"openai"`
	Mongo struct {
		Enabled    bool   `yaml:"enabled" env:"MONGO_ENABLED" env-default:"false"`
		Host       string `yaml:"host" env:"MONGO_HOST" env-default:"127.0.0.1"`
		Port       string `yaml:"port" env:"MONGO_PORT" env-default:"27017"`
		User       string `yaml:"user" env:"MONGO_USER" env-default:"admin"`
		Password   string `yaml:"password" env:"MONGO_PASSWORD" env-default:"pass"`
		Database   string `yaml:"database" env:"MONGO_DATABASE" env-default:"coverbot"`
		Collection string `yaml:"collection" env-default:"journeys"`
	} `yaml:"mongo"`
	SQLite struct {
		Enabled bool   `yaml:"enabled" env:"SQLITE_ENABLED" env-default:"false"`
		Path    string `yaml:"path" env:"SQLITE_PATH" env-default:"coverbot.db"`
	} `yaml:"sqlite"`
	Journey struct {
		Pacing          bool          `yaml:"pacing" env-default:"true"`
		MaxTransitions  int           `yaml:"max_transitions" env-default:"50"`
		LookupFailRate  float64       `yaml:"lookup_fail_rate" env-default:"0.2"`
		PaymentFailRate float64       `yaml:"payment_fail_rate" env-default:"0.1"`
		FileSecret      string        `yaml:"file_secret" env:"FILE_SECRET" env-default:"change-me"`
		FileTTL         time.Duration `yaml:"file_ttl" env-default:"15m"`
	} `yaml:"journey"`
	VehicleService struct {
		BaseURL  string `yaml:"base_url" env:"VEHICLE_API_URL" env-default:""`
		Login    string `yaml:"login" env-default:""`
		Password string `yaml:"password" env:"VEHICLE_API_PASSWORD" env-default:""`
	} `yaml:"vehicle-service"`
	Listen struct {
		BindIP  string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port    string `yaml:"port" env:"PORT" env-default:"9100"`
		ApiKey  string `yaml:"key" env:"API_KEY" env-default:""`
		Timeout int    `yaml:"timeout" env-default:"30"`
	} `yaml:"listen"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}

// Load reads the config without the process-wide cache.
func Load(path string) (*Config, error) {
	conf := &Config{}
	if err := cleanenv.ReadConfig(path, conf); err != nil {
		return nil, err
	}
	return conf, nil
}
