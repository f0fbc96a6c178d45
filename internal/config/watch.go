package config

import "github.com/caarlos0/env/v11"

type WatchConfig struct {
	WSURL  string   `env:"WS_URL" envDefault:"ws://localhost:8080/ws"`
	Events []string `env:"WATCH_EVENTS" envSeparator:","`
	Pretty bool     `env:"WATCH_PRETTY" envDefault:"false"`
}

func LoadWatch() (WatchConfig, error) {
	var cfg WatchConfig
	err := env.Parse(&cfg)
	return cfg, err
}
