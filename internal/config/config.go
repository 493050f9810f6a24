package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type BackendConfig struct {
	Endpoint    string        `mapstructure:"endpoint"`
	FunctionKey string        `mapstructure:"function_key"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type RelayConfig struct {
	Scope       string `mapstructure:"scope"`
	ChatHistory int    `mapstructure:"chat_history"`
	Strict      bool   `mapstructure:"strict"`
}

type ChatConfig struct {
	RateLimit  int           `mapstructure:"rate_limit"`
	RateWindow time.Duration `mapstructure:"rate_window"`
}

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	Secret     string        `mapstructure:"secret"`
	Backend    BackendConfig `mapstructure:"backend"`
	Relay      RelayConfig   `mapstructure:"relay"`
	Chat       ChatConfig    `mapstructure:"chat"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Same env names the deployment already uses.
	_ = v.BindEnv("backend.endpoint", "BACKEND")
	_ = v.BindEnv("backend.function_key", "FUNCTION_KEY")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("backend.endpoint", "https://groupcoursework-functionapp-2526.azurewebsites.net/api")
	v.SetDefault("backend.timeout", "10s")
	v.SetDefault("relay.scope", "lecture")
	v.SetDefault("relay.chat_history", 0)
	v.SetDefault("relay.strict", false)
	v.SetDefault("chat.rate_limit", 10)
	v.SetDefault("chat.rate_window", "10s")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
