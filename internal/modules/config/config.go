package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	configDirENV      = "CONFIG_DIR"
	envPrefix         = "MT5"
)

// Config ...
type Config struct {
	Service struct {
		Name      string `mapstructure:"name" yaml:"name" validate:"required"`
		AdminAddr string `mapstructure:"admin_addr" yaml:"admin_addr" validate:"required"`
		LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	} `mapstructure:"service" yaml:"service"`

	// Учётка терминала
	Account struct {
		Login    int64  `mapstructure:"login" yaml:"login" validate:"gte=0"`
		Password string `mapstructure:"password" yaml:"password"`
		Server   string `mapstructure:"server" yaml:"server"`
		Path     string `mapstructure:"path" yaml:"path"`
	} `mapstructure:"account" yaml:"account"`

	// Мост к терминалу
	Bridge struct {
		URL         string        `mapstructure:"url" yaml:"url" validate:"required,url"`
		Token       string        `mapstructure:"token" yaml:"token"`
		DialTimeout time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
		CallTimeout time.Duration `mapstructure:"call_timeout" yaml:"call_timeout"`
		InitTimeout time.Duration `mapstructure:"init_timeout" yaml:"init_timeout"`
	} `mapstructure:"bridge" yaml:"bridge"`

	Tracing struct {
		Host string `mapstructure:"host" yaml:"host"`
		Port int    `mapstructure:"port" yaml:"port" validate:"gte=0,lte=65535"`
	} `mapstructure:"tracing" yaml:"tracing"`

	// Telegram опционален: без токена бот не поднимается, уведомления идут в лог.
	Telegram struct {
		Token  string `mapstructure:"token" yaml:"token"`
		ChatID int64  `mapstructure:"chat_id" yaml:"chat_id"`
	} `mapstructure:"telegram" yaml:"telegram"`
}

// NewConfig читает configs/$CONFIG_FILE (по умолчанию values_local.yaml),
// затем переменные окружения MT5_* (и .env, если он есть).
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	configFileName := getenvDefault(configFilePathENV, "values_local.yaml")
	configDir := getenvDefault(configDirENV, "configs")

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configDir + "/" + configFileName)
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(configDir + "/" + configFileName); statErr == nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// файла нет — работаем на дефолтах и env
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.name", "mt5_api")
	v.SetDefault("service.admin_addr", ":8080")
	v.SetDefault("service.log_level", "info")

	v.SetDefault("account.login", 0)
	v.SetDefault("account.password", "")
	v.SetDefault("account.server", "")
	v.SetDefault("account.path", "")

	v.SetDefault("bridge.url", "ws://127.0.0.1:8765/mt5")
	v.SetDefault("bridge.token", "")
	v.SetDefault("bridge.dial_timeout", "10s")
	v.SetDefault("bridge.call_timeout", "30s")
	v.SetDefault("bridge.init_timeout", "60s")

	v.SetDefault("tracing.host", "")
	v.SetDefault("tracing.port", 6831)

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.chat_id", 0)
}

// String — конфиг в yaml без секретов, для лога на старте.
func (c *Config) String() string {
	redacted := *c
	redacted.Account.Password = redact(redacted.Account.Password)
	redacted.Bridge.Token = redact(redacted.Bridge.Token)
	redacted.Telegram.Token = redact(redacted.Telegram.Token)

	out, err := yaml.Marshal(&redacted)
	if err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return string(out)
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
