package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Name string `mapstructure:"name"`
		Port string `mapstructure:"port"`

		AllowOrigins []string `mapstructure:"allow_origins"`
	} `mapstructure:"app"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	Catalog struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"catalog"`

	Rates struct {
		BaseURL string        `mapstructure:"base_url"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"rates"`

	Converter struct {
		Timeout    time.Duration `mapstructure:"timeout"`
		MaxRetries int           `mapstructure:"max_retries"`
	} `mapstructure:"converter"`

	Style Style `mapstructure:"style"`
}

// Style is handed to the frontends instead of living in a package global.
type Style struct {
	FontFamily    string `mapstructure:"font_family"`
	FontSize      int    `mapstructure:"font_size"`
	SelectorWidth int    `mapstructure:"selector_width"`
	Title         string `mapstructure:"title"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "currency-converter")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.allow_origins", []string{"http://localhost:8080", "http://127.0.0.1:8080"})
	v.SetDefault("log.level", "info")
	v.SetDefault("catalog.path", "./config/currencies.json")
	v.SetDefault("rates.base_url", "https://www.cbr.ru/scripts")
	v.SetDefault("rates.timeout", 30*time.Second)
	v.SetDefault("converter.timeout", 10*time.Second)
	v.SetDefault("converter.max_retries", 0)
	v.SetDefault("style.font_family", "Arial")
	v.SetDefault("style.font_size", 12)
	v.SetDefault("style.selector_width", 300)
	v.SetDefault("style.title", "Currency Converter")
}

// LoadConfig reads config.yaml from the usual search paths. A missing file
// is not an error: defaults and environment variables still apply.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")
	v.AddConfigPath("../../config")

	return load(v)
}

// LoadFromFile reads the configuration from an explicit path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	_ = godotenv.Load()

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
