// Package config provides configuration loading for the Hearth service.
// Defaults are overlaid with HEARTH_-prefixed environment variables and the
// merged result is validated. The cipher key (db_secret) is carried as an
// opaque base64 string and never logged.
package config

import (
	"fmt"
	"net"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces all environment variables consumed by the service.
const envPrefix = "HEARTH_"

// AppConfig holds the merged runtime configuration.
type AppConfig struct {
	Addr         string `koanf:"addr" validate:"required,ip_port"`
	DataDir      string `koanf:"data_dir" validate:"required,safe_path"`
	DBSecret     string `koanf:"db_secret" validate:"omitempty,base64"`
	CalendarFile string `koanf:"calendar_file" validate:"required"`

	WeatherClientID     string `koanf:"weather_client_id"`
	WeatherClientSecret string `koanf:"weather_client_secret"`
	WeatherMock         string `koanf:"weather_mock"`

	MatrixURL      string `koanf:"matrix_url" validate:"omitempty,url"`
	MatrixUser     string `koanf:"matrix_user"`
	MatrixPassword string `koanf:"matrix_password"`
	MatrixRoom     string `koanf:"matrix_room"`

	GarbageLimit  int `koanf:"garbage_limit" validate:"gte=0"`
	BirthdayLimit int `koanf:"birthday_limit" validate:"gte=0"`
	ForecastDays  int `koanf:"forecast_days" validate:"gt=0"`

	AnnounceInterval time.Duration `koanf:"announce_interval" validate:"required"`
	MetricsFlush     time.Duration `koanf:"metrics_flush" validate:"required"`
}

// DefaultAppConfig are the built-in defaults; everything except the cipher
// key and upstream credentials works out of the box for local development.
var DefaultAppConfig = AppConfig{
	Addr:             ":8080",
	DataDir:          "data",
	CalendarFile:     "data/calendar.ics",
	MatrixUser:       "birthday-bot",
	GarbageLimit:     2,
	BirthdayLimit:    3,
	ForecastDays:     6,
	AnnounceInterval: 24 * time.Hour,
	MetricsFlush:     5 * time.Second,
}

// Load merges defaults with environment variables and validates the result.
func Load() (*AppConfig, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(DefaultAppConfig, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	envProvider := env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, envPrefix)), value
		},
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg AppConfig
	dc := &mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		Result:           &cfg,
		WeaklyTypedInput: true,
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", DecoderConfig: dc}); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// AnnouncerEnabled reports whether the Matrix announcer has everything it
// needs to run.
func (c *AppConfig) AnnouncerEnabled() bool {
	return c.MatrixURL != "" && c.MatrixUser != "" && c.MatrixPassword != "" && c.MatrixRoom != ""
}

func validate(cfg *AppConfig) error {
	v := validator.New()
	if err := v.RegisterValidation("ip_port", validIPPort); err != nil {
		return err
	}
	if err := v.RegisterValidation("safe_path", validSafePath); err != nil {
		return err
	}
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// validIPPort accepts "ip:port" or ":port" with a numeric port in
// [1, 65535]. Hostnames are rejected; the listen address must be literal.
func validIPPort(fl validator.FieldLevel) bool {
	host, port, err := net.SplitHostPort(fl.Field().String())
	if err != nil {
		return false
	}
	if host != "" && net.ParseIP(host) == nil {
		return false
	}
	p, err := strconv.Atoi(port)
	if err != nil || p < 1 || p > 65535 {
		return false
	}
	return true
}

// validSafePath rejects empty, root, and parent-escaping data paths.
func validSafePath(fl validator.FieldLevel) bool {
	p := fl.Field().String()
	if p == "" {
		return false
	}
	clean := path.Clean(p)
	if clean == "." || clean == "/" {
		return false
	}
	for _, seg := range strings.Split(clean, "/") {
		if seg == ".." {
			return false
		}
	}
	return true
}
