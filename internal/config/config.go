// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SourceConfig - настройки одного апстрима. Таймаут в миллисекундах.
type SourceConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	Timeout   int    `mapstructure:"timeout"`
	RateLimit int    `mapstructure:"rate_limit"` // запросов в минуту
}

// DexScreenerConfig добавляет поисковый запрос основного источника
type DexScreenerConfig struct {
	SourceConfig `mapstructure:",squash"`
	Query        string `mapstructure:"query"`
}

type RetryConfig struct {
	MaxAttempts int `mapstructure:"max_attempts"`
	BaseDelay   int `mapstructure:"base_delay"`
	MaxDelay    int `mapstructure:"max_delay"`
}

type CacheConfig struct {
	Duration   int `mapstructure:"duration"`
	MaxEntries int `mapstructure:"max_entries"`
}

type FiltersConfig struct {
	MinVolume24h float64 `mapstructure:"min_volume_24h"`
	MaxFDV       float64 `mapstructure:"max_fdv"`
	Limit        int     `mapstructure:"limit"`
}

type Config struct {
	DexScreener         DexScreenerConfig `mapstructure:"dexscreener"`
	CoinGecko           SourceConfig      `mapstructure:"coingecko"`
	Retry               RetryConfig       `mapstructure:"retry"`
	Cache               CacheConfig       `mapstructure:"cache"`
	Filters             FiltersConfig     `mapstructure:"filters"`
	AssumedBTCPrice     float64           `mapstructure:"assumed_btc_price"`
	GracefulDegradation bool              `mapstructure:"graceful_degradation"`
	HTTPAddr            string            `mapstructure:"http_addr"`
	RefreshInterval     int               `mapstructure:"refresh_interval"`
	PortfolioFile       string            `mapstructure:"portfolio_file"`
	WatchIDs            []string          `mapstructure:"watch_ids"`
	DebugLogging        bool              `mapstructure:"debug_logging"`
	LogFile             string            `mapstructure:"log_file"`
}

const (
	EnvPrefix = "DASHBOARD"

	DefaultTimeout         = 5000
	DefaultRateLimit       = 300
	DefaultMaxAttempts     = 3
	DefaultBaseDelay       = 1000
	DefaultMaxDelay        = 10000
	DefaultCacheDuration   = 15000
	DefaultCacheMaxEntries = 128
	DefaultMinVolume24h    = 10000
	DefaultLimit           = 6
	DefaultAssumedBTCPrice = 65000
	DefaultRefreshInterval = 30000
	DefaultHTTPAddr        = ":8080"
)

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"dexscreener.base_url":   "https://api.dexscreener.com",
		"dexscreener.timeout":    DefaultTimeout,
		"dexscreener.rate_limit": DefaultRateLimit,
		"dexscreener.query":      "solana",
		"coingecko.base_url":     "https://api.coingecko.com/api/v3",
		"coingecko.timeout":      DefaultTimeout,
		"coingecko.rate_limit":   30,
		"retry.max_attempts":     DefaultMaxAttempts,
		"retry.base_delay":       DefaultBaseDelay,
		"retry.max_delay":        DefaultMaxDelay,
		"cache.duration":         DefaultCacheDuration,
		"cache.max_entries":      DefaultCacheMaxEntries,
		"filters.min_volume_24h": DefaultMinVolume24h,
		"filters.max_fdv":        0,
		"filters.limit":          DefaultLimit,
		"assumed_btc_price":      DefaultAssumedBTCPrice,
		"graceful_degradation":   true,
		"http_addr":              DefaultHTTPAddr,
		"refresh_interval":       DefaultRefreshInterval,
		"portfolio_file":         "",
		"watch_ids":              []string{"bitcoin", "ethereum", "solana"},
		"debug_logging":          false,
		"log_file":               "dashboard.log",
	}
}

// LoadConfig читает конфигурацию. Пустой path - только значения по умолчанию и окружение.
// Переменные окружения: DASHBOARD_<KEY>, точка заменяется подчеркиванием
// (DASHBOARD_RETRY_MAX_ATTEMPTS).
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.WatchIDs = splitList(cfg.WatchIDs)

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	for name, src := range map[string]SourceConfig{"dexscreener": cfg.DexScreener.SourceConfig, "coingecko": cfg.CoinGecko} {
		if err := validateURL(src.BaseURL, "http"); err != nil {
			return fmt.Errorf("invalid %s.base_url: %w", name, err)
		}
		if src.Timeout <= 0 {
			return fmt.Errorf("invalid %s.timeout", name)
		}
		if src.RateLimit < 0 {
			return fmt.Errorf("invalid %s.rate_limit", name)
		}
	}
	if err := validateNumericParams(cfg); err != nil {
		return err
	}
	if cfg.HTTPAddr == "" {
		return errors.New("http_addr is empty")
	}
	return nil
}

func validateNumericParams(cfg *Config) error {
	if cfg.Retry.MaxAttempts < 1 {
		return errors.New("invalid retry.max_attempts")
	}
	if cfg.Retry.BaseDelay < 0 {
		return errors.New("invalid retry.base_delay")
	}
	if cfg.Retry.MaxDelay < cfg.Retry.BaseDelay {
		return errors.New("retry.max_delay must not be below retry.base_delay")
	}
	if cfg.Cache.Duration <= 0 {
		return errors.New("invalid cache.duration")
	}
	if cfg.Cache.MaxEntries <= 0 {
		return errors.New("invalid cache.max_entries")
	}
	if cfg.Filters.MinVolume24h < 0 || cfg.Filters.MaxFDV < 0 {
		return errors.New("invalid filters thresholds")
	}
	if cfg.Filters.Limit <= 0 {
		return errors.New("invalid filters.limit")
	}
	if cfg.AssumedBTCPrice <= 0 {
		return errors.New("invalid assumed_btc_price")
	}
	if cfg.RefreshInterval <= 0 {
		return errors.New("invalid refresh_interval")
	}
	return nil
}

// validateURL требует абсолютный URL со схемой protocol или protocol+"s"
func validateURL(rawURL string, protocol string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) || parsed.Host == "" {
		return errors.New("invalid URL protocol")
	}
	return nil
}

// splitList раскрывает значения вида "a,b" (так приходят списки из окружения)
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if clean := strings.TrimSpace(part); clean != "" {
				out = append(out, clean)
			}
		}
	}
	return out
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

// RequestTimeout возвращает таймаут запроса источника
func (s SourceConfig) RequestTimeout() time.Duration {
	return ms(s.Timeout)
}

// Delays возвращает базовую и максимальную паузу повторов
func (r RetryConfig) Delays() (base, max time.Duration) {
	return ms(r.BaseDelay), ms(r.MaxDelay)
}

// TTL возвращает окно актуальности кэша
func (c CacheConfig) TTL() time.Duration {
	return ms(c.Duration)
}

// RefreshEvery возвращает период обновления TUI
func (c *Config) RefreshEvery() time.Duration {
	return ms(c.RefreshInterval)
}
