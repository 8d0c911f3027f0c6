package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Storage modes.
const (
	StorageConsole  = "console"
	StorageCSV      = "csv"
	StoragePostgres = "postgres"
)

// Cycle sources.
const (
	CyclesFile   = "file"
	CyclesRedis  = "redis"
	CyclesStatic = "static"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel        string        `toml:"log_level"`
	LogFormat       string        `toml:"log_format"`
	HTTPPort        string        `toml:"http_port"`
	ReadyStaleAfter time.Duration `toml:"ready_stale_after"`

	// Binance
	BinanceRESTURL    string        `toml:"binance_rest_url"`
	BinanceWSURL      string        `toml:"binance_ws_url"`
	BinanceTimeout    time.Duration `toml:"binance_timeout"`
	DepthLimit        int           `toml:"depth_limit"`
	DepthFetchTimeout time.Duration `toml:"depth_fetch_timeout"`
	ExchangeInfoTTL   time.Duration `toml:"exchange_info_ttl"`
	PriceStream       bool          `toml:"price_stream"`
	PriceMaxAge       time.Duration `toml:"price_max_age"`
	CacheMaxItems     int64         `toml:"cache_max_items"`
	OrderbookRetained int           `toml:"orderbook_retained"`

	// WebSocket
	WSDialTimeout           time.Duration `toml:"ws_dial_timeout"`
	WSPongTimeout           time.Duration `toml:"ws_pong_timeout"`
	WSPingInterval          time.Duration `toml:"ws_ping_interval"`
	WSReconnectInitialDelay time.Duration `toml:"ws_reconnect_initial_delay"`
	WSReconnectMaxDelay     time.Duration `toml:"ws_reconnect_max_delay"`
	WSReconnectBackoffMult  float64       `toml:"ws_reconnect_backoff_multiplier"`
	WSMessageBufferSize     int           `toml:"ws_message_buffer_size"`

	// Cycle validation
	AnchorAssets    []string `toml:"anchor_assets"`
	StableAssets    []string `toml:"stable_assets"`
	QuoteAsset      string   `toml:"quote_asset"`
	USDBudget       float64  `toml:"usd_budget"`
	MinArbThreshold float64  `toml:"min_arb_threshold"`
	MaxCycleLength  int      `toml:"max_cycle_length"`
	FiatExclusion   []string `toml:"fiat_exclusion"`

	// Selector
	PollInterval          time.Duration `toml:"poll_interval"`
	UpdateSymbolsInterval time.Duration `toml:"update_symbols_interval"`
	MaxSymbolsWatch       int           `toml:"max_symbols_watch"`
	IgnoreAssets          []string      `toml:"ignore_assets"`
	ExpansionQuotes       []string      `toml:"expansion_quotes"`
	RecordOpportunities   bool          `toml:"record_opportunities"`

	// Cycle source
	CyclesSource   string `toml:"cycles_source"`
	CyclesFile     string `toml:"cycles_file"`
	CyclesRedisKey string `toml:"cycles_redis_key"`

	// Redis
	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`
	WatchlistKey  string        `toml:"watchlist_key"`
	WatchlistTTL  time.Duration `toml:"watchlist_ttl"`

	// Storage
	StorageModes []string `toml:"storage_modes"`
	CSVPath      string   `toml:"csv_path"`
	PostgresHost string   `toml:"postgres_host"`
	PostgresPort string   `toml:"postgres_port"`
	PostgresUser string   `toml:"postgres_user"`
	PostgresPass string   `toml:"postgres_password"`
	PostgresDB   string   `toml:"postgres_db"`
	PostgresSSL  string   `toml:"postgres_sslmode"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       LogFormatJSON,
		HTTPPort:        "8080",
		ReadyStaleAfter: time.Minute,

		BinanceRESTURL:    "https://api.binance.com",
		BinanceWSURL:      "wss://stream.binance.com:9443/ws",
		BinanceTimeout:    10 * time.Second,
		DepthLimit:        100,
		DepthFetchTimeout: 5 * time.Second,
		ExchangeInfoTTL:   10 * time.Minute,
		PriceStream:       true,
		PriceMaxAge:       30 * time.Second,
		CacheMaxItems:     1000,
		OrderbookRetained: 500,

		WSDialTimeout:           10 * time.Second,
		WSPongTimeout:           15 * time.Second,
		WSPingInterval:          10 * time.Second,
		WSReconnectInitialDelay: time.Second,
		WSReconnectMaxDelay:     30 * time.Second,
		WSReconnectBackoffMult:  2.0,
		WSMessageBufferSize:     1000,

		AnchorAssets:    []string{"USDT", "BTC", "FUSD", "BUSD", "BNB", "AVAX", "LTC", "XRP", "DOT", "DOGE", "FET"},
		StableAssets:    []string{"USDT", "BUSD", "USDC"},
		QuoteAsset:      "USDT",
		USDBudget:       1000,
		MinArbThreshold: 1.015,
		MaxCycleLength:  5,
		FiatExclusion:   []string{"ARS", "BIDR", "BRL", "EUR", "GBP", "IDRT", "NGN", "PLN", "RON", "RUB", "TRY", "UAH", "ZAR"},

		PollInterval:          100 * time.Millisecond,
		UpdateSymbolsInterval: 10 * time.Minute,
		MaxSymbolsWatch:       10,
		IgnoreAssets:          []string{"BTC", "USDT"},
		ExpansionQuotes:       []string{"USDT", "BTC"},
		RecordOpportunities:   true,

		CyclesSource:   CyclesFile,
		CyclesFile:     "cycles.json",
		CyclesRedisKey: "deptharb:cycles",

		RedisDB:      0,
		WatchlistKey: "deptharb:watchlist",
		WatchlistTTL: 0,

		StorageModes: []string{StorageConsole},
		CSVPath:      "arbitrage_records.csv",
		PostgresHost: "localhost",
		PostgresPort: "5432",
		PostgresUser: "deptharb",
		PostgresPass: "deptharb",
		PostgresDB:   "deptharb",
		PostgresSSL:  "disable",
	}
}

// LoadFromEnv loads configuration from environment variables with defaults.
// A TOML file named by CONFIG_FILE is applied before the environment.
func LoadFromEnv() (*Config, error) {
	return Load(os.Getenv("CONFIG_FILE"))
}

// Load applies, in order, the defaults, the TOML file at path (when non-empty)
// and the environment, then validates the result.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		err := cfg.LoadFile(path)
		if err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// LoadFile overlays the TOML file at path. Keys absent from the file keep
// their current values.
func (c *Config) LoadFile(path string) error {
	_, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	c.LogFormat = strings.ToLower(getEnvOrDefault("LOG_FORMAT", c.LogFormat))
	c.HTTPPort = getEnvOrDefault("HTTP_PORT", c.HTTPPort)
	c.ReadyStaleAfter = getDurationOrDefault("READY_STALE_AFTER", c.ReadyStaleAfter)

	c.BinanceRESTURL = getEnvOrDefault("BINANCE_REST_URL", c.BinanceRESTURL)
	c.BinanceWSURL = getEnvOrDefault("BINANCE_WS_URL", c.BinanceWSURL)
	c.BinanceTimeout = getDurationOrDefault("BINANCE_TIMEOUT", c.BinanceTimeout)
	c.DepthLimit = getIntOrDefault("DEPTH_LIMIT", c.DepthLimit)
	c.DepthFetchTimeout = getDurationOrDefault("DEPTH_FETCH_TIMEOUT", c.DepthFetchTimeout)
	c.ExchangeInfoTTL = getDurationOrDefault("EXCHANGE_INFO_TTL", c.ExchangeInfoTTL)
	c.PriceStream = getBoolOrDefault("PRICE_STREAM", c.PriceStream)
	c.PriceMaxAge = getDurationOrDefault("PRICE_MAX_AGE", c.PriceMaxAge)
	c.CacheMaxItems = int64(getIntOrDefault("CACHE_MAX_ITEMS", int(c.CacheMaxItems)))
	c.OrderbookRetained = getIntOrDefault("ORDERBOOK_RETAINED", c.OrderbookRetained)

	c.WSDialTimeout = getDurationOrDefault("WS_DIAL_TIMEOUT", c.WSDialTimeout)
	c.WSPongTimeout = getDurationOrDefault("WS_PONG_TIMEOUT", c.WSPongTimeout)
	c.WSPingInterval = getDurationOrDefault("WS_PING_INTERVAL", c.WSPingInterval)
	c.WSReconnectInitialDelay = getDurationOrDefault("WS_RECONNECT_INITIAL_DELAY", c.WSReconnectInitialDelay)
	c.WSReconnectMaxDelay = getDurationOrDefault("WS_RECONNECT_MAX_DELAY", c.WSReconnectMaxDelay)
	c.WSReconnectBackoffMult = getFloat64OrDefault("WS_RECONNECT_BACKOFF_MULTIPLIER", c.WSReconnectBackoffMult)
	c.WSMessageBufferSize = getIntOrDefault("WS_MESSAGE_BUFFER_SIZE", c.WSMessageBufferSize)

	c.AnchorAssets = getListOrDefault("ANCHOR_ASSETS", c.AnchorAssets, strings.ToUpper)
	c.StableAssets = getListOrDefault("STABLE_ASSETS", c.StableAssets, strings.ToUpper)
	c.QuoteAsset = strings.ToUpper(getEnvOrDefault("QUOTE_ASSET", c.QuoteAsset))
	c.USDBudget = getFloat64OrDefault("USD_BUDGET", c.USDBudget)
	c.MinArbThreshold = getFloat64OrDefault("MIN_ARB_THRESHOLD", c.MinArbThreshold)
	c.MaxCycleLength = getIntOrDefault("MAX_CYCLE_LENGTH", c.MaxCycleLength)
	c.FiatExclusion = getListOrDefault("FIAT_EXCLUSION", c.FiatExclusion, strings.ToUpper)

	c.PollInterval = getDurationOrDefault("POLL_INTERVAL", c.PollInterval)
	c.UpdateSymbolsInterval = getDurationOrDefault("UPDATE_SYMBOLS_INTERVAL", c.UpdateSymbolsInterval)
	c.MaxSymbolsWatch = getIntOrDefault("MAX_SYMBOLS_WATCH", c.MaxSymbolsWatch)
	c.IgnoreAssets = getListOrDefault("IGNORE_ASSETS", c.IgnoreAssets, strings.ToUpper)
	c.ExpansionQuotes = getListOrDefault("EXPANSION_QUOTES", c.ExpansionQuotes, strings.ToUpper)
	c.RecordOpportunities = getBoolOrDefault("RECORD_OPPORTUNITIES", c.RecordOpportunities)

	c.CyclesSource = strings.ToLower(getEnvOrDefault("CYCLES_SOURCE", c.CyclesSource))
	c.CyclesFile = getEnvOrDefault("CYCLES_FILE", c.CyclesFile)
	c.CyclesRedisKey = getEnvOrDefault("CYCLES_REDIS_KEY", c.CyclesRedisKey)

	c.RedisAddr = getEnvOrDefault("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnvOrDefault("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getIntOrDefault("REDIS_DB", c.RedisDB)
	c.WatchlistKey = getEnvOrDefault("WATCHLIST_KEY", c.WatchlistKey)
	c.WatchlistTTL = getDurationOrDefault("WATCHLIST_TTL", c.WatchlistTTL)

	c.StorageModes = getListOrDefault("STORAGE_MODE", c.StorageModes, strings.ToLower)
	c.CSVPath = getEnvOrDefault("CSV_PATH", c.CSVPath)
	c.PostgresHost = getEnvOrDefault("POSTGRES_HOST", c.PostgresHost)
	c.PostgresPort = getEnvOrDefault("POSTGRES_PORT", c.PostgresPort)
	c.PostgresUser = getEnvOrDefault("POSTGRES_USER", c.PostgresUser)
	c.PostgresPass = getEnvOrDefault("POSTGRES_PASSWORD", c.PostgresPass)
	c.PostgresDB = getEnvOrDefault("POSTGRES_DB", c.PostgresDB)
	c.PostgresSSL = getEnvOrDefault("POSTGRES_SSLMODE", c.PostgresSSL)
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return errors.New("HTTP_PORT cannot be empty")
	}

	if c.LogFormat != LogFormatJSON && c.LogFormat != LogFormatConsole {
		return fmt.Errorf("LOG_FORMAT must be 'json' or 'console', got %q", c.LogFormat)
	}

	if c.BinanceRESTURL == "" {
		return errors.New("BINANCE_REST_URL cannot be empty")
	}

	if c.PriceStream && c.BinanceWSURL == "" {
		return errors.New("BINANCE_WS_URL cannot be empty when PRICE_STREAM is enabled")
	}

	if len(c.AnchorAssets) == 0 {
		return errors.New("ANCHOR_ASSETS cannot be empty")
	}

	if c.USDBudget <= 0 {
		return fmt.Errorf("USD_BUDGET must be positive, got %f", c.USDBudget)
	}

	if c.MinArbThreshold <= 1.0 {
		return fmt.Errorf("MIN_ARB_THRESHOLD must be greater than 1.0, got %f", c.MinArbThreshold)
	}

	if c.MaxCycleLength < 2 {
		return fmt.Errorf("MAX_CYCLE_LENGTH must be at least 2, got %d", c.MaxCycleLength)
	}

	if c.MaxSymbolsWatch <= 0 {
		return fmt.Errorf("MAX_SYMBOLS_WATCH must be positive, got %d", c.MaxSymbolsWatch)
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive, got %s", c.PollInterval)
	}

	if c.UpdateSymbolsInterval <= 0 {
		return fmt.Errorf("UPDATE_SYMBOLS_INTERVAL must be positive, got %s", c.UpdateSymbolsInterval)
	}

	if len(c.ExpansionQuotes) == 0 {
		return errors.New("EXPANSION_QUOTES cannot be empty")
	}

	switch c.CyclesSource {
	case CyclesFile:
		if c.CyclesFile == "" {
			return errors.New("CYCLES_FILE cannot be empty when CYCLES_SOURCE is file")
		}
	case CyclesRedis:
		if c.RedisAddr == "" {
			return errors.New("REDIS_ADDR is required when CYCLES_SOURCE is redis")
		}
	case CyclesStatic:
	default:
		return fmt.Errorf("CYCLES_SOURCE must be 'file', 'redis' or 'static', got %q", c.CyclesSource)
	}

	if len(c.StorageModes) == 0 {
		return errors.New("STORAGE_MODE cannot be empty")
	}
	for _, mode := range c.StorageModes {
		switch mode {
		case StorageConsole, StoragePostgres:
		case StorageCSV:
			if c.CSVPath == "" {
				return errors.New("CSV_PATH cannot be empty when csv storage is enabled")
			}
		default:
			return fmt.Errorf("STORAGE_MODE entries must be 'console', 'csv' or 'postgres', got %q", mode)
		}
	}

	return nil
}

// HasStorage reports whether mode is among the configured storage modes.
func (c *Config) HasStorage(mode string) bool {
	for _, m := range c.StorageModes {
		if m == mode {
			return true
		}
	}
	return false
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

// getListOrDefault parses a comma-separated list, trimming and normalizing
// each entry.
func getListOrDefault(key string, defaultValue []string, normalize func(string) string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, normalize(part))
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
